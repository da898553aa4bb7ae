package entity

import (
	"time"

	"github.com/google/uuid"
)

// Deck is a playlist entry pointing at an uploaded PDF.
type Deck struct {
	Id        uuid.UUID `gorm:"type:uuid;primaryKey"`
	Title     string
	FileName  string
	PdfUrl    string
	EventDate string
	Location  string
	Speaker   string
	ExtraInfo string
	ByteSize  *int64
	CreatedAt time.Time
	UpdatedAt *time.Time
}
