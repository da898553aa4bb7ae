package dto

import "github.com/google/uuid"

type ChangePageRequest struct {
	Page int `json:"page" validate:"required,min=1"`
}

type SetTotalSlidesRequest struct {
	TotalSlides int `json:"totalSlides" validate:"required,min=1"`
}

type LoadPlaylistRequest struct {
	Id uuid.UUID `json:"id" validate:"required"`
}

type LoadTestPdfRequest struct {
	Url      string `json:"url" validate:"required"`
	FileName string `json:"fileName"`
}

type UploadResponse struct {
	PdfUrl   string `json:"pdfUrl"`
	FileName string `json:"fileName"`
}

type PlaylistItemResponse struct {
	Id        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	FileName  string    `json:"file_name"`
	PdfUrl    string    `json:"pdf_url"`
	EventDate string    `json:"event_date,omitempty"`
	Location  string    `json:"location,omitempty"`
	Speaker   string    `json:"speaker,omitempty"`
	ExtraInfo string    `json:"extra_info,omitempty"`
	ByteSize  *int64    `json:"byte_size,omitempty"`
}

type SampleSlideResponse struct {
	Name string `json:"name"`
	Url  string `json:"url"`
}

type NetworkInfoResponse struct {
	IP   string `json:"ip"`
	Port string `json:"port"`
}

type LocalUploadProbeResponse struct {
	Available bool `json:"available"`
}
