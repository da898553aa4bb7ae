package events

import "time"

// Event defines the contract for all system events.
type Event interface {
	// EventType returns the unique code for this event (e.g., "PAGE_CHANGED").
	EventType() string

	// Payload returns the data associated with the event.
	Payload() map[string]interface{}

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// BaseEvent is the plain implementation used throughout the server.
type BaseEvent struct {
	Type       string
	Data       map[string]interface{}
	OccurredAt time.Time
}

func (e BaseEvent) EventType() string {
	return e.Type
}

func (e BaseEvent) Payload() map[string]interface{} {
	return e.Data
}

func (e BaseEvent) Timestamp() time.Time {
	return e.OccurredAt
}

// Domain events mirrored to the external bus.

func NewPageChanged(page, total int) BaseEvent {
	return BaseEvent{
		Type: "PAGE_CHANGED",
		Data: map[string]interface{}{
			"current_slide": page,
			"total_slides":  total,
		},
		OccurredAt: time.Now(),
	}
}

func NewDeckLoaded(pdfURL, fileName string) BaseEvent {
	return BaseEvent{
		Type: "DECK_LOADED",
		Data: map[string]interface{}{
			"pdf_url":   pdfURL,
			"file_name": fileName,
		},
		OccurredAt: time.Now(),
	}
}

func NewPresentationEnded() BaseEvent {
	return BaseEvent{
		Type:       "PRESENTATION_ENDED",
		Data:       map[string]interface{}{},
		OccurredAt: time.Now(),
	}
}
