package protocol

import "encoding/json"

// Event names on the real-time channel. Client-originated and
// server-originated events share one envelope format.
const (
	EventInitialState    = "initialState"
	EventChangePage      = "changePage"
	EventPageUpdated     = "pageUpdated"
	EventSetTotalSlides  = "setTotalSlides"
	EventStateUpdated    = "stateUpdated"
	EventPdfLoaded       = "pdfLoaded"
	EventEndPresentation = "endPresentation"
)

// Envelope is the wire format: one JSON object per websocket text message.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Marshal builds a ready-to-send envelope for the given event and payload.
func Marshal(event string, payload interface{}) ([]byte, error) {
	var data json.RawMessage
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		data = raw
	}
	return json.Marshal(Envelope{Event: event, Data: data})
}

type ChangePagePayload struct {
	Page int `json:"page"`
}

type SetTotalSlidesPayload struct {
	TotalSlides int `json:"totalSlides"`
}

type PageUpdatedPayload struct {
	CurrentSlide int `json:"currentSlide"`
	TotalSlides  int `json:"totalSlides"`
}

type PdfLoadedPayload struct {
	PdfUrl       string `json:"pdfUrl"`
	FileName     string `json:"fileName"`
	CurrentSlide int    `json:"currentSlide"`
}
