package model

// PresentationState is the single authoritative record describing the deck
// currently on screen. The zero value is the "no deck loaded" state with the
// conventional page 1.
type PresentationState struct {
	PDFURL       string `json:"pdfUrl"`
	FileName     string `json:"fileName"`
	CurrentSlide int    `json:"currentSlide"`
	TotalSlides  int    `json:"totalSlides"`
}

// Empty returns the no-deck state.
func Empty() PresentationState {
	return PresentationState{CurrentSlide: 1}
}

// Loaded reports whether a deck reference is present.
func (s PresentationState) Loaded() bool {
	return s.PDFURL != ""
}
