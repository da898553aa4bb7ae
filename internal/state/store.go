package state

import (
	"errors"
	"sync"

	"slidesync-be/internal/model"
)

// ErrPageOutOfRange is returned by SetPage for requests outside
// [1, totalSlides]. Callers at the protocol layer swallow it (no error event
// is defined); HTTP callers may surface it.
var ErrPageOutOfRange = errors.New("page out of range")

// Store owns the authoritative PresentationState. All mutations go through
// the methods below and are serialized by a single mutex, so no two
// read-modify-write cycles can interleave.
type Store struct {
	mu    sync.Mutex
	state model.PresentationState
}

func NewStore() *Store {
	return &Store{state: model.Empty()}
}

// Get returns a snapshot of the current state.
func (s *Store) Get() model.PresentationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// LoadDeck replaces the current deck. The page resets to 1 and the total
// becomes unknown (0) until some client measures the new deck.
func (s *Store) LoadDeck(pdfURL, fileName string) model.PresentationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = model.PresentationState{
		PDFURL:       pdfURL,
		FileName:     fileName,
		CurrentSlide: 1,
		TotalSlides:  0,
	}
	return s.state
}

// SetPage commits a page change. Pages below 1 are always rejected; an upper
// bound is only enforced once a total has been reported.
func (s *Store) SetPage(page int) (model.PresentationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if page < 1 {
		return s.state, ErrPageOutOfRange
	}
	if s.state.TotalSlides > 0 && page > s.state.TotalSlides {
		return s.state, ErrPageOutOfRange
	}
	s.state.CurrentSlide = page
	return s.state, nil
}

// SetTotalSlides overwrites the client-reported page count. The last valid
// report wins; non-positive values are ignored without error. The second
// return value reports whether anything was committed.
func (s *Store) SetTotalSlides(n int) (model.PresentationState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if n < 1 {
		return s.state, false
	}
	s.state.TotalSlides = n
	return s.state, true
}

// Clear resets to the no-deck state.
func (s *Store) Clear() model.PresentationState {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = model.Empty()
	return s.state
}
