package roleclient

import "slidesync-be/internal/model"

// Remote is the phone-sized role: navigation buttons and a page indicator,
// no rendering at all. It relies entirely on the mirrored state.
type Remote struct {
	client *Client
}

func NewRemote(client *Client) *Remote {
	return &Remote{client: client}
}

// Forward requests the next page. Out-of-bounds requests are simply dropped
// by the server, so no local bounds check is needed.
func (r *Remote) Forward() error {
	return r.client.ChangePage(r.client.State().CurrentSlide + 1)
}

// Back requests the previous page.
func (r *Remote) Back() error {
	return r.client.ChangePage(r.client.State().CurrentSlide - 1)
}

// Jump requests an absolute page.
func (r *Remote) Jump(page int) error {
	return r.client.ChangePage(page)
}

// Position reports the mirrored current/total pair for the indicator.
func (r *Remote) Position() (current, total int) {
	s := r.client.State()
	return s.CurrentSlide, s.TotalSlides
}

// Active reports whether a deck is loaded.
func (r *Remote) Active() bool {
	return r.client.State().Loaded()
}

func (r *Remote) State() model.PresentationState {
	return r.client.State()
}
