package service

import (
	"context"
	"sync"
	"time"

	"slidesync-be/internal/model"
	"slidesync-be/internal/pkg/logger"
	"slidesync-be/internal/protocol"
	"slidesync-be/internal/state"
	"slidesync-be/pkg/events"
	pktNats "slidesync-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
)

// BroadcastTopic carries committed envelopes from the engine to the hub.
const BroadcastTopic = "presentation_broadcasts"

// ISyncService mediates every client-originated change request against the
// state store and fans the result out to all connected sessions. Rejected
// mutations produce no event at all.
type ISyncService interface {
	Snapshot() model.PresentationState
	ChangePage(page int) (model.PresentationState, error)
	SetTotalSlides(n int) (model.PresentationState, bool)
	LoadDeck(pdfURL, fileName string) model.PresentationState
	EndPresentation() model.PresentationState
}

type syncService struct {
	// mu spans mutate+publish so broadcasts leave in commit order even when
	// two requests race on the store.
	mu        sync.Mutex
	store     *state.Store
	publisher message.Publisher
	natsPub   *pktNats.Publisher
	logger    logger.ILogger
}

// NewSyncService wires the engine to the store and the broadcast bus.
// natsPub may be nil; the external mirror is best-effort.
func NewSyncService(store *state.Store, publisher message.Publisher, natsPub *pktNats.Publisher, log logger.ILogger) ISyncService {
	return &syncService{
		store:     store,
		publisher: publisher,
		natsPub:   natsPub,
		logger:    log,
	}
}

func (s *syncService) Snapshot() model.PresentationState {
	return s.store.Get()
}

func (s *syncService) ChangePage(page int) (model.PresentationState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, err := s.store.SetPage(page)
	if err != nil {
		s.logger.Debug("SyncService", "Page change rejected", map[string]interface{}{"page": page, "total": st.TotalSlides})
		return st, err
	}

	s.broadcast(protocol.EventPageUpdated, protocol.PageUpdatedPayload{
		CurrentSlide: st.CurrentSlide,
		TotalSlides:  st.TotalSlides,
	})
	s.mirror(events.NewPageChanged(st.CurrentSlide, st.TotalSlides))
	s.logger.Info("SyncService", "Page changed", map[string]interface{}{"page": st.CurrentSlide})
	return st, nil
}

func (s *syncService) SetTotalSlides(n int) (model.PresentationState, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st, ok := s.store.SetTotalSlides(n)
	if !ok {
		return st, false
	}

	s.broadcast(protocol.EventStateUpdated, st)
	s.logger.Info("SyncService", "Total slides set", map[string]interface{}{"total": n})
	return st, true
}

func (s *syncService) LoadDeck(pdfURL, fileName string) model.PresentationState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.store.LoadDeck(pdfURL, fileName)
	s.broadcast(protocol.EventPdfLoaded, protocol.PdfLoadedPayload{
		PdfUrl:       st.PDFURL,
		FileName:     st.FileName,
		CurrentSlide: st.CurrentSlide,
	})
	s.mirror(events.NewDeckLoaded(st.PDFURL, st.FileName))
	s.logger.Info("SyncService", "Deck loaded", map[string]interface{}{"file_name": fileName})
	return st
}

// EndPresentation clears the state. There is no dedicated echo event; clients
// recognize the cleared state by the missing pdfUrl in stateUpdated.
func (s *syncService) EndPresentation() model.PresentationState {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := s.store.Clear()
	s.broadcast(protocol.EventStateUpdated, st)
	s.mirror(events.NewPresentationEnded())
	s.logger.Info("SyncService", "Presentation ended", nil)
	return st
}

func (s *syncService) broadcast(event string, payload interface{}) {
	data, err := protocol.Marshal(event, payload)
	if err != nil {
		s.logger.Error("SyncService", "Failed to marshal broadcast", map[string]interface{}{"event": event, "error": err})
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), data)
	if err := s.publisher.Publish(BroadcastTopic, msg); err != nil {
		s.logger.Error("SyncService", "Failed to publish broadcast", map[string]interface{}{"event": event, "error": err})
	}
}

// mirror forwards the committed event to NATS, fire-and-forget.
func (s *syncService) mirror(evt events.BaseEvent) {
	if s.natsPub == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.natsPub.Publish(ctx, evt); err != nil {
			s.logger.Warn("SyncService", "Failed to mirror event to NATS", map[string]interface{}{"type": evt.EventType(), "error": err})
		}
	}()
}
