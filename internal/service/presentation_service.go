package service

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"time"

	"slidesync-be/internal/dto"
	"slidesync-be/internal/entity"
	"slidesync-be/internal/model"
	"slidesync-be/internal/pkg/logger"
	"slidesync-be/internal/repository/contract"
	"slidesync-be/pkg/blob"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
)

const maxDeckBytes = 50 * 1024 * 1024

// DeckMeta carries the optional playlist fields submitted with an upload.
type DeckMeta struct {
	Title     string
	EventDate string
	Location  string
	Speaker   string
	ExtraInfo string
}

type IPresentationService interface {
	State() model.PresentationState
	Upload(ctx context.Context, fileName, contentType string, data []byte, meta DeckMeta) (dto.UploadResponse, error)
	UploadLocal(ctx context.Context, fileName, contentType string, data []byte) (dto.UploadResponse, error)
	LocalUploadAvailable() bool
	Playlist(ctx context.Context) ([]dto.PlaylistItemResponse, error)
	LoadFromPlaylist(ctx context.Context, id uuid.UUID) error
	LoadByURL(url, fileName string)
	SampleSlides() ([]dto.SampleSlideResponse, error)
	NetworkInfo(port string) dto.NetworkInfoResponse
}

type presentationService struct {
	engine    ISyncService
	deckRepo  contract.DeckRepository // nil when no metadata store is configured
	remote    blob.Store              // nil when no blob store is configured
	local     blob.Store              // nil when UPLOAD_DIR is not set
	slidesDir string
	sizeCache *cache.Cache
	probe     *http.Client
	logger    logger.ILogger
}

func NewPresentationService(
	engine ISyncService,
	deckRepo contract.DeckRepository,
	remote blob.Store,
	local blob.Store,
	slidesDir string,
	probeTimeout time.Duration,
	log logger.ILogger,
) IPresentationService {
	return &presentationService{
		engine:    engine,
		deckRepo:  deckRepo,
		remote:    remote,
		local:     local,
		slidesDir: slidesDir,
		sizeCache: cache.New(30*time.Minute, 10*time.Minute),
		probe:     &http.Client{Timeout: probeTimeout},
		logger:    log,
	}
}

func (s *presentationService) State() model.PresentationState {
	return s.engine.Snapshot()
}

func validateDeckUpload(fileName, contentType string, data []byte) error {
	if len(data) == 0 {
		return fiber.NewError(fiber.StatusBadRequest, "no file sent")
	}
	if contentType != "application/pdf" && !strings.HasSuffix(strings.ToLower(fileName), ".pdf") {
		return fiber.NewError(fiber.StatusBadRequest, "only PDF files are allowed")
	}
	if len(data) > maxDeckBytes {
		return fiber.NewError(fiber.StatusRequestEntityTooLarge, "file exceeds the 50MB limit")
	}
	return nil
}

// storedName builds a collision-free object name, keeping the original file
// name visible at the end for debuggability.
func storedName(fileName string) string {
	base := filepath.Base(fileName)
	return fmt.Sprintf("%d-%s-%s", time.Now().UnixMilli(), uuid.NewString()[:8], base)
}

func (s *presentationService) Upload(ctx context.Context, fileName, contentType string, data []byte, meta DeckMeta) (dto.UploadResponse, error) {
	if s.remote == nil || s.deckRepo == nil {
		return dto.UploadResponse{}, fiber.NewError(fiber.StatusServiceUnavailable, "remote storage is not configured")
	}
	if err := validateDeckUpload(fileName, contentType, data); err != nil {
		return dto.UploadResponse{}, err
	}

	pdfURL, err := s.remote.Put(ctx, storedName(fileName), "application/pdf", data)
	if err != nil {
		s.logger.Error("PresentationService", "Blob upload failed", map[string]interface{}{"error": err})
		return dto.UploadResponse{}, fiber.NewError(fiber.StatusBadGateway, "failed to store the file")
	}

	size := int64(len(data))
	title := meta.Title
	if title == "" {
		title = fileName
	}
	deck := &entity.Deck{
		Id:        uuid.New(),
		Title:     title,
		FileName:  fileName,
		PdfUrl:    pdfURL,
		EventDate: meta.EventDate,
		Location:  meta.Location,
		Speaker:   meta.Speaker,
		ExtraInfo: meta.ExtraInfo,
		ByteSize:  &size,
		CreatedAt: time.Now(),
	}
	if err := s.deckRepo.Create(ctx, deck); err != nil {
		s.logger.Error("PresentationService", "Failed to insert playlist record", map[string]interface{}{"error": err})
		return dto.UploadResponse{}, fiber.NewError(fiber.StatusBadGateway, "failed to save the playlist record")
	}

	s.engine.LoadDeck(pdfURL, fileName)
	return dto.UploadResponse{PdfUrl: pdfURL, FileName: fileName}, nil
}

// UploadLocal is the backup path: the deck lands on local disk instead of the
// remote store and no playlist record is written.
func (s *presentationService) UploadLocal(ctx context.Context, fileName, contentType string, data []byte) (dto.UploadResponse, error) {
	if s.local == nil {
		return dto.UploadResponse{}, fiber.NewError(fiber.StatusServiceUnavailable, "local upload directory is not configured")
	}
	if err := validateDeckUpload(fileName, contentType, data); err != nil {
		return dto.UploadResponse{}, err
	}

	pdfURL, err := s.local.Put(ctx, storedName(fileName), "application/pdf", data)
	if err != nil {
		s.logger.Error("PresentationService", "Local upload failed", map[string]interface{}{"error": err})
		return dto.UploadResponse{}, fiber.NewError(fiber.StatusInternalServerError, "failed to write the file")
	}

	s.engine.LoadDeck(pdfURL, fileName)
	return dto.UploadResponse{PdfUrl: pdfURL, FileName: fileName}, nil
}

func (s *presentationService) LocalUploadAvailable() bool {
	return s.local != nil
}

func (s *presentationService) Playlist(ctx context.Context) ([]dto.PlaylistItemResponse, error) {
	if s.deckRepo == nil {
		return nil, fiber.NewError(fiber.StatusServiceUnavailable, "playlist store is not configured")
	}

	decks, err := s.deckRepo.FindAll(ctx)
	if err != nil {
		return nil, fiber.NewError(fiber.StatusBadGateway, "failed to load the playlist")
	}

	items := make([]dto.PlaylistItemResponse, 0, len(decks))
	for _, deck := range decks {
		size := deck.ByteSize
		if size == nil {
			if probed, ok := s.probeByteSize(ctx, deck.PdfUrl); ok {
				size = &probed
				// Best-effort backfill; losing it just means another probe later.
				if err := s.deckRepo.UpdateByteSize(ctx, deck.Id, probed); err != nil {
					s.logger.Warn("PresentationService", "Byte size backfill failed", map[string]interface{}{"deck_id": deck.Id, "error": err})
				}
			}
		}
		items = append(items, dto.PlaylistItemResponse{
			Id:        deck.Id,
			Title:     deck.Title,
			FileName:  deck.FileName,
			PdfUrl:    deck.PdfUrl,
			EventDate: deck.EventDate,
			Location:  deck.Location,
			Speaker:   deck.Speaker,
			ExtraInfo: deck.ExtraInfo,
			ByteSize:  size,
		})
	}
	return items, nil
}

// probeByteSize HEAD-requests the deck URL to estimate its size. A miss is
// not an error: the size simply stays unknown.
func (s *presentationService) probeByteSize(ctx context.Context, url string) (int64, bool) {
	if cached, found := s.sizeCache.Get(url); found {
		return cached.(int64), true
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, url, nil)
	if err != nil {
		return 0, false
	}
	resp, err := s.probe.Do(req)
	if err != nil {
		return 0, false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK || resp.ContentLength <= 0 {
		return 0, false
	}
	s.sizeCache.Set(url, resp.ContentLength, cache.DefaultExpiration)
	return resp.ContentLength, true
}

func (s *presentationService) LoadFromPlaylist(ctx context.Context, id uuid.UUID) error {
	if s.deckRepo == nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "playlist store is not configured")
	}

	deck, err := s.deckRepo.FindById(ctx, id)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, "failed to resolve the playlist record")
	}
	if deck == nil {
		return fiber.NewError(fiber.StatusNotFound, "presentation not found")
	}

	s.engine.LoadDeck(deck.PdfUrl, deck.FileName)
	return nil
}

func (s *presentationService) LoadByURL(url, fileName string) {
	if fileName == "" {
		parts := strings.Split(url, "/")
		fileName = parts[len(parts)-1]
	}
	s.engine.LoadDeck(url, fileName)
}

// SampleSlides lists the bundled test decks served under /slides.
func (s *presentationService) SampleSlides() ([]dto.SampleSlideResponse, error) {
	entries, err := os.ReadDir(s.slidesDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []dto.SampleSlideResponse{}, nil
		}
		return nil, err
	}

	slides := make([]dto.SampleSlideResponse, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".pdf") {
			continue
		}
		slides = append(slides, dto.SampleSlideResponse{
			Name: e.Name(),
			Url:  "/slides/" + e.Name(),
		})
	}
	return slides, nil
}

func (s *presentationService) NetworkInfo(port string) dto.NetworkInfoResponse {
	return dto.NetworkInfoResponse{IP: localIP(), Port: port}
}

func localIP() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "localhost"
	}
	for _, addr := range addrs {
		if ipNet, ok := addr.(*net.IPNet); ok && !ipNet.IP.IsLoopback() && ipNet.IP.To4() != nil {
			return ipNet.IP.String()
		}
	}
	return "localhost"
}
