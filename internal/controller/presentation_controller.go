package controller

import (
	"io"

	"slidesync-be/internal/dto"
	"slidesync-be/internal/pkg/serverutils"
	"slidesync-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IPresentationController interface {
	RegisterRoutes(r fiber.Router)
	State(ctx *fiber.Ctx) error
	Upload(ctx *fiber.Ctx) error
	UploadLocal(ctx *fiber.Ctx) error
	UploadLocalProbe(ctx *fiber.Ctx) error
	Playlist(ctx *fiber.Ctx) error
	LoadFromPlaylist(ctx *fiber.Ctx) error
	LoadTestPdf(ctx *fiber.Ctx) error
	SetTotalSlides(ctx *fiber.Ctx) error
	SampleSlides(ctx *fiber.Ctx) error
	Network(ctx *fiber.Ctx) error
}

type presentationController struct {
	service service.IPresentationService
	engine  service.ISyncService
	port    string
}

func NewPresentationController(svc service.IPresentationService, engine service.ISyncService, port string) IPresentationController {
	return &presentationController{
		service: svc,
		engine:  engine,
		port:    port,
	}
}

func (c *presentationController) RegisterRoutes(r fiber.Router) {
	// Upload endpoints live at the root for compatibility with the browser
	// clients; everything else sits under /api.
	r.Post("/upload", c.Upload)
	r.Post("/upload-local", c.UploadLocal)

	api := r.Group("/api")
	api.Get("/state", c.State)
	api.Get("/upload-local", c.UploadLocalProbe)
	api.Get("/playlist", c.Playlist)
	api.Post("/playlist/load", c.LoadFromPlaylist)
	api.Post("/loadTestPdf", c.LoadTestPdf)
	api.Post("/totalSlides", c.SetTotalSlides)
	api.Get("/slides", c.SampleSlides)
	api.Get("/network", c.Network)
}

func (c *presentationController) State(ctx *fiber.Ctx) error {
	return ctx.JSON(c.engine.Snapshot())
}

// readUpload pulls the "pdf" part out of a multipart form.
func readUpload(ctx *fiber.Ctx) (name, contentType string, data []byte, err error) {
	fileHeader, err := ctx.FormFile("pdf")
	if err != nil {
		return "", "", nil, fiber.NewError(fiber.StatusBadRequest, "no file sent or invalid format")
	}

	f, err := fileHeader.Open()
	if err != nil {
		return "", "", nil, fiber.NewError(fiber.StatusBadRequest, "failed to read the uploaded file")
	}
	defer f.Close()

	data, err = io.ReadAll(f)
	if err != nil {
		return "", "", nil, fiber.NewError(fiber.StatusBadRequest, "failed to read the uploaded file")
	}
	return fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data, nil
}

func (c *presentationController) Upload(ctx *fiber.Ctx) error {
	name, contentType, data, err := readUpload(ctx)
	if err != nil {
		return err
	}

	meta := service.DeckMeta{
		Title:     ctx.FormValue("title"),
		EventDate: ctx.FormValue("eventDate"),
		Location:  ctx.FormValue("location"),
		Speaker:   ctx.FormValue("speaker"),
		ExtraInfo: ctx.FormValue("extraInfo"),
	}

	res, err := c.service.Upload(ctx.Context(), name, contentType, data, meta)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("PDF uploaded", res))
}

func (c *presentationController) UploadLocal(ctx *fiber.Ctx) error {
	name, contentType, data, err := readUpload(ctx)
	if err != nil {
		return err
	}

	res, err := c.service.UploadLocal(ctx.Context(), name, contentType, data)
	if err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse("PDF uploaded", res))
}

func (c *presentationController) UploadLocalProbe(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.LocalUploadProbeResponse{Available: c.service.LocalUploadAvailable()})
}

func (c *presentationController) Playlist(ctx *fiber.Ctx) error {
	items, err := c.service.Playlist(ctx.Context())
	if err != nil {
		return err
	}
	return ctx.JSON(items)
}

func (c *presentationController) LoadFromPlaylist(ctx *fiber.Ctx) error {
	var req dto.LoadPlaylistRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if err := c.service.LoadFromPlaylist(ctx.Context(), req.Id); err != nil {
		return err
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Presentation loaded", nil))
}

func (c *presentationController) LoadTestPdf(ctx *fiber.Ctx) error {
	var req dto.LoadTestPdfRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	c.service.LoadByURL(req.Url, req.FileName)
	return ctx.JSON(serverutils.SuccessResponse[any]("Presentation loaded", nil))
}

// SetTotalSlides is the HTTP fallback for the setTotalSlides event.
func (c *presentationController) SetTotalSlides(ctx *fiber.Ctx) error {
	var req dto.SetTotalSlidesRequest
	if err := ctx.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid request body")
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}

	if _, ok := c.engine.SetTotalSlides(req.TotalSlides); !ok {
		return fiber.NewError(fiber.StatusBadRequest, "invalid totalSlides")
	}
	return ctx.JSON(serverutils.SuccessResponse[any]("Total slides set", nil))
}

func (c *presentationController) SampleSlides(ctx *fiber.Ctx) error {
	slides, err := c.service.SampleSlides()
	if err != nil {
		return err
	}
	return ctx.JSON(slides)
}

func (c *presentationController) Network(ctx *fiber.Ctx) error {
	return ctx.JSON(c.service.NetworkInfo(c.port))
}
