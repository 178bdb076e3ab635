package httpapi

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/i474232898/weather-dashboard/internal/dashboard"
	"github.com/i474232898/weather-dashboard/internal/preview"
	"github.com/i474232898/weather-dashboard/internal/view"
)

var validate = validator.New()

const ownerCookie = "preview_owner"

// Handlers bundles what the routes need.
type Handlers struct {
	Service   *dashboard.Service
	Renderer  *view.Renderer
	Previews  *preview.Registry
	ImagesDir string
	MaxLimit  int
	// PreviewTTL is how long the owner cookie outlives the last request.
	PreviewTTL time.Duration
	Log        *zap.Logger
}

// RegisterRoutes wires the dashboard pages, fragments and actions into the
// Fiber app. Actions answer with the affected fragment when the request
// carries HX-Request: true, and redirect back to the page otherwise.
func RegisterRoutes(app *fiber.App, h *Handlers) {
	if h.Log == nil {
		h.Log = zap.NewNop()
	}
	if h.MaxLimit <= 0 {
		h.MaxLimit = 200
	}
	if h.PreviewTTL <= 0 {
		h.PreviewTTL = 24 * time.Hour
	}

	app.Get("/", h.page)

	views := app.Group("/views")
	views.Get("/national", h.nationalFragment)
	views.Get("/locations", h.locationsFragment)
	views.Get("/detail", h.detailFragment)
	views.Get("/preview", h.previewFragment)

	actions := app.Group("/actions")
	actions.Post("/locations/load", h.loadLocations)
	actions.Post("/locations/load-all", h.loadAll)
	actions.Post("/locations/shuffle", h.shuffle)
	actions.Get("/search", h.search)
	actions.Post("/national/refresh", h.refreshNational)
	// "close" must be registered ahead of ":id".
	actions.Post("/detail/close", h.closeDetail)
	actions.Post("/detail/:id", h.showDetail)
	actions.Post("/preview", h.uploadPreview)
	actions.Post("/preview/release", h.releasePreview)
	actions.Delete("/preview", h.releasePreview)

	app.Get("/previews/:handle", h.servePreview)
	app.Get("/images/:name", h.serveImage)
}

func (h *Handlers) page(c *fiber.Ctx) error {
	p := h.Service.Page()
	p.Preview = h.previewPanel(h.owner(c))

	var buf bytes.Buffer
	if err := h.Renderer.Page(&buf, p); err != nil {
		return err
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *Handlers) nationalFragment(c *fiber.Ctx) error {
	return h.fragments(c, fragment{view.FragmentNational, h.Service.National()})
}

func (h *Handlers) locationsFragment(c *fiber.Ctx) error {
	return h.fragments(c,
		fragment{view.FragmentLocations, h.Service.Locations()},
		fragment{view.FragmentImageTags, h.Service.ImageTags()},
	)
}

func (h *Handlers) detailFragment(c *fiber.Ctx) error {
	return h.fragments(c, fragment{view.FragmentDetail, h.Service.Detail()})
}

func (h *Handlers) previewFragment(c *fiber.Ctx) error {
	return h.fragments(c, fragment{view.FragmentPreview, h.previewPanel(h.owner(c))})
}

func (h *Handlers) refreshNational(c *fiber.Ctx) error {
	panel := h.Service.RefreshNational(c.UserContext())
	return h.respond(c, fragment{view.FragmentNational, panel})
}

// loadQuery holds the optional list bound of a reload.
type loadQuery struct {
	Limit int `query:"limit" validate:"gte=0"`
}

func (h *Handlers) loadLocations(c *fiber.Ctx) error {
	var q loadQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "limit must be an integer")
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Var(q.Limit, fmt.Sprintf("lte=%d", h.MaxLimit)); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("limit must not exceed %d", h.MaxLimit))
	}

	h.Service.LoadLocations(c.UserContext(), q.Limit)
	return h.respondLocations(c)
}

func (h *Handlers) loadAll(c *fiber.Ctx) error {
	h.Service.LoadAll(c.UserContext())
	return h.respondLocations(c)
}

func (h *Handlers) shuffle(c *fiber.Ctx) error {
	h.Service.Shuffle()
	return h.respondLocations(c)
}

// searchQuery holds the raw search box text.
type searchQuery struct {
	Q string `query:"q" validate:"max=200"`
}

func (h *Handlers) search(c *fiber.Ctx) error {
	var q searchQuery
	if err := c.QueryParser(&q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(q); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "query is too long")
	}

	h.Service.Search(q.Q)
	return h.respondLocations(c)
}

func (h *Handlers) showDetail(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "location id must be an integer")
	}
	region := h.Service.ShowDetail(c.UserContext(), id)
	return h.respond(c, fragment{view.FragmentDetail, region})
}

func (h *Handlers) closeDetail(c *fiber.Ctx) error {
	region := h.Service.CloseDetail()
	return h.respond(c, fragment{view.FragmentDetail, region})
}

func (h *Handlers) uploadPreview(c *fiber.Ctx) error {
	owner := h.owner(c)

	name, data, err := readUpload(c, "file")
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	if _, err := h.Previews.Replace(owner, name, data); err != nil {
		if errors.Is(err, preview.ErrTooLarge) {
			return fiber.NewError(fiber.StatusRequestEntityTooLarge, err.Error())
		}
		return err
	}
	return h.respond(c, fragment{view.FragmentPreview, h.previewPanel(owner)})
}

func (h *Handlers) releasePreview(c *fiber.Ctx) error {
	owner := h.owner(c)
	h.Previews.Release(owner)
	return h.respond(c, fragment{view.FragmentPreview, h.previewPanel(owner)})
}

func (h *Handlers) servePreview(c *fiber.Ctx) error {
	obj, err := h.Previews.Get(c.Params("handle"))
	if err != nil {
		if errors.Is(err, preview.ErrNotFound) {
			return fiber.NewError(fiber.StatusNotFound, "preview not found")
		}
		return err
	}
	c.Set(fiber.HeaderContentType, obj.ContentType)
	c.Set(fiber.HeaderCacheControl, "no-store")
	return c.Send(obj.Data)
}

// serveImage serves images/<name>. A missing image is answered with the
// placeholder exactly once; a missing placeholder is a 404.
func (h *Handlers) serveImage(c *fiber.Ctx) error {
	name, err := url.PathUnescape(c.Params("name"))
	if err != nil || name == "" || name != filepath.Base(name) || strings.HasPrefix(name, ".") {
		return fiber.NewError(fiber.StatusBadRequest, "invalid image name")
	}

	path := filepath.Join(h.ImagesDir, name)
	if fileExists(path) {
		return c.SendFile(path)
	}

	fallback := filepath.Join(h.ImagesDir, view.PlaceholderImage)
	if name != view.PlaceholderImage && fileExists(fallback) {
		h.Log.Debug("image missing, serving placeholder", zap.String("image", name))
		c.Set("X-Image-Fallback", "true")
		return c.SendFile(fallback)
	}
	return fiber.NewError(fiber.StatusNotFound, "image not found")
}

type fragment struct {
	name string
	data any
}

func (h *Handlers) respondLocations(c *fiber.Ctx) error {
	return h.respond(c,
		fragment{view.FragmentLocations, h.Service.Locations()},
		fragment{view.FragmentImageTags, h.Service.ImageTags()},
	)
}

// respond renders the given fragments for fragment-swapping clients and
// redirects plain form posts back to the page.
func (h *Handlers) respond(c *fiber.Ctx, frags ...fragment) error {
	if c.Get("HX-Request") != "true" {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return h.fragments(c, frags...)
}

func (h *Handlers) fragments(c *fiber.Ctx, frags ...fragment) error {
	var buf bytes.Buffer
	for _, f := range frags {
		if err := h.Renderer.Fragment(&buf, f.name, f.data); err != nil {
			return err
		}
	}
	c.Type("html", "utf-8")
	return c.Send(buf.Bytes())
}

func (h *Handlers) previewPanel(owner string) view.Panel[view.PreviewView] {
	obj, ok := h.Previews.Current(owner)
	if !ok {
		return view.Empty[view.PreviewView](view.MsgNoPreview)
	}
	return view.Ready(view.NewPreviewView("/previews/"+obj.Handle, obj.Name, obj.ContentType))
}

// owner identifies the visitor whose preview is addressed, issuing a cookie
// on first contact. The cookie expiry slides with every request, matching
// how long the registry keeps an unseen preview.
func (h *Handlers) owner(c *fiber.Ctx) string {
	v := c.Cookies(ownerCookie)
	if _, err := uuid.Parse(v); err != nil {
		v = uuid.NewString()
	}
	c.Cookie(&fiber.Cookie{
		Name:     ownerCookie,
		Value:    v,
		Path:     "/",
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
		Expires:  time.Now().Add(h.PreviewTTL),
	})
	return v
}

// readUpload returns the name and bytes of the named file field. A missing
// or empty file yields empty data.
func readUpload(c *fiber.Ctx, field string) (string, []byte, error) {
	form, err := c.MultipartForm()
	if err != nil {
		return "", nil, fmt.Errorf("expected a multipart form: %w", err)
	}
	files := form.File[field]
	if len(files) == 0 || files[0].Size == 0 {
		return "", nil, nil
	}

	fh := files[0]
	f, err := fh.Open()
	if err != nil {
		return "", nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return "", nil, err
	}
	return filepath.Base(fh.Filename), data, nil
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// ErrorHandler renders errors as the JSON envelope every endpoint shares.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}
