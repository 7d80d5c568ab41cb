package handler

import (
	"bytes"
	"context"
	"embed"
	"html/template"
	"net/http"
	"net/url"

	"github.com/u16-io/FindPangram/model"
	"github.com/u16-io/FindPangram/service"
	"go.uber.org/zap"
)

//go:embed templates/*.html
var templateFS embed.FS

var templates = template.Must(template.ParseFS(templateFS, "templates/*.html"))

// Pangrams is the part of service.Service the handlers use.
type Pangrams interface {
	Create(ctx context.Context, line1, line2, line3 string) (*model.Pangram, error)
	List(ctx context.Context) ([]model.Pangram, error)
	Ping(ctx context.Context) error
}

// Handler serves the pangram pages.
type Handler struct {
	pangrams Pangrams
	logger   *zap.Logger
}

// New returns a Handler backed by pangrams.
func New(pangrams Pangrams, logger *zap.Logger) *Handler {
	return &Handler{pangrams: pangrams, logger: logger.Named("http")}
}

type indexPage struct {
	Title    string
	Error    string
	Line1    string
	Line2    string
	Line3    string
	Pangrams []model.Pangram
}

// Index lists every pangram, echoing back a rejected submission if the
// query carries one.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	ps, err := h.pangrams.List(r.Context())
	if err != nil {
		h.logger.Error("Failed to list pangrams", zap.Error(err))
		h.renderError(w, http.StatusInternalServerError, "Could not load pangrams.")
		return
	}

	h.render(w, http.StatusOK, "index", indexPage{
		Title:    "Pangrams",
		Error:    q.Get("error"),
		Line1:    q.Get("line1"),
		Line2:    q.Get("line2"),
		Line3:    q.Get("line3"),
		Pangrams: ps,
	})
}

// Create validates and stores the submitted lines, then redirects to the
// list. A rejected submission is sent back with its message and values.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	line1, line2, line3 := q.Get("line1"), q.Get("line2"), q.Get("line3")

	_, err := h.pangrams.Create(r.Context(), line1, line2, line3)
	if err == nil {
		http.Redirect(w, r, "/", http.StatusSeeOther)
		return
	}

	if ve, ok := service.IsValidationError(err); ok {
		back := url.Values{}
		back.Set("error", ve.Error())
		back.Set("line1", line1)
		back.Set("line2", line2)
		back.Set("line3", line3)
		http.Redirect(w, r, "/?"+back.Encode(), http.StatusSeeOther)
		return
	}

	h.logger.Error("Failed to create pangram", zap.Error(err))
	h.renderError(w, http.StatusInternalServerError, "Could not save your pangram.")
}

// About renders the static about page.
func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "about", struct{ Title string }{"About"})
}

// Healthz reports whether the store answers a ping.
func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := h.pangrams.Ping(r.Context()); err != nil {
		h.logger.Warn("Health check failed", zap.Error(err))
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("unavailable\n"))
		return
	}
	w.Write([]byte("ok\n"))
}

func (h *Handler) renderError(w http.ResponseWriter, status int, msg string) {
	h.render(w, status, "error", struct{ Title, Error string }{"Error", msg})
}

// render executes into a buffer first so a template failure can still become a 500.
func (h *Handler) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := templates.ExecuteTemplate(&buf, name, data); err != nil {
		h.logger.Error("Failed to render template", zap.String("template", name), zap.Error(err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	buf.WriteTo(w)
}
