// Package storefront serves the public site: the medicine catalog with
// search, the doctor list with the booking flow, the call-back cart, and
// the live sales feed.
package storefront

import (
	"context"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/medicarehq/pharmacy-web/internal/http/middleware"
	"github.com/medicarehq/pharmacy-web/internal/observability/metrics"
	"github.com/medicarehq/pharmacy-web/internal/pharmacy"
	"github.com/medicarehq/pharmacy-web/internal/ui"
	"github.com/medicarehq/pharmacy-web/pkg/logging"
)

// API is the slice of the pharmacy client the storefront uses. Everything
// here is unauthenticated.
type API interface {
	ListMedicines(ctx context.Context, search string) ([]pharmacy.Medicine, error)
	ListDoctors(ctx context.Context, search string) ([]pharmacy.Doctor, error)
	CreateAppointment(ctx context.Context, req pharmacy.BookingRequest) (*pharmacy.Appointment, error)
	RecentSales(ctx context.Context) ([]pharmacy.Sale, error)
}

// Handler serves the public pages.
type Handler struct {
	api      API
	carts    *CartStore
	state    *ui.Store
	renderer *ui.Renderer
	feed     *Feed
	metrics  *metrics.UpstreamMetrics
	logger   *logging.Logger
	now      func() time.Time
}

// NewHandler creates the storefront handler.
func NewHandler(api API, carts *CartStore, state *ui.Store, renderer *ui.Renderer, feed *Feed, m *metrics.UpstreamMetrics, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		api:      api,
		carts:    carts,
		state:    state,
		renderer: renderer,
		feed:     feed,
		metrics:  m,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the time source, for tests.
func (h *Handler) WithClock(now func() time.Time) *Handler {
	h.now = now
	return h
}

// Routes returns the public routes, mounted at the site root.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Home)
	r.Get("/cart", h.Cart)
	r.Post("/cart", h.AddToCart)
	r.Post("/book/open", h.OpenBooking)
	r.Post("/book", h.SubmitBooking)
	r.Post("/modals/close", h.CloseModals)
	r.Get("/ws/sales", h.feed.HandleWebSocket)
	return r
}

type homePage struct {
	State  *ui.State
	Notice *ui.Notice
	Search string

	Medicines      []pharmacy.Medicine
	MedicinesError bool
	Doctors        []pharmacy.Doctor
	DoctorsError   bool
	Sales          []pharmacy.Sale
}

type cartPage struct {
	Notice  *ui.Notice
	Entries []Entry
}

// Home renders the landing page. A failed collection degrades to its own
// error panel; the rest of the page still renders.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionID(ctx)
	search := r.URL.Query().Get("q")

	state, err := h.state.Get(ctx, sid)
	if err != nil {
		h.logger.Error("ui state lookup failed", "error", err)
		state = ui.NewState()
	}

	p := homePage{
		State:  state,
		Notice: state.ActiveNotice(h.now()),
		Search: search,
	}

	if p.Medicines, err = h.api.ListMedicines(ctx, search); err != nil {
		h.logger.Warn("failed to load medicines", "error", err)
		p.MedicinesError = true
	}
	if p.Doctors, err = h.api.ListDoctors(ctx, ""); err != nil {
		h.logger.Warn("failed to load doctors", "error", err)
		p.DoctorsError = true
	}
	if p.Sales, err = h.api.RecentSales(ctx); err != nil {
		h.logger.Warn("failed to load sales feed", "error", err)
	}

	h.metrics.ObservePageRender("home")
	h.renderer.HTML(w, http.StatusOK, "home.html", p)
}

// Cart renders the visitor's call-back list.
func (h *Handler) Cart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionID(ctx)

	state, err := h.state.Get(ctx, sid)
	if err != nil {
		h.logger.Error("ui state lookup failed", "error", err)
		state = ui.NewState()
	}

	entries, err := h.carts.List(ctx, sid)
	if err != nil {
		h.logger.Error("failed to load cart", "error", err)
	}

	h.metrics.ObservePageRender("cart")
	h.renderer.HTML(w, http.StatusOK, "cart.html", cartPage{
		Notice:  state.ActiveNotice(h.now()),
		Entries: entries,
	})
}

// AddToCart stores the line item and stages the call-us notice. Orders
// are not taken online.
func (h *Handler) AddToCart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionID(ctx)
	if err := r.ParseForm(); err != nil {
		h.redirect(w, r, "/")
		return
	}
	name := strings.TrimSpace(r.PostForm.Get("name"))
	price := strings.TrimSpace(r.PostForm.Get("price"))
	if name == "" {
		h.redirect(w, r, "/")
		return
	}

	if err := h.carts.Add(ctx, sid, Entry{Name: name, Price: price, AddedAt: h.now()}); err != nil {
		h.logger.Error("failed to store cart entry", "error", err)
	}
	h.notify(ctx, sid,
		"We are not receiving orders for "+name+" right now. Please call us at +91 9230130888 to place your order. Thank you!",
		ui.SeverityInfo)
	h.redirect(w, r, "/")
}

// OpenBooking stages the booking modal for the chosen doctor.
func (h *Handler) OpenBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionID(ctx)
	if err := r.ParseForm(); err != nil {
		h.redirect(w, r, "/")
		return
	}
	doctorID, err := strconv.ParseInt(r.PostForm.Get("doctor_id"), 10, 64)
	if err != nil {
		h.redirect(w, r, "/")
		return
	}
	doctorName := strings.TrimSpace(r.PostForm.Get("doctor_name"))

	if _, err := h.state.Mutate(ctx, sid, func(s *ui.State) {
		s.OpenBooking(doctorID, doctorName)
	}); err != nil {
		h.logger.Error("failed to open booking modal", "error", err)
	}
	h.redirect(w, r, "/")
}

// SubmitBooking validates the form and books the appointment upstream.
// Validation failures leave the modal open with its staged doctor.
func (h *Handler) SubmitBooking(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionID(ctx)
	if err := r.ParseForm(); err != nil {
		h.notify(ctx, sid, "Invalid form submission", ui.SeverityError)
		h.redirect(w, r, "/")
		return
	}

	doctorID, err := strconv.ParseInt(r.PostForm.Get("doctor_id"), 10, 64)
	if err != nil {
		h.notify(ctx, sid, "Please choose a doctor", ui.SeverityError)
		h.redirect(w, r, "/")
		return
	}
	customerName := strings.TrimSpace(r.PostForm.Get("customer_name"))
	if customerName == "" {
		h.notify(ctx, sid, "Please enter your name", ui.SeverityError)
		h.redirect(w, r, "/")
		return
	}
	date := strings.TrimSpace(r.PostForm.Get("date"))
	if date == "" {
		h.notify(ctx, sid, "Please select an appointment date and time", ui.SeverityError)
		h.redirect(w, r, "/")
		return
	}
	when, err := time.ParseInLocation("2006-01-02T15:04", date, time.Local)
	if err != nil {
		h.notify(ctx, sid, "Please select a valid date and time", ui.SeverityError)
		h.redirect(w, r, "/")
		return
	}
	if !when.After(h.now()) {
		h.notify(ctx, sid, "Please choose a future date and time", ui.SeverityError)
		h.redirect(w, r, "/")
		return
	}

	_, err = h.api.CreateAppointment(ctx, pharmacy.BookingRequest{
		Doctor:       doctorID,
		CustomerName: customerName,
		PhoneNumber:  strings.TrimSpace(r.PostForm.Get("phone_number")),
		Date:         when.Format(time.RFC3339),
	})
	if err != nil {
		h.logger.Warn("booking failed", "doctor", doctorID, "error", err)
		h.notify(ctx, sid, "Failed to book appointment. Please try again.", ui.SeverityError)
		h.redirect(w, r, "/")
		return
	}

	if _, err := h.state.Mutate(ctx, sid, func(s *ui.State) {
		s.CloseBooking()
		s.Notify("Appointment booked successfully!", ui.SeveritySuccess, h.state.Now(), h.state.NoticeTTL())
	}); err != nil {
		h.logger.Error("failed to update ui state", "error", err)
	}
	h.redirect(w, r, "/")
}

// CloseModals dismisses the booking modal.
func (h *Handler) CloseModals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionID(ctx)
	if _, err := h.state.Mutate(ctx, sid, func(s *ui.State) { s.CloseBooking() }); err != nil {
		h.logger.Error("failed to close booking modal", "error", err)
	}
	h.redirect(w, r, "/")
}

func (h *Handler) notify(ctx context.Context, sid, message string, severity ui.Severity) {
	if err := h.state.Notify(ctx, sid, message, severity); err != nil {
		h.logger.Error("failed to stage notification", "error", err)
	}
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}
