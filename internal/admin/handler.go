// Package admin serves the dashboard: authentication, list/search over
// the three upstream collections, and the edit/delete modal flows.
package admin

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/medicarehq/pharmacy-web/internal/http/middleware"
	"github.com/medicarehq/pharmacy-web/internal/observability/metrics"
	"github.com/medicarehq/pharmacy-web/internal/pharmacy"
	"github.com/medicarehq/pharmacy-web/internal/session"
	"github.com/medicarehq/pharmacy-web/internal/ui"
	"github.com/medicarehq/pharmacy-web/pkg/logging"
)

// API is the slice of the pharmacy client the dashboard uses.
type API interface {
	ListMedicines(ctx context.Context, search string) ([]pharmacy.Medicine, error)
	ListDoctors(ctx context.Context, search string) ([]pharmacy.Doctor, error)
	ListAppointments(ctx context.Context, search string) ([]pharmacy.Appointment, error)
	Get(ctx context.Context, kind pharmacy.Kind, id string) (pharmacy.Record, error)
	Update(ctx context.Context, auth pharmacy.Auth, kind pharmacy.Kind, id string, fields pharmacy.Record) (pharmacy.Record, error)
	Delete(ctx context.Context, auth pharmacy.Auth, kind pharmacy.Kind, id string) error
	Login(ctx context.Context, creds pharmacy.Credentials) (*pharmacy.AuthResult, error)
	Register(ctx context.Context, creds pharmacy.Credentials) (*pharmacy.AuthResult, error)
	Logout(ctx context.Context, auth pharmacy.Auth) error
}

// Handler serves the admin dashboard.
type Handler struct {
	api            API
	sessions       *session.Store
	gate           *session.Gate
	state          *ui.Store
	renderer       *ui.Renderer
	metrics        *metrics.UpstreamMetrics
	gatherer       prometheus.Gatherer
	csrfCookieName string
	logger         *logging.Logger
}

// NewHandler creates the dashboard handler.
func NewHandler(api API, sessions *session.Store, gate *session.Gate, state *ui.Store, renderer *ui.Renderer, m *metrics.UpstreamMetrics, csrfCookieName string, logger *logging.Logger) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handler{
		api:            api,
		sessions:       sessions,
		gate:           gate,
		state:          state,
		renderer:       renderer,
		metrics:        m,
		csrfCookieName: csrfCookieName,
		logger:         logger,
	}
}

// WithGatherer sets the prometheus gatherer backing the dashboard's
// upstream-stats box. Defaults to the process-wide gatherer.
func (h *Handler) WithGatherer(g prometheus.Gatherer) *Handler {
	h.gatherer = g
	return h
}

// Routes returns the dashboard routes, mounted under /admin.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/", h.Dashboard)
	r.Post("/login", h.Login)
	r.Post("/register", h.Register)
	r.Post("/logout", h.Logout)
	r.Post("/auth/open", h.OpenAuth)
	r.Post("/auth/tab", h.SwitchAuthTab)
	r.Post("/modals/close", h.CloseModals)
	r.Post("/edit/submit", h.SubmitEdit)
	r.Post("/delete/confirm", h.ConfirmDelete)
	r.Get("/{kind}", h.List)
	r.Post("/{kind}/{id}/edit", h.OpenEdit)
	r.Post("/{kind}/{id}/delete", h.OpenDelete)
	return r
}

type page struct {
	Authenticated bool
	Username      string
	State         *ui.State
	Notice        *ui.Notice
	Search        string
	LoadError     bool

	Medicines    []pharmacy.Medicine
	Doctors      []pharmacy.Doctor
	Appointments []pharmacy.Appointment

	EditTitle  string
	EditFields []Field

	Stats metrics.UpstreamSnapshot
}

// Dashboard renders the shell with the active tab's collection loaded.
func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	h.render(w, r, "")
}

// List switches the active tab and renders its collection, server-filtered
// when ?search= is present.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	kind := pharmacy.Kind(chi.URLParam(r, "kind"))
	if !kind.Valid() {
		http.NotFound(w, r)
		return
	}
	sid := middleware.SessionID(r.Context())
	if _, err := h.state.Mutate(r.Context(), sid, func(s *ui.State) { s.SwitchTab(kind) }); err != nil {
		h.logger.Error("failed to switch tab", "error", err)
	}
	h.render(w, r, r.URL.Query().Get("search"))
}

// Login exchanges submitted credentials for an upstream token.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionID(ctx)
	if err := r.ParseForm(); err != nil {
		h.notify(ctx, sid, "Invalid form submission", ui.SeverityError)
		h.redirect(w, r, "/admin")
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		h.notify(ctx, sid, "Username and password are required", ui.SeverityError)
		h.redirect(w, r, "/admin")
		return
	}

	result, err := h.api.Login(ctx, pharmacy.Credentials{Username: username, Password: password})
	if err != nil {
		h.logger.Warn("login failed", "username", username, "error", err)
		h.notify(ctx, sid, "Invalid username or password", ui.SeverityError)
		h.redirect(w, r, "/admin")
		return
	}

	h.establishSession(ctx, sid, username, result.Token, "Logged in successfully!")
	h.redirect(w, r, "/admin")
}

// Register creates an account; mismatched passwords short-circuit before
// any upstream call.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionID(ctx)
	if err := r.ParseForm(); err != nil {
		h.notify(ctx, sid, "Invalid form submission", ui.SeverityError)
		h.redirect(w, r, "/admin")
		return
	}
	username := r.PostForm.Get("username")
	password := r.PostForm.Get("password")
	confirm := r.PostForm.Get("password_confirm")
	if username == "" || password == "" {
		h.notify(ctx, sid, "Username and password are required", ui.SeverityError)
		h.redirect(w, r, "/admin")
		return
	}
	if password != confirm {
		h.notify(ctx, sid, "Passwords do not match", ui.SeverityError)
		h.redirect(w, r, "/admin")
		return
	}

	result, err := h.api.Register(ctx, pharmacy.Credentials{Username: username, Password: password})
	if err != nil {
		h.logger.Warn("registration failed", "username", username, "error", err)
		h.notify(ctx, sid, "Registration failed. Username may already exist.", ui.SeverityError)
		h.redirect(w, r, "/admin")
		return
	}

	h.establishSession(ctx, sid, username, result.Token, "Account created and logged in successfully!")
	h.redirect(w, r, "/admin")
}

// Logout invalidates the upstream token (best effort) and always clears
// the local session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionID(ctx)
	sess, err := h.sessions.Get(ctx, sid)
	if err == nil && sess.Authenticated() {
		if err := h.api.Logout(ctx, h.auth(r, sess)); err != nil {
			h.logger.Warn("upstream logout failed", "error", err)
		}
	}
	if err := h.sessions.Clear(ctx, sid); err != nil {
		h.logger.Error("failed to clear session", "error", err)
	}
	if _, err := h.state.Mutate(ctx, sid, func(s *ui.State) {
		s.CloseAll()
		s.Notify("Logged out successfully", ui.SeveritySuccess, h.state.Now(), h.state.NoticeTTL())
	}); err != nil {
		h.logger.Error("failed to update ui state", "error", err)
	}
	h.redirect(w, r, "/admin")
}

// OpenAuth shows the auth modal on the login tab.
func (h *Handler) OpenAuth(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionID(ctx)
	if _, err := h.state.Mutate(ctx, sid, func(s *ui.State) { s.OpenAuth(ui.AuthTabLogin) }); err != nil {
		h.logger.Error("failed to open auth modal", "error", err)
	}
	h.redirect(w, r, "/admin")
}

// SwitchAuthTab activates the requested auth sub-tab.
func (h *Handler) SwitchAuthTab(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionID(ctx)
	if err := r.ParseForm(); err == nil {
		tab := ui.AuthTab(r.PostForm.Get("tab"))
		if _, err := h.state.Mutate(ctx, sid, func(s *ui.State) { s.SwitchAuthTab(tab) }); err != nil {
			h.logger.Error("failed to switch auth tab", "error", err)
		}
	}
	h.redirect(w, r, "/admin")
}

// CloseModals is the backdrop click: every modal closes, pending targets
// clear.
func (h *Handler) CloseModals(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionID(ctx)
	if _, err := h.state.Mutate(ctx, sid, func(s *ui.State) { s.CloseAll() }); err != nil {
		h.logger.Error("failed to close modals", "error", err)
	}
	h.redirect(w, r, "/admin")
}

// OpenEdit fetches the record, stages it as the pending edit target, and
// opens the edit modal.
func (h *Handler) OpenEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionID(ctx)
	kind := pharmacy.Kind(chi.URLParam(r, "kind"))
	id := chi.URLParam(r, "id")
	if !kind.Valid() || id == "" {
		http.NotFound(w, r)
		return
	}
	if h.gate.Require(ctx, sid) == nil {
		h.redirect(w, r, "/admin")
		return
	}

	rec, err := h.api.Get(ctx, kind, id)
	if err != nil {
		h.logger.Warn("failed to load record for edit", "kind", kind, "id", id, "error", err)
		h.notify(ctx, sid, "Failed to load item details", ui.SeverityError)
		h.redirect(w, r, "/admin")
		return
	}

	if _, err := h.state.Mutate(ctx, sid, func(s *ui.State) {
		s.OpenEdit(ui.EditTarget{Kind: kind, ID: id, Record: rec})
	}); err != nil {
		h.logger.Error("failed to stage edit target", "error", err)
	}
	h.redirect(w, r, "/admin")
}

// SubmitEdit PUTs the merged field set for the pending edit target.
func (h *Handler) SubmitEdit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionID(ctx)
	sess := h.gate.Require(ctx, sid)
	if sess == nil {
		h.redirect(w, r, "/admin")
		return
	}

	state, err := h.state.Get(ctx, sid)
	if err != nil {
		h.logger.Error("failed to load ui state", "error", err)
		h.redirect(w, r, "/admin")
		return
	}
	target := state.PendingEdit
	if target == nil {
		h.notify(ctx, sid, "No item is being edited", ui.SeverityError)
		h.redirect(w, r, "/admin")
		return
	}
	if state.InFlight {
		h.notify(ctx, sid, "An update is already in progress", ui.SeverityError)
		h.redirect(w, r, "/admin")
		return
	}

	if err := r.ParseForm(); err != nil {
		h.notify(ctx, sid, "Invalid form submission", ui.SeverityError)
		h.redirect(w, r, "/admin")
		return
	}
	fields, err := parseEditForm(target.Kind, r.PostForm, target.Record)
	if err != nil {
		// Validation failure: modal stays open with the pending target.
		h.notify(ctx, sid, err.Error(), ui.SeverityError)
		h.redirect(w, r, "/admin")
		return
	}

	h.setInFlight(ctx, sid, true)
	_, err = h.api.Update(ctx, h.auth(r, sess), target.Kind, target.ID, fields)
	switch {
	case err == nil:
		if _, err := h.state.Mutate(ctx, sid, func(s *ui.State) {
			s.InFlight = false
			s.CloseEdit()
			s.Notify("Item updated successfully!", ui.SeveritySuccess, h.state.Now(), h.state.NoticeTTL())
		}); err != nil {
			h.logger.Error("failed to update ui state", "error", err)
		}
		h.redirect(w, r, "/admin/"+string(target.Kind))
	case pharmacy.IsUnauthorized(err):
		h.expireSession(ctx, sid)
		h.setInFlight(ctx, sid, false)
		h.notify(ctx, sid, "Failed to update item: Unauthorized. Please login again.", ui.SeverityError)
		h.redirect(w, r, "/admin")
	default:
		h.logger.Warn("update failed", "kind", target.Kind, "id", target.ID, "error", err)
		h.setInFlight(ctx, sid, false)
		h.notify(ctx, sid, "Failed to update item: Update failed", ui.SeverityError)
		h.redirect(w, r, "/admin")
	}
}

// OpenDelete stages the pending delete target and opens the confirm
// modal.
func (h *Handler) OpenDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionID(ctx)
	kind := pharmacy.Kind(chi.URLParam(r, "kind"))
	id := chi.URLParam(r, "id")
	if !kind.Valid() || id == "" {
		http.NotFound(w, r)
		return
	}
	if h.gate.Require(ctx, sid) == nil {
		h.redirect(w, r, "/admin")
		return
	}
	if _, err := h.state.Mutate(ctx, sid, func(s *ui.State) {
		s.OpenDelete(ui.DeleteTarget{Kind: kind, ID: id})
	}); err != nil {
		h.logger.Error("failed to stage delete target", "error", err)
	}
	h.redirect(w, r, "/admin")
}

// ConfirmDelete issues the DELETE for the pending target. With no pending
// target it is a no-op: no upstream call is made.
func (h *Handler) ConfirmDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sid := middleware.SessionID(ctx)

	state, err := h.state.Get(ctx, sid)
	if err != nil {
		h.logger.Error("failed to load ui state", "error", err)
		h.redirect(w, r, "/admin")
		return
	}
	target := state.PendingDelete
	if target == nil {
		h.redirect(w, r, "/admin")
		return
	}
	if state.InFlight {
		h.notify(ctx, sid, "A delete is already in progress", ui.SeverityError)
		h.redirect(w, r, "/admin")
		return
	}

	sess := h.gate.Require(ctx, sid)
	if sess == nil {
		h.redirect(w, r, "/admin")
		return
	}

	h.setInFlight(ctx, sid, true)
	err = h.api.Delete(ctx, h.auth(r, sess), target.Kind, target.ID)
	switch {
	case err == nil:
		if _, err := h.state.Mutate(ctx, sid, func(s *ui.State) {
			s.InFlight = false
			s.CloseDelete()
			s.Notify("Item deleted successfully!", ui.SeveritySuccess, h.state.Now(), h.state.NoticeTTL())
		}); err != nil {
			h.logger.Error("failed to update ui state", "error", err)
		}
		h.redirect(w, r, "/admin/"+string(target.Kind))
	case pharmacy.IsUnauthorized(err):
		h.expireSession(ctx, sid)
		h.setInFlight(ctx, sid, false)
		h.notify(ctx, sid, "Failed to delete item: Unauthorized. Please login again.", ui.SeverityError)
		h.redirect(w, r, "/admin")
	default:
		h.logger.Warn("delete failed", "kind", target.Kind, "id", target.ID, "error", err)
		h.setInFlight(ctx, sid, false)
		h.notify(ctx, sid, "Failed to delete item: Delete failed", ui.SeverityError)
		h.redirect(w, r, "/admin")
	}
}

func (h *Handler) render(w http.ResponseWriter, r *http.Request, search string) {
	ctx := r.Context()
	sid := middleware.SessionID(ctx)

	sess, err := h.sessions.Get(ctx, sid)
	if err != nil {
		h.logger.Error("session lookup failed", "error", err)
		sess = &session.Session{}
	}
	state, err := h.state.Get(ctx, sid)
	if err != nil {
		h.logger.Error("ui state lookup failed", "error", err)
		state = ui.NewState()
	}

	p := page{
		Authenticated: sess.Authenticated(),
		Username:      sess.Username,
		State:         state,
		Notice:        state.ActiveNotice(h.state.Now()),
		Search:        search,
	}

	if p.Authenticated {
		switch state.ActiveTab {
		case pharmacy.KindDoctors:
			p.Doctors, err = h.api.ListDoctors(ctx, search)
		case pharmacy.KindAppointments:
			p.Appointments, err = h.api.ListAppointments(ctx, search)
		default:
			p.Medicines, err = h.api.ListMedicines(ctx, search)
		}
		if err != nil {
			h.logger.Warn("failed to load collection", "kind", state.ActiveTab, "error", err)
			p.LoadError = true
			p.Notice = h.loadFailureNotice(ctx, sid, state)
		}
	}

	if state.EditModalOpen && state.PendingEdit != nil {
		p.EditTitle = editTitle(state.PendingEdit.Kind, state.PendingEdit.Record)
		p.EditFields = editFields(state.PendingEdit.Kind, state.PendingEdit.Record)
	}

	if snap, err := metrics.Snapshot(h.gatherer); err == nil {
		p.Stats = snap
	}

	h.metrics.ObservePageRender("admin")
	h.renderer.HTML(w, http.StatusOK, "admin.html", p)
}

// loadFailureNotice stages and returns the load-error notification so the
// page being rendered shows it immediately.
func (h *Handler) loadFailureNotice(ctx context.Context, sid string, state *ui.State) *ui.Notice {
	message := "Failed to load " + string(state.ActiveTab)
	if err := h.state.Notify(ctx, sid, message, ui.SeverityError); err != nil {
		h.logger.Error("failed to stage notification", "error", err)
	}
	return &ui.Notice{Message: message, Severity: ui.SeverityError, ExpiresAt: h.state.Now().Add(h.state.NoticeTTL())}
}

func (h *Handler) establishSession(ctx context.Context, sid, username, token, message string) {
	if err := h.sessions.Save(ctx, sid, &session.Session{
		Token:     token,
		Username:  username,
		CreatedAt: h.state.Now(),
	}); err != nil {
		h.logger.Error("failed to save session", "error", err)
		h.notify(ctx, sid, "Login succeeded but the session could not be saved", ui.SeverityError)
		return
	}
	if _, err := h.state.Mutate(ctx, sid, func(s *ui.State) {
		s.CloseAuth()
		s.Notify(message, ui.SeveritySuccess, h.state.Now(), h.state.NoticeTTL())
	}); err != nil {
		h.logger.Error("failed to update ui state", "error", err)
	}
}

// expireSession drops the stored token after a 401 so the next guarded
// action re-prompts login.
func (h *Handler) expireSession(ctx context.Context, sid string) {
	if err := h.sessions.Clear(ctx, sid); err != nil {
		h.logger.Error("failed to clear session after 401", "error", err)
	}
}

func (h *Handler) setInFlight(ctx context.Context, sid string, v bool) {
	if _, err := h.state.Mutate(ctx, sid, func(s *ui.State) { s.InFlight = v }); err != nil {
		h.logger.Error("failed to set in-flight latch", "error", err)
	}
}

func (h *Handler) notify(ctx context.Context, sid, message string, severity ui.Severity) {
	if err := h.state.Notify(ctx, sid, message, severity); err != nil {
		h.logger.Error("failed to stage notification", "error", err)
	}
}

// auth builds the upstream credentials: session token plus the
// anti-forgery value echoed from the upstream cookie, when present.
func (h *Handler) auth(r *http.Request, sess *session.Session) pharmacy.Auth {
	a := pharmacy.Auth{Token: sess.Token}
	if cookie, err := r.Cookie(h.csrfCookieName); err == nil {
		a.CSRF = cookie.Value
	}
	return a
}

func (h *Handler) redirect(w http.ResponseWriter, r *http.Request, location string) {
	http.Redirect(w, r, location, http.StatusSeeOther)
}
