// Package ui holds per-session dashboard state: modal visibility, the
// single pending edit/delete slot, and the transient notification. The
// original page kept this in ambient globals; here it is an explicit
// store handed to each handler.
package ui

import (
	"time"

	"github.com/medicarehq/pharmacy-web/internal/pharmacy"
)

// Severity classifies a notification.
type Severity string

const (
	SeverityInfo    Severity = "info"
	SeveritySuccess Severity = "success"
	SeverityError   Severity = "error"
)

// AuthTab names the active sub-tab of the auth modal.
type AuthTab string

const (
	AuthTabLogin    AuthTab = "login"
	AuthTabRegister AuthTab = "register"
)

// Notice is the single visible notification. A later Notify replaces it;
// nothing queues.
type Notice struct {
	Message   string    `json:"message"`
	Severity  Severity  `json:"severity"`
	ExpiresAt time.Time `json:"expires_at"`
}

// EditTarget is the record staged for editing.
type EditTarget struct {
	Kind   pharmacy.Kind   `json:"kind"`
	ID     string          `json:"id"`
	Record pharmacy.Record `json:"record"`
}

// DeleteTarget is the record staged for deletion.
type DeleteTarget struct {
	Kind pharmacy.Kind `json:"kind"`
	ID   string        `json:"id"`
}

// State is one browser session's UI state.
type State struct {
	ActiveTab pharmacy.Kind `json:"active_tab"`

	AuthModalOpen   bool    `json:"auth_modal_open"`
	AuthTab         AuthTab `json:"auth_tab"`
	EditModalOpen   bool    `json:"edit_modal_open"`
	DeleteModalOpen bool    `json:"delete_modal_open"`

	// Public booking modal (storefront).
	BookingModalOpen  bool   `json:"booking_modal_open"`
	BookingDoctorID   int64  `json:"booking_doctor_id,omitempty"`
	BookingDoctorName string `json:"booking_doctor_name,omitempty"`

	// One shared slot each, across the whole UI: staging a new target
	// replaces whatever was pending.
	PendingEdit   *EditTarget   `json:"pending_edit,omitempty"`
	PendingDelete *DeleteTarget `json:"pending_delete,omitempty"`

	// Latch set while an edit/delete submission is outstanding, so the
	// same action cannot be re-triggered mid-flight.
	InFlight bool `json:"in_flight"`

	Notice *Notice `json:"notice,omitempty"`
}

// NewState returns the initial dashboard state.
func NewState() *State {
	return &State{
		ActiveTab: pharmacy.KindMedicines,
		AuthTab:   AuthTabLogin,
	}
}

// Notify replaces the current notification, visible until now+ttl.
func (s *State) Notify(message string, severity Severity, now time.Time, ttl time.Duration) {
	s.Notice = &Notice{
		Message:   message,
		Severity:  severity,
		ExpiresAt: now.Add(ttl),
	}
}

// ActiveNotice returns the notification if it has not expired yet.
func (s *State) ActiveNotice(now time.Time) *Notice {
	if s.Notice == nil || now.After(s.Notice.ExpiresAt) {
		return nil
	}
	return s.Notice
}

// OpenAuth shows the auth modal on the given tab.
func (s *State) OpenAuth(tab AuthTab) {
	if tab != AuthTabRegister {
		tab = AuthTabLogin
	}
	s.AuthModalOpen = true
	s.AuthTab = tab
}

// CloseAuth hides the auth modal and resets its forms (the tab reverts to
// login, matching the reset inputs).
func (s *State) CloseAuth() {
	s.AuthModalOpen = false
	s.AuthTab = AuthTabLogin
}

// SwitchAuthTab activates one auth sub-tab; the tabs are mutually
// exclusive.
func (s *State) SwitchAuthTab(tab AuthTab) {
	if tab == AuthTabLogin || tab == AuthTabRegister {
		s.AuthTab = tab
	}
}

// OpenEdit stages a record for editing and shows the edit modal. Any
// pending delete is displaced: this is the single shared slot.
func (s *State) OpenEdit(target EditTarget) {
	s.PendingDelete = nil
	s.DeleteModalOpen = false
	s.PendingEdit = &target
	s.EditModalOpen = true
}

// CloseEdit hides the edit modal and clears the pending target.
func (s *State) CloseEdit() {
	s.EditModalOpen = false
	s.PendingEdit = nil
}

// OpenDelete stages a record for deletion and shows the confirm modal,
// displacing any pending edit.
func (s *State) OpenDelete(target DeleteTarget) {
	s.PendingEdit = nil
	s.EditModalOpen = false
	s.PendingDelete = &target
	s.DeleteModalOpen = true
}

// CloseDelete hides the confirm modal and clears the pending target.
func (s *State) CloseDelete() {
	s.DeleteModalOpen = false
	s.PendingDelete = nil
}

// OpenBooking shows the public booking modal for one doctor.
func (s *State) OpenBooking(doctorID int64, doctorName string) {
	s.BookingModalOpen = true
	s.BookingDoctorID = doctorID
	s.BookingDoctorName = doctorName
}

// CloseBooking hides the booking modal and clears its fields.
func (s *State) CloseBooking() {
	s.BookingModalOpen = false
	s.BookingDoctorID = 0
	s.BookingDoctorName = ""
}

// CloseAll is the backdrop click: every modal closes and pending targets
// clear.
func (s *State) CloseAll() {
	s.CloseAuth()
	s.CloseEdit()
	s.CloseDelete()
	s.CloseBooking()
}

// SwitchTab activates a dashboard resource tab.
func (s *State) SwitchTab(kind pharmacy.Kind) {
	if kind.Valid() {
		s.ActiveTab = kind
	}
}
