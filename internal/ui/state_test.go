package ui

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/medicarehq/pharmacy-web/internal/pharmacy"
)

func TestState_SinglePendingSlot(t *testing.T) {
	s := NewState()

	s.OpenEdit(EditTarget{Kind: pharmacy.KindMedicines, ID: "1", Record: pharmacy.Record{"name": "Aspirin"}})
	if s.PendingEdit == nil || !s.EditModalOpen {
		t.Fatal("edit target should be staged")
	}

	// Staging a delete displaces the pending edit: one slot for the whole UI.
	s.OpenDelete(DeleteTarget{Kind: pharmacy.KindDoctors, ID: "2"})
	if s.PendingEdit != nil || s.EditModalOpen {
		t.Fatal("pending edit must be displaced by a new delete target")
	}
	if s.PendingDelete == nil || s.PendingDelete.ID != "2" {
		t.Fatalf("pending delete = %+v", s.PendingDelete)
	}

	s.OpenEdit(EditTarget{Kind: pharmacy.KindMedicines, ID: "3"})
	if s.PendingDelete != nil || s.DeleteModalOpen {
		t.Fatal("pending delete must be displaced by a new edit target")
	}
}

func TestState_CloseClearsTargets(t *testing.T) {
	s := NewState()
	s.OpenEdit(EditTarget{Kind: pharmacy.KindMedicines, ID: "1"})
	s.CloseEdit()
	if s.PendingEdit != nil || s.EditModalOpen {
		t.Fatal("CloseEdit must clear the pending target")
	}

	s.OpenDelete(DeleteTarget{Kind: pharmacy.KindMedicines, ID: "1"})
	s.CloseAll()
	if s.PendingDelete != nil || s.DeleteModalOpen || s.AuthModalOpen {
		t.Fatal("CloseAll must clear every modal and target")
	}
}

func TestState_AuthTabs(t *testing.T) {
	s := NewState()
	s.OpenAuth(AuthTabRegister)
	if !s.AuthModalOpen || s.AuthTab != AuthTabRegister {
		t.Fatalf("auth modal = %v tab = %s", s.AuthModalOpen, s.AuthTab)
	}
	s.SwitchAuthTab(AuthTabLogin)
	if s.AuthTab != AuthTabLogin {
		t.Fatalf("tab = %s, want login", s.AuthTab)
	}
	s.SwitchAuthTab(AuthTab("bogus"))
	if s.AuthTab != AuthTabLogin {
		t.Fatal("unknown tab must be ignored")
	}
	s.CloseAuth()
	if s.AuthModalOpen {
		t.Fatal("auth modal should be closed")
	}
}

func TestState_NoticeExpiryAndPreemption(t *testing.T) {
	s := NewState()
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	s.Notify("first", SeverityInfo, base, 3*time.Second)
	if n := s.ActiveNotice(base.Add(2 * time.Second)); n == nil || n.Message != "first" {
		t.Fatalf("notice at +2s = %+v", n)
	}
	if n := s.ActiveNotice(base.Add(4 * time.Second)); n != nil {
		t.Fatalf("notice at +4s should be expired, got %+v", n)
	}

	// A second notify preempts the first rather than queuing.
	s.Notify("first", SeverityInfo, base, 3*time.Second)
	s.Notify("second", SeverityError, base.Add(time.Second), 3*time.Second)
	n := s.ActiveNotice(base.Add(2 * time.Second))
	if n == nil || n.Message != "second" || n.Severity != SeverityError {
		t.Fatalf("notice after preemption = %+v", n)
	}
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewStore(client, 3*time.Second)
}

func TestStore_RoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	state, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	require.Equal(t, pharmacy.KindMedicines, state.ActiveTab)

	state.SwitchTab(pharmacy.KindDoctors)
	state.OpenEdit(EditTarget{Kind: pharmacy.KindDoctors, ID: "9", Record: pharmacy.Record{"name": "Strange"}})
	require.NoError(t, store.Save(ctx, "sid-1", state))

	got, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	require.Equal(t, pharmacy.KindDoctors, got.ActiveTab)
	require.NotNil(t, got.PendingEdit)
	require.Equal(t, "9", got.PendingEdit.ID)
	require.Equal(t, "Strange", got.PendingEdit.Record["name"])
}

func TestStore_PromptLogin(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.PromptLogin(ctx, "sid-1", "You must login to edit or delete items"))

	state, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	require.True(t, state.AuthModalOpen)
	require.Equal(t, AuthTabLogin, state.AuthTab)

	notice := state.ActiveNotice(store.Now())
	require.NotNil(t, notice)
	require.Equal(t, SeverityError, notice.Severity)
}

func TestStore_MutateIsolation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	_, err := store.Mutate(ctx, "a", func(s *State) { s.SwitchTab(pharmacy.KindAppointments) })
	require.NoError(t, err)

	other, err := store.Get(ctx, "b")
	require.NoError(t, err)
	require.Equal(t, pharmacy.KindMedicines, other.ActiveTab, "sessions must not share state")
}
