package collab

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"collab-service/internal/model"
)

func TestSweep_CursorRefreshWithinWindowSurvives(t *testing.T) {
	s, ft, clk, room := clockedSession(t)
	userID := uuid.New()

	// t=0: first position
	ft.deliver(model.CursorEvent{Room: room, Signal: model.CursorSignal{UserID: userID, X: 10, Y: 20}})

	// t=29s: refreshed just inside the 30s window
	clk.Advance(29 * time.Second)
	ft.deliver(model.CursorEvent{Room: room, Signal: model.CursorSignal{UserID: userID, X: 15, Y: 25}})

	// t=35s: the refresh reset the clock, so the entry stays
	clk.Advance(6 * time.Second)
	pruned := s.Sweep()

	assert.Zero(t, pruned)
	cursors := s.Cursors()
	require.Len(t, cursors, 1)
	assert.Equal(t, 15.0, cursors[0].X)
	assert.Equal(t, 25.0, cursors[0].Y)
}

func TestSweep_StaleCursorEvicted(t *testing.T) {
	s, ft, clk, room := clockedSession(t)
	stale := uuid.New()
	fresh := uuid.New()

	ft.deliver(model.CursorEvent{Room: room, Signal: model.CursorSignal{UserID: stale, X: 1, Y: 1}})
	clk.Advance(20 * time.Second)
	ft.deliver(model.CursorEvent{Room: room, Signal: model.CursorSignal{UserID: fresh, X: 2, Y: 2}})
	clk.Advance(11 * time.Second)

	pruned := s.Sweep()

	assert.Equal(t, 1, pruned)
	cursors := s.Cursors()
	require.Len(t, cursors, 1)
	assert.Equal(t, fresh, cursors[0].UserID)
}

func TestSweep_EditingUsesItsOwnWindow(t *testing.T) {
	s, ft, clk, room := clockedSession(t)
	userID := uuid.New()

	ft.deliver(model.EditingEvent{Room: room, Signal: model.EditingSignal{
		UserID: userID, IsEditing: true, EntityID: "b1", EntityType: "board",
	}})

	// t=59s: still inside the 60s editing window
	clk.Advance(59 * time.Second)
	assert.Zero(t, s.Sweep())
	assert.Len(t, s.EditingStatuses(), 1)

	// t=61s: evicted without any explicit stop signal
	clk.Advance(2 * time.Second)
	assert.Equal(t, 1, s.Sweep())
	assert.Empty(t, s.EditingStatuses())
}

func TestSweep_ActivityPersistsWithoutTimeout(t *testing.T) {
	s, ft, clk, room := clockedSession(t)

	ft.deliver(model.ActivityEvent{Room: room, Signal: model.ActivitySignal{
		UserID: uuid.New(), Action: "updated board",
	}})

	clk.Advance(24 * time.Hour)
	assert.Zero(t, s.Sweep())
	assert.Len(t, s.Activities(), 1)
}

func TestSweep_ActivityEvictedWhenTimeoutConfigured(t *testing.T) {
	ft := newFakeTransport()
	clk := &fakeClock{now: time.Now()}
	cfg := testConfig()
	cfg.Clock = clk.Now
	cfg.ActivityTTL = 5 * time.Minute
	s := NewSession(ft, model.PresenceRecord{ID: uuid.New()}, cfg, zap.NewNop())
	require.NoError(t, s.Start(context.Background(), "token"))
	defer s.Dispose()
	room := model.ProjectRoom(uuid.New())
	s.JoinPrimary(room)

	ft.deliver(model.ActivityEvent{Room: room, Signal: model.ActivitySignal{
		UserID: uuid.New(), Action: "created note",
	}})

	clk.Advance(6 * time.Minute)
	assert.Equal(t, 1, s.Sweep())
	assert.Empty(t, s.Activities())
}

func TestSweep_NoOpDoesNotFireUpdate(t *testing.T) {
	s, ft, clk, room := clockedSession(t)
	ft.deliver(model.CursorEvent{Room: room, Signal: model.CursorSignal{UserID: uuid.New(), X: 1, Y: 1}})

	updates := 0
	s.SetOnUpdate(func() { updates++ })

	clk.Advance(5 * time.Second)
	assert.Zero(t, s.Sweep())
	assert.Zero(t, updates, "a sweep that prunes nothing must not fire the callback")

	clk.Advance(30 * time.Second)
	assert.Equal(t, 1, s.Sweep())
	assert.Equal(t, 1, updates)
}
