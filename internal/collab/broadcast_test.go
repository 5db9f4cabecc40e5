package collab

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"collab-service/internal/model"
)

func TestPublishCursor_CarriesLocalIdentity(t *testing.T) {
	s, ft, self := startedSession(t)
	room := model.ProjectRoom(uuid.New())
	s.JoinPrimary(room)

	s.PublishCursor(120.5, 88.25, "board")

	emitted := ft.emittedEvents()
	ev, ok := emitted[len(emitted)-1].(model.CursorEvent)
	require.True(t, ok)
	assert.Equal(t, room, ev.Room)
	assert.Equal(t, self.ID, ev.Signal.UserID)
	assert.Equal(t, self.Name, ev.Signal.Username)
	assert.Equal(t, 120.5, ev.Signal.X)
	assert.Equal(t, 88.25, ev.Signal.Y)
	assert.Equal(t, "board", ev.Signal.Page)

	// Publishing never writes the local store; the echo does that
	assert.Empty(t, s.Cursors())
}

func TestPublishEditingStatus(t *testing.T) {
	s, ft, self := startedSession(t)
	s.JoinPrimary(model.ProjectRoom(uuid.New()))

	s.PublishEditingStatus(true, "b1", "board")

	emitted := ft.emittedEvents()
	ev, ok := emitted[len(emitted)-1].(model.EditingEvent)
	require.True(t, ok)
	assert.Equal(t, self.ID, ev.Signal.UserID)
	assert.True(t, ev.Signal.IsEditing)
	assert.Equal(t, "b1", ev.Signal.EntityID)
	assert.Equal(t, "board", ev.Signal.EntityType)
}

func TestPublishActivity(t *testing.T) {
	s, ft, self := startedSession(t)
	s.JoinPrimary(model.ProjectRoom(uuid.New()))

	s.PublishActivity("updated board", "b1", "board")

	emitted := ft.emittedEvents()
	ev, ok := emitted[len(emitted)-1].(model.ActivityEvent)
	require.True(t, ok)
	assert.Equal(t, self.ID, ev.Signal.UserID)
	assert.Equal(t, "updated board", ev.Signal.Action)
}

func TestPublish_NoOpWithoutRoomOrWhenDisabled(t *testing.T) {
	s, ft, _ := startedSession(t)

	// No primary room yet
	s.PublishCursor(1, 2, "")
	assert.Empty(t, ft.emittedEvents())

	s.JoinPrimary(model.ProjectRoom(uuid.New()))
	baseline := len(ft.emittedEvents())

	// Collaboration off
	s.SetCollaborationEnabled(false)
	s.PublishCursor(1, 2, "")
	s.PublishEditingStatus(true, "b1", "board")
	s.PublishActivity("x", "b1", "board")
	assert.Len(t, ft.emittedEvents(), baseline)
}

func TestUsersEditingEntity_JoinsAgainstRoster(t *testing.T) {
	s, ft, _ := startedSession(t)
	room := model.ProjectRoom(uuid.New())
	s.JoinPrimary(room)

	bob := model.PresenceRecord{ID: uuid.New(), Name: "Bob"}
	carol := model.PresenceRecord{ID: uuid.New(), Name: "Carol"}
	ghost := uuid.New()
	ft.deliver(model.RosterEvent{Room: room, Users: []model.PresenceRecord{bob, carol}})

	// Bob edits the target entity, Carol edits another, and a user absent
	// from the roster edits the target too
	ft.deliver(model.EditingEvent{Room: room, Signal: model.EditingSignal{
		UserID: bob.ID, IsEditing: true, EntityID: "b1", EntityType: "board",
	}})
	ft.deliver(model.EditingEvent{Room: room, Signal: model.EditingSignal{
		UserID: carol.ID, IsEditing: true, EntityID: "b2", EntityType: "board",
	}})
	ft.deliver(model.EditingEvent{Room: room, Signal: model.EditingSignal{
		UserID: ghost, IsEditing: true, EntityID: "b1", EntityType: "board",
	}})

	editors := s.UsersEditingEntity("b1", "board")

	require.Len(t, editors, 1)
	assert.Equal(t, bob.ID, editors[0].ID)
	assert.Equal(t, "Bob", editors[0].Name)
}

func TestUsersEditingEntity_StoppedEditorsExcluded(t *testing.T) {
	s, ft, _ := startedSession(t)
	room := model.ProjectRoom(uuid.New())
	s.JoinPrimary(room)

	bob := model.PresenceRecord{ID: uuid.New(), Name: "Bob"}
	ft.deliver(model.RosterEvent{Room: room, Users: []model.PresenceRecord{bob}})
	ft.deliver(model.EditingEvent{Room: room, Signal: model.EditingSignal{
		UserID: bob.ID, IsEditing: true, EntityID: "b1", EntityType: "board",
	}})
	require.Len(t, s.UsersEditingEntity("b1", "board"), 1)

	ft.deliver(model.EditingEvent{Room: room, Signal: model.EditingSignal{
		UserID: bob.ID, IsEditing: false, EntityID: "b1", EntityType: "board",
	}})

	assert.Empty(t, s.UsersEditingEntity("b1", "board"))
}
