package realtime

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/orbitdrive/orbitdrive/internal/model"
)

func fileEvent(ownerID string, folderID *string) model.ChangeEvent {
	return model.ChangeEvent{
		Table:   model.EventTableFile,
		Op:      model.EventOpInsert,
		OwnerID: ownerID,
		Row:     &model.File{OwnerID: ownerID, FolderID: folderID},
	}
}

func TestHubFansOutToAllOwnerSubscribers(t *testing.T) {
	hub := NewHub()

	a := hub.Subscribe("alice")
	b := hub.Subscribe("alice")
	defer hub.Unsubscribe(a)
	defer hub.Unsubscribe(b)

	hub.Publish(fileEvent("alice", nil))

	evt := <-a.C
	assert.Equal(t, model.EventOpInsert, evt.Op)
	evt = <-b.C
	assert.Equal(t, model.EventOpInsert, evt.Op)
}

func TestHubIsolatesOwners(t *testing.T) {
	hub := NewHub()

	alice := hub.Subscribe("alice")
	bob := hub.Subscribe("bob")
	defer hub.Unsubscribe(alice)
	defer hub.Unsubscribe(bob)

	hub.Publish(fileEvent("alice", nil))

	require.Len(t, alice.C, 1)
	assert.Empty(t, bob.C)
}

func TestHubScopeFiltering(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe("alice")
	defer hub.Unsubscribe(sub)

	folderID := "folder-1"
	sub.SetScope(&folderID)

	hub.Publish(fileEvent("alice", &folderID))
	other := "folder-2"
	hub.Publish(fileEvent("alice", &other))
	hub.Publish(fileEvent("alice", nil))

	// Only the scoped folder's event got through
	require.Len(t, sub.C, 1)
	evt := <-sub.C
	row := evt.Row.(*model.File)
	assert.Equal(t, folderID, *row.FolderID)
}

func TestHubRootScope(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe("alice")
	defer hub.Unsubscribe(sub)

	root := ""
	sub.SetScope(&root)

	folderID := "folder-1"
	hub.Publish(fileEvent("alice", &folderID))
	hub.Publish(fileEvent("alice", nil))

	require.Len(t, sub.C, 1)
	evt := <-sub.C
	row := evt.Row.(*model.File)
	assert.Nil(t, row.FolderID)
}

func TestHubClearingScopeRestoresFullDelivery(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe("alice")
	defer hub.Unsubscribe(sub)

	folderID := "folder-1"
	sub.SetScope(&folderID)
	sub.SetScope(nil)

	other := "folder-2"
	hub.Publish(fileEvent("alice", &other))
	hub.Publish(fileEvent("alice", nil))

	assert.Len(t, sub.C, 2)
}

// A subscriber that stops draining must never block Publish.
func TestHubDropsEventsForLaggingSubscriber(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe("alice")
	defer hub.Unsubscribe(sub)

	for i := 0; i < subscriberBuffer+10; i++ {
		hub.Publish(fileEvent("alice", nil))
	}

	assert.Len(t, sub.C, subscriberBuffer)
}

func TestHubUnsubscribeClosesChannel(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe("alice")
	assert.Equal(t, 1, hub.SubscriberCount("alice"))

	hub.Unsubscribe(sub)
	assert.Equal(t, 0, hub.SubscriberCount("alice"))

	_, open := <-sub.C
	assert.False(t, open)

	// Publishing after unsubscribe is a no-op
	hub.Publish(fileEvent("alice", nil))

	// Double unsubscribe must not panic
	hub.Unsubscribe(sub)
}

func TestHubFolderEventsScopeByParent(t *testing.T) {
	hub := NewHub()

	sub := hub.Subscribe("alice")
	defer hub.Unsubscribe(sub)

	parentID := "parent-1"
	sub.SetScope(&parentID)

	hub.Publish(model.ChangeEvent{
		Table:   model.EventTableFolder,
		Op:      model.EventOpInsert,
		OwnerID: "alice",
		Row:     &model.Folder{OwnerID: "alice", ParentID: &parentID},
	})
	hub.Publish(model.ChangeEvent{
		Table:   model.EventTableFolder,
		Op:      model.EventOpInsert,
		OwnerID: "alice",
		Row:     &model.Folder{OwnerID: "alice"},
	})

	assert.Len(t, sub.C, 1)
}
