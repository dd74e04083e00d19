package model

// Change event tables and operations pushed to realtime subscribers.
const (
	EventTableFolder = "folder"
	EventTableFile   = "file"

	EventOpInsert = "insert"
	EventOpUpdate = "update"
	EventOpDelete = "delete"
)

// ChangeEvent is one namespace mutation fanned out to an owner's live
// clients. Row carries the mutated Folder or File; for deletes only the
// id fields are guaranteed to be set. Delivery is best effort: clients
// must be able to rebuild correct state with a full refresh.
type ChangeEvent struct {
	Table   string `json:"table"`
	Op      string `json:"operation"`
	OwnerID string `json:"-"`
	Row     any    `json:"row"`
}
