package framelib

import (
	"encoding/json"

	"github.com/inkframe/inkframe/pkg/logger"
)

// StateKey is the reserved settings-store key holding the cycling position.
const StateKey = "cycler"

// BlobStore is the external settings storage the cycling position is kept
// in. LoadBlob returns an error for absent keys; the adapter treats every
// load failure as "no prior state".
type BlobStore interface {
	LoadBlob(key string) ([]byte, error)
	SaveBlob(key string, data []byte) error
}

// State is the persisted cycling position: the photo currently on the
// display and the unconsumed remainder of the shuffle bag. It is the
// minimal record needed to resume a session after a restart without
// losing the no-repeat guarantee.
type State struct {
	Current      string   `json:"current"`
	PendingQueue []string `json:"pending_queue"`
}

// stateStore persists State as a JSON blob. Persistence is advisory: a
// crash between a mutation and its flush loses at most one step of
// position, and no failure here ever reaches a scheduling operation.
type stateStore struct {
	blobs BlobStore
	log   logger.Logger
}

// load reads the persisted position. Any failure (missing key, corrupt
// JSON, wrong types) yields a zero State with a logged warning, never an
// error: a broken resume file must not turn into a startup crash.
func (s stateStore) load() State {
	var st State
	data, err := s.blobs.LoadBlob(StateKey)
	if err != nil {
		s.log.Info("no saved cycling position, starting fresh")
		return State{}
	}
	if err := json.Unmarshal(data, &st); err != nil {
		s.log.Warning("saved cycling position is corrupt, starting fresh: %v", err)
		return State{}
	}
	return st
}

// save writes the position back. Errors are logged and swallowed; the
// in-memory transition that triggered the save has already happened.
func (s stateStore) save(st State) {
	data, err := json.Marshal(st)
	if err != nil {
		s.log.Error("failed to encode cycling position: %v", err)
		return
	}
	if err := s.blobs.SaveBlob(StateKey, data); err != nil {
		s.log.Warning("failed to save cycling position: %v", err)
	}
}
