package state

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// StorageKey names the single blob that holds the whole state.
const StorageKey = "floor-warden-app"

type Storage interface {
	Load() (Partial, error)
	Save(State) error
}

// FileStorage keeps the blob at Dir/<StorageKey>.json.
type FileStorage struct {
	Dir string
}

func (f FileStorage) path() string {
	return filepath.Join(f.Dir, StorageKey+".json")
}

// Load returns an empty Partial when nothing has been saved yet.
func (f FileStorage) Load() (Partial, error) {
	var p Partial
	b, err := os.ReadFile(f.path())
	if os.IsNotExist(err) {
		return p, nil
	}
	if err != nil {
		return p, errors.Wrap(err, "read state")
	}
	if err := json.Unmarshal(b, &p); err != nil {
		return Partial{}, errors.Wrap(err, "decode state")
	}
	return p, nil
}

// Save overwrites the blob wholesale.
func (f FileStorage) Save(s State) error {
	b, err := json.Marshal(s)
	if err != nil {
		return errors.Wrap(err, "encode state")
	}
	if err := os.MkdirAll(f.Dir, 0o700); err != nil {
		return errors.Wrap(err, "create state dir")
	}
	tmp := f.path() + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return errors.Wrap(err, "write state")
	}
	return errors.Wrap(os.Rename(tmp, f.path()), "replace state")
}
