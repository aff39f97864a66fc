package cart

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/pkg/errors"
)

// StorageKey names the persisted cart, mirroring the browser storage key.
const StorageKey = "basketCart"

type Store interface {
	Load() ([]Item, error)
	Save(items []Item) error
}

// FileStore keeps the serialized line-item list in a single JSON file.
type FileStore struct {
	Path string
}

// NewFileStore places the cart file under dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Path: filepath.Join(dir, StorageKey+".json")}
}

func (s *FileStore) Load() ([]Item, error) {
	b, err := os.ReadFile(s.Path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read cart %s", s.Path)
	}
	var items []Item
	if len(b) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(b, &items); err != nil {
		return nil, errors.Wrapf(err, "decode cart %s", s.Path)
	}
	return items, nil
}

// Save replaces the file atomically so a crash never leaves half a cart.
func (s *FileStore) Save(items []Item) error {
	if items == nil {
		items = []Item{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(err, "encode cart")
	}
	if err := os.MkdirAll(filepath.Dir(s.Path), 0o755); err != nil {
		return errors.Wrap(err, "create cart dir")
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.Path), StorageKey+"-*.tmp")
	if err != nil {
		return errors.Wrap(err, "create temp cart")
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(b); err != nil {
		tmp.Close()
		return errors.Wrap(err, "write temp cart")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close temp cart")
	}
	return errors.Wrap(os.Rename(tmp.Name(), s.Path), "replace cart")
}

// MemStore keeps the cart in memory only.
type MemStore struct {
	Items []Item
	Saves int
}

func (s *MemStore) Load() ([]Item, error) {
	return append([]Item(nil), s.Items...), nil
}

func (s *MemStore) Save(items []Item) error {
	s.Items = append([]Item(nil), items...)
	s.Saves++
	return nil
}
