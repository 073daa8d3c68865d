package storage

import (
	"errors"
	"fmt"
)

const (
	// WeightsLabel is the label of the strategy weights snapshot.
	WeightsLabel = "weights"
)

var (
	// DefaultDir is the root directory of the file storage.
	DefaultDir = "ensemble-storage"
)

// Shard creates a new storage implementation for the given shard.
type Shard func(shard string) (Persistence, error)

var (
	NotFoundErr     = errors.New("not found")
	CouldNotLoadErr = errors.New("could not load")
)

// Key is the storage key of a stored value.
type Key struct {
	Name  string `json:"name"`
	Label string `json:"label"`
}

// Path returns the file name for the key.
func (k Key) Path() string {
	return fmt.Sprintf("%s_%s", k.Name, k.Label)
}

// Persistence stores and loads values by key.
type Persistence interface {
	Store(k Key, value interface{}) error
	Load(k Key, value interface{}) error
}
