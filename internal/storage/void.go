package storage

import "fmt"

// VoidStorage keeps nothing, every load misses.
// The engine uses it when no storage directory is configured.
type VoidStorage struct{}

// NewVoidStorage creates a new noop storage.
func NewVoidStorage() *VoidStorage {
	return new(VoidStorage)
}

func (VoidStorage) Store(Key, interface{}) error {
	return nil
}

func (VoidStorage) Load(k Key, _ interface{}) error {
	return fmt.Errorf("void storage has no '%s': %w", k.Path(), NotFoundErr)
}

// VoidShard creates void storage for every shard.
func VoidShard() Shard {
	return func(string) (Persistence, error) {
		return NewVoidStorage(), nil
	}
}
