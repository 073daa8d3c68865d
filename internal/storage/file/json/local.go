package json

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/drakos74/coin-ensemble/internal/storage"
)

// LocalStorage keeps the json encoded values in memory.
type LocalStorage struct {
	files map[storage.Key][]byte
	mutex *sync.RWMutex
}

// NewLocalStorage creates a new in-memory storage.
func NewLocalStorage() *LocalStorage {
	return &LocalStorage{
		files: make(map[storage.Key][]byte),
		mutex: new(sync.RWMutex),
	}
}

func (l *LocalStorage) Store(k storage.Key, value interface{}) error {
	l.mutex.Lock()
	defer l.mutex.Unlock()

	bb, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not marshal value: %w", err)
	}
	l.files[k] = bb
	return nil
}

func (l *LocalStorage) Load(k storage.Key, value interface{}) error {
	l.mutex.RLock()
	defer l.mutex.RUnlock()

	bb, ok := l.files[k]
	if !ok {
		return fmt.Errorf("could not find key '%+v': %w", k, storage.NotFoundErr)
	}
	if err := json.Unmarshal(bb, value); err != nil {
		return fmt.Errorf("could not unmarshal value: %v: %w", err, storage.CouldNotLoadErr)
	}
	return nil
}
