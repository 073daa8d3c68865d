package json

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/drakos74/coin-ensemble/internal/storage"
	"github.com/rs/zerolog/log"
)

// BlobStorage stores every key as a json file.
type BlobStorage struct {
	path  string
	table string
	shard string
	debug bool
}

// BlobShard creates a file storage under the root directory for every shard of the table.
func BlobShard(root, table string) storage.Shard {
	return func(shard string) (storage.Persistence, error) {
		if shard == "" {
			return nil, fmt.Errorf("missing shard for table '%s'", table)
		}
		return NewJsonBlob(table, shard, false).WithPath(root), nil
	}
}

func (s BlobStorage) Store(k storage.Key, value interface{}) error {
	p := filepath.Join(s.path, s.table, s.shard)
	err := Save(p, k.Path(), value)
	if err == nil && s.debug {
		log.Debug().Str("path", p).Str("file", k.Path()).Msg("stored json file")
	}
	return err
}

func (s BlobStorage) Load(k storage.Key, value interface{}) error {
	return Load(filepath.Join(s.path, s.table, s.shard), k.Path(), value)
}

// NewJsonBlob creates a new file storage under the default directory.
// table has the same schema
// shard is a logical split
func NewJsonBlob(table, shard string, debug bool) *BlobStorage {
	return &BlobStorage{
		table: table,
		shard: shard,
		path:  storage.DefaultDir,
		debug: debug,
	}
}

// WithPath sets the root directory of the storage.
func (s *BlobStorage) WithPath(path string) *BlobStorage {
	s.path = path
	return s
}

// Save saves the given json struct into the given path with the provided filename.
// The file is written to a temporary file first, so a reader never sees a partial value.
func Save(filePath string, fileName string, value interface{}) error {
	info, err := os.Stat(filePath)
	if err != nil {
		err := os.MkdirAll(filePath, os.ModePerm)
		if err != nil {
			return fmt.Errorf("could not make dir: %s: %w", filePath, err)
		}
	} else if !info.IsDir() {
		return fmt.Errorf("path given is not a directory: %s", filePath)
	}

	b, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("could not encode '%s': %w", fileName, err)
	}

	p := filepath.Join(filePath, fmt.Sprintf("%s.json", fileName))
	tmp := p + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return fmt.Errorf("could not write file '%s': %w", tmp, err)
	}
	if err := os.Rename(tmp, p); err != nil {
		return fmt.Errorf("could not replace file '%s': %w", p, err)
	}
	return nil
}

// Load loads the payload from the given filePath and fileName.
func Load(filePath string, fileName string, value interface{}) error {
	p := filepath.Join(filePath, fmt.Sprintf("%s.json", fileName))
	data, err := os.ReadFile(p)
	if errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("could not find file '%s': %w", p, storage.NotFoundErr)
	} else if err != nil {
		return fmt.Errorf("could not read file '%s': %v: %w", p, err, storage.CouldNotLoadErr)
	}

	if err := json.Unmarshal(data, value); err != nil {
		return fmt.Errorf("could not unmarshal '%s': %v: %w", fileName, err, storage.CouldNotLoadErr)
	}
	return nil
}
