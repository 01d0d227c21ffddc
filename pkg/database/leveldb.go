package database

import (
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/storage"
)

// NewLevelDB opens (or creates) a LevelDB database in dbDir.
func NewLevelDB(dbDir string) (*leveldb.DB, error) {
	if dbDir == "" {
		return nil, fmt.Errorf("leveldb path cannot be empty")
	}
	db, err := leveldb.OpenFile(dbDir, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s: %w", dbDir, err)
	}
	return db, nil
}

// NewMemLevelDB opens a LevelDB database kept entirely in memory.
func NewMemLevelDB() (*leveldb.DB, error) {
	db, err := leveldb.Open(storage.NewMemStorage(), nil)
	if err != nil {
		return nil, fmt.Errorf("failed to open in-memory leveldb: %w", err)
	}
	return db, nil
}
