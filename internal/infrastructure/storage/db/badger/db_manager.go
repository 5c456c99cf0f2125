package dbbadger

import (
	"fmt"
	"path/filepath"

	"github.com/dgraph-io/badger/v3"
	"github.com/timshannon/badgerhold/v4"
)

// DbManager holds the badgerhold store backing every repository.
type DbManager struct {
	Store *badgerhold.Store
}

// NewDbManager opens (or creates if not exists) the badger store on disk. It
// expects a base data dir and an optional logger.
func NewDbManager(baseDbDir string, logger badger.Logger) (*DbManager, error) {
	store, err := createDb(filepath.Join(baseDbDir, "main"), logger)
	if err != nil {
		return nil, fmt.Errorf("opening main db: %w", err)
	}

	return &DbManager{Store: store}, nil
}

// Close releases the underlying store.
func (d *DbManager) Close() error {
	return d.Store.Close()
}

func createDb(dbDir string, logger badger.Logger) (*badgerhold.Store, error) {
	opts := badger.DefaultOptions(dbDir)
	opts.Logger = logger

	return badgerhold.Open(badgerhold.Options{
		Encoder:          badgerhold.DefaultEncode,
		Decoder:          badgerhold.DefaultDecode,
		SequenceBandwith: 100,
		Options:          opts,
	})
}
