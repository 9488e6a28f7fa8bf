// Package badger keeps the unsaved entry grid in an embedded badger database
// so an interrupted shift survives a restart.
package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/mamadbah2/dairy/internal/domain/models"
	"github.com/mamadbah2/dairy/internal/repository"
)

var draftKey = []byte("draft/unsaved_rows")

// DraftStore implements repository.DraftStore on top of badger.
type DraftStore struct {
	db *badger.DB
}

// Open opens (or creates) the draft database in dir. An empty dir keeps the
// database in memory.
func Open(dir string, logger *zap.Logger) (*DraftStore, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	opts := badger.DefaultOptions(dir).WithLogger(zapAdapter{logger.Sugar()})
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open draft store: %w", err)
	}
	return &DraftStore{db: db}, nil
}

// Save implements repository.DraftStore.
func (s *DraftStore) Save(_ context.Context, rows []models.RowState) error {
	blob, err := repository.EncodeDraft(rows)
	if err != nil {
		return err
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(draftKey, blob)
	})
}

// Load implements repository.DraftStore.
func (s *DraftStore) Load(_ context.Context) ([]models.RowState, error) {
	var blob []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(draftKey)
		if err != nil {
			if errors.Is(err, badger.ErrKeyNotFound) {
				return nil
			}
			return err
		}
		blob, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("load draft: %w", err)
	}
	return repository.DecodeDraft(blob)
}

// Clear implements repository.DraftStore.
func (s *DraftStore) Clear(_ context.Context) error {
	return s.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete(draftKey)
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}

// Close flushes and closes the database.
func (s *DraftStore) Close() error {
	return s.db.Close()
}

// zapAdapter routes badger's internal logging into zap.
type zapAdapter struct {
	s *zap.SugaredLogger
}

func (a zapAdapter) Errorf(format string, args ...interface{})   { a.s.Errorf(format, args...) }
func (a zapAdapter) Warningf(format string, args ...interface{}) { a.s.Warnf(format, args...) }
func (a zapAdapter) Infof(format string, args ...interface{})    { a.s.Debugf(format, args...) }
func (a zapAdapter) Debugf(format string, args ...interface{})   { a.s.Debugf(format, args...) }
