package relayer

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

const cursorPrefix = "relayer/cursor/"

// Store persists, per bridge side, the next deposit nonce to relay.
type Store struct {
	db *badger.DB
}

// OpenStore opens the badger database in dir. An empty dir keeps the data in memory.
func OpenStore(dir string) (*Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if dir == "" {
		opts = opts.WithInMemory(true)
	}

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger store %q: %w", dir, err)
	}
	return &Store{db: db}, nil
}

// Cursor returns the next nonce to relay for side. The boolean is false when
// side has never been scanned.
func (s *Store) Cursor(side string) (uint64, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(cursorKey(side))
		if err != nil {
			return err
		}
		value, err = item.ValueCopy(nil)
		return err
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("read cursor of %s: %w", side, err)
	}
	if len(value) != 8 {
		return 0, false, fmt.Errorf("cursor of %s: corrupt value of %d bytes", side, len(value))
	}
	return binary.BigEndian.Uint64(value), true, nil
}

// SetCursor records next as the next nonce to relay for side.
func (s *Store) SetCursor(side string, next uint64) error {
	value := binary.BigEndian.AppendUint64(nil, next)
	err := s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(cursorKey(side), value)
	})
	if err != nil {
		return fmt.Errorf("write cursor of %s: %w", side, err)
	}
	return nil
}

// Close flushes and closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func cursorKey(side string) []byte {
	return []byte(cursorPrefix + side)
}
