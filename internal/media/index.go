// Ankibridge - AnkiConnect-compatible note service
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/ankibridge

package media

import (
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"
)

// Key prefixes for the content index.
const (
	hashKeyPrefix = "hash:"
	nameKeyPrefix = "name:"
)

// Index maps content hashes to stored filenames and back.
type Index struct {
	db       *badger.DB
	inMemory bool
}

// OpenIndex opens the badger index at path. An empty path keeps the index
// in memory; Store.Reindex rebuilds it from the folder.
func OpenIndex(path string) (*Index, error) {
	opts := badger.DefaultOptions(path)
	if path == "" {
		opts = badger.DefaultOptions("").WithInMemory(true)
	}
	opts = opts.WithLogger(nil).WithNumVersionsToKeep(1)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open media index: %w", err)
	}
	return &Index{db: db, inMemory: path == ""}, nil
}

// Close closes the underlying database.
func (i *Index) Close() error {
	return i.db.Close()
}

// RunGC rewrites value log files that are at least half garbage, one file
// per round, until nothing is left to rewrite. In-memory indexes have no
// value log.
func (i *Index) RunGC() error {
	if i.inMemory {
		return nil
	}
	for {
		err := i.db.RunValueLogGC(0.5)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("media index gc: %w", err)
		}
	}
}

// Lookup returns the filename stored for hash.
func (i *Index) Lookup(hash string) (string, bool, error) {
	var name string
	err := i.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(hashKeyPrefix + hash))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			name = string(val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("lookup hash: %w", err)
	}
	return name, true, nil
}

// Put records that name holds content with hash, replacing any previous
// hash recorded for name.
func (i *Index) Put(hash, name string) error {
	return i.db.Update(func(txn *badger.Txn) error {
		if err := deleteName(txn, name); err != nil {
			return err
		}
		if err := txn.Set([]byte(hashKeyPrefix+hash), []byte(name)); err != nil {
			return fmt.Errorf("set hash: %w", err)
		}
		if err := txn.Set([]byte(nameKeyPrefix+name), []byte(hash)); err != nil {
			return fmt.Errorf("set name: %w", err)
		}
		return nil
	})
}

// Forget drops name and its hash from the index.
func (i *Index) Forget(name string) error {
	return i.db.Update(func(txn *badger.Txn) error {
		return deleteName(txn, name)
	})
}

func deleteName(txn *badger.Txn, name string) error {
	item, err := txn.Get([]byte(nameKeyPrefix + name))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("get name: %w", err)
	}
	hash, err := item.ValueCopy(nil)
	if err != nil {
		return fmt.Errorf("read name: %w", err)
	}

	// Only drop the hash entry if it still points at this name.
	hashKey := []byte(hashKeyPrefix + string(hash))
	if hashItem, err := txn.Get(hashKey); err == nil {
		owner, err := hashItem.ValueCopy(nil)
		if err != nil {
			return fmt.Errorf("read hash: %w", err)
		}
		if string(owner) == name {
			if err := txn.Delete(hashKey); err != nil {
				return fmt.Errorf("delete hash: %w", err)
			}
		}
	} else if !errors.Is(err, badger.ErrKeyNotFound) {
		return fmt.Errorf("get hash: %w", err)
	}

	if err := txn.Delete([]byte(nameKeyPrefix + name)); err != nil {
		return fmt.Errorf("delete name: %w", err)
	}
	return nil
}
