// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

// Package kvstore implements the single keyed blob store of §6: boot
// counters and the transaction journal are its only two durable key
// families. All LSDB state is explicitly non-durable and never touches
// this store.
package kvstore

import (
	badger "github.com/dgraph-io/badger/v4"
)

// Store is the non-volatile KV store handle shared by every protocol
// instance (for its boot counter) and the northbound engine (for the
// transaction journal). Per §5, it is protected by a process-wide mutex
// and touched only briefly; badger.DB already serializes its own
// transactions internally, so Store does not add a second lock on top.
type Store interface {
	Get(key string) (value []byte, ok bool, err error)
	Set(key string, value []byte) error
	// KeysWithPrefix returns every stored key beginning with prefix, in
	// ascending lexical order. The journal uses this to recover its
	// "transaction-<id>" key set on process restart, since badger keeps
	// no separate index of keys written by a prior process.
	KeysWithPrefix(prefix string) ([]string, error)
	Close() error
}

type badgerStore struct {
	db *badger.DB
}

// Open opens (creating if absent) a badger database rooted at dir.
func Open(dir string) (Store, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}
	return &badgerStore{db: db}, nil
}

func (s *badgerStore) Get(key string) ([]byte, bool, error) {
	var value []byte
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			value = append([]byte(nil), val...)
			return nil
		})
	})
	if err != nil {
		return nil, false, err
	}
	return value, value != nil, nil
}

func (s *badgerStore) Set(key string, value []byte) error {
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), value)
	})
}

func (s *badgerStore) KeysWithPrefix(prefix string) ([]string, error) {
	var keys []string
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = []byte(prefix)
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek([]byte(prefix)); it.ValidForPrefix([]byte(prefix)); it.Next() {
			keys = append(keys, string(it.Item().Key()))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return keys, nil
}

func (s *badgerStore) Close() error {
	return s.db.Close()
}
