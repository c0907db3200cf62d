// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package kvstore

import (
	"sort"
	"strings"
)

// memStore is an in-memory Store used by unit tests that exercise the
// journal/boot-counter logic without paying for a badger directory per
// test case.
type memStore struct {
	values map[string][]byte
}

// NewMemStore returns an empty in-memory Store.
func NewMemStore() Store {
	return &memStore{values: make(map[string][]byte)}
}

func (m *memStore) Get(key string) ([]byte, bool, error) {
	v, ok := m.values[key]
	return v, ok, nil
}

func (m *memStore) Set(key string, value []byte) error {
	m.values[key] = append([]byte(nil), value...)
	return nil
}

func (m *memStore) KeysWithPrefix(prefix string) ([]string, error) {
	var keys []string
	for k := range m.values {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys, nil
}

func (m *memStore) Close() error { return nil }
