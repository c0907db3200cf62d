// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package instance

import (
	"encoding/binary"
	"fmt"

	"github.com/polyd/polyd/internal/kvstore"
)

func bootCountKey(protocol Kind, name string) string {
	return fmt.Sprintf("%s-%s-boot-count", protocol, name)
}

// NextBootCount loads the stored boot counter for (protocol, name),
// increments it, persists the new value, and returns it. The very first
// activation of an instance returns 1. Per §4.2 this value feeds, among
// other things, initial authentication sequence numbers for protocols
// that require strictly increasing sequences across restarts.
func NextBootCount(store kvstore.Store, protocol Kind, name string) (uint64, error) {
	key := bootCountKey(protocol, name)
	raw, ok, err := store.Get(key)
	if err != nil {
		return 0, err
	}
	var count uint64
	if ok && len(raw) == 8 {
		count = binary.BigEndian.Uint64(raw)
	}
	count++

	buf := make([]byte, 8)
	binary.BigEndian.PutUint64(buf, count)
	if err := store.Set(key, buf); err != nil {
		return 0, err
	}
	return count, nil
}
