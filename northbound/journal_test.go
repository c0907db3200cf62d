// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package northbound

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/polyd/polyd/internal/kvstore"
)

func TestJournalListEmptyWhenNoTransactions(t *testing.T) {
	store := kvstore.NewMemStore()
	j := NewJournal(store)

	summaries, err := j.List()
	require.NoError(t, err)
	require.Empty(t, summaries)
}

func TestJournalRecoversIDsOnRestart(t *testing.T) {
	store := kvstore.NewMemStore()
	first := NewJournal(store)

	for i, comment := range []string{"a", "b", "c"} {
		txn := Transaction{
			ID:        uint32(i + 1),
			Timestamp: time.Now().UTC(),
			Comment:   comment,
			Candidate: NewTree(),
		}
		require.NoError(t, first.Append(txn))
	}

	// A brand new Journal constructed against the same store, as
	// "show journal" does on every invocation, must see the full history
	// without ever having called Append itself.
	second := NewJournal(store)
	summaries, err := second.List()
	require.NoError(t, err)
	require.Len(t, summaries, 3)
	require.Equal(t, uint32(1), summaries[0].ID)
	require.Equal(t, uint32(2), summaries[1].ID)
	require.Equal(t, uint32(3), summaries[2].ID)
	require.Equal(t, "c", summaries[2].Comment)
}

func TestJournalGetAfterRecovery(t *testing.T) {
	store := kvstore.NewMemStore()
	first := NewJournal(store)
	delta := NewTree().(*pathTree)
	delta.Set(Path{"interfaces", "eth0", "cost"}, 10)
	require.NoError(t, first.Append(Transaction{
		ID:        7,
		Timestamp: time.Now().UTC(),
		Comment:   "set cost",
		Candidate: delta,
	}))

	second := NewJournal(store)
	txn, err := second.Get(7)
	require.NoError(t, err)
	require.Equal(t, uint32(7), txn.ID)
	require.Equal(t, "set cost", txn.Comment)
}

func TestParseJournalKeyRejectsForeignKeys(t *testing.T) {
	if _, ok := parseJournalKey("boot-count-isis-main"); ok {
		t.Fatal("parseJournalKey accepted a non-journal key")
	}
	if _, ok := parseJournalKey("transaction-notanumber"); ok {
		t.Fatal("parseJournalKey accepted a non-numeric id")
	}
	id, ok := parseJournalKey("transaction-42")
	require.True(t, ok)
	require.Equal(t, uint32(42), id)
}
