// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package northbound

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/timestamppb"

	"github.com/polyd/polyd/internal/kvstore"
)

// Transaction is one committed change, per §3: a monotonic id, a UTC
// timestamp, an optional comment, and the full post-commit candidate
// tree. Transactions are append-only, keyed by id, in the durable
// journal.
type Transaction struct {
	ID        uint32
	Timestamp time.Time
	Comment   string
	Candidate Tree
}

// Journal persists transactions keyed by id, per §6
// ("transaction-<id>" records in the non-volatile store).
type Journal interface {
	// Append stores txn durably. IDs are monotonically assigned by the
	// caller (the engine), not by the journal.
	Append(txn Transaction) error
	// Get retrieves a previously-stored transaction by id.
	Get(id uint32) (Transaction, error)
	// List returns a summary (no candidate trees) of all stored
	// transactions, oldest first.
	List() ([]TransactionSummary, error)
}

// TransactionSummary is the journal-summary shape returned by
// list-transactions, per §4.1.
type TransactionSummary struct {
	ID        uint32
	Timestamp time.Time
	Comment   string
}

// kvJournal stores each transaction as a protobuf-encoded envelope under
// key "transaction-<id>" in the shared non-volatile KV store (§6). The
// candidate tree's leaf values are serialized via structpb, which gives us
// a stable self-describing wire envelope without hand-writing generated
// protobuf message code for a tree whose shape is schema-defined
// elsewhere.
type kvJournal struct {
	store kvstore.Store
	// ids tracks which transaction ids have been appended, in order, so
	// List doesn't need a prefix scan API from the KV store.
	ids []uint32
}

const journalKeyPrefix = "transaction-"

// NewJournal returns a Journal backed by store, recovering the set of
// previously-appended transaction ids by scanning the store for
// "transaction-<id>" keys (§6). This makes List/Get correct immediately
// after a process restart, not just within the process that called
// Append.
func NewJournal(store kvstore.Store) Journal {
	j := &kvJournal{store: store}
	if keys, err := store.KeysWithPrefix(journalKeyPrefix); err == nil {
		for _, k := range keys {
			if id, ok := parseJournalKey(k); ok {
				j.ids = append(j.ids, id)
			}
		}
		sort.Slice(j.ids, func(a, b int) bool { return j.ids[a] < j.ids[b] })
	}
	return j
}

func journalKey(id uint32) string {
	return fmt.Sprintf("%s%d", journalKeyPrefix, id)
}

func parseJournalKey(key string) (uint32, bool) {
	suffix := strings.TrimPrefix(key, journalKeyPrefix)
	if suffix == key {
		return 0, false
	}
	id, err := strconv.ParseUint(suffix, 10, 32)
	if err != nil {
		return 0, false
	}
	return uint32(id), true
}

func treeValues(t Tree) map[string]any {
	pt, ok := t.(*pathTree)
	if !ok {
		return nil
	}
	return pt.values
}

func (j *kvJournal) Append(txn Transaction) error {
	candidateStruct, err := structpb.NewStruct(normalizeForStruct(treeValues(txn.Candidate)))
	if err != nil {
		return fmt.Errorf("northbound/yang-internal: encode candidate: %w", err)
	}

	env := &journalEnvelope{
		ID:        txn.ID,
		Timestamp: timestamppb.New(txn.Timestamp),
		Comment:   txn.Comment,
		Candidate: candidateStruct,
	}
	payload, err := proto.Marshal(env.toProto())
	if err != nil {
		return fmt.Errorf("northbound/yang-internal: marshal transaction: %w", err)
	}
	if err := j.store.Set(journalKey(txn.ID), payload); err != nil {
		return err
	}
	j.ids = append(j.ids, txn.ID)
	return nil
}

func (j *kvJournal) Get(id uint32) (Transaction, error) {
	payload, ok, err := j.store.Get(journalKey(id))
	if err != nil {
		return Transaction{}, err
	}
	if !ok {
		return Transaction{}, ErrTransactionNotFound
	}
	var pb structpb.Struct
	env, err := decodeEnvelope(payload, &pb)
	if err != nil {
		return Transaction{}, fmt.Errorf("northbound/yang-internal: decode transaction: %w", err)
	}
	tree := &pathTree{values: denormalizeFromStruct(env.Candidate)}
	return Transaction{
		ID:        env.ID,
		Timestamp: env.Timestamp.AsTime(),
		Comment:   env.Comment,
		Candidate: tree,
	}, nil
}

func (j *kvJournal) List() ([]TransactionSummary, error) {
	summaries := make([]TransactionSummary, 0, len(j.ids))
	for _, id := range j.ids {
		txn, err := j.Get(id)
		if err != nil {
			return nil, err
		}
		summaries = append(summaries, TransactionSummary{
			ID:        txn.ID,
			Timestamp: txn.Timestamp,
			Comment:   txn.Comment,
		})
	}
	return summaries, nil
}

// normalizeForStruct coerces map values into types structpb.NewStruct
// accepts (it rejects arbitrary types like time.Time or custom structs).
func normalizeForStruct(values map[string]any) map[string]any {
	out := make(map[string]any, len(values))
	for k, v := range values {
		switch tv := v.(type) {
		case string, bool, float64, nil:
			out[k] = tv
		case int:
			out[k] = float64(tv)
		case uint32:
			out[k] = float64(tv)
		default:
			out[k] = fmt.Sprintf("%v", tv)
		}
	}
	return out
}

func denormalizeFromStruct(s *structpb.Struct) map[string]any {
	out := make(map[string]any)
	if s == nil {
		return out
	}
	for k, v := range s.AsMap() {
		out[k] = v
	}
	return out
}

// journalEnvelope is the in-memory shape of one journal record. Rather
// than hand-author a second generated protobuf message for its three
// header fields, toProto folds them into the same structpb.Struct as the
// candidate tree under reserved keys no schema path can produce (a
// leading "@"), so the whole record serializes through the one real
// protobuf message type (structpb.Struct) the dependency already
// provides.
type journalEnvelope struct {
	ID        uint32
	Timestamp *timestamppb.Timestamp
	Comment   string
	Candidate *structpb.Struct
}

func (e *journalEnvelope) toProto() *structpb.Struct {
	m := denormalizeFromStruct(e.Candidate)
	m["@id"] = float64(e.ID)
	m["@comment"] = e.Comment
	m["@ts"] = e.Timestamp.AsTime().Format(time.RFC3339Nano)
	st, err := structpb.NewStruct(normalizeForStruct(m))
	if err != nil {
		// normalizeForStruct only emits structpb-safe types, so this
		// cannot fail in practice; fall back to an empty struct rather
		// than panicking the commit path.
		st = &structpb.Struct{}
	}
	return st
}

func decodeEnvelope(payload []byte, scratch *structpb.Struct) (*journalEnvelope, error) {
	if err := proto.Unmarshal(payload, scratch); err != nil {
		return nil, err
	}
	m := scratch.AsMap()
	env := &journalEnvelope{}
	if idv, ok := m["@id"].(float64); ok {
		env.ID = uint32(idv)
		delete(m, "@id")
	}
	if c, ok := m["@comment"].(string); ok {
		env.Comment = c
		delete(m, "@comment")
	}
	if ts, ok := m["@ts"].(string); ok {
		if parsed, err := time.Parse(time.RFC3339Nano, ts); err == nil {
			env.Timestamp = timestamppb.New(parsed)
		}
		delete(m, "@ts")
	}
	st, err := structpb.NewStruct(normalizeForStruct(m))
	if err != nil {
		st = &structpb.Struct{}
	}
	env.Candidate = st
	return env, nil
}
