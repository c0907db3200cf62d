// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package northbound

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/polyd/polyd/internal/kvstore"
	"github.com/polyd/polyd/internal/log"
)

func newTestEngine(t *testing.T, providers ...Provider) *Engine {
	t.Helper()
	store := kvstore.NewMemStore()
	journal := NewJournal(store)
	return NewEngine(log.NewNoOp(), nil, nil, store, journal, providers)
}

type fakeProvider struct {
	name         string
	keys         []CallbackKey
	validateErr  error
	prepareErr   error
	prepareFails bool
	phases       []Phase
}

func (p *fakeProvider) Name() string               { return p.name }
func (p *fakeProvider) Keys() []CallbackKey         { return p.keys }
func (p *fakeProvider) Validate(ctx context.Context, candidate Tree) error {
	return p.validateErr
}
func (p *fakeProvider) Prepare(ctx context.Context, req PrepareRequest) error {
	p.phases = append(p.phases, req.Phase)
	if p.prepareFails && req.Phase == PhasePrepare {
		return p.prepareErr
	}
	return nil
}
func (p *fakeProvider) Get(ctx context.Context, req GetRequest) (Tree, error) {
	return NewTree(), nil
}
func (p *fakeProvider) Execute(ctx context.Context, req RPCRequest) (Tree, error) {
	return NewTree(), nil
}

func TestCommitAppliesChangesAndJournals(t *testing.T) {
	keys := []CallbackKey{{Path: Path{"interfaces", "eth0"}, Op: OpKeyCreate}}
	p := &fakeProvider{name: "ifmgr", keys: keys}
	e := newTestEngine(t, p)

	delta := NewTree().(*pathTree)
	delta.Set(Path{"interfaces", "eth0", "cost"}, 10)

	id, err := e.doCommit(context.Background(), ConfigOp{Kind: ConfigMerge, Delta: delta}, "set cost", 0)
	require.NoError(t, err)
	require.Equal(t, uint32(1), id)

	got, err := e.doGet(context.Background(), DataConfiguration, Path{"interfaces", "eth0", "cost"})
	require.NoError(t, err)
	pt := got.(*pathTree)
	require.Equal(t, 10, pt.values["/interfaces/eth0/cost"])

	summaries, err := e.journal.List()
	require.NoError(t, err)
	require.Len(t, summaries, 1)
	require.Equal(t, "set cost", summaries[0].Comment)

	require.Contains(t, p.phases, PhaseApply)
	require.NotContains(t, p.phases, PhaseAbort)
}

func TestCommitAbortsOnPrepareFailure(t *testing.T) {
	keys := []CallbackKey{{Path: Path{"interfaces", "eth0"}, Op: OpKeyCreate}}
	p := &fakeProvider{name: "ifmgr", keys: keys, prepareFails: true, prepareErr: errors.New("device rejected cost")}
	e := newTestEngine(t, p)

	before := e.running.Duplicate()

	delta := NewTree().(*pathTree)
	delta.Set(Path{"interfaces", "eth0", "cost"}, 10)

	_, err := e.doCommit(context.Background(), ConfigOp{Kind: ConfigMerge, Delta: delta}, "set cost", 0)
	require.Error(t, err)
	var prepErr *PreparationError
	require.True(t, errors.As(err, &prepErr))
	require.Equal(t, "ifmgr", prepErr.Provider)

	require.Equal(t, before.Diff(e.running), []Change(nil))

	summaries, err := e.journal.List()
	require.NoError(t, err)
	require.Empty(t, summaries)
}

func TestCommitFailsOnValidateFailure(t *testing.T) {
	keys := []CallbackKey{{Path: Path{"interfaces", "eth0"}, Op: OpKeyCreate}}
	p := &fakeProvider{name: "ifmgr", keys: keys, validateErr: errors.New("cost out of range")}
	e := newTestEngine(t, p)

	before := e.running.Duplicate()

	delta := NewTree().(*pathTree)
	delta.Set(Path{"interfaces", "eth0", "cost"}, 99999)

	_, err := e.doCommit(context.Background(), ConfigOp{Kind: ConfigMerge, Delta: delta}, "bad cost", 0)
	require.Error(t, err)
	var valErr *ValidationError
	require.True(t, errors.As(err, &valErr))

	require.Equal(t, before.Diff(e.running), []Change(nil))
	require.Empty(t, p.phases, "prepare must not run after a validate failure")
}

func TestConfirmedCommitRollsBackOnExpiry(t *testing.T) {
	keys := []CallbackKey{{Path: Path{"interfaces", "eth0"}, Op: OpKeyCreate}}
	p := &fakeProvider{name: "ifmgr", keys: keys}
	e := newTestEngine(t, p)

	delta := NewTree().(*pathTree)
	delta.Set(Path{"interfaces", "eth0", "cost"}, 20)

	_, err := e.doCommit(context.Background(), ConfigOp{Kind: ConfigMerge, Delta: delta}, "confirmed cost change", 1)
	require.NoError(t, err)
	require.NotNil(t, e.rollback)

	got, err := e.doGet(context.Background(), DataConfiguration, Path{"interfaces", "eth0", "cost"})
	require.NoError(t, err)
	require.Equal(t, 20, got.(*pathTree).values["/interfaces/eth0/cost"])

	e.rollback.timer.Stop()
	e.onConfirmedCommitExpiry(context.Background())

	require.Nil(t, e.rollback)
	_, found := e.running.(*pathTree).values["/interfaces/eth0/cost"]
	require.False(t, found, "rollback must remove the unconfirmed change")
}

func TestConfirmedCommitAcceptedByEmptyConfirmingCommit(t *testing.T) {
	keys := []CallbackKey{{Path: Path{"interfaces", "eth0"}, Op: OpKeyCreate}}
	p := &fakeProvider{name: "ifmgr", keys: keys}
	e := newTestEngine(t, p)

	delta := NewTree().(*pathTree)
	delta.Set(Path{"interfaces", "eth0", "cost"}, 30)

	_, err := e.doCommit(context.Background(), ConfigOp{Kind: ConfigMerge, Delta: delta}, "confirmed", 1)
	require.NoError(t, err)
	require.NotNil(t, e.rollback)

	confirm := e.running.Duplicate()
	_, err = e.doCommit(context.Background(), ConfigOp{Kind: ConfigReplace, Full: confirm}, "confirm", 0)
	require.NoError(t, err)
	require.Nil(t, e.rollback, "confirming commit must cancel the pending rollback")

	got, err := e.doGet(context.Background(), DataConfiguration, Path{"interfaces", "eth0", "cost"})
	require.NoError(t, err)
	require.Equal(t, 30, got.(*pathTree).values["/interfaces/eth0/cost"])
}

func TestCheckCallbacksReportsMissingHandlers(t *testing.T) {
	p := &fakeProvider{
		name: "ifmgr",
		keys: []CallbackKey{{Path: Path{"interfaces", "eth0"}, Op: OpKeyCreate}},
	}
	e := newTestEngine(t, p)

	err := e.CheckCallbacks([]Path{{"interfaces", "eth0"}})
	require.Error(t, err)
}

func TestCheckCallbacksPassesWhenAllOpsPresent(t *testing.T) {
	path := Path{"interfaces", "eth0"}
	var keys []CallbackKey
	for _, op := range requiredOps {
		keys = append(keys, CallbackKey{Path: path, Op: op})
	}
	p := &fakeProvider{name: "ifmgr", keys: keys}
	e := newTestEngine(t, p)

	require.NoError(t, e.CheckCallbacks([]Path{path}))
}
