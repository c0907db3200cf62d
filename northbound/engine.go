// Copyright (C) 2020-2026, polyd authors. All rights reserved.
// See the file LICENSE for licensing terms.

package northbound

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/polyd/polyd/internal/health"
	"github.com/polyd/polyd/internal/kvstore"
	"github.com/polyd/polyd/internal/log"
	"github.com/polyd/polyd/internal/metrics"
)

// ConfigOpKind selects how a commit's delta is applied atop the running
// tree, per §4.1.
type ConfigOpKind int

const (
	// ConfigMerge overlays Delta atop a duplicate of running.
	ConfigMerge ConfigOpKind = iota
	// ConfigReplace discards running and uses Full as the candidate.
	ConfigReplace
	// ConfigChange applies Changes directly to a duplicate of running.
	ConfigChange
)

// ConfigOp is the commit() payload of §4.1.
type ConfigOp struct {
	Kind    ConfigOpKind
	Delta   Tree
	Full    Tree
	Changes []Change
}

func (op ConfigOp) apply(running Tree) Tree {
	switch op.Kind {
	case ConfigReplace:
		return op.Full
	case ConfigChange:
		candidate := running.Duplicate().(*pathTree)
		for _, c := range op.Changes {
			switch c.Op {
			case OpDelete:
				delete(candidate.values, pathKey(c.Path))
			default:
				candidate.values[pathKey(c.Path)] = c.New
			}
		}
		return candidate
	default: // ConfigMerge
		return running.Merge(op.Delta)
	}
}

// engineRequest is the closed set of client-facing requests the engine's
// select loop accepts, per §4.1's "all carry a response channel; the
// engine answers exactly once."
type engineRequest interface {
	isEngineRequest()
}

type getReq struct {
	kind  DataKind
	path  Path
	reply chan<- getResp
}
type getResp struct {
	tree Tree
	err  error
}

type validateReq struct {
	candidate Tree
	reply     chan<- error
}

type commitReq struct {
	op                ConfigOp
	comment           string
	confirmedTimeoutM int
	reply             chan<- commitResp
}
type commitResp struct {
	id  uint32
	err error
}

type executeReq struct {
	data  Tree
	reply chan<- executeResp
}
type executeResp struct {
	tree Tree
	err  error
}

type listTransactionsReq struct {
	reply chan<- listTransactionsResp
}
type listTransactionsResp struct {
	summaries []TransactionSummary
	err       error
}

type getTransactionReq struct {
	id    uint32
	reply chan<- getTransactionResp
}
type getTransactionResp struct {
	txn Transaction
	err error
}

func (getReq) isEngineRequest()             {}
func (validateReq) isEngineRequest()        {}
func (commitReq) isEngineRequest()          {}
func (executeReq) isEngineRequest()         {}
func (listTransactionsReq) isEngineRequest() {}
func (getTransactionReq) isEngineRequest()  {}

// pendingRollback is the at-most-one confirmed-commit rollback state.
type pendingRollback struct {
	previousRunning Tree
	timer           *time.Timer
	timeoutM        int
}

// Engine is the northbound transaction engine of §4.1: a single
// cooperative task selecting over client requests, the confirmed-commit
// timer, shutdown, and context cancellation. It receives no
// notifications from providers.
type Engine struct {
	log       log.Logger
	metrics   *metrics.Northbound
	health    *health.Aggregator
	providers []Provider
	journal   Journal
	store     kvstore.Store

	requests chan engineRequest
	shutdown chan struct{}
	done     chan struct{}

	// Only ever touched on the engine goroutine — no lock required
	// (§5: "No lock protects per-instance state because only one task
	// touches it").
	running    Tree
	nextID     uint32
	rollback   *pendingRollback
}

// NewEngine constructs an Engine. Call CheckCallbacks once at startup
// before Run; a failing check must abort process startup per §4.1.
func NewEngine(logger log.Logger, m *metrics.Northbound, h *health.Aggregator, store kvstore.Store, journal Journal, providers []Provider) *Engine {
	e := &Engine{
		log:       logger,
		metrics:   m,
		health:    h,
		providers: providers,
		journal:   journal,
		store:     store,
		requests:  make(chan engineRequest, 16),
		shutdown:  make(chan struct{}),
		done:      make(chan struct{}),
		running:   NewTree(),
		nextID:    1,
	}
	if h != nil {
		h.Register("northbound", e)
	}
	return e
}

// HealthCheck implements health.Checker.
func (e *Engine) HealthCheck(ctx context.Context) (interface{}, error) {
	return map[string]any{"providers": len(e.providers)}, nil
}

// requiredOps lists, for a writable schema node, which callback
// operations must have a registered handler. A real schema-bound
// deployment derives this from the live schema tree; since the schema
// itself is out of scope (§1), CheckCallbacks here verifies coverage
// against the static set every writable node needs: create, modify,
// delete, and get-object (lookup/rpc/get-iterate are opt-in per node and
// are not asserted against in the baseline invariant).
var requiredOps = []Operation{OpKeyCreate, OpKeyModify, OpKeyDelete, OpKeyGetObject}

// CheckCallbacks walks the declared callback keys of every provider and
// asserts that every (path, op) pair in requiredPaths has at least one
// handler, per §4.1's startup invariant. It does not consult the schema
// directly (out of scope); callers pass the set of writable paths the
// schema says are current and not deprecated/obsolete.
func (e *Engine) CheckCallbacks(requiredPaths []Path) error {
	have := make(map[string]map[Operation]bool)
	for _, p := range e.providers {
		for _, key := range p.Keys() {
			k := pathKey(key.Path)
			if have[k] == nil {
				have[k] = make(map[Operation]bool)
			}
			have[k][key.Op] = true
		}
	}

	missing := 0
	for _, path := range requiredPaths {
		k := pathKey(path)
		for _, op := range requiredOps {
			if !have[k][op] {
				missing++
				e.log.Error("missing northbound callback",
					zap.String("path", path.String()), zap.Int("op", int(op)))
			}
		}
	}
	if missing > 0 {
		return fmt.Errorf("northbound: %d required callback(s) missing at startup", missing)
	}
	return nil
}

// Run is the engine's cooperative event loop; it returns when Shutdown is
// called or ctx is cancelled.
func (e *Engine) Run(ctx context.Context) {
	defer close(e.done)
	for {
		var timerC <-chan time.Time
		if e.rollback != nil {
			timerC = e.rollback.timer.C
		}
		select {
		case <-ctx.Done():
			return
		case <-e.shutdown:
			return
		case <-timerC:
			e.onConfirmedCommitExpiry(ctx)
		case req := <-e.requests:
			e.handle(ctx, req)
		}
	}
}

// Shutdown stops Run and waits for it to exit.
func (e *Engine) Shutdown() {
	close(e.shutdown)
	<-e.done
}

func (e *Engine) handle(ctx context.Context, req engineRequest) {
	switch r := req.(type) {
	case getReq:
		tree, err := e.doGet(ctx, r.kind, r.path)
		r.reply <- getResp{tree: tree, err: err}
	case validateReq:
		r.reply <- e.doValidate(ctx, r.candidate)
	case commitReq:
		id, err := e.doCommit(ctx, r.op, r.comment, r.confirmedTimeoutM)
		r.reply <- commitResp{id: id, err: err}
	case executeReq:
		tree, err := e.doExecute(ctx, r.data)
		r.reply <- executeResp{tree: tree, err: err}
	case listTransactionsReq:
		summaries, err := e.journal.List()
		r.reply <- listTransactionsResp{summaries: summaries, err: err}
	case getTransactionReq:
		txn, err := e.journal.Get(r.id)
		r.reply <- getTransactionResp{txn: txn, err: err}
	}
}

// --- public client API: each call blocks on a oneshot reply channel ---

func (e *Engine) Get(ctx context.Context, kind DataKind, path Path) (Tree, error) {
	reply := make(chan getResp, 1)
	select {
	case e.requests <- getReq{kind: kind, path: path, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case resp := <-reply:
		return resp.tree, resp.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Engine) Validate(ctx context.Context, candidate Tree) error {
	reply := make(chan error, 1)
	select {
	case e.requests <- validateReq{candidate: candidate, reply: reply}:
	case <-ctx.Done():
		return ctx.Err()
	}
	select {
	case err := <-reply:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *Engine) Commit(ctx context.Context, op ConfigOp, comment string, confirmedTimeoutMinutes int) (uint32, error) {
	reply := make(chan commitResp, 1)
	select {
	case e.requests <- commitReq{op: op, comment: comment, confirmedTimeoutM: confirmedTimeoutMinutes, reply: reply}:
	case <-ctx.Done():
		return 0, ctx.Err()
	}
	select {
	case resp := <-reply:
		return resp.id, resp.err
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (e *Engine) Execute(ctx context.Context, data Tree) (Tree, error) {
	reply := make(chan executeResp, 1)
	select {
	case e.requests <- executeReq{data: data, reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case resp := <-reply:
		return resp.tree, resp.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Engine) ListTransactions(ctx context.Context) ([]TransactionSummary, error) {
	reply := make(chan listTransactionsResp, 1)
	select {
	case e.requests <- listTransactionsReq{reply: reply}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	select {
	case resp := <-reply:
		return resp.summaries, resp.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *Engine) GetTransaction(ctx context.Context, id uint32) (Transaction, error) {
	reply := make(chan getTransactionResp, 1)
	select {
	case e.requests <- getTransactionReq{id: id, reply: reply}:
	case <-ctx.Done():
		return Transaction{}, ctx.Err()
	}
	select {
	case resp := <-reply:
		return resp.txn, resp.err
	case <-ctx.Done():
		return Transaction{}, ctx.Err()
	}
}

// --- engine-goroutine-only logic below; never called from client goroutines ---

func (e *Engine) doGet(ctx context.Context, kind DataKind, path Path) (Tree, error) {
	if kind == DataConfiguration {
		dup := e.running.Duplicate()
		if len(path) == 0 {
			return dup, nil
		}
		sub, ok := dup.Lookup(path)
		if !ok {
			return nil, ErrYANGInvalidPath
		}
		return sub, nil
	}

	// state or all: fan out a get-request to every provider and merge.
	type result struct {
		tree Tree
		err  error
	}
	results := make([]result, len(e.providers))
	var wg sync.WaitGroup
	for i, p := range e.providers {
		wg.Add(1)
		go func(i int, p Provider) {
			defer wg.Done()
			tree, err := p.Get(ctx, GetRequest{Kind: kind, Path: path})
			results[i] = result{tree: tree, err: err}
		}(i, p)
	}
	wg.Wait()

	merged := NewTree()
	for _, r := range results {
		if r.err != nil {
			return nil, fmt.Errorf("%w: %v", ErrGet, r.err)
		}
		if r.tree != nil {
			merged = merged.Merge(r.tree)
		}
	}
	if kind == DataAll {
		merged = merged.Merge(e.running.Duplicate())
	}
	return merged, nil
}

func (e *Engine) doValidate(ctx context.Context, candidate Tree) error {
	return e.fanOutValidate(ctx, candidate)
}

// fanOutValidate runs Validate against every provider concurrently and
// returns the first error seen (the rest are logged), per §4.1.
func (e *Engine) fanOutValidate(ctx context.Context, candidate Tree) error {
	type result struct {
		provider string
		err      error
	}
	results := make(chan result, len(e.providers))
	for _, p := range e.providers {
		go func(p Provider) {
			results <- result{provider: p.Name(), err: p.Validate(ctx, candidate)}
		}(p)
	}

	var first *ValidationError
	for range e.providers {
		r := <-results
		if r.err != nil {
			e.log.Warn("provider validate failed", zap.String("provider", r.provider), zap.Error(r.err))
			if first == nil {
				first = &ValidationError{Provider: r.provider, Cause: r.err}
			}
		}
	}
	if first != nil {
		return first
	}
	return nil
}

func (e *Engine) doCommit(ctx context.Context, op ConfigOp, comment string, confirmedTimeoutM int) (uint32, error) {
	start := time.Now()
	if e.metrics != nil {
		defer func() { e.metrics.TransactionLatency.Observe(time.Since(start).Seconds()) }()
	}

	candidate := op.apply(e.running)

	// Step 2: validate.
	if err := e.fanOutValidate(ctx, candidate); err != nil {
		if e.metrics != nil {
			e.metrics.CommitFailures.Inc()
		}
		return 0, err
	}

	// Step 3: diff. An empty diff either confirms a pending rollback or
	// is simply a no-op commit.
	changes := e.running.Diff(candidate)
	if len(changes) == 0 {
		if e.rollback != nil {
			e.rollback.timer.Stop()
			e.rollback = nil
			e.log.Info("confirmed commit accepted by empty commit")
		}
		return 0, nil
	}

	byProvider := e.changesByProvider(changes)

	// Step 4: prepare phase.
	type result struct {
		provider string
		err      error
	}
	results := make(chan result, len(e.providers))
	for _, p := range e.providers {
		go func(p Provider) {
			req := PrepareRequest{Phase: PhasePrepare, Old: e.running, New: candidate, Changes: byProvider[p.Name()]}
			results <- result{provider: p.Name(), err: p.Prepare(ctx, req)}
		}(p)
	}
	var prepErr *PreparationError
	for range e.providers {
		r := <-results
		if r.err != nil && prepErr == nil {
			prepErr = &PreparationError{Provider: r.provider, Cause: r.err}
		}
	}

	if prepErr != nil {
		// Step 5: abort. Waited-on like apply, so the provider has
		// unwound any partial prepare-time staging before commit()
		// returns the error to the caller.
		var abortWG sync.WaitGroup
		for _, p := range e.providers {
			abortWG.Add(1)
			go func(p Provider) {
				defer abortWG.Done()
				_ = p.Prepare(ctx, PrepareRequest{Phase: PhaseAbort, Old: e.running, New: candidate, Changes: byProvider[p.Name()]})
			}(p)
		}
		abortWG.Wait()
		if e.metrics != nil {
			e.metrics.CommitFailures.Inc()
		}
		return 0, prepErr
	}

	// Step 6: apply. The engine waits for every provider to finish so a
	// successful commit() return is a guarantee the change already took
	// effect, not merely that it was scheduled.
	var applyWG sync.WaitGroup
	for _, p := range e.providers {
		applyWG.Add(1)
		go func(p Provider) {
			defer applyWG.Done()
			if err := p.Prepare(ctx, PrepareRequest{Phase: PhaseApply, Old: e.running, New: candidate, Changes: byProvider[p.Name()]}); err != nil {
				e.log.Error("provider apply failed", zap.String("provider", p.Name()), zap.Error(err))
			}
		}(p)
	}
	applyWG.Wait()

	previousRunning := e.running
	e.running = candidate
	if err := e.running.Validate(false); err != nil {
		e.log.Error("post-commit running tree failed without-state validation", zap.Error(err))
	}

	if confirmedTimeoutM > 0 {
		e.armConfirmedCommit(previousRunning, confirmedTimeoutM)
	}

	id := e.nextID
	e.nextID++
	txn := Transaction{ID: id, Timestamp: time.Now().UTC(), Comment: comment, Candidate: e.running}
	if err := e.journal.Append(txn); err != nil {
		e.log.Error("journal append failed", zap.Error(err))
	}
	if e.metrics != nil {
		e.metrics.CommitsTotal.Inc()
	}
	return id, nil
}

// armConfirmedCommit schedules a rollback to previousRunning if no
// confirming commit arrives within timeoutM minutes, per §4.1's
// confirmed-commit mechanism.
func (e *Engine) armConfirmedCommit(previousRunning Tree, timeoutM int) {
	if e.rollback != nil {
		e.rollback.timer.Stop()
	}
	e.rollback = &pendingRollback{
		previousRunning: previousRunning,
		timeoutM:        timeoutM,
		timer:           time.NewTimer(time.Duration(timeoutM) * time.Minute),
	}
}

func (e *Engine) onConfirmedCommitExpiry(ctx context.Context) {
	rb := e.rollback
	e.rollback = nil
	e.log.Warn("confirmed commit rollback firing")

	op := ConfigOp{Kind: ConfigReplace, Full: rb.previousRunning}
	id, err := e.doCommit(ctx, op, "Confirmed commit rollback", 0)
	if err != nil {
		e.log.Error("confirmed commit rollback failed", zap.Error(err))
		return
	}
	if e.metrics != nil {
		e.metrics.RollbacksTotal.Inc()
	}
	_ = id
}

// changesByProvider buckets changes by which provider owns the callback
// key for each change's path.
func (e *Engine) changesByProvider(changes []Change) map[string][]Change {
	out := make(map[string][]Change, len(e.providers))
	for _, p := range e.providers {
		keys := p.Keys()
		var mine []Change
		for _, c := range changes {
			for _, k := range keys {
				if pathKey(k.Path) == pathKey(c.Path) || c.Path.HasPrefix(k.Path) {
					mine = append(mine, c)
					break
				}
			}
		}
		out[p.Name()] = mine
	}
	return out
}

func (e *Engine) doExecute(ctx context.Context, data Tree) (Tree, error) {
	merged := NewTree()
	for _, p := range e.providers {
		tree, err := p.Execute(ctx, RPCRequest{Data: data})
		if err != nil {
			return nil, err
		}
		if tree != nil {
			merged = merged.Merge(tree)
		}
	}
	return merged, nil
}
