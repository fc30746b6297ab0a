package dal

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/omnidal-io/omnidal/pkg/dialect"
	"github.com/omnidal-io/omnidal/pkg/schema"
)

// fakeExecutor counts round trips and serves canned results, so cache
// behavior is observable without a database.
type fakeExecutor struct {
	mu          sync.Mutex
	queryCalls  int
	countCalls  int
	execCalls   int
	rows        map[string]*RowSet
	counts      map[string]int64
	queryErr    error
	pingErr     error
	collections map[string][]schema.Row
	depth       int32
	closed      atomic.Bool
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{
		rows:        make(map[string]*RowSet),
		counts:      make(map[string]int64),
		collections: make(map[string][]schema.Row),
	}
}

func (f *fakeExecutor) Query(ctx context.Context, sql string) (*RowSet, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queryCalls++
	if f.queryErr != nil {
		return nil, f.queryErr
	}
	if rs, ok := f.rows[sql]; ok {
		return rs, nil
	}
	return &RowSet{Columns: []string{"v"}, Rows: [][]any{{sql}}}, nil
}

func (f *fakeExecutor) QueryCount(ctx context.Context, sql string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.countCalls++
	if f.queryErr != nil {
		return 0, f.queryErr
	}
	return f.counts[sql], nil
}

func (f *fakeExecutor) Execute(ctx context.Context, sql string) (int32, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execCalls++
	return 1, nil
}

func (f *fakeExecutor) InsertAndGetIdentity(ctx context.Context, sql string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.execCalls++
	return 42, nil
}

func (f *fakeExecutor) QueryWithParams(ctx context.Context, sql string, params ...any) (*RowSet, error) {
	return f.Query(ctx, sql)
}

func (f *fakeExecutor) ExecuteWithParams(ctx context.Context, sql string, params ...any) (int32, error) {
	return f.Execute(ctx, sql)
}

func (f *fakeExecutor) Begin(ctx context.Context) (int32, error) {
	f.depth++
	return f.depth, nil
}

func (f *fakeExecutor) Commit(ctx context.Context) (int32, error) {
	if f.depth == 0 {
		return 0, fmt.Errorf("commit without transaction")
	}
	f.depth--
	return f.depth, nil
}

func (f *fakeExecutor) Rollback(ctx context.Context) (int32, error) {
	f.depth = 0
	return 0, nil
}

func (f *fakeExecutor) SchemaCollection(ctx context.Context, collection, tableFilter string) ([]schema.Row, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.collections[collection], nil
}

func (f *fakeExecutor) Ping(ctx context.Context) error { return f.pingErr }

func (f *fakeExecutor) Close() error {
	f.closed.Store(true)
	return nil
}

var _ Executor = (*fakeExecutor)(nil)

// fakeOpener returns the same executor for every connection and counts
// how many times it ran.
type fakeOpener struct {
	mu    sync.Mutex
	calls int
	execs map[string]*fakeExecutor
	err   error
}

func newFakeOpener() *fakeOpener {
	return &fakeOpener{execs: make(map[string]*fakeExecutor)}
}

func (o *fakeOpener) open(ctx context.Context, d dialect.Dialect, connString string) (Executor, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls++
	if o.err != nil {
		return nil, o.err
	}
	exec, ok := o.execs[connString]
	if !ok {
		exec = newFakeExecutor()
		o.execs[connString] = exec
	}
	return exec, nil
}
