package dal

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/omnidal-io/omnidal/pkg/dialect"
	"github.com/omnidal-io/omnidal/pkg/logging"
	"github.com/omnidal-io/omnidal/pkg/schema"
)

// AccessContext is one named database connection with its result cache
// and counters. Contexts are created once per name by the Runtime and
// live for the process lifetime; all methods are safe for concurrent use.
type AccessContext struct {
	name       string
	id         string // instance id for log correlation
	dialect    dialect.Dialect
	connString string
	exec       Executor
	cache      *ResultCache
	pages      *PageFormatCache
	logger     *zap.Logger
	sqlLog     *logging.SQLLogger

	cacheEnabled atomic.Bool
	queryCount   atomic.Int64
	executeCount atomic.Int64

	schemaMu sync.Mutex
	tables   []*schema.Table
}

func newAccessContext(name string, d dialect.Dialect, connString string, exec Executor,
	pages *PageFormatCache, logger *zap.Logger, sqlLog *logging.SQLLogger, cacheEnabled bool) *AccessContext {

	id := uuid.NewString()
	c := &AccessContext{
		name:       name,
		id:         id,
		dialect:    d,
		connString: connString,
		exec:       exec,
		cache:      NewResultCache(),
		pages:      pages,
		logger:     logger.With(zap.String("connection", name), zap.String("context_id", id)),
		sqlLog:     sqlLog,
	}
	c.cacheEnabled.Store(cacheEnabled)
	return c
}

// Name is the logical connection name the context was registered under.
func (c *AccessContext) Name() string { return c.name }

// ID is the per-instance correlation id.
func (c *AccessContext) ID() string { return c.id }

// Dialect is the resolved dialect for this connection.
func (c *AccessContext) Dialect() dialect.Dialect { return c.dialect }

// Query runs a row set query, serving from the cache when enabled.
// deps lists the tables the result depends on; a later Execute naming
// any of them invalidates this entry.
func (c *AccessContext) Query(ctx context.Context, sql string, deps ...string) (*RowSet, error) {
	key := queryKey(sql, c.name)
	if c.cacheEnabled.Load() {
		if payload, ok := c.cache.Lookup(key); ok {
			return payload.(*RowSet), nil
		}
	}

	c.sqlLog.Log(c.name, sql)
	rs, err := c.exec.Query(ctx, sql)
	if err != nil {
		return nil, err
	}
	c.queryCount.Add(1)

	if c.cacheEnabled.Load() {
		rs = c.cache.PutIfAbsent(key, rs, deps).(*RowSet)
	}
	return rs, nil
}

// QueryCount runs a scalar count query through its own cache key space.
func (c *AccessContext) QueryCount(ctx context.Context, sql string, deps ...string) (int64, error) {
	key := countKey(sql, c.name)
	if c.cacheEnabled.Load() {
		if payload, ok := c.cache.Lookup(key); ok {
			return payload.(int64), nil
		}
	}

	c.sqlLog.Log(c.name, sql)
	n, err := c.exec.QueryCount(ctx, sql)
	if err != nil {
		return 0, err
	}
	c.queryCount.Add(1)

	if c.cacheEnabled.Load() {
		n = c.cache.PutIfAbsent(key, n, deps).(int64)
	}
	return n, nil
}

// Execute runs a mutating statement. Every cache entry tagged with any
// of the affected tables is invalidated first; an empty list or "*"
// flushes the whole context cache.
func (c *AccessContext) Execute(ctx context.Context, sql string, affected ...string) (int32, error) {
	c.invalidate(affected)
	c.sqlLog.Log(c.name, sql)
	n, err := c.exec.Execute(ctx, sql)
	if err != nil {
		return 0, err
	}
	c.executeCount.Add(1)
	return n, nil
}

// InsertAndGetIdentity runs an insert and returns the generated identity
// from the same connection. Invalidation mirrors Execute.
func (c *AccessContext) InsertAndGetIdentity(ctx context.Context, sql string, affected ...string) (int64, error) {
	c.invalidate(affected)
	c.sqlLog.Log(c.name, sql)
	id, err := c.exec.InsertAndGetIdentity(ctx, sql)
	if err != nil {
		return 0, err
	}
	c.executeCount.Add(1)
	return id, nil
}

// QueryWithParams runs a parameterized row set query. Parameterized
// statements bypass the cache: bound values are not part of the key.
func (c *AccessContext) QueryWithParams(ctx context.Context, sql string, params ...any) (*RowSet, error) {
	c.sqlLog.Log(c.name, sql)
	rs, err := c.exec.QueryWithParams(ctx, sql, params...)
	if err != nil {
		return nil, err
	}
	c.queryCount.Add(1)
	return rs, nil
}

// ExecuteWithParams runs a parameterized mutating statement.
func (c *AccessContext) ExecuteWithParams(ctx context.Context, sql string, affected []string, params ...any) (int32, error) {
	c.invalidate(affected)
	c.sqlLog.Log(c.name, sql)
	n, err := c.exec.ExecuteWithParams(ctx, sql, params...)
	if err != nil {
		return 0, err
	}
	c.executeCount.Add(1)
	return n, nil
}

func (c *AccessContext) invalidate(affected []string) {
	if len(affected) == 0 {
		c.cache.Invalidate("*")
		return
	}
	for _, t := range affected {
		c.cache.Invalidate(t)
	}
}

// Begin opens (or nests) a transaction; returns the new depth.
func (c *AccessContext) Begin(ctx context.Context) (int32, error) { return c.exec.Begin(ctx) }

// Commit commits the innermost transaction; returns the remaining depth.
func (c *AccessContext) Commit(ctx context.Context) (int32, error) { return c.exec.Commit(ctx) }

// Rollback aborts the transaction; returns the remaining depth.
func (c *AccessContext) Rollback(ctx context.Context) (int32, error) { return c.exec.Rollback(ctx) }

// Page runs sql restricted to the window [offset, offset+limit) using the
// dialect's pagination syntax. The rewritten statement is memoized
// process-wide and the result is cached like any other query.
func (c *AccessContext) Page(ctx context.Context, sql string, offset, limit int, keyColumn string, deps ...string) (*RowSet, error) {
	paged := c.pages.Format(c.dialect, sql, offset, limit, keyColumn, c.name)
	return c.Query(ctx, paged, deps...)
}

// Tables returns the normalized schema snapshot, reading it on first use.
func (c *AccessContext) Tables(ctx context.Context) ([]*schema.Table, error) {
	c.schemaMu.Lock()
	defer c.schemaMu.Unlock()
	if c.tables != nil {
		return c.tables, nil
	}
	return c.refreshSchemaLocked(ctx)
}

// RefreshSchema discards the snapshot and re-reads the schema.
func (c *AccessContext) RefreshSchema(ctx context.Context) ([]*schema.Table, error) {
	c.schemaMu.Lock()
	defer c.schemaMu.Unlock()
	return c.refreshSchemaLocked(ctx)
}

func (c *AccessContext) refreshSchemaLocked(ctx context.Context) ([]*schema.Table, error) {
	reader := schema.NewReader(c.exec, c.dialect, c.logger)
	tables, err := reader.Read(ctx)
	if err != nil {
		return nil, err
	}
	c.tables = tables
	c.logger.Info("schema snapshot refreshed", zap.Int("tables", len(tables)))
	return tables, nil
}

// CacheEnabled reports whether result caching is active.
func (c *AccessContext) CacheEnabled() bool { return c.cacheEnabled.Load() }

// SetCacheEnabled toggles result caching. Disabling flushes immediately,
// so stale entries can never be served after a re-enable.
func (c *AccessContext) SetCacheEnabled(enabled bool) {
	c.cacheEnabled.Store(enabled)
	if !enabled {
		c.cache.Flush()
	}
}

// ClearCache drops every cached result for this context.
func (c *AccessContext) ClearCache() { c.cache.Flush() }

// QueryCounter is the number of executor round trips for queries (cache
// hits excluded).
func (c *AccessContext) QueryCounter() int64 { return c.queryCount.Load() }

// ExecuteCounter is the number of mutating statements executed.
func (c *AccessContext) ExecuteCounter() int64 { return c.executeCount.Load() }

// Close releases the underlying executor.
func (c *AccessContext) Close() error { return c.exec.Close() }

// The context feeds the schema reader directly.
var _ schema.CollectionSource = (Executor)(nil)
