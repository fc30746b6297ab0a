package dal

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/omnidal-io/omnidal/pkg/apperrors"
	"github.com/omnidal-io/omnidal/pkg/dialect"
	"github.com/omnidal-io/omnidal/pkg/logging"
	"github.com/omnidal-io/omnidal/pkg/retry"
)

// Registration describes one named connection before it is opened.
// DialectName is an explicit override; normally the dialect is resolved
// from the provider hint or the connection string.
type Registration struct {
	Name             string
	ConnectionString string
	Provider         string
	DialectName      string
	DisableCache     bool
}

// Runtime owns the process-wide connection registry: registrations,
// lazily created access contexts, and the shared pagination cache.
type Runtime struct {
	mu            sync.RWMutex
	registrations map[string]Registration
	contexts      map[string]*AccessContext

	pages  *PageFormatCache
	opener ExecutorOpener
	logger *zap.Logger
	sqlLog *logging.SQLLogger
}

// NewRuntime creates an empty registry. opener builds executors on first
// use of a connection; logger and sqlLog may be nil.
func NewRuntime(opener ExecutorOpener, logger *zap.Logger, sqlLog *logging.SQLLogger) *Runtime {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runtime{
		registrations: make(map[string]Registration),
		contexts:      make(map[string]*AccessContext),
		pages:         NewPageFormatCache(),
		opener:        opener,
		logger:        logger,
		sqlLog:        sqlLog,
	}
}

// Register records a named connection. First registration wins; a
// duplicate name is a silent no-op so library consumers can register
// defaults without clobbering application config.
func (r *Runtime) Register(reg Registration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.registrations[reg.Name]; exists {
		return
	}
	r.registrations[reg.Name] = reg
}

// Registered lists the known connection names.
func (r *Runtime) Registered() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.registrations))
	for name := range r.registrations {
		names = append(names, name)
	}
	return names
}

// GetOrCreate returns the access context for name, creating it on first
// use. Exactly one context exists per name for the process lifetime, even
// under concurrent first calls. An unregistered name is
// apperrors.ErrUnknownConnection.
func (r *Runtime) GetOrCreate(ctx context.Context, name string) (*AccessContext, error) {
	r.mu.RLock()
	c, ok := r.contexts[name]
	r.mu.RUnlock()
	if ok {
		return c, nil
	}

	r.mu.Lock()
	// Double check: another goroutine may have created it while we waited.
	if c, ok := r.contexts[name]; ok {
		r.mu.Unlock()
		return c, nil
	}

	reg, ok := r.registrations[name]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("%w: %q", apperrors.ErrUnknownConnection, name)
	}

	c, err := r.create(ctx, reg)
	if err != nil {
		r.mu.Unlock()
		return nil, err
	}
	r.contexts[name] = c
	r.mu.Unlock()

	// Best-effort consistency check outside the lock; failure never aborts
	// construction. A dead backend surfaces on first real use anyway.
	if err := retry.Do(ctx, retry.DefaultConfig(), func() error {
		return c.exec.Ping(ctx)
	}); err != nil {
		r.logger.Warn("connection check failed, context kept",
			zap.String("connection", name),
			zap.String("error", logging.SanitizeError(err)))
	}
	return c, nil
}

func (r *Runtime) create(ctx context.Context, reg Registration) (*AccessContext, error) {
	var d dialect.Dialect
	var err error
	if reg.DialectName != "" {
		d, err = dialect.ForName(reg.DialectName)
	} else {
		d, err = dialect.Resolve(reg.Provider, reg.ConnectionString)
	}
	if err != nil {
		return nil, err
	}

	exec, err := r.opener(ctx, d, reg.ConnectionString)
	if err != nil {
		return nil, fmt.Errorf("open %q: %w", reg.Name, err)
	}

	c := newAccessContext(reg.Name, d, reg.ConnectionString, exec,
		r.pages, r.logger, r.sqlLog, !reg.DisableCache)

	r.logger.Info("access context created",
		zap.String("connection", reg.Name),
		zap.String("dialect", d.Name()),
		zap.String("context_id", c.id),
		zap.String("dsn", logging.SanitizeConnectionString(reg.ConnectionString)))
	return c, nil
}

// Get returns an already created context without creating one.
func (r *Runtime) Get(name string) (*AccessContext, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.contexts[name]
	return c, ok
}

// Close releases every open context. The runtime stays usable; contexts
// are recreated on next use.
func (r *Runtime) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for name, c := range r.contexts {
		if err := c.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
		delete(r.contexts, name)
	}
	return firstErr
}
