package query

import (
	"github.com/puzpuzpuz/xsync/v3"
	"github.com/rs/zerolog"

	"fiatjaf.com/reqfilter"
)

// Registry keeps the live queries of a client by id so filters added under the same id end up
// in the same Query.
type Registry struct {
	queries *xsync.MapOf[string, *Query]
	emitted *xsync.Counter

	optimizer reqfilter.QueryOptimizer
	logger    *zerolog.Logger
	onRequest func(id string, req Request)
}

type RegistryOptions struct {
	// Optimizer is given to queries that don't specify their own.
	Optimizer reqfilter.QueryOptimizer

	Logger *zerolog.Logger

	// OnRequest receives the requests of every query in the registry, after the query's own
	// OnRequest if it has one.
	OnRequest func(id string, req Request)
}

func NewRegistry(opts RegistryOptions) *Registry {
	if opts.Optimizer == nil {
		opts.Optimizer = reqfilter.DefaultOptimizer
	}
	if opts.Logger == nil {
		nopLogger := zerolog.Nop()
		opts.Logger = &nopLogger
	}

	return &Registry{
		queries:   xsync.NewMapOf[string, *Query](),
		emitted:   xsync.NewCounter(),
		optimizer: opts.Optimizer,
		logger:    opts.Logger,
		onRequest: opts.OnRequest,
	}
}

// Query returns the live query with this id, creating it with opts when there is none.
// opts is ignored for queries that already exist.
func (r *Registry) Query(id string, opts Options) *Query {
	q, loaded := r.queries.LoadOrCompute(id, func() *Query {
		if opts.Optimizer == nil {
			opts.Optimizer = r.optimizer
		}
		if opts.Logger == nil {
			opts.Logger = r.logger
		}
		own := opts.OnRequest
		opts.OnRequest = func(id string, req Request) {
			r.emitted.Inc()
			if own != nil {
				own(id, req)
			}
			if r.onRequest != nil {
				r.onRequest(id, req)
			}
		}
		return New(id, opts)
	})
	if !loaded {
		r.logger.Debug().Str("query", id).Msg("new query")
	}
	return q
}

// Get returns the live query with this id, if any.
func (r *Registry) Get(id string) (*Query, bool) {
	return r.queries.Load(id)
}

// Close cancels the query and forgets it. It returns false when there was no such query.
func (r *Registry) Close(id string) bool {
	q, ok := r.queries.LoadAndDelete(id)
	if !ok {
		return false
	}
	q.Cancel()
	r.logger.Debug().Str("query", id).Int("requests", len(q.Sent())).Msg("closed query")
	return true
}

// CloseAll cancels and forgets every query.
func (r *Registry) CloseAll() {
	r.queries.Range(func(id string, _ *Query) bool {
		r.Close(id)
		return true
	})
}

func (r *Registry) Len() int { return r.queries.Size() }

// Range calls f for each live query until f returns false.
func (r *Registry) Range(f func(id string, q *Query) bool) {
	r.queries.Range(f)
}

// Emitted is the number of requests emitted by all queries of this registry so far.
func (r *Registry) Emitted() int64 { return r.emitted.Value() }
