package query

import (
	"errors"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/rs/zerolog"

	"fiatjaf.com/reqfilter"
)

const DefaultGroupingDelay = 100 * time.Millisecond

var ErrQueryClosed = errors.New("query is closed")

// Request is what gets sent to a relay: the merged filters of one REQ. An empty Relay means the
// default relays of whoever is sending it.
type Request struct {
	Relay   string
	Filters reqfilter.Filters
}

type Options struct {
	// SkipDiff makes every emission request everything again instead of only the flat filters
	// that weren't sent yet.
	SkipDiff bool

	// GroupingDelay is how long to wait for more filters after the last Add before emitting.
	// Zero means DefaultGroupingDelay, negative means emitting right away from Add, which then
	// returns once the request was delivered unless another call was already delivering.
	GroupingDelay time.Duration

	// Optimizer defaults to reqfilter.DefaultOptimizer.
	Optimizer reqfilter.QueryOptimizer

	Logger *zerolog.Logger

	// OnRequest is called once for each Request emitted, in order and never concurrently for the
	// same query. It may call any method of that query: requests emitted from inside it are
	// delivered after it returns.
	OnRequest func(id string, req Request)
}

// Query accumulates the filters a client wants and turns them into relay requests, sending
// only what changed since the last emission.
type Query struct {
	ID string

	opts      Options
	debounced func(func())

	mu         sync.Mutex
	emitMu     sync.Mutex
	requested  []reqfilter.Filter
	sent       []Request
	outbox     []Request
	delivering bool
	closed     bool
}

func New(id string, opts Options) *Query {
	if opts.Optimizer == nil {
		opts.Optimizer = reqfilter.DefaultOptimizer
	}
	if opts.Logger == nil {
		nopLogger := zerolog.Nop()
		opts.Logger = &nopLogger
	}
	if opts.GroupingDelay == 0 {
		opts.GroupingDelay = DefaultGroupingDelay
	}

	q := &Query{ID: id, opts: opts}
	if opts.GroupingDelay > 0 {
		q.debounced = debounce.New(opts.GroupingDelay)
	}
	return q
}

// Add appends filters to the query and schedules an emission.
func (q *Query) Add(filters ...reqfilter.Filter) error {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return ErrQueryClosed
	}
	for _, f := range filters {
		q.requested = append(q.requested, f.Clone())
	}
	q.mu.Unlock()

	q.opts.Logger.Debug().Str("query", q.ID).Int("filters", len(filters)).Msg("added filters")

	if q.debounced == nil {
		q.emit()
	} else {
		q.debounced(q.emit)
	}
	return nil
}

// Flush emits whatever is pending right away instead of waiting for the grouping delay.
func (q *Query) Flush() {
	if q.debounced != nil {
		q.debounced(func() {})
	}
	q.emit()
}

// Cancel drops any pending emission and makes further calls to Add fail.
// An emission that already started may still deliver its requests.
func (q *Query) Cancel() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()

	if q.debounced != nil {
		q.debounced(func() {})
	}
}

func (q *Query) IsClosed() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.closed
}

// Sent returns every request emitted so far, in order.
func (q *Query) Sent() []Request {
	q.mu.Lock()
	defer q.mu.Unlock()

	sent := make([]Request, len(q.sent))
	for i, req := range q.sent {
		sent[i] = Request{Relay: req.Relay, Filters: cloneFilters(req.Filters)}
	}
	return sent
}

// Filters returns the filters already sent, with the relay they were sent to put back in.
func (q *Query) Filters() []reqfilter.Filter {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.sentFilters()
}

// Compressed is Filters merged down as far as the optimizer goes.
func (q *Query) Compressed() []reqfilter.Filter {
	return q.opts.Optimizer.Compress(q.Filters())
}

func (q *Query) sentFilters() []reqfilter.Filter {
	filters := make([]reqfilter.Filter, 0, len(q.sent))
	for _, req := range q.sent {
		for _, f := range req.Filters {
			f = f.Clone()
			if req.Relay != "" {
				f.Relays = []string{req.Relay}
			}
			filters = append(filters, f)
		}
	}
	return filters
}

func (q *Query) emit() {
	q.build()
	q.deliver()
}

// build computes what wasn't sent yet and queues it for delivery.
func (q *Query) build() {
	q.emitMu.Lock()
	defer q.emitMu.Unlock()

	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return
	}
	requested := q.requested
	sent := q.sentFilters()
	q.mu.Unlock()

	start := time.Now()
	var flats []reqfilter.FlatFilter
	if !q.opts.SkipDiff && len(sent) > 0 {
		flats = q.opts.Optimizer.GetDiff(sent, requested)
		q.opts.Logger.Debug().Str("query", q.ID).Dur("took", time.Since(start)).Int("added", len(flats)).
			Msg("built diff")
	} else {
		for _, f := range requested {
			flats = append(flats, q.opts.Optimizer.ExpandFilter(f)...)
		}
		q.opts.Logger.Debug().Str("query", q.ID).Dur("took", time.Since(start)).Int("flats", len(flats)).
			Msg("built full request")
	}
	if len(flats) == 0 {
		return
	}

	requests := groupByRelay(q.opts.Optimizer, flats)

	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return
	}
	q.sent = append(q.sent, requests...)
	q.outbox = append(q.outbox, requests...)
}

// deliver drains the outbox into OnRequest. Only one caller delivers at a time, the others
// return right away and leave their requests to it.
func (q *Query) deliver() {
	q.mu.Lock()
	if q.delivering {
		q.mu.Unlock()
		return
	}
	q.delivering = true
	for len(q.outbox) > 0 {
		req := q.outbox[0]
		q.outbox = q.outbox[1:]
		q.mu.Unlock()

		q.opts.Logger.Debug().Str("query", q.ID).Str("relay", req.Relay).Stringer("filters", req.Filters).
			Msg("emitting")
		if q.opts.OnRequest != nil {
			q.opts.OnRequest(q.ID, Request{Relay: req.Relay, Filters: cloneFilters(req.Filters)})
		}

		q.mu.Lock()
	}
	q.outbox = nil
	q.delivering = false
	q.mu.Unlock()
}

// groupByRelay splits flat filters by their relay, which is removed from the filter itself, and
// merges each group into one request. Groups come out in the order their relay first appears.
func groupByRelay(optimizer reqfilter.QueryOptimizer, flats []reqfilter.FlatFilter) []Request {
	var relays []string
	groups := make(map[string][]reqfilter.FlatFilter)
	for _, ff := range flats {
		relay := ""
		if ff.Relay != nil {
			relay = *ff.Relay
			ff.Relay = nil
		}
		if _, ok := groups[relay]; !ok {
			relays = append(relays, relay)
		}
		groups[relay] = append(groups[relay], ff)
	}

	requests := make([]Request, len(relays))
	for i, relay := range relays {
		requests[i] = Request{Relay: relay, Filters: optimizer.FlatMerge(groups[relay])}
	}
	return requests
}

func cloneFilters(filters reqfilter.Filters) reqfilter.Filters {
	clones := make(reqfilter.Filters, len(filters))
	for i, f := range filters {
		clones[i] = f.Clone()
	}
	return clones
}
