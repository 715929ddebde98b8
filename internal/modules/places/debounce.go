// README: Debounced search decoupled from any UI; only the latest call reaches the provider.
package places

import (
	"context"
	"errors"
	"sync"
	"time"

	"guava/internal/maps"
)

// DefaultDebounce is the quiet period before a query is sent.
const DefaultDebounce = 300 * time.Millisecond

// ErrSuperseded is returned to a caller whose query was replaced by a newer one.
var ErrSuperseded = errors.New("superseded by a newer query")

type SearchFunc func(ctx context.Context, query string) ([]maps.Suggestion, error)

type Debouncer struct {
	search SearchFunc
	wait   time.Duration

	mu  sync.Mutex
	gen uint64
}

func NewDebouncer(search SearchFunc, wait time.Duration) *Debouncer {
	if wait <= 0 {
		wait = DefaultDebounce
	}
	return &Debouncer{search: search, wait: wait}
}

// Search waits out the debounce window and runs the query unless a newer call arrived
// meanwhile. Results that resolve after a newer call started are also dropped.
func (d *Debouncer) Search(ctx context.Context, query string) ([]maps.Suggestion, error) {
	token := d.next()

	t := time.NewTimer(d.wait)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case <-t.C:
	}

	if !d.current(token) {
		return nil, ErrSuperseded
	}
	res, err := d.search(ctx, query)
	if !d.current(token) {
		return nil, ErrSuperseded
	}
	return res, err
}

func (d *Debouncer) next() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.gen++
	return d.gen
}

func (d *Debouncer) current(token uint64) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.gen == token
}
