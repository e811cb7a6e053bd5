// Package feed accumulates pages of event lists. Each named feed owns
// its list and page cursor exclusively; nothing is shared across feeds.
package feed

import (
	"context"
	"fmt"
	"sync"

	"github.com/gather-social/gather-client/internal/models"
)

// Key names one of the gateway's paginated event queries.
type Key string

const (
	Following Key = "following"
	Upcoming  Key = "upcoming"
	Previous  Key = "previous"
	Unrated   Key = "unrated"
	Created   Key = "created"
)

// Keys lists every feed in display order.
var Keys = []Key{Following, Upcoming, Previous, Unrated, Created}

// ParseKey maps a user-supplied feed name to its Key.
func ParseKey(s string) (Key, error) {
	for _, k := range Keys {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("feed: unknown feed %q", s)
}

// FetchFunc runs the feed's backing query for one page.
type FetchFunc func(ctx context.Context, page int) ([]models.EventSummary, error)

// Paginator accumulates one feed's pages.
//
// At most one fetch is in flight at a time; FetchNext while one is
// pending is a silent no-op, which also makes page fetches for a feed
// strictly sequential. Pages are appended in response order with no
// dedup across pages: if the backing query shifts under concurrent
// writes, an event can appear twice. Accepted limitation.
type Paginator struct {
	key   Key
	fetch FetchFunc

	mu       sync.Mutex
	events   []models.EventSummary
	page     int
	more     bool
	inFlight bool
	lastErr  error
}

// NewPaginator builds an empty paginator for key. A fresh feed reports
// more=true so the first fetch is always worth issuing.
func NewPaginator(key Key, fetch FetchFunc) *Paginator {
	return &Paginator{key: key, fetch: fetch, more: true}
}

// FetchNext requests the next page and appends it.
//
// reset=true zeroes the cursor and clears the accumulated list before
// the request goes out. On success the cursor advances and the more
// flag becomes true iff the page was non-empty. On failure the list and
// cursor are left as they were and the error is returned, never retried.
func (p *Paginator) FetchNext(ctx context.Context, reset bool) error {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return nil
	}
	p.inFlight = true
	if reset {
		p.page = 0
		p.events = nil
		p.more = true
	}
	page := p.page
	p.mu.Unlock()

	events, err := p.fetch(ctx, page)

	p.mu.Lock()
	defer p.mu.Unlock()
	p.inFlight = false
	if err != nil {
		p.lastErr = err
		return err
	}
	p.events = append(p.events, events...)
	p.page++
	p.more = len(events) > 0
	p.lastErr = nil
	return nil
}

// Key returns the feed's name.
func (p *Paginator) Key() Key { return p.key }

// Events returns a copy of the accumulated list in arrival order.
func (p *Paginator) Events() []models.EventSummary {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]models.EventSummary, len(p.events))
	copy(out, p.events)
	return out
}

// Page returns the cursor: the next page number to request.
func (p *Paginator) Page() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.page
}

// More reports whether the last page was non-empty, i.e. whether another
// fetch is likely to yield events.
func (p *Paginator) More() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.more
}

// Err returns the feed's latest error. It is held until the next
// completed fetch on this feed overwrites it; other feeds' errors never
// clear it.
func (p *Paginator) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastErr
}
