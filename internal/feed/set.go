package feed

import (
	"context"
	"fmt"

	"github.com/gather-social/gather-client/internal/models"
)

// Lister is the slice of the gateway client the feeds consume.
type Lister interface {
	FollowingEvents(ctx context.Context, page int) ([]models.EventSummary, error)
	UpcomingEvents(ctx context.Context, page int) ([]models.EventSummary, error)
	PreviousEvents(ctx context.Context, userID, page int) ([]models.EventSummary, error)
	UnratedEvents(ctx context.Context, page int) ([]models.EventSummary, error)
	CreatedEvents(ctx context.Context, userID, page int) ([]models.EventSummary, error)
}

// UserSource yields the current user id for the feeds whose backing
// query is keyed by user.
type UserSource interface {
	UserID() int
}

// Set binds every feed key to its backing gateway query. Feeds are
// independent: fetches on different keys are unordered relative to each
// other.
type Set struct {
	pagers map[Key]*Paginator
}

// NewSet wires all five feeds against the gateway.
func NewSet(gw Lister, user UserSource) *Set {
	return &Set{pagers: map[Key]*Paginator{
		Following: NewPaginator(Following, func(ctx context.Context, page int) ([]models.EventSummary, error) {
			return gw.FollowingEvents(ctx, page)
		}),
		Upcoming: NewPaginator(Upcoming, func(ctx context.Context, page int) ([]models.EventSummary, error) {
			return gw.UpcomingEvents(ctx, page)
		}),
		Previous: NewPaginator(Previous, func(ctx context.Context, page int) ([]models.EventSummary, error) {
			return gw.PreviousEvents(ctx, user.UserID(), page)
		}),
		Unrated: NewPaginator(Unrated, func(ctx context.Context, page int) ([]models.EventSummary, error) {
			return gw.UnratedEvents(ctx, page)
		}),
		Created: NewPaginator(Created, func(ctx context.Context, page int) ([]models.EventSummary, error) {
			return gw.CreatedEvents(ctx, user.UserID(), page)
		}),
	}}
}

// Feed returns the paginator for key, or nil for an unknown key.
func (s *Set) Feed(key Key) *Paginator {
	return s.pagers[key]
}

// FetchNext advances the named feed.
func (s *Set) FetchNext(ctx context.Context, key Key, reset bool) error {
	p := s.pagers[key]
	if p == nil {
		return fmt.Errorf("feed: unknown feed %q", key)
	}
	return p.FetchNext(ctx, reset)
}
