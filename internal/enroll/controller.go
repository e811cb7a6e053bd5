package enroll

import (
	"context"
	"fmt"
	"time"

	"github.com/gather-social/gather-client/internal/models"
)

// API is the slice of the gateway client the controller consumes.
type API interface {
	Event(ctx context.Context, t models.EventType, id int) (models.Event, error)
	Participants(ctx context.Context, t models.EventType, id int, enrolled bool) ([]models.User, error)
	Invitations(ctx context.Context) ([]models.Invitation, error)
	Enroll(ctx context.Context, t models.EventType, id int) error
	RespondInvitation(ctx context.Context, t models.EventType, invitationID int, accept bool) error
	RespondEnrollmentRequest(ctx context.Context, t models.EventType, eventID, userID int, accept bool) error
	Rate(ctx context.Context, t models.EventType, id, rate int) error
}

// UserSource yields the current user id.
type UserSource interface {
	UserID() int
}

// Controller holds the loaded state of one event and runs the actions
// on it. It is owned by a single caller; all mutation happens through
// its methods, and every write goes back to the gateway followed by a
// re-fetch; there is no optimistic local update.
type Controller struct {
	gw   API
	user UserSource

	eventID   int
	eventType models.EventType

	event        models.Event
	participants []models.User
	requesters   []models.User
	invitation   *models.Invitation
	lastErr      error
}

// NewController builds an unloaded controller.
func NewController(gw API, user UserSource) *Controller {
	return &Controller{gw: gw, user: user}
}

// finish records the outcome of a completed operation: success clears
// the retained error, failure overwrites it.
func (c *Controller) finish(err error) error {
	c.lastErr = err
	return err
}

// Load fetches the event detail, the enrolled participants, the pending
// requesters, and the user's matching invitation, in that order. The
// first failure aborts the load.
func (c *Controller) Load(ctx context.Context, t models.EventType, id int) error {
	c.eventID = id
	c.eventType = t

	ev, err := c.gw.Event(ctx, t, id)
	if err != nil {
		return c.finish(err)
	}
	participants, err := c.gw.Participants(ctx, t, id, true)
	if err != nil {
		return c.finish(err)
	}
	requesters, err := c.gw.Participants(ctx, t, id, false)
	if err != nil {
		return c.finish(err)
	}
	if err := c.reloadInvitation(ctx); err != nil {
		return c.finish(err)
	}

	c.event = ev
	c.participants = participants
	c.requesters = requesters
	return c.finish(nil)
}

// reloadInvitation re-fetches the user's invitations and keeps the one
// addressing this (event id, event type), if any.
func (c *Controller) reloadInvitation(ctx context.Context) error {
	invitations, err := c.gw.Invitations(ctx)
	if err != nil {
		return err
	}
	c.invitation = nil
	for i := range invitations {
		inv := invitations[i]
		if inv.Event.ID == c.eventID && inv.Event.EventType == c.eventType {
			c.invitation = &inv
			break
		}
	}
	return nil
}

// reloadEventState re-fetches detail and both user lists after a write.
// Failures here surface like any other gateway failure; the stale local
// state simply remains until the next successful load.
func (c *Controller) reloadEventState(ctx context.Context) error {
	ev, err := c.gw.Event(ctx, c.eventType, c.eventID)
	if err != nil {
		return err
	}
	participants, err := c.gw.Participants(ctx, c.eventType, c.eventID, true)
	if err != nil {
		return err
	}
	requesters, err := c.gw.Participants(ctx, c.eventType, c.eventID, false)
	if err != nil {
		return err
	}
	c.event = ev
	c.participants = participants
	c.requesters = requesters
	return nil
}

// Action resolves the current call-to-action from the loaded state.
func (c *Controller) Action(now time.Time) Action {
	return Resolve(Input{
		Event:         c.event,
		CurrentUserID: c.user.UserID(),
		Participants:  c.participants,
		Requesters:    c.requesters,
		Invitation:    c.invitation,
		Now:           now,
	})
}

// Submit executes the resolved action's primary effect.
//
// Join and RequestToJoin call the enroll endpoint and then re-fetch the
// event state. AcceptDenyInvitation needs the accept/deny choice and
// must go through Respond. Disabled actions are no-ops.
func (c *Controller) Submit(ctx context.Context, now time.Time) error {
	act := c.Action(now)
	switch act.Kind {
	case Join, RequestToJoin:
		if err := c.gw.Enroll(ctx, c.eventType, c.eventID); err != nil {
			return c.finish(err)
		}
		return c.finish(c.reloadEventState(ctx))
	case AcceptDenyInvitation:
		return c.finish(fmt.Errorf("enroll: invitation response requires Respond(accept)"))
	default:
		return nil
	}
}

// Respond accepts or denies the pending invitation, then re-fetches the
// invitation list and the event state so the action re-resolves from
// fresh data.
func (c *Controller) Respond(ctx context.Context, accept bool) error {
	if c.invitation == nil {
		return c.finish(fmt.Errorf("enroll: no pending invitation for event %d/%s", c.eventID, c.eventType))
	}
	if err := c.gw.RespondInvitation(ctx, c.eventType, c.invitation.ID, accept); err != nil {
		return c.finish(err)
	}
	if err := c.reloadInvitation(ctx); err != nil {
		return c.finish(err)
	}
	return c.finish(c.reloadEventState(ctx))
}

// ApproveRequest is the creator-side flow: approve or deny another
// user's join request, then re-fetch the event state.
func (c *Controller) ApproveRequest(ctx context.Context, userID int, accept bool) error {
	if err := c.gw.RespondEnrollmentRequest(ctx, c.eventType, c.eventID, userID, accept); err != nil {
		return c.finish(err)
	}
	return c.finish(c.reloadEventState(ctx))
}

// Rate submits a post-event rating for the loaded event.
func (c *Controller) Rate(ctx context.Context, rate int) error {
	return c.finish(c.gw.Rate(ctx, c.eventType, c.eventID, rate))
}

// Event returns the loaded event detail.
func (c *Controller) Event() models.Event { return c.event }

// Participants returns the enrolled users from the last fetch.
func (c *Controller) Participants() []models.User { return c.participants }

// Requesters returns the pending join requesters from the last fetch.
func (c *Controller) Requesters() []models.User { return c.requesters }

// Invitation returns the user's pending invitation to this event, nil
// when there is none.
func (c *Controller) Invitation() *models.Invitation { return c.invitation }

// Err returns the latest retained error; nil after a completed
// successful operation.
func (c *Controller) Err() error { return c.lastErr }
