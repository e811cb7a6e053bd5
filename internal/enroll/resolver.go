// Package enroll derives the single call-to-action a user may take on
// an event, and runs the gateway side effects behind each action.
package enroll

import (
	"time"

	"github.com/gather-social/gather-client/internal/models"
)

// Kind tags an Action variant.
type Kind string

const (
	// CreatorView: the current user created the event and manages it
	// (invites, join-request approval) instead of enrolling.
	CreatorView Kind = "creator-view"
	// AcceptDenyInvitation: a pending invitation for this event awaits
	// the user's accept/deny response.
	AcceptDenyInvitation Kind = "accept-deny-invitation"
	// AlreadyJoined: the user is enrolled; nothing to do.
	AlreadyJoined Kind = "already-joined"
	// EnrollmentFull: enrolled count has reached the event's capacity.
	EnrollmentFull Kind = "enrollment-full"
	// EventEnded: the event's end date has passed.
	EventEnded Kind = "event-ended"
	// RequestSent: a join request is pending with the creator.
	RequestSent Kind = "request-sent"
	// RequestToJoin: private event; submitting files a join request.
	RequestToJoin Kind = "request-to-join"
	// Join: public event with room; submitting enrolls immediately.
	Join Kind = "join"
)

// Action is the resolved call-to-action. Label matches the button text
// of the reference UI; Invitation is set only for AcceptDenyInvitation.
type Action struct {
	Kind       Kind
	Enabled    bool
	Label      string
	Invitation *models.Invitation
}

// Input is everything the resolution is a pure function of. The
// resolver owns no state; re-resolve whenever any input changes.
type Input struct {
	Event         models.Event
	CurrentUserID int
	Participants  []models.User
	Requesters    []models.User
	Invitation    *models.Invitation
	Now           time.Time
}

// rule is one row of the decision table.
type rule struct {
	when   func(Input) bool
	action func(Input) Action
}

// rules is the ordered decision table; the first matching row wins, so
// order carries the whole priority policy. The final row always matches.
var rules = []rule{
	{
		when: func(in Input) bool { return in.CurrentUserID == in.Event.Creator.ID },
		action: func(in Input) Action {
			return Action{Kind: CreatorView, Enabled: true, Label: "Your Event"}
		},
	},
	{
		when: func(in Input) bool { return pendingInvitation(in) != nil },
		action: func(in Input) Action {
			return Action{Kind: AcceptDenyInvitation, Enabled: true, Label: "Accept / Deny", Invitation: pendingInvitation(in)}
		},
	},
	{
		when: func(in Input) bool { return containsUser(in.Participants, in.CurrentUserID) },
		action: func(in Input) Action {
			return Action{Kind: AlreadyJoined, Label: "Already Joined"}
		},
	},
	{
		when: func(in Input) bool {
			return in.Event.Capacity != nil && in.Event.Enrolled == *in.Event.Capacity
		},
		action: func(in Input) Action {
			return Action{Kind: EnrollmentFull, Label: "Enrollment Full"}
		},
	},
	{
		when: ended,
		action: func(in Input) Action {
			return Action{Kind: EventEnded, Label: "Event Ended"}
		},
	},
	{
		when: func(in Input) bool { return containsUser(in.Requesters, in.CurrentUserID) },
		action: func(in Input) Action {
			return Action{Kind: RequestSent, Label: "Request Sent"}
		},
	},
	{
		when: func(in Input) bool { return in.Event.IsPrivate },
		action: func(in Input) Action {
			return Action{Kind: RequestToJoin, Enabled: true, Label: "Request to Join"}
		},
	},
	{
		when: func(Input) bool { return true },
		action: func(in Input) Action {
			return Action{Kind: Join, Enabled: true, Label: "Join"}
		},
	},
}

// Resolve evaluates the decision table.
//
// The capacity row compares enrolled against the raw capacity value; an
// event carrying the 999 unlimited sentinel with 999 enrolled therefore
// reads as full. That mirrors upstream behavior and is covered by a
// test rather than unified with models.Event.Unlimited.
func Resolve(in Input) Action {
	for _, r := range rules {
		if r.when(in) {
			return r.action(in)
		}
	}
	// Unreachable: the last rule always matches.
	return Action{}
}

// pendingInvitation returns the invitation when it targets this exact
// (event id, event type); invitations for other events don't count.
func pendingInvitation(in Input) *models.Invitation {
	inv := in.Invitation
	if inv == nil {
		return nil
	}
	if inv.Event.ID != in.Event.ID || inv.Event.EventType != in.Event.EventType {
		return nil
	}
	return inv
}

func containsUser(users []models.User, id int) bool {
	for _, u := range users {
		if u.ID == id {
			return true
		}
	}
	return false
}

// ended reports whether the event's end date has passed. An end date no
// known layout can parse counts as ended, matching the reference
// client's distant-past default.
func ended(in Input) bool {
	end, ok := models.ParseEventDate(in.Event.EndDate)
	if !ok {
		return true
	}
	return in.Now.After(end)
}
