package enroll

import (
	"testing"
	"time"

	"github.com/gather-social/gather-client/internal/models"
)

const currentUserID = 42

var now = time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)

// baseInput is an event the current user can plainly join: public, not
// full, not ended, no memberships, no invitation.
func baseInput() Input {
	capacity := 20
	return Input{
		Event: models.Event{
			ID:        10,
			EventType: models.Sport,
			Title:     "Sunday Football",
			Creator:   models.User{ID: 1, Username: "maria"},
			Capacity:  &capacity,
			Enrolled:  5,
			Category:  "Football",
			StartDate: now.Add(24 * time.Hour).Format(time.RFC3339),
			EndDate:   now.Add(26 * time.Hour).Format(time.RFC3339),
		},
		CurrentUserID: currentUserID,
		Now:           now,
	}
}

func invitationFor(in Input) *models.Invitation {
	return &models.Invitation{
		ID:    7,
		Event: in.Event.Summary(),
		User:  models.User{ID: currentUserID},
		Date:  now.Format(time.RFC3339),
	}
}

// conditions lists one trigger per resolver rule, in the resolver's
// priority order. The pairwise test below derives from this order.
var conditions = []struct {
	name string
	set  func(*Input)
	kind Kind
}{
	{"creator", func(in *Input) { in.Event.Creator.ID = currentUserID }, CreatorView},
	{"invitation", func(in *Input) { in.Invitation = invitationFor(*in) }, AcceptDenyInvitation},
	{"participant", func(in *Input) {
		in.Participants = append(in.Participants, models.User{ID: currentUserID})
	}, AlreadyJoined},
	{"full", func(in *Input) { in.Event.Enrolled = *in.Event.Capacity }, EnrollmentFull},
	{"ended", func(in *Input) { in.Event.EndDate = now.Add(-time.Hour).Format(time.RFC3339) }, EventEnded},
	{"requester", func(in *Input) {
		in.Requesters = append(in.Requesters, models.User{ID: currentUserID})
	}, RequestSent},
	{"private", func(in *Input) { in.Event.IsPrivate = true }, RequestToJoin},
}

func TestResolveBase(t *testing.T) {
	act := Resolve(baseInput())
	if act.Kind != Join {
		t.Fatalf("kind = %s, want %s", act.Kind, Join)
	}
	if !act.Enabled {
		t.Fatal("Join must be enabled")
	}
}

func TestResolveSingleConditions(t *testing.T) {
	enabled := map[Kind]bool{
		CreatorView:          true,
		AcceptDenyInvitation: true,
		RequestToJoin:        true,
		Join:                 true,
	}
	for _, c := range conditions {
		t.Run(c.name, func(t *testing.T) {
			in := baseInput()
			c.set(&in)
			act := Resolve(in)
			if act.Kind != c.kind {
				t.Fatalf("kind = %s, want %s", act.Kind, c.kind)
			}
			if act.Enabled != enabled[c.kind] {
				t.Fatalf("enabled = %v, want %v", act.Enabled, enabled[c.kind])
			}
		})
	}
}

// TestResolvePriorityPairwise checks every pair of conditions: when two
// hold at once, the higher-priority rule must win. The whole policy is
// the rule order, so this is the load-bearing test.
func TestResolvePriorityPairwise(t *testing.T) {
	for i := 0; i < len(conditions); i++ {
		for j := i + 1; j < len(conditions); j++ {
			hi, lo := conditions[i], conditions[j]
			t.Run(hi.name+"+"+lo.name, func(t *testing.T) {
				in := baseInput()
				hi.set(&in)
				lo.set(&in)
				if act := Resolve(in); act.Kind != hi.kind {
					t.Fatalf("kind = %s, want %s", act.Kind, hi.kind)
				}
			})
		}
	}
}

func TestResolveCreatorBeatsAllMemberships(t *testing.T) {
	// A creator who somehow also shows up in every other list is still
	// a creator.
	in := baseInput()
	for _, c := range conditions {
		c.set(&in)
	}
	if act := Resolve(in); act.Kind != CreatorView {
		t.Fatalf("kind = %s, want %s", act.Kind, CreatorView)
	}
}

func TestResolveRepresentativeScenarios(t *testing.T) {
	t.Run("full event", func(t *testing.T) {
		in := baseInput()
		in.Event.Enrolled = 20
		act := Resolve(in)
		if act.Kind != EnrollmentFull || act.Enabled {
			t.Fatalf("got %s enabled=%v, want disabled %s", act.Kind, act.Enabled, EnrollmentFull)
		}
	})

	t.Run("one seat left on a private event", func(t *testing.T) {
		in := baseInput()
		in.Event.Enrolled = 19
		in.Event.IsPrivate = true
		act := Resolve(in)
		if act.Kind != RequestToJoin || !act.Enabled {
			t.Fatalf("got %s enabled=%v, want enabled %s", act.Kind, act.Enabled, RequestToJoin)
		}
	})

	t.Run("ended event with free capacity", func(t *testing.T) {
		in := baseInput()
		in.Event.EndDate = now.Add(-48 * time.Hour).Format(time.RFC3339)
		act := Resolve(in)
		if act.Kind != EventEnded || act.Enabled {
			t.Fatalf("got %s enabled=%v, want disabled %s", act.Kind, act.Enabled, EventEnded)
		}
	})
}

func TestResolveInvitationMustMatchEventIdentity(t *testing.T) {
	t.Run("different id", func(t *testing.T) {
		in := baseInput()
		inv := invitationFor(in)
		inv.Event.ID = 999
		in.Invitation = inv
		if act := Resolve(in); act.Kind != Join {
			t.Fatalf("kind = %s, want %s", act.Kind, Join)
		}
	})

	t.Run("same id different type partition", func(t *testing.T) {
		in := baseInput()
		inv := invitationFor(in)
		inv.Event.EventType = models.Musical
		in.Invitation = inv
		if act := Resolve(in); act.Kind != Join {
			t.Fatalf("kind = %s, want %s", act.Kind, Join)
		}
	})

	t.Run("matching invitation carries itself", func(t *testing.T) {
		in := baseInput()
		in.Invitation = invitationFor(in)
		act := Resolve(in)
		if act.Kind != AcceptDenyInvitation {
			t.Fatalf("kind = %s, want %s", act.Kind, AcceptDenyInvitation)
		}
		if act.Invitation == nil || act.Invitation.ID != 7 {
			t.Fatalf("invitation = %+v, want id 7", act.Invitation)
		}
	})
}

func TestResolveCapacityEdgeCases(t *testing.T) {
	t.Run("nil capacity never reads full", func(t *testing.T) {
		in := baseInput()
		in.Event.Capacity = nil
		in.Event.Enrolled = 100000
		if act := Resolve(in); act.Kind != Join {
			t.Fatalf("kind = %s, want %s", act.Kind, Join)
		}
	})

	// The 999 sentinel means "unlimited" in display paths, but the
	// resolver keeps the upstream equality check: 999 enrolled out of a
	// 999 capacity reads as full. Documented inconsistency, not a bug.
	t.Run("999 sentinel still compares as a plain capacity", func(t *testing.T) {
		in := baseInput()
		sentinel := models.UnlimitedCapacity
		in.Event.Capacity = &sentinel
		in.Event.Enrolled = models.UnlimitedCapacity
		if act := Resolve(in); act.Kind != EnrollmentFull {
			t.Fatalf("kind = %s, want %s", act.Kind, EnrollmentFull)
		}
	})
}

func TestResolveUnparseableEndDateCountsAsEnded(t *testing.T) {
	in := baseInput()
	in.Event.EndDate = "not-a-date"
	if act := Resolve(in); act.Kind != EventEnded {
		t.Fatalf("kind = %s, want %s", act.Kind, EventEnded)
	}
}
