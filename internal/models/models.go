// Package models defines the wire/domain types exchanged with the gather
// gateway. Field names in the JSON tags match the gateway's payloads exactly.
package models

import "time"

// EventType partitions the event id space: ids are unique only within a
// type, so event identity is always the (ID, EventType) pair.
type EventType string

const (
	Musical   EventType = "Musical"
	Nature    EventType = "Nature"
	Sport     EventType = "Sport"
	StagePlay EventType = "StagePlay"
)

// EventTypes lists every type the gateway serves.
var EventTypes = []EventType{Musical, Nature, Sport, StagePlay}

// Valid reports whether t is one of the gateway's event types.
func (t EventType) Valid() bool {
	switch t {
	case Musical, Nature, Sport, StagePlay:
		return true
	}
	return false
}

// Categories returns the category vocabulary for the event type.
func (t EventType) Categories() []string {
	switch t {
	case Musical:
		return []string{"Concert", "Festival"}
	case Nature:
		return []string{"Hiking", "Camp"}
	case Sport:
		return []string{"Basketball", "Football", "Volleyball", "Jogging"}
	case StagePlay:
		return []string{"StandUp", "Theatre"}
	}
	return nil
}

// Location is a point of interest in WGS84 coordinates.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// User is a gather account. Identity is the numeric id alone; every other
// field is display data and may change without changing identity.
type User struct {
	ID           int    `json:"id"`
	FirstName    string `json:"firstName"`
	SecondName   string `json:"secondName"`
	Username     string `json:"username"`
	EmailAddress string `json:"emailAddress"`
}

// UnlimitedCapacity is the sentinel some gateway responses use for
// "no capacity limit". Elsewhere the gateway omits the field entirely
// (capacity == nil) with the same meaning; both spellings are honored by
// Unlimited. The two conventions coexist upstream and are preserved here
// rather than unified.
const UnlimitedCapacity = 999

// EventSummary is the list shape of an event, as returned by feeds and
// batch lookups. Identity is (ID, EventType).
type EventSummary struct {
	ID          int       `json:"id"`
	EventType   EventType `json:"eventType"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Creator     User      `json:"creator"`
	Capacity    *int      `json:"capacity"`
	Enrolled    int       `json:"enrolled"`
	Price       *float64  `json:"price"`
	IsPrivate   bool      `json:"isPrivate"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	Location    Location  `json:"locationModel"`
}

// Event is the detail shape: the summary fields plus the category and,
// for musical events, the artist.
type Event struct {
	ID          int       `json:"id"`
	EventType   EventType `json:"eventType"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Creator     User      `json:"creator"`
	Capacity    *int      `json:"capacity"`
	Enrolled    int       `json:"enrolled"`
	Price       *float64  `json:"price"`
	IsPrivate   bool      `json:"isPrivate"`
	Category    string    `json:"category"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	Location    Location  `json:"locationModel"`
	Artist      *string   `json:"artist"`
}

// Unlimited reports whether the event has no effective capacity limit,
// under either upstream convention (absent capacity or the 999 sentinel).
func (e Event) Unlimited() bool {
	return e.Capacity == nil || *e.Capacity == UnlimitedCapacity
}

// Same reports identity equality: same id within the same type partition.
func (e Event) Same(id int, t EventType) bool {
	return e.ID == id && e.EventType == t
}

// Summary projects the detail shape down to the list shape.
func (e Event) Summary() EventSummary {
	return EventSummary{
		ID:          e.ID,
		EventType:   e.EventType,
		Title:       e.Title,
		Description: e.Description,
		Creator:     e.Creator,
		Capacity:    e.Capacity,
		Enrolled:    e.Enrolled,
		Price:       e.Price,
		IsPrivate:   e.IsPrivate,
		StartDate:   e.StartDate,
		EndDate:     e.EndDate,
		Location:    e.Location,
	}
}

// eventDateLayouts are the timestamp spellings the gateway has been seen
// emitting. StartDate/EndDate stay strings on the wire; ParseEventDate is
// the single place that interprets them.
var eventDateLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

// ParseEventDate parses a gateway timestamp. ok is false when no known
// layout matches.
func ParseEventDate(s string) (t time.Time, ok bool) {
	for _, layout := range eventDateLayouts {
		if parsed, err := time.Parse(layout, s); err == nil {
			return parsed, true
		}
	}
	return time.Time{}, false
}

// Invitation is a pending invite of User to Event. Identity is the
// numeric id; it stays pending until responded to.
type Invitation struct {
	ID    int          `json:"id"`
	Event EventSummary `json:"event"`
	User  User         `json:"user"`
	Date  string       `json:"date"`
}

// EnrollmentRequest groups a private event with the users waiting for the
// creator's approval to join it.
type EnrollmentRequest struct {
	ID    *int         `json:"id"`
	Event EventSummary `json:"event"`
	Users []User       `json:"users"`
}

// Recommendation is a scored event suggestion. It is ephemeral: consumed
// once to resolve ids into full events, never persisted.
type Recommendation struct {
	ID         int     `json:"id"`
	Prediction float64 `json:"prediction"`
}

// EventCreation is the POST payload for creating an event.
type EventCreation struct {
	EventType   EventType `json:"eventType"`
	Title       string    `json:"title"`
	Description *string   `json:"description"`
	Capacity    *int      `json:"capacity"`
	Price       *float64  `json:"price"`
	IsPrivate   bool      `json:"isPrivate"`
	Category    string    `json:"category"`
	StartDate   string    `json:"startDate"`
	EndDate     string    `json:"endDate"`
	Location    Location  `json:"locationModel"`
	Artist      *string   `json:"artist"`
}

// Registration is the signup payload.
type Registration struct {
	FirstName    string `json:"firstName"`
	SecondName   string `json:"secondName"`
	EmailAddress string `json:"emailAddress"`
	Username     string `json:"username"`
	Password     string `json:"password"`
}
