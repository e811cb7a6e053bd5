// Package gateway is the authenticated HTTP client for the gather
// gateway: thin typed wrappers over its event, user, invitation and
// recommendation endpoints.
//
// Every request carries the session bearer token and a JSON content
// type. 200-299 is success; any other status is classified uniformly
// into a GatewayError (see errors.go), with no retry.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gather-social/gather-client/internal/models"
)

// TokenSource yields the current bearer token. The client only ever
// reads it; token lifecycle belongs to the auth flow and logout.
type TokenSource interface {
	Token() string
}

// Client talks to one gateway base URL on behalf of one session.
type Client struct {
	base   *url.URL
	tokens TokenSource
	http   *http.Client
}

// New validates the base URL and builds a client. timeout is the only
// deadline beyond the caller's context; zero means no client timeout.
func New(baseURL string, tokens TokenSource, timeout time.Duration) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, &TransportError{Op: "parse base url", Err: err}
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, &TransportError{Op: "parse base url", Err: errors.New("missing scheme or host")}
	}
	if tokens == nil {
		return nil, errors.New("gateway: nil token source")
	}
	return &Client{
		base:   u,
		tokens: tokens,
		http:   &http.Client{Timeout: timeout},
	}, nil
}

// do performs one request/response cycle and applies the uniform
// classification: transport failures wrap into TransportError, non-2xx
// responses become GatewayError with the body text as message ("Bad
// Request" when empty), and 2xx bodies are decoded into out when the
// caller wants one.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	u := *c.base
	u.Path = strings.TrimSuffix(u.Path, "/") + path
	if query != nil {
		u.RawQuery = query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: method + " " + path, Err: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.tokens.Token())

	resp, err := c.http.Do(req)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &TransportError{Op: method + " " + path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := string(data)
		if msg == "" {
			msg = "Bad Request"
		}
		return &GatewayError{StatusCode: resp.StatusCode, Message: msg}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &DecodeError{Op: method + " " + path, Err: err}
		}
	}
	return nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out any) error {
	return c.do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) post(ctx context.Context, path string, query url.Values, body, out any) error {
	return c.do(ctx, http.MethodPost, path, query, body, out)
}

func pageQuery(page int) url.Values {
	return url.Values{"page": {strconv.Itoa(page)}}
}

// ---- Event reads -----------------------------------------------------

// Event fetches the detail shape of one event.
func (c *Client) Event(ctx context.Context, t models.EventType, id int) (models.Event, error) {
	var ev models.Event
	err := c.get(ctx, fmt.Sprintf("/events/%s/%d", t, id), nil, &ev)
	return ev, err
}

// EventsByID fetches summaries for a batch of ids within one type
// partition. Response order follows the ids parameter.
func (c *Client) EventsByID(ctx context.Context, t models.EventType, ids []int) ([]models.EventSummary, error) {
	q := url.Values{}
	for _, id := range ids {
		q.Add("ids", strconv.Itoa(id))
	}
	var events []models.EventSummary
	err := c.get(ctx, fmt.Sprintf("/events/%s", t), q, &events)
	return events, err
}

// UpcomingEvents lists the public upcoming feed page.
func (c *Client) UpcomingEvents(ctx context.Context, page int) ([]models.EventSummary, error) {
	var events []models.EventSummary
	err := c.get(ctx, "/events/upcoming", pageQuery(page), &events)
	return events, err
}

// FollowingEvents lists events created by accounts the current user follows.
func (c *Client) FollowingEvents(ctx context.Context, page int) ([]models.EventSummary, error) {
	var events []models.EventSummary
	err := c.get(ctx, "/users/me/events/followings", pageQuery(page), &events)
	return events, err
}

// PreviousEvents lists a user's past events.
func (c *Client) PreviousEvents(ctx context.Context, userID, page int) ([]models.EventSummary, error) {
	var events []models.EventSummary
	err := c.get(ctx, fmt.Sprintf("/users/%d/events/previous", userID), pageQuery(page), &events)
	return events, err
}

// UnratedEvents lists the current user's past events still awaiting a rating.
func (c *Client) UnratedEvents(ctx context.Context, page int) ([]models.EventSummary, error) {
	var events []models.EventSummary
	err := c.get(ctx, "/users/me/events/previous/unrated", pageQuery(page), &events)
	return events, err
}

// CreatedEvents lists events a user created.
func (c *Client) CreatedEvents(ctx context.Context, userID, page int) ([]models.EventSummary, error) {
	var events []models.EventSummary
	err := c.get(ctx, fmt.Sprintf("/users/%d/events/created-events", userID), pageQuery(page), &events)
	return events, err
}

// Participants returns the users attached to an event: the enrolled
// participants when enrolled is true, the pending requesters otherwise.
func (c *Client) Participants(ctx context.Context, t models.EventType, id int, enrolled bool) ([]models.User, error) {
	q := url.Values{"enrolled": {strconv.FormatBool(enrolled)}}
	var users []models.User
	err := c.get(ctx, fmt.Sprintf("/users/me/events/%s/%d/participants", t, id), q, &users)
	return users, err
}

// InvitingUsers pages through the candidates the current user may invite
// to the event.
func (c *Client) InvitingUsers(ctx context.Context, t models.EventType, id, page int) ([]models.User, error) {
	var users []models.User
	err := c.get(ctx, fmt.Sprintf("/users/me/events/%s/%d/inviting", t, id), pageQuery(page), &users)
	return users, err
}

// Invitations returns the current user's pending invitations.
func (c *Client) Invitations(ctx context.Context) ([]models.Invitation, error) {
	var invitations []models.Invitation
	err := c.get(ctx, "/users/me/events/invitations", nil, &invitations)
	return invitations, err
}

// EnrollmentRequests returns, per created private event, the users
// waiting for the current user's approval.
func (c *Client) EnrollmentRequests(ctx context.Context) ([]models.EnrollmentRequest, error) {
	var requests []models.EnrollmentRequest
	err := c.get(ctx, "/users/me/events/created-events/requests", nil, &requests)
	return requests, err
}

// ---- Event writes ----------------------------------------------------

// Enroll joins a public event, or files a join request on a private one.
// The gateway decides which; the caller re-fetches state afterwards.
func (c *Client) Enroll(ctx context.Context, t models.EventType, id int) error {
	return c.post(ctx, fmt.Sprintf("/users/me/enroll/events/%s/%d", t, id), nil, nil, nil)
}

// RespondInvitation accepts or denies a pending invitation.
func (c *Client) RespondInvitation(ctx context.Context, t models.EventType, invitationID int, accept bool) error {
	q := url.Values{"response": {strconv.FormatBool(accept)}}
	return c.post(ctx, fmt.Sprintf("/users/me/invitations/%s/%d/respond", t, invitationID), q, nil, nil)
}

// RespondEnrollmentRequest approves or denies another user's join
// request on an event the current user created.
func (c *Client) RespondEnrollmentRequest(ctx context.Context, t models.EventType, eventID, userID int, accept bool) error {
	q := url.Values{"response": {strconv.FormatBool(accept)}}
	return c.post(ctx, fmt.Sprintf("/users/me/events/%s/%d/enrollment-requests/%d", t, eventID, userID), q, nil, nil)
}

// Rate submits a post-event rating in 1..5.
func (c *Client) Rate(ctx context.Context, t models.EventType, id, rate int) error {
	if rate < 1 || rate > 5 {
		return fmt.Errorf("gateway: rate %d out of range 1..5", rate)
	}
	q := url.Values{"rate": {strconv.Itoa(rate)}}
	return c.post(ctx, fmt.Sprintf("/users/me/events/%s/%d/rate", t, id), q, nil, nil)
}

// Invite invites another user to an event.
func (c *Client) Invite(ctx context.Context, t models.EventType, eventID, invitedUserID int) error {
	q := url.Values{"invitedUserId": {strconv.Itoa(invitedUserID)}}
	return c.post(ctx, fmt.Sprintf("/users/me/events/%s/%d/invite", t, eventID), q, nil, nil)
}

// CreateEvent creates a new event of the payload's type.
func (c *Client) CreateEvent(ctx context.Context, creation models.EventCreation) error {
	return c.post(ctx, fmt.Sprintf("/users/me/events/%s/create", creation.EventType), nil, creation, nil)
}

// ---- Users & social --------------------------------------------------

// Register signs up a new account.
func (c *Client) Register(ctx context.Context, reg models.Registration) error {
	return c.post(ctx, "/register", nil, reg, nil)
}

// User fetches a user profile.
func (c *Client) User(ctx context.Context, userID int) (models.User, error) {
	var u models.User
	err := c.get(ctx, fmt.Sprintf("/users/%d", userID), nil, &u)
	return u, err
}

// Followers returns the accounts following userID.
func (c *Client) Followers(ctx context.Context, userID int) ([]models.User, error) {
	var users []models.User
	err := c.get(ctx, fmt.Sprintf("/users/%d/followers", userID), nil, &users)
	return users, err
}

// FollowerCount returns the size of the follower list.
func (c *Client) FollowerCount(ctx context.Context, userID int) (int, error) {
	var count int
	err := c.get(ctx, fmt.Sprintf("/users/%d/followers/count", userID), nil, &count)
	return count, err
}

// Followings returns the accounts userID follows.
func (c *Client) Followings(ctx context.Context, userID int) ([]models.User, error) {
	var users []models.User
	err := c.get(ctx, fmt.Sprintf("/users/%d/followings", userID), nil, &users)
	return users, err
}

// FollowingCount returns the size of the followings list.
func (c *Client) FollowingCount(ctx context.Context, userID int) (int, error) {
	var count int
	err := c.get(ctx, fmt.Sprintf("/users/%d/followings/count", userID), nil, &count)
	return count, err
}

// Follow makes the current user follow another account. The gateway
// echoes the resulting following state.
func (c *Client) Follow(ctx context.Context, followingUserID int) (bool, error) {
	q := url.Values{"followingUserId": {strconv.Itoa(followingUserID)}}
	var following bool
	err := c.post(ctx, "/users/me/follow", q, nil, &following)
	return following, err
}

// ---- Recommendations -------------------------------------------------

// RecommendedEvents returns raw prediction scores for the current user.
// Scores arrive unsorted; ranking is the caller's job.
func (c *Client) RecommendedEvents(ctx context.Context, t models.EventType) ([]models.Recommendation, error) {
	var recs []models.Recommendation
	err := c.get(ctx, fmt.Sprintf("/users/me/recommend/events/%s", t), nil, &recs)
	return recs, err
}

// GroupRecommendedEvents returns scores for a group of users together.
func (c *Client) GroupRecommendedEvents(ctx context.Context, t models.EventType, userIDs []int) ([]models.Recommendation, error) {
	q := url.Values{}
	for _, id := range userIDs {
		q.Add("users", strconv.Itoa(id))
	}
	var recs []models.Recommendation
	err := c.get(ctx, fmt.Sprintf("/users/me/recommend/events/%s/group", t), q, &recs)
	return recs, err
}
