package main

import (
	"context"
	"flag"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/gather-social/gather-client/internal/enroll"
	"github.com/gather-social/gather-client/internal/feed"
	"github.com/gather-social/gather-client/internal/models"
	"github.com/gather-social/gather-client/internal/recommend"
)

func requireLogin(a *app) error {
	if !a.sess.Authenticated() {
		return fmt.Errorf("not logged in; run `gatherctl login` first")
	}
	if a.sess.Expired(time.Now()) {
		fmt.Println("note: saved token looks expired; the gateway may reject it")
	}
	return nil
}

func parseEventType(s string) (models.EventType, error) {
	for _, t := range models.EventTypes {
		if strings.EqualFold(string(t), s) {
			return t, nil
		}
	}
	return "", fmt.Errorf("unknown event type %q (Musical|Nature|Sport|StagePlay)", s)
}

func parseChoice(s string) (bool, error) {
	switch s {
	case "accept":
		return true, nil
	case "deny":
		return false, nil
	}
	return false, fmt.Errorf("expected accept or deny, got %q", s)
}

func parseEventArgs(args []string) (models.EventType, int, error) {
	if len(args) < 2 {
		return "", 0, fmt.Errorf("expected <type> <id>")
	}
	t, err := parseEventType(args[0])
	if err != nil {
		return "", 0, err
	}
	id, err := strconv.Atoi(args[1])
	if err != nil {
		return "", 0, fmt.Errorf("event id must be a number, got %q", args[1])
	}
	return t, id, nil
}

func capacityLabel(capacity *int) string {
	// Both upstream spellings of "unlimited": a missing capacity and
	// the 999 sentinel.
	if capacity == nil || *capacity == models.UnlimitedCapacity {
		return "no limit"
	}
	return strconv.Itoa(*capacity)
}

func printSummary(e models.EventSummary) {
	visibility := "public"
	if e.IsPrivate {
		visibility = "private"
	}
	fmt.Printf("%-10s %5d  %-30s by %-15s %d/%s enrolled, %s, %s\n",
		e.EventType, e.ID, e.Title, e.Creator.Username, e.Enrolled, capacityLabel(e.Capacity), visibility, e.StartDate)
}

func printUser(u models.User) {
	fmt.Printf("%5d  %-15s %s %s <%s>\n", u.ID, u.Username, u.FirstName, u.SecondName, u.EmailAddress)
}

// ---- auth & account --------------------------------------------------

func cmdLogin(ctx context.Context, a *app) error {
	token, userID, err := a.flow.Login(ctx, func(authorizeURL string) {
		fmt.Println("Open this URL in your browser to log in:")
		fmt.Println("  " + authorizeURL)
	})
	if err != nil {
		return err
	}
	a.sess.Login(token, userID)
	if err := a.store.Save(ctx, token, userID); err != nil {
		return err
	}
	fmt.Printf("logged in as user %d\n", userID)
	return nil
}

func cmdLogout(ctx context.Context, a *app) error {
	a.sess.Logout()
	if err := a.store.Clear(ctx); err != nil {
		return err
	}
	fmt.Println("logged out")
	return nil
}

func cmdWhoami(ctx context.Context, a *app) error {
	if err := requireLogin(a); err != nil {
		return err
	}
	u, err := a.gw.User(ctx, a.sess.UserID())
	if err != nil {
		return err
	}
	followers, err := a.gw.FollowerCount(ctx, u.ID)
	if err != nil {
		return err
	}
	followings, err := a.gw.FollowingCount(ctx, u.ID)
	if err != nil {
		return err
	}
	printUser(u)
	fmt.Printf("       %d followers, %d following\n", followers, followings)
	return nil
}

func cmdSignup(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("signup", flag.ContinueOnError)
	first := fs.String("first", "", "first name")
	second := fs.String("second", "", "second name")
	email := fs.String("email", "", "email address")
	username := fs.String("username", "", "username")
	password := fs.String("password", "", "password")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *username == "" || *password == "" || *email == "" {
		return fmt.Errorf("signup: -username, -password and -email are required")
	}
	err := a.gw.Register(ctx, models.Registration{
		FirstName:    *first,
		SecondName:   *second,
		EmailAddress: *email,
		Username:     *username,
		Password:     *password,
	})
	if err != nil {
		return err
	}
	fmt.Println("account created; run `gatherctl login`")
	return nil
}

// ---- feeds -----------------------------------------------------------

func cmdFeed(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("expected a feed name (following|upcoming|previous|unrated|created)")
	}
	key, err := feed.ParseKey(args[0])
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("feed", flag.ContinueOnError)
	pages := fs.Int("pages", 1, "number of pages to fetch")
	reset := fs.Bool("reset", false, "clear accumulated state before fetching")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if err := requireLogin(a); err != nil {
		return err
	}

	p := a.feeds.Feed(key)
	for i := 0; i < *pages && p.More(); i++ {
		if err := a.feeds.FetchNext(ctx, key, *reset && i == 0); err != nil {
			return err
		}
	}
	events := p.Events()
	for _, e := range events {
		printSummary(e)
	}
	if !p.More() {
		fmt.Printf("-- end of %s feed (%d events) --\n", key, len(events))
	}
	return nil
}

// ---- event detail & actions ------------------------------------------

func loadController(ctx context.Context, a *app, args []string) (*enroll.Controller, error) {
	t, id, err := parseEventArgs(args)
	if err != nil {
		return nil, err
	}
	if err := requireLogin(a); err != nil {
		return nil, err
	}
	c := enroll.NewController(a.gw, a.sess)
	if err := c.Load(ctx, t, id); err != nil {
		return nil, err
	}
	return c, nil
}

func cmdEvent(ctx context.Context, a *app, args []string) error {
	c, err := loadController(ctx, a, args)
	if err != nil {
		return err
	}
	ev := c.Event()
	printSummary(ev.Summary())
	fmt.Printf("       category %s", ev.Category)
	if ev.Artist != nil {
		fmt.Printf(", artist %s", *ev.Artist)
	}
	if ev.Price != nil {
		fmt.Printf(", price %.2f", *ev.Price)
	}
	fmt.Printf("\n       %s → %s  (%.5f, %.5f)\n", ev.StartDate, ev.EndDate, ev.Location.Latitude, ev.Location.Longitude)
	if ev.Description != nil {
		fmt.Printf("       %s\n", *ev.Description)
	}
	fmt.Printf("       participants: %d, pending requests: %d\n", len(c.Participants()), len(c.Requesters()))

	act := c.Action(time.Now())
	if act.Enabled {
		fmt.Printf("action: %s\n", act.Label)
	} else {
		fmt.Printf("action: %s (unavailable)\n", act.Label)
	}
	return nil
}

func cmdJoin(ctx context.Context, a *app, args []string) error {
	c, err := loadController(ctx, a, args)
	if err != nil {
		return err
	}
	act := c.Action(time.Now())
	switch act.Kind {
	case enroll.Join, enroll.RequestToJoin:
		if err := c.Submit(ctx, time.Now()); err != nil {
			return err
		}
		if act.Kind == enroll.Join {
			fmt.Printf("joined %q; %d enrolled now\n", c.Event().Title, c.Event().Enrolled)
		} else {
			fmt.Printf("join request for %q sent to %s\n", c.Event().Title, c.Event().Creator.Username)
		}
		return nil
	case enroll.AcceptDenyInvitation:
		return fmt.Errorf("you have a pending invitation; use `gatherctl respond`")
	default:
		return fmt.Errorf("cannot join: %s", act.Label)
	}
}

func cmdRespond(ctx context.Context, a *app, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("expected <type> <id> <accept|deny>")
	}
	accept, err := parseChoice(args[2])
	if err != nil {
		return err
	}
	c, err := loadController(ctx, a, args[:2])
	if err != nil {
		return err
	}
	if err := c.Respond(ctx, accept); err != nil {
		return err
	}
	if accept {
		fmt.Printf("invitation accepted; now %s on %q\n", c.Action(time.Now()).Label, c.Event().Title)
	} else {
		fmt.Println("invitation denied")
	}
	return nil
}

func cmdApprove(ctx context.Context, a *app, args []string) error {
	if len(args) < 4 {
		return fmt.Errorf("expected <type> <eventId> <userId> <accept|deny>")
	}
	userID, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("user id must be a number, got %q", args[2])
	}
	accept, err := parseChoice(args[3])
	if err != nil {
		return err
	}
	c, err := loadController(ctx, a, args[:2])
	if err != nil {
		return err
	}
	if act := c.Action(time.Now()); act.Kind != enroll.CreatorView {
		return fmt.Errorf("only the event creator can answer join requests")
	}
	if err := c.ApproveRequest(ctx, userID, accept); err != nil {
		return err
	}
	fmt.Printf("request from user %d answered; %d enrolled now\n", userID, c.Event().Enrolled)
	return nil
}

func cmdRate(ctx context.Context, a *app, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("expected <type> <id> <1-5>")
	}
	t, id, err := parseEventArgs(args[:2])
	if err != nil {
		return err
	}
	rate, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("rate must be a number, got %q", args[2])
	}
	if err := requireLogin(a); err != nil {
		return err
	}
	if err := a.gw.Rate(ctx, t, id, rate); err != nil {
		return err
	}
	fmt.Printf("rated %s/%d: %d\n", t, id, rate)
	return nil
}

func cmdInvite(ctx context.Context, a *app, args []string) error {
	if len(args) < 3 {
		return fmt.Errorf("expected <type> <eventId> <userId>")
	}
	t, id, err := parseEventArgs(args[:2])
	if err != nil {
		return err
	}
	userID, err := strconv.Atoi(args[2])
	if err != nil {
		return fmt.Errorf("user id must be a number, got %q", args[2])
	}
	if err := requireLogin(a); err != nil {
		return err
	}
	if err := a.gw.Invite(ctx, t, id, userID); err != nil {
		return err
	}
	fmt.Printf("user %d invited to %s/%d\n", userID, t, id)
	return nil
}

// ---- lists -----------------------------------------------------------

func cmdInvitations(ctx context.Context, a *app) error {
	if err := requireLogin(a); err != nil {
		return err
	}
	invitations, err := a.gw.Invitations(ctx)
	if err != nil {
		return err
	}
	if len(invitations) == 0 {
		fmt.Println("no pending invitations")
		return nil
	}
	for _, inv := range invitations {
		fmt.Printf("%5d  %s invited you to %q (%s/%d) on %s\n",
			inv.ID, inv.Event.Creator.Username, inv.Event.Title, inv.Event.EventType, inv.Event.ID, inv.Date)
	}
	return nil
}

func cmdRequests(ctx context.Context, a *app) error {
	if err := requireLogin(a); err != nil {
		return err
	}
	requests, err := a.gw.EnrollmentRequests(ctx)
	if err != nil {
		return err
	}
	if len(requests) == 0 {
		fmt.Println("no pending join requests")
		return nil
	}
	for _, req := range requests {
		fmt.Printf("%q (%s/%d):\n", req.Event.Title, req.Event.EventType, req.Event.ID)
		for _, u := range req.Users {
			printUser(u)
		}
	}
	return nil
}

func cmdRecommend(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("expected an event type")
	}
	t, err := parseEventType(args[0])
	if err != nil {
		return err
	}
	fs := flag.NewFlagSet("recommend", flag.ContinueOnError)
	users := fs.String("users", "", "comma-separated user ids for a group recommendation")
	if err := fs.Parse(args[1:]); err != nil {
		return err
	}
	if err := requireLogin(a); err != nil {
		return err
	}

	var events []models.EventSummary
	if *users == "" {
		events, err = recommend.Events(ctx, a.gw, t)
	} else {
		var ids []int
		for _, part := range strings.Split(*users, ",") {
			id, convErr := strconv.Atoi(strings.TrimSpace(part))
			if convErr != nil {
				return fmt.Errorf("-users must be numeric ids, got %q", part)
			}
			ids = append(ids, id)
		}
		events, err = recommend.GroupEvents(ctx, a.gw, t, ids)
	}
	if err != nil {
		return err
	}
	if len(events) == 0 {
		fmt.Println("no recommendations")
		return nil
	}
	for _, e := range events {
		printSummary(e)
	}
	return nil
}

// ---- creation & social -----------------------------------------------

func cmdCreate(ctx context.Context, a *app, args []string) error {
	fs := flag.NewFlagSet("create", flag.ContinueOnError)
	typeName := fs.String("type", "", "event type")
	title := fs.String("title", "", "title")
	desc := fs.String("desc", "", "description")
	capacity := fs.Int("capacity", 0, "capacity (0 = unlimited)")
	price := fs.Float64("price", 0, "price (0 = free)")
	private := fs.Bool("private", false, "private event (join by request)")
	category := fs.String("category", "", "category within the type")
	start := fs.String("start", "", "start timestamp (RFC3339)")
	end := fs.String("end", "", "end timestamp (RFC3339)")
	lat := fs.Float64("lat", 0, "latitude")
	lng := fs.Float64("lng", 0, "longitude")
	artist := fs.String("artist", "", "artist (musical events)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	t, err := parseEventType(*typeName)
	if err != nil {
		return err
	}
	if *title == "" || *category == "" || *start == "" || *end == "" {
		return fmt.Errorf("create: -title, -category, -start and -end are required")
	}
	if err := requireLogin(a); err != nil {
		return err
	}

	creation := models.EventCreation{
		EventType: t,
		Title:     *title,
		IsPrivate: *private,
		Category:  *category,
		StartDate: *start,
		EndDate:   *end,
		Location:  models.Location{Latitude: *lat, Longitude: *lng},
	}
	if *desc != "" {
		creation.Description = desc
	}
	if *capacity > 0 {
		creation.Capacity = capacity
	}
	if *price > 0 {
		creation.Price = price
	}
	if *artist != "" {
		creation.Artist = artist
	}

	if err := a.gw.CreateEvent(ctx, creation); err != nil {
		return err
	}
	fmt.Printf("created %s event %q\n", t, *title)
	return nil
}

func cmdFollow(ctx context.Context, a *app, args []string) error {
	if len(args) < 1 {
		return fmt.Errorf("expected <userId>")
	}
	userID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("user id must be a number, got %q", args[0])
	}
	if err := requireLogin(a); err != nil {
		return err
	}
	following, err := a.gw.Follow(ctx, userID)
	if err != nil {
		return err
	}
	if following {
		fmt.Printf("now following user %d\n", userID)
	} else {
		fmt.Printf("no longer following user %d\n", userID)
	}
	return nil
}
