// gatherctl is a command-line client for the gather event gateway:
// log in over OAuth, browse feeds, inspect events and take the resolved
// enrollment action on them.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gather-social/gather-client/internal/auth"
	"github.com/gather-social/gather-client/internal/config"
	"github.com/gather-social/gather-client/internal/feed"
	"github.com/gather-social/gather-client/internal/gateway"
	"github.com/gather-social/gather-client/internal/session"
)

const usage = `usage: gatherctl <command> [args]

  login                                  log in through the browser
  logout                                 clear the saved session
  whoami                                 show the logged-in user
  signup                                 register a new account (flags)
  feed <name> [-pages n] [-reset]        list a feed (following|upcoming|previous|unrated|created)
  event <type> <id>                      show an event and your available action
  join <type> <id>                       join or request to join an event
  respond <type> <id> <accept|deny>      answer a pending invitation for the event
  approve <type> <id> <userId> <accept|deny>  answer a join request on your event
  rate <type> <id> <1-5>                 rate a past event
  invite <type> <id> <userId>            invite a user to your event
  invitations                            list pending invitations
  requests                               list join requests on your events
  recommend <type> [-users a,b,c]        recommended events for you or a group
  create                                 create an event (flags)
  follow <userId>                        follow a user
`

// app bundles the wired components every command works with.
type app struct {
	cfg   config.Config
	sess  *session.Session
	store *session.Store
	gw    *gateway.Client
	flow  *auth.Flow
	feeds *feed.Set
}

// main boots the client: config → session store → saved session →
// gateway wiring → command dispatch.
func main() {
	log.SetFlags(0)

	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	store, err := session.OpenStore(cfg.SessionPath)
	if err != nil {
		log.Fatal(err)
	}
	defer store.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Resume the saved session, if any. An expired or revoked token is
	// not special-cased here; the gateway will reject it and the user
	// can log in again.
	sess := session.New()
	if token, userID, ok, err := store.Load(ctx); err != nil {
		log.Fatal(err)
	} else if ok {
		sess.Login(token, userID)
	}

	gw, err := gateway.New(cfg.GatewayURL, sess, cfg.HTTPTimeout)
	if err != nil {
		log.Fatal(err)
	}

	flow, err := auth.NewFlow(auth.Config{
		AuthURL:      cfg.AuthURL,
		ClientID:     cfg.OAuthClientID,
		ClientSecret: cfg.OAuthClientSecret,
		CallbackAddr: cfg.CallbackAddr,
	})
	if err != nil {
		log.Fatal(err)
	}

	a := &app{
		cfg:   cfg,
		sess:  sess,
		store: store,
		gw:    gw,
		flow:  flow,
		feeds: feed.NewSet(gw, sess),
	}

	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	if err := dispatch(ctx, a, os.Args[1], os.Args[2:]); err != nil {
		log.Fatal(err)
	}
}

func dispatch(ctx context.Context, a *app, command string, args []string) error {
	switch command {
	case "login":
		return cmdLogin(ctx, a)
	case "logout":
		return cmdLogout(ctx, a)
	case "whoami":
		return cmdWhoami(ctx, a)
	case "signup":
		return cmdSignup(ctx, a, args)
	case "feed":
		return cmdFeed(ctx, a, args)
	case "event":
		return cmdEvent(ctx, a, args)
	case "join":
		return cmdJoin(ctx, a, args)
	case "respond":
		return cmdRespond(ctx, a, args)
	case "approve":
		return cmdApprove(ctx, a, args)
	case "rate":
		return cmdRate(ctx, a, args)
	case "invite":
		return cmdInvite(ctx, a, args)
	case "invitations":
		return cmdInvitations(ctx, a)
	case "requests":
		return cmdRequests(ctx, a)
	case "recommend":
		return cmdRecommend(ctx, a, args)
	case "create":
		return cmdCreate(ctx, a, args)
	case "follow":
		return cmdFollow(ctx, a, args)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}
