package notification

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/intranet-lab/backend/internal/realtime"
	"github.com/intranet-lab/backend/internal/realtime/event"
	"github.com/intranet-lab/backend/internal/repository"
	"github.com/intranet-lab/backend/pkg/errorx"
	"github.com/intranet-lab/backend/pkg/xcontext"
	"github.com/puzpuzpuz/xsync"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const dedupeTTL = time.Minute

// Envelope is the internal representation of one notification event before
// channel-specific delivery. Exactly one of ToUser and ToRoom must be set.
type Envelope struct {
	ToUser string
	ToRoom string

	Kind    string
	ActorID string

	Title string
	Body  string
	Data  map[string]string

	// DedupeKey collapses repeated delivery attempts for the same logical
	// event and recipient into one decision. Left empty, a fresh key is
	// assigned and the envelope is never collapsed.
	DedupeKey string

	// Event overrides the payload sent over the live channel. When nil, a
	// new_notification event is built from the fields above.
	Event event.Event
}

type DeliverySummary struct {
	RateLimited  bool
	Deduplicated bool

	SocketDelivered int
	PushSuccess     int
	PushTotal       int
}

// Coordinator is the single entry point that turns a domain event into a set
// of deliveries across the live channel and the push channel. An envelope
// moves linearly through duplicate collapse, rate check, fan-out, and
// summary; there is no retry
// and no persisted intermediate state.
type Coordinator struct {
	userRepo       repository.UserRepository
	rooms          *realtime.RoomRegistry
	broadcaster    *realtime.Broadcaster
	pushDispatcher *PushDispatcher
	limiter        *RateLimiter

	dedupe *xsync.MapOf[string, time.Time]
	now    func() time.Time
}

func NewCoordinator(
	userRepo repository.UserRepository,
	rooms *realtime.RoomRegistry,
	broadcaster *realtime.Broadcaster,
	pushDispatcher *PushDispatcher,
	limiter *RateLimiter,
) *Coordinator {
	return &Coordinator{
		userRepo:       userRepo,
		rooms:          rooms,
		broadcaster:    broadcaster,
		pushDispatcher: pushDispatcher,
		limiter:        limiter,
		dedupe:         xsync.NewMapOf[time.Time](),
		now:            time.Now,
	}
}

// Notify fans the envelope out to both channels for every recipient. Both
// channels are always attempted since a user can be online on one device and
// offline on another at the same time. Per-target failures are aggregated
// into the summary; only an unknown recipient is an error.
func (c *Coordinator) Notify(ctx context.Context, env *Envelope) (*DeliverySummary, error) {
	if (env.ToUser == "") == (env.ToRoom == "") {
		return nil, errorx.New(errorx.BadRequest, "Require exactly one target")
	}

	// A collapsed duplicate is not a new event, so it must not consume a
	// rate-window slot.
	if c.isDuplicate(env) {
		xcontext.Logger(ctx).Debugf("Collapsed duplicate envelope %s", env.DedupeKey)
		return &DeliverySummary{Deduplicated: true}, nil
	}

	if !c.limiter.Allow(env.Kind, env.ActorID) {
		xcontext.Logger(ctx).Debugf("Rate limited %s notification of %s", env.Kind, env.ActorID)
		return &DeliverySummary{RateLimited: true}, nil
	}

	recipients, err := c.resolveRecipients(ctx, env)
	if err != nil {
		return nil, err
	}

	fillTemplate(env)

	ev := env.Event
	if ev == nil {
		ev = &event.NewNotificationEvent{
			Kind:  env.Kind,
			Title: env.Title,
			Body:  env.Body,
			Data:  env.Data,
		}
	}

	summary := &DeliverySummary{}

	var mutex sync.Mutex
	eg, egCtx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		var delivered int
		if env.ToRoom != "" {
			delivered = c.broadcaster.SendToRoom(egCtx, env.ToRoom,
				event.New(ev, event.Metadata{ToRoom: env.ToRoom}))
		} else if c.broadcaster.SendToUser(egCtx, env.ToUser,
			event.New(ev, event.Metadata{ToUser: env.ToUser})) {
			delivered = 1
		}

		mutex.Lock()
		summary.SocketDelivered = delivered
		mutex.Unlock()
		return nil
	})

	for _, recipient := range recipients {
		userID := recipient
		eg.Go(func() error {
			result := c.pushDispatcher.Dispatch(egCtx, userID, env.Title, env.Body, env.Data)

			mutex.Lock()
			summary.PushSuccess += result.Success
			summary.PushTotal += result.Total
			mutex.Unlock()
			return nil
		})
	}

	eg.Wait()
	return summary, nil
}

func (c *Coordinator) resolveRecipients(ctx context.Context, env *Envelope) ([]string, error) {
	if env.ToUser != "" {
		if _, err := c.userRepo.GetByID(ctx, env.ToUser); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.NotFound, "Not found user %s", env.ToUser)
			}

			xcontext.Logger(ctx).Errorf("Cannot get user: %v", err)
			return nil, errorx.Unknown
		}

		return []string{env.ToUser}, nil
	}

	// Room members who are offline still get the push channel. The acting
	// user never receives their own event.
	recipients := []string{}
	for _, userID := range c.rooms.MembersOf(env.ToRoom) {
		if userID == env.ActorID {
			continue
		}

		recipients = append(recipients, userID)
	}

	return recipients, nil
}

// isDuplicate records the dedupe key and reports whether it was seen within
// the TTL. Expired entries are evicted on sight, there is no background
// sweep.
func (c *Coordinator) isDuplicate(env *Envelope) bool {
	if env.DedupeKey == "" {
		env.DedupeKey = uuid.NewString()
	}

	now := c.now()
	if seenAt, ok := c.dedupe.Load(env.DedupeKey); ok {
		if now.Sub(seenAt) < dedupeTTL {
			return true
		}
	}

	c.dedupe.Store(env.DedupeKey, now)

	c.dedupe.Range(func(key string, seenAt time.Time) bool {
		if now.Sub(seenAt) >= dedupeTTL {
			c.dedupe.Delete(key)
		}
		return true
	})

	return false
}
