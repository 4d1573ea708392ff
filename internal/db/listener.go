package db

import (
	"context"
	"log/slog"
	"time"
)

// ChangeFeed delivers a signal whenever a row in a watched table changes,
// using Postgres LISTEN/NOTIFY on a dedicated connection. Consumers treat the
// events purely as a trigger to re-check state, so payloads are dropped and
// bursts collapse into a single pending event.
type ChangeFeed struct {
	DB      *Postgres
	Channel string
	Logger  *slog.Logger

	events chan struct{}
}

// NewChangeFeed prepares a feed on the given NOTIFY channel.
func NewChangeFeed(pg *Postgres, channel string, logger *slog.Logger) *ChangeFeed {
	return &ChangeFeed{
		DB:      pg,
		Channel: channel,
		Logger:  logger,
		events:  make(chan struct{}, 1),
	}
}

// Events returns the signal channel. At most one event is buffered.
func (f *ChangeFeed) Events() <-chan struct{} {
	return f.events
}

// Run listens until ctx is cancelled, re-acquiring the connection after
// failures.
func (f *ChangeFeed) Run(ctx context.Context) {
	for {
		if err := f.listen(ctx); err != nil {
			if ctx.Err() != nil {
				return
			}
			f.Logger.Error("change feed listen failed", "channel", f.Channel, "err", err)
		}
		select {
		case <-ctx.Done():
			return
		case <-time.After(5 * time.Second):
		}
	}
}

func (f *ChangeFeed) listen(ctx context.Context) error {
	conn, err := f.DB.Pool.Acquire(ctx)
	if err != nil {
		return err
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "LISTEN "+f.Channel); err != nil {
		return err
	}
	f.Logger.Info("change feed listening", "channel", f.Channel)

	for {
		if _, err := conn.Conn().WaitForNotification(ctx); err != nil {
			return err
		}
		select {
		case f.events <- struct{}{}:
		default:
			// An event is already pending; the next check covers this one too.
		}
	}
}
