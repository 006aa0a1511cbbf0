package player

import (
	"context"
	"time"

	"soundviz/mailbox"
)

const IconInterval = 500 * time.Millisecond

// WatchIcon emits the active player's icon every interval, and right away
// whenever wake fires, until ctx is done.
func WatchIcon(ctx context.Context, mb mailbox.Mailbox, emit func(string) error, interval time.Duration, wake <-chan struct{}) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		name := mb.Get(mailbox.ActivePlayer)
		if name == "" {
			name = DefaultPlayer
		}
		if err := emit(Icon(name)); err != nil {
			return err
		}
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		case <-wake:
		}
	}
}
