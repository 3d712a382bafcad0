package database

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

// ChangesChannel is the NOTIFY channel the sync_state trigger publishes versions on.
const ChangesChannel = "inventory_changes"

// Listen follows NOTIFY messages on channel until ctx is done. The payload is parsed as a
// version number; reconnects and unparsable payloads are reported as version 0 so the
// caller refetches unconditionally.
func Listen(ctx context.Context, dbURL, channel string, log *zap.Logger, notify func(version uint64)) error {
	listener := pq.NewListener(dbURL, time.Second, time.Minute, func(ev pq.ListenerEventType, err error) {
		switch ev {
		case pq.ListenerEventConnectionAttemptFailed, pq.ListenerEventDisconnected:
			log.Warn("Change listener connection problem", zap.Error(err))
		case pq.ListenerEventReconnected:
			log.Info("Change listener reconnected")
		}
	})
	defer listener.Close()

	if err := listener.Listen(channel); err != nil {
		return fmt.Errorf("listen on %s: %w", channel, err)
	}
	log.Info("Listening for inventory changes", zap.String("channel", channel))

	// Keepalive ping so a dead connection is noticed even without traffic.
	ping := time.NewTicker(90 * time.Second)
	defer ping.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-listener.Notify:
			if n == nil {
				notify(0)
				continue
			}
			version, err := strconv.ParseUint(n.Extra, 10, 64)
			if err != nil {
				log.Debug("Unexpected notification payload", zap.String("payload", n.Extra))
				version = 0
			}
			notify(version)
		case <-ping.C:
			go func() {
				if err := listener.Ping(); err != nil {
					log.Debug("Change listener ping failed", zap.Error(err))
				}
			}()
		}
	}
}
