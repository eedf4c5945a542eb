package events

import (
	"fmt"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
)

// EmbeddedOptions configures the in-process NATS server.
type EmbeddedOptions struct {
	Host string
	// Port -1 picks a random free port.
	Port int
	// ReadyTimeout defaults to 5s.
	ReadyTimeout time.Duration
}

// StartEmbedded runs a NATS server inside the process and waits until it
// accepts connections. Callers own shutdown via Shutdown and
// WaitForShutdown.
func StartEmbedded(opts EmbeddedOptions) (*natsserver.Server, error) {
	if opts.ReadyTimeout <= 0 {
		opts.ReadyTimeout = 5 * time.Second
	}
	server, err := natsserver.NewServer(&natsserver.Options{
		ServerName:     "moodwall",
		Host:           opts.Host,
		Port:           opts.Port,
		NoLog:          true,
		NoSigs:         true,
		MaxControlLine: 2048,
	})
	if err != nil {
		return nil, fmt.Errorf("creating embedded NATS server: %w", err)
	}

	go server.Start()

	if !server.ReadyForConnections(opts.ReadyTimeout) {
		server.Shutdown()
		return nil, fmt.Errorf("embedded NATS server not ready after %s", opts.ReadyTimeout)
	}
	return server, nil
}
