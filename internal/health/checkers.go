package health

import "context"

// Pinger is any dependency with a Ping-style health probe. The UCI
// engine and the archive's pgx pool both satisfy it directly.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingChecker adapts a [Pinger] into a named [Checker].
func PingChecker(name string, p Pinger) Checker {
	return Checker{Name: name, Check: p.Ping}
}

// FuncChecker wraps a bare probe function as a named [Checker]. Used for
// dependencies whose clients don't expose a Ping with this shape, like
// the Redis cache and the masters explorer.
func FuncChecker(name string, probe func(ctx context.Context) error) Checker {
	return Checker{Name: name, Check: probe}
}
