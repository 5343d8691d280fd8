package wol

import (
	"context"
	"fmt"
	"net"
	"time"
)

// Liveness check defaults.
const (
	DefaultCheckInterval = 5 * time.Second
	DefaultCheckRetries  = 6
	DefaultDialTimeout   = 2 * time.Second
)

// Checker polls a TCP address until the woken host accepts a connection.
//
// The zero value uses the package defaults.
type Checker struct {
	// Interval is the wait before each probe. A machine needs time to boot,
	// so the first probe also waits.
	Interval time.Duration

	// Retries is the number of probes before giving up.
	Retries int

	// DialTimeout bounds a single probe.
	DialTimeout time.Duration
}

func (c Checker) interval() time.Duration {
	if c.Interval <= 0 {
		return DefaultCheckInterval
	}
	return c.Interval
}

func (c Checker) retries() int {
	if c.Retries <= 0 {
		return DefaultCheckRetries
	}
	return c.Retries
}

func (c Checker) dialTimeout() time.Duration {
	if c.DialTimeout <= 0 {
		return DefaultDialTimeout
	}
	return c.DialTimeout
}

// WaitUp reports whether addr accepted a TCP connection within the retry budget.
//
// It returns (false, nil) when every probe failed and ctx.Err() when the
// context ends first.
func (c Checker) WaitUp(ctx context.Context, addr string) (bool, error) {
	if addr == "" {
		return false, ErrNoCheckAddr
	}

	timer := time.NewTimer(c.interval())
	defer timer.Stop()

	for attempt := 1; attempt <= c.retries(); attempt++ {
		select {
		case <-ctx.Done():
			return false, fmt.Errorf("waiting for %s: %w", addr, ctx.Err())
		case <-timer.C:
		}

		if c.probe(ctx, addr) {
			return true, nil
		}
		timer.Reset(c.interval())
	}

	return false, nil
}

// probe makes one connection attempt.
func (c Checker) probe(ctx context.Context, addr string) bool {
	dialCtx, cancel := context.WithTimeout(ctx, c.dialTimeout())
	defer cancel()

	var d net.Dialer
	conn, err := d.DialContext(dialCtx, "tcp", addr)
	if err != nil {
		return false
	}
	conn.Close()
	return true
}
