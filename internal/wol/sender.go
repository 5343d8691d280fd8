package wol

import (
	"context"
	"fmt"
	"net"

	"github.com/mponcet/wololo/internal/device"
)

// DefaultBroadcastAddr is the limited broadcast address on the discard port.
const DefaultBroadcastAddr = "255.255.255.255:9"

// Sender broadcasts magic packets over UDP.
//
// Thread Safety:
//   - A Sender holds no mutable state and is safe for concurrent use.
type Sender struct {
	addr   string
	dialer net.Dialer
}

// NewSender returns a Sender targeting addr (host:port).
// An empty addr means DefaultBroadcastAddr.
func NewSender(addr string) *Sender {
	if addr == "" {
		addr = DefaultBroadcastAddr
	}
	return &Sender{addr: addr}
}

// Addr returns the UDP destination.
func (s *Sender) Addr() string {
	return s.addr
}

// Wake sends one magic packet for mac.
func (s *Sender) Wake(ctx context.Context, mac device.MAC) error {
	conn, err := s.dialer.DialContext(ctx, "udp", s.addr)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %w", ErrSendFailed, s.addr, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		if err := conn.SetWriteDeadline(deadline); err != nil {
			return fmt.Errorf("%w: %w", ErrSendFailed, err)
		}
	}

	packet := MagicPacket(mac)
	n, err := conn.Write(packet)
	if err != nil {
		return fmt.Errorf("%w: write to %s: %w", ErrSendFailed, s.addr, err)
	}
	if n != len(packet) {
		return fmt.Errorf("%w: short write (%d of %d bytes)", ErrSendFailed, n, len(packet))
	}

	return nil
}
