package wol

import (
	"bytes"
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/mponcet/wololo/internal/device"
)

func mustMAC(t *testing.T, s string) device.MAC {
	t.Helper()
	m, err := device.ParseMAC(s)
	if err != nil {
		t.Fatalf("ParseMAC(%q) error = %v", s, err)
	}
	return m
}

func TestMagicPacket(t *testing.T) {
	mac := mustMAC(t, "de:ad:be:ef:00:01")

	packet := MagicPacket(mac)

	if len(packet) != PacketLength || PacketLength != 102 {
		t.Fatalf("len(packet) = %d, want 102", len(packet))
	}
	if !bytes.Equal(packet[:6], []byte{0xff, 0xff, 0xff, 0xff, 0xff, 0xff}) {
		t.Errorf("sync stream = %x, want ffffffffffff", packet[:6])
	}
	hw := []byte{0xde, 0xad, 0xbe, 0xef, 0x00, 0x01}
	for i := 0; i < 16; i++ {
		off := 6 + i*6
		if !bytes.Equal(packet[off:off+6], hw) {
			t.Errorf("repetition %d = %x, want %x", i, packet[off:off+6], hw)
		}
	}
}

func TestNewSender_DefaultAddr(t *testing.T) {
	if got := NewSender("").Addr(); got != DefaultBroadcastAddr {
		t.Errorf("Addr() = %q, want %q", got, DefaultBroadcastAddr)
	}
}

func TestSender_Wake(t *testing.T) {
	pc, err := net.ListenPacket("udp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("ListenPacket() error = %v", err)
	}
	defer pc.Close()

	mac := mustMAC(t, "00-01-02-03-04-05")
	sender := NewSender(pc.LocalAddr().String())

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := sender.Wake(ctx, mac); err != nil {
		t.Fatalf("Wake() error = %v", err)
	}

	buf := make([]byte, 512)
	if err := pc.SetReadDeadline(time.Now().Add(2 * time.Second)); err != nil {
		t.Fatalf("SetReadDeadline() error = %v", err)
	}
	n, _, err := pc.ReadFrom(buf)
	if err != nil {
		t.Fatalf("ReadFrom() error = %v", err)
	}
	if !bytes.Equal(buf[:n], MagicPacket(mac)) {
		t.Errorf("received %x, want magic packet", buf[:n])
	}
}

func TestSender_WakeBadAddr(t *testing.T) {
	sender := NewSender("not an address")

	err := sender.Wake(context.Background(), mustMAC(t, "00:01:02:03:04:05"))
	if !errors.Is(err, ErrSendFailed) {
		t.Errorf("Wake() error = %v, want ErrSendFailed", err)
	}
}

// closedAddr returns a loopback TCP address nothing listens on.
func closedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	addr := ln.Addr().String()
	ln.Close()
	return addr
}

func TestChecker_WaitUp(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("Listen() error = %v", err)
	}
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	c := Checker{Interval: 10 * time.Millisecond, Retries: 3, DialTimeout: time.Second}
	up, err := c.WaitUp(context.Background(), ln.Addr().String())
	if err != nil {
		t.Fatalf("WaitUp() error = %v", err)
	}
	if !up {
		t.Error("WaitUp() = false, want true for listening host")
	}
}

func TestChecker_WaitUpDown(t *testing.T) {
	c := Checker{Interval: 5 * time.Millisecond, Retries: 3, DialTimeout: 200 * time.Millisecond}

	start := time.Now()
	up, err := c.WaitUp(context.Background(), closedAddr(t))
	if err != nil {
		t.Fatalf("WaitUp() error = %v", err)
	}
	if up {
		t.Error("WaitUp() = true, want false for closed port")
	}
	if elapsed := time.Since(start); elapsed < 15*time.Millisecond {
		t.Errorf("WaitUp() returned after %v, want at least three intervals", elapsed)
	}
}

func TestChecker_WaitUpCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	c := Checker{Interval: time.Hour, Retries: 1}
	_, err := c.WaitUp(ctx, closedAddr(t))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("WaitUp() error = %v, want context.Canceled", err)
	}
}

func TestChecker_NoAddr(t *testing.T) {
	_, err := Checker{}.WaitUp(context.Background(), "")
	if !errors.Is(err, ErrNoCheckAddr) {
		t.Errorf("WaitUp() error = %v, want ErrNoCheckAddr", err)
	}
}

func TestChecker_Defaults(t *testing.T) {
	var c Checker
	if c.interval() != DefaultCheckInterval {
		t.Errorf("interval() = %v, want %v", c.interval(), DefaultCheckInterval)
	}
	if c.retries() != DefaultCheckRetries {
		t.Errorf("retries() = %d, want %d", c.retries(), DefaultCheckRetries)
	}
	if c.dialTimeout() != DefaultDialTimeout {
		t.Errorf("dialTimeout() = %v, want %v", c.dialTimeout(), DefaultDialTimeout)
	}
}
