// Package wol sends Wake-on-LAN magic packets and checks that hosts came up.
//
// A magic packet is six 0xFF bytes followed by sixteen copies of the target
// MAC address. It is broadcast over UDP (port 9 by default) so it reaches a
// sleeping NIC that has no IP configuration.
//
//	┌──────────┐  UDP broadcast  ┌──────────┐   TCP probe   ┌──────────┐
//	│  Sender  │ ──────────────► │ LAN / NIC│ ◄──────────── │ Checker  │
//	└──────────┘   102 bytes     └──────────┘  check_addr   └──────────┘
//
// Usage:
//
//	s := wol.NewSender("192.168.1.255:9")
//	if err := s.Wake(ctx, d.MAC); err != nil {
//	    return err
//	}
//	up, err := wol.Checker{Interval: 5 * time.Second, Retries: 6}.WaitUp(ctx, d.CheckAddr)
//
// The Checker only proves something listens on check_addr. Pick a port the
// host always serves once booted (22 or 3389 are common choices).
package wol
