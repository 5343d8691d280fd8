package wol

import "github.com/mponcet/wololo/internal/device"

// Magic packet layout.
const (
	syncStreamLength = 6
	macRepetitions   = 16

	// PacketLength is the size of a magic packet: 6 sync bytes + 16 MAC copies.
	PacketLength = syncStreamLength + macRepetitions*6
)

// MagicPacket builds the 102-byte payload that wakes the NIC owning mac.
func MagicPacket(mac device.MAC) []byte {
	hw := mac.Bytes()

	packet := make([]byte, 0, PacketLength)
	for i := 0; i < syncStreamLength; i++ {
		packet = append(packet, 0xff)
	}
	for i := 0; i < macRepetitions; i++ {
		packet = append(packet, hw[:]...)
	}
	return packet
}
