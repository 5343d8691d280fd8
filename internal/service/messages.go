package service

import (
	"bytes"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mponcet/wololo/internal/device"
)

// MQTT message types exchanged on the wololo topics.

// CommandMessage is published by a client to run a command.
// Topic: <prefix>/command
//
// A payload that is not a JSON object is taken as the command text itself
// and answered under a generated ID.
type CommandMessage struct {
	// ID correlates the command with its responses. It becomes the last
	// level of the response topic, so it must not contain '/', '+' or '#'.
	ID string `json:"id,omitempty"`

	// Text is the command line, e.g. "wake pc1".
	Text string `json:"text"`
}

// ResponseKind distinguishes the immediate reply from the liveness follow-up.
type ResponseKind string

const (
	// KindCommand is the reply produced by running the command.
	KindCommand ResponseKind = "command"

	// KindLiveness is the follow-up after a wake, once the host answered or
	// the retry budget ran out.
	KindLiveness ResponseKind = "liveness"
)

// ResponseMessage is published once per command, plus once more after a
// wake when the device has a check address.
// Topic: <prefix>/response/{id}
type ResponseMessage struct {
	ID        string       `json:"id"`
	Timestamp time.Time    `json:"timestamp"`
	Kind      ResponseKind `json:"kind"`
	Message   string       `json:"message"`
	OK        bool         `json:"ok"`
}

// DeviceEntry is one element of the retained device listing.
// Topic: <prefix>/devices
type DeviceEntry struct {
	Name      string `json:"name"`
	MAC       string `json:"mac"`
	CheckAddr string `json:"check_addr,omitempty"`
}

// EventType names a device event.
type EventType string

const (
	EventWakeSent EventType = "wake_sent"
	EventHostUp   EventType = "host_up"
	EventHostDown EventType = "host_down"
)

// EventMessage announces a wake or liveness outcome.
// Topic: <prefix>/events/{name-or-mac}
type EventMessage struct {
	Timestamp time.Time `json:"timestamp"`
	Event     EventType `json:"event"`
	Device    string    `json:"device,omitempty"`
	MAC       string    `json:"mac"`
	CheckAddr string    `json:"check_addr,omitempty"`
}

// decodeCommand parses a command payload, accepting JSON or plain text.
func decodeCommand(payload []byte) (CommandMessage, error) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return CommandMessage{Text: string(trimmed)}, nil
	}

	var cmd CommandMessage
	if err := json.Unmarshal(trimmed, &cmd); err != nil {
		return CommandMessage{}, fmt.Errorf("%w: %w", ErrInvalidPayload, err)
	}
	return cmd, nil
}

// deviceEntries converts repository records to the listing format.
// The result is never nil so an empty registry encodes as [].
func deviceEntries(devices []device.Device) []DeviceEntry {
	entries := make([]DeviceEntry, 0, len(devices))
	for _, d := range devices {
		entries = append(entries, DeviceEntry{
			Name:      d.Name.String(),
			MAC:       d.MAC.String(),
			CheckAddr: d.CheckAddr,
		})
	}
	return entries
}
