package mqtt

import "strings"

// DefaultTopicPrefix is the root used when no prefix is configured.
const DefaultTopicPrefix = "wololo"

// Topic segments under the prefix.
const (
	topicCommand  = "command"
	topicResponse = "response"
	topicDevices  = "devices"
	topicEvents   = "events"
	topicSystem   = "system/status"
)

// Topics provides builders for wololo MQTT topics.
// Using these helpers ensures consistent topic naming across the codebase.
//
//	topics := mqtt.Topics{Prefix: "home/wol"}
//	topics.Response("req-abc123")
//	// Returns: "home/wol/response/req-abc123"
type Topics struct {
	// Prefix is the topic root. Empty means DefaultTopicPrefix.
	Prefix string
}

func (t Topics) prefix() string {
	p := strings.TrimSuffix(t.Prefix, "/")
	if p == "" {
		return DefaultTopicPrefix
	}
	return p
}

// Command returns the topic the service accepts text commands on.
//
// Example: wololo/command
func (t Topics) Command() string {
	return t.prefix() + "/" + topicCommand
}

// Response returns the reply topic for a single command.
//
// Example: wololo/response/req-abc123
func (t Topics) Response(requestID string) string {
	return t.prefix() + "/" + topicResponse + "/" + requestID
}

// AllResponses returns a wildcard matching every reply topic.
//
// Example: wololo/response/+
func (t Topics) AllResponses() string {
	return t.Response("+")
}

// Devices returns the retained device listing topic.
//
// Example: wololo/devices
func (t Topics) Devices() string {
	return t.prefix() + "/" + topicDevices
}

// Event returns the topic for wake and liveness events of a device.
//
// Example: wololo/events/pc1
func (t Topics) Event(deviceName string) string {
	return t.prefix() + "/" + topicEvents + "/" + deviceName
}

// SystemStatus returns the online/offline status topic (LWT target).
//
// Example: wololo/system/status
func (t Topics) SystemStatus() string {
	return t.prefix() + "/" + topicSystem
}

// ValidSegment reports whether s can be used as a single topic level.
// Wildcards, separators and NUL are rejected.
func ValidSegment(s string) bool {
	return s != "" && !strings.ContainsAny(s, "+#/\x00")
}
