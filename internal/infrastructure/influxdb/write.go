package influxdb

import (
	"time"

	"github.com/influxdata/influxdb-client-go/v2/api/write"
)

// measurementWakeEvents holds one point per magic packet and per liveness result.
const measurementWakeEvents = "wake_events"

// Event kinds, stored in the "event" tag.
const (
	eventWake     = "wake"
	eventLiveness = "liveness"
)

// RecordWake records that a magic packet was (or failed to be) sent.
//
// The write is non-blocking; data is batched and sent asynchronously.
// deviceName may be empty when the packet was addressed by MAC only.
//
// Example:
//
//	client.RecordWake("pc1", "00:01:02:03:04:05", true)
func (c *Client) RecordWake(deviceName, mac string, sent bool) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(wakePoint(deviceName, mac, sent, time.Now()))
}

// RecordLiveness records the outcome of the post-wake liveness check.
//
// waited is the time between the magic packet and the final probe.
func (c *Client) RecordLiveness(deviceName, checkAddr string, up bool, waited time.Duration) {
	if !c.IsConnected() {
		return
	}

	c.writeAPI.WritePoint(livenessPoint(deviceName, checkAddr, up, waited, time.Now()))
}

func wakePoint(deviceName, mac string, sent bool, ts time.Time) *write.Point {
	tags := map[string]string{
		"event": eventWake,
		"mac":   mac,
	}
	if deviceName != "" {
		tags["device"] = deviceName
	}

	return write.NewPoint(
		measurementWakeEvents,
		tags,
		map[string]interface{}{
			"sent": sent,
		},
		ts,
	)
}

func livenessPoint(deviceName, checkAddr string, up bool, waited time.Duration, ts time.Time) *write.Point {
	return write.NewPoint(
		measurementWakeEvents,
		map[string]string{
			"event":      eventLiveness,
			"device":     deviceName,
			"check_addr": checkAddr,
		},
		map[string]interface{}{
			"up":             up,
			"waited_seconds": waited.Seconds(),
		},
		ts,
	)
}
