// Package influxdb provides InfluxDB connectivity for wololo.
//
// It wraps the official influxdb-client-go v2 library for connection
// management, event writing, and health monitoring.
//
// # Purpose
//
// The serve command records every wake request and every liveness check
// result in the "wake_events" measurement:
//
//	wake_events,event=wake,device=pc1,mac=00:01:02:03:04:05 sent=true
//	wake_events,event=liveness,device=pc1,check_addr=10.0.0.5:22 up=true,waited_seconds=10
//
// This answers questions like "which machines fail to come up after a wake".
//
// # Usage
//
//	client, err := influxdb.Connect(cfg.InfluxDB)
//	if errors.Is(err, influxdb.ErrDisabled) {
//	    // event recording is optional
//	}
//	defer client.Close()
//
//	client.RecordWake("pc1", "00:01:02:03:04:05", true)
//
// # Thread Safety
//
// All methods are safe for concurrent use from multiple goroutines.
// The underlying write API uses non-blocking batched writes.
//
// # Error Handling
//
// Write operations are non-blocking and batch errors are delivered via the
// SetOnError callback. Connection and health check errors are returned directly.
package influxdb
