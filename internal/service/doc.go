// Package service exposes the device registry over MQTT.
//
// Clients publish text commands and receive replies on a per-command
// response topic:
//
//	client                          broker                        Service
//	  │ <prefix>/command                │                               │
//	  │ {"id":"r1","text":"wake pc1"} ──►  ───────────────────────────► │ command.Handler
//	  │                                 │                               │   └─ wol.Sender
//	  │ ◄── <prefix>/response/r1  ◄──── │ ◄── "Magic packet sent to …"  │
//	  │                                 │                               │ Checker.WaitUp (goroutine)
//	  │ ◄── <prefix>/response/r1  ◄──── │ ◄── "Host is up !"            │   └─ EventRecorder
//
// A plain-text payload ("show") is accepted too; its reply goes to a
// response topic named by a generated UUID, announced in the reply's "id".
//
// After every add or del the retained <prefix>/devices topic is refreshed
// with the full listing, so dashboards always see the current registry.
//
// # Liveness checks
//
// When a woken device has a check address and a Checker is configured, the
// service polls it in the background and publishes a second reply
// ("Host is up !" or "Host is down :'(") on the same response topic. Stop
// cancels checks still in progress.
package service
