// Package mqtt provides MQTT client connectivity for wololo.
//
// This package manages:
//   - Connection to the broker with auto-reconnect
//   - Message publishing with QoS guarantees
//   - Topic subscriptions with wildcard support
//   - Last Will and Testament (LWT) for offline detection
//   - Connection health monitoring
//
// # Architecture
//
// The serve command exposes the device registry over MQTT. Any client that
// can publish a text command (a phone app, a home automation bridge, a chat
// relay) can add, remove, list and wake devices.
//
//	command sender ↔ MQTT Broker ↔ wololo service ↔ device repository
//
// # Topics
//
// Every topic sits under a configurable prefix (default "wololo"):
//
//	<prefix>/command          inbound text commands
//	<prefix>/response/<id>    one reply per command
//	<prefix>/devices          retained device listing
//	<prefix>/events/<name>    wake and liveness events
//	<prefix>/system/status    retained online/offline status (LWT)
//
// # Security Considerations
//
//   - Enable TLS when the broker is not on localhost (cfg.Broker.TLS=true)
//   - Anyone allowed to publish on <prefix>/command can wake machines;
//     restrict it with broker ACLs
//
// # Usage
//
//	client, err := mqtt.Connect(cfg.MQTT)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer client.Close()
//
//	err = client.Subscribe(client.Topics().Command(), 1,
//	    func(topic string, payload []byte) error {
//	        log.Printf("Received: %s = %s", topic, payload)
//	        return nil
//	    })
package mqtt
