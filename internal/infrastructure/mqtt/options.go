package mqtt

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"time"

	pahomqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/mponcet/wololo/internal/infrastructure/config"
)

const (
	connectTimeout = 10 * time.Second
	ackTimeout     = 5 * time.Second
	keepAlive      = 30 * time.Second

	// quiesceMillis is how long Disconnect lets in-flight work drain.
	quiesceMillis = 250

	// Used when the reconnect section is left at zero.
	defaultRetryInterval    = 1 * time.Second
	defaultMaxRetryInterval = 60 * time.Second

	maxQoS = 2

	// maxPayloadSize bounds outgoing messages. A device listing of a few
	// thousand entries stays well below it.
	maxPayloadSize = 256 << 10
)

// Values of Status.State.
const (
	StateOnline  = "online"
	StateOffline = "offline"
)

// Status is the retained payload on <prefix>/system/status. The broker
// publishes the offline variant itself (Last Will) when the service dies
// without closing its session.
type Status struct {
	State     string    `json:"status"`
	ClientID  string    `json:"client_id"`
	Reason    string    `json:"reason,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

func statusPayload(clientID, state, reason string) []byte {
	payload, _ := json.Marshal(Status{
		State:     state,
		ClientID:  clientID,
		Reason:    reason,
		Timestamp: time.Now().UTC().Truncate(time.Second),
	})
	return payload
}

func brokerURL(b config.MQTTBrokerConfig) string {
	scheme := "tcp"
	if b.TLS {
		scheme = "ssl"
	}
	return fmt.Sprintf("%s://%s:%d", scheme, b.Host, b.Port)
}

func seconds(n int, fallback time.Duration) time.Duration {
	if n <= 0 {
		return fallback
	}
	return time.Duration(n) * time.Second
}

// newClientOptions translates the MQTT config section into paho options.
// Sessions are clean: subscriptions are replayed by the client itself after
// every reconnect, see Client.onConnected.
func newClientOptions(cfg config.MQTTConfig, topics Topics) *pahomqtt.ClientOptions {
	opts := pahomqtt.NewClientOptions().
		AddBroker(brokerURL(cfg.Broker)).
		SetClientID(cfg.Broker.ClientID).
		SetCleanSession(true).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(seconds(cfg.Reconnect.InitialDelay, defaultRetryInterval)).
		SetMaxReconnectInterval(seconds(cfg.Reconnect.MaxDelay, defaultMaxRetryInterval)).
		SetConnectTimeout(connectTimeout).
		SetKeepAlive(keepAlive)

	if cfg.Auth.Username != "" {
		opts.SetUsername(cfg.Auth.Username)
		opts.SetPassword(cfg.Auth.Password)
	}

	if cfg.Broker.TLS {
		opts.SetTLSConfig(&tls.Config{
			MinVersion: tls.VersionTLS12,
			ServerName: cfg.Broker.Host,
		})
	}

	opts.SetBinaryWill(
		topics.SystemStatus(),
		statusPayload(cfg.Broker.ClientID, StateOffline, "connection_lost"),
		1,
		true,
	)

	return opts
}
