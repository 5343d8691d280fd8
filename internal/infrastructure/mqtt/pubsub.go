package mqtt

import "fmt"

// Publish sends payload to topic and waits for the broker to acknowledge it
// (QoS 1 and 2).
//
// Retain state topics such as the device listing so late subscribers get the
// current value; never retain command replies.
//
//	err := client.Publish(client.Topics().Response(id), payload, 1, false)
func (c *Client) Publish(topic string, payload []byte, qos byte, retained bool) error {
	if err := checkTopic(topic, qos); err != nil {
		return err
	}
	if len(payload) > maxPayloadSize {
		return fmt.Errorf("%w: payload of %d bytes exceeds %d", ErrPublishFailed, len(payload), maxPayloadSize)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	return wait(c.paho.Publish(topic, qos, retained, payload), ackTimeout, ErrPublishFailed)
}

// Subscribe registers handler for topic, which may contain the + and #
// wildcards. The subscription is replayed after every reconnect until
// Unsubscribe is called.
//
//	err := client.Subscribe(client.Topics().AllResponses(), 1,
//	    func(topic string, payload []byte) error {
//	        fmt.Printf("%s: %s\n", topic, payload)
//	        return nil
//	    })
func (c *Client) Subscribe(topic string, qos byte, handler MessageHandler) error {
	if err := checkTopic(topic, qos); err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("%w: nil handler", ErrSubscribeFailed)
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.track(topic, subscription{qos: qos, handler: handler})

	err := wait(c.paho.Subscribe(topic, qos, c.wrapHandler(handler)), ackTimeout, ErrSubscribeFailed)
	if err != nil {
		c.untrack(topic)
		return err
	}
	return nil
}

// Unsubscribe stops delivery for topic. Messages already in flight may still
// reach the handler.
func (c *Client) Unsubscribe(topic string) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if !c.IsConnected() {
		return ErrNotConnected
	}

	c.untrack(topic)

	return wait(c.paho.Unsubscribe(topic), ackTimeout, ErrUnsubscribeFailed)
}

// SubscriptionCount returns the number of tracked subscriptions.
func (c *Client) SubscriptionCount() int {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	return len(c.subs)
}

// HasSubscription reports whether topic, compared literally, is tracked.
func (c *Client) HasSubscription(topic string) bool {
	c.subsMu.RLock()
	defer c.subsMu.RUnlock()
	_, ok := c.subs[topic]
	return ok
}

func (c *Client) track(topic string, sub subscription) {
	c.subsMu.Lock()
	defer c.subsMu.Unlock()
	if c.subs == nil {
		c.subs = make(map[string]subscription)
	}
	c.subs[topic] = sub
}

func (c *Client) untrack(topic string) {
	c.subsMu.Lock()
	delete(c.subs, topic)
	c.subsMu.Unlock()
}

func checkTopic(topic string, qos byte) error {
	if topic == "" {
		return ErrInvalidTopic
	}
	if qos > maxQoS {
		return ErrInvalidQoS
	}
	return nil
}
