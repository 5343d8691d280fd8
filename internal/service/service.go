package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/mponcet/wololo/internal/command"
	"github.com/mponcet/wololo/internal/device"
	"github.com/mponcet/wololo/internal/infrastructure/mqtt"
)

// commandTimeout bounds a single command, including the magic packet send.
const commandTimeout = 5 * time.Second

// Bus is the subset of the MQTT client the service uses.
// *mqtt.Client satisfies it.
type Bus interface {
	Publish(topic string, payload []byte, qos byte, retained bool) error
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
	Unsubscribe(topic string) error
}

// Checker waits for a woken host to accept connections.
// wol.Checker satisfies it.
type Checker interface {
	WaitUp(ctx context.Context, addr string) (bool, error)
}

// EventRecorder persists wake and liveness outcomes.
// *influxdb.Client satisfies it.
type EventRecorder interface {
	RecordWake(deviceName, mac string, sent bool)
	RecordLiveness(deviceName, checkAddr string, up bool, waited time.Duration)
}

// Logger defines the logging interface used by the service.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Options holds the dependencies of a Service.
type Options struct {
	// Bus is the MQTT connection. Required.
	Bus Bus

	// Repo is the device registry. Required.
	Repo device.Repository

	// Waker sends magic packets. Required.
	Waker command.Waker

	// Checker runs post-wake liveness checks. Optional; nil disables them.
	Checker Checker

	// Recorder stores wake events. Optional.
	Recorder EventRecorder

	// Topics selects the topic prefix.
	Topics mqtt.Topics

	// QoS is used for every subscription and publish.
	QoS byte

	// Logger is optional.
	Logger Logger

	// NewID generates response IDs for commands that carry none.
	// Defaults to random UUIDs.
	NewID func() string
}

// Service runs text commands received over MQTT against the device registry.
//
// Thread Safety: All methods are safe for concurrent use. Commands are
// handled on the MQTT client's goroutines; liveness checks run on their own
// goroutines and are cancelled by Stop.
type Service struct {
	bus      Bus
	repo     device.Repository
	handler  *command.Handler
	checker  Checker
	recorder EventRecorder
	topics   mqtt.Topics
	qos      byte
	logger   Logger
	newID    func() string

	// Lifecycle. stopped is guarded by mu so that no liveness goroutine is
	// added to wg after Stop begins waiting.
	mu       sync.Mutex
	started  bool
	stopped  bool
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// New creates a service. Call Start to begin handling commands.
func New(opts Options) (*Service, error) {
	if opts.Bus == nil {
		return nil, fmt.Errorf("MQTT bus is required")
	}
	if opts.Repo == nil {
		return nil, fmt.Errorf("device repository is required")
	}
	if opts.Waker == nil {
		return nil, fmt.Errorf("waker is required")
	}

	s := &Service{
		bus:      opts.Bus,
		repo:     opts.Repo,
		handler:  command.NewHandler(opts.Repo, opts.Waker),
		checker:  opts.Checker,
		recorder: opts.Recorder,
		topics:   opts.Topics,
		qos:      opts.QoS,
		logger:   opts.Logger,
		newID:    opts.NewID,
	}
	if s.newID == nil {
		s.newID = uuid.NewString
	}

	return s, nil
}

// Start subscribes to the command topic and publishes the device listing.
// The service runs until Stop is called or ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.started || s.stopped {
		s.mu.Unlock()
		return ErrAlreadyStarted
	}
	s.started = true
	s.ctx, s.cancel = context.WithCancel(ctx)
	s.mu.Unlock()

	topic := s.topics.Command()
	if err := s.bus.Subscribe(topic, s.qos, s.handleMessage); err != nil {
		s.cancel()
		return fmt.Errorf("subscribe to commands: %w", err)
	}
	s.logInfo("subscribed to commands", "topic", topic)

	s.publishDevices()

	return nil
}

// Stop unsubscribes, cancels pending liveness checks and waits for them.
func (s *Service) Stop() {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		started := s.started
		s.mu.Unlock()

		if !started {
			return
		}

		if err := s.bus.Unsubscribe(s.topics.Command()); err != nil {
			s.logWarn("failed to unsubscribe", "error", err)
		}
		s.cancel()
		s.wg.Wait()

		s.logInfo("service stopped")
	})
}

// handleMessage is the MQTT handler for the command topic.
func (s *Service) handleMessage(_ string, payload []byte) error {
	cmd, err := decodeCommand(payload)
	if err != nil {
		id := s.newID()
		s.respond(id, KindCommand, err.Error(), false)
		return err
	}

	if !mqtt.ValidSegment(cmd.ID) {
		if cmd.ID != "" {
			s.logWarn("replacing unusable command id", "id", cmd.ID)
		}
		cmd.ID = s.newID()
	}

	ctx, cancel := context.WithTimeout(s.baseContext(), commandTimeout)
	res := s.handler.Execute(ctx, cmd.Text)
	cancel()

	s.logInfo("command handled", "id", cmd.ID, "command", cmd.Text, "ok", res.OK)
	s.respond(cmd.ID, KindCommand, res.Message, res.OK)

	if res.Mutated {
		s.publishDevices()
	}

	if res.Target != nil {
		s.afterWake(cmd.ID, *res.Target, res.OK)
	}

	return nil
}

// afterWake records the send and schedules the liveness check.
func (s *Service) afterWake(id string, d device.Device, sent bool) {
	name := ""
	if !d.Name.IsZero() {
		name = d.Name.String()
	}

	if s.recorder != nil {
		s.recorder.RecordWake(name, d.MAC.String(), sent)
	}
	if !sent {
		return
	}

	s.publishEvent(d, EventWakeSent)

	if s.checker == nil || d.CheckAddr == "" {
		return
	}

	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go s.watchLiveness(id, d)
}

// watchLiveness waits for d to come up and reports the outcome.
func (s *Service) watchLiveness(id string, d device.Device) {
	defer s.wg.Done()

	start := time.Now()
	up, err := s.checker.WaitUp(s.baseContext(), d.CheckAddr)
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			s.logWarn("liveness check aborted", "device", d.Name.String(), "error", err)
		}
		return
	}
	waited := time.Since(start)

	message, event := "Host is down :'(", EventHostDown
	if up {
		message, event = "Host is up !", EventHostUp
	}

	s.logInfo("liveness check finished", "device", d.Name.String(), "up", up, "waited", waited)
	s.respond(id, KindLiveness, message, up)
	s.publishEvent(d, event)

	if s.recorder != nil {
		s.recorder.RecordLiveness(d.Name.String(), d.CheckAddr, up, waited)
	}
}

// respond publishes a reply on the response topic for id.
func (s *Service) respond(id string, kind ResponseKind, message string, ok bool) {
	s.publishJSON(s.topics.Response(id), ResponseMessage{
		ID:        id,
		Timestamp: time.Now().UTC(),
		Kind:      kind,
		Message:   message,
		OK:        ok,
	}, false)
}

// publishDevices publishes the retained device listing.
func (s *Service) publishDevices() {
	devices, _ := s.repo.FetchAll()
	s.publishJSON(s.topics.Devices(), deviceEntries(devices), true)
}

// publishEvent publishes a device event. Unnamed devices are keyed by MAC.
func (s *Service) publishEvent(d device.Device, event EventType) {
	msg := EventMessage{
		Timestamp: time.Now().UTC(),
		Event:     event,
		MAC:       d.MAC.String(),
		CheckAddr: d.CheckAddr,
	}
	key := msg.MAC
	if !d.Name.IsZero() {
		msg.Device = d.Name.String()
		key = msg.Device
	}

	s.publishJSON(s.topics.Event(key), msg, false)
}

func (s *Service) publishJSON(topic string, v any, retained bool) {
	payload, err := json.Marshal(v)
	if err != nil {
		s.logError("failed to encode message", err)
		return
	}
	if err := s.bus.Publish(topic, payload, s.qos, retained); err != nil {
		s.logError("failed to publish", fmt.Errorf("%s: %w", topic, err))
	}
}

// baseContext returns the service context, or a cancelled one before Start.
func (s *Service) baseContext() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx == nil {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		return ctx
	}
	return s.ctx
}

// logInfo logs an info message if logger is set.
func (s *Service) logInfo(msg string, keysAndValues ...any) {
	if s.logger != nil {
		s.logger.Info(msg, keysAndValues...)
	}
}

// logWarn logs a warning if logger is set.
func (s *Service) logWarn(msg string, keysAndValues ...any) {
	if s.logger != nil {
		s.logger.Warn(msg, keysAndValues...)
	}
}

// logError logs an error message if logger is set.
func (s *Service) logError(msg string, err error) {
	if s.logger != nil {
		s.logger.Error(msg, "error", err)
	}
}
