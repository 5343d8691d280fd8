// wololo - Wake-on-LAN device registry
//
// This is the main entry point for the wololo command. It keeps a registry of
// named machines in a YAML file and wakes them with magic packets, either
// directly from the command line or on behalf of MQTT clients (serve).
//
// Usage:
//
//	wololo [-config path] init
//	wololo [-config path] add NAME MAC [CHECK_ADDR]
//	wololo [-config path] del NAME
//	wololo [-config path] [-check] wake NAME|MAC
//	wololo [-config path] show
//	wololo [-config path] serve
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mponcet/wololo/internal/command"
	"github.com/mponcet/wololo/internal/device"
	"github.com/mponcet/wololo/internal/infrastructure/config"
	"github.com/mponcet/wololo/internal/infrastructure/influxdb"
	"github.com/mponcet/wololo/internal/infrastructure/logging"
	"github.com/mponcet/wololo/internal/infrastructure/mqtt"
	"github.com/mponcet/wololo/internal/service"
	"github.com/mponcet/wololo/internal/wol"
)

// Version information - set at build time via ldflags
// Example: go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
var (
	version = "dev"     // Semantic version (e.g., "1.0.0")
	commit  = "unknown" // Git commit hash
	date    = "unknown" // Build date
)

// Default configuration file path
const defaultConfigPath = "wololo.yaml"

// errUsage is returned when the command line cannot be understood.
var errUsage = errors.New("invalid usage")

func main() {
	// Create a context that cancels on interrupt signals (Ctrl+C, SIGTERM)
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		if !errors.Is(err, errUsage) && !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// run is the actual application logic, separated from main for testability.
// Command output goes to stdout; usage and diagnostics go to stderr.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	fs := flag.NewFlagSet("wololo", flag.ContinueOnError)
	fs.SetOutput(stderr)
	configPath := fs.String("config", getConfigPath(), "path to the YAML configuration file")
	check := fs.Bool("check", false, "after wake, wait until the device answers on its check address")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "usage: wololo [flags] <command> [args]\n\n%s\n\nflags:\n", command.Help)
		fs.PrintDefaults()
		fmt.Fprintln(stderr, "\n init    create an empty registry\n serve   run the MQTT command service")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	rest := fs.Args()
	if len(rest) == 0 {
		fs.Usage()
		return errUsage
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	log := logging.New(cfg.Logging, version)

	switch rest[0] {
	case "init":
		return initRegistry(cfg, log, stdout)
	case "serve":
		return serve(ctx, cfg, log)
	case "add", "del", "wake", "show", "list":
		return runCommand(ctx, cfg, log, rest, *check, stdout, stderr)
	default:
		fs.Usage()
		return errUsage
	}
}

// getConfigPath returns the configuration file path.
// Uses WOLOLO_CONFIG environment variable if set, otherwise default.
func getConfigPath() string {
	if path := os.Getenv("WOLOLO_CONFIG"); path != "" {
		return path
	}
	return defaultConfigPath
}

// openRepository opens the configured registry backend.
func openRepository(cfg *config.Config, log *logging.Logger, create bool) (device.Repository, error) {
	repo, err := device.Open(device.OpenOptions{
		Backend:         cfg.Storage.Backend,
		Path:            cfg.Storage.Path,
		CreateIfMissing: create,
		Logger:          log.Component("device"),
	})
	if err != nil {
		return nil, fmt.Errorf("opening device registry: %w", err)
	}
	return repo, nil
}

// initRegistry creates the records file if it does not exist yet.
func initRegistry(cfg *config.Config, log *logging.Logger, stdout io.Writer) error {
	if cfg.Storage.Backend == device.BackendMemory {
		return errors.New("init: the memory backend has nothing to initialise")
	}
	if _, err := openRepository(cfg, log, true); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "Device registry ready at %s\n", cfg.Storage.Path)
	return nil
}

// runCommand executes one registry command and prints its reply.
func runCommand(ctx context.Context, cfg *config.Config, log *logging.Logger, args []string, check bool, stdout, stderr io.Writer) error {
	// A memory registry dies with the process, so a one-shot change would be
	// reported as done and then lost.
	if cfg.Storage.Backend == device.BackendMemory && (args[0] == "add" || args[0] == "del") {
		return fmt.Errorf("%s: the memory backend does not keep changes between runs", args[0])
	}

	repo, err := openRepository(cfg, log, cfg.Storage.CreateIfMissing)
	if err != nil {
		return err
	}

	handler := command.NewHandler(repo, wol.NewSender(cfg.Wake.BroadcastAddr))
	res := handler.Execute(ctx, strings.Join(args, " "))
	if !res.OK {
		if res.Message == command.Help {
			fmt.Fprintln(stderr, command.Help)
			return errUsage
		}
		return errors.New(res.Message)
	}
	if res.Message != "" {
		fmt.Fprintln(stdout, res.Message)
	}

	if check && res.Target != nil {
		return waitForHost(ctx, cfg, *res.Target, stdout)
	}
	return nil
}

// waitForHost runs the liveness check after a wake.
func waitForHost(ctx context.Context, cfg *config.Config, d device.Device, stdout io.Writer) error {
	if d.CheckAddr == "" {
		return fmt.Errorf("device %s has no check address", d.MAC)
	}

	up, err := newChecker(cfg).WaitUp(ctx, d.CheckAddr)
	if err != nil {
		return err
	}
	if !up {
		return errors.New("Host is down :'(")
	}
	fmt.Fprintln(stdout, "Host is up !")
	return nil
}

func newChecker(cfg *config.Config) wol.Checker {
	return wol.Checker{
		Interval:    cfg.Wake.CheckInterval,
		Retries:     cfg.Wake.CheckRetries,
		DialTimeout: cfg.Wake.DialTimeout,
	}
}

// serve runs the MQTT command service until ctx is cancelled.
func serve(ctx context.Context, cfg *config.Config, log *logging.Logger) error {
	log.Info("starting wololo service",
		"version", version,
		"commit", commit,
		"build_date", date,
	)

	repo, err := openRepository(cfg, log, cfg.Storage.CreateIfMissing)
	if err != nil {
		return err
	}

	// Connect to MQTT broker
	mqttClient, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		return fmt.Errorf("connecting to MQTT: %w", err)
	}
	defer func() {
		log.Info("disconnecting from MQTT")
		if closeErr := mqttClient.Close(); closeErr != nil {
			log.Error("error closing MQTT", "error", closeErr)
		}
	}()
	mqttClient.SetLogger(log.Component("mqtt"))
	mqttClient.SetOnConnect(func() {
		log.Info("MQTT reconnected")
	})
	mqttClient.SetOnDisconnect(func(err error) {
		log.Warn("MQTT disconnected", "error", err)
	})
	log.Info("MQTT connected",
		"broker", fmt.Sprintf("%s:%d", cfg.MQTT.Broker.Host, cfg.MQTT.Broker.Port),
		"client_id", cfg.MQTT.Broker.ClientID,
	)

	opts := service.Options{
		Bus:     mqttClient,
		Repo:    repo,
		Waker:   wol.NewSender(cfg.Wake.BroadcastAddr),
		Checker: newChecker(cfg),
		Topics:  mqttClient.Topics(),
		QoS:     mqttClient.QoS(),
		Logger:  log.Component("service"),
	}

	// Connect to InfluxDB (optional)
	influxClient, err := influxdb.Connect(cfg.InfluxDB)
	switch {
	case errors.Is(err, influxdb.ErrDisabled):
		log.Info("InfluxDB disabled")
	case err != nil:
		return fmt.Errorf("connecting to InfluxDB: %w", err)
	default:
		defer func() {
			log.Info("closing InfluxDB connection")
			if closeErr := influxClient.Close(); closeErr != nil {
				log.Error("error closing InfluxDB", "error", closeErr)
			}
		}()
		influxClient.SetOnError(func(err error) {
			log.Error("InfluxDB write error", "error", err)
		})
		opts.Recorder = influxClient
		log.Info("InfluxDB connected",
			"url", cfg.InfluxDB.URL,
			"org", cfg.InfluxDB.Org,
			"bucket", cfg.InfluxDB.Bucket,
		)
	}

	svc, err := service.New(opts)
	if err != nil {
		return fmt.Errorf("creating service: %w", err)
	}
	if err := svc.Start(ctx); err != nil {
		return fmt.Errorf("starting service: %w", err)
	}
	defer svc.Stop()

	if err := healthCheck(ctx, mqttClient, influxClient); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}

	log.Info("initialisation complete, waiting for shutdown signal",
		"command_topic", mqttClient.Topics().Command(),
	)

	<-ctx.Done()

	log.Info("shutdown signal received, cleaning up")
	return nil
}

// healthCheck verifies all infrastructure connections are healthy.
// influxClient may be nil when event recording is disabled.
func healthCheck(ctx context.Context, mqttClient *mqtt.Client, influxClient *influxdb.Client) error {
	if err := mqttClient.HealthCheck(ctx); err != nil {
		return fmt.Errorf("mqtt: %w", err)
	}

	if influxClient != nil {
		if err := influxClient.HealthCheck(ctx); err != nil {
			return fmt.Errorf("influxdb: %w", err)
		}
	}

	return nil
}
