package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// writeConfig creates a config file whose registry lives in a temp dir.
func writeConfig(t *testing.T, broadcastAddr string) (configPath, registryPath string) {
	t.Helper()

	dir := t.TempDir()
	registryPath = filepath.Join(dir, "devices.yml")
	configPath = filepath.Join(dir, "wololo.yaml")

	if broadcastAddr == "" {
		broadcastAddr = "127.0.0.1:9"
	}
	content := fmt.Sprintf(`
storage:
  backend: file
  path: %q
  create_if_missing: true
wake:
  broadcast_addr: %q
  check_interval: 10ms
  check_retries: 2
  dial_timeout: 100ms
logging:
  level: error
  output: discard
`, registryPath, broadcastAddr)

	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatalf("writing config: %v", err)
	}
	return configPath, registryPath
}

// runCLI runs one invocation and returns its stdout.
func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()

	var stdout, stderr bytes.Buffer
	all := append([]string{"-config", configPath}, args...)
	err := run(context.Background(), all, &stdout, &stderr)
	return stdout.String(), err
}

func TestRun_NoCommand(t *testing.T) {
	configPath, _ := writeConfig(t, "")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", configPath}, &stdout, &stderr)
	if !errors.Is(err, errUsage) {
		t.Errorf("run() error = %v, want errUsage", err)
	}
	if !strings.Contains(stderr.String(), "usage: wololo") {
		t.Errorf("usage not printed, stderr = %q", stderr.String())
	}
}

func TestRun_UnknownCommand(t *testing.T) {
	configPath, _ := writeConfig(t, "")

	if _, err := runCLI(t, configPath, "frobnicate"); !errors.Is(err, errUsage) {
		t.Errorf("run() error = %v, want errUsage", err)
	}
}

func TestRun_BadArguments(t *testing.T) {
	configPath, _ := writeConfig(t, "")

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", configPath, "add", "pc1"}, &stdout, &stderr)
	if !errors.Is(err, errUsage) {
		t.Errorf("run() error = %v, want errUsage", err)
	}
	if !strings.Contains(stderr.String(), "add NAME MAC") {
		t.Errorf("command help not printed, stderr = %q", stderr.String())
	}
}

func TestRun_InvalidConfig(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "wololo.yaml")
	if err := os.WriteFile(configPath, []byte("storage:\n  backend: tape\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	_, err := runCLI(t, configPath, "show")
	if err == nil || !strings.Contains(err.Error(), "loading config") {
		t.Errorf("run() error = %v, want config error", err)
	}
}

func TestRun_Init(t *testing.T) {
	configPath, registryPath := writeConfig(t, "")

	out, err := runCLI(t, configPath, "init")
	if err != nil {
		t.Fatalf("init: %v", err)
	}
	if !strings.Contains(out, registryPath) {
		t.Errorf("init output = %q, want registry path", out)
	}
	if _, err := os.Stat(registryPath); err != nil {
		t.Errorf("registry file not created: %v", err)
	}

	// A second init keeps the existing registry.
	if _, err := runCLI(t, configPath, "add", "pc1", "00:01:02:03:04:05"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := runCLI(t, configPath, "init"); err != nil {
		t.Fatalf("second init: %v", err)
	}
	out, _ = runCLI(t, configPath, "show")
	if !strings.Contains(out, "pc1") {
		t.Errorf("show after re-init = %q, want pc1", out)
	}
}

func TestRun_AddShowDel(t *testing.T) {
	configPath, _ := writeConfig(t, "")

	out, err := runCLI(t, configPath, "show")
	if err != nil || out != "No devices\n" {
		t.Errorf("show on empty registry = %q, %v", out, err)
	}

	out, err = runCLI(t, configPath, "add", "pc1", "00-01-02-03-04-05")
	if err != nil || out != "Device pc1 added\n" {
		t.Errorf("add = %q, %v", out, err)
	}

	out, err = runCLI(t, configPath, "show")
	if err != nil || out != "Device pc1 has mac address 00:01:02:03:04:05\n" {
		t.Errorf("show = %q, %v", out, err)
	}

	if _, err := runCLI(t, configPath, "add", "pc1", "aa:bb:cc:dd:ee:ff"); err == nil ||
		!strings.HasPrefix(err.Error(), "Couldn't add device pc1") {
		t.Errorf("duplicate add error = %v", err)
	}

	out, err = runCLI(t, configPath, "del", "pc1")
	if err != nil || out != "Device pc1 deleted\n" {
		t.Errorf("del = %q, %v", out, err)
	}

	if _, err := runCLI(t, configPath, "del", "pc1"); err == nil ||
		!strings.HasPrefix(err.Error(), "Couldn't delete device pc1") {
		t.Errorf("del missing device error = %v", err)
	}
}

func TestRun_Wake(t *testing.T) {
	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer conn.Close()

	configPath, _ := writeConfig(t, conn.LocalAddr().String())

	if _, err := runCLI(t, configPath, "add", "pc1", "00:01:02:03:04:05"); err != nil {
		t.Fatalf("add: %v", err)
	}

	out, err := runCLI(t, configPath, "wake", "pc1")
	if err != nil {
		t.Fatalf("wake: %v", err)
	}
	if out != "Magic packet sent to 00:01:02:03:04:05\n" {
		t.Errorf("wake output = %q", out)
	}

	buf := make([]byte, 256)
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	n, _, err := conn.ReadFrom(buf)
	if err != nil {
		t.Fatalf("no packet received: %v", err)
	}
	if n != 102 {
		t.Errorf("packet length = %d, want 102", n)
	}

	if _, err := runCLI(t, configPath, "wake", "ghost"); err == nil || err.Error() != "Couldn't find device ghost" {
		t.Errorf("wake unknown device error = %v", err)
	}
}

func TestRun_WakeCheck(t *testing.T) {
	conn, err := net.ListenPacket("udp4", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}
	defer conn.Close()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen tcp: %v", err)
	}
	defer ln.Close()
	go func() {
		for {
			c, err := ln.Accept()
			if err != nil {
				return
			}
			c.Close()
		}
	}()

	configPath, _ := writeConfig(t, conn.LocalAddr().String())

	if _, err := runCLI(t, configPath, "add", "nas", "aa:bb:cc:dd:ee:ff", ln.Addr().String()); err != nil {
		t.Fatalf("add: %v", err)
	}

	out, err := runCLI(t, configPath, "-check", "wake", "nas")
	if err != nil {
		t.Fatalf("wake -check: %v", err)
	}
	if !strings.HasSuffix(out, "Host is up !\n") {
		t.Errorf("wake -check output = %q", out)
	}

	if _, err := runCLI(t, configPath, "add", "pc1", "00:01:02:03:04:05"); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := runCLI(t, configPath, "-check", "wake", "pc1"); err == nil ||
		!strings.Contains(err.Error(), "no check address") {
		t.Errorf("wake -check without address error = %v", err)
	}
}

func TestRun_InitMemoryBackend(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "wololo.yaml")
	content := "storage:\n  backend: memory\nlogging:\n  output: discard\n"
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := runCLI(t, configPath, "init"); err == nil {
		t.Error("init with memory backend succeeded, want error")
	}
}

func TestRun_MemoryBackendRefusesMutations(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "wololo.yaml")
	content := "storage:\n  backend: memory\nlogging:\n  output: discard\n"
	if err := os.WriteFile(configPath, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	for _, args := range [][]string{
		{"add", "pc1", "00:01:02:03:04:05"},
		{"del", "pc1"},
	} {
		out, err := runCLI(t, configPath, args...)
		if err == nil || !strings.Contains(err.Error(), "memory backend") {
			t.Errorf("%s error = %v, want memory backend refusal", args[0], err)
		}
		if out != "" {
			t.Errorf("%s printed %q, want nothing", args[0], out)
		}
	}

	out, err := runCLI(t, configPath, "show")
	if err != nil || out != "No devices\n" {
		t.Errorf("show = %q, %v", out, err)
	}
}

func TestGetConfigPath(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv("WOLOLO_CONFIG", "")
		if got := getConfigPath(); got != defaultConfigPath {
			t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
		}
	})

	t.Run("from environment", func(t *testing.T) {
		t.Setenv("WOLOLO_CONFIG", "/etc/wololo/config.yaml")
		if got := getConfigPath(); got != "/etc/wololo/config.yaml" {
			t.Errorf("getConfigPath() = %q", got)
		}
	})
}
