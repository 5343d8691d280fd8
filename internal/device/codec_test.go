package device

import (
	"errors"
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	pc1 := mustDevice(t, "pc1", "00-01-02-03-04-05")
	nas, err := NewDevice("nas", "AA:BB:CC:DD:EE:FF", "nas.lan:445")
	if err != nil {
		t.Fatalf("NewDevice() error = %v", err)
	}
	// Names that YAML would otherwise read as numbers or booleans.
	num := mustDevice(t, "0123", "00:00:00:00:00:01")
	yes := mustDevice(t, "yes", "00:00:00:00:00:02")

	in := deviceList{pc1, nas, num, yes}
	data, err := encodeDevices(in)
	if err != nil {
		t.Fatalf("encodeDevices() error = %v", err)
	}

	out, err := decodeDevices(data)
	if err != nil {
		t.Fatalf("decodeDevices() error = %v\n%s", err, data)
	}
	if len(out) != len(in) {
		t.Fatalf("decoded %d devices, want %d", len(out), len(in))
	}
	for i := range in {
		if out[i] != in[i] {
			t.Errorf("device %d = %+v, want %+v", i, out[i], in[i])
		}
	}
}

func TestEncodeDevices_Format(t *testing.T) {
	d := mustDevice(t, "pc1", "00-01-02-03-04-05")
	data, err := encodeDevices(deviceList{d})
	if err != nil {
		t.Fatalf("encodeDevices() error = %v", err)
	}

	text := string(data)
	if !strings.Contains(text, "name: pc1") {
		t.Errorf("encoded file missing name:\n%s", text)
	}
	if !strings.Contains(text, "00:01:02:03:04:05") {
		t.Errorf("encoded file does not use canonical mac:\n%s", text)
	}
	if strings.Contains(text, "check_addr") {
		t.Errorf("empty check_addr was written:\n%s", text)
	}
}

func TestEncodeDevices_Empty(t *testing.T) {
	data, err := encodeDevices(nil)
	if err != nil {
		t.Fatalf("encodeDevices() error = %v", err)
	}
	out, err := decodeDevices(data)
	if err != nil {
		t.Fatalf("decodeDevices(%q) error = %v", data, err)
	}
	if len(out) != 0 {
		t.Errorf("decoded %d devices, want 0", len(out))
	}
}

func TestDecodeDevices_ReportsRecordNumber(t *testing.T) {
	_, err := decodeDevices([]byte("- name: pc1\n  mac: 00:01:02:03:04:05\n- name: pc2\n  mac: bad\n"))
	if !errors.Is(err, ErrCorruptData) {
		t.Fatalf("decodeDevices() error = %v, want ErrCorruptData", err)
	}
	if !strings.Contains(err.Error(), "record 2") {
		t.Errorf("error %q does not name the bad record", err)
	}
}

func TestDecodeDevices_RejectsNullEntries(t *testing.T) {
	tests := []struct {
		name       string
		content    string
		wantRecord string
	}{
		{name: "bare dash", content: "- name: pc1\n  mac: 00:01:02:03:04:05\n-\n", wantRecord: "record 2"},
		{name: "null keyword", content: "- null\n- name: pc2\n  mac: 00:01:02:03:04:06\n", wantRecord: "record 1"},
		{name: "tilde before a bad record", content: "- name: pc1\n  mac: 00:01:02:03:04:05\n- ~\n- name: pc3\n  mac: bad\n", wantRecord: "record 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := decodeDevices([]byte(tt.content))
			if !errors.Is(err, ErrCorruptData) {
				t.Fatalf("decodeDevices() = %v, %v, want ErrCorruptData", out, err)
			}
			if !strings.Contains(err.Error(), tt.wantRecord) {
				t.Errorf("error %q does not name %s", err, tt.wantRecord)
			}
		})
	}
}

func TestDecodeDevices_NullDocumentIsEmpty(t *testing.T) {
	for _, content := range []string{"", "[]\n", "~\n"} {
		out, err := decodeDevices([]byte(content))
		if err != nil || len(out) != 0 {
			t.Errorf("decodeDevices(%q) = %v, %v, want empty", content, out, err)
		}
	}
}
