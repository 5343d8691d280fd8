package device

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// record is the on-disk shape of a Device.
//
//	- name: pc1
//	  mac: 00:01:02:03:04:05
//	  check_addr: 192.168.1.20:22
type record struct {
	Name      string `yaml:"name"`
	MAC       string `yaml:"mac"`
	CheckAddr string `yaml:"check_addr,omitempty"`
}

// encodeDevices serialises the full record sequence.
func encodeDevices(devices deviceList) ([]byte, error) {
	records := make([]record, len(devices))
	for i, d := range devices {
		records[i] = record{
			Name:      d.Name.String(),
			MAC:       d.MAC.String(),
			CheckAddr: d.CheckAddr,
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("encoding devices: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("encoding devices: %w", err)
	}
	return buf.Bytes(), nil
}

// decodeDevices parses a records file. Anything other than a single YAML
// sequence of valid, uniquely named records is ErrCorruptData. An empty
// document decodes to an empty sequence.
func decodeDevices(data []byte) (deviceList, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	// Pointers keep null items in place so they can be rejected below
	// instead of being skipped by the decoder.
	var records []*record
	if err := dec.Decode(&records); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: %w", ErrCorruptData, err)
	}

	var extra yaml.Node
	if err := dec.Decode(&extra); !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: expected a single YAML document", ErrCorruptData)
	}

	devices := make(deviceList, 0, len(records))
	for i, rec := range records {
		if rec == nil {
			return nil, fmt.Errorf("%w: record %d: empty entry", ErrCorruptData, i+1)
		}
		d, err := NewDevice(rec.Name, rec.MAC, rec.CheckAddr)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %w", ErrCorruptData, i+1, err)
		}
		if devices.indexByName(d.Name) >= 0 {
			return nil, fmt.Errorf("%w: record %d: duplicate name %q", ErrCorruptData, i+1, rec.Name)
		}
		devices = append(devices, d)
	}
	return devices, nil
}
