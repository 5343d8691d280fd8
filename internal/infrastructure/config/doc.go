// Package config handles loading and validating wololo configuration.
//
// This package manages:
//   - Loading configuration from YAML files
//   - Overriding with environment variables
//   - Validation of required fields
//   - Default value handling
//
// A missing configuration file is not an error. The defaults describe a
// file-backed registry at ./devices.yml, broadcasting magic packets to
// 255.255.255.255:9, with a local MQTT broker for the serve command.
//
// Security Considerations:
//   - MQTT passwords and InfluxDB tokens should be set via environment variables
//   - The config file should have restricted permissions (0600)
//
// Usage:
//
//	cfg, err := config.Load("wololo.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(cfg.Storage.Path)
package config
