// SPDX-License-Identifier: EPL-2.0

// Package config loads the YAML configuration of the conversion service.
//
// Values missing from the file keep their Default. Load validates every
// section and reports the first problem prefixed with the section name:
//
//	cfg, err := config.Load("configs/config.yaml")
//	// err: config validation failed: audio config: channels must be 1 or 2, got 6
package config
