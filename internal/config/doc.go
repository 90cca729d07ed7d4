// Package config provides configuration structures and utilities for userclean.
// It defines the run settings (input, output, mode, chunking, ranking),
// report preferences, metrics settings, and the optional .userclean YAML
// file with named profiles.
package config
