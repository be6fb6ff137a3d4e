// Package config provides configuration structures and utilities for soqlq.
//
// Settings are resolved in increasing priority: built-in defaults, the
// .soqlq YAML file (defaults merged with the selected org), the
// SOQLQ_INSTANCE_URL and SOQLQ_ACCESS_TOKEN environment variables, and
// finally command line flags.
package config
