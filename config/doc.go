// Package config loads council settings from embedded defaults, an optional
// YAML file and the environment.
package config
