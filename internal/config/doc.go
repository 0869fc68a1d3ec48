// Package config builds the gateway's effective configuration.
//
// Precedence, lowest to highest: built-in defaults, an optional YAML file
// (with ${VAR} interpolation), then plain environment variables such as
// GATEWAY_HOST and POOL_SIZE. Everything is optional; a bare process gets
// the stock local-gateway setup.
package config
