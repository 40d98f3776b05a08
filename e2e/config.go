// Package e2e drives a running server from the outside. The suites skip themselves
// unless SERVER_ADDR is set.
package e2e

import (
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	// SERVER_ADDR is the host:port of the HTTP listener (REST and /ws)
	ServerAddr string `envconfig:"SERVER_ADDR"`
	// GRPC_ADDR is the host:port of the gRPC health listener
	GrpcAddr string `envconfig:"GRPC_ADDR"`
	// E2E_DEBUG_JSON dumps every received event and health response as JSON
	DebugJSON bool `envconfig:"E2E_DEBUG_JSON" default:"false"`
	// E2E_COLOURS enables colorized output for better log readability
	Colours bool `envconfig:"E2E_COLOURS" default:"true"`
}

func LoadConfig() (Config, error) {
	var cfg Config
	err := envconfig.Process("", &cfg)
	return cfg, err
}
