package main

import (
	"time"

	"github.com/caarlos0/env/v6"
	"github.com/go-faster/errors"

	"github.com/cloudx-io/openescrow/core"
)

// Config is read from the environment at startup.
type Config struct {
	// Network is "vsock" or "tcp".
	Network     string        `env:"ESCROW_NETWORK" envDefault:"vsock"`
	VsockPort   uint32        `env:"ESCROW_VSOCK_PORT" envDefault:"5000"`
	TCPAddr     string        `env:"ESCROW_TCP_ADDR" envDefault:"127.0.0.1:5000"`
	MaxWorkers  int           `env:"ESCROW_MAX_WORKERS,required"`
	ReadTimeout time.Duration `env:"ESCROW_READ_TIMEOUT" envDefault:"30s"`

	LogLevel    string `env:"ESCROW_LOG_LEVEL" envDefault:"INFO"`
	MetricsAddr string `env:"ESCROW_METRICS_ADDR" envDefault:":9010"`

	// Deployer receives the commission of every auction.
	Deployer         string `env:"ESCROW_DEPLOYER,required"`
	ContractIndex    uint64 `env:"ESCROW_CONTRACT_INDEX" envDefault:"0"`
	ContractSubindex uint64 `env:"ESCROW_CONTRACT_SUBINDEX" envDefault:"0"`
	StateFile        string `env:"ESCROW_STATE_FILE"`
	WallClock        bool   `env:"ESCROW_WALL_CLOCK" envDefault:"true"`
}

// LoadConfig parses the process environment.
func LoadConfig() (Config, error) {
	return loadConfig(env.Options{})
}

func loadConfig(opts env.Options) (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg, opts); err != nil {
		return Config{}, errors.Wrap(err, "parse environment")
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.Network {
	case "vsock", "tcp":
	default:
		return errors.Errorf("invalid ESCROW_NETWORK %q (must be vsock or tcp)", c.Network)
	}
	if c.MaxWorkers <= 0 {
		return errors.Errorf("invalid ESCROW_MAX_WORKERS %d (must be positive)", c.MaxWorkers)
	}
	if c.Deployer == "" {
		return errors.New("ESCROW_DEPLOYER must not be empty")
	}
	return nil
}

func (c Config) serviceOptions() ServiceOptions {
	return ServiceOptions{
		Self:      core.ContractAddress{Index: c.ContractIndex, Subindex: c.ContractSubindex},
		Deployer:  core.AccountAddress(c.Deployer),
		StateFile: c.StateFile,
		WallClock: c.WallClock,
	}
}
