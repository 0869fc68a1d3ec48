package config

import "time"

// Config is the root configuration for an ibrest gateway instance.
type Config struct {
	Upstream UpstreamConfig `yaml:"upstream"`
	HTTP     HTTPConfig     `yaml:"http"`
	Pool     PoolConfig     `yaml:"pool"`
	Wait     WaitConfig     `yaml:"wait"`
	Log      LogConfig      `yaml:"log"`
}

// UpstreamConfig holds IB Gateway connection settings.
type UpstreamConfig struct {
	Host         string        `yaml:"host" env:"GATEWAY_HOST"`
	Port         int           `yaml:"port" env:"GATEWAY_PORT"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CommandRate  float64       `yaml:"command_rate" env:"GATEWAY_COMMAND_RATE"` // commands/sec per connection
	CommandBurst int           `yaml:"command_burst"`
}

// HTTPConfig holds the REST listener settings.
type HTTPConfig struct {
	Host              string        `yaml:"host" env:"LISTEN_HOST"`
	Port              int           `yaml:"port" env:"LISTEN_PORT"`
	ReadHeaderTimeout time.Duration `yaml:"read_header_timeout"`
	ShutdownTimeout   time.Duration `yaml:"shutdown_timeout"`
}

// PoolConfig holds connection pool settings.
//
// WaitIters x WaitInterval bounds how long a request blocks for a free
// client before the pool reports exhaustion.
type PoolConfig struct {
	Size         int           `yaml:"size" env:"POOL_SIZE"`
	WaitIters    int           `yaml:"wait_iters" env:"POOL_WAIT_ITERS"`
	WaitInterval time.Duration `yaml:"wait_interval"`
}

// WaitConfig holds the event-wait budgets used by request operations.
type WaitConfig struct {
	TimeoutIters      int           `yaml:"timeout_iters" env:"POLL_TIMEOUT_ITERS"`
	OrderTimeoutIters int           `yaml:"order_timeout_iters" env:"ORDER_TIMEOUT_ITERS"`
	PollInterval      time.Duration `yaml:"poll_interval"`
	MarketTicks       int           `yaml:"market_ticks" env:"MARKET_TICKS"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level" env:"LOG_LEVEL"`
	Format string `yaml:"format" env:"LOG_FORMAT"`
}
