package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultGatewayHost       = "127.0.0.1"
	DefaultGatewayPort       = 4001
	DefaultListenHost        = "127.0.0.1"
	DefaultListenPort        = 5000
	DefaultPoolSize          = 8
	DefaultPoolWaitIters     = 20
	DefaultPoolWaitInterval  = 500 * time.Millisecond
	DefaultTimeoutIters      = 20
	DefaultOrderTimeoutIters = 8
	DefaultPollInterval      = 250 * time.Millisecond
	DefaultMarketTicks       = 5
	DefaultDialTimeout       = 10 * time.Second
	DefaultWriteTimeout      = 5 * time.Second
	DefaultCommandRate       = 45 // IB allows 50 msg/s per session; stay under
	DefaultCommandBurst      = 10
	DefaultReadHeaderTimeout = 5 * time.Second
	DefaultShutdownTimeout   = 10 * time.Second
	DefaultLogLevel          = "info"
	DefaultLogFormat         = "text"
)

func (c *Config) applyDefaults() {
	// Upstream defaults
	if c.Upstream.Host == "" {
		c.Upstream.Host = DefaultGatewayHost
	}
	if c.Upstream.Port == 0 {
		c.Upstream.Port = DefaultGatewayPort
	}
	if c.Upstream.DialTimeout == 0 {
		c.Upstream.DialTimeout = DefaultDialTimeout
	}
	if c.Upstream.WriteTimeout == 0 {
		c.Upstream.WriteTimeout = DefaultWriteTimeout
	}
	if c.Upstream.CommandRate == 0 {
		c.Upstream.CommandRate = DefaultCommandRate
	}
	if c.Upstream.CommandBurst == 0 {
		c.Upstream.CommandBurst = DefaultCommandBurst
	}

	// HTTP defaults
	if c.HTTP.Host == "" {
		c.HTTP.Host = DefaultListenHost
	}
	if c.HTTP.Port == 0 {
		c.HTTP.Port = DefaultListenPort
	}
	if c.HTTP.ReadHeaderTimeout == 0 {
		c.HTTP.ReadHeaderTimeout = DefaultReadHeaderTimeout
	}
	if c.HTTP.ShutdownTimeout == 0 {
		c.HTTP.ShutdownTimeout = DefaultShutdownTimeout
	}

	// Pool defaults
	if c.Pool.Size == 0 {
		c.Pool.Size = DefaultPoolSize
	}
	if c.Pool.WaitIters == 0 {
		c.Pool.WaitIters = DefaultPoolWaitIters
	}
	if c.Pool.WaitInterval == 0 {
		c.Pool.WaitInterval = DefaultPoolWaitInterval
	}

	// Wait defaults
	if c.Wait.TimeoutIters == 0 {
		c.Wait.TimeoutIters = DefaultTimeoutIters
	}
	if c.Wait.OrderTimeoutIters == 0 {
		c.Wait.OrderTimeoutIters = DefaultOrderTimeoutIters
	}
	if c.Wait.PollInterval == 0 {
		c.Wait.PollInterval = DefaultPollInterval
	}
	if c.Wait.MarketTicks == 0 {
		c.Wait.MarketTicks = DefaultMarketTicks
	}

	// Log defaults
	if c.Log.Level == "" {
		c.Log.Level = DefaultLogLevel
	}
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogFormat
	}
}
