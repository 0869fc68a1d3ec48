package config

import (
	"errors"
	"fmt"
)

// Validate checks that all required fields are set and values are valid.
func (c *Config) Validate() error {
	if c.Upstream.Host == "" {
		return errors.New("upstream.host is required")
	}
	if c.Upstream.Port < 1 || c.Upstream.Port > 65535 {
		return fmt.Errorf("upstream.port must be between 1 and 65535, got %d", c.Upstream.Port)
	}
	if c.Upstream.CommandRate <= 0 {
		return errors.New("upstream.command_rate must be > 0")
	}

	if c.HTTP.Port < 1 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}

	if c.Pool.Size < 2 {
		return errors.New("pool.size must be >= 2 (one reserved order client plus read clients)")
	}
	if c.Pool.WaitIters < 1 {
		return errors.New("pool.wait_iters must be >= 1")
	}

	if c.Wait.TimeoutIters < 1 {
		return errors.New("wait.timeout_iters must be >= 1")
	}
	if c.Wait.OrderTimeoutIters < 1 {
		return errors.New("wait.order_timeout_iters must be >= 1")
	}
	if c.Wait.MarketTicks < 1 {
		return errors.New("wait.market_ticks must be >= 1")
	}

	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level must be one of debug/info/warn/error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("log.format must be text or json, got %q", c.Log.Format)
	}

	return nil
}
