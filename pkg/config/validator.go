package config

import (
	"errors"
	"fmt"
	"time"
)

func (c *Config) Validate() error {
	var errs []error

	// App validation
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}

	// Database validation
	if c.Database.Enabled {
		switch c.Database.Driver {
		case "postgres":
			if c.Database.Host == "" {
				errs = append(errs, errors.New("database.host is required"))
			}
			if c.Database.Port <= 0 || c.Database.Port > 65535 {
				errs = append(errs, errors.New("database.port must be between 1 and 65535"))
			}
			if c.Database.Name == "" {
				errs = append(errs, errors.New("database.name is required"))
			}
		case "sqlite":
			if c.Database.Path == "" {
				errs = append(errs, errors.New("database.path is required for sqlite"))
			}
		default:
			errs = append(errs, errors.New("database.driver must be one of: postgres, sqlite"))
		}
		if c.Database.MaxConnections <= 0 {
			errs = append(errs, errors.New("database.max_connections must be positive"))
		}
	}

	// Collector validation
	validCollectors := map[string]bool{"http": true, "mock": true}
	if !validCollectors[c.Collector.Type] {
		errs = append(errs, errors.New("collector.type must be one of: http, mock"))
	}
	if c.Collector.Type == "http" && c.Collector.Endpoint == "" {
		errs = append(errs, errors.New("collector.endpoint is required for http collector"))
	}
	if len(c.Collector.Spots) == 0 {
		errs = append(errs, errors.New("collector.spots must list at least one spot"))
	}
	if c.Collector.Interval <= 0 {
		errs = append(errs, errors.New("collector.interval must be positive"))
	}
	if c.Collector.Timeout <= 0 {
		errs = append(errs, errors.New("collector.timeout must be positive"))
	}
	if c.Collector.Timeout >= c.Collector.Interval {
		errs = append(errs, errors.New("collector.timeout must be less than collector.interval"))
	}
	if c.Collector.Concurrency <= 0 {
		errs = append(errs, errors.New("collector.concurrency must be positive"))
	}

	// MQTT validation
	if c.MQTT.Enabled {
		if c.MQTT.Broker == "" {
			errs = append(errs, errors.New("mqtt.broker is required"))
		}
		if c.MQTT.Topic == "" {
			errs = append(errs, errors.New("mqtt.topic is required"))
		}
		if c.MQTT.QoS > 2 {
			errs = append(errs, errors.New("mqtt.qos must be 0, 1 or 2"))
		}
	}

	// Metrics validation
	if c.Metrics.Window < time.Minute {
		errs = append(errs, errors.New("metrics.window must be at least 1m"))
	}
	if c.Metrics.TopN <= 0 {
		errs = append(errs, errors.New("metrics.top_n must be positive"))
	}
	if _, err := c.Metrics.Location(); err != nil {
		errs = append(errs, fmt.Errorf("metrics.timezone is invalid: %v", err))
	}

	// Cache validation
	validCaches := map[string]bool{"memory": true, "redis": true}
	if !validCaches[c.Cache.Type] {
		errs = append(errs, errors.New("cache.type must be one of: memory, redis"))
	}
	if c.Cache.Type == "redis" && c.Cache.RedisAddr == "" {
		errs = append(errs, errors.New("cache.redis_addr is required for redis cache"))
	}

	// API validation
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.App.Mode == "production" && c.API.JWTSecret == "change-me-in-production" {
		errs = append(errs, errors.New("api.jwt_secret must be changed in production"))
	}

	// Events validation
	if c.Events.Kafka.Enabled {
		if len(c.Events.Kafka.Brokers) == 0 {
			errs = append(errs, errors.New("events.kafka.brokers is required"))
		}
		if c.Events.Kafka.Topic == "" {
			errs = append(errs, errors.New("events.kafka.topic is required"))
		}
	}

	// Alerts validation
	if c.Alerts.Enabled {
		if c.Alerts.NearlyFullPercent <= 0 || c.Alerts.NearlyFullPercent > 100 {
			errs = append(errs, errors.New("alerts.nearly_full_percent must be in (0, 100]"))
		}
		if c.Alerts.LongStay < 0 || c.Alerts.SustainedFor < 0 {
			errs = append(errs, errors.New("alerts durations must not be negative"))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed: %v", errs)
	}

	return nil
}
