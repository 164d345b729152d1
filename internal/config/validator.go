package config

import (
	"fmt"
	"strings"
)

type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error for field '%s': %s", e.Field, e.Message)
}

func ValidateStatic(cfg *Config) error {
	var errors []error

	if err := validateServer(cfg.Server); err != nil {
		errors = append(errors, err)
	}

	if err := validateTransport(cfg.Transport); err != nil {
		errors = append(errors, err)
	}

	if err := validateDispatch(cfg.Dispatch); err != nil {
		errors = append(errors, err)
	}

	if err := validateReassembly(cfg.Reassembly); err != nil {
		errors = append(errors, err)
	}

	if err := validateDatabase(cfg.Database); err != nil {
		errors = append(errors, err)
	}

	if err := validateBroker(cfg.Broker); err != nil {
		errors = append(errors, err)
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed: %v", errors)
	}

	return nil
}

func validateServer(cfg ServerConfig) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "server.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.ReadTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.read_timeout_seconds",
			Message: "read timeout must be positive",
		}
	}

	if cfg.WriteTimeoutSeconds <= 0 {
		return &ValidationError{
			Field:   "server.write_timeout_seconds",
			Message: "write timeout must be positive",
		}
	}

	return nil
}

func validateTransport(cfg TransportConfig) error {
	switch cfg.Mode {
	case "", "loopback":
	default:
		return &ValidationError{
			Field:   "transport.mode",
			Message: fmt.Sprintf("unknown transport mode: %s (supported: loopback)", cfg.Mode),
		}
	}

	if cfg.RateLimitRPS < 0 {
		return &ValidationError{
			Field:   "transport.rate_limit_rps",
			Message: "rate limit must be non-negative",
		}
	}

	if cfg.Retry.MaxAttempts < 0 {
		return &ValidationError{
			Field:   "transport.retry.max_attempts",
			Message: "max_attempts must be non-negative",
		}
	}

	if cfg.Retry.MaxInterval > 0 && cfg.Retry.InitialInterval > 0 && cfg.Retry.MaxInterval < cfg.Retry.InitialInterval {
		return &ValidationError{
			Field:   "transport.retry.max_interval",
			Message: "max_interval must be greater than or equal to initial_interval",
		}
	}

	for field, rate := range map[string]float64{
		"transport.loopback.failure_rate":   cfg.Loopback.FailureRate,
		"transport.loopback.duplicate_rate": cfg.Loopback.DuplicateRate,
		"transport.loopback.drop_rate":      cfg.Loopback.DropRate,
	} {
		if rate < 0 || rate > 1 {
			return &ValidationError{
				Field:   field,
				Message: fmt.Sprintf("rate must be between 0 and 1, got %g", rate),
			}
		}
	}

	return nil
}

func validateDispatch(cfg DispatchConfig) error {
	if !cfg.Sweep.Enabled {
		return nil
	}

	if cfg.Sweep.Interval <= 0 {
		return &ValidationError{
			Field:   "dispatch.sweep.interval",
			Message: "sweep interval must be positive when sweeping is enabled",
		}
	}

	if cfg.Sweep.TTL <= 0 {
		return &ValidationError{
			Field:   "dispatch.sweep.ttl",
			Message: "sweep TTL must be positive when sweeping is enabled",
		}
	}

	return nil
}

func validateReassembly(cfg ReassemblyConfig) error {
	switch cfg.Store {
	case "", "memory", "redis":
	default:
		return &ValidationError{
			Field:   "reassembly.store",
			Message: fmt.Sprintf("unknown fragment store: %s (supported: memory, redis)", cfg.Store),
		}
	}

	if cfg.TTLSeconds < 0 {
		return &ValidationError{
			Field:   "reassembly.ttl_seconds",
			Message: "TTL must be non-negative",
		}
	}

	return nil
}

func validateDatabase(cfg DatabaseConfig) error {
	if cfg.Postgres.Host != "" || cfg.Postgres.Port > 0 {
		if err := validatePostgres(cfg.Postgres); err != nil {
			return err
		}
	}

	if cfg.Redis.Host != "" || cfg.Redis.Port > 0 {
		if err := validateRedis(cfg.Redis); err != nil {
			return err
		}
	}

	return nil
}

func validatePostgres(cfg PostgresConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "database.postgres.host",
			Message: "PostgreSQL host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.postgres.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	if cfg.User == "" {
		return &ValidationError{
			Field:   "database.postgres.user",
			Message: "PostgreSQL user is required",
		}
	}

	if cfg.DBName == "" {
		return &ValidationError{
			Field:   "database.postgres.dbname",
			Message: "PostgreSQL database name is required",
		}
	}

	validSSLModes := map[string]bool{
		"disable": true, "allow": true, "prefer": true,
		"require": true, "verify-ca": true, "verify-full": true,
	}
	if cfg.SSLMode != "" && !validSSLModes[strings.ToLower(cfg.SSLMode)] {
		return &ValidationError{
			Field:   "database.postgres.sslmode",
			Message: fmt.Sprintf("invalid SSL mode: %s (valid: disable, allow, prefer, require, verify-ca, verify-full)", cfg.SSLMode),
		}
	}

	return nil
}

func validateRedis(cfg RedisConfig) error {
	if cfg.Host == "" {
		return &ValidationError{
			Field:   "database.redis.host",
			Message: "Redis host is required",
		}
	}

	if cfg.Port < 1 || cfg.Port > 65535 {
		return &ValidationError{
			Field:   "database.redis.port",
			Message: fmt.Sprintf("port must be between 1 and 65535, got %d", cfg.Port),
		}
	}

	return nil
}

func validateBroker(cfg BrokerConfig) error {
	if len(cfg.Kafka.Brokers) == 0 {
		return nil // event publishing is optional
	}

	for i, broker := range cfg.Kafka.Brokers {
		if broker == "" {
			return &ValidationError{
				Field:   fmt.Sprintf("broker.kafka.brokers[%d]", i),
				Message: "broker address cannot be empty",
			}
		}
	}

	if cfg.Kafka.OutcomeTopic == "" && cfg.Kafka.InboundTopic == "" {
		return &ValidationError{
			Field:   "broker.kafka",
			Message: "at least one of outcome_topic or inbound_topic is required when brokers are set",
		}
	}

	return nil
}
