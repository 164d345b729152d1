package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:                8080,
			ReadTimeoutSeconds:  10,
			WriteTimeoutSeconds: 10,
		},
		Transport: TransportConfig{
			Mode: "loopback",
		},
	}
}

func TestValidateStatic(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(cfg *Config)
		wantErr bool
	}{
		{
			name:    "minimal valid config",
			mutate:  func(cfg *Config) {},
			wantErr: false,
		},
		{
			name:    "zero port",
			mutate:  func(cfg *Config) { cfg.Server.Port = 0 },
			wantErr: true,
		},
		{
			name:    "port out of range",
			mutate:  func(cfg *Config) { cfg.Server.Port = 70000 },
			wantErr: true,
		},
		{
			name:    "missing read timeout",
			mutate:  func(cfg *Config) { cfg.Server.ReadTimeoutSeconds = 0 },
			wantErr: true,
		},
		{
			name:    "unknown transport mode",
			mutate:  func(cfg *Config) { cfg.Transport.Mode = "smpp" },
			wantErr: true,
		},
		{
			name:    "empty transport mode defaults to loopback",
			mutate:  func(cfg *Config) { cfg.Transport.Mode = "" },
			wantErr: false,
		},
		{
			name:    "negative transport rate limit",
			mutate:  func(cfg *Config) { cfg.Transport.RateLimitRPS = -1 },
			wantErr: true,
		},
		{
			name: "retry max interval below initial",
			mutate: func(cfg *Config) {
				cfg.Transport.Retry.InitialInterval = 10 * time.Second
				cfg.Transport.Retry.MaxInterval = time.Second
			},
			wantErr: true,
		},
		{
			name:    "loopback failure rate above one",
			mutate:  func(cfg *Config) { cfg.Transport.Loopback.FailureRate = 1.5 },
			wantErr: true,
		},
		{
			name:    "sweep enabled without interval",
			mutate:  func(cfg *Config) { cfg.Dispatch.Sweep.Enabled = true; cfg.Dispatch.Sweep.TTL = time.Minute },
			wantErr: true,
		},
		{
			name: "sweep enabled fully configured",
			mutate: func(cfg *Config) {
				cfg.Dispatch.Sweep = SweepConfig{Enabled: true, Interval: 30 * time.Second, TTL: 5 * time.Minute}
			},
			wantErr: false,
		},
		{
			name:    "unknown fragment store",
			mutate:  func(cfg *Config) { cfg.Reassembly.Store = "mongodb" },
			wantErr: true,
		},
		{
			name:    "redis fragment store",
			mutate:  func(cfg *Config) { cfg.Reassembly.Store = "redis" },
			wantErr: false,
		},
		{
			name:    "postgres without user",
			mutate:  func(cfg *Config) { cfg.Database.Postgres = PostgresConfig{Host: "db", Port: 5432, DBName: "sms"} },
			wantErr: true,
		},
		{
			name: "postgres fully configured",
			mutate: func(cfg *Config) {
				cfg.Database.Postgres = PostgresConfig{Host: "db", Port: 5432, User: "sms", DBName: "sms", SSLMode: "disable"}
			},
			wantErr: false,
		},
		{
			name:    "postgres invalid sslmode",
			mutate:  func(cfg *Config) { cfg.Database.Postgres = PostgresConfig{Host: "db", Port: 5432, User: "sms", DBName: "sms", SSLMode: "sometimes"} },
			wantErr: true,
		},
		{
			name:    "redis without host",
			mutate:  func(cfg *Config) { cfg.Database.Redis = RedisConfig{Port: 6379} },
			wantErr: true,
		},
		{
			name:    "kafka brokers without topics",
			mutate:  func(cfg *Config) { cfg.Broker.Kafka.Brokers = []string{"kafka:9092"} },
			wantErr: true,
		},
		{
			name: "kafka brokers with outcome topic",
			mutate: func(cfg *Config) {
				cfg.Broker.Kafka = KafkaConfig{Brokers: []string{"kafka:9092"}, OutcomeTopic: "sms_outcomes"}
			},
			wantErr: false,
		},
		{
			name:    "kafka empty broker address",
			mutate:  func(cfg *Config) { cfg.Broker.Kafka = KafkaConfig{Brokers: []string{""}, OutcomeTopic: "t"} },
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := ValidateStatic(cfg)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
