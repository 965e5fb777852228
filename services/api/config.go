package api

import (
	"context"
	"time"

	"github.com/sethvargo/go-envconfig"
)

// Config holds runtime configuration for the mentorship billing service.
type Config struct {
	Addr             string        `env:"ADDR,default=:8080"`
	DBDSN            string        `env:"DB_DSN,required"`
	NATSURL          string        `env:"NATS_URL"`
	OTLPEndpoint     string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	AllowedOrigins   []string      `env:"CORS_ALLOWED_ORIGINS,default=*"`
	RoomAPIBase      string        `env:"ROOM_API_BASE"`
	RoomAPIKey       string        `env:"ROOM_API_KEY"`
	BillingInterval  time.Duration `env:"BILLING_INTERVAL,default=1h"`
	StatementsBucket string        `env:"STATEMENTS_BUCKET"`
}

// Load returns a Config populated from environment variables.
func Load(ctx context.Context) (Config, error) {
	var cfg Config
	if err := envconfig.Process(ctx, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
