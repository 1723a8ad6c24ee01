package config

import (
	"fmt"

	"github.com/Netflix/go-env"
)

type Config struct {
	DatabaseDSN string `env:"DATABASE_DSN,required=true"`
	RedisURL    string `env:"REDIS_URL,required=true"`
	RabbitMQURL string `env:"RABBITMQ_URL,required=true"`

	EmailAPIURL string `env:"EMAIL_API_URL,required=true"`
	EmailAPIKey string `env:"EMAIL_API_KEY,required=true"`
	EmailFrom   string `env:"EMAIL_FROM,default=SARGAS.AI <noreply@sargas.ai>"`

	AnalyticsAPIURL     string `env:"ANALYTICS_API_URL,required=true"`
	AnalyticsToken      string `env:"ANALYTICS_TOKEN,required=true"`
	AnalyticsPropertyID string `env:"ANALYTICS_PROPERTY_ID,required=true"`

	BroadcastDelayMillis int `env:"BROADCAST_DELAY_MS,default=2000"`
	BroadcastErrorCap    int `env:"BROADCAST_ERROR_CAP,default=10"`
	RateLimitPerSec      int `env:"RATE_LIMIT_PER_SEC,default=10"`
	WorkerConcurrency    int `env:"WORKER_CONCURRENCY,default=4"`

	OverviewCacheTTLMin   int `env:"OVERVIEW_CACHE_TTL_MIN,default=30"`
	TimeSeriesCacheTTLMin int `env:"TIMESERIES_CACHE_TTL_MIN,default=10"`
	TimeSeriesWindowDays  int `env:"TIMESERIES_WINDOW_DAYS,default=7"`

	APIPort     int    `env:"API_PORT,default=8080"`
	LogLevel    string `env:"LOG_LEVEL,default=info"`
	CORSOrigins string `env:"CORS_ORIGINS,default=*"`
}

func Load() (*Config, error) {
	var cfg Config
	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}
