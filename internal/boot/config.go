package boot

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Env     string `env:"ENV,default=dev"`
	DataDir string `env:"DATA_DIR,default=."`
	Server  struct {
		Port        string `env:"PORT,default=8080"`
		MetricsPort string `env:"METRICS_PORT,default=9091"`
	}
	Platform struct {
		APIKey        string `env:"X_API_KEY,required"`
		APISecret     string `env:"X_API_SECRET,required"`
		AccessToken   string `env:"X_ACCESS_TOKEN,required"`
		AccessSecret  string `env:"X_ACCESS_TOKEN_SECRET,required"`
		PacingSeconds int    `env:"PACING_SECONDS,default=2"`
	}
	DryRun            bool   `env:"DRY_RUN,default=false"`
	EnableTranslation bool   `env:"ENABLE_CHINESE_POSTS,default=true"`
	NewsAPIKey        string `env:"NEWS_API_KEY"`
	GroqAPIKey        string `env:"GROQ_API_KEY"`
	Schedule          struct {
		PrimaryTimezone     string `env:"PRIMARY_TZ,default=America/Chicago"`
		SecondaryTimezone   string `env:"SECONDARY_TZ,default=Asia/Shanghai"`
		PrimaryMaxReplies   int    `env:"PRIMARY_MAX_REPLIES,default=2"`
		SecondaryMaxReplies int    `env:"SECONDARY_MAX_REPLIES,default=1"`
	}
}

func Load() (*Config, error) {
	config := &Config{}
	if err := envconfig.Process(context.Background(), config); err != nil {
		return nil, fmt.Errorf("parsing env vars: %w", err)
	}
	return config, nil
}

func (c *Config) IsDevelopment() bool {
	return c.Env == "dev"
}

func (c *Config) PacingInterval() time.Duration {
	return time.Duration(c.Platform.PacingSeconds) * time.Second
}
