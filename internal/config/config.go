package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
)

type (
	// Config holds every externally supplied setting. Values come from the
	// environment, optionally seeded from a .env.dev file by the caller.
	Config struct {
		LogLevel string `env:"LOG_LEVEL" envDefault:"INFO"`
		Port     string `env:"APP_PORT" envDefault:"8080"`
		BaseURL  string `env:"BASE_URL" envDefault:"http://localhost:8080"`

		DB      DBConfig      `envPrefix:"DB_"`
		AWS     AWSConfig     `envPrefix:"AWS_"`
		S3      S3Config      `envPrefix:"S3_"`
		SNS     SNSConfig     `envPrefix:"SNS_"`
		Statsd  StatsdConfig  `envPrefix:"STATSD_"`
		Secrets SecretsConfig `envPrefix:"SECRETS_"`
	}

	DBConfig struct {
		User     string `env:"USER" envDefault:"postgres"`
		Password string `env:"PASSWORD"`
		Host     string `env:"HOST" envDefault:"localhost"`
		Port     string `env:"PORT" envDefault:"5432"`
		Name     string `env:"NAME" envDefault:"webapp"`
		SSLMode  string `env:"SSLMODE" envDefault:"disable"`
	}

	AWSConfig struct {
		Region          string `env:"REGION" envDefault:"us-west-2"`
		AccessKeyID     string `env:"ACCESS_KEY_ID"`
		SecretAccessKey string `env:"SECRET_ACCESS_KEY"`
	}

	S3Config struct {
		Endpoint     string `env:"ENDPOINT"`
		Bucket       string `env:"BUCKET_NAME"`
		UsePathStyle bool   `env:"USE_PATH_STYLE" envDefault:"false"`
	}

	SNSConfig struct {
		TopicARN string `env:"TOPIC_ARN"`
	}

	StatsdConfig struct {
		Address string `env:"ADDRESS" envDefault:"localhost:8125"`
		Prefix  string `env:"PREFIX" envDefault:"webapp"`
		Enabled bool   `env:"ENABLED" envDefault:"true"`
	}

	// SecretsConfig names an AWS Secrets Manager secret holding database
	// credentials. When Name is empty the DB_* variables are used as-is.
	SecretsConfig struct {
		Name string `env:"NAME"`
	}
)

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

// URL renders the connection string for the pgx driver.
func (c DBConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode,
	)
}
