package config

import (
	"errors"
	"net/url"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
)

// Environment variables override values from the config file, so CI jobs
// and one-off shells never need a file on disk.
const (
	EnvAccessKey = "S3CTL_ACCESS_KEY"
	EnvSecretKey = "S3CTL_SECRET_KEY"
	EnvRegion    = "S3CTL_REGION"
	EnvEndpoint  = "S3CTL_ENDPOINT"
	EnvBucket    = "S3CTL_BUCKET"
)

type Config struct {
	AccessKey string `toml:"access_key"`
	SecretKey string `toml:"secret_key"`
	Region    string `toml:"region"`
	Endpoint  string `toml:"endpoint"`
	Bucket    string `toml:"bucket"`
}

func DefaultConfig() *Config {
	return &Config{
		Region: "us-east-1",
	}
}

func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			cfg.ApplyEnv()
			cfg.Normalize()
			if err := cfg.Validate(); err != nil {
				return nil, err
			}
			return cfg, nil
		}
		return nil, err
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, err
	}

	cfg.ApplyEnv()
	cfg.ApplyDefaults()
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) ApplyEnv() {
	if v := os.Getenv(EnvAccessKey); v != "" {
		c.AccessKey = v
	}
	if v := os.Getenv(EnvSecretKey); v != "" {
		c.SecretKey = v
	}
	if v := os.Getenv(EnvRegion); v != "" {
		c.Region = v
	}
	if v := os.Getenv(EnvEndpoint); v != "" {
		c.Endpoint = v
	}
	if v := os.Getenv(EnvBucket); v != "" {
		c.Bucket = v
	}
}

func (c *Config) ApplyDefaults() {
	if c.Region == "" {
		c.Region = "us-east-1"
	}
}

func (c *Config) Normalize() {
	c.AccessKey = strings.TrimSpace(c.AccessKey)
	c.SecretKey = strings.TrimSpace(c.SecretKey)
	c.Region = strings.TrimSpace(c.Region)
	c.Endpoint = strings.TrimSpace(c.Endpoint)
	c.Bucket = strings.TrimSpace(c.Bucket)
}

func (c *Config) Validate() error {
	if strings.Contains(c.Bucket, "/") {
		return errors.New("bucket must not contain '/'")
	}
	if c.Endpoint != "" {
		u, err := url.Parse(c.Endpoint)
		if err != nil || u.Host == "" {
			return errors.New("endpoint must be a valid http(s) URL")
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return errors.New("endpoint must use http or https")
		}
	}
	return nil
}
