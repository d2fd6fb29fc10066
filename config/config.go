package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/romangod6/sitemapper/internal/audit"
	"github.com/romangod6/sitemapper/internal/sitemap"
)

const EnvPrefix = "SITEMAPPER"

type Config struct {
	Server struct {
		Port int
	}
	Log struct {
		Level string
		Dir   string
	}
	Extractor struct {
		Timeout           time.Duration
		UserAgent         string
		StrictContentType bool  `mapstructure:"strict_content_type"`
		MaxBodyBytes      int64 `mapstructure:"max_body_bytes"`
	}
	Expand struct {
		MaxDepth    int
		Concurrency int
	}
	Auditor struct {
		UserAgent       string
		Timeout         time.Duration
		LinkTimeout     time.Duration `mapstructure:"link_timeout"`
		MaxLinks        int           `mapstructure:"max_links"`
		LinkConcurrency int           `mapstructure:"link_concurrency"`
	}
}

// LoadConfig reads config.yaml from . or ./config, or from path when given,
// and applies SITEMAPPER_* environment overrides. A missing config file is
// only an error when path was set explicitly.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Default values
	v.SetDefault("server.port", 8080)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.dir", "")
	v.SetDefault("extractor.timeout", sitemap.DefaultTimeout)
	v.SetDefault("extractor.useragent", sitemap.DefaultUserAgent)
	v.SetDefault("extractor.strict_content_type", true)
	v.SetDefault("extractor.max_body_bytes", sitemap.DefaultMaxBodyBytes)
	v.SetDefault("expand.maxdepth", sitemap.DefaultExpandDepth)
	v.SetDefault("expand.concurrency", sitemap.DefaultExpandConcurrency)
	v.SetDefault("auditor.useragent", audit.DefaultUserAgent)
	v.SetDefault("auditor.timeout", audit.DefaultTimeout)
	v.SetDefault("auditor.link_timeout", audit.DefaultLinkTimeout)
	v.SetDefault("auditor.max_links", audit.DefaultMaxLinks)
	v.SetDefault("auditor.link_concurrency", audit.DefaultLinkConcurrency)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	return &config, nil
}

func (c *Config) ExtractorOptions() []sitemap.Option {
	return []sitemap.Option{
		sitemap.WithTimeout(c.Extractor.Timeout),
		sitemap.WithUserAgent(c.Extractor.UserAgent),
		sitemap.WithStrictContentType(c.Extractor.StrictContentType),
		sitemap.WithMaxBodyBytes(c.Extractor.MaxBodyBytes),
	}
}

func (c *Config) ExpandOptions() sitemap.ExpandOptions {
	return sitemap.ExpandOptions{
		MaxDepth:    c.Expand.MaxDepth,
		Concurrency: c.Expand.Concurrency,
	}
}

func (c *Config) AuditorConfig() audit.Config {
	return audit.Config{
		UserAgent:       c.Auditor.UserAgent,
		Timeout:         c.Auditor.Timeout,
		LinkTimeout:     c.Auditor.LinkTimeout,
		MaxLinks:        c.Auditor.MaxLinks,
		LinkConcurrency: c.Auditor.LinkConcurrency,
	}
}
