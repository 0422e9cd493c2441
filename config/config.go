package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
//
//nolint:govet // Field alignment optimization would reduce readability
type Config struct {
	Server        ServerConfig
	CMS           CMSConfig
	Email         EmailConfig
	Sitemap       SitemapConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	SiteName       string
	DistDir        string
	AllowedOrigins []string
}

type CMSConfig struct {
	URL            string
	TimeoutSeconds int
}

type EmailConfig struct {
	APIURL string
	APIKey string
	From   string
	To     []string
}

type SitemapConfig struct {
	OutputPath          string
	FetchTimeoutSeconds int
	PingURLs            []string
	Bucket              BucketConfig
}

// BucketConfig is the optional S3-compatible destination for sitemap.xml
type BucketConfig struct {
	Name            string
	Key             string
	Endpoint        string
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetDefault("PORT", "8080")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "https://www.studio-interiors.com")
	v.SetDefault("SITE_NAME", "Studio Interiors")
	v.SetDefault("DIST_DIR", "dist")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://www.studio-interiors.com,https://studio-interiors.com")
	v.SetDefault("CMS_URL", "https://cms.studio-interiors.com/api")
	v.SetDefault("CMS_TIMEOUT_SECONDS", 10)
	v.SetDefault("EMAIL_API_URL", "https://api.resend.com/emails")
	v.SetDefault("EMAIL_FROM", "Studio Interiors <website@studio-interiors.com>")
	v.SetDefault("EMAIL_TO", "hello@studio-interiors.com")
	v.SetDefault("SITEMAP_OUTPUT_PATH", "dist/sitemap.xml")
	v.SetDefault("SITEMAP_FETCH_TIMEOUT_SECONDS", 30)
	v.SetDefault("SITEMAP_PING_URLS", "https://www.google.com/ping?sitemap=,https://www.bing.com/ping?sitemap=")
	v.SetDefault("SITEMAP_BUCKET_KEY", "sitemap.xml")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("O11Y_SERVICE_NAME", "site-server")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "studio-interiors")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,inuse_space,alloc_space,goroutines")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        strings.TrimRight(v.GetString("BASE_URL"), "/"),
			SiteName:       v.GetString("SITE_NAME"),
			DistDir:        v.GetString("DIST_DIR"),
			AllowedOrigins: splitList(v.GetString("ALLOWED_CORS_ORIGINS")),
		},
		CMS: CMSConfig{
			URL:            strings.TrimRight(v.GetString("CMS_URL"), "/"),
			TimeoutSeconds: v.GetInt("CMS_TIMEOUT_SECONDS"),
		},
		Email: EmailConfig{
			APIURL: v.GetString("EMAIL_API_URL"),
			APIKey: v.GetString("EMAIL_API_KEY"),
			From:   v.GetString("EMAIL_FROM"),
			To:     splitList(v.GetString("EMAIL_TO")),
		},
		Sitemap: SitemapConfig{
			OutputPath:          v.GetString("SITEMAP_OUTPUT_PATH"),
			FetchTimeoutSeconds: v.GetInt("SITEMAP_FETCH_TIMEOUT_SECONDS"),
			PingURLs:            splitList(v.GetString("SITEMAP_PING_URLS")),
			Bucket: BucketConfig{
				Name:            v.GetString("SITEMAP_BUCKET_NAME"),
				Key:             v.GetString("SITEMAP_BUCKET_KEY"),
				Endpoint:        v.GetString("SITEMAP_BUCKET_ENDPOINT"),
				Region:          v.GetString("SITEMAP_BUCKET_REGION"),
				AccessKeyID:     v.GetString("SITEMAP_BUCKET_ACCESS_KEY_ID"),
				SecretAccessKey: v.GetString("SITEMAP_BUCKET_SECRET_ACCESS_KEY"),
			},
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func splitList(value string) []string {
	items := []string{}
	for _, item := range strings.Split(value, ",") {
		item = strings.TrimSpace(item)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// Validate checks if required configuration values are set.
// EMAIL_API_KEY is not required: without it the send-email endpoint answers 500.
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if err := requireAbsoluteURL("BASE_URL", c.Server.BaseURL); err != nil {
		return err
	}
	if err := requireAbsoluteURL("CMS_URL", c.CMS.URL); err != nil {
		return err
	}
	if c.CMS.TimeoutSeconds <= 0 {
		return fmt.Errorf("CMS_TIMEOUT_SECONDS must be positive")
	}
	if c.Server.DistDir == "" {
		return fmt.Errorf("DIST_DIR is required")
	}
	if c.Sitemap.OutputPath == "" {
		return fmt.Errorf("SITEMAP_OUTPUT_PATH is required")
	}
	if c.Sitemap.FetchTimeoutSeconds <= 0 {
		return fmt.Errorf("SITEMAP_FETCH_TIMEOUT_SECONDS must be positive")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}
	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

func requireAbsoluteURL(name, value string) error {
	if value == "" {
		return fmt.Errorf("%s is required", name)
	}
	u, err := url.Parse(value)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute URL", name)
	}
	return nil
}

// CMSTimeout is the fixed per-request timeout for page-time CMS calls
func (c *Config) CMSTimeout() time.Duration {
	return time.Duration(c.CMS.TimeoutSeconds) * time.Second
}

// SitemapFetchTimeout bounds each sitemap fetch attempt
func (c *Config) SitemapFetchTimeout() time.Duration {
	return time.Duration(c.Sitemap.FetchTimeoutSeconds) * time.Second
}

// SitemapURL is the public URL of the generated sitemap
func (c *Config) SitemapURL() string {
	return c.Server.BaseURL + "/sitemap.xml"
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}
