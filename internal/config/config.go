// Package config loads and validates indexer configuration via Viper.
package config

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Notification types accepted by the Indexing API.
const (
	NotificationURLUpdated = "URL_UPDATED"
	NotificationURLDeleted = "URL_DELETED"
)

var validTableName = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// Config captures all tool configuration knobs loaded via Viper.
type Config struct {
	Crawler CrawlerConfig `mapstructure:"crawler"`
	Indexer IndexerConfig `mapstructure:"indexer"`
	Report  ReportConfig  `mapstructure:"report"`
	Metrics MetricsConfig `mapstructure:"metrics"`
	Server  ServerConfig  `mapstructure:"server"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// CrawlerConfig governs sitemap fetching.
type CrawlerConfig struct {
	UserAgent      string  `mapstructure:"user_agent"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	MaxSitemaps    int     `mapstructure:"max_sitemaps"`
	MaxBodyBytes   int     `mapstructure:"max_body_bytes"`
	FetchRPS       float64 `mapstructure:"fetch_rps"`
	FetchBurst     int     `mapstructure:"fetch_burst"`
}

// IndexerConfig controls the submission loop.
type IndexerConfig struct {
	CredentialsFile  string  `mapstructure:"credentials_file"`
	Endpoint         string  `mapstructure:"endpoint"`
	BatchSize        int     `mapstructure:"batch_size"`
	DelaySeconds     float64 `mapstructure:"delay_seconds"`
	NotificationType string  `mapstructure:"notification_type"`
	DryRun           bool    `mapstructure:"dry_run"`
}

// ReportConfig selects where end-of-run reports are archived.
type ReportConfig struct {
	Dir             string `mapstructure:"dir"`
	GCSBucket       string `mapstructure:"gcs_bucket"`
	GCSPrefix       string `mapstructure:"gcs_prefix"`
	PubSubProjectID string `mapstructure:"pubsub_project_id"`
	PubSubTopic     string `mapstructure:"pubsub_topic"`
	DBDSN           string `mapstructure:"db_dsn"`
	DBTable         string `mapstructure:"db_table"`
}

// MetricsConfig controls Prometheus export for one-shot runs.
type MetricsConfig struct {
	Textfile string `mapstructure:"textfile"`
}

// ServerConfig controls the optional status server.
type ServerConfig struct {
	Listen string `mapstructure:"listen"`
}

// LoggingConfig toggles zap development features and file output.
type LoggingConfig struct {
	Development bool   `mapstructure:"development"`
	File        string `mapstructure:"file"`
	MaxSizeMB   int    `mapstructure:"max_size_mb"`
	MaxBackups  int    `mapstructure:"max_backups"`
	MaxAgeDays  int    `mapstructure:"max_age_days"`
}

// Load builds a Config from disk/environment.
func Load(path string) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("INDEXER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("crawler.user_agent", "sitemap-indexer/1.0")
	v.SetDefault("crawler.timeout_seconds", 30)
	v.SetDefault("crawler.max_sitemaps", 0)
	v.SetDefault("crawler.max_body_bytes", 50*1024*1024)
	v.SetDefault("crawler.fetch_rps", 0)
	v.SetDefault("crawler.fetch_burst", 1)
	v.SetDefault("indexer.credentials_file", "service-account.json")
	v.SetDefault("indexer.endpoint", "")
	v.SetDefault("indexer.batch_size", 200)
	v.SetDefault("indexer.delay_seconds", 1.0)
	v.SetDefault("indexer.notification_type", NotificationURLUpdated)
	v.SetDefault("indexer.dry_run", false)
	v.SetDefault("report.dir", "")
	v.SetDefault("report.gcs_bucket", "")
	v.SetDefault("report.gcs_prefix", "index-runs")
	v.SetDefault("report.pubsub_project_id", "")
	v.SetDefault("report.pubsub_topic", "")
	v.SetDefault("report.db_dsn", "")
	v.SetDefault("report.db_table", "index_runs")
	v.SetDefault("metrics.textfile", "")
	v.SetDefault("server.listen", "")
	v.SetDefault("logging.development", true)
	v.SetDefault("logging.file", "")
	v.SetDefault("logging.max_size_mb", 50)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age_days", 14)
}

// Validate enforces required values and reasonable limits.
func (c Config) Validate() error {
	if c.Crawler.TimeoutSeconds <= 0 {
		return fmt.Errorf("crawler.timeout_seconds must be > 0")
	}
	if c.Crawler.MaxSitemaps < 0 {
		return fmt.Errorf("crawler.max_sitemaps must be >= 0")
	}
	if c.Crawler.FetchRPS < 0 {
		return fmt.Errorf("crawler.fetch_rps must be >= 0")
	}
	if c.Indexer.BatchSize < 0 {
		return fmt.Errorf("indexer.batch_size must be >= 0 (0 submits every URL)")
	}
	if c.Indexer.DelaySeconds < 0 {
		return fmt.Errorf("indexer.delay_seconds must be >= 0")
	}
	switch c.Indexer.NotificationType {
	case NotificationURLUpdated, NotificationURLDeleted:
	default:
		return fmt.Errorf("indexer.notification_type must be %s or %s", NotificationURLUpdated, NotificationURLDeleted)
	}
	if !c.Indexer.DryRun && strings.TrimSpace(c.Indexer.CredentialsFile) == "" {
		return fmt.Errorf("indexer.credentials_file must be set unless dry_run is enabled")
	}
	if c.Report.PubSubTopic != "" && c.Report.PubSubProjectID == "" {
		return fmt.Errorf("report.pubsub_project_id must be set when report.pubsub_topic is set")
	}
	if c.Report.DBDSN != "" && !validTableName.MatchString(c.Report.DBTable) {
		return fmt.Errorf("report.db_table %q is not a valid table name", c.Report.DBTable)
	}
	return nil
}

// FetchTimeout converts the crawler timeout into a duration.
func (c Config) FetchTimeout() time.Duration {
	return time.Duration(c.Crawler.TimeoutSeconds) * time.Second
}

// Delay converts the fractional inter-submission delay into a duration.
func (c Config) Delay() time.Duration {
	return time.Duration(c.Indexer.DelaySeconds * float64(time.Second))
}
