package config

import "fmt"

type ServerConfig struct {
	Host           string   `mapstructure:"host"`
	Port           int      `mapstructure:"port"`
	Mode           string   `mapstructure:"mode"`
	Timezone       string   `mapstructure:"timezone"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

func (s *ServerConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

type DatabaseConfig struct {
	Driver          string `mapstructure:"driver"`
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Username        string `mapstructure:"username"`
	Password        string `mapstructure:"password"`
	Database        string `mapstructure:"database"`
	Path            string `mapstructure:"path"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
		d.Username, d.Password, d.Host, d.Port, d.Database)
}

type LoggerConfig struct {
	Level      string `mapstructure:"level"`
	Format     string `mapstructure:"format"`
	OutputPath string `mapstructure:"output_path"`
}

type RedisConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	// UserNameTTLMinutes bounds how long resolved assignee names are cached.
	UserNameTTLMinutes int `mapstructure:"user_name_ttl_minutes"`
}

func (r *RedisConfig) GetAddr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

type EmailConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	SMTPHost         string   `mapstructure:"smtp_host"`
	SMTPPort         int      `mapstructure:"smtp_port"`
	SMTPUser         string   `mapstructure:"smtp_user"`
	SMTPPassword     string   `mapstructure:"smtp_password"`
	FromAddress      string   `mapstructure:"from_address"`
	FromName         string   `mapstructure:"from_name"`
	ReportRecipients []string `mapstructure:"report_recipients"`
}

// GenerationConfig controls the work-order generator itself.
type GenerationConfig struct {
	// LocationFallback attaches the first location record when an equipment's
	// hierarchy is broken instead of failing the occurrence.
	LocationFallback bool `mapstructure:"location_fallback"`
	// RunLogStore selects where run logs are kept: "database" or "redis".
	RunLogStore   string `mapstructure:"run_log_store"`
	RunLogMaxSize int    `mapstructure:"run_log_max_size"`
}

type SchedulerConfig struct {
	Enabled             bool     `mapstructure:"enabled"`
	PollIntervalSeconds int      `mapstructure:"poll_interval_seconds"`
	GenerationTimes     []string `mapstructure:"generation_times"`
	ProbeTimes          []string `mapstructure:"probe_times"`
	GuardRailSpec       string   `mapstructure:"guard_rail_spec"`
	BacklogThreshold    int      `mapstructure:"backlog_threshold"`
	MinIntervalMinutes  int      `mapstructure:"min_interval_minutes"`
	RunTimeoutMinutes   int      `mapstructure:"run_timeout_minutes"`
	HistorySize         int      `mapstructure:"history_size"`
}

type RateLimitConfig struct {
	ManualTriggersPerMinute int `mapstructure:"manual_triggers_per_minute"`
	Burst                   int `mapstructure:"burst"`
}
