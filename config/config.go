package config

import (
	"fmt"
	"os"
	"time"

	"github.com/avoronov/fitbook/internal/domain"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Kafka    KafkaConfig    `yaml:"kafka"`
	Schedule ScheduleConfig `yaml:"schedule"`
	Worker   WorkerConfig   `yaml:"worker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers          []string `yaml:"brokers"`
	ClassEventsTopic string   `yaml:"class_events_topic"`
	GroupID          string   `yaml:"group_id"`
}

type ScheduleConfig struct {
	Timezone            string `yaml:"timezone"`
	TemplatesPath       string `yaml:"templates_path"`
	TargetWeeksAhead    int    `yaml:"target_weeks_ahead"`
	RetentionDays       int    `yaml:"retention_days"`
	CancelWindowHours   int    `yaml:"cancel_window_hours"`
	ScheduleCacheTTLSec int    `yaml:"schedule_cache_ttl_seconds"`
}

func (s ScheduleConfig) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("load timezone %q: %w", s.Timezone, err)
	}
	return loc, nil
}

func (s ScheduleConfig) CancelWindow() time.Duration {
	return time.Duration(s.CancelWindowHours) * time.Hour
}

func (s ScheduleConfig) Retention() time.Duration {
	return time.Duration(s.RetentionDays) * 24 * time.Hour
}

type WorkerConfig struct {
	MaintenanceIntervalMinutes int `yaml:"maintenance_interval_minutes"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Schedule.TargetWeeksAhead == 0 {
		c.Schedule.TargetWeeksAhead = 6
	}
	if c.Schedule.RetentionDays == 0 {
		c.Schedule.RetentionDays = 7
	}
	if c.Schedule.CancelWindowHours == 0 {
		c.Schedule.CancelWindowHours = 2
	}
	if c.Schedule.ScheduleCacheTTLSec == 0 {
		c.Schedule.ScheduleCacheTTLSec = 60
	}
	if c.Worker.MaintenanceIntervalMinutes == 0 {
		c.Worker.MaintenanceIntervalMinutes = 30
	}
}

type templateEntry struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	Instructor      string   `yaml:"instructor"`
	Weekday         int      `yaml:"weekday"`
	StartTime       string   `yaml:"start_time"`
	DurationMinutes int      `yaml:"duration_minutes"`
	Capacity        int      `yaml:"capacity"`
	Difficulty      string   `yaml:"difficulty"`
	AgeGroup        string   `yaml:"age_group"`
	PriceCents      int64    `yaml:"price_cents"`
	Tags            []string `yaml:"tags"`
	InviteOnly      bool     `yaml:"invite_only"`
}

type templateFile struct {
	Templates []templateEntry `yaml:"templates"`
}

// LoadTemplates reads the injected weekly class list. Entries are validated
// here so a malformed file is rejected at startup rather than at generation
// time.
func LoadTemplates(path string) ([]domain.ClassTemplate, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read templates: %w", err)
	}

	var file templateFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	templates := make([]domain.ClassTemplate, 0, len(file.Templates))
	for _, e := range file.Templates {
		t := domain.ClassTemplate{
			ID:              e.ID,
			Name:            e.Name,
			Instructor:      e.Instructor,
			Weekday:         e.Weekday,
			StartTime:       e.StartTime,
			DurationMinutes: e.DurationMinutes,
			Capacity:        e.Capacity,
			Difficulty:      e.Difficulty,
			AgeGroup:        e.AgeGroup,
			PriceCents:      e.PriceCents,
			Tags:            e.Tags,
			IsInviteOnly:    e.InviteOnly,
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		templates = append(templates, t)
	}
	return templates, nil
}
