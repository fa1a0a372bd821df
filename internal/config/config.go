package config

import (
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"hwdash/internal/models"
)

var (
	instance *Config
	once     sync.Once
)

// Thresholds holds the warning/critical/optimal levels for one metric type
type Thresholds struct {
	Warning    float64 `yaml:"warning"`
	Critical   float64 `yaml:"critical"`
	OptimalMax float64 `yaml:"optimal_max"`
}

// Analysis holds the anomaly-detection and insight parameters. It is fixed
// for the lifetime of the engine; nothing mutates it per call.
type Analysis struct {
	ZScoreThreshold   float64               `yaml:"z_score_threshold"`
	IQRMultiplier     float64               `yaml:"iqr_multiplier"`
	MinDataPoints     int                   `yaml:"min_data_points"`
	RollingWindowSize int                   `yaml:"rolling_window_size"`
	TrendSensitivity  float64               `yaml:"trend_sensitivity"`
	Thresholds        map[string]Thresholds `yaml:"thresholds"`
}

// ThresholdsFor returns the configured thresholds for a metric type
func (a *Analysis) ThresholdsFor(m models.MetricType) (Thresholds, bool) {
	t, ok := a.Thresholds[string(m)]
	return t, ok
}

// Data holds the log directory settings and ingestion caps
type Data struct {
	Directory      string `yaml:"directory"`
	FilePrefix     string `yaml:"file_prefix"`
	MaxFileSizeMB  int    `yaml:"max_file_size_mb"`
	MaxRowsPerFile int    `yaml:"max_rows_per_file"`
	ChunkSize      int    `yaml:"chunk_size"`
}

// Config - can/will add more later
type Config struct {
	Server struct {
		Addr           string   `yaml:"addr"`
		AllowedOrigins []string `yaml:"allowed_origins"`
	} `yaml:"server"`
	Data     Data     `yaml:"data"`
	Analysis Analysis `yaml:"analysis"`
}

func Load(configPath string) (*Config, error) {
	var err error
	once.Do(func() {
		instance = &Config{}

		data, readErr := os.ReadFile(configPath)
		if readErr != nil {
			err = fmt.Errorf("failed to read config file %s: %w", configPath, readErr)
			return
		}

		if parseErr := yaml.Unmarshal(data, instance); parseErr != nil {
			err = fmt.Errorf("failed to parse config: %w", parseErr)
			return
		}

		instance.applyDefaults()

		if validateErr := instance.validate(); validateErr != nil {
			err = validateErr
			return
		}
	})

	return instance, err
}

func Get() *Config {
	if instance == nil {
		panic("config not loaded - call config.Load() first")
	}
	return instance
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Data.FilePrefix == "" {
		c.Data.FilePrefix = "OpenHardwareMonitorLog"
	}
	if c.Data.MaxFileSizeMB == 0 {
		c.Data.MaxFileSizeMB = 50
	}
	if c.Data.MaxRowsPerFile == 0 {
		c.Data.MaxRowsPerFile = 100000
	}
	if c.Data.ChunkSize == 0 {
		c.Data.ChunkSize = 10000
	}

	a := &c.Analysis
	if a.ZScoreThreshold == 0 {
		a.ZScoreThreshold = 2.5
	}
	if a.IQRMultiplier == 0 {
		a.IQRMultiplier = 1.5
	}
	if a.MinDataPoints == 0 {
		a.MinDataPoints = 10
	}
	if a.RollingWindowSize == 0 {
		a.RollingWindowSize = 20
	}
	if a.TrendSensitivity == 0 {
		a.TrendSensitivity = 0.1
	}
	if a.Thresholds == nil {
		a.Thresholds = DefaultThresholds()
	}
}

// DefaultThresholds returns the built-in hardware thresholds
func DefaultThresholds() map[string]Thresholds {
	return map[string]Thresholds{
		string(models.MetricCPUTemp):     {Warning: 80.0, Critical: 90.0, OptimalMax: 70.0},
		string(models.MetricGPUTemp):     {Warning: 85.0, Critical: 95.0, OptimalMax: 75.0},
		string(models.MetricCPUUsage):    {Warning: 90.0, Critical: 95.0, OptimalMax: 80.0},
		string(models.MetricGPUUsage):    {Warning: 95.0, Critical: 98.0, OptimalMax: 85.0},
		string(models.MetricMemoryUsage): {Warning: 85.0, Critical: 95.0, OptimalMax: 75.0},
		string(models.MetricDiskUsage):   {Warning: 85.0, Critical: 95.0, OptimalMax: 80.0},
	}
}

func (c *Config) validate() error {
	if c.Data.Directory == "" {
		return fmt.Errorf("data.directory cannot be empty")
	}
	if c.Data.MaxFileSizeMB < 0 {
		return fmt.Errorf("data.max_file_size_mb cannot be negative")
	}
	if c.Data.MaxRowsPerFile < 0 {
		return fmt.Errorf("data.max_rows_per_file cannot be negative")
	}
	if c.Data.ChunkSize < 0 {
		return fmt.Errorf("data.chunk_size must be positive")
	}
	if c.Analysis.ZScoreThreshold <= 0 {
		return fmt.Errorf("analysis.z_score_threshold must be positive")
	}
	if c.Analysis.IQRMultiplier <= 0 {
		return fmt.Errorf("analysis.iqr_multiplier must be positive")
	}
	if c.Analysis.MinDataPoints < 2 {
		return fmt.Errorf("analysis.min_data_points must be at least 2")
	}
	if c.Analysis.TrendSensitivity <= 0 {
		return fmt.Errorf("analysis.trend_sensitivity must be positive")
	}
	for name, th := range c.Analysis.Thresholds {
		if _, ok := models.ParseMetricType(name); !ok {
			return fmt.Errorf("analysis.thresholds: unknown metric type %q", name)
		}
		if th.Warning > th.Critical {
			return fmt.Errorf("analysis.thresholds.%s: warning cannot exceed critical", name)
		}
	}
	return nil
}
