package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// FileName is the configuration file looked up by Load.
const FileName = "hunter.cfg.json"

// MovementConfig holds one movement profile.
type MovementConfig struct {
	Tolerance int
	Timeout   time.Duration
}

// HunterConfig holds the settings of the hunting task. Zones, anchor and
// strategy are kept as strings and parsed by the caller.
type HunterConfig struct {
	Name            string
	TrapItem        string
	Zones           []string
	MaxTraps        int
	Strategy        string
	Orientation     string
	Anchor          string
	Recenter        bool
	MaxDrift        int
	SampleAttempts  int
	MinDelay        time.Duration
	MaxDelay        time.Duration
	BlockedCooldown time.Duration
	StaleAfter      time.Duration
	Depletion       string
	Exact           MovementConfig
	Approximate     MovementConfig
}

// MemoryConfig holds in-memory journal settings
type MemoryConfig struct {
	OutputDir      string `json:"outputDir" mapstructure:"outputDir"`
	CompressOutput bool   `json:"compressOutput" mapstructure:"compressOutput"`
}

// SQLiteConfig holds settings for the sqlite journal
type SQLiteConfig struct {
	// Path of the database file; empty keeps it in memory
	Path string
}

// DBConfig holds Postgres connection settings
type DBConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
}

// InfluxConfig holds InfluxDB connection settings
type InfluxConfig struct {
	Host     string
	Port     string
	Protocol string
	Token    string
	Org      string
	Bucket   string
	// BackupPath receives gzipped line protocol when the server is unreachable
	BackupPath string
}

// StorageConfig holds journal backend settings
type StorageConfig struct {
	Type   string
	Memory MemoryConfig
	SQLite SQLiteConfig
	DB     DBConfig
	Influx InfluxConfig
}

// OTelConfig holds OpenTelemetry settings
type OTelConfig struct {
	Enabled      bool
	ServiceName  string
	BatchTimeout time.Duration
	Endpoint     string
	Insecure     bool
}

// GraylogConfig holds GELF output settings
type GraylogConfig struct {
	Enabled bool
	Address string
}

// SimConfig drives the simulated world used by the CLI.
type SimConfig struct {
	Seed           int64
	Start          string
	Supplies       int
	RestockAmount  int
	TriggerChance  float64
	VanishChance   float64
	ForeignChance  float64
	MoveFailChance float64
	StepTime       time.Duration
}

// Load reads configuration from JSON file and sets default values.
// configDir is the directory containing the config file.
func Load(configDir string) error {
	SetDefaults()

	viper.SetConfigName(FileName)
	viper.AddConfigPath(configDir)
	viper.SetConfigType("json")

	err := viper.ReadInConfig()
	if err != nil {
		return fmt.Errorf("error reading config file: %w", err)
	}

	return nil
}

// SetDefaults registers every default value. Load calls it; callers that run
// without a file call it directly.
func SetDefaults() {
	viper.SetDefault("logLevel", "info")
	viper.SetDefault("logsDir", "./hunterlogs")

	viper.SetDefault("hunter.name", "hunting")
	viper.SetDefault("hunter.trapItem", "box trap")
	viper.SetDefault("hunter.zones", []string{"3200,3200,11,11,0"})
	viper.SetDefault("hunter.maxTraps", 5)
	viper.SetDefault("hunter.strategy", "auto")
	viper.SetDefault("hunter.orientation", "random")
	viper.SetDefault("hunter.anchor", "")
	viper.SetDefault("hunter.recenter", false)
	viper.SetDefault("hunter.maxDrift", 2)
	viper.SetDefault("hunter.sampleAttempts", 10)
	viper.SetDefault("hunter.minDelay", "600ms")
	viper.SetDefault("hunter.maxDelay", "1200ms")
	viper.SetDefault("hunter.blockedCooldown", "30s")
	viper.SetDefault("hunter.staleAfter", "2m")
	viper.SetDefault("hunter.depletion", "continue")
	viper.SetDefault("hunter.exact.tolerance", 0)
	viper.SetDefault("hunter.exact.timeout", "10s")
	viper.SetDefault("hunter.approximate.tolerance", 2)
	viper.SetDefault("hunter.approximate.timeout", "15s")

	viper.SetDefault("storage.type", "memory")
	viper.SetDefault("storage.memory.outputDir", "./journal")
	viper.SetDefault("storage.memory.compressOutput", true)
	viper.SetDefault("storage.sqlite.path", "")

	viper.SetDefault("db.host", "localhost")
	viper.SetDefault("db.port", "5432")
	viper.SetDefault("db.username", "postgres")
	viper.SetDefault("db.password", "postgres")
	viper.SetDefault("db.database", "hunter")

	viper.SetDefault("influx.host", "localhost")
	viper.SetDefault("influx.port", "8086")
	viper.SetDefault("influx.protocol", "http")
	viper.SetDefault("influx.token", "supersecrettoken")
	viper.SetDefault("influx.org", "hunter")
	viper.SetDefault("influx.bucket", "trap_events")
	viper.SetDefault("influx.backupPath", "./hunter_influx_backup.log.gz")

	viper.SetDefault("graylog.enabled", false)
	viper.SetDefault("graylog.address", "localhost:12201")

	viper.SetDefault("otel.enabled", false)
	viper.SetDefault("otel.serviceName", "hunter")
	viper.SetDefault("otel.batchTimeout", "5s")
	viper.SetDefault("otel.endpoint", "")
	viper.SetDefault("otel.insecure", true)

	viper.SetDefault("sim.seed", 1)
	viper.SetDefault("sim.start", "")
	viper.SetDefault("sim.supplies", 20)
	viper.SetDefault("sim.restockAmount", 10)
	viper.SetDefault("sim.triggerChance", 0.15)
	viper.SetDefault("sim.vanishChance", 0.01)
	viper.SetDefault("sim.foreignChance", 0.05)
	viper.SetDefault("sim.moveFailChance", 0.02)
	viper.SetDefault("sim.stepTime", "0s")
}

// GetString returns a string config value.
func GetString(key string) string {
	return viper.GetString(key)
}

// GetInt returns an int config value.
func GetInt(key string) int {
	return viper.GetInt(key)
}

// GetBool returns a bool config value.
func GetBool(key string) bool {
	return viper.GetBool(key)
}

// GetHunterConfig returns the hunting task settings.
func GetHunterConfig() HunterConfig {
	return HunterConfig{
		Name:            viper.GetString("hunter.name"),
		TrapItem:        viper.GetString("hunter.trapItem"),
		Zones:           viper.GetStringSlice("hunter.zones"),
		MaxTraps:        viper.GetInt("hunter.maxTraps"),
		Strategy:        viper.GetString("hunter.strategy"),
		Orientation:     viper.GetString("hunter.orientation"),
		Anchor:          viper.GetString("hunter.anchor"),
		Recenter:        viper.GetBool("hunter.recenter"),
		MaxDrift:        viper.GetInt("hunter.maxDrift"),
		SampleAttempts:  viper.GetInt("hunter.sampleAttempts"),
		MinDelay:        viper.GetDuration("hunter.minDelay"),
		MaxDelay:        viper.GetDuration("hunter.maxDelay"),
		BlockedCooldown: viper.GetDuration("hunter.blockedCooldown"),
		StaleAfter:      viper.GetDuration("hunter.staleAfter"),
		Depletion:       viper.GetString("hunter.depletion"),
		Exact: MovementConfig{
			Tolerance: viper.GetInt("hunter.exact.tolerance"),
			Timeout:   viper.GetDuration("hunter.exact.timeout"),
		},
		Approximate: MovementConfig{
			Tolerance: viper.GetInt("hunter.approximate.tolerance"),
			Timeout:   viper.GetDuration("hunter.approximate.timeout"),
		},
	}
}

// GetStorageConfig returns the journal backend settings.
func GetStorageConfig() StorageConfig {
	return StorageConfig{
		Type: viper.GetString("storage.type"),
		Memory: MemoryConfig{
			OutputDir:      viper.GetString("storage.memory.outputDir"),
			CompressOutput: viper.GetBool("storage.memory.compressOutput"),
		},
		SQLite: SQLiteConfig{
			Path: viper.GetString("storage.sqlite.path"),
		},
		DB: DBConfig{
			Host:     viper.GetString("db.host"),
			Port:     viper.GetString("db.port"),
			Username: viper.GetString("db.username"),
			Password: viper.GetString("db.password"),
			Database: viper.GetString("db.database"),
		},
		Influx: InfluxConfig{
			Host:       viper.GetString("influx.host"),
			Port:       viper.GetString("influx.port"),
			Protocol:   viper.GetString("influx.protocol"),
			Token:      viper.GetString("influx.token"),
			Org:        viper.GetString("influx.org"),
			Bucket:     viper.GetString("influx.bucket"),
			BackupPath: viper.GetString("influx.backupPath"),
		},
	}
}

// GetOTelConfig returns the OpenTelemetry settings.
func GetOTelConfig() OTelConfig {
	return OTelConfig{
		Enabled:      viper.GetBool("otel.enabled"),
		ServiceName:  viper.GetString("otel.serviceName"),
		BatchTimeout: viper.GetDuration("otel.batchTimeout"),
		Endpoint:     viper.GetString("otel.endpoint"),
		Insecure:     viper.GetBool("otel.insecure"),
	}
}

// GetGraylogConfig returns the GELF output settings.
func GetGraylogConfig() GraylogConfig {
	return GraylogConfig{
		Enabled: viper.GetBool("graylog.enabled"),
		Address: viper.GetString("graylog.address"),
	}
}

// GetSimConfig returns the simulated world settings.
func GetSimConfig() SimConfig {
	return SimConfig{
		Seed:           viper.GetInt64("sim.seed"),
		Start:          viper.GetString("sim.start"),
		Supplies:       viper.GetInt("sim.supplies"),
		RestockAmount:  viper.GetInt("sim.restockAmount"),
		TriggerChance:  viper.GetFloat64("sim.triggerChance"),
		VanishChance:   viper.GetFloat64("sim.vanishChance"),
		ForeignChance:  viper.GetFloat64("sim.foreignChance"),
		MoveFailChance: viper.GetFloat64("sim.moveFailChance"),
		StepTime:       viper.GetDuration("sim.stepTime"),
	}
}
