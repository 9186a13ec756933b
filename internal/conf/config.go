// config.go: settings struct and loading for the scan backend. Settings are
// read with viper from config.yaml with environment variable overrides.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/spf13/viper"
)

//go:embed config.yaml
var configFiles embed.FS

// RotationType defines different types of log rotations.
type RotationType string

const (
	RotationDaily  RotationType = "daily"
	RotationWeekly RotationType = "weekly"
	RotationSize   RotationType = "size"
)

// LogConfig defines the configuration for a log file
type LogConfig struct {
	Enabled  bool         // true to enable this log
	Path     string       // path to the log file
	Rotation RotationType // type of log rotation
	MaxSize  int64        // max size in bytes for RotationSize
}

// ModelConfig contains settings for the counterfeit classifier model.
type ModelConfig struct {
	Path      string        // path to the .tflite model file
	LatentDim int           // size of the auxiliary pseudo-negative input vector
	Sigma     float64       // standard deviation of the auxiliary noise
	InputSize int           // square input resolution expected by the model
	Contrast  float64       // contrast factor applied during preprocessing
	Threshold float64       // authenticity threshold, score >= threshold is authentic
	Threads   int           // number of CPU threads for inference, 0 for auto
	Timeout   time.Duration // upper bound for a single inference call
}

// UploadConfig contains settings for uploaded image handling.
type UploadConfig struct {
	Path         string   // directory for uploaded images
	MaxSize      int64    // maximum upload size in bytes
	AllowedTypes []string // allowed file extensions, without dot
	KeepImages   bool     // true to retain uploaded images after scoring
}

// NotifyConfig contains settings for the counterfeit alert sink.
type NotifyConfig struct {
	Enabled   bool     // true to enable counterfeit alerts
	URLs      []string // shoutrrr service URLs
	Threshold float64  // alert only when the score is at or below this, 0 alerts on every counterfeit
}

// Security handles authentication settings for the admin view.
type Security struct {
	AdminUsername     string        // username for the admin map view
	AdminPasswordHash string        // bcrypt hash of the admin password
	SessionSecret     string        // secret for session cookies, generated if empty
	SessionDuration   time.Duration // how long an admin session stays valid
}

// Settings contains all configuration options for the scan backend.
type Settings struct {
	Debug bool // true to enable debug mode

	// Runtime values, not stored in config file
	Version   string `yaml:"-"` // version from build
	BuildDate string `yaml:"-"` // build date from build

	Main struct {
		Name string    // name of this node, reported in logs
		Log  LogConfig // application log configuration
	}

	Model ModelConfig // classifier configuration

	Upload UploadConfig // upload handling configuration

	WebServer struct {
		Debug       bool      // true to enable debug mode
		Port        string    // port for web server
		CORSOrigins []string  // allowed CORS origins
		RateLimit   float64   // allowed /predict requests per minute
		Log         LogConfig // web access log configuration
	}

	Security Security // admin authentication configuration

	Output struct {
		SQLite struct {
			Enabled bool   // true to enable sqlite output
			Path    string // path to sqlite database
		}

		MySQL struct {
			Enabled  bool   // true to enable mysql output
			Username string // username for mysql database
			Password string // password for mysql database
			Database string // database name for mysql database
			Host     string // host for mysql database
			Port     string // port for mysql database
		}
	}

	Notify NotifyConfig // counterfeit alert configuration
}

// settingsInstance is the current settings instance
var (
	settingsInstance *Settings
	settingsMutex    sync.RWMutex
)

// Load reads the configuration file and environment variables into Settings.
func Load() (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	settings := &Settings{}

	if err := initViper(); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if settings.Security.SessionSecret == "" {
		settings.Security.SessionSecret = GenerateRandomSecret()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	settingsInstance = settings
	return settingsInstance, nil
}

// initViper initializes viper with default values and reads the configuration file.
func initViper() error {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}

	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	viper.SetEnvPrefix("counterfront")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	setDefaultConfig()

	err = viper.ReadInConfig()
	if err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			// Config file not found, create config with defaults
			return createDefaultConfig()
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// createDefaultConfig creates a default config file and writes it to the default config path
func createDefaultConfig() error {
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	configPath := filepath.Join(configPaths[0], "config.yaml")
	defaultConfig := getDefaultConfig()

	if err := os.MkdirAll(filepath.Dir(configPath), 0o755); err != nil {
		return fmt.Errorf("error creating directories for config file: %w", err)
	}

	if err := os.WriteFile(configPath, []byte(defaultConfig), 0o644); err != nil {
		return fmt.Errorf("error writing default config file: %w", err)
	}

	fmt.Println("Created default config file at:", configPath)
	return viper.ReadInConfig()
}

// getDefaultConfig reads the default configuration from the embedded config.yaml file.
func getDefaultConfig() string {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		log.Fatalf("Error reading config file: %v", err)
	}
	return string(data)
}

// GetDefaultConfigPaths returns the directories searched for config.yaml,
// in priority order: working directory first, then the user config dir.
func GetDefaultConfigPaths() ([]string, error) {
	paths := []string{"."}

	configDir, err := os.UserConfigDir()
	if err == nil {
		paths = append(paths, filepath.Join(configDir, "counterfront"))
	}

	homeDir, err := os.UserHomeDir()
	if err == nil {
		paths = append(paths, filepath.Join(homeDir, ".counterfront"))
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("no config paths available")
	}
	return paths, nil
}

// Setting returns the current settings instance, loading it if needed.
func Setting() *Settings {
	settingsMutex.RLock()
	instance := settingsInstance
	settingsMutex.RUnlock()

	if instance != nil {
		return instance
	}

	instance, err := Load()
	if err != nil {
		log.Fatalf("Error loading settings: %v", err)
	}
	return instance
}
