package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	App         AppConfig             `mapstructure:"app"`
	Backup      BackupConfig          `mapstructure:"backup"`
	Destination DestinationConfig     `mapstructure:"destination"`
	Filesystems map[string]DiskConfig `mapstructure:"filesystems"`
}

type AppConfig struct {
	Name     string `mapstructure:"name"`
	LogLevel string `mapstructure:"log_level"`
	LogFile  string `mapstructure:"log_file"`
}

type BackupConfig struct {
	TempDir       string           `mapstructure:"temp_dir"`
	Databases     []string         `mapstructure:"databases"`
	Files         []string         `mapstructure:"files"`
	RetentionDays int              `mapstructure:"retention_days"`
	Connection    ConnectionConfig `mapstructure:"connection"`
}

// ConnectionConfig describes the server every configured database is dumped from.
type ConnectionConfig struct {
	Driver   string `mapstructure:"driver"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`

	// PostgreSQL specific
	SSLMode string `mapstructure:"ssl_mode"`

	// MongoDB specific
	AuthDatabase string `mapstructure:"auth_database"`

	// SQLite: directory holding <database>.db files
	Path string `mapstructure:"path"`
}

type DestinationConfig struct {
	// Filesystem accepts a single name or a list; viper lifts a scalar into a one-element slice.
	Filesystem []string `mapstructure:"filesystem"`
	Path       string   `mapstructure:"path"`
	Prefix     string   `mapstructure:"prefix"`
	Suffix     string   `mapstructure:"suffix"`
}

type DiskConfig struct {
	Driver     string `mapstructure:"driver"`
	MarkerFile *bool  `mapstructure:"marker_file"`

	// Local
	Root string `mapstructure:"root"`

	// AWS S3, GCS, Azure
	Region    string `mapstructure:"region"`
	Bucket    string `mapstructure:"bucket"`
	AccessKey string `mapstructure:"access_key"`
	SecretKey string `mapstructure:"secret_key"`
	Endpoint  string `mapstructure:"endpoint"`
	Prefix    string `mapstructure:"prefix"`

	AccountName string `mapstructure:"account_name"`
	AccountKey  string `mapstructure:"account_key"`
	Container   string `mapstructure:"container"`

	// Google Drive and GCS
	CredentialsFile  string `mapstructure:"credentials_file"`
	FolderID         string `mapstructure:"folder_id"`
	ClientSecretFile string `mapstructure:"client_secret_file"`
	RefreshToken     string `mapstructure:"refresh_token"`

	// Telegram
	BotToken string `mapstructure:"bot_token"`
	ChatID   string `mapstructure:"chat_id"`
}

// SupportsMarkerFile reports whether an ignore marker is written next to
// backups on this disk. Local disks default to true.
func (d DiskConfig) SupportsMarkerFile() bool {
	if d.MarkerFile != nil {
		return *d.MarkerFile
	}
	return d.Driver == "local"
}

func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetEnvPrefix("snapvault")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	return fromViper(v)
}

func SetDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "snapvault")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("backup.temp_dir", filepath.Join(os.TempDir(), "snapvault"))
	v.SetDefault("backup.retention_days", 0)
	v.SetDefault("backup.connection.driver", "mysql")
	v.SetDefault("backup.connection.host", "127.0.0.1")
	v.SetDefault("destination.filesystem", []string{"local"})
	v.SetDefault("filesystems.local.driver", "local")
	v.SetDefault("filesystems.local.root", "storage")
}

func fromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) Validate() error {
	if c.Backup.TempDir == "" {
		return fmt.Errorf("backup.temp_dir is required")
	}

	for i, name := range c.Backup.Databases {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("backup.databases[%d]: name is required", i)
		}
	}

	if len(c.Destination.Filesystem) == 0 {
		return fmt.Errorf("destination.filesystem: at least one destination is required")
	}

	for _, name := range c.Destination.Filesystem {
		disk, ok := c.Filesystems[strings.ToLower(name)]
		if !ok {
			return fmt.Errorf("destination.filesystem: unknown filesystem %q", name)
		}
		if disk.Driver == "" {
			return fmt.Errorf("filesystems.%s: driver is required", name)
		}
	}

	if c.Backup.RetentionDays < 0 {
		return fmt.Errorf("backup.retention_days must not be negative")
	}

	return nil
}

// GetDestinations returns the configured destination disks in configuration order.
func (c *Config) GetDestinations() []NamedDisk {
	disks := make([]NamedDisk, 0, len(c.Destination.Filesystem))
	for _, name := range c.Destination.Filesystem {
		disks = append(disks, NamedDisk{Name: name, DiskConfig: c.Filesystems[strings.ToLower(name)]})
	}
	return disks
}

type NamedDisk struct {
	Name string
	DiskConfig
}
