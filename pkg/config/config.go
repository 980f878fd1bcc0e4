package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config is the static bootstrap configuration loaded once at startup.
// Runtime-tunable settings live in SystemConfig instead.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Storage  StorageConfig  `mapstructure:"storage"`
	Index    IndexConfig    `mapstructure:"index"`
	Database DatabaseConfig `mapstructure:"database"`
}

type ServerConfig struct {
	Address string `mapstructure:"address"`
}

type OpenAIConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type StorageConfig struct {
	// Backend selects the ticket log implementation: "file", "memory" or "postgres".
	Backend      string `mapstructure:"backend"`
	FeedbackFile string `mapstructure:"feedback_file"`
	SettingsFile string `mapstructure:"settings_file"`
}

type IndexConfig struct {
	// Backend selects the vector store: "memory" or "sqlite".
	Backend      string `mapstructure:"backend"`
	SQLitePath   string `mapstructure:"sqlite_path"`
	WatchDir     string `mapstructure:"watch_dir"`
	ChunkSize    int    `mapstructure:"chunk_size"`
	ChunkOverlap int    `mapstructure:"chunk_overlap"`
	Workers      int    `mapstructure:"workers"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func Load(path string) (*Config, error) {
	// .env is optional; viper picks the variables up afterwards.
	_ = godotenv.Load()

	v := viper.New()

	v.SetDefault("server.address", ":8000")
	v.SetDefault("storage.backend", "file")
	v.SetDefault("storage.feedback_file", "feedback.json")
	v.SetDefault("storage.settings_file", "settings.json")
	v.SetDefault("index.backend", "memory")
	v.SetDefault("index.sqlite_path", "index.db")
	v.SetDefault("index.chunk_size", 1000)
	v.SetDefault("index.chunk_overlap", 200)
	v.SetDefault("index.workers", 4)
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.sslmode", "disable")

	v.AutomaticEnv()

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine: defaults plus env cover everything.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !os.IsNotExist(err) {
			return nil, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if key := v.GetString("OPENAI_API_KEY"); key != "" {
		cfg.OpenAI.APIKey = key
	}
	if addr := v.GetString("SERVER_ADDRESS"); addr != "" {
		cfg.Server.Address = addr
	}

	return &cfg, nil
}
