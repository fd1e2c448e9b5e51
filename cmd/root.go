package cmd

import (
	"errors"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/hh-interviewer/internal/interviewer"
)

const (
	app       = "hh-interviewer"
	envPrefix = "INTERVIEWER"
)

type Config struct {
	Server        *ServerConfig      `mapstructure:"server"`
	Session       *SessionConfig     `mapstructure:"session"`
	Interview     interviewer.Config `mapstructure:"interview"`
	QuestionsFile string             `mapstructure:"questions-file"`
	Storage       *StorageConfig     `mapstructure:"storage"`
	AI            *AIConfig          `mapstructure:"ai"`
}

type ServerConfig struct {
	Addr            string        `mapstructure:"addr"`
	ReadTimeout     time.Duration `mapstructure:"read-timeout"`
	WriteTimeout    time.Duration `mapstructure:"write-timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown-timeout"`
	RatePerSecond   float64       `mapstructure:"rate-per-second"`
	Burst           int           `mapstructure:"burst"`
	CORSOrigins     []string      `mapstructure:"cors-origins"`
}

type SessionConfig struct {
	TTL           time.Duration `mapstructure:"ttl"`
	SweepInterval time.Duration `mapstructure:"sweep-interval"`
}

type StorageConfig struct {
	// Driver is one of file, sqlite or none.
	Driver    string `mapstructure:"driver"`
	Dir       string `mapstructure:"dir"`
	DSN       string `mapstructure:"dsn"`
	QueueSize int    `mapstructure:"queue-size"`
}

type AIConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Provider      string        `mapstructure:"provider"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RatePerSecond float64       `mapstructure:"rate-per-second"`
	Burst         int           `mapstructure:"burst"`
	Gemini        *GeminiConfig `mapstructure:"gemini"`
}

type GeminiConfig struct {
	APIKey       string        `mapstructure:"api-key"`
	APIKeyFile   string        `mapstructure:"api-key-file"`
	Model        string        `mapstructure:"model"`
	MaxRetries   int           `mapstructure:"max-retries"`
	RetryDelay   time.Duration `mapstructure:"retry-delay"`
	MaxLogLength int           `mapstructure:"max-log-length"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "hh-interviewer is a mock job interview you can practice against in the terminal or over HTTP",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	setDefaults()

	if err := viper.BindEnv("ai.gemini.api-key", "GEMINI_API_KEY"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY environment variable: %v", err)
	}
	if err := viper.BindEnv("ai.gemini.api-key-file", "GEMINI_API_KEY_FILE"); err != nil {
		log.Fatalf("binding GEMINI_API_KEY_FILE environment variable: %v", err)
	}

	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is hh-interviewer.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func setDefaults() {
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("server.read-timeout", 15*time.Second)
	viper.SetDefault("server.write-timeout", 60*time.Second)
	viper.SetDefault("server.shutdown-timeout", 10*time.Second)
	viper.SetDefault("server.rate-per-second", 2.0)
	viper.SetDefault("server.burst", 5)
	viper.SetDefault("server.cors-origins", []string{"*"})

	viper.SetDefault("session.ttl", 60*time.Minute)
	viper.SetDefault("session.sweep-interval", 5*time.Minute)

	viper.SetDefault("interview.max-questions", interviewer.DefaultMaxQuestions)
	viper.SetDefault("interview.persist-every", interviewer.DefaultPersistEvery)
	viper.SetDefault("questions-file", "")

	viper.SetDefault("storage.driver", "file")
	viper.SetDefault("storage.dir", "sessions")
	viper.SetDefault("storage.dsn", "sessions.db")
	viper.SetDefault("storage.queue-size", 64)

	viper.SetDefault("ai.enabled", true)
	viper.SetDefault("ai.provider", "gemini")
	viper.SetDefault("ai.timeout", 30*time.Second)
	viper.SetDefault("ai.rate-per-second", 1.0)
	viper.SetDefault("ai.burst", 2)
	viper.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.max-retries", 3)
	viper.SetDefault("ai.gemini.retry-delay", 2*time.Second)
	viper.SetDefault("ai.gemini.max-log-length", 200)
}

func initConfig() {
	// .env is optional; real environment variables win.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("loading .env: %v", err)
	}

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
	}

	// Without an explicit --config a missing file is fine; defaults and the
	// environment are enough to run.
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			log.Fatal(err)
		}
	}
}

func getConfig() (*Config, error) {
	var config *Config
	err := viper.Unmarshal(&config)
	if err != nil {
		return config, err
	}

	return config, nil
}
