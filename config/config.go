package config

import (
	"fmt"
	"log"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
// Mapstructure tags are used to map environment variables and config file keys.
type Config struct {
	// Server Configuration
	ServerAddress string `mapstructure:"SERVER_ADDRESS"` // e.g., ":8080"
	AppEnv        string `mapstructure:"APP_ENV"`        // "production" switches gin to release mode

	// AI Configuration
	OpenAIKey     string `mapstructure:"OPENAI_API_KEY"`  // API key for the chat endpoint
	OpenAIBaseURL string `mapstructure:"OPENAI_BASE_URL"` // OpenAI-compatible endpoint; empty for api.openai.com
	ChatModel     string `mapstructure:"CHAT_MODEL"`      // e.g., "gpt-4o"

	// Annotation Configuration
	AnnotationPadding     float64 `mapstructure:"ANNOTATION_PADDING"`      // crop margin around strokes, CSS px
	AnnotationJPEGQuality int     `mapstructure:"ANNOTATION_JPEG_QUALITY"` // 1-100

	// Preview Rendering Configuration
	ChromePath           string  `mapstructure:"CHROME_PATH"`            // empty lets chromedp find Chrome
	DeviceScaleFactor    float64 `mapstructure:"DEVICE_SCALE_FACTOR"`    // screenshot px per CSS px
	MaxConcurrentRenders int64   `mapstructure:"MAX_CONCURRENT_RENDERS"` // browser tabs rendering at once

	// Publishing Configuration
	PublishDir     string `mapstructure:"PUBLISH_DIR"`     // where exported sites are written
	PublishCommand string `mapstructure:"PUBLISH_COMMAND"` // optional executable run with the site dir
}

func setDefaults() {
	viper.SetDefault("SERVER_ADDRESS", ":8080")
	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("OPENAI_API_KEY", "")
	viper.SetDefault("OPENAI_BASE_URL", "")
	viper.SetDefault("CHAT_MODEL", "gpt-4o")
	viper.SetDefault("ANNOTATION_PADDING", 12)
	viper.SetDefault("ANNOTATION_JPEG_QUALITY", 90)
	viper.SetDefault("CHROME_PATH", "")
	viper.SetDefault("DEVICE_SCALE_FACTOR", 2)
	viper.SetDefault("MAX_CONCURRENT_RENDERS", 2)
	viper.SetDefault("PUBLISH_DIR", "published")
	viper.SetDefault("PUBLISH_COMMAND", "")
}

// LoadConfig reads configuration from file and environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)     // Path to look for the config file in
	viper.SetConfigName("config") // Name of config file (without extension)
	viper.SetConfigType("yaml")   // REQUIRED if the config file does not have the extension in the name

	setDefaults()
	viper.AutomaticEnv() // Read environment variables that match keys

	// Attempt to read the config file
	err = viper.ReadInConfig()
	if err != nil {
		// If config file not found, log it but continue if env vars might be set
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			log.Println("Config file ('config.yaml') not found in specified path, relying solely on environment variables.")
		} else {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	} else {
		log.Printf("Using configuration file: %s", viper.ConfigFileUsed())
	}

	err = viper.Unmarshal(&config)
	if err != nil {
		return Config{}, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	if config.OpenAIKey == "" {
		log.Println("WARN: OPENAI_API_KEY is not set. Chat requests will fail.")
	}
	if config.AnnotationPadding < 0 {
		return Config{}, fmt.Errorf("ANNOTATION_PADDING must not be negative, got %v", config.AnnotationPadding)
	}
	if config.AnnotationJPEGQuality < 1 || config.AnnotationJPEGQuality > 100 {
		return Config{}, fmt.Errorf("ANNOTATION_JPEG_QUALITY must be between 1 and 100, got %d", config.AnnotationJPEGQuality)
	}

	return
}
