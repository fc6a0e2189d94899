package config

import (
	"log"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration values.
type Config struct {
	AppPort           string `mapstructure:"APP_PORT"`
	Env               string `mapstructure:"ENV"`
	JWTSecret         string `mapstructure:"JWT_SECRET"`
	LogLevel          string `mapstructure:"LOG_LEVEL"`
	MaxRequestsPerMin int    `mapstructure:"MAX_REQUESTS_PER_MIN"`

	// Redis configuration.
	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisAuthDB   int    `mapstructure:"REDIS_AUTH_DB"`
	RedisCacheDB  int    `mapstructure:"REDIS_CACHE_DB"`
	RedisQueueDB  int    `mapstructure:"REDIS_QUEUE_DB"`

	// Identity.
	SessionStore            string        `mapstructure:"SESSION_STORE"`
	AuthSessionTTL          time.Duration `mapstructure:"AUTH_SESSION_TTL"`
	FirebaseAPIKey          string        `mapstructure:"FIREBASE_API_KEY"`
	FirebaseCredentialsFile string        `mapstructure:"FIREBASE_CREDENTIALS_FILE"`
	FirebaseProjectID       string        `mapstructure:"FIREBASE_PROJECT_ID"`

	// Recommendations.
	GeminiAPIKey        string        `mapstructure:"GEMINI_API_KEY"`
	GeminiModel         string        `mapstructure:"GEMINI_MODEL"`
	RecommendationDelay time.Duration `mapstructure:"RECOMMENDATION_DELAY"`
	RecommendationCache time.Duration `mapstructure:"RECOMMENDATION_CACHE_TTL"`

	// Scheduling sessions.
	SubmissionDelay  time.Duration `mapstructure:"SUBMISSION_DELAY"`
	FetchTimeout     time.Duration `mapstructure:"FETCH_TIMEOUT"`
	SubmitTimeout    time.Duration `mapstructure:"SUBMIT_TIMEOUT"`
	SessionTTL       time.Duration `mapstructure:"SESSION_TTL"`
	LockAfterSuccess bool          `mapstructure:"LOCK_AFTER_SUCCESS"`

	ConfirmationsEnabled bool `mapstructure:"CONFIRMATIONS_ENABLED"`
}

var AppConfig Config

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("MAX_REQUESTS_PER_MIN", 100)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_AUTH_DB", 1)
	v.SetDefault("REDIS_CACHE_DB", 2)
	v.SetDefault("REDIS_QUEUE_DB", 3)
	v.SetDefault("SESSION_STORE", "redis")
	v.SetDefault("AUTH_SESSION_TTL", 24*time.Hour)
	v.SetDefault("FIREBASE_API_KEY", "")
	v.SetDefault("FIREBASE_CREDENTIALS_FILE", "")
	v.SetDefault("FIREBASE_PROJECT_ID", "")
	v.SetDefault("GEMINI_API_KEY", "")
	v.SetDefault("GEMINI_MODEL", "models/gemini-1.5-flash")
	v.SetDefault("RECOMMENDATION_DELAY", time.Second)
	v.SetDefault("RECOMMENDATION_CACHE_TTL", 15*time.Minute)
	v.SetDefault("SUBMISSION_DELAY", 2*time.Second)
	v.SetDefault("FETCH_TIMEOUT", 15*time.Second)
	v.SetDefault("SUBMIT_TIMEOUT", 15*time.Second)
	v.SetDefault("SESSION_TTL", 10*time.Minute)
	v.SetDefault("LOCK_AFTER_SUCCESS", false)
	v.SetDefault("CONFIRMATIONS_ENABLED", false)
}

// Load reads configuration from config.yaml (in "." or "./config") and the
// environment into a new Config.
func Load(v *viper.Viper) (Config, error) {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	// Automatically use environment variables where available.
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
		log.Println("No config file found, using environment variables only")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadConfig populates AppConfig from the global viper instance.
func LoadConfig() {
	cfg, err := Load(viper.GetViper())
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	AppConfig = cfg
}

func GetEnv() string {
	return AppConfig.Env
}

func IsProduction() bool {
	return GetEnv() == "production"
}
