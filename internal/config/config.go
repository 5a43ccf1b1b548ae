package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	HTTP   HTTPConfig
	DB     DBConfig
	Auth   AuthConfig
	Camera CameraConfig
	Vision VisionConfig
	CORS   CORSConfig
}

type HTTPConfig struct {
	Port string
}

type DBConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	SSLMode  string
}

func (c DBConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode)
}

type AuthConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type CameraConfig struct {
	// device index or stream URL accepted by the capture backend
	Source string
	Angle  string
}

type VisionConfig struct {
	FPS           float64
	DetectTimeout time.Duration
	ModelPath     string
	ConfigPath    string
	TargetColors  []string
	ShowOverlay   bool
}

type CORSConfig struct {
	AllowOrigins []string
}

// Load reads config.yaml from the working directory, overlaid with
// BIRDIEO_-prefixed environment variables.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.SetEnvPrefix("BIRDIEO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("http.port", "8080")
	v.SetDefault("db.host", "localhost")
	v.SetDefault("db.port", 5432)
	v.SetDefault("db.user", "birdieo")
	v.SetDefault("db.password", "birdieo")
	v.SetDefault("db.name", "birdieo")
	v.SetDefault("db.sslmode", "disable")
	v.SetDefault("auth.jwt_secret", "change-me-in-production")
	v.SetDefault("auth.token_ttl", "720h")
	v.SetDefault("camera.source", "0")
	v.SetDefault("camera.angle", "tee_box")
	v.SetDefault("vision.fps", 15.0)
	v.SetDefault("vision.detect_timeout", "0s")
	v.SetDefault("vision.show_overlay", true)
	v.SetDefault("cors.allow_origins", []string{"*"})

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		HTTP: HTTPConfig{
			Port: v.GetString("http.port"),
		},
		DB: DBConfig{
			Host:     v.GetString("db.host"),
			Port:     v.GetInt("db.port"),
			User:     v.GetString("db.user"),
			Password: v.GetString("db.password"),
			Name:     v.GetString("db.name"),
			SSLMode:  v.GetString("db.sslmode"),
		},
		Auth: AuthConfig{
			JWTSecret: v.GetString("auth.jwt_secret"),
			TokenTTL:  v.GetDuration("auth.token_ttl"),
		},
		Camera: CameraConfig{
			Source: v.GetString("camera.source"),
			Angle:  v.GetString("camera.angle"),
		},
		Vision: VisionConfig{
			FPS:           v.GetFloat64("vision.fps"),
			DetectTimeout: v.GetDuration("vision.detect_timeout"),
			ModelPath:     v.GetString("vision.model_path"),
			ConfigPath:    v.GetString("vision.config_path"),
			TargetColors:  v.GetStringSlice("vision.target_colors"),
			ShowOverlay:   v.GetBool("vision.show_overlay"),
		},
		CORS: CORSConfig{
			AllowOrigins: v.GetStringSlice("cors.allow_origins"),
		},
	}
	return cfg, nil
}
