package config

import (
	"errors"
	"os"
	"strings"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/joho/godotenv"
)

// LoadDotEnv loads environment variables from a .env file if present.
// Existing environment variables are not overwritten.
func LoadDotEnv(path string) error {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	return godotenv.Load(path)
}

type Config struct {
	Port                 string  `env:"PORT,default=8080"`
	DrawingDurationMs    int     `env:"DRAWING_DURATION_MS,default=10000"`
	PreparationDelayMs   int     `env:"PREPARATION_DELAY_MS,default=5000"`
	MaxRounds            int     `env:"MAX_ROUNDS,default=3"`
	LogLevel             string  `env:"LOG_LEVEL,default=info"`
	LogFormat            string  `env:"LOG_FORMAT,default=console"`
	MessageRatePerSecond float64 `env:"MESSAGE_RATE_PER_SECOND,default=60"`
	MessageBurst         int     `env:"MESSAGE_BURST,default=120"`
	MaxMessageBytes      int64   `env:"MAX_MESSAGE_BYTES,default=65536"`
	GinMode              string  `env:"GIN_MODE,default=release"`
}

func Default() Config {
	return Config{
		Port:                 "8080",
		DrawingDurationMs:    10000,
		PreparationDelayMs:   5000,
		MaxRounds:            3,
		LogLevel:             "info",
		LogFormat:            "console",
		MessageRatePerSecond: 60,
		MessageBurst:         120,
		MaxMessageBytes:      64 * 1024,
		GinMode:              "release",
	}
}

// Load decodes the environment over Default. Values that fail to parse or
// are not positive keep their defaults.
func Load() Config {
	cfg := Default()
	var decoded Config
	if err := envdecode.Decode(&decoded); err != nil {
		if !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
			decoded = decodeEach()
		}
	}
	return merge(cfg, decoded)
}

// decodeEach retries field by field so one malformed variable does not
// discard the others.
func decodeEach() Config {
	var out Config
	var single struct {
		Port string `env:"PORT"`
	}
	if envdecode.Decode(&single) == nil {
		out.Port = single.Port
	}
	var drawing struct {
		Value int `env:"DRAWING_DURATION_MS"`
	}
	if envdecode.Decode(&drawing) == nil {
		out.DrawingDurationMs = drawing.Value
	}
	var preparation struct {
		Value int `env:"PREPARATION_DELAY_MS"`
	}
	if envdecode.Decode(&preparation) == nil {
		out.PreparationDelayMs = preparation.Value
	}
	var rounds struct {
		Value int `env:"MAX_ROUNDS"`
	}
	if envdecode.Decode(&rounds) == nil {
		out.MaxRounds = rounds.Value
	}
	var rate struct {
		Value float64 `env:"MESSAGE_RATE_PER_SECOND"`
	}
	if envdecode.Decode(&rate) == nil {
		out.MessageRatePerSecond = rate.Value
	}
	var burst struct {
		Value int `env:"MESSAGE_BURST"`
	}
	if envdecode.Decode(&burst) == nil {
		out.MessageBurst = burst.Value
	}
	var maxBytes struct {
		Value int64 `env:"MAX_MESSAGE_BYTES"`
	}
	if envdecode.Decode(&maxBytes) == nil {
		out.MaxMessageBytes = maxBytes.Value
	}
	out.LogLevel = os.Getenv("LOG_LEVEL")
	out.LogFormat = os.Getenv("LOG_FORMAT")
	out.GinMode = os.Getenv("GIN_MODE")
	return out
}

func merge(cfg, decoded Config) Config {
	if port := strings.TrimPrefix(strings.TrimSpace(decoded.Port), ":"); port != "" {
		cfg.Port = port
	}
	if decoded.DrawingDurationMs > 0 {
		cfg.DrawingDurationMs = decoded.DrawingDurationMs
	}
	if decoded.PreparationDelayMs > 0 {
		cfg.PreparationDelayMs = decoded.PreparationDelayMs
	}
	if decoded.MaxRounds > 0 {
		cfg.MaxRounds = decoded.MaxRounds
	}
	if decoded.LogLevel != "" {
		cfg.LogLevel = strings.ToLower(decoded.LogLevel)
	}
	if decoded.LogFormat != "" {
		cfg.LogFormat = strings.ToLower(decoded.LogFormat)
	}
	if decoded.MessageRatePerSecond > 0 {
		cfg.MessageRatePerSecond = decoded.MessageRatePerSecond
	}
	if decoded.MessageBurst > 0 {
		cfg.MessageBurst = decoded.MessageBurst
	}
	if decoded.MaxMessageBytes > 0 {
		cfg.MaxMessageBytes = decoded.MaxMessageBytes
	}
	if decoded.GinMode != "" {
		cfg.GinMode = decoded.GinMode
	}
	return cfg
}

func (c Config) Addr() string {
	return ":" + c.Port
}

func (c Config) DrawingDuration() time.Duration {
	return time.Duration(c.DrawingDurationMs) * time.Millisecond
}

func (c Config) PreparationDelay() time.Duration {
	return time.Duration(c.PreparationDelayMs) * time.Millisecond
}
