package ioc

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

func InitLogger() {
	type Config struct {
		Level  string `mapstructure:"level"`
		Format string `mapstructure:"format"`
	}

	cfg := Config{Level: "info", Format: "text"}
	if err := viper.UnmarshalKey("log", &cfg); err != nil {
		panic(err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.Level)); err != nil {
		panic(fmt.Errorf("invalid log level %q: %w", cfg.Level, err))
	}
	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	switch strings.ToLower(cfg.Format) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		panic(fmt.Errorf("invalid log format %q", cfg.Format))
	}
	slog.SetDefault(slog.New(handler))
}
