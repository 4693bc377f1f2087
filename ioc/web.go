package ioc

import (
	"github.com/KNICEX/candlekeeper/internal/service/tracker"
	"github.com/KNICEX/candlekeeper/internal/web"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
)

// InitWebServer returns nil when the read API is disabled.
func InitWebServer(svc *tracker.Service) *web.Server {
	type Config struct {
		Enabled bool   `mapstructure:"enabled"`
		Addr    string `mapstructure:"addr"`
		Mode    string `mapstructure:"mode"`
	}

	cfg := Config{Addr: ":8080", Mode: gin.ReleaseMode}
	if err := viper.UnmarshalKey("web", &cfg); err != nil {
		panic(err)
	}
	if !cfg.Enabled {
		return nil
	}
	gin.SetMode(cfg.Mode)
	return web.NewServer(cfg.Addr, web.NewHandler(svc))
}
