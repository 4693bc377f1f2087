package ioc

import (
	"log/slog"
	"os"
	"time"

	"github.com/KNICEX/candlekeeper/internal/repo"
	"github.com/KNICEX/candlekeeper/internal/service/notification"
	"github.com/KNICEX/candlekeeper/internal/service/notification/discord"
	"github.com/spf13/viper"
)

// InitMessenger 未配置 token 时只打印到标准输出
func InitMessenger() notification.Messenger {
	token := viper.GetString("discord.token")
	if token == "" {
		slog.Warn("no discord token set, messages go to stdout")
		return notification.NewConsoleMessenger(os.Stdout)
	}
	session, err := discord.NewSession(token)
	if err != nil {
		panic(err)
	}
	return discord.NewMessenger(session)
}

func InitDispatcher(messenger notification.Messenger, settings repo.SettingsRepo) *notification.Dispatcher {
	type Config struct {
		SendTimeout time.Duration `mapstructure:"send_timeout"`
	}

	cfg := Config{SendTimeout: notification.DefaultSendTimeout}
	if err := viper.UnmarshalKey("notification", &cfg); err != nil {
		panic(err)
	}
	return notification.NewDispatcher(messenger, settings, notification.WithSendTimeout(cfg.SendTimeout))
}
