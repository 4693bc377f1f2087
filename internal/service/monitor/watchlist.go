package monitor

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/KNICEX/candlekeeper/internal/entity"
	"github.com/KNICEX/candlekeeper/internal/repo"
	"github.com/KNICEX/candlekeeper/internal/schedule"
	"github.com/KNICEX/candlekeeper/internal/service/notification"
	"github.com/samber/lo"
)

var _ schedule.Task = (*WatchlistRefresher)(nil)

// WatchlistRefresher keeps one message in the watchlist channel up to date
// with current prices.
type WatchlistRefresher struct {
	settings  repo.SettingsRepo
	watchlist repo.WatchlistRepo
	fetcher   QuoteFetcher
	messenger notification.Messenger
	now       func() time.Time

	// 定时任务和手动刷新共用同一条消息
	mu sync.Mutex
}

func NewWatchlistRefresher(settings repo.SettingsRepo, watchlist repo.WatchlistRepo, fetcher QuoteFetcher, messenger notification.Messenger) *WatchlistRefresher {
	return &WatchlistRefresher{
		settings:  settings,
		watchlist: watchlist,
		fetcher:   fetcher,
		messenger: messenger,
		now:       time.Now,
	}
}

func (r *WatchlistRefresher) Name() string {
	return "watchlist refresher"
}

func (r *WatchlistRefresher) Run(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	settings, err := r.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if !settings.HasWatchlistChannel() {
		slog.Debug("skip watchlist refresh", "reason", "no watchlist channel")
		return nil
	}

	text, err := r.Render(ctx)
	if err != nil {
		return err
	}
	return r.publish(ctx, settings, text)
}

// Render builds the watchlist table from current quotes without posting it.
func (r *WatchlistRefresher) Render(ctx context.Context) (string, error) {
	entries, err := r.watchlist.List(ctx)
	if err != nil {
		return "", fmt.Errorf("list watchlist: %w", err)
	}
	keys := lo.Map(entries, func(item entity.WatchlistEntry, index int) entity.AssetKey {
		return item.Key()
	})
	quotes := r.fetcher.FetchMany(ctx, keys)
	return RenderWatchlist(entries, quotes, r.now()), nil
}

// publish 优先编辑已有消息; 消息被删除时重新发送并记录新 id
func (r *WatchlistRefresher) publish(ctx context.Context, settings entity.Settings, text string) error {
	channelID := settings.WatchlistChannelID
	if settings.HasWatchlistMessage() {
		err := r.messenger.EditMessage(ctx, channelID, settings.WatchlistMessageID, text)
		if err == nil {
			return nil
		}
		if !errors.Is(err, notification.ErrMessageNotFound) {
			return fmt.Errorf("edit watchlist message: %w", err)
		}
		slog.Warn("watchlist message gone, posting a new one", "channel", channelID, "message", settings.WatchlistMessageID)
	}

	messageID, err := r.messenger.SendToChannel(ctx, channelID, text)
	if err != nil {
		return fmt.Errorf("post watchlist message: %w", err)
	}
	if err = r.settings.SetWatchlistMessage(ctx, channelID, messageID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			// 刷新期间频道被切换, 下一轮会在新频道发送
			slog.Info("watchlist channel changed during refresh", "channel", channelID, "message", messageID)
			return nil
		}
		return fmt.Errorf("save watchlist message: %w", err)
	}
	slog.Info("watchlist message posted", "channel", channelID, "message", messageID)
	return nil
}
