package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/KNICEX/candlekeeper/internal/entity"
	"gorm.io/gorm"
)

//go:generate mockgen -package=repomock -destination=repomock/settings.go -source=settings.go SettingsRepo
type SettingsRepo interface {
	Get(ctx context.Context) (entity.Settings, error)
	// SetWatchlistChannel 切换频道会同时清空旧的 message id, 传空字符串表示清除
	SetWatchlistChannel(ctx context.Context, channelID string) error
	// SetWatchlistMessage records the display message, but only while channelID
	// is still the configured watchlist channel.
	SetWatchlistMessage(ctx context.Context, channelID, messageID string) error
	SetAlertChannel(ctx context.Context, channelID string) error
}

type settingsRepo struct {
	db *gorm.DB
}

func NewSettingsRepo(db *gorm.DB) SettingsRepo {
	return &settingsRepo{
		db: db,
	}
}

func (r *settingsRepo) Get(ctx context.Context) (entity.Settings, error) {
	var s entity.Settings
	err := r.db.WithContext(ctx).Where("id = ?", entity.SettingsID).First(&s).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return entity.Settings{Id: entity.SettingsID}, nil
	}
	if err != nil {
		return entity.Settings{}, err
	}
	return s, nil
}

func (r *settingsRepo) SetWatchlistChannel(ctx context.Context, channelID string) error {
	return r.update(ctx, func(s *entity.Settings) error {
		if s.WatchlistChannelID != channelID {
			s.WatchlistMessageID = ""
		}
		s.WatchlistChannelID = channelID
		return nil
	})
}

func (r *settingsRepo) SetWatchlistMessage(ctx context.Context, channelID, messageID string) error {
	return r.update(ctx, func(s *entity.Settings) error {
		if channelID == "" || s.WatchlistChannelID != channelID {
			return fmt.Errorf("watchlist channel %q is not configured: %w", channelID, ErrNotFound)
		}
		s.WatchlistMessageID = messageID
		return nil
	})
}

func (r *settingsRepo) SetAlertChannel(ctx context.Context, channelID string) error {
	return r.update(ctx, func(s *entity.Settings) error {
		s.AlertChannelID = channelID
		return nil
	})
}

func (r *settingsRepo) update(ctx context.Context, fn func(s *entity.Settings) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var s entity.Settings
		if err := tx.FirstOrCreate(&s, entity.Settings{Id: entity.SettingsID}).Error; err != nil {
			return err
		}
		if err := fn(&s); err != nil {
			return err
		}
		return tx.Save(&s).Error
	})
}
