package entity

import "time"

const SettingsID = 1

// Settings holds the single row of bot-wide configuration.
// WatchlistMessageID is only meaningful together with WatchlistChannelID.
type Settings struct {
	Id                 int64 `gorm:"primaryKey;autoIncrement:false"`
	WatchlistChannelID string
	WatchlistMessageID string
	AlertChannelID     string
	UpdatedAt          time.Time
}

func (s Settings) HasWatchlistChannel() bool {
	return s.WatchlistChannelID != ""
}

func (s Settings) HasWatchlistMessage() bool {
	return s.WatchlistChannelID != "" && s.WatchlistMessageID != ""
}
