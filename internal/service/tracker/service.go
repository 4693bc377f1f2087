// Package tracker is the command-facing contract of the bot: every slash
// command maps onto one method here.
package tracker

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/KNICEX/candlekeeper/internal/entity"
	"github.com/KNICEX/candlekeeper/internal/repo"
	"github.com/KNICEX/candlekeeper/internal/service/quote"
)

// WatchlistPublisher is satisfied by *monitor.WatchlistRefresher.
type WatchlistPublisher interface {
	Render(ctx context.Context) (string, error)
	Run(ctx context.Context) error
}

type QuoteFetcher interface {
	FetchQuote(ctx context.Context, key entity.AssetKey) quote.Quote
}

type AddAlertReq struct {
	OwnerID   string
	Symbol    string
	AssetType string
	Target    float64
	Direction string
}

type AddTradeReq struct {
	OwnerID    string
	Symbol     string
	Entry      float64
	StopLoss   float64
	TakeProfit float64
	Notes      string
}

type Service struct {
	settings  repo.SettingsRepo
	watchlist repo.WatchlistRepo
	alerts    repo.AlertRepo
	trades    repo.TradeRepo
	fetcher   QuoteFetcher
	publisher WatchlistPublisher
}

func NewService(settings repo.SettingsRepo, watchlist repo.WatchlistRepo, alerts repo.AlertRepo,
	trades repo.TradeRepo, fetcher QuoteFetcher, publisher WatchlistPublisher) *Service {
	return &Service{
		settings:  settings,
		watchlist: watchlist,
		alerts:    alerts,
		trades:    trades,
		fetcher:   fetcher,
		publisher: publisher,
	}
}

func (s *Service) Settings(ctx context.Context) (entity.Settings, error) {
	return s.settings.Get(ctx)
}

// SetWatchlistChannel 传空字符串关闭行情表刷新
func (s *Service) SetWatchlistChannel(ctx context.Context, channelID string) error {
	if err := s.settings.SetWatchlistChannel(ctx, channelID); err != nil {
		return err
	}
	slog.Info("watchlist channel set", "channel", channelID)
	return nil
}

func (s *Service) SetAlertChannel(ctx context.Context, channelID string) error {
	if err := s.settings.SetAlertChannel(ctx, channelID); err != nil {
		return err
	}
	slog.Info("alert channel set", "channel", channelID)
	return nil
}

func (s *Service) AddWatchlistEntry(ctx context.Context, symbol, assetType string) (entity.WatchlistEntry, error) {
	at, err := parseAssetType(assetType)
	if err != nil {
		return entity.WatchlistEntry{}, err
	}
	e, err := s.watchlist.Add(ctx, symbol, at)
	if err != nil {
		return entity.WatchlistEntry{}, err
	}
	slog.Info("watchlist entry added", "symbol", e.Symbol, "asset_type", e.AssetType)
	return e, nil
}

func (s *Service) RemoveWatchlistEntry(ctx context.Context, symbol string) error {
	return s.watchlist.Remove(ctx, symbol)
}

func (s *Service) ClearWatchlist(ctx context.Context) error {
	return s.watchlist.Clear(ctx)
}

func (s *Service) ListWatchlist(ctx context.Context) ([]entity.WatchlistEntry, error) {
	return s.watchlist.List(ctx)
}

// RenderWatchlist returns the table with live prices without posting it.
func (s *Service) RenderWatchlist(ctx context.Context) (string, error) {
	return s.publisher.Render(ctx)
}

// RefreshWatchlist posts or edits the channel message right away instead of
// waiting for the next tick.
func (s *Service) RefreshWatchlist(ctx context.Context) error {
	settings, err := s.settings.Get(ctx)
	if err != nil {
		return err
	}
	if !settings.HasWatchlistChannel() {
		return fmt.Errorf("watchlist channel: %w", repo.ErrNotFound)
	}
	return s.publisher.Run(ctx)
}

func (s *Service) AddAlert(ctx context.Context, req AddAlertReq) (int64, error) {
	at, err := parseAssetType(req.AssetType)
	if err != nil {
		return 0, err
	}
	dir, err := entity.ParseDirection(req.Direction)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", repo.ErrInvalidDirection, err)
	}
	id, err := s.alerts.Create(ctx, repo.CreateAlertReq{
		OwnerID:   req.OwnerID,
		Symbol:    req.Symbol,
		AssetType: at,
		Target:    req.Target,
		Direction: dir,
	})
	if err != nil {
		return 0, err
	}
	slog.Info("alert created", "alert", id, "owner", req.OwnerID, "symbol", req.Symbol, "direction", dir, "target", req.Target)
	return id, nil
}

func (s *Service) RemoveAlert(ctx context.Context, ownerID string, id int64) error {
	return s.alerts.Remove(ctx, ownerID, id)
}

func (s *Service) PauseAlert(ctx context.Context, ownerID string, id int64) error {
	return s.alerts.Pause(ctx, ownerID, id)
}

func (s *Service) ResumeAlert(ctx context.Context, ownerID string, id int64) error {
	return s.alerts.Resume(ctx, ownerID, id)
}

func (s *Service) ListAlerts(ctx context.Context, ownerID string) ([]entity.Alert, error) {
	return s.alerts.ListByOwner(ctx, ownerID)
}

func (s *Service) ClearAlerts(ctx context.Context, ownerID string) (int64, error) {
	return s.alerts.ClearByOwner(ctx, ownerID)
}

// AddTrade 记录一条交易想法, 不会生成提醒
func (s *Service) AddTrade(ctx context.Context, req AddTradeReq) (entity.Trade, error) {
	trade, err := s.trades.Create(ctx, repo.CreateTradeReq{
		OwnerID:    req.OwnerID,
		Symbol:     req.Symbol,
		Entry:      req.Entry,
		StopLoss:   req.StopLoss,
		TakeProfit: req.TakeProfit,
		Notes:      req.Notes,
	})
	if err != nil {
		return entity.Trade{}, err
	}
	slog.Info("trade recorded", "trade", trade.Id, "owner", trade.OwnerID, "symbol", trade.Symbol)
	return trade, nil
}

func (s *Service) RemoveTrade(ctx context.Context, ownerID string, id int64) error {
	return s.trades.Remove(ctx, ownerID, id)
}

// ListTrades returns every owner's trades when ownerID is empty.
func (s *Service) ListTrades(ctx context.Context, ownerID string) ([]entity.Trade, error) {
	if ownerID == "" {
		return s.trades.List(ctx)
	}
	return s.trades.ListByOwner(ctx, ownerID)
}

// TestQuote fetches one quote on demand. Nothing is persisted; failures come
// back as the Quote's Outcome.
func (s *Service) TestQuote(ctx context.Context, symbol, assetType string) (quote.Quote, error) {
	at, err := parseAssetType(assetType)
	if err != nil {
		return quote.Quote{}, err
	}
	if entity.SymbolKey(symbol) == "" {
		return quote.Quote{}, repo.ErrInvalidSymbol
	}
	return s.fetcher.FetchQuote(ctx, entity.NewAssetKey(symbol, at)), nil
}

func parseAssetType(s string) (entity.AssetType, error) {
	at, err := entity.ParseAssetType(s)
	if err != nil {
		return "", fmt.Errorf("%w: %w", repo.ErrInvalidAssetType, err)
	}
	return at, nil
}
