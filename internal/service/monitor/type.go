package monitor

import (
	"context"
	"log/slog"

	"github.com/KNICEX/candlekeeper/internal/entity"
	"github.com/KNICEX/candlekeeper/internal/service/quote"
)

// QuoteFetcher is satisfied by *quote.Fetcher.
type QuoteFetcher interface {
	FetchQuote(ctx context.Context, key entity.AssetKey) quote.Quote
	FetchMany(ctx context.Context, keys []entity.AssetKey) map[entity.AssetKey]quote.Quote
}

// Notifier is satisfied by *notification.Dispatcher.
type Notifier interface {
	NotifyTrigger(ctx context.Context, alert entity.Alert, q quote.Quote) error
}

type consoleNotifier struct {
}

func (c consoleNotifier) NotifyTrigger(ctx context.Context, alert entity.Alert, q quote.Quote) error {
	slog.Info("alert triggered", "alert", alert.Id, "owner", alert.OwnerID, "symbol", alert.Symbol, "price", q.Price)
	return nil
}
