package notification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/KNICEX/candlekeeper/internal/entity"
	"github.com/KNICEX/candlekeeper/internal/repo"
	"github.com/KNICEX/candlekeeper/internal/service/quote"
	"github.com/KNICEX/candlekeeper/pkg/decimalx"
)

const DefaultSendTimeout = 10 * time.Second

// Dispatcher delivers alert triggers: alert channel first, then a direct
// message to the owner, then log and drop.
type Dispatcher struct {
	messenger   Messenger
	settings    repo.SettingsRepo
	sendTimeout time.Duration
}

type Option func(d *Dispatcher)

func WithSendTimeout(timeout time.Duration) Option {
	return func(d *Dispatcher) {
		if timeout > 0 {
			d.sendTimeout = timeout
		}
	}
}

func NewDispatcher(messenger Messenger, settings repo.SettingsRepo, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		messenger:   messenger,
		settings:    settings,
		sendTimeout: DefaultSendTimeout,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NotifyTrigger returns ErrDeliveryFailed only when every route failed. The
// caller still treats the alert as consumed.
func (d *Dispatcher) NotifyTrigger(ctx context.Context, alert entity.Alert, q quote.Quote) error {
	text := TriggerText(alert, q)

	channelErr := d.sendToAlertChannel(ctx, alert, text)
	if channelErr == nil {
		return nil
	}
	slog.Warn("alert channel delivery failed, falling back to dm", "alert", alert.Id, "owner", alert.OwnerID, "error", channelErr)

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()
	dmErr := d.messenger.SendDirect(sendCtx, alert.OwnerID, text)
	if dmErr == nil {
		return nil
	}

	err := fmt.Errorf("%w: channel: %w, dm: %w", ErrDeliveryFailed, channelErr, dmErr)
	slog.Error("alert notification dropped", "alert", alert.Id, "owner", alert.OwnerID, "symbol", alert.Symbol, "error", err)
	return err
}

func (d *Dispatcher) sendToAlertChannel(ctx context.Context, alert entity.Alert, text string) error {
	settings, err := d.settings.Get(ctx)
	if err != nil {
		return fmt.Errorf("load settings: %w", err)
	}
	if settings.AlertChannelID == "" {
		return fmt.Errorf("no alert channel configured: %w", ErrChannelUnavailable)
	}

	sendCtx, cancel := context.WithTimeout(ctx, d.sendTimeout)
	defer cancel()
	_, err = d.messenger.SendToChannel(sendCtx, settings.AlertChannelID, Mention(alert.OwnerID)+" "+text)
	if err != nil && !errors.Is(err, ErrChannelUnavailable) {
		err = fmt.Errorf("%w: %w", ErrDeliveryFailed, err)
	}
	return err
}

func Mention(userID string) string {
	return "<@" + userID + ">"
}

// TriggerText 提醒触发文案
func TriggerText(alert entity.Alert, q quote.Quote) string {
	return fmt.Sprintf("📢 **Alert triggered** `#%d`\n**%s** is **%s** (24h %s), which is **%s %s**.",
		alert.Id,
		alert.Symbol,
		decimalx.FormatPrice(q.Price),
		decimalx.FormatChange(q.Change24h),
		alert.Direction,
		decimalx.FormatTarget(alert.TargetPrice),
	)
}
