package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/KNICEX/candlekeeper/internal/repo"
	"github.com/KNICEX/candlekeeper/internal/schedule"
	"github.com/samber/lo"
)

var _ schedule.Task = (*AlertEvaluator)(nil)

// AlertEvaluator checks every active alert against the current price and
// consumes the ones that fire.
type AlertEvaluator struct {
	alerts   repo.AlertRepo
	fetcher  QuoteFetcher
	notifier Notifier
}

type Option func(e *AlertEvaluator)

func WithNotifier(notifier Notifier) Option {
	return func(e *AlertEvaluator) {
		e.notifier = notifier
	}
}

func NewAlertEvaluator(alerts repo.AlertRepo, fetcher QuoteFetcher, opts ...Option) *AlertEvaluator {
	e := &AlertEvaluator{
		alerts:   alerts,
		fetcher:  fetcher,
		notifier: consoleNotifier{},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *AlertEvaluator) Name() string {
	return "alert evaluator"
}

func (e *AlertEvaluator) Run(ctx context.Context) error {
	groups, err := e.alerts.ListActiveGroupedBySymbol(ctx)
	if err != nil {
		return fmt.Errorf("list active alerts: %w", err)
	}
	if len(groups) == 0 {
		return nil
	}

	keys := lo.Keys(groups)
	sort.Slice(keys, func(i, j int) bool {
		return keys[i].String() < keys[j].String()
	})
	quotes := e.fetcher.FetchMany(ctx, keys)

	triggered := 0
	for _, key := range keys {
		q, ok := quotes[key]
		if !ok || !q.OK() {
			// 报价失败, 本轮不处理, 下一轮重新评估
			slog.Warn("skip alerts for symbol", "symbol", key, "outcome", q.Outcome, "alerts", len(groups[key]))
			continue
		}
		for _, alert := range groups[key] {
			if !alert.ShouldTrigger(q.Price) {
				continue
			}
			// 先认领再通知: 期间被暂停或删除的提醒不会再触发
			claimed, err := e.alerts.Consume(ctx, alert.Id)
			if err != nil {
				slog.Error("failed to consume triggered alert", "alert", alert.Id, "error", err)
				continue
			}
			if !claimed {
				slog.Info("alert changed during evaluation, skip", "alert", alert.Id)
				continue
			}
			triggered++
			slog.Info("alert triggered", "alert", alert.Id, "owner", alert.OwnerID, "symbol", key,
				"direction", alert.Direction, "target", alert.TargetPrice, "price", q.Price)

			// 已删除的提醒只有这一次投递机会, 不受 tick 截止时间影响
			if err := e.notifier.NotifyTrigger(context.WithoutCancel(ctx), alert, q); err != nil {
				slog.Error("failed to notify alert", "alert", alert.Id, "error", err)
			}
		}
	}
	slog.Debug("alert evaluation done", "symbols", len(keys), "triggered", triggered)
	return nil
}
