// Package web serves a read-only JSON view of the watchlist, alerts and
// trades.
package web

import (
	"errors"
	"net/http"
	"time"

	"github.com/KNICEX/candlekeeper/internal/entity"
	"github.com/KNICEX/candlekeeper/internal/repo"
	"github.com/KNICEX/candlekeeper/internal/service/quote"
	"github.com/KNICEX/candlekeeper/internal/service/tracker"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type Handler struct {
	svc *tracker.Service
}

func NewHandler(svc *tracker.Service) *Handler {
	return &Handler{svc: svc}
}

type watchlistEntryVO struct {
	Symbol     string           `json:"symbol"`
	AssetType  entity.AssetType `json:"asset_type"`
	InsertedAt time.Time        `json:"inserted_at"`
}

type alertVO struct {
	ID          int64            `json:"id"`
	OwnerID     string           `json:"owner_id"`
	Symbol      string           `json:"symbol"`
	AssetType   entity.AssetType `json:"asset_type"`
	TargetPrice string           `json:"target_price"`
	Direction   entity.Direction `json:"direction"`
	Paused      bool             `json:"paused"`
	CreatedAt   time.Time        `json:"created_at"`
}

type tradeVO struct {
	ID         int64     `json:"id"`
	OwnerID    string    `json:"owner_id"`
	Symbol     string    `json:"symbol"`
	Entry      string    `json:"entry"`
	StopLoss   string    `json:"stop_loss"`
	TakeProfit string    `json:"take_profit"`
	Notes      string    `json:"notes"`
	CreatedAt  time.Time `json:"created_at"`
}

type quoteVO struct {
	quote.Quote
	Error string `json:"error,omitempty"`
}

type errorVO struct {
	Error string `json:"error"`
}

func (h *Handler) Health(c *gin.Context) {
	c.Header("Cache-Control", "no-store")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) Watchlist(c *gin.Context) {
	entries, err := h.svc.ListWatchlist(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorVO{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"entries": lo.Map(entries, func(item entity.WatchlistEntry, index int) watchlistEntryVO {
			return watchlistEntryVO{Symbol: item.Symbol, AssetType: item.AssetType, InsertedAt: item.InsertedAt}
		}),
	})
}

func (h *Handler) Alerts(c *gin.Context) {
	owner := c.Query("owner_id")
	if owner == "" {
		c.JSON(http.StatusBadRequest, errorVO{Error: "owner_id is required"})
		return
	}
	alerts, err := h.svc.ListAlerts(c.Request.Context(), owner)
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorVO{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"alerts": lo.Map(alerts, func(item entity.Alert, index int) alertVO {
			return alertVO{
				ID:          item.Id,
				OwnerID:     item.OwnerID,
				Symbol:      item.Symbol,
				AssetType:   item.AssetType,
				TargetPrice: item.TargetPrice.String(),
				Direction:   item.Direction,
				Paused:      item.Paused,
				CreatedAt:   item.CreatedAt,
			}
		}),
	})
}

// Trades 不带 owner_id 时返回全部记录
func (h *Handler) Trades(c *gin.Context) {
	trades, err := h.svc.ListTrades(c.Request.Context(), c.Query("owner_id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, errorVO{Error: err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"trades": lo.Map(trades, func(item entity.Trade, index int) tradeVO {
			return tradeVO{
				ID:         item.Id,
				OwnerID:    item.OwnerID,
				Symbol:     item.Symbol,
				Entry:      item.Entry.String(),
				StopLoss:   item.StopLoss.String(),
				TakeProfit: item.TakeProfit.String(),
				Notes:      item.Notes,
				CreatedAt:  item.CreatedAt,
			}
		}),
	})
}

func (h *Handler) Quote(c *gin.Context) {
	q, err := h.svc.TestQuote(c.Request.Context(), c.Query("symbol"), c.DefaultQuery("asset_type", string(entity.AssetCrypto)))
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, repo.ErrInvalidAssetType) || errors.Is(err, repo.ErrInvalidSymbol) {
			status = http.StatusBadRequest
		}
		c.JSON(status, errorVO{Error: err.Error()})
		return
	}
	vo := quoteVO{Quote: q}
	if q.Err != nil {
		vo.Error = q.Err.Error()
	}
	c.JSON(http.StatusOK, vo)
}
