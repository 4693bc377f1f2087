package monitor

import (
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/KNICEX/candlekeeper/internal/entity"
	"github.com/KNICEX/candlekeeper/internal/service/quote"
	"github.com/KNICEX/candlekeeper/pkg/decimalx"
)

const (
	watchlistTitle = "📋 **CandleKeeper Watchlist**"
	emptyWatchlist = "_Watchlist is empty. Add a symbol with `/watchlist add`._"
	placeholder    = "N/A"
)

// RenderWatchlist 渲染行情表, 每个条目一行, 顺序与 entries 一致.
// 报价失败的条目显示占位符而不是中断整个表格.
func RenderWatchlist(entries []entity.WatchlistEntry, quotes map[entity.AssetKey]quote.Quote, now time.Time) string {
	var b strings.Builder
	b.WriteString(watchlistTitle)
	b.WriteString("\n")

	if len(entries) == 0 {
		b.WriteString(emptyWatchlist)
	} else {
		b.WriteString("```\n")
		w := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		_, _ = fmt.Fprintln(w, "SYMBOL\tPRICE\t24H")
		for _, e := range entries {
			price, change := placeholder, placeholder
			if q, ok := quotes[e.Key()]; ok && q.OK() {
				price = decimalx.FormatPrice(q.Price)
				change = decimalx.FormatChange(q.Change24h)
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\n", strings.ToUpper(e.Symbol), price, change)
		}
		_ = w.Flush()
		b.WriteString("```")
	}

	fmt.Fprintf(&b, "\nUpdated <t:%d:R>", now.Unix())
	return b.String()
}
