package decimalx

import (
	"strings"

	"github.com/shopspring/decimal"
)

var one = decimal.NewFromInt(1)

// FormatPrice 美元价格, 千分位; 小于 $1 时保留更多小数
//
//	65000.123 -> $65,000.12
//	0.00012345 -> $0.00012345
func FormatPrice(d decimal.Decimal) string {
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Abs()
	}
	var s string
	if d.LessThan(one) && !d.IsZero() {
		s = trimZeros(d.StringFixed(8), 2)
	} else {
		s = d.StringFixed(2)
	}
	return sign + "$" + Group(s)
}

// FormatChange 24h 涨跌幅, 缺失时为 N/A
func FormatChange(change decimal.NullDecimal) string {
	if !change.Valid {
		return "N/A"
	}
	arrow := "🔺"
	if change.Decimal.IsNegative() {
		arrow = "🔻"
	}
	return arrow + change.Decimal.Abs().StringFixed(2) + "%"
}

// FormatTarget 目标价, 不带货币符号
func FormatTarget(d decimal.Decimal) string {
	if d.Abs().LessThan(one) {
		return trimZeros(d.StringFixed(8), 2)
	}
	return Group(d.StringFixed(2))
}

// Group inserts thousands separators into the integer part of a plain
// decimal string.
func Group(s string) string {
	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	intPart, frac, hasFrac := strings.Cut(s, ".")

	var b strings.Builder
	pre := len(intPart) % 3
	if pre > 0 {
		b.WriteString(intPart[:pre])
	}
	for i := pre; i < len(intPart); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(intPart[i : i+3])
	}

	out := b.String()
	if hasFrac {
		out += "." + frac
	}
	if neg {
		out = "-" + out
	}
	return out
}

// trimZeros 去掉末尾多余的 0, 至少保留 min 位小数
func trimZeros(s string, min int) string {
	dot := strings.IndexByte(s, '.')
	if dot < 0 {
		return s
	}
	end := len(s)
	for end > dot+1+min && s[end-1] == '0' {
		end--
	}
	return s[:end]
}
