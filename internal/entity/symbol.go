package entity

import (
	"fmt"
	"regexp"
	"strings"
)

// AssetType 标的类型
type AssetType string

const (
	AssetCrypto AssetType = "crypto"
	AssetStock  AssetType = "stock"
)

func (t AssetType) String() string {
	return string(t)
}

func (t AssetType) Valid() bool {
	return t == AssetCrypto || t == AssetStock
}

func ParseAssetType(s string) (AssetType, error) {
	t := AssetType(strings.ToLower(strings.TrimSpace(s)))
	if !t.Valid() {
		return "", fmt.Errorf("unknown asset type %q", s)
	}
	return t, nil
}

// AssetKey identifies one quotable instrument. Symbol is always canonical.
type AssetKey struct {
	Symbol    string
	AssetType AssetType
}

func NewAssetKey(symbol string, assetType AssetType) AssetKey {
	return AssetKey{
		Symbol:    CanonicalSymbol(symbol, assetType),
		AssetType: assetType,
	}
}

func (k AssetKey) String() string {
	return fmt.Sprintf("%s:%s", k.AssetType, k.Symbol)
}

var tickerInParens = regexp.MustCompile(`\(([^)]+)\)`)

// NormalizeSymbol strips user input down to the symbol itself.
// "Apple Inc (AAPL)" -> "AAPL".
func NormalizeSymbol(s string) string {
	if m := tickerInParens.FindStringSubmatch(s); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(s)
}

// SymbolKey is the case-insensitive identity of a symbol.
func SymbolKey(s string) string {
	return strings.ToLower(NormalizeSymbol(s))
}

// CanonicalSymbol crypto 使用 CoinGecko id (小写), stock 使用交易所 ticker (大写)
func CanonicalSymbol(s string, assetType AssetType) string {
	s = NormalizeSymbol(s)
	if assetType == AssetStock {
		return strings.ToUpper(s)
	}
	return strings.ToLower(s)
}
