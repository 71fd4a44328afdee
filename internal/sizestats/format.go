package sizestats

import (
	"math/big"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog/log"
)

const bytesPerGB = 1 << 30

// BytesToGB renders a byte count in GiB with two decimals.
func BytesToGB(n *big.Int) string {
	return strconv.FormatFloat(toFloat(n)/bytesPerGB, 'f', 2, 64)
}

// Percent renders part as a percentage of whole with two decimals. A zero
// whole yields "0.00%".
func Percent(part, whole *big.Int) string {
	if whole.Sign() == 0 {
		return "0.00%"
	}
	return strconv.FormatFloat(toFloat(part)/toFloat(whole)*100, 'f', 2, 64) + "%"
}

// WithCommas renders n with thousands separators.
func WithCommas(n *big.Int) string {
	return humanize.BigComma(n)
}

func toFloat(n *big.Int) float64 {
	f, _ := new(big.Float).SetInt(n).Float64()
	return f
}

// toInt converts a raw metric string to an integer of any size. Unparsable
// values count as zero.
func toInt(raw string) *big.Int {
	n, ok := new(big.Int).SetString(strings.TrimSpace(raw), 10)
	if !ok {
		log.Debug().Str("value", raw).Msg("Metric value is not an integer, using 0")
		return new(big.Int)
	}
	return n
}
