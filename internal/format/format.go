// Package format renders durations, money and timestamps for display and export.
package format

import (
	"fmt"
	"math"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/shopspring/decimal"
)

// ISOLayout is the export timestamp layout (UTC, millisecond precision).
const ISOLayout = "2006-01-02T15:04:05.000Z"

// LocalLayout mirrors the en-US locale date-time presentation.
const LocalLayout = "1/2/2006, 3:04:05 PM"

// HMS renders seconds as zero-padded HH:MM:SS. Hours widen past two digits.
func HMS(seconds float64) string {
	if seconds < 0 || math.IsNaN(seconds) {
		seconds = 0
	}
	total := int64(math.Floor(seconds))
	h := total / 3600
	m := (total % 3600) / 60
	s := total % 60
	return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
}

// Round2 rounds v to two decimal places, half away from zero.
// Non-finite values round to 0.
func Round2(v float64) float64 {
	return money(v).Round(2).InexactFloat64()
}

// Fixed2 renders v with exactly two decimal places. Non-finite values render
// as 0.00.
func Fixed2(v float64) string {
	return money(v).StringFixed(2)
}

// Currency renders a USD amount such as $1,234.56.
func Currency(amount float64) string {
	d := money(amount).Round(2)
	sign := ""
	if d.IsNegative() {
		sign = "-"
		d = d.Neg()
	}
	return sign + "$" + humanize.FormatFloat("#,###.##", d.InexactFloat64())
}

// decimal.NewFromFloat panics on NaN and Inf.
func money(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// ISO renders t for export.
func ISO(t time.Time) string {
	return t.UTC().Format(ISOLayout)
}

// LocalTimestamp renders t in the host's local time zone.
func LocalTimestamp(t time.Time) string {
	return t.Local().Format(LocalLayout)
}

// Ago renders t relative to now, e.g. "3 hours ago".
func Ago(t time.Time) string {
	return humanize.Time(t)
}
