package workflow

import (
	"strconv"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	TaxRate   = decimal.RequireFromString("0.10")
	usPrinter = message.NewPrinter(language.AmericanEnglish)
)

// Estimate is a display-only price hint. Charges always use the Booking
// Service's total_amount.
type Estimate struct {
	DurationDays int
	DailyRate    decimal.Decimal
	Subtotal     decimal.Decimal
	Tax          decimal.Decimal
	Total        decimal.Decimal
}

// EstimateDraft counts rental days inclusively: 1 Jan to 3 Jan is 3 days.
func EstimateDraft(start, end civil.Date, dailyRate decimal.Decimal) Estimate {
	days := end.DaysSince(start) + 1
	subtotal := dailyRate.Mul(decimal.NewFromInt(int64(days)))
	tax := subtotal.Mul(TaxRate)
	return Estimate{
		DurationDays: days,
		DailyRate:    dailyRate,
		Subtotal:     subtotal,
		Tax:          tax,
		Total:        subtotal.Add(tax),
	}
}

// SummaryDurationDays is the checkout page's day count, end minus start.
// It disagrees with EstimateDraft by one; neither is authoritative.
func SummaryDurationDays(start, end civil.Date) int {
	return end.DaysSince(start)
}

// FormatUSD renders an amount the way the booking pages show money. The
// digits come from the decimal itself; the printer only groups thousands.
func FormatUSD(amount decimal.Decimal) string {
	rounded := amount.Round(2)
	sign := ""
	if rounded.IsNegative() {
		sign = "-"
		rounded = rounded.Neg()
	}
	whole, cents, _ := strings.Cut(rounded.StringFixed(2), ".")
	return sign + "$" + groupThousands(whole) + "." + cents
}

func groupThousands(whole string) string {
	n, err := strconv.ParseInt(whole, 10, 64)
	if err != nil {
		return whole
	}
	return usPrinter.Sprintf("%d", n)
}
