package types

import (
	"encoding/json"

	"github.com/shopspring/decimal"
)

// Money renders a decimal amount as a JSON number with two fractional digits.
func Money(amount decimal.Decimal) json.Number {
	return json.Number(amount.StringFixed(2))
}
