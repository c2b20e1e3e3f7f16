package ledger

import (
	"math"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseServings parses a servings count typed by the user. Only digits and a
// decimal point are accepted, so negative and exponent forms are rejected.
func ParseServings(input string) (float64, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0, &ValidationError{Field: "servings", Message: "please enter a valid value"}
	}
	for _, c := range s {
		if (c < '0' || c > '9') && c != '.' {
			return 0, &ValidationError{Field: "servings", Message: "please enter a valid value"}
		}
	}

	servings, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, &ValidationError{Field: "servings", Message: "please enter a valid value"}
	}
	return servings, nil
}

// ProteinAmount returns servings × proteinPerServing rounded to 2 decimal places
func ProteinAmount(servings, proteinPerServing float64) (float64, error) {
	if servings < 0 || math.IsNaN(servings) || math.IsInf(servings, 0) {
		return 0, &ValidationError{Field: "servings", Message: "must be a non-negative number"}
	}
	if proteinPerServing < 0 || math.IsNaN(proteinPerServing) || math.IsInf(proteinPerServing, 0) {
		return 0, &ValidationError{Field: "protein_per_serving", Message: "must be a non-negative number"}
	}

	amount := decimal.NewFromFloat(servings).Mul(decimal.NewFromFloat(proteinPerServing))
	return amount.Round(2).InexactFloat64(), nil
}
