package models

import "github.com/shopspring/decimal"

// RoundGrams rounds a protein amount to 2 decimal places, half away from zero
func RoundGrams(v float64) float64 {
	return decimal.NewFromFloat(v).Round(2).InexactFloat64()
}

// SumGrams adds protein amounts exactly and rounds the result to 2 decimal places
func SumGrams(values ...float64) float64 {
	sum := decimal.Zero
	for _, v := range values {
		sum = sum.Add(decimal.NewFromFloat(v))
	}
	return sum.Round(2).InexactFloat64()
}
