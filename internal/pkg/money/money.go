// Package money validates amounts before they reach a NUMERIC(14,2) column.
package money

import (
	"math"
	"strconv"
	"strings"

	"github.com/georgemunganga/vendor-portal/internal/pkg/apperr"
)

// Limit is the first value NUMERIC(14,2) cannot hold.
const Limit = 1e12

// Check accepts nil or a finite, non-negative value that fits the column
// after rounding to cents.
func Check(v *float64) error {
	if v == nil {
		return nil
	}
	switch {
	case math.IsNaN(*v) || math.IsInf(*v, 0):
		return apperr.New(apperr.Validation, "הסכום אינו תקין")
	case *v < 0:
		return apperr.New(apperr.Validation, "הסכום אינו יכול להיות שלילי")
	case math.Round(*v*100)/100 >= Limit:
		return apperr.New(apperr.Validation, "הסכום גבוה מדי")
	}
	return nil
}

// Parse reads a form value such as "1,250.50". Blank input yields nil.
func Parse(raw string) (*float64, error) {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, apperr.Wrap(apperr.Validation, "הסכום אינו תקין", err)
	}
	if err := Check(&v); err != nil {
		return nil, err
	}
	return &v, nil
}
