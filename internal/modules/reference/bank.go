// Package reference holds the static lookup tables used by the vendor form:
// the Israeli bank registry and the city list.
package reference

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	minAccountDigits = 6
	maxAccountDigits = 9
)

// Bank is a registry entry. Digits is the exact account number length the bank issues.
type Bank struct {
	Code   string `json:"code"`
	Name   string `json:"name"`
	Digits int    `json:"digits"`
}

// BankValidation is the outcome of ValidateBankAccount. Message is shown to the vendor.
type BankValidation struct {
	Valid   bool   `json:"valid"`
	Message string `json:"message,omitempty"`
}

var banks = []Bank{
	{Code: "12", Name: "בנק הפועלים", Digits: 7},
	{Code: "10", Name: "בנק לאומי", Digits: 8},
	{Code: "11", Name: "בנק דיסקונט", Digits: 9},
	{Code: "20", Name: "בנק מזרחי טפחות", Digits: 6},
	{Code: "31", Name: "הבנק הבינלאומי", Digits: 6},
	{Code: "17", Name: "בנק מרכנתיל דיסקונט", Digits: 9},
	{Code: "04", Name: "בנק יהב", Digits: 6},
	{Code: "54", Name: "בנק ירושלים", Digits: 9},
	{Code: "14", Name: "בנק אוצר החייל", Digits: 6},
	{Code: "46", Name: "בנק מסד", Digits: 6},
	{Code: "52", Name: "בנק פאגי", Digits: 6},
	{Code: "09", Name: "בנק הדואר", Digits: 9},
	{Code: "18", Name: "וואן זירו", Digits: 9},
}

// Banks returns a copy of the registry.
func Banks() []Bank {
	out := make([]Bank, len(banks))
	copy(out, banks)
	return out
}

// FindBank matches a bank by code or by name. The "בנק" prefix is optional.
func FindBank(nameOrCode string) (Bank, bool) {
	key := normalizeBankName(nameOrCode)
	if key == "" {
		return Bank{}, false
	}
	for _, b := range banks {
		if b.Code == key || strings.TrimLeft(b.Code, "0") == strings.TrimLeft(key, "0") && isDigits(key) {
			return b, true
		}
		if normalizeBankName(b.Name) == key {
			return b, true
		}
	}
	return Bank{}, false
}

// ValidateBankAccount normalizes account to digits and checks its length, first
// against the general 6-9 range and then against the identified bank, if any.
func ValidateBankAccount(account, bankName string) BankValidation {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, account)

	if digits == "" {
		return BankValidation{Message: "נא להזין מספר חשבון"}
	}
	if len(digits) < minAccountDigits || len(digits) > maxAccountDigits {
		return BankValidation{Message: fmt.Sprintf("מספר חשבון חייב להכיל בין %d ל-%d ספרות", minAccountDigits, maxAccountDigits)}
	}

	if bank, ok := FindBank(bankName); ok && len(digits) != bank.Digits {
		return BankValidation{Message: fmt.Sprintf("מספר חשבון ב%s חייב להכיל %d ספרות", bank.Name, bank.Digits)}
	}

	return BankValidation{Valid: true}
}

// normalizeBankName reduces "הבנק הבינלאומי", "בנק הבינלאומי" and "הבינלאומי"
// to the same key.
func normalizeBankName(s string) string {
	s = strings.Join(strings.FieldsFunc(s, unicode.IsSpace), " ")
	if rest, ok := strings.CutPrefix(s, "ה"); ok && strings.HasPrefix(rest, "בנק ") {
		s = rest
	}
	s = strings.TrimPrefix(s, "בנק ")
	s = strings.TrimPrefix(s, "ה")
	return s
}

func isDigits(s string) bool {
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return s != ""
}
