package reference

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
)

func TestValidateBankAccount(t *testing.T) {
	tests := []struct {
		name    string
		account string
		bank    string
		valid   bool
	}{
		{"hapoalim wrong length", "123456789", "בנק הפועלים", false},
		{"hapoalim exact length", "1234567", "בנק הפועלים", true},
		{"separators stripped", "12-345-67", "בנק הפועלים", true},
		{"bank by code", "12345678", "10", true},
		{"bank without prefix", "1234567", "לאומי", false},
		{"international full name", "123456789", "הבנק הבינלאומי", false},
		{"international with bank prefix", "123456789", "בנק הבינלאומי", false},
		{"international short name", "123456789", "הבינלאומי", false},
		{"international exact length", "123456", "בנק הבינלאומי", true},
		{"unknown bank uses range only", "123456789", "בנק לא קיים", true},
		{"no bank uses range only", "123456", "", true},
		{"empty", "", "בנק הפועלים", false},
		{"letters only", "abc", "", false},
		{"too short", "12345", "", false},
		{"too long", "1234567890", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ValidateBankAccount(tt.account, tt.bank)
			if got.Valid != tt.valid {
				t.Errorf("ValidateBankAccount(%q, %q) = %+v, want valid=%v", tt.account, tt.bank, got, tt.valid)
			}
			if !got.Valid && got.Message == "" {
				t.Error("invalid result must carry a message")
			}
		})
	}
}

func TestValidateBankAccountMessageNamesExpectedDigits(t *testing.T) {
	got := ValidateBankAccount("123456789", "בנק הפועלים")
	if !strings.Contains(got.Message, "7") {
		t.Errorf("message %q should name the expected digit count", got.Message)
	}
}

func TestFindBankNameVariants(t *testing.T) {
	for _, name := range []string{"הבנק הבינלאומי", "בנק הבינלאומי", "הבינלאומי", "  בנק   הבינלאומי "} {
		b, ok := FindBank(name)
		if !ok || b.Code != "31" {
			t.Errorf("FindBank(%q) = %+v, %v; want code 31", name, b, ok)
		}
	}
	if b, ok := FindBank("בנק הפועלים"); !ok || b.Code != "12" {
		t.Errorf("FindBank(hapoalim) = %+v, %v", b, ok)
	}
}

func TestIsKnownCity(t *testing.T) {
	if !IsKnownCity(" חיפה ") {
		t.Error("expected חיפה to be known")
	}
	if IsKnownCity("Atlantis") {
		t.Error("expected Atlantis to be unknown")
	}
}

func TestValidateHandler(t *testing.T) {
	router := chi.NewRouter()
	NewHandler().RegisterRoutes(router)

	body := `{"account_number":"123456789","bank_name":"בנק הפועלים"}`
	req := httptest.NewRequest(http.MethodPost, "/bank-account/validate", strings.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d", rr.Code)
	}
	var got BankValidation
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatal(err)
	}
	if got.Valid {
		t.Error("expected invalid result")
	}
}
