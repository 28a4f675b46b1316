package reference

import (
	"net/http"

	"github.com/georgemunganga/vendor-portal/internal/pkg/httpx"
	"github.com/go-chi/chi/v5"
)

type Handler struct{}

func NewHandler() *Handler {
	return &Handler{}
}

func (h *Handler) RegisterRoutes(router chi.Router) {
	router.Get("/banks", h.listBanks)
	router.Get("/cities", h.listCities)
	router.Post("/bank-account/validate", h.validateBankAccount)
}

func (h *Handler) listBanks(w http.ResponseWriter, r *http.Request) {
	httpx.Respond(w, http.StatusOK, map[string]interface{}{"banks": Banks()})
}

func (h *Handler) listCities(w http.ResponseWriter, r *http.Request) {
	httpx.Respond(w, http.StatusOK, map[string]interface{}{"cities": Cities()})
}

func (h *Handler) validateBankAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		AccountNumber string `json:"account_number"`
		BankName      string `json:"bank_name"`
	}
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, err)
		return
	}
	httpx.Respond(w, http.StatusOK, ValidateBankAccount(req.AccountNumber, req.BankName))
}
