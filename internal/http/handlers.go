package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"veresiye/internal/bulkimport"
	"veresiye/internal/domain"
	"veresiye/internal/ledger"

	"github.com/go-chi/chi/v5"
)

type Handler struct {
	svc *ledger.Service
}

func NewHandler(svc *ledger.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"status": "ok"})
}

func (h *Handler) ListLedgers(w http.ResponseWriter, r *http.Request) {
	ledgers, err := h.svc.ListLedgers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": ledgers, "count": len(ledgers)})
}

type createLedgerRequest struct {
	Name string `json:"name"`
}

func (h *Handler) CreateLedger(w http.ResponseWriter, r *http.Request) {
	var req createLedgerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	meta, err := h.svc.CreateLedger(r.Context(), req.Name)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, meta)
}

func (h *Handler) CurrentLedger(w http.ResponseWriter, r *http.Request) {
	meta, data, err := h.svc.CurrentLedger(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"metadata":     meta,
		"transactions": len(data.Transactions),
		"customers":    len(data.Customers),
		"products":     len(data.Products),
	})
}

func (h *Handler) DeleteLedger(w http.ResponseWriter, r *http.Request) {
	if !parseBool(r.URL.Query().Get("confirm")) {
		writeError(w, http.StatusBadRequest, "deleting a ledger requires confirm=true")
		return
	}
	if err := h.svc.DeleteLedger(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) SwitchLedger(w http.ResponseWriter, r *http.Request) {
	data, err := h.svc.SwitchLedger(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, data)
}

func (h *Handler) ExportAll(w http.ResponseWriter, r *http.Request) {
	bundle, err := h.svc.ExportAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, bundle)
}

func (h *Handler) ImportAll(w http.ResponseWriter, r *http.Request) {
	var bundle domain.ExportBundle
	if err := decodeJSON(r, &bundle); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	count, err := h.svc.ImportAll(r.Context(), bundle)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"imported": count})
}

func (h *Handler) ListTransactions(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Transactions(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) RecordTransaction(w http.ResponseWriter, r *http.Request) {
	var req ledger.TransactionInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	txn, err := h.svc.RecordTransaction(r.Context(), req)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	var req ledger.PaymentInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	txn, err := h.svc.RecordPayment(r.Context(), req)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, txn)
}

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Customers(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) AddCustomer(w http.ResponseWriter, r *http.Request) {
	var req ledger.CustomerInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	customer, err := h.svc.AddCustomer(r.Context(), req)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	var req ledger.CustomerPatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	customer, err := h.svc.UpdateCustomer(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	cascade := parseBool(r.URL.Query().Get("cascade"))
	if err := h.svc.DeleteCustomer(r.Context(), chi.URLParam(r, "id"), cascade); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) CustomerTransactions(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.CustomerTransactions(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.Products(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"items": items, "count": len(items)})
}

func (h *Handler) AddProduct(w http.ResponseWriter, r *http.Request) {
	var req ledger.ProductInput
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	product, err := h.svc.AddProduct(r.Context(), req)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	var req ledger.ProductPatch
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	product, err := h.svc.UpdateProduct(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	if err := h.svc.DeleteProduct(r.Context(), chi.URLParam(r, "id")); err != nil {
		writeLedgerError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type addStockRequest struct {
	Quantity float64 `json:"quantity"`
}

func (h *Handler) AddStock(w http.ResponseWriter, r *http.Request) {
	var req addStockRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	product, err := h.svc.AddStock(r.Context(), chi.URLParam(r, "id"), req.Quantity)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) Dashboard(w http.ResponseWriter, r *http.Request) {
	summary, err := h.svc.Dashboard(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

type importCSVRequest struct {
	TransactionsCSV string `json:"transactionsCsv"`
	ProductsCSV     string `json:"productsCsv"`
}

func (h *Handler) ImportCSV(w http.ResponseWriter, r *http.Request) {
	var req importCSVRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if strings.TrimSpace(req.TransactionsCSV) == "" && strings.TrimSpace(req.ProductsCSV) == "" {
		writeError(w, http.StatusBadRequest, "transactionsCsv or productsCsv is required")
		return
	}

	var (
		transactions []domain.Transaction
		products     []domain.Product
		err          error
	)
	if strings.TrimSpace(req.TransactionsCSV) != "" {
		transactions, err = bulkimport.ParseTransactionsCSV(strings.NewReader(req.TransactionsCSV))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if strings.TrimSpace(req.ProductsCSV) != "" {
		products, err = bulkimport.ParseProductsCSV(strings.NewReader(req.ProductsCSV))
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	stats, err := h.svc.ImportBulk(r.Context(), transactions, products)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func (h *Handler) ImportXLSX(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, http.StatusBadRequest, "failed to parse multipart form")
		return
	}

	var (
		transactions []domain.Transaction
		products     []domain.Product
	)
	if file, _, err := r.FormFile("transactions"); err == nil {
		defer file.Close()
		transactions, err = bulkimport.ParseTransactionsXLSX(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if file, _, err := r.FormFile("products"); err == nil {
		defer file.Close()
		products, err = bulkimport.ParseProductsXLSX(file)
		if err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if transactions == nil && products == nil {
		writeError(w, http.StatusBadRequest, "transactions or products file is required")
		return
	}

	stats, err := h.svc.ImportBulk(r.Context(), transactions, products)
	if err != nil {
		writeLedgerError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

func writeLedgerError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, ledger.ErrDuplicateName),
		errors.Is(err, ledger.ErrInsufficientStock),
		errors.Is(err, ledger.ErrHasTransactions):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, ledger.ErrEmptyName),
		errors.Is(err, ledger.ErrProductNotFound),
		errors.Is(err, ledger.ErrBadFormat):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusBadRequest, err.Error())
	}
}

func decodeJSON(r *http.Request, out any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("invalid JSON body")
	}
	return nil
}

func parseBool(raw string) bool {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes":
		return true
	}
	return false
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}
