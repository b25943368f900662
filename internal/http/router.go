package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func NewRouter(handler *Handler, corsOrigin string) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(Logger)
	r.Use(Recoverer)
	r.Use(Timeout)
	r.Use(CORS(corsOrigin))
	r.Use(Metrics)

	r.Get("/healthz", handler.Health)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/ledgers", handler.ListLedgers)
		r.Post("/ledgers", handler.CreateLedger)
		r.Get("/ledgers/current", handler.CurrentLedger)
		r.Delete("/ledgers/{id}", handler.DeleteLedger)
		r.Post("/ledgers/{id}/switch", handler.SwitchLedger)

		r.Get("/export", handler.ExportAll)
		r.Post("/import", handler.ImportAll)
		r.Post("/import/csv", handler.ImportCSV)
		r.Post("/import/xlsx", handler.ImportXLSX)

		r.Get("/transactions", handler.ListTransactions)
		r.Post("/transactions", handler.RecordTransaction)
		r.Post("/payments", handler.RecordPayment)

		r.Get("/customers", handler.ListCustomers)
		r.Post("/customers", handler.AddCustomer)
		r.Patch("/customers/{id}", handler.UpdateCustomer)
		r.Delete("/customers/{id}", handler.DeleteCustomer)
		r.Get("/customers/{id}/transactions", handler.CustomerTransactions)

		r.Get("/products", handler.ListProducts)
		r.Post("/products", handler.AddProduct)
		r.Patch("/products/{id}", handler.UpdateProduct)
		r.Delete("/products/{id}", handler.DeleteProduct)
		r.Post("/products/{id}/stock", handler.AddStock)

		r.Get("/dashboard", handler.Dashboard)
	})

	return r
}
