package http

import (
	"net/http"

	"github.com/gorilla/mux"
)

// RegisterSwaggerDocs mounts the UI and doc.json under /swagger/.
// @Summary Reconciliation API documentation
// @Description Swagger UI for inventory checks, adjustments and the stock ledger
// @Tags Swagger
// @Produce html
// @Success 200 {string} string "Swagger UI"
// @Router /swagger/ [get]
func RegisterSwaggerDocs(router *mux.Router, ui http.Handler) {
	router.PathPrefix("/swagger/").Handler(ui).Methods(http.MethodGet)
}
