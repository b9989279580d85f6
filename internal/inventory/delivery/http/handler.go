package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/usecase/command"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/usecase/query"
	"github.com/vegatran/GaraManager-sub003/pkg/logger"
)

// Commands groups the write-side handlers.
type Commands struct {
	CreateCheck               *command.CreateCheckHandler
	StartCheck                *command.StartCheckHandler
	CompleteCheck             *command.CompleteCheckHandler
	CancelCheck               *command.CancelCheckHandler
	UpdateCheck               *command.UpdateCheckHandler
	DeleteCheck               *command.DeleteCheckHandler
	AddCheckItem              *command.AddCheckItemHandler
	UpdateCheckItem           *command.UpdateCheckItemHandler
	DeleteCheckItem           *command.DeleteCheckItemHandler
	BulkAddCheckItems         *command.BulkAddCheckItemsHandler
	BulkUpdateCheckItems      *command.BulkUpdateCheckItemsHandler
	AddCheckComment           *command.AddCheckCommentHandler
	DeleteCheckComment        *command.DeleteCheckCommentHandler
	CreateAdjustmentFromCheck *command.CreateAdjustmentFromCheckHandler
	CreateManualAdjustment    *command.CreateManualAdjustmentHandler
	ApproveAdjustment         *command.ApproveAdjustmentHandler
	RejectAdjustment          *command.RejectAdjustmentHandler
	DeleteAdjustment          *command.DeleteAdjustmentHandler
	BulkApprove               *command.BulkApproveHandler
	BulkReject                *command.BulkRejectHandler
	AddComment                *command.AddCommentHandler
	DeleteComment             *command.DeleteCommentHandler
}

// Queries groups the read-side handlers.
type Queries struct {
	GetCheck              *query.GetCheckHandler
	ListChecks            *query.ListChecksHandler
	CheckHistory          *query.GetCheckHistoryHandler
	ListCheckComments     *query.ListCheckCommentsHandler
	GetAdjustment         *query.GetAdjustmentHandler
	ListAdjustments       *query.ListAdjustmentsHandler
	AdjustmentHistory     *query.GetAdjustmentHistoryHandler
	ListComments          *query.ListCommentsHandler
	ListStockTransactions *query.ListStockTransactionsHandler
}

// InventoryHandler handles HTTP requests for inventory reconciliation
type InventoryHandler struct {
	commands *Commands
	queries  *Queries
}

// NewInventoryHandler creates a new inventory handler
func NewInventoryHandler(commands *Commands, queries *Queries) *InventoryHandler {
	return &InventoryHandler{commands: commands, queries: queries}
}

type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Error     string      `json:"error,omitempty"`
	Retryable bool        `json:"retryable,omitempty"`
}

// RegisterRoutes registers all inventory routes on an authenticated subrouter
func (h *InventoryHandler) RegisterRoutes(api *mux.Router) {
	api.HandleFunc("/inventory-checks", h.ListChecks).Methods(http.MethodGet)
	api.HandleFunc("/inventory-checks", h.CreateCheck).Methods(http.MethodPost)
	api.HandleFunc("/inventory-checks/{id:[0-9]+}", h.GetCheck).Methods(http.MethodGet)
	api.HandleFunc("/inventory-checks/{id:[0-9]+}", h.UpdateCheck).Methods(http.MethodPut)
	api.HandleFunc("/inventory-checks/{id:[0-9]+}", h.DeleteCheck).Methods(http.MethodDelete)
	api.HandleFunc("/inventory-checks/{id:[0-9]+}/start", h.StartCheck).Methods(http.MethodPost)
	api.HandleFunc("/inventory-checks/{id:[0-9]+}/complete", h.CompleteCheck).Methods(http.MethodPost)
	api.HandleFunc("/inventory-checks/{id:[0-9]+}/cancel", h.CancelCheck).Methods(http.MethodPost)
	api.HandleFunc("/inventory-checks/{id:[0-9]+}/items", h.AddCheckItem).Methods(http.MethodPost)
	api.HandleFunc("/inventory-checks/{id:[0-9]+}/items/bulk-add", h.BulkAddCheckItems).Methods(http.MethodPost)
	api.HandleFunc("/inventory-checks/{id:[0-9]+}/items/bulk-update", h.BulkUpdateCheckItems).Methods(http.MethodPost)
	api.HandleFunc("/inventory-checks/{id:[0-9]+}/items/{itemId:[0-9]+}", h.UpdateCheckItem).Methods(http.MethodPut)
	api.HandleFunc("/inventory-checks/{id:[0-9]+}/items/{itemId:[0-9]+}", h.DeleteCheckItem).Methods(http.MethodDelete)
	api.HandleFunc("/inventory-checks/{id:[0-9]+}/adjustments", h.CreateAdjustmentFromCheck).Methods(http.MethodPost)
	api.HandleFunc("/inventory-checks/{id:[0-9]+}/history", h.CheckHistory).Methods(http.MethodGet)
	api.HandleFunc("/inventory-checks/{id:[0-9]+}/comments", h.ListCheckComments).Methods(http.MethodGet)
	api.HandleFunc("/inventory-checks/{id:[0-9]+}/comments", h.AddCheckComment).Methods(http.MethodPost)
	api.HandleFunc("/inventory-checks/{id:[0-9]+}/comments/{commentId:[0-9]+}", h.DeleteCheckComment).Methods(http.MethodDelete)

	api.HandleFunc("/inventory-adjustments", h.ListAdjustments).Methods(http.MethodGet)
	api.HandleFunc("/inventory-adjustments", h.CreateManualAdjustment).Methods(http.MethodPost)
	api.HandleFunc("/inventory-adjustments/bulk-approve", h.BulkApprove).Methods(http.MethodPost)
	api.HandleFunc("/inventory-adjustments/bulk-reject", h.BulkReject).Methods(http.MethodPost)
	api.HandleFunc("/inventory-adjustments/{id:[0-9]+}", h.GetAdjustment).Methods(http.MethodGet)
	api.HandleFunc("/inventory-adjustments/{id:[0-9]+}", h.DeleteAdjustment).Methods(http.MethodDelete)
	api.HandleFunc("/inventory-adjustments/{id:[0-9]+}/approve", h.ApproveAdjustment).Methods(http.MethodPost)
	api.HandleFunc("/inventory-adjustments/{id:[0-9]+}/reject", h.RejectAdjustment).Methods(http.MethodPost)
	api.HandleFunc("/inventory-adjustments/{id:[0-9]+}/history", h.AdjustmentHistory).Methods(http.MethodGet)
	api.HandleFunc("/inventory-adjustments/{id:[0-9]+}/comments", h.ListComments).Methods(http.MethodGet)
	api.HandleFunc("/inventory-adjustments/{id:[0-9]+}/comments", h.AddComment).Methods(http.MethodPost)
	api.HandleFunc("/inventory-adjustments/{id:[0-9]+}/comments/{commentId:[0-9]+}", h.DeleteComment).Methods(http.MethodDelete)

	api.HandleFunc("/stock-transactions", h.ListStockTransactions).Methods(http.MethodGet)
}

// Pinger reports database reachability.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// RegisterHealthCheck registers health check endpoint
// @Summary Health check
// @Description Check service health and database connectivity
// @Tags Health
// @Produce json
// @Success 200 {object} Response
// @Failure 503 {object} Response
// @Router /health [get]
func (h *InventoryHandler) RegisterHealthCheck(router *mux.Router, db Pinger) {
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		if err := db.PingContext(r.Context()); err != nil {
			logger.Error(r.Context()).Err(err).Msg("Health check failed")
			respondJSON(w, http.StatusServiceUnavailable, Response{
				Success: false,
				Error:   "Database unavailable",
			})
			return
		}

		respondJSON(w, http.StatusOK, Response{
			Success: true,
			Message: "Inventory service is healthy",
		})
	}).Methods(http.MethodGet)
}

// CreateCheck godoc
// @Summary Create inventory check
// @Description Opens a counting session with optional initial items
// @Tags Checks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body createCheckRequest true "Request"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/inventory-checks [post]
func (h *InventoryHandler) CreateCheck(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOrFail(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req createCheckRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}

	check, err := h.commands.CreateCheck.Handle(r.Context(), req.command(actor))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, Response{
		Success: true,
		Message: "Inventory check created successfully",
		Data:    check,
	})
}

// GetCheck godoc
// @Summary Get inventory check
// @Description Returns the check with its active items
// @Tags Checks
// @Security BearerAuth
// @Produce json
// @Param id path int true "Resource ID"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/inventory-checks/{id} [get]
func (h *InventoryHandler) GetCheck(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	check, err := h.queries.GetCheck.Handle(r.Context(), query.GetCheckQuery{ID: id})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: check})
}

// ListChecks godoc
// @Summary List inventory checks
// @Description Filters by scope, status and check date, latest first. Items are omitted.
// @Tags Checks
// @Security BearerAuth
// @Produce json
// @Param warehouse_id query int false "warehouse_id"
// @Param zone_id query int false "zone_id"
// @Param bin_id query int false "bin_id"
// @Param status query string false "Draft, InProgress, Completed or Cancelled"
// @Param from query string false "RFC 3339 or YYYY-MM-DD"
// @Param to query string false "RFC 3339 or YYYY-MM-DD"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Router /api/v1/inventory-checks [get]
func (h *InventoryHandler) ListChecks(w http.ResponseWriter, r *http.Request) {
	filter, err := checkFilter(r.URL.Query())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	page, err := h.queries.ListChecks.Handle(r.Context(), query.ListChecksQuery{Filter: filter})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: page})
}

// UpdateCheck godoc
// @Summary Update inventory check
// @Description Edits the header of a draft or in-progress check. Omitted fields are kept.
// @Tags Checks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Resource ID"
// @Param request body updateCheckRequest true "Request"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/inventory-checks/{id} [put]
func (h *InventoryHandler) UpdateCheck(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOrFail(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req updateCheckRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}

	check, err := h.commands.UpdateCheck.Handle(r.Context(), req.command(id, actor))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Inventory check updated successfully", Data: check})
}

// StartCheck godoc
// @Summary Start inventory check
// @Description Moves a draft check to InProgress
// @Tags Checks
// @Security BearerAuth
// @Produce json
// @Param id path int true "Resource ID"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/inventory-checks/{id}/start [post]
func (h *InventoryHandler) StartCheck(w http.ResponseWriter, r *http.Request) {
	h.checkTransition(w, r, h.commands.StartCheck.Handle, "Inventory check started")
}

// CompleteCheck godoc
// @Summary Complete inventory check
// @Description Freezes system quantities and closes the check for editing
// @Tags Checks
// @Security BearerAuth
// @Produce json
// @Param id path int true "Resource ID"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/inventory-checks/{id}/complete [post]
func (h *InventoryHandler) CompleteCheck(w http.ResponseWriter, r *http.Request) {
	h.checkTransition(w, r, h.commands.CompleteCheck.Handle, "Inventory check completed")
}

// CancelCheck godoc
// @Summary Cancel inventory check
// @Description Abandons a check that is not completed
// @Tags Checks
// @Security BearerAuth
// @Produce json
// @Param id path int true "Resource ID"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/inventory-checks/{id}/cancel [post]
func (h *InventoryHandler) CancelCheck(w http.ResponseWriter, r *http.Request) {
	h.checkTransition(w, r, h.commands.CancelCheck.Handle, "Inventory check cancelled")
}

func (h *InventoryHandler) checkTransition(
	w http.ResponseWriter,
	r *http.Request,
	handle func(context.Context, command.CheckCommand) (*domain.Check, error),
	message string,
) {
	actor, err := actorOrFail(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	check, err := handle(r.Context(), command.CheckCommand{CheckID: id, Actor: actor})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Message: message, Data: check})
}

// DeleteCheck godoc
// @Summary Delete inventory check
// @Description Soft deletes a check none of whose items were adjusted
// @Tags Checks
// @Security BearerAuth
// @Produce json
// @Param id path int true "Resource ID"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/inventory-checks/{id} [delete]
func (h *InventoryHandler) DeleteCheck(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOrFail(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.commands.DeleteCheck.Handle(r.Context(), command.CheckCommand{CheckID: id, Actor: actor}); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Inventory check deleted successfully"})
}

// AddCheckItem godoc
// @Summary Add check item
// @Description Counts one more part in an editable check
// @Tags Checks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Resource ID"
// @Param request body checkItemRequest true "Request"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/inventory-checks/{id}/items [post]
func (h *InventoryHandler) AddCheckItem(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOrFail(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req checkItemRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}

	item, err := h.commands.AddCheckItem.Handle(r.Context(), command.AddCheckItemCommand{
		CheckID:        id,
		PartID:         req.PartID,
		ActualQuantity: req.ActualQuantity,
		Notes:          req.Notes,
		Actor:          actor,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, Response{Success: true, Message: "Check item added", Data: item})
}

// UpdateCheckItem godoc
// @Summary Update check item
// @Description Changes the counted quantity and re-derives the discrepancy
// @Tags Checks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Resource ID"
// @Param itemId path int true "Check item ID"
// @Param request body updateCheckItemRequest true "Request"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/inventory-checks/{id}/items/{itemId} [put]
func (h *InventoryHandler) UpdateCheckItem(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOrFail(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	itemID, err := pathID(r, "itemId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req updateCheckItemRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}
	if req.ActualQuantity == nil {
		h.respondError(w, r, domain.Validationf("actual_quantity is required"))
		return
	}

	item, err := h.commands.UpdateCheckItem.Handle(r.Context(), command.UpdateCheckItemCommand{
		CheckID:        id,
		ItemID:         itemID,
		PartID:         req.PartID,
		ActualQuantity: *req.ActualQuantity,
		Notes:          req.Notes,
		Actor:          actor,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Check item updated", Data: item})
}

// DeleteCheckItem godoc
// @Summary Delete check item
// @Description Removes an item from an editable check
// @Tags Checks
// @Security BearerAuth
// @Produce json
// @Param id path int true "Resource ID"
// @Param itemId path int true "Check item ID"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/inventory-checks/{id}/items/{itemId} [delete]
func (h *InventoryHandler) DeleteCheckItem(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOrFail(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	itemID, err := pathID(r, "itemId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	err = h.commands.DeleteCheckItem.Handle(r.Context(), command.DeleteCheckItemCommand{CheckID: id, ItemID: itemID, Actor: actor})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Check item deleted"})
}

// BulkAddCheckItems godoc
// @Summary Bulk add check items
// @Description Counts several parts at once; each part succeeds or fails on its own
// @Tags Checks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Resource ID"
// @Param request body bulkAddItemsRequest true "Request"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/inventory-checks/{id}/items/bulk-add [post]
func (h *InventoryHandler) BulkAddCheckItems(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOrFail(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req bulkAddItemsRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.commands.BulkAddCheckItems.Handle(r.Context(), command.BulkAddCheckItemsCommand{
		CheckID: id,
		Items:   itemInputs(req.Items),
		Actor:   actor,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondBulk(w, "check items", "added", result)
}

// BulkUpdateCheckItems godoc
// @Summary Bulk update check items
// @Description Applies one counted quantity or note to several items of the check
// @Tags Checks
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Resource ID"
// @Param request body bulkUpdateItemsRequest true "Request"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/inventory-checks/{id}/items/bulk-update [post]
func (h *InventoryHandler) BulkUpdateCheckItems(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOrFail(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req bulkUpdateItemsRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.commands.BulkUpdateCheckItems.Handle(r.Context(), command.BulkUpdateCheckItemsCommand{
		CheckID:        id,
		ItemIDs:        req.ItemIDs,
		ActualQuantity: req.ActualQuantity,
		Notes:          req.Notes,
		Actor:          actor,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondBulk(w, "check items", "updated", result)
}

// CheckHistory godoc
// @Summary Inventory check history
// @Description Audit entries of the check and its active items, newest first
// @Tags Checks
// @Security BearerAuth
// @Produce json
// @Param id path int true "Resource ID"
// @Param from query string false "RFC 3339 or YYYY-MM-DD"
// @Param to query string false "RFC 3339 or YYYY-MM-DD"
// @Param action query string false "Action"
// @Param limit query int false "Limit"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/inventory-checks/{id}/history [get]
func (h *InventoryHandler) CheckHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	q := r.URL.Query()
	from, to, err := queryRange(q)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	limit, err := queryInt(q, "limit")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	logs, err := h.queries.CheckHistory.Handle(r.Context(), query.GetCheckHistoryQuery{
		CheckID: id,
		From:    from,
		To:      to,
		Action:  q.Get("action"),
		Limit:   limit,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: logs})
}

// ListCheckComments godoc
// @Summary List check comments
// @Description Comments on an inventory check, newest first
// @Tags Comments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Resource ID"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/inventory-checks/{id}/comments [get]
func (h *InventoryHandler) ListCheckComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	comments, err := h.queries.ListCheckComments.Handle(r.Context(), query.ListCheckCommentsQuery{CheckID: id})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: comments})
}

// AddCheckComment godoc
// @Summary Add check comment
// @Description Adds a comment to an inventory check in any status
// @Tags Comments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Resource ID"
// @Param request body commentRequest true "Request"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/inventory-checks/{id}/comments [post]
func (h *InventoryHandler) AddCheckComment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOrFail(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}

	comment, err := h.commands.AddCheckComment.Handle(r.Context(), command.AddCheckCommentCommand{CheckID: id, Text: req.Text, Actor: actor})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, Response{Success: true, Message: "Comment added", Data: comment})
}

// DeleteCheckComment godoc
// @Summary Delete check comment
// @Description Soft deletes a comment of the inventory check
// @Tags Comments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Resource ID"
// @Param commentId path int true "Comment ID"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/inventory-checks/{id}/comments/{commentId} [delete]
func (h *InventoryHandler) DeleteCheckComment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOrFail(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	commentID, err := pathID(r, "commentId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	err = h.commands.DeleteCheckComment.Handle(r.Context(), command.DeleteCheckCommentCommand{CheckID: id, CommentID: commentID, Actor: actor})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Comment deleted"})
}

// CreateAdjustmentFromCheck godoc
// @Summary Propose adjustment from check
// @Description Turns unconsumed discrepancies of a completed check into a pending adjustment
// @Tags Adjustments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Resource ID"
// @Param request body createFromCheckRequest true "Request"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/inventory-checks/{id}/adjustments [post]
func (h *InventoryHandler) CreateAdjustmentFromCheck(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOrFail(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req createFromCheckRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		h.respondError(w, r, err)
		return
	}

	adj, err := h.commands.CreateAdjustmentFromCheck.Handle(r.Context(), command.CreateAdjustmentFromCheckCommand{
		CheckID: id,
		Reason:  req.Reason,
		Notes:   req.Notes,
		Actor:   actor,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, Response{Success: true, Message: "Inventory adjustment created successfully", Data: adj})
}

// CreateManualAdjustment godoc
// @Summary Create manual adjustment
// @Description Proposes a pending adjustment from explicit changes
// @Tags Adjustments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body createManualAdjustmentRequest true "Request"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/inventory-adjustments [post]
func (h *InventoryHandler) CreateManualAdjustment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOrFail(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req createManualAdjustmentRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}

	adj, err := h.commands.CreateManualAdjustment.Handle(r.Context(), req.command(actor))
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, Response{Success: true, Message: "Inventory adjustment created successfully", Data: adj})
}

// ListAdjustments godoc
// @Summary List adjustments
// @Description Filters by scope, status, source check and date range, newest first
// @Tags Adjustments
// @Security BearerAuth
// @Produce json
// @Param warehouse_id query int false "warehouse_id"
// @Param zone_id query int false "zone_id"
// @Param bin_id query int false "bin_id"
// @Param inventory_check_id query int false "inventory_check_id"
// @Param status query string false "Pending, Approved or Rejected"
// @Param from query string false "RFC 3339 or YYYY-MM-DD"
// @Param to query string false "RFC 3339 or YYYY-MM-DD"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Router /api/v1/inventory-adjustments [get]
func (h *InventoryHandler) ListAdjustments(w http.ResponseWriter, r *http.Request) {
	filter, err := adjustmentFilter(r.URL.Query())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	page, err := h.queries.ListAdjustments.Handle(r.Context(), query.ListAdjustmentsQuery{Filter: filter})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: page})
}

// GetAdjustment godoc
// @Summary Get adjustment
// @Description Returns the adjustment with its items
// @Tags Adjustments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Resource ID"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/inventory-adjustments/{id} [get]
func (h *InventoryHandler) GetAdjustment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	adj, err := h.queries.GetAdjustment.Handle(r.Context(), query.GetAdjustmentQuery{ID: id})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: adj})
}

// ApproveAdjustment godoc
// @Summary Approve adjustment
// @Description Applies a pending adjustment to stock and appends ledger entries
// @Tags Adjustments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Resource ID"
// @Param request body approveRequest true "Request"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/inventory-adjustments/{id}/approve [post]
func (h *InventoryHandler) ApproveAdjustment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOrFail(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req approveRequest
	if err := decodeJSON(w, r, &req, true); err != nil {
		h.respondError(w, r, err)
		return
	}

	adj, err := h.commands.ApproveAdjustment.Handle(r.Context(), command.ApproveAdjustmentCommand{
		AdjustmentID: id,
		Notes:        req.Notes,
		Actor:        actor,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Inventory adjustment approved", Data: adj})
}

// RejectAdjustment godoc
// @Summary Reject adjustment
// @Description Rejects a pending adjustment with a reason
// @Tags Adjustments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Resource ID"
// @Param request body rejectRequest true "Request"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/inventory-adjustments/{id}/reject [post]
func (h *InventoryHandler) RejectAdjustment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOrFail(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req rejectRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}

	adj, err := h.commands.RejectAdjustment.Handle(r.Context(), command.RejectAdjustmentCommand{
		AdjustmentID: id,
		Reason:       req.Reason,
		Actor:        actor,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Inventory adjustment rejected", Data: adj})
}

// DeleteAdjustment godoc
// @Summary Delete adjustment
// @Description Soft deletes a non-approved adjustment and releases its check items
// @Tags Adjustments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Resource ID"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/inventory-adjustments/{id} [delete]
func (h *InventoryHandler) DeleteAdjustment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOrFail(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	if err := h.commands.DeleteAdjustment.Handle(r.Context(), command.DeleteAdjustmentCommand{AdjustmentID: id, Actor: actor}); err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Inventory adjustment deleted successfully"})
}

// BulkApprove godoc
// @Summary Bulk approve adjustments
// @Description Approves each adjustment in isolation and reports per-ticket outcomes
// @Tags Adjustments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body bulkApproveRequest true "Request"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/inventory-adjustments/bulk-approve [post]
func (h *InventoryHandler) BulkApprove(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOrFail(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req bulkApproveRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.commands.BulkApprove.Handle(r.Context(), command.BulkApproveCommand{
		AdjustmentIDs: req.AdjustmentIDs,
		Notes:         req.Notes,
		Actor:         actor,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondBulk(w, "inventory adjustments", "approved", result)
}

// BulkReject godoc
// @Summary Bulk reject adjustments
// @Description Rejects each adjustment in isolation and reports per-ticket outcomes
// @Tags Adjustments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param request body bulkRejectRequest true "Request"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/inventory-adjustments/bulk-reject [post]
func (h *InventoryHandler) BulkReject(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOrFail(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req bulkRejectRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}

	result, err := h.commands.BulkReject.Handle(r.Context(), command.BulkRejectCommand{
		AdjustmentIDs: req.AdjustmentIDs,
		Reason:        req.Reason,
		Actor:         actor,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondBulk(w, "inventory adjustments", "rejected", result)
}

// respondBulk reports a batch with 200. Success is false only when every
// entry failed.
func respondBulk(w http.ResponseWriter, noun, verb string, result *command.BulkResult) {
	message := "All " + noun + " " + verb
	if result.FailureCount > 0 {
		message = "Some " + noun + " could not be " + verb
	}
	respondJSON(w, http.StatusOK, Response{Success: result.SuccessCount > 0 || result.FailureCount == 0, Message: message, Data: result})
}

// AdjustmentHistory godoc
// @Summary Adjustment history
// @Description Audit entries of the adjustment and its items, newest first
// @Tags Adjustments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Resource ID"
// @Param from query string false "RFC 3339 or YYYY-MM-DD"
// @Param to query string false "RFC 3339 or YYYY-MM-DD"
// @Param action query string false "Action"
// @Param limit query int false "Limit"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/inventory-adjustments/{id}/history [get]
func (h *InventoryHandler) AdjustmentHistory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	q := r.URL.Query()
	from, to, err := queryRange(q)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	limit, err := queryInt(q, "limit")
	if err != nil {
		h.respondError(w, r, err)
		return
	}

	logs, err := h.queries.AdjustmentHistory.Handle(r.Context(), query.GetAdjustmentHistoryQuery{
		AdjustmentID: id,
		From:         from,
		To:           to,
		Action:       q.Get("action"),
		Limit:        limit,
	})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: logs})
}

// ListComments godoc
// @Summary List comments
// @Description Comments on an adjustment, newest first
// @Tags Comments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Resource ID"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Router /api/v1/inventory-adjustments/{id}/comments [get]
func (h *InventoryHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	comments, err := h.queries.ListComments.Handle(r.Context(), query.ListCommentsQuery{AdjustmentID: id})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: comments})
}

// AddComment godoc
// @Summary Add comment
// @Description Adds a comment to an adjustment
// @Tags Comments
// @Security BearerAuth
// @Accept json
// @Produce json
// @Param id path int true "Resource ID"
// @Param request body commentRequest true "Request"
// @Success 201 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/inventory-adjustments/{id}/comments [post]
func (h *InventoryHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOrFail(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	var req commentRequest
	if err := decodeJSON(w, r, &req, false); err != nil {
		h.respondError(w, r, err)
		return
	}

	comment, err := h.commands.AddComment.Handle(r.Context(), command.AddCommentCommand{AdjustmentID: id, Text: req.Text, Actor: actor})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusCreated, Response{Success: true, Message: "Comment added", Data: comment})
}

// DeleteComment godoc
// @Summary Delete comment
// @Description Soft deletes a comment of the adjustment
// @Tags Comments
// @Security BearerAuth
// @Produce json
// @Param id path int true "Resource ID"
// @Param commentId path int true "Comment ID"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Failure 404 {object} Response
// @Failure 409 {object} Response
// @Router /api/v1/inventory-adjustments/{id}/comments/{commentId} [delete]
func (h *InventoryHandler) DeleteComment(w http.ResponseWriter, r *http.Request) {
	actor, err := actorOrFail(r)
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	id, err := pathID(r, "id")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	commentID, err := pathID(r, "commentId")
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	err = h.commands.DeleteComment.Handle(r.Context(), command.DeleteCommentCommand{AdjustmentID: id, CommentID: commentID, Actor: actor})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Message: "Comment deleted"})
}

// ListStockTransactions godoc
// @Summary List stock transactions
// @Description Ledger entries filtered by part, reference and date range
// @Tags Ledger
// @Security BearerAuth
// @Produce json
// @Param part_id query int false "Part ID"
// @Param reference_number query string false "Adjustment code"
// @Param from query string false "RFC 3339 or YYYY-MM-DD"
// @Param to query string false "RFC 3339 or YYYY-MM-DD"
// @Param page query int false "Page (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} Response
// @Failure 400 {object} Response
// @Failure 401 {object} Response
// @Router /api/v1/stock-transactions [get]
func (h *InventoryHandler) ListStockTransactions(w http.ResponseWriter, r *http.Request) {
	filter, err := stockTransactionFilter(r.URL.Query())
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	page, err := h.queries.ListStockTransactions.Handle(r.Context(), query.ListStockTransactionsQuery{Filter: filter})
	if err != nil {
		h.respondError(w, r, err)
		return
	}
	respondJSON(w, http.StatusOK, Response{Success: true, Data: page})
}

// respondError maps the error taxonomy onto HTTP statuses. Unexpected errors
// are logged and hidden from the caller.
func (h *InventoryHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	resp := Response{Success: false, Error: err.Error()}
	status := http.StatusInternalServerError

	switch domain.KindOf(err) {
	case domain.KindValidation:
		status = http.StatusBadRequest
		if errors.Is(err, domain.ErrNotFound) {
			status = http.StatusNotFound
		}
	case domain.KindConflict:
		status = http.StatusConflict
	case domain.KindPersistenceConflict:
		status = http.StatusConflict
		resp.Retryable = true
	default:
		logger.Error(r.Context()).
			Err(err).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("Request failed")
		resp.Error = "Internal server error"
	}

	respondJSON(w, status, resp)
}

// respondJSON sends a JSON response
func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		logger.Logger.Warn().Err(err).Msg("Failed to encode response")
	}
}
