package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/usecase/command"
)

const maxBodyBytes = 1 << 20

type scopeRequest struct {
	WarehouseID *uint `json:"warehouse_id"`
	ZoneID      *uint `json:"zone_id"`
	BinID       *uint `json:"bin_id"`
}

func (s scopeRequest) scope() domain.Scope {
	return domain.Scope{WarehouseID: s.WarehouseID, ZoneID: s.ZoneID, BinID: s.BinID}
}

type checkItemRequest struct {
	PartID         uint   `json:"part_id"`
	ActualQuantity int    `json:"actual_quantity"`
	Notes          string `json:"notes"`
}

type createCheckRequest struct {
	Code        string     `json:"code"`
	Name        string     `json:"name"`
	Description string     `json:"description"`
	CheckDate   *time.Time `json:"check_date"`
	scopeRequest
	Notes string             `json:"notes"`
	Items []checkItemRequest `json:"items"`
}

func itemInputs(reqs []checkItemRequest) []command.CheckItemInput {
	items := make([]command.CheckItemInput, 0, len(reqs))
	for _, it := range reqs {
		items = append(items, command.CheckItemInput{PartID: it.PartID, ActualQuantity: it.ActualQuantity, Notes: it.Notes})
	}
	return items
}

func (req createCheckRequest) command(actor domain.Actor) command.CreateCheckCommand {
	return command.CreateCheckCommand{
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		CheckDate:   req.CheckDate,
		Scope:       req.scope(),
		Notes:       req.Notes,
		Items:       itemInputs(req.Items),
		Actor:       actor,
	}
}

// updateCheckRequest leaves absent fields unchanged. A present scope
// replaces the whole scope.
type updateCheckRequest struct {
	Code        *string       `json:"code"`
	Name        *string       `json:"name"`
	Description *string       `json:"description"`
	CheckDate   *time.Time    `json:"check_date"`
	Scope       *scopeRequest `json:"scope"`
	Notes       *string       `json:"notes"`
}

func (req updateCheckRequest) command(id uint, actor domain.Actor) command.UpdateCheckCommand {
	cmd := command.UpdateCheckCommand{
		CheckID:     id,
		Code:        req.Code,
		Name:        req.Name,
		Description: req.Description,
		CheckDate:   req.CheckDate,
		Notes:       req.Notes,
		Actor:       actor,
	}
	if req.Scope != nil {
		scope := req.Scope.scope()
		cmd.Scope = &scope
	}
	return cmd
}

type bulkAddItemsRequest struct {
	Items []checkItemRequest `json:"items"`
}

type bulkUpdateItemsRequest struct {
	ItemIDs        []uint  `json:"item_ids"`
	ActualQuantity *int    `json:"actual_quantity"`
	Notes          *string `json:"notes"`
}

type updateCheckItemRequest struct {
	PartID         uint    `json:"part_id"`
	ActualQuantity *int    `json:"actual_quantity"`
	Notes          *string `json:"notes"`
}

type createFromCheckRequest struct {
	Reason string `json:"reason"`
	Notes  string `json:"notes"`
}

type manualItemRequest struct {
	PartID               uint   `json:"part_id"`
	QuantityChange       int    `json:"quantity_change"`
	SystemQuantityBefore int    `json:"system_quantity_before"`
	SystemQuantityAfter  int    `json:"system_quantity_after"`
	Notes                string `json:"notes"`
}

type createManualAdjustmentRequest struct {
	scopeRequest
	CheckID        *uint               `json:"inventory_check_id"`
	AdjustmentDate *time.Time          `json:"adjustment_date"`
	Reason         string              `json:"reason"`
	Notes          string              `json:"notes"`
	Items          []manualItemRequest `json:"items"`
}

func (req createManualAdjustmentRequest) command(actor domain.Actor) command.CreateManualAdjustmentCommand {
	items := make([]command.ManualItemInput, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, command.ManualItemInput{
			PartID:               it.PartID,
			QuantityChange:       it.QuantityChange,
			SystemQuantityBefore: it.SystemQuantityBefore,
			SystemQuantityAfter:  it.SystemQuantityAfter,
			Notes:                it.Notes,
		})
	}
	return command.CreateManualAdjustmentCommand{
		Scope:          req.scope(),
		CheckID:        req.CheckID,
		AdjustmentDate: req.AdjustmentDate,
		Reason:         req.Reason,
		Notes:          req.Notes,
		Items:          items,
		Actor:          actor,
	}
}

type approveRequest struct {
	Notes string `json:"notes"`
}

type rejectRequest struct {
	Reason string `json:"reason"`
}

type bulkApproveRequest struct {
	AdjustmentIDs []uint `json:"adjustment_ids"`
	Notes         string `json:"notes"`
}

type bulkRejectRequest struct {
	AdjustmentIDs []uint `json:"adjustment_ids"`
	Reason        string `json:"reason"`
}

type commentRequest struct {
	Text string `json:"text"`
}

// decodeJSON reads a JSON body. Optional bodies may be empty.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, optional bool) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			if optional {
				return nil
			}
			return domain.Validationf("request body is required")
		}
		return domain.Validationf("invalid request body: %v", err)
	}
	return nil
}

func pathID(r *http.Request, name string) (uint, error) {
	raw := mux.Vars(r)[name]
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, domain.Validationf("invalid %s %q", name, raw)
	}
	return uint(id), nil
}

func queryUint(q url.Values, name string) (*uint, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return nil, domain.Validationf("invalid %s %q", name, raw)
	}
	id := uint(v)
	return &id, nil
}

func queryInt(q url.Values, name string) (int, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, domain.Validationf("invalid %s %q", name, raw)
	}
	return v, nil
}

// queryTime accepts RFC 3339 timestamps or plain dates. A plain "to" date
// covers the whole day.
func queryTime(q url.Values, name string, endOfDay bool) (*time.Time, error) {
	raw := strings.TrimSpace(q.Get(name))
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, domain.Validationf("invalid %s %q, expected RFC 3339 or YYYY-MM-DD", name, raw)
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

func queryPage(q url.Values) (domain.Page, error) {
	number, err := queryInt(q, "page")
	if err != nil {
		return domain.Page{}, err
	}
	size, err := queryInt(q, "page_size")
	if err != nil {
		return domain.Page{}, err
	}
	return domain.Page{Number: number, Size: size}, nil
}

func queryRange(q url.Values) (from, to *time.Time, err error) {
	if from, err = queryTime(q, "from", false); err != nil {
		return nil, nil, err
	}
	if to, err = queryTime(q, "to", true); err != nil {
		return nil, nil, err
	}
	return from, to, nil
}

func checkFilter(q url.Values) (domain.CheckFilter, error) {
	var (
		f   domain.CheckFilter
		err error
	)
	if f.WarehouseID, err = queryUint(q, "warehouse_id"); err != nil {
		return f, err
	}
	if f.ZoneID, err = queryUint(q, "zone_id"); err != nil {
		return f, err
	}
	if f.BinID, err = queryUint(q, "bin_id"); err != nil {
		return f, err
	}
	if f.From, f.To, err = queryRange(q); err != nil {
		return f, err
	}
	if f.Page, err = queryPage(q); err != nil {
		return f, err
	}
	f.Status = domain.CheckStatus(strings.TrimSpace(q.Get("status")))
	return f, nil
}

func adjustmentFilter(q url.Values) (domain.AdjustmentFilter, error) {
	var (
		f   domain.AdjustmentFilter
		err error
	)
	if f.WarehouseID, err = queryUint(q, "warehouse_id"); err != nil {
		return f, err
	}
	if f.ZoneID, err = queryUint(q, "zone_id"); err != nil {
		return f, err
	}
	if f.BinID, err = queryUint(q, "bin_id"); err != nil {
		return f, err
	}
	if f.CheckID, err = queryUint(q, "inventory_check_id"); err != nil {
		return f, err
	}
	if f.From, f.To, err = queryRange(q); err != nil {
		return f, err
	}
	if f.Page, err = queryPage(q); err != nil {
		return f, err
	}
	f.Status = domain.AdjustmentStatus(strings.TrimSpace(q.Get("status")))
	return f, nil
}

func stockTransactionFilter(q url.Values) (domain.StockTransactionFilter, error) {
	var (
		f   domain.StockTransactionFilter
		err error
	)
	if f.PartID, err = queryUint(q, "part_id"); err != nil {
		return f, err
	}
	if f.From, f.To, err = queryRange(q); err != nil {
		return f, err
	}
	if f.Page, err = queryPage(q); err != nil {
		return f, err
	}
	f.ReferenceNumber = strings.TrimSpace(q.Get("reference_number"))
	return f, nil
}

func actorOrFail(r *http.Request) (domain.Actor, error) {
	actor, ok := ActorFromContext(r.Context())
	if !ok {
		return domain.Actor{}, fmt.Errorf("no actor on authenticated route %s", r.URL.Path)
	}
	return actor, nil
}
