package inventory

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/delivery/http"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/ledger"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/repository"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/sequence"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/usecase/command"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/usecase/query"
)

// Service is the assembled inventory core.
type Service struct {
	Handler  *http.InventoryHandler
	Notifier *command.Notifier
}

// ProvideStore provides the gorm unit of work
func ProvideStore(db *gorm.DB) domain.Store {
	return repository.NewGormStore(db)
}

// Wire sets
var RepositorySet = wire.NewSet(
	ProvideStore,
)

var EngineSet = wire.NewSet(
	sequence.NewGenerator,
	ledger.NewApplier,
	command.NewNotifier,
)

var CommandHandlerSet = wire.NewSet(
	command.NewCreateCheckHandler,
	command.NewStartCheckHandler,
	command.NewCompleteCheckHandler,
	command.NewCancelCheckHandler,
	command.NewUpdateCheckHandler,
	command.NewDeleteCheckHandler,
	command.NewAddCheckItemHandler,
	command.NewUpdateCheckItemHandler,
	command.NewDeleteCheckItemHandler,
	command.NewBulkAddCheckItemsHandler,
	command.NewBulkUpdateCheckItemsHandler,
	command.NewAddCheckCommentHandler,
	command.NewDeleteCheckCommentHandler,
	command.NewCreateAdjustmentFromCheckHandler,
	command.NewCreateManualAdjustmentHandler,
	command.NewApproveAdjustmentHandler,
	command.NewRejectAdjustmentHandler,
	command.NewDeleteAdjustmentHandler,
	command.NewBulkApproveHandler,
	command.NewBulkRejectHandler,
	command.NewAddCommentHandler,
	command.NewDeleteCommentHandler,
	wire.Struct(new(http.Commands), "*"),
)

var QueryHandlerSet = wire.NewSet(
	query.NewGetCheckHandler,
	query.NewListChecksHandler,
	query.NewGetCheckHistoryHandler,
	query.NewListCheckCommentsHandler,
	query.NewGetAdjustmentHandler,
	query.NewListAdjustmentsHandler,
	query.NewGetAdjustmentHistoryHandler,
	query.NewListCommentsHandler,
	query.NewListStockTransactionsHandler,
	wire.Struct(new(http.Queries), "*"),
)

var AllHandlersSet = wire.NewSet(
	RepositorySet,
	EngineSet,
	CommandHandlerSet,
	QueryHandlerSet,
)
