//go:build wireinject
// +build wireinject

package inventory

import (
	"github.com/google/wire"
	"gorm.io/gorm"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/delivery/http"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/usecase/command"
	"github.com/vegatran/GaraManager-sub003/internal/inventory/usecase/query"
	"github.com/vegatran/GaraManager-sub003/pkg/lock"
)

// InitializeService initializes the HTTP handler and the notifier with all dependencies
func InitializeService(
	db *gorm.DB,
	locker lock.Locker,
	auditor command.Auditor,
	history query.HistoryReader,
	broadcaster command.Broadcaster,
	limit command.BulkLimit,
) (*Service, error) {
	wire.Build(
		AllHandlersSet,
		http.NewInventoryHandler,
		wire.Struct(new(Service), "*"),
	)
	return nil, nil
}
