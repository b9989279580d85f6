package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/vegatran/GaraManager-sub003/internal/inventory/domain"
)

type wantedAlert struct {
	alertType domain.AlertType
	severity  string
	message   string
}

// desiredAlert returns the alert a part should carry at its current stock.
func desiredAlert(part *domain.Part) (wantedAlert, bool) {
	qty, minimum := part.QuantityInStock, part.MinimumStock
	switch {
	case qty == 0:
		return wantedAlert{
			alertType: domain.AlertOutOfStock,
			severity:  "Critical",
			message:   fmt.Sprintf("Part %s (%s) is out of stock", part.PartName, part.PartNumber),
		}, true
	case minimum > 0 && qty <= minimum:
		severity := "Medium"
		if qty*2 <= minimum {
			severity = "High"
		}
		return wantedAlert{
			alertType: domain.AlertLowStock,
			severity:  severity,
			message:   fmt.Sprintf("Part %s (%s) is running low: %d in stock, minimum %d", part.PartName, part.PartNumber, qty, minimum),
		}, true
	}
	return wantedAlert{}, false
}

// reconcileAlerts opens the alert the part needs and resolves any other
// open alert of that part.
func reconcileAlerts(ctx context.Context, alerts domain.AlertRepository, part *domain.Part, now time.Time) error {
	open, err := alerts.OpenForPart(ctx, part.ID)
	if err != nil {
		return err
	}

	want, needed := desiredAlert(part)
	var resolve []uint
	present := false
	for _, a := range open {
		if needed && a.AlertType == want.alertType {
			present = true
			continue
		}
		resolve = append(resolve, a.ID)
	}

	if err := alerts.Resolve(ctx, resolve, now); err != nil {
		return err
	}
	if !needed || present {
		return nil
	}
	return alerts.Create(ctx, &domain.StockAlert{
		PartID:          part.ID,
		AlertType:       want.alertType,
		Severity:        want.severity,
		Message:         want.message,
		CurrentQuantity: part.QuantityInStock,
		MinimumQuantity: part.MinimumStock,
		AlertDate:       now,
	})
}
