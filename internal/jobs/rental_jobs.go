package jobs

import (
	"context"

	"camera-rental-backend/internal/logger"
	"camera-rental-backend/internal/utils"
)

// MarkOverdueRentals moves Active rentals whose end date has passed to Overdue.
// Returned rentals are left alone.
func (jr *JobRunner) MarkOverdueRentals() error {
	return jr.runWithRecovery("mark_overdue_rentals", func(ctx context.Context) error {
		ids, err := jr.rentals.MarkOverdue(ctx, utils.Truncate(jr.now()))
		if err != nil {
			return err
		}
		logger.Info("Marked rentals as overdue", "count", len(ids))
		for _, id := range ids {
			logger.Debug("Marked rental as overdue", "rentalID", id)
		}
		return nil
	})
}
