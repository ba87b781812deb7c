package jobs

import (
	"context"

	"camera-rental-backend/internal/logger"
)

// SyncEquipmentStatus reconciles unit status with open rentals: units on an open,
// unreturned rental become Rented and Rented units on no such rental become
// Available. Units in Maintenance are never touched.
func (jr *JobRunner) SyncEquipmentStatus() error {
	return jr.runWithRecovery("sync_equipment_status", func(ctx context.Context) error {
		changed, err := jr.equipment.SyncStatusWithRentals(ctx)
		if err != nil {
			return err
		}
		if changed > 0 {
			logger.Warn("Equipment status drift corrected", "units", changed)
		} else {
			logger.Debug("Equipment status in sync")
		}
		return nil
	})
}
