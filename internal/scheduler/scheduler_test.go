package scheduler

import (
	"testing"

	"camera-rental-backend/internal/config"
	"camera-rental-backend/internal/jobs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewScheduler(t *testing.T) {
	t.Run("Registers Both Jobs", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{
			MarkOverdueRentals:  "0 0 1 * * *",
			SyncEquipmentStatus: "0 */15 * * * *",
		}}
		s, err := NewScheduler(jobs.NewJobRunner(nil, nil, cfg))
		require.NoError(t, err)
		assert.Equal(t, 2, s.Entries())
	})

	t.Run("Rejects Bad Spec", func(t *testing.T) {
		cfg := &config.Config{Scheduler: config.SchedulerConfig{
			MarkOverdueRentals:  "every night",
			SyncEquipmentStatus: "0 */15 * * * *",
		}}
		_, err := NewScheduler(jobs.NewJobRunner(nil, nil, cfg))
		assert.Error(t, err)
	})
}
