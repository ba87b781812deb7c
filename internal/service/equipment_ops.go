package service

import (
	"context"
	"sync"

	"camera-rental-backend/internal/logger"
	"camera-rental-backend/internal/repository"

	"golang.org/x/sync/errgroup"
)

// reserveUnits moves every unit from Available to Rented concurrently. If any
// unit cannot be reserved, the units this call reserved are released again
// before the first error is returned.
func reserveUnits(ctx context.Context, repo repository.EquipmentRepository, ids []int32) error {
	if len(ids) == 0 {
		return nil
	}

	var (
		mu       sync.Mutex
		reserved []int32
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		g.Go(func() error {
			if err := repo.Reserve(gctx, id); err != nil {
				return err
			}
			mu.Lock()
			reserved = append(reserved, id)
			mu.Unlock()
			return nil
		})
	}

	err := g.Wait()
	if err != nil && len(reserved) > 0 {
		if _, relErr := releaseUnits(context.WithoutCancel(ctx), repo, reserved); relErr != nil {
			logger.ErrorContext(ctx, "Failed to release partially reserved equipment", "equipmentIDs", reserved, "error", relErr)
		}
	}
	return err
}

// releaseUnits moves units from Rented back to Available concurrently and returns
// the ids that actually changed. Units not in Rented are skipped. On error, the
// units this call released are reserved again.
func releaseUnits(ctx context.Context, repo repository.EquipmentRepository, ids []int32) ([]int32, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	var (
		mu       sync.Mutex
		released []int32
	)
	g, gctx := errgroup.WithContext(ctx)
	for _, id := range ids {
		g.Go(func() error {
			ok, err := repo.Release(gctx, id)
			if err != nil {
				return err
			}
			if ok {
				mu.Lock()
				released = append(released, id)
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if len(released) > 0 {
			if resErr := reserveUnits(context.WithoutCancel(ctx), repo, released); resErr != nil {
				logger.ErrorContext(ctx, "Failed to re-reserve partially released equipment", "equipmentIDs", released, "error", resErr)
			}
		}
		return nil, err
	}
	return released, nil
}
