package app

import (
	"context"

	"golang.org/x/sync/errgroup"

	"straycare/internal/types"
)

// Dashboard is the home-screen bundle.
type Dashboard struct {
	Stats   *types.AnimalStats
	Recent  []types.Animal
	MyStats *types.MyStats
}

// LoadDashboard fetches the home-screen data concurrently. MyStats is only
// requested for a signed-in user; any single failure fails the whole load
// so the caller shows one error instead of a half-filled screen.
func (a *App) LoadDashboard(ctx context.Context, recentLimit int) (*Dashboard, error) {
	var d Dashboard
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := a.Stats(ctx)
		if err != nil {
			return err
		}
		d.Stats = stats
		return nil
	})
	g.Go(func() error {
		recent, err := a.Recent(ctx, recentLimit)
		if err != nil {
			return err
		}
		d.Recent = recent
		return nil
	})
	if a.Session.IsAuthenticated() {
		g.Go(func() error {
			mine, err := a.MyStats(ctx)
			if err != nil {
				return err
			}
			d.MyStats = mine
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return &d, nil
}
