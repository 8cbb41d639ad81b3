package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"straycare/internal/querycache"
	"straycare/internal/services"
	"straycare/internal/types"
)

// Reads go through the cache: a fresh entry answers without a request, a
// stale or missing one triggers exactly one fetch however many callers
// arrive at once. Successful animal list and detail fetches are also
// written behind to the offline snapshot store.

func (a *App) snapshot(key querycache.Key, v any) {
	if a.Offline == nil {
		return
	}
	if err := a.Offline.Put(key.String(), key.Family, v); err != nil {
		a.Log.Warn("offline snapshot write failed", zap.String("key", key.String()), zap.Error(err))
	}
}

// ListAnimals returns a page of approved animals.
func (a *App) ListAnimals(ctx context.Context, filter services.ListFilter) (*types.Page[types.Animal], error) {
	key := querycache.NewKey(querycache.FamilyAnimalsList, filter)
	return querycache.Fetch(ctx, a.Cache, key, a.Config.ListTTL(), func(ctx context.Context) (*types.Page[types.Animal], error) {
		page, err := a.Animals.List(ctx, filter)
		if err != nil {
			return nil, err
		}
		a.snapshot(key, page)
		return page, nil
	})
}

// ListAnimalsOffline serves the most recent list snapshot without touching
// the network.
func (a *App) ListAnimalsOffline(filter services.ListFilter) (*types.Page[types.Animal], error) {
	if a.Offline == nil {
		return nil, fmt.Errorf("the offline store is not available")
	}
	key := querycache.NewKey(querycache.FamilyAnimalsList, filter)
	var page types.Page[types.Animal]
	if _, err := a.Offline.Get(key.String(), &page); err == nil {
		return &page, nil
	}
	// No snapshot for this exact filter; fall back to the newest list.
	if _, err := a.Offline.Latest(querycache.FamilyAnimalsList, &page); err != nil {
		return nil, fmt.Errorf("no offline animal list saved yet: %w", err)
	}
	return &page, nil
}

// GetAnimal returns one animal's detail.
func (a *App) GetAnimal(ctx context.Context, id string) (*types.Animal, error) {
	key := querycache.NewScopedKey(querycache.FamilyAnimalDetail, id, nil)
	return querycache.Fetch(ctx, a.Cache, key, a.Config.ListTTL(), func(ctx context.Context) (*types.Animal, error) {
		animal, err := a.Animals.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		a.snapshot(key, animal)
		return animal, nil
	})
}

// GetAnimalOffline serves a detail snapshot.
func (a *App) GetAnimalOffline(id string) (*types.Animal, error) {
	if a.Offline == nil {
		return nil, fmt.Errorf("the offline store is not available")
	}
	key := querycache.NewScopedKey(querycache.FamilyAnimalDetail, id, nil)
	var animal types.Animal
	if _, err := a.Offline.Get(key.String(), &animal); err != nil {
		return nil, fmt.Errorf("no offline snapshot for this animal: %w", err)
	}
	return &animal, nil
}

// Stats returns the public animal census.
func (a *App) Stats(ctx context.Context) (*types.AnimalStats, error) {
	key := querycache.NewKey(querycache.FamilyAnimalsStats, nil)
	return querycache.Fetch(ctx, a.Cache, key, a.Config.StatsTTL(), func(ctx context.Context) (*types.AnimalStats, error) {
		return a.Animals.Stats(ctx)
	})
}

type nearbyParams struct {
	Lat    float64 `json:"lat"`
	Lng    float64 `json:"lng"`
	Radius float64 `json:"radius"`
}

// Nearby returns animals around a coordinate.
func (a *App) Nearby(ctx context.Context, lat, lng, radiusKm float64) ([]types.Animal, error) {
	key := querycache.NewKey(querycache.FamilyAnimalsNearby, nearbyParams{Lat: lat, Lng: lng, Radius: radiusKm})
	return querycache.Fetch(ctx, a.Cache, key, a.Config.NearbyTTL(), func(ctx context.Context) ([]types.Animal, error) {
		return a.Animals.Nearby(ctx, lat, lng, radiusKm)
	})
}

// Recent returns the latest approved reports.
func (a *App) Recent(ctx context.Context, limit int) ([]types.Animal, error) {
	key := querycache.NewKey(querycache.FamilyAnimalsRecent, limit)
	return querycache.Fetch(ctx, a.Cache, key, a.Config.ListTTL(), func(ctx context.Context) ([]types.Animal, error) {
		return a.Animals.Recent(ctx, limit)
	})
}

type pageParams struct {
	Page int `json:"page"`
	Size int `json:"size"`
}

// Pending returns reports awaiting moderation (admin only).
func (a *App) Pending(ctx context.Context, page, size int) (*types.Page[types.Animal], error) {
	key := querycache.NewKey(querycache.FamilyAnimalsPending, pageParams{Page: page, Size: size})
	return querycache.Fetch(ctx, a.Cache, key, a.Config.NearbyTTL(), func(ctx context.Context) (*types.Page[types.Animal], error) {
		return a.Animals.Pending(ctx, page, size)
	})
}

// MyReports returns the signed-in user's reports.
func (a *App) MyReports(ctx context.Context, page, size int) (*types.Page[types.Animal], error) {
	key := querycache.NewKey(querycache.FamilyMyReports, pageParams{Page: page, Size: size})
	return querycache.Fetch(ctx, a.Cache, key, a.Config.ListTTL(), func(ctx context.Context) (*types.Page[types.Animal], error) {
		return a.Animals.MyReports(ctx, page, size)
	})
}

// MyStats returns the signed-in user's contribution counters.
func (a *App) MyStats(ctx context.Context) (*types.MyStats, error) {
	key := querycache.NewKey(querycache.FamilyMyStats, nil)
	return querycache.Fetch(ctx, a.Cache, key, a.Config.StatsTTL(), func(ctx context.Context) (*types.MyStats, error) {
		return a.Animals.MyStats(ctx)
	})
}

// CareHistory returns an animal's combined care timeline.
func (a *App) CareHistory(ctx context.Context, animalID string, page, size int) (*types.Page[types.CareRecord], error) {
	key := querycache.NewScopedKey(querycache.FamilyCareHistory, animalID, pageParams{Page: page, Size: size})
	return querycache.Fetch(ctx, a.Cache, key, a.Config.ListTTL(), func(ctx context.Context) (*types.Page[types.CareRecord], error) {
		return a.Care.History(ctx, animalID, page, size)
	})
}

// Feeding returns an animal's feeding logs.
func (a *App) Feeding(ctx context.Context, animalID string, page, size int) (*types.Page[types.FeedingLog], error) {
	key := querycache.NewScopedKey(querycache.FamilyCareFeeding, animalID, pageParams{Page: page, Size: size})
	return querycache.Fetch(ctx, a.Cache, key, a.Config.ListTTL(), func(ctx context.Context) (*types.Page[types.FeedingLog], error) {
		return a.Care.Feeding(ctx, animalID, page, size)
	})
}

// CareRecords returns the paginated care feed across all animals.
func (a *App) CareRecords(ctx context.Context, page, size int) (*types.Page[types.CareRecord], error) {
	key := querycache.NewKey(querycache.FamilyCareRecords, pageParams{Page: page, Size: size})
	return querycache.Fetch(ctx, a.Cache, key, a.Config.ListTTL(), func(ctx context.Context) (*types.Page[types.CareRecord], error) {
		return a.Care.Records(ctx, page, size)
	})
}

// RecentCare returns the latest care records across all animals.
func (a *App) RecentCare(ctx context.Context, limit int) ([]types.CareRecord, error) {
	key := querycache.NewKey(querycache.FamilyCareRecords, limit)
	return querycache.Fetch(ctx, a.Cache, key, a.Config.ListTTL(), func(ctx context.Context) ([]types.CareRecord, error) {
		return a.Care.RecentRecords(ctx, limit)
	})
}

// FeedingSchedule returns an animal's feeding schedule.
func (a *App) FeedingSchedule(ctx context.Context, animalID string) ([]types.FeedingLog, error) {
	key := querycache.NewScopedKey(querycache.FamilyCareSchedule, animalID, nil)
	return querycache.Fetch(ctx, a.Cache, key, a.Config.ListTTL(), func(ctx context.Context) ([]types.FeedingLog, error) {
		return a.Care.FeedingSchedule(ctx, animalID)
	})
}

// CommunityLogs returns an animal's community activity.
func (a *App) CommunityLogs(ctx context.Context, animalID string, filter services.LogFilter) (*types.Page[types.CommunityLog], error) {
	key := querycache.NewScopedKey(querycache.FamilyCommunityLogs, animalID, filter)
	return querycache.Fetch(ctx, a.Cache, key, a.Config.ListTTL(), func(ctx context.Context) (*types.Page[types.CommunityLog], error) {
		return a.Community.Logs(ctx, animalID, filter)
	})
}

// AllCommunityLogs returns community activity across every animal.
func (a *App) AllCommunityLogs(ctx context.Context, filter services.LogFilter) (*types.Page[types.CommunityLog], error) {
	key := querycache.NewKey(querycache.FamilyCommunityAll, filter)
	return querycache.Fetch(ctx, a.Cache, key, a.Config.ListTTL(), func(ctx context.Context) (*types.Page[types.CommunityLog], error) {
		return a.Community.AllLogs(ctx, filter)
	})
}
