package app

import (
	"context"

	"straycare/internal/querycache"
	"straycare/internal/services"
	"straycare/internal/types"
	"straycare/internal/workflow"
)

// Mutations run the service call, then apply the invalidation table so the
// next read of any dependent family refetches. User-facing success
// messages go through the notifier; failures surface as errors for the
// caller to render (the API client has already toasted auth and server
// faults).

// Report submits a new animal report.
func (a *App) Report(ctx context.Context, input services.ReportInput) (*types.Animal, error) {
	animal, err := a.Animals.Report(ctx, input)
	if err != nil {
		return nil, err
	}
	a.Cache.OnMutation(querycache.MutationReportAnimal, "")
	a.Notify.Success("Report submitted. It will appear once a moderator approves it.")
	return animal, nil
}

// Submit lets a finished report form hand its draft to the backend.
func (a *App) Submit(ctx context.Context, draft workflow.Draft) (*types.Animal, error) {
	return a.Report(ctx, services.ReportInput{
		Species:      draft.Species,
		Breed:        draft.Breed,
		Color:        draft.Color,
		Gender:       draft.Gender,
		Age:          draft.Age,
		HealthStatus: draft.HealthStatus,
		Temperament:  draft.Temperament,
		IsVaccinated: draft.IsVaccinated,
		IsNeutered:   draft.IsNeutered,
		Description:  draft.Description,
		Location: types.LocationRecord{
			Address:   draft.Address,
			City:      draft.City,
			State:     draft.State,
			Latitude:  draft.Latitude,
			Longitude: draft.Longitude,
		},
		Images: draft.Photos,
	})
}

// UpdateAnimal edits an existing report. The edit is authorized before
// anything is sent: only the original reporter may change a report, checked
// the same way the edit form decides whether it mounts writable.
func (a *App) UpdateAnimal(ctx context.Context, id string, input services.UpdateInput) (*types.Animal, error) {
	current, err := a.GetAnimal(ctx, id)
	if err != nil {
		return nil, err
	}
	if workflow.NewEdit(current, a.Session.User()).ReadOnly() {
		return nil, workflow.ErrNotReporter
	}
	animal, err := a.Animals.Update(ctx, id, input)
	if err != nil {
		return nil, err
	}
	a.Cache.OnMutation(querycache.MutationUpdateAnimal, id)
	a.Notify.Success("Report updated.")
	return animal, nil
}

// DeleteAnimal removes a report (admin only).
func (a *App) DeleteAnimal(ctx context.Context, id string) error {
	if err := a.Animals.Delete(ctx, id); err != nil {
		return err
	}
	a.Cache.OnMutation(querycache.MutationDeleteAnimal, id)
	a.Notify.Success("Report deleted.")
	return nil
}

// ApproveAnimal approves a pending report (admin only).
func (a *App) ApproveAnimal(ctx context.Context, id string) (*types.Animal, error) {
	animal, err := a.Animals.Approve(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Cache.OnMutation(querycache.MutationApproveAnimal, id)
	a.Notify.Success("Report approved.")
	return animal, nil
}

// RejectAnimal rejects a pending report (admin only).
func (a *App) RejectAnimal(ctx context.Context, id string) (*types.Animal, error) {
	animal, err := a.Animals.Reject(ctx, id)
	if err != nil {
		return nil, err
	}
	a.Cache.OnMutation(querycache.MutationRejectAnimal, id)
	a.Notify.Success("Report rejected.")
	return animal, nil
}

// AddCareRecord logs a care action for an animal.
func (a *App) AddCareRecord(ctx context.Context, animalID string, input services.RecordInput) (*types.CareRecord, error) {
	rec, err := a.Care.CreateRecord(ctx, animalID, input)
	if err != nil {
		return nil, err
	}
	a.Cache.OnMutation(querycache.MutationAddCareRecord, animalID)
	a.Notify.Success("Care record added.")
	return rec, nil
}

// AddFeeding logs a feeding for an animal.
func (a *App) AddFeeding(ctx context.Context, animalID string, input services.FeedingInput) (*types.FeedingLog, error) {
	log, err := a.Care.CreateFeeding(ctx, animalID, input)
	if err != nil {
		return nil, err
	}
	a.Cache.OnMutation(querycache.MutationAddFeedingLog, animalID)
	a.Notify.Success("Feeding logged.")
	return log, nil
}

// PostLog adds a community log to an animal.
func (a *App) PostLog(ctx context.Context, animalID string, input services.PostInput) (*types.CommunityLog, error) {
	log, err := a.Community.Post(ctx, animalID, input)
	if err != nil {
		return nil, err
	}
	a.Cache.OnMutation(querycache.MutationAddCommunityLog, animalID)
	a.Notify.Success("Posted to the community log.")
	return log, nil
}

// Upvote upvotes a community log entry.
func (a *App) Upvote(ctx context.Context, animalID, logID string) error {
	if err := a.Community.Upvote(ctx, animalID, logID); err != nil {
		return err
	}
	a.Cache.OnMutation(querycache.MutationUpvote, animalID)
	return nil
}

// RemoveUpvote withdraws an upvote.
func (a *App) RemoveUpvote(ctx context.Context, animalID, logID string) error {
	if err := a.Community.RemoveUpvote(ctx, animalID, logID); err != nil {
		return err
	}
	a.Cache.OnMutation(querycache.MutationRemoveUpvote, animalID)
	return nil
}
