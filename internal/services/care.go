package services

import (
	"context"
	"net/url"

	"straycare/internal/api"
	"straycare/internal/types"
)

// Care wraps the care-record and feeding-log endpoints.
type Care struct {
	c *api.Client
}

// NewCare builds the care service.
func NewCare(c *api.Client) *Care { return &Care{c: c} }

func pageQuery(page, size, defaultSize int) (url.Values, int) {
	if size <= 0 {
		size = defaultSize
	}
	q := url.Values{}
	q.Set("page", itoa(toWirePage(page)))
	q.Set("size", itoa(size))
	return q, size
}

// History fetches the combined care history for an animal.
func (s *Care) History(ctx context.Context, animalID string, page, size int) (*types.Page[types.CareRecord], error) {
	q, size := pageQuery(page, size, 10)
	var wire wirePage[types.CareRecord]
	if err := s.c.Get(ctx, "/animals/"+animalID+"/care/history", q, &wire); err != nil {
		return nil, err
	}
	return wire.toPage(size), nil
}

// Records fetches all care records across animals.
func (s *Care) Records(ctx context.Context, page, size int) (*types.Page[types.CareRecord], error) {
	q, size := pageQuery(page, size, 10)
	var wire wirePage[types.CareRecord]
	if err := s.c.Get(ctx, "/care/records", q, &wire); err != nil {
		return nil, err
	}
	return wire.toPage(size), nil
}

// RecentRecords fetches the latest care records.
func (s *Care) RecentRecords(ctx context.Context, limit int) ([]types.CareRecord, error) {
	if limit <= 0 {
		limit = 5
	}
	q := url.Values{}
	q.Set("limit", itoa(limit))
	var records []types.CareRecord
	if err := s.c.Get(ctx, "/care/records/recent", q, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []types.CareRecord{}
	}
	return records, nil
}

// RecordInput is a new care record.
type RecordInput struct {
	CareType    types.CareType `json:"careType"`
	Description string         `json:"description"`
	NextDueDate string         `json:"nextDueDate,omitempty"`
	Notes       string         `json:"notes,omitempty"`
}

// CreateRecord logs a care action for an animal.
func (s *Care) CreateRecord(ctx context.Context, animalID string, input RecordInput) (*types.CareRecord, error) {
	var rec types.CareRecord
	if err := s.c.Post(ctx, "/animals/"+animalID+"/care/records", input, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

// Feeding fetches an animal's feeding logs.
func (s *Care) Feeding(ctx context.Context, animalID string, page, size int) (*types.Page[types.FeedingLog], error) {
	q, size := pageQuery(page, size, 10)
	var wire wirePage[types.FeedingLog]
	if err := s.c.Get(ctx, "/animals/"+animalID+"/care/feeding", q, &wire); err != nil {
		return nil, err
	}
	return wire.toPage(size), nil
}

// FeedingSchedule fetches the upcoming feeding slots for an animal.
func (s *Care) FeedingSchedule(ctx context.Context, animalID string) ([]types.FeedingLog, error) {
	var logs []types.FeedingLog
	if err := s.c.Get(ctx, "/animals/"+animalID+"/care/feeding/schedule", nil, &logs); err != nil {
		return nil, err
	}
	if logs == nil {
		logs = []types.FeedingLog{}
	}
	return logs, nil
}

// FeedingInput is a new feeding log.
type FeedingInput struct {
	FoodType string `json:"foodType"`
	Quantity string `json:"quantity,omitempty"`
	Notes    string `json:"notes,omitempty"`
}

// CreateFeeding logs a feeding for an animal.
func (s *Care) CreateFeeding(ctx context.Context, animalID string, input FeedingInput) (*types.FeedingLog, error) {
	var log types.FeedingLog
	if err := s.c.Post(ctx, "/animals/"+animalID+"/care/feeding", input, &log); err != nil {
		return nil, err
	}
	return &log, nil
}
