package services

import (
	"context"
	"net/url"

	"straycare/internal/api"
	"straycare/internal/types"
)

// Community wraps the community-log endpoints.
type Community struct {
	c *api.Client
}

// NewCommunity builds the community service.
func NewCommunity(c *api.Client) *Community { return &Community{c: c} }

// LogFilter selects community logs. Page is 1-based.
type LogFilter struct {
	Type types.CommunityLogType
	Page int
	Size int
}

func (f LogFilter) query() (url.Values, int) {
	q, size := pageQuery(f.Page, f.Size, 10)
	if f.Type != "" {
		q.Set("type", string(f.Type))
	}
	return q, size
}

// Logs fetches community logs for one animal.
func (s *Community) Logs(ctx context.Context, animalID string, filter LogFilter) (*types.Page[types.CommunityLog], error) {
	q, size := filter.query()
	var wire wirePage[types.CommunityLog]
	if err := s.c.Get(ctx, "/animals/"+animalID+"/community/logs", q, &wire); err != nil {
		return nil, err
	}
	return wire.toPage(size), nil
}

// AllLogs fetches community logs across every animal.
func (s *Community) AllLogs(ctx context.Context, filter LogFilter) (*types.Page[types.CommunityLog], error) {
	q, size := filter.query()
	var wire wirePage[types.CommunityLog]
	if err := s.c.Get(ctx, "/community/logs", q, &wire); err != nil {
		return nil, err
	}
	return wire.toPage(size), nil
}

// PostInput is a new community log.
type PostInput struct {
	Type        types.CommunityLogType `json:"type"`
	Title       string                 `json:"title"`
	Description string                 `json:"description"`
	Urgency     types.Urgency          `json:"urgency"`
	Location    *types.LocationRecord  `json:"location,omitempty"`
}

// Post adds a community log to an animal.
func (s *Community) Post(ctx context.Context, animalID string, input PostInput) (*types.CommunityLog, error) {
	var log types.CommunityLog
	if err := s.c.Post(ctx, "/animals/"+animalID+"/community/logs", input, &log); err != nil {
		return nil, err
	}
	return &log, nil
}

// Upvote upvotes a community log.
func (s *Community) Upvote(ctx context.Context, animalID, logID string) error {
	return s.c.Post(ctx, "/animals/"+animalID+"/community/logs/"+logID+"/upvote", nil, nil)
}

// RemoveUpvote withdraws an upvote.
func (s *Community) RemoveUpvote(ctx context.Context, animalID, logID string) error {
	return s.c.Delete(ctx, "/animals/"+animalID+"/community/logs/"+logID+"/upvote", nil)
}
