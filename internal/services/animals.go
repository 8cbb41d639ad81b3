package services

import (
	"bytes"
	"context"
	"encoding/json"
	"net/url"

	"go.uber.org/zap"

	"straycare/internal/api"
	"straycare/internal/types"
)

// Animals wraps the /animals endpoints.
type Animals struct {
	c   *api.Client
	log *zap.Logger
}

// NewAnimals builds the animals service.
func NewAnimals(c *api.Client, log *zap.Logger) *Animals {
	if log == nil {
		log = zap.NewNop()
	}
	return &Animals{c: c, log: log}
}

// ListFilter selects animals for listing. Page is 1-based.
type ListFilter struct {
	Species        types.Species
	Area           string
	ApprovalStatus types.ApprovalStatus
	Page           int
	Size           int
}

func (f ListFilter) query() url.Values {
	size := f.Size
	if size <= 0 {
		size = 12
	}
	q := url.Values{}
	q.Set("page", itoa(toWirePage(f.Page)))
	q.Set("size", itoa(size))
	if f.Species != "" {
		q.Set("species", string(f.Species))
	}
	if f.Area != "" {
		q.Set("area", f.Area)
	}
	if f.ApprovalStatus != "" {
		q.Set("approvalStatus", string(f.ApprovalStatus))
	}
	return q
}

// List fetches a page of animals matching the filter.
func (s *Animals) List(ctx context.Context, filter ListFilter) (*types.Page[types.Animal], error) {
	var wire wirePage[types.Animal]
	if err := s.c.Get(ctx, "/animals", filter.query(), &wire); err != nil {
		return nil, err
	}
	size := filter.Size
	if size <= 0 {
		size = 12
	}
	return wire.toPage(size), nil
}

// Pending fetches animals awaiting approval (admin only).
func (s *Animals) Pending(ctx context.Context, page, size int) (*types.Page[types.Animal], error) {
	return s.List(ctx, ListFilter{ApprovalStatus: types.ApprovalPending, Page: page, Size: size})
}

// Get fetches one animal by ID.
func (s *Animals) Get(ctx context.Context, id string) (*types.Animal, error) {
	var a types.Animal
	if err := s.c.Get(ctx, "/animals/"+id, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Stats fetches the public animal census.
func (s *Animals) Stats(ctx context.Context) (*types.AnimalStats, error) {
	var stats types.AnimalStats
	if err := s.c.Get(ctx, "/animals/stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// ReportInput is a new animal report. Location must be a confirmed record;
// Images are local file paths attached to the multipart request.
type ReportInput struct {
	Species      types.Species
	Breed        string
	Color        string
	Gender       types.Gender
	Age          int
	HealthStatus types.HealthStatus
	Temperament  types.Temperament
	IsVaccinated bool
	IsNeutered   bool
	Description  string
	Location     types.LocationRecord
	Images       []string
}

// fields flattens the report to the form parameters the server binds. All
// eleven are required server-side, so empty color falls back to the breed,
// empty temperament to FRIENDLY, and area mirrors the city.
func (in ReportInput) fields() map[string]string {
	color := in.Color
	if color == "" {
		color = in.Breed
	}
	temperament := in.Temperament
	if temperament == "" {
		temperament = types.TemperamentFriendly
	}
	return map[string]string{
		"species":      string(in.Species),
		"breed":        in.Breed,
		"color":        color,
		"gender":       string(in.Gender),
		"temperament":  string(temperament),
		"healthStatus": string(in.HealthStatus),
		"latitude":     ftoa(in.Location.Latitude),
		"longitude":    ftoa(in.Location.Longitude),
		"address":      in.Location.Address,
		"area":         in.Location.City,
		"city":         in.Location.City,
	}
}

// Report submits a new animal as a single multipart request carrying all
// scalar fields plus every selected image.
func (s *Animals) Report(ctx context.Context, input ReportInput) (*types.Animal, error) {
	files := make([]api.FilePart, 0, len(input.Images))
	for _, path := range input.Images {
		files = append(files, api.FilePart{Field: "images", Path: path})
	}
	var a types.Animal
	if err := s.c.PostMultipart(ctx, "/animals", input.fields(), files, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// UpdateInput carries the editable subset of an animal. Nil pointers mean
// "leave unchanged".
type UpdateInput struct {
	Species      *types.Species        `json:"species,omitempty"`
	Breed        *string               `json:"breed,omitempty"`
	Color        *string               `json:"color,omitempty"`
	Gender       *types.Gender         `json:"gender,omitempty"`
	Age          *int                  `json:"age,omitempty"`
	HealthStatus *types.HealthStatus   `json:"healthStatus,omitempty"`
	Temperament  *types.Temperament    `json:"temperament,omitempty"`
	IsVaccinated *bool                 `json:"isVaccinated,omitempty"`
	IsNeutered   *bool                 `json:"isNeutered,omitempty"`
	Description  *string               `json:"description,omitempty"`
	Location     *types.LocationRecord `json:"location,omitempty"`
}

// Update edits an animal.
func (s *Animals) Update(ctx context.Context, id string, input UpdateInput) (*types.Animal, error) {
	var a types.Animal
	if err := s.c.Put(ctx, "/animals/"+id, input, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Delete removes an animal (admin only).
func (s *Animals) Delete(ctx context.Context, id string) error {
	return s.c.Delete(ctx, "/animals/"+id, nil)
}

// Nearby fetches animals around a coordinate. A response whose data is not
// an array is coerced to an empty slice; list rendering never sees a shape
// error.
func (s *Animals) Nearby(ctx context.Context, lat, lon, radiusKm float64) ([]types.Animal, error) {
	q := url.Values{}
	q.Set("lat", ftoa(lat))
	q.Set("lon", ftoa(lon))
	q.Set("radius", ftoa(radiusKm))

	var raw json.RawMessage
	if err := s.c.Get(ctx, "/animals/nearby", q, &raw); err != nil {
		return nil, err
	}
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		s.log.Warn("nearby search returned non-array data, coercing to empty",
			zap.Int("bytes", len(trimmed)))
		return []types.Animal{}, nil
	}
	var animals []types.Animal
	if err := json.Unmarshal(trimmed, &animals); err != nil {
		s.log.Warn("nearby search array failed to decode, coercing to empty", zap.Error(err))
		return []types.Animal{}, nil
	}
	return animals, nil
}

// Recent fetches the most recently reported animals.
func (s *Animals) Recent(ctx context.Context, limit int) ([]types.Animal, error) {
	if limit <= 0 {
		limit = 10
	}
	q := url.Values{}
	q.Set("limit", itoa(limit))
	var animals []types.Animal
	if err := s.c.Get(ctx, "/animals/recent", q, &animals); err != nil {
		return nil, err
	}
	if animals == nil {
		animals = []types.Animal{}
	}
	return animals, nil
}

// MyReports fetches the logged-in user's reports.
func (s *Animals) MyReports(ctx context.Context, page, size int) (*types.Page[types.Animal], error) {
	if size <= 0 {
		size = 10
	}
	q := url.Values{}
	q.Set("page", itoa(toWirePage(page)))
	q.Set("size", itoa(size))
	var wire wirePage[types.Animal]
	if err := s.c.Get(ctx, "/animals/my-reports", q, &wire); err != nil {
		return nil, err
	}
	return wire.toPage(size), nil
}

// MyStats fetches the logged-in user's contribution summary.
func (s *Animals) MyStats(ctx context.Context) (*types.MyStats, error) {
	var stats types.MyStats
	if err := s.c.Get(ctx, "/animals/my-stats", nil, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Approve marks a pending animal approved (admin only).
func (s *Animals) Approve(ctx context.Context, id string) (*types.Animal, error) {
	var a types.Animal
	if err := s.c.Put(ctx, "/animals/"+id+"/approve", nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Reject marks a pending animal rejected (admin only).
func (s *Animals) Reject(ctx context.Context, id string) (*types.Animal, error) {
	var a types.Animal
	if err := s.c.Put(ctx, "/animals/"+id+"/reject", nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}
