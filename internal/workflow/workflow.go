// Package workflow drives the multi-step animal report form. The form is
// a small state machine: four entry steps in a fixed order, two terminal
// states. Forward movement is gated on the current step's fields
// validating; backward movement never loses data.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"

	"straycare/internal/types"
)

// Step is a position in the report form.
type Step int

const (
	StepBasicInfo Step = iota
	StepLocation
	StepPhotos
	StepReview
	// Terminal states. No field is mutable once one is reached.
	StepSubmitted
	StepAbandoned
)

func (s Step) String() string {
	switch s {
	case StepBasicInfo:
		return "basic info"
	case StepLocation:
		return "location"
	case StepPhotos:
		return "photos"
	case StepReview:
		return "review"
	case StepSubmitted:
		return "submitted"
	case StepAbandoned:
		return "abandoned"
	}
	return fmt.Sprintf("step(%d)", int(s))
}

// Terminal reports whether the step ends the workflow.
func (s Step) Terminal() bool { return s == StepSubmitted || s == StepAbandoned }

// entrySteps is the forward path through the form.
var entrySteps = []Step{StepBasicInfo, StepLocation, StepPhotos, StepReview}

// stepFields maps each step to the draft fields it validates. The review
// step re-validates everything.
var stepFields = map[Step][]string{
	StepBasicInfo: {"Species", "Breed", "Gender", "HealthStatus"},
	StepLocation:  {"Address", "City", "State", "Latitude", "Longitude"},
	StepPhotos:    {"Photos"},
}

func init() {
	all := make([]string, 0, 16)
	for _, step := range entrySteps[:len(entrySteps)-1] {
		all = append(all, stepFields[step]...)
	}
	stepFields[StepReview] = all
}

// Draft holds the form values across steps. Validation tags carry the
// field rules; optional fields have none.
type Draft struct {
	Species      types.Species      `validate:"required,oneof=DOG CAT BIRD OTHER"`
	Breed        string             `validate:"required"`
	Color        string             `validate:"-"`
	Gender       types.Gender       `validate:"required,oneof=MALE FEMALE UNKNOWN"`
	Age          int                `validate:"-"`
	HealthStatus types.HealthStatus `validate:"required,oneof=HEALTHY SICK INJURED RECOVERING CRITICAL"`
	Temperament  types.Temperament  `validate:"-"`
	IsVaccinated bool               `validate:"-"`
	IsNeutered   bool               `validate:"-"`
	Description  string             `validate:"-"`

	// Location fields come from a confirmed geocode resolution.
	Address   string  `validate:"required"`
	City      string  `validate:"required"`
	State     string  `validate:"required"`
	Latitude  float64 `validate:"required"`
	Longitude float64 `validate:"required"`

	// Photos are optional paths to local image files.
	Photos []string `validate:"-"`
}

// SetLocation copies a confirmed location record into the draft.
func (d *Draft) SetLocation(rec types.LocationRecord) {
	d.Address = rec.Address
	d.City = rec.City
	d.State = rec.State
	d.Latitude = rec.Latitude
	d.Longitude = rec.Longitude
}

// ErrSubmitInFlight means a submission is already running.
var ErrSubmitInFlight = errors.New("a submission is already in progress")

// ErrNotReporter means the caller tried to edit someone else's report.
var ErrNotReporter = errors.New("only the original reporter can edit this report")

// Form is the report workflow. It is safe for a single UI goroutine plus
// a submitting goroutine; all state is behind one mutex.
type Form struct {
	mu         sync.Mutex
	step       Step
	draft      Draft
	errs       map[string]string
	validate   *validator.Validate
	submitting bool
	readOnly   bool
}

// New starts a blank report form at the first step.
func New() *Form {
	return &Form{
		step:     StepBasicInfo,
		errs:     map[string]string{},
		validate: validator.New(),
	}
}

// NewEdit starts an edit form preloaded from an existing animal. Only the
// original reporter may edit; anyone else gets a read-only form already in
// the abandoned state, before any field is mutable.
func NewEdit(animal *types.Animal, user *types.User) *Form {
	f := New()
	f.draft = Draft{
		Species:      animal.Species,
		Breed:        animal.Breed,
		Color:        animal.Color,
		Gender:       animal.Gender,
		Age:          animal.Age,
		HealthStatus: animal.HealthStatus,
		Temperament:  animal.Temperament,
		IsVaccinated: animal.IsVaccinated,
		IsNeutered:   animal.IsNeutered,
		Description:  animal.Description,
	}
	if loc, ok := animal.CurrentLocation(); ok {
		f.draft.SetLocation(types.LocationRecord{
			Address:   loc.Address,
			City:      loc.City,
			State:     loc.State,
			Latitude:  loc.Latitude,
			Longitude: loc.Longitude,
		})
	}
	if user == nil || animal.ReportedBy.ID == "" || animal.ReportedBy.ID != user.ID {
		f.readOnly = true
		f.step = StepAbandoned
	}
	return f
}

// ReadOnly reports whether the form rejects all mutation.
func (f *Form) ReadOnly() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.readOnly
}

// Step returns the current position.
func (f *Form) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// Draft returns a copy of the current values.
func (f *Form) Draft() Draft {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.draft
}

// Set mutates the draft through fn and re-validates the current step's
// fields. Errors for fields that now pass are cleared. Mutation is
// rejected in terminal or read-only states.
func (f *Form) Set(fn func(*Draft)) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readOnly {
		return ErrNotReporter
	}
	if f.step.Terminal() {
		return fmt.Errorf("form is %s", f.step)
	}
	fn(&f.draft)
	f.revalidateLocked(f.step)
	return nil
}

// revalidateLocked validates the given step's fields and rebuilds their
// error entries. Fields of other steps keep whatever errors they had.
func (f *Form) revalidateLocked(step Step) {
	fields := stepFields[step]
	for _, name := range fields {
		delete(f.errs, name)
	}
	err := f.validate.StructPartial(f.draft, fields...)
	if err == nil {
		return
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		f.errs["_"] = err.Error()
		return
	}
	for _, fe := range verrs {
		f.errs[fe.StructField()] = messageFor(fe)
	}
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case "oneof":
		return "must be one of: " + fe.Param()
	}
	return "invalid value"
}

// FieldError returns the current validation message for a field.
func (f *Form) FieldError(name string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	msg, ok := f.errs[name]
	return msg, ok
}

// CanAdvance reports whether the current step's fields all validate.
func (f *Form) CanAdvance() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.stepValidLocked(f.step)
}

func (f *Form) stepValidLocked(step Step) bool {
	fields, ok := stepFields[step]
	if !ok {
		return false
	}
	return f.validate.StructPartial(f.draft, fields...) == nil
}

// Next advances to the following step when the current one validates.
func (f *Form) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step.Terminal() {
		return fmt.Errorf("form is %s", f.step)
	}
	f.revalidateLocked(f.step)
	if !f.stepValidLocked(f.step) {
		return fmt.Errorf("fix the %s step before continuing", f.step)
	}
	if f.step == StepReview {
		return errors.New("use Submit from the review step")
	}
	f.step++
	return nil
}

// Prev steps back. It is always allowed between entry steps and never
// discards values.
func (f *Form) Prev() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step.Terminal() {
		return fmt.Errorf("form is %s", f.step)
	}
	if f.step == StepBasicInfo {
		return errors.New("already at the first step")
	}
	f.step--
	return nil
}

// Abandon ends the workflow without submitting.
func (f *Form) Abandon() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.step.Terminal() {
		f.step = StepAbandoned
	}
}

// Submitter sends a finished draft to the backend.
type Submitter interface {
	Submit(ctx context.Context, draft Draft) (*types.Animal, error)
}

// Submit validates every step, then runs the submitter exactly once. A
// second call while one is in flight fails with ErrSubmitInFlight. On
// success the form reaches the submitted state; on failure it stays at
// review for another attempt.
func (f *Form) Submit(ctx context.Context, s Submitter) (*types.Animal, error) {
	f.mu.Lock()
	if f.readOnly {
		f.mu.Unlock()
		return nil, ErrNotReporter
	}
	if f.step.Terminal() {
		step := f.step
		f.mu.Unlock()
		return nil, fmt.Errorf("form is %s", step)
	}
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	for _, step := range entrySteps {
		f.revalidateLocked(step)
		if !f.stepValidLocked(step) {
			f.mu.Unlock()
			return nil, fmt.Errorf("the %s step is incomplete", step)
		}
	}
	f.submitting = true
	draft := f.draft
	f.mu.Unlock()

	animal, err := s.Submit(ctx, draft)

	f.mu.Lock()
	f.submitting = false
	if err == nil {
		f.step = StepSubmitted
	}
	f.mu.Unlock()
	if err != nil {
		return nil, err
	}
	return animal, nil
}

// Submitting reports whether a submission is in flight.
func (f *Form) Submitting() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.submitting
}
