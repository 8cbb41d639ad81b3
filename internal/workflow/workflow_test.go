package workflow

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"straycare/internal/types"
)

func fillBasicInfo(d *Draft) {
	d.Species = types.SpeciesDog
	d.Breed = "mixed"
	d.Gender = types.GenderUnknown
	d.HealthStatus = types.HealthHealthy
}

func fillLocation(d *Draft) {
	d.SetLocation(types.LocationRecord{
		Address:   "12 Oak Street",
		City:      "Springfield",
		State:     "Illinois",
		Latitude:  39.78,
		Longitude: -89.65,
	})
}

func TestStepGating(t *testing.T) {
	cases := []struct {
		name    string
		prepare func(*Form)
		advance bool
	}{
		{"blank basic info", func(f *Form) {}, false},
		{"partial basic info", func(f *Form) {
			require.NoError(t, f.Set(func(d *Draft) { d.Species = types.SpeciesCat }))
		}, false},
		{"bad species value", func(f *Form) {
			require.NoError(t, f.Set(func(d *Draft) {
				fillBasicInfo(d)
				d.Species = "HORSE"
			}))
		}, false},
		{"complete basic info", func(f *Form) {
			require.NoError(t, f.Set(fillBasicInfo))
		}, true},
		{"location without coordinates", func(f *Form) {
			require.NoError(t, f.Set(fillBasicInfo))
			require.NoError(t, f.Next())
			require.NoError(t, f.Set(func(d *Draft) {
				d.Address = "12 Oak Street"
				d.City = "Springfield"
				d.State = "Illinois"
			}))
		}, false},
		{"confirmed location", func(f *Form) {
			require.NoError(t, f.Set(fillBasicInfo))
			require.NoError(t, f.Next())
			require.NoError(t, f.Set(fillLocation))
		}, true},
		{"photos are optional", func(f *Form) {
			require.NoError(t, f.Set(fillBasicInfo))
			require.NoError(t, f.Next())
			require.NoError(t, f.Set(fillLocation))
			require.NoError(t, f.Next())
		}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := New()
			tc.prepare(f)
			assert.Equal(t, tc.advance, f.CanAdvance())
			err := f.Next()
			if tc.advance {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestFieldErrorsClearOnFix(t *testing.T) {
	f := New()
	require.Error(t, f.Next())

	_, hasErr := f.FieldError("Breed")
	require.True(t, hasErr)

	require.NoError(t, f.Set(func(d *Draft) { d.Breed = "tabby" }))
	_, hasErr = f.FieldError("Breed")
	assert.False(t, hasErr)

	// Other fields of the step keep their errors until they pass.
	_, hasErr = f.FieldError("Species")
	assert.True(t, hasErr)
}

func TestPrevKeepsData(t *testing.T) {
	f := New()
	require.NoError(t, f.Set(fillBasicInfo))
	require.NoError(t, f.Next())
	require.NoError(t, f.Set(fillLocation))
	require.NoError(t, f.Prev())
	require.Equal(t, StepBasicInfo, f.Step())

	d := f.Draft()
	assert.Equal(t, "12 Oak Street", d.Address)
	assert.Equal(t, types.SpeciesDog, d.Species)

	require.Error(t, f.Prev())
}

type recordingSubmitter struct {
	mu      sync.Mutex
	calls   int
	block   chan struct{}
	err     error
	lastArg Draft
}

func (s *recordingSubmitter) Submit(_ context.Context, d Draft) (*types.Animal, error) {
	s.mu.Lock()
	s.calls++
	s.lastArg = d
	s.mu.Unlock()
	if s.block != nil {
		<-s.block
	}
	if s.err != nil {
		return nil, s.err
	}
	return &types.Animal{ID: "a1"}, nil
}

func completedForm(t *testing.T) *Form {
	t.Helper()
	f := New()
	require.NoError(t, f.Set(fillBasicInfo))
	require.NoError(t, f.Next())
	require.NoError(t, f.Set(fillLocation))
	require.NoError(t, f.Next())
	require.NoError(t, f.Next())
	require.Equal(t, StepReview, f.Step())
	return f
}

func TestSubmit(t *testing.T) {
	f := completedForm(t)
	sub := &recordingSubmitter{}

	animal, err := f.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, "a1", animal.ID)
	assert.Equal(t, StepSubmitted, f.Step())
	assert.Equal(t, "Springfield", sub.lastArg.City)

	_, err = f.Submit(context.Background(), sub)
	assert.Error(t, err)
	assert.Equal(t, 1, sub.calls)
}

func TestSubmitNoDoubleSubmit(t *testing.T) {
	f := completedForm(t)
	sub := &recordingSubmitter{block: make(chan struct{})}

	done := make(chan struct{})
	go func() {
		defer close(done)
		_, err := f.Submit(context.Background(), sub)
		assert.NoError(t, err)
	}()

	// Wait for the first submission to be in flight.
	require.Eventually(t, f.Submitting, time.Second, time.Millisecond)

	_, err := f.Submit(context.Background(), sub)
	require.ErrorIs(t, err, ErrSubmitInFlight)

	close(sub.block)
	<-done
	assert.Equal(t, 1, sub.calls)
}

func TestSubmitFailureStaysAtReview(t *testing.T) {
	f := completedForm(t)
	sub := &recordingSubmitter{err: errors.New("backend down")}

	_, err := f.Submit(context.Background(), sub)
	require.Error(t, err)
	assert.Equal(t, StepReview, f.Step())
	assert.False(t, f.Submitting())

	// The form is still live for a retry.
	sub.err = nil
	_, err = f.Submit(context.Background(), sub)
	require.NoError(t, err)
	assert.Equal(t, StepSubmitted, f.Step())
}

func TestSubmitRejectsIncompleteEarlierStep(t *testing.T) {
	f := New()
	require.NoError(t, f.Set(fillBasicInfo))
	sub := &recordingSubmitter{}

	_, err := f.Submit(context.Background(), sub)
	require.Error(t, err)
	assert.Zero(t, sub.calls)
}

func editSubject() *types.Animal {
	return &types.Animal{
		ID:           "a1",
		Species:      types.SpeciesCat,
		Breed:        "tabby",
		Gender:       types.GenderFemale,
		HealthStatus: types.HealthInjured,
		ReportedBy:   types.Reporter{ID: "u1"},
		Locations: []types.AnimalLocation{{
			Address:   "12 Oak Street",
			City:      "Springfield",
			State:     "Illinois",
			Latitude:  39.78,
			Longitude: -89.65,
			IsCurrent: true,
		}},
	}
}

func TestEditAuthorization(t *testing.T) {
	t.Run("reporter can edit", func(t *testing.T) {
		f := NewEdit(editSubject(), &types.User{ID: "u1"})
		assert.False(t, f.ReadOnly())
		assert.Equal(t, StepBasicInfo, f.Step())
		assert.Equal(t, "tabby", f.Draft().Breed)
		assert.Equal(t, "Springfield", f.Draft().City)
		require.NoError(t, f.Set(func(d *Draft) { d.Breed = "calico" }))
	})

	t.Run("stranger gets a read-only terminal form", func(t *testing.T) {
		f := NewEdit(editSubject(), &types.User{ID: "u2"})
		assert.True(t, f.ReadOnly())
		assert.Equal(t, StepAbandoned, f.Step())
		err := f.Set(func(d *Draft) { d.Breed = "calico" })
		require.ErrorIs(t, err, ErrNotReporter)
		_, err = f.Submit(context.Background(), &recordingSubmitter{})
		require.ErrorIs(t, err, ErrNotReporter)
	})

	t.Run("nil user", func(t *testing.T) {
		f := NewEdit(editSubject(), nil)
		assert.True(t, f.ReadOnly())
	})
}

func TestAbandon(t *testing.T) {
	f := New()
	f.Abandon()
	require.Equal(t, StepAbandoned, f.Step())
	require.Error(t, f.Next())
	require.Error(t, f.Set(func(d *Draft) { d.Breed = "x" }))
}
