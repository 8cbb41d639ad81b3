package geocode

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"

	"straycare/internal/types"
)

// Locator reports the device's current position.
type Locator interface {
	Current(ctx context.Context) (lat, lng float64, err error)
}

// StaticLocator is a Locator pinned to one coordinate, fed from
// configuration or the STRAYCARE_POSITION environment variable.
type StaticLocator struct {
	Lat, Lng float64
}

func (l StaticLocator) Current(context.Context) (float64, float64, error) {
	return l.Lat, l.Lng, nil
}

// ErrNoPosition means no position source is available.
var ErrNoPosition = errors.New("no device position available")

// LocatorFromEnv reads STRAYCARE_POSITION ("lat,lng"). It returns
// ErrNoPosition when the variable is unset or malformed.
func LocatorFromEnv() (Locator, error) {
	raw := os.Getenv("STRAYCARE_POSITION")
	if raw == "" {
		return nil, ErrNoPosition
	}
	parts := strings.SplitN(raw, ",", 2)
	if len(parts) != 2 {
		return nil, fmt.Errorf("parse STRAYCARE_POSITION %q: %w", raw, ErrNoPosition)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return nil, fmt.Errorf("parse STRAYCARE_POSITION latitude: %w", err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return nil, fmt.Errorf("parse STRAYCARE_POSITION longitude: %w", err)
	}
	return StaticLocator{Lat: lat, Lng: lng}, nil
}

// Geocoder is the provider surface the resolver needs.
type Geocoder interface {
	Forward(ctx context.Context, address string) (types.LocationRecord, error)
	Reverse(ctx context.Context, lat, lng float64) (types.LocationRecord, error)
}

// Resolver stages location lookups for a form. A resolve puts its result
// in a pending slot; nothing reaches the committed record until the user
// confirms. Reject discards the pending record and keeps the committed
// one untouched.
type Resolver struct {
	mu        sync.Mutex
	geo       Geocoder
	locator   Locator
	pending   *types.LocationRecord
	committed *types.LocationRecord
}

// NewResolver builds a resolver. locator may be nil; ResolveCurrent then
// fails with ErrNoPosition.
func NewResolver(geo Geocoder, locator Locator) *Resolver {
	return &Resolver{geo: geo, locator: locator}
}

// ResolveAddress forward-geocodes an address into the pending slot.
func (r *Resolver) ResolveAddress(ctx context.Context, address string) (types.LocationRecord, error) {
	rec, err := r.geo.Forward(ctx, address)
	if err != nil {
		return types.LocationRecord{}, err
	}
	r.stage(rec)
	return rec, nil
}

// ResolvePoint reverse-geocodes a picked coordinate into the pending
// slot. The record is staged even when the lookup degraded to the
// coordinate-only fallback, so a confirmed pick never vanishes.
func (r *Resolver) ResolvePoint(ctx context.Context, lat, lng float64) (types.LocationRecord, error) {
	rec, err := r.geo.Reverse(ctx, lat, lng)
	r.stage(rec)
	return rec, err
}

// ResolveCurrent resolves the device position and stages it like
// ResolvePoint.
func (r *Resolver) ResolveCurrent(ctx context.Context) (types.LocationRecord, error) {
	if r.locator == nil {
		return types.LocationRecord{}, ErrNoPosition
	}
	lat, lng, err := r.locator.Current(ctx)
	if err != nil {
		return types.LocationRecord{}, fmt.Errorf("locate device: %w", err)
	}
	return r.ResolvePoint(ctx, lat, lng)
}

func (r *Resolver) stage(rec types.LocationRecord) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = &rec
}

// Pending returns the staged record awaiting confirmation.
func (r *Resolver) Pending() (types.LocationRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return types.LocationRecord{}, false
	}
	return *r.pending, true
}

// Confirm commits the pending record. It reports false when nothing is
// staged.
func (r *Resolver) Confirm() (types.LocationRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.pending == nil {
		return types.LocationRecord{}, false
	}
	r.committed = r.pending
	r.pending = nil
	return *r.committed, true
}

// Reject discards the pending record, keeping any committed one.
func (r *Resolver) Reject() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = nil
}

// Committed returns the confirmed record, if any.
func (r *Resolver) Committed() (types.LocationRecord, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.committed == nil {
		return types.LocationRecord{}, false
	}
	return *r.committed, true
}
