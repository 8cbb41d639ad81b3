package types

import (
	"encoding/json"
	"testing"
)

func TestReporterUnmarshalString(t *testing.T) {
	var a Animal
	if err := json.Unmarshal([]byte(`{"id":"a1","reportedBy":"u42"}`), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a.ReportedBy.ID != "u42" {
		t.Fatalf("expected reporter id u42, got %q", a.ReportedBy.ID)
	}
}

func TestReporterUnmarshalObject(t *testing.T) {
	var a Animal
	raw := `{"id":"a1","reportedBy":{"id":"u42","name":"Priya","email":"p@x.org"}}`
	if err := json.Unmarshal([]byte(raw), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a.ReportedBy.ID != "u42" || a.ReportedBy.Name != "Priya" {
		t.Fatalf("unexpected reporter: %+v", a.ReportedBy)
	}
}

func TestCurrentLocation(t *testing.T) {
	a := Animal{Locations: []AnimalLocation{
		{Address: "old", IsCurrent: false},
		{Address: "new", IsCurrent: true},
	}}
	loc, ok := a.CurrentLocation()
	if !ok || loc.Address != "new" {
		t.Fatalf("expected current location, got %+v ok=%v", loc, ok)
	}

	a = Animal{Locations: []AnimalLocation{{Address: "only"}}}
	loc, ok = a.CurrentLocation()
	if !ok || loc.Address != "only" {
		t.Fatalf("expected first location fallback, got %+v ok=%v", loc, ok)
	}

	if _, ok := (&Animal{}).CurrentLocation(); ok {
		t.Fatal("expected no location for empty animal")
	}
}

func TestLocationRecordHasCoordinates(t *testing.T) {
	if (LocationRecord{}).HasCoordinates() {
		t.Fatal("zero record should have no coordinates")
	}
	if !(LocationRecord{Latitude: 12.97, Longitude: 77.59}).HasCoordinates() {
		t.Fatal("expected coordinates")
	}
}
