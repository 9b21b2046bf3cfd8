package services

import (
	"errors"
	"testing"
)

var errAssert = errors.New("injected failure")

func stopInput(name string, lat, lng float64) StopInput {
	return StopInput{Name: name, Location: Location{Lat: &lat, Lng: &lng}, CampusZone: "east"}
}

func TestStopLifecycle(t *testing.T) {
	f := newFixture(t)
	svc := NewStopService(f.store)

	stop, err := svc.Create(f.ctx, f.univ.ID, stopInput("Library", 10, 20))
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if stop.Zone != "east" || stop.UniversityID != f.univ.ID {
		t.Fatalf("unexpected stop %+v", stop)
	}

	if _, err := svc.Create(f.ctx, f.univ.ID, stopInput("Library", 11, 21)); !IsRule(err) {
		t.Fatalf("duplicate name: %v", err)
	}
	if _, err := svc.Create(f.ctx, f.univ.ID, stopInput("Annex", 10, 20)); !IsRule(err) {
		t.Fatalf("duplicate location: %v", err)
	}
	if _, err := svc.Create(f.ctx, f.univ.ID, StopInput{Name: "x", CampusZone: "east"}); !IsValidation(err) {
		t.Fatalf("missing location: %v", err)
	}
	if _, err := svc.Create(f.ctx, f.univ.ID, stopInput("Pole", 91, 0)); !IsValidation(err) {
		t.Fatalf("out of range: %v", err)
	}

	updated, err := svc.Update(f.ctx, f.univ.ID, stop.ID, stopInput("Central Library", 10, 20))
	if err != nil {
		t.Fatalf("Update in place: %v", err)
	}
	if updated.Name != "Central Library" {
		t.Fatalf("name = %q", updated.Name)
	}

	other, _ := f.otherUniversity(t)
	if _, err := svc.Get(f.ctx, other.ID, stop.ID); !IsNotFound(err) {
		t.Fatalf("cross-university get: %v", err)
	}

	if err := svc.Delete(f.ctx, f.univ.ID, stop.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := svc.Get(f.ctx, f.univ.ID, stop.ID); !IsNotFound(err) {
		t.Fatalf("stop still present: %v", err)
	}
}

func TestDeleteStopUsedByRoute(t *testing.T) {
	f := newFixture(t)
	err := NewStopService(f.store).Delete(f.ctx, f.univ.ID, f.stopID(1))
	if !IsRule(err) {
		t.Fatalf("expected rule error, got %v", err)
	}
}

func TestListStops(t *testing.T) {
	f := newFixture(t)
	svc := NewStopService(f.store)

	stops, err := svc.List(f.ctx, f.univ.ID)
	if err != nil || len(stops) != 3 {
		t.Fatalf("List = %d, %v", len(stops), err)
	}

	if _, err := svc.List(f.ctx, 9999); !IsNotFound(err) {
		t.Fatalf("empty list: %v", err)
	}
}
