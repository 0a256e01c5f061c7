package audit

import (
	"errors"
	"testing"

	"github.com/fentz26/timeline/internal/models"
	"github.com/fentz26/timeline/internal/store"
)

func TestHashInputs(t *testing.T) {
	a := HashInputs(map[string]string{"id": "1", "name": "A"})
	b := HashInputs(map[string]string{"name": "A", "id": "1"})
	if a != b {
		t.Error("expected identical hashes for equal inputs")
	}
	if len(a) != 64 {
		t.Errorf("expected 64 hex chars, got %d", len(a))
	}
	if HashInputs(map[string]string{"id": "2"}) == a {
		t.Error("expected different hash for different inputs")
	}
	if got := HashInputs(func() {}); got != "hash_error" {
		t.Errorf("expected hash_error for unencodable input, got %s", got)
	}
}

func TestRecorder(t *testing.T) {
	s, err := store.New()
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	defer s.Close()

	r := NewRecorder(s)
	inputs := map[string]string{"id": "1", "name": "Discovery"}
	rec, err := r.Applied(models.ChangeRename, "1", inputs)
	if err != nil {
		t.Fatalf("Applied failed: %v", err)
	}
	if rec.Outcome != OutcomeApplied || rec.InputsHash != HashInputs(inputs) {
		t.Errorf("unexpected record %+v", rec)
	}

	rec, err = r.Rejected(models.ChangeRename, "1", inputs, errors.New("boom"))
	if err != nil {
		t.Fatalf("Rejected failed: %v", err)
	}
	if rec.Outcome != OutcomeRejected || rec.Details != "boom" {
		t.Errorf("unexpected record %+v", rec)
	}

	changes, err := s.ListChanges("1", 0)
	if err != nil {
		t.Fatalf("ListChanges failed: %v", err)
	}
	if len(changes) != 2 {
		t.Errorf("expected 2 changes, got %d", len(changes))
	}
}
