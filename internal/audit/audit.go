// Package audit records item changes with a hash of their inputs.
package audit

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/fentz26/timeline/internal/models"
)

const (
	OutcomeApplied  = "applied"
	OutcomeRejected = "rejected"
)

// ChangeWriter persists change records.
type ChangeWriter interface {
	WriteChange(action models.ChangeAction, itemID, inputsHash, outcome, details string) (*models.ChangeRecord, error)
}

// Recorder writes change records for state-mutating actions.
type Recorder struct {
	w ChangeWriter
}

// NewRecorder creates a recorder writing through w.
func NewRecorder(w ChangeWriter) *Recorder {
	return &Recorder{w: w}
}

// Record writes a change record for action on itemID.
func (r *Recorder) Record(action models.ChangeAction, itemID string, inputs interface{}, outcome, details string) (*models.ChangeRecord, error) {
	return r.w.WriteChange(action, itemID, HashInputs(inputs), outcome, details)
}

// Applied records a successful action.
func (r *Recorder) Applied(action models.ChangeAction, itemID string, inputs interface{}) (*models.ChangeRecord, error) {
	return r.Record(action, itemID, inputs, OutcomeApplied, "")
}

// Rejected records an action the store refused, with the reason.
func (r *Recorder) Rejected(action models.ChangeAction, itemID string, inputs interface{}, reason error) (*models.ChangeRecord, error) {
	return r.Record(action, itemID, inputs, OutcomeRejected, reason.Error())
}

// HashInputs returns the hex SHA-256 of the JSON encoding of inputs.
func HashInputs(inputs interface{}) string {
	data, err := json.Marshal(inputs)
	if err != nil {
		return "hash_error"
	}
	hash := sha256.Sum256(data)
	return hex.EncodeToString(hash[:])
}
