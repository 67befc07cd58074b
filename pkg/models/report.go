package models

import (
	"fmt"
	"time"
)

// Outcome is what happened to a single item during a sync run.
type Outcome string

const (
	OutcomeImported Outcome = "imported"
	OutcomeSkipped  Outcome = "skipped"
	OutcomeFailed   Outcome = "failed"
)

// FieldFailure records an asset field that could not be downloaded.
// The item was still written with the original asset id in that field.
type FieldFailure struct {
	Collection string `json:"collection"`
	ItemID     string `json:"item_id"`
	Field      string `json:"field"`
	AssetID    string `json:"asset_id"`
	Err        error  `json:"-"`
}

func (f FieldFailure) Error() string {
	return fmt.Sprintf("%s/%s field %s (asset %s): %v", f.Collection, f.ItemID, f.Field, f.AssetID, f.Err)
}

// ItemResult is the settled state of one item import.
type ItemResult struct {
	Collection    string
	ItemID        string
	Outcome       Outcome
	Reason        string
	Path          string
	Err           error
	FieldFailures []FieldFailure
}

// Failure is an item, or a whole collection listing when ItemID is empty,
// that could not be imported.
type Failure struct {
	Collection string `json:"collection"`
	ItemID     string `json:"item_id,omitempty"`
	Err        error  `json:"-"`
}

func (f Failure) Error() string {
	if f.ItemID == "" {
		return fmt.Sprintf("%s: %v", f.Collection, f.Err)
	}
	return fmt.Sprintf("%s/%s: %v", f.Collection, f.ItemID, f.Err)
}

// RunReport summarizes a sync run. It is not safe for concurrent use.
type RunReport struct {
	StartedAt     time.Time
	FinishedAt    time.Time
	Collections   int
	Imported      int
	Skipped       int
	Failed        int
	Failures      []Failure
	FieldFailures []FieldFailure
}

func NewRunReport(started time.Time) *RunReport {
	return &RunReport{StartedAt: started}
}

// Add folds an item result into the report.
func (r *RunReport) Add(res ItemResult) {
	switch res.Outcome {
	case OutcomeImported:
		r.Imported++
	case OutcomeSkipped:
		r.Skipped++
	case OutcomeFailed:
		r.Failed++
		r.Failures = append(r.Failures, Failure{Collection: res.Collection, ItemID: res.ItemID, Err: res.Err})
	}
	r.FieldFailures = append(r.FieldFailures, res.FieldFailures...)
}

// AddCollectionFailure records a collection whose items could not be listed.
func (r *RunReport) AddCollectionFailure(collection string, err error) {
	r.Failures = append(r.Failures, Failure{Collection: collection, Err: err})
}

// Duration is the wall time of the run.
func (r *RunReport) Duration() time.Duration {
	return r.FinishedAt.Sub(r.StartedAt)
}

func (r *RunReport) String() string {
	return fmt.Sprintf("collections=%d imported=%d skipped=%d failed=%d field_failures=%d",
		r.Collections, r.Imported, r.Skipped, r.Failed, len(r.FieldFailures))
}
