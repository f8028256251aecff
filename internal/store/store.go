// Package store persists design and simulation runs so they can be listed,
// re-read and exported after the command that produced them has exited.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/nvandessel/conjoint/internal/models"
)

// ErrNotFound is returned when a run ID does not exist.
var ErrNotFound = errors.New("run not found")

// Run kinds reported by ListRuns.
const (
	KindDesign     = "design"
	KindSimulation = "simulation"
)

// DesignRun is a generated design together with the inputs that produced it.
type DesignRun struct {
	ID        string              `json:"id"`
	Study     models.StudyConfig  `json:"study"`
	Method    string              `json:"method"`
	Seed      int64               `json:"seed"`
	CreatedAt time.Time           `json:"created_at"`
	Table     *models.DesignTable `json:"-"`
}

// ResponseRun is a simulated response table and the design it was drawn from.
type ResponseRun struct {
	ID        string                `json:"id"`
	DesignID  string                `json:"design_id"`
	Seed      int64                 `json:"seed"`
	CreatedAt time.Time             `json:"created_at"`
	Table     *models.ResponseTable `json:"-"`
}

// RunSummary is one line of the run listing.
type RunSummary struct {
	ID        string    `json:"id"`
	Kind      string    `json:"kind"`
	Study     string    `json:"study"`
	DesignID  string    `json:"design_id,omitempty"`
	Method    string    `json:"method,omitempty"`
	Driver    string    `json:"driver,omitempty"`
	Seed      int64     `json:"seed"`
	Rows      int       `json:"rows"`
	CreatedAt time.Time `json:"created_at"`
}

// RunStore persists design and response runs.
type RunStore interface {
	// SaveDesign stores run, assigning an ID and CreatedAt when unset.
	SaveDesign(ctx context.Context, run *DesignRun) error
	GetDesign(ctx context.Context, id string) (*DesignRun, error)

	// SaveResponses stores run, assigning an ID and CreatedAt when unset.
	// The referenced design must exist.
	SaveResponses(ctx context.Context, run *ResponseRun) error
	GetResponses(ctx context.Context, id string) (*ResponseRun, error)

	// ListRuns returns every run, newest first.
	ListRuns(ctx context.Context) ([]RunSummary, error)

	Close() error
}

// NewRunID returns a short unique ID with the given prefix, e.g. "d-1a2b3c4d".
func NewRunID(prefix string) string {
	return prefix + "-" + uuid.NewString()[:8]
}
