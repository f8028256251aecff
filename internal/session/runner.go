// Package session runs designs and simulations end to end: apply defaults,
// call the core, persist the result and record it in the logs. The CLI, HTTP
// API and MCP server all go through a Runner.
package session

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/nvandessel/conjoint/internal/config"
	"github.com/nvandessel/conjoint/internal/design"
	"github.com/nvandessel/conjoint/internal/export"
	"github.com/nvandessel/conjoint/internal/logging"
	"github.com/nvandessel/conjoint/internal/models"
	"github.com/nvandessel/conjoint/internal/simulation"
	"github.com/nvandessel/conjoint/internal/store"
)

// Runner ties the core to a run store and the configured defaults.
type Runner struct {
	Root   string
	Store  store.RunStore
	Config *config.ConjointConfig
	Logger *slog.Logger
	Trace  *logging.TraceLog

	now func() time.Time
}

// NewRunner returns a Runner. A nil cfg uses config.Default and a nil logger
// discards output.
func NewRunner(root string, s store.RunStore, cfg *config.ConjointConfig, logger *slog.Logger, trace *logging.TraceLog) *Runner {
	if cfg == nil {
		cfg = config.Default()
	}
	if logger == nil {
		logger = logging.Discard()
	}
	return &Runner{Root: root, Store: s, Config: cfg, Logger: logger, Trace: trace, now: time.Now}
}

// DesignRequest asks for a new design. Zero-valued Method and nil Seed fall
// back to the configured defaults.
type DesignRequest struct {
	Study  models.StudyConfig
	Method string
	Seed   *int64
}

// SimulateRequest asks for simulated responses to a stored design.
type SimulateRequest struct {
	DesignID    string
	Driver      string
	Respondents *int
	Seed        *int64
}

// Design generates and stores a design.
func (r *Runner) Design(ctx context.Context, req DesignRequest) (*store.DesignRun, error) {
	methodName := req.Method
	if methodName == "" {
		methodName = r.Config.Design.Method
	}
	method, err := design.ParseMethod(methodName)
	if err != nil {
		return nil, err
	}
	seed := r.Config.Design.Seed
	if req.Seed != nil {
		seed = *req.Seed
	}

	table, err := design.Generate(req.Study, method, seed)
	if err != nil {
		return nil, err
	}

	run := &store.DesignRun{
		Study:  req.Study,
		Method: string(method),
		Seed:   seed,
		Table:  table,
	}
	if err := r.Store.SaveDesign(ctx, run); err != nil {
		return nil, fmt.Errorf("saving design: %w", err)
	}

	r.Logger.Info("design generated",
		"id", run.ID, "study", req.Study.Name, "method", run.Method, "seed", seed, "rows", table.Len())
	r.Trace.Record("design", run.ID, map[string]any{
		"study":  req.Study.Name,
		"method": run.Method,
		"seed":   seed,
		"rows":   table.Len(),
	})
	return run, nil
}

// Simulate loads a stored design, simulates respondents and stores the result.
func (r *Runner) Simulate(ctx context.Context, req SimulateRequest) (*store.ResponseRun, error) {
	dr, err := r.Store.GetDesign(ctx, req.DesignID)
	if err != nil {
		return nil, err
	}

	opts := simulation.Options{
		Driver:      req.Driver,
		Respondents: r.Config.Simulation.Respondents,
	}
	if opts.Driver == "" {
		opts.Driver = r.Config.Simulation.Driver
	}
	if req.Respondents != nil {
		opts.Respondents = *req.Respondents
	}
	seed := r.Config.Simulation.Seed
	if req.Seed != nil {
		seed = *req.Seed
	}

	table, err := simulation.Simulate(dr.Table, dr.Study, opts, seed)
	if err != nil {
		return nil, err
	}

	run := &store.ResponseRun{DesignID: dr.ID, Seed: seed, Table: table}
	if err := r.Store.SaveResponses(ctx, run); err != nil {
		return nil, fmt.Errorf("saving responses: %w", err)
	}

	r.Logger.Info("responses simulated",
		"id", run.ID, "design", dr.ID, "driver", table.Driver(), "respondents", table.Len(), "seed", seed)
	r.Trace.Record("simulate", run.ID, map[string]any{
		"design_id":   dr.ID,
		"driver":      table.Driver(),
		"respondents": table.Len(),
		"seed":        seed,
	})
	return run, nil
}

// ExportRequest names the runs to write into a study folder. ResponseID is
// optional.
type ExportRequest struct {
	DesignID   string
	ResponseID string
	Format     export.Format
}

// Export writes the design (and responses, when given) into a fresh study
// folder under .conjoint/studies and returns the folder's manifest and path.
func (r *Runner) Export(ctx context.Context, req ExportRequest) (*Manifest, string, error) {
	dr, err := r.Store.GetDesign(ctx, req.DesignID)
	if err != nil {
		return nil, "", err
	}
	var rr *store.ResponseRun
	if req.ResponseID != "" {
		rr, err = r.Store.GetResponses(ctx, req.ResponseID)
		if err != nil {
			return nil, "", err
		}
		if rr.DesignID != dr.ID {
			return nil, "", models.NewConfigurationError("response_id",
				"simulation %s was drawn from design %s, not %s", rr.ID, rr.DesignID, dr.ID)
		}
	}

	now := r.now()
	dir, err := store.EnsureStudyDir(r.Root, dr.Study.Name, now)
	if err != nil {
		return nil, "", err
	}

	m, err := writeStudyFolder(dir, now, dr, rr, req.Format)
	if err != nil {
		// The folder is new, so nothing but this export's partial files is lost.
		if rmErr := os.RemoveAll(dir); rmErr != nil {
			r.Logger.Warn("failed to remove partial study folder", "dir", dir, "error", rmErr)
		}
		return nil, "", err
	}

	r.Logger.Info("study exported", "dir", dir, "design", dr.ID, "responses", m.ResponseID, "format", m.Format)
	r.Trace.Record("export", dr.ID, map[string]any{
		"dir":         dir,
		"response_id": m.ResponseID,
		"format":      m.Format,
	})
	return m, dir, nil
}

// writeStudyFolder writes the export files and the manifest into dir.
func writeStudyFolder(dir string, now time.Time, dr *store.DesignRun, rr *store.ResponseRun, format export.Format) (*Manifest, error) {
	m := &Manifest{
		Study:     dr.Study.Name,
		DesignID:  dr.ID,
		Format:    string(format),
		CreatedAt: now.UTC(),
	}

	designFile := "design" + format.Ext()
	err := export.WriteFile(filepath.Join(dir, designFile), func(w io.Writer) error {
		return export.WriteDesign(w, format, dr.Table)
	})
	if err != nil {
		return nil, fmt.Errorf("exporting design: %w", err)
	}
	m.Files = append(m.Files, designFile)

	if rr != nil {
		respFile := "responses" + format.Ext()
		err = export.WriteFile(filepath.Join(dir, respFile), func(w io.Writer) error {
			return export.WriteResponses(w, format, rr.Table)
		})
		if err != nil {
			return nil, fmt.Errorf("exporting responses: %w", err)
		}
		m.ResponseID = rr.ID
		m.Files = append(m.Files, respFile)
	}

	if err := SaveManifest(m, dir); err != nil {
		return nil, err
	}
	return m, nil
}
