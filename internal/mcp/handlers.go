package mcp

import (
	"bytes"
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/nvandessel/conjoint/internal/design"
	"github.com/nvandessel/conjoint/internal/export"
	"github.com/nvandessel/conjoint/internal/models"
	"github.com/nvandessel/conjoint/internal/pathutil"
	"github.com/nvandessel/conjoint/internal/ratelimit"
	"github.com/nvandessel/conjoint/internal/session"
	"github.com/nvandessel/conjoint/internal/simulation"
	"github.com/nvandessel/conjoint/internal/store"
	"github.com/nvandessel/conjoint/internal/study"
)

// designResourcePrefix is the URI prefix of the design CSV resource template.
const designResourcePrefix = "conjoint://designs/"

// registerTools registers all conjoint MCP tools with the server.
func (s *Server) registerTools() {
	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "conjoint_design",
		Description: "Generate a choice-based conjoint design from a study file or inline study and store it",
	}, s.handleConjointDesign)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "conjoint_simulate",
		Description: "Simulate respondents choosing the concept with the highest level of a driver attribute in a stored design",
	}, s.handleConjointSimulate)

	sdk.AddTool(s.server, &sdk.Tool{
		Name:        "conjoint_runs",
		Description: "List stored design and simulation runs, newest first",
	}, s.handleConjointRuns)
}

// registerResources registers the design CSV resource template.
func (s *Server) registerResources() {
	s.server.AddResourceTemplate(&sdk.ResourceTemplate{
		URITemplate: designResourcePrefix + "{id}",
		Name:        "conjoint-design-csv",
		Description: "A stored design as CSV with version, task, concept and one column per attribute.",
		MIMEType:    "text/csv",
	}, s.handleDesignResource)
}

func (s *Server) handleConjointDesign(ctx context.Context, req *sdk.CallToolRequest, args ConjointDesignInput) (_ *sdk.CallToolResult, _ ConjointDesignOutput, retErr error) {
	start := time.Now()
	var runID string
	defer func() {
		params := map[string]any{"method": args.Method}
		if args.Seed != nil {
			params["seed"] = *args.Seed
		}
		if args.StudyFile != "" {
			params["study_file"] = args.StudyFile
		}
		if args.Study != nil {
			params["study"] = true
		}
		s.auditTool("conjoint_design", start, runID, retErr, params)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "conjoint_design"); err != nil {
		return nil, ConjointDesignOutput{}, err
	}

	cfg, err := s.resolveStudy(args)
	if err != nil {
		return nil, ConjointDesignOutput{}, err
	}
	if limit := s.runner.Config.Server.MaxDesignRows; limit > 0 && !cfg.RowsAtMost(limit) {
		return nil, ConjointDesignOutput{}, models.NewConfigurationError("n_versions",
			"design would exceed %d rows per call", limit)
	}

	run, err := s.runner.Design(ctx, session.DesignRequest{
		Study:  cfg,
		Method: args.Method,
		Seed:   args.Seed,
	})
	if err != nil {
		return nil, ConjointDesignOutput{}, err
	}
	runID = run.ID

	view := session.NewDesignView(run)
	return nil, ConjointDesignOutput{
		ID:        run.ID,
		Study:     run.Study.Name,
		Method:    run.Method,
		Seed:      run.Seed,
		CreatedAt: run.CreatedAt.Format(time.RFC3339),
		Columns:   view.Columns,
		Rows:      view.Rows,
		Balance:   balanceItems(run.Study, design.Balance(run.Study, run.Table)),
		Resource:  designResourcePrefix + run.ID,
	}, nil
}

// resolveStudy loads the study file when given, otherwise converts the
// inline study. Exactly one must be set.
func (s *Server) resolveStudy(args ConjointDesignInput) (models.StudyConfig, error) {
	switch {
	case args.StudyFile != "" && args.Study != nil:
		return models.StudyConfig{}, models.NewConfigurationError("study", "set either study_file or study, not both")
	case args.StudyFile != "":
		path, err := pathutil.Confine(s.root, args.StudyFile)
		if err != nil {
			return models.StudyConfig{}, models.NewConfigurationError("study_file", "%v", err)
		}
		return study.LoadFile(path)
	case args.Study != nil:
		in := args.Study
		cfg := models.StudyConfig{
			Name:       in.Name,
			Attributes: make(models.AttrLevels, len(in.Attributes)),
			NTasks:     in.NTasks,
			NConcepts:  in.NConcepts,
			NVersions:  in.NVersions,
			NoneOption: in.NoneOption,
		}
		for i, a := range in.Attributes {
			cfg.Attributes[i] = models.Attribute{Name: a.Name, Levels: a.Levels}
		}
		cfg = study.Normalize(cfg)
		if err := study.Validate(cfg); err != nil {
			return models.StudyConfig{}, err
		}
		return cfg, nil
	default:
		return models.StudyConfig{}, models.NewConfigurationError("study", "study_file or study is required")
	}
}

// balanceItems lists level counts in the study's level order.
func balanceItems(cfg models.StudyConfig, balance []design.LevelBalance) []AttributeBalance {
	out := make([]AttributeBalance, 0, len(balance))
	for i, b := range balance {
		item := AttributeBalance{Attribute: b.Attribute, Spread: b.Spread()}
		for _, l := range cfg.Attributes[i].Levels {
			item.Counts = append(item.Counts, LevelCount{Level: l, Count: b.Counts[l]})
		}
		out = append(out, item)
	}
	return out
}

func (s *Server) handleConjointSimulate(ctx context.Context, req *sdk.CallToolRequest, args ConjointSimulateInput) (_ *sdk.CallToolResult, _ ConjointSimulateOutput, retErr error) {
	start := time.Now()
	var runID string
	defer func() {
		params := map[string]any{"design_id": args.DesignID, "driver": args.Driver}
		if args.Respondents != nil {
			params["respondents"] = *args.Respondents
		}
		if args.Seed != nil {
			params["seed"] = *args.Seed
		}
		s.auditTool("conjoint_simulate", start, runID, retErr, params)
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "conjoint_simulate"); err != nil {
		return nil, ConjointSimulateOutput{}, err
	}
	if args.DesignID == "" {
		return nil, ConjointSimulateOutput{}, models.NewConfigurationError("design_id", "is required")
	}
	if limit := s.runner.Config.Server.MaxRespondents; args.Respondents != nil && limit > 0 && *args.Respondents > limit {
		return nil, ConjointSimulateOutput{}, models.NewConfigurationError("respondents",
			"at most %d respondents per call, got %d", limit, *args.Respondents)
	}

	run, err := s.runner.Simulate(ctx, session.SimulateRequest{
		DesignID:    args.DesignID,
		Driver:      args.Driver,
		Respondents: args.Respondents,
		Seed:        args.Seed,
	})
	if err != nil {
		return nil, ConjointSimulateOutput{}, err
	}
	runID = run.ID

	view := session.NewResponseView(run)
	return nil, ConjointSimulateOutput{
		ID:          run.ID,
		DesignID:    run.DesignID,
		Driver:      view.Driver,
		Seed:        run.Seed,
		CreatedAt:   run.CreatedAt.Format(time.RFC3339),
		Columns:     view.Columns,
		Respondents: view.Respondents,
		Rows:        view.Rows,
		Shares:      shareItems(simulation.Shares(run.Table)),
	}, nil
}

func shareItems(shares []simulation.TaskShares) []TaskShareItem {
	out := make([]TaskShareItem, 0, len(shares))
	for _, ts := range shares {
		item := TaskShareItem{Task: ts.Task}
		concepts := make([]int, 0, len(ts.Shares))
		for c := range ts.Shares {
			concepts = append(concepts, c)
		}
		sort.Ints(concepts)
		for _, c := range concepts {
			item.Shares = append(item.Shares, ConceptShare{Concept: c, Share: ts.Shares[c]})
		}
		out = append(out, item)
	}
	return out
}

func (s *Server) handleConjointRuns(ctx context.Context, req *sdk.CallToolRequest, args ConjointRunsInput) (_ *sdk.CallToolResult, _ ConjointRunsOutput, retErr error) {
	start := time.Now()
	defer func() {
		s.auditTool("conjoint_runs", start, "", retErr, map[string]any{"kind": args.Kind})
	}()

	if err := ratelimit.CheckLimit(s.toolLimiters, "conjoint_runs"); err != nil {
		return nil, ConjointRunsOutput{}, err
	}

	kind := strings.ToLower(strings.TrimSpace(args.Kind))
	if kind != "" && kind != store.KindDesign && kind != store.KindSimulation {
		return nil, ConjointRunsOutput{}, models.NewConfigurationError("kind", "must be design or simulation, got %q", args.Kind)
	}

	runs, err := s.store.ListRuns(ctx)
	if err != nil {
		return nil, ConjointRunsOutput{}, fmt.Errorf("failed to list runs: %w", err)
	}

	items := make([]RunItem, 0, len(runs))
	for _, r := range runs {
		if kind != "" && r.Kind != kind {
			continue
		}
		items = append(items, RunItem{
			ID:        r.ID,
			Kind:      r.Kind,
			Study:     r.Study,
			DesignID:  r.DesignID,
			Method:    r.Method,
			Driver:    r.Driver,
			Seed:      r.Seed,
			Rows:      r.Rows,
			CreatedAt: r.CreatedAt.Format(time.RFC3339),
		})
	}

	return nil, ConjointRunsOutput{Runs: items, Count: len(items)}, nil
}

// handleDesignResource serves conjoint://designs/{id} as CSV.
func (s *Server) handleDesignResource(ctx context.Context, req *sdk.ReadResourceRequest) (*sdk.ReadResourceResult, error) {
	uri := req.Params.URI
	if !strings.HasPrefix(uri, designResourcePrefix) {
		return nil, fmt.Errorf("invalid URI format: %s", uri)
	}
	id := strings.TrimPrefix(uri, designResourcePrefix)

	run, err := s.store.GetDesign(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("design not found: %s: %w", id, err)
	}

	var buf bytes.Buffer
	if err := export.WriteDesignCSV(&buf, run.Table); err != nil {
		return nil, fmt.Errorf("failed to render design: %w", err)
	}

	return &sdk.ReadResourceResult{
		Contents: []*sdk.ResourceContents{
			{
				URI:      uri,
				MIMEType: "text/csv",
				Text:     buf.String(),
			},
		},
	}, nil
}
