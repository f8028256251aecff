package session

import (
	"time"

	"github.com/nvandessel/conjoint/internal/export"
	"github.com/nvandessel/conjoint/internal/models"
	"github.com/nvandessel/conjoint/internal/store"
)

// DesignView is the JSON shape of a design run shared by --json output, the
// HTTP API and MCP tools. Rows follow Columns.
type DesignView struct {
	ID        string             `json:"id"`
	Study     models.StudyConfig `json:"study"`
	Method    string             `json:"method"`
	Seed      int64              `json:"seed"`
	CreatedAt time.Time          `json:"created_at"`
	Columns   []string           `json:"columns"`
	Rows      [][]int            `json:"rows"`
}

// ResponseView is the JSON shape of a simulation run. Each row is keyed by
// respondent ID through the parallel Respondents slice.
type ResponseView struct {
	ID          string    `json:"id"`
	DesignID    string    `json:"design_id"`
	Driver      string    `json:"driver"`
	Seed        int64     `json:"seed"`
	CreatedAt   time.Time `json:"created_at"`
	Columns     []string  `json:"columns"`
	Respondents []string  `json:"respondents"`
	Rows        [][]int   `json:"rows"`
}

// NewDesignView flattens a design run.
func NewDesignView(run *store.DesignRun) DesignView {
	v := DesignView{
		ID:        run.ID,
		Study:     run.Study,
		Method:    run.Method,
		Seed:      run.Seed,
		CreatedAt: run.CreatedAt,
		Columns:   export.DesignColumns(run.Table),
		Rows:      make([][]int, 0, run.Table.Len()),
	}
	for _, row := range run.Table.Rows() {
		cells := append([]int{row.Version, row.Task, row.Concept}, row.Levels...)
		v.Rows = append(v.Rows, cells)
	}
	return v
}

// NewResponseView flattens a simulation run. Columns omit respid, which is
// carried in Respondents.
func NewResponseView(run *store.ResponseRun) ResponseView {
	v := ResponseView{
		ID:          run.ID,
		DesignID:    run.DesignID,
		Driver:      run.Table.Driver(),
		Seed:        run.Seed,
		CreatedAt:   run.CreatedAt,
		Columns:     export.ResponseColumns(run.Table)[1:],
		Respondents: make([]string, 0, run.Table.Len()),
		Rows:        make([][]int, 0, run.Table.Len()),
	}
	for _, row := range run.Table.Rows() {
		v.Respondents = append(v.Respondents, row.RespondentID)
		v.Rows = append(v.Rows, append([]int{row.Version}, row.Choices...))
	}
	return v
}
