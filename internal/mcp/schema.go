package mcp

// AttributeInput is one attribute of an inline study. Levels are labels; the
// design refers to them by 1-based position.
type AttributeInput struct {
	Name   string   `json:"name" jsonschema:"Attribute name, e.g. price"`
	Levels []string `json:"levels" jsonschema:"Level labels in order"`
}

// StudyInput is an inline study definition. Attributes are a list so their
// order is the design's column order.
type StudyInput struct {
	Name       string           `json:"name,omitempty" jsonschema:"Study name, used for export folders"`
	Attributes []AttributeInput `json:"attributes" jsonschema:"Attributes in column order"`
	NTasks     int              `json:"n_tasks" jsonschema:"Choice tasks per respondent"`
	NConcepts  int              `json:"n_concepts" jsonschema:"Concepts shown per task, excluding the none option"`
	NVersions  int              `json:"n_versions" jsonschema:"Number of questionnaire versions"`
	NoneOption bool             `json:"none_option,omitempty" jsonschema:"Append a none-of-these concept to every task"`
}

// ConjointDesignInput defines the input for the conjoint_design tool.
type ConjointDesignInput struct {
	StudyFile string      `json:"study_file,omitempty" jsonschema:"Path to a JSON, YAML or TOML study file, relative to the project root"`
	Study     *StudyInput `json:"study,omitempty" jsonschema:"Inline study definition, used when study_file is empty"`
	Method    string      `json:"method,omitempty" jsonschema:"random (default) or orthogonal"`
	Seed      *int64      `json:"seed,omitempty" jsonschema:"Random seed; defaults to the configured seed"`
}

// LevelCount is how often one level appears on real concepts.
type LevelCount struct {
	Level string `json:"level"`
	Count int    `json:"count"`
}

// AttributeBalance summarizes level balance for one attribute.
type AttributeBalance struct {
	Attribute string       `json:"attribute"`
	Counts    []LevelCount `json:"counts"`
	Spread    int          `json:"spread" jsonschema:"Most frequent minus least frequent level count"`
}

// ConjointDesignOutput defines the output for the conjoint_design tool.
type ConjointDesignOutput struct {
	ID        string             `json:"id" jsonschema:"Design run ID, pass to conjoint_simulate"`
	Study     string             `json:"study"`
	Method    string             `json:"method"`
	Seed      int64              `json:"seed"`
	CreatedAt string             `json:"created_at"`
	Columns   []string           `json:"columns" jsonschema:"Column names for each row"`
	Rows      [][]int            `json:"rows" jsonschema:"Design rows; level 0 marks the none option"`
	Balance   []AttributeBalance `json:"balance"`
	Resource  string             `json:"resource" jsonschema:"Resource URI serving the design as CSV"`
}

// ConjointSimulateInput defines the input for the conjoint_simulate tool.
type ConjointSimulateInput struct {
	DesignID    string `json:"design_id" jsonschema:"Design run ID returned by conjoint_design"`
	Driver      string `json:"driver,omitempty" jsonschema:"Attribute whose highest level wins each task; drawn at random when empty"`
	Respondents *int   `json:"respondents,omitempty" jsonschema:"Number of simulated respondents"`
	Seed        *int64 `json:"seed,omitempty" jsonschema:"Random seed; defaults to the configured seed"`
}

// ConceptShare is the fraction of respondents choosing one concept.
type ConceptShare struct {
	Concept int     `json:"concept"`
	Share   float64 `json:"share"`
}

// TaskShareItem lists concept shares for one task.
type TaskShareItem struct {
	Task   int            `json:"task"`
	Shares []ConceptShare `json:"shares"`
}

// ConjointSimulateOutput defines the output for the conjoint_simulate tool.
type ConjointSimulateOutput struct {
	ID          string          `json:"id"`
	DesignID    string          `json:"design_id"`
	Driver      string          `json:"driver"`
	Seed        int64           `json:"seed"`
	CreatedAt   string          `json:"created_at"`
	Columns     []string        `json:"columns" jsonschema:"Column names for each row"`
	Respondents []string        `json:"respondents" jsonschema:"Respondent IDs, one per row"`
	Rows        [][]int         `json:"rows" jsonschema:"Version followed by the chosen concept per task"`
	Shares      []TaskShareItem `json:"shares"`
}

// ConjointRunsInput defines the input for the conjoint_runs tool.
type ConjointRunsInput struct {
	Kind string `json:"kind,omitempty" jsonschema:"Filter by run kind: design or simulation"`
}

// RunItem is a list view of a stored run.
type RunItem struct {
	ID        string `json:"id"`
	Kind      string `json:"kind"`
	Study     string `json:"study"`
	DesignID  string `json:"design_id,omitempty"`
	Method    string `json:"method,omitempty"`
	Driver    string `json:"driver,omitempty"`
	Seed      int64  `json:"seed"`
	Rows      int    `json:"rows"`
	CreatedAt string `json:"created_at"`
}

// ConjointRunsOutput defines the output for the conjoint_runs tool.
type ConjointRunsOutput struct {
	Runs  []RunItem `json:"runs"`
	Count int       `json:"count"`
}
