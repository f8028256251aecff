package simulation

import (
	"errors"
	"testing"

	"github.com/nvandessel/conjoint/internal/design"
	"github.com/nvandessel/conjoint/internal/models"
	"github.com/nvandessel/conjoint/internal/rng"
)

func priceStudy() models.StudyConfig {
	return models.StudyConfig{
		Attributes: models.AttrLevels{
			{Name: "brand", Levels: models.CountLevels(3)},
			{Name: "price", Levels: models.CountLevels(5)},
		},
		NTasks:    1,
		NConcepts: 3,
		NVersions: 1,
	}
}

// priceDesign is a 1-version, 1-task, 3-concept design with price [1, 5, 2].
func priceDesign() *models.DesignTable {
	return models.NewDesignTable([]string{"brand", "price"}, []models.DesignRow{
		{Version: 1, Task: 1, Concept: 1, Levels: []int{3, 1}},
		{Version: 1, Task: 1, Concept: 2, Levels: []int{1, 5}},
		{Version: 1, Task: 1, Concept: 3, Levels: []int{2, 2}},
	})
}

func TestSimulate_Shape(t *testing.T) {
	cfg := models.StudyConfig{
		Attributes: models.AttrLevels{
			{Name: "price", Levels: models.CountLevels(3)},
			{Name: "brand", Levels: models.CountLevels(4)},
		},
		NTasks:    2,
		NConcepts: 3,
		NVersions: 1,
	}
	table, err := design.Generate(cfg, design.MethodRandom, 11)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	resp, err := Simulate(table, cfg, Options{Respondents: 5}, 11)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if resp.Len() != 5 {
		t.Fatalf("Len() = %d, want 5", resp.Len())
	}
	if resp.NumTasks() != 2 {
		t.Errorf("NumTasks() = %d, want 2", resp.NumTasks())
	}
	for i, row := range resp.Rows() {
		if row.RespondentID != models.RespondentID(i+1) {
			t.Errorf("row %d id = %q", i, row.RespondentID)
		}
		if len(row.Choices) != 2 {
			t.Fatalf("row %d has %d choices, want 2", i, len(row.Choices))
		}
		for _, c := range row.Choices {
			if c < 1 || c > 3 {
				t.Errorf("row %d choice = %d, want 1..3", i, c)
			}
		}
	}
	AssertChoicesValid(t, table, resp)
	AssertDriverRespected(t, table, resp)
}

func TestSimulate_DriverCorrectness(t *testing.T) {
	resp, err := Simulate(priceDesign(), priceStudy(), Options{Driver: "price", Respondents: 4}, 3)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if resp.Driver() != "price" {
		t.Errorf("Driver() = %q, want price", resp.Driver())
	}
	for _, row := range resp.Rows() {
		if row.Choices[0] != 2 {
			t.Errorf("%s chose %d, want 2", row.RespondentID, row.Choices[0])
		}
	}
}

func TestSimulate_TieGoesToFirstRow(t *testing.T) {
	table := models.NewDesignTable([]string{"price"}, []models.DesignRow{
		{Version: 1, Task: 1, Concept: 1, Levels: []int{2}},
		{Version: 1, Task: 1, Concept: 2, Levels: []int{4}},
		{Version: 1, Task: 1, Concept: 3, Levels: []int{4}},
	})
	cfg := models.StudyConfig{
		Attributes: models.AttrLevels{{Name: "price", Levels: models.CountLevels(4)}},
		NTasks:     1,
		NConcepts:  3,
		NVersions:  1,
	}
	resp, err := Simulate(table, cfg, Options{Driver: "price", Respondents: 1}, 0)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if got := resp.Row(0).Choices[0]; got != 2 {
		t.Errorf("choice = %d, want 2 (first of the tied rows)", got)
	}
}

func TestSimulate_NoneRowLosesTies(t *testing.T) {
	// The none row is last in its task, so with first-row tie-breaking it
	// never wins even when every real concept sits at level 0.
	table := models.NewDesignTable([]string{"price"}, []models.DesignRow{
		{Version: 1, Task: 1, Concept: 1, Levels: []int{0}},
		{Version: 1, Task: 1, Concept: 2, Levels: []int{0}},
		{Version: 1, Task: 1, Concept: 3, Levels: []int{0}},
		{Version: 1, Task: 2, Concept: 1, Levels: []int{0}},
		{Version: 1, Task: 2, Concept: 2, Levels: []int{1}},
		{Version: 1, Task: 2, Concept: 3, Levels: []int{0}},
	})
	cfg := models.StudyConfig{
		Attributes: models.AttrLevels{{Name: "price", Levels: models.CountLevels(2)}},
		NTasks:     2,
		NConcepts:  2,
		NVersions:  1,
		NoneOption: true,
	}
	resp, err := Simulate(table, cfg, Options{Driver: "price", Respondents: 1}, 0)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	got := resp.Row(0).Choices
	if got[0] != 1 {
		t.Errorf("all-zero task chose %d, want 1", got[0])
	}
	if got[1] != 2 {
		t.Errorf("task 2 chose %d, want 2", got[1])
	}
}

func TestSimulate_Deterministic(t *testing.T) {
	cfg := models.StudyConfig{
		Attributes: models.AttrLevels{
			{Name: "price", Levels: models.CountLevels(3)},
			{Name: "brand", Levels: models.CountLevels(4)},
			{Name: "size", Levels: models.CountLevels(2)},
		},
		NTasks:     4,
		NConcepts:  3,
		NVersions:  5,
		NoneOption: true,
	}
	table, err := design.Generate(cfg, design.MethodRandom, 999)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	a, err := Simulate(table, cfg, Options{Respondents: 50}, 999)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	b, err := Simulate(table, cfg, Options{Respondents: 50}, 999)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if a.Driver() != b.Driver() {
		t.Fatalf("drivers differ: %q vs %q", a.Driver(), b.Driver())
	}
	for i := 0; i < a.Len(); i++ {
		ra, rb := a.Row(i), b.Row(i)
		if ra.Version != rb.Version {
			t.Fatalf("respondent %d version differs", i+1)
		}
		for j := range ra.Choices {
			if ra.Choices[j] != rb.Choices[j] {
				t.Fatalf("respondent %d task %d differs", i+1, j+1)
			}
		}
	}
	AssertChoicesValid(t, table, a)
	AssertDriverRespected(t, table, a)
}

func TestSimulate_DrawOrder(t *testing.T) {
	cfg := models.StudyConfig{
		Attributes: models.AttrLevels{
			{Name: "price", Levels: models.CountLevels(3)},
			{Name: "brand", Levels: models.CountLevels(4)},
		},
		NTasks:    2,
		NConcepts: 2,
		NVersions: 4,
	}
	table, err := design.Generate(cfg, design.MethodOrthogonal, 0)
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}

	resp, err := Simulate(table, cfg, Options{Respondents: 20}, 5)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}

	r := rng.New(5)
	wantDriver := cfg.Attributes[r.IntN(len(cfg.Attributes))].Name
	if resp.Driver() != wantDriver {
		t.Errorf("Driver() = %q, want %q", resp.Driver(), wantDriver)
	}
	for i := 0; i < resp.Len(); i++ {
		if want := rng.Between(r, cfg.NVersions); resp.Row(i).Version != want {
			t.Fatalf("respondent %d version = %d, want %d", i+1, resp.Row(i).Version, want)
		}
	}
}

func TestSimulate_ExplicitDriverSkipsDriverDraw(t *testing.T) {
	cfg := priceStudy()
	cfg.NVersions = 1
	resp, err := Simulate(priceDesign(), cfg, Options{Driver: "brand", Respondents: 2}, 8)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if resp.Driver() != "brand" {
		t.Errorf("Driver() = %q, want brand", resp.Driver())
	}
	// brand levels are [3, 1, 2]
	if got := resp.Row(0).Choices[0]; got != 1 {
		t.Errorf("choice = %d, want 1", got)
	}
}

func TestSimulate_Errors(t *testing.T) {
	empty := models.NewDesignTable([]string{"price"}, nil)

	tests := []struct {
		name   string
		design *models.DesignTable
		cfg    func() models.StudyConfig
		opts   Options
		want   error
	}{
		{"nil design", nil, priceStudy, Options{Respondents: 1}, models.ErrPrecondition},
		{"empty design", empty, priceStudy, Options{Respondents: 1}, models.ErrPrecondition},
		{"unknown driver", priceDesign(), priceStudy, Options{Driver: "color", Respondents: 1}, models.ErrConfiguration},
		{"negative respondents", priceDesign(), priceStudy, Options{Respondents: -1}, models.ErrConfiguration},
		{
			"version never generated",
			priceDesign(),
			func() models.StudyConfig {
				cfg := priceStudy()
				cfg.NVersions = 50
				return cfg
			},
			Options{Driver: "price", Respondents: 20},
			models.ErrDesignMismatch,
		},
		{
			"negative task count",
			priceDesign(),
			func() models.StudyConfig {
				cfg := priceStudy()
				cfg.NTasks = -1
				return cfg
			},
			Options{Respondents: 1},
			models.ErrConfiguration,
		},
		{
			"zero task count",
			priceDesign(),
			func() models.StudyConfig {
				cfg := priceStudy()
				cfg.NTasks = 0
				return cfg
			},
			Options{Driver: "price", Respondents: 1},
			models.ErrConfiguration,
		},
		{
			"task never generated",
			priceDesign(),
			func() models.StudyConfig {
				cfg := priceStudy()
				cfg.NTasks = 2
				return cfg
			},
			Options{Driver: "price", Respondents: 1},
			models.ErrDesignMismatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := Simulate(tt.design, tt.cfg(), tt.opts, 1)
			if resp != nil {
				t.Error("expected nil table on error")
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestSimulate_ZeroRespondents(t *testing.T) {
	resp, err := Simulate(priceDesign(), priceStudy(), Options{Respondents: 0}, 1)
	if err != nil {
		t.Fatalf("Simulate() error = %v", err)
	}
	if resp.Len() != 0 {
		t.Errorf("Len() = %d, want 0", resp.Len())
	}
}

func TestShares(t *testing.T) {
	resp := models.NewResponseTable("price", 2, []models.ResponseRow{
		{RespondentID: "respid_1", Version: 1, Choices: []int{1, 2}},
		{RespondentID: "respid_2", Version: 1, Choices: []int{1, 3}},
		{RespondentID: "respid_3", Version: 1, Choices: []int{2, 3}},
		{RespondentID: "respid_4", Version: 1, Choices: []int{1, 3}},
	})

	shares := Shares(resp)
	if len(shares) != 2 {
		t.Fatalf("Shares() returned %d tasks, want 2", len(shares))
	}
	if shares[0].Shares[1] != 0.75 || shares[0].Shares[2] != 0.25 {
		t.Errorf("task 1 shares = %v", shares[0].Shares)
	}
	if shares[1].Shares[3] != 0.75 || shares[1].Shares[2] != 0.25 {
		t.Errorf("task 2 shares = %v", shares[1].Shares)
	}
	AssertSharesSumToOne(t, shares)
}
