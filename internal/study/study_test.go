package study

import (
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/nvandessel/conjoint/internal/models"
)

const jsonStudy = `{
  "attrlevels": {"price": ["$1", "$2", "$3"], "brand": 4, "color": ["red", "blue"]},
  "n_tasks": 2,
  "n_concepts": 3,
  "n_versions": 5,
  "none_option": true
}`

const yamlStudy = `
name: snacks
attrlevels:
  price: ["$1", "$2", "$3"]
  brand: 4
  color: [red, blue]
n_tasks: 2
n_concepts: 3
n_versions: 5
none_option: true
`

const tomlStudyText = `
n_tasks = 2
n_concepts = 3
n_versions = 5
none_option = true

[attrlevels]
price = ["$1", "$2", "$3"]
brand = 4
color = ["red", "blue"]
`

func TestParse_PreservesAttributeOrder(t *testing.T) {
	tests := []struct {
		name   string
		data   string
		format Format
	}{
		{"json", jsonStudy, FormatJSON},
		{"yaml", yamlStudy, FormatYAML},
		{"toml", tomlStudyText, FormatTOML},
	}

	wantNames := []string{"price", "brand", "color"}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.data), tt.format)
			if err != nil {
				t.Fatalf("Parse() error = %v", err)
			}
			if got := cfg.AttributeNames(); !reflect.DeepEqual(got, wantNames) {
				t.Errorf("attribute order = %v, want %v", got, wantNames)
			}
			if got := cfg.Attributes[1].Levels; !reflect.DeepEqual(got, []string{"1", "2", "3", "4"}) {
				t.Errorf("count shorthand levels = %v, want 1..4", got)
			}
			if cfg.NTasks != 2 || cfg.NConcepts != 3 || cfg.NVersions != 5 || !cfg.NoneOption {
				t.Errorf("scalar fields = %+v", cfg)
			}
		})
	}
}

func TestParse_ListForm(t *testing.T) {
	data := `{"attrlevels": [{"name": "b", "levels": ["x"]}, {"name": "a", "levels": ["y", "z"]}],
	"n_tasks": 1, "n_concepts": 1, "n_versions": 1}`
	cfg, err := Parse([]byte(data), FormatJSON)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if got := cfg.AttributeNames(); !reflect.DeepEqual(got, []string{"b", "a"}) {
		t.Errorf("attribute order = %v, want [b a]", got)
	}
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name      string
		data      string
		wantField string
	}{
		{"missing attrlevels", `{"n_tasks": 1, "n_concepts": 1, "n_versions": 1}`, "attrlevels"},
		{"zero tasks", `{"attrlevels": {"a": 2}, "n_concepts": 1, "n_versions": 1}`, "n_tasks"},
		{"zero concepts", `{"attrlevels": {"a": 2}, "n_tasks": 1, "n_versions": 1}`, "n_concepts"},
		{"zero versions", `{"attrlevels": {"a": 2}, "n_tasks": 1, "n_concepts": 1}`, "n_versions"},
		{"empty levels", `{"attrlevels": {"a": []}, "n_tasks": 1, "n_concepts": 1, "n_versions": 1}`, "attrlevels.a"},
		{"bad count", `{"attrlevels": {"a": 0}, "n_tasks": 1, "n_concepts": 1, "n_versions": 1}`, "attrlevels.a"},
		{"duplicate level", `{"attrlevels": {"a": ["x", "x"]}, "n_tasks": 1, "n_concepts": 1, "n_versions": 1}`, "attrlevels.a"},
		{"levels not list", `{"attrlevels": {"a": {"x": 1}}, "n_tasks": 1, "n_concepts": 1, "n_versions": 1}`, "attrlevels.a"},
		{"malformed json", `{"attrlevels": `, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data), FormatJSON)
			if err == nil {
				t.Fatal("Parse() error = nil, want configuration error")
			}
			if !errors.Is(err, models.ErrConfiguration) {
				t.Fatalf("error %v is not a configuration error", err)
			}
			var cfgErr *models.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("error %T is not *ConfigurationError", err)
			}
			if cfgErr.Field != tt.wantField {
				t.Errorf("Field = %q, want %q", cfgErr.Field, tt.wantField)
			}
		})
	}
}

func TestValidate_DuplicateAttribute(t *testing.T) {
	cfg := models.StudyConfig{
		Attributes: models.AttrLevels{{Name: "a", Levels: []string{"1"}}, {Name: "a", Levels: []string{"1"}}},
		NTasks:     1,
		NConcepts:  1,
		NVersions:  1,
	}
	if err := Validate(cfg); !errors.Is(err, models.ErrConfiguration) {
		t.Errorf("Validate() = %v, want configuration error", err)
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "snacks.toml")
	if err := os.WriteFile(path, []byte(tomlStudyText), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if cfg.Name != "snacks" {
		t.Errorf("Name = %q, want name derived from file %q", cfg.Name, "snacks")
	}
}

func TestLoadFile_UnsupportedExtension(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "study.ini"))
	if !errors.Is(err, models.ErrConfiguration) {
		t.Errorf("LoadFile(.ini) = %v, want configuration error", err)
	}
}

func TestEncodeYAML_RoundTrip(t *testing.T) {
	want := Example()
	data, err := EncodeYAML(want)
	if err != nil {
		t.Fatalf("EncodeYAML() error = %v", err)
	}
	got, err := Parse(data, FormatYAML)
	if err != nil {
		t.Fatalf("Parse() error = %v\n%s", err, data)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip = %+v, want %+v", got, want)
	}
}

func TestParse_NormalizesLabels(t *testing.T) {
	data := "{\"attrlevels\": {\" price\\u0000 \": [\" $1 \", \"$2\"]}, \"n_tasks\": 1, \"n_concepts\": 1, \"n_versions\": 1}"
	cfg, err := Parse([]byte(data), FormatJSON)
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Attributes[0].Name != "price" {
		t.Errorf("Name = %q, want %q", cfg.Attributes[0].Name, "price")
	}
	if cfg.Attributes[0].Levels[0] != "$1" {
		t.Errorf("Levels[0] = %q, want %q", cfg.Attributes[0].Levels[0], "$1")
	}
}
