package relations

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "relations.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to create test YAML file: %v", err)
	}
	return path
}

func TestLoaderLoad(t *testing.T) {
	path := writeFile(t, `---
person_expansion:
  max_works: 5
  max_cast_per_work: 8
  key_departments: [Directing, Writing]
  excluded_genre_ids: [10767]
`)

	file, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	props := file.PersonExpansion
	if props.MaxWorks != 5 || props.MaxCastPerWork != 8 {
		t.Errorf("limits = (%d, %d), want (5, 8)", props.MaxWorks, props.MaxCastPerWork)
	}
	if len(props.KeyDepartments) != 2 || len(props.ExcludedGenreIDs) != 1 {
		t.Errorf("props = %+v", props)
	}
}

func TestLoaderLoadWithTemplateVariables(t *testing.T) {
	t.Setenv("FLICKFLOCK_VAR_MAX_WORKS", "3")
	path := writeFile(t, `person_expansion:
  max_works: {{FLICKFLOCK_VAR_MAX_WORKS}}
`)

	file, err := NewLoader(path).Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if file.PersonExpansion.MaxWorks != 3 {
		t.Errorf("MaxWorks = %d, want 3", file.PersonExpansion.MaxWorks)
	}
}

func TestLoaderLoadFileNotFound(t *testing.T) {
	if _, err := NewLoader("/nonexistent/path/relations.yaml").Load(); err == nil {
		t.Error("Load() with non-existent file should return error")
	}
}

func TestLoaderLoadInvalidYAML(t *testing.T) {
	path := writeFile(t, "person_expansion: [unclosed")
	if _, err := NewLoader(path).Load(); err == nil {
		t.Error("Load() with invalid yaml should return error")
	}
}

func TestExpandTemplateVariables(t *testing.T) {
	t.Setenv("FLICKFLOCK_VAR_SET", "42")

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{name: "set variable", input: "a: {{FLICKFLOCK_VAR_SET}}", expected: "a: 42"},
		{name: "spaces inside braces", input: "a: {{ FLICKFLOCK_VAR_SET }}", expected: "a: 42"},
		{name: "unset variable", input: "a: {{FLICKFLOCK_VAR_UNSET}}", expected: "a: "},
		{name: "foreign template untouched", input: "a: {{OTHER}}", expected: "a: {{OTHER}}"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := string(expandTemplateVariables([]byte(tt.input))); got != tt.expected {
				t.Errorf("expandTemplateVariables() = %q, want %q", got, tt.expected)
			}
		})
	}
}
