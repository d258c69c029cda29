package relations

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"
)

var templateVar = regexp.MustCompile(`\{\{\s*(FLICKFLOCK_VAR_[A-Z0-9_]+)\s*\}\}`)

// Loader handles loading and parsing of relations.yaml
type Loader struct {
	filePath string
}

// NewLoader creates a new relations loader
func NewLoader(filePath string) *Loader {
	return &Loader{
		filePath: filePath,
	}
}

// Path returns the file the loader reads.
func (l *Loader) Path() string {
	return l.filePath
}

// Load reads, expands and parses the relations file.
func (l *Loader) Load() (File, error) {
	data, err := os.ReadFile(l.filePath)
	if err != nil {
		return File{}, fmt.Errorf("failed to read relations file: %w", err)
	}

	data = expandTemplateVariables(data)

	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return File{}, fmt.Errorf("failed to parse relations yaml: %w", err)
	}

	return file, nil
}

// expandTemplateVariables replaces {{FLICKFLOCK_VAR_X}} with the value of
// the environment variable of the same name, or "" when unset.
func expandTemplateVariables(data []byte) []byte {
	return templateVar.ReplaceAllFunc(data, func(m []byte) []byte {
		name := templateVar.FindSubmatch(m)[1]
		return []byte(os.Getenv(string(name)))
	})
}
