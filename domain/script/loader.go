package script

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// yamlScript is the YAML structure for script definitions.
type yamlScript struct {
	Name        string     `yaml:"name"`
	Description string     `yaml:"description"`
	Version     string     `yaml:"version"`
	Author      string     `yaml:"author"`
	Steps       []yamlStep `yaml:"steps"`
}

type yamlStep struct {
	Op                string            `yaml:"op"`
	URL               string            `yaml:"url,omitempty"`
	Selector          string            `yaml:"selector,omitempty"`
	Value             string            `yaml:"value,omitempty"`
	Values            map[string]string `yaml:"values,omitempty"`
	Script            string            `yaml:"script,omitempty"`
	Text              string            `yaml:"text,omitempty"`
	Path              string            `yaml:"path,omitempty"`
	Duration          duration          `yaml:"duration,omitempty"`
	Timeout           duration          `yaml:"timeout,omitempty"`
	ExpectLoading     bool              `yaml:"expectLoading,omitempty"`
	ContinueOnFailure bool              `yaml:"continueOnFailure,omitempty"`
}

// duration is a wrapper for time.Duration that handles YAML parsing.
type duration time.Duration

func (d *duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = duration(parsed)
	return nil
}

// Loader handles loading script definitions from various sources.
type Loader struct {
	registry *Registry
}

// NewLoader creates a new script loader that populates the given registry.
func NewLoader(registry *Registry) *Loader {
	return &Loader{registry: registry}
}

// LoadFromFS loads script definitions from an embedded or real filesystem.
// It expects YAML files in a "scripts" subdirectory.
func (l *Loader) LoadFromFS(fsys fs.FS) error {
	return l.loadDir(fsys, "scripts")
}

// LoadFromDir loads script definitions from a directory on disk.
func (l *Loader) LoadFromDir(dir string) error {
	return l.loadDir(os.DirFS(dir), ".")
}

func (l *Loader) loadDir(fsys fs.FS, root string) error {
	entries, err := fs.ReadDir(fsys, root)
	if err != nil {
		return fmt.Errorf("failed to read scripts directory: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := filepath.Ext(entry.Name())
		if ext != ".yaml" && ext != ".yml" {
			continue
		}

		if err := l.loadFile(fsys, path.Join(root, entry.Name())); err != nil {
			return err
		}
	}

	return nil
}

// loadFile loads a single script definition file.
func (l *Loader) loadFile(fsys fs.FS, path string) error {
	data, err := fs.ReadFile(fsys, path)
	if err != nil {
		return fmt.Errorf("failed to read script file %s: %w", path, err)
	}

	var ys yamlScript
	if err := yaml.Unmarshal(data, &ys); err != nil {
		return fmt.Errorf("failed to parse script file %s: %w", path, err)
	}

	script := convertYAMLScript(&ys)
	if err := script.Validate(); err != nil {
		return fmt.Errorf("invalid script file %s: %w", path, err)
	}
	l.registry.Register(script)

	return nil
}

// convertYAMLScript converts a YAML script to a domain Script.
func convertYAMLScript(ys *yamlScript) *Script {
	script := &Script{
		Name:        ys.Name,
		Description: ys.Description,
		Version:     ys.Version,
		Author:      ys.Author,
		Steps:       make([]Step, len(ys.Steps)),
	}

	for i, step := range ys.Steps {
		script.Steps[i] = Step{
			Op:                OpType(step.Op),
			URL:               step.URL,
			Selector:          step.Selector,
			Value:             step.Value,
			Values:            step.Values,
			Script:            step.Script,
			Text:              step.Text,
			Path:              step.Path,
			Duration:          time.Duration(step.Duration),
			Timeout:           time.Duration(step.Timeout),
			ExpectLoading:     step.ExpectLoading,
			ContinueOnFailure: step.ContinueOnFailure,
		}
	}

	return script
}
