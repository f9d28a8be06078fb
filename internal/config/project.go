package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"gopkg.in/yaml.v3"

	"github.com/toolgauge/toolgauge/internal/utils"
	"github.com/toolgauge/toolgauge/internal/validation"
)

// ConfigFileName is the project file searched for in the working directory
// and its ancestors.
const ConfigFileName = ".toolgauge.yaml"

// maxSearchDepth caps how many parent directories the search climbs.
const maxSearchDepth = 10

// ScenarioOverride adjusts a single scenario from the project file.
type ScenarioOverride struct {
	Enabled     *bool    `mapstructure:"enabled"`
	MaxTokens   int      `mapstructure:"max_tokens"`
	Temperature *float64 `mapstructure:"temperature"`
}

// Disabled reports whether the override turns the scenario off entirely.
func (o ScenarioOverride) Disabled() bool {
	return o.Enabled != nil && !*o.Enabled
}

// projectFile mirrors the YAML shape of .toolgauge.yaml.
type projectFile struct {
	APIURL     string                    `yaml:"api_url"`
	Timeout    int                       `yaml:"timeout"`
	MaxWorkers int                       `yaml:"max_workers"`
	OutputDir  string                    `yaml:"output_dir"`
	DBPath     string                    `yaml:"db_path"`
	Quick      *bool                     `yaml:"quick"`
	Scenarios  map[string]map[string]any `yaml:"scenarios"`
	Planner    *plannerSection           `yaml:"planner"`
}

type plannerSection struct {
	Planners      []string           `yaml:"planners"`
	Critics       []string           `yaml:"critics"`
	Refiner       string             `yaml:"refiner"`
	CriticWeights map[string]float64 `yaml:"critic_weights"`
}

// Load builds the effective Config for a run started in startDir. Project
// file settings apply first, then environment variables, then the explicit
// opts, so command-line flags always win.
func Load(startDir string, opts ...Option) (*Config, error) {
	fileOpts, err := loadProjectFile(startDir)
	if err != nil {
		return nil, err
	}

	envOpts, err := FromEnv()
	if err != nil {
		return nil, err
	}

	all := make([]Option, 0, len(fileOpts)+len(envOpts)+len(opts))
	all = append(all, fileOpts...)
	all = append(all, envOpts...)
	all = append(all, opts...)
	return New(all...), nil
}

// loadProjectFile finds and parses the nearest project file. A missing file
// is not an error; a malformed one is.
func loadProjectFile(startDir string) ([]Option, error) {
	path, err := findProjectFile(startDir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if errs := validation.ValidateProjectBytes(data); len(errs) > 0 {
		return nil, fmt.Errorf("invalid project file %s: %s", path, strings.Join(errs, "; "))
	}

	var pf projectFile
	if err := yaml.Unmarshal(data, &pf); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return projectFileOptions(&pf, filepath.Dir(path))
}

// projectFileOptions translates a parsed project file into options. Relative
// paths are resolved against the directory holding the file, so a run started
// in a subdirectory lands artifacts in the same place.
func projectFileOptions(pf *projectFile, baseDir string) ([]Option, error) {
	var opts []Option

	if pf.APIURL != "" {
		opts = append(opts, WithAPIURL(pf.APIURL))
	}
	if pf.Timeout > 0 {
		opts = append(opts, WithTimeout(time.Duration(pf.Timeout)*time.Second))
	}
	if pf.MaxWorkers > 0 {
		opts = append(opts, WithMaxWorkers(pf.MaxWorkers))
	}
	if pf.OutputDir != "" {
		opts = append(opts, WithOutputDir(utils.ResolvePath(pf.OutputDir, baseDir)))
	}
	if pf.DBPath != "" {
		opts = append(opts, WithDBPath(utils.ResolvePath(pf.DBPath, baseDir)))
	}
	if pf.Quick != nil {
		opts = append(opts, WithQuick(*pf.Quick))
	}

	for name, raw := range pf.Scenarios {
		override, err := decodeOverride(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid scenario override %q: %w", name, err)
		}
		opts = append(opts, WithScenarioOverride(name, override))
	}

	if p := pf.Planner; p != nil {
		if len(p.Planners) > 0 {
			opts = append(opts, WithPlanners(p.Planners))
		}
		if len(p.Critics) > 0 {
			opts = append(opts, WithCritics(p.Critics))
		}
		if p.Refiner != "" {
			opts = append(opts, WithRefiner(p.Refiner))
		}
		if len(p.CriticWeights) > 0 {
			opts = append(opts, WithCriticWeights(p.CriticWeights))
		}
	}

	return opts, nil
}

// decodeOverride maps a raw scenario block onto ScenarioOverride. Unknown
// keys are an error so typos do not silently do nothing.
func decodeOverride(raw map[string]any) (ScenarioOverride, error) {
	var override ScenarioOverride
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:      &override,
		ErrorUnused: true,
	})
	if err != nil {
		return ScenarioOverride{}, err
	}
	if err := dec.Decode(raw); err != nil {
		return ScenarioOverride{}, err
	}
	return override, nil
}

// findProjectFile walks from startDir toward the filesystem root looking for
// the project file. Returns os.ErrNotExist when no ancestor has one.
func findProjectFile(startDir string) (string, error) {
	// Convert to absolute path so filepath.Dir(".") walks correctly.
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path %q: %w", startDir, err)
	}

	for i := 0; i < maxSearchDepth; i++ {
		p := filepath.Join(dir, ConfigFileName)
		_, err := os.Stat(p)
		if err == nil {
			return p, nil
		}
		if !errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("checking %q: %w", p, err)
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break // reached filesystem root
		}
		dir = parent
	}

	return "", os.ErrNotExist
}
