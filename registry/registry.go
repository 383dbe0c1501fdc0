// Package registry loads the optional YAML plan file that declares which
// tutorial and locales a batch should run.
package registry

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"gopkg.in/yaml.v3"
)

// Registry manages the batch plan and its configuration
type Registry struct {
	config Config
	plan   *Plan
	mu     sync.RWMutex
}

// Config contains registry configuration
type Config struct {
	Log      *slog.Logger
	PlanFile string
}

// Plan declares the batch to run: the tutorial, the locales in order, and
// optional per-locale execute-timeout overrides.
type Plan struct {
	Tutorial  string       `yaml:"tutorial,omitempty"`
	Languages []LocaleSpec `yaml:"languages,omitempty"`
}

// LocaleSpec is one locale entry in the plan file.
type LocaleSpec struct {
	Code    string         `yaml:"code"`
	Timeout *time.Duration `yaml:"timeout,omitempty"`
}

// Defaults carries the flag-level values the plan may fill in. The *Set
// fields mark values the operator passed explicitly; those always win.
type Defaults struct {
	Tutorial     string
	TutorialSet  bool
	Languages    []string
	LanguagesSet bool
	Timeout      time.Duration
	TimeoutSet   bool
}

// NewRegistry creates a new registry instance and loads the plan file.
func NewRegistry(cfg Config) (*Registry, error) {
	if cfg.PlanFile == "" {
		return nil, fmt.Errorf("plan file is required")
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}

	r := &Registry{
		config: cfg,
	}

	if err := r.loadPlan(cfg.PlanFile); err != nil {
		return nil, fmt.Errorf("failed to load plan: %w", err)
	}

	cfg.Log.Debug("Plan loaded", "file", cfg.PlanFile, "len(languages)", len(r.plan.Languages))

	return r, nil
}

// loadPlan reads and validates the plan file.
func (r *Registry) loadPlan(path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	plan, err := loadPlanFile(path)
	if err != nil {
		return err
	}
	if err := validatePlan(plan); err != nil {
		return err
	}

	r.plan = plan
	return nil
}

// Plan returns the loaded plan.
func (r *Registry) Plan() *Plan {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.plan
}

// GetConfig returns the registry configuration
func (r *Registry) GetConfig() Config {
	return r.config
}

// Resolve merges the plan with flag values: explicitly set flags win, plan
// values fill the rest, and flag defaults cover whatever remains. A nil
// registry (no plan file given) resolves to the flag values unchanged.
func (r *Registry) Resolve(d Defaults) (tutorial string, locales []string, overrides map[string]time.Duration) {
	tutorial = d.Tutorial
	locales = d.Languages

	if r == nil {
		return tutorial, locales, nil
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	if !d.TutorialSet && r.plan.Tutorial != "" {
		tutorial = r.plan.Tutorial
	}
	if !d.LanguagesSet && len(r.plan.Languages) > 0 {
		locales = make([]string, 0, len(r.plan.Languages))
		for _, spec := range r.plan.Languages {
			locales = append(locales, spec.Code)
		}
	}

	// An explicit --timeout is a global override and silences the plan's
	// per-locale budgets.
	if d.TimeoutSet {
		return tutorial, locales, nil
	}

	for _, spec := range r.plan.Languages {
		if spec.Timeout == nil {
			continue
		}
		if overrides == nil {
			overrides = make(map[string]time.Duration)
		}
		overrides[spec.Code] = *spec.Timeout
	}
	return tutorial, locales, overrides
}

// loadPlanFile parses a plan file, rejecting unknown fields.
func loadPlanFile(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading plan file: %w", err)
	}

	var plan Plan
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&plan); err != nil {
		return nil, fmt.Errorf("parsing plan file: %w", err)
	}

	return &plan, nil
}

// validatePlan checks the plan for empty or duplicated locale entries.
func validatePlan(plan *Plan) error {
	if plan.Tutorial == "" && len(plan.Languages) == 0 {
		return fmt.Errorf("plan declares neither a tutorial nor languages")
	}

	seen := make(map[string]bool, len(plan.Languages))
	for i, spec := range plan.Languages {
		if spec.Code == "" {
			return fmt.Errorf("language entry %d has an empty code", i)
		}
		if seen[spec.Code] {
			return fmt.Errorf("duplicate language %q in plan", spec.Code)
		}
		seen[spec.Code] = true
		if spec.Timeout != nil && *spec.Timeout <= 0 {
			return fmt.Errorf("language %q has a non-positive timeout", spec.Code)
		}
	}
	return nil
}
