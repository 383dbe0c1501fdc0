package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writePlan(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "plan.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestRegistry(t *testing.T) {
	validPlan := `
tutorial: FourUpViews
languages:
  - code: pt-BR
    timeout: 10m
  - code: es-419
  - code: fr-FR
`
	planPath := writePlan(t, validPlan)

	t.Run("plan loading", func(t *testing.T) {
		tests := []struct {
			name    string
			cfg     Config
			wantErr bool
		}{
			{
				name:    "valid plan",
				cfg:     Config{PlanFile: planPath},
				wantErr: false,
			},
			{
				name:    "missing plan path",
				cfg:     Config{},
				wantErr: true,
			},
			{
				name:    "nonexistent file",
				cfg:     Config{PlanFile: "nonexistent.yaml"},
				wantErr: true,
			},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				r, err := NewRegistry(tt.cfg)
				if tt.wantErr {
					require.Error(t, err)
					return
				}
				require.NoError(t, err)
				require.NotNil(t, r.Plan())
				assert.Equal(t, "FourUpViews", r.Plan().Tutorial)
				assert.Len(t, r.Plan().Languages, 3)
			})
		}
	})

	t.Run("rejects unknown fields", func(t *testing.T) {
		path := writePlan(t, `
tutorial: FourUpViews
unexpected: true
`)
		_, err := NewRegistry(Config{PlanFile: path})
		require.Error(t, err)
	})

	t.Run("rejects duplicate languages", func(t *testing.T) {
		path := writePlan(t, `
languages:
  - code: pt-BR
  - code: pt-BR
`)
		_, err := NewRegistry(Config{PlanFile: path})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "duplicate")
	})

	t.Run("rejects empty language code", func(t *testing.T) {
		path := writePlan(t, `
languages:
  - code: ""
`)
		_, err := NewRegistry(Config{PlanFile: path})
		require.Error(t, err)
	})

	t.Run("rejects empty plan", func(t *testing.T) {
		path := writePlan(t, "{}\n")
		_, err := NewRegistry(Config{PlanFile: path})
		require.Error(t, err)
	})

	t.Run("rejects non-positive timeout", func(t *testing.T) {
		path := writePlan(t, `
languages:
  - code: pt-BR
    timeout: -5s
`)
		_, err := NewRegistry(Config{PlanFile: path})
		require.Error(t, err)
	})
}

func TestResolve(t *testing.T) {
	planPath := writePlan(t, `
tutorial: FourUpViews
languages:
  - code: pt-BR
    timeout: 10m
  - code: es-419
`)
	r, err := NewRegistry(Config{PlanFile: planPath})
	require.NoError(t, err)

	defaults := Defaults{
		Tutorial:  "TestTutorial",
		Languages: []string{"pt-BR", "es-419", "fr-FR"},
		Timeout:   300 * time.Second,
	}

	t.Run("plan fills unset values", func(t *testing.T) {
		tutorial, locales, overrides := r.Resolve(defaults)
		assert.Equal(t, "FourUpViews", tutorial)
		assert.Equal(t, []string{"pt-BR", "es-419"}, locales)
		require.Contains(t, overrides, "pt-BR")
		assert.Equal(t, 10*time.Minute, overrides["pt-BR"])
		assert.NotContains(t, overrides, "es-419")
	})

	t.Run("explicit flags win", func(t *testing.T) {
		d := defaults
		d.TutorialSet = true
		d.LanguagesSet = true
		tutorial, locales, _ := r.Resolve(d)
		assert.Equal(t, "TestTutorial", tutorial)
		assert.Equal(t, []string{"pt-BR", "es-419", "fr-FR"}, locales)
	})

	t.Run("explicit timeout silences plan overrides", func(t *testing.T) {
		d := defaults
		d.TimeoutSet = true
		_, _, overrides := r.Resolve(d)
		assert.Nil(t, overrides)
	})

	t.Run("nil registry returns defaults", func(t *testing.T) {
		var nilReg *Registry
		tutorial, locales, overrides := nilReg.Resolve(defaults)
		assert.Equal(t, "TestTutorial", tutorial)
		assert.Equal(t, defaults.Languages, locales)
		assert.Nil(t, overrides)
	})
}
