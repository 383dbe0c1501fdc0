package flags

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

// TestUniqueFlags asserts that all flag names are unique, to avoid accidental conflicts between the many flags.
func TestUniqueFlags(t *testing.T) {
	seenCLI := make(map[string]struct{})
	for _, flag := range Flags {
		name := flag.Names()[0]
		if _, ok := seenCLI[name]; ok {
			t.Errorf("duplicate flag %s", name)
			continue
		}
		seenCLI[name] = struct{}{}
	}
}

func TestHasEnvVar(t *testing.T) {
	for _, flag := range Flags {
		flagName := flag.Names()[0]

		t.Run(flagName, func(t *testing.T) {
			envFlagGetter, ok := flag.(interface {
				GetEnvVars() []string
			})
			require.True(t, ok, "must be able to cast the flag to an EnvVar interface")
			envFlags := envFlagGetter.GetEnvVars()
			require.Equal(t, 1, len(envFlags), "flags should have exactly one env var")
		})
	}
}

// TestEnvVarFormat asserts every env var carries the app prefix and is
// derived from the flag name.
func TestEnvVarFormat(t *testing.T) {
	for _, flag := range Flags {
		flagName := flag.Names()[0]

		t.Run(flagName, func(t *testing.T) {
			envFlagGetter, ok := flag.(interface {
				GetEnvVars() []string
			})
			require.True(t, ok)
			envFlags := envFlagGetter.GetEnvVars()
			require.Equal(t, 1, len(envFlags))

			envName := envFlags[0]
			assert.True(t, strings.HasPrefix(envName, EnvVarPrefix+"_"),
				"%q must start with %q", envName, EnvVarPrefix+"_")

			expected := EnvVarPrefix + "_" + strings.ToUpper(strings.NewReplacer("-", "_", ".", "_").Replace(flagName))
			assert.Equal(t, expected, envName)
		})
	}
}

func TestDefaults(t *testing.T) {
	app := &cli.App{
		Flags: Flags,
		Action: func(ctx *cli.Context) error {
			assert.Equal(t, "TestTutorial", ctx.String(Tutorial.Name))
			assert.Equal(t, []string{"pt-BR", "es-419", "fr-FR"}, ctx.StringSlice(Languages.Name))
			assert.Equal(t, "test_outputs", ctx.String(OutputDir.Name))
			assert.Equal(t, 300, ctx.Int(Timeout.Name))
			assert.Empty(t, ctx.String(Plan.Name))
			assert.Empty(t, ctx.String(ContainerImage.Name))
			assert.Zero(t, ctx.Duration(RunInterval.Name))
			assert.False(t, ctx.Bool(MetricsEnabled.Name))
			return nil
		},
	}
	require.NoError(t, app.Run([]string{"app"}))
}

func TestCheckRequired(t *testing.T) {
	run := func(args ...string) error {
		var checkErr error
		app := &cli.App{
			Flags: Flags,
			Action: func(ctx *cli.Context) error {
				checkErr = CheckRequired(ctx)
				return nil
			},
		}
		require.NoError(t, app.Run(append([]string{"app"}, args...)))
		return checkErr
	}

	assert.NoError(t, run("/path/to/target"))

	err := run()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "missing required argument")

	err = run("/path/to/target", "stray")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected extra arguments")
}
