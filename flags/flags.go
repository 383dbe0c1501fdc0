package flags

import (
	"fmt"

	"github.com/urfave/cli/v2"
)

const EnvVarPrefix = "LOC_ACCEPTOR"

// prefixEnvVar joins the app env prefix with a flag-specific suffix.
func prefixEnvVar(name string) []string {
	return []string{EnvVarPrefix + "_" + name}
}

var (
	Tutorial = &cli.StringFlag{
		Name:    "tutorial",
		Value:   "TestTutorial",
		EnvVars: prefixEnvVar("TUTORIAL"),
		Usage:   "Name of the tutorial the target application should play",
	}
	Languages = &cli.StringSliceFlag{
		Name:    "languages",
		Value:   cli.NewStringSlice("pt-BR", "es-419", "fr-FR"),
		EnvVars: prefixEnvVar("LANGUAGES"),
		Usage:   "Locales to test, in order (eg. 'pt-BR,es-419,fr-FR')",
	}
	OutputDir = &cli.StringFlag{
		Name:    "output",
		Value:   "test_outputs",
		EnvVars: prefixEnvVar("OUTPUT"),
		Usage:   "Directory for logs, artifacts and the consolidated report (created if absent)",
	}
	Timeout = &cli.IntFlag{
		Name:    "timeout",
		Value:   300,
		EnvVars: prefixEnvVar("TIMEOUT"),
		Usage:   "Execute-phase timeout in seconds",
	}
	Plan = &cli.StringFlag{
		Name:    "plan",
		Value:   "",
		EnvVars: prefixEnvVar("PLAN"),
		Usage:   "Path to an optional YAML plan file (eg. 'plan.yaml')",
	}
	ContainerImage = &cli.StringFlag{
		Name:    "container-image",
		Value:   "",
		EnvVars: prefixEnvVar("CONTAINER_IMAGE"),
		Usage:   "Run the target inside this container image instead of on the host",
	}
	RunInterval = &cli.DurationFlag{
		Name:    "run-interval",
		Value:   0,
		EnvVars: prefixEnvVar("RUN_INTERVAL"),
		Usage:   "Interval between batch runs (e.g. '1h', '30m'). Set to 0 or omit for run-once mode.",
	}
	LogLevel = &cli.StringFlag{
		Name:    "log.level",
		Value:   "info",
		EnvVars: prefixEnvVar("LOG_LEVEL"),
		Usage:   "Log level: debug, info, warn, error",
	}
	LogFormat = &cli.StringFlag{
		Name:    "log.format",
		Value:   "text",
		EnvVars: prefixEnvVar("LOG_FORMAT"),
		Usage:   "Log format: text or json",
	}
	MetricsEnabled = &cli.BoolFlag{
		Name:    "metrics.enabled",
		Value:   false,
		EnvVars: prefixEnvVar("METRICS_ENABLED"),
		Usage:   "Enable the metrics and healthz servers",
	}
	MetricsAddr = &cli.StringFlag{
		Name:    "metrics.addr",
		Value:   "0.0.0.0",
		EnvVars: prefixEnvVar("METRICS_ADDR"),
		Usage:   "Metrics listening address",
	}
	MetricsPort = &cli.IntFlag{
		Name:    "metrics.port",
		Value:   7300,
		EnvVars: prefixEnvVar("METRICS_PORT"),
		Usage:   "Metrics listening port",
	}
)

var Flags = []cli.Flag{
	Tutorial,
	Languages,
	OutputDir,
	Timeout,
	Plan,
	ContainerImage,
	RunInterval,
	LogLevel,
	LogFormat,
	MetricsEnabled,
	MetricsAddr,
	MetricsPort,
}

// CheckRequired validates the parts of the command line that have no flag
// defaults: the positional path to the target executable.
func CheckRequired(ctx *cli.Context) error {
	if ctx.NArg() < 1 {
		return fmt.Errorf("missing required argument: path to the target executable")
	}
	if ctx.NArg() > 1 {
		return fmt.Errorf("unexpected extra arguments: %v", ctx.Args().Slice()[1:])
	}
	return nil
}
