package lat

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/sliceworks/loc-acceptor/flags"
)

// Config holds the application configuration
type Config struct {
	TargetPath       string        // Path to the target application executable (host path, or in-image path with ContainerImage)
	Tutorial         string        // Tutorial the execute phase asks the target to play
	Languages        []string      // Locales to test, in order
	OutputDir        string        // Directory for artifacts, logs and the consolidated report
	PlanPath         string        // Optional YAML plan file
	ContainerImage   string        // When set, runs the target inside this image instead of on the host
	ConfigureTimeout time.Duration // Budget for the configure phase
	ExecuteTimeout   time.Duration // Budget for the execute phase
	RunInterval      time.Duration // Interval between batch runs
	RunOnce          bool          // Indicates if the service should exit after one batch
	MetricsEnabled   bool
	MetricsAddr      string
	MetricsPort      int

	// Which values the operator set explicitly; the plan file only fills the
	// gaps (flags override the plan, the plan overrides built-in defaults).
	TutorialSet  bool
	LanguagesSet bool
	TimeoutSet   bool

	Log *slog.Logger
}

// DefaultConfigureTimeout bounds the locale-persistence run. The configure
// phase only writes a preference and exits, so its budget stays fixed and
// short.
const DefaultConfigureTimeout = 30 * time.Second

// NewConfig creates a new Config from cli context
func NewConfig(ctx *cli.Context, log *slog.Logger) (*Config, error) {
	if err := flags.CheckRequired(ctx); err != nil {
		return nil, err
	}

	targetPath := ctx.Args().First()
	containerImage := ctx.String(flags.ContainerImage.Name)

	// With a container image the target path names a binary inside the
	// image, so only host targets can be checked up front.
	if containerImage == "" {
		info, err := os.Stat(targetPath)
		if err != nil {
			return nil, fmt.Errorf("target executable not found at '%s': %w", targetPath, err)
		}
		if info.IsDir() {
			return nil, fmt.Errorf("target executable path '%s' is a directory", targetPath)
		}
		targetPath, err = filepath.Abs(targetPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for target executable '%s': %w", targetPath, err)
		}
	}

	timeoutSecs := ctx.Int(flags.Timeout.Name)
	if timeoutSecs <= 0 {
		return nil, fmt.Errorf("timeout must be positive, got %d", timeoutSecs)
	}

	languages := ctx.StringSlice(flags.Languages.Name)
	for _, lang := range languages {
		if lang == "" {
			return nil, errors.New("language list contains an empty locale code")
		}
	}

	outputDir, err := filepath.Abs(ctx.String(flags.OutputDir.Name))
	if err != nil {
		return nil, fmt.Errorf("failed to resolve absolute path for output directory: %w", err)
	}

	planPath := ctx.String(flags.Plan.Name)
	if planPath != "" {
		planPath, err = filepath.Abs(planPath)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve absolute path for plan file '%s': %w", planPath, err)
		}
	}

	runInterval := ctx.Duration(flags.RunInterval.Name)
	runOnce := runInterval == 0

	return &Config{
		TargetPath:       targetPath,
		Tutorial:         ctx.String(flags.Tutorial.Name),
		Languages:        languages,
		OutputDir:        outputDir,
		PlanPath:         planPath,
		ContainerImage:   containerImage,
		ConfigureTimeout: DefaultConfigureTimeout,
		ExecuteTimeout:   time.Duration(timeoutSecs) * time.Second,
		RunInterval:      runInterval,
		RunOnce:          runOnce,
		MetricsEnabled:   ctx.Bool(flags.MetricsEnabled.Name),
		MetricsAddr:      ctx.String(flags.MetricsAddr.Name),
		MetricsPort:      ctx.Int(flags.MetricsPort.Name),
		TutorialSet:      ctx.IsSet(flags.Tutorial.Name),
		LanguagesSet:     ctx.IsSet(flags.Languages.Name),
		TimeoutSet:       ctx.IsSet(flags.Timeout.Name),
		Log:              log,
	}, nil
}
