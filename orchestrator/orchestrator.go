package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/sliceworks/loc-acceptor/metrics"
	"github.com/sliceworks/loc-acceptor/types"
)

// persistenceSaveRe matches the target's confirmation that a language
// preference reached persistent settings. Configure treats a non-zero exit
// as benign only when a matching line also names the requested locale.
var persistenceSaveRe = regexp.MustCompile(`(?i)language preference (saved|persisted|applied)`)

// Config holds configuration for creating a new orchestrator.
type Config struct {
	Log        *slog.Logger
	TargetPath string // target executable; inside the image for container runs
	Tutorial   string
	OutputDir  string

	ConfigureTimeout time.Duration // defaults to DefaultConfigureTimeout
	ExecuteTimeout   time.Duration // defaults to DefaultExecuteTimeout
	// TimeoutOverrides adjusts the execute budget per locale, keyed by
	// locale code. Zero and negative entries are ignored.
	TimeoutOverrides map[string]time.Duration

	Launcher Launcher // defaults to a host launcher
	GOOS     string   // defaults to runtime.GOOS; drives headless flags
}

// Orchestrator runs the two-phase locale test against the target
// application and turns each run into a verdict.
type Orchestrator struct {
	log        *slog.Logger
	cfg        Config
	supervisor *Supervisor
	tracer     trace.Tracer
}

// NewOrchestrator validates cfg, fills in defaults and creates the
// orchestrator.
func NewOrchestrator(cfg Config) (*Orchestrator, error) {
	if cfg.TargetPath == "" {
		return nil, errors.New("orchestrator requires a target path")
	}
	if cfg.Tutorial == "" {
		return nil, errors.New("orchestrator requires a tutorial name")
	}
	if cfg.OutputDir == "" {
		return nil, errors.New("orchestrator requires an output directory")
	}
	if cfg.Log == nil {
		cfg.Log = slog.Default()
	}
	if cfg.ConfigureTimeout <= 0 {
		cfg.ConfigureTimeout = DefaultConfigureTimeout
	}
	if cfg.ExecuteTimeout <= 0 {
		cfg.ExecuteTimeout = DefaultExecuteTimeout
	}
	if cfg.Launcher == nil {
		cfg.Launcher = NewHostLauncher(cfg.Log)
	}
	if cfg.GOOS == "" {
		cfg.GOOS = runtime.GOOS
	}
	return &Orchestrator{
		log:        cfg.Log,
		cfg:        cfg,
		supervisor: NewSupervisor(cfg.Log, cfg.Launcher),
		tracer:     otel.Tracer("locale runner"),
	}, nil
}

// Job assembles the run parameters for one locale, applying any per-locale
// timeout override.
func (o *Orchestrator) Job(locale string) types.LocaleJob {
	return types.LocaleJob{
		Locale:           locale,
		Tutorial:         o.cfg.Tutorial,
		OutputDir:        o.cfg.OutputDir,
		ConfigureTimeout: o.cfg.ConfigureTimeout,
		ExecuteTimeout:   o.executeTimeout(locale),
	}
}

// RunBatch runs every locale in order and collects their verdicts. The
// verdict set keeps the caller's locale order so reports read the same way
// the batch was requested. A canceled context stops the batch between
// locales; verdicts gathered so far are still returned.
func (o *Orchestrator) RunBatch(ctx context.Context, locales []string) (*types.OrderedVerdicts, error) {
	ctx, span := o.tracer.Start(ctx, "run locale batch")
	defer span.End()

	if err := os.MkdirAll(o.cfg.OutputDir, 0755); err != nil {
		return nil, fmt.Errorf("creating output directory: %w", err)
	}

	results := types.NewOrderedVerdicts()
	for i, locale := range locales {
		if err := ctx.Err(); err != nil {
			o.log.Warn("Batch canceled, skipping remaining locales", "completed", i, "total", len(locales))
			return results, err
		}

		job := o.Job(locale)
		metrics.RecordJobState(job.Locale, types.JobStatePending)

		o.log.Info("Starting locale test", "locale", locale, "progress", fmt.Sprintf("%d/%d", i+1, len(locales)))
		verdict := o.RunLocale(ctx, job)
		results.Add(locale, verdict)

		if verdict.Status == types.StatusSuccess {
			o.log.Info("Locale test passed", "locale", locale, "duration", fmt.Sprintf("%.2fs", verdict.ExecutionTime))
		} else {
			o.log.Error("Locale test failed", "locale", locale, "status", verdict.Status, "error", verdict.Error)
		}
	}
	return results, nil
}

// RunLocale drives the two phases of one locale job and always yields a
// verdict; faults inside a phase become exception verdicts instead of
// aborting the rest of the batch.
func (o *Orchestrator) RunLocale(ctx context.Context, job types.LocaleJob) (verdict types.Verdict) {
	ctx, span := o.tracer.Start(ctx, fmt.Sprintf("locale %s", job.Locale))
	defer span.End()

	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("Locale test panicked", "locale", job.Locale, "panic", r)
			verdict = o.exceptionVerdict(job, start, fmt.Sprintf("unhandled fault: %v", r))
		}
	}()

	metrics.RecordJobState(job.Locale, types.JobStateConfiguring)
	ok, confRun, err := o.Configure(ctx, job)
	switch {
	case confRun != nil && confRun.TimedOut:
		metrics.RecordJobState(job.Locale, types.JobStateConfigFailed)
		return o.timeoutVerdict(job, confRun)
	case err != nil:
		metrics.RecordJobState(job.Locale, types.JobStateConfigFailed)
		v := o.exceptionVerdict(job, start, err.Error())
		if confRun != nil {
			v.ReturnCode = confRun.ExitCode
			v.Output = confRun.Output
		}
		return v
	case !ok:
		metrics.RecordJobState(job.Locale, types.JobStateConfigFailed)
		return o.configErrorVerdict(job, confRun)
	}
	metrics.RecordJobState(job.Locale, types.JobStateConfigured)

	verdict = o.Execute(ctx, job)
	metrics.RecordJobState(job.Locale, types.JobStateCompleted)
	return verdict
}

// Configure launches the target once so it persists the locale preference
// for the following execute run. A configure succeeds on exit 0, or on a
// non-zero exit whose output confirms the preference was persisted for the
// requested locale; the target is known to exit non-zero on some platforms
// after a successful save.
func (o *Orchestrator) Configure(ctx context.Context, job types.LocaleJob) (bool, *types.ProcessRun, error) {
	requestPath, err := WriteRequestFile(job.OutputDir, LaunchRequest{
		Phase:     PhaseConfigure,
		Locale:    job.Locale,
		OutputDir: job.OutputDir,
	})
	if err != nil {
		return false, nil, err
	}
	defer RemoveRequestFile(o.log, requestPath)

	ctx, span := o.tracer.Start(ctx, fmt.Sprintf("configure %s", job.Locale))
	defer span.End()

	o.log.Info("Configuring target language", "locale", job.Locale, "timeout", job.ConfigureTimeout)
	run, err := o.supervisor.Run(ctx, LaunchSpec{
		Target:    o.cfg.TargetPath,
		Args:      []string{NoSplashFlag, RunRequestFlag, requestPath},
		OutputDir: job.OutputDir,
	}, job.ConfigureTimeout)
	if err != nil {
		return false, run, err
	}
	metrics.RecordPhaseDuration(job.Locale, string(PhaseConfigure), run.Duration)
	if run.TimedOut {
		return false, run, nil
	}
	if run.ExitCode == 0 {
		return true, run, nil
	}
	if confirmsPersistence(run.Output, job.Locale) {
		o.log.Warn("Configure exited non-zero but persisted the language preference, continuing",
			"locale", job.Locale, "return_code", run.ExitCode)
		return true, run, nil
	}
	return false, run, nil
}

// Execute launches the target to play the tutorial under the configured
// locale and derives the verdict from the exit code, the captured output
// and the result artifact the target writes.
func (o *Orchestrator) Execute(ctx context.Context, job types.LocaleJob) types.Verdict {
	start := time.Now()
	metrics.RecordJobState(job.Locale, types.JobStateExecuting)

	resultPath := filepath.Join(job.OutputDir, types.ResultFileName(job.Locale))
	if err := os.Remove(resultPath); err != nil && !os.IsNotExist(err) {
		o.log.Warn("Failed to remove stale result artifact", "path", resultPath, "err", err)
	}

	requestPath, err := WriteRequestFile(job.OutputDir, LaunchRequest{
		Phase:      PhaseExecute,
		Locale:     job.Locale,
		Tutorial:   job.Tutorial,
		ResultPath: resultPath,
		OutputDir:  job.OutputDir,
	})
	if err != nil {
		return o.exceptionVerdict(job, start, err.Error())
	}
	defer RemoveRequestFile(o.log, requestPath)

	ctx, span := o.tracer.Start(ctx, fmt.Sprintf("execute %s", job.Locale))
	defer span.End()

	args := []string{NoSplashFlag, RunRequestFlag, requestPath}
	if o.cfg.GOOS != WindowsOS {
		args = append(args, NoMainWindowFlag, DisableCLIModulesFlag)
	}

	o.log.Info("Executing tutorial", "locale", job.Locale, "tutorial", job.Tutorial, "timeout", job.ExecuteTimeout)
	run, err := o.supervisor.Run(ctx, LaunchSpec{
		Target:    o.cfg.TargetPath,
		Args:      args,
		OutputDir: job.OutputDir,
	}, job.ExecuteTimeout)
	if err != nil {
		v := o.exceptionVerdict(job, start, err.Error())
		if run != nil {
			v.ReturnCode = run.ExitCode
			v.Output = run.Output
			v.ExecutionTime = run.Duration.Seconds()
		}
		return v
	}
	metrics.RecordPhaseDuration(job.Locale, string(PhaseExecute), run.Duration)
	if run.TimedOut {
		return o.timeoutVerdict(job, run)
	}
	return o.deriveVerdict(job, run, resultPath)
}

// deriveVerdict merges the run's observable data with the target's result
// artifact. The runner's measurements win over the artifact's claims, and a
// success report from a non-zero exit is demoted to an execution error.
func (o *Orchestrator) deriveVerdict(job types.LocaleJob, run *types.ProcessRun, resultPath string) types.Verdict {
	artifact, err := ReadResultArtifact(resultPath)
	if err != nil {
		msg := fmt.Sprintf("No result file found. Return code: %d", run.ExitCode)
		if !errors.Is(err, os.ErrNotExist) {
			msg = err.Error()
		}
		return types.Verdict{
			Language:      job.Locale,
			Tutorial:      job.Tutorial,
			Status:        types.StatusExecError,
			Timestamp:     time.Now().UTC(),
			ExecutionTime: run.Duration.Seconds(),
			ReturnCode:    run.ExitCode,
			Output:        run.Output,
			Error:         msg,
		}
	}

	v := *artifact
	if v.Language == "" {
		v.Language = job.Locale
	}
	if v.Tutorial == "" {
		v.Tutorial = job.Tutorial
	}
	if v.Timestamp.IsZero() {
		v.Timestamp = time.Now().UTC()
	}
	v.ExecutionTime = run.Duration.Seconds()
	v.ReturnCode = run.ExitCode
	v.Output = run.Output
	if v.Status == types.StatusSuccess && run.ExitCode != 0 {
		v.Status = types.StatusExecError
		v.Error = fmt.Sprintf("Result artifact reports success but the target exited %d", run.ExitCode)
	}
	return v
}

func (o *Orchestrator) executeTimeout(locale string) time.Duration {
	if t, ok := o.cfg.TimeoutOverrides[locale]; ok && t > 0 {
		return t
	}
	return o.cfg.ExecuteTimeout
}

func (o *Orchestrator) timeoutVerdict(job types.LocaleJob, run *types.ProcessRun) types.Verdict {
	return types.Verdict{
		Language:      job.Locale,
		Tutorial:      job.Tutorial,
		Status:        types.StatusTimeout,
		Timestamp:     time.Now().UTC(),
		ExecutionTime: run.Duration.Seconds(),
		ReturnCode:    run.ExitCode,
		Output:        run.Output,
		Error:         fmt.Sprintf("Test timed out after %.0f seconds", run.Timeout.Seconds()),
	}
}

func (o *Orchestrator) configErrorVerdict(job types.LocaleJob, run *types.ProcessRun) types.Verdict {
	return types.Verdict{
		Language:      job.Locale,
		Tutorial:      job.Tutorial,
		Status:        types.StatusConfigError,
		Timestamp:     time.Now().UTC(),
		ExecutionTime: run.Duration.Seconds(),
		ReturnCode:    run.ExitCode,
		Output:        run.Output,
		Error:         fmt.Sprintf("Failed to set language. Return code: %d", run.ExitCode),
	}
}

func (o *Orchestrator) exceptionVerdict(job types.LocaleJob, start time.Time, msg string) types.Verdict {
	return types.Verdict{
		Language:      job.Locale,
		Tutorial:      job.Tutorial,
		Status:        types.StatusException,
		Timestamp:     time.Now().UTC(),
		ExecutionTime: time.Since(start).Seconds(),
		ReturnCode:    -1,
		Error:         msg,
	}
}

func confirmsPersistence(lines []string, locale string) bool {
	for _, line := range lines {
		if persistenceSaveRe.MatchString(line) && strings.Contains(line, locale) {
			return true
		}
	}
	return false
}
