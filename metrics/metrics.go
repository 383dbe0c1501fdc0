package metrics

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/sliceworks/loc-acceptor/types"
)

const (
	MetricsNamespace = "lat"
)

var (
	Debug                bool = true
	validStatuses             = []types.Status{
		types.StatusSuccess,
		types.StatusConfigError,
		types.StatusExecError,
		types.StatusTimeout,
		types.StatusException,
	}
	nonAlphanumericRegex = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	verdictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "verdicts_total",
		Help:      "Count of locale verdicts",
	}, []string{
		"tutorial",
		"run_id",
		"locale",
		"status",
	})

	batchResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "batch_results",
		Help:      "Result of the last batch run",
	}, []string{
		"tutorial",
		"run_id",
		"result",
	})

	batchLocalesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "batch_locales_total",
		Help:      "Total number of locales tested",
	}, []string{
		"tutorial",
		"run_id",
	})

	batchLocalesPassed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "batch_locales_passed",
		Help:      "Number of locales that passed",
	}, []string{
		"tutorial",
		"run_id",
	})

	batchLocalesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "batch_locales_failed",
		Help:      "Number of locales that failed",
	}, []string{
		"tutorial",
		"run_id",
	})

	batchSuccessRate = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "batch_success_rate",
		Help:      "Success rate of the last batch run in percent",
	}, []string{
		"tutorial",
		"run_id",
	})

	batchDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "batch_duration",
		Help:      "Duration of the last batch run in seconds",
	}, []string{
		"tutorial",
		"run_id",
	})

	jobStateTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "job_state_transitions_total",
		Help:      "Count of locale job lifecycle transitions",
	}, []string{
		"locale",
		"state",
	})

	phaseDuration = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "phase_duration",
		Help:      "Duration of the last target run per locale and phase in seconds",
	}, []string{
		"locale",
		"phase",
	})
)

// errToLabel tries to make the error string a more valid Prometheus label
func errToLabel(err error) string {
	if err == nil {
		return "nil"
	}
	errClean := nonAlphanumericRegex.ReplaceAllString(err.Error(), "")
	errClean = strings.ReplaceAll(errClean, " ", "_")
	errClean = strings.ReplaceAll(errClean, "__", "_")
	return errClean
}

func RecordError(error string) {
	if Debug {
		slog.Debug("metric inc",
			"m", "errors_total",
			"error", error,
		)
	}
	errorsTotal.WithLabelValues(error).Inc()
}

// RecordErrorDetails concats the error message to the label
// and also tries to clean the label to be a valid Prometheus label
func RecordErrorDetails(label string, err error) {
	if err == nil {
		return
	}
	label = fmt.Sprintf("%s.%s", label, errToLabel(err))
	RecordError(label)
}

// RecordVerdict counts one locale verdict by status.
func RecordVerdict(tutorial string, runID string, locale string, status types.Status) {
	if !isValidStatus(status) {
		slog.Error("RecordVerdict - invalid status", "status", status)
		return
	}
	if Debug {
		slog.Debug("metric inc",
			"m", "verdicts_total",
			"tutorial", tutorial,
			"run_id", runID,
			"locale", locale,
			"status", status)
	}
	verdictsTotal.WithLabelValues(tutorial, runID, locale, string(status)).Inc()
}

// RecordBatch publishes the aggregate outcome of one batch run.
func RecordBatch(
	tutorial string,
	runID string,
	result string,
	summary types.Summary,
	duration time.Duration,
) {
	batchResults.WithLabelValues(tutorial, runID, result).Set(1)
	batchLocalesTotal.WithLabelValues(tutorial, runID).Add(float64(summary.TotalTests))
	batchLocalesPassed.WithLabelValues(tutorial, runID).Add(float64(summary.SuccessfulTests))
	batchLocalesFailed.WithLabelValues(tutorial, runID).Add(float64(summary.FailedTests))
	batchSuccessRate.WithLabelValues(tutorial, runID).Set(summary.SuccessRate)
	batchDuration.WithLabelValues(tutorial, runID).Set(duration.Seconds())
}

// RecordJobState counts a locale job entering a lifecycle state.
func RecordJobState(locale string, state types.JobState) {
	if Debug {
		slog.Debug("metric inc",
			"m", "job_state_transitions_total",
			"locale", locale,
			"state", state)
	}
	jobStateTransitions.WithLabelValues(locale, string(state)).Inc()
}

// RecordPhaseDuration publishes how long one target run took.
func RecordPhaseDuration(locale string, phase string, duration time.Duration) {
	if Debug {
		slog.Debug("metric set",
			"m", "phase_duration",
			"locale", locale,
			"phase", phase,
			"duration", duration)
	}
	phaseDuration.WithLabelValues(locale, phase).Set(duration.Seconds())
}

func isValidStatus(status types.Status) bool {
	return slices.Contains(validStatuses, status)
}
