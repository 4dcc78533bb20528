package metrics

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/ethereum/go-ethereum/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/spectral-sh/specrun/types"
)

const (
	MetricsNamespace = "specrun"
)

var (
	Debug                bool = true
	validResults              = []types.TestStatus{types.TestStatusPass, types.TestStatusFail, types.TestStatusSkip, types.TestStatusError}
	nonAlphanumericRegex      = regexp.MustCompile(`[^a-zA-Z ]+`)

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "errors_total",
		Help:      "Count of errors",
	}, []string{
		"error",
	})

	workersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "workers_total",
		Help:      "Count of completed worker executions",
	}, []string{
		"run_id",
		"file",
		"result",
	})

	runResults = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: MetricsNamespace,
		Name:      "run_results",
		Help:      "Result of orchestrated test runs",
	}, []string{
		"run_id",
		"result",
	})

	runFilesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "run_files_total",
		Help:      "Total number of test files started per run",
	}, []string{
		"run_id",
	})

	runFilesFailed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "run_files_failed",
		Help:      "Number of failed test files per run",
	}, []string{
		"run_id",
	})

	runFilesTimedOut = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: MetricsNamespace,
		Name:      "run_files_timed_out",
		Help:      "Number of timed-out test files per run",
	}, []string{
		"run_id",
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
		log.Debug("metric inc",
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

// RecordWorker records one finished worker execution.
func RecordWorker(runID string, file string, result types.TestStatus) {
	if !isValidResult(result) {
		log.Error("RecordWorker - invalid result", "result", result)
		return
	}
	if Debug {
		log.Debug("metric inc",
			"m", "workers_total",
			"run_id", runID,
			"file", file,
			"result", result)
	}
	workersTotal.WithLabelValues(runID, file, string(result)).Inc()
}

// RecordRun records the outcome of a whole run.
func RecordRun(runID string, filesRun, filesFailed, filesTimedOut int, result string) {
	runResults.WithLabelValues(runID, result).Set(1)
	runFilesTotal.WithLabelValues(runID).Add(float64(filesRun))
	runFilesFailed.WithLabelValues(runID).Add(float64(filesFailed))
	runFilesTimedOut.WithLabelValues(runID).Add(float64(filesTimedOut))
}

func isValidResult(result types.TestStatus) bool {
	return slices.Contains(validResults, result)
}
