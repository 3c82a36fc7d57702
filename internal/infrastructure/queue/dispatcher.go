package queue

import (
	"context"
	"hash/fnv"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/inkpress/production-system/internal/api/metrics"
	"github.com/inkpress/production-system/internal/core/ports"
)

const (
	defaultWorkers = 8
	channelBuffer  = 256
)

// ProgressRecorder is the service-side contract the dispatcher drives.
type ProgressRecorder interface {
	RecordProgress(ctx context.Context, input ports.ProgressReportInput) (*ports.TransitionResult, error)
}

// Dispatcher routes shop-floor progress reports to a fixed set of workers
// using consistent hashing on the job id. Reports for the same job always
// land on the same worker, so derived status transitions (and their audit
// entries) apply in submission order.
type Dispatcher struct {
	workers []chan ports.ProgressReportInput
	service ProgressRecorder
	log     zerolog.Logger
}

// NewDispatcher creates a Dispatcher with numWorkers sharded workers.
// If numWorkers <= 0, defaultWorkers is used.
func NewDispatcher(numWorkers int, service ProgressRecorder, log zerolog.Logger) *Dispatcher {
	if numWorkers <= 0 {
		numWorkers = defaultWorkers
	}
	d := &Dispatcher{
		workers: make([]chan ports.ProgressReportInput, numWorkers),
		service: service,
		log:     log,
	}
	for i := range d.workers {
		d.workers[i] = make(chan ports.ProgressReportInput, channelBuffer)
	}
	return d
}

// Start launches all worker goroutines. Workers stop when ctx is cancelled.
func (d *Dispatcher) Start(ctx context.Context) {
	for i, ch := range d.workers {
		go d.runWorker(ctx, i, ch)
	}
}

// Enqueue sends a report to the worker responsible for its job.
// The call is non-blocking up to channelBuffer capacity.
func (d *Dispatcher) Enqueue(report ports.ProgressReportInput) {
	i := d.shardIndex(report.JobID)
	d.workers[i] <- report
	metrics.ProgressReportsQueueDepth.WithLabelValues(strconv.Itoa(i)).Set(float64(len(d.workers[i])))
}

// EnqueueBatch enqueues multiple reports preserving per-job ordering.
func (d *Dispatcher) EnqueueBatch(reports []ports.ProgressReportInput) {
	for _, r := range reports {
		d.Enqueue(r)
	}
}

// shardIndex maps a job id deterministically to a worker index.
func (d *Dispatcher) shardIndex(jobID string) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(jobID))
	return int(h.Sum32()) % len(d.workers)
}

func (d *Dispatcher) runWorker(ctx context.Context, id int, ch <-chan ports.ProgressReportInput) {
	for {
		select {
		case <-ctx.Done():
			return
		case report, ok := <-ch:
			if !ok {
				return
			}
			metrics.ProgressReportsQueueDepth.WithLabelValues(strconv.Itoa(id)).Set(float64(len(ch)))
			if _, err := d.service.RecordProgress(ctx, report); err != nil {
				d.log.Error().Err(err).
					Str("job_id", report.JobID).
					Int("worker_id", id).
					Msg("progress report processing failed")
			}
		}
	}
}
