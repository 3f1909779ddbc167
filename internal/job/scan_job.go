package job

import (
	"context"
	"errors"
	"log"
	"time"

	"product-scout/internal/domain"
	"product-scout/internal/scanner"

	"go.opentelemetry.io/otel/trace"
)

type CycleRunner interface {
	RunCycle(ctx context.Context) (domain.ScanResult, error)
}

// ScanJob triggers a scan cycle on a fixed interval.
type ScanJob struct {
	tracer   trace.Tracer
	runner   CycleRunner
	interval time.Duration
}

func NewScanJob(tracer trace.Tracer, runner CycleRunner, interval time.Duration) *ScanJob {
	if interval <= 0 {
		interval = time.Hour
	}
	return &ScanJob{tracer: tracer, runner: runner, interval: interval}
}

func (j *ScanJob) Start(ctx context.Context) {
	if j.runner == nil {
		log.Println("Scan job disabled: no runner")
		<-ctx.Done()
		return
	}

	j.runOnce(ctx)
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			j.runOnce(ctx)
		}
	}
}

func (j *ScanJob) runOnce(ctx context.Context) {
	ctx, span := j.tracer.Start(ctx, "scan-job.run-once")
	defer span.End()

	result, err := j.runner.RunCycle(ctx)
	switch {
	case errors.Is(err, scanner.ErrCycleInProgress):
		log.Println("Scheduled scan skipped: a cycle is already running")
	case errors.Is(err, context.Canceled):
		log.Printf("Scheduled scan cancelled after %d keywords", result.Scanned+result.Skipped)
	case err != nil:
		log.Printf("Scheduled scan error: %v", err)
	default:
		log.Printf(
			"Scheduled scan complete categories=%d scanned=%d profitable=%d alerts=%d warnings=%d",
			len(result.Categories),
			result.Scanned,
			result.Profitable,
			result.AlertsSent,
			len(result.Errors),
		)
	}
}
