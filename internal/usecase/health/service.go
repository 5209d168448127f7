package health

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/hybridsearch/internal/logger"
)

// Status represents the aggregated health status.
type Status string

const (
	// Healthy indicates all dependencies are operational.
	Healthy Status = "healthy"
	// Degraded indicates at least one dependency is down.
	Degraded Status = "degraded"
)

// CheckResult represents an individual dependency outcome.
type CheckResult string

const (
	// CheckOK indicates a passing check.
	CheckOK CheckResult = "healthy"
	// CheckError indicates a failing check.
	CheckError CheckResult = "unhealthy"
)

// Dependency names reported in Report.Checks.
const (
	CheckIndex      = "index"
	CheckQueue      = "queue"
	CheckEmbeddings = "embeddings"
)

// DefaultCheckTimeout bounds each dependency probe.
const DefaultCheckTimeout = 2 * time.Second

// Report aggregates health check results.
type Report struct {
	Status Status
	Checks map[string]CheckResult
}

// Service coordinates health checks.
type Service struct {
	index     Pinger
	queue     Pinger
	embedding EmbeddingChecker
	timeout   time.Duration
}

// New creates a Service. A nil dependency is reported unhealthy.
func New(index, queue Pinger, embedding EmbeddingChecker) *Service {
	return &Service{index: index, queue: queue, embedding: embedding, timeout: DefaultCheckTimeout}
}

// Check probes every dependency independently.
func (s *Service) Check(ctx context.Context) Report {
	checks := map[string]CheckResult{
		CheckIndex:      s.probe(ctx, CheckIndex, pingFunc(s.index)),
		CheckQueue:      s.probe(ctx, CheckQueue, pingFunc(s.queue)),
		CheckEmbeddings: s.probe(ctx, CheckEmbeddings, embedFunc(s.embedding)),
	}

	status := Healthy
	for _, v := range checks {
		if v == CheckError {
			status = Degraded
			break
		}
	}

	return Report{Status: status, Checks: checks}
}

func (s *Service) probe(ctx context.Context, name string, fn func(context.Context) error) CheckResult {
	if fn == nil {
		return CheckError
	}
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	if err := fn(ctx); err != nil {
		logger.FromContext(ctx).Warn("Dependency unhealthy", zap.String("dependency", name), zap.Error(err))
		return CheckError
	}
	return CheckOK
}

func pingFunc(p Pinger) func(context.Context) error {
	if p == nil {
		return nil
	}
	return p.Ping
}

func embedFunc(e EmbeddingChecker) func(context.Context) error {
	if e == nil {
		return nil
	}
	return e.HealthCheck
}
