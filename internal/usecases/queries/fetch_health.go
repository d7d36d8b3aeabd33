package queries

import (
	"context"
	"sync"
	"time"

	otelTrace "go.opentelemetry.io/otel/trace"

	"github.com/architeacher/connectors/internal/config"
	"github.com/architeacher/connectors/internal/domain/model"
	"github.com/architeacher/connectors/internal/ports"
	"github.com/architeacher/connectors/pkg/decorator"
	"github.com/architeacher/connectors/pkg/logger"
	"github.com/architeacher/connectors/pkg/metrics"
)

type (
	FetchHealthReportQuery struct{}

	FetchHealthReportQueryHandler = decorator.QueryHandler[FetchHealthReportQuery, *model.HealthReport]

	fetchHealthReportQueryHandler struct {
		catalog ports.NodeCatalog
		probes  []ports.DependencyProbe
		now     func() time.Time
	}
)

func NewFetchHealthReportQueryHandler(
	catalog ports.NodeCatalog,
	probes []ports.DependencyProbe,
	log logger.Logger,
	metricsClient metrics.Client,
	tracerProvider otelTrace.TracerProvider,
) FetchHealthReportQueryHandler {
	return decorator.ApplyQueryDecorators[FetchHealthReportQuery, *model.HealthReport](
		fetchHealthReportQueryHandler{catalog: catalog, probes: probes, now: time.Now},
		log,
		metricsClient,
		tracerProvider,
	)
}

// Execute probes every dependency concurrently. Any probe down degrades the
// report; the service itself keeps serving.
func (h fetchHealthReportQueryHandler) Execute(ctx context.Context, _ FetchHealthReportQuery) (*model.HealthReport, error) {
	report := &model.HealthReport{
		Status:    model.HealthStatusOK,
		Timestamp: h.now().UTC(),
		Version:   config.ServiceVersion,
		Nodes:     h.catalog.Names(),
		Checks:    make(map[string]model.DependencyCheck, len(h.probes)),
	}

	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, probe := range h.probes {
		wg.Go(func() {
			start := time.Now()
			check := model.DependencyCheck{Status: model.DependencyStatusUp}

			if !probe.IsHealthy(ctx) {
				check.Status = model.DependencyStatusDown
				check.Error = probe.Name() + " is unreachable"
			}

			check.LatencyMs = uint64(time.Since(start).Milliseconds())

			mu.Lock()
			report.Checks[probe.Name()] = check
			mu.Unlock()
		})
	}

	wg.Wait()

	for _, check := range report.Checks {
		if check.Status == model.DependencyStatusDown {
			report.Status = model.HealthStatusDegraded
		}
	}

	return report, nil
}
