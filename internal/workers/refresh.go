// Package workers hosts background jobs that keep hot caches warm.
package workers

import (
	"context"

	"go.uber.org/zap"

	"github.com/vkryukov/pulsar/internal/scanner"
	"github.com/vkryukov/pulsar/pkg/logger"
)

// refreshKinds are the scans worth keeping warm between requests
var refreshKinds = []scanner.Kind{
	scanner.KindTrending,
	scanner.KindSignals,
	scanner.KindMarketAnalysis,
}

// ScanRefreshWorker re-runs the snapshot scans so interactive callers mostly
// hit a fresh cache. Failures are logged and retried on the next tick; the
// stale-fallback path keeps serving the last good values in the meantime.
type ScanRefreshWorker struct {
	scanner *scanner.Scanner
}

// NewScanRefreshWorker creates the refresh worker
func NewScanRefreshWorker(s *scanner.Scanner) *ScanRefreshWorker {
	return &ScanRefreshWorker{scanner: s}
}

func (w *ScanRefreshWorker) Name() string {
	return "scan_refresh"
}

func (w *ScanRefreshWorker) Run(ctx context.Context) error {
	for _, kind := range refreshKinds {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		entries, stale, err := w.scanner.Scan(ctx, kind)
		if err != nil {
			logger.Warn("scan refresh failed",
				zap.String("kind", string(kind)),
				zap.Error(err),
			)
			continue
		}

		logger.Debug("scan refreshed",
			zap.String("kind", string(kind)),
			zap.Int("entries", len(entries)),
			zap.Bool("stale", stale),
		)
	}

	return nil
}
