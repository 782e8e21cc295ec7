// FILE: logfeeder/src/internal/filter/throttle.go
package filter

import (
	"fmt"
	"math"
	"time"

	"logfeeder/src/internal/config"
	"logfeeder/src/internal/core"

	"github.com/lixenwraith/log"
	"golang.org/x/time/rate"
)

// Throttle drops records exceeding a token-bucket rate
type Throttle struct {
	limiter *rate.Limiter
	logger  *log.Logger
	now     func() time.Time

	stageStats
}

func NewThrottle(cfg config.FilterConfig, logger *log.Logger) (*Throttle, error) {
	if cfg.RatePerSec <= 0 {
		return nil, fmt.Errorf("rate_per_sec must be positive: %v", cfg.RatePerSec)
	}

	burst := int(cfg.Burst)
	if burst <= 0 {
		burst = int(math.Max(1, math.Ceil(cfg.RatePerSec)))
	}

	return &Throttle{
		limiter:    rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst),
		logger:     logger,
		now:        time.Now,
		stageStats: newStageStats(config.FilterTypeThrottle, logger),
	}, nil
}

func (t *Throttle) Name() string { return config.FilterTypeThrottle }

func (t *Throttle) Init() error { return nil }

func (t *Throttle) Apply(_ *core.LogEntry, _ core.InputMarker) (bool, error) {
	t.processed.Inc()
	if !t.limiter.AllowN(t.now(), 1) {
		t.dropped.Inc()
		return false, nil
	}
	return true, nil
}

func (t *Throttle) Flush() {}

func (t *Throttle) Close() error {
	if dropped := t.dropped.Value(); dropped > 0 {
		t.logger.Info("msg", "Throttle closed",
			"component", "filter",
			"dropped", dropped)
	}
	return nil
}
