package runner

import (
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/log"

	"github.com/spectral-sh/specrun/types"
)

// ProgressIndicator receives scheduling events for UI updates. All methods
// may be called from the scheduler's dispatch loop and must be cheap.
type ProgressIndicator interface {
	StartRun(totalFiles int)
	StartFile(path string)
	CompleteFile(path string, status types.TestStatus)
	CompleteRun(status types.TestStatus)
}

// noOpProgressIndicator does nothing.
type noOpProgressIndicator struct{}

// NewNoOpProgressIndicator creates a progress indicator that does nothing.
func NewNoOpProgressIndicator() ProgressIndicator {
	return &noOpProgressIndicator{}
}

func (n *noOpProgressIndicator) StartRun(totalFiles int)                           {}
func (n *noOpProgressIndicator) StartFile(path string)                             {}
func (n *noOpProgressIndicator) CompleteFile(path string, status types.TestStatus) {}
func (n *noOpProgressIndicator) CompleteRun(status types.TestStatus)               {}

// logProgressIndicator periodically logs how far the run has progressed
// and which files are currently in flight.
type logProgressIndicator struct {
	logger   log.Logger
	interval time.Duration

	mu        sync.Mutex
	total     int
	completed int
	running   map[string]time.Time
	startTime time.Time
	stopCh    chan struct{}
}

// NewLogProgressIndicator creates a progress indicator that logs periodic
// updates at the given interval (default 30s).
func NewLogProgressIndicator(logger log.Logger, interval time.Duration) ProgressIndicator {
	if interval <= 0 {
		interval = 30 * time.Second
	}
	return &logProgressIndicator{
		logger:   logger.New("component", "progress"),
		interval: interval,
		running:  make(map[string]time.Time),
	}
}

func (p *logProgressIndicator) StartRun(totalFiles int) {
	p.mu.Lock()
	p.total = totalFiles
	p.completed = 0
	p.running = make(map[string]time.Time)
	p.startTime = time.Now()
	p.stopCh = make(chan struct{})
	stopCh := p.stopCh
	p.mu.Unlock()

	go p.reporter(stopCh)
}

func (p *logProgressIndicator) StartFile(path string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.running[path] = time.Now()
}

func (p *logProgressIndicator) CompleteFile(path string, status types.TestStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.running, path)
	p.completed++
}

func (p *logProgressIndicator) CompleteRun(status types.TestStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stopCh != nil {
		close(p.stopCh)
		p.stopCh = nil
	}
}

func (p *logProgressIndicator) reporter(stopCh chan struct{}) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			p.report()
		case <-stopCh:
			return
		}
	}
}

func (p *logProgressIndicator) report() {
	p.mu.Lock()
	defer p.mu.Unlock()

	inFlight := make([]string, 0, len(p.running))
	for path := range p.running {
		inFlight = append(inFlight, path)
	}
	p.logger.Info("Run progress",
		"completed", p.completed,
		"total", p.total,
		"inFlight", len(inFlight),
		"elapsed", time.Since(p.startTime).Round(time.Second))
}
