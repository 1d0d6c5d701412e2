package intake

import (
	"sync"
	"time"
)

// DefaultWindow is the suppression window for repeated identical reads.
const DefaultWindow = 3 * time.Second

// Guard suppresses re-processing of a code read repeatedly in rapid
// succession (camera frame re-reads, double trigger pulls). It is a
// single-slot debounce: only the single most recent code is remembered,
// so two codes scanned alternately within the window are both accepted.
// That is a deliberate simplification, not a recent-history dedup.
type Guard struct {
	mu     sync.Mutex
	window time.Duration

	lastCode string
	lastAt   time.Time
}

// NewGuard creates a Guard with the given suppression window.
func NewGuard(window time.Duration) *Guard {
	if window <= 0 {
		window = DefaultWindow
	}
	return &Guard{window: window}
}

// ShouldProcess reports whether a read should proceed. A read is
// suppressed when it repeats the immediately previous code within the
// window; otherwise the slot is updated and the read is accepted. The
// slot is not rolled back if the downstream write later fails, so a
// failed write still counts against the window.
func (g *Guard) ShouldProcess(code string, now time.Time) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	if code == g.lastCode && now.Sub(g.lastAt) < g.window {
		return false
	}

	g.lastCode = code
	g.lastAt = now
	return true
}
