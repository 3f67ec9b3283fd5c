package ratelimit

// Stats is a point-in-time snapshot of the limiter counters.
type Stats struct {
	CurrentRate          int     `json:"current_rate"`
	ConsecutiveFailures  int     `json:"consecutive_failures"`
	ConsecutiveSuccesses int     `json:"consecutive_successes"`
	TotalRequests        int64   `json:"total_requests"`
	TotalSuccesses       int64   `json:"total_successes"`
	TotalFailures        int64   `json:"total_failures"`
	SuccessRate          float64 `json:"success_rate"`
}

// Stats returns a consistent snapshot of the limiter state. It never
// blocks on admission waits; it only takes the state mutex briefly.
func (l *Limiter) Stats() Stats {
	l.mu.Lock()
	defer l.mu.Unlock()

	s := Stats{
		CurrentRate:          l.currentRate,
		ConsecutiveFailures:  l.consecutiveFailures,
		ConsecutiveSuccesses: l.consecutiveSuccesses,
		TotalRequests:        l.totalRequests,
		TotalSuccesses:       l.totalSuccesses,
		TotalFailures:        l.totalFailures,
	}
	if l.totalRequests > 0 {
		s.SuccessRate = float64(l.totalSuccesses) / float64(l.totalRequests)
	}
	return s
}
