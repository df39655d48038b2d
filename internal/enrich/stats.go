package enrich

import "go.uber.org/zap"

// Stats accumulates per-run counters. It is an explicit value threaded
// through the batch, not a global; callers own their own instance.
type Stats struct {
	Processed     int `json:"processed"`
	Accepted      int `json:"accepted"`
	Quarantined   int `json:"quarantined"`
	Skipped       int `json:"skipped"`
	Failed        int `json:"failed"`
	VerifierCalls int `json:"verifier_calls"`
	PagesCrawled  int `json:"pages_crawled"`
}

// Add folds another Stats value into this one.
func (s *Stats) Add(other Stats) {
	s.Processed += other.Processed
	s.Accepted += other.Accepted
	s.Quarantined += other.Quarantined
	s.Skipped += other.Skipped
	s.Failed += other.Failed
	s.VerifierCalls += other.VerifierCalls
	s.PagesCrawled += other.PagesCrawled
}

// Log emits the run totals.
func (s Stats) Log() {
	zap.L().Info("enrich: run totals",
		zap.Int("processed", s.Processed),
		zap.Int("accepted", s.Accepted),
		zap.Int("quarantined", s.Quarantined),
		zap.Int("skipped", s.Skipped),
		zap.Int("failed", s.Failed),
		zap.Int("verifier_calls", s.VerifierCalls),
		zap.Int("pages_crawled", s.PagesCrawled),
	)
}
