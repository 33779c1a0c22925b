package logging

// ProgressSampler thins out progress logging to one line per bucket of
// percentage points.
type ProgressSampler struct {
	step int
	next int
}

// NewProgressSampler logs at 0, step, 2*step, ... percent. A non-positive
// step selects 25.
func NewProgressSampler(step int) *ProgressSampler {
	if step <= 0 {
		step = 25
	}
	return &ProgressSampler{step: step}
}

// ShouldLog reports whether percent reached the next bucket. Values above
// 100 count as 100; negative values never log.
func (s *ProgressSampler) ShouldLog(percent int) bool {
	if s == nil {
		return true
	}
	if percent < 0 || percent < s.next {
		return false
	}
	percent = min(percent, 100)
	s.next = (percent/s.step + 1) * s.step
	return true
}
