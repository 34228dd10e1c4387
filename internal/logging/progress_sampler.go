package logging

import "strings"

// ProgressSampler suppresses repetitive progress logs while preserving signal
// when the active command changes or the fraction crosses a bucket boundary.
type ProgressSampler struct {
	bucketSize float64
	lastTitle  string
	lastBucket int
}

// NewProgressSampler constructs a sampler that emits when the percent crosses
// bucket boundaries (default 5%) or when the command title changes.
func NewProgressSampler(bucketSize float64) *ProgressSampler {
	if bucketSize <= 0 {
		bucketSize = 5
	}
	return &ProgressSampler{bucketSize: bucketSize, lastBucket: -1}
}

// ShouldLog reports whether a progress event should be logged. Fraction is in
// [0,1]; negative values mean "unknown" and only title changes emit.
func (s *ProgressSampler) ShouldLog(fraction float64, title string) bool {
	if s == nil {
		return true
	}
	title = strings.TrimSpace(title)
	emit := false
	if title != "" && title != s.lastTitle {
		s.lastTitle = title
		emit = true
		s.lastBucket = -1
	}
	if fraction >= 0 {
		percent := fraction * 100
		bucket := int(percent / s.bucketSize)
		if percent >= 100 {
			bucket = int(100 / s.bucketSize)
		}
		if bucket > s.lastBucket {
			s.lastBucket = bucket
			emit = true
		}
	}
	return emit
}

// Reset clears the sampler state (e.g. when a new run starts).
func (s *ProgressSampler) Reset() {
	if s == nil {
		return
	}
	s.lastTitle = ""
	s.lastBucket = -1
}
