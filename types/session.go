package types

import (
	"sync"
	"time"
)

// StagedFile is one staged upload, held in memory until the submission runs.
type StagedFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// UploadSession is the working state of one review: three optional file slots
// keyed by category, the selected model, and whatever results or error text
// the categories have produced so far. It lives only in the session cache and
// is discarded after navigation (or on TTL expiry).
type UploadSession struct {
	ID        string
	Model     string
	CreatedAt time.Time

	mu      sync.Mutex
	files   map[Category]*StagedFile
	results map[Category]*AnalysisResult
	errors  map[Category]string
}

// NewUploadSession creates an empty session.
func NewUploadSession(id, model string) *UploadSession {
	return &UploadSession{
		ID:        id,
		Model:     model,
		CreatedAt: time.Now(),
		files:     make(map[Category]*StagedFile),
		results:   make(map[Category]*AnalysisResult),
		errors:    make(map[Category]string),
	}
}

// SelectFile stages a file into a slot. Replacing a slot's file clears any
// stale result and error text for that category.
func (s *UploadSession) SelectFile(c Category, f *StagedFile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.files[c] = f
	delete(s.results, c)
	delete(s.errors, c)
}

// RemoveFile empties a slot and clears that category's result and error text.
func (s *UploadSession) RemoveFile(c Category) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, c)
	delete(s.results, c)
	delete(s.errors, c)
}

// File returns the staged file for a category, or nil.
func (s *UploadSession) File(c Category) *StagedFile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.files[c]
}

// Ready reports whether all three slots are populated. Submission is only
// actionable when this holds.
func (s *UploadSession) Ready() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range Categories {
		if s.files[c] == nil {
			return false
		}
	}
	return true
}

// SetResult stores a category result obtained without error.
func (s *UploadSession) SetResult(c Category, r *AnalysisResult) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.results[c] = r
}

// SetError accumulates error text for a category; no result is stored.
func (s *UploadSession) SetError(c Category, msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errors[c] = msg
}

// Result returns the stored result for a category, or nil.
func (s *UploadSession) Result(c Category) *AnalysisResult {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.results[c]
}

// ErrorText returns the accumulated error text for a category.
func (s *UploadSession) ErrorText(c Category) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errors[c]
}

// AllSucceeded reports whether every category produced a usable result.
// Aggregation is only requested when this holds.
func (s *UploadSession) AllSucceeded() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range Categories {
		if s.results[c] == nil {
			return false
		}
	}
	return true
}

// Slots reports which categories currently hold a staged file.
func (s *UploadSession) Slots() map[Category]bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	slots := make(map[Category]bool, len(Categories))
	for _, c := range Categories {
		slots[c] = s.files[c] != nil
	}
	return slots
}
