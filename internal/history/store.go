// Package history keeps a bounded per-country record of past assessments.
// The scoring engine itself is stateless; this store is the caller-side
// memory it reads previous/history windows from.
package history

import (
	"sync"

	"riskwatch/internal/model"
)

type Store struct {
	mu        sync.RWMutex
	byCountry map[string][]model.RiskAssessment
	limit     int
}

func NewStore(limit int) *Store {
	if limit <= 0 {
		limit = 500
	}
	return &Store{
		byCountry: make(map[string][]model.RiskAssessment),
		limit:     limit,
	}
}

func (s *Store) Add(a model.RiskAssessment) {
	if a.CountryCode == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	list := append(s.byCountry[a.CountryCode], a)
	if len(list) > s.limit {
		list = append([]model.RiskAssessment{}, list[len(list)-s.limit:]...)
	}
	s.byCountry[a.CountryCode] = list
}

// Recent returns up to n assessments for a country, ordered
// most-recent-last.
func (s *Store) Recent(countryCode string, n int) []model.RiskAssessment {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.byCountry[countryCode]
	if n <= 0 || n > len(list) {
		n = len(list)
	}
	out := make([]model.RiskAssessment, n)
	copy(out, list[len(list)-n:])
	return out
}

// Latest returns the most recent assessment for a country.
func (s *Store) Latest(countryCode string) (model.RiskAssessment, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	list := s.byCountry[countryCode]
	if len(list) == 0 {
		return model.RiskAssessment{}, false
	}
	return list[len(list)-1], true
}

// Countries lists every country with at least one recorded assessment.
func (s *Store) Countries() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.byCountry))
	for code := range s.byCountry {
		out = append(out, code)
	}
	return out
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.byCountry = make(map[string][]model.RiskAssessment)
}
