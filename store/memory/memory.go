// Package memory provides an in-memory benefits.Store implementation
// (for testing/dev). Rows keep insertion order, matching the storage-order
// contract of the SQLite store.
package memory

import (
	"context"
	"sync"

	"github.com/openhcm/benefits-engine/benefits"
)

type Store struct {
	mu          sync.RWMutex
	workers     []benefits.Worker
	workerIndex map[benefits.WorkerID]int
	enrollments []benefits.Enrollment
	timeEntries []benefits.TimeEntry
	audit       []benefits.AuditEntry
}

func New() *Store {
	return &Store{workerIndex: make(map[benefits.WorkerID]int)}
}

// =============================================================================
// WRITER
// =============================================================================

// UpsertWorker replaces an existing worker in place so storage order is
// the order of first insertion, like the SQLite rowid.
func (s *Store) UpsertWorker(_ context.Context, w benefits.Worker) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.workerIndex[w.WorkerID]; ok {
		s.workers[i] = w
		return nil
	}
	s.workerIndex[w.WorkerID] = len(s.workers)
	s.workers = append(s.workers, w)
	return nil
}

func (s *Store) AppendEnrollment(_ context.Context, e benefits.Enrollment) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.enrollments = append(s.enrollments, e)
	return nil
}

func (s *Store) AppendTimeEntry(_ context.Context, t benefits.TimeEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.timeEntries = append(s.timeEntries, t)
	return nil
}

func (s *Store) AppendAudit(_ context.Context, a benefits.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.audit = append(s.audit, a)
	return nil
}

// =============================================================================
// DATASET
// =============================================================================

func (s *Store) WorkersByDepartment(_ context.Context, dept string) ([]benefits.Worker, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []benefits.Worker
	for _, w := range s.workers {
		if dept == "" || w.Department == dept {
			result = append(result, w)
		}
	}
	return result, nil
}

func (s *Store) EnrollmentsInWindow(_ context.Context, w benefits.Window) ([]benefits.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var result []benefits.Enrollment
	for _, e := range s.enrollments {
		if w.Contains(e.EffectiveDate) {
			result = append(result, e)
		}
	}
	return result, nil
}

func (s *Store) AllEnrollments(_ context.Context) ([]benefits.Enrollment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]benefits.Enrollment, len(s.enrollments))
	copy(result, s.enrollments)
	return result, nil
}

// =============================================================================
// TEST ACCESSORS
// =============================================================================

// AuditEntries returns a copy of the audit trail.
func (s *Store) AuditEntries() []benefits.AuditEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]benefits.AuditEntry, len(s.audit))
	copy(result, s.audit)
	return result
}

// TimeEntries returns a copy of the time-entry rows.
func (s *Store) TimeEntries() []benefits.TimeEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]benefits.TimeEntry, len(s.timeEntries))
	copy(result, s.timeEntries)
	return result
}
