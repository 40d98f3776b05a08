// Package projection holds the in-memory state built from dispatched events:
// alert lists per exam and the set of students currently taking an exam.
// It does not emit events or talk to connections.
package projection

import (
	"edusmarthub/domain"
	"edusmarthub/errors"
	"fmt"
	"iter"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// AlertList is a snapshot of a scope's alerts in insertion order.
type AlertList struct {
	Alerts []domain.Alert
	// Total counts every alert of the scope, Filtered only the returned ones.
	Total    int
	Filtered int
}

// All iterates the snapshot; it can be ranged over any number of times.
func (l AlertList) All() iter.Seq[domain.Alert] {
	return slices.Values(l.Alerts)
}

type scopeAlerts struct {
	mu     sync.RWMutex
	alerts []domain.Alert
	byID   map[uuid.UUID]int
	byKey  map[string]int
}

// AlertStore owns every alert, keyed by scope. Writers to one scope are serialised by the
// scope's own lock so unrelated exams never contend.
type AlertStore struct {
	mu     sync.RWMutex
	scopes map[domain.Scope]*scopeAlerts
	now    func() time.Time
}

func NewAlertStore() *AlertStore {
	return &AlertStore{scopes: make(map[domain.Scope]*scopeAlerts), now: time.Now}
}

func (s *AlertStore) scope(scope domain.Scope, create bool) *scopeAlerts {
	s.mu.RLock()
	sa, ok := s.scopes[scope]
	s.mu.RUnlock()
	if ok || !create {
		return sa
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if sa, ok = s.scopes[scope]; ok {
		return sa
	}
	sa = &scopeAlerts{byID: make(map[uuid.UUID]int), byKey: make(map[string]int)}
	s.scopes[scope] = sa
	return sa
}

// Append adds the alert at the end of the scope's list, assigning an id and a timestamp
// when they are missing. Alerts without idempotency key are never deduplicated.
// When the key was already used in this scope the stored alert is returned with appended=false.
func (s *AlertStore) Append(scope domain.Scope, alert domain.Alert) (stored domain.Alert, appended bool) {
	sa := s.scope(scope, true)
	sa.mu.Lock()
	defer sa.mu.Unlock()

	if alert.IdempotencyKey != "" {
		if idx, ok := sa.byKey[alert.IdempotencyKey]; ok {
			return sa.alerts[idx], false
		}
	}
	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = s.now().UTC()
	}
	alert.Acknowledgement = nil

	sa.alerts = append(sa.alerts, alert)
	sa.byID[alert.ID] = len(sa.alerts) - 1
	if alert.IdempotencyKey != "" {
		sa.byKey[alert.IdempotencyKey] = len(sa.alerts) - 1
	}
	return alert, true
}

// List returns the scope's alerts, keeping only those of the given severity when filter is set.
// An unknown scope yields an empty list.
func (s *AlertStore) List(scope domain.Scope, filter *domain.Severity) AlertList {
	sa := s.scope(scope, false)
	if sa == nil {
		return AlertList{Alerts: []domain.Alert{}}
	}
	sa.mu.RLock()
	defer sa.mu.RUnlock()

	res := make([]domain.Alert, 0, len(sa.alerts))
	for _, a := range sa.alerts {
		if filter != nil && a.Severity != *filter {
			continue
		}
		res = append(res, a)
	}
	return AlertList{Alerts: res, Total: len(sa.alerts), Filtered: len(res)}
}

// Acknowledge stamps the alert as acknowledged. The first acknowledgement wins,
// acknowledging twice returns the original stamp.
func (s *AlertStore) Acknowledge(scope domain.Scope, id uuid.UUID, by string) (domain.Alert, error) {
	sa := s.scope(scope, false)
	if sa == nil {
		return domain.Alert{}, fmt.Errorf("%w: scope %s", errors.ErrNotFound, scope)
	}
	sa.mu.Lock()
	defer sa.mu.Unlock()

	idx, ok := sa.byID[id]
	if !ok {
		return domain.Alert{}, fmt.Errorf("%w: alert %s in scope %s", errors.ErrNotFound, id, scope)
	}
	if sa.alerts[idx].Acknowledgement == nil {
		sa.alerts[idx].Acknowledgement = &domain.Acknowledgement{By: by, At: s.now().UTC()}
	}
	return sa.alerts[idx], nil
}
