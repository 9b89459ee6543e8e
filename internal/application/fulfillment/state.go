package fulfillment

import (
	"sync"

	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/order"
	"github.com/trinhlong183/Pharmaceutical-and-Cosmetic-Shop-Management-System-Frontend-sub000/internal/domain/shipping"
)

// OrderState is the last known view of one order and its shipments.
// A transition replaces it only after the upstream confirmed the write.
type OrderState struct {
	Order   *order.Order
	History shipping.History
}

// StateStore holds one OrderState per order
type StateStore struct {
	mu     sync.RWMutex
	states map[string]OrderState
}

// NewStateStore creates an empty StateStore
func NewStateStore() *StateStore {
	return &StateStore{states: make(map[string]OrderState)}
}

// Get returns a copy of the state of an order
func (s *StateStore) Get(orderID string) (OrderState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[orderID]
	if !ok {
		return OrderState{}, false
	}
	return copyState(st), true
}

// Put replaces the state of an order
func (s *StateStore) Put(orderID string, st OrderState) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.states[orderID] = copyState(st)
}

// PutOrder replaces the order and keeps the known history
func (s *StateStore) PutOrder(o *order.Order) {
	if o == nil || o.ID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[o.ID]
	st.Order = o.Clone()
	s.states[o.ID] = st
}

// Forget drops everything known about an order so the next read refetches it
func (s *StateStore) Forget(orderID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.states, orderID)
}

// UpsertLog adds or replaces a log in the history of its order
func (s *StateStore) UpsertLog(log *shipping.ShippingLog) {
	orderID := log.OrderID()
	if orderID == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	st := s.states[orderID]
	st.History = st.History.Upsert(log)
	s.states[orderID] = st
}

// FindLog looks up a log by id across all known orders
func (s *StateStore) FindLog(logID string) (*shipping.ShippingLog, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, st := range s.states {
		if l, ok := st.History.Find(logID); ok {
			return l, true
		}
	}
	return nil, false
}

// RemoveLog drops a log and returns the id of the order it belonged to
func (s *StateStore) RemoveLog(logID string) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for orderID, st := range s.states {
		if _, ok := st.History.Find(logID); ok {
			st.History = st.History.Remove(logID)
			s.states[orderID] = st
			return orderID, true
		}
	}
	return "", false
}

func copyState(st OrderState) OrderState {
	out := OrderState{History: make(shipping.History, len(st.History))}
	copy(out.History, st.History)
	if st.Order != nil {
		out.Order = st.Order.Clone()
	}
	return out
}
