package state

import (
	"errors"
	"strconv"
	"strings"
	"sync"

	"github.com/google/uuid"
)

// ErrEmptyFormID is returned when a session is requested without an identifier.
var ErrEmptyFormID = errors.New("state: form identifier is required")

// Session is the per-form render context: the value store plus the render
// generation used to namespace widget keys.
type Session struct {
	formID     string
	store      *Store
	generation uint64
	rowOrders  map[string][]string
}

// NewSession creates a session with an empty store.
func NewSession(formID string) *Session {
	return &Session{formID: formID, store: NewStore(nil)}
}

// FormID returns the caller supplied identifier.
func (s *Session) FormID() string { return s.formID }

// Store returns the session's value store.
func (s *Session) Store() *Store { return s.store }

// Generation returns the current render generation.
func (s *Session) Generation() uint64 { return s.generation }

// Reset clears all values and advances the generation so hosts drop widget
// state keyed under the previous one.
func (s *Session) Reset() {
	s.store.Clear()
	s.rowOrders = nil
	s.generation++
}

// RowOrder returns the keyed-row order recorded for the mapping at path.
func (s *Session) RowOrder(path string) []string {
	return append([]string(nil), s.rowOrders[path]...)
}

// SetRowOrder records the row order of the mapping at path, so rows keep
// their index on the next pass.
func (s *Session) SetRowOrder(path string, keys []string) {
	if s.rowOrders == nil {
		s.rowOrders = make(map[string][]string)
	}
	s.rowOrders[path] = append([]string(nil), keys...)
}

// WidgetKey builds the host widget key for a dotted path.
func (s *Session) WidgetKey(path string, suffix ...string) string {
	var b strings.Builder
	b.WriteString(strconv.FormatUint(s.generation, 10))
	b.WriteByte('-')
	b.WriteString(s.formID)
	b.WriteByte('-')
	b.WriteString(path)
	for _, part := range suffix {
		if part == "" {
			continue
		}
		b.WriteByte('-')
		b.WriteString(part)
	}
	return b.String()
}

// Registry hands out sessions keyed by form identifier. Two forms sharing an
// identifier share a session.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Open returns the session for formID, creating it on first use.
func (r *Registry) Open(formID string) (*Session, error) {
	if strings.TrimSpace(formID) == "" {
		return nil, ErrEmptyFormID
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.sessions == nil {
		r.sessions = make(map[string]*Session)
	}
	session, ok := r.sessions[formID]
	if !ok {
		session = NewSession(formID)
		r.sessions[formID] = session
	}
	return session, nil
}

// Lookup returns an existing session without creating one.
func (r *Registry) Lookup(formID string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	session, ok := r.sessions[formID]
	return session, ok
}

// Clear tears down the session for formID.
func (r *Registry) Clear(formID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, formID)
}

// NewFormID returns a random, globally unique form identifier.
func NewFormID() string {
	return uuid.NewString()
}
