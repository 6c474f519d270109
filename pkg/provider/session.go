package provider

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"
)

// Session is a small attribute store usable as the "session" data provider.
// It answers getter style method names from its attributes: both
// "activeProject" and "getActiveProject" return the "activeProject" value.
type Session struct {
	mu     sync.RWMutex
	values map[string]any
}

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{values: make(map[string]any)}
}

// Set stores an attribute. A nil value removes it.
func (s *Session) Set(key string, value any) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if value == nil {
		delete(s.values, key)
		return
	}
	s.values[key] = value
}

// Get returns an attribute.
func (s *Session) Get(key string) (any, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	return value, ok
}

// Invoke implements Invoker.
func (s *Session) Invoke(method string, args ...any) (any, error) {
	if len(args) > 0 {
		return nil, fmt.Errorf("%w: session getter %q takes no arguments", ErrArguments, method)
	}
	key := attributeName(method)
	value, ok := s.Get(key)
	if !ok {
		return nil, fmt.Errorf("%w: session has no attribute %q", ErrMethodNotFound, key)
	}
	return value, nil
}

func attributeName(method string) string {
	name := strings.TrimSpace(method)
	if rest, ok := strings.CutPrefix(name, "get"); ok && rest != "" {
		r, size := utf8.DecodeRuneInString(rest)
		if unicode.IsUpper(r) {
			return string(unicode.ToLower(r)) + rest[size:]
		}
	}
	return name
}
