// Package auth provides the invitation-code gate in front of the API. The
// rest of the system only sees an opaque token check.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// ErrInvalidCode is returned when a login code is not recognized.
var ErrInvalidCode = errors.New("invalid invitation code")

// Gate validates callers. Implementations are free to back tokens however
// they like; callers treat tokens as opaque strings.
type Gate interface {
	// Login exchanges an invitation code for a session token.
	Login(code string) (string, error)
	// Check reports whether a token identifies a live session.
	Check(token string) bool
	// Logout invalidates a token.
	Logout(token string)
}

const maxSessions = 1024

// CodeGate implements Gate with a fixed set of invitation codes and
// TTL-bounded in-memory session tokens.
type CodeGate struct {
	codes    map[string]struct{}
	sessions *expirable.LRU[string, time.Time]
}

// NewCodeGate creates a gate accepting the given codes. Sessions expire after
// ttl.
func NewCodeGate(codes []string, ttl time.Duration) *CodeGate {
	set := make(map[string]struct{}, len(codes))
	for _, c := range codes {
		set[strings.ToUpper(strings.TrimSpace(c))] = struct{}{}
	}
	return &CodeGate{
		codes:    set,
		sessions: expirable.NewLRU[string, time.Time](maxSessions, nil, ttl),
	}
}

// Login exchanges an invitation code for a session token.
func (g *CodeGate) Login(code string) (string, error) {
	if _, ok := g.codes[strings.ToUpper(strings.TrimSpace(code))]; !ok {
		return "", ErrInvalidCode
	}
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	token := hex.EncodeToString(buf)
	g.sessions.Add(token, time.Now())
	return token, nil
}

// Check reports whether a token identifies a live session.
func (g *CodeGate) Check(token string) bool {
	if token == "" {
		return false
	}
	_, ok := g.sessions.Get(token)
	return ok
}

// Logout invalidates a token.
func (g *CodeGate) Logout(token string) {
	g.sessions.Remove(token)
}
