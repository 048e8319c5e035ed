// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Cookie and header names for the agent session
const (
	CookieName  = "properview_agent"
	HeaderToken = "X-Agent-Token"
)

// SessionTTL is how long the login cookie lives in the browser
const SessionTTL = 30 * 24 * time.Hour

var (
	ErrInvalidToken = errors.New("invalid token format")
	ErrBadSignature = errors.New("token signature mismatch")
	ErrNoSession    = errors.New("no agent session")
)

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func sign(agentID, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(agentID))
	sum := h.Sum(nil)
	// Use URL-safe base64 and trim padding for cleaner tokens
	return strings.TrimRight(base64.URLEncoding.EncodeToString(sum), "=")
}

// GenerateAgentToken creates the session token for an agent: "<agentID>.<tag>".
// Deterministic, so nothing is stored server-side.
func GenerateAgentToken(agentID, salt string) string {
	return agentID + "." + sign(agentID, salt)
}

// ParseAgentToken validates a token and returns the agent ID it carries
func ParseAgentToken(token, salt string) (string, error) {
	agentID, tag, ok := strings.Cut(token, ".")
	if !ok || agentID == "" || tag == "" {
		return "", ErrInvalidToken
	}
	if !hmac.Equal([]byte(tag), []byte(sign(agentID, salt))) {
		return "", ErrBadSignature
	}
	return agentID, nil
}

// AgentFromRequest reads the agent token from the X-Agent-Token header,
// falling back to the session cookie.
func AgentFromRequest(r *http.Request, salt string) (string, error) {
	token := r.Header.Get(HeaderToken)
	if token == "" {
		if c, err := r.Cookie(CookieName); err == nil {
			token = c.Value
		}
	}
	if token == "" {
		return "", ErrNoSession
	}
	return ParseAgentToken(token, salt)
}

// SessionCookie builds the login cookie
func SessionCookie(token string, secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    token,
		Path:     "/",
		MaxAge:   int(SessionTTL / time.Second),
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// ClearSessionCookie builds a cookie that expires the session immediately
func ClearSessionCookie(secure bool) *http.Cookie {
	return &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	}
}

// HashIP creates a one-way hash of an IP address for privacy
// Includes salt to prevent rainbow table attacks
func HashIP(ip, salt string) string {
	h := hmac.New(sha256.New, []byte(salt))
	h.Write([]byte(ip))
	sum := h.Sum(nil)
	// Return first 16 hex chars (64 bits) - enough for deduplication
	return hex.EncodeToString(sum[:8])
}
