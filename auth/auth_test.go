// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestGenerateID(t *testing.T) {
	tests := []struct {
		name    string
		byteLen int
		wantLen int // hex encoded length = byteLen * 2
	}{
		{"8 bytes", 8, 16},
		{"16 bytes", 16, 32},
		{"24 bytes", 24, 48},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := GenerateID(tt.byteLen)
			if err != nil {
				t.Fatalf("GenerateID() error = %v", err)
			}
			if len(id) != tt.wantLen {
				t.Errorf("GenerateID() length = %d, want %d", len(id), tt.wantLen)
			}
			// Verify it's valid hex
			for _, c := range id {
				if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
					t.Errorf("GenerateID() contains invalid hex char: %c", c)
				}
			}
		})
	}

	// Test randomness - two IDs should be different
	id1, _ := GenerateID(16)
	id2, _ := GenerateID(16)
	if id1 == id2 {
		t.Error("GenerateID() produced duplicate IDs (extremely unlikely)")
	}
}

func TestGenerateAgentToken(t *testing.T) {
	tests := []struct {
		name    string
		agentID string
		salt    string
	}{
		{"standard", "agent123", "secret-salt"},
		{"empty salt", "agent456", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token := GenerateAgentToken(tt.agentID, tt.salt)

			if !strings.HasPrefix(token, tt.agentID+".") {
				t.Errorf("GenerateAgentToken() = %q, want prefix %q", token, tt.agentID+".")
			}

			// Should be deterministic
			if token != GenerateAgentToken(tt.agentID, tt.salt) {
				t.Error("GenerateAgentToken() is not deterministic")
			}

			// Should be URL-safe (no padding)
			if strings.Contains(token, "=") {
				t.Error("GenerateAgentToken() contains padding characters")
			}
		})
	}
}

func TestParseAgentToken(t *testing.T) {
	agentID := "a1b2c3"
	salt := "test-salt"
	valid := GenerateAgentToken(agentID, salt)
	_, tag, _ := strings.Cut(valid, ".")

	tests := []struct {
		name    string
		token   string
		salt    string
		wantErr error
	}{
		{"valid token", valid, salt, nil},
		{"wrong salt", valid, "other-salt", ErrBadSignature},
		{"forged agent id", "someone-else." + tag, salt, ErrBadSignature},
		{"no separator", "a1b2c3", salt, ErrInvalidToken},
		{"empty id", "." + tag, salt, ErrInvalidToken},
		{"empty tag", agentID + ".", salt, ErrInvalidToken},
		{"empty", "", salt, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseAgentToken(tt.token, tt.salt)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ParseAgentToken() error = %v, want %v", err, tt.wantErr)
			}
			if tt.wantErr == nil && got != agentID {
				t.Errorf("ParseAgentToken() = %q, want %q", got, agentID)
			}
		})
	}
}

func TestAgentFromRequest(t *testing.T) {
	salt := "test-salt"
	token := GenerateAgentToken("agent-1", salt)

	t.Run("header", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.Header.Set(HeaderToken, token)
		id, err := AgentFromRequest(req, salt)
		if err != nil || id != "agent-1" {
			t.Errorf("AgentFromRequest() = %q, %v", id, err)
		}
	})

	t.Run("cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(SessionCookie(token, false))
		id, err := AgentFromRequest(req, salt)
		if err != nil || id != "agent-1" {
			t.Errorf("AgentFromRequest() = %q, %v", id, err)
		}
	})

	t.Run("header wins over cookie", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		req.AddCookie(SessionCookie(GenerateAgentToken("agent-2", salt), false))
		req.Header.Set(HeaderToken, token)
		id, _ := AgentFromRequest(req, salt)
		if id != "agent-1" {
			t.Errorf("expected header agent, got %q", id)
		}
	})

	t.Run("missing", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/", nil)
		if _, err := AgentFromRequest(req, salt); err != ErrNoSession {
			t.Errorf("expected ErrNoSession, got %v", err)
		}
	})
}

func TestSessionCookies(t *testing.T) {
	c := SessionCookie("tok", true)
	if c.Name != CookieName || c.Value != "tok" || !c.HttpOnly || !c.Secure || c.MaxAge <= 0 {
		t.Errorf("unexpected session cookie: %+v", c)
	}
	if c.SameSite != http.SameSiteLaxMode {
		t.Errorf("expected SameSite=Lax, got %v", c.SameSite)
	}

	cleared := ClearSessionCookie(false)
	if cleared.MaxAge >= 0 || cleared.Value != "" {
		t.Errorf("clear cookie should expire immediately: %+v", cleared)
	}
}

func TestHashIP(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		salt string
	}{
		{"ipv4", "192.168.1.1", "salt"},
		{"ipv6", "2001:0db8:85a3:0000:0000:8a2e:0370:7334", "salt"},
		{"localhost", "127.0.0.1", "different-salt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hash := HashIP(tt.ip, tt.salt)

			// Should be 16 hex characters (8 bytes)
			if len(hash) != 16 {
				t.Errorf("HashIP() length = %d, want 16", len(hash))
			}

			// Should be deterministic
			if hash != HashIP(tt.ip, tt.salt) {
				t.Error("HashIP() is not deterministic")
			}

			// Different salt should produce different hash
			if hash == HashIP(tt.ip, tt.salt+"x") {
				t.Error("HashIP() produced same hash with different salt")
			}
		})
	}
}
