// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides agent session tokens and ID generation.

# Agent Sessions

Agents log in by name; there is no password. The server issues a token that
ties the agent ID to an HMAC-SHA256 tag:

	token := auth.GenerateAgentToken(agentID, salt) // "<agentID>.<tag>"
	agentID, err := auth.ParseAgentToken(token, salt)

The tag is URL-safe base64 without padding. Since it's deterministic, the same
agent ID and salt always produce the same token, so nothing is stored in the
database. The tag only stops a client from editing the agent ID in its cookie.

# Transport

The token travels in the properview_agent cookie or the X-Agent-Token header:

	http.SetCookie(w, auth.SessionCookie(token, cfg.CookieSecure))
	agentID, err := auth.AgentFromRequest(r, cfg.SessionSalt)

The header wins when both are present. Logout sends ClearSessionCookie.

# ID Generation

Random hex IDs for database records:

	id, err := auth.GenerateID(16)  // 32 hex characters

# IP Hashing

Inquiries keep a hashed client IP for spam review:

	hash := auth.HashIP(ipAddress, salt)

Returns first 8 bytes (16 hex chars) of HMAC-SHA256.
*/
package auth
