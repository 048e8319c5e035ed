// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"database/sql"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/danielhkuo/properview/auth"
	"github.com/danielhkuo/properview/cliparse"
	"github.com/danielhkuo/properview/middleware"
	"github.com/danielhkuo/properview/models"
)

type AgentHandler struct {
	db  *sql.DB
	cfg cliparse.Config
}

func NewAgentHandler(db *sql.DB, cfg cliparse.Config) *AgentHandler {
	return &AgentHandler{db: db, cfg: cfg}
}

// currentAgent resolves the session to an existing agent ID.
// Writes a 401 and returns false when there is no valid session.
func currentAgent(w http.ResponseWriter, r *http.Request, db *sql.DB, salt string) (string, bool) {
	agentID, err := auth.AgentFromRequest(r, salt)
	if err != nil {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Agent login required")
		return "", false
	}

	// Token may outlive the agent row
	var exists int
	err = db.QueryRowContext(r.Context(), "SELECT 1 FROM agent WHERE id = $1", agentID).Scan(&exists)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Agent login required")
		return "", false
	}
	if err != nil {
		slog.Error("failed to query agent", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return "", false
	}
	return agentID, true
}

func loadAgent(r *http.Request, db *sql.DB, agentID string) (models.Agent, error) {
	var a models.Agent
	err := db.QueryRowContext(r.Context(), `
		SELECT id, name, email, phone, created_at
		FROM agent
		WHERE id = $1
	`, agentID).Scan(&a.ID, &a.Name, &a.Email, &a.Phone, &a.CreatedAt)
	return a, err
}

// CreateAgent handles POST /agents
func (h *AgentHandler) CreateAgent(w http.ResponseWriter, r *http.Request) {
	var req models.CreateAgentRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}
	if email != "" && !strings.Contains(email, "@") {
		middleware.ErrorResponse(w, http.StatusBadRequest, "email is invalid")
		return
	}

	var existing string
	err := h.db.QueryRowContext(r.Context(), "SELECT id FROM agent WHERE LOWER(name) = LOWER($1)", name).Scan(&existing)
	if err == nil {
		middleware.ErrorResponse(w, http.StatusConflict, "Agent name already taken")
		return
	}
	if err != sql.ErrNoRows {
		slog.Error("failed to query agent", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	agentID, err := auth.GenerateID(16)
	if err != nil {
		slog.Error("failed to generate agent ID", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create agent")
		return
	}

	_, err = h.db.ExecContext(r.Context(), `
		INSERT INTO agent (id, name, email, phone, created_at)
		VALUES ($1, $2, $3, $4, $5)
	`, agentID, name, email, strings.TrimSpace(req.Phone), time.Now().UTC())
	if err != nil {
		// Unique index on LOWER(name) catches a concurrent insert
		slog.Error("failed to insert agent", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Failed to create agent")
		return
	}

	slog.Info("agent created", "agent_id", agentID)

	middleware.JSONResponse(w, http.StatusCreated, models.CreateAgentResponse{AgentID: agentID})
}

// GetAgent handles GET /agents/{id}
func (h *AgentHandler) GetAgent(w http.ResponseWriter, r *http.Request) {
	agentID := r.PathValue("id")
	if agentID == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "agent_id is required")
		return
	}

	agent, err := loadAgent(r, h.db, agentID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusNotFound, "Agent not found")
		return
	}
	if err != nil {
		slog.Error("failed to query agent", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	var active int
	err = h.db.QueryRowContext(r.Context(), `
		SELECT COUNT(*) FROM listing WHERE agent_id = $1 AND status = $2
	`, agentID, models.StatusActive).Scan(&active)
	if err != nil {
		slog.Error("failed to count listings", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.AgentProfile{
		Agent:          agent,
		ActiveListings: active,
	})
}

// Login handles POST /auth/login.
// Login is a name lookup; the returned token is also set as a cookie.
func (h *AgentHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.ErrorResponse(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		middleware.ErrorResponse(w, http.StatusBadRequest, "name is required")
		return
	}

	var agent models.Agent
	err := h.db.QueryRowContext(r.Context(), `
		SELECT id, name, email, phone, created_at
		FROM agent
		WHERE LOWER(name) = LOWER($1)
	`, name).Scan(&agent.ID, &agent.Name, &agent.Email, &agent.Phone, &agent.CreatedAt)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Unknown agent")
		return
	}
	if err != nil {
		slog.Error("failed to query agent", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	token := auth.GenerateAgentToken(agent.ID, h.cfg.SessionSalt)
	http.SetCookie(w, auth.SessionCookie(token, h.cfg.CookieSecure))

	slog.Info("agent logged in", "agent_id", agent.ID)

	middleware.JSONResponse(w, http.StatusOK, models.LoginResponse{Agent: agent, Token: token})
}

// Logout handles POST /auth/logout
func (h *AgentHandler) Logout(w http.ResponseWriter, r *http.Request) {
	http.SetCookie(w, auth.ClearSessionCookie(h.cfg.CookieSecure))
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /auth/me
func (h *AgentHandler) Me(w http.ResponseWriter, r *http.Request) {
	agentID, err := auth.AgentFromRequest(r, h.cfg.SessionSalt)
	if err != nil {
		if !errors.Is(err, auth.ErrNoSession) {
			slog.Warn("rejected agent token", "error", err)
		}
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Agent login required")
		return
	}

	agent, err := loadAgent(r, h.db, agentID)
	if err == sql.ErrNoRows {
		middleware.ErrorResponse(w, http.StatusUnauthorized, "Agent login required")
		return
	}
	if err != nil {
		slog.Error("failed to query agent", "error", err)
		middleware.ErrorResponse(w, http.StatusInternalServerError, "Database error")
		return
	}

	middleware.JSONResponse(w, http.StatusOK, agent)
}
