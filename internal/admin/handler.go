package admin

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/tinegaCollins/user-manager/internal/apperr"
	"github.com/tinegaCollins/user-manager/internal/auth"
	"github.com/tinegaCollins/user-manager/internal/domain"
	"github.com/tinegaCollins/user-manager/internal/users"
)

type Handler struct {
	Users  *users.Service
	Issuer *auth.Issuer
}

func NewHandler(svc *users.Service, iss *auth.Issuer) *Handler {
	return &Handler{Users: svc, Issuer: iss}
}

type TokenRequest struct {
	Subject string `json:"subject"`
}

type TokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (h *Handler) Stats(c *fiber.Ctx) error {
	st, err := h.Users.Stats(c.UserContext())
	if err != nil {
		return err
	}
	return c.JSON(st)
}

// IssueToken mints an ADMIN bearer token. The subject defaults to "admin".
func (h *Handler) IssueToken(c *fiber.Ctx) error {
	if h.Issuer == nil {
		return apperr.Forbidden("admin tokens not configured")
	}

	var req TokenRequest
	if body := bytes.TrimSpace(c.Body()); len(body) > 0 {
		if err := json.Unmarshal(body, &req); err != nil {
			return apperr.Validation("invalid JSON body")
		}
	}
	sub := strings.TrimSpace(req.Subject)
	if sub == "" {
		sub = "admin"
	}

	tok, exp, err := h.Issuer.Issue(sub, domain.RoleAdmin)
	if err != nil {
		return apperr.Internal(err)
	}
	return c.JSON(TokenResponse{Token: tok, ExpiresAt: exp})
}
