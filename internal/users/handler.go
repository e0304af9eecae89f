package users

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"go.uber.org/zap"

	"github.com/tinegaCollins/user-manager/internal/apperr"
	"github.com/tinegaCollins/user-manager/internal/audit"
	"github.com/tinegaCollins/user-manager/internal/auth"
)

type Handler struct {
	Service *Service
	Audit   audit.Writer
	Log     *zap.Logger
}

func NewHandler(svc *Service, aw audit.Writer, log *zap.Logger) *Handler {
	if aw == nil {
		aw = audit.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{Service: svc, Audit: aw, Log: log}
}

func (h *Handler) List(c *fiber.Ctx) error {
	skip, err := nonNegativeQuery(c, "skip", 0)
	if err != nil {
		return err
	}
	take, err := nonNegativeQuery(c, "take", DefaultTake)
	if err != nil {
		return err
	}

	f := FilterFromQuery(c)
	resp, err := h.Service.List(userContext(c), ListParams{
		Search:   f.Search,
		Role:     f.Role,
		IsActive: f.IsActive,
		Skip:     skip,
		Take:     take,
	})
	if err != nil {
		return err
	}
	return c.JSON(resp)
}

func (h *Handler) Get(c *fiber.Ctx) error {
	u, err := h.Service.Get(userContext(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(u)
}

func (h *Handler) Create(c *fiber.Ctx) error {
	var req CreateUserRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	u, err := h.Service.Create(userContext(c), req)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(u)
}

func (h *Handler) Update(c *fiber.Ctx) error {
	var req UpdateUserRequest
	if err := decodeJSON(c, &req); err != nil {
		return err
	}
	u, err := h.Service.Update(userContext(c), c.Params("id"), req)
	if err != nil {
		return err
	}
	return c.JSON(u)
}

func (h *Handler) Delete(c *fiber.Ctx) error {
	u, err := h.Service.Delete(userContext(c), c.Params("id"))
	if err != nil {
		return err
	}

	h.audit(c, audit.Entry{
		Action:     audit.ActionUserDelete,
		EntityType: "user",
		EntityID:   u.ID,
		Metadata:   map[string]any{"email": u.Email},
	})

	return c.JSON(DeleteResponse{
		Message:     "User deleted successfully",
		DeletedUser: *u,
	})
}

func (h *Handler) Nuke(c *fiber.Ctx) error {
	n, err := h.Service.Nuke(userContext(c))
	if err != nil {
		return err
	}

	h.audit(c, audit.Entry{
		Action:     audit.ActionUsersNuke,
		EntityType: "user",
		Metadata:   map[string]any{"cleared_count": n},
	})

	return c.JSON(NukeResponse{
		Message:      "All users cleared successfully",
		Timestamp:    time.Now().UTC(),
		ClearedCount: n,
	})
}

func (h *Handler) audit(c *fiber.Ctx, e audit.Entry) {
	e.Actor = auth.Actor(c)
	e.IP = utils.CopyString(c.IP())
	e.UserAgent = utils.CopyString(c.Get(fiber.HeaderUserAgent))
	if err := h.Audit.Write(userContext(c), e); err != nil {
		h.Log.Warn("audit write failed", zap.String("action", e.Action), zap.Error(err))
	}
}

// FilterFromQuery reads search, role and isActive. A present isActive is
// true only for the literal "true".
func FilterFromQuery(c *fiber.Ctx) Filter {
	f := Filter{
		Search: c.Query("search"),
		Role:   c.Query("role"),
	}
	if c.Context().QueryArgs().Has("isActive") {
		v := c.Query("isActive") == "true"
		f.IsActive = &v
	}
	return f
}

func nonNegativeQuery(c *fiber.Ctx, key string, def int) (int, error) {
	raw := c.Query(key)
	if raw == "" {
		return def, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		return 0, apperr.Validation(key + " must be a non-negative integer")
	}
	return n, nil
}

// decodeJSON treats an empty body as an empty object.
func decodeJSON(c *fiber.Ctx, dst any) error {
	body := bytes.TrimSpace(c.Body())
	if len(body) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, dst); err != nil {
		return apperr.Validation("invalid JSON body")
	}
	return nil
}

func userContext(c *fiber.Ctx) context.Context {
	if ctx := c.UserContext(); ctx != nil {
		return ctx
	}
	return context.Background()
}
