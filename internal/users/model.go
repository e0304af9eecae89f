package users

import (
	"time"

	"github.com/tinegaCollins/user-manager/internal/domain"
	"github.com/tinegaCollins/user-manager/internal/optional"
)

const (
	DefaultTake = 50

	msgIDRequired     = "User ID is required"
	msgNotFound       = "User not found"
	msgFieldsRequired = "Name, email, and phone are required fields"
	msgEmailTaken     = "User with this email already exists"
	msgInvalidRole    = "role must be USER or ADMIN"
)

// ListParams are the decoded list query parameters.
type ListParams struct {
	Search   string
	Role     string
	IsActive *bool
	Skip     int
	Take     int
}

type ListResponse struct {
	Data  []domain.User `json:"data"`
	Total int64         `json:"total"`
}

// CreateUserRequest is the POST body. Role and IsActive are pointers so an
// omitted field takes its default.
type CreateUserRequest struct {
	Name     string       `json:"name"`
	Email    string       `json:"email"`
	Phone    string       `json:"phone"`
	Role     *domain.Role `json:"role,omitempty"`
	IsActive *bool        `json:"isActive,omitempty"`
}

// UpdateUserRequest is the PUT body; absent fields are left untouched.
type UpdateUserRequest struct {
	Name     optional.Value[string]      `json:"name,omitzero"`
	Email    optional.Value[string]      `json:"email,omitzero"`
	Phone    optional.Value[string]      `json:"phone,omitzero"`
	Role     optional.Value[domain.Role] `json:"role,omitzero"`
	IsActive optional.Value[bool]        `json:"isActive,omitzero"`
}

type DeleteResponse struct {
	Message     string      `json:"message"`
	DeletedUser domain.User `json:"deletedUser"`
}

type NukeResponse struct {
	Message      string    `json:"message"`
	Timestamp    time.Time `json:"timestamp"`
	ClearedCount int64     `json:"clearedCount"`
}
