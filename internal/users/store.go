package users

import (
	"context"
	"errors"

	"github.com/tinegaCollins/user-manager/internal/domain"
)

var (
	ErrNotFound   = errors.New("user not found")
	ErrEmailTaken = errors.New("email already in use")
)

// Filter narrows a listing. Zero values mean "no constraint".
type Filter struct {
	Search   string
	Role     string
	IsActive *bool
}

// Page is an offset window over a filtered listing.
type Page struct {
	Skip int
	Take int
}

// Patch is a validated set of column changes; nil means untouched.
type Patch struct {
	Name     *string
	Email    *string
	Phone    *string
	Role     *domain.Role
	IsActive *bool
}

type Stats struct {
	Total  int64 `json:"total"`
	Active int64 `json:"active"`
	Admins int64 `json:"admins"`
}

// Store persists users. Implementations return ErrNotFound and
// ErrEmailTaken so callers can classify failures.
type Store interface {
	List(ctx context.Context, f Filter, p Page) ([]domain.User, int64, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	Create(ctx context.Context, u *domain.User) error
	Update(ctx context.Context, id string, p Patch) (*domain.User, error)
	Delete(ctx context.Context, id string) (*domain.User, error)
	DeleteAll(ctx context.Context) (int64, error)
	Stats(ctx context.Context) (Stats, error)
	Ping(ctx context.Context) error
	Close()
}
