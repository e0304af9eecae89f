package users

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tinegaCollins/user-manager/internal/apperr"
	"github.com/tinegaCollins/user-manager/internal/domain"
	"github.com/tinegaCollins/user-manager/internal/events"
	"github.com/tinegaCollins/user-manager/internal/optional"
)

// Service holds the user rules on top of a Store.
type Service struct {
	store  Store
	events events.Publisher
	log    *zap.Logger
	newID  func() string
	now    func() time.Time
}

func NewService(store Store, pub events.Publisher, log *zap.Logger) *Service {
	if pub == nil {
		pub = events.Nop{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		store:  store,
		events: pub,
		log:    log,
		newID:  uuid.NewString,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) List(ctx context.Context, p ListParams) (ListResponse, error) {
	items, total, err := s.store.List(ctx,
		Filter{Search: p.Search, Role: p.Role, IsActive: p.IsActive},
		Page{Skip: p.Skip, Take: p.Take},
	)
	if err != nil {
		return ListResponse{}, apperr.Internal(err)
	}
	if items == nil {
		items = []domain.User{}
	}
	return ListResponse{Data: items, Total: total}, nil
}

func (s *Service) Get(ctx context.Context, id string) (*domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.Validation(msgIDRequired)
	}
	u, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	return u, nil
}

func (s *Service) Create(ctx context.Context, req CreateUserRequest) (*domain.User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	phone := strings.TrimSpace(req.Phone)
	if name == "" || email == "" || phone == "" {
		return nil, apperr.Validation(msgFieldsRequired)
	}

	role := domain.RoleUser
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, apperr.Validation(msgInvalidRole)
		}
		role = *req.Role
	}
	active := true
	if req.IsActive != nil {
		active = *req.IsActive
	}

	if _, err := s.store.GetByEmail(ctx, email); err == nil {
		return nil, apperr.Conflict(msgEmailTaken)
	} else if !errors.Is(err, ErrNotFound) {
		return nil, apperr.Internal(err)
	}

	u := &domain.User{
		ID:       s.newID(),
		Name:     name,
		Email:    email,
		Phone:    phone,
		Role:     role,
		IsActive: active,
	}
	if err := s.store.Create(ctx, u); err != nil {
		return nil, mapStoreErr(err)
	}

	s.publish(ctx, events.Event{Type: events.UserCreated, UserID: u.ID, User: u})
	return u, nil
}

func (s *Service) Update(ctx context.Context, id string, req UpdateUserRequest) (*domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.Validation(msgIDRequired)
	}

	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	patch, err := buildPatch(req)
	if err != nil {
		return nil, err
	}

	if patch.Email != nil && *patch.Email != current.Email {
		other, err := s.store.GetByEmail(ctx, *patch.Email)
		switch {
		case err == nil && other.ID != id:
			return nil, apperr.Conflict(msgEmailTaken)
		case err != nil && !errors.Is(err, ErrNotFound):
			return nil, apperr.Internal(err)
		}
	}

	u, err := s.store.Update(ctx, id, patch)
	if err != nil {
		return nil, mapStoreErr(err)
	}

	s.publish(ctx, events.Event{Type: events.UserUpdated, UserID: u.ID, User: u})
	return u, nil
}

// buildPatch turns the present fields of req into column changes.
func buildPatch(req UpdateUserRequest) (Patch, error) {
	var p Patch

	name, err := requiredText(req.Name, "name")
	if err != nil {
		return Patch{}, err
	}
	p.Name = name

	email, err := requiredText(req.Email, "email")
	if err != nil {
		return Patch{}, err
	}
	p.Email = email

	if req.Phone.Present() {
		v, ok := req.Phone.Get()
		if !ok {
			return Patch{}, apperr.Validation("phone cannot be null")
		}
		v = strings.TrimSpace(v)
		p.Phone = &v
	}

	if req.Role.Present() {
		v, ok := req.Role.Get()
		if !ok || !v.Valid() {
			return Patch{}, apperr.Validation(msgInvalidRole)
		}
		p.Role = &v
	}

	if req.IsActive.Present() {
		v, ok := req.IsActive.Get()
		if !ok {
			return Patch{}, apperr.Validation("isActive cannot be null")
		}
		p.IsActive = &v
	}
	return p, nil
}

func requiredText(v optional.Value[string], field string) (*string, error) {
	if !v.Present() {
		return nil, nil
	}
	s, ok := v.Get()
	s = strings.TrimSpace(s)
	if !ok || s == "" {
		return nil, apperr.Validation(field + " cannot be empty")
	}
	return &s, nil
}

func (s *Service) Delete(ctx context.Context, id string) (*domain.User, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, apperr.Validation(msgIDRequired)
	}
	u, err := s.store.Delete(ctx, id)
	if err != nil {
		return nil, mapStoreErr(err)
	}
	s.publish(ctx, events.Event{Type: events.UserDeleted, UserID: u.ID, User: u})
	return u, nil
}

// Nuke removes every user and returns how many rows were cleared.
func (s *Service) Nuke(ctx context.Context) (int64, error) {
	n, err := s.store.DeleteAll(ctx)
	if err != nil {
		return 0, apperr.Internal(err)
	}
	s.log.Warn("all users cleared", zap.Int64("count", n))
	s.publish(ctx, events.Event{Type: events.UsersNuked, Count: n})
	return n, nil
}

func (s *Service) Stats(ctx context.Context) (Stats, error) {
	st, err := s.store.Stats(ctx)
	if err != nil {
		return Stats{}, apperr.Internal(err)
	}
	return st, nil
}

// Export returns up to limit users matching f, newest first.
func (s *Service) Export(ctx context.Context, f Filter, limit int) ([]domain.User, error) {
	items, _, err := s.store.List(ctx, f, Page{Take: limit})
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return items, nil
}

func (s *Service) Ping(ctx context.Context) error {
	if err := s.store.Ping(ctx); err != nil {
		return apperr.Unavailable("store unavailable", err)
	}
	return nil
}

func (s *Service) publish(ctx context.Context, e events.Event) {
	if e.OccurredAt.IsZero() {
		e.OccurredAt = s.now()
	}
	if err := s.events.Publish(ctx, e); err != nil {
		s.log.Warn("publish event failed", zap.String("type", e.Type), zap.String("user_id", e.UserID), zap.Error(err))
	}
}

func mapStoreErr(err error) error {
	switch {
	case errors.Is(err, ErrNotFound):
		return apperr.NotFound(msgNotFound)
	case errors.Is(err, ErrEmailTaken):
		return apperr.Conflict(msgEmailTaken)
	default:
		return apperr.Internal(err)
	}
}
