package service

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/kelvin262292/storefront/internal/errs"
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/repository"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/kelvin262292/storefront/internal/sqlerr"
)

type UserService struct {
	server *server.Server
	repos  *repository.Repositories
	auth   *AuthService
}

func NewUserService(s *server.Server, repos *repository.Repositories, auth *AuthService) *UserService {
	return &UserService{server: s, repos: repos, auth: auth}
}

// EnsureUser returns the local user for an authenticated principal,
// provisioning it from the identity provider on first sight. The admin flag
// mirrors the principal's organisation role.
func (u *UserService) EnsureUser(ctx context.Context, p model.Principal) (*model.User, error) {
	if p.ExternalID == "" {
		return nil, errs.NewUnauthorizedError("Unauthorized", false)
	}

	existing, err := u.repos.Users.GetByExternalID(ctx, p.ExternalID)
	if err == nil {
		if existing.IsAdmin != p.IsAdmin {
			existing.IsAdmin = p.IsAdmin
			if err := u.repos.Users.Update(ctx, existing, "is_admin"); err != nil {
				return nil, err
			}
		}
		return existing, nil
	}
	if !isNotFound(err) {
		return nil, err
	}

	identity, err := u.auth.Identity(ctx, p.ExternalID)
	if err != nil {
		return nil, err
	}

	created := &model.User{
		ExternalID: p.ExternalID,
		Email:      strings.ToLower(identity.Email),
		FirstName:  identity.FirstName,
		LastName:   identity.LastName,
		IsAdmin:    p.IsAdmin,
	}
	if err := u.repos.Users.Create(ctx, created); err != nil {
		if sqlerr.IsUniqueViolation(err) {
			// A concurrent request provisioned the same user.
			return u.repos.Users.GetByExternalID(ctx, p.ExternalID)
		}
		return nil, err
	}

	u.server.Logger.Info().
		Str("user_id", p.ExternalID).
		Uint("id", created.ID).
		Msg("provisioned user")

	return created, nil
}

// UpdateProfile changes only the fields present in req.
func (u *UserService) UpdateProfile(ctx context.Context, p model.Principal, req *model.UpdateProfileRequest) (*model.User, error) {
	current, err := u.EnsureUser(ctx, p)
	if err != nil {
		return nil, err
	}

	var columns []string
	if req.FirstName != nil {
		current.FirstName = strings.TrimSpace(*req.FirstName)
		columns = append(columns, "first_name")
	}
	if req.LastName != nil {
		current.LastName = strings.TrimSpace(*req.LastName)
		columns = append(columns, "last_name")
	}
	if req.Phone != nil {
		current.Phone = *req.Phone
		columns = append(columns, "phone")
	}
	if req.Email != nil {
		current.Email = strings.ToLower(strings.TrimSpace(*req.Email))
		columns = append(columns, "email")
	}

	if len(columns) == 0 {
		return current, nil
	}

	if err := u.repos.Users.Update(ctx, current, columns...); err != nil {
		if sqlerr.IsUniqueViolation(err) {
			return nil, alreadyExists("user", "email")
		}
		return nil, err
	}
	return current, nil
}

func (u *UserService) List(ctx context.Context, q *model.ListUsersQuery) (*model.PaginatedResponse[model.User], error) {
	return u.repos.Users.List(ctx, q)
}

func isNotFound(err error) bool {
	var httpErr *errs.HTTPError
	return errors.As(err, &httpErr) && httpErr.Status == http.StatusNotFound
}
