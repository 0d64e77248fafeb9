package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/clerk/clerk-sdk-go/v2"
	"github.com/clerk/clerk-sdk-go/v2/user"
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/server"
)

// IdentityLookup fetches a user's profile from the identity provider.
type IdentityLookup func(ctx context.Context, externalID string) (*model.Identity, error)

// AuthService configures the Clerk SDK and resolves identities for newly
// seen users.
type AuthService struct {
	server *server.Server
	lookup IdentityLookup
}

// NewAuthService initialises Clerk with the secret key from config.
func NewAuthService(s *server.Server) *AuthService {
	clerk.SetKey(s.Config.Auth.SecretKey)
	return &AuthService{
		server: s,
		lookup: clerkIdentity,
	}
}

// Identity returns the provider profile of externalID.
func (a *AuthService) Identity(ctx context.Context, externalID string) (*model.Identity, error) {
	return a.lookup(ctx, externalID)
}

// IsAdminRole reports whether an organisation role grants admin access.
func (a *AuthService) IsAdminRole(role string) bool {
	return role != "" && role == a.server.Config.Auth.AdminRole
}

func clerkIdentity(ctx context.Context, externalID string) (*model.Identity, error) {
	u, err := user.Get(ctx, externalID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch clerk user %s: %w", externalID, err)
	}

	identity := &model.Identity{ExternalID: u.ID}
	if u.FirstName != nil {
		identity.FirstName = *u.FirstName
	}
	if u.LastName != nil {
		identity.LastName = *u.LastName
	}

	for _, addr := range u.EmailAddresses {
		if addr == nil {
			continue
		}
		if identity.Email == "" || (u.PrimaryEmailAddressID != nil && addr.ID == *u.PrimaryEmailAddressID) {
			identity.Email = addr.EmailAddress
		}
	}

	if identity.Email == "" {
		return nil, errors.New("clerk user has no email address")
	}
	return identity, nil
}
