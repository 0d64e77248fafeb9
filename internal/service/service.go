// Package service contains the business logic.
//
// It sits between the handler and repository layers. It receives validated
// data from the handler, enforces the shop's rules (stock, ownership, order
// status transitions) and calls repository methods to interact with the
// data. Multi-step writes run inside Repositories.WithinTx.
package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/kelvin262292/storefront/internal/errs"
	"github.com/kelvin262292/storefront/internal/lib/utils"
)

// maxSlugAttempts bounds the random suffix retries for generated slugs.
const maxSlugAttempts = 5

type slugExistsFunc func(ctx context.Context, slug string) (bool, error)

// resolveSlug returns explicit when given and free, otherwise a slug
// derived from name. An explicit slug that is taken is a conflict; a
// generated one gets a random suffix instead.
func resolveSlug(ctx context.Context, explicit, name, entity string, exists slugExistsFunc) (string, error) {
	if explicit != "" {
		taken, err := exists(ctx, explicit)
		if err != nil {
			return "", err
		}
		if taken {
			return "", alreadyExists(entity, "slug")
		}
		return explicit, nil
	}

	slug := utils.Slugify(name)
	if slug == "" {
		slug = entity
	}

	candidate := slug
	for i := 0; i < maxSlugAttempts; i++ {
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = utils.WithSuffix(slug)
	}
	return "", alreadyExists(entity, "slug")
}

// alreadyExists is the 409 for a duplicate unique field, coded like the
// database-level mapping (PRODUCT_ALREADY_EXISTS).
func alreadyExists(entity, field string) *errs.HTTPError {
	return errs.NewConflictError(
		fmt.Sprintf("A %s with this %s already exists", entity, field),
		errs.Code(strings.ToUpper(entity)+"_ALREADY_EXISTS"),
		nil,
	)
}

// invalidField is a 400 pointing at a single request field.
func invalidField(code, field, message string) *errs.HTTPError {
	return errs.NewBadRequestError(
		message,
		true,
		errs.Code(code),
		[]errs.FieldError{{Field: field, Error: message}},
		nil,
	)
}
