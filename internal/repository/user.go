package repository

import (
	"context"

	"github.com/kelvin262292/storefront/internal/model"
	"gorm.io/gorm"
)

type UserRepository struct {
	base
}

func (r *UserRepository) GetByExternalID(ctx context.Context, externalID string) (*model.User, error) {
	var user model.User
	err := r.db(ctx).Where("external_id = ?", externalID).First(&user).Error
	if err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uint) (*model.User, error) {
	var user model.User
	if err := r.db(ctx).First(&user, id).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}

func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	return r.db(ctx).Create(user).Error
}

// Update writes the given columns only.
func (r *UserRepository) Update(ctx context.Context, user *model.User, columns ...string) error {
	return r.db(ctx).Model(user).Select(columns).Updates(user).Error
}

// List pages through users, newest first. q matches email or name.
func (r *UserRepository) List(ctx context.Context, q *model.ListUsersQuery) (*model.PaginatedResponse[model.User], error) {
	query := r.db(ctx).Model(&model.User{})
	if q.Q != "" {
		pattern := likePattern(q.Q)
		query = query.Where(
			`(LOWER(email) LIKE ? ESCAPE '\' OR LOWER(first_name) LIKE ? ESCAPE '\' OR LOWER(last_name) LIKE ? ESCAPE '\')`,
			pattern, pattern, pattern,
		)
	}
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	p, l := q.Resolve()
	var users []model.User
	if err := query.Scopes(paginate(p, l)).Order("created_at DESC, id DESC").Find(&users).Error; err != nil {
		return nil, err
	}

	return toPage(users, q.PageQuery, total), nil
}
