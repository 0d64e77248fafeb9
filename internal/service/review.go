package service

import (
	"context"

	"github.com/kelvin262292/storefront/internal/errs"
	"github.com/kelvin262292/storefront/internal/lib/job"
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/repository"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/kelvin262292/storefront/internal/sqlerr"
)

type ReviewService struct {
	server *server.Server
	repos  *repository.Repositories
	users  *UserService
	jobs   job.Enqueuer
}

func NewReviewService(s *server.Server, repos *repository.Repositories, users *UserService, jobs job.Enqueuer) *ReviewService {
	return &ReviewService{server: s, repos: repos, users: users, jobs: jobs}
}

// List pages through the reviews of an active product together with its
// rating summary.
func (r *ReviewService) List(ctx context.Context, slug string, pq model.PageQuery) (*model.ReviewList, error) {
	product, err := r.repos.Products.GetBySlug(ctx, slug, false)
	if err != nil {
		return nil, err
	}

	page, err := r.repos.Reviews.ListByProduct(ctx, product.ID, pq)
	if err != nil {
		return nil, err
	}

	summary, err := r.repos.Reviews.Summary(ctx, product.ID)
	if err != nil {
		return nil, err
	}

	return &model.ReviewList{PaginatedResponse: *page, Summary: summary}, nil
}

// Create stores the caller's review. Each user reviews a product once.
func (r *ReviewService) Create(ctx context.Context, p model.Principal, req *model.CreateReviewRequest) (*model.Review, error) {
	user, err := r.users.EnsureUser(ctx, p)
	if err != nil {
		return nil, err
	}

	product, err := r.repos.Products.GetBySlug(ctx, req.Slug, false)
	if err != nil {
		return nil, err
	}

	exists, err := r.repos.Reviews.Exists(ctx, product.ID, user.ID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, reviewExists()
	}

	review := &model.Review{
		ProductID: product.ID,
		UserID:    user.ID,
		Rating:    req.Rating,
		Title:     req.Title,
		Body:      req.Body,
	}
	if err := r.repos.Reviews.Create(ctx, review); err != nil {
		if sqlerr.IsUniqueViolation(err) {
			return nil, reviewExists()
		}
		return nil, err
	}
	review.Author = user.DisplayName()

	r.recompute(ctx, product.ID)
	return review, nil
}

// Delete removes a review. Only its author or an admin may do so.
func (r *ReviewService) Delete(ctx context.Context, p model.Principal, id uint) error {
	review, err := r.repos.Reviews.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if !p.IsAdmin {
		user, err := r.users.EnsureUser(ctx, p)
		if err != nil {
			return err
		}
		if review.UserID != user.ID {
			return errs.NewForbiddenError("You can only delete your own reviews", true)
		}
	}

	if err := r.repos.Reviews.Delete(ctx, id); err != nil {
		return err
	}

	r.recompute(ctx, review.ProductID)
	return nil
}

// recompute enqueues the rating refresh. The review is already stored, so
// an enqueue failure is logged rather than returned.
func (r *ReviewService) recompute(ctx context.Context, productID uint) {
	task, err := job.NewRecomputeRatingTask(productID)
	if err == nil {
		err = r.jobs.Enqueue(ctx, task)
	}
	if err != nil {
		r.server.Logger.Error().Err(err).Uint("product_id", productID).Msg("failed to enqueue rating recompute")
	}
}

func reviewExists() *errs.HTTPError {
	return errs.NewConflictError("You have already reviewed this product", errs.Code("REVIEW_ALREADY_EXISTS"), nil)
}
