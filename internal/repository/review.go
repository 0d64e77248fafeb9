package repository

import (
	"context"
	"math"

	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/sqlerr"
)

type ReviewRepository struct {
	base
}

// ListByProduct pages through a product's reviews, newest first, with the
// author's display name filled in.
func (r *ReviewRepository) ListByProduct(ctx context.Context, productID uint, pq model.PageQuery) (*model.PaginatedResponse[model.Review], error) {
	query := r.db(ctx).Model(&model.Review{}).Where("product_id = ?", productID)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	p, l := pq.Resolve()
	var reviews []model.Review
	err := r.db(ctx).
		Preload("User").
		Where("product_id = ?", productID).
		Order("created_at DESC, id DESC").
		Scopes(paginate(p, l)).
		Find(&reviews).Error
	if err != nil {
		return nil, err
	}

	for i := range reviews {
		if reviews[i].User != nil {
			reviews[i].Author = reviews[i].User.DisplayName()
		}
	}

	return toPage(reviews, pq, total), nil
}

// Summary aggregates ratings: average rounded to two decimals, count and a
// histogram with every star from 1 to 5 present.
func (r *ReviewRepository) Summary(ctx context.Context, productID uint) (model.RatingSummary, error) {
	var rows []struct {
		Rating int
		Count  int
	}
	err := r.db(ctx).
		Model(&model.Review{}).
		Select("rating, COUNT(*) AS count").
		Where("product_id = ?", productID).
		Group("rating").
		Scan(&rows).Error
	if err != nil {
		return model.RatingSummary{}, err
	}

	summary := model.RatingSummary{Histogram: map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}}
	sum := 0
	for _, row := range rows {
		summary.Histogram[row.Rating] = row.Count
		summary.Count += int64(row.Count)
		sum += row.Rating * row.Count
	}
	if summary.Count > 0 {
		summary.Average = math.Round(float64(sum)/float64(summary.Count)*100) / 100
	}
	return summary, nil
}

func (r *ReviewRepository) Exists(ctx context.Context, productID, userID uint) (bool, error) {
	var n int64
	err := r.db(ctx).Model(&model.Review{}).
		Where("product_id = ? AND user_id = ?", productID, userID).
		Count(&n).Error
	return n > 0, err
}

func (r *ReviewRepository) Create(ctx context.Context, review *model.Review) error {
	return r.db(ctx).Omit("User", "Product").Create(review).Error
}

func (r *ReviewRepository) GetByID(ctx context.Context, id uint) (*model.Review, error) {
	var review model.Review
	if err := r.db(ctx).First(&review, id).Error; err != nil {
		return nil, notFound(err, "review")
	}
	return &review, nil
}

func (r *ReviewRepository) Delete(ctx context.Context, id uint) error {
	res := r.db(ctx).Delete(&model.Review{}, id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return sqlerr.NotFound("review")
	}
	return nil
}
