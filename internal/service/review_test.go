package service

import (
	"net/http"
	"testing"

	"github.com/kelvin262292/storefront/internal/lib/job"
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReviewCreate_OnePerUser(t *testing.T) {
	e := newEnv(t)
	p := e.product(t, "Blender", "70", 5)

	review, err := e.svc.Reviews.Create(e.ctx, shopper("u1"), &model.CreateReviewRequest{Slug: p.Slug, Rating: 5, Title: "Great", Body: "Smooth"})
	require.NoError(t, err)
	assert.Equal(t, "Ada L.", review.Author)
	assert.Equal(t, []string{job.TaskRecomputeRating}, e.tasks.types())

	_, err = e.svc.Reviews.Create(e.ctx, shopper("u1"), &model.CreateReviewRequest{Slug: p.Slug, Rating: 1, Body: "Changed my mind"})
	he := httpErr(t, err, http.StatusConflict)
	assert.Equal(t, "REVIEW_ALREADY_EXISTS", he.Code)
}

func TestReviewCreate_InactiveProduct(t *testing.T) {
	e := newEnv(t)
	p := e.product(t, "Retired", "10", 1, func(p *model.Product) { p.IsActive = false })

	_, err := e.svc.Reviews.Create(e.ctx, shopper("u1"), &model.CreateReviewRequest{Slug: p.Slug, Rating: 3, Body: "?"})
	httpErr(t, err, http.StatusNotFound)
}

func TestReviewDelete_AuthorOrAdmin(t *testing.T) {
	e := newEnv(t)
	p := e.product(t, "Mixer", "50", 5)

	review, err := e.svc.Reviews.Create(e.ctx, shopper("author"), &model.CreateReviewRequest{Slug: p.Slug, Rating: 4, Body: "Fine"})
	require.NoError(t, err)

	httpErr(t, e.svc.Reviews.Delete(e.ctx, shopper("stranger"), review.ID), http.StatusForbidden)
	require.NoError(t, e.svc.Reviews.Delete(e.ctx, admin("staff"), review.ID))
	httpErr(t, e.svc.Reviews.Delete(e.ctx, shopper("author"), review.ID), http.StatusNotFound)

	assert.Equal(t, []string{job.TaskRecomputeRating, job.TaskRecomputeRating}, e.tasks.types())
}

func TestReviewList_WithSummary(t *testing.T) {
	e := newEnv(t)
	p := e.product(t, "Grill", "300", 2)
	for _, id := range []string{"a", "b", "c"} {
		_, err := e.svc.Reviews.Create(e.ctx, shopper(id), &model.CreateReviewRequest{Slug: p.Slug, Rating: 3, Body: "Meh"})
		require.NoError(t, err)
	}

	limit := 2
	list, err := e.svc.Reviews.List(e.ctx, p.Slug, model.PageQuery{Limit: &limit})
	require.NoError(t, err)
	assert.Len(t, list.Data, 2)
	assert.Equal(t, int64(3), list.Total)
	assert.Equal(t, 2, list.TotalPages)
	assert.Equal(t, 3.0, list.Summary.Average)
	assert.Equal(t, 3, list.Summary.Histogram[3])
}
