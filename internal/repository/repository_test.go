package repository

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"testing"
	"time"

	"github.com/kelvin262292/storefront/internal/errs"
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func dryRunDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(postgres.New(postgres.Config{
		DSN: "host=localhost user=shop dbname=shop sslmode=disable",
	}), &gorm.Config{DryRun: true, DisableAutomaticPing: true})
	require.NoError(t, err)
	return db
}

func TestApplyProductFilters_EmptyQueryOnlyActive(t *testing.T) {
	db := dryRunDB(t)

	stmt := ApplyProductFilters(db.Model(&model.Product{}), &model.ListProductsQuery{}).
		Find(&[]model.Product{}).Statement

	sql := stmt.SQL.String()
	assert.Contains(t, sql, "products.is_active = $1")
	assert.NotContains(t, sql, "LIKE")
	assert.Equal(t, []any{true}, stmt.Vars)
}

func TestApplyProductFilters_AllFilters(t *testing.T) {
	db := dryRunDB(t)
	lo, hi := decimal.RequireFromString("10"), decimal.RequireFromString("99.50")
	yes, no := true, false
	rating := 4.0

	q := &model.ListProductsQuery{
		Q:               "50%_Oak",
		Category:        "furniture",
		Brand:           "acme",
		MinPrice:        &lo,
		MaxPrice:        &hi,
		InStock:         &yes,
		HasModel:        &no,
		Featured:        &yes,
		MinRating:       &rating,
		IncludeInactive: true,
	}

	stmt := ApplyProductFilters(db.Model(&model.Product{}), q).
		Order(ProductOrder(model.SortPriceAsc)).
		Find(&[]model.Product{}).Statement
	sql := stmt.SQL.String()

	assert.NotContains(t, sql, "is_active")
	assert.Contains(t, sql, "LOWER(products.name) LIKE")
	assert.Contains(t, sql, "c.parent_id IN")
	assert.Contains(t, sql, "b.slug =")
	assert.Contains(t, sql, "products.price >=")
	assert.Contains(t, sql, "products.price <=")
	assert.Contains(t, sql, "products.stock > 0")
	assert.Contains(t, sql, "NOT EXISTS (SELECT 1 FROM product_models")
	assert.Contains(t, sql, "products.is_featured =")
	assert.Contains(t, sql, "products.rating_avg >=")
	assert.Contains(t, sql, "ORDER BY products.price ASC, products.id ASC")

	// 3 search patterns, 2 category slugs, brand, 2 prices, featured, rating.
	require.Len(t, stmt.Vars, 10)
	assert.Equal(t, `%50\%\_oak%`, stmt.Vars[0])
}

func TestProductOrder_DefaultsToNewest(t *testing.T) {
	assert.Equal(t, "products.created_at DESC, products.id DESC", ProductOrder(""))
	assert.Equal(t, "products.rating_avg DESC, products.review_count DESC, products.id DESC", ProductOrder(model.SortRating))
}

type fixture struct {
	repos *Repositories
	ctx   context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	return &fixture{
		repos: NewRepositories(testutil.NewTestServer(t)),
		ctx:   context.Background(),
	}
}

func (f *fixture) product(t *testing.T, name, price string, stock int, mut ...func(*model.Product)) *model.Product {
	t.Helper()
	p := &model.Product{
		Name:     name,
		Slug:     fmt.Sprintf("p-%d-%s", time.Now().UnixNano(), name),
		SKU:      fmt.Sprintf("SKU-%d", time.Now().UnixNano()),
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
	for _, m := range mut {
		m(p)
	}
	require.NoError(t, f.repos.Products.Create(f.ctx, p))
	return p
}

func (f *fixture) user(t *testing.T, ext string) *model.User {
	t.Helper()
	u := &model.User{ExternalID: ext, Email: ext + "@example.com", FirstName: "Test"}
	require.NoError(t, f.repos.Users.Create(f.ctx, u))
	return u
}

func TestProductRepository_ListFiltersAndPaginates(t *testing.T) {
	f := newFixture(t)

	parent := &model.Category{Name: "Furniture", Slug: "furniture"}
	require.NoError(t, f.repos.Categories.Create(f.ctx, parent))
	child := &model.Category{Name: "Chairs", Slug: "chairs", ParentID: &parent.ID}
	require.NoError(t, f.repos.Categories.Create(f.ctx, child))
	other := &model.Category{Name: "Lighting", Slug: "lighting"}
	require.NoError(t, f.repos.Categories.Create(f.ctx, other))

	f.product(t, "Oak Table", "120.00", 3, func(p *model.Product) { p.CategoryID = &parent.ID })
	f.product(t, "Oak Chair", "45.00", 0, func(p *model.Product) { p.CategoryID = &child.ID })
	f.product(t, "Desk Lamp", "30.00", 10, func(p *model.Product) { p.CategoryID = &other.ID })
	f.product(t, "Hidden Oak Shelf", "80.00", 5, func(p *model.Product) { p.IsActive = false })

	res, err := f.repos.Products.List(f.ctx, &model.ListProductsQuery{Q: "OAK"})
	require.NoError(t, err)
	assert.Equal(t, int64(2), res.Total)

	res, err = f.repos.Products.List(f.ctx, &model.ListProductsQuery{Category: "furniture", Sort: model.SortPriceAsc})
	require.NoError(t, err)
	require.Len(t, res.Data, 2)
	assert.Equal(t, "Oak Chair", res.Data[0].Name)

	yes := true
	res, err = f.repos.Products.List(f.ctx, &model.ListProductsQuery{Category: "furniture", InStock: &yes})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Oak Table", res.Data[0].Name)

	lo, hi := decimal.RequireFromString("40"), decimal.RequireFromString("100")
	res, err = f.repos.Products.List(f.ctx, &model.ListProductsQuery{MinPrice: &lo, MaxPrice: &hi})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Oak Chair", res.Data[0].Name)

	page, limit := 2, 1
	res, err = f.repos.Products.List(f.ctx, &model.ListProductsQuery{
		PageQuery: model.PageQuery{Page: &page, Limit: &limit},
		Sort:      model.SortName,
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Total)
	assert.Equal(t, 3, res.TotalPages)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Oak Chair", res.Data[0].Name)

	res, err = f.repos.Products.List(f.ctx, &model.ListProductsQuery{IncludeInactive: true})
	require.NoError(t, err)
	assert.Equal(t, int64(4), res.Total)
}

func TestProductRepository_ListHugePageIsEmpty(t *testing.T) {
	f := newFixture(t)
	for _, name := range []string{"Lamp", "Rug", "Vase"} {
		f.product(t, name, "10", 1)
	}

	page := math.MaxInt
	res, err := f.repos.Products.List(f.ctx, &model.ListProductsQuery{
		PageQuery: model.PageQuery{Page: &page},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Total)
	assert.Empty(t, res.Data)
	assert.Equal(t, model.MaxPage, res.Page)
}

func TestProductRepository_HasModelFilter(t *testing.T) {
	f := newFixture(t)
	with := f.product(t, "Lamp", "10", 1)
	f.product(t, "Rug", "10", 1)

	require.NoError(t, f.repos.Models.Upsert(f.ctx, &model.ProductModel{
		ProductID: with.ID, AssetURL: "/assets/lamp.glb", Format: model.ModelFormatGLB,
	}))

	yes := true
	res, err := f.repos.Products.List(f.ctx, &model.ListProductsQuery{HasModel: &yes})
	require.NoError(t, err)
	require.Len(t, res.Data, 1)
	assert.Equal(t, "Lamp", res.Data[0].Name)
	require.NotNil(t, res.Data[0].Model3D)
	assert.Equal(t, "/assets/lamp.glb", res.Data[0].Model3D.AssetURL)
}

func TestProductRepository_GetBySlugHidesInactive(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Ghost", "1", 1, func(p *model.Product) { p.IsActive = false })

	_, err := f.repos.Products.GetBySlug(f.ctx, p.Slug, false)
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, http.StatusNotFound, httpErr.Status)

	got, err := f.repos.Products.GetBySlug(f.ctx, p.Slug, true)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
}

func TestProductRepository_SaveReplacesImages(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Vase", "12", 2, func(p *model.Product) {
		p.Images = []model.ProductImage{{URL: "https://img.example.com/a.jpg", Position: 0}}
	})

	p.Name = "Tall Vase"
	require.NoError(t, f.repos.Products.Save(f.ctx, p, []model.ProductImage{
		{URL: "https://img.example.com/b.jpg", Position: 0},
		{URL: "https://img.example.com/c.jpg", Position: 1},
	}))

	got, err := f.repos.Products.GetByID(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "Tall Vase", got.Name)
	require.Len(t, got.Images, 2)
	assert.Equal(t, "https://img.example.com/b.jpg", got.Images[0].URL)
}

func TestProductRepository_DuplicateSlug(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Bowl", "5", 1)

	err := f.repos.Products.Create(f.ctx, &model.Product{Name: "Bowl", Slug: p.Slug, SKU: "OTHER", Price: decimal.NewFromInt(1), IsActive: true})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestProductRepository_DecrementStockIsGuarded(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Mug", "8", 2)

	ok, err := f.repos.Products.DecrementStock(f.ctx, p.ID, 3)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = f.repos.Products.DecrementStock(f.ctx, p.ID, 2)
	require.NoError(t, err)
	assert.True(t, ok)

	require.NoError(t, f.repos.Products.IncrementStock(f.ctx, p.ID, 1))
	got, err := f.repos.Products.GetByID(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Stock)
}

func TestReviewRepository_SummaryAndList(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Stool", "20", 1)

	for i, rating := range []int{5, 4, 4} {
		u := f.user(t, fmt.Sprintf("user_%d", i))
		require.NoError(t, f.repos.Reviews.Create(f.ctx, &model.Review{
			ProductID: p.ID, UserID: u.ID, Rating: rating, Body: "ok",
		}))
	}

	summary, err := f.repos.Reviews.Summary(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), summary.Count)
	assert.Equal(t, 4.33, summary.Average)
	assert.Equal(t, map[int]int{1: 0, 2: 0, 3: 0, 4: 2, 5: 1}, summary.Histogram)

	page, err := f.repos.Reviews.ListByProduct(f.ctx, p.ID, model.PageQuery{})
	require.NoError(t, err)
	require.Len(t, page.Data, 3)
	assert.Equal(t, "Test", page.Data[0].Author)

	empty, err := f.repos.Reviews.Summary(f.ctx, 9999)
	require.NoError(t, err)
	assert.Zero(t, empty.Average)
	assert.Len(t, empty.Histogram, 5)
}

func TestCartRepository_ItemsAndCleanup(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Plate", "3.50", 10)

	token := "8c0e2c4e-3c1a-4df5-9a53-0e1c0e2f3a4b"
	cart := &model.Cart{Token: &token}
	require.NoError(t, f.repos.Carts.Create(f.ctx, cart))

	require.NoError(t, f.repos.Carts.SetItemQuantity(f.ctx, cart.ID, p.ID, 2))
	require.NoError(t, f.repos.Carts.SetItemQuantity(f.ctx, cart.ID, p.ID, 5))

	got, err := f.repos.Carts.GetByToken(f.ctx, token)
	require.NoError(t, err)
	require.Len(t, got.Items, 1)
	assert.Equal(t, 5, got.Items[0].Quantity)
	require.NotNil(t, got.Items[0].Product)

	removed, err := f.repos.Carts.DeleteItem(f.ctx, cart.ID, p.ID)
	require.NoError(t, err)
	assert.True(t, removed)

	n, err := f.repos.Carts.DeleteIdleGuestCarts(f.ctx, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Zero(t, n)

	n, err = f.repos.Carts.DeleteIdleGuestCarts(f.ctx, time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	_, err = f.repos.Carts.GetByToken(f.ctx, token)
	assert.Error(t, err)
}

func TestOrderRepository_TransitionIsConditional(t *testing.T) {
	f := newFixture(t)
	u := f.user(t, "buyer")

	order := &model.Order{
		Number:         "SF-TEST-1",
		UserID:         u.ID,
		Status:         model.OrderStatusPending,
		Email:          "buyer@example.com",
		FullName:       "Buyer",
		ShippingMethod: model.ShippingPickup,
		PaymentMethod:  model.PaymentCOD,
		Currency:       "USD",
		Subtotal:       decimal.NewFromInt(10),
		ShippingFee:    decimal.Zero,
		Total:          decimal.NewFromInt(10),
		Items: []model.OrderItem{{
			ProductName: "Thing", ProductSlug: "thing", SKU: "T-1",
			UnitPrice: decimal.NewFromInt(10), Quantity: 1, LineTotal: decimal.NewFromInt(10),
		}},
	}
	require.NoError(t, f.repos.Orders.Create(f.ctx, order))

	stale := *order
	ok, err := f.repos.Orders.TransitionStatus(f.ctx, order, model.OrderStatusPaid, time.Now())
	require.NoError(t, err)
	assert.True(t, ok)
	assert.NotNil(t, order.PaidAt)

	ok, err = f.repos.Orders.TransitionStatus(f.ctx, &stale, model.OrderStatusCancelled, time.Now())
	require.NoError(t, err)
	assert.False(t, ok, "status changed underneath")

	got, err := f.repos.Orders.GetByNumber(f.ctx, "SF-TEST-1")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusPaid, got.Status)
	require.Len(t, got.Items, 1)

	list, err := f.repos.Orders.List(f.ctx, &u.ID, &model.ListOrdersQuery{Status: model.OrderStatusPaid})
	require.NoError(t, err)
	assert.Equal(t, int64(1), list.Total)

	revenue, err := f.repos.Stats.Revenue(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, "10.00", revenue.StringFixed(2))

	counts, err := f.repos.Stats.OrdersByStatus(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts[model.OrderStatusPaid])
	assert.Equal(t, int64(0), counts[model.OrderStatusShipped])
}

func TestStatsRepository_LowStock(t *testing.T) {
	f := newFixture(t)
	f.product(t, "Scarce", "1", 1)
	f.product(t, "Plenty", "1", 50)
	f.product(t, "Gone", "1", 0)

	rows, err := f.repos.Stats.LowStock(f.ctx, 5, 10)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Gone", rows[0].Name)

	all, active, err := f.repos.Stats.CountProducts(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(3), all)
	assert.Equal(t, int64(3), active)
}

func TestWithinTx_RollsBackOnError(t *testing.T) {
	f := newFixture(t)
	boom := errors.New("boom")

	err := f.repos.WithinTx(f.ctx, func(ctx context.Context) error {
		assert.True(t, InTx(ctx))
		require.NoError(t, f.repos.Users.Create(ctx, &model.User{ExternalID: "tx", Email: "tx@example.com"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	_, err = f.repos.Users.GetByExternalID(f.ctx, "tx")
	var httpErr *errs.HTTPError
	require.ErrorAs(t, err, &httpErr)
	assert.Equal(t, "USER_NOT_FOUND", httpErr.Code)
}

func TestModelRepository_UpsertReplaces(t *testing.T) {
	f := newFixture(t)
	p := f.product(t, "Globe", "10", 1)

	require.NoError(t, f.repos.Models.Upsert(f.ctx, &model.ProductModel{ProductID: p.ID, AssetURL: "/a.glb", Format: model.ModelFormatGLB}))
	require.NoError(t, f.repos.Models.Upsert(f.ctx, &model.ProductModel{ProductID: p.ID, AssetURL: "/b.gltf", Format: model.ModelFormatGLTF, Exposure: 0.5}))

	m, err := f.repos.Models.GetByProductID(f.ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, "/b.gltf", m.AssetURL)
	assert.Equal(t, 0.5, m.Exposure)

	require.NoError(t, f.repos.Models.DeleteByProductID(f.ctx, p.ID))
	assert.Error(t, f.repos.Models.DeleteByProductID(f.ctx, p.ID))
}
