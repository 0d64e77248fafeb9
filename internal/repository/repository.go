// Package repository handles all interactions with the database.
//
// Repositories wrap gorm on top of the shared pgx pool. Each method takes a
// context; when that context was produced by WithinTx the method joins the
// transaction, so services can compose several repositories atomically.
package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/server"
	"github.com/kelvin262292/storefront/internal/sqlerr"
	"gorm.io/gorm"
)

type txKey struct{}

type base struct {
	server *server.Server
}

// db returns the transaction bound to ctx, or a fresh session on the pool.
func (b base) db(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return b.server.DB.ORM.WithContext(ctx)
}

// InTx reports whether ctx carries a transaction.
func InTx(ctx context.Context) bool {
	_, ok := ctx.Value(txKey{}).(*gorm.DB)
	return ok
}

// paginate applies LIMIT/OFFSET for a 1-based page. Page and limit are
// clamped so the offset cannot overflow.
func paginate(page, limit int) func(*gorm.DB) *gorm.DB {
	page = min(max(page, 1), model.MaxPage)
	limit = min(max(limit, 1), model.MaxLimit)
	return func(db *gorm.DB) *gorm.DB {
		return db.Offset((page - 1) * limit).Limit(limit)
	}
}

// notFound maps gorm.ErrRecordNotFound to a typed 404 and leaves every
// other error for the global error handler.
func notFound(err error, entity string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return sqlerr.NotFound(entity)
	}
	return err
}

// likePattern builds a case-insensitive substring pattern with LIKE
// wildcards in the input escaped. Use with `LIKE ? ESCAPE '\'`.
func likePattern(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(strings.ToLower(strings.TrimSpace(s))) + "%"
}

func toPage[T any](rows []T, q model.PageQuery, total int64) *model.PaginatedResponse[T] {
	p, l := q.Resolve()
	return model.NewPaginatedResponse(rows, p, l, total)
}
