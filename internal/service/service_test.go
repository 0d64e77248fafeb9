package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/hibiken/asynq"
	"github.com/kelvin262292/storefront/internal/errs"
	"github.com/kelvin262292/storefront/internal/model"
	"github.com/kelvin262292/storefront/internal/repository"
	"github.com/kelvin262292/storefront/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type recordedTask struct {
	Type    string
	Payload []byte
}

// taskRecorder is an in-memory job.Enqueuer.
type taskRecorder struct {
	mu    sync.Mutex
	tasks []recordedTask
}

func (r *taskRecorder) Enqueue(_ context.Context, task *asynq.Task, _ ...asynq.Option) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tasks = append(r.tasks, recordedTask{Type: task.Type(), Payload: task.Payload()})
	return nil
}

func (r *taskRecorder) types() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, 0, len(r.tasks))
	for _, t := range r.tasks {
		out = append(out, t.Type)
	}
	return out
}

type sentMail struct {
	Kind  string
	Order string
	To    string
}

type fakeMailer struct {
	sent []sentMail
	err  error
}

func (m *fakeMailer) SendOrderConfirmation(_ context.Context, o *model.Order) error {
	m.sent = append(m.sent, sentMail{Kind: "confirmation", Order: o.Number, To: o.Email})
	return m.err
}

func (m *fakeMailer) SendOrderShipped(_ context.Context, o *model.Order) error {
	m.sent = append(m.sent, sentMail{Kind: "shipped", Order: o.Number, To: o.Email})
	return m.err
}

// memCache is an in-process stand-in for the Redis product cache.
type memCache struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemCache() *memCache {
	return &memCache{data: map[string][]byte{}}
}

func (m *memCache) Get(_ context.Context, key string, dst any) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.data[key]
	return ok && json.Unmarshal(raw, dst) == nil
}

func (m *memCache) Set(_ context.Context, key string, v any, _ time.Duration) {
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = raw
}

func (m *memCache) Delete(_ context.Context, keys ...string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, k := range keys {
		delete(m.data, k)
	}
}

func (m *memCache) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

type env struct {
	svc    *Services
	repos  *repository.Repositories
	tasks  *taskRecorder
	mailer *fakeMailer
	ctx    context.Context

	lookups atomic.Int32
	seq     atomic.Int32
}

func newEnv(t *testing.T) *env {
	t.Helper()

	s := testutil.NewTestServer(t)
	repos := repository.NewRepositories(s)
	e := &env{
		repos:  repos,
		tasks:  &taskRecorder{},
		mailer: &fakeMailer{},
		ctx:    context.Background(),
	}
	e.svc = newServices(s, repos, e.tasks, e.mailer)
	e.svc.Auth.lookup = func(_ context.Context, externalID string) (*model.Identity, error) {
		e.lookups.Add(1)
		return &model.Identity{
			ExternalID: externalID,
			Email:      externalID + "@example.com",
			FirstName:  "Ada",
			LastName:   "Lovelace",
		}, nil
	}
	return e
}

func shopper(id string) model.Principal {
	return model.Principal{ExternalID: id}
}

func admin(id string) model.Principal {
	return model.Principal{ExternalID: id, Role: "org:admin", IsAdmin: true}
}

func (e *env) user(t *testing.T, p model.Principal) *model.User {
	t.Helper()
	u, err := e.svc.Users.EnsureUser(e.ctx, p)
	require.NoError(t, err)
	return u
}

// product inserts an active product priced at price with stock units.
func (e *env) product(t *testing.T, name, price string, stock int, mut ...func(*model.Product)) *model.Product {
	t.Helper()
	n := e.seq.Add(1)
	p := &model.Product{
		Name:     name,
		Slug:     fmt.Sprintf("product-%d", n),
		SKU:      fmt.Sprintf("SKU-%03d", n),
		Price:    decimal.RequireFromString(price),
		Stock:    stock,
		IsActive: true,
	}
	for _, m := range mut {
		m(p)
	}
	require.NoError(t, e.repos.Products.Create(e.ctx, p))
	return p
}

func (e *env) stock(t *testing.T, id uint) int {
	t.Helper()
	p, err := e.repos.Products.GetByID(e.ctx, id)
	require.NoError(t, err)
	return p.Stock
}

// httpErr asserts err is an *errs.HTTPError with the given status.
func httpErr(t *testing.T, err error, status int) *errs.HTTPError {
	t.Helper()
	require.Error(t, err)
	var he *errs.HTTPError
	require.True(t, errors.As(err, &he), "expected *errs.HTTPError, got %T: %v", err, err)
	require.Equal(t, status, he.Status, he.Message)
	return he
}
