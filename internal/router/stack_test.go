package router

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/listhub/listhub/internal/handler"
	"github.com/listhub/listhub/internal/metrics"
	"github.com/listhub/listhub/internal/middleware"
	"github.com/listhub/listhub/internal/model"
	"github.com/listhub/listhub/internal/service"
	"github.com/listhub/listhub/internal/upstream"
)

// memUsers is an in-memory handler.UserStore.
type memUsers struct {
	mu    sync.Mutex
	users []model.User
}

func (s *memUsers) CreateUser(ctx context.Context, u *model.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	u.ID = int64(len(s.users) + 1)
	s.users = append(s.users, *u)
	return nil
}

func (s *memUsers) ListUsers(ctx context.Context, page *model.Page) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.User, len(s.users))
	copy(out, s.users)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if page == nil {
		return out, nil
	}
	return paginate(out, *page), nil
}

func (s *memUsers) GetUser(ctx context.Context, id int64) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.ID == id {
			u := u
			return &u, nil
		}
	}
	return nil, model.ErrNotFound
}

// memListings is an in-memory handler.ListingStore.
type memListings struct {
	mu       sync.Mutex
	listings []model.Listing
}

func (s *memListings) CreateListing(ctx context.Context, l *model.Listing) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	l.ID = int64(len(s.listings) + 1)
	s.listings = append(s.listings, *l)
	return nil
}

func (s *memListings) ListListings(ctx context.Context, filter model.ListingFilter) ([]model.Listing, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []model.Listing
	for i := len(s.listings) - 1; i >= 0; i-- {
		l := s.listings[i]
		if filter.UserID != nil && l.UserID != *filter.UserID {
			continue
		}
		out = append(out, l)
	}
	return paginate(out, filter.Page), nil
}

func paginate[T any](items []T, page model.Page) []T {
	start := page.Offset()
	if start >= len(items) {
		return []T{}
	}
	end := start + page.Size
	if end > len(items) {
		end = len(items)
	}
	return items[start:end]
}

type stack struct {
	gateway  http.Handler
	users    *memUsers
	listings *memListings
	metrics  *metrics.InMemoryRecorder
}

// newStack wires the gateway to both backend routers over HTTP.
func newStack(t *testing.T) *stack {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := Config{Logger: logger, IsDevelopment: true, MaxBodySize: 1 << 20}

	users := &memUsers{}
	userSrv := httptest.NewServer(UserService(cfg, handler.NewUserHandler(users, logger), handler.NewHealthHandler()))
	t.Cleanup(userSrv.Close)

	listings := &memListings{}
	listingSrv := httptest.NewServer(ListingService(cfg, handler.NewListingHandler(listings, logger), handler.NewHealthHandler()))
	t.Cleanup(listingSrv.Close)

	rec := metrics.NewInMemory()
	client := upstream.NewClient(upstream.Options{
		UserServiceURL:    userSrv.URL,
		ListingServiceURL: listingSrv.URL,
		Logger:            logger,
		Metrics:           rec,
	})

	health := handler.NewHealthHandler().
		AddCheck("users", handler.HealthCheckFunc(client.PingUsers)).
		AddCheck("listings", handler.HealthCheckFunc(client.PingListings))

	public := handler.NewPublicHandler(client, service.NewListingEnricher(client, logger, rec), logger)
	gw := Gateway(cfg, middleware.DefaultCORSConfig(), public, health)

	return &stack{gateway: gw, users: users, listings: listings, metrics: rec}
}

func (s *stack) do(t *testing.T, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	s.gateway.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_Registered(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	cfg := Config{Logger: logger}
	health := handler.NewHealthHandler()

	tests := []struct {
		name   string
		router chi.Routes
		want   []string
	}{
		{
			name:   "gateway",
			router: Gateway(cfg, middleware.DefaultCORSConfig(), handler.NewPublicHandler(nil, nil, logger), health),
			want: []string{
				"GET /public-api/ping",
				"GET /public-api/users",
				"POST /public-api/users",
				"GET /public-api/listings",
				"POST /public-api/listings",
				"GET /healthz",
				"GET /readyz",
			},
		},
		{
			name:   "user service",
			router: UserService(cfg, handler.NewUserHandler(&memUsers{}, logger), health),
			want:   []string{"GET /users/", "POST /users/", "GET /users/ping", "GET /users/{id}"},
		},
		{
			name:   "listing service",
			router: ListingService(cfg, handler.NewListingHandler(&memListings{}, logger), health),
			want:   []string{"GET /listings/", "POST /listings/", "GET /listings/ping"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := make(map[string]bool)
			err := chi.Walk(tt.router, func(method, route string, h http.Handler, mws ...func(http.Handler) http.Handler) error {
				got[method+" "+route] = true
				return nil
			})
			if err != nil {
				t.Fatalf("chi.Walk: %v", err)
			}
			for _, route := range tt.want {
				if !got[route] {
					t.Errorf("route %q not registered; have %v", route, got)
				}
			}
		})
	}
}

func TestRoutes_MetricsOptional(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	health := handler.NewHealthHandler()
	users := handler.NewUserHandler(&memUsers{}, logger)

	without := UserService(Config{Logger: logger}, users, health)
	rec := httptest.NewRecorder()
	without.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusNotFound {
		t.Errorf("metrics disabled: status = %d, want 404", rec.Code)
	}

	metricsHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("# metrics"))
	})
	with := UserService(Config{Logger: logger, Metrics: metricsHandler}, users, health)
	rec = httptest.NewRecorder()
	with.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("metrics enabled: status = %d, want 200", rec.Code)
	}
}
