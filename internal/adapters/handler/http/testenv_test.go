package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	adapterHTTP "github.com/comitanigiacomo/kanso-analytics-engine/internal/adapters/handler/http"
	"github.com/comitanigiacomo/kanso-analytics-engine/internal/adapters/handler/http/middleware"
	"github.com/comitanigiacomo/kanso-analytics-engine/internal/adapters/repository"
	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/domain"
	"github.com/comitanigiacomo/kanso-analytics-engine/internal/core/services"
)

// stubQueue records streak recalculation requests instead of running them.
type stubQueue struct {
	mu  sync.Mutex
	ids []string
}

func (q *stubQueue) Enqueue(habitID string) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.ids = append(q.ids, habitID)
}

func (q *stubQueue) enqueued() []string {
	q.mu.Lock()
	defer q.mu.Unlock()
	return append([]string(nil), q.ids...)
}

type stubDashboardCache struct {
	mu      sync.Mutex
	entries map[string]*domain.Dashboard
}

func newStubDashboardCache() *stubDashboardCache {
	return &stubDashboardCache{entries: make(map[string]*domain.Dashboard)}
}

func (c *stubDashboardCache) Get(ctx context.Context, key string) (*domain.Dashboard, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.entries[key], nil
}

func (c *stubDashboardCache) Set(ctx context.Context, key string, d *domain.Dashboard, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = d
	return nil
}

func (c *stubDashboardCache) InvalidateUser(ctx context.Context, userID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for key := range c.entries {
		delete(c.entries, key)
	}
	return nil
}

type testEnv struct {
	router     *gin.Engine
	habits     *repository.InMemoryHabitRepository
	logs       *repository.InMemoryHabitLogRepository
	categories *repository.InMemoryCategoryRepository
	users      *repository.InMemoryUserRepository
	queue      *stubQueue
}

// testAuth stands in for the JWT middleware so handler tests can impersonate
// users with a plain header. The real middleware has its own tests.
func testAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader("X-User-ID")
		if userID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization required"})
			return
		}
		c.Set(middleware.ContextUserIDKey, userID)
		c.Next()
	}
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	env := &testEnv{
		habits:     repository.NewInMemoryHabitRepository(),
		logs:       repository.NewInMemoryHabitLogRepository(),
		categories: repository.NewInMemoryCategoryRepository(),
		users:      repository.NewInMemoryUserRepository(),
		queue:      &stubQueue{},
	}

	cache := newStubDashboardCache()

	tokenSvc := services.NewTokenService("test-secret-key", "kanso-analytics", time.Hour, env.users)
	authSvc := services.NewAuthService(env.users, tokenSvc)
	habitSvc := services.NewHabitService(env.habits, cache)
	logSvc := services.NewLogService(env.logs, env.habits, env.queue, cache)
	categorySvc := services.NewCategoryService(env.categories, cache)
	analyticsSvc := services.NewAnalyticsService(env.habits, env.logs, env.categories, env.users, cache)

	authHandler := adapterHTTP.NewAuthHandler(authSvc)
	habitHandler := adapterHTTP.NewHabitHandler(habitSvc)
	logHandler := adapterHTTP.NewLogHandler(logSvc)
	categoryHandler := adapterHTTP.NewCategoryHandler(categorySvc)
	analyticsHandler := adapterHTTP.NewAnalyticsHandler(analyticsSvc)

	router := gin.New()
	api := router.Group("/api/v1")
	authHandler.RegisterRoutes(api)

	protected := api.Group("")
	protected.Use(testAuth())
	authHandler.RegisterProtectedRoutes(protected)
	habitHandler.RegisterRoutes(protected)
	logHandler.RegisterRoutes(protected)
	categoryHandler.RegisterRoutes(protected)
	analyticsHandler.RegisterRoutes(protected)

	env.router = router
	return env
}

func (e *testEnv) do(t *testing.T, method, path, body, userID string) *httptest.ResponseRecorder {
	t.Helper()

	req, err := http.NewRequest(method, path, strings.NewReader(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if userID != "" {
		req.Header.Set("X-User-ID", userID)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) seedUser(t *testing.T, id, email, timezone string) *domain.User {
	t.Helper()
	user, err := domain.NewUser(id, email, timezone)
	require.NoError(t, err)
	require.NoError(t, user.SetPassword("hunter2-hunter2"))
	require.NoError(t, e.users.Create(context.Background(), user))
	return user
}

func (e *testEnv) seedHabit(t *testing.T, userID, name string, schedule domain.Schedule, startDate time.Time) *domain.Habit {
	t.Helper()
	habit, err := domain.NewHabit(userID, name, "", domain.HabitKindBinary, schedule, nil, startDate)
	require.NoError(t, err)
	require.NoError(t, e.habits.Create(context.Background(), habit))
	return habit
}

func (e *testEnv) seedLog(t *testing.T, habitID, userID string, date time.Time, value *float64) *domain.HabitLog {
	t.Helper()
	entry := domain.NewHabitLog(habitID, userID, date, value)
	require.NoError(t, e.logs.Create(context.Background(), entry))
	return entry
}
