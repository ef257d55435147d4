package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"poll-voting-backend/auth"
	"poll-voting-backend/cache"
	"poll-voting-backend/config"
	"poll-voting-backend/database"
	"poll-voting-backend/handlers"
	"poll-voting-backend/logger"
	"poll-voting-backend/middleware"
	"poll-voting-backend/repository"
	"poll-voting-backend/routes"
	"poll-voting-backend/service"
	"poll-voting-backend/websocket"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type testServer struct {
	router *gin.Engine
	store  *repository.GormStore
}

// setupTestEnvironment builds the full router over a private in-memory sqlite database.
func setupTestEnvironment(t *testing.T) *testServer {
	t.Helper()

	log := logger.Discard()
	cfg := &config.Config{
		Env: "test",
		Storage: config.StorageConfig{
			Driver: config.DriverSQLite,
			DSN:    "file:" + uuid.NewString() + "?mode=memory&cache=shared",
		},
	}

	db, err := database.OpenGorm(cfg, log)
	require.NoError(t, err)
	store := repository.NewGormStore(db)
	t.Cleanup(func() { _ = store.Close(context.Background()) })

	service.SeedRoles(context.Background(), store, log)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	hub := websocket.NewHub(log)
	go hub.Run(ctx)

	tokens := auth.NewTokenCodec("handlers-test-secret")
	authn := auth.NewAuthenticator(auth.DefaultHeader, tokens)
	authz := auth.NewAuthorizer(log, store, store)

	polls := service.NewPollService(log, store, store, store, authz, hub)
	votes := service.NewVotingService(log, store, store, cache.NewKeyedMutex(), hub)
	users := service.NewUserService(log, store, store, cache.NewKeyedMutex(), tokens, time.Hour)
	rateLimit := middleware.NewRateLimiter(log, nil)

	router := routes.SetupRouter(routes.Deps{
		Log:         log,
		CORS:        config.CORSConfig{AllowOrigins: []string{"*"}},
		Auth:        middleware.NewAuth(log, authn, authz),
		RateLimit:   rateLimit,
		Polls:       handlers.NewPollHandler(log, polls),
		Votes:       handlers.NewVoteHandler(log, votes),
		Users:       handlers.NewUserHandler(log, users),
		Health:      handlers.NewHealthHandler(log, store, rateLimit, hub.Size),
		Live:        websocket.NewHandler(log, hub, polls, nil),
		TokenHeader: authn.Header(),
	})

	return &testServer{router: router, store: store}
}

func (s *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequest(method, path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set(auth.DefaultHeader, token)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

type account struct {
	email    string
	password string
	token    string
}

// register signs up a fresh user through the API. The first user of a test may claim admin.
func (s *testServer) register(t *testing.T, roles ...string) account {
	t.Helper()

	acc := account{
		email:    uuid.NewString()[:8] + gofakeit.Email(),
		password: gofakeit.Password(true, true, true, false, false, 12),
	}
	body := gin.H{
		"username": gofakeit.Username() + gofakeit.DigitN(6),
		"fullname": gofakeit.Name(),
		"email":    acc.email,
		"password": acc.password,
	}
	if len(roles) > 0 {
		body["roles"] = roles
	}

	w := s.do(t, http.MethodPost, "/api/users", "", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var out struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out))
	require.NotEmpty(t, out.Token)
	acc.token = out.Token
	return acc
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

type msgBody struct {
	Msg string `json:"msg"`
}

type errorsBody struct {
	Errors []msgBody `json:"errors"`
}

func (b errorsBody) msgs() []string {
	out := make([]string, 0, len(b.Errors))
	for _, e := range b.Errors {
		out = append(out, e.Msg)
	}
	return out
}
