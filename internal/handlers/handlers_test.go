package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/anonto42/gamehub/backend/internal/middleware"
	"github.com/anonto42/gamehub/backend/internal/models"
	"github.com/anonto42/gamehub/backend/internal/repositories"
	"github.com/anonto42/gamehub/backend/internal/services"
	"github.com/anonto42/gamehub/backend/internal/validators"
	"github.com/glebarez/sqlite"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

const testSecret = "handler-test-secret"

type testServer struct {
	e  *echo.Echo
	db *gorm.DB
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, repositories.Migrate(db))

	log, _ := test.NewNullLogger()
	userRepo := repositories.NewPostgresUserRepository(db)
	accountRepo := repositories.NewPostgresAccountRepository(db)
	itemRepo := repositories.NewPostgresItemRepository(db)
	notificationRepo := repositories.NewPostgresNotificationRepository(db)

	relationships := services.NewRelationshipService(db, repositories.NewPostgresRelationshipRepository(db), userRepo,
		notificationRepo, services.RelationshipLimits{MaxPendingRequests: 10, MaxFriends: 10}, log)
	offers := services.NewPeerOfferService(db, repositories.NewPostgresPeerOfferRepository(db), itemRepo, accountRepo,
		notificationRepo, nil, 1_000_000, log)

	e := echo.New()
	e.Validator = validators.NewValidator()
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(testSecret))
	NewFriendshipHandler(relationships).RegisterFriendshipRoutes(api)
	NewMarketHandler(offers).RegisterMarketRoutes(api)

	return &testServer{e: e, db: db}
}

func (s *testServer) user(t *testing.T, username string, balance int64) *models.User {
	t.Helper()
	user := &models.User{Username: username, Email: username + "@example.com", Password: "x"}
	require.NoError(t, s.db.Create(user).Error)
	require.NoError(t, s.db.Create(&models.Account{UserID: user.ID, Balance: balance}).Error)
	return user
}

func (s *testServer) do(t *testing.T, as *models.User, method, path, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()

	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	if as != nil {
		token, err := middleware.IssueToken(testSecret, time.Hour, as)
		require.NoError(t, err)
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	s.e.ServeHTTP(rec, req)

	var payload map[string]interface{}
	if rec.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	}
	return rec, payload
}

func errorBody(t *testing.T, payload map[string]interface{}) map[string]interface{} {
	t.Helper()
	assert.Equal(t, false, payload["success"])
	body, ok := payload["error"].(map[string]interface{})
	require.True(t, ok, "missing error body: %v", payload)
	return body
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	s := newTestServer(t)

	rec, _ := s.do(t, nil, http.MethodGet, "/api/v1/friends", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestFriendRequestRoundTrip(t *testing.T) {
	s := newTestServer(t)
	alice := s.user(t, "alice", 0)
	bob := s.user(t, "bob", 0)

	rec, payload := s.do(t, alice, http.MethodPost, "/api/v1/friends/requests", fmt.Sprintf(`{"receiver_id":%d}`, bob.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	data := payload["data"].(map[string]interface{})
	requestID := uint(data["request_id"].(float64))
	require.NotZero(t, requestID)

	rec, payload = s.do(t, bob, http.MethodGet, "/api/v1/friends/requests/received", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, payload["data"], 1)

	rec, _ = s.do(t, bob, http.MethodPut, fmt.Sprintf("/api/v1/friends/requests/%d/accept", requestID), "")
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec, payload = s.do(t, alice, http.MethodGet, "/api/v1/friends?size=5", "")
	require.Equal(t, http.StatusOK, rec.Code)
	friends := payload["data"].([]interface{})
	require.Len(t, friends, 1)
	assert.Equal(t, "bob", friends[0].(map[string]interface{})["username"])
	meta := payload["meta"].(map[string]interface{})
	assert.Equal(t, float64(1), meta["totalItems"])
	assert.Equal(t, float64(5), meta["itemsPerPage"])

	rec, _ = s.do(t, bob, http.MethodDelete, fmt.Sprintf("/api/v1/friends/%d", alice.ID), "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestFriendRequestToSelfIsInvalid(t *testing.T) {
	s := newTestServer(t)
	alice := s.user(t, "alice", 0)

	rec, payload := s.do(t, alice, http.MethodPost, "/api/v1/friends/requests", fmt.Sprintf(`{"receiver_id":%d}`, alice.ID))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "INVALID_OPERATION", errorBody(t, payload)["code"])
}

func TestFriendRequestValidation(t *testing.T) {
	s := newTestServer(t)
	alice := s.user(t, "alice", 0)

	rec, payload := s.do(t, alice, http.MethodPost, "/api/v1/friends/requests", `{}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	body := errorBody(t, payload)
	assert.Equal(t, "VALIDATION_FAILED", body["code"])
	assert.Contains(t, body["fields"], "receiver_id")
}

func TestInvalidIDParam(t *testing.T) {
	s := newTestServer(t)
	alice := s.user(t, "alice", 0)

	rec, _ := s.do(t, alice, http.MethodPut, "/api/v1/friends/requests/abc/accept", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestPurchaseWithoutFundsIsUnprocessable(t *testing.T) {
	s := newTestServer(t)
	seller := s.user(t, "seller", 0)
	buyer := s.user(t, "buyer", 50)

	item := &models.Item{Name: "Sword", Type: "weapon"}
	require.NoError(t, s.db.Create(item).Error)
	instance := &models.ItemInstance{ItemID: item.ID, OwnerID: seller.ID, AcquiredAt: time.Now()}
	require.NoError(t, s.db.Omit("Item").Create(instance).Error)

	rec, payload := s.do(t, seller, http.MethodPost, "/api/v1/market/offers",
		fmt.Sprintf(`{"item_instance_id":%d,"price":500}`, instance.ID))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	offerID := uint(payload["data"].(map[string]interface{})["id"].(float64))

	rec, payload = s.do(t, buyer, http.MethodPost, fmt.Sprintf("/api/v1/market/offers/%d/purchase", offerID), "")
	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	body := errorBody(t, payload)
	assert.Equal(t, "UNPROCESSABLE_ENTITY", body["code"])
	assert.Equal(t, map[string]interface{}{"Balance": "insufficient balance"}, body["fields"])

	rec, payload = s.do(t, buyer, http.MethodGet, "/api/v1/market/offers?q=sword", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, payload["data"], 1)
}

func TestPurchaseMissingOfferIsNotFound(t *testing.T) {
	s := newTestServer(t)
	buyer := s.user(t, "buyer", 50)

	rec, payload := s.do(t, buyer, http.MethodPost, "/api/v1/market/offers/999/purchase", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Offer not found", errorBody(t, payload)["message"])
}
