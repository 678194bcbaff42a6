package app_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/Studentcuchd/sweet-treats-manager/internal/app"
	"github.com/Studentcuchd/sweet-treats-manager/internal/config"
	"github.com/Studentcuchd/sweet-treats-manager/internal/domain/models"
	security "github.com/Studentcuchd/sweet-treats-manager/internal/jwt-new"
	"github.com/Studentcuchd/sweet-treats-manager/internal/lib/logger"
	"github.com/Studentcuchd/sweet-treats-manager/internal/service"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const routerSecret = "router-test-secret"

type stubAuth struct{}

func (stubAuth) Login(ctx context.Context, email, password string) (string, error) {
	return "token", nil
}

type stubCatalog struct {
	lastGetID uuid.UUID
}

func (s *stubCatalog) ListSweets(ctx context.Context, filter models.SweetFilter) ([]models.Sweet, error) {
	return []models.Sweet{}, nil
}

func (s *stubCatalog) RefreshSweets(ctx context.Context, filter models.SweetFilter) ([]models.Sweet, error) {
	return []models.Sweet{}, nil
}

func (s *stubCatalog) GetSweet(ctx context.Context, id uuid.UUID) (*models.Sweet, error) {
	s.lastGetID = id
	return &models.Sweet{ID: id}, nil
}

func (s *stubCatalog) Categories(ctx context.Context) ([]string, error) {
	return []string{"Chocolate"}, nil
}

func (s *stubCatalog) Invalidate(ctx context.Context) {}

type stubInventory struct {
	deleted bool
}

func (s *stubInventory) CreateSweet(ctx context.Context, sweet models.Sweet) (*models.Sweet, error) {
	return &sweet, nil
}

func (s *stubInventory) UpdateSweet(ctx context.Context, id uuid.UUID, patch models.SweetPatch) (*models.Sweet, error) {
	return &models.Sweet{ID: id}, nil
}

func (s *stubInventory) DeleteSweet(ctx context.Context, id uuid.UUID) error {
	s.deleted = true
	return nil
}

func (s *stubInventory) Restock(ctx context.Context, id uuid.UUID, delta int) (*models.Sweet, error) {
	return &models.Sweet{ID: id, Quantity: delta}, nil
}

func (s *stubInventory) Purchase(ctx context.Context, identity models.Identity, sweetID uuid.UUID, quantity int) (*service.Receipt, error) {
	return &service.Receipt{SweetName: "Truffle"}, nil
}

func (s *stubInventory) Stats(ctx context.Context) (*models.InventoryStats, error) {
	return &models.InventoryStats{}, nil
}

type stubProfiles struct{}

func (stubProfiles) GetProfile(ctx context.Context, identity models.Identity) (*models.Profile, error) {
	return &models.Profile{ID: identity.UserID, Email: identity.Email}, nil
}

func (stubProfiles) UpdateDisplayName(ctx context.Context, identity models.Identity, fullName string) (*models.Profile, error) {
	return &models.Profile{ID: identity.UserID, FullName: &fullName}, nil
}

func (stubProfiles) PurchaseHistory(ctx context.Context, identity models.Identity) ([]models.Purchase, error) {
	return []models.Purchase{}, nil
}

func newTestRouter(t *testing.T) (http.Handler, *stubCatalog, *stubInventory) {
	t.Helper()
	catalog := &stubCatalog{}
	inventory := &stubInventory{}
	router := app.NewRouter(logger.NewDiscardLogger(), routerSecret, app.Services{
		Auth:      stubAuth{},
		Catalog:   catalog,
		Inventory: inventory,
		Profiles:  stubProfiles{},
	})
	return router, catalog, inventory
}

func bearer(t *testing.T, isAdmin bool) string {
	t.Helper()
	token, err := security.NewToken(context.Background(), &models.User{
		ID:      uuid.New(),
		Email:   "user@example.com",
		IsAdmin: isAdmin,
	}, routerSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func TestRouter_Access(t *testing.T) {
	router, _, _ := newTestRouter(t)
	sweetID := uuid.NewString()

	tests := []struct {
		name     string
		method   string
		path     string
		body     string
		auth     string
		wantCode int
	}{
		{"anonymous catalog", http.MethodGet, "/api/sweets", "", "", http.StatusOK},
		{"anonymous categories", http.MethodGet, "/api/sweets/categories", "", "", http.StatusOK},
		{"anonymous sweet", http.MethodGet, "/api/sweets/" + sweetID, "", "", http.StatusOK},
		{"anonymous purchase", http.MethodPost, "/api/sweets/" + sweetID + "/purchase", `{"quantity":1}`, "", http.StatusUnauthorized},
		{"customer purchase", http.MethodPost, "/api/sweets/" + sweetID + "/purchase", `{"quantity":1}`, bearer(t, false), http.StatusCreated},
		{"customer profile", http.MethodGet, "/api/profile", "", bearer(t, false), http.StatusOK},
		{"anonymous admin", http.MethodGet, "/api/admin/stats", "", "", http.StatusUnauthorized},
		{"customer admin", http.MethodGet, "/api/admin/stats", "", bearer(t, false), http.StatusForbidden},
		{"customer delete", http.MethodDelete, "/api/admin/sweets/" + sweetID, "", bearer(t, false), http.StatusForbidden},
		{"admin stats", http.MethodGet, "/api/admin/stats", "", bearer(t, true), http.StatusOK},
		{"admin restock", http.MethodPost, "/api/admin/sweets/" + sweetID + "/restock", `{"quantity":5}`, bearer(t, true), http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, bytes.NewBufferString(tt.body))
			if tt.auth != "" {
				req.Header.Set("Authorization", tt.auth)
			}
			rr := httptest.NewRecorder()
			router.ServeHTTP(rr, req)
			assert.Equal(t, tt.wantCode, rr.Code, rr.Body.String())
		})
	}
}

func TestRouter_CategoriesIsNotASweetID(t *testing.T) {
	router, catalog, _ := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/sweets/categories", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"categories":["Chocolate"]}`, rr.Body.String())
	assert.Equal(t, uuid.Nil, catalog.lastGetID)
}

func TestRouter_NonAdminCannotDelete(t *testing.T) {
	router, _, inventory := newTestRouter(t)

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/sweets/"+uuid.NewString(), nil)
	req.Header.Set("Authorization", bearer(t, false))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusForbidden, rr.Code)
	assert.False(t, inventory.deleted)
}

func TestDSN(t *testing.T) {
	dsn := app.DSN(config.DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "postgres",
		Password: "secret",
		Name:     "sweets",
	})
	assert.Equal(t, "postgres://postgres:secret@db:5432/sweets?sslmode=disable", dsn)
}
