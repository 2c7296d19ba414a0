package handler_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"app/internal/domain/model"
	"app/internal/handler"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func adminEnv(t *testing.T) *testEnv {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("correct-horse"), bcrypt.MinCost)
	require.NoError(t, err)
	return newTestEnv(string(hash))
}

func loginToken(t *testing.T, env *testEnv) string {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"password":"correct-horse"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var out handler.LoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	require.NotEmpty(t, out.AccessToken)
	return out.AccessToken
}

func TestAdminLoginWrongPassword(t *testing.T) {
	env := adminEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"password":"wrong"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminRoutesRequireToken(t *testing.T) {
	env := adminEnv(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	req = httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer not-a-jwt")
	rec = httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAdminListOrders(t *testing.T) {
	env := adminEnv(t)
	token := loginToken(t, env)

	_, _, err := env.orders.Create(context.Background(), model.Order{
		OrderID:           "HD0001",
		ConfirmationToken: "tok-1",
		Status:            model.OrderStatusNew,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/admin/orders", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var orders []model.Order
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &orders))
	require.Len(t, orders, 1)
	assert.Equal(t, "HD0001", orders[0].OrderID)
}

func TestAdminCloseOrderEndpoint(t *testing.T) {
	env := adminEnv(t)
	token := loginToken(t, env)

	_, _, err := env.orders.Create(context.Background(), model.Order{
		OrderID:           "HD0001",
		ConfirmationToken: "tok-1",
		Status:            model.OrderStatusNew,
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/admin/orders/HD0001/close", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	got, err := env.orders.FindByOrderID(context.Background(), "HD0001")
	require.NoError(t, err)
	assert.Equal(t, model.OrderStatusClosed, got.Status)

	//存在しない注文は404
	req = httptest.NewRequest(http.MethodPost, "/admin/orders/HDMISSING/close", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestAdminSetStockEndpoint(t *testing.T) {
	env := adminEnv(t)
	token := loginToken(t, env)

	body := `{"color":"Olive","size":"M","stock":7,"price":1490}`
	req := httptest.NewRequest(http.MethodPut, "/admin/stock", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusNoContent, rec.Code)
	e, err := env.stock.Find(context.Background(), "Olive", "M")
	require.NoError(t, err)
	assert.Equal(t, int64(7), e.Stock)

	//負の在庫は400
	req = httptest.NewRequest(http.MethodPut, "/admin/stock", strings.NewReader(`{"color":"Olive","size":"M","stock":-1}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)
	rec = httptest.NewRecorder()
	env.e.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
