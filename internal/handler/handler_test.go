package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"storefront/internal/domain/model"
	"storefront/internal/domain/pricing"
	"storefront/internal/repository"
	"storefront/internal/usecase"

	"github.com/golang-jwt/jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

const testSecret = "handler-secret"

// ---- mocks（使うメソッドだけ実装） ----

type userRepoMock struct {
	mock.Mock
	repository.UserRepository
}

func (m *userRepoMock) FindByID(ctx context.Context, id int64) (*model.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*model.User)
	return u, args.Error(1)
}

func (m *userRepoMock) Update(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

type productRepoMock struct {
	mock.Mock
	repository.ProductRepository
}

func (m *productRepoMock) FindByID(ctx context.Context, id int64) (model.Product, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(model.Product), args.Error(1)
}

type cartRepoMock struct {
	mock.Mock
	repository.CartRepository
}

func (m *cartRepoMock) FindByUserIDForUpdate(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Cart), args.Error(1)
}

func (m *cartRepoMock) GetOrCreateByUserID(ctx context.Context, userID int64) (model.Cart, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(model.Cart), args.Error(1)
}

type cartItemRepoMock struct {
	mock.Mock
	repository.CartItemRepository
}

func (m *cartItemRepoMock) FindByIDAndCartID(ctx context.Context, itemID int64, cartID int64) (model.CartItem, error) {
	args := m.Called(ctx, itemID, cartID)
	return args.Get(0).(model.CartItem), args.Error(1)
}

func (m *cartItemRepoMock) UpdateQuantity(ctx context.Context, itemID int64, qty int64) error {
	return m.Called(ctx, itemID, qty).Error(0)
}

func (m *cartItemRepoMock) DeleteByID(ctx context.Context, itemID int64) error {
	return m.Called(ctx, itemID).Error(0)
}

func (m *cartItemRepoMock) ListByCartID(ctx context.Context, cartID int64) ([]model.CartItem, error) {
	args := m.Called(ctx, cartID)
	return args.Get(0).([]model.CartItem), args.Error(1)
}

type refreshTokenRepoMock struct {
	mock.Mock
	repository.RefreshTokenRepository
}

func (m *refreshTokenRepoMock) Create(ctx context.Context, token *model.RefreshToken) error {
	return m.Called(ctx, token).Error(0)
}

type validatorMock struct {
	mock.Mock
	usecase.AuthValidator
}

func (m *validatorMock) ValidateLogin(ctx context.Context, email string, password string) error {
	return m.Called(ctx, email, password).Error(0)
}

func (m *validatorMock) ValidateRefresh(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

type stubRepos struct {
	repository.TxRepos
	carts     repository.CartRepository
	cartItems repository.CartItemRepository
}

func (r stubRepos) Carts() repository.CartRepository         { return r.carts }
func (r stubRepos) CartItems() repository.CartItemRepository { return r.cartItems }

type stubTx struct{ repos repository.TxRepos }

func (t stubTx) WithinTx(ctx context.Context, fn func(r repository.TxRepos) error) error {
	return fn(t.repos)
}

// ---- helpers ----

func bearer(t *testing.T, userID int64, role string) string {
	t.Helper()
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"tv":   0,
		"exp":  9999999999,
	}).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return "Bearer " + s
}

func activeUsers(ids ...int64) *userRepoMock {
	m := new(userRepoMock)
	for _, id := range ids {
		m.On("FindByID", mock.Anything, id).Return(&model.User{ID: id, IsActive: true}, nil)
	}
	return m
}

func send(e *echo.Echo, method, path, authz, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if authz != "" {
		req.Header.Set(echo.HeaderAuthorization, authz)
	}
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func errorOf(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var b ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &b))
	return b.Error
}

// ---- tests ----

func TestWriteError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantMsg    string
	}{
		{"not found", usecase.NewHTTPError(http.StatusNotFound, "order not found"), http.StatusNotFound, "order not found"},
		{"internal keeps message", &usecase.HTTPError{Status: 500, Message: "db error", Kind: usecase.ErrInternal, Cause: errors.New("pq: secret detail")}, http.StatusInternalServerError, "db error"},
		{"plain error", errors.New("boom"), http.StatusInternalServerError, "internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := echo.New()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
			rec := c.Response().Writer.(*httptest.ResponseRecorder)

			require.NoError(t, writeError(c, tt.err))
			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.Equal(t, tt.wantMsg, errorOf(t, rec))
			assert.NotContains(t, rec.Body.String(), "secret detail")
		})
	}
}

func TestCatalogHandler(t *testing.T) {
	products := new(productRepoMock)
	products.On("FindByID", mock.Anything, int64(1)).Return(model.Product{
		ID: 1, Name: "Phone X", Price: decimal.RequireFromString("999"),
	}, nil)
	products.On("FindByID", mock.Anything, int64(2)).Return(model.Product{}, repository.ErrNotFound)

	e := echo.New()
	NewCatalogHandler(usecase.NewCatalogUsecase(products), usecase.NewProfileUsecase(nil, nil)).RegisterRoutes(e)

	rec := send(e, http.MethodGet, "/products/1", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var p usecase.ProductDTO
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &p))
	assert.Equal(t, "999.00", p.FinalPrice)

	rec = send(e, http.MethodGet, "/products/2", "", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = send(e, http.MethodGet, "/products/abc", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(e, http.MethodGet, "/products?page=x", "", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(e, http.MethodGet, "/languages", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"uz"`)
}

func TestCartHandler_RequiresAuth(t *testing.T) {
	e := echo.New()
	NewCartHandler(usecase.NewCartUsecase(stubTx{}, new(productRepoMock), nil)).RegisterRoutes(e, testSecret, new(userRepoMock))

	rec := send(e, http.MethodGet, "/cart", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestCartHandler_AddUnknownProduct(t *testing.T) {
	products := new(productRepoMock)
	products.On("FindByID", mock.Anything, int64(42)).Return(model.Product{}, repository.ErrNotFound)

	e := echo.New()
	NewCartHandler(usecase.NewCartUsecase(stubTx{}, products, nil)).RegisterRoutes(e, testSecret, activeUsers(7))

	rec := send(e, http.MethodPost, "/cart/add_item", bearer(t, 7, "USER"), `{"product_id":42,"quantity":1}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "product not found", errorOf(t, rec))

	rec = send(e, http.MethodPost, "/cart/add_item", bearer(t, 7, "USER"), `{"product_id":42,"quantity":0}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCartHandler_UpdateItemWithoutQuantityKeepsLine(t *testing.T) {
	carts := new(cartRepoMock)
	carts.On("GetOrCreateByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 1}, nil)

	line := model.CartItem{
		ID: 5, CartID: 1, ProductID: 42, Quantity: 1,
		Product: model.Product{ID: 42, Name: "Tea", Price: decimal.RequireFromString("10.00")},
	}
	items := new(cartItemRepoMock)
	items.On("FindByIDAndCartID", mock.Anything, int64(5), int64(1)).Return(line, nil)
	items.On("UpdateQuantity", mock.Anything, int64(5), int64(1)).Return(nil)
	items.On("ListByCartID", mock.Anything, int64(1)).Return([]model.CartItem{line}, nil)

	uc := usecase.NewCartUsecase(stubTx{repos: stubRepos{carts: carts, cartItems: items}}, new(productRepoMock), nil)
	e := echo.New()
	NewCartHandler(uc).RegisterRoutes(e, testSecret, activeUsers(7))

	rec := send(e, http.MethodPost, "/cart/update_item", bearer(t, 7, "USER"), `{"item_id":5}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body usecase.CartResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	require.Len(t, body.Items, 1)
	assert.Equal(t, int64(1), body.Items[0].Quantity)
	assert.Equal(t, "10.00", body.TotalPrice)

	items.AssertCalled(t, "UpdateQuantity", mock.Anything, int64(5), int64(1))
	items.AssertNotCalled(t, "DeleteByID", mock.Anything, mock.Anything)
}

func TestCartHandler_UpdateItemWithZeroQuantityRemovesLine(t *testing.T) {
	carts := new(cartRepoMock)
	carts.On("GetOrCreateByUserID", mock.Anything, int64(7)).Return(model.Cart{ID: 1}, nil)

	items := new(cartItemRepoMock)
	items.On("FindByIDAndCartID", mock.Anything, int64(5), int64(1)).Return(model.CartItem{ID: 5, CartID: 1}, nil)
	items.On("DeleteByID", mock.Anything, int64(5)).Return(nil)
	items.On("ListByCartID", mock.Anything, int64(1)).Return([]model.CartItem{}, nil)

	uc := usecase.NewCartUsecase(stubTx{repos: stubRepos{carts: carts, cartItems: items}}, new(productRepoMock), nil)
	e := echo.New()
	NewCartHandler(uc).RegisterRoutes(e, testSecret, activeUsers(7))

	rec := send(e, http.MethodPost, "/cart/update_item", bearer(t, 7, "USER"), `{"item_id":5,"quantity":0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	items.AssertCalled(t, "DeleteByID", mock.Anything, int64(5))
	items.AssertNotCalled(t, "UpdateQuantity", mock.Anything, mock.Anything, mock.Anything)
}

func TestOrderHandler_CreateWithEmptyCart(t *testing.T) {
	carts := new(cartRepoMock)
	carts.On("FindByUserIDForUpdate", mock.Anything, int64(7)).Return(model.Cart{}, repository.ErrNotFound)

	calc := pricing.NewCalculator(decimal.RequireFromString("0.05"), decimal.Zero)
	uc := usecase.NewOrderUsecase(stubTx{repos: stubRepos{carts: carts}}, nil, calc, usecase.OrderDeps{})

	e := echo.New()
	NewOrderHandler(uc).RegisterRoutes(e, testSecret, activeUsers(7))

	rec := send(e, http.MethodPost, "/orders", bearer(t, 7, "USER"), `{"shipping_address_id":1,"billing_address_id":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "cart is empty", errorOf(t, rec))

	rec = send(e, http.MethodPost, "/orders", bearer(t, 7, "USER"), `{"billing_address_id":2}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = send(e, http.MethodPost, "/orders/x/cancel", bearer(t, 7, "USER"), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAdminOrderHandler_RejectsNonAdmin(t *testing.T) {
	e := echo.New()
	NewAdminOrderHandler(usecase.NewAdminOrderUsecase(stubTx{})).RegisterRoutes(e, testSecret, activeUsers(7))

	rec := send(e, http.MethodPatch, "/admin/orders/1/status", bearer(t, 7, "USER"), `{"status":"shipped"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = send(e, http.MethodPatch, "/admin/orders/1/status", bearer(t, 7, "ADMIN"), `{"status":"lost"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid status", errorOf(t, rec))

	rec = send(e, http.MethodGet, "/admin/orders?from=yesterday", bearer(t, 7, "ADMIN"), "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAuthHandler_LoginSetsRefreshCookie(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	users := new(userRepoMock)
	users.On("FindByEmail", mock.Anything, "ali@example.com").Return(&model.User{
		ID: 3, Email: "ali@example.com", PasswordHash: string(hash), Role: model.RoleUser, IsActive: true,
	}, nil)
	users.On("Update", mock.Anything, mock.Anything).Return(nil)
	tokens := new(refreshTokenRepoMock)
	tokens.On("Create", mock.Anything, mock.Anything).Return(nil)
	v := new(validatorMock)
	v.On("ValidateLogin", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	uc := usecase.NewAuthUsecase(testSecret, users, tokens, nil, v, nil)
	e := echo.New()
	NewAuthHandler(uc, true).RegisterRoutes(e, testSecret, users)

	rec := send(e, http.MethodPost, "/auth/login", "", `{"email":"ali@example.com","password":"password123"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	var body usecase.AuthLoginResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.NotEmpty(t, body.Token.AccessToken)
	assert.Equal(t, int64(3), body.User.ID)

	var refresh *http.Cookie
	for _, ck := range rec.Result().Cookies() {
		if ck.Name == refreshCookieName {
			refresh = ck
		}
	}
	require.NotNil(t, refresh)
	assert.NotEmpty(t, refresh.Value)
	assert.True(t, refresh.HttpOnly)
	assert.True(t, refresh.Secure)
}

func TestAuthHandler_RefreshWithoutToken(t *testing.T) {
	v := new(validatorMock)
	v.On("ValidateRefresh", mock.Anything, "").Return(usecase.NewHTTPError(http.StatusUnauthorized, "unauthorized"))

	uc := usecase.NewAuthUsecase(testSecret, nil, nil, nil, v, nil)
	e := echo.New()
	NewAuthHandler(uc, false).RegisterRoutes(e, testSecret, new(userRepoMock))

	rec := send(e, http.MethodPost, "/auth/refresh", "", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
