package catalog

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/angelmondragon/storefront-backend/api/middleware"
	"github.com/angelmondragon/storefront-backend/internal/categories"
	product "github.com/angelmondragon/storefront-backend/internal/products"
	pkgauth "github.com/angelmondragon/storefront-backend/pkg/auth"
	"github.com/angelmondragon/storefront-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
)

var admin = pkgauth.Identity{UserID: 1, Roles: []enums.Role{enums.RoleAdmin}}

type stubProducts struct {
	created product.CreateProductInput
	updated product.UpdateProductInput
	deleted uint
	err     error
}

func (s *stubProducts) CreateProduct(ctx context.Context, actor pkgauth.Identity, input product.CreateProductInput) (*product.ProductDTO, error) {
	s.created = input
	if s.err != nil {
		return nil, s.err
	}
	return &product.ProductDTO{ID: 10, Name: input.Name, Price: product.FormatMoney(input.Price), Categories: []product.CategoryRef{}}, nil
}

func (s *stubProducts) ListProducts(ctx context.Context) ([]product.ProductDTO, error) {
	return []product.ProductDTO{{ID: 1, Name: "A"}, {ID: 2, Name: "B"}}, s.err
}

func (s *stubProducts) GetProduct(ctx context.Context, id uint) (*product.ProductDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &product.ProductDTO{ID: id, Name: "A"}, nil
}

func (s *stubProducts) UpdateProduct(ctx context.Context, actor pkgauth.Identity, id uint, input product.UpdateProductInput) (*product.ProductDTO, error) {
	s.updated = input
	if s.err != nil {
		return nil, s.err
	}
	return &product.ProductDTO{ID: id, Name: *input.Name}, nil
}

func (s *stubProducts) DeleteProduct(ctx context.Context, actor pkgauth.Identity, id uint) error {
	s.deleted = id
	return s.err
}

func (s *stubProducts) AttachCategory(ctx context.Context, actor pkgauth.Identity, productID, categoryID uint) error {
	return s.err
}

func (s *stubProducts) DetachCategory(ctx context.Context, actor pkgauth.Identity, productID, categoryID uint) error {
	return s.err
}

type stubCategories struct {
	err error
}

func (s stubCategories) CreateCategory(ctx context.Context, actor pkgauth.Identity, input categories.CreateCategoryInput) (*categories.CategoryDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &categories.CategoryDTO{ID: 4, Name: input.Name, Products: []uint{}}, nil
}

func (s stubCategories) ListCategories(ctx context.Context) ([]categories.CategoryDTO, error) {
	return []categories.CategoryDTO{}, s.err
}

func (s stubCategories) GetCategory(ctx context.Context, id uint) (*categories.CategoryDTO, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &categories.CategoryDTO{ID: id, Name: "Books"}, nil
}

func (s stubCategories) UpdateCategory(ctx context.Context, actor pkgauth.Identity, id uint, input categories.UpdateCategoryInput) (*categories.CategoryDTO, error) {
	return &categories.CategoryDTO{ID: id}, s.err
}

func (s stubCategories) DeleteCategory(ctx context.Context, actor pkgauth.Identity, id uint) error {
	return s.err
}

func asAdmin(req *http.Request) *http.Request {
	return req.WithContext(middleware.WithIdentity(req.Context(), admin))
}

func withID(req *http.Request, id string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func TestProductCreate(t *testing.T) {
	svc := &stubProducts{}
	body := `{"name":"  Lamp ","price":"12.5","stock":3,"categoryIds":[1,2]}`
	rec := httptest.NewRecorder()
	ProductCreate(svc, nil).ServeHTTP(rec, asAdmin(httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(body))))

	require.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Lamp", svc.created.Name)
	assert.Equal(t, []uint{1, 2}, svc.created.CategoryIDs)

	var dto product.ProductDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&dto))
	assert.Equal(t, "12.50", dto.Price)
}

func TestProductCreateValidation(t *testing.T) {
	rec := httptest.NewRecorder()
	ProductCreate(&stubProducts{}, nil).ServeHTTP(rec, asAdmin(httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{"price":"1"}`))))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestProductForbiddenPassesThrough(t *testing.T) {
	svc := &stubProducts{err: pkgerrors.New(pkgerrors.CodeForbidden, "Access denied")}
	rec := httptest.NewRecorder()
	ProductDelete(svc, nil).ServeHTTP(rec, withID(asAdmin(httptest.NewRequest(http.MethodDelete, "/api/products/3", nil)), "3"))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestProductDelete(t *testing.T) {
	svc := &stubProducts{}
	rec := httptest.NewRecorder()
	ProductDelete(svc, nil).ServeHTTP(rec, withID(asAdmin(httptest.NewRequest(http.MethodDelete, "/api/products/3", nil)), "3"))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint(3), svc.deleted)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, msgProductDeleted, body["message"])
}

func TestProductUpdate(t *testing.T) {
	svc := &stubProducts{}
	req := withID(asAdmin(httptest.NewRequest(http.MethodPut, "/api/products/3", strings.NewReader(`{"name":"New"}`))), "3")
	rec := httptest.NewRecorder()
	ProductUpdate(svc, nil).ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "New", *svc.updated.Name)
	assert.Nil(t, svc.updated.Price)
}

func TestProductDetail(t *testing.T) {
	rec := httptest.NewRecorder()
	ProductDetail(&stubProducts{}, nil).ServeHTTP(rec, withID(httptest.NewRequest(http.MethodGet, "/api/products/7", nil), "7"))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	ProductDetail(&stubProducts{}, nil).ServeHTTP(rec, withID(httptest.NewRequest(http.MethodGet, "/api/products/abc", nil), "abc"))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	missing := &stubProducts{err: pkgerrors.New(pkgerrors.CodeNotFound, "Product not found")}
	ProductDetail(missing, nil).ServeHTTP(rec, withID(httptest.NewRequest(http.MethodGet, "/api/products/7", nil), "7"))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestProductList(t *testing.T) {
	rec := httptest.NewRecorder()
	ProductList(&stubProducts{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/products", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var list []product.ProductDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	assert.Len(t, list, 2)
}

func TestCategoryHandlers(t *testing.T) {
	rec := httptest.NewRecorder()
	CategoryCreate(stubCategories{}, nil).ServeHTTP(rec, asAdmin(httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{"name":"Books"}`))))
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = httptest.NewRecorder()
	CategoryDelete(stubCategories{}, nil).ServeHTTP(rec, withID(asAdmin(httptest.NewRequest(http.MethodDelete, "/api/categories/4", nil)), "4"))
	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	assert.Equal(t, msgCategoryDeleted, body["message"])

	rec = httptest.NewRecorder()
	missing := stubCategories{err: pkgerrors.New(pkgerrors.CodeNotFound, "Category not found")}
	CategoryDetail(missing, nil).ServeHTTP(rec, withID(httptest.NewRequest(http.MethodGet, "/api/categories/4", nil), "4"))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = httptest.NewRecorder()
	CategoryUpdate(stubCategories{}, nil).ServeHTTP(rec, withID(asAdmin(httptest.NewRequest(http.MethodPut, "/api/categories/4", strings.NewReader(`{"name":"Comics"}`))), "4"))
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	CategoryList(stubCategories{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/categories", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestMutationsRequireIdentity(t *testing.T) {
	rec := httptest.NewRecorder()
	ProductCreate(&stubProducts{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/products", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = httptest.NewRecorder()
	CategoryCreate(stubCategories{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/categories", strings.NewReader(`{}`)))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
