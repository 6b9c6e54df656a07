package transport

import (
	"net/http"
	"testing"

	"storefront/internal/domain"
	"storefront/internal/repository"
	"storefront/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newProductAPI(svc *stubProductService) *testAPI {
	api := newTestAPI()
	NewProductHandler(svc, zap.NewNop()).RegisterRoutes(api.router, api.auth, api.admin)
	return api
}

func TestListProductsPassesQuery(t *testing.T) {
	var got service.ListProductsQuery
	api := newProductAPI(&stubProductService{
		list: func(q service.ListProductsQuery) (*service.ProductPage, error) {
			got = q
			return &service.ProductPage{Products: []*domain.Product{}, Page: 2, PageSize: 10}, nil
		},
	})

	w := api.do(t, http.MethodGet, "/api/products?category=Shirts&q=tee&page=2&pageSize=10&sort=price&order=asc", uuid.Nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ListProductsQuery{
		Category: "Shirts", Query: "tee", Page: 2, PageSize: 10, Sort: "price", Order: "asc",
	}, got)

	var page service.ProductPage
	decodeBody(t, w, &page)
	assert.Equal(t, 2, page.Page)
	assert.NotNil(t, page.Products)

	w = api.do(t, http.MethodGet, "/api/products?page=abc", uuid.Nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Zero(t, got.Page)
}

func TestGetProduct(t *testing.T) {
	known := &domain.Product{ID: uuid.New(), Name: "Cozy Hoodie", Price: 1299}
	api := newProductAPI(&stubProductService{
		get: func(id uuid.UUID) (*domain.Product, error) {
			if id == known.ID {
				return known, nil
			}
			return nil, repository.ErrProductNotFound
		},
	})

	w := api.do(t, http.MethodGet, "/api/products/"+known.ID.String(), uuid.Nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var product domain.Product
	decodeBody(t, w, &product)
	assert.Equal(t, "Cozy Hoodie", product.Name)

	w = api.do(t, http.MethodGet, "/api/products/"+uuid.NewString(), uuid.Nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, repository.ErrProductNotFound.Error(), errorMessage(t, w))

	w = api.do(t, http.MethodGet, "/api/products/not-a-uuid", uuid.Nil, nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid product id", errorMessage(t, w))
}

func TestProductWritesAreAdminOnly(t *testing.T) {
	var createdBy uuid.UUID
	api := newProductAPI(&stubProductService{
		create: func(by uuid.UUID, in service.ProductInput) (*domain.Product, error) {
			createdBy = by
			return &domain.Product{ID: uuid.New(), Name: in.Name, CreatedBy: &by}, nil
		},
		delete: func(id uuid.UUID) error { return nil },
	})
	price := 799.0

	w := api.do(t, http.MethodPost, "/api/products", uuid.Nil, service.ProductInput{Name: "Tee"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	w = api.do(t, http.MethodPost, "/api/products", api.shopperID, service.ProductInput{Name: "Tee"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = api.do(t, http.MethodPost, "/api/products", api.adminID, service.ProductInput{Name: "Tee", Price: &price})
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, api.adminID, createdBy)

	w = api.do(t, http.MethodDelete, "/api/products/"+uuid.NewString(), api.adminID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var response MessageResponse
	decodeBody(t, w, &response)
	assert.Equal(t, "Product removed", response.Message)
}

func TestUpdateProductRejectsNegativeValues(t *testing.T) {
	api := newProductAPI(&stubProductService{
		update: func(id uuid.UUID, in service.ProductInput) (*domain.Product, error) {
			return nil, service.ErrInvalidProduct
		},
	})
	stock := 3

	w := api.do(t, http.MethodPut, "/api/products/"+uuid.NewString(), api.adminID, map[string]interface{}{"price": -1})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = api.do(t, http.MethodPut, "/api/products/"+uuid.NewString(), api.adminID, service.ProductInput{Stock: &stock})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, service.ErrInvalidProduct.Error(), errorMessage(t, w))
}
