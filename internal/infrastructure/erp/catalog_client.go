package erp

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	posapp "github.com/erp/pos/internal/application/pos"
	"github.com/erp/pos/internal/domain/catalog"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// CatalogClient reads products from the inventory service. It implements
// the application's CatalogProvider port.
type CatalogClient struct {
	client
}

// NewCatalogClient creates a catalog client
func NewCatalogClient(cfg Config, logger *zap.Logger) *CatalogClient {
	return &CatalogClient{client: newClient(cfg, logger)}
}

// productPayload mirrors the inventory service's product JSON
type productPayload struct {
	ID              int64           `json:"id"`
	SKU             string          `json:"sku"`
	Name            string          `json:"name"`
	Description     string          `json:"description"`
	Category        string          `json:"category"`
	MeasurementUnit string          `json:"measurement_unit"`
	Price           decimal.Decimal `json:"price"`
	Stock           decimal.Decimal `json:"stock"`
	IsActive        bool            `json:"is_active"`
}

func (p productPayload) toDomain() catalog.Product {
	return catalog.Product{
		ID:              p.ID,
		SKU:             p.SKU,
		Name:            p.Name,
		Description:     p.Description,
		Category:        p.Category,
		MeasurementUnit: catalog.MeasurementUnit(p.MeasurementUnit),
		Price:           p.Price,
		Stock:           p.Stock,
		IsActive:        p.IsActive,
	}
}

// Search queries the product catalog
func (c *CatalogClient) Search(ctx context.Context, query posapp.ProductQuery) (*posapp.ProductPage, error) {
	params := url.Values{}
	if query.Search != "" {
		params.Set("search", query.Search)
	}
	if query.Category != "" {
		params.Set("category", query.Category)
	}
	if query.Page > 0 {
		params.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}

	var payload struct {
		Data []productPayload `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
			Page  int   `json:"page"`
			Limit int   `json:"limit"`
		} `json:"meta"`
	}
	path := "/api/inventory/products"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}

	page := &posapp.ProductPage{
		Products: make([]catalog.Product, 0, len(payload.Data)),
		Total:    payload.Meta.Total,
		Page:     payload.Meta.Page,
		Limit:    payload.Meta.Limit,
	}
	for _, p := range payload.Data {
		page.Products = append(page.Products, p.toDomain())
	}
	return page, nil
}

// GetProduct fetches a single product by id
func (c *CatalogClient) GetProduct(ctx context.Context, id int64) (*catalog.Product, error) {
	var payload struct {
		Data productPayload `json:"data"`
	}
	if err := c.getJSON(ctx, fmt.Sprintf("/api/inventory/products/%d", id), &payload); err != nil {
		return nil, err
	}
	product := payload.Data.toDomain()
	return &product, nil
}
