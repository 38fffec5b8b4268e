package erp

import (
	"context"
	"net/url"
	"strconv"

	posapp "github.com/erp/pos/internal/application/pos"
	"github.com/erp/pos/internal/domain/pos"
	"go.uber.org/zap"
)

// CRMClient reads and creates customers in the CRM service. It
// implements the application's CustomerProvider port.
type CRMClient struct {
	client
}

// NewCRMClient creates a CRM client
func NewCRMClient(cfg Config, logger *zap.Logger) *CRMClient {
	return &CRMClient{client: newClient(cfg, logger)}
}

type customerPayload struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	TaxID string `json:"tax_id"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

func (p customerPayload) toDomain() pos.Customer {
	return pos.Customer{
		ID:    p.ID,
		Name:  p.Name,
		TaxID: p.TaxID,
		Email: p.Email,
		Phone: p.Phone,
	}
}

// Search queries CRM customers by free text
func (c *CRMClient) Search(ctx context.Context, query posapp.CustomerQuery) (*posapp.CustomerPage, error) {
	params := url.Values{}
	if query.Search != "" {
		params.Set("search", query.Search)
	}
	if query.Page > 0 {
		params.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		params.Set("limit", strconv.Itoa(query.Limit))
	}

	var payload struct {
		Data []customerPayload `json:"data"`
		Meta struct {
			Total int64 `json:"total"`
			Page  int   `json:"page"`
			Limit int   `json:"limit"`
		} `json:"meta"`
	}
	path := "/api/crm/customers"
	if encoded := params.Encode(); encoded != "" {
		path += "?" + encoded
	}
	if err := c.getJSON(ctx, path, &payload); err != nil {
		return nil, err
	}

	page := &posapp.CustomerPage{
		Customers: make([]pos.Customer, 0, len(payload.Data)),
		Total:     payload.Meta.Total,
		Page:      payload.Meta.Page,
		Limit:     payload.Meta.Limit,
	}
	for _, cust := range payload.Data {
		page.Customers = append(page.Customers, cust.toDomain())
	}
	return page, nil
}

// Create registers a new customer
func (c *CRMClient) Create(ctx context.Context, customer pos.Customer) (*pos.Customer, error) {
	body := customerPayload{
		Name:  customer.Name,
		TaxID: customer.TaxID,
		Email: customer.Email,
		Phone: customer.Phone,
	}
	var payload struct {
		Data customerPayload `json:"data"`
	}
	if err := c.postJSON(ctx, "/api/crm/customers", body, &payload); err != nil {
		return nil, err
	}
	created := payload.Data.toDomain()
	return &created, nil
}
