package ecommerce

import (
	"context"
	"fmt"
	"net/url"

	"github.com/shopspring/decimal"

	"github.com/stockpulse/invsync/internal/domain/integration"
	"github.com/stockpulse/invsync/internal/infrastructure/config"
)

const amazonDefaultBaseURL = "https://sellingpartnerapi-na.amazon.com"

// AmazonClient reads FBA inventory summaries through the Selling Partner API.
// The summaries carry no price, so snapshots report zero.
type AmazonClient struct {
	api     *apiClient
	baseURL string
}

// NewAmazonClient creates a client; the marketplace id is taken from the integration credentials
func NewAmazonClient(cfg config.PlatformConfig) *AmazonClient {
	base := trimBase(cfg.AmazonBaseURL)
	if base == "" {
		base = amazonDefaultBaseURL
	}
	return &AmazonClient{
		api:     newAPIClient("amazon", cfg.Timeout, cfg.RequestsPerSecond),
		baseURL: base,
	}
}

// Platform returns amazon
func (c *AmazonClient) Platform() integration.Platform {
	return integration.PlatformAmazon
}

// FetchProducts pages through inventory summaries with nextToken
func (c *AmazonClient) FetchProducts(ctx context.Context, store *integration.StoreIntegration) ([]integration.RemoteProductSnapshot, error) {
	marketplace := store.Credentials.ShopDomain
	if marketplace == "" {
		return nil, fmt.Errorf("amazon: %w: marketplace id is not set", integration.ErrPlatformRequest)
	}
	headers := map[string]string{"x-amz-access-token": store.Credentials.AccessToken}

	var out []integration.RemoteProductSnapshot
	token := ""
	for {
		q := url.Values{}
		q.Set("details", "true")
		q.Set("granularityType", "Marketplace")
		q.Set("granularityId", marketplace)
		q.Set("marketplaceIds", marketplace)
		if token != "" {
			q.Set("nextToken", token)
		}

		var page amazonSummariesPage
		if _, err := c.api.getJSON(ctx, c.baseURL+"/fba/inventory/v1/summaries?"+q.Encode(), headers, &page); err != nil {
			return nil, err
		}
		if len(page.Errors) > 0 {
			return nil, fmt.Errorf("amazon: %w: %s: %s", integration.ErrPlatformRequest, page.Errors[0].Code, page.Errors[0].Message)
		}
		for i := range page.Payload.InventorySummaries {
			out = append(out, page.Payload.InventorySummaries[i].snapshot())
		}

		token = page.Pagination.NextToken
		if token == "" {
			return out, nil
		}
	}
}

type amazonSummariesPage struct {
	Payload struct {
		InventorySummaries []amazonInventorySummary `json:"inventorySummaries"`
	} `json:"payload"`
	Pagination struct {
		NextToken string `json:"nextToken"`
	} `json:"pagination"`
	Errors []struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"errors"`
}

type amazonInventorySummary struct {
	ASIN             string `json:"asin"`
	FnSKU            string `json:"fnSku"`
	SellerSKU        string `json:"sellerSku"`
	ProductName      string `json:"productName"`
	Condition        string `json:"condition"`
	TotalQuantity    int    `json:"totalQuantity"`
	InventoryDetails *struct {
		FulfillableQuantity int `json:"fulfillableQuantity"`
	} `json:"inventoryDetails"`
}

func (s *amazonInventorySummary) snapshot() integration.RemoteProductSnapshot {
	qty := s.TotalQuantity
	if s.InventoryDetails != nil {
		qty = s.InventoryDetails.FulfillableQuantity
	}
	return integration.RemoteProductSnapshot{
		SKU:               s.SellerSKU,
		Title:             s.ProductName,
		PlatformProductID: s.ASIN,
		Quantity:          qty,
		Price:             decimal.Zero,
		AdditionalData: map[string]any{
			"fn_sku":         s.FnSKU,
			"condition":      s.Condition,
			"total_quantity": s.TotalQuantity,
		},
	}
}

var _ integration.StoreClient = (*AmazonClient)(nil)
