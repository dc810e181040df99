package ecommerce

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/stockpulse/invsync/internal/domain/integration"
	"github.com/stockpulse/invsync/internal/infrastructure/config"
)

const (
	etsyDefaultBaseURL = "https://openapi.etsy.com"
	etsyPageSize       = 100
)

// EtsyClient reads active listings through the Etsy Open API v3
type EtsyClient struct {
	api     *apiClient
	apiKey  string
	baseURL string
}

// NewEtsyClient creates a client; the shop id is taken from the integration credentials
func NewEtsyClient(cfg config.PlatformConfig) *EtsyClient {
	base := trimBase(cfg.EtsyBaseURL)
	if base == "" {
		base = etsyDefaultBaseURL
	}
	return &EtsyClient{
		api:     newAPIClient("etsy", cfg.Timeout, cfg.RequestsPerSecond),
		apiKey:  cfg.EtsyAPIKey,
		baseURL: base,
	}
}

// Platform returns etsy
func (c *EtsyClient) Platform() integration.Platform {
	return integration.PlatformEtsy
}

// FetchProducts pages through the shop's active listings by offset
func (c *EtsyClient) FetchProducts(ctx context.Context, store *integration.StoreIntegration) ([]integration.RemoteProductSnapshot, error) {
	shopID := store.Credentials.ShopDomain
	if shopID == "" {
		return nil, fmt.Errorf("etsy: %w: shop id is not set", integration.ErrPlatformRequest)
	}
	headers := map[string]string{
		"x-api-key":     c.apiKey,
		"Authorization": "Bearer " + store.Credentials.AccessToken,
	}

	var out []integration.RemoteProductSnapshot
	for offset := 0; ; {
		q := url.Values{}
		q.Set("limit", strconv.Itoa(etsyPageSize))
		q.Set("offset", strconv.Itoa(offset))
		q.Set("includes", "Images")
		endpoint := fmt.Sprintf("%s/v3/application/shops/%s/listings/active?%s", c.baseURL, url.PathEscape(shopID), q.Encode())

		var page etsyListingsPage
		if _, err := c.api.getJSON(ctx, endpoint, headers, &page); err != nil {
			return nil, err
		}
		for i := range page.Results {
			out = append(out, page.Results[i].snapshot())
		}

		offset += len(page.Results)
		if len(page.Results) == 0 || offset >= page.Count {
			return out, nil
		}
	}
}

type etsyListingsPage struct {
	Count   int           `json:"count"`
	Results []etsyListing `json:"results"`
}

type etsyListing struct {
	ListingID   int64    `json:"listing_id"`
	Title       string   `json:"title"`
	Description string   `json:"description"`
	State       string   `json:"state"`
	Quantity    int      `json:"quantity"`
	URL         string   `json:"url"`
	SKUs        []string `json:"skus"`
	Price       struct {
		Amount       int64  `json:"amount"`
		Divisor      int64  `json:"divisor"`
		CurrencyCode string `json:"currency_code"`
	} `json:"price"`
	Images []struct {
		URLFull string `json:"url_fullxfull"`
	} `json:"images"`
}

func (l *etsyListing) snapshot() integration.RemoteProductSnapshot {
	var sku string
	if len(l.SKUs) > 0 {
		sku = l.SKUs[0]
	}
	price := decimal.NewFromInt(l.Price.Amount)
	if l.Price.Divisor > 0 {
		price = price.Div(decimal.NewFromInt(l.Price.Divisor))
	}
	images := make([]string, 0, len(l.Images))
	for _, img := range l.Images {
		images = append(images, img.URLFull)
	}
	return integration.RemoteProductSnapshot{
		SKU:               sku,
		Title:             l.Title,
		PlatformProductID: strconv.FormatInt(l.ListingID, 10),
		Quantity:          l.Quantity,
		Price:             price,
		Description:       l.Description,
		Images:            images,
		AdditionalData: map[string]any{
			"currency": l.Price.CurrencyCode,
			"state":    l.State,
			"url":      l.URL,
			"skus":     l.SKUs,
		},
	}
}

var _ integration.StoreClient = (*EtsyClient)(nil)
