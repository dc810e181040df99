package ecommerce

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/stockpulse/invsync/internal/domain/integration"
	"github.com/stockpulse/invsync/internal/infrastructure/config"
)

const shopifyPageSize = 250

// ShopifyClient reads the catalogue through the Shopify Admin REST API.
// Each variant becomes one snapshot because stock and sku live on the variant.
type ShopifyClient struct {
	api        *apiClient
	apiVersion string
	baseURL    string
}

// NewShopifyClient creates a client; cfg.ShopifyBaseURL overrides https://{shop domain}
func NewShopifyClient(cfg config.PlatformConfig) *ShopifyClient {
	version := cfg.ShopifyAPIVersion
	if version == "" {
		version = "2024-07"
	}
	return &ShopifyClient{
		api:        newAPIClient("shopify", cfg.Timeout, cfg.RequestsPerSecond),
		apiVersion: version,
		baseURL:    trimBase(cfg.ShopifyBaseURL),
	}
}

// Platform returns shopify
func (c *ShopifyClient) Platform() integration.Platform {
	return integration.PlatformShopify
}

// FetchProducts pages through products.json following the Link header
func (c *ShopifyClient) FetchProducts(ctx context.Context, store *integration.StoreIntegration) ([]integration.RemoteProductSnapshot, error) {
	base := c.baseURL
	if base == "" {
		if store.Credentials.ShopDomain == "" {
			return nil, fmt.Errorf("shopify: %w: shop domain is not set", integration.ErrPlatformRequest)
		}
		base = "https://" + trimBase(store.Credentials.ShopDomain)
	}
	headers := map[string]string{"X-Shopify-Access-Token": store.Credentials.AccessToken}

	var out []integration.RemoteProductSnapshot
	next := fmt.Sprintf("%s/admin/api/%s/products.json?limit=%d", base, c.apiVersion, shopifyPageSize)
	for next != "" {
		var page shopifyProductsPage
		hdr, err := c.api.getJSON(ctx, next, headers, &page)
		if err != nil {
			return nil, err
		}
		for i := range page.Products {
			out = append(out, page.Products[i].snapshots()...)
		}
		next = nextPageLink(hdr.Get("Link"))
	}
	return out, nil
}

type shopifyProductsPage struct {
	Products []shopifyProduct `json:"products"`
}

type shopifyProduct struct {
	ID          int64            `json:"id"`
	Title       string           `json:"title"`
	BodyHTML    string           `json:"body_html"`
	Vendor      string           `json:"vendor"`
	ProductType string           `json:"product_type"`
	Status      string           `json:"status"`
	Variants    []shopifyVariant `json:"variants"`
	Images      []struct {
		Src string `json:"src"`
	} `json:"images"`
}

type shopifyVariant struct {
	ID                int64  `json:"id"`
	Title             string `json:"title"`
	SKU               string `json:"sku"`
	Price             string `json:"price"`
	InventoryQuantity int    `json:"inventory_quantity"`
	InventoryItemID   int64  `json:"inventory_item_id"`
}

func (p *shopifyProduct) snapshots() []integration.RemoteProductSnapshot {
	images := make([]string, 0, len(p.Images))
	for _, img := range p.Images {
		images = append(images, img.Src)
	}
	variants := make([]map[string]any, 0, len(p.Variants))
	for _, v := range p.Variants {
		variants = append(variants, map[string]any{
			"id":                 v.ID,
			"title":              v.Title,
			"sku":                v.SKU,
			"price":              v.Price,
			"inventory_quantity": v.InventoryQuantity,
		})
	}

	out := make([]integration.RemoteProductSnapshot, 0, len(p.Variants))
	for _, v := range p.Variants {
		title := p.Title
		if len(p.Variants) > 1 && v.Title != "" && v.Title != "Default Title" {
			title = p.Title + " - " + v.Title
		}
		out = append(out, integration.RemoteProductSnapshot{
			SKU:               strings.TrimSpace(v.SKU),
			Title:             title,
			PlatformProductID: strconv.FormatInt(p.ID, 10),
			Quantity:          v.InventoryQuantity,
			Price:             parseDecimal(v.Price),
			Description:       p.BodyHTML,
			Images:            images,
			Variants:          variants,
			AdditionalData: map[string]any{
				"variant_id":        v.ID,
				"inventory_item_id": v.InventoryItemID,
				"vendor":            p.Vendor,
				"product_type":      p.ProductType,
				"status":            p.Status,
			},
		})
	}
	return out
}

// nextPageLink extracts the rel="next" URL from a Link header
func nextPageLink(header string) string {
	for _, part := range strings.Split(header, ",") {
		segs := strings.Split(part, ";")
		if len(segs) < 2 {
			continue
		}
		for _, attr := range segs[1:] {
			if strings.TrimSpace(attr) == `rel="next"` {
				return strings.Trim(strings.TrimSpace(segs[0]), "<>")
			}
		}
	}
	return ""
}

var _ integration.StoreClient = (*ShopifyClient)(nil)
