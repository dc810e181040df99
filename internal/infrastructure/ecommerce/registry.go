package ecommerce

import (
	"fmt"
	"sync"

	"github.com/stockpulse/invsync/internal/domain/integration"
	"github.com/stockpulse/invsync/internal/infrastructure/config"
)

// Registry maps platforms to their StoreClient
type Registry struct {
	mu      sync.RWMutex
	clients map[integration.Platform]integration.StoreClient
}

// NewRegistry registers the given clients
func NewRegistry(clients ...integration.StoreClient) *Registry {
	r := &Registry{clients: make(map[integration.Platform]integration.StoreClient, len(clients))}
	for _, c := range clients {
		r.Register(c)
	}
	return r
}

// NewDefaultRegistry registers the Shopify, Etsy and Amazon clients
func NewDefaultRegistry(cfg config.PlatformConfig) *Registry {
	return NewRegistry(NewShopifyClient(cfg), NewEtsyClient(cfg), NewAmazonClient(cfg))
}

// Register adds or replaces the client for its platform
func (r *Registry) Register(c integration.StoreClient) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[c.Platform()] = c
}

// ClientFor returns the client for platform
func (r *Registry) ClientFor(platform integration.Platform) (integration.StoreClient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.clients[platform]
	if !ok {
		return nil, fmt.Errorf("%w: %s", integration.ErrPlatformNotSupported, platform)
	}
	return c, nil
}

var _ integration.StoreClientRegistry = (*Registry)(nil)
