package integration

import (
	"errors"
	"time"
)

var (
	ErrStoreNotFound        = errors.New("integration: store integration not found")
	ErrStoreInactive        = errors.New("integration: store integration is inactive")
	ErrTokenExpired         = errors.New("integration: store access token expired")
	ErrSyncInProgress       = errors.New("integration: sync already running for store")
	ErrInvalidPlatform      = errors.New("integration: invalid platform")
	ErrPlatformNotSupported = errors.New("integration: no client registered for platform")
	ErrPlatformRequest      = errors.New("integration: platform request failed")
	ErrPlatformAuth         = errors.New("integration: platform authentication failed")
	ErrPlatformRateLimited  = errors.New("integration: platform rate limited")
	ErrInvalidResponse      = errors.New("integration: invalid platform response")
)

// Platform identifies the e-commerce platform behind an integration
type Platform string

const (
	PlatformShopify Platform = "shopify"
	PlatformEtsy    Platform = "etsy"
	PlatformAmazon  Platform = "amazon"
)

// IsValid returns true if the platform is one we can sync
func (p Platform) IsValid() bool {
	switch p {
	case PlatformShopify, PlatformEtsy, PlatformAmazon:
		return true
	default:
		return false
	}
}

// String returns the string representation of Platform
func (p Platform) String() string {
	return string(p)
}

// DisplayName returns a human-readable name for the platform
func (p Platform) DisplayName() string {
	switch p {
	case PlatformShopify:
		return "Shopify"
	case PlatformEtsy:
		return "Etsy"
	case PlatformAmazon:
		return "Amazon"
	default:
		return string(p)
	}
}

// Credentials are the opaque tokens used by a StoreClient.
// They are never serialized to JSON.
type Credentials struct {
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	ShopDomain   string     `json:"-"` // shop domain (Shopify), shop id (Etsy) or marketplace id (Amazon)
	ExpiresAt    *time.Time `json:"-"`
}

// StoreIntegration is a user's connection to one external store
type StoreIntegration struct {
	ID          uint64
	UserID      uint64
	Name        string
	Platform    Platform
	Credentials Credentials `json:"-"`
	IsActive    bool
	LastSyncAt  *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NewStoreIntegration creates an active integration for the given user
func NewStoreIntegration(userID uint64, name string, platform Platform, creds Credentials) (*StoreIntegration, error) {
	if !platform.IsValid() {
		return nil, ErrInvalidPlatform
	}
	now := time.Now()
	return &StoreIntegration{
		UserID:      userID,
		Name:        name,
		Platform:    platform,
		Credentials: creds,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// IsTokenExpired reports whether the access token has a known expiry that has passed.
// A nil expiry means the token does not expire.
func (s *StoreIntegration) IsTokenExpired(now time.Time) bool {
	return s.Credentials.ExpiresAt != nil && now.After(*s.Credentials.ExpiresAt)
}

// CanSync checks the sync preconditions that depend only on the integration itself
func (s *StoreIntegration) CanSync(now time.Time) error {
	if !s.IsActive {
		return ErrStoreInactive
	}
	if s.IsTokenExpired(now) {
		return ErrTokenExpired
	}
	return nil
}

// MarkSynced records a successful sync
func (s *StoreIntegration) MarkSynced(at time.Time) {
	s.LastSyncAt = &at
	s.UpdatedAt = at
}

// Deactivate stops the integration from being synced
func (s *StoreIntegration) Deactivate() {
	s.IsActive = false
	s.UpdatedAt = time.Now()
}

// Activate re-enables syncing
func (s *StoreIntegration) Activate() {
	s.IsActive = true
	s.UpdatedAt = time.Now()
}
