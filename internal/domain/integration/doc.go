// Package integration contains the store Integration bounded context.
// It models the connection between a user and an external e-commerce store
// and the audit trail of every sync run against that store.
//
// Key concepts:
//   - StoreIntegration: aggregate holding platform, credentials and sync status
//   - StoreClient: port for fetching the remote product catalogue (Shopify, Etsy, Amazon)
//   - RemoteProductSnapshot: value object describing one remote product
//   - InventorySyncLog: append-only audit record of a single sync run
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (implementations) are in the infrastructure layer
package integration
