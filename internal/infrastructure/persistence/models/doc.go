// Package models contains the GORM persistence models.
// Each model maps one table and converts to and from its domain entity with
// ToDomain and FromDomain; domain packages never import gorm.
package models
