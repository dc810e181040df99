package telemetry

import (
	"github.com/uptrace/opentelemetry-go-extra/otelgorm"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/stockpulse/invsync/internal/infrastructure/config"
)

// InstrumentDB registers the otelgorm plugin so repository queries become child spans.
// Query variables are never recorded.
func InstrumentDB(db *gorm.DB, cfg config.TelemetryConfig, logger *zap.Logger) error {
	if !cfg.Enabled {
		return nil
	}
	if err := db.Use(otelgorm.NewPlugin(
		otelgorm.WithDBName("postgresql"),
		otelgorm.WithoutQueryVariables(),
	)); err != nil {
		return err
	}
	logger.Info("Database tracing enabled")
	return nil
}
