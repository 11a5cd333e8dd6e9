// internal/infrastructure/database/postgres/migration.go
package postgres

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/your-org/freshmilk-storefront/internal/domain/cart"
	"github.com/your-org/freshmilk-storefront/internal/domain/checkout"
	"gorm.io/gorm"
)

// Migration handles database migrations
type Migration struct {
	db     *gorm.DB
	logger *logrus.Logger
}

// NewMigration creates a new migration instance
func NewMigration(db *gorm.DB, logger *logrus.Logger) *Migration {
	return &Migration{
		db:     db,
		logger: logger,
	}
}

func (m *Migration) models() []interface{} {
	return []interface{}{
		// Cart domain
		&cart.CartItem{},

		// Checkout domain
		&checkout.Handoff{},
		&checkout.HandoffLine{},
	}
}

// RunAutoMigrations runs GORM auto-migrations for all models
func (m *Migration) RunAutoMigrations() error {
	m.logger.Info("Running database auto-migrations")

	for _, model := range m.models() {
		m.logger.Debugf("Migrating model: %T", model)
		if err := m.db.AutoMigrate(model); err != nil {
			return fmt.Errorf("failed to migrate model %T: %w", model, err)
		}
	}

	m.logger.Info("Database auto-migrations completed")
	return nil
}

// CreateIndexes creates additional indexes for better performance
func (m *Migration) CreateIndexes() error {
	indexes := []string{
		// Cart indexes
		"CREATE INDEX IF NOT EXISTS idx_cart_items_user_position ON cart_items(user_id, position)",
		"CREATE INDEX IF NOT EXISTS idx_cart_items_updated_at ON cart_items(updated_at DESC)",

		// Handoff indexes
		"CREATE INDEX IF NOT EXISTS idx_order_handoffs_user_created ON order_handoffs(user_id, created_at DESC)",
	}

	for _, stmt := range indexes {
		if err := m.db.Exec(stmt).Error; err != nil {
			return fmt.Errorf("failed to create index: %s: %w", stmt, err)
		}
	}

	m.logger.WithField("count", len(indexes)).Info("Database indexes ensured")
	return nil
}

// DropAllTables drops every migrated table, in reverse order
func (m *Migration) DropAllTables() error {
	models := m.models()
	for i := len(models) - 1; i >= 0; i-- {
		if err := m.db.Migrator().DropTable(models[i]); err != nil {
			return fmt.Errorf("failed to drop table for %T: %w", models[i], err)
		}
	}
	return nil
}
