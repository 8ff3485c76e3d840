package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/avolkov/orderflow-backend/pkg/migrate"
)

func TestSchemaMigrationContainsConstraints(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_initial_schema.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no initial schema migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	checks := []string{
		"CREATE UNIQUE INDEX ux_users_email ON users (email)",
		"CREATE UNIQUE INDEX ux_shops_owner ON shops (owner_id)",
		"CREATE UNIQUE INDEX ux_products_name_category ON products (name, category_id)",
		"CREATE UNIQUE INDEX ux_variants_shop_product ON product_variants (shop_id, product_id)",
		"CREATE UNIQUE INDEX ux_orders_user_basket ON orders (user_id) WHERE state = 'basket'",
		"variant_id UUID REFERENCES product_variants (id) ON DELETE SET NULL",
		"contact_id UUID REFERENCES contacts (id) ON DELETE SET NULL",
		"DROP TABLE IF EXISTS outbox_events",
	}

	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestMigrationDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations dir: %v", err)
	}
}
