package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/vnykmshr/pviewgroups/pkg/catalog"
)

// SaveProduct inserts or updates a product by sku and writes its Data as
// values of the product's store. A nil value is stored as NULL.
func (s *Store) SaveProduct(ctx context.Context, p *catalog.Product) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	sku := strings.TrimSpace(p.SKU)
	if sku == "" {
		return fmt.Errorf("product sku is required")
	}
	if p.AttributeSetID <= 0 {
		return fmt.Errorf("attribute set id is required")
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save product: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO products (sku, set_id) VALUES (?, ?)
		 ON CONFLICT(sku) DO UPDATE SET set_id = excluded.set_id
		 RETURNING id`, sku, p.AttributeSetID).Scan(&p.ID)
	if err != nil {
		return fmt.Errorf("save product %s: %w", sku, err)
	}

	for code, value := range p.Data {
		var stored sql.NullString
		if value != nil {
			stored = sql.NullString{String: fmt.Sprint(value), Valid: true}
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO product_values (product_id, store_id, attribute_code, value) VALUES (?, ?, ?, ?)
			 ON CONFLICT(product_id, store_id, attribute_code) DO UPDATE SET value = excluded.value`,
			p.ID, p.StoreID, code, stored); err != nil {
			return fmt.Errorf("save value %s of %s: %w", code, sku, err)
		}
	}
	p.SKU = sku
	return tx.Commit()
}

// ProductBySKU loads a product with values for storeID, falling back to the
// admin store for values not set in storeID.
func (s *Store) ProductBySKU(ctx context.Context, sku string, storeID int) (catalog.Product, error) {
	if err := s.ready(ctx); err != nil {
		return catalog.Product{}, err
	}
	p := catalog.Product{SKU: strings.TrimSpace(sku), StoreID: storeID}
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, set_id FROM products WHERE sku = ?`, p.SKU).Scan(&p.ID, &p.AttributeSetID)
	if err != nil {
		return catalog.Product{}, notFound(err, "get product")
	}
	if err := s.loadValues(ctx, &p); err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

// ProductByID is ProductBySKU keyed by id.
func (s *Store) ProductByID(ctx context.Context, id, storeID int) (catalog.Product, error) {
	if err := s.ready(ctx); err != nil {
		return catalog.Product{}, err
	}
	p := catalog.Product{ID: id, StoreID: storeID}
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT sku, set_id FROM products WHERE id = ?`, id).Scan(&p.SKU, &p.AttributeSetID)
	if err != nil {
		return catalog.Product{}, notFound(err, "get product")
	}
	if err := s.loadValues(ctx, &p); err != nil {
		return catalog.Product{}, err
	}
	return p, nil
}

func (s *Store) loadValues(ctx context.Context, p *catalog.Product) error {
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT attribute_code, value FROM product_values
		  WHERE product_id = ? AND store_id IN (0, ?)
		  ORDER BY store_id`, p.ID, p.StoreID)
	if err != nil {
		return fmt.Errorf("load product values: %w", err)
	}
	defer rows.Close()

	p.Data = make(map[string]any)
	for rows.Next() {
		var code string
		var value sql.NullString
		if err := rows.Scan(&code, &value); err != nil {
			return fmt.Errorf("scan product value: %w", err)
		}
		if value.Valid {
			p.Data[code] = value.String
		} else {
			p.Data[code] = nil
		}
	}
	return rows.Err()
}
