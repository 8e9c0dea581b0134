package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/vnykmshr/pviewgroups/pkg/catalog"
)

const attributeColumns = `a.id, a.entity_type_id, a.code, a.frontend_input, a.frontend_label,
		        a.is_visible_on_front, COALESCE(l.label, '')`

// SaveAttribute inserts or updates an attribute by code, replacing its
// options. attr.ID is set from the stored row.
func (s *Store) SaveAttribute(ctx context.Context, attr *catalog.Attribute) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	code := strings.TrimSpace(attr.Code)
	if code == "" {
		return fmt.Errorf("attribute code is required")
	}
	if attr.EntityTypeID == 0 {
		attr.EntityTypeID = catalog.ProductEntityTypeID
	}
	if attr.FrontendInput == "" {
		attr.FrontendInput = catalog.InputText
	}

	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save attribute: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	err = tx.QueryRowContext(ctx,
		`INSERT INTO attributes (entity_type_id, code, frontend_input, frontend_label, is_visible_on_front)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(entity_type_id, code) DO UPDATE SET
		   frontend_input = excluded.frontend_input,
		   frontend_label = excluded.frontend_label,
		   is_visible_on_front = excluded.is_visible_on_front
		 RETURNING id`,
		attr.EntityTypeID, code, attr.FrontendInput, attr.FrontendLabel, attr.IsVisibleOnFront).Scan(&attr.ID)
	if err != nil {
		return fmt.Errorf("save attribute %s: %w", code, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM attribute_options WHERE attribute_id = ?`, attr.ID); err != nil {
		return fmt.Errorf("clear options of %s: %w", code, err)
	}
	for i, opt := range attr.Options {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO attribute_options (attribute_id, value, label, sort_order) VALUES (?, ?, ?, ?)`,
			attr.ID, opt.Value, opt.Label, i); err != nil {
			return fmt.Errorf("save option %s of %s: %w", opt.Value, code, err)
		}
	}
	return tx.Commit()
}

// SetStoreLabel sets the label of an attribute in one store.
func (s *Store) SetStoreLabel(ctx context.Context, attributeID, storeID int, label string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx,
		`INSERT INTO attribute_labels (attribute_id, store_id, label) VALUES (?, ?, ?)
		 ON CONFLICT(attribute_id, store_id) DO UPDATE SET label = excluded.label`,
		attributeID, storeID, label)
	if err != nil {
		return fmt.Errorf("set store label: %w", err)
	}
	return nil
}

// EntityTypeID implements catalog.AttributeStore.
func (s *Store) EntityTypeID(ctx context.Context, code string) (int, bool, error) {
	if err := s.ready(ctx); err != nil {
		return 0, false, err
	}
	var id int
	err := s.sqlDB.QueryRowContext(ctx, `SELECT id FROM entity_types WHERE code = ?`, code).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get entity type: %w", err)
	}
	return id, true, nil
}

// AttributesInGroup implements catalog.AttributeStore.
func (s *Store) AttributesInGroup(ctx context.Context, entityTypeID, setID, groupID, storeID int) ([]catalog.Attribute, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+attributeColumns+`, ea.sort_order
		   FROM entity_attributes ea
		   JOIN attributes a ON a.id = ea.attribute_id
		   LEFT JOIN attribute_labels l ON l.attribute_id = a.id AND l.store_id = ?
		  WHERE ea.entity_type_id = ? AND ea.set_id = ? AND ea.group_id = ?
		  ORDER BY ea.sort_order, a.id`,
		storeID, entityTypeID, setID, groupID)
	if err != nil {
		return nil, fmt.Errorf("list group attributes: %w", err)
	}
	defer rows.Close()

	var out []catalog.Attribute
	for rows.Next() {
		var attr catalog.Attribute
		if err := rows.Scan(&attr.ID, &attr.EntityTypeID, &attr.Code, &attr.FrontendInput, &attr.FrontendLabel,
			&attr.IsVisibleOnFront, &attr.StoreLabel, &attr.SortOrder); err != nil {
			return nil, fmt.Errorf("scan attribute: %w", err)
		}
		out = append(out, attr)
	}
	return out, rows.Err()
}

// AttributesByCode implements catalog.AttributeStore with one query for the
// attributes and one for their options.
func (s *Store) AttributesByCode(ctx context.Context, entityTypeID int, codes []string, storeID int) (map[string]catalog.Attribute, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	out := make(map[string]catalog.Attribute, len(codes))
	if len(codes) == 0 {
		return out, nil
	}

	args := []any{storeID, entityTypeID}
	for _, c := range codes {
		args = append(args, c)
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT `+attributeColumns+`
		   FROM attributes a
		   LEFT JOIN attribute_labels l ON l.attribute_id = a.id AND l.store_id = ?
		  WHERE a.entity_type_id = ? AND a.code IN (`+placeholders(len(codes))+`)`,
		args...)
	if err != nil {
		return nil, fmt.Errorf("load attributes: %w", err)
	}
	byID := make(map[int]string)
	for rows.Next() {
		var attr catalog.Attribute
		if err := rows.Scan(&attr.ID, &attr.EntityTypeID, &attr.Code, &attr.FrontendInput, &attr.FrontendLabel,
			&attr.IsVisibleOnFront, &attr.StoreLabel); err != nil {
			rows.Close()
			return nil, fmt.Errorf("scan attribute: %w", err)
		}
		out[attr.Code] = attr
		byID[attr.ID] = attr.Code
	}
	if err := rows.Close(); err != nil {
		return nil, err
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(byID) == 0 {
		return out, nil
	}

	idArgs := make([]any, 0, len(byID))
	for id := range byID {
		idArgs = append(idArgs, id)
	}
	optRows, err := s.sqlDB.QueryContext(ctx,
		`SELECT attribute_id, value, label FROM attribute_options
		  WHERE attribute_id IN (`+placeholders(len(idArgs))+`)
		  ORDER BY attribute_id, sort_order`, idArgs...)
	if err != nil {
		return nil, fmt.Errorf("load attribute options: %w", err)
	}
	defer optRows.Close()
	for optRows.Next() {
		var id int
		var opt catalog.Option
		if err := optRows.Scan(&id, &opt.Value, &opt.Label); err != nil {
			return nil, fmt.Errorf("scan attribute option: %w", err)
		}
		code := byID[id]
		attr := out[code]
		attr.Options = append(attr.Options, opt)
		out[code] = attr
	}
	return out, optRows.Err()
}

// AssignAttribute places an attribute in a group of a set, moving it when it
// is already in the set, and dispatches EventEntityAttributeSaveAfter with
// the previous group in OrigGroupID.
func (s *Store) AssignAttribute(ctx context.Context, ea *catalog.EntityAttribute) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if ea.SetID <= 0 || ea.GroupID <= 0 || ea.AttributeID <= 0 {
		return fmt.Errorf("set, group and attribute ids are required")
	}
	if ea.EntityTypeID == 0 {
		ea.EntityTypeID = catalog.ProductEntityTypeID
	}

	var existingID, origGroupID int
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, group_id FROM entity_attributes WHERE set_id = ? AND attribute_id = ?`,
		ea.SetID, ea.AttributeID).Scan(&existingID, &origGroupID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("get entity attribute: %w", err)
	}

	if existingID == 0 {
		res, err := s.sqlDB.ExecContext(ctx,
			`INSERT INTO entity_attributes (entity_type_id, set_id, group_id, attribute_id, sort_order)
			 VALUES (?, ?, ?, ?, ?)`,
			ea.EntityTypeID, ea.SetID, ea.GroupID, ea.AttributeID, ea.SortOrder)
		if err != nil {
			return fmt.Errorf("create entity attribute: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("create entity attribute: %w", err)
		}
		existingID = int(id)
	} else if _, err := s.sqlDB.ExecContext(ctx,
		`UPDATE entity_attributes SET group_id = ?, sort_order = ? WHERE id = ?`,
		ea.GroupID, ea.SortOrder, existingID); err != nil {
		return fmt.Errorf("update entity attribute: %w", err)
	}

	ea.ID = existingID
	ea.OrigGroupID = origGroupID
	saved := *ea
	s.dispatch(ctx, catalog.Event{Name: catalog.EventEntityAttributeSaveAfter, EntityAttribute: &saved})
	return nil
}

// UnassignAttribute removes an attribute from a set and dispatches
// EventEntityAttributeDeleteAfter.
func (s *Store) UnassignAttribute(ctx context.Context, setID, attributeID int) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	var ea catalog.EntityAttribute
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, entity_type_id, set_id, group_id, attribute_id, sort_order
		   FROM entity_attributes WHERE set_id = ? AND attribute_id = ?`,
		setID, attributeID).Scan(&ea.ID, &ea.EntityTypeID, &ea.SetID, &ea.GroupID, &ea.AttributeID, &ea.SortOrder)
	if err != nil {
		return notFound(err, "get entity attribute")
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM entity_attributes WHERE id = ?`, ea.ID); err != nil {
		return fmt.Errorf("delete entity attribute: %w", err)
	}
	ea.OrigGroupID = ea.GroupID
	s.dispatch(ctx, catalog.Event{Name: catalog.EventEntityAttributeDeleteAfter, EntityAttribute: &ea})
	return nil
}
