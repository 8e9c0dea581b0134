package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"

	"github.com/vnykmshr/pviewgroups/pkg/catalog"
)

var groupCodeChars = regexp.MustCompile(`[^a-z0-9]+`)

// SaveAttributeSet inserts (ID 0) or renames a set and dispatches
// EventAttributeSetSaveAfter.
func (s *Store) SaveAttributeSet(ctx context.Context, set *catalog.AttributeSet) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	name := strings.TrimSpace(set.Name)
	if name == "" {
		return fmt.Errorf("attribute set name is required")
	}
	if set.EntityTypeID == 0 {
		set.EntityTypeID = catalog.ProductEntityTypeID
	}

	if set.ID == 0 {
		res, err := s.sqlDB.ExecContext(ctx,
			`INSERT INTO attribute_sets (entity_type_id, name) VALUES (?, ?)`,
			set.EntityTypeID, name)
		if err != nil {
			if isUniqueViolation(err) {
				return catalog.ErrAlreadyExists
			}
			return fmt.Errorf("create attribute set: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("create attribute set: %w", err)
		}
		set.ID = int(id)
	} else {
		res, err := s.sqlDB.ExecContext(ctx,
			`UPDATE attribute_sets SET name = ? WHERE id = ?`, name, set.ID)
		if err != nil {
			if isUniqueViolation(err) {
				return catalog.ErrAlreadyExists
			}
			return fmt.Errorf("update attribute set: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return catalog.ErrNotFound
		}
	}
	set.Name = name

	saved := *set
	s.dispatch(ctx, catalog.Event{Name: catalog.EventAttributeSetSaveAfter, Set: &saved})
	return nil
}

// AttributeSet loads a set by id.
func (s *Store) AttributeSet(ctx context.Context, id int) (catalog.AttributeSet, error) {
	if err := s.ready(ctx); err != nil {
		return catalog.AttributeSet{}, err
	}
	var set catalog.AttributeSet
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, entity_type_id, name FROM attribute_sets WHERE id = ?`, id).
		Scan(&set.ID, &set.EntityTypeID, &set.Name)
	if err != nil {
		return catalog.AttributeSet{}, notFound(err, "get attribute set")
	}
	return set, nil
}

// DeleteAttributeSet removes a set with its groups and assignments and
// dispatches EventAttributeSetDeleteAfter.
func (s *Store) DeleteAttributeSet(ctx context.Context, id int) error {
	set, err := s.AttributeSet(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM attribute_sets WHERE id = ?`, id); err != nil {
		return fmt.Errorf("delete attribute set: %w", err)
	}
	s.dispatch(ctx, catalog.Event{Name: catalog.EventAttributeSetDeleteAfter, Set: &set})
	return nil
}

// GroupsBySet implements catalog.GroupStore.
func (s *Store) GroupsBySet(ctx context.Context, setID int) ([]catalog.AttributeGroup, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx,
		`SELECT id, set_id, name, code, sort_order
		   FROM attribute_groups
		  WHERE set_id = ?
		  ORDER BY sort_order, id`, setID)
	if err != nil {
		return nil, fmt.Errorf("list attribute groups: %w", err)
	}
	defer rows.Close()

	var out []catalog.AttributeGroup
	for rows.Next() {
		g, err := scanGroup(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, rows.Err()
}

// GroupByID implements catalog.GroupStore.
func (s *Store) GroupByID(ctx context.Context, groupID int) (catalog.AttributeGroup, error) {
	if err := s.ready(ctx); err != nil {
		return catalog.AttributeGroup{}, err
	}
	row := s.sqlDB.QueryRowContext(ctx,
		`SELECT id, set_id, name, code, sort_order FROM attribute_groups WHERE id = ?`, groupID)
	g, err := scanGroup(row)
	if err != nil {
		return catalog.AttributeGroup{}, notFound(err, "get attribute group")
	}
	return g, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanGroup(row scanner) (catalog.AttributeGroup, error) {
	var g catalog.AttributeGroup
	if err := row.Scan(&g.ID, &g.SetID, &g.Name, &g.Code, &g.SortOrder); err != nil {
		return catalog.AttributeGroup{}, err
	}
	g.OrigName, g.OrigCode = g.Name, g.Code
	return g, nil
}

// SaveGroup implements catalog.GroupWriter. It inserts groups with ID 0 and
// updates others. No event is dispatched.
func (s *Store) SaveGroup(ctx context.Context, group *catalog.AttributeGroup) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if group.SetID <= 0 {
		return fmt.Errorf("attribute set id is required")
	}
	if strings.TrimSpace(group.DisplayName()) == "" {
		return fmt.Errorf("attribute group name is required")
	}
	if group.Code == "" {
		group.Code = strings.Trim(groupCodeChars.ReplaceAllString(strings.ToLower(group.Name), "-"), "-")
	}

	if group.ID == 0 {
		res, err := s.sqlDB.ExecContext(ctx,
			`INSERT INTO attribute_groups (set_id, name, code, sort_order) VALUES (?, ?, ?, ?)`,
			group.SetID, group.Name, group.Code, group.SortOrder)
		if err != nil {
			return fmt.Errorf("create attribute group: %w", err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("create attribute group: %w", err)
		}
		group.ID = int(id)
		return nil
	}

	res, err := s.sqlDB.ExecContext(ctx,
		`UPDATE attribute_groups SET set_id = ?, name = ?, code = ?, sort_order = ? WHERE id = ?`,
		group.SetID, group.Name, group.Code, group.SortOrder, group.ID)
	if err != nil {
		return fmt.Errorf("update attribute group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

// DeleteGroup implements catalog.GroupWriter. Assignments to the group are
// removed with it. No event is dispatched.
func (s *Store) DeleteGroup(ctx context.Context, group catalog.AttributeGroup) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	res, err := s.sqlDB.ExecContext(ctx, `DELETE FROM attribute_groups WHERE id = ?`, group.ID)
	if err != nil {
		return fmt.Errorf("delete attribute group: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return catalog.ErrNotFound
	}
	return nil
}

var _ scanner = (*sql.Row)(nil)
