package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taxonomy/internal/db"
	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/alexanderramin/taxonomy/internal/taxonomy"
	"github.com/google/uuid"
)

// timestampLayout is fixed-width so text ordering matches time ordering.
const timestampLayout = "2006-01-02T15:04:05.000000000Z07:00"

// nodeColumns is the canonical SELECT column list for every node table.
const nodeColumns = `id, name, parent_id, is_required, sort_order, created_at, updated_at`

// nodeTables maps each taxonomy type to its table. It is checked against
// domain.NodeTypes when a repo is built, so a new type without a table
// fails at startup rather than silently at query time.
var nodeTables = map[domain.NodeType]string{
	domain.TypeClassification: "classification_nodes",
	domain.TypeLocation:       "location_nodes",
	domain.TypeProcedure:      "procedure_nodes",
	domain.TypeAction:         "action_nodes",
	domain.TypeAccountType:    "account_type_nodes",
}

// SQLiteNodeRepo implements NodeRepo over the five node tables.
type SQLiteNodeRepo struct {
	db     db.DBTX
	tables map[domain.NodeType]string
}

// NewSQLiteNodeRepo creates a SQLiteNodeRepo. It panics if the type to
// table mapping does not cover every known type.
func NewSQLiteNodeRepo(conn db.DBTX) *SQLiteNodeRepo {
	known := make(map[string]bool, len(db.NodeTables))
	for _, t := range db.NodeTables {
		known[t] = true
	}
	for _, typ := range domain.NodeTypes {
		table, ok := nodeTables[typ]
		if !ok || !known[table] {
			panic(fmt.Sprintf("repository: no node table for taxonomy type %q", typ))
		}
	}
	return &SQLiteNodeRepo{db: conn, tables: nodeTables}
}

func (r *SQLiteNodeRepo) table(typ domain.NodeType) (string, error) {
	table, ok := r.tables[typ]
	if !ok {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownType, string(typ))
	}
	return table, nil
}

func (r *SQLiteNodeRepo) List(ctx context.Context, typ domain.NodeType) ([]*domain.Node, error) {
	table, err := r.table(typ)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + nodeColumns + ` FROM ` + table + ` ORDER BY sort_order, created_at, rowid`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("listing %s nodes: %w", typ, err)
	}
	defer rows.Close()
	return r.scanNodes(rows, typ)
}

func (r *SQLiteNodeRepo) ListChildren(ctx context.Context, typ domain.NodeType, parentID string) ([]*domain.Node, error) {
	table, err := r.table(typ)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + nodeColumns + ` FROM ` + table + ` WHERE parent_id = ? ORDER BY sort_order, created_at, rowid`
	rows, err := r.db.QueryContext(ctx, query, parentID)
	if err != nil {
		return nil, fmt.Errorf("listing child %s nodes: %w", typ, err)
	}
	defer rows.Close()
	return r.scanNodes(rows, typ)
}

// NextSortOrder returns one past the highest sort order in the sibling
// group under parentID (nil for roots), or 0 for an empty group.
func (r *SQLiteNodeRepo) NextSortOrder(ctx context.Context, typ domain.NodeType, parentID *string) (int, error) {
	table, err := r.table(typ)
	if err != nil {
		return 0, err
	}
	query := `SELECT COALESCE(MAX(sort_order) + 1, 0) FROM ` + table + ` WHERE parent_id IS ?`
	var next int
	if err := r.db.QueryRowContext(ctx, query, parentID).Scan(&next); err != nil {
		return 0, fmt.Errorf("reading next %s sort order: %w", typ, err)
	}
	return next, nil
}

func (r *SQLiteNodeRepo) GetByID(ctx context.Context, typ domain.NodeType, id string) (*domain.Node, error) {
	table, err := r.table(typ)
	if err != nil {
		return nil, err
	}
	query := `SELECT ` + nodeColumns + ` FROM ` + table + ` WHERE id = ?`
	row := r.db.QueryRowContext(ctx, query, id)

	var n domain.Node
	var parentID sql.NullString
	var isRequired int
	var createdAt, updatedAt string
	err = row.Scan(&n.ID, &n.Name, &parentID, &isRequired, &n.SortOrder, &createdAt, &updatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, fmt.Errorf("%s node %s: %w", typ, id, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("scanning %s node: %w", typ, err)
	}
	return populateNode(&n, typ, parentID, isRequired, createdAt, updatedAt)
}

// Insert assigns an id and timestamps when they are unset and writes the
// node. A unique-key collision is reported as domain.ErrDuplicate.
func (r *SQLiteNodeRepo) Insert(ctx context.Context, n *domain.Node) error {
	table, err := r.table(n.Type)
	if err != nil {
		return err
	}
	if n.ID == "" {
		n.ID = uuid.New().String()
	}
	now := time.Now().UTC()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = now
	}
	if n.UpdatedAt.IsZero() {
		n.UpdatedAt = n.CreatedAt
	}

	query := `INSERT INTO ` + table + ` (id, name, name_key, parent_id, is_required, sort_order, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = r.db.ExecContext(ctx, query,
		n.ID,
		n.Name,
		taxonomy.Normalize(n.Name),
		n.ParentID, // *string: nil becomes SQL NULL
		boolToInt(n.IsRequired),
		n.SortOrder,
		n.CreatedAt.UTC().Format(timestampLayout),
		n.UpdatedAt.UTC().Format(timestampLayout),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("inserting %s node %q: %w", n.Type, n.Name, domain.ErrDuplicate)
		}
		return fmt.Errorf("inserting %s node: %w", n.Type, err)
	}
	return nil
}

func (r *SQLiteNodeRepo) Update(ctx context.Context, typ domain.NodeType, id string, patch NodePatch) error {
	table, err := r.table(typ)
	if err != nil {
		return err
	}

	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC().Format(timestampLayout)}
	if patch.Name != nil {
		sets = append(sets, "name = ?", "name_key = ?")
		args = append(args, *patch.Name, taxonomy.Normalize(*patch.Name))
	}
	if patch.IsRequired != nil {
		sets = append(sets, "is_required = ?")
		args = append(args, boolToInt(*patch.IsRequired))
	}
	if patch.SortOrder != nil {
		sets = append(sets, "sort_order = ?")
		args = append(args, *patch.SortOrder)
	}
	args = append(args, id)

	query := `UPDATE ` + table + ` SET ` + strings.Join(sets, ", ") + ` WHERE id = ?`
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("updating %s node %s: %w", typ, id, domain.ErrDuplicate)
		}
		return fmt.Errorf("updating %s node: %w", typ, err)
	}
	return requireAffected(res, typ, id)
}

// Delete removes a single row. Children are not touched; a row that still
// has children fails the foreign key check.
func (r *SQLiteNodeRepo) Delete(ctx context.Context, typ domain.NodeType, id string) error {
	table, err := r.table(typ)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM `+table+` WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting %s node: %w", typ, err)
	}
	return requireAffected(res, typ, id)
}

func requireAffected(res sql.Result, typ domain.NodeType, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("reading affected rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%s node %s: %w", typ, id, domain.ErrNotFound)
	}
	return nil
}

func (r *SQLiteNodeRepo) scanNodes(rows *sql.Rows, typ domain.NodeType) ([]*domain.Node, error) {
	var nodes []*domain.Node
	for rows.Next() {
		var n domain.Node
		var parentID sql.NullString
		var isRequired int
		var createdAt, updatedAt string
		if err := rows.Scan(&n.ID, &n.Name, &parentID, &isRequired, &n.SortOrder, &createdAt, &updatedAt); err != nil {
			return nil, fmt.Errorf("scanning %s node row: %w", typ, err)
		}
		node, err := populateNode(&n, typ, parentID, isRequired, createdAt, updatedAt)
		if err != nil {
			return nil, err
		}
		nodes = append(nodes, node)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating %s nodes: %w", typ, err)
	}
	return nodes, nil
}

// populateNode fills in parsed fields on a Node after scanning raw values.
func populateNode(n *domain.Node, typ domain.NodeType, parentID sql.NullString, isRequired int, createdAt, updatedAt string) (*domain.Node, error) {
	n.Type = typ
	n.IsRequired = intToBool(isRequired)
	if parentID.Valid {
		n.ParentID = &parentID.String
	}

	var err error
	n.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	n.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return n, nil
}
