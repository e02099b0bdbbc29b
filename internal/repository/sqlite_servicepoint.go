package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/alexanderramin/taxonomy/internal/db"
	"github.com/alexanderramin/taxonomy/internal/domain"
	"github.com/google/uuid"
)

const servicePointColumns = `id, name, governorate_id, district_id, address, phone, owner,
		category, start_date, employee_count, device_count, notes, created_at`

// SQLiteServicePointRepo implements ServicePointRepo. Bound to a *sql.Tx
// through db.DBTX, InsertMany is atomic per call.
type SQLiteServicePointRepo struct {
	db db.DBTX
}

func NewSQLiteServicePointRepo(conn db.DBTX) *SQLiteServicePointRepo {
	return &SQLiteServicePointRepo{db: conn}
}

// InsertMany writes all records with a single multi-row INSERT.
func (r *SQLiteServicePointRepo) InsertMany(ctx context.Context, records []*domain.ServicePoint) error {
	if len(records) == 0 {
		return nil
	}

	const cols = 13
	placeholders := make([]string, 0, len(records))
	args := make([]any, 0, len(records)*cols)
	now := time.Now().UTC()
	for _, sp := range records {
		if sp.ID == "" {
			sp.ID = uuid.New().String()
		}
		if sp.CreatedAt.IsZero() {
			sp.CreatedAt = now
		}
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			sp.ID,
			sp.Name,
			sp.GovernorateID,
			sp.DistrictID,
			sp.Address,
			sp.Phone,
			sp.Owner,
			sp.Category,
			nullableTimeToString(sp.StartDate, dateLayout),
			sp.EmployeeCount,
			sp.DeviceCount,
			sp.Notes,
			sp.CreatedAt.UTC().Format(timestampLayout),
		)
	}

	query := `INSERT INTO service_points (` + servicePointColumns + `) VALUES ` + strings.Join(placeholders, ", ")
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("inserting %d service points: %w", len(records), err)
	}
	return nil
}

func (r *SQLiteServicePointRepo) ListByDistrict(ctx context.Context, districtID string) ([]*domain.ServicePoint, error) {
	query := `SELECT ` + servicePointColumns + ` FROM service_points WHERE district_id = ? ORDER BY created_at, rowid`
	rows, err := r.db.QueryContext(ctx, query, districtID)
	if err != nil {
		return nil, fmt.Errorf("listing service points by district: %w", err)
	}
	defer rows.Close()

	var out []*domain.ServicePoint
	for rows.Next() {
		var sp domain.ServicePoint
		var startDate sql.NullString
		var createdAt string
		if err := rows.Scan(
			&sp.ID, &sp.Name, &sp.GovernorateID, &sp.DistrictID, &sp.Address, &sp.Phone, &sp.Owner,
			&sp.Category, &startDate, &sp.EmployeeCount, &sp.DeviceCount, &sp.Notes, &createdAt,
		); err != nil {
			return nil, fmt.Errorf("scanning service point row: %w", err)
		}
		sp.StartDate = parseNullableTime(startDate, dateLayout)
		created, err := time.Parse(time.RFC3339Nano, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}
		sp.CreatedAt = created
		out = append(out, &sp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating service points: %w", err)
	}
	return out, nil
}

func (r *SQLiteServicePointRepo) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM service_points`).Scan(&n); err != nil {
		return 0, fmt.Errorf("counting service points: %w", err)
	}
	return n, nil
}
