package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/consultation-api/internal/models"
)

// StaffRepository provides read-only snapshots of the staff directory.
type StaffRepository struct {
	db *sqlx.DB
}

// NewStaffRepository constructs a StaffRepository.
func NewStaffRepository(db *sqlx.DB) *StaffRepository {
	return &StaffRepository{db: db}
}

type staffRow struct {
	ID         string         `db:"id"`
	Name       string         `db:"name"`
	Role       string         `db:"role"`
	SystemRole string         `db:"system_role"`
	Subjects   pq.StringArray `db:"subjects"`
}

// ListStaff returns every staff member in directory order.
func (r *StaffRepository) ListStaff(ctx context.Context) ([]models.StaffMember, error) {
	const query = `SELECT id, name, role, COALESCE(system_role, '') AS system_role, COALESCE(subjects, '{}') AS subjects
        FROM staff ORDER BY sort_order ASC, name ASC`
	var rows []staffRow
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("list staff: %w", err)
	}

	staff := make([]models.StaffMember, 0, len(rows))
	for _, row := range rows {
		staff = append(staff, models.StaffMember{
			ID:         row.ID,
			Name:       row.Name,
			Role:       row.Role,
			SystemRole: row.SystemRole,
			Subjects:   []string(row.Subjects),
		})
	}
	return staff, nil
}
