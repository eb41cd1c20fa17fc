package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/consultation-api/internal/models"
)

// RosterRepository provides read-only snapshots of the student roster.
type RosterRepository struct {
	db *sqlx.DB
}

// NewRosterRepository constructs a RosterRepository.
func NewRosterRepository(db *sqlx.DB) *RosterRepository {
	return &RosterRepository{db: db}
}

// ListActiveStudents returns active students ordered by name together with all of their enrollments.
func (r *RosterRepository) ListActiveStudents(ctx context.Context) ([]models.StudentRosterEntry, error) {
	const studentsQuery = `SELECT id, name, COALESCE(school, '') AS school, COALESCE(grade, '') AS grade, status
        FROM students WHERE status = $1 ORDER BY name ASC, id ASC`
	var students []models.StudentRosterEntry
	if err := r.db.SelectContext(ctx, &students, studentsQuery, models.StudentStatusActive); err != nil {
		return nil, fmt.Errorf("list active students: %w", err)
	}
	if len(students) == 0 {
		return students, nil
	}

	ids := make([]string, len(students))
	index := make(map[string]int, len(students))
	for i, student := range students {
		ids[i] = student.ID
		index[student.ID] = i
	}

	const enrollmentsQuery = `SELECT student_id, subject, COALESCE(class_name, '') AS class_name, is_active,
        to_char(withdrawal_date, 'YYYY-MM-DD') AS withdrawal_date, on_hold
        FROM enrollments WHERE student_id = ANY($1) ORDER BY student_id, subject`
	var enrollments []models.Enrollment
	if err := r.db.SelectContext(ctx, &enrollments, enrollmentsQuery, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	for _, enrollment := range enrollments {
		if i, ok := index[enrollment.StudentID]; ok {
			students[i].Enrollments = append(students[i].Enrollments, enrollment)
		}
	}
	return students, nil
}
