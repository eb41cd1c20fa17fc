package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/consultation-api/internal/models"
	appErrors "github.com/noah-isme/consultation-api/pkg/errors"
)

const consultationColumns = `id, student_id, student_name, consultant_id, consultant_name,
        to_char(date, 'YYYY-MM-DD') AS date, time, duration_minutes, type, category, subject,
        title, content, parent_name, parent_relation, parent_contact, student_mood,
        follow_up_needed, follow_up_done, to_char(follow_up_date, 'YYYY-MM-DD') AS follow_up_date, follow_up_notes,
        created_by, (EXTRACT(EPOCH FROM created_at) * 1000)::BIGINT AS created_at,
        (EXTRACT(EPOCH FROM updated_at) * 1000)::BIGINT AS updated_at`

// consultationRow tolerates NULL in every column so a single incomplete document does not fail
// the whole scan. Missing required fields surface as empty strings for the service to skip.
type consultationRow struct {
	ID              sql.NullString `db:"id"`
	StudentID       sql.NullString `db:"student_id"`
	StudentName     sql.NullString `db:"student_name"`
	ConsultantID    sql.NullString `db:"consultant_id"`
	ConsultantName  sql.NullString `db:"consultant_name"`
	Date            sql.NullString `db:"date"`
	Time            sql.NullString `db:"time"`
	DurationMinutes sql.NullInt64  `db:"duration_minutes"`
	Type            sql.NullString `db:"type"`
	Category        sql.NullString `db:"category"`
	Subject         sql.NullString `db:"subject"`
	Title           sql.NullString `db:"title"`
	Content         sql.NullString `db:"content"`
	ParentName      sql.NullString `db:"parent_name"`
	ParentRelation  sql.NullString `db:"parent_relation"`
	ParentContact   sql.NullString `db:"parent_contact"`
	StudentMood     sql.NullString `db:"student_mood"`
	FollowUpNeeded  sql.NullBool   `db:"follow_up_needed"`
	FollowUpDone    sql.NullBool   `db:"follow_up_done"`
	FollowUpDate    sql.NullString `db:"follow_up_date"`
	FollowUpNotes   sql.NullString `db:"follow_up_notes"`
	CreatedBy       sql.NullString `db:"created_by"`
	CreatedAt       sql.NullInt64  `db:"created_at"`
	UpdatedAt       sql.NullInt64  `db:"updated_at"`
}

func (row consultationRow) record() models.ConsultationRecord {
	record := models.ConsultationRecord{
		ID:             row.ID.String,
		StudentID:      row.StudentID.String,
		StudentName:    row.StudentName.String,
		ConsultantID:   row.ConsultantID.String,
		ConsultantName: row.ConsultantName.String,
		Date:           row.Date.String,
		Time:           optionalString(row.Time),
		Type:           models.ConsultationType(row.Type.String),
		Category:       row.Category.String,
		Subject:        row.Subject.String,
		Title:          row.Title.String,
		Content:        row.Content.String,
		ParentName:     optionalString(row.ParentName),
		ParentRelation: optionalString(row.ParentRelation),
		ParentContact:  optionalString(row.ParentContact),
		StudentMood:    optionalString(row.StudentMood),
		FollowUpNeeded: row.FollowUpNeeded.Bool,
		FollowUpDone:   row.FollowUpDone.Bool,
		FollowUpDate:   optionalString(row.FollowUpDate),
		FollowUpNotes:  optionalString(row.FollowUpNotes),
		CreatedBy:      row.CreatedBy.String,
		CreatedAt:      row.CreatedAt.Int64,
		UpdatedAt:      row.UpdatedAt.Int64,
	}
	if row.DurationMinutes.Valid {
		minutes := int(row.DurationMinutes.Int64)
		record.DurationMinutes = &minutes
	}
	return record
}

func optionalString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	out := value.String
	return &out
}

// consultationFields whitelists the store fields that may appear in predicates or ordering.
var consultationFields = map[string]string{
	models.FieldStudentID:    "student_id",
	models.FieldType:         "type",
	models.FieldConsultantID: "consultant_id",
	models.FieldCategory:     "category",
	models.FieldSubject:      "subject",
	models.FieldDate:         "date",
	models.FieldCreatedAt:    "created_at",
}

// ConsultationRepository reads consultation records. It never mutates the store.
type ConsultationRepository struct {
	db *sqlx.DB
}

// NewConsultationRepository constructs a ConsultationRepository.
func NewConsultationRepository(db *sqlx.DB) *ConsultationRepository {
	return &ConsultationRepository{db: db}
}

// Query returns records matching every equality predicate, ordered and capped as requested.
func (r *ConsultationRepository) Query(ctx context.Context, q models.ConsultationQuery) ([]models.ConsultationRecord, error) {
	var builder strings.Builder
	builder.WriteString("SELECT ")
	builder.WriteString(consultationColumns)
	builder.WriteString(" FROM consultations WHERE 1=1")

	args := make([]interface{}, 0, len(q.Equals)+len(q.AnyOf))
	for _, predicate := range q.Equals {
		column, ok := consultationFields[predicate.Field]
		if !ok {
			return nil, fmt.Errorf("unsupported predicate field %q", predicate.Field)
		}
		args = append(args, predicate.Value)
		builder.WriteString(fmt.Sprintf(" AND %s = $%d", column, len(args)))
	}
	for _, predicate := range q.AnyOf {
		column, ok := consultationFields[predicate.Field]
		if !ok {
			return nil, fmt.Errorf("unsupported predicate field %q", predicate.Field)
		}
		if predicate.FoldCase {
			column = "LOWER(TRIM(" + column + "))"
		}
		args = append(args, pq.Array(predicate.Values))
		builder.WriteString(fmt.Sprintf(" AND %s = ANY($%d)", column, len(args)))
	}

	if len(q.OrderBy) > 0 {
		clauses := make([]string, 0, len(q.OrderBy))
		for _, order := range q.OrderBy {
			column, ok := consultationFields[order.Field]
			if !ok {
				return nil, fmt.Errorf("unsupported order field %q", order.Field)
			}
			direction := "ASC"
			if order.Descending {
				direction = "DESC"
			}
			clauses = append(clauses, column+" "+direction)
		}
		builder.WriteString(" ORDER BY ")
		builder.WriteString(strings.Join(clauses, ", "))
	}

	if q.Limit > 0 {
		builder.WriteString(fmt.Sprintf(" LIMIT %d", q.Limit))
	}

	var rows []consultationRow
	if err := r.db.SelectContext(ctx, &rows, builder.String(), args...); err != nil {
		return nil, fmt.Errorf("query consultations: %w", err)
	}
	records := make([]models.ConsultationRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}

// Get fetches a single consultation by id.
func (r *ConsultationRepository) Get(ctx context.Context, id string) (*models.ConsultationRecord, error) {
	query := "SELECT " + consultationColumns + " FROM consultations WHERE id = $1"
	var row consultationRow
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "consultation not found")
		}
		return nil, fmt.Errorf("get consultation: %w", err)
	}
	record := row.record()
	return &record, nil
}

type lastConsultationRow struct {
	StudentID string `db:"student_id"`
	LastDate  string `db:"last_date"`
}

// LastConsultationDates returns the most recent consultation date per student across the full history.
// Students without any consultation are absent from the map.
func (r *ConsultationRepository) LastConsultationDates(ctx context.Context, studentIDs []string) (map[string]string, error) {
	result := make(map[string]string, len(studentIDs))
	if len(studentIDs) == 0 {
		return result, nil
	}

	query := `SELECT student_id, to_char(MAX(date), 'YYYY-MM-DD') AS last_date
        FROM consultations WHERE student_id = ANY($1) GROUP BY student_id`
	var rows []lastConsultationRow
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(studentIDs)); err != nil {
		return nil, fmt.Errorf("query last consultation dates: %w", err)
	}
	for _, row := range rows {
		result[row.StudentID] = row.LastDate
	}
	return result, nil
}
