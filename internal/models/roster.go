package models

import "strings"

// Student roster statuses.
const (
	StudentStatusActive    = "active"
	StudentStatusOnHold    = "on_hold"
	StudentStatusWithdrawn = "withdrawn"
	StudentStatusProspect  = "prospect"
)

// StaffRoleTeacher is the role value identifying teaching staff.
const StaffRoleTeacher = "teacher"

// Enrollment is a single class enrollment of a rostered student.
type Enrollment struct {
	StudentID      string  `db:"student_id" json:"-"`
	Subject        string  `db:"subject" json:"subject"`
	ClassName      string  `db:"class_name" json:"className"`
	IsActive       bool    `db:"is_active" json:"isActive"`
	WithdrawalDate *string `db:"withdrawal_date" json:"withdrawalDate,omitempty"`
	OnHold         bool    `db:"on_hold" json:"onHold"`
}

// Current reports whether the enrollment is active, not withdrawn, and not on hold.
func (e Enrollment) Current() bool {
	return e.IsActive && (e.WithdrawalDate == nil || *e.WithdrawalDate == "") && !e.OnHold
}

// StudentRosterEntry is a read-only snapshot of a student and their enrollments.
type StudentRosterEntry struct {
	ID          string       `db:"id" json:"id"`
	Name        string       `db:"name" json:"name"`
	School      string       `db:"school" json:"school"`
	Grade       string       `db:"grade" json:"grade"`
	Status      string       `db:"status" json:"status"`
	Enrollments []Enrollment `db:"-" json:"enrollments"`
}

// ConsultationSubjects returns the distinct core subjects (math, english) the student is currently
// enrolled in, in canonical order. Students returned with no subjects do not need consultation.
func (s StudentRosterEntry) ConsultationSubjects() []string {
	var hasMath, hasEnglish bool
	for _, enrollment := range s.Enrollments {
		if !enrollment.Current() {
			continue
		}
		switch NormalizeSubject(enrollment.Subject) {
		case SubjectMath:
			hasMath = true
		case SubjectEnglish:
			hasEnglish = true
		}
	}
	subjects := make([]string, 0, 2)
	if hasMath {
		subjects = append(subjects, SubjectMath)
	}
	if hasEnglish {
		subjects = append(subjects, SubjectEnglish)
	}
	return subjects
}

// StaffMember is a read-only snapshot of a staff directory entry.
type StaffMember struct {
	ID         string   `db:"id" json:"id"`
	Name       string   `db:"name" json:"name"`
	Role       string   `db:"role" json:"role"`
	SystemRole string   `db:"system_role" json:"systemRole,omitempty"`
	Subjects   []string `db:"-" json:"subjects,omitempty"`
}

// IsTeacher reports whether either role field classifies the member as teaching staff.
func (s StaffMember) IsTeacher() bool {
	return strings.EqualFold(s.Role, StaffRoleTeacher) || strings.EqualFold(s.SystemRole, StaffRoleTeacher)
}
