package models

// ConsultationType distinguishes parent meetings from student meetings.
type ConsultationType string

const (
	ConsultationTypeParent  ConsultationType = "parent"
	ConsultationTypeStudent ConsultationType = "student"
)

// Consultation categories. The set is open; unknown values are kept verbatim.
const (
	CategoryAcademic   = "academic"
	CategoryBehavior   = "behavior"
	CategoryAttendance = "attendance"
	CategoryProgress   = "progress"
	CategoryConcern    = "concern"
	CategoryCompliment = "compliment"
	CategoryComplaint  = "complaint"
	CategoryGeneral    = "general"
	CategoryOther      = "other"
)

// FollowUpStatus selects consultations by follow-up state.
type FollowUpStatus string

const (
	FollowUpAll     FollowUpStatus = "all"
	FollowUpNeeded  FollowUpStatus = "needed"
	FollowUpDone    FollowUpStatus = "done"
	FollowUpPending FollowUpStatus = "pending"
)

// Urgency classifies how time-critical a follow-up obligation is.
type Urgency string

const (
	UrgencyNone    Urgency = "none"
	UrgencyDone    Urgency = "done"
	UrgencyPending Urgency = "pending"
	UrgencyUrgent  Urgency = "urgent"
)

// DateLayout is the calendar-day layout used by consultation dates.
const DateLayout = "2006-01-02"

// UnresolvedPlaceholder is rendered for joins that could not be resolved.
const UnresolvedPlaceholder = "-"

// ConsultationRecord is a stored parent or student consultation. Records are immutable once created.
type ConsultationRecord struct {
	ID              string           `db:"id" json:"id"`
	StudentID       string           `db:"student_id" json:"studentId"`
	StudentName     string           `db:"student_name" json:"studentName"`
	ConsultantID    string           `db:"consultant_id" json:"consultantId"`
	ConsultantName  string           `db:"consultant_name" json:"consultantName"`
	Date            string           `db:"date" json:"date"`
	Time            *string          `db:"time" json:"time,omitempty"`
	DurationMinutes *int             `db:"duration_minutes" json:"durationMinutes,omitempty"`
	Type            ConsultationType `db:"type" json:"type"`
	Category        string           `db:"category" json:"category"`
	Subject         string           `db:"subject" json:"subject,omitempty"`
	Title           string           `db:"title" json:"title"`
	Content         string           `db:"content" json:"content"`
	ParentName      *string          `db:"parent_name" json:"parentName,omitempty"`
	ParentRelation  *string          `db:"parent_relation" json:"parentRelation,omitempty"`
	ParentContact   *string          `db:"parent_contact" json:"parentContact,omitempty"`
	StudentMood     *string          `db:"student_mood" json:"studentMood,omitempty"`
	FollowUpNeeded  bool             `db:"follow_up_needed" json:"followUpNeeded"`
	FollowUpDone    bool             `db:"follow_up_done" json:"followUpDone"`
	FollowUpDate    *string          `db:"follow_up_date" json:"followUpDate,omitempty"`
	FollowUpNotes   *string          `db:"follow_up_notes" json:"followUpNotes,omitempty"`
	CreatedBy       string           `db:"created_by" json:"createdBy"`
	CreatedAt       int64            `db:"created_at" json:"createdAt"`
	UpdatedAt       int64            `db:"updated_at" json:"updatedAt"`
}

// MissingRequiredField names the first absent required field, or "" when the record is usable.
func (r ConsultationRecord) MissingRequiredField() string {
	switch {
	case r.StudentID == "":
		return "studentId"
	case r.Date == "":
		return "date"
	default:
		return ""
	}
}

// HasFollowUpDate reports whether a non-empty follow-up date is set.
func (r ConsultationRecord) HasFollowUpDate() bool {
	return r.FollowUpDate != nil && *r.FollowUpDate != ""
}

// DateRange is an inclusive calendar-day window in YYYY-MM-DD form.
type DateRange struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Contains reports whether date falls within the inclusive range. Open bounds always match.
func (r DateRange) Contains(date string) bool {
	if r.Start != "" && date < r.Start {
		return false
	}
	if r.End != "" && date > r.End {
		return false
	}
	return true
}

// Empty reports whether both bounds are set and start is after end.
func (r DateRange) Empty() bool {
	return r.Start != "" && r.End != "" && r.Start > r.End
}

// ConsultationFilter is the closed set of filter dimensions accepted by the retrieval engine.
// Empty fields mean "no constraint".
type ConsultationFilter struct {
	Type                    ConsultationType
	StudentID               string
	ConsultantID            string
	Category                string
	Subject                 string
	DateRange               *DateRange
	FollowUpStatus          FollowUpStatus
	SearchQuery             string
	IncludeLastConsultation bool
}

// EnrichedConsultation is a consultation joined with roster and staff attributes.
type EnrichedConsultation struct {
	ConsultationRecord
	SubjectKey     string `json:"subjectKey"`
	School         string `json:"school"`
	Grade          string `json:"grade"`
	StudentStatus  string `json:"studentStatus"`
	ConsultantRole string `json:"consultantRole"`
	RegistrarName  string `json:"registrarName"`
}
