package models

// DailyConsultationStat counts consultations on a single day.
type DailyConsultationStat struct {
	Date         string `json:"date"`
	ParentCount  int    `json:"parentCount"`
	StudentCount int    `json:"studentCount"`
	Total        int    `json:"total"`
}

// CategoryStat is one bucket of the category distribution. Percentages are rounded per bucket
// and need not sum to 100.
type CategoryStat struct {
	Category   string `json:"category"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

// StaffPerformance is a leaderboard row measured against the per-teacher monthly target.
type StaffPerformance struct {
	ID                string `json:"id"`
	Name              string `json:"name"`
	ConsultationCount int    `json:"consultationCount"`
	TargetCount       int    `json:"targetCount"`
	Percentage        int    `json:"percentage"`
}

// StaffSubjectStat is one row of the staff × subject matrix.
type StaffSubjectStat struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	MathCount    int    `json:"mathCount"`
	EnglishCount int    `json:"englishCount"`
	TotalCount   int    `json:"totalCount"`
}

// FollowUpItem is an open or completed follow-up obligation.
type FollowUpItem struct {
	ConsultationID string  `json:"consultationId"`
	StudentID      string  `json:"studentId"`
	StudentName    string  `json:"studentName"`
	ConsultantName string  `json:"consultantName"`
	Date           string  `json:"date"`
	FollowUpDate   *string `json:"followUpDate,omitempty"`
	DaysLeft       *int    `json:"daysLeft,omitempty"`
	Urgency        Urgency `json:"urgency"`
}

// FollowUpBacklog groups follow-up obligations with per-urgency totals.
type FollowUpBacklog struct {
	Items   []FollowUpItem `json:"items"`
	Urgent  int            `json:"urgent"`
	Pending int            `json:"pending"`
	Done    int            `json:"done"`
}

// StudentNeedingConsultation reports a qualifying subject of a student without consultations in the window.
type StudentNeedingConsultation struct {
	StudentID            string  `json:"studentId"`
	StudentName          string  `json:"studentName"`
	Subject              string  `json:"subject"`
	LastConsultationDate *string `json:"lastConsultationDate,omitempty"`
}

// ConsultationStats is the aggregate result of one analytics pass. It is built once per request and never mutated.
type ConsultationStats struct {
	DateRange                   DateRange                    `json:"dateRange"`
	DailyStats                  []DailyConsultationStat      `json:"dailyStats"`
	CategoryStats               []CategoryStat               `json:"categoryStats"`
	StaffPerformances           []StaffPerformance           `json:"staffPerformances"`
	StaffSubjectStats           []StaffSubjectStat           `json:"staffSubjectStats"`
	TopPerformer                *StaffPerformance            `json:"topPerformer"`
	FollowUps                   FollowUpBacklog              `json:"followUps"`
	StudentsNeedingConsultation []StudentNeedingConsultation `json:"studentsNeedingConsultation"`
	TotalConsultations          int                          `json:"totalConsultations"`
	ParentConsultations         int                          `json:"parentConsultations"`
	StudentConsultations        int                          `json:"studentConsultations"`
	FollowUpNeeded              int                          `json:"followUpNeeded"`
	FollowUpDone                int                          `json:"followUpDone"`
	TotalActiveStudents         int                          `json:"totalActiveStudents"`
	MalformedRecords            int                          `json:"malformedRecords"`
	// Truncated is set when the fetch hit its safety cap, so older records in the window may be missing.
	Truncated bool `json:"truncated"`
}
