package dto

import (
	"strings"

	"github.com/noah-isme/consultation-api/internal/models"
)

// ConsultationQuery binds the shared consultation list and stats query string.
type ConsultationQuery struct {
	Type                    string `form:"type" validate:"omitempty,oneof=parent student"`
	StudentID               string `form:"studentId" validate:"omitempty,max=64"`
	ConsultantID            string `form:"consultantId" validate:"omitempty,max=64"`
	Category                string `form:"category" validate:"omitempty,max=64"`
	Subject                 string `form:"subject" validate:"omitempty,max=32"`
	StartDate               string `form:"startDate" validate:"omitempty,datetime=2006-01-02"`
	EndDate                 string `form:"endDate" validate:"omitempty,datetime=2006-01-02"`
	Preset                  string `form:"preset" validate:"omitempty,oneof=today week thisWeek thisMonth lastMonth last3Months all"`
	FollowUpStatus          string `form:"followUpStatus" validate:"omitempty,oneof=all needed done pending"`
	Search                  string `form:"search" validate:"omitempty,max=100"`
	IncludeLastConsultation bool   `form:"includeLastConsultation"`
}

// HasExplicitRange reports whether startDate or endDate was supplied.
func (q ConsultationQuery) HasExplicitRange() bool {
	return q.StartDate != "" || q.EndDate != ""
}

// Filter converts the query into a consultation filter. The date range is left to the caller
// when only a preset is supplied.
func (q ConsultationQuery) Filter() models.ConsultationFilter {
	filter := models.ConsultationFilter{
		Type:                    models.ConsultationType(q.Type),
		StudentID:               strings.TrimSpace(q.StudentID),
		ConsultantID:            strings.TrimSpace(q.ConsultantID),
		Category:                strings.TrimSpace(q.Category),
		Subject:                 strings.TrimSpace(q.Subject),
		FollowUpStatus:          models.FollowUpStatus(q.FollowUpStatus),
		SearchQuery:             strings.TrimSpace(q.Search),
		IncludeLastConsultation: q.IncludeLastConsultation,
	}
	if q.HasExplicitRange() {
		filter.DateRange = &models.DateRange{Start: q.StartDate, End: q.EndDate}
	}
	return filter
}

// PageQuery binds list paging parameters. Out-of-range values are clamped downstream rather than rejected.
type PageQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"pageSize"`
}

// StatsQuery adds cache control to the stats endpoint.
type StatsQuery struct {
	Refresh bool `form:"refresh"`
}

// ExportQuery selects the export encoding.
type ExportQuery struct {
	Format string `form:"format" validate:"required,oneof=csv pdf"`
}

// DaysLeftQuery binds the follow-up countdown endpoint.
type DaysLeftQuery struct {
	Date  string `form:"date" validate:"required,datetime=2006-01-02"`
	Today string `form:"today" validate:"omitempty,datetime=2006-01-02"`
}

// DaysLeftResponse is the follow-up countdown payload.
type DaysLeftResponse struct {
	Date     string `json:"date"`
	Today    string `json:"today"`
	DaysLeft int    `json:"daysLeft"`
}
