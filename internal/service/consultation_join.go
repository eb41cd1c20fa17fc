package service

import (
	"regexp"
	"strings"

	"github.com/noah-isme/consultation-api/internal/models"
)

// registrarMarker matches the legacy "[등록자: name]" annotation embedded in consultation content.
var registrarMarker = regexp.MustCompile(`\[등록자:\s*(.*?)\]`)

// RegistrarFromContent extracts the registrar named by a legacy content marker.
func RegistrarFromContent(content string) (string, bool) {
	match := registrarMarker.FindStringSubmatch(content)
	if match == nil {
		return "", false
	}
	name := strings.TrimSpace(match[1])
	if name == "" {
		return "", false
	}
	return name, true
}

// EnrichConsultations joins records against roster and staff snapshots. Lookups are indexed once
// per call; unresolved references render as models.UnresolvedPlaceholder. The staff directory name
// wins over the consultant name stored on the record.
func EnrichConsultations(records []models.ConsultationRecord, roster []models.StudentRosterEntry, staff []models.StaffMember) []models.EnrichedConsultation {
	students := make(map[string]models.StudentRosterEntry, len(roster))
	for _, student := range roster {
		students[student.ID] = student
	}
	members := make(map[string]models.StaffMember, len(staff))
	for _, member := range staff {
		members[member.ID] = member
	}

	enriched := make([]models.EnrichedConsultation, 0, len(records))
	for _, record := range records {
		item := models.EnrichedConsultation{
			ConsultationRecord: record,
			SubjectKey:         models.NormalizeSubject(record.Subject),
			School:             models.UnresolvedPlaceholder,
			Grade:              models.UnresolvedPlaceholder,
			StudentStatus:      models.UnresolvedPlaceholder,
			ConsultantRole:     models.UnresolvedPlaceholder,
			RegistrarName:      models.UnresolvedPlaceholder,
		}
		if student, ok := students[record.StudentID]; ok {
			item.School = placeholderIfEmpty(student.School)
			item.Grade = placeholderIfEmpty(student.Grade)
			item.StudentStatus = placeholderIfEmpty(student.Status)
		}
		if member, ok := members[record.ConsultantID]; ok {
			item.ConsultantRole = placeholderIfEmpty(member.Role)
			if strings.TrimSpace(member.Name) != "" {
				item.ConsultantName = member.Name
			}
		}
		item.ConsultantName = placeholderIfEmpty(item.ConsultantName)
		if name, ok := RegistrarFromContent(record.Content); ok {
			item.RegistrarName = name
		} else if member, ok := members[record.CreatedBy]; ok {
			item.RegistrarName = placeholderIfEmpty(member.Name)
		}
		enriched = append(enriched, item)
	}
	return enriched
}

func placeholderIfEmpty(value string) string {
	if strings.TrimSpace(value) == "" {
		return models.UnresolvedPlaceholder
	}
	return value
}
