package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/consultation-api/internal/models"
)

func TestRegistrarFromContent(t *testing.T) {
	name, ok := RegistrarFromContent("상담 내용 [등록자: 김선생] 끝")
	require.True(t, ok)
	assert.Equal(t, "김선생", name)

	name, ok = RegistrarFromContent("[등록자:박선생]")
	require.True(t, ok)
	assert.Equal(t, "박선생", name)

	_, ok = RegistrarFromContent("[등록자: ]")
	assert.False(t, ok)
	_, ok = RegistrarFromContent("no marker")
	assert.False(t, ok)
}

func TestEnrichConsultations(t *testing.T) {
	roster := []models.StudentRosterEntry{{ID: "s1", Name: "Kim", School: "Central High", Grade: "10", Status: "active"}}
	staff := []models.StaffMember{
		{ID: "t1", Name: "Lee", Role: "teacher"},
		{ID: "a1", Name: "Choi", Role: "admin"},
	}
	records := []models.ConsultationRecord{
		{ID: "c1", StudentID: "s1", ConsultantID: "t1", CreatedBy: "a1", Subject: "수학", Content: "[등록자: 김선생] notes"},
		{ID: "c2", StudentID: "s1", ConsultantID: "t1", ConsultantName: "Old Name", CreatedBy: "a1", Subject: "English"},
		{ID: "c3", StudentID: "gone", ConsultantID: "ghost", CreatedBy: "ghost"},
		{ID: "c4", StudentID: "s1", ConsultantID: "retired", ConsultantName: "Han"},
	}

	enriched := EnrichConsultations(records, roster, staff)
	require.Len(t, enriched, 4)

	assert.Equal(t, "김선생", enriched[0].RegistrarName)
	assert.Equal(t, models.SubjectMath, enriched[0].SubjectKey)
	assert.Equal(t, "Central High", enriched[0].School)
	assert.Equal(t, "teacher", enriched[0].ConsultantRole)

	assert.Equal(t, "Lee", enriched[0].ConsultantName)
	assert.Equal(t, "Choi", enriched[1].RegistrarName)
	assert.Equal(t, "Lee", enriched[1].ConsultantName)
	assert.Equal(t, models.SubjectEnglish, enriched[1].SubjectKey)

	assert.Equal(t, models.UnresolvedPlaceholder, enriched[2].RegistrarName)
	assert.Equal(t, models.UnresolvedPlaceholder, enriched[2].School)
	assert.Equal(t, models.UnresolvedPlaceholder, enriched[2].Grade)
	assert.Equal(t, models.UnresolvedPlaceholder, enriched[2].ConsultantRole)
	assert.Equal(t, models.UnresolvedPlaceholder, enriched[2].ConsultantName)
	assert.Equal(t, "c3", enriched[2].ID)

	assert.Equal(t, "Han", enriched[3].ConsultantName)
}

func TestEnrichMarkerOverridesStaffLookup(t *testing.T) {
	staff := []models.StaffMember{{ID: "t1", Name: "Lee", Role: "teacher"}}
	records := []models.ConsultationRecord{{ID: "c1", StudentID: "s1", CreatedBy: "t1", Content: "[등록자: 김선생]"}}

	enriched := EnrichConsultations(records, nil, staff)
	assert.Equal(t, "김선생", enriched[0].RegistrarName)
}
