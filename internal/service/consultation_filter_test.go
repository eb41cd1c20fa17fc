package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/consultation-api/internal/models"
	appErrors "github.com/noah-isme/consultation-api/pkg/errors"
)

var filterToday = time.Date(2026, 2, 10, 12, 0, 0, 0, time.UTC)

func predicateNames(predicates []RecordPredicate) []string {
	names := make([]string, 0, len(predicates))
	for _, p := range predicates {
		names = append(names, p.Name)
	}
	return names
}

func TestSplitStudentIDIsOnlyPushedPredicate(t *testing.T) {
	query, local := SplitConsultationFilter(models.ConsultationFilter{
		StudentID:      "s1",
		Type:           models.ConsultationTypeParent,
		ConsultantID:   "t1",
		Category:       models.CategoryAcademic,
		Subject:        "수학",
		DateRange:      &models.DateRange{Start: "2026-02-01", End: "2026-02-28"},
		FollowUpStatus: models.FollowUpNeeded,
		SearchQuery:    "midterm",
	}, 200, filterToday)

	assert.Equal(t, []models.EqualityPredicate{{Field: models.FieldStudentID, Value: "s1"}}, query.Equals)
	assert.Empty(t, query.OrderBy)
	assert.Zero(t, query.Limit)
	assert.Equal(t, []string{
		models.FieldType, models.FieldConsultantID, models.FieldCategory, models.FieldSubject,
		"dateRange", "followUpStatus", "search",
	}, predicateNames(local))
}

func TestSplitPushesEqualitiesWithoutStudent(t *testing.T) {
	query, local := SplitConsultationFilter(models.ConsultationFilter{
		Type:      models.ConsultationTypeStudent,
		Category:  models.CategoryBehavior,
		Subject:   "math",
		DateRange: &models.DateRange{Start: "2026-02-01"},
	}, 0, filterToday)

	assert.Equal(t, []models.EqualityPredicate{
		{Field: models.FieldType, Value: "student"},
		{Field: models.FieldCategory, Value: models.CategoryBehavior},
	}, query.Equals)
	assert.Equal(t, []models.AnyOfPredicate{
		{Field: models.FieldSubject, Values: []string{"math", "수학"}, FoldCase: true},
	}, query.AnyOf)
	assert.Equal(t, []models.OrderClause{
		{Field: models.FieldDate, Descending: true},
		{Field: models.FieldCreatedAt, Descending: true},
	}, query.OrderBy)
	assert.Equal(t, DefaultFetchLimit, query.Limit)
	assert.Equal(t, []string{"dateRange"}, predicateNames(local))
}

func TestSplitIgnoresAllFollowUpAndBlankSearch(t *testing.T) {
	_, local := SplitConsultationFilter(models.ConsultationFilter{
		FollowUpStatus: models.FollowUpAll,
		SearchQuery:    "   ",
		DateRange:      &models.DateRange{},
	}, 50, filterToday)
	assert.Empty(t, local)
}

func TestLocalPredicates(t *testing.T) {
	records := []models.ConsultationRecord{
		{ID: "a", StudentID: "s1", StudentName: "Kim Minji", Date: "2026-02-01", Type: models.ConsultationTypeParent, Subject: "수학", Title: "Midterm review"},
		{ID: "b", StudentID: "s1", StudentName: "Kim Minji", Date: "2026-02-05", Type: models.ConsultationTypeStudent, Subject: "math", FollowUpNeeded: true, FollowUpDate: strPtr("2026-02-12")},
		{ID: "c", StudentID: "s1", StudentName: "Kim Minji", Date: "2026-02-07", Type: models.ConsultationTypeStudent, Subject: "english", FollowUpNeeded: true, FollowUpDone: true},
		{ID: "d", StudentID: "s1", StudentName: "Kim Minji", Date: "2026-03-01", Type: models.ConsultationTypeStudent, Subject: "math", FollowUpNeeded: true, FollowUpDate: strPtr("2026-02-01"), Content: "Homework plan"},
		{ID: "e", StudentID: "s1", StudentName: "Kim Minji", Date: "2026-01-30", Type: models.ConsultationTypeStudent, FollowUpNeeded: true},
	}
	run := func(filter models.ConsultationFilter) []string {
		filter.StudentID = "s1"
		_, local := SplitConsultationFilter(filter, 200, filterToday)
		var ids []string
		for _, record := range records {
			if MatchesAll(record, local) {
				ids = append(ids, record.ID)
			}
		}
		return ids
	}

	assert.Equal(t, []string{"a", "b", "d"}, run(models.ConsultationFilter{Subject: "math"}))
	assert.Equal(t, []string{"a"}, run(models.ConsultationFilter{Type: models.ConsultationTypeParent}))
	assert.Equal(t, []string{"a", "b", "c"}, run(models.ConsultationFilter{DateRange: &models.DateRange{Start: "2026-02-01", End: "2026-02-07"}}))
	assert.Equal(t, []string{"b", "d", "e"}, run(models.ConsultationFilter{FollowUpStatus: models.FollowUpNeeded}))
	assert.Equal(t, []string{"c"}, run(models.ConsultationFilter{FollowUpStatus: models.FollowUpDone}))
	assert.Equal(t, []string{"b", "e"}, run(models.ConsultationFilter{FollowUpStatus: models.FollowUpPending}))
	assert.Equal(t, []string{"a"}, run(models.ConsultationFilter{SearchQuery: "MIDTERM"}))
	assert.Equal(t, []string{"d"}, run(models.ConsultationFilter{SearchQuery: "homework"}))
	assert.Len(t, run(models.ConsultationFilter{SearchQuery: "minji"}), 5)
}

func TestValidateConsultationFilter(t *testing.T) {
	err := ValidateConsultationFilter(models.ConsultationFilter{DateRange: &models.DateRange{Start: "2026-03-01", End: "2026-02-01"}})
	require.Error(t, err)
	assert.ErrorIs(t, err, appErrors.ErrInvalidFilterCombination)

	assert.NoError(t, ValidateConsultationFilter(models.ConsultationFilter{DateRange: &models.DateRange{Start: "2026-02-01", End: "2026-02-01"}}))
	assert.NoError(t, ValidateConsultationFilter(models.ConsultationFilter{}))
}

func TestSortConsultations(t *testing.T) {
	records := []models.ConsultationRecord{
		{ID: "old", Date: "2026-01-01", CreatedAt: 5},
		{ID: "same-early", Date: "2026-02-01", CreatedAt: 1},
		{ID: "same-late", Date: "2026-02-01", CreatedAt: 9},
		{ID: "new", Date: "2026-02-03", CreatedAt: 2},
	}
	SortConsultations(records)
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	assert.Equal(t, []string{"new", "same-late", "same-early", "old"}, ids)
}
