package service

import (
	"math"
	"sort"
	"time"

	"github.com/noah-isme/consultation-api/internal/models"
)

const (
	// DefaultMonthlyTarget is the organisation-wide monthly consultation goal split across teachers.
	DefaultMonthlyTarget = 100
	// fallbackTeacherCount divides the monthly target when the directory names no teachers.
	fallbackTeacherCount = 5
)

// AggregateInput carries one analytics pass. Records must already be locally filtered and enriched.
type AggregateInput struct {
	Records       []models.EnrichedConsultation
	DateRange     models.DateRange
	Roster        []models.StudentRosterEntry
	Staff         []models.StaffMember
	Today         time.Time
	MonthlyTarget int
	UrgentDays    int
}

type consultantTally struct {
	id      string
	name    string
	total   int
	math    int
	english int
}

// AggregateConsultations computes every analytics view from one scan of the input records.
// Records missing a required field, or dated outside the range, are excluded from all views;
// malformed ones are counted in MalformedRecords.
func AggregateConsultations(in AggregateInput) models.ConsultationStats {
	monthlyTarget := in.MonthlyTarget
	if monthlyTarget <= 0 {
		monthlyTarget = DefaultMonthlyTarget
	}
	urgentDays := in.UrgentDays
	if urgentDays <= 0 {
		urgentDays = DefaultUrgentDays
	}

	staffByID := make(map[string]models.StaffMember, len(in.Staff))
	var teachers []models.StaffMember
	for _, member := range in.Staff {
		staffByID[member.ID] = member
		if member.IsTeacher() {
			teachers = append(teachers, member)
		}
	}
	teacherIDs := make(map[string]struct{}, len(teachers))
	for _, teacher := range teachers {
		teacherIDs[teacher.ID] = struct{}{}
	}

	stats := models.ConsultationStats{DateRange: in.DateRange}

	daily := make(map[string]*models.DailyConsultationStat)
	categoryCounts := make(map[string]int)
	var categoryOrder []string
	tallies := make(map[string]*consultantTally)
	var tallyOrder []string
	consulted := make(map[string]struct{})
	followUps := make([]models.FollowUpItem, 0)

	for _, record := range in.Records {
		if record.MissingRequiredField() != "" {
			stats.MalformedRecords++
			continue
		}
		if !in.DateRange.Contains(record.Date) {
			continue
		}

		stats.TotalConsultations++
		consulted[record.StudentID] = struct{}{}

		day, ok := daily[record.Date]
		if !ok {
			day = &models.DailyConsultationStat{Date: record.Date}
			daily[record.Date] = day
		}
		if record.Type == models.ConsultationTypeParent {
			day.ParentCount++
			stats.ParentConsultations++
		} else {
			day.StudentCount++
			stats.StudentConsultations++
		}
		day.Total++

		category := record.Category
		if category == "" {
			category = models.CategoryOther
		}
		if _, seen := categoryCounts[category]; !seen {
			categoryOrder = append(categoryOrder, category)
		}
		categoryCounts[category]++

		if record.ConsultantID != "" && eligibleConsultant(record.ConsultantID, teacherIDs) {
			tally, ok := tallies[record.ConsultantID]
			if !ok {
				tally = &consultantTally{id: record.ConsultantID, name: record.ConsultantName}
				tallies[record.ConsultantID] = tally
				tallyOrder = append(tallyOrder, record.ConsultantID)
			}
			tally.total++
			switch record.SubjectKey {
			case models.SubjectMath:
				tally.math++
			case models.SubjectEnglish:
				tally.english++
			}
		}

		if record.FollowUpNeeded {
			if record.FollowUpDone {
				stats.FollowUpDone++
			} else {
				stats.FollowUpNeeded++
			}
			followUps = append(followUps, newFollowUpItem(record.ConsultationRecord, in.Today, urgentDays))
		}
	}

	stats.DailyStats = buildDailyStats(daily)
	stats.CategoryStats = buildCategoryStats(categoryOrder, categoryCounts, stats.TotalConsultations)

	order := tallyOrder
	if len(teachers) > 0 {
		order = make([]string, 0, len(teachers))
		for _, teacher := range teachers {
			order = append(order, teacher.ID)
		}
	}
	stats.StaffPerformances = buildStaffPerformances(order, tallies, staffByID, len(teachers), monthlyTarget)
	stats.StaffSubjectStats = buildStaffSubjectStats(order, tallies, staffByID)
	if len(stats.StaffPerformances) > 0 {
		top := stats.StaffPerformances[0]
		stats.TopPerformer = &top
	}

	stats.FollowUps = buildFollowUpBacklog(followUps)
	stats.StudentsNeedingConsultation, stats.TotalActiveStudents = buildNeedsConsultation(in.Roster, consulted)

	return stats
}

// eligibleConsultant applies the teacher restriction. Without any known teacher every consultant qualifies.
func eligibleConsultant(id string, teacherIDs map[string]struct{}) bool {
	if len(teacherIDs) == 0 {
		return true
	}
	_, ok := teacherIDs[id]
	return ok
}

func buildDailyStats(daily map[string]*models.DailyConsultationStat) []models.DailyConsultationStat {
	result := make([]models.DailyConsultationStat, 0, len(daily))
	for _, day := range daily {
		result = append(result, *day)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Date < result[j].Date })
	return result
}

func buildCategoryStats(order []string, counts map[string]int, total int) []models.CategoryStat {
	result := make([]models.CategoryStat, 0, len(order))
	if total == 0 {
		return result
	}
	for _, category := range order {
		count := counts[category]
		result = append(result, models.CategoryStat{
			Category:   category,
			Count:      count,
			Percentage: roundPercent(count, total),
		})
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].Count > result[j].Count })
	return result
}

func buildStaffPerformances(order []string, tallies map[string]*consultantTally, staff map[string]models.StaffMember, teacherCount, monthlyTarget int) []models.StaffPerformance {
	if teacherCount == 0 {
		teacherCount = fallbackTeacherCount
	}
	target := int(math.Ceil(float64(monthlyTarget) / float64(teacherCount)))

	result := make([]models.StaffPerformance, 0, len(tallies))
	for _, id := range order {
		tally, ok := tallies[id]
		if !ok || tally.total == 0 {
			continue
		}
		percentage := roundPercent(tally.total, target)
		if percentage > 100 {
			percentage = 100
		}
		result = append(result, models.StaffPerformance{
			ID:                id,
			Name:              consultantName(id, tally, staff),
			ConsultationCount: tally.total,
			TargetCount:       target,
			Percentage:        percentage,
		})
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].ConsultationCount > result[j].ConsultationCount })
	return result
}

func buildStaffSubjectStats(order []string, tallies map[string]*consultantTally, staff map[string]models.StaffMember) []models.StaffSubjectStat {
	result := make([]models.StaffSubjectStat, 0, len(order))
	for _, id := range order {
		tally := tallies[id]
		row := models.StaffSubjectStat{ID: id, Name: consultantName(id, tally, staff)}
		if tally != nil {
			row.MathCount = tally.math
			row.EnglishCount = tally.english
		}
		row.TotalCount = row.MathCount + row.EnglishCount
		result = append(result, row)
	}
	sort.SliceStable(result, func(i, j int) bool { return result[i].TotalCount > result[j].TotalCount })
	return result
}

func consultantName(id string, tally *consultantTally, staff map[string]models.StaffMember) string {
	if member, ok := staff[id]; ok && member.Name != "" {
		return member.Name
	}
	if tally != nil && tally.name != "" {
		return tally.name
	}
	return models.UnresolvedPlaceholder
}

func newFollowUpItem(record models.ConsultationRecord, today time.Time, urgentDays int) models.FollowUpItem {
	item := models.FollowUpItem{
		ConsultationID: record.ID,
		StudentID:      record.StudentID,
		StudentName:    record.StudentName,
		ConsultantName: record.ConsultantName,
		Date:           record.Date,
		Urgency:        followUpUrgency(record, today, urgentDays),
	}
	if record.HasFollowUpDate() {
		date := *record.FollowUpDate
		item.FollowUpDate = &date
		if days, err := FollowUpDaysLeft(date, today); err == nil {
			item.DaysLeft = &days
		}
	}
	return item
}

func buildFollowUpBacklog(items []models.FollowUpItem) models.FollowUpBacklog {
	sort.SliceStable(items, func(i, j int) bool {
		a, b := items[i].FollowUpDate, items[j].FollowUpDate
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return *a < *b
		}
	})
	backlog := models.FollowUpBacklog{Items: items}
	for _, item := range items {
		switch item.Urgency {
		case models.UrgencyUrgent:
			backlog.Urgent++
		case models.UrgencyPending:
			backlog.Pending++
		case models.UrgencyDone:
			backlog.Done++
		}
	}
	return backlog
}

func buildNeedsConsultation(roster []models.StudentRosterEntry, consulted map[string]struct{}) ([]models.StudentNeedingConsultation, int) {
	result := make([]models.StudentNeedingConsultation, 0)
	for _, student := range roster {
		subjects := student.ConsultationSubjects()
		if len(subjects) == 0 {
			continue
		}
		if _, ok := consulted[student.ID]; ok {
			continue
		}
		name := student.Name
		if name == "" {
			name = models.UnresolvedPlaceholder
		}
		for _, subject := range subjects {
			result = append(result, models.StudentNeedingConsultation{
				StudentID:   student.ID,
				StudentName: name,
				Subject:     subject,
			})
		}
	}
	sortNeedsConsultation(result)
	return result, len(roster)
}

// sortNeedsConsultation puts students without history first, then oldest last consultation, then name.
func sortNeedsConsultation(entries []models.StudentNeedingConsultation) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i].LastConsultationDate, entries[j].LastConsultationDate
		switch {
		case a == nil && b != nil:
			return true
		case a != nil && b == nil:
			return false
		case a != nil && b != nil && *a != *b:
			return *a < *b
		default:
			return entries[i].StudentName < entries[j].StudentName
		}
	})
}

// WithLastConsultationDates returns a copy of stats whose needs-consultation entries carry the
// supplied last consultation dates, re-sorted. stats is left untouched.
func WithLastConsultationDates(stats models.ConsultationStats, dates map[string]string) models.ConsultationStats {
	entries := make([]models.StudentNeedingConsultation, len(stats.StudentsNeedingConsultation))
	for i, entry := range stats.StudentsNeedingConsultation {
		if date, ok := dates[entry.StudentID]; ok && date != "" {
			d := date
			entry.LastConsultationDate = &d
		}
		entries[i] = entry
	}
	sortNeedsConsultation(entries)
	stats.StudentsNeedingConsultation = entries
	return stats
}

func roundPercent(count, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(float64(count) / float64(total) * 100))
}
