package service

import (
	"sort"
	"strings"
	"time"

	"github.com/noah-isme/consultation-api/internal/models"
	appErrors "github.com/noah-isme/consultation-api/pkg/errors"
)

// DefaultFetchLimit caps remote fetches that are not narrowed to a single student.
const DefaultFetchLimit = 200

// RecordPredicate is a filter evaluated in memory after the remote fetch.
type RecordPredicate struct {
	Name  string
	Match func(models.ConsultationRecord) bool
}

// ValidateConsultationFilter rejects filters that can never match.
func ValidateConsultationFilter(filter models.ConsultationFilter) error {
	if filter.DateRange != nil && filter.DateRange.Empty() {
		return appErrors.Clone(appErrors.ErrInvalidFilterCombination, "date range start is after end")
	}
	return nil
}

// SplitConsultationFilter divides filter into the remote query and the local predicates.
//
// A studentId is pushed alone and every other dimension is evaluated locally; without one,
// type, consultantId and category become equality predicates, subject is pushed as the set of its
// alias tokens, and the fetch is ordered by recency and capped at fetchLimit. The date range, follow-up status and search text are always
// local. today anchors the "pending" follow-up status.
func SplitConsultationFilter(filter models.ConsultationFilter, fetchLimit int, today time.Time) (models.ConsultationQuery, []RecordPredicate) {
	var (
		query models.ConsultationQuery
		local []RecordPredicate
	)

	if filter.StudentID != "" {
		query.Equals = []models.EqualityPredicate{{Field: models.FieldStudentID, Value: filter.StudentID}}
		if filter.Type != "" {
			local = append(local, typePredicate(filter.Type))
		}
		if filter.ConsultantID != "" {
			local = append(local, consultantPredicate(filter.ConsultantID))
		}
		if filter.Category != "" {
			local = append(local, categoryPredicate(filter.Category))
		}
		if filter.Subject != "" {
			local = append(local, subjectPredicate(filter.Subject))
		}
	} else {
		if filter.Type != "" {
			query.Equals = append(query.Equals, models.EqualityPredicate{Field: models.FieldType, Value: string(filter.Type)})
		}
		if filter.ConsultantID != "" {
			query.Equals = append(query.Equals, models.EqualityPredicate{Field: models.FieldConsultantID, Value: filter.ConsultantID})
		}
		if filter.Category != "" {
			query.Equals = append(query.Equals, models.EqualityPredicate{Field: models.FieldCategory, Value: filter.Category})
		}
		if tokens := models.SubjectTokens(filter.Subject); len(tokens) > 0 {
			query.AnyOf = append(query.AnyOf, models.AnyOfPredicate{Field: models.FieldSubject, Values: tokens, FoldCase: true})
		}
		if fetchLimit <= 0 {
			fetchLimit = DefaultFetchLimit
		}
		query.OrderBy = []models.OrderClause{
			{Field: models.FieldDate, Descending: true},
			{Field: models.FieldCreatedAt, Descending: true},
		}
		query.Limit = fetchLimit
	}

	if filter.DateRange != nil && (filter.DateRange.Start != "" || filter.DateRange.End != "") {
		local = append(local, dateRangePredicate(*filter.DateRange))
	}
	if filter.FollowUpStatus != "" && filter.FollowUpStatus != models.FollowUpAll {
		local = append(local, followUpPredicate(filter.FollowUpStatus, today))
	}
	if q := strings.TrimSpace(filter.SearchQuery); q != "" {
		local = append(local, searchPredicate(q))
	}

	return query, local
}

// MatchesAll reports whether record satisfies every predicate.
func MatchesAll(record models.ConsultationRecord, predicates []RecordPredicate) bool {
	for _, predicate := range predicates {
		if !predicate.Match(record) {
			return false
		}
	}
	return true
}

// SortConsultations orders records newest first by date, then by creation time.
func SortConsultations(records []models.ConsultationRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date > records[j].Date
		}
		return records[i].CreatedAt > records[j].CreatedAt
	})
}

func typePredicate(want models.ConsultationType) RecordPredicate {
	return RecordPredicate{Name: models.FieldType, Match: func(r models.ConsultationRecord) bool {
		return r.Type == want
	}}
}

func consultantPredicate(want string) RecordPredicate {
	return RecordPredicate{Name: models.FieldConsultantID, Match: func(r models.ConsultationRecord) bool {
		return r.ConsultantID == want
	}}
}

func categoryPredicate(want string) RecordPredicate {
	return RecordPredicate{Name: models.FieldCategory, Match: func(r models.ConsultationRecord) bool {
		return r.Category == want
	}}
}

func subjectPredicate(want string) RecordPredicate {
	key := models.NormalizeSubject(want)
	return RecordPredicate{Name: models.FieldSubject, Match: func(r models.ConsultationRecord) bool {
		return models.NormalizeSubject(r.Subject) == key
	}}
}

func dateRangePredicate(r models.DateRange) RecordPredicate {
	return RecordPredicate{Name: "dateRange", Match: func(rec models.ConsultationRecord) bool {
		return r.Contains(rec.Date)
	}}
}

func followUpPredicate(status models.FollowUpStatus, today time.Time) RecordPredicate {
	todayKey := civilDay(today).Format(models.DateLayout)
	return RecordPredicate{Name: "followUpStatus", Match: func(r models.ConsultationRecord) bool {
		switch status {
		case models.FollowUpNeeded:
			return r.FollowUpNeeded && !r.FollowUpDone
		case models.FollowUpDone:
			return r.FollowUpNeeded && r.FollowUpDone
		case models.FollowUpPending:
			if !r.FollowUpNeeded || r.FollowUpDone {
				return false
			}
			return !r.HasFollowUpDate() || *r.FollowUpDate >= todayKey
		default:
			return true
		}
	}}
}

func searchPredicate(query string) RecordPredicate {
	needle := strings.ToLower(query)
	return RecordPredicate{Name: "search", Match: func(r models.ConsultationRecord) bool {
		return strings.Contains(strings.ToLower(r.StudentName), needle) ||
			strings.Contains(strings.ToLower(r.Title), needle) ||
			strings.Contains(strings.ToLower(r.Content), needle)
	}}
}
