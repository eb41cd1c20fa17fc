package service

import (
	"fmt"
	"time"

	"github.com/noah-isme/consultation-api/internal/models"
)

// DefaultUrgentDays is the follow-up horizon, in whole days, at or below which an open follow-up is urgent.
const DefaultUrgentDays = 3

// civilDay truncates t to midnight UTC of its own calendar day so day arithmetic ignores offsets and DST.
func civilDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// FollowUpDaysLeft returns the whole days from today until date. Overdue dates yield negative values.
func FollowUpDaysLeft(date string, today time.Time) (int, error) {
	due, err := time.Parse(models.DateLayout, date)
	if err != nil {
		return 0, fmt.Errorf("parse follow-up date %q: %w", date, err)
	}
	return int(due.Sub(civilDay(today)).Hours() / 24), nil
}

// FollowUpUrgency classifies a record's follow-up obligation relative to today using DefaultUrgentDays.
func FollowUpUrgency(record models.ConsultationRecord, today time.Time) models.Urgency {
	return followUpUrgency(record, today, DefaultUrgentDays)
}

func followUpUrgency(record models.ConsultationRecord, today time.Time, urgentDays int) models.Urgency {
	if !record.FollowUpNeeded {
		return models.UrgencyNone
	}
	if record.FollowUpDone {
		return models.UrgencyDone
	}
	if !record.HasFollowUpDate() {
		return models.UrgencyPending
	}
	days, err := FollowUpDaysLeft(*record.FollowUpDate, today)
	if err != nil {
		return models.UrgencyPending
	}
	if days <= urgentDays {
		return models.UrgencyUrgent
	}
	return models.UrgencyPending
}
