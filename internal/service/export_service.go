package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/consultation-api/internal/models"
	appErrors "github.com/noah-isme/consultation-api/pkg/errors"
	"github.com/noah-isme/consultation-api/pkg/export"
)

// ExportFormat selects the rendered export encoding.
type ExportFormat string

const (
	ExportFormatCSV ExportFormat = "csv"
	ExportFormatPDF ExportFormat = "pdf"
)

type consultationLister interface {
	GetConsultations(ctx context.Context, filter models.ConsultationFilter) ([]models.EnrichedConsultation, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title, subtitle string) ([]byte, error)
}

// ExportFile is a rendered export ready to stream to the caller.
type ExportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
	Rows        int
}

var exportHeaders = []string{
	"Date", "Time", "Type", "Category", "Subject", "Student", "School", "Grade",
	"Consultant", "Registrar", "Title", "Follow-up", "Follow-up Date", "Urgency",
}

// ExportService renders filtered consultation lists as CSV or PDF.
type ExportService struct {
	consultations consultationLister
	csv           csvRenderer
	pdf           pdfRenderer
	logger        *zap.Logger
	now           func() time.Time
	urgentDays    int
}

// NewExportService constructs an ExportService. Nil renderers fall back to the package defaults.
func NewExportService(consultations consultationLister, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		consultations: consultations,
		csv:           csv,
		pdf:           pdf,
		logger:        logger,
		now:           time.Now,
		urgentDays:    DefaultUrgentDays,
	}
}

// Export renders every consultation matching filter. today drives the urgency column.
func (s *ExportService) Export(ctx context.Context, filter models.ConsultationFilter, format ExportFormat, today time.Time) (*ExportFile, error) {
	if format != ExportFormatCSV && format != ExportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	records, err := s.consultations.GetConsultations(ctx, filter)
	if err != nil {
		return nil, err
	}

	dataset := s.buildDataset(records, today)
	var (
		payload     []byte
		contentType string
	)
	switch format {
	case ExportFormatCSV:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv; charset=utf-8"
	case ExportFormatPDF:
		payload, err = s.pdf.Render(dataset, "Consultation Records", describeFilter(filter))
		contentType = "application/pdf"
	}
	if err != nil {
		s.logger.Error("render consultation export", zap.String("format", string(format)), zap.Error(err))
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}

	return &ExportFile{
		Filename:    fmt.Sprintf("consultations_%s.%s", s.now().UTC().Format("20060102_150405"), format),
		ContentType: contentType,
		Payload:     payload,
		Rows:        len(records),
	}, nil
}

func (s *ExportService) buildDataset(records []models.EnrichedConsultation, today time.Time) export.Dataset {
	rows := make([]map[string]string, 0, len(records))
	for _, record := range records {
		followUp := "-"
		if record.FollowUpNeeded {
			followUp = "open"
			if record.FollowUpDone {
				followUp = "done"
			}
		}
		urgency := followUpUrgency(record.ConsultationRecord, today, s.urgentDays)
		rows = append(rows, map[string]string{
			"Date":           record.Date,
			"Time":           deref(record.Time),
			"Type":           string(record.Type),
			"Category":       record.Category,
			"Subject":        record.SubjectKey,
			"Student":        record.StudentName,
			"School":         record.School,
			"Grade":          record.Grade,
			"Consultant":     record.ConsultantName,
			"Registrar":      record.RegistrarName,
			"Title":          record.Title,
			"Follow-up":      followUp,
			"Follow-up Date": deref(record.FollowUpDate),
			"Urgency":        string(urgency),
		})
	}
	return export.Dataset{Headers: exportHeaders, Rows: rows}
}

func describeFilter(filter models.ConsultationFilter) string {
	description := "All records"
	if filter.DateRange != nil {
		description = filter.DateRange.Start + " ~ " + filter.DateRange.End
	}
	if filter.Type != "" {
		description += " | type " + string(filter.Type)
	}
	if filter.Category != "" {
		description += " | category " + filter.Category
	}
	if filter.Subject != "" {
		description += " | subject " + filter.Subject
	}
	if filter.FollowUpStatus != "" && filter.FollowUpStatus != models.FollowUpAll {
		description += " | follow-up " + string(filter.FollowUpStatus)
	}
	return description
}

func deref(ptr *string) string {
	if ptr == nil {
		return ""
	}
	return *ptr
}
