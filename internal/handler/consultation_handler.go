package handler

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/noah-isme/consultation-api/internal/dto"
	"github.com/noah-isme/consultation-api/internal/middleware"
	"github.com/noah-isme/consultation-api/internal/models"
	"github.com/noah-isme/consultation-api/internal/service"
	appErrors "github.com/noah-isme/consultation-api/pkg/errors"
	"github.com/noah-isme/consultation-api/pkg/response"
)

type consultationService interface {
	Today() time.Time
	ParseToday(raw string) (time.Time, error)
	GetConsultations(ctx context.Context, filter models.ConsultationFilter) ([]models.EnrichedConsultation, error)
	GetPaginatedConsultations(ctx context.Context, filter models.ConsultationFilter, page, pageSize int) (models.PageResult[models.EnrichedConsultation], error)
	GetStats(ctx context.Context, filter models.ConsultationFilter, opts service.StatsOptions) (models.ConsultationStats, bool, error)
	GetConsultation(ctx context.Context, id, consultantScope string) (*models.EnrichedConsultation, error)
	GetConsultationFollowUp(ctx context.Context, id, consultantScope string, today time.Time) (*service.FollowUpStatus, error)
	GetFollowUpDaysLeft(date string, today time.Time) (int, error)
}

type consultationExporter interface {
	Export(ctx context.Context, filter models.ConsultationFilter, format service.ExportFormat, today time.Time) (*service.ExportFile, error)
}

// ConsultationHandler exposes consultation retrieval, statistics and export endpoints.
type ConsultationHandler struct {
	consultations consultationService
	exporter      consultationExporter
	validate      *validator.Validate
}

// NewConsultationHandler constructs the consultation handler.
func NewConsultationHandler(consultations consultationService, exporter consultationExporter, validate *validator.Validate) *ConsultationHandler {
	if validate == nil {
		validate = validator.New()
	}
	return &ConsultationHandler{consultations: consultations, exporter: exporter, validate: validate}
}

// List godoc
// @Summary List consultations
// @Tags Consultations
// @Produce json
// @Param type query string false "parent or student"
// @Param studentId query string false "Student ID"
// @Param consultantId query string false "Consultant ID"
// @Param category query string false "Category"
// @Param subject query string false "Subject"
// @Param startDate query string false "YYYY-MM-DD"
// @Param endDate query string false "YYYY-MM-DD"
// @Param preset query string false "Date preset"
// @Param followUpStatus query string false "all, needed, done or pending"
// @Param search query string false "Matches student name, title and content"
// @Success 200 {object} response.Envelope
// @Failure 409 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Router /consultations [get]
func (h *ConsultationHandler) List(c *gin.Context) {
	filter, err := h.parseFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	records, err := h.consultations.GetConsultations(c.Request.Context(), filter)
	if err != nil {
		response.Error(c, err)
		return
	}
	meta := middleware.ExtractMeta(c)
	if meta == nil {
		meta = make(map[string]interface{})
	}
	meta["count"] = len(records)
	response.JSON(c, http.StatusOK, records, nil, meta)
}

// Page godoc
// @Summary List consultations one page at a time
// @Tags Consultations
// @Produce json
// @Param page query int false "Page number"
// @Param pageSize query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /consultations/paged [get]
func (h *ConsultationHandler) Page(c *gin.Context) {
	filter, err := h.parseFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var query dto.PageQuery
	if err := h.bind(c, &query, "invalid paging parameters"); err != nil {
		response.Error(c, err)
		return
	}
	page := query.Page
	if page == 0 {
		page = 1
	}
	result, err := h.consultations.GetPaginatedConsultations(c.Request.Context(), filter, page, query.PageSize)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result.Items, &result.Pagination, middleware.ExtractMeta(c))
}

// Stats godoc
// @Summary Aggregate consultation statistics
// @Tags Consultations
// @Produce json
// @Param preset query string false "today, week, thisWeek, thisMonth, lastMonth, last3Months or all"
// @Param refresh query bool false "Recompute instead of reading the stats cache"
// @Param includeLastConsultation query bool false "Attach last consultation dates"
// @Success 200 {object} response.Envelope
// @Router /consultations/stats [get]
func (h *ConsultationHandler) Stats(c *gin.Context) {
	filter, err := h.parseFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var query dto.StatsQuery
	if err := h.bind(c, &query, "invalid stats parameters"); err != nil {
		response.Error(c, err)
		return
	}
	opts := service.StatsOptions{
		Refresh: query.Refresh,
		// Only unscoped callers may drop every cached stats entry.
		InvalidateAll: query.Refresh && middleware.ConsultantScope(c) == "",
	}
	start := time.Now()
	stats, cacheHit, err := h.consultations.GetStats(c.Request.Context(), filter, opts)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	if stats.Truncated {
		middleware.SetMeta(c, "truncated", true)
	}
	meta := middleware.ExtractMeta(c)
	meta["processing_time_ms"] = time.Since(start).Milliseconds()
	response.JSON(c, http.StatusOK, stats, nil, meta)
}

// Export godoc
// @Summary Export consultations
// @Tags Consultations
// @Produce octet-stream
// @Param format query string true "csv or pdf"
// @Success 200 {file} binary
// @Router /consultations/export [get]
func (h *ConsultationHandler) Export(c *gin.Context) {
	if h.exporter == nil {
		response.Error(c, appErrors.ErrInternal)
		return
	}
	filter, err := h.parseFilter(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var query dto.ExportQuery
	if err := h.bind(c, &query, "format must be csv or pdf"); err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exporter.Export(c.Request.Context(), filter, service.ExportFormat(query.Format), h.consultations.Today())
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("X-Export-Rows", strconv.Itoa(file.Rows))
	response.Attachment(c, file.Filename, file.ContentType, file.Payload)
}

// Get godoc
// @Summary Get a consultation
// @Tags Consultations
// @Produce json
// @Param id path string true "Consultation ID"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /consultations/{id} [get]
func (h *ConsultationHandler) Get(c *gin.Context) {
	record, err := h.consultations.GetConsultation(c.Request.Context(), c.Param("id"), middleware.ConsultantScope(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, record, nil)
}

// Urgency godoc
// @Summary Follow-up urgency of a consultation
// @Tags Consultations
// @Produce json
// @Param id path string true "Consultation ID"
// @Param today query string false "YYYY-MM-DD override"
// @Success 200 {object} response.Envelope
// @Router /consultations/{id}/urgency [get]
func (h *ConsultationHandler) Urgency(c *gin.Context) {
	today, err := h.consultations.ParseToday(c.Query("today"))
	if err != nil {
		response.Error(c, err)
		return
	}
	status, err := h.consultations.GetConsultationFollowUp(c.Request.Context(), c.Param("id"), middleware.ConsultantScope(c), today)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, status, nil)
}

// DaysLeft godoc
// @Summary Whole days until a follow-up date
// @Tags Consultations
// @Produce json
// @Param date query string true "YYYY-MM-DD"
// @Param today query string false "YYYY-MM-DD override"
// @Success 200 {object} response.Envelope
// @Router /consultations/follow-ups/days-left [get]
func (h *ConsultationHandler) DaysLeft(c *gin.Context) {
	var query dto.DaysLeftQuery
	if err := h.bind(c, &query, "date must be YYYY-MM-DD"); err != nil {
		response.Error(c, err)
		return
	}
	today, err := h.consultations.ParseToday(query.Today)
	if err != nil {
		response.Error(c, err)
		return
	}
	days, err := h.consultations.GetFollowUpDaysLeft(query.Date, today)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, dto.DaysLeftResponse{
		Date:     query.Date,
		Today:    today.Format(models.DateLayout),
		DaysLeft: days,
	}, nil)
}

// parseFilter binds the shared filter parameters, resolves presets and applies the caller's scope.
func (h *ConsultationHandler) parseFilter(c *gin.Context) (models.ConsultationFilter, error) {
	var query dto.ConsultationQuery
	if err := h.bind(c, &query, "invalid consultation filter"); err != nil {
		return models.ConsultationFilter{}, err
	}
	filter := query.Filter()
	if !query.HasExplicitRange() && query.Preset != "" {
		dateRange, err := service.ResolveDatePreset(query.Preset, h.consultations.Today())
		if err != nil {
			return models.ConsultationFilter{}, err
		}
		if dateRange == nil {
			// Unbounded, so stats does not fall back to the current month.
			dateRange = &models.DateRange{}
		}
		filter.DateRange = dateRange
	}
	if scope := middleware.ConsultantScope(c); scope != "" {
		filter.ConsultantID = scope
	}
	return filter, nil
}

func (h *ConsultationHandler) bind(c *gin.Context, dest interface{}, message string) error {
	if err := c.ShouldBindQuery(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	if err := h.validate.Struct(dest); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, message)
	}
	return nil
}
