package service

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/noah-isme/consultation-api/internal/models"
	appErrors "github.com/noah-isme/consultation-api/pkg/errors"
	"github.com/noah-isme/consultation-api/pkg/middleware/requestid"
)

// ConsultationStore is the read-only record store contract.
type ConsultationStore interface {
	Query(ctx context.Context, q models.ConsultationQuery) ([]models.ConsultationRecord, error)
	Get(ctx context.Context, id string) (*models.ConsultationRecord, error)
	LastConsultationDates(ctx context.Context, studentIDs []string) (map[string]string, error)
}

// RosterProvider returns a read-only snapshot of active students.
type RosterProvider interface {
	ListActiveStudents(ctx context.Context) ([]models.StudentRosterEntry, error)
}

// StaffProvider returns a read-only snapshot of the staff directory.
type StaffProvider interface {
	ListStaff(ctx context.Context) ([]models.StaffMember, error)
}

// Views sequenced independently per client session.
const (
	ViewList  = "list"
	ViewPage  = "page"
	ViewStats = "stats"
)

const statsCachePrefix = "stats"

// cacheKeyEscaper keeps key parts free of separators and glob metacharacters used by invalidation.
var cacheKeyEscaper = strings.NewReplacer(":", "|", "*", "+", "?", "+", "[", "(", "]", ")")

// ConsultationServiceConfig tunes retrieval limits, paging and stats caching.
type ConsultationServiceConfig struct {
	FetchLimit      int
	DefaultPageSize int
	MaxPageSize     int
	MonthlyTarget   int
	UrgentDays      int
	StatsCacheTTL   time.Duration
	Location        *time.Location
}

// ConsultationServiceParams groups constructor dependencies.
type ConsultationServiceParams struct {
	Store     ConsultationStore
	Roster    RosterProvider
	Staff     StaffProvider
	Cache     *CacheService
	Metrics   *MetricsService
	Sequencer *RequestSequencer
	Logger    *zap.Logger
	Config    ConsultationServiceConfig
	Now       func() time.Time
}

// ConsultationService is the consultation analytics and retrieval engine.
type ConsultationService struct {
	store     ConsultationStore
	roster    RosterProvider
	staff     StaffProvider
	cache     *CacheService
	metrics   *MetricsService
	sequencer *RequestSequencer
	logger    *zap.Logger
	cfg       ConsultationServiceConfig
	now       func() time.Time
	fetches   singleflight.Group
}

// StatsOptions controls cache behaviour for GetStats. Refresh drops only the entry for the
// requested filter unless InvalidateAll is set.
type StatsOptions struct {
	Refresh       bool
	InvalidateAll bool
}

// FollowUpStatus is the urgency view of a single consultation.
type FollowUpStatus struct {
	ConsultationID string         `json:"consultationId"`
	Today          string         `json:"today"`
	Urgency        models.Urgency `json:"urgency"`
	DaysLeft       *int           `json:"daysLeft,omitempty"`
}

// NewConsultationService constructs a ConsultationService with sane defaults.
func NewConsultationService(params ConsultationServiceParams) *ConsultationService {
	cfg := params.Config
	if cfg.FetchLimit <= 0 {
		cfg.FetchLimit = DefaultFetchLimit
	}
	if cfg.DefaultPageSize <= 0 {
		cfg.DefaultPageSize = DefaultPageSize
	}
	if cfg.MaxPageSize <= 0 {
		cfg.MaxPageSize = 100
	}
	if cfg.DefaultPageSize > cfg.MaxPageSize {
		cfg.DefaultPageSize = cfg.MaxPageSize
	}
	if cfg.MonthlyTarget <= 0 {
		cfg.MonthlyTarget = DefaultMonthlyTarget
	}
	if cfg.UrgentDays <= 0 {
		cfg.UrgentDays = DefaultUrgentDays
	}
	if cfg.StatsCacheTTL <= 0 {
		cfg.StatsCacheTTL = 5 * time.Minute
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	sequencer := params.Sequencer
	if sequencer == nil {
		sequencer = NewRequestSequencer()
	}
	return &ConsultationService{
		store:     params.Store,
		roster:    params.Roster,
		staff:     params.Staff,
		cache:     params.Cache,
		metrics:   params.Metrics,
		sequencer: sequencer,
		logger:    logger,
		cfg:       cfg,
		now:       now,
	}
}

// Today returns the current instant in the configured timezone.
func (s *ConsultationService) Today() time.Time {
	return s.now().In(s.cfg.Location)
}

// ParseToday resolves an optional YYYY-MM-DD override, falling back to the service clock.
func (s *ConsultationService) ParseToday(raw string) (time.Time, error) {
	if raw == "" {
		return s.Today(), nil
	}
	t, err := time.ParseInLocation(models.DateLayout, raw, s.cfg.Location)
	if err != nil {
		return time.Time{}, appErrors.Clone(appErrors.ErrValidation, "today must be YYYY-MM-DD")
	}
	return t, nil
}

// GetConsultations returns the locally filtered, enriched records sorted newest first.
func (s *ConsultationService) GetConsultations(ctx context.Context, filter models.ConsultationFilter) ([]models.EnrichedConsultation, error) {
	ticket := s.begin(ctx, ViewList)
	defer s.sequencer.Finish(ticket)

	enriched, err := s.loadEnriched(ctx, filter, ViewList)
	if err != nil {
		return nil, err
	}
	if err := s.ensureCurrent(ticket, ViewList); err != nil {
		return nil, err
	}
	return enriched, nil
}

// GetPaginatedConsultations returns one page of GetConsultations. pageSize <= 0 selects the default
// and larger sizes are capped.
func (s *ConsultationService) GetPaginatedConsultations(ctx context.Context, filter models.ConsultationFilter, page, pageSize int) (models.PageResult[models.EnrichedConsultation], error) {
	ticket := s.begin(ctx, ViewPage)
	defer s.sequencer.Finish(ticket)

	enriched, err := s.loadEnriched(ctx, filter, ViewPage)
	if err != nil {
		return models.PageResult[models.EnrichedConsultation]{}, err
	}
	if err := s.ensureCurrent(ticket, ViewPage); err != nil {
		return models.PageResult[models.EnrichedConsultation]{}, err
	}
	return Paginate(enriched, page, s.clampPageSize(pageSize)), nil
}

// GetStats aggregates the filtered set. A nil date range selects the current month. The boolean
// reports whether the result came from cache.
func (s *ConsultationService) GetStats(ctx context.Context, filter models.ConsultationFilter, opts StatsOptions) (models.ConsultationStats, bool, error) {
	ticket := s.begin(ctx, ViewStats)
	defer s.sequencer.Finish(ticket)

	today := s.Today()
	if filter.DateRange == nil {
		filter.DateRange, _ = ResolveDatePreset(PresetThisMonth, today)
	}

	cacheKey := statsCacheKey(filter, today)
	if opts.Refresh {
		var err error
		if opts.InvalidateAll {
			err = s.cache.Invalidate(ctx, statsCachePrefix+":*")
		} else {
			err = s.cache.Delete(ctx, cacheKey)
		}
		if err != nil {
			s.logger.Warn("stats cache refresh failed", zap.Bool("all", opts.InvalidateAll), zap.Error(err))
		}
	} else {
		var cached models.ConsultationStats
		hit, err := s.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			s.logger.Warn("stats cache read failed", zap.String("key", cacheKey), zap.Error(err))
		}
		if hit {
			if err := s.ensureCurrent(ticket, ViewStats); err != nil {
				return models.ConsultationStats{}, false, err
			}
			return cached, true, nil
		}
	}

	loaded, err := s.load(ctx, filter, today, ViewStats)
	if err != nil {
		return models.ConsultationStats{}, false, err
	}
	roster, staff, err := s.snapshots(ctx)
	if err != nil {
		return models.ConsultationStats{}, false, err
	}

	stats := AggregateConsultations(AggregateInput{
		Records:       EnrichConsultations(loaded.records, roster, staff),
		DateRange:     *filter.DateRange,
		Roster:        roster,
		Staff:         staff,
		Today:         today,
		MonthlyTarget: s.cfg.MonthlyTarget,
		UrgentDays:    s.cfg.UrgentDays,
	})
	stats.MalformedRecords += loaded.malformed
	stats.Truncated = loaded.truncated

	if filter.IncludeLastConsultation && len(stats.StudentsNeedingConsultation) > 0 {
		stats = s.attachLastConsultationDates(ctx, stats)
	}

	if err := s.cache.Set(ctx, cacheKey, stats, s.cfg.StatsCacheTTL); err != nil {
		s.logger.Warn("stats cache write failed", zap.String("key", cacheKey), zap.Error(err))
	}

	if err := s.ensureCurrent(ticket, ViewStats); err != nil {
		return models.ConsultationStats{}, false, err
	}
	return stats, false, nil
}

// GetConsultation returns one enriched consultation. A non-empty consultantScope hides records
// owned by other consultants.
func (s *ConsultationService) GetConsultation(ctx context.Context, id, consultantScope string) (*models.EnrichedConsultation, error) {
	record, err := s.getRecord(ctx, id, consultantScope)
	if err != nil {
		return nil, err
	}
	roster, staff, err := s.snapshots(ctx)
	if err != nil {
		return nil, err
	}
	enriched := EnrichConsultations([]models.ConsultationRecord{*record}, roster, staff)
	return &enriched[0], nil
}

// GetFollowUpUrgency classifies record relative to today with the configured urgency horizon.
func (s *ConsultationService) GetFollowUpUrgency(record models.ConsultationRecord, today time.Time) models.Urgency {
	return followUpUrgency(record, today, s.cfg.UrgentDays)
}

// GetFollowUpDaysLeft returns whole days from today until date.
func (s *ConsultationService) GetFollowUpDaysLeft(date string, today time.Time) (int, error) {
	days, err := FollowUpDaysLeft(date, today)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "date must be YYYY-MM-DD")
	}
	return days, nil
}

// GetConsultationFollowUp loads a consultation and reports its follow-up urgency relative to today.
func (s *ConsultationService) GetConsultationFollowUp(ctx context.Context, id, consultantScope string, today time.Time) (*FollowUpStatus, error) {
	record, err := s.getRecord(ctx, id, consultantScope)
	if err != nil {
		return nil, err
	}
	status := &FollowUpStatus{
		ConsultationID: record.ID,
		Today:          civilDay(today).Format(models.DateLayout),
		Urgency:        s.GetFollowUpUrgency(*record, today),
	}
	if record.FollowUpNeeded && record.HasFollowUpDate() {
		if days, err := FollowUpDaysLeft(*record.FollowUpDate, today); err == nil {
			status.DaysLeft = &days
		}
	}
	return status, nil
}

func (s *ConsultationService) getRecord(ctx context.Context, id, consultantScope string) (*models.ConsultationRecord, error) {
	if strings.TrimSpace(id) == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "id is required")
	}
	start := time.Now()
	record, err := s.store.Get(ctx, id)
	s.metrics.ObserveStoreQuery("consultation_get", time.Since(start), ignoreNotFound(err))
	if err != nil {
		if errors.Is(err, appErrors.ErrNotFound) {
			return nil, err
		}
		return nil, storeUnavailable(err)
	}
	if field := record.MissingRequiredField(); field != "" {
		s.logMalformed(*record, field)
		s.metrics.RecordMalformedRecords(1)
		return nil, appErrors.Clone(appErrors.ErrNotFound, "consultation not found")
	}
	if consultantScope != "" && record.ConsultantID != consultantScope {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "consultation not found")
	}
	return record, nil
}

func (s *ConsultationService) loadEnriched(ctx context.Context, filter models.ConsultationFilter, view string) ([]models.EnrichedConsultation, error) {
	loaded, err := s.load(ctx, filter, s.Today(), view)
	if err != nil {
		return nil, err
	}
	records := loaded.records
	if len(records) == 0 {
		return []models.EnrichedConsultation{}, nil
	}
	roster, staff, err := s.snapshots(ctx)
	if err != nil {
		return nil, err
	}
	return EnrichConsultations(records, roster, staff), nil
}

type loadResult struct {
	records   []models.ConsultationRecord
	malformed int
	// truncated reports that the capped fetch came back full, so records older than the newest
	// fetchLimit may have been cut before local filtering.
	truncated bool
}

// load fetches and locally filters records. Filters that can never match yield an empty set.
func (s *ConsultationService) load(ctx context.Context, filter models.ConsultationFilter, today time.Time, view string) (loadResult, error) {
	if err := ValidateConsultationFilter(filter); err != nil {
		if errors.Is(err, appErrors.ErrInvalidFilterCombination) {
			s.logger.Debug("filter can never match", zap.Error(err))
			return loadResult{records: []models.ConsultationRecord{}}, nil
		}
		return loadResult{}, err
	}

	query, local := SplitConsultationFilter(filter, s.cfg.FetchLimit, today)
	fetched, err := s.fetch(ctx, query)
	if err != nil {
		return loadResult{}, err
	}
	truncated := query.Limit > 0 && len(fetched) >= query.Limit
	if truncated {
		s.metrics.RecordTruncatedFetch(view)
		s.logger.Warn("consultation fetch reached its cap",
			zap.String("view", view),
			zap.Int("limit", query.Limit),
			zap.String("request_id", requestid.FromContext(ctx)))
	}

	records := make([]models.ConsultationRecord, 0, len(fetched))
	malformed := 0
	for _, record := range fetched {
		if field := record.MissingRequiredField(); field != "" {
			s.logMalformed(record, field)
			malformed++
			continue
		}
		if MatchesAll(record, local) {
			records = append(records, record)
		}
	}
	s.metrics.RecordMalformedRecords(malformed)
	SortConsultations(records)
	return loadResult{records: records, malformed: malformed, truncated: truncated}, nil
}

// fetch coalesces identical concurrent store queries. Every caller receives its own copy.
func (s *ConsultationService) fetch(ctx context.Context, query models.ConsultationQuery) ([]models.ConsultationRecord, error) {
	value, err, shared := s.fetches.Do(queryKey(query), func() (interface{}, error) {
		start := time.Now()
		records, err := s.store.Query(ctx, query)
		s.metrics.ObserveStoreQuery("consultation_query", time.Since(start), err)
		if err != nil {
			return nil, err
		}
		s.metrics.ObserveFetchedRecords(len(records))
		return records, nil
	})
	if shared {
		s.metrics.RecordCoalescedFetch()
	}
	if err != nil {
		s.logger.Error("consultation fetch failed", zap.String("request_id", requestid.FromContext(ctx)), zap.Error(err))
		return nil, storeUnavailable(err)
	}
	records := value.([]models.ConsultationRecord)
	out := make([]models.ConsultationRecord, len(records))
	copy(out, records)
	return out, nil
}

func (s *ConsultationService) snapshots(ctx context.Context) ([]models.StudentRosterEntry, []models.StaffMember, error) {
	var (
		roster []models.StudentRosterEntry
		staff  []models.StaffMember
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if s.roster == nil {
			return nil
		}
		start := time.Now()
		var err error
		roster, err = s.roster.ListActiveStudents(gctx)
		s.metrics.ObserveStoreQuery("roster_list", time.Since(start), err)
		return err
	})
	g.Go(func() error {
		if s.staff == nil {
			return nil
		}
		start := time.Now()
		var err error
		staff, err = s.staff.ListStaff(gctx)
		s.metrics.ObserveStoreQuery("staff_list", time.Since(start), err)
		return err
	})
	if err := g.Wait(); err != nil {
		s.logger.Error("roster snapshot failed", zap.String("request_id", requestid.FromContext(ctx)), zap.Error(err))
		return nil, nil, storeUnavailable(err)
	}
	return roster, staff, nil
}

func (s *ConsultationService) attachLastConsultationDates(ctx context.Context, stats models.ConsultationStats) models.ConsultationStats {
	seen := make(map[string]struct{}, len(stats.StudentsNeedingConsultation))
	ids := make([]string, 0, len(stats.StudentsNeedingConsultation))
	for _, entry := range stats.StudentsNeedingConsultation {
		if _, ok := seen[entry.StudentID]; ok {
			continue
		}
		seen[entry.StudentID] = struct{}{}
		ids = append(ids, entry.StudentID)
	}

	start := time.Now()
	dates, err := s.store.LastConsultationDates(ctx, ids)
	s.metrics.ObserveStoreQuery("last_consultation_dates", time.Since(start), err)
	if err != nil {
		s.logger.Warn("last consultation lookup failed",
			zap.String("request_id", requestid.FromContext(ctx)),
			zap.Int("students", len(ids)),
			zap.Error(err))
		return stats
	}
	return WithLastConsultationDates(stats, dates)
}

func (s *ConsultationService) begin(ctx context.Context, view string) RequestTicket {
	session := ClientSession(ctx)
	if session == "" {
		return RequestTicket{}
	}
	return s.sequencer.Begin(session + "|" + view)
}

func (s *ConsultationService) ensureCurrent(ticket RequestTicket, view string) error {
	if s.sequencer.Current(ticket) {
		return nil
	}
	s.metrics.RecordStaleRequest(view)
	return appErrors.ErrStaleRequest
}

func (s *ConsultationService) clampPageSize(size int) int {
	if size <= 0 {
		return s.cfg.DefaultPageSize
	}
	if size > s.cfg.MaxPageSize {
		return s.cfg.MaxPageSize
	}
	return size
}

func (s *ConsultationService) logMalformed(record models.ConsultationRecord, field string) {
	s.logger.Warn("skipping malformed consultation record",
		zap.String("id", record.ID),
		zap.String("missing_field", field),
		zap.Error(appErrors.ErrMalformedRecord))
}

func storeUnavailable(err error) error {
	return appErrors.Wrap(err, appErrors.ErrStoreUnavailable.Code, appErrors.ErrStoreUnavailable.Status, appErrors.ErrStoreUnavailable.Message)
}

func ignoreNotFound(err error) error {
	if errors.Is(err, appErrors.ErrNotFound) {
		return nil
	}
	return err
}

func queryKey(q models.ConsultationQuery) string {
	var builder strings.Builder
	for _, predicate := range q.Equals {
		builder.WriteString(predicate.Field)
		builder.WriteByte('=')
		builder.WriteString(strconv.Quote(predicate.Value))
		builder.WriteByte(';')
	}
	for _, predicate := range q.AnyOf {
		builder.WriteString(predicate.Field)
		builder.WriteString(" in ")
		for _, value := range predicate.Values {
			builder.WriteString(strconv.Quote(value))
			builder.WriteByte(',')
		}
		if predicate.FoldCase {
			builder.WriteString(" fold")
		}
		builder.WriteByte(';')
	}
	for _, order := range q.OrderBy {
		builder.WriteString("order:")
		builder.WriteString(order.Field)
		if order.Descending {
			builder.WriteString(":desc")
		}
		builder.WriteByte(';')
	}
	builder.WriteString("limit:")
	builder.WriteString(strconv.Itoa(q.Limit))
	return builder.String()
}

func statsCacheKey(filter models.ConsultationFilter, today time.Time) string {
	var start, end string
	if filter.DateRange != nil {
		start, end = filter.DateRange.Start, filter.DateRange.End
	}
	parts := []string{
		string(filter.Type),
		filter.StudentID,
		filter.ConsultantID,
		filter.Category,
		models.NormalizeSubject(filter.Subject),
		start,
		end,
		string(filter.FollowUpStatus),
		strings.ToLower(strings.TrimSpace(filter.SearchQuery)),
		strconv.FormatBool(filter.IncludeLastConsultation),
		civilDay(today).Format(models.DateLayout),
	}
	var builder strings.Builder
	builder.WriteString(statsCachePrefix)
	for _, part := range parts {
		builder.WriteByte(':')
		builder.WriteString(cacheKeyEscaper.Replace(part))
	}
	return builder.String()
}
