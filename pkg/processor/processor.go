// Package processor runs the per-record pipeline: normalize, match, score,
// persist under lock, emit.
package processor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/Gobusters/ectologger"

	"github.com/Ramsey-B/clover/internal/repositories/activity"
	"github.com/Ramsey-B/clover/internal/repositories/prospect"
	"github.com/Ramsey-B/clover/internal/repositories/settingsrow"
	appctx "github.com/Ramsey-B/clover/pkg/context"
	"github.com/Ramsey-B/clover/pkg/events"
	"github.com/Ramsey-B/clover/pkg/graph"
	"github.com/Ramsey-B/clover/pkg/kafka"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/redis"
	"github.com/Ramsey-B/clover/pkg/rulecache"
	"github.com/Ramsey-B/clover/pkg/schema"
	"github.com/Ramsey-B/clover/pkg/scoring"
	"github.com/Ramsey-B/clover/pkg/settings"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Config holds processor tuning knobs
type Config struct {
	SnapshotTTL        time.Duration
	LockTTL            time.Duration
	LockAcquireTimeout time.Duration
	BatchSize          int
}

// Service orchestrates the resolution and scoring pipeline
type Service struct {
	cfg          Config
	schemaSvc    *schema.Service
	matcher      *matching.Matcher
	scorer       *scoring.Engine
	compiler     *settings.Compiler
	settingsRepo *settingsrow.Repository
	prospectRepo *prospect.Repository
	activityRepo *activity.Repository
	locker       *redis.Locker
	emitter      *events.Emitter
	projection   *graph.ProjectionService
	logger       ectologger.Logger

	mu     sync.Mutex
	caches map[string]*rulecache.Cache[models.RuleTableSnapshot]
}

// NewService creates a processor service. locker and projection may be nil
// when Redis or the graph projection are not configured.
func NewService(
	cfg Config,
	schemaSvc *schema.Service,
	matcher *matching.Matcher,
	scorer *scoring.Engine,
	compiler *settings.Compiler,
	settingsRepo *settingsrow.Repository,
	prospectRepo *prospect.Repository,
	activityRepo *activity.Repository,
	locker *redis.Locker,
	emitter *events.Emitter,
	projection *graph.ProjectionService,
	logger ectologger.Logger,
) *Service {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if emitter == nil {
		emitter = events.NewEmitter(nil, logger)
	}
	return &Service{
		cfg:          cfg,
		schemaSvc:    schemaSvc,
		matcher:      matcher,
		scorer:       scorer,
		compiler:     compiler,
		settingsRepo: settingsRepo,
		prospectRepo: prospectRepo,
		activityRepo: activityRepo,
		locker:       locker,
		emitter:      emitter,
		projection:   projection,
		logger:       logger,
		caches:       make(map[string]*rulecache.Cache[models.RuleTableSnapshot]),
	}
}

func (s *Service) cacheFor(tenantID string) *rulecache.Cache[models.RuleTableSnapshot] {
	s.mu.Lock()
	defer s.mu.Unlock()

	cache, ok := s.caches[tenantID]
	if !ok {
		cache = rulecache.New[models.RuleTableSnapshot](s.cfg.SnapshotTTL, s.logger)
		s.caches[tenantID] = cache
	}
	return cache
}

// Snapshot returns the compiled rule tables for a tenant, reloading through
// the TTL cache when stale. It never fails; with no settings reachable it
// degrades to an empty snapshot.
func (s *Service) Snapshot(ctx context.Context, tenantID string) models.RuleTableSnapshot {
	return s.cacheFor(tenantID).Get(ctx, func(ctx context.Context) (models.RuleTableSnapshot, error) {
		if s.settingsRepo == nil {
			return models.EmptyRuleTableSnapshot(), nil
		}
		rows, err := s.settingsRepo.List(ctx, tenantID)
		if err != nil {
			return models.RuleTableSnapshot{}, err
		}
		metrics.SnapshotReloadsTotal.Inc()
		return s.compiler.Compile(ctx, rows), nil
	})
}

// InvalidateSnapshot forces the next Snapshot call to recompile, used after
// a configuration edit.
func (s *Service) InvalidateSnapshot(tenantID string) {
	s.cacheFor(tenantID).Invalidate()
}

// HandleMessage is the Kafka consumer entry point
func (s *Service) HandleMessage(ctx context.Context, msg *kafka.IncomingMessage) error {
	if msg.ActivityMessage == nil {
		return fmt.Errorf("message has no activity payload")
	}
	ctx = appctx.SetTenantID(ctx, msg.ActivityMessage.TenantID)
	return s.ProcessActivity(ctx, msg.ActivityMessage.TenantID, msg.ActivityMessage)
}

// ProcessActivity runs the full pipeline for one incoming activity record.
func (s *Service) ProcessActivity(ctx context.Context, tenantID string, msg *kafka.ActivityMessage) error {
	ctx, span := tracing.StartSpan(ctx, "processor.Service.ProcessActivity")
	defer span.End()

	log := s.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id":  tenantID,
		"record_ref": msg.RecordRef,
	})

	raw := models.RawRecord{
		RecordRef:   msg.RecordRef,
		Cells:       msg.Cells,
		ColumnCount: msg.ColumnCount,
	}
	record := s.schemaSvc.Resolver().Canonicalize(ctx, models.EntityTypeActivity, raw)

	rawJSON, _ := json.Marshal(msg.Cells)
	fieldsJSON, _ := json.Marshal(record.Fields)
	if _, err := s.activityRepo.Stage(ctx, tenantID, &models.Activity{
		RecordRef:       msg.RecordRef,
		RawCells:        rawJSON,
		CanonicalFields: fieldsJSON,
		MatchType:       string(models.MatchTypeNone),
	}); err != nil {
		return err
	}

	masters, err := s.prospectRepo.List(ctx, tenantID)
	if err != nil {
		return err
	}

	candidate := models.CompanyRecord{
		RecordRef:   msg.RecordRef,
		CompanyID:   record.Get(models.FieldCompanyID),
		CompanyName: record.Get(models.FieldCompanyName),
	}
	result := s.matcher.MatchCompany(ctx, candidate, companyRecords(masters))
	metrics.RecordMatchOutcome(tenantID, string(result.MatchType))

	if err := s.activityRepo.LinkProspect(ctx, tenantID, msg.RecordRef, result); err != nil {
		return err
	}
	if err := s.emitter.EmitProspectMatched(ctx, msg.RecordRef, result); err != nil {
		log.WithError(err).Warn("Match event emission failed, continuing")
	}

	if result.MatchedRecordRef == nil {
		log.Info("Activity did not resolve to a prospect")
		return nil
	}
	matchedRef := *result.MatchedRecordRef

	// The activity row rarely carries the industry; backfill it from the
	// matched master before scoring.
	if record.Get(models.FieldIndustry) == "" {
		for i := range masters {
			if masters[i].CompanyID == matchedRef {
				record.Fields[models.FieldIndustry] = masters[i].Industry
				break
			}
		}
	}

	snapshot := s.Snapshot(ctx, tenantID)
	score := s.scorer.Score(record, snapshot)

	if err := s.writeBackScores(ctx, tenantID, matchedRef, score); err != nil {
		metrics.RecordScored(tenantID, "failed")
		if statusErr := s.activityRepo.UpdateStatus(ctx, tenantID, msg.RecordRef, models.ActivityStatusFailed); statusErr != nil {
			log.WithError(statusErr).Warn("Failed to mark activity failed")
		}
		return err
	}
	metrics.RecordScored(tenantID, "scored")

	if err := s.activityRepo.UpdateStatus(ctx, tenantID, msg.RecordRef, models.ActivityStatusScored); err != nil {
		log.WithError(err).Warn("Failed to advance activity status, continuing")
	}
	if err := s.emitter.EmitProspectScored(ctx, matchedRef, score); err != nil {
		log.WithError(err).Warn("Score event emission failed, continuing")
	}

	s.project(ctx, tenantID, msg.RecordRef, matchedRef, result, masters)

	log.WithFields(map[string]any{
		"match_type":  result.MatchType,
		"total_score": score.TotalScore,
	}).Info("Processed activity record")

	return nil
}

// ScoreBatch scores a slice of canonical records against the tenant's rule
// tables. A panic or write failure on one record is captured in the result and
// never aborts the rest of the batch. When persist is set, each score is
// written back to the matching master record.
func (s *Service) ScoreBatch(ctx context.Context, tenantID string, records []models.CanonicalRecord, persist bool) models.BatchResult {
	ctx, span := tracing.StartSpan(ctx, "processor.Service.ScoreBatch")
	defer span.End()

	snapshot := s.Snapshot(ctx, tenantID)
	result := models.BatchResult{
		Processed: len(records),
		Results:   make([]models.ScoreResult, 0, len(records)),
	}

	for start := 0; start < len(records); start += s.cfg.BatchSize {
		end := start + s.cfg.BatchSize
		if end > len(records) {
			end = len(records)
		}
		for i := start; i < end; i++ {
			score, err := s.scoreOne(ctx, tenantID, records[i], snapshot, persist)
			if err != nil {
				result.Failed++
				result.Errors = append(result.Errors, fmt.Sprintf("%s: %v", records[i].RecordRef, err))
				metrics.BatchRecordsTotal.WithLabelValues(tenantID, "failed").Inc()
				continue
			}
			result.Succeeded++
			result.Results = append(result.Results, score)
			metrics.BatchRecordsTotal.WithLabelValues(tenantID, "succeeded").Inc()
		}
	}

	s.logger.WithContext(ctx).WithFields(map[string]any{
		"tenant_id": tenantID,
		"processed": result.Processed,
		"succeeded": result.Succeeded,
		"failed":    result.Failed,
	}).Info("Scored batch")

	return result
}

func (s *Service) scoreOne(ctx context.Context, tenantID string, record models.CanonicalRecord, snapshot models.RuleTableSnapshot, persist bool) (score models.ScoreResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("scoring panicked: %v", r)
		}
	}()

	score = s.scorer.Score(record, snapshot)
	if !persist {
		return score, nil
	}

	companyID := record.Get(models.FieldCompanyID)
	if companyID == "" {
		return score, fmt.Errorf("record has no %s, cannot persist", models.FieldCompanyID)
	}
	if err := s.writeBackScores(ctx, tenantID, companyID, score); err != nil {
		return score, err
	}
	return score, nil
}

// project mirrors the resolved link into the graph, best effort.
func (s *Service) project(ctx context.Context, tenantID, recordRef, matchedRef string, result models.MatchResult, masters []models.Prospect) {
	if s.projection == nil {
		return
	}
	for i := range masters {
		if masters[i].CompanyID == matchedRef {
			_ = s.projection.ProjectProspect(ctx, tenantID, &masters[i])
			break
		}
	}
	_ = s.projection.LinkActivity(ctx, tenantID, recordRef, matchedRef, string(result.MatchType), result.Confidence)
}

// writeBackScores persists a score result, serialized on the record's write
// lock so concurrent workers cannot interleave partial writes.
func (s *Service) writeBackScores(ctx context.Context, tenantID, companyID string, score models.ScoreResult) error {
	if s.locker == nil {
		return s.prospectRepo.UpdateScores(ctx, tenantID, companyID, score)
	}

	start := time.Now()
	lock, err := s.locker.TryAcquire(ctx, tenantID+":"+companyID, s.cfg.LockTTL, s.cfg.LockAcquireTimeout)
	metrics.RecordLockWait(time.Since(start))
	if err != nil {
		return fmt.Errorf("acquiring write lock for %s: %w", companyID, err)
	}
	defer lock.Release(ctx)

	return s.prospectRepo.UpdateScores(ctx, tenantID, companyID, score)
}

func companyRecords(prospects []models.Prospect) []models.CompanyRecord {
	records := make([]models.CompanyRecord, len(prospects))
	for i := range prospects {
		records[i] = prospects[i].CompanyRecord()
	}
	return records
}
