package activity

import (
	"context"
	"net/http"
	"time"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/google/uuid"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Repository handles staged activity record persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new activity repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Stage upserts an incoming activity record by its sheet record ref
func (r *Repository) Stage(ctx context.Context, tenantID string, act *models.Activity) (*models.Activity, error) {
	ctx, span := tracing.StartSpan(ctx, "activity.Repository.Stage")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":     "Stage",
		"tenant_id":  tenantID,
		"record_ref": act.RecordRef,
	})

	now := time.Now().UTC()
	act.ID = uuid.New().String()
	act.TenantID = tenantID
	if act.Status == "" {
		act.Status = models.ActivityStatusPending
	}
	act.CreatedAt = now
	act.UpdatedAt = now

	query := r.db.Rebind(`
		INSERT INTO activities (id, tenant_id, record_ref, raw_cells, canonical_fields, match_type, match_confidence, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (tenant_id, record_ref) DO UPDATE SET
			raw_cells = EXCLUDED.raw_cells,
			canonical_fields = EXCLUDED.canonical_fields,
			status = EXCLUDED.status,
			updated_at = EXCLUDED.updated_at`)

	if _, err := r.db.ExecContext(ctx, query,
		act.ID, act.TenantID, act.RecordRef, act.RawCells, act.CanonicalFields,
		act.MatchType, act.MatchConfidence, act.Status, act.CreatedAt, act.UpdatedAt,
	); err != nil {
		log.WithError(err).Error("Failed to stage activity")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to stage activity")
	}

	log.Debug("Staged activity")
	return act, nil
}

// LinkProspect records the resolution outcome for a staged activity
func (r *Repository) LinkProspect(ctx context.Context, tenantID, recordRef string, result models.MatchResult) error {
	ctx, span := tracing.StartSpan(ctx, "activity.Repository.LinkProspect")
	defer span.End()

	status := models.ActivityStatusMatched
	if result.MatchType == models.MatchTypeNone {
		status = models.ActivityStatusUnmatched
	}

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("activities")
	sb.Set(
		sb.Assign("matched_prospect_ref", result.MatchedRecordRef),
		sb.Assign("match_type", string(result.MatchType)),
		sb.Assign("match_confidence", result.Confidence),
		sb.Assign("status", status),
		sb.Assign("updated_at", time.Now().UTC()),
	)
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("record_ref", recordRef),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"record_ref": recordRef,
		}).Error("Failed to link activity to prospect")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to link activity")
	}

	return nil
}

// UpdateStatus moves a staged activity to a new pipeline status
func (r *Repository) UpdateStatus(ctx context.Context, tenantID, recordRef, status string) error {
	ctx, span := tracing.StartSpan(ctx, "activity.Repository.UpdateStatus")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("activities")
	sb.Set(
		sb.Assign("status", status),
		sb.Assign("updated_at", time.Now().UTC()),
	)
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("record_ref", recordRef),
	)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"record_ref": recordRef,
			"status":     status,
		}).Error("Failed to update activity status")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update activity status")
	}

	return nil
}

// ListByProspect returns activities linked to a master prospect
func (r *Repository) ListByProspect(ctx context.Context, tenantID, prospectRef string) ([]models.Activity, error) {
	ctx, span := tracing.StartSpan(ctx, "activity.Repository.ListByProspect")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "record_ref", "raw_cells", "canonical_fields", "matched_prospect_ref", "match_type", "match_confidence", "status", "created_at", "updated_at")
	sb.From("activities")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("matched_prospect_ref", prospectRef),
	)
	sb.OrderBy("created_at")

	query, args := sb.Build()
	activities := []models.Activity{}
	if err := r.db.SelectContext(ctx, &activities, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list activities")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list activities")
	}

	return activities, nil
}
