package prospect

import (
	"context"
	"database/sql"
	"errors"
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

var prospectColumns = []string{
	"id", "tenant_id", "company_id", "company_name", "industry", "fields",
	"priority_score", "urgency_score", "urgency_band", "total_score",
	"is_stale", "scored_at", "created_at", "updated_at",
}

// Repository handles master prospect persistence
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new prospect repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// Create inserts a new master prospect
func (r *Repository) Create(ctx context.Context, tenantID string, prospect *models.Prospect) (*models.Prospect, error) {
	ctx, span := tracing.StartSpan(ctx, "prospect.Repository.Create")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":       "Create",
		"tenant_id":    tenantID,
		"company_name": prospect.CompanyName,
	})

	now := time.Now().UTC()
	prospect.ID = uuid.New().String()
	prospect.TenantID = tenantID
	prospect.CreatedAt = now
	prospect.UpdatedAt = now

	sb := sqlbuilder.PostgreSQL.NewInsertBuilder()
	sb.InsertInto("prospects")
	sb.Cols("id", "tenant_id", "company_id", "company_name", "industry", "fields", "is_stale", "created_at", "updated_at")
	sb.Values(prospect.ID, prospect.TenantID, prospect.CompanyID, prospect.CompanyName, prospect.Industry, prospect.Fields, prospect.IsStale, prospect.CreatedAt, prospect.UpdatedAt)

	query, args := sb.Build()
	if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
		log.WithError(err).Error("Failed to create prospect")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to create prospect")
	}

	log.WithFields(map[string]any{"id": prospect.ID}).Info("Created prospect")
	return prospect, nil
}

// List returns every master prospect for a tenant, ordered by creation so the
// matcher's first-occurrence tie-break is deterministic.
func (r *Repository) List(ctx context.Context, tenantID string) ([]models.Prospect, error) {
	ctx, span := tracing.StartSpan(ctx, "prospect.Repository.List")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(prospectColumns...)
	sb.From("prospects")
	sb.Where(sb.Equal("tenant_id", tenantID))
	sb.OrderBy("created_at", "id")

	query, args := sb.Build()
	prospects := []models.Prospect{}
	if err := r.db.SelectContext(ctx, &prospects, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list prospects")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list prospects")
	}

	return prospects, nil
}

// GetByCompanyID fetches one prospect by its external company identifier
func (r *Repository) GetByCompanyID(ctx context.Context, tenantID, companyID string) (*models.Prospect, error) {
	ctx, span := tracing.StartSpan(ctx, "prospect.Repository.GetByCompanyID")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select(prospectColumns...)
	sb.From("prospects")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("company_id", companyID),
	)

	query, args := sb.Build()
	var prospect models.Prospect
	if err := r.db.GetContext(ctx, &prospect, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, httperror.NewHTTPError(http.StatusNotFound, "prospect not found")
		}
		r.logger.WithContext(ctx).WithError(err).Error("Failed to get prospect")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to get prospect")
	}

	return &prospect, nil
}

// UpdateScores writes a score result back to the master record
func (r *Repository) UpdateScores(ctx context.Context, tenantID, companyID string, result models.ScoreResult) error {
	ctx, span := tracing.StartSpan(ctx, "prospect.Repository.UpdateScores")
	defer span.End()

	log := r.logger.WithContext(ctx).WithFields(map[string]any{
		"method":     "UpdateScores",
		"tenant_id":  tenantID,
		"company_id": companyID,
	})

	now := time.Now().UTC()

	sb := sqlbuilder.PostgreSQL.NewUpdateBuilder()
	sb.Update("prospects")
	sb.Set(
		sb.Assign("priority_score", result.PriorityScore),
		sb.Assign("urgency_score", result.UrgencyScore),
		sb.Assign("urgency_band", result.UrgencyBand),
		sb.Assign("total_score", result.TotalScore),
		sb.Assign("is_stale", result.IsStale),
		sb.Assign("scored_at", now),
		sb.Assign("updated_at", now),
	)
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("company_id", companyID),
	)

	query, args := sb.Build()
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		log.WithError(err).Error("Failed to update prospect scores")
		return httperror.NewHTTPError(http.StatusInternalServerError, "failed to update prospect scores")
	}

	if rows, err := res.RowsAffected(); err == nil && rows == 0 {
		return httperror.NewHTTPError(http.StatusNotFound, "prospect not found")
	}

	log.WithFields(map[string]any{"total_score": result.TotalScore}).Info("Updated prospect scores")
	return nil
}
