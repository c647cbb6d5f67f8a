package fieldalias

import (
	"context"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectologger"
	"github.com/huandu/go-sqlbuilder"

	"github.com/Ramsey-B/clover/pkg/database"
	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// Repository reads the field alias tables. Alias rows are seeded by
// migrations and treated as immutable at runtime, so there is no write path.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new field alias repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// ListAll returns every alias row for a tenant, all entity types
func (r *Repository) ListAll(ctx context.Context, tenantID string) ([]models.FieldAlias, error) {
	ctx, span := tracing.StartSpan(ctx, "fieldalias.Repository.ListAll")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "entity_type", "canonical_name", "display_header", "variations", "value_type", "required", "created_at")
	sb.From("field_aliases")
	sb.Where(sb.Equal("tenant_id", tenantID))
	sb.OrderBy("entity_type", "canonical_name")

	query, args := sb.Build()
	aliases := []models.FieldAlias{}
	if err := r.db.SelectContext(ctx, &aliases, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list field aliases")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list field aliases")
	}

	return aliases, nil
}

// ListByEntityType returns the alias table for one entity type
func (r *Repository) ListByEntityType(ctx context.Context, tenantID, entityType string) ([]models.FieldAlias, error) {
	ctx, span := tracing.StartSpan(ctx, "fieldalias.Repository.ListByEntityType")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "entity_type", "canonical_name", "display_header", "variations", "value_type", "required", "created_at")
	sb.From("field_aliases")
	sb.Where(
		sb.Equal("tenant_id", tenantID),
		sb.Equal("entity_type", entityType),
	)
	sb.OrderBy("canonical_name")

	query, args := sb.Build()
	aliases := []models.FieldAlias{}
	if err := r.db.SelectContext(ctx, &aliases, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"entity_type": entityType,
		}).Error("Failed to list field aliases")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list field aliases")
	}

	return aliases, nil
}
