package settingsrow

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

// Repository reads raw settings rows for the compiler. Row order is stable
// (row_index ascending) so last-wins semantics for duplicate keys are
// well-defined.
type Repository struct {
	db     database.DB
	logger ectologger.Logger
}

// NewRepository creates a new settings row repository
func NewRepository(db database.DB, logger ectologger.Logger) *Repository {
	return &Repository{
		db:     db,
		logger: logger,
	}
}

// List returns every settings row for a tenant in stored order
func (r *Repository) List(ctx context.Context, tenantID string) ([]models.SettingsRow, error) {
	ctx, span := tracing.StartSpan(ctx, "settingsrow.Repository.List")
	defer span.End()

	sb := sqlbuilder.PostgreSQL.NewSelectBuilder()
	sb.Select("id", "tenant_id", "row_index", "category", "key", "value1", "value2", "value3", "value4", "description", "updated_at")
	sb.From("settings_rows")
	sb.Where(sb.Equal("tenant_id", tenantID))
	sb.OrderBy("row_index")

	query, args := sb.Build()
	rows := []models.SettingsRow{}
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		r.logger.WithContext(ctx).WithError(err).Error("Failed to list settings rows")
		return nil, httperror.NewHTTPError(http.StatusInternalServerError, "failed to list settings rows")
	}

	return rows, nil
}
