package graph

import (
	"context"

	"github.com/Gobusters/ectologger"
	"github.com/neo4j/neo4j-go-driver/v5/neo4j"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/tracing"
)

// ProjectionService mirrors resolved activity -> prospect links into the
// graph. A nil service (projection disabled) is a no-op on every method.
type ProjectionService struct {
	client *Client
	logger ectologger.Logger
}

// NewProjectionService creates a projection service
func NewProjectionService(client *Client, logger ectologger.Logger) *ProjectionService {
	return &ProjectionService{
		client: client,
		logger: logger,
	}
}

// ProjectProspect upserts the prospect node with its latest scores
func (s *ProjectionService) ProjectProspect(ctx context.Context, tenantID string, prospect *models.Prospect) error {
	if s == nil || s.client == nil {
		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "graph.ProjectionService.ProjectProspect")
	defer span.End()

	cypher := `
		MERGE (p:Prospect {tenant_id: $tenant_id, company_id: $company_id})
		SET p.company_name = $company_name,
			p.industry = $industry,
			p.total_score = $total_score,
			p.is_stale = $is_stale`

	params := map[string]any{
		"tenant_id":    tenantID,
		"company_id":   prospect.CompanyID,
		"company_name": prospect.CompanyName,
		"industry":     prospect.Industry,
		"total_score":  prospect.TotalScore,
		"is_stale":     prospect.IsStale,
	}

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, cypher, params)
	})
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"company_id": prospect.CompanyID,
		}).Warn("Failed to project prospect node")
		return err
	}

	return nil
}

// LinkActivity creates the LOGGED_AGAINST edge from an activity to the
// prospect it resolved to.
func (s *ProjectionService) LinkActivity(ctx context.Context, tenantID, recordRef, prospectRef string, matchType string, confidence float64) error {
	if s == nil || s.client == nil {
		return nil
	}

	ctx, span := tracing.StartSpan(ctx, "graph.ProjectionService.LinkActivity")
	defer span.End()

	cypher := `
		MERGE (a:Activity {tenant_id: $tenant_id, record_ref: $record_ref})
		MERGE (p:Prospect {tenant_id: $tenant_id, company_id: $prospect_ref})
		MERGE (a)-[r:LOGGED_AGAINST]->(p)
		SET r.match_type = $match_type,
			r.confidence = $confidence`

	params := map[string]any{
		"tenant_id":    tenantID,
		"record_ref":   recordRef,
		"prospect_ref": prospectRef,
		"match_type":   matchType,
		"confidence":   confidence,
	}

	_, err := s.client.ExecuteWrite(ctx, func(tx neo4j.ManagedTransaction) (any, error) {
		return tx.Run(ctx, cypher, params)
	})
	if err != nil {
		s.logger.WithContext(ctx).WithError(err).WithFields(map[string]any{
			"record_ref":   recordRef,
			"prospect_ref": prospectRef,
		}).Warn("Failed to project activity link")
		return err
	}

	return nil
}
