package match

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/clover/pkg/context"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/internal/repositories/prospect"
	"github.com/Ramsey-B/clover/pkg/matching"
	"github.com/Ramsey-B/clover/pkg/metrics"
	"github.com/Ramsey-B/clover/pkg/models"
)

var validate = validator.New()

// Register registers matching routes
func Register(g *echo.Group) {
	g.POST("", MatchCompany)
}

// MatchCompanyRequest is the request body for resolving one candidate record.
// Masters may be supplied inline for dry runs; when omitted the tenant's
// stored prospects are used.
type MatchCompanyRequest struct {
	RecordRef   string                 `json:"record_ref" validate:"required"`
	CompanyID   string                 `json:"company_id"`
	CompanyName string                 `json:"company_name"`
	Masters     []models.CompanyRecord `json:"masters,omitempty"`
}

// MatchCompanyResponse pairs the candidate ref with its resolution outcome
type MatchCompanyResponse struct {
	RecordRef string             `json:"record_ref"`
	Result    models.MatchResult `json:"result"`
}

// MatchCompany resolves a candidate record against the master prospect list
func MatchCompany(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)

	var req MatchCompanyRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, matcher, err := ectoinject.GetContext[*matching.Matcher](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	masters := req.Masters
	if masters == nil {
		ctx2, repo, err := ectoinject.GetContext[*prospect.Repository](ctx)
		if err != nil {
			return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
		}
		ctx = ctx2

		prospects, err := repo.List(ctx, tenantID)
		if err != nil {
			return err
		}
		masters = make([]models.CompanyRecord, len(prospects))
		for i := range prospects {
			masters[i] = prospects[i].CompanyRecord()
		}
	}

	candidate := models.CompanyRecord{
		RecordRef:   req.RecordRef,
		CompanyID:   req.CompanyID,
		CompanyName: req.CompanyName,
	}

	result := matcher.MatchCompany(ctx, candidate, masters)
	metrics.RecordMatchOutcome(tenantID, string(result.MatchType))

	return c.JSON(http.StatusOK, MatchCompanyResponse{
		RecordRef: req.RecordRef,
		Result:    result,
	})
}
