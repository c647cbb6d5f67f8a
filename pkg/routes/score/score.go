package score

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/clover/pkg/context"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/models"
	"github.com/Ramsey-B/clover/pkg/processor"
)

var validate = validator.New()

// Register registers scoring routes
func Register(g *echo.Group) {
	g.POST("", ScoreRecord)
	g.POST("/batch", ScoreBatch)
}

// ScoreRecordRequest is the request body for scoring one canonical record
type ScoreRecordRequest struct {
	RecordRef string            `json:"record_ref" validate:"required"`
	Fields    map[string]string `json:"fields" validate:"required"`
	Persist   bool              `json:"persist"`
}

// ScoreRecord scores a single canonical record against the tenant's rules
func ScoreRecord(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)

	var req ScoreRecordRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, svc, err := ectoinject.GetContext[*processor.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	record := models.CanonicalRecord{
		RecordRef: req.RecordRef,
		Fields:    req.Fields,
	}

	result := svc.ScoreBatch(ctx, tenantID, []models.CanonicalRecord{record}, req.Persist)
	if result.Failed > 0 {
		return httperror.NewHTTPError(http.StatusUnprocessableEntity, result.Errors[0])
	}

	return c.JSON(http.StatusOK, result.Results[0])
}

// ScoreBatchRequest is the request body for scoring a batch of records
type ScoreBatchRequest struct {
	Records []ScoreRecordRequest `json:"records" validate:"required,min=1,dive"`
	Persist bool                 `json:"persist"`
}

// ScoreBatch scores a batch of canonical records. Individual failures are
// reported inside the result without failing the request.
func ScoreBatch(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)

	var req ScoreBatchRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, svc, err := ectoinject.GetContext[*processor.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	records := make([]models.CanonicalRecord, len(req.Records))
	for i, r := range req.Records {
		records[i] = models.CanonicalRecord{
			RecordRef: r.RecordRef,
			Fields:    r.Fields,
		}
	}

	result := svc.ScoreBatch(ctx, tenantID, records, req.Persist)

	return c.JSON(http.StatusOK, result)
}
