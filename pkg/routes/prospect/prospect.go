package prospect

import (
	"encoding/json"
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Gobusters/ectologger"
	"github.com/Ramsey-B/clover/pkg/context"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	activityrepo "github.com/Ramsey-B/clover/internal/repositories/activity"
	prospectrepo "github.com/Ramsey-B/clover/internal/repositories/prospect"
	"github.com/Ramsey-B/clover/pkg/models"
)

var validate = validator.New()

// Register registers master prospect routes
func Register(g *echo.Group) {
	g.GET("", ListProspects)
	g.POST("", CreateProspect)
	g.GET("/:companyId", GetProspect)
	g.GET("/:companyId/activities", GetProspectActivities)
}

// ListProspects lists the tenant's master prospects
func ListProspects(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)

	ctx, repo, err := ectoinject.GetContext[*prospectrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	prospects, err := repo.List(ctx, tenantID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, prospects)
}

// CreateProspectRequest is the request body for creating a master prospect
type CreateProspectRequest struct {
	CompanyID   string            `json:"company_id" validate:"required"`
	CompanyName string            `json:"company_name" validate:"required"`
	Industry    string            `json:"industry"`
	Fields      map[string]string `json:"fields,omitempty"`
}

// CreateProspect creates a new master prospect
func CreateProspect(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)

	var req CreateProspectRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	fieldsJSON, err := json.Marshal(req.Fields)
	if err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid fields")
	}

	ctx, repo, err := ectoinject.GetContext[*prospectrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	created, err := repo.Create(ctx, tenantID, &models.Prospect{
		CompanyID:   req.CompanyID,
		CompanyName: req.CompanyName,
		Industry:    req.Industry,
		Fields:      fieldsJSON,
	})
	if err != nil {
		return err
	}

	ctx, logger, _ := ectoinject.GetContext[ectologger.Logger](ctx)
	if logger != nil {
		logger.WithContext(ctx).WithFields(map[string]any{"id": created.ID}).Info("Created prospect")
	}

	return c.JSON(http.StatusCreated, created)
}

// GetProspect gets a master prospect by its company identifier
func GetProspect(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)

	companyID := c.Param("companyId")

	ctx, repo, err := ectoinject.GetContext[*prospectrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	prospect, err := repo.GetByCompanyID(ctx, tenantID, companyID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, prospect)
}

// GetProspectActivities lists the activities resolved to a master prospect
func GetProspectActivities(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)

	companyID := c.Param("companyId")

	ctx, repo, err := ectoinject.GetContext[*activityrepo.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	activities, err := repo.ListByProspect(ctx, tenantID, companyID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, activities)
}
