package settings

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/clover/pkg/context"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/processor"
)

// Register registers settings routes
func Register(g *echo.Group) {
	g.GET("/snapshot", GetSnapshot)
	g.POST("/invalidate", InvalidateSnapshot)
}

// GetSnapshot returns the tenant's compiled rule tables
func GetSnapshot(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)

	ctx, svc, err := ectoinject.GetContext[*processor.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	snapshot := svc.Snapshot(ctx, tenantID)

	return c.JSON(http.StatusOK, snapshot)
}

// InvalidateSnapshot forces the next snapshot read to recompile from storage
func InvalidateSnapshot(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)

	_, svc, err := ectoinject.GetContext[*processor.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	svc.InvalidateSnapshot(tenantID)

	return c.NoContent(http.StatusNoContent)
}
