package fieldalias

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/Ramsey-B/clover/pkg/context"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/internal/repositories/fieldalias"
)

// Register registers field alias routes
func Register(g *echo.Group) {
	g.GET("", ListAliases)
}

// ListAliases lists the alias dictionary, optionally filtered by entity_type
func ListAliases(c echo.Context) error {
	ctx := c.Request().Context()
	tenantID := context.GetTenantID(ctx)

	entityType := c.QueryParam("entity_type")

	ctx, repo, err := ectoinject.GetContext[*fieldalias.Repository](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	if entityType != "" {
		aliases, err := repo.ListByEntityType(ctx, tenantID, entityType)
		if err != nil {
			return err
		}
		return c.JSON(http.StatusOK, aliases)
	}

	aliases, err := repo.ListAll(ctx, tenantID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, aliases)
}
