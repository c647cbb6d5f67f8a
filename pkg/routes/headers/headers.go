package headers

import (
	"net/http"

	"github.com/Gobusters/ectoerror/httperror"
	"github.com/Gobusters/ectoinject"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/Ramsey-B/clover/pkg/schema"
)

var validate = validator.New()

// Register registers header resolution routes
func Register(g *echo.Group) {
	g.POST("/resolve", ResolveHeaders)
	g.POST("/invalidate", InvalidateHeaderMaps)
}

// ResolveHeadersRequest is the request body for resolving a sheet header row
type ResolveHeadersRequest struct {
	EntityType string   `json:"entity_type" validate:"required"`
	Headers    []string `json:"headers" validate:"required,min=1"`
}

// ResolveHeadersResponse maps canonical field names to column indexes.
// Headers no alias claims are absent from the map.
type ResolveHeadersResponse struct {
	EntityType string         `json:"entity_type"`
	HeaderMap  map[string]int `json:"header_map"`
	Unmapped   []string       `json:"unmapped,omitempty"`
}

// ResolveHeaders resolves a raw header row to canonical field names
func ResolveHeaders(c echo.Context) error {
	ctx := c.Request().Context()

	var req ResolveHeadersRequest
	if err := c.Bind(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := validate.Struct(&req); err != nil {
		return httperror.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	ctx, svc, err := ectoinject.GetContext[*schema.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	headerMap := svc.HeaderMap(ctx, req.EntityType, req.Headers)

	mapped := make(map[int]bool, len(headerMap))
	for _, idx := range headerMap {
		mapped[idx] = true
	}
	var unmapped []string
	for i, h := range req.Headers {
		if !mapped[i] {
			unmapped = append(unmapped, h)
		}
	}

	return c.JSON(http.StatusOK, ResolveHeadersResponse{
		EntityType: req.EntityType,
		HeaderMap:  headerMap,
		Unmapped:   unmapped,
	})
}

// InvalidateHeaderMaps drops cached header maps, optionally scoped by
// entity_type.
func InvalidateHeaderMaps(c echo.Context) error {
	ctx := c.Request().Context()

	entityType := c.QueryParam("entity_type")

	_, svc, err := ectoinject.GetContext[*schema.Service](ctx)
	if err != nil {
		return httperror.NewHTTPError(http.StatusInternalServerError, "service unavailable")
	}

	svc.InvalidateCache(entityType)

	return c.NoContent(http.StatusNoContent)
}
