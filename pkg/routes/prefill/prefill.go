package prefill

import (
	"net/http"

	prefillsvc "github.com/Ramsey-B/fern/internal/services/prefill"
	"github.com/Ramsey-B/fern/pkg/prefill"
	"github.com/Ramsey-B/fern/pkg/tracing"
	"github.com/Ramsey-B/fern/pkg/utils"
	"github.com/labstack/echo/v4"
)

type Handler struct {
	service *prefillsvc.Service
}

func NewHandler(service *prefillsvc.Service) *Handler {
	return &Handler{service: service}
}

// Register registers the graph, data source and mapping routes
func (h *Handler) Register(g *echo.Group) {
	g.GET("/graph", h.GetGraph)

	nodes := g.Group("/nodes/:node_id")
	nodes.GET("/data-sources", h.GetDataSources)
	nodes.GET("/mappings", h.ListMappings)
	nodes.PUT("/mappings", h.UpsertMapping)
	nodes.DELETE("/mappings", h.ClearMappings)
	nodes.GET("/mappings/:field_id", h.GetMapping)
	nodes.DELETE("/mappings/:field_id", h.RemoveMapping)
}

type NodeRequest struct {
	NodeID string `param:"node_id" validate:"required"`
}

type DataSourcesRequest struct {
	NodeID  string `param:"node_id" validate:"required"`
	Partial bool   `query:"partial"`
}

type FieldRequest struct {
	NodeID  string `param:"node_id" validate:"required"`
	FieldID string `param:"field_id" validate:"required"`
}

type UpsertMappingRequest struct {
	NodeID        string `param:"node_id" json:"-" validate:"required"`
	TargetFieldID string `json:"targetFieldId" validate:"required"`
	SourceNodeID  string `json:"sourceNodeId" validate:"required"`
	SourceFieldID string `json:"sourceFieldId" validate:"required"`
}

type MappingsResponse struct {
	NodeID   string             `json:"node_id"`
	Mappings prefill.MappingSet `json:"mappings"`
}

func (h *Handler) GetGraph(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "routes.GetGraph")
	defer span.End()

	g, err := h.service.GetGraph(ctx)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, g)
}

func (h *Handler) GetDataSources(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "routes.GetDataSources")
	defer span.End()

	req, err := utils.BindRequest[DataSourcesRequest](c)
	if err != nil {
		return err
	}

	result, err := h.service.GetDataSources(ctx, req.NodeID, req.Partial)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, result)
}

func (h *Handler) ListMappings(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "routes.ListMappings")
	defer span.End()

	req, err := utils.BindRequest[NodeRequest](c)
	if err != nil {
		return err
	}

	mappings, err := h.service.ListMappings(ctx, req.NodeID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MappingsResponse{NodeID: req.NodeID, Mappings: mappings})
}

func (h *Handler) GetMapping(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "routes.GetMapping")
	defer span.End()

	req, err := utils.BindRequest[FieldRequest](c)
	if err != nil {
		return err
	}

	mapping, err := h.service.GetMapping(ctx, req.NodeID, req.FieldID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, mapping)
}

func (h *Handler) UpsertMapping(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "routes.UpsertMapping")
	defer span.End()

	req, err := utils.BindRequest[UpsertMappingRequest](c)
	if err != nil {
		return err
	}

	mappings, err := h.service.UpsertMapping(ctx, req.NodeID, prefill.PrefillMapping{
		TargetFieldID: req.TargetFieldID,
		SourceNodeID:  req.SourceNodeID,
		SourceFieldID: req.SourceFieldID,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MappingsResponse{NodeID: req.NodeID, Mappings: mappings})
}

func (h *Handler) RemoveMapping(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "routes.RemoveMapping")
	defer span.End()

	req, err := utils.BindRequest[FieldRequest](c)
	if err != nil {
		return err
	}

	mappings, err := h.service.RemoveMapping(ctx, req.NodeID, req.FieldID)
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, MappingsResponse{NodeID: req.NodeID, Mappings: mappings})
}

func (h *Handler) ClearMappings(c echo.Context) error {
	ctx, span := tracing.StartSpan(c.Request().Context(), "routes.ClearMappings")
	defer span.End()

	req, err := utils.BindRequest[NodeRequest](c)
	if err != nil {
		return err
	}

	if err := h.service.ClearMappings(ctx, req.NodeID); err != nil {
		return err
	}

	return c.NoContent(http.StatusNoContent)
}
