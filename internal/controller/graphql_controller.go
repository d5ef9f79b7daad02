package controller

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/alimikegami/pos-microservices/catalog-federation/internal/graph"
	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/errs"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/gqlerrors"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

type GraphQLController struct {
	graph *graph.Graph
}

func CreateGraphQLController(e *echo.Group, g *graph.Graph) {
	c := GraphQLController{
		graph: g,
	}
	e.POST("/graphql", c.Execute)
	e.GET("/graphql", c.Execute)
}

func (c *GraphQLController) Execute(e echo.Context) error {
	ctx := e.Request().Context()

	payload := graph.Request{}
	err := e.Bind(&payload)
	if err != nil {
		log.Ctx(ctx).Error().Err(err).Str("component", "GraphQLController.Execute").Msg("")
		return writeRequestError(e, "malformed request body")
	}

	if raw := e.QueryParam("variables"); raw != "" && payload.Variables == nil {
		if err := json.Unmarshal([]byte(raw), &payload.Variables); err != nil {
			return writeRequestError(e, "variables must be a JSON object")
		}
	}

	if strings.TrimSpace(payload.Query) == "" {
		return writeRequestError(e, "query is required")
	}

	result := c.graph.Execute(ctx, payload)
	for _, gqlErr := range result.Errors {
		log.Ctx(ctx).Warn().Str("component", "GraphQLController.Execute").
			Str("code", extensionCode(gqlErr)).Interface("path", gqlErr.Path).Msg(gqlErr.Message)
	}

	return e.JSON(http.StatusOK, result)
}

func writeRequestError(e echo.Context, message string) error {
	return e.JSON(http.StatusBadRequest, graphql.Result{
		Errors: []gqlerrors.FormattedError{{
			Message:    message,
			Extensions: map[string]interface{}{"code": errs.CodeBadRequest},
		}},
	})
}

func extensionCode(err gqlerrors.FormattedError) string {
	code, _ := err.Extensions["code"].(string)
	return code
}
