// Package graph builds the GraphQL schemas served by the four binaries: the
// unified catalog graph and the products and images subgraphs.
package graph

import (
	"context"
	"time"

	"github.com/graphql-go/graphql"
)

type Request struct {
	Query         string                 `json:"query" query:"query"`
	OperationName string                 `json:"operationName" query:"operationName"`
	Variables     map[string]interface{} `json:"variables"`
}

// Graph is an executable schema. prepare installs the request scoped
// batching state into the context of every execution.
type Graph struct {
	schema  graphql.Schema
	sdl     string
	prepare func(ctx context.Context) context.Context
}

type Options struct {
	BatchCapacity int
	BatchWait     time.Duration
}

func (g *Graph) Execute(ctx context.Context, req Request) *graphql.Result {
	if g.prepare != nil {
		ctx = g.prepare(ctx)
	}

	ctx, deferred := withDeferredErrors(ctx)

	res := graphql.Do(graphql.Params{
		Schema:         g.schema,
		RequestString:  req.Query,
		VariableValues: req.Variables,
		OperationName:  req.OperationName,
		Context:        ctx,
	})
	deferred.restore(res)
	return res
}

func (g *Graph) Schema() graphql.Schema { return g.schema }

// SDL is the schema text served under _service { sdl }.
func (g *Graph) SDL() string { return g.sdl }
