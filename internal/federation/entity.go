// Package federation implements the subgraph side and the client side of
// entity resolution: entity representations, the _Any scalar, batched
// deferred fields and the HTTP client the gateway uses to reach subgraphs.
package federation

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/alimikegami/pos-microservices/catalog-federation/pkg/errs"
	"github.com/graphql-go/graphql"
	"github.com/graphql-go/graphql/language/ast"
)

const (
	TypenameField = "__typename"
	KeyField      = "id"
)

// Representation is an entity stub: the type name and the key, nothing else.
type Representation struct {
	Typename string
	ID       int64
}

func (r Representation) Map() map[string]interface{} {
	return map[string]interface{}{TypenameField: r.Typename, KeyField: r.ID}
}

func ParseRepresentation(v interface{}) (Representation, error) {
	m, ok := v.(map[string]interface{})
	if !ok {
		return Representation{}, errs.NewValidation("representations", "must be objects")
	}

	typename, _ := m[TypenameField].(string)
	if typename == "" {
		return Representation{}, errs.NewValidation(TypenameField, "is required")
	}

	id, err := ParseID(m[KeyField])
	if err != nil {
		return Representation{}, err
	}

	return Representation{Typename: typename, ID: id}, nil
}

// ParseID accepts ids the way they arrive from JSON variables, inline
// literals or other gateways.
func ParseID(v interface{}) (int64, error) {
	switch id := v.(type) {
	case int:
		return int64(id), nil
	case int32:
		return int64(id), nil
	case int64:
		return id, nil
	case float64:
		if id != float64(int64(id)) {
			return 0, errs.NewValidation(KeyField, fmt.Sprintf("%v is not an integer", id))
		}
		return int64(id), nil
	case json.Number:
		n, err := id.Int64()
		if err != nil {
			return 0, errs.NewValidation(KeyField, err.Error())
		}
		return n, nil
	case string:
		n, err := strconv.ParseInt(id, 10, 64)
		if err != nil {
			return 0, errs.NewValidation(KeyField, fmt.Sprintf("%q is not an integer", id))
		}
		return n, nil
	case nil:
		return 0, errs.NewValidation(KeyField, "is required")
	}
	return 0, errs.NewValidation(KeyField, fmt.Sprintf("unsupported type %T", v))
}

// GroupRepresentations keeps the first-seen order of type names and ids so
// that results can be written back by position.
func GroupRepresentations(raw []interface{}) (order []string, ids map[string][]int64, reps []Representation, err error) {
	ids = map[string][]int64{}
	reps = make([]Representation, 0, len(raw))
	seen := map[Representation]bool{}

	for _, v := range raw {
		rep, err := ParseRepresentation(v)
		if err != nil {
			return nil, nil, nil, err
		}
		reps = append(reps, rep)

		if _, ok := ids[rep.Typename]; !ok {
			order = append(order, rep.Typename)
		}
		if !seen[rep] {
			seen[rep] = true
			ids[rep.Typename] = append(ids[rep.Typename], rep.ID)
		}
	}

	return order, ids, reps, nil
}

var AnyScalar = graphql.NewScalar(graphql.ScalarConfig{
	Name:        "_Any",
	Description: "An entity representation: an object carrying __typename and key fields.",
	Serialize:   func(value interface{}) interface{} { return value },
	ParseValue:  func(value interface{}) interface{} { return value },
	ParseLiteral: func(valueAST ast.Value) interface{} {
		return literalValue(valueAST)
	},
})

func literalValue(valueAST ast.Value) interface{} {
	switch v := valueAST.(type) {
	case *ast.ObjectValue:
		out := make(map[string]interface{}, len(v.Fields))
		for _, f := range v.Fields {
			out[f.Name.Value] = literalValue(f.Value)
		}
		return out
	case *ast.ListValue:
		out := make([]interface{}, 0, len(v.Values))
		for _, item := range v.Values {
			out = append(out, literalValue(item))
		}
		return out
	case *ast.IntValue:
		n, err := strconv.ParseInt(v.Value, 10, 64)
		if err != nil {
			return nil
		}
		return n
	case *ast.FloatValue:
		f, err := strconv.ParseFloat(v.Value, 64)
		if err != nil {
			return nil
		}
		return f
	case *ast.StringValue:
		return v.Value
	case *ast.BooleanValue:
		return v.Value
	case *ast.EnumValue:
		return v.Value
	}
	return nil
}

// ServiceType answers _service { sdl } so a gateway can compose the graph.
var ServiceType = graphql.NewObject(graphql.ObjectConfig{
	Name: "_Service",
	Fields: graphql.Fields{
		"sdl": &graphql.Field{Type: graphql.NewNonNull(graphql.String)},
	},
})

type Service struct {
	SDL string `json:"sdl"`
}

func ServiceField(sdl string) *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(ServiceType),
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			return map[string]interface{}{"sdl": sdl}, nil
		},
	}
}

// EntityResolver resolves every representation of one type name with a
// single call. The result maps ids to the resolved entity; ids missing from
// the map resolve to null.
type EntityResolver func(p graphql.ResolveParams, ids []int64) (map[int64]interface{}, error)

// EntitiesField builds _entities(representations: [_Any!]!): [_Entity]!.
// Representations are grouped by type name and each group is answered by
// one resolver call, whatever the number of stubs.
func EntitiesField(union *graphql.Union, resolvers map[string]EntityResolver) *graphql.Field {
	return &graphql.Field{
		Type: graphql.NewNonNull(graphql.NewList(union)),
		Args: graphql.FieldConfigArgument{
			"representations": &graphql.ArgumentConfig{
				Type: graphql.NewNonNull(graphql.NewList(graphql.NewNonNull(AnyScalar))),
			},
		},
		Resolve: func(p graphql.ResolveParams) (interface{}, error) {
			raw, _ := p.Args["representations"].([]interface{})
			order, ids, reps, err := GroupRepresentations(raw)
			if err != nil {
				return nil, err
			}

			resolved := map[string]map[int64]interface{}{}
			for _, typename := range order {
				resolve, ok := resolvers[typename]
				if !ok {
					return nil, errs.NewValidation(TypenameField, fmt.Sprintf("%s is not an entity of this service", typename))
				}
				found, err := resolve(p, ids[typename])
				if err != nil {
					return nil, errs.WithCode(err)
				}
				resolved[typename] = found
			}

			out := make([]interface{}, len(reps))
			for i, rep := range reps {
				if v, ok := resolved[rep.Typename][rep.ID]; ok {
					out[i] = v
				}
			}
			return out, nil
		},
	}
}
