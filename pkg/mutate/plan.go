package mutate

import (
	"fmt"

	"github.com/tesseradb/tessera/pkg/expr"
	"github.com/tesseradb/tessera/pkg/schema"
)

// mainPlan is the compiled, reusable extraction plan for a chain's main
// table. It is built once per Insertion and evaluated once per upstream
// row; nothing in it depends on the row being processed.
type mainPlan struct {
	id     schema.TableId
	isEdge bool

	keyExtractors []expr.Extractor
	keyTypings    []schema.Typing

	// invKeyExtractors is non-nil only for an edge's main table. It
	// produces the inverse-direction key so an edge can be looked up from
	// either endpoint.
	invKeyExtractors []expr.Extractor
	invKeyTypings    []schema.Typing

	valExtractors []expr.Extractor
	valTypings    []schema.Typing
}

// assocPlan is the compiled extraction plan for one association attached
// to the chain's main table. An association record reuses the main row's
// key bytes under its own table prefix, so it never needs its own key
// extractors.
type assocPlan struct {
	id            schema.TableId
	valExtractors []expr.Extractor
	valTypings    []schema.Typing
}

// buildMainPlan compiles extraction for a Node or Edge main entity
// against a partially-evaluated extract dictionary. For an edge, the
// forward key is built from its source node's keys, then its destination
// node's keys, then the edge's own keys, each node resolved by id rather
// than by name since the chain only ever names the edge itself.
func buildMainPlan(env *schema.Env, main schema.Entity, dict expr.Dict) (mainPlan, error) {
	switch main.Kind {
	case schema.KindNode:
		return buildNodePlan(main.Node, dict)
	case schema.KindEdge:
		return buildEdgePlan(env, main.Edge, dict)
	default:
		return mainPlan{}, fmt.Errorf("mutate: main table %s is neither a node nor an edge", main.TableId())
	}
}

func buildNodePlan(n *schema.Node, dict expr.Dict) (mainPlan, error) {
	keyEx, err := expr.MakeExtractors(n.Keys, dict)
	if err != nil {
		return mainPlan{}, fmt.Errorf("mutate: node %s keys: %w", n.Id, err)
	}
	valEx, err := expr.MakeExtractors(n.Vals, dict)
	if err != nil {
		return mainPlan{}, fmt.Errorf("mutate: node %s values: %w", n.Id, err)
	}
	return mainPlan{
		id:            n.Id,
		keyExtractors: keyEx,
		keyTypings:    expr.Typings(n.Keys),
		valExtractors: valEx,
		valTypings:    expr.Typings(n.Vals),
	}, nil
}

var boolTyping = schema.Primitive("Bool")

func buildEdgePlan(env *schema.Env, e *schema.Edge, dict expr.Dict) (mainPlan, error) {
	srcEnt, ok := env.ResolveById(e.Src)
	if !ok || srcEnt.Kind != schema.KindNode {
		return mainPlan{}, fmt.Errorf("mutate: edge %s: source node %s is not registered", e.Id, e.Src)
	}
	dstEnt, ok := env.ResolveById(e.Dst)
	if !ok || dstEnt.Kind != schema.KindNode {
		return mainPlan{}, fmt.Errorf("mutate: edge %s: destination node %s is not registered", e.Id, e.Dst)
	}

	forwardCols := concatCols(srcEnt.Node.Keys, dstEnt.Node.Keys, e.Keys)
	inverseCols := concatCols(dstEnt.Node.Keys, srcEnt.Node.Keys, e.Keys)

	fwdEx, err := expr.MakeExtractors(forwardCols, dict)
	if err != nil {
		return mainPlan{}, fmt.Errorf("mutate: edge %s forward key: %w", e.Id, err)
	}
	invEx, err := expr.MakeExtractors(inverseCols, dict)
	if err != nil {
		return mainPlan{}, fmt.Errorf("mutate: edge %s inverse key: %w", e.Id, err)
	}
	valEx, err := expr.MakeExtractors(e.Vals, dict)
	if err != nil {
		return mainPlan{}, fmt.Errorf("mutate: edge %s values: %w", e.Id, err)
	}

	return mainPlan{
		id:               e.Id,
		isEdge:           true,
		keyExtractors:    prependConstBool(fwdEx, true),
		keyTypings:       prependTyping(expr.Typings(forwardCols)),
		invKeyExtractors: prependConstBool(invEx, false),
		invKeyTypings:    prependTyping(expr.Typings(inverseCols)),
		valExtractors:    valEx,
		valTypings:       expr.Typings(e.Vals),
	}, nil
}

func concatCols(groups ...[]schema.Col) []schema.Col {
	var out []schema.Col
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func prependConstBool(extractors []expr.Extractor, v bool) []expr.Extractor {
	return append([]expr.Extractor{expr.ConstExtractor(schema.Bool(v))}, extractors...)
}

func prependTyping(typs []schema.Typing) []schema.Typing {
	return append([]schema.Typing{boolTyping}, typs...)
}
