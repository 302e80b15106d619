// Package mutate implements the insertion and upsert relational
// operators: given a compiled extraction plan for a chain of node, edge
// and association tables and an upstream row source, it writes one
// primary record per row, an inverse index record when the main table is
// an edge, and one record per attached association. Each record is
// routed independently to whichever store backs its own table's
// persistence class: the main and inverse records always share the main
// table's store, but an association can land in a different store than
// its main table if the two were declared with different persistence.
//
// New resolves the chain's table names against the schema environment
// and compiles the extraction plan; parsing the extract dictionary from
// source text and deciding join order against other operators are
// upstream collaborators.
package mutate

import (
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"github.com/tesseradb/tessera/pkg/codec"
	"github.com/tesseradb/tessera/pkg/expr"
	"github.com/tesseradb/tessera/pkg/relation"
	"github.com/tesseradb/tessera/pkg/schema"
	"github.com/tesseradb/tessera/pkg/store"
)

var (
	tracer = otel.Tracer("github.com/tesseradb/tessera/pkg/mutate")
	meter  = otel.Meter("github.com/tesseradb/tessera/pkg/mutate")

	rowsWritten, _ = meter.Int64Counter(
		"tessera.mutate.rows_written",
		metric.WithDescription("rows successfully written by an insertion or upsert operator"),
	)
	keyConflicts, _ = meter.Int64Counter(
		"tessera.mutate.key_conflicts",
		metric.WithDescription("rows rejected because their primary key already existed"),
	)
)

// Insertion is the compiled Insert/Upsert relational operator.
type Insertion struct {
	name        string
	mainEntity  schema.Entity
	main        mainPlan
	assocs      []assocPlan
	upstream    relation.RowIter
	bindingName string
	upsert      bool
	router      store.Router
}

// New compiles an Insertion (or, with upsert set, an Upsert) over chain,
// the ordered list of table names naming exactly one main table plus
// zero or more of its associations. extractMap supplies the column
// values for every key and value column the plan needs; any column
// missing from it falls back to that column's declared default.
//
// If chain names no associations explicitly, every association already
// attached to the main table (when it is a node) is included
// automatically. An explicitly named association that does not attach to
// the resolved main table is a build-time error.
func New(
	env *schema.Env,
	bindingName string,
	bindingSchema expr.BindingSchema,
	upstream relation.RowIter,
	chain []string,
	extractMap expr.Dict,
	upsert bool,
	router store.Router,
) (*Insertion, error) {
	mainEnt, explicitAssocs, err := resolveChain(env, chain)
	if err != nil {
		return nil, err
	}

	assocs, err := resolveAssociations(env, mainEnt, explicitAssocs)
	if err != nil {
		return nil, err
	}

	resolved, err := extractMap.PartialEval(bindingName, expr.BindingMap{bindingName: bindingSchema})
	if err != nil {
		return nil, fmt.Errorf("mutate: extract map: %w", err)
	}

	mp, err := buildMainPlan(env, mainEnt, resolved)
	if err != nil {
		return nil, err
	}

	aps := make([]assocPlan, 0, len(assocs))
	for _, a := range assocs {
		valEx, err := expr.MakeExtractors(a.Assoc.Vals, resolved)
		if err != nil {
			return nil, fmt.Errorf("mutate: association %s: %w", a.Assoc.Id, err)
		}
		aps = append(aps, assocPlan{id: a.Assoc.Id, valExtractors: valEx, valTypings: expr.Typings(a.Assoc.Vals)})
	}

	name := "Insert"
	if upsert {
		name = "Upsert"
	}

	return &Insertion{
		name:        name,
		mainEntity:  mainEnt,
		main:        mp,
		assocs:      aps,
		upstream:    upstream,
		bindingName: bindingName,
		upsert:      upsert,
		router:      router,
	}, nil
}

// resolveChain splits a chain of table names into its single main entity
// (a Node or an Edge) and whatever entities named an association.
func resolveChain(env *schema.Env, chain []string) (schema.Entity, []resolvedAssoc, error) {
	var main *schema.Entity
	var assocs []resolvedAssoc
	for _, name := range chain {
		ent, ok := env.Resolve(name)
		if !ok {
			return schema.Entity{}, nil, fmt.Errorf("mutate: chain names undefined table %q: %w", name, schema.ErrUndefinedType)
		}
		switch ent.Kind {
		case schema.KindNode, schema.KindEdge:
			if main != nil {
				return schema.Entity{}, nil, ErrWrongSpecification
			}
			e := ent
			main = &e
		case schema.KindAssoc:
			assocs = append(assocs, resolvedAssoc{name: name, entity: ent})
		default:
			return schema.Entity{}, nil, fmt.Errorf("mutate: %q does not name a mutable table", name)
		}
	}
	if main == nil {
		return schema.Entity{}, nil, ErrWrongSpecification
	}
	return *main, assocs, nil
}

type resolvedAssoc struct {
	name   string
	entity schema.Entity
}

// resolveAssociations validates explicitly named associations against the
// resolved main entity, or, if none were named, gathers whatever
// associations are already attached to the main table.
func resolveAssociations(env *schema.Env, main schema.Entity, explicit []resolvedAssoc) ([]schema.Entity, error) {
	mainId := main.TableId()
	if len(explicit) > 0 {
		out := make([]schema.Entity, 0, len(explicit))
		for _, a := range explicit {
			if a.entity.Assoc.Src != mainId {
				return nil, fmt.Errorf("mutate: association %q: %w", a.name, ErrNoAssociation)
			}
			out = append(out, a.entity)
		}
		return out, nil
	}

	if main.Kind != schema.KindNode {
		return nil, nil
	}
	out := make([]schema.Entity, 0, len(main.Node.Attached))
	for _, id := range main.Node.Attached {
		ent, ok := env.ResolveById(id)
		if !ok {
			return nil, fmt.Errorf("mutate: attached association %s is no longer registered", id)
		}
		out = append(out, ent)
	}
	return out, nil
}

// Name satisfies relation.RelationalAlgebra.
func (ins *Insertion) Name() string { return ins.name }

// Bindings satisfies relation.RelationalAlgebra; an insertion consumes
// its upstream binding but does not re-expose any bindings of its own.
func (ins *Insertion) Bindings() map[string]struct{} { return map[string]struct{}{} }

// BindingMap satisfies relation.RelationalAlgebra. The TupleSets this
// operator emits carry one key (the main row's key) and 1+len(assocs)
// values (the main row's value followed by each association's value).
func (ins *Insertion) BindingMap() (relation.BindingMap, error) {
	return relation.BindingMap{Inner: map[string]expr.BindingSchema{}, KeySize: 1, ValSize: 1 + len(ins.assocs)}, nil
}

// Identity reports the main table this operator mutates.
func (ins *Insertion) Identity() *schema.Entity { return &ins.mainEntity }

// Iter drives the operator against ctx, returning a TupleIter that pulls
// one upstream row at a time and performs its writes eagerly: by the time
// Next returns a TupleSet, that row's records have already been written
// to the stores their tables route to. Writes to the root store become
// durable only when the enclosing transaction commits.
func (ins *Insertion) Iter(ctx context.Context) (relation.TupleIter, error) {
	ctx, span := tracer.Start(ctx, "mutate."+ins.name)
	return &insertionIter{ins: ins, ctx: ctx, span: span}, nil
}

type insertionIter struct {
	ins     *Insertion
	ctx     context.Context
	span    trace.Span
	scratch store.Scratch
	done    bool
}

func (it *insertionIter) Next() (relation.TupleSet, error) {
	if it.done {
		return relation.TupleSet{}, io.EOF
	}

	row, err := it.ins.upstream.Next()
	if err != nil {
		it.done = true
		if errors.Is(err, io.EOF) {
			it.span.End()
			return relation.TupleSet{}, io.EOF
		}
		it.span.RecordError(err)
		it.span.End()
		return relation.TupleSet{}, err
	}

	ts, err := it.ins.writeRow(it.ctx, &it.scratch, row)
	if err != nil {
		it.done = true
		if errors.Is(err, ErrKeyConflict) {
			keyConflicts.Add(it.ctx, 1, metric.WithAttributes(attribute.String("table", it.ins.main.id.String())))
		}
		it.span.RecordError(err)
		it.span.End()
		return relation.TupleSet{}, err
	}
	rowsWritten.Add(it.ctx, 1, metric.WithAttributes(attribute.String("operation", it.ins.name)))
	return ts, nil
}

// writeRow evaluates one upstream row against the compiled plan and
// performs every write the row implies: the main record, the inverse
// index record when the main table is an edge, and one record per
// attached association. The main and inverse records share the main
// table's store; each association routes by its own table's persistence.
func (ins *Insertion) writeRow(ctx context.Context, scratch *store.Scratch, row expr.Row) (relation.TupleSet, error) {
	keyVals, err := expr.EvalAll(ins.main.keyExtractors, row)
	if err != nil {
		return relation.TupleSet{}, fmt.Errorf("mutate: evaluating key: %w", err)
	}
	key, err := codec.Encode(ins.main.id.Id, keyVals, ins.main.keyTypings)
	if err != nil {
		return relation.TupleSet{}, fmt.Errorf("mutate: encoding key: %w", err)
	}

	valVals, err := expr.EvalAll(ins.main.valExtractors, row)
	if err != nil {
		return relation.TupleSet{}, fmt.Errorf("mutate: evaluating value: %w", err)
	}
	val, err := codec.Encode(codec.DataKindPayload, valVals, ins.main.valTypings)
	if err != nil {
		return relation.TupleSet{}, fmt.Errorf("mutate: encoding value: %w", err)
	}

	if !ins.upsert {
		scratch.Reset()
		found, err := ins.router.Get(ctx, ins.main.id, key.Bytes(), scratch)
		if err != nil {
			return relation.TupleSet{}, fmt.Errorf("mutate: probing for conflict: %w", err)
		}
		if found {
			return relation.TupleSet{}, fmt.Errorf("mutate: table %s key %s: %w", ins.main.id, hex.EncodeToString(key.Bytes()), ErrKeyConflict)
		}
	}

	if err := ins.router.Put(ctx, ins.main.id, key.Bytes(), val.Bytes()); err != nil {
		return relation.TupleSet{}, fmt.Errorf("mutate: writing main record: %w", err)
	}

	if ins.main.isEdge {
		invKeyVals, err := expr.EvalAll(ins.main.invKeyExtractors, row)
		if err != nil {
			return relation.TupleSet{}, fmt.Errorf("mutate: evaluating inverse key: %w", err)
		}
		invKey, err := codec.Encode(ins.main.id.Id, invKeyVals, ins.main.invKeyTypings)
		if err != nil {
			return relation.TupleSet{}, fmt.Errorf("mutate: encoding inverse key: %w", err)
		}
		if err := ins.router.Put(ctx, ins.main.id, invKey.Bytes(), key.Bytes()); err != nil {
			return relation.TupleSet{}, fmt.Errorf("mutate: writing inverse record: %w", err)
		}
	}

	assocVals := make([]codec.Key, 0, len(ins.assocs))
	for _, a := range ins.assocs {
		aVals, err := expr.EvalAll(a.valExtractors, row)
		if err != nil {
			return relation.TupleSet{}, fmt.Errorf("mutate: evaluating association %s: %w", a.id, err)
		}
		aVal, err := codec.Encode(codec.DataKindPayload, aVals, a.valTypings)
		if err != nil {
			return relation.TupleSet{}, fmt.Errorf("mutate: encoding association %s: %w", a.id, err)
		}
		aKey := make(codec.Key, len(key))
		copy(aKey, key)
		aKey.OverwritePrefix(a.id.Id)
		if err := ins.router.Put(ctx, a.id, aKey.Bytes(), aVal.Bytes()); err != nil {
			return relation.TupleSet{}, fmt.Errorf("mutate: writing association %s: %w", a.id, err)
		}
		assocVals = append(assocVals, aVal)
	}

	return relation.TupleSet{
		Keys: []codec.Key{key},
		Vals: append([]codec.Key{val}, assocVals...),
	}, nil
}
