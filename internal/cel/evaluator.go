// Package cel evaluates CEL predicates against product records.
//
// Two variables are bound for every record: r holds the raw values as
// decoded from the source and s holds the same values rendered as display
// strings, which is what the lookup fields match against.
package cel

import (
	"fmt"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
	"github.com/google/cel-go/common/types/ref"
	celext "github.com/google/cel-go/ext"

	"github.com/oakwood-commons/prodlookup/pkg/loader"
)

const (
	// RecordVar is bound to the raw record.
	RecordVar = "r"
	// StringsVar is bound to the record with every value stringified.
	StringsVar = "s"
)

// Evaluator compiles CEL expressions in a record environment.
type Evaluator struct {
	env *cel.Env
}

// NewEvaluator creates an evaluator with the standard extension libraries.
// Additional options extend the environment (custom functions, macros).
func NewEvaluator(opts ...cel.EnvOption) (*Evaluator, error) {
	env, err := newRecordEnv(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}
	return &Evaluator{env: env}, nil
}

// Environment returns the CEL environment for introspection.
func (e *Evaluator) Environment() *cel.Env {
	return e.env
}

func newRecordEnv(opts ...cel.EnvOption) (*cel.Env, error) {
	allOpts := make([]cel.EnvOption, 0, 6+len(opts))
	allOpts = append(allOpts,
		cel.Variable(RecordVar, cel.MapType(cel.StringType, cel.DynType)),
		cel.Variable(StringsVar, cel.MapType(cel.StringType, cel.StringType)),
		celext.Strings(),
		celext.Encoders(),
		celext.Lists(),
		celext.Math(),
	)
	allOpts = append(allOpts, opts...)
	return cel.NewEnv(allOpts...)
}

// Predicate is a compiled boolean expression.
type Predicate struct {
	expr string
	prg  cel.Program
}

// Compile parses and type-checks expr. The expression must produce a bool
// (or dyn, checked at evaluation time).
func (e *Evaluator) Compile(expr string) (*Predicate, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	out := ast.OutputType()
	if !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, fmt.Errorf("expression %q returns %s, want bool", expr, out)
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	return &Predicate{expr: expr, prg: prg}, nil
}

func (p *Predicate) String() string { return p.expr }

// Match evaluates the predicate for one record.
func (p *Predicate) Match(rec loader.Record) (bool, error) {
	val, _, err := p.prg.Eval(activation(rec))
	if err != nil {
		return false, fmt.Errorf("eval error: %w", err)
	}
	b, ok := val.(types.Bool)
	if !ok {
		return false, fmt.Errorf("expression %q returned %s, want bool", p.expr, val.Type().TypeName())
	}
	return bool(b), nil
}

// Filter keeps the records the predicate accepts, in order. Evaluation
// stops at the first error, which names the offending record index.
func (p *Predicate) Filter(records []loader.Record) ([]loader.Record, error) {
	out := make([]loader.Record, 0, len(records))
	for i, rec := range records {
		ok, err := p.Match(rec)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if ok {
			out = append(out, rec)
		}
	}
	return out, nil
}

// Evaluate compiles and runs expr against rec and returns the result as a
// Go value. It accepts any output type.
func (e *Evaluator) Evaluate(expr string, rec loader.Record) (any, error) {
	ast, issues := e.env.Compile(expr)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("compilation error: %w", issues.Err())
	}
	prg, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("program error: %w", err)
	}
	val, _, err := prg.Eval(activation(rec))
	if err != nil {
		return nil, fmt.Errorf("eval error: %w", err)
	}
	return ToGo(val), nil
}

func activation(rec loader.Record) map[string]any {
	raw := make(map[string]any, len(rec))
	strs := make(map[string]string, len(rec))
	for k, v := range rec {
		raw[k] = v
		strs[k] = loader.Stringify(v)
	}
	return map[string]any{RecordVar: raw, StringsVar: strs}
}

// ToGo converts CEL values to plain Go values, recursing into lists and
// maps.
func ToGo(val ref.Val) any {
	if val == nil {
		return nil
	}
	switch v := val.(type) {
	case types.Bool:
		return bool(v)
	case types.Int:
		return int64(v)
	case types.Uint:
		return uint64(v)
	case types.Double:
		return float64(v)
	case types.String:
		return string(v)
	case types.Bytes:
		return []byte(v)
	case types.Null:
		return nil
	}

	switch inner := val.Value().(type) {
	case []ref.Val:
		out := make([]any, len(inner))
		for i, el := range inner {
			out[i] = ToGo(el)
		}
		return out
	case map[ref.Val]ref.Val:
		out := make(map[string]any, len(inner))
		for k, v := range inner {
			out[fmt.Sprint(ToGo(k))] = ToGo(v)
		}
		return out
	default:
		return inner
	}
}
