package automaton

import (
	"fmt"
	"reflect"
	"sync"

	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common"

	"github.com/openfga/ppbfs/pkg/graph"
)

const (
	relationshipVariable = "rel"
	nodeVariable         = "node"
)

var (
	relationshipEnv = sync.OnceValues(func() (*cel.Env, error) {
		return cel.NewEnv(cel.Variable(relationshipVariable, cel.MapType(cel.StringType, cel.DynType)))
	})
	nodeEnv = sync.OnceValues(func() (*cel.Env, error) {
		return cel.NewEnv(cel.Variable(nodeVariable, cel.MapType(cel.StringType, cel.DynType)))
	})
)

// Predicate is a compiled boolean CEL expression over a relationship (variable `rel`, with keys
// id, type, start, end and props) or a node (variable `node`, with keys id, labels and props).
type Predicate struct {
	Expression string
	program    cel.Program
}

func compilePredicate(env *cel.Env, expression string) (*Predicate, error) {
	source := common.NewStringSource(expression, "predicate")
	ast, issues := env.CompileSource(source)
	if issues != nil {
		if err := issues.Err(); err != nil {
			return nil, &CompilationError{Expression: expression, Cause: err}
		}
	}

	out := ast.OutputType()
	if !reflect.DeepEqual(out, cel.BoolType) && !reflect.DeepEqual(out, cel.DynType) {
		return nil, &CompilationError{
			Expression: expression,
			Cause:      fmt.Errorf("expected a bool predicate output, but got '%s'", out),
		}
	}

	prg, err := env.Program(ast)
	if err != nil {
		return nil, &CompilationError{
			Expression: expression,
			Cause:      fmt.Errorf("predicate construction: %w", err),
		}
	}

	return &Predicate{Expression: expression, program: prg}, nil
}

// CompileRelationshipPredicate compiles an expression over the `rel` variable.
func CompileRelationshipPredicate(expression string) (*Predicate, error) {
	env, err := relationshipEnv()
	if err != nil {
		return nil, &CompilationError{Expression: expression, Cause: err}
	}
	return compilePredicate(env, expression)
}

// CompileNodePredicate compiles an expression over the `node` variable.
func CompileNodePredicate(expression string) (*Predicate, error) {
	env, err := nodeEnv()
	if err != nil {
		return nil, &CompilationError{Expression: expression, Cause: err}
	}
	return compilePredicate(env, expression)
}

func (p *Predicate) eval(vars map[string]any) (bool, error) {
	out, _, err := p.program.Eval(vars)
	if err != nil {
		return false, &EvaluationError{Expression: p.Expression, Cause: err}
	}

	met, ok := out.Value().(bool)
	if !ok {
		return false, &EvaluationError{
			Expression: p.Expression,
			Cause:      fmt.Errorf("expected a bool result, but got '%v'", out.Type()),
		}
	}
	return met, nil
}

// TestRelationship evaluates the predicate against rel. A nil predicate accepts everything.
func (p *Predicate) TestRelationship(rel graph.Relationship) (bool, error) {
	if p == nil {
		return true, nil
	}
	return p.eval(map[string]any{
		relationshipVariable: map[string]any{
			"id":    rel.ID,
			"type":  rel.Type,
			"start": rel.Start,
			"end":   rel.End,
			"props": properties(rel.Properties),
		},
	})
}

// TestNode evaluates the predicate against node. A nil predicate accepts everything.
func (p *Predicate) TestNode(node graph.Node) (bool, error) {
	if p == nil {
		return true, nil
	}
	labels := node.Labels
	if labels == nil {
		labels = []string{}
	}
	return p.eval(map[string]any{
		nodeVariable: map[string]any{
			"id":     node.ID,
			"labels": labels,
			"props":  properties(node.Properties),
		},
	})
}

func properties(props map[string]any) map[string]any {
	if props == nil {
		return map[string]any{}
	}
	return props
}
