// Package tagquery provides the boolean query language consumed by the
// tag-query index: a parser that turns a filter string into an AST, and
// DNF normalization that flattens that AST into the conjunctions the
// index is built from.
//
// This package is a frontend parsing layer only. It MUST NOT:
//   - Walk or mutate the index
//   - Plan traversal order (DNF keeps predicates in source order; the
//     index sorts each conjunction by key)
//   - Know about tag identities, caches, or tree nodes
package tagquery

import (
	"strings"
)

// Expr is the interface for all AST nodes.
// The marker method prevents external types from implementing Expr.
type Expr interface {
	expr()
	// String returns a human-readable representation of the expression.
	String() string
}

// AndExpr represents logical AND of multiple expressions.
// Invariant: len(Terms) >= 2
type AndExpr struct {
	Terms []Expr
}

func (AndExpr) expr() {}

func (a *AndExpr) String() string {
	parts := make([]string, len(a.Terms))
	for i, t := range a.Terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, " AND ") + ")"
}

// OrExpr represents logical OR of multiple expressions.
// Invariant: len(Terms) >= 2
type OrExpr struct {
	Terms []Expr
}

func (OrExpr) expr() {}

func (o *OrExpr) String() string {
	parts := make([]string, len(o.Terms))
	for i, t := range o.Terms {
		parts[i] = t.String()
	}
	return "(" + strings.Join(parts, " OR ") + ")"
}

// NotExpr represents logical negation.
type NotExpr struct {
	Term Expr
}

func (NotExpr) expr() {}

func (n *NotExpr) String() string {
	return "NOT " + n.Term.String()
}

// PredicateExpr is a leaf AST node wrapping a single Predicate.
// Composite predicates never appear here — the index folds them from
// several PredicateExprs on the same key after DNF expansion.
type PredicateExpr struct {
	Predicate Predicate
}

func (PredicateExpr) expr() {}

func (p *PredicateExpr) String() string {
	return p.Predicate.String()
}

// flattenAnd combines two expressions into an AndExpr, flattening nested AndExprs.
func flattenAnd(left, right Expr) Expr {
	var terms []Expr

	if a, ok := left.(*AndExpr); ok {
		terms = append(terms, a.Terms...)
	} else {
		terms = append(terms, left)
	}

	if a, ok := right.(*AndExpr); ok {
		terms = append(terms, a.Terms...)
	} else {
		terms = append(terms, right)
	}

	return &AndExpr{Terms: terms}
}

// FlattenAnd combines multiple expressions into an AndExpr, flattening nested AndExprs.
// This is the exported version for use by other packages.
func FlattenAnd(exprs ...Expr) Expr {
	if len(exprs) == 0 {
		return nil
	}
	if len(exprs) == 1 {
		return exprs[0]
	}

	var terms []Expr
	for _, e := range exprs {
		if a, ok := e.(*AndExpr); ok {
			terms = append(terms, a.Terms...)
		} else {
			terms = append(terms, e)
		}
	}
	return &AndExpr{Terms: terms}
}

// flattenOr combines two expressions into an OrExpr, flattening nested OrExprs.
func flattenOr(left, right Expr) Expr {
	var terms []Expr

	if o, ok := left.(*OrExpr); ok {
		terms = append(terms, o.Terms...)
	} else {
		terms = append(terms, left)
	}

	if o, ok := right.(*OrExpr); ok {
		terms = append(terms, o.Terms...)
	} else {
		terms = append(terms, right)
	}

	return &OrExpr{Terms: terms}
}
