package tagquery

// DNF (Disjunctive Normal Form) conversion for boolean expressions.
//
// DNF is an OR of ANDs: (A AND B) OR (C AND D) OR ...
// Each AND clause is called a "conjunction" or "branch".
//
// Unlike a runtime query engine, the tag-query index has no fallback
// filter step: every predicate, positive or negated, must be directly
// usable by the index's tree walk. NOT is therefore pushed all the way
// down to each leaf (spec §4, "NOT predicate = negative predicate"),
// producing a single flat Predicates list per conjunction rather than
// separate positive/negative lists.

// Conjunction represents a single AND clause in DNF form: a flat list of
// predicates, all of which must match (spec §4.2's "flatten to a list of
// KeyPredicate leaves").
type Conjunction struct {
	Predicates []Predicate
}

// DNF represents a query in Disjunctive Normal Form.
// The query matches if ANY conjunction matches (OR semantics).
type DNF struct {
	Branches []Conjunction
}

// ToDNF converts a boolean expression to Disjunctive Normal Form.
//
// Examples:
//   - "name=cpu" -> 1 branch: [name=cpu]
//   - "name=cpu AND app=foo" -> 1 branch: [name=cpu, app=foo]
//   - "app=foo OR app=bar" -> 2 branches: [app=foo], [app=bar]
//   - "NOT region=us" -> 1 branch: [region!=us]
//   - "(app=foo OR app=bar) AND NOT region=us" -> 2 branches:
//   - [app=foo, region!=us]
//   - [app=bar, region!=us]
func ToDNF(expr Expr) DNF {
	if expr == nil {
		return DNF{Branches: []Conjunction{{}}}
	}
	return DNF{Branches: toDNFBranches(expr)}
}

// toDNFBranches converts an expression to a list of conjunctions.
// Each conjunction represents one OR branch.
func toDNFBranches(expr Expr) []Conjunction {
	switch e := expr.(type) {
	case *PredicateExpr:
		return []Conjunction{{Predicates: []Predicate{e.Predicate}}}

	case *NotExpr:
		return toDNFNot(e.Term)

	case *AndExpr:
		return toDNFAnd(e.Terms)

	case *OrExpr:
		return toDNFOr(e.Terms)

	default:
		panic("tagquery: unhandled expression type in DNF expansion")
	}
}

// toDNFNot handles NOT by pushing negation down.
// NOT (A AND B) = (NOT A) OR (NOT B)  [De Morgan]
// NOT (A OR B) = (NOT A) AND (NOT B)  [De Morgan]
// NOT (NOT A) = A                      [Double negation]
// NOT predicate = the predicate's own Negate()
func toDNFNot(expr Expr) []Conjunction {
	switch e := expr.(type) {
	case *PredicateExpr:
		return []Conjunction{{Predicates: []Predicate{e.Predicate.Negate()}}}

	case *NotExpr:
		return toDNFBranches(e.Term)

	case *AndExpr:
		var result []Conjunction
		for _, term := range e.Terms {
			result = append(result, toDNFNot(term)...)
		}
		return result

	case *OrExpr:
		negatedTerms := make([][]Conjunction, len(e.Terms))
		for i, term := range e.Terms {
			negatedTerms[i] = toDNFNot(term)
		}
		return crossProduct(negatedTerms)

	default:
		panic("tagquery: unhandled expression type in DNF negation")
	}
}

// toDNFAnd handles AND by computing cross-product of branches.
// (A1 OR A2) AND (B1 OR B2) = (A1 AND B1) OR (A1 AND B2) OR (A2 AND B1) OR (A2 AND B2)
func toDNFAnd(terms []Expr) []Conjunction {
	if len(terms) == 0 {
		return []Conjunction{{}}
	}

	termBranches := make([][]Conjunction, len(terms))
	for i, term := range terms {
		termBranches[i] = toDNFBranches(term)
	}

	return crossProduct(termBranches)
}

// toDNFOr handles OR by concatenating branches.
func toDNFOr(terms []Expr) []Conjunction {
	var result []Conjunction
	for _, term := range terms {
		result = append(result, toDNFBranches(term)...)
	}
	return result
}

// crossProduct computes the cross-product of conjunction lists.
// Each element in the result is the merge of one conjunction from each input list.
func crossProduct(lists [][]Conjunction) []Conjunction {
	if len(lists) == 0 {
		return []Conjunction{{}}
	}

	result := lists[0]
	for i := 1; i < len(lists); i++ {
		result = combineLists(result, lists[i])
	}

	return result
}

// combineLists combines two lists of conjunctions by merging each pair.
func combineLists(a, b []Conjunction) []Conjunction {
	var result []Conjunction
	for _, ca := range a {
		for _, cb := range b {
			result = append(result, mergeConjunctions(ca, cb))
		}
	}
	return result
}

// mergeConjunctions merges two conjunctions into one.
func mergeConjunctions(a, b Conjunction) Conjunction {
	merged := make([]Predicate, 0, len(a.Predicates)+len(b.Predicates))
	merged = append(merged, a.Predicates...)
	merged = append(merged, b.Predicates...)
	return Conjunction{Predicates: merged}
}

// IsEmpty returns true if the conjunction has no predicates — the DNF
// "TRUE" clause, which matches every identity (spec §4.2).
func (c *Conjunction) IsEmpty() bool {
	return len(c.Predicates) == 0
}

// String returns a human-readable representation of the conjunction.
func (c *Conjunction) String() string {
	if len(c.Predicates) == 0 {
		return "TRUE"
	}
	if len(c.Predicates) == 1 {
		return c.Predicates[0].String()
	}
	parts := make([]string, len(c.Predicates))
	for i, p := range c.Predicates {
		parts[i] = p.String()
	}
	return "(" + joinStrings(parts, " AND ") + ")"
}

// String returns a human-readable representation of the DNF.
func (d *DNF) String() string {
	if len(d.Branches) == 0 {
		return "FALSE"
	}
	if len(d.Branches) == 1 {
		return d.Branches[0].String()
	}
	parts := make([]string, len(d.Branches))
	for i, b := range d.Branches {
		parts[i] = b.String()
	}
	return joinStrings(parts, " OR ")
}

func joinStrings(parts []string, sep string) string {
	if len(parts) == 0 {
		return ""
	}
	result := parts[0]
	for i := 1; i < len(parts); i++ {
		result += sep + parts[i]
	}
	return result
}
