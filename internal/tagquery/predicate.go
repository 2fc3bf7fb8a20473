package tagquery

import (
	"fmt"
	"regexp"
	"regexp/syntax"
	"sort"
	"strconv"
	"strings"
)

// PredicateKind identifies the variant of a Predicate (the spec's
// KeyPredicate sum type).
type PredicateKind int

const (
	// PredEqual is an exact value match: key == value.
	PredEqual PredicateKind = iota
	// PredHas matches when the key is present with any value.
	PredHas
	// PredNotEqual matches any value other than the given one, and is
	// satisfied by the key's absence.
	PredNotEqual
	// PredIn matches when the value is a member of a fixed set.
	PredIn
	// PredNotIn is the negation of PredIn; satisfied by the key's absence.
	PredNotIn
	// PredRegex matches values accepted by a compiled pattern.
	PredRegex
	// PredNotRegex is the negation of PredRegex; satisfied by the key's
	// absence.
	PredNotRegex
	// PredGt, PredGe, PredLt, PredLe are ordered comparisons, numeric when
	// both operands parse as numbers and lexicographic otherwise.
	PredGt
	PredGe
	PredLt
	PredLe
	// PredMissing is the negation of PredHas: satisfied only by the key's
	// absence, never by a present value.
	PredMissing
	// PredComposite is a conjunction of predicates on the same key, folded
	// together by the index during insertion. It never appears in a
	// parsed AST.
	PredComposite
)

func (k PredicateKind) String() string {
	switch k {
	case PredEqual:
		return "Equal"
	case PredHas:
		return "Has"
	case PredNotEqual:
		return "NotEqual"
	case PredIn:
		return "In"
	case PredNotIn:
		return "NotIn"
	case PredRegex:
		return "Regex"
	case PredNotRegex:
		return "NotRegex"
	case PredGt:
		return "Gt"
	case PredGe:
		return "Ge"
	case PredLt:
		return "Lt"
	case PredLe:
		return "Le"
	case PredMissing:
		return "Missing"
	case PredComposite:
		return "Composite"
	default:
		return "Unknown"
	}
}

// Predicate is a boolean condition on a single tag key — the spec's
// KeyPredicate. Predicate values are compared for equality by the index's
// other-checks map, so two Predicates built from the same inputs must be
// structurally equal; construct them only through the New* functions below.
type Predicate struct {
	Kind    PredicateKind
	Key     string
	Value   string   // Equal, NotEqual, Gt, Ge, Lt, Le
	Values  []string // In, NotIn — sorted, deduplicated
	Pattern string   // Regex, NotRegex — the raw source pattern
	re      *regexp.Regexp
	prefix  string // cached literal prefix

	Members []Predicate // PredComposite only
}

// NewEqual builds an exact-value predicate.
func NewEqual(key, value string) Predicate {
	return Predicate{Kind: PredEqual, Key: key, Value: value, prefix: value}
}

// NewHas builds a key-presence predicate.
func NewHas(key string) Predicate {
	return Predicate{Kind: PredHas, Key: key}
}

// NewNotEqual builds the negation of NewEqual.
func NewNotEqual(key, value string) Predicate {
	return Predicate{Kind: PredNotEqual, Key: key, Value: value}
}

// NewIn builds a set-membership predicate.
func NewIn(key string, values []string) Predicate {
	vs := dedupSorted(values)
	return Predicate{Kind: PredIn, Key: key, Values: vs, prefix: commonPrefix(vs)}
}

// NewNotIn builds the negation of NewIn.
func NewNotIn(key string, values []string) Predicate {
	vs := dedupSorted(values)
	return Predicate{Kind: PredNotIn, Key: key, Values: vs}
}

// NewRegex builds a regex predicate. The pattern must already be a valid
// RE2 expression; callers that parse user input should surface compile
// errors before reaching this constructor.
func NewRegex(key, pattern string) (Predicate, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Predicate{}, fmt.Errorf("tagquery: invalid regex %q: %w", pattern, err)
	}
	return Predicate{Kind: PredRegex, Key: key, Pattern: pattern, re: re, prefix: literalPrefix(pattern)}, nil
}

// NewNotRegex builds the negation of NewRegex.
func NewNotRegex(key, pattern string) (Predicate, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return Predicate{}, fmt.Errorf("tagquery: invalid regex %q: %w", pattern, err)
	}
	return Predicate{Kind: PredNotRegex, Key: key, Pattern: pattern, re: re}, nil
}

// NewGt, NewGe, NewLt, NewLe build ordered-comparison predicates.
func NewGt(key, value string) Predicate { return Predicate{Kind: PredGt, Key: key, Value: value} }
func NewGe(key, value string) Predicate { return Predicate{Kind: PredGe, Key: key, Value: value} }
func NewLt(key, value string) Predicate { return Predicate{Kind: PredLt, Key: key, Value: value} }
func NewLe(key, value string) Predicate { return Predicate{Kind: PredLe, Key: key, Value: value} }

// NewMissing builds the negation of NewHas.
func NewMissing(key string) Predicate {
	return Predicate{Kind: PredMissing, Key: key}
}

// NewComposite folds multiple same-key predicates into a conjunction. The
// index, never the parser, constructs these during insertion (spec §3,
// invariant 7).
func NewComposite(key string, members []Predicate) Predicate {
	return Predicate{Kind: PredComposite, Key: key, Members: members}
}

// IsEqual, IsHas, IsIn, IsRegex, IsComposite discriminate the variant, as
// required by the external-interface contract (spec §6).
func (p Predicate) IsEqual() bool     { return p.Kind == PredEqual }
func (p Predicate) IsHas() bool       { return p.Kind == PredHas }
func (p Predicate) IsIn() bool        { return p.Kind == PredIn || p.Kind == PredNotIn }
func (p Predicate) IsRegex() bool     { return p.Kind == PredRegex || p.Kind == PredNotRegex }
func (p Predicate) IsComposite() bool { return p.Kind == PredComposite }

// negatable reports whether matches({}) (spec §3) returns true: the
// predicate is satisfied purely by the key's absence.
func (p Predicate) negatable() bool {
	switch p.Kind {
	case PredNotEqual, PredNotIn, PredNotRegex, PredMissing:
		return true
	default:
		return false
	}
}

// Matches reports whether the predicate accepts the given value.
func (p Predicate) Matches(value string) bool {
	switch p.Kind {
	case PredEqual:
		return value == p.Value
	case PredHas:
		return true
	case PredNotEqual:
		return value != p.Value
	case PredIn:
		return containsString(p.Values, value)
	case PredNotIn:
		return !containsString(p.Values, value)
	case PredRegex:
		return p.re.MatchString(value)
	case PredNotRegex:
		return !p.re.MatchString(value)
	case PredGt:
		return compareValues(value, p.Value) > 0
	case PredGe:
		return compareValues(value, p.Value) >= 0
	case PredLt:
		return compareValues(value, p.Value) < 0
	case PredLe:
		return compareValues(value, p.Value) <= 0
	case PredMissing:
		return false
	case PredComposite:
		for _, m := range p.Members {
			if !m.Matches(value) {
				return false
			}
		}
		return true
	default:
		panic(fmt.Sprintf("tagquery: unhandled predicate kind %v in Matches", p.Kind))
	}
}

// MatchesEmpty reports whether the predicate is satisfied by the key's
// total absence from the tag map (spec §3's matches({}) overload).
func (p Predicate) MatchesEmpty() bool {
	if p.Kind == PredComposite {
		for _, m := range p.Members {
			if !m.MatchesEmpty() {
				return false
			}
		}
		return true
	}
	return p.negatable()
}

// Prefix returns the literal prefix any matching value must begin with,
// or "" if no such prefix can be established. It is the input to the
// PrefixTree pre-filter (spec §4.1).
func (p Predicate) Prefix() string {
	return p.prefix
}

// MatchesAfterPrefix re-checks a regex predicate given that the value is
// already known to start with p.Prefix() — the spec's
// matches_after_prefix (§4.6). For non-regex predicates it is equivalent
// to Matches.
func (p Predicate) MatchesAfterPrefix(value string) bool {
	return p.Matches(value)
}

// Negate returns the predicate obtained by pushing a logical NOT down to
// this leaf, per the De Morgan push-down DNF requires (spec §4, "NOT
// predicate = negative predicate"). Composite predicates never reach
// here: DNF negation runs before the index folds same-key leaves.
func (p Predicate) Negate() Predicate {
	switch p.Kind {
	case PredEqual:
		return NewNotEqual(p.Key, p.Value)
	case PredNotEqual:
		return NewEqual(p.Key, p.Value)
	case PredHas:
		return NewMissing(p.Key)
	case PredMissing:
		return NewHas(p.Key)
	case PredIn:
		return NewNotIn(p.Key, p.Values)
	case PredNotIn:
		return NewIn(p.Key, p.Values)
	case PredRegex:
		np, err := NewNotRegex(p.Key, p.Pattern)
		if err != nil {
			panic(fmt.Sprintf("tagquery: re-negating already-compiled regex %q: %v", p.Pattern, err))
		}
		return np
	case PredNotRegex:
		np, err := NewRegex(p.Key, p.Pattern)
		if err != nil {
			panic(fmt.Sprintf("tagquery: re-negating already-compiled regex %q: %v", p.Pattern, err))
		}
		return np
	case PredGt:
		return NewLe(p.Key, p.Value)
	case PredGe:
		return NewLt(p.Key, p.Value)
	case PredLt:
		return NewGe(p.Key, p.Value)
	case PredLe:
		return NewGt(p.Key, p.Value)
	default:
		panic(fmt.Sprintf("tagquery: predicate kind %v cannot be negated", p.Kind))
	}
}

func (p Predicate) String() string {
	switch p.Kind {
	case PredEqual:
		return fmt.Sprintf("%s=%s", p.Key, p.Value)
	case PredHas:
		return fmt.Sprintf("has(%s)", p.Key)
	case PredMissing:
		return fmt.Sprintf("missing(%s)", p.Key)
	case PredNotEqual:
		return fmt.Sprintf("%s!=%s", p.Key, p.Value)
	case PredIn:
		return fmt.Sprintf("%s in {%s}", p.Key, strings.Join(p.Values, ","))
	case PredNotIn:
		return fmt.Sprintf("%s not in {%s}", p.Key, strings.Join(p.Values, ","))
	case PredRegex:
		return fmt.Sprintf("%s=~/%s/", p.Key, p.Pattern)
	case PredNotRegex:
		return fmt.Sprintf("%s!~/%s/", p.Key, p.Pattern)
	case PredGt:
		return fmt.Sprintf("%s>%s", p.Key, p.Value)
	case PredGe:
		return fmt.Sprintf("%s>=%s", p.Key, p.Value)
	case PredLt:
		return fmt.Sprintf("%s<%s", p.Key, p.Value)
	case PredLe:
		return fmt.Sprintf("%s<=%s", p.Key, p.Value)
	case PredComposite:
		parts := make([]string, len(p.Members))
		for i, m := range p.Members {
			parts[i] = m.String()
		}
		return "(" + strings.Join(parts, " AND ") + ")"
	default:
		return "unknown predicate"
	}
}

// compareValues orders two tag values numerically when both parse as
// floats, and lexicographically (byte-wise) otherwise.
func compareValues(a, b string) int {
	af, aerr := strconv.ParseFloat(a, 64)
	bf, berr := strconv.ParseFloat(b, 64)
	if aerr == nil && berr == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(a, b)
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}

func dedupSorted(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// commonPrefix returns the longest string that is a prefix of every
// element in values, or "" if values is empty.
func commonPrefix(values []string) string {
	if len(values) == 0 {
		return ""
	}
	prefix := values[0]
	for _, v := range values[1:] {
		prefix = sharedPrefix(prefix, v)
		if prefix == "" {
			return ""
		}
	}
	return prefix
}

func sharedPrefix(a, b string) string {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	i := 0
	for i < n && a[i] == b[i] {
		i++
	}
	return a[:i]
}

// literalPrefix extracts the literal prefix any string matched by pattern
// must begin with, using regexp/syntax's program analysis — the only
// part of the regex engine the spec permits the index to consume (spec
// §1: "only its prefix-string capability is consumed").
func literalPrefix(pattern string) string {
	re, err := syntax.Parse(pattern, syntax.Perl)
	if err != nil {
		return ""
	}
	re = re.Simplify()
	prog, err := syntax.Compile(re)
	if err != nil {
		return ""
	}
	// Matching is unanchored, so only a pattern anchored at the start of
	// the text fixes how a matching value begins.
	if prog.StartCond()&syntax.EmptyBeginText == 0 {
		return ""
	}
	compiled, err := regexp.Compile(pattern)
	if err != nil {
		return ""
	}
	prefix, _ := compiled.LiteralPrefix()
	return prefix
}
