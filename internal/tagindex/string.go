package tagindex

import (
	"fmt"
	"sort"
	"strings"
)

// String renders the index as an indented tree, for debugging and test
// failure output. The format is not stable API.
func (ix *Index[V]) String() string {
	var b strings.Builder
	writeNode(&b, ix.root, 0)
	return b.String()
}

func writeNode[V comparable](b *strings.Builder, n *node[V], depth int) {
	indent := strings.Repeat("  ", depth)

	key, ok := n.getKey()
	if ok {
		fmt.Fprintf(b, "%skey=%s\n", indent, key)
	} else {
		fmt.Fprintf(b, "%skey=<unassigned>\n", indent)
	}

	if matches := n.matchesSnapshot(); len(matches) > 0 {
		fmt.Fprintf(b, "%s  matches=%v\n", indent, matches)
	}

	equal := n.equalChecksSnapshot()
	values := make([]string, 0, len(equal))
	for v := range equal {
		values = append(values, v)
	}
	sort.Strings(values)
	for _, v := range values {
		fmt.Fprintf(b, "%s  =%s ->\n", indent, v)
		writeNode(b, equal[v], depth+2)
	}

	other := n.otherChecksSnapshot()
	sort.Slice(other, func(i, j int) bool {
		return other[i].predicate.String() < other[j].predicate.String()
	})
	for _, e := range other {
		fmt.Fprintf(b, "%s  %s ->\n", indent, e.predicate.String())
		writeNode(b, e.child, depth+2)
	}

	if has := n.hasKeyIdx.Load(); has != nil {
		fmt.Fprintf(b, "%s  has ->\n", indent)
		writeNode(b, has, depth+2)
	}
	if otherKeys := n.otherKeysIdx.Load(); otherKeys != nil {
		fmt.Fprintf(b, "%s  other-keys ->\n", indent)
		writeNode(b, otherKeys, depth+2)
	}
	if missing := n.missingKeysIdx.Load(); missing != nil {
		fmt.Fprintf(b, "%s  missing-keys ->\n", indent)
		writeNode(b, missing, depth+2)
	}
}
