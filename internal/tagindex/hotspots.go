package tagindex

import "fmt"

// HotSpot describes a node whose other-checks fan-out exceeded the
// caller's threshold (spec §4.8): a diagnostic for identifying predicate
// shapes that defeat the prefix-tree pruning (broad regexes, large
// NotIn sets, many distinct ordered-comparison bounds on one key).
// Predicates names every other-checks predicate registered at that node,
// so an operator can see which shapes are actually responsible for the
// fan-out rather than just the count.
type HotSpot struct {
	Path       string
	Count      int
	Predicates []string
}

// FindHotSpots walks the index reporting every node whose other-checks
// size exceeds threshold, breadcrumbed by the path of keys and branch
// kinds taken to reach it.
func (ix *Index[V]) FindHotSpots(threshold int) []HotSpot {
	var out []HotSpot
	walkHotSpots(ix.root, "", threshold, &out)
	return out
}

func walkHotSpots[V comparable](n *node[V], path string, threshold int, out *[]HotSpot) {
	if key, ok := n.getKey(); ok {
		path = joinBreadcrumb(path, fmt.Sprintf("K=%s", key))
	}

	otherChecks := n.otherChecksSnapshot()
	if count := len(otherChecks); count > threshold {
		predicates := make([]string, count)
		for i, e := range otherChecks {
			predicates[i] = e.predicate.String()
		}
		*out = append(*out, HotSpot{
			Path:       joinBreadcrumb(path, "other-checks"),
			Count:      count,
			Predicates: predicates,
		})
	}

	for value, child := range n.equalChecksSnapshot() {
		key, _ := n.getKey()
		walkHotSpots(child, joinBreadcrumb(path, fmt.Sprintf("%s,%s,:eq", key, value)), threshold, out)
	}
	for _, e := range otherChecks {
		walkHotSpots(e.child, joinBreadcrumb(path, "other-checks/"+e.predicate.String()), threshold, out)
	}
	if has := n.hasKeyIdx.Load(); has != nil {
		walkHotSpots(has, joinBreadcrumb(path, "has"), threshold, out)
	}
	if other := n.otherKeysIdx.Load(); other != nil {
		walkHotSpots(other, joinBreadcrumb(path, "other-keys"), threshold, out)
	}
	if missing := n.missingKeysIdx.Load(); missing != nil {
		walkHotSpots(missing, joinBreadcrumb(path, "missing-keys"), threshold, out)
	}
}

func joinBreadcrumb(path, segment string) string {
	if path == "" {
		return segment
	}
	return path + " > " + segment
}
