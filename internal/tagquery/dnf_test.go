package tagquery

import "testing"

func TestToDNF(t *testing.T) {
	tests := []struct {
		name         string
		input        string
		wantBranches int
		wantString   string
	}{
		{
			name:         "single equal",
			input:        "name=cpu",
			wantBranches: 1,
			wantString:   "name=cpu",
		},
		{
			name:         "two equal AND",
			input:        "name=cpu AND app=foo",
			wantBranches: 1,
			wantString:   "(name=cpu AND app=foo)",
		},
		{
			name:         "two equal OR",
			input:        "app=foo OR app=bar",
			wantBranches: 2,
			wantString:   "app=foo OR app=bar",
		},
		{
			name:         "NOT equal becomes not-equal leaf",
			input:        "NOT region=us",
			wantBranches: 1,
			wantString:   "region!=us",
		},
		{
			name:         "equal AND NOT equal",
			input:        "name=cpu AND NOT region=us",
			wantBranches: 1,
			wantString:   "(name=cpu AND region!=us)",
		},
		{
			name:         "OR with NOT distributes",
			input:        "(app=foo OR app=bar) AND NOT region=us",
			wantBranches: 2,
			wantString:   "(app=foo AND region!=us) OR (app=bar AND region!=us)",
		},
		{
			name:         "complex AND OR",
			input:        "(a=1 AND b=2) OR (c=3 AND d=4)",
			wantBranches: 2,
			wantString:   "(a=1 AND b=2) OR (c=3 AND d=4)",
		},
		{
			name:         "three way OR",
			input:        "a=1 OR a=2 OR a=3",
			wantBranches: 3,
			wantString:   "a=1 OR a=2 OR a=3",
		},
		{
			name:         "double NOT",
			input:        "NOT NOT region=us",
			wantBranches: 1,
			wantString:   "region=us",
		},
		{
			name:         "De Morgan AND",
			input:        "NOT (a=1 AND b=2)",
			wantBranches: 2,
			wantString:   "a!=1 OR b!=2",
		},
		{
			name:         "De Morgan OR",
			input:        "NOT (a=1 OR b=2)",
			wantBranches: 1,
			wantString:   "(a!=1 AND b!=2)",
		},
		{
			name:         "has predicate",
			input:        "has(zone)",
			wantBranches: 1,
			wantString:   "has(zone)",
		},
		{
			name:         "NOT has becomes missing",
			input:        "NOT has(zone)",
			wantBranches: 1,
			wantString:   "missing(zone)",
		},
		{
			name:         "in predicate",
			input:        "dev in {sda, sdb}",
			wantBranches: 1,
			wantString:   "dev in {sda,sdb}",
		},
		{
			name:         "NOT in becomes not-in",
			input:        "NOT dev in {sda, sdb}",
			wantBranches: 1,
			wantString:   "dev not in {sda,sdb}",
		},
		{
			name:         "regex predicate",
			input:        `name=~/^disk.*/`,
			wantBranches: 1,
			wantString:   "name=~/^disk.*/",
		},
		{
			name:         "ordered comparisons negate to their duals",
			input:        "NOT cpu>5",
			wantBranches: 1,
			wantString:   "cpu<=5",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}

			dnf := q.DNF()
			if len(dnf.Branches) != tt.wantBranches {
				t.Errorf("ToDNF(%q) branches = %d, want %d", tt.input, len(dnf.Branches), tt.wantBranches)
			}

			if got := dnf.String(); got != tt.wantString {
				t.Errorf("ToDNF(%q).String() = %q, want %q", tt.input, got, tt.wantString)
			}
		})
	}
}

func TestConjunctionPredicateCounts(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  int
	}{
		{"single", "name=cpu", 1},
		{"single negated", "NOT region=us", 1},
		{"two", "name=cpu AND app=foo", 2},
		{"one positive one negated", "name=cpu AND NOT region=us", 2},
		{"two negated", "NOT a=1 AND NOT b=2", 2},
		{"mixed four", "a=1 AND b=2 AND NOT c=3 AND NOT d=4", 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := Parse(tt.input)
			if err != nil {
				t.Fatalf("Parse(%q) error: %v", tt.input, err)
			}

			dnf := q.DNF()
			if len(dnf.Branches) != 1 {
				t.Fatalf("expected 1 branch, got %d", len(dnf.Branches))
			}

			if got := len(dnf.Branches[0].Predicates); got != tt.want {
				t.Errorf("predicate count = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestDNFDistribution(t *testing.T) {
	q, err := Parse("(a=1 OR a=2) AND (b=1 OR b=2)")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	dnf := q.DNF()
	if len(dnf.Branches) != 4 {
		t.Fatalf("expected 4 branches, got %d: %s", len(dnf.Branches), dnf.String())
	}

	for i, branch := range dnf.Branches {
		if len(branch.Predicates) != 2 {
			t.Errorf("branch %d: expected 2 predicates, got %d", i, len(branch.Predicates))
		}
	}
}

func TestDNFWithComplex(t *testing.T) {
	// (app=foo OR app=bar) AND env=prod AND NOT region=us
	// Should produce 2 branches, each with 3 predicates.
	q, err := Parse("(app=foo OR app=bar) AND env=prod AND NOT region=us")
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}

	dnf := q.DNF()
	if len(dnf.Branches) != 2 {
		t.Fatalf("expected 2 branches, got %d: %s", len(dnf.Branches), dnf.String())
	}

	for i, branch := range dnf.Branches {
		if len(branch.Predicates) != 3 {
			t.Errorf("branch %d: expected 3 predicates, got %d", i, len(branch.Predicates))
		}
	}
}

func TestConjunctionIsEmpty(t *testing.T) {
	c := Conjunction{}
	if !c.IsEmpty() {
		t.Error("zero-value Conjunction should be empty (TRUE clause)")
	}
	c.Predicates = append(c.Predicates, NewHas("zone"))
	if c.IsEmpty() {
		t.Error("Conjunction with a predicate should not be empty")
	}
}
