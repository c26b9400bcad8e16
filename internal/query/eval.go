package query

import (
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/samber/lo"
)

// Target is the view of an index entry a filter is evaluated against.
type Target struct {
	Path string // virtual directory, "" for source roots
	Name string
	Tags []string
}

// CategoryLookup returns the category of a tag, "" when it has none.
type CategoryLookup func(tag string) string

// Groups maps a category to the tags that satisfied "~category" terms.
type Groups map[string][]string

func (g Groups) add(category string, tags ...string) {
	for _, t := range tags {
		if !lo.Contains(g[category], t) {
			g[category] = append(g[category], t)
		}
	}
}

// Match evaluates e against t. It returns the groups recorded by the first
// AND group that is satisfied. An empty expression matches with no groups.
func (e *Expr) Match(t Target, lookup CategoryLookup) (Groups, bool) {
	if lookup == nil {
		lookup = func(string) string { return "" }
	}
	if e.Empty() {
		return Groups{}, true
	}
	for _, g := range e.groups {
		groups := Groups{}
		if g.eval(&t, lookup, groups) {
			return groups, true
		}
	}
	return nil, false
}

func (g andGroup) eval(t *Target, lookup CategoryLookup, groups Groups) bool {
	for _, term := range g {
		if !term.eval(t, lookup, groups) {
			return false
		}
	}
	return true
}

type term interface {
	eval(t *Target, lookup CategoryLookup, groups Groups) bool
}

type tagTerm struct {
	tag     string
	present bool
}

func (tt tagTerm) eval(t *Target, _ CategoryLookup, _ Groups) bool {
	return lo.Contains(t.Tags, tt.tag) == tt.present
}

type categoryTerm struct {
	category string
}

func (c categoryTerm) eval(t *Target, lookup CategoryLookup, groups Groups) bool {
	hits := lo.Filter(t.Tags, func(tag string, _ int) bool {
		return lookup(tag) == c.category
	})
	if len(hits) == 0 {
		return false
	}
	groups.add(c.category, hits...)
	return true
}

type notTerm struct {
	inner nameTerm
}

func (n notTerm) eval(t *Target, lookup CategoryLookup, groups Groups) bool {
	return !n.inner.eval(t, lookup, groups)
}

type subTerm struct {
	expr *Expr
}

func (s subTerm) eval(t *Target, lookup CategoryLookup, groups Groups) bool {
	sub, ok := s.expr.Match(*t, lookup)
	if !ok {
		return false
	}
	for cat, tags := range sub {
		groups.add(cat, tags...)
	}
	return true
}

// nameTerm matches the entry name case-insensitively: as a glob when the
// pattern has wildcards, as a substring otherwise. A glob containing "/" is
// matched against the full virtual path instead of the name.
type nameTerm struct {
	pattern string // lower-cased
	glob    bool
	full    bool
}

func newNameTerm(p string) nameTerm {
	n := nameTerm{pattern: strings.ToLower(p)}
	n.glob = strings.ContainsAny(p, "*?") || (strings.Contains(p, "[") && strings.Contains(p, "]"))
	if n.glob {
		n.full = strings.Contains(p, "/")
		if n.full {
			n.pattern = strings.TrimPrefix(n.pattern, "/")
		}
		// An invalid glob degrades to a substring test.
		if !doublestar.ValidatePattern(n.pattern) {
			n = nameTerm{pattern: strings.ToLower(p)}
		}
	}
	return n
}

func (n nameTerm) eval(t *Target, _ CategoryLookup, _ Groups) bool {
	name := strings.ToLower(t.Name)
	if !n.glob {
		return strings.Contains(name, n.pattern)
	}
	subject := name
	if n.full && t.Path != "" {
		subject = strings.ToLower(t.Path) + "/" + name
	}
	ok, err := doublestar.Match(n.pattern, subject)
	return err == nil && ok
}
