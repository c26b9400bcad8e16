package query_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tagspace/internal/query"
)

func categories(m map[string]string) query.CategoryLookup {
	return func(tag string) string { return m[tag] }
}

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"empty", "", nil},
		{"splits on spaces", "+a  +b", []string{"+a", "+b"}},
		{"keeps quoted spaces", `"my file" +a`, []string{`"my file"`, "+a"}},
		{"operators are tokens", "( +a | +b )", []string{"(", "+a", "|", "+b", ")"}},
		{"attached parens stay literal", "(+a)", []string{"(+a)"}},
		{"unterminated quote runs to end", `"a b`, []string{`"a b`}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, query.Tokenize(tt.in))
		})
	}
}

func TestExpr_Match(t *testing.T) {
	lookup := categories(map[string]string{"red": "color", "blue": "color", "cat": "animal"})

	tests := []struct {
		name   string
		expr   string
		target query.Target
		want   bool
	}{
		{"empty matches everything", "", query.Target{Name: "x"}, true},
		{"both tags present", "+a +b", query.Target{Name: "x", Tags: []string{"b", "a"}}, true},
		{"one tag missing", "+a +b", query.Target{Name: "x", Tags: []string{"a"}}, false},
		{"either tag", "+a | +b", query.Target{Name: "x", Tags: []string{"b"}}, true},
		{"neither tag", "+a | +b", query.Target{Name: "x", Tags: []string{"c"}}, false},
		{"tag absent", "-a", query.Target{Name: "x", Tags: []string{"b"}}, true},
		{"tag absent fails", "-a", query.Target{Name: "x", Tags: []string{"a"}}, false},
		{"substring is case-insensitive", "PHOTO", query.Target{Name: "my_photo.jpg"}, true},
		{"negated substring", "!foo", query.Target{Name: "bar.txt"}, true},
		{"negated substring fails", "!foo", query.Target{Name: "food.txt"}, false},
		{"negation disables prefixes", "!+a", query.Target{Name: "x", Tags: []string{"a"}}, true},
		{"glob against name", "*.png", query.Target{Path: "src/img", Name: "A.PNG"}, true},
		{"glob rejects other extension", "*.png", query.Target{Name: "a.jpg"}, false},
		{"glob with slash uses full path", "src/*/a.png", query.Target{Path: "src/img", Name: "a.png"}, true},
		{"glob with leading slash", "/src/**", query.Target{Path: "src/img/deep", Name: "a.png"}, true},
		{"single star does not cross segments", "src/*.png", query.Target{Path: "src/img", Name: "a.png"}, false},
		{"quoted literal disables prefixes", `"+a"`, query.Target{Name: "x+a.txt"}, true},
		{"quoted literal with space", `"my file"`, query.Target{Name: "My File.txt"}, true},
		{"character class", "img[0-9].png", query.Target{Name: "img3.png"}, true},
		{"unbalanced bracket is a substring", "a[", query.Target{Name: "xa[y"}, true},
		{"category present", "~color", query.Target{Name: "x", Tags: []string{"cat", "red"}}, true},
		{"category missing", "~color", query.Target{Name: "x", Tags: []string{"cat"}}, false},
		{"parens group or", "+x ( +a | +b )", query.Target{Name: "n", Tags: []string{"x", "b"}}, true},
		{"parens group requires enclosing term", "+x ( +a | +b )", query.Target{Name: "n", Tags: []string{"b"}}, false},
		{"dangling open paren becomes and terms", "( +a +b", query.Target{Name: "n", Tags: []string{"a"}}, false},
		{"dangling open paren satisfied", "( +a +b", query.Target{Name: "n", Tags: []string{"a", "b"}}, true},
		{"stray close paren ands both sides", "+a | +b ) +c", query.Target{Name: "n", Tags: []string{"b"}}, false},
		{"stray close paren ands both sides satisfied", "+a | +b ) +c", query.Target{Name: "n", Tags: []string{"b", "c"}}, true},
		{"empty groups are dropped", "+a |", query.Target{Name: "n"}, false},
		{"empty parens match", "( )", query.Target{Name: "n"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, got := query.Parse(tt.expr).Match(tt.target, lookup)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExpr_MatchGroups(t *testing.T) {
	lookup := categories(map[string]string{"red": "color", "blue": "color", "cat": "animal"})

	t.Run("glob with category records matched tag", func(t *testing.T) {
		groups, ok := query.Parse("*.png ~color").Match(query.Target{Name: "a.png", Tags: []string{"cat", "red"}}, lookup)
		require.True(t, ok)
		assert.Equal(t, query.Groups{"color": {"red"}}, groups)
	})

	t.Run("records every matching tag in tag order", func(t *testing.T) {
		groups, ok := query.Parse("~color ~animal").Match(query.Target{Name: "a", Tags: []string{"blue", "cat", "red"}}, lookup)
		require.True(t, ok)
		assert.Equal(t, query.Groups{"color": {"blue", "red"}, "animal": {"cat"}}, groups)
	})

	t.Run("or returns the first satisfied group", func(t *testing.T) {
		groups, ok := query.Parse("~animal +zzz | ~color").Match(query.Target{Name: "a", Tags: []string{"cat", "red"}}, lookup)
		require.True(t, ok)
		assert.Equal(t, query.Groups{"color": {"red"}}, groups)
	})

	t.Run("sub-expression groups are merged", func(t *testing.T) {
		groups, ok := query.Parse("~animal ( ~color )").Match(query.Target{Name: "a", Tags: []string{"cat", "red"}}, lookup)
		require.True(t, ok)
		assert.Equal(t, query.Groups{"animal": {"cat"}, "color": {"red"}}, groups)
	})

	t.Run("unknown tags fall in the empty category", func(t *testing.T) {
		groups, ok := query.Parse("~").Match(query.Target{Name: "a", Tags: []string{"misc"}}, lookup)
		require.True(t, ok)
		assert.Equal(t, query.Groups{"": {"misc"}}, groups)
	})

	t.Run("empty expression yields empty groups", func(t *testing.T) {
		groups, ok := query.Parse("  ").Match(query.Target{Name: "a"}, nil)
		require.True(t, ok)
		assert.Empty(t, groups)
	})
}
