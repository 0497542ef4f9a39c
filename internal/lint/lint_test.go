package lint

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/conneroisu/mdindex/internal/errors"
	"github.com/conneroisu/mdindex/internal/scanner"
	"github.com/conneroisu/mdindex/internal/types"
)

func parse(t *testing.T, source string) *types.IndexPage {
	t.Helper()
	return scanner.ParsePage("docs/index.md", []byte(source), "h", time.Now())
}

func rules(findings []errors.LintError) []string {
	out := make([]string, len(findings))
	for i, f := range findings {
		out[i] = f.Rule
	}
	return out
}

func TestLintCleanPage(t *testing.T) {
	page := parse(t, `# Cookbook

- [Installation](install.md) - How to install.
- [Usage](https://example.com/usage) - How to use.
`)

	engine := NewEngine(nil)
	findings := engine.LintPages([]*types.IndexPage{page})
	assert.Empty(t, findings)
	assert.False(t, engine.Collector().HasErrors())
}

func TestLintMissingHeading(t *testing.T) {
	page := parse(t, "- [A](a.md) - a.\n")

	engine := NewEngine(nil)
	engine.LintPage(page)

	findings := engine.Collector().Findings()
	require.Len(t, findings, 1)
	assert.Equal(t, RuleMissingHeading, findings[0].Rule)
	assert.Equal(t, errors.ErrorSeverityWarning, findings[0].Severity)
}

func TestLintEmptyIndex(t *testing.T) {
	page := parse(t, "# Empty\n\nNothing here yet.\n")

	engine := NewEngine(nil)
	engine.LintPage(page)

	findings := engine.Collector().Findings()
	require.Len(t, findings, 1)
	assert.Equal(t, RuleEmptyIndex, findings[0].Rule)
}

func TestLintEmptyTitleAndDescription(t *testing.T) {
	page := parse(t, `# Index

- [](missing.md) - Description present.
- [Present](present.md)
`)

	engine := NewEngine(nil)
	engine.LintPage(page)

	got := rules(engine.Collector().Findings())
	assert.Contains(t, got, RuleEmptyTitle)
	assert.Contains(t, got, RuleEmptyDescription)
	assert.True(t, engine.Collector().HasErrors())
}

func TestLintDuplicates(t *testing.T) {
	page := parse(t, `# Index

- [Auth](auth.md) - Authentication guide.
- [auth](other.md) - Same title, case-folded.
- [Other](auth.md#section) - Same target modulo fragment.
`)

	engine := NewEngine(nil)
	engine.LintPage(page)

	got := rules(engine.Collector().Findings())
	assert.Contains(t, got, RuleDuplicateTitle)
	assert.Contains(t, got, RuleDuplicateURL)
}

func TestLintDuplicateTitleUnicodeFold(t *testing.T) {
	page := parse(t, `# Index

- [Große Fuge](fuge.md) - First.
- [GROSSE FUGE](other.md) - Same title under case folding.
`)

	engine := NewEngine(nil)
	engine.LintPage(page)

	assert.Contains(t, rules(engine.Collector().Findings()), RuleDuplicateTitle)
}

func TestLintDuplicateURLTrailingSlash(t *testing.T) {
	page := parse(t, `# Index

- [One](https://example.com/docs/) - First.
- [Two](https://example.com/docs) - Same target with slash.
`)

	engine := NewEngine(nil)
	engine.LintPage(page)

	assert.Contains(t, rules(engine.Collector().Findings()), RuleDuplicateURL)
}

func TestLintMalformedItem(t *testing.T) {
	page := parse(t, `# Index

- [Good](good.md) - Fine.
- not an entry at all
`)

	engine := NewEngine(nil)
	engine.LintPage(page)

	findings := engine.Collector().Findings()
	require.Len(t, findings, 1)
	assert.Equal(t, RuleMalformedItem, findings[0].Rule)
	assert.Equal(t, errors.ErrorSeverityError, findings[0].Severity)
	assert.Equal(t, 4, findings[0].Line)
}

func TestLintBareURL(t *testing.T) {
	page := parse(t, `# Index

- https://example.com/docs - No label around the link.
- not an entry at all
`)

	engine := NewEngine(nil)
	engine.LintPage(page)

	findings := engine.Collector().Findings()
	require.Len(t, findings, 2)
	assert.Equal(t, RuleBareURL, findings[0].Rule)
	assert.Equal(t, 3, findings[0].Line)
	assert.Equal(t, RuleMalformedItem, findings[1].Rule)
}

func TestLintUnsupportedScheme(t *testing.T) {
	page := parse(t, `# Index

- [Mail](mailto:docs@example.com) - Contact us.
- [Script](javascript:alert(1)) - Nope.
`)

	engine := NewEngine(nil)
	engine.LintPage(page)

	got := rules(engine.Collector().Findings())
	count := 0
	for _, rule := range got {
		if rule == RuleUnsupportedScheme {
			count++
		}
	}
	assert.GreaterOrEqual(t, count, 1)
}

func TestLintDuplicatesDoNotCrossPages(t *testing.T) {
	a := scanner.ParsePage("a.md", []byte("# A\n\n- [Auth](auth.md) - guide.\n"), "h", time.Now())
	b := scanner.ParsePage("b.md", []byte("# B\n\n- [Auth](auth.md) - guide.\n"), "h", time.Now())

	engine := NewEngine(nil)
	findings := engine.LintPages([]*types.IndexPage{a, b})
	assert.Empty(t, findings, "the same entry in different indexes is not a duplicate")
}
