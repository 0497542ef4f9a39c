package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLintErrorFormat(t *testing.T) {
	le := &LintError{
		Rule:     "empty-title",
		File:     "docs/cookbook.md",
		Line:     12,
		Message:  "entry has an empty title",
		Severity: ErrorSeverityError,
	}
	assert.Equal(t, "docs/cookbook.md:12: error: entry has an empty title (empty-title)", le.Error())
}

func TestSeverityString(t *testing.T) {
	assert.Equal(t, "info", ErrorSeverityInfo.String())
	assert.Equal(t, "warning", ErrorSeverityWarning.String())
	assert.Equal(t, "error", ErrorSeverityError.String())
	assert.Equal(t, "unknown", ErrorSeverity(42).String())
}

func TestCollectorAddAndFindings(t *testing.T) {
	c := NewCollector()

	c.Add(LintError{Rule: "a", File: "x.md", Severity: ErrorSeverityWarning})
	c.Add(LintError{Rule: "b", File: "y.md", Severity: ErrorSeverityError})

	findings := c.Findings()
	require.Len(t, findings, 2)
	assert.False(t, findings[0].Timestamp.IsZero())

	assert.True(t, c.HasErrors())
	assert.True(t, c.HasWarnings())
}

func TestCollectorFindingsByFile(t *testing.T) {
	c := NewCollector()
	c.Add(LintError{Rule: "a", File: "x.md"})
	c.Add(LintError{Rule: "b", File: "y.md"})
	c.Add(LintError{Rule: "c", File: "x.md"})

	assert.Len(t, c.FindingsByFile("x.md"), 2)
	assert.Len(t, c.FindingsByFile("y.md"), 1)
	assert.Empty(t, c.FindingsByFile("z.md"))
}

func TestCollectorErr(t *testing.T) {
	c := NewCollector()
	assert.NoError(t, c.Err())

	c.Add(LintError{Rule: "a", Severity: ErrorSeverityWarning})
	assert.NoError(t, c.Err(), "warnings alone do not produce an error")

	c.Add(LintError{Rule: "b", File: "x.md", Line: 1, Message: "broken", Severity: ErrorSeverityError})
	c.AddError(fmt.Errorf("network down"))

	err := c.Err()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "broken")
	assert.Contains(t, err.Error(), "network down")
}

func TestCollectorClear(t *testing.T) {
	c := NewCollector()
	c.Add(LintError{Rule: "a", Severity: ErrorSeverityError})
	c.AddError(fmt.Errorf("boom"))

	c.Clear()
	assert.Empty(t, c.Findings())
	assert.False(t, c.HasErrors())
	assert.NoError(t, c.Err())
}
