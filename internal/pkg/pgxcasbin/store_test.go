package pgxcasbin

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRuleArgs(t *testing.T) {
	args, err := ruleArgs("g", []string{"42", "member"})
	require.NoError(t, err)
	assert.Equal(t, []any{"g", "42", "member", "", "", "", ""}, args)

	_, err = ruleArgs("p", make([]string, fieldCount+1))
	assert.ErrorIs(t, err, ErrRuleTooLong)
}

func TestTrimTrailingEmpty(t *testing.T) {
	assert.Equal(t, []string{"p", "member", "library.loan", "create"}, trimTrailingEmpty([]string{"p", "member", "library.loan", "create", "", "", ""}))
	assert.Empty(t, trimTrailingEmpty([]string{"", ""}))
}

func TestQuoteIdent(t *testing.T) {
	assert.Equal(t, `"libris_casbin_policy"`, quoteIdent("libris_casbin_policy"))
	assert.Equal(t, `"a""b"`, quoteIdent(`a"b`))
}

type fakeApplier struct {
	reloads  int
	added    [][]string
	removed  [][]string
	filtered []string
}

func (f *fakeApplier) LoadPolicy() error { f.reloads++; return nil }

func (f *fakeApplier) SelfAddPolicies(_, _ string, rules [][]string) (bool, error) {
	f.added = append(f.added, rules...)
	return true, nil
}

func (f *fakeApplier) SelfRemovePolicies(_, _ string, rules [][]string) (bool, error) {
	f.removed = append(f.removed, rules...)
	return true, nil
}

func (f *fakeApplier) SelfRemoveFilteredPolicy(_, _ string, _ int, values ...string) (bool, error) {
	f.filtered = values
	return true, nil
}

func TestApply(t *testing.T) {
	// Arrange
	f := &fakeApplier{}
	apply := Apply(f)

	// Act
	apply(`{"event":"add","origin":"x","sec":"g","ptype":"g","rules":[["42","member"]]}`)
	apply(`{"event":"remove","origin":"x","sec":"g","ptype":"g","rules":[["42","member"]]}`)
	apply(`{"event":"remove_filtered","origin":"x","sec":"g","ptype":"g","field_values":["42"]}`)
	apply(`{"event":"reload","origin":"x"}`)
	apply(`{"event":"bogus","origin":"x"}`)
	apply(`not json`)

	// Assert
	assert.Equal(t, [][]string{{"42", "member"}}, f.added)
	assert.Equal(t, [][]string{{"42", "member"}}, f.removed)
	assert.Equal(t, []string{"42"}, f.filtered)
	assert.Equal(t, 2, f.reloads, "reload event plus fallback reload for the unknown event")
}
