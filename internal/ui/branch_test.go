package ui

import (
	"testing"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBranchModal(all []string, current, filter string) branchModal {
	fi := textinput.New()
	fi.SetValue(filter)
	return branchModal{filter: fi, all: all, current: current}
}

func TestBranchRowsUnfiltered(t *testing.T) {
	b := testBranchModal([]string{"develop", "feature/x", "main"}, "main", "")
	rows := b.visibleRows()
	require.Len(t, rows, 3)
	for _, r := range rows {
		assert.False(t, r.create)
	}
}

func TestBranchRowsSubstringFilterIsCaseInsensitive(t *testing.T) {
	b := testBranchModal([]string{"develop", "Feature/Login", "main"}, "main", "FEAT")
	rows := b.visibleRows()
	require.Len(t, rows, 2)
	assert.Equal(t, "Feature/Login", rows[0].name)
	assert.True(t, rows[1].create, "non-exact filter appends a create row")
	assert.Equal(t, "FEAT", rows[1].name)
}

func TestBranchRowsNoCreateRowOnExactMatch(t *testing.T) {
	b := testBranchModal([]string{"develop", "main"}, "main", "main")
	rows := b.visibleRows()
	require.Len(t, rows, 1)
	assert.False(t, rows[0].create)
}

func TestBranchRowsCreateRowForNewName(t *testing.T) {
	b := testBranchModal([]string{"main"}, "main", "shiny-new")
	rows := b.visibleRows()
	require.Len(t, rows, 1)
	assert.True(t, rows[0].create)
	assert.Equal(t, "shiny-new", rows[0].name)
}

func TestBranchModalRenderMarksCurrent(t *testing.T) {
	m := newModel(nil, nil)
	m.width = 80
	m.height = 30
	m.modal = modalBranch
	m.branches = testBranchModal([]string{"develop", "main"}, "main", "")

	out := m.View()
	assert.Contains(t, out, "* main")
	assert.Contains(t, out, "develop")
}

func TestBranchModalRenderShowsCreateRow(t *testing.T) {
	m := newModel(nil, nil)
	m.width = 80
	m.height = 30
	m.modal = modalBranch
	m.branches = testBranchModal([]string{"main"}, "main", "topic")

	assert.Contains(t, m.View(), "Create: topic")
}
