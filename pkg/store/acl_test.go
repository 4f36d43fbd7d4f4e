package store

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseActions(t *testing.T) {
	assert.Equal(t, []int{1, 2, 3, 4}, ParseActions(""))
	assert.Equal(t, []int{2, 1}, ParseActions("read, create"))
	assert.Equal(t, []int{4}, ParseActions("delete,bogus,delete"))
}

func TestACLTree(t *testing.T) {
	tree := NewACLTree()

	root, err := tree.Add("", "admin", "Admin", ParseActions(""))
	require.NoError(t, err)
	assert.Equal(t, 1, root.ID)

	child, err := tree.Add("admin", "admin.clients", "Clients", ParseActions("read"))
	require.NoError(t, err)
	assert.Equal(t, 2, child.ID)
	assert.Equal(t, 1, child.ParentID)

	t.Run("pai inexistente não consome id", func(t *testing.T) {
		_, err := tree.Add("ghost", "x", "X", nil)
		assert.ErrorIs(t, err, ErrResourceNotFound)

		next, err := tree.Add("admin.clients", "admin.clients.notes", "Notes", nil)
		require.NoError(t, err)
		assert.Equal(t, 3, next.ID)
	})

	t.Run("render aninhado", func(t *testing.T) {
		out := tree.Render()
		require.Contains(t, out, "1")
		node := out["1"].(map[string]any)
		assert.Equal(t, "0", node["parent_id"])
		assert.Equal(t, map[string]any{"1": "Create", "2": "View", "3": "Update", "4": "Delete"}, node["actions"])

		children := node["children"].(map[string]any)
		require.Contains(t, children, "2")
		grand := children["2"].(map[string]any)
		assert.Equal(t, "1", grand["parent_id"])
		assert.Equal(t, map[string]any{"2": "View"}, grand["actions"])
		assert.Contains(t, grand["children"], "3")
	})

	t.Run("navegação", func(t *testing.T) {
		roots := tree.Roots()
		require.Len(t, roots, 1)
		assert.Equal(t, "admin", roots[0].Name)

		kids := tree.ChildrenOf(roots[0])
		require.Len(t, kids, 1)
		assert.Equal(t, "admin.clients", kids[0].Name)
		assert.Len(t, tree.ChildrenOf(kids[0]), 1)
	})
}
