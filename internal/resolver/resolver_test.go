package resolver

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeEngine records every probe so tests can assert on probe order and
// count, not just the final result.
type fakeEngine struct {
	templates map[string]bool
	probes    []string
}

func newFakeEngine(names ...string) *fakeEngine {
	templates := make(map[string]bool, len(names))
	for _, name := range names {
		templates[name] = true
	}
	return &fakeEngine{templates: templates}
}

func (f *fakeEngine) Exists(name string) bool {
	f.probes = append(f.probes, name)
	return f.templates[name]
}

func TestResolveFullPage(t *testing.T) {
	tests := []struct {
		name      string
		templates []string
		path      string
		kind      Kind
		want      string
		wantOK    bool
	}{
		{
			name:      "action template at exact level short-circuits ancestor walk",
			templates: []string{"a/index", "a/b/c/list"},
			path:      "/a/b/c",
			kind:      KindContainer,
			want:      "a/b/c/list",
			wantOK:    true,
		},
		{
			name:      "item falls back through ancestor index templates",
			templates: []string{"a/index", "a/b/c/list"},
			path:      "/a/b/c",
			kind:      KindItem,
			want:      "a/index",
			wantOK:    true,
		},
		{
			name:      "explicit action beats unified template at same level",
			templates: []string{"users/index", "users/list"},
			path:      "users",
			kind:      KindContainer,
			want:      "users/list",
			wantOK:    true,
		},
		{
			name:      "index wins when no action applies",
			templates: []string{"users/index", "users/list"},
			path:      "users",
			kind:      KindOther,
			want:      "users/index",
			wantOK:    true,
		},
		{
			name:      "root index resolves empty path",
			templates: []string{"index"},
			path:      "/",
			kind:      KindRoot,
			want:      "index",
			wantOK:    true,
		},
		{
			name:      "root action resolves for container at root",
			templates: []string{"list"},
			path:      "",
			kind:      KindContainer,
			want:      "list",
			wantOK:    true,
		},
		{
			name:      "no templates anywhere",
			templates: nil,
			path:      "/a/b/c",
			kind:      KindItem,
			want:      "",
			wantOK:    false,
		},
		{
			name:      "ancestor action re-checked before ancestor index",
			templates: []string{"a/view", "a/index"},
			path:      "/a/b",
			kind:      KindItem,
			want:      "a/view",
			wantOK:    true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := New(newFakeEngine(tt.templates...))
			got, ok := r.ResolveFullPage(tt.path, tt.kind)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveFullPageProbeOrder(t *testing.T) {
	// The item walk from the acceptance example: a/b/c/view, a/b/c/index,
	// a/b/view, a/b/index, a/view, a/index (hit).
	engine := newFakeEngine("a/index", "a/b/c/list")
	r := New(engine)

	got, ok := r.ResolveFullPage("/a/b/c", KindItem)

	assert.True(t, ok)
	assert.Equal(t, "a/index", got)
	assert.Equal(t, []string{
		"a/b/c/view", "a/b/c/index",
		"a/b/view", "a/b/index",
		"a/view", "a/index",
	}, engine.probes)
}

func TestResolveFullPageReturnsOnlyExistingTemplates(t *testing.T) {
	engine := newFakeEngine("inventory/list")
	r := New(engine)

	name, ok := r.ResolveFullPage("/inventory", KindContainer)

	assert.True(t, ok)
	assert.True(t, engine.templates[name], "resolved template must exist at call time")
}

func TestResolveFragment(t *testing.T) {
	t.Run("path-local fragment wins", func(t *testing.T) {
		engine := newFakeEngine("users/_fragments/row", "_fragments/row")
		r := New(engine)

		got, ok := r.ResolveFragment("/users", "row")

		assert.True(t, ok)
		assert.Equal(t, "users/_fragments/row", got)
	})

	t.Run("falls back to root fragment directory", func(t *testing.T) {
		engine := newFakeEngine("_fragments/row")
		r := New(engine)

		got, ok := r.ResolveFragment("/users/42", "row")

		assert.True(t, ok)
		assert.Equal(t, "_fragments/row", got)
	})

	t.Run("miss after exactly two probes, never ancestors", func(t *testing.T) {
		engine := newFakeEngine()
		r := New(engine)

		_, ok := r.ResolveFragment("/a/b/c", "row")

		assert.False(t, ok)
		assert.Equal(t, []string{
			"a/b/c/_fragments/row",
			"_fragments/row",
		}, engine.probes)
	})

	t.Run("blank target returns miss without probing", func(t *testing.T) {
		engine := newFakeEngine("_fragments/row")
		r := New(engine)

		_, ok := r.ResolveFragment("/users", "")
		assert.False(t, ok)

		_, ok = r.ResolveFragment("/users", "   ")
		assert.False(t, ok)

		assert.Empty(t, engine.probes, "blank target must not touch the engine")
	})
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "", Normalize("/"))
	assert.Equal(t, "", Normalize(""))
	assert.Equal(t, "a/b", Normalize("/a/b/"))
	assert.Equal(t, "a", Normalize("a"))
}

func TestKindString(t *testing.T) {
	assert.Equal(t, "root", KindRoot.String())
	assert.Equal(t, "container", KindContainer.String())
	assert.Equal(t, "item", KindItem.String())
	assert.Equal(t, "other", KindOther.String())
}
