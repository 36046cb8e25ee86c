package preview

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func items(list ...Item) func(yield func(Item) bool) {
	return func(yield func(Item) bool) {
		for _, it := range list {
			if !yield(it) {
				return
			}
		}
	}
}

func folderPaths(folders []*Folder) []string {
	var out []string
	for _, f := range folders {
		out = append(out, f.Path)
	}
	sort.Strings(out)
	return out
}

func TestBuild_NestedFolders(t *testing.T) {
	// docs/, docs/readme.md, docs/img/, docs/img/a.png
	roots := Build(items(
		Item{Kind: KindFolder, Path: "docs"},
		Item{Kind: KindFile, Path: "docs/readme.md", Size: 10},
		Item{Kind: KindFolder, Path: "docs/img"},
		Item{Kind: KindFile, Path: "docs/img/a.png", Size: 20},
	))

	assert.Len(t, roots, 1)
	root := roots[0]
	assert.Equal(t, "docs", root.Path)
	assert.Len(t, root.Files, 1)
	assert.Equal(t, "docs/readme.md", root.Files[0].Path)
	assert.Len(t, root.Folders, 1)

	img := root.Folders[0]
	assert.Equal(t, "docs/img", img.Path)
	assert.Len(t, img.Files, 1)
	assert.Equal(t, "docs/img/a.png", img.Files[0].Path)
}

func TestBuild_MultipleRoots(t *testing.T) {
	roots := Build(items(
		Item{Kind: KindFolder, Path: "a"},
		Item{Kind: KindFolder, Path: "b"},
		Item{Kind: KindFile, Path: "a/x.txt", Size: 1},
		Item{Kind: KindFile, Path: "b/y.txt", Size: 2},
	))

	assert.ElementsMatch(t, []string{"a", "b"}, folderPaths(roots))
}

func TestBuild_OrphanFileDropped(t *testing.T) {
	// A depth-0 file with no enclosing folder is silently dropped, not
	// attached to a synthetic root.
	roots := Build(items(
		Item{Kind: KindFolder, Path: "docs"},
		Item{Kind: KindFile, Path: "top.txt", Size: 5},
		Item{Kind: KindFile, Path: "docs/readme.md", Size: 10},
	))

	assert.Len(t, roots, 1)
	assert.Equal(t, "docs", roots[0].Path)
	assert.Len(t, roots[0].Files, 1)
}

func TestBuild_EmptyInput(t *testing.T) {
	roots := Build(items())
	assert.Empty(t, roots)
}
