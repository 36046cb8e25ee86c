// Package preview reconstructs the flat list of File and Folder items
// produced by an archive session into a nested folder/file tree, the way
// a GUI or CLI would render an archive's contents. The prefix-matching
// attachment strategy is grounded on internal/rootdir.go's
// NewZipRootDirFinder, generalized from "find the single common root" to
// "attach every folder and file to its nearest enclosing folder".
package preview

import (
	"sort"
	"strings"

	"github.com/meniny/zipkit/internal/zipsession"
)

// Kind distinguishes the two item types the source iterator can yield;
// Skip and Stop from the design notes are modeled by simply omitting or
// ending the Go iter.Seq rather than as explicit values.
type Kind int

const (
	KindFile Kind = iota
	KindFolder
)

// Item is one entry from the flattened archive listing.
type Item struct {
	Kind Kind
	Path string
	Size uint64
}

// File is a leaf in the reconstructed tree.
type File struct {
	Path string
	Size uint64
}

// Folder is an interior node in the reconstructed tree. Ownership runs
// parent to child only; there are no back-references, so the structure is
// a DAG (in practice a tree) with no cycles.
type Folder struct {
	Path    string
	Size    uint64
	Files   []File
	Folders []*Folder
}

// FromSession adapts a session's entry iteration into the Folder/File item
// sequence Build consumes. A read failure does not surface as an error: the
// items read before it are kept, but Session.Iterate stops at the failing
// entry, so neither that entry nor any entry after it is yielded.
func FromSession(s *zipsession.Session) func(yield func(Item) bool) {
	return func(yield func(Item) bool) {
		for entry, err := range s.Iterate() {
			if err != nil {
				continue
			}
			switch entry.Kind {
			case zipsession.KindDirectory:
				// Archive directory entries are stored with a trailing "/"
				// (see Session.Add); strip it so a Folder's Path matches the
				// prefix of the files and folders it encloses.
				path := strings.TrimSuffix(entry.Path(), "/")
				if !yield(Item{Kind: KindFolder, Path: path, Size: entry.UncompressedSize()}) {
					return
				}
			default:
				if !yield(Item{Kind: KindFile, Path: entry.Path(), Size: entry.UncompressedSize()}) {
					return
				}
			}
		}
	}
}

// Build reconstructs the folder/file tree from items, returning the
// top-level folders. Each file and folder is attached to its nearest
// enclosing folder (longest path-prefix match); ties are broken by
// first-match in the folder's iteration order, per the design notes.
//
// Files with no enclosing folder (including any depth-0 file) are dropped
// from the returned tree — see DESIGN.md for why this engine keeps that
// behavior instead of inventing a synthetic root.
func Build(items func(yield func(Item) bool)) []*Folder {
	var folders []*Folder
	var files []Item

	for it := range items {
		switch it.Kind {
		case KindFolder:
			folders = append(folders, &Folder{Path: it.Path, Size: it.Size})
		case KindFile:
			files = append(files, it)
		}
	}

	// Try the most specific (longest path) enclosing folder first.
	byLengthDesc := append([]*Folder(nil), folders...)
	sort.SliceStable(byLengthDesc, func(i, j int) bool {
		return len(byLengthDesc[i].Path) > len(byLengthDesc[j].Path)
	})

	enclosing := func(path string, exclude string) *Folder {
		for _, f := range byLengthDesc {
			if f.Path == exclude {
				continue
			}
			if strings.HasPrefix(path, f.Path) {
				return f
			}
		}
		return nil
	}

	for _, it := range files {
		if parent := enclosing(it.Path, ""); parent != nil {
			parent.Files = append(parent.Files, File{Path: it.Path, Size: it.Size})
		}
	}

	byLengthAsc := append([]*Folder(nil), folders...)
	sort.SliceStable(byLengthAsc, func(i, j int) bool {
		return len(byLengthAsc[i].Path) < len(byLengthAsc[j].Path)
	})

	var roots []*Folder
	for _, f := range byLengthAsc {
		if parent := enclosing(f.Path, f.Path); parent != nil {
			parent.Folders = append(parent.Folders, f)
		} else {
			roots = append(roots, f)
		}
	}
	return roots
}
