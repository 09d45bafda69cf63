package core

import (
	"strings"

	"github.com/quarrybase/quarry/pkg/errors"
	"github.com/quarrybase/quarry/pkg/model"
)

// NormalizePath canonicalizes a logical node path: backslashes become
// slashes, leading/trailing slashes are stripped and runs of slashes
// collapse. The empty string is the root group.
func NormalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	segs := make([]string, 0, 8)
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}
	return strings.Join(segs, "/")
}

// splitPath returns the parent path and the final segment.
func splitPath(path string) (parent, name string) {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return "", path
	}
	return path[:i], path[i+1:]
}

// validateName rejects segments that cannot name a node: empty names,
// path syntax, and the reserved metadata document names.
func validateName(path string) error {
	for _, seg := range strings.Split(path, "/") {
		switch seg {
		case "", ".", "..":
			return errors.Newf("path %q: empty or relative segment", path).Wrap(model.ErrNameConflict)
		case model.ArrayMetaName, model.GroupMetaName:
			return errors.Newf("path %q: %q is a reserved name", path, seg).Wrap(model.ErrNameConflict)
		}
	}
	return nil
}

// arrayMetaKey is the well-known key of an array's metadata document.
func arrayMetaKey(path string) string {
	if path == "" {
		return model.ArrayMetaName
	}
	return path + "/" + model.ArrayMetaName
}

// groupMetaKey is the well-known key of a group's metadata document.
func groupMetaKey(path string) string {
	if path == "" {
		return model.GroupMetaName
	}
	return path + "/" + model.GroupMetaName
}
