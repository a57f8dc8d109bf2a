package storage

import (
	"path"
	"strings"
)

// objectKey joins a store-wide prefix with a slash-separated destination path.
func objectKey(prefix, p string) string {
	return strings.TrimPrefix(path.Join(prefix, p), "/")
}

// listPrefix returns the key prefix that selects the direct children of dir.
func listPrefix(prefix, dir string) string {
	p := objectKey(prefix, dir)
	if p == "" || p == "." {
		return ""
	}
	return p + "/"
}

// childName reports the name of key relative to listPrefix, or false when
// key lies deeper than one level below it.
func childName(key, listPrefix string) (string, bool) {
	name := strings.TrimPrefix(key, listPrefix)
	if name == "" || strings.Contains(name, "/") {
		return "", false
	}
	return name, true
}
