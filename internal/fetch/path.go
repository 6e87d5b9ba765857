package fetch

import "strings"

// JoinPath concatenates a directory path and a name without ever producing
// "//". The directory keeps its meaning: "" is the root, "A/" a folder.
func JoinPath(dir, name string) string {
	if dir == "" {
		return strings.TrimLeft(name, "/")
	}
	return strings.TrimRight(dir, "/") + "/" + strings.TrimLeft(name, "/")
}

// NormalizeDir turns "A", "/A/", "A//B" into "A/", "A/", "A/B/". The root is "".
func NormalizeDir(path string) string {
	segs := Segments(path)
	if len(segs) == 0 {
		return ""
	}
	return strings.Join(segs, "/") + "/"
}

// Segments splits a slash-delimited path into its non-empty parts.
func Segments(path string) []string {
	parts := strings.Split(path, "/")
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// ParentDir returns the directory containing folder path p: "A/B/" -> "A/".
func ParentDir(p string) string {
	segs := Segments(p)
	if len(segs) <= 1 {
		return ""
	}
	return strings.Join(segs[:len(segs)-1], "/") + "/"
}
