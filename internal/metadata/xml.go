package metadata

import (
	"strings"

	"github.com/beevik/etree"
)

// The XML helpers below match elements by local name only, ignoring namespace
// prefixes. EPUB and FB2 files in the wild declare the same vocabularies under
// varying prefixes (dc:, opf:, none at all), so prefix-sensitive queries miss
// valid documents.

// findLocal does a depth-first search for the first element with the given
// local name, including root itself.
func findLocal(root *etree.Element, local string) *etree.Element {
	if root.Tag == local {
		return root
	}
	for _, child := range root.ChildElements() {
		if found := findLocal(child, local); found != nil {
			return found
		}
	}
	return nil
}

// findAllLocal collects every element with the given local name below root.
func findAllLocal(root *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	if root.Tag == local {
		out = append(out, root)
	}
	for _, child := range root.ChildElements() {
		out = append(out, findAllLocal(child, local)...)
	}
	return out
}

// childrenLocal returns the direct children of parent with the given local name.
func childrenLocal(parent *etree.Element, local string) []*etree.Element {
	var out []*etree.Element
	for _, child := range parent.ChildElements() {
		if child.Tag == local {
			out = append(out, child)
		}
	}
	return out
}

// childText returns the trimmed text of the first matching direct child.
func childText(parent *etree.Element, local string) string {
	for _, child := range parent.ChildElements() {
		if child.Tag == local {
			return strings.TrimSpace(child.Text())
		}
	}
	return ""
}
