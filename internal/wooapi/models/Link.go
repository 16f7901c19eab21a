package models

import "regexp"

var absoluteLink = regexp.MustCompile(`(?i)^(https?:)?//[^/]+(/?.*)`)

// MakeLinkRelative strips scheme and host from an absolute link, keeping
// path, query and fragment. Other values are returned unchanged.
func MakeLinkRelative(link string) string {
	return absoluteLink.ReplaceAllString(link, "$2")
}
