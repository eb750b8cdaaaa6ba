// Package slug turns display names into the lowercase, hyphenated keys used
// for catalog lookups.
package slug

import (
	"regexp"
	"strings"
)

var nonAlnum = regexp.MustCompile(`[^a-z0-9]+`)

// latinFold maps common accented Latin letters to ASCII.
var latinFold = strings.NewReplacer(
	"à", "a", "á", "a", "â", "a", "ã", "a", "ä", "a", "å", "a",
	"ç", "c",
	"è", "e", "é", "e", "ê", "e", "ë", "e",
	"ì", "i", "í", "i", "î", "i", "ï", "i", "ı", "i",
	"ñ", "n",
	"ò", "o", "ó", "o", "ô", "o", "õ", "o", "ö", "o", "ø", "o",
	"ù", "u", "ú", "u", "û", "u", "ü", "u",
	"ß", "ss", "ğ", "g", "ş", "s",
)

// Generate creates a slug from name: lowercase ASCII words joined by single
// hyphens, e.g. "Home & Garden" becomes "home-garden".
func Generate(name string) string {
	s := latinFold.Replace(strings.ToLower(strings.TrimSpace(name)))
	s = nonAlnum.ReplaceAllString(s, "-")
	return strings.Trim(s, "-")
}
