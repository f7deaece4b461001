package slug

import (
	"fmt"
	"regexp"
	"strings"
)

// accentToASCII folds the accented characters common in Spanish and Portuguese
// course titles down to plain ASCII.
var accentToASCII = map[rune]string{
	'á': "a", 'Á': "a",
	'à': "a", 'À': "a",
	'ä': "a", 'Ä': "a",
	'â': "a", 'Â': "a",
	'ã': "a", 'Ã': "a",
	'é': "e", 'É': "e",
	'è': "e", 'È': "e",
	'ë': "e", 'Ë': "e",
	'ê': "e", 'Ê': "e",
	'í': "i", 'Í': "i",
	'ì': "i", 'Ì': "i",
	'ï': "i", 'Ï': "i",
	'î': "i", 'Î': "i",
	'ó': "o", 'Ó': "o",
	'ò': "o", 'Ò': "o",
	'ö': "o", 'Ö': "o",
	'ô': "o", 'Ô': "o",
	'õ': "o", 'Õ': "o",
	'ú': "u", 'Ú': "u",
	'ù': "u", 'Ù': "u",
	'ü': "u", 'Ü': "u",
	'û': "u", 'Û': "u",
	'ñ': "n", 'Ñ': "n",
	'ç': "c", 'Ç': "c",
}

var nonAlphanumRegex = regexp.MustCompile(`[^a-zA-Z0-9 ]+`)
var multiSpaceRegex = regexp.MustCompile(` +`)

// GenerateProductSlug generates a URL-friendly slug from a product title and a
// short unique suffix (typically the first segment of the product UUID).
// Example: "Introducción a Go" + "3f2a91bc" -> "introduccion-a-go-3f2a91bc"
func GenerateProductSlug(title, suffix string) string {
	var result strings.Builder
	for _, char := range title {
		if ascii, exists := accentToASCII[char]; exists {
			result.WriteString(ascii)
		} else {
			result.WriteRune(char)
		}
	}

	slug := result.String()
	slug = nonAlphanumRegex.ReplaceAllString(slug, "")
	slug = multiSpaceRegex.ReplaceAllString(strings.TrimSpace(slug), " ")
	slug = strings.ReplaceAll(slug, " ", "-")
	slug = strings.ToLower(slug)

	if slug == "" {
		return suffix
	}

	return fmt.Sprintf("%s-%s", slug, suffix)
}
