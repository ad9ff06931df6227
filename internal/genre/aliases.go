package genre

// aliases maps common spellings (already slugified) to a vocabulary slug.
var aliases = map[string]string{
	"nonfiction":       "non-fiction",
	"sci-fi":           "science-fiction",
	"scifi":            "science-fiction",
	"sf":               "science-fiction",
	"sci-fi-fantasy":   "science-fiction",
	"ya":               "young-adult",
	"teen":             "young-adult",
	"suspense":         "thriller",
	"mystery-thriller": "mystery",
	"crime":            "mystery",
	"selfhelp":         "self-help",
	"biographies":      "biography",
	"autobiography":    "memoir",
	"comics":           "graphic-novel",
	"manga":            "graphic-novel",
	"kids":             "children",
	"childrens":        "children",
	"classic":          "classics",
	"historical":       "historical-fiction",
}

// Normalize maps free-form input onto the vocabulary.
// "Sci-Fi" and "Science Fiction" both yield "science-fiction".
// An empty input yields "", true (no genre). Unknown input yields the
// slugified form and false.
func Normalize(input string) (string, bool) {
	slug := Slugify(input)
	if slug == "" {
		return "", true
	}
	if canonical, ok := aliases[slug]; ok {
		slug = canonical
	}
	return slug, IsKnown(slug)
}
