package genre

// Genre is one entry of the closed genre vocabulary shared with clients.
type Genre struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// Vocabulary is the ordered, closed set of genres a book may carry.
var Vocabulary = []Genre{
	{Name: "Fiction", Slug: "fiction"},
	{Name: "Non-Fiction", Slug: "non-fiction"},
	{Name: "Fantasy", Slug: "fantasy"},
	{Name: "Science Fiction", Slug: "science-fiction"},
	{Name: "Mystery", Slug: "mystery"},
	{Name: "Thriller", Slug: "thriller"},
	{Name: "Romance", Slug: "romance"},
	{Name: "Horror", Slug: "horror"},
	{Name: "Historical Fiction", Slug: "historical-fiction"},
	{Name: "Biography", Slug: "biography"},
	{Name: "Memoir", Slug: "memoir"},
	{Name: "Self-Help", Slug: "self-help"},
	{Name: "History", Slug: "history"},
	{Name: "Science", Slug: "science"},
	{Name: "Philosophy", Slug: "philosophy"},
	{Name: "Poetry", Slug: "poetry"},
	{Name: "Young Adult", Slug: "young-adult"},
	{Name: "Children", Slug: "children"},
	{Name: "Graphic Novel", Slug: "graphic-novel"},
	{Name: "Classics", Slug: "classics"},
	{Name: "Other", Slug: "other"},
}

var known = func() map[string]bool {
	m := make(map[string]bool, len(Vocabulary))
	for _, g := range Vocabulary {
		m[g.Slug] = true
	}
	return m
}()

// IsKnown reports whether slug is a member of the vocabulary.
func IsKnown(slug string) bool {
	return known[slug]
}
