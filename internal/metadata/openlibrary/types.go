package openlibrary

// searchResponse is the subset of /search.json we read.
type searchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []Doc `json:"docs"`
}

// Doc is one work returned by a search.
type Doc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	PagesMedian      int      `json:"number_of_pages_median"`
	CoverID          int      `json:"cover_i"`
	ISBN             []string `json:"isbn"`
}

// Query describes a search. Author is optional.
type Query struct {
	Title  string
	Author string
	Limit  int
}

func (q Query) String() string {
	if q.Author == "" {
		return q.Title
	}
	return q.Title + " / " + q.Author
}
