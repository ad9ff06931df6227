package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping stems title and notes as English, keeps author names
// unstemmed, and indexes tags, genre, and status as exact keywords.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	doc := bleve.NewDocumentMapping()

	title := bleve.NewTextFieldMapping()
	title.Analyzer = en.AnalyzerName
	title.Store = true
	doc.AddFieldMappingsAt("title", title)

	author := bleve.NewTextFieldMapping()
	author.Analyzer = simple.Name
	author.Store = true
	doc.AddFieldMappingsAt("author", author)

	notes := bleve.NewTextFieldMapping()
	notes.Analyzer = en.AnalyzerName
	notes.Store = false
	doc.AddFieldMappingsAt("notes", notes)

	for _, name := range []string{"id", "tags", "genre", "status"} {
		kw := bleve.NewTextFieldMapping()
		kw.Analyzer = keyword.Name
		kw.Store = name == "tags"
		doc.AddFieldMappingsAt(name, kw)
	}

	indexMapping.DefaultMapping = doc
	return indexMapping
}
