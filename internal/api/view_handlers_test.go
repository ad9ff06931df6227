package api

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pagetrail/pagetrail-server/internal/service"
	"github.com/pagetrail/pagetrail-server/internal/view"
)

func TestGetShelves(t *testing.T) {
	ts := setupTestServer(t, withSeed(seedBooks()...))

	resp := ts.api.Get("/api/v1/shelves?sort=title")
	require.Equal(t, http.StatusOK, resp.Code, resp.Body.String())

	var shelves service.ShelfView
	decodeData(t, resp, &shelves)
	require.Len(t, shelves.Sections, 6)
	assert.Equal(t, view.BucketTopPicks, shelves.Sections[0].Bucket)
	require.Len(t, shelves.Sections[0].Books, 1)
	assert.Equal(t, "b1", shelves.Sections[0].Books[0].ID)
	assert.Equal(t, 3, shelves.Matched)
}

func TestGetShelves_Filters(t *testing.T) {
	ts := setupTestServer(t, withSeed(seedBooks()...))

	resp := ts.api.Get("/api/v1/shelves?status=reading&search=AUSTEN")
	require.Equal(t, http.StatusOK, resp.Code)

	var shelves service.ShelfView
	decodeData(t, resp, &shelves)
	assert.Equal(t, 1, shelves.Matched)
	assert.Equal(t, 3, shelves.Counts.Total)

	resp = ts.api.Get("/api/v1/shelves?rating=11")
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTableSortToggle(t *testing.T) {
	ts := setupTestServer(t, withSeed(seedBooks()...))

	resp := ts.api.Get("/api/v1/table/sort")
	require.Equal(t, http.StatusOK, resp.Code)
	var ts0 view.TableSort
	decodeData(t, resp, &ts0)
	assert.Equal(t, view.DefaultTableSort, ts0)

	resp = ts.api.Post("/api/v1/table/sort", map[string]any{"column": "title"})
	require.Equal(t, http.StatusOK, resp.Code)
	var ts1 view.TableSort
	decodeData(t, resp, &ts1)
	assert.True(t, ts1.Descending)

	resp = ts.api.Get("/api/v1/table")
	require.Equal(t, http.StatusOK, resp.Code)
	var table service.TableView
	decodeData(t, resp, &table)
	ids := make([]string, len(table.Books))
	for i, b := range table.Books {
		ids[i] = b.ID
	}
	assert.Equal(t, []string{"b2", "b1", "b3"}, ids)
}
