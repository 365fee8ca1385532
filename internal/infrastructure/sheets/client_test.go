package sheets

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deptboard-api/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const gvizBody = `/*O_o*/
google.visualization.Query.setResponse({"version":"0.6","reqId":"0","status":"ok","table":{
"cols":[{"id":"A","label":"Name","type":"string"},{"id":"B","label":"RollNo","type":"number"},{"id":"C","label":"Department","type":"string"},{"id":"D","label":"Club","type":"string"}],
"rows":[
{"c":[{"v":"Asha"},{"v":7.0},{"v":"CSE"},{"v":"chess"}]},
{"c":[{"v":"Ravi"},{"v":8.0},{"v":"ECE"},null]}
]}});`

func TestExtractSheetID(t *testing.T) {
	id := ExtractSheetID("https://docs.google.com/spreadsheets/d/1aBc-D_3f/edit#gid=0")
	assert.Equal(t, "1aBc-D_3f", id)

	assert.Empty(t, ExtractSheetID("https://example.com/not-a-sheet"))
	assert.Empty(t, ExtractSheetID(""))
}

func TestFetchRows_ParsesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.URL.Path, "/spreadsheets/d/sheet1/gviz/tq")
		assert.Equal(t, "Form responses 1", r.URL.Query().Get("sheet"))
		_, _ = w.Write([]byte(gvizBody))
	}))
	defer srv.Close()

	rows, err := NewClient(srv.URL).FetchRows(context.Background(), "sheet1", "Form responses 1")
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "Asha", rows[0]["Name"])
	assert.Equal(t, "7", rows[0]["RollNo"]) // 7.0 must not become "7.0"
	assert.Equal(t, "chess", rows[0]["Club"])

	assert.Equal(t, "Ravi", rows[1]["Name"])
	_, hasClub := rows[1]["Club"]
	assert.False(t, hasClub, "null cells are omitted, not stored as empty")
}

func TestFetchRows_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchRows(context.Background(), "sheet1", "")
	assert.True(t, errors.Is(err, domain.ErrFetch))
}

func TestFetchRows_NotAnEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>sign in required</html>"))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL).FetchRows(context.Background(), "sheet1", "")
	assert.True(t, errors.Is(err, domain.ErrFormat))
}

func TestParseGviz_NoColumns(t *testing.T) {
	_, err := parseGviz([]byte(`setResponse({"table":{"cols":[],"rows":[]}});`))
	assert.True(t, errors.Is(err, domain.ErrFormat))
}
