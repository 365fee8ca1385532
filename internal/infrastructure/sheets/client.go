package sheets

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/deptboard-api/internal/domain"
)

// RawRow maps a published column header to the raw cell value of one row.
type RawRow map[string]string

// sheetIDPattern matches the conventional share-URL path segment.
var sheetIDPattern = regexp.MustCompile(`/spreadsheets/d/([a-zA-Z0-9-_]+)`)

// ExtractSheetID pulls the spreadsheet id out of a share URL. Returns ""
// (not an error) when the URL does not match; callers treat that as a
// request-validation failure.
func ExtractSheetID(sheetURL string) string {
	m := sheetIDPattern.FindStringSubmatch(sheetURL)
	if m == nil {
		return ""
	}
	return m[1]
}

// Client fetches public spreadsheet tabs through the gviz endpoint. No
// credentials are involved; the sheet must be link-visible.
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
}

// gvizResponse is the subset of the gviz envelope the importer needs.
type gvizResponse struct {
	Table struct {
		Cols []struct {
			Label string `json:"label"`
		} `json:"cols"`
		Rows []struct {
			C []*struct {
				V interface{} `json:"v"`
			} `json:"c"`
		} `json:"rows"`
	} `json:"table"`
}

// FetchRows downloads one named tab and returns its rows keyed by header.
// Transport and HTTP-level failures wrap domain.ErrFetch; a body that is not
// the expected gviz envelope wraps domain.ErrFormat.
func (c *Client) FetchRows(ctx context.Context, sheetID, sheetName string) ([]RawRow, error) {
	endpoint := fmt.Sprintf("%s/spreadsheets/d/%s/gviz/tq?tqx=out:json", c.baseURL, sheetID)
	if sheetName != "" {
		endpoint += "&sheet=" + url.QueryEscape(sheetName)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch sheet %s: %w", sheetID, domain.ErrFetch)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch sheet %s: status %d: %w", sheetID, resp.StatusCode, domain.ErrFetch)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read sheet %s: %w", sheetID, domain.ErrFetch)
	}
	return parseGviz(body)
}

// parseGviz strips the JS wrapper the endpoint emits
// ("google.visualization.Query.setResponse({...});") and decodes the JSON
// payload between the first "{" and the last "}".
func parseGviz(body []byte) ([]RawRow, error) {
	start := strings.IndexByte(string(body), '{')
	end := strings.LastIndexByte(string(body), '}')
	if start < 0 || end < start {
		return nil, fmt.Errorf("no JSON payload in response: %w", domain.ErrFormat)
	}

	var envelope gvizResponse
	if err := json.Unmarshal(body[start:end+1], &envelope); err != nil {
		return nil, fmt.Errorf("decode gviz envelope: %w", domain.ErrFormat)
	}
	if len(envelope.Table.Cols) == 0 {
		return nil, fmt.Errorf("gviz envelope has no columns: %w", domain.ErrFormat)
	}

	headers := make([]string, len(envelope.Table.Cols))
	for i, col := range envelope.Table.Cols {
		headers[i] = strings.TrimSpace(col.Label)
	}

	rows := make([]RawRow, 0, len(envelope.Table.Rows))
	for _, r := range envelope.Table.Rows {
		row := make(RawRow, len(headers))
		for i, header := range headers {
			if header == "" || i >= len(r.C) || r.C[i] == nil {
				continue
			}
			row[header] = cellString(r.C[i].V)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

// cellString renders a gviz cell value. Numbers arrive as float64; integral
// values must not pick up a ".0" suffix or roll numbers would never match.
func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		if val == float64(int64(val)) {
			return strconv.FormatInt(int64(val), 10)
		}
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
