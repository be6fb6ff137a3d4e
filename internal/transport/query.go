package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/nao1215/soqlq/internal/model"
)

// maxErrorBody caps how much of an error body ends up in an APIError.
const maxErrorBody = 512

// queryPath returns the path of the query resource.
func (c *Client) queryPath() string {
	if c.tooling {
		return "/services/data/v" + c.apiVersion + "/tooling/query"
	}
	return "/services/data/v" + c.apiVersion + "/query"
}

// resolve returns the absolute URL of path on the instance.
func (c *Client) resolve(path string, query url.Values) string {
	u := *c.instanceURL
	u.Path = strings.TrimRight(c.instanceURL.Path, "/") + path
	u.RawQuery = query.Encode()
	return u.String()
}

// Query runs soql and collects every page of the result.
//
// Pages are followed through nextRecordsUrl until the result is done or
// the record cap is reached. The returned result set has no next URL and
// is always marked done.
func (c *Client) Query(ctx context.Context, soql string) (*model.ResultSet, error) {
	first := c.resolve(c.queryPath(), url.Values{"q": []string{soql}})

	rs, err := c.fetchPage(ctx, first)
	if err != nil {
		return nil, err
	}

	for !rs.Done && rs.NextRecordsURL != "" && len(rs.Records) < c.maxFetch {
		next, err := c.nextURL(rs.NextRecordsURL)
		if err != nil {
			return nil, err
		}
		c.logger.Debug("fetching next page",
			"next", rs.NextRecordsURL,
			"fetched", len(rs.Records),
			"total", rs.TotalSize,
		)

		page, err := c.fetchPage(ctx, next)
		if err != nil {
			return nil, err
		}
		rs.Records = append(rs.Records, page.Records...)
		rs.Done = page.Done
		rs.NextRecordsURL = page.NextRecordsURL
	}

	if len(rs.Records) > c.maxFetch {
		c.logger.Warn("record limit reached, result truncated",
			"limit", c.maxFetch,
			"total", rs.TotalSize,
		)
		rs.Records = rs.Records[:c.maxFetch]
	}

	rs.NextRecordsURL = ""
	rs.Done = true
	return rs, nil
}

// nextURL resolves a nextRecordsUrl against the instance URL. The result
// must stay on the scheme and host of the instance.
func (c *Client) nextURL(ref string) (string, error) {
	u, err := url.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid next records URL %q: %w", ref, err)
	}
	next := c.instanceURL.ResolveReference(u)
	if next.Scheme != c.instanceURL.Scheme || !strings.EqualFold(next.Host, c.instanceURL.Host) {
		return "", fmt.Errorf("%w: %s", ErrForeignNextURL, next.Host)
	}
	return next.String(), nil
}

func (c *Client) fetchPage(ctx context.Context, rawURL string) (*model.ResultSet, error) {
	body, err := c.get(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return model.DecodeResultSet(body)
}

// Columns describes the columns of soql without fetching records.
func (c *Client) Columns(ctx context.Context, soql string) ([]model.ColumnMetadata, error) {
	target := c.resolve(c.queryPath(), url.Values{
		"q":       []string{soql},
		"columns": []string{"true"},
	})

	body, err := c.get(ctx, target)
	if err != nil {
		return nil, err
	}

	var resp model.ColumnsResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("failed to decode column metadata: %w", err)
	}
	if resp.ColumnMetadata == nil {
		resp.ColumnMetadata = []model.ColumnMetadata{}
	}
	return resp.ColumnMetadata, nil
}

// get performs an authenticated GET and returns the body of a 2xx answer.
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.logger.Debug("sending request", "url", rawURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request to %s failed: %w", c.instanceURL.Host, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > c.maxBodySize {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrResponseTooLarge, c.maxBodySize)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newAPIError(resp.StatusCode, body)
	}
	return body, nil
}

// apiErrorBody is one entry of the error array returned by the REST API.
type apiErrorBody struct {
	Message   string `json:"message"`
	ErrorCode string `json:"errorCode"`
}

// newAPIError builds an APIError from a failed response.
func newAPIError(status int, body []byte) *APIError {
	apiErr := &APIError{StatusCode: status}

	var errs []apiErrorBody
	if err := json.Unmarshal(body, &errs); err == nil && len(errs) > 0 {
		apiErr.ErrorCode = errs[0].ErrorCode
		apiErr.Message = errs[0].Message
		return apiErr
	}

	var single apiErrorBody
	if err := json.Unmarshal(body, &single); err == nil && single.ErrorCode != "" {
		apiErr.ErrorCode = single.ErrorCode
		apiErr.Message = single.Message
		return apiErr
	}

	msg := string(bytes.TrimSpace(body))
	if len(msg) > maxErrorBody {
		msg = msg[:maxErrorBody] + "..."
	}
	if msg == "" {
		msg = http.StatusText(status)
	}
	apiErr.Message = msg
	return apiErr
}
