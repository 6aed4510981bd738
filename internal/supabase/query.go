package supabase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
)

// PostgREST error codes this service interprets.
const (
	CodeNoRows           = "PGRST116"
	CodeRangeUnsatisfied = "PGRST103"
	CodeUniqueViolation  = "23505"

	preferRepresentation = "return=representation"
	acceptSingleObject   = "application/vnd.pgrst.object+json"
)

// Query builds and executes one PostgREST request.
type Query struct {
	client  *Client
	table   string
	method  string
	columns string
	params  url.Values
	orders  []string
	body    []byte
	count   string
	single  bool
	err     error
}

// From starts a query against table.
func (c *Client) From(table string) *Query {
	return &Query{
		client: c,
		table:  table,
		method: http.MethodGet,
		params: url.Values{},
	}
}

// Select sets the column list.
func (q *Query) Select(columns string) *Query {
	q.columns = columns
	return q
}

// Eq adds an equality filter.
func (q *Query) Eq(column string, value any) *Query {
	q.params.Add(column, "eq."+fmt.Sprint(value))
	return q
}

// Neq adds a not-equal filter.
func (q *Query) Neq(column string, value any) *Query {
	q.params.Add(column, "neq."+fmt.Sprint(value))
	return q
}

// IMatch adds a case-insensitive POSIX regex filter.
func (q *Query) IMatch(column, pattern string) *Query {
	q.params.Add(column, "imatch."+pattern)
	return q
}

// Order adds an ORDER BY term.
func (q *Query) Order(column string, ascending bool) *Query {
	dir := "desc"
	if ascending {
		dir = "asc"
	}
	q.orders = append(q.orders, column+"."+dir)
	return q
}

// Range limits the result to rows [from, to], both inclusive.
func (q *Query) Range(from, to int) *Query {
	q.params.Set("offset", strconv.Itoa(from))
	q.params.Set("limit", strconv.Itoa(to-from+1))
	return q
}

// Limit caps the number of rows returned.
func (q *Query) Limit(n int) *Query {
	q.params.Set("limit", strconv.Itoa(n))
	return q
}

// Count requests a total row count ("exact", "planned" or "estimated").
func (q *Query) Count(kind string) *Query {
	q.count = kind
	return q
}

// Single expects exactly one row and returns it as an object.
func (q *Query) Single() *Query {
	q.single = true
	return q
}

// Insert turns the query into an INSERT returning the new rows.
func (q *Query) Insert(data any) *Query {
	q.method = http.MethodPost
	q.setBody(data)
	return q
}

// Update turns the query into an UPDATE of the filtered rows.
func (q *Query) Update(data any) *Query {
	q.method = http.MethodPatch
	q.setBody(data)
	return q
}

func (q *Query) setBody(data any) {
	body, err := json.Marshal(data)
	if err != nil {
		q.err = fmt.Errorf("encoding %s body: %w", q.table, err)
		return
	}
	q.body = body
}

// Execute runs the query.
func (q *Query) Execute(ctx context.Context) (*Response, error) {
	if q.err != nil {
		return nil, q.err
	}

	headers := make(map[string]string)
	var prefer []string
	if q.method != http.MethodGet {
		prefer = append(prefer, preferRepresentation)
	}
	if q.count != "" {
		prefer = append(prefer, "count="+q.count)
	}
	if len(prefer) > 0 {
		headers["Prefer"] = strings.Join(prefer, ",")
	}
	if q.single {
		headers["Accept"] = acceptSingleObject
	}

	return q.client.request(ctx, q.method, q.buildURL(), q.body, headers)
}

// ExecuteInto runs the query and decodes the body into dest.
func (q *Query) ExecuteInto(ctx context.Context, dest any) (*Response, error) {
	resp, err := q.Execute(ctx)
	if err != nil {
		return resp, err
	}
	if err := json.Unmarshal(resp.Body, dest); err != nil {
		return resp, fmt.Errorf("decoding %s response: %w", q.table, err)
	}
	return resp, nil
}

func (q *Query) buildURL() string {
	params := url.Values{}
	for k, v := range q.params {
		params[k] = v
	}
	if q.columns != "" {
		params.Set("select", q.columns)
	}
	if len(q.orders) > 0 {
		params.Set("order", strings.Join(q.orders, ","))
	}

	u := q.client.restURL + "/" + url.PathEscape(q.table)
	if encoded := params.Encode(); encoded != "" {
		u += "?" + encoded
	}
	return u
}

// HasCode reports whether err is a Supabase error carrying code.
func HasCode(err error, code string) bool {
	var e *Error
	return errors.As(err, &e) && e.Code == code
}

// IsNoRows reports whether err is PostgREST's "no rows for single object" error.
func IsNoRows(err error) bool {
	return HasCode(err, CodeNoRows)
}
