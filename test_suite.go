package blogapi

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strconv"
	"strings"
	"testing"

	"github.com/cucumber/godog"
	"github.com/cucumber/godog/colors"
)

type DBSeeder interface {
	Seed(table string, data *godog.Table) error
}

// Authenticator issues a bearer token for an existing user.
type Authenticator func(username string) (token string, userID string, err error)

type TestSuite struct {
	T           *testing.T
	Router      http.Handler
	Resp        *http.Response
	RespBody    []byte
	Storage     map[string]string
	RequestBody []byte
	BaseURL     string
	Paths       []string
	DbSeeders   map[string]DBSeeder
	// DefaultSeeder handles tables without a dedicated seeder.
	DefaultSeeder DBSeeder
	Authenticator Authenticator
	// Reset runs before every scenario, typically truncating tables.
	Reset func() error

	token string
}

type TestLogger struct {
	T *testing.T
}

var placeholderPattern = regexp.MustCompile(`\{([A-Za-z0-9_.]+)\}`)

func NewTestSuite(router http.Handler) *TestSuite {
	return &TestSuite{
		Router:    router,
		Storage:   make(map[string]string),
		DbSeeders: make(map[string]DBSeeder),
		Paths:     []string{"features"},
	}
}

func (ts *TestSuite) RegisterDBSeeder(table string, seeder DBSeeder) {
	ts.DbSeeders[table] = seeder
}

func (ts *TestSuite) SetBaseURL(baseURL string) {
	ts.BaseURL = baseURL
}

func (ts *TestSuite) InitializeTestSuite(ctx *godog.TestSuiteContext) {
	ctx.BeforeSuite(func() {
		if ts.Storage == nil {
			ts.Storage = make(map[string]string)
		}
	})
}

func (ts *TestSuite) InitializeScenario(ctx *godog.ScenarioContext) {
	ctx.BeforeScenario(func(sc *godog.Scenario) {
		ts.Resp = nil
		ts.RespBody = nil
		ts.RequestBody = nil
		ts.token = ""
		ts.Storage = make(map[string]string)
		if ts.Reset != nil {
			if err := ts.Reset(); err != nil && ts.T != nil {
				ts.T.Errorf("reset before %q: %v", sc.Name, err)
			}
		}
	})

	ctx.Step(`^table "([^"]*)" has the following rows$`, ts.tableHasTheFollowingRows)
	ctx.Step(`^I am authenticated as "([^"]*)"$`, ts.iAmAuthenticatedAs)
	ctx.Step(`^I am anonymous$`, ts.iAmAnonymous)
	ctx.Step(`^I send a (GET|DELETE) request to "([^"]*)"$`, ts.iSendARequestTo)
	ctx.Step(`^I send a (POST|PUT|PATCH|DELETE) request to "([^"]*)" with body$`, ts.iSendARequestToWithBody)
	ctx.Step(`^I send a (GET|POST|PUT|PATCH) request to "([^"]*)" with JSON$`, ts.iSendARequestToWithJSON)
	ctx.Step(`^the response status should be (\d+)$`, ts.theResponseStatusShouldBe)
	ctx.Step(`^the response "([^"]*)" field is stored as "([^"]*)"$`, ts.theResponseFieldIsStoredAs)
	ctx.Step(`^the response field "([^"]*)" should be "([^"]*)"$`, ts.theResponseFieldShouldBe)
	ctx.Step(`^the response should contain an item with$`, ts.theResponseShouldContainAnItemWith)
	ctx.Step(`^the response should have (\d+) results$`, ts.theResponseShouldHaveResults)
}

func (ts *TestSuite) tableHasTheFollowingRows(table string, data *godog.Table) error {
	seeder, ok := ts.DbSeeders[table]
	if !ok {
		seeder = ts.DefaultSeeder
	}
	if seeder == nil {
		return fmt.Errorf("no seeder registered for table %s", table)
	}
	return seeder.Seed(table, ts.expandTable(data))
}

func (ts *TestSuite) iAmAuthenticatedAs(username string) error {
	if ts.Authenticator == nil {
		return fmt.Errorf("no authenticator configured")
	}
	token, userID, err := ts.Authenticator(username)
	if err != nil {
		return err
	}
	ts.token = token
	ts.Storage["userId"] = userID
	return nil
}

func (ts *TestSuite) iAmAnonymous() error {
	ts.token = ""
	return nil
}

func (ts *TestSuite) iSendARequestTo(method, path string) error {
	ts.RequestBody = nil
	return ts.send(method, path)
}

func (ts *TestSuite) iSendARequestToWithBody(method, path string, body *godog.Table) error {
	var err error
	ts.RequestBody, err = parseDataTableToJSON(ts.expandTable(body))
	if err != nil {
		return err
	}
	return ts.send(method, path)
}

func (ts *TestSuite) iSendARequestToWithJSON(method, path string, body *godog.DocString) error {
	ts.RequestBody = []byte(ts.expand(body.Content))
	return ts.send(method, path)
}

func (ts *TestSuite) send(method, path string) error {
	var reader io.Reader
	if ts.RequestBody != nil {
		reader = bytes.NewReader(ts.RequestBody)
	}

	req, err := http.NewRequest(method, ts.BaseURL+ts.expand(path), reader)
	if err != nil {
		return err
	}
	if ts.RequestBody != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if ts.token != "" {
		req.Header.Set("Authorization", "Bearer "+ts.token)
	}

	if ts.BaseURL != "" {
		client := &http.Client{}
		ts.Resp, err = client.Do(req)
		if err != nil {
			return err
		}
	} else {
		w := httptest.NewRecorder()
		ts.Router.ServeHTTP(w, req)
		ts.Resp = w.Result()
	}

	defer ts.Resp.Body.Close()
	ts.RespBody, err = io.ReadAll(ts.Resp.Body)
	return err
}

func (ts *TestSuite) theResponseStatusShouldBe(status int) error {
	if ts.Resp == nil {
		return fmt.Errorf("no request has been sent")
	}
	if ts.Resp.StatusCode != status {
		return fmt.Errorf("expected status %d, got %d: %s", status, ts.Resp.StatusCode, ts.RespBody)
	}
	return nil
}

func (ts *TestSuite) theResponseFieldIsStoredAs(field, key string) error {
	val, err := ts.responseField(field)
	if err != nil {
		return err
	}
	ts.Storage[key] = formatValue(val)
	return nil
}

func (ts *TestSuite) theResponseFieldShouldBe(field, expected string) error {
	val, err := ts.responseField(field)
	if err != nil {
		return err
	}
	expected = ts.expand(expected)
	if actual := formatValue(val); actual != expected {
		return fmt.Errorf("field %s: expected %q, got %q", field, expected, actual)
	}
	return nil
}

// theResponseShouldContainAnItemWith matches the object response itself, any
// element of an array response, or any element of a paginated envelope.
func (ts *TestSuite) theResponseShouldContainAnItemWith(body *godog.Table) error {
	expected := tableRow(ts.expandTable(body))
	items, err := ts.responseItems()
	if err != nil {
		return err
	}

	for _, item := range items {
		if matchesRow(item, expected) {
			return nil
		}
	}
	return fmt.Errorf("no item matching %v in response %s", expected, ts.RespBody)
}

func (ts *TestSuite) theResponseShouldHaveResults(n int) error {
	var data interface{}
	if err := json.Unmarshal(ts.RespBody, &data); err != nil {
		return err
	}

	var results []interface{}
	switch v := data.(type) {
	case []interface{}:
		results = v
	case map[string]interface{}:
		list, ok := v["results"].([]interface{})
		if !ok {
			return fmt.Errorf("response has no results list: %s", ts.RespBody)
		}
		results = list
	default:
		return fmt.Errorf("response is not a list: %s", ts.RespBody)
	}

	if len(results) != n {
		return fmt.Errorf("expected %d results, got %d", n, len(results))
	}
	return nil
}

func (ts *TestSuite) responseField(path string) (interface{}, error) {
	var data interface{}
	if err := json.Unmarshal(ts.RespBody, &data); err != nil {
		return nil, err
	}

	current := data
	for _, part := range strings.Split(path, ".") {
		switch v := current.(type) {
		case map[string]interface{}:
			next, ok := v[part]
			if !ok {
				return nil, fmt.Errorf("field %s not found in response", path)
			}
			current = next
		case []interface{}:
			idx, err := strconv.Atoi(part)
			if err != nil || idx < 0 || idx >= len(v) {
				return nil, fmt.Errorf("field %s not found in response", path)
			}
			current = v[idx]
		default:
			return nil, fmt.Errorf("field %s not found in response", path)
		}
	}
	return current, nil
}

func (ts *TestSuite) responseItems() ([]map[string]interface{}, error) {
	var data interface{}
	if err := json.Unmarshal(ts.RespBody, &data); err != nil {
		return nil, err
	}

	var list []interface{}
	switch v := data.(type) {
	case []interface{}:
		list = v
	case map[string]interface{}:
		if results, ok := v["results"].([]interface{}); ok {
			list = results
		} else {
			return []map[string]interface{}{v}, nil
		}
	}

	items := make([]map[string]interface{}, 0, len(list))
	for _, entry := range list {
		if m, ok := entry.(map[string]interface{}); ok {
			items = append(items, m)
		}
	}
	return items, nil
}

// expand replaces {key} with stored values; unknown keys are left untouched.
func (ts *TestSuite) expand(s string) string {
	return placeholderPattern.ReplaceAllStringFunc(s, func(m string) string {
		key := m[1 : len(m)-1]
		if v, ok := ts.Storage[key]; ok {
			return v
		}
		return m
	})
}

// expandTable substitutes stored values into the table cells in place.
func (ts *TestSuite) expandTable(table *godog.Table) *godog.Table {
	if table == nil {
		return nil
	}
	for _, row := range table.Rows {
		for _, cell := range row.Cells {
			cell.Value = ts.expand(cell.Value)
		}
	}
	return table
}

func tableRow(body *godog.Table) map[string]string {
	row := make(map[string]string)
	if len(body.Rows) < 2 {
		return row
	}
	headers := body.Rows[0].Cells
	for j, cell := range body.Rows[1].Cells {
		row[headers[j].Value] = cell.Value
	}
	return row
}

// parseDataTableToJSON turns a header row and one value row into an object.
// Cells holding numbers, booleans or null are sent as such.
func parseDataTableToJSON(body *godog.Table) ([]byte, error) {
	if len(body.Rows) < 2 {
		return nil, fmt.Errorf("table must have at least two rows")
	}
	data := make(map[string]interface{})
	for key, value := range tableRow(body) {
		data[key] = cellValue(value)
	}
	return json.Marshal(data)
}

func cellValue(value string) interface{} {
	if i, err := strconv.ParseInt(value, 10, 64); err == nil {
		return i
	}
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return f
	}
	switch value {
	case "true":
		return true
	case "false":
		return false
	case "null":
		return nil
	}
	return value
}

func matchesRow(item map[string]interface{}, expected map[string]string) bool {
	for key, want := range expected {
		got, ok := item[key]
		if !ok || formatValue(got) != want {
			return false
		}
	}
	return true
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return "null"
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	default:
		return fmt.Sprintf("%v", val)
	}
}

// SQLSeeder inserts table rows verbatim; empty cells become NULL and
// postgres casts the text values to the column types.
type SQLSeeder struct {
	DB *sql.DB
}

func NewSQLSeeder(db *sql.DB) *SQLSeeder {
	return &SQLSeeder{DB: db}
}

func (s *SQLSeeder) Seed(table string, data *godog.Table) error {
	if len(data.Rows) < 2 {
		return fmt.Errorf("table must have at least two rows")
	}

	headers := data.Rows[0].Cells
	columns := make([]string, len(headers))
	placeholders := make([]string, len(headers))
	for i, h := range headers {
		columns[i] = h.Value
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	query := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)",
		table, strings.Join(columns, ", "), strings.Join(placeholders, ", "))

	for _, row := range data.Rows[1:] {
		values := make([]interface{}, len(row.Cells))
		for j, cell := range row.Cells {
			if cell.Value != "" {
				values[j] = cell.Value
			}
		}
		if _, err := s.DB.Exec(query, values...); err != nil {
			return fmt.Errorf("seed %s: %w", table, err)
		}
	}
	return nil
}

func (tl *TestLogger) Write(p []byte) (n int, err error) {
	if tl.T != nil {
		tl.T.Logf("%s", p)
	}
	return len(p), nil
}

// Run executes the feature files under ts.Paths and reports a non-zero
// status through t.
func (ts *TestSuite) Run(t *testing.T) int {
	ts.T = t
	opts := godog.Options{
		Format:    "pretty",
		Output:    colors.Colored(&TestLogger{T: t}),
		Paths:     ts.Paths,
		Strict:    true,
		Randomize: 0,
	}

	status := godog.TestSuite{
		Name:                 "blogapi",
		TestSuiteInitializer: ts.InitializeTestSuite,
		ScenarioInitializer:  ts.InitializeScenario,
		Options:              &opts,
	}.Run()
	if status != 0 {
		t.Fail()
	}
	return status
}
