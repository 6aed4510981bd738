// Package validation turns raw request input into typed catalog inputs.
// Every failing field is reported at once as a VALIDATION_ERROR.
package validation

import (
	"encoding/json"
	"fmt"
	"math"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"

	"github.com/daap14/catalog-api/internal/apperror"
	"github.com/daap14/catalog-api/internal/catalog"
)

const (
	FieldBody      = "body"
	FieldCatalogID = "catalog_id"

	msgInvalidJSON = "Request body must be valid JSON"
	msgInvalidUUID = "Invalid UUID format"
	msgRequired    = "Required"
	msgNaN         = "Expected number, received nan"
	msgFloat       = "Expected integer, received float"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// messages maps "field.tag" to the client-facing message for that failure.
var messages = map[string]string{
	"page.min":         "Number must be greater than or equal to 1",
	"limit.min":        "Number must be greater than or equal to 1",
	"limit.max":        "Number must be less than or equal to 50",
	"name.min":         "Name is required",
	"name.max":         "Name must be at most 255 characters",
	"description.max":  "Description must be at most 1000 characters",
	"catalog_data.min": "Catalog data cannot be empty",
}

// fieldErrors collects at most one message per field, first failure wins.
type fieldErrors map[string]string

func (f fieldErrors) add(field, msg string) {
	if _, ok := f[field]; !ok {
		f[field] = msg
	}
}

func (f fieldErrors) err() error {
	if len(f) == 0 {
		return nil
	}
	return apperror.Validation(f)
}

// collect runs struct validation and records tag failures not already
// reported by the raw type checks.
func (f fieldErrors) collect(s any) {
	err := validate.Struct(s)
	if err == nil {
		return
	}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		f.add(FieldBody, err.Error())
		return
	}
	for _, fe := range verrs {
		f.add(fe.Field(), messageFor(fe))
	}
}

func messageFor(fe validator.FieldError) string {
	if msg, ok := messages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	if fe.Tag() == "oneof" {
		return enumMessage(strings.Fields(fe.Param()), fmt.Sprint(fe.Value()))
	}
	return fmt.Sprintf("Invalid value for %s", fe.Field())
}

func enumMessage(allowed []string, got string) string {
	quoted := make([]string, len(allowed))
	for i, a := range allowed {
		quoted[i] = "'" + a + "'"
	}
	return fmt.Sprintf("Invalid enum value. Expected %s, received '%s'", strings.Join(quoted, " | "), got)
}

// --- List query ---

type listParams struct {
	Page  int    `json:"page" validate:"min=1"`
	Limit int    `json:"limit" validate:"min=1,max=50"`
	Sort  string `json:"sort" validate:"oneof=created_at updated_at name"`
	Order string `json:"order" validate:"oneof=asc desc"`
}

// ParseListQuery validates GET /catalogs query parameters and applies
// defaults for absent ones.
func ParseListQuery(values url.Values) (catalog.ListQuery, error) {
	errs := fieldErrors{}
	p := listParams{
		Page:  catalog.DefaultPage,
		Limit: catalog.DefaultLimit,
		Sort:  string(catalog.SortCreatedAt),
		Order: string(catalog.OrderDesc),
	}

	// Fields that fail coercion keep a valid placeholder so the struct pass
	// does not report them twice.
	if raw, ok := lookup(values, "page"); ok {
		if n, msg := coerceInt(raw); msg != "" {
			errs.add("page", msg)
		} else {
			p.Page = n
		}
	}
	if raw, ok := lookup(values, "limit"); ok {
		if n, msg := coerceInt(raw); msg != "" {
			errs.add("limit", msg)
		} else {
			p.Limit = n
		}
	}
	if raw, ok := lookup(values, "sort"); ok {
		p.Sort = raw
	}
	if raw, ok := lookup(values, "order"); ok {
		p.Order = raw
	}

	errs.collect(p)
	if err := errs.err(); err != nil {
		return catalog.ListQuery{}, err
	}

	q := catalog.ListQuery{
		Page:  p.Page,
		Limit: p.Limit,
		Sort:  catalog.SortField(p.Sort),
		Order: catalog.SortOrder(p.Order),
	}
	if raw, ok := lookup(values, "search"); ok {
		q.Search = &raw
	}
	return q, nil
}

func lookup(values url.Values, key string) (string, bool) {
	vs, ok := values[key]
	if !ok || len(vs) == 0 {
		return "", false
	}
	return vs[0], true
}

// coerceInt parses raw the way a numeric query string is read: surrounding
// whitespace is ignored and the empty string is zero.
func coerceInt(raw string) (int, string) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, ""
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(f) {
		return 0, msgNaN
	}
	if math.IsInf(f, 0) || f != math.Trunc(f) {
		return 0, msgFloat
	}
	if f > math.MaxInt32 {
		return math.MaxInt32, ""
	}
	if f < math.MinInt32 {
		return math.MinInt32, ""
	}
	return int(f), ""
}

// --- Path parameter ---

// ParseCatalogID validates the catalog_id path parameter.
func ParseCatalogID(raw string) (uuid.UUID, error) {
	if err := validate.Var(strings.ToLower(raw), "required,uuid"); err != nil {
		return uuid.Nil, apperror.Validation(map[string]string{FieldCatalogID: msgInvalidUUID})
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, apperror.Validation(map[string]string{FieldCatalogID: msgInvalidUUID})
	}
	return id, nil
}

// --- Bodies ---

type createBody struct {
	Name        *string        `json:"name" validate:"omitnil,min=1,max=255"`
	Description *string        `json:"description" validate:"omitnil,max=1000"`
	CatalogData map[string]any `json:"catalog_data" validate:"omitnil,min=1"`
}

// updateBody accepts an empty catalog_data object.
type updateBody struct {
	Name        *string        `json:"name" validate:"omitnil,min=1,max=255"`
	Description *string        `json:"description" validate:"omitnil,max=1000"`
	CatalogData map[string]any `json:"catalog_data"`
}

// ParseCreateCatalog validates a POST /catalogs body.
func ParseCreateCatalog(body []byte) (catalog.CreateInput, error) {
	root, err := parseObject(body)
	if err != nil {
		return catalog.CreateInput{}, err
	}

	errs := fieldErrors{}
	b := readBody(root, errs, true)
	errs.collect(b)
	if err := errs.err(); err != nil {
		return catalog.CreateInput{}, err
	}

	return catalog.CreateInput{
		Name:        *b.Name,
		Description: b.Description,
		CatalogData: b.CatalogData,
	}, nil
}

// ParseUpdateCatalog validates a PUT /catalogs/{catalog_id} body. Absent
// fields stay nil; an explicit null description clears it.
func ParseUpdateCatalog(body []byte) (catalog.UpdateInput, error) {
	root, err := parseObject(body)
	if err != nil {
		return catalog.UpdateInput{}, err
	}

	errs := fieldErrors{}
	b := updateBody(readBody(root, errs, false))
	errs.collect(b)
	if err := errs.err(); err != nil {
		return catalog.UpdateInput{}, err
	}

	return catalog.UpdateInput{
		Name:           b.Name,
		Description:    b.Description,
		DescriptionSet: root.Get("description").Exists(),
		CatalogData:    b.CatalogData,
	}, nil
}

func parseObject(body []byte) (gjson.Result, error) {
	if !gjson.ValidBytes(body) {
		return gjson.Result{}, apperror.Validation(map[string]string{FieldBody: msgInvalidJSON})
	}
	root := gjson.ParseBytes(body)
	if !root.IsObject() {
		return gjson.Result{}, apperror.Validation(map[string]string{FieldBody: "Expected object, received " + typeName(root)})
	}
	return root, nil
}

// readBody performs presence and raw type checks, leaving bound checks to
// the validator.
func readBody(root gjson.Result, errs fieldErrors, create bool) createBody {
	var b createBody

	switch name := root.Get("name"); {
	case !name.Exists():
		if create {
			errs.add("name", msgRequired)
		}
	case name.Type != gjson.String:
		errs.add("name", "Expected string, received "+typeName(name))
	default:
		s := strings.TrimSpace(name.String())
		b.Name = &s
	}

	switch desc := root.Get("description"); {
	case !desc.Exists(), desc.Type == gjson.Null:
	case desc.Type != gjson.String:
		errs.add("description", "Expected string, received "+typeName(desc))
	default:
		s := desc.String()
		b.Description = &s
	}

	switch data := root.Get("catalog_data"); {
	case !data.Exists():
		if create {
			errs.add("catalog_data", msgRequired)
		}
	case !data.IsObject():
		errs.add("catalog_data", "Expected object, received "+typeName(data))
	default:
		m := map[string]any{}
		if err := json.Unmarshal([]byte(data.Raw), &m); err != nil {
			errs.add("catalog_data", msgInvalidJSON)
			break
		}
		b.CatalogData = m
	}

	return b
}

func typeName(r gjson.Result) string {
	switch r.Type {
	case gjson.Null:
		return "null"
	case gjson.True, gjson.False:
		return "boolean"
	case gjson.Number:
		return "number"
	case gjson.String:
		return "string"
	default:
		if r.IsArray() {
			return "array"
		}
		return "object"
	}
}
