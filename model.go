package viewsets

import (
	"net/http"
	"reflect"
	"strings"

	"gorm.io/gorm"
	"gorm.io/gorm/schema"

	"github.com/PaulWay/viewsets/internal/naming"
)

// maxListPageSize caps a client-supplied page_size.
const maxListPageSize = 1000

// Model is an embeddable component that gives a view set gorm-backed default
// actions plus the Queryset and GetObject helpers:
//
//	type WidgetViewSet struct {
//	    viewsets.Model[Widget]
//	}
//
//	router.Register("widgets", &WidgetViewSet{
//	    Model: viewsets.NewModel[Widget](db),
//	})
//
// The embedded methods bind List, Retrieve, Create, Update, PartialUpdate and
// Destroy. Defining a method of the same name on the outer struct overrides
// the default.
type Model[T any] struct {
	db  *gorm.DB
	cfg modelConfig
}

type modelConfig struct {
	lookupField   string // database column matched against the URL param
	lookupParam   string // URL parameter name
	lookupPattern string
	pageSize      int
	scope         func(*Context, *gorm.DB) *gorm.DB
}

// ModelOption configures a Model.
type ModelOption func(*modelConfig)

// WithLookupField sets the database column used for single-object lookup.
// The URL parameter name follows it unless WithLookupParam is also given.
// Default is "id".
func WithLookupField(field string) ModelOption {
	return func(c *modelConfig) {
		c.lookupField = field
	}
}

// WithLookupParam sets the URL parameter name for the lookup segment when it
// should differ from the lookup field.
func WithLookupParam(param string) ModelOption {
	return func(c *modelConfig) {
		c.lookupParam = param
	}
}

// WithLookupPattern sets the pattern the lookup URL segment must match.
// Default is "[^/.]+", which breaks at "/" and ".json"-style suffixes.
func WithLookupPattern(pattern string) ModelOption {
	return func(c *modelConfig) {
		c.lookupPattern = pattern
	}
}

// WithScope narrows every query the model runs, for filtering or tenancy:
//
//	viewsets.NewModel[Widget](db, viewsets.WithScope(func(ctx *viewsets.Context, tx *gorm.DB) *gorm.DB {
//	    return tx.Where("owner = ?", ownerFrom(ctx))
//	}))
func WithScope(scope func(*Context, *gorm.DB) *gorm.DB) ModelOption {
	return func(c *modelConfig) {
		c.scope = scope
	}
}

// WithPageSize enables pagination of the List action with the given default
// page size. Clients can override per request with the page_size query
// parameter (capped at 1000) and select a page with page.
func WithPageSize(n int) ModelOption {
	return func(c *modelConfig) {
		c.pageSize = n
	}
}

// NewModel creates the model component for a view set backed by db.
func NewModel[T any](db *gorm.DB, opts ...ModelOption) Model[T] {
	cfg := modelConfig{
		lookupField:   "id",
		lookupPattern: "[^/.]+",
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.lookupParam == "" {
		cfg.lookupParam = cfg.lookupField
	}
	return Model[T]{db: db, cfg: cfg}
}

// DB returns the underlying gorm handle.
func (m Model[T]) DB() *gorm.DB { return m.db }

// Lookup implements LookupProvider from the model configuration.
func (m Model[T]) Lookup() Lookup {
	return Lookup{Param: m.cfg.lookupParam, Pattern: m.cfg.lookupPattern}
}

// Basename implements BasenameProvider from the model type name, so a
// Model[Widget] view set registers as "widget".
func (m Model[T]) Basename() string {
	t := reflect.TypeOf((*T)(nil)).Elem()
	if t.Name() == "" {
		return ""
	}
	return naming.Kebab(t.Name())
}

// Queryset returns the base query for the model, scoped to the request.
func (m Model[T]) Queryset(ctx *Context) *gorm.DB {
	tx := m.db.WithContext(ctx).Model(new(T))
	if m.cfg.scope != nil {
		tx = m.cfg.scope(ctx, tx)
	}
	return tx
}

// GetObject looks up the single object addressed by the detail URL.
// A missing record maps to the not_found error code.
func (m Model[T]) GetObject(ctx *Context) (*T, error) {
	key := ctx.Param(m.cfg.lookupParam)
	if key == "" {
		return nil, Errorf(CodeInvalidArgument, "missing %s in URL", m.cfg.lookupParam)
	}
	var obj T
	if err := m.Queryset(ctx).Where(map[string]any{m.cfg.lookupField: key}).First(&obj).Error; err != nil {
		return nil, err
	}
	return &obj, nil
}

type listQuery struct {
	Page     int `schema:"page" validate:"omitempty,gte=1"`
	PageSize int `schema:"page_size" validate:"omitempty,gte=1"`
}

// List answers with the collection, paginated when WithPageSize was given.
func (m Model[T]) List(ctx *Context) error {
	var results []T

	if m.cfg.pageSize <= 0 {
		if err := m.Queryset(ctx).Find(&results).Error; err != nil {
			return err
		}
		return ctx.JSON(http.StatusOK, results)
	}

	var q listQuery
	if err := ctx.BindQuery(&q); err != nil {
		return err
	}
	page := q.Page
	if page < 1 {
		page = 1
	}
	size := q.PageSize
	if size < 1 {
		size = m.cfg.pageSize
	}
	if size > maxListPageSize {
		size = maxListPageSize
	}

	var count int64
	if err := m.Queryset(ctx).Count(&count).Error; err != nil {
		return err
	}
	if err := m.Queryset(ctx).Offset((page - 1) * size).Limit(size).Find(&results).Error; err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, Page{
		Count:    count,
		PageNum:  page,
		PageSize: size,
		Results:  results,
	})
}

// Retrieve answers with the single addressed object.
func (m Model[T]) Retrieve(ctx *Context) error {
	obj, err := m.GetObject(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, obj)
}

// Create decodes, validates, and stores a new object.
func (m Model[T]) Create(ctx *Context) error {
	obj := new(T)
	if err := ctx.BindJSON(obj); err != nil {
		return err
	}
	if err := m.db.WithContext(ctx).Create(obj).Error; err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, obj)
}

// Update replaces the addressed object with the request body. The body is
// the complete representation: fields it omits are zeroed, and validation
// runs against the body alone, not a merge with the stored object. Only the
// identity fields are carried over, so a replacement cannot move the object.
func (m Model[T]) Update(ctx *Context) error {
	obj, err := m.GetObject(ctx)
	if err != nil {
		return err
	}
	replacement := new(T)
	if err := ctx.BindJSON(replacement); err != nil {
		return err
	}
	copyIdentity(replacement, obj, m.cfg.lookupField)
	if err := m.db.WithContext(ctx).Save(replacement).Error; err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, replacement)
}

// PartialUpdate applies exactly the fields named in the request body to the
// addressed object, including fields set to their zero value. The patch is
// not validated as a full representation. Keys that do not name a model
// field, and the lookup key itself, are ignored.
func (m Model[T]) PartialUpdate(ctx *Context) error {
	obj, err := m.GetObject(ctx)
	if err != nil {
		return err
	}
	var body map[string]any
	if err := ctx.decodeJSON(&body); err != nil {
		return err
	}
	patch := m.columnPatch(body)
	if len(patch) > 0 {
		if err := m.db.WithContext(ctx).Model(obj).Updates(patch).Error; err != nil {
			return err
		}
	}
	return ctx.JSON(http.StatusOK, obj)
}

// columnPatch translates JSON body keys into column assignments. Updates runs
// with a map rather than a struct so zero values are written through.
func (m Model[T]) columnPatch(body map[string]any) map[string]any {
	cols := jsonColumns(reflect.TypeOf((*T)(nil)).Elem())
	patch := make(map[string]any, len(body))
	for key, val := range body {
		col, ok := cols[key]
		if !ok || col == m.cfg.lookupField {
			continue
		}
		patch[col] = val
	}
	return patch
}

// jsonColumns maps each JSON field name of a model struct to its database
// column, honoring json and gorm column tags. Embedded structs are flattened
// the way encoding/json promotes them.
func jsonColumns(t reflect.Type) map[string]string {
	cols := make(map[string]string, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			for k, v := range jsonColumns(f.Type) {
				cols[k] = v
			}
			continue
		}
		if !f.IsExported() {
			continue
		}
		jsonName := f.Name
		if tag, _, _ := strings.Cut(f.Tag.Get("json"), ","); tag != "" {
			if tag == "-" {
				continue
			}
			jsonName = tag
		}
		cols[jsonName] = columnName(f)
	}
	return cols
}

func columnName(f reflect.StructField) string {
	for _, part := range strings.Split(f.Tag.Get("gorm"), ";") {
		if col, ok := strings.CutPrefix(part, "column:"); ok {
			return strings.TrimSpace(col)
		}
	}
	return schema.NamingStrategy{}.ColumnName("", f.Name)
}

// copyIdentity carries the lookup column's field and every primary key field
// from src to dst, so a replacement body can neither move the object to
// another key nor turn the Save into an insert.
func copyIdentity[T any](dst, src *T, lookupColumn string) {
	dv := reflect.ValueOf(dst).Elem()
	sv := reflect.ValueOf(src).Elem()
	for _, idx := range identityFieldIndexes(dv.Type(), lookupColumn) {
		dv.FieldByIndex(idx).Set(sv.FieldByIndex(idx))
	}
}

func identityFieldIndexes(t reflect.Type, lookupColumn string) [][]int {
	var out [][]int
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if f.Anonymous && f.Type.Kind() == reflect.Struct {
			for _, idx := range identityFieldIndexes(f.Type, lookupColumn) {
				out = append(out, append([]int{i}, idx...))
			}
			continue
		}
		if !f.IsExported() {
			continue
		}
		if columnName(f) == lookupColumn || isPrimaryKey(f) {
			out = append(out, []int{i})
		}
	}
	return out
}

func isPrimaryKey(f reflect.StructField) bool {
	for _, part := range strings.Split(f.Tag.Get("gorm"), ";") {
		if strings.EqualFold(strings.TrimSpace(part), "primaryKey") {
			return true
		}
	}
	return false
}

// Destroy deletes the addressed object.
func (m Model[T]) Destroy(ctx *Context) error {
	obj, err := m.GetObject(ctx)
	if err != nil {
		return err
	}
	if err := m.db.WithContext(ctx).Delete(obj).Error; err != nil {
		return err
	}
	return ctx.NoContent()
}
