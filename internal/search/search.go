// Package search ties a parameter catalog, a filter tree, a sort list and
// paging into one search that can be parsed from a document, compiled, and
// executed.
package search

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"github.com/roach88/jsonsearch/internal/catalog"
	"github.com/roach88/jsonsearch/internal/filter"
	"github.com/roach88/jsonsearch/internal/ir"
	"github.com/roach88/jsonsearch/internal/querysql"
)

// Document keys.
const (
	KeyFilter   = "filter"
	KeySort     = "sort"
	KeyPage     = "page"
	KeyPageSize = "pageSize"
)

// DefaultPageSize is the page size of a search that does not set one.
const DefaultPageSize = catalog.DefaultPageSize

// Executor runs compiled statements against a data source.
type Executor interface {
	// List returns the rows in the statement's window.
	List(ctx context.Context, stmt querysql.Statement) ([]ir.Record, error)

	// Single returns the only row, ir.ErrNoResult when there is none and
	// ir.ErrNonUnique when there are several.
	Single(ctx context.Context, stmt querysql.Statement) (ir.Record, error)

	// Count returns the scalar a count statement yields.
	Count(ctx context.Context, stmt querysql.Statement) (int64, error)
}

// Options configures a Search.
type Options struct {
	From     string
	Alias    string
	Distinct bool

	// Key is the column counted by distinct counts. Defaults to "id".
	Key string

	// PageSize defaults to DefaultPageSize.
	PageSize int

	// Resolver resolves reference parameters while parsing.
	Resolver ir.Resolver

	// Executor runs statements. Required for Find, FindSingle, Count, Result.
	Executor Executor

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Search is one search: a root AND filter, sorts, and a page window over a
// fixed source and catalog.
//
// A Search is not safe for concurrent mutation. Compiling an unmutated
// Search from several goroutines is safe.
type Search struct {
	compiler *querysql.Compiler
	parser   *filter.Parser
	exec     Executor
	logger   *slog.Logger

	root     *filter.Logical
	sorts    []filter.Sort
	page     int
	pageSize int
}

// New returns a Search over cat.
func New(cat *catalog.Catalog, opts Options) *Search {
	pageSize := opts.PageSize
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Search{
		compiler: &querysql.Compiler{
			Catalog:  cat,
			From:     opts.From,
			Alias:    opts.Alias,
			Distinct: opts.Distinct,
			Key:      opts.Key,
		},
		parser:   filter.NewParser(cat, ir.NewCoercer(opts.Resolver)),
		exec:     opts.Executor,
		logger:   logger,
		root:     filter.NewLogical(filter.And),
		pageSize: pageSize,
	}
}

// FromDefinition builds a Search from a loaded definition file.
func FromDefinition(def *catalog.Definition, opts Options) (*Search, error) {
	cat, err := def.Catalog()
	if err != nil {
		return nil, fmt.Errorf("build catalog: %w", err)
	}
	opts.From = def.From
	opts.Alias = def.Alias
	opts.Distinct = def.Distinct
	opts.Key = def.EffectiveKey()
	if opts.PageSize <= 0 {
		opts.PageSize = def.EffectivePageSize()
	}
	return New(cat, opts), nil
}

// Catalog returns the catalog the search compiles against.
func (s *Search) Catalog() *catalog.Catalog {
	return s.compiler.Catalog
}

// Filter returns the root filter group. Builder calls on it modify the search.
func (s *Search) Filter() *filter.Logical {
	return s.root
}

// Distinct reports whether the search selects distinct rows.
func (s *Search) Distinct() bool {
	return s.compiler.Distinct
}

// SetDistinct toggles distinct selection and counting.
func (s *Search) SetDistinct(distinct bool) *Search {
	s.compiler.Distinct = distinct
	return s
}

// Sorts returns a copy of the sort list.
func (s *Search) Sorts() []filter.Sort {
	out := make([]filter.Sort, len(s.sorts))
	copy(out, s.sorts)
	return out
}

// AddSort appends a sort entry. The field is checked against the catalog.
func (s *Search) AddSort(field string, dir filter.Direction) error {
	if _, err := s.compiler.Catalog.Resolve(field); err != nil {
		return err
	}
	s.sorts = append(s.sorts, filter.Sort{Field: field, Direction: dir})
	return nil
}

// ClearSorts removes every sort entry.
func (s *Search) ClearSorts() *Search {
	s.sorts = nil
	return s
}

// Page returns the zero-based page index.
func (s *Search) Page() int {
	return s.page
}

// SetPage sets the zero-based page index.
func (s *Search) SetPage(page int) error {
	if page < 0 {
		return ir.NewMalformedDocumentError(fmt.Sprintf("page must not be negative, got %d", page))
	}
	if err := checkWindow(page, s.pageSize); err != nil {
		return err
	}
	s.page = page
	return nil
}

// PageSize returns the page size.
func (s *Search) PageSize() int {
	return s.pageSize
}

// SetPageSize sets the page size, which must be positive.
func (s *Search) SetPageSize(size int) error {
	if size <= 0 {
		return ir.NewMalformedDocumentError(fmt.Sprintf("pageSize must be positive, got %d", size))
	}
	if err := checkWindow(s.page, size); err != nil {
		return err
	}
	s.pageSize = size
	return nil
}

// checkWindow rejects a page whose first row offset does not fit in an int.
func checkWindow(page, size int) error {
	if size > 0 && page > math.MaxInt/size {
		return ir.NewMalformedDocumentError(
			fmt.Sprintf("page %d with pageSize %d is out of range", page, size))
	}
	return nil
}

// Window returns the [first, first+max) row window of the current page.
func (s *Search) Window() (first, max int) {
	return s.page * s.pageSize, s.pageSize
}

// ParseJSON parses a JSON search document. See Parse.
func (s *Search) ParseJSON(ctx context.Context, data []byte) error {
	doc, err := ir.ParseDocument(data)
	if err != nil {
		return err
	}
	return s.Parse(ctx, doc)
}

// Parse applies a search document:
//
//	{"filter": [...], "sort": [...], "page": 0, "pageSize": 10}
//
// Every key is optional. The filter's conditions are appended to the root
// group and its sorts to the sort list; absent page and pageSize keep their
// current values. The search is left untouched when parsing fails.
func (s *Search) Parse(ctx context.Context, doc ir.Node) error {
	obj, ok := doc.(ir.Object)
	if !ok {
		return ir.NewMalformedDocumentError(
			fmt.Sprintf("expected search document to be an object, got %s", ir.KindOf(doc)))
	}

	var filterNodes *filter.Logical
	if node, ok := obj[KeyFilter]; ok {
		parsed, err := s.parser.ParseFilter(ctx, node)
		if err != nil {
			return err
		}
		filterNodes = parsed
	}

	pageSize := s.pageSize
	if node, ok := obj[KeyPageSize]; ok {
		n, err := integral(KeyPageSize, node)
		if err != nil {
			return err
		}
		if n <= 0 {
			return ir.NewMalformedDocumentError(fmt.Sprintf("pageSize must be positive, got %d", n))
		}
		pageSize = n
	}

	page := s.page
	if node, ok := obj[KeyPage]; ok {
		n, err := integral(KeyPage, node)
		if err != nil {
			return err
		}
		if n < 0 {
			return ir.NewMalformedDocumentError(fmt.Sprintf("page must not be negative, got %d", n))
		}
		page = n
	}
	if err := checkWindow(page, pageSize); err != nil {
		return err
	}

	var sorts []filter.Sort
	if node, ok := obj[KeySort]; ok {
		parsed, err := s.parser.ParseSorts(node)
		if err != nil {
			return err
		}
		sorts = parsed
	}

	if filterNodes != nil {
		s.root.Add(filterNodes.Children()...)
	}
	s.sorts = append(s.sorts, sorts...)
	s.page = page
	s.pageSize = pageSize
	return nil
}

func integral(key string, node ir.Node) (int, error) {
	num, ok := node.(ir.Number)
	if !ok {
		return 0, ir.NewMalformedDocumentError(
			fmt.Sprintf("expected %s to be an integral number, got %s", key, ir.KindOf(node)))
	}
	n, err := strconv.Atoi(string(num))
	if err != nil {
		return 0, ir.NewMalformedDocumentError(
			fmt.Sprintf("expected %s to be an integral number, got %s", key, num))
	}
	return n, nil
}

// CompileSelect compiles the select statement for the current state.
func (s *Search) CompileSelect() (*querysql.Fragment, error) {
	stmt, err := s.compiler.CompileSelect(s.root, s.sorts)
	if err != nil {
		return nil, err
	}
	s.logStatement("select", stmt)
	return stmt, nil
}

// CompileCount compiles the count statement for the current state.
func (s *Search) CompileCount() (*querysql.Fragment, error) {
	stmt, err := s.compiler.CompileCount(s.root)
	if err != nil {
		return nil, err
	}
	s.logStatement("count", stmt)
	return stmt, nil
}

func (s *Search) logStatement(mode string, stmt *querysql.Fragment) {
	s.logger.Debug("resulting statement",
		"mode", mode,
		"statement", stmt.Text(),
		"params", stmt.Names(),
	)
}
