package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/roach88/jsonsearch/internal/catalog"
	"github.com/roach88/jsonsearch/internal/ir"
	"github.com/roach88/jsonsearch/internal/search"
	"github.com/roach88/jsonsearch/internal/store"
)

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric       = "E001" // Generic/unknown error
	ErrCodeReadFailed    = "E002" // Search document could not be read
	ErrCodeInvalidConfig = "E003" // Bad flag or config value
	ErrCodeLoadFailed    = "E004" // Definition file failed to load
	ErrCodeNotFound      = "E005" // Path not found
	ErrCodeConnectFailed = "E006" // Database could not be opened
	ErrCodeExecFailed    = "E007" // Statement execution failed
	ErrCodeTestFailed    = "E008" // One or more scenarios failed

	// Search document errors
	ErrCodeMalformedFilter      = "E101"
	ErrCodeMalformedDocument    = "E102"
	ErrCodeUnknownOperator      = "E103"
	ErrCodeUnknownSortDirection = "E104"
	ErrCodeUnknownParameter     = "E105"
	ErrCodeValueMismatch        = "E106"
	ErrCodeRequiresValue        = "E107"
	ErrCodeArity                = "E108"
	ErrCodeValueParse           = "E109"
	ErrCodeReferenceNotFound    = "E110"
	ErrCodeUnsupportedType      = "E111"
)

var searchErrorCodes = map[ir.ErrorCode]string{
	ir.ErrCodeMalformedFilter:       ErrCodeMalformedFilter,
	ir.ErrCodeMalformedDocument:     ErrCodeMalformedDocument,
	ir.ErrCodeUnknownOperator:       ErrCodeUnknownOperator,
	ir.ErrCodeUnknownSortDirection:  ErrCodeUnknownSortDirection,
	ir.ErrCodeUnknownParameter:      ErrCodeUnknownParameter,
	ir.ErrCodeOperatorValueMismatch: ErrCodeValueMismatch,
	ir.ErrCodeOperatorRequiresValue: ErrCodeRequiresValue,
	ir.ErrCodeArity:                 ErrCodeArity,
	ir.ErrCodeValueParse:            ErrCodeValueParse,
	ir.ErrCodeReferenceNotFound:     ErrCodeReferenceNotFound,
	ir.ErrCodeUnsupportedType:       ErrCodeUnsupportedType,
}

// CodedError carries a CLI error code for failures outside the search
// error taxonomy.
type CodedError struct {
	Code string
	Err  error
}

func (e *CodedError) Error() string { return e.Err.Error() }

func (e *CodedError) Unwrap() error { return e.Err }

func coded(code string, err error) error {
	return &CodedError{Code: code, Err: err}
}

// MapErrorCode maps an error to a CLI error code.
func MapErrorCode(err error) string {
	var searchErr *ir.Error
	if errors.As(err, &searchErr) {
		if code, ok := searchErrorCodes[searchErr.Code]; ok {
			return code
		}
	}
	var codedErr *CodedError
	if errors.As(err, &codedErr) {
		return codedErr.Code
	}
	if errors.Is(err, ir.ErrNoResolver) {
		return ErrCodeInvalidConfig
	}
	if ir.IsExecError(err) {
		return ErrCodeExecFailed
	}
	return ErrCodeGeneric
}

// loadDefinition loads the search definition named by --definition.
func loadDefinition(path string) (*catalog.Definition, error) {
	if path == "" {
		return nil, coded(ErrCodeInvalidConfig, errors.New("no definition file given (use --definition)"))
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return nil, coded(ErrCodeNotFound, fmt.Errorf("definition file not found: %s", path))
	}
	def, err := catalog.Load(path)
	if err != nil {
		return nil, coded(ErrCodeLoadFailed, err)
	}
	return def, nil
}

// readDocument reads a search document from the named file, or from stdin
// when the name is "-" or absent. An empty input is the empty search.
func readDocument(args []string, stdin io.Reader) (ir.Node, error) {
	var r io.Reader = stdin
	if len(args) > 0 && args[0] != "-" {
		f, err := os.Open(args[0])
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, coded(ErrCodeNotFound, fmt.Errorf("search document not found: %s", args[0]))
			}
			return nil, coded(ErrCodeReadFailed, err)
		}
		defer f.Close()
		r = f
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, coded(ErrCodeReadFailed, fmt.Errorf("reading search document: %w", err))
	}
	if len(data) == 0 {
		return ir.Object{}, nil
	}
	return ir.ParseDocument(data)
}

// openStore opens the configured database, or returns nil when no driver
// is configured.
func openStore(ctx context.Context, opts *RootOptions, def *catalog.Definition) (*store.Store, error) {
	if opts.Driver == "" {
		return nil, nil
	}
	st, err := store.Open(ctx, store.Config{
		Driver:   opts.Driver,
		DSN:      opts.DSN,
		Entities: def.Entities,
		Logger:   opts.logger(),
	})
	if err != nil {
		return nil, coded(ErrCodeConnectFailed, err)
	}
	return st, nil
}

// buildSearch loads the definition, opens the store when configured and
// applies the search document. The returned close func is never nil.
func buildSearch(ctx context.Context, opts *RootOptions, args []string, stdin io.Reader) (*search.Search, func(), error) {
	noop := func() {}

	def, err := loadDefinition(opts.Definition)
	if err != nil {
		return nil, noop, err
	}
	doc, err := readDocument(args, stdin)
	if err != nil {
		return nil, noop, err
	}

	st, err := openStore(ctx, opts, def)
	if err != nil {
		return nil, noop, err
	}
	closeStore := noop
	searchOpts := search.Options{Logger: opts.logger()}
	if st != nil {
		closeStore = func() {
			if err := st.Close(); err != nil {
				opts.logger().Error("error closing database", "error", err)
			}
		}
		searchOpts.Resolver = st
		searchOpts.Executor = st
	}

	srch, err := search.FromDefinition(def, searchOpts)
	if err != nil {
		closeStore()
		return nil, noop, err
	}
	if err := srch.Parse(ctx, doc); err != nil {
		closeStore()
		return nil, noop, err
	}
	return srch, closeStore, nil
}
