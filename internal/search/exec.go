package search

import (
	"context"
	"errors"

	"github.com/roach88/jsonsearch/internal/ir"
	"github.com/roach88/jsonsearch/internal/querysql"
)

// ErrNoExecutor is returned by the execution methods of a Search built
// without an Executor.
var ErrNoExecutor = errors.New("search has no executor")

// Find returns the rows of the current page.
//
// Compilation errors are returned as they are; every other failure is
// wrapped in an *ir.ExecError.
func (s *Search) Find(ctx context.Context) ([]ir.Record, error) {
	stmt, err := s.selectStatement(true)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("executing find", "first", stmt.FirstResult, "max", stmt.MaxResults)
	rows, err := s.exec.List(ctx, stmt)
	if err != nil {
		return nil, ir.WrapExec("find", err)
	}
	return rows, nil
}

// FindSingle returns the only matching row, ignoring the page window.
// No match and several matches are execution errors wrapping
// ir.ErrNoResult and ir.ErrNonUnique.
func (s *Search) FindSingle(ctx context.Context) (ir.Record, error) {
	stmt, err := s.selectStatement(false)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("executing find single")
	row, err := s.exec.Single(ctx, stmt)
	if err != nil {
		return nil, ir.WrapExec("find_single", err)
	}
	return row, nil
}

// Count returns the number of rows the filter matches, ignoring paging.
func (s *Search) Count(ctx context.Context) (int64, error) {
	if s.exec == nil {
		return 0, ir.WrapExec("count", ErrNoExecutor)
	}
	frag, err := s.CompileCount()
	if err != nil {
		return 0, err
	}
	s.logger.Debug("executing count")
	n, err := s.exec.Count(ctx, frag.Statement())
	if err != nil {
		return 0, ir.WrapExec("count", err)
	}
	return n, nil
}

// Result runs Find and Count and wraps both with the paging metadata.
func (s *Search) Result(ctx context.Context) (*Result[ir.Record], error) {
	rows, err := s.Find(ctx)
	if err != nil {
		return nil, err
	}
	count, err := s.Count(ctx)
	if err != nil {
		return nil, err
	}
	return NewResult(rows, count, s.page, s.pageSize), nil
}

func (s *Search) selectStatement(windowed bool) (querysql.Statement, error) {
	if s.exec == nil {
		return querysql.Statement{}, ir.WrapExec("find", ErrNoExecutor)
	}
	frag, err := s.CompileSelect()
	if err != nil {
		return querysql.Statement{}, err
	}
	stmt := frag.Statement()
	if windowed {
		stmt.FirstResult, stmt.MaxResults = s.Window()
	}
	return stmt, nil
}
