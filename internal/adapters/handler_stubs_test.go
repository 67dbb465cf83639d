package adapters

import (
	"context"
)

// Generic stubs standing in for the decorated command and query handlers.

type stubCommandHandler[C any, R any] struct {
	result   R
	err      error
	commands []C
}

func (s *stubCommandHandler[C, R]) Handle(_ context.Context, cmd C) (R, error) {
	s.commands = append(s.commands, cmd)

	return s.result, s.err
}

type stubQueryHandler[Q any, R any] struct {
	result  R
	err     error
	queries []Q
}

func (s *stubQueryHandler[Q, R]) Execute(_ context.Context, query Q) (R, error) {
	s.queries = append(s.queries, query)

	return s.result, s.err
}
