package codegen

import "github.com/minilang/mlc/pkg/diagnostics"

// GenError collects every generation-time diagnostic encountered while
// lowering a program. The generator never emits a partial image: all errors
// are gathered and reported together, the way pkg/semantic.Analyzer in the
// donor compiler accumulates and formats multiple diagnostics before
// returning one combined error.
type GenError struct {
	collector diagnostics.Collector
}

func (e *GenError) add(format string, args ...any) {
	if e.collector.Stage == "" {
		e.collector.Stage = "code generation"
	}
	e.collector.Addf(format, args...)
}

func (e *GenError) HasErrors() bool {
	return e.collector.HasErrors()
}

func (e *GenError) Err() error {
	return e.collector.Err()
}
