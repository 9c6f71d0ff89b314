package logging

import "context"

// Discard drops every entry. It backs --silent and any nil logger.
var Discard Logger = nullLogger{}

type nullLogger struct{}

func (nullLogger) Debug(context.Context, string, Fields)        {}
func (nullLogger) Info(context.Context, string, Fields)         {}
func (nullLogger) Warn(context.Context, string, Fields)         {}
func (nullLogger) Error(context.Context, string, error, Fields) {}
func (n nullLogger) WithFields(Fields) Logger                   { return n }
func (nullLogger) Close() error                                 { return nil }
