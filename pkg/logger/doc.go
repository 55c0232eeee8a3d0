// Package logger builds slog loggers with environment-driven level and
// format, static service attributes, and context extractors that inject
// request-scoped values (tenant schema, user id) into every record.
package logger
