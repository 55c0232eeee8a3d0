package logger

import "log/slog"

// Error creates an attribute for a single error under the key "error".
// If err is nil, it returns an empty Attr.
func Error(err error) slog.Attr {
	if err == nil {
		return slog.Attr{}
	}
	return slog.Any("error", err)
}

// Component records the emitting component under the key "component".
func Component(name string) slog.Attr {
	return slog.String("component", name)
}

// UserID records the user identifier under the key "user_id".
func UserID(id any) slog.Attr {
	if id == nil {
		return slog.Attr{}
	}
	return slog.Any("user_id", id)
}

// Username records the attempted username under the key "username".
func Username(name string) slog.Attr {
	return slog.String("username", name)
}

// TenantSchema records a tenant schema id under the key "tenant_schema".
func TenantSchema(schema string) slog.Attr {
	return slog.String("tenant_schema", schema)
}
