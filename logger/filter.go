package logger

import "strings"

// DefaultMaskValue replaces sensitive values in log output.
const DefaultMaskValue = "***"

// maxFilterDepth bounds recursion when masking nested structures.
const maxFilterDepth = 8

// FilterConfig configures sensitive-data masking.
type FilterConfig struct {
	// SensitiveFields are field-name fragments that trigger masking.
	// Matching is case-insensitive substring matching.
	SensitiveFields []string
	// MaskValue replaces sensitive values (default: "***").
	MaskValue string
}

// DefaultFilterConfig returns the default set of sensitive field names.
func DefaultFilterConfig() *FilterConfig {
	return &FilterConfig{
		SensitiveFields: []string{
			"password", "passwd", "pwd",
			"secret", "api_key", "apikey",
			"token", "access_token", "refresh_token",
			"authorization", "auth",
			"credential", "credentials",
		},
		MaskValue: DefaultMaskValue,
	}
}

// SensitiveDataFilter masks sensitive values before they reach log output.
type SensitiveDataFilter struct {
	config *FilterConfig
}

// NewSensitiveDataFilter creates a filter with the given configuration.
// A nil config uses DefaultFilterConfig.
func NewSensitiveDataFilter(config *FilterConfig) *SensitiveDataFilter {
	if config == nil {
		config = DefaultFilterConfig()
	}
	if config.MaskValue == "" {
		config.MaskValue = DefaultMaskValue
	}
	return &SensitiveDataFilter{config: config}
}

// IsSensitive reports whether a field name should be masked.
func (f *SensitiveDataFilter) IsSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, field := range f.config.SensitiveFields {
		if strings.Contains(lower, field) {
			return true
		}
	}
	return false
}

// FilterString masks a string value when its key is sensitive.
func (f *SensitiveDataFilter) FilterString(key, value string) string {
	if f.IsSensitive(key) {
		return f.config.MaskValue
	}
	return value
}

// FilterValue masks sensitive entries in a value, recursing into maps
// and slices up to a bounded depth.
func (f *SensitiveDataFilter) FilterValue(key string, value any) any {
	return f.filterValue(key, value, maxFilterDepth)
}

func (f *SensitiveDataFilter) filterValue(key string, value any, depth int) any {
	if f.IsSensitive(key) {
		return f.config.MaskValue
	}
	if value == nil || depth <= 0 {
		return value
	}

	switch v := value.(type) {
	case map[string]any:
		filtered := make(map[string]any, len(v))
		for k, item := range v {
			filtered[k] = f.filterValue(k, item, depth-1)
		}
		return filtered
	case map[string]string:
		filtered := make(map[string]string, len(v))
		for k, item := range v {
			filtered[k] = f.FilterString(k, item)
		}
		return filtered
	case []any:
		filtered := make([]any, len(v))
		for i, item := range v {
			filtered[i] = f.filterValue(key, item, depth-1)
		}
		return filtered
	default:
		return value
	}
}
