package model

import (
	"github.com/crmarques/restmodel/resource"
)

// RequestOptions are caller-supplied overrides merged on top of the
// computed defaults for an operation. Set fields win; header and query
// entries merge with caller entries taking precedence.
type RequestOptions struct {
	URL         string
	Method      string
	Body        resource.Value
	ContentType string
	Accept      string
	Headers     map[string]string
	Query       map[string]string
}

func mergeRequestOptions(defaults RequestOptions, overrides RequestOptions) RequestOptions {
	merged := defaults
	if overrides.URL != "" {
		merged.URL = overrides.URL
	}
	if overrides.Method != "" {
		merged.Method = overrides.Method
	}
	if overrides.Body != nil {
		merged.Body = overrides.Body
	}
	if overrides.ContentType != "" {
		merged.ContentType = overrides.ContentType
	}
	if overrides.Accept != "" {
		merged.Accept = overrides.Accept
	}
	merged.Headers = mergeStringMaps(defaults.Headers, overrides.Headers)
	merged.Query = mergeStringMaps(defaults.Query, overrides.Query)
	return merged
}

func mergeStringMaps(defaults map[string]string, overrides map[string]string) map[string]string {
	if len(defaults) == 0 && len(overrides) == 0 {
		return nil
	}
	merged := make(map[string]string, len(defaults)+len(overrides))
	for key, value := range defaults {
		merged[key] = value
	}
	for key, value := range overrides {
		merged[key] = value
	}
	return merged
}
