package servers

import "strings"

// ConfigString returns the trimmed string value for key from server.Config or a fallback.
func ConfigString(s Server, key, fallback string) string {
	if s.Config != nil {
		if raw, ok := s.Config[key]; ok {
			if val, ok := raw.(string); ok {
				if trimmed := strings.TrimSpace(val); trimmed != "" {
					return trimmed
				}
			}
		}
	}
	return fallback
}

const (
	ConfigAcceptKey        = "accept"
	ConfigAuthHeaderKey    = "auth_header"
	ConfigCorrelationIDKey = "correlation_id"
)

// Headers builds the common request headers from a server config (skips empty values).
func Headers(s Server) map[string]string {
	headers := make(map[string]string, 3)

	headers["Accept"] = ConfigString(s, ConfigAcceptKey, "application/json")
	if v := ConfigString(s, ConfigAuthHeaderKey, ""); v != "" {
		headers["Authorization"] = v
	}
	if v := ConfigString(s, ConfigCorrelationIDKey, ""); v != "" {
		headers["Correlation-Id"] = v
	}

	return headers
}
