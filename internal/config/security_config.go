package config

type SecurityLevel int

const (
	SecurityPublic  SecurityLevel = iota // No authentication
	SecurityRefresh                      // Refresh token required
	SecurityAccess                       // Access token required
)

// EndpointSecurityConfig maps "METHOD /route/template" to the required security level
var EndpointSecurityConfig = map[string]SecurityLevel{
	// Public
	"POST /api/v1/auth/login":  SecurityPublic,
	"POST /api/v1/auth/signup": SecurityPublic,
	"GET /healthz":             SecurityPublic,
	"GET /metrics":             SecurityPublic,

	// Refresh Protected
	"POST /api/v1/auth/refresh": SecurityRefresh,

	// Access Protected
	"POST /api/v1/auth/logout": SecurityAccess,
	"GET /api/v1/me":           SecurityAccess,
}

// GetSecurityLevel returns the security level for a given route
func GetSecurityLevel(method, route string) SecurityLevel {
	if level, exists := EndpointSecurityConfig[method+" "+route]; exists {
		return level
	}
	// Default to highest security for unknown endpoints
	return SecurityAccess
}
