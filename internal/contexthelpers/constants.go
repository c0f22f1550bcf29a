package contexthelpers

type contextKey string

const (
	adminUserContextKey   = contextKey("adminUser")
	currentPathContextKey = contextKey("currentPath")
	csrfTokenContextKey   = contextKey("csrfToken")
	cspNonceContextKey    = contextKey("cspNonce")
	wizardIDContextKey    = contextKey("wizardID")
)
