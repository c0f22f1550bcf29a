package contexthelpers

import (
	"context"
)

// IsAdmin reports whether the request passed the admin basic auth check.
func IsAdmin(ctx context.Context) bool {
	return AdminUser(ctx) != ""
}

func AdminUser(ctx context.Context) string {
	user, ok := ctx.Value(adminUserContextKey).(string)
	if !ok {
		return ""
	}

	return user
}

func CurrentPath(ctx context.Context) string {
	currentPath, ok := ctx.Value(currentPathContextKey).(string)
	if !ok {
		return ""
	}

	return currentPath
}

func CSRFToken(ctx context.Context) string {
	csrfToken, ok := ctx.Value(csrfTokenContextKey).(string)
	if !ok {
		return ""
	}

	return csrfToken
}

func CSPNonce(ctx context.Context) string {
	nonce, ok := ctx.Value(cspNonceContextKey).(string)
	if !ok {
		return ""
	}

	return nonce
}

// WizardID returns the identifier of the report wizard bound to the visitor's session.
func WizardID(ctx context.Context) string {
	id, ok := ctx.Value(wizardIDContextKey).(string)
	if !ok {
		return ""
	}

	return id
}
