package contexthelpers

import (
	"context"
	"net/http"
)

func AuthenticateAdmin(r *http.Request, user string) *http.Request {
	ctx := context.WithValue(r.Context(), adminUserContextKey, user)
	return r.WithContext(ctx)
}

func SetCurrentPath(r *http.Request, currentPath string) *http.Request {
	ctx := context.WithValue(r.Context(), currentPathContextKey, currentPath)
	return r.WithContext(ctx)
}

func SetCSRFToken(r *http.Request, token string) *http.Request {
	ctx := context.WithValue(r.Context(), csrfTokenContextKey, token)
	return r.WithContext(ctx)
}

func SetCSPNonce(r *http.Request, nonce string) *http.Request {
	ctx := context.WithValue(r.Context(), cspNonceContextKey, nonce)
	return r.WithContext(ctx)
}

func SetWizardID(r *http.Request, id string) *http.Request {
	ctx := context.WithValue(r.Context(), wizardIDContextKey, id)
	return r.WithContext(ctx)
}
