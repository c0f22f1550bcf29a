package contexthelpers_test

import (
	"github.com/myrjola/crimewatch/internal/contexthelpers"
	"github.com/stretchr/testify/require"
	"net/http/httptest"
	"testing"
)

func TestRoundTrip(t *testing.T) {
	r := httptest.NewRequest("GET", "/admin", nil)
	require.False(t, contexthelpers.IsAdmin(r.Context()))
	require.Empty(t, contexthelpers.WizardID(r.Context()))

	r = contexthelpers.AuthenticateAdmin(r, "officer")
	r = contexthelpers.SetCurrentPath(r, "/admin")
	r = contexthelpers.SetCSRFToken(r, "token")
	r = contexthelpers.SetCSPNonce(r, "nonce")
	r = contexthelpers.SetWizardID(r, "wizard")

	ctx := r.Context()
	require.True(t, contexthelpers.IsAdmin(ctx))
	require.Equal(t, "officer", contexthelpers.AdminUser(ctx))
	require.Equal(t, "/admin", contexthelpers.CurrentPath(ctx))
	require.Equal(t, "token", contexthelpers.CSRFToken(ctx))
	require.Equal(t, "nonce", contexthelpers.CSPNonce(ctx))
	require.Equal(t, "wizard", contexthelpers.WizardID(ctx))
}
