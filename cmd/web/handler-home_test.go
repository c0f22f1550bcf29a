package main

import (
	"context"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"io"
	"net/http"
	"strings"
	"testing"
)

func Test_application_home(t *testing.T) {
	ctx := context.Background()
	env := startTestServer(t)
	client := env.server.Client()

	doc, err := client.GetDoc(ctx, "/")
	require.NoError(t, err)

	require.Contains(t, doc.Find("h1").Text(), "Make a Difference.")
	require.Equal(t, 6, doc.Find("#features li").Length())
	require.Equal(t, 4, doc.Find("#how-it-works li").Length())
	_, ok := doc.Find(".hero a[href='/report']").Attr("href")
	require.True(t, ok, "hero links to the report wizard")
}

func Test_application_infrastructure(t *testing.T) {
	ctx := context.Background()
	env := startTestServer(t)
	client := env.server.Client()

	resp, err := client.Get(ctx, "/")
	require.NoError(t, err)
	_ = resp.Body.Close()
	csp := resp.Header.Get("Content-Security-Policy")
	require.Contains(t, csp, "'nonce-")
	assert.Equal(t, "nosniff", resp.Header.Get("X-Content-Type-Options"))

	resp, err = client.Get(ctx, "/static/main.css")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Cache-Control"), "immutable")

	resp, err = client.Get(ctx, "/does-not-exist")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, err = client.Get(ctx, "/api/healthy")
	require.NoError(t, err)
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = client.Get(ctx, "/metrics")
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode, "metrics are for operators only")

	client.SetBasicAuth(testAdminUser, testAdminPassword)
	resp, err = client.Get(ctx, "/metrics")
	require.NoError(t, err)
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	_ = resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
	metrics := string(body)
	assert.True(t, strings.Contains(metrics, `crimewatch_http_request_duration_seconds_count{code="200",method="GET",pattern="GET /{$}"}`),
		"request to the landing page is observed")
	assert.Contains(t, metrics, `code="404",method="GET",pattern="/"`)
}
