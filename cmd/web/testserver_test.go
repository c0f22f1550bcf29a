package main

import (
	"context"
	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/crimewatch/internal/e2etest"
	"github.com/myrjola/crimewatch/internal/models"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
	"io"
	"net/url"
	"testing"
)

const (
	testAdminUser     = "officer"
	testAdminPassword = "correct horse battery staple"
	testPlace         = "221B Baker Street, London"
)

type testEnv struct {
	server    *e2etest.Server
	backend   *e2etest.FakeBackend
	openAI    *e2etest.FakeOpenAI
	nominatim *e2etest.FakeNominatim
}

// startTestServer starts the web server against fake upstream services seeded with reports.
func startTestServer(t *testing.T, reports ...models.Report) testEnv {
	t.Helper()

	backend := e2etest.NewFakeBackend(reports...)
	t.Cleanup(backend.Close)
	openAI := e2etest.NewFakeOpenAI()
	t.Cleanup(openAI.Close)
	nominatim := e2etest.NewFakeNominatim(testPlace)
	t.Cleanup(nominatim.Close)

	hash, err := bcrypt.GenerateFromPassword([]byte(testAdminPassword), bcrypt.MinCost)
	require.NoError(t, err)

	env := map[string]string{
		"CRIMEWATCH_ADDR":                "localhost:0",
		"CRIMEWATCH_SQLITE_URL":          ":memory:",
		"CRIMEWATCH_BACKEND_URL":         backend.URL,
		"OPENAI_API_KEY":                 "test-key",
		"CRIMEWATCH_OPENAI_BASE_URL":     openAI.URL,
		"CRIMEWATCH_NOMINATIM_URL":       nominatim.URL,
		"CRIMEWATCH_ADMIN_USER":          testAdminUser,
		"CRIMEWATCH_ADMIN_PASSWORD_HASH": string(hash),
	}
	lookupEnv := func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	server, err := e2etest.StartServer(ctx, io.Discard, lookupEnv, run)
	require.NoError(t, err)

	return testEnv{
		server:    server,
		backend:   backend,
		openAI:    openAI,
		nominatim: nominatim,
	}
}

// answer submits text to the wizard of the client's session and returns the report page.
func answer(ctx context.Context, t *testing.T, client *e2etest.Client, text string) *goquery.Document {
	t.Helper()
	doc, err := client.SubmitForm(ctx, "/report", "/report/answer", url.Values{"answer": {text}})
	require.NoError(t, err)
	return doc
}
