package e2etest

import (
	"bytes"
	"context"
	"fmt"
	"github.com/PuerkitoBio/goquery"
	"github.com/myrjola/crimewatch/internal/errors"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	neturl "net/url"
	"strings"
	"time"
)

type Client struct {
	client   *http.Client
	url      string
	user     string
	password string
	header   http.Header
}

// NewClient creates a cookie-aware HTTP client for the server at url.
func NewClient(url string) (*Client, error) {
	jar, err := newUnsafeCookieJar()
	if err != nil {
		return nil, errors.Wrap(err, "create unsafe cookie jar")
	}
	return &Client{
		client:   &http.Client{Jar: jar}, //nolint:exhaustruct // defaults are fine.
		url:      url,
		user:     "",
		password: "",
		header:   http.Header{},
	}, nil
}

// SetBasicAuth makes every following request carry the admin credentials.
func (c *Client) SetBasicAuth(user, password string) {
	c.user = user
	c.password = password
}

// SetHeader makes every following request carry the header, e.g. HX-Request for htmx requests.
func (c *Client) SetHeader(key, value string) {
	c.header.Set(key, value)
}

// WaitForReady calls the specified endpoint until it gets a HTTP 200 Success
// response or until the context is cancelled or the 1-second timeout is reached.
func (c *Client) WaitForReady(ctx context.Context, urlPath string) error {
	timeout := 1 * time.Second
	startTime := time.Now()
	for {
		resp, err := c.Get(ctx, urlPath)
		if err == nil {
			_ = resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return errors.Wrap(ctx.Err(), "context cancelled")
		default:
			if time.Since(startTime) >= timeout {
				return errors.New("timeout waiting for endpoint to be ready")
			}
			time.Sleep(100 * time.Millisecond) //nolint:mnd // 100ms
		}
	}
}

// Get fetches a URL and returns the response.
func (c *Client) Get(ctx context.Context, urlPath string) (*http.Response, error) {
	req, err := c.newRequestWithContext(ctx, http.MethodGet, urlPath, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request with context")
	}
	var resp *http.Response
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return resp, nil
}

// GetDoc fetches a URL and returns a goquery document.
func (c *Client) GetDoc(ctx context.Context, urlPath string) (*goquery.Document, error) {
	resp, err := c.Get(ctx, urlPath)
	if err != nil {
		return nil, errors.Wrap(err, "client get")
	}
	return readDoc(resp)
}

// SubmitForm fetches the page at formURLPath, fills the form posting to formActionURLPath with fields and the
// page's CSRF token, submits it and returns the resulting document.
func (c *Client) SubmitForm(
	ctx context.Context,
	formURLPath string,
	formActionURLPath string,
	fields neturl.Values,
) (*goquery.Document, error) {
	doc, err := c.GetDoc(ctx, formURLPath)
	if err != nil {
		return nil, errors.Wrap(err, "get document")
	}
	var csrfToken string
	if csrfToken, err = extractCSRFToken(doc, formActionURLPath); err != nil {
		return nil, errors.Wrap(err, "extract CSRF token")
	}

	formData := neturl.Values{}
	for k, vs := range fields {
		for _, v := range vs {
			formData.Add(k, v)
		}
	}
	formData.Set("csrf_token", csrfToken)

	var req *http.Request
	if req, err = c.newRequestWithContext(ctx, http.MethodPost, formActionURLPath,
		strings.NewReader(formData.Encode())); err != nil {
		return nil, errors.Wrap(err, "new request with context")
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	var resp *http.Response
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return readDoc(resp)
}

// UploadFile submits a multipart form with a single file part the way the evidence form does.
func (c *Client) UploadFile(
	ctx context.Context,
	formURLPath string,
	formActionURLPath string,
	fieldName string,
	filename string,
	data []byte,
) (*goquery.Document, error) {
	doc, err := c.GetDoc(ctx, formURLPath)
	if err != nil {
		return nil, errors.Wrap(err, "get document")
	}
	var csrfToken string
	if csrfToken, err = extractCSRFToken(doc, formActionURLPath); err != nil {
		return nil, errors.Wrap(err, "extract CSRF token")
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	if err = w.WriteField("csrf_token", csrfToken); err != nil {
		return nil, errors.Wrap(err, "write csrf field")
	}
	var part io.Writer
	if part, err = w.CreateFormFile(fieldName, filename); err != nil {
		return nil, errors.Wrap(err, "create form file")
	}
	if _, err = part.Write(data); err != nil {
		return nil, errors.Wrap(err, "write form file")
	}
	if err = w.Close(); err != nil {
		return nil, errors.Wrap(err, "close multipart writer")
	}

	var req *http.Request
	if req, err = c.newRequestWithContext(ctx, http.MethodPost, formActionURLPath, &body); err != nil {
		return nil, errors.Wrap(err, "new request with context")
	}
	req.Header.Set("Content-Type", w.FormDataContentType())
	var resp *http.Response
	if resp, err = c.client.Do(req); err != nil {
		return nil, errors.Wrap(err, "do request")
	}
	return readDoc(resp)
}

// newRequestWithContext creates a new HTTP request to the server that respects the given context.
func (c *Client) newRequestWithContext(
	ctx context.Context,
	method, urlPath string,
	body io.Reader,
) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.url+urlPath, body)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	for k, vs := range c.header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if c.user != "" {
		req.SetBasicAuth(c.user, c.password)
	}
	return req, nil
}

func readDoc(resp *http.Response) (*goquery.Document, error) {
	defer func() {
		_ = resp.Body.Close()
	}()
	if http.StatusOK != resp.StatusCode {
		return nil, errors.New("unexpected status code", slog.Int("status", resp.StatusCode))
	}
	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "create document from reader")
	}
	return doc, nil
}

func extractCSRFToken(doc *goquery.Document, formActionURLPath string) (string, error) {
	formSelector := fmt.Sprintf("form[action='%s']", formActionURLPath)
	csrfToken, ok := doc.Find(formSelector).Find("input[name=csrf_token]").Attr("value")
	if !ok {
		return "", errors.New("csrf_token not found in form", slog.String("action", formActionURLPath))
	}
	return csrfToken, nil
}
