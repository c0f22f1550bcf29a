// Package backend is the client of the report REST backend.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"github.com/myrjola/crimewatch/internal/errors"
	"github.com/myrjola/crimewatch/internal/models"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"
	"time"
)

var (
	ErrReportNotFound = errors.NewSentinel("report not found")
	ErrUnexpectedCode = errors.NewSentinel("unexpected status code")
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 10 << 20
)

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient returns a client for the backend at baseURL, e.g. http://localhost:5000.
func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout}, //nolint:exhaustruct // defaults are fine.
		logger:     logger.With(slog.String("source", "backend")),
	}
}

// ListReports fetches all reports.
func (c *Client) ListReports(ctx context.Context) ([]models.Report, error) {
	var reports []models.Report
	if err := c.doJSON(ctx, http.MethodGet, "/reports", nil, &reports); err != nil {
		return nil, errors.Wrap(err, "list reports")
	}
	return reports, nil
}

// GetReport fetches the report with the given tracking id. Returns ErrReportNotFound if there is none.
func (c *Client) GetReport(ctx context.Context, trackingID string) (models.Report, error) {
	var report models.Report
	if err := c.doJSON(ctx, http.MethodGet, "/report/"+url.PathEscape(trackingID), nil, &report); err != nil {
		return models.Report{}, errors.Wrap(err, "get report", slog.String("tracking_id", trackingID))
	}
	return report, nil
}

// NewReport is the payload of CreateReport.
type NewReport struct {
	TrackingID string
	Status     models.Status
	Draft      models.Draft
}

// CreateReport posts the report as a multipart form. The evidence, if any, is sent in the "file" part.
func (c *Client) CreateReport(ctx context.Context, report NewReport) (models.Report, error) {
	var (
		body bytes.Buffer
		err  error
	)
	w := multipart.NewWriter(&body)
	d := report.Draft
	hasProof := "No"
	if d.HasProof {
		hasProof = "Yes"
	}
	fields := [][2]string{
		{"name", d.Name},
		{"age", strconv.Itoa(d.Age)},
		{"mobile", d.Mobile},
		{"residence", d.Residence},
		{"crime", d.Crime},
		{"hasProof", hasProof},
		{"traits", d.Traits},
		{"locationType", string(d.LocationType)},
		{"location", d.Location},
		{"uniqueId", report.TrackingID},
		{"status", string(report.Status)},
	}
	for _, f := range fields {
		if err = w.WriteField(f[0], f[1]); err != nil {
			return models.Report{}, errors.Wrap(err, "write field", slog.String("field", f[0]))
		}
	}
	if d.Proof != nil {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename=%q`, d.Proof.Filename))
		contentType := d.Proof.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		h.Set("Content-Type", contentType)
		var part io.Writer
		if part, err = w.CreatePart(h); err != nil {
			return models.Report{}, errors.Wrap(err, "create file part")
		}
		if _, err = part.Write(d.Proof.Data); err != nil {
			return models.Report{}, errors.Wrap(err, "write file part")
		}
	}
	if err = w.Close(); err != nil {
		return models.Report{}, errors.Wrap(err, "close multipart writer")
	}

	var created models.Report
	if err = c.do(ctx, http.MethodPost, "/register", w.FormDataContentType(), &body, &created); err != nil {
		return models.Report{}, errors.Wrap(err, "create report", slog.String("tracking_id", report.TrackingID))
	}
	return created, nil
}

// UpdateStatus sets the status of the report with the backend id.
func (c *Client) UpdateStatus(ctx context.Context, id string, status models.Status) (models.Report, error) {
	payload, err := json.Marshal(struct {
		Status models.Status `json:"status"`
	}{Status: status})
	if err != nil {
		return models.Report{}, errors.Wrap(err, "marshal status")
	}
	var updated models.Report
	path := "/reports/" + url.PathEscape(id) + "/status"
	if err = c.doJSON(ctx, http.MethodPut, path, payload, &updated); err != nil {
		return models.Report{}, errors.Wrap(err, "update status",
			slog.String("id", id), slog.String("status", string(status)))
	}
	return updated, nil
}

func (c *Client) doJSON(ctx context.Context, method string, path string, payload []byte, v any) error {
	var (
		body        io.Reader
		contentType string
	)
	if payload != nil {
		body = bytes.NewReader(payload)
		contentType = "application/json"
	}
	return c.do(ctx, method, path, contentType, body, v)
}

func (c *Client) do(ctx context.Context, method string, path string, contentType string, body io.Reader, v any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return errors.Wrap(err, "new request")
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	var resp *http.Response
	if resp, err = c.httpClient.Do(req); err != nil {
		return errors.Wrap(err, "do request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	c.logger.LogAttrs(ctx, slog.LevelDebug, "backend request",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("code", resp.StatusCode),
		slog.Duration("duration", time.Since(start)))

	if resp.StatusCode == http.StatusNotFound {
		return ErrReportNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.Wrap(ErrUnexpectedCode, "backend responded with error", slog.Int("code", resp.StatusCode))
	}
	if v == nil {
		return nil
	}
	if err = json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(v); err != nil && !errors.Is(err, io.EOF) {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
