package location

import (
	"context"
	"encoding/json"
	"github.com/myrjola/crimewatch/internal/errors"
	"golang.org/x/time/rate"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"
)

const (
	DefaultNominatimURL = "https://nominatim.openstreetmap.org"
	userAgent           = "crimewatch/1.0 (+https://github.com/myrjola/crimewatch)"
	requestTimeout      = 5 * time.Second
	maxResponseSize     = 1 << 20
)

var ErrGeocodingFailed = errors.NewSentinel("geocoding failed")

// Nominatim is a reverse geocoding client for the OpenStreetMap Nominatim API.
//
// The public instance allows an absolute maximum of one request per second, see
// https://operations.osmfoundation.org/policies/nominatim/.
type Nominatim struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
}

func NewNominatim(baseURL string) *Nominatim {
	if baseURL == "" {
		baseURL = DefaultNominatimURL
	}
	return &Nominatim{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: requestTimeout}, //nolint:exhaustruct // defaults are fine.
		limiter:    rate.NewLimiter(rate.Every(time.Second), 1),
	}
}

type reverseResponse struct {
	DisplayName string `json:"display_name"`
}

// Reverse returns the display name of the place at the coordinates. The name is empty when Nominatim knows none.
func (n *Nominatim) Reverse(ctx context.Context, lat float64, lon float64) (string, error) {
	if err := n.limiter.Wait(ctx); err != nil {
		return "", errors.Wrap(err, "wait for rate limiter")
	}

	q := url.Values{}
	q.Set("lat", strconv.FormatFloat(lat, 'f', -1, 64))
	q.Set("lon", strconv.FormatFloat(lon, 'f', -1, 64))
	q.Set("format", "json")
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, n.baseURL+"/reverse?"+q.Encode(), nil)
	if err != nil {
		return "", errors.Wrap(err, "new request")
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	var resp *http.Response
	if resp, err = n.httpClient.Do(req); err != nil {
		return "", errors.Wrap(err, "do request")
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode != http.StatusOK {
		return "", errors.Wrap(ErrGeocodingFailed, "unexpected status code", slog.Int("code", resp.StatusCode))
	}

	var body reverseResponse
	if err = json.NewDecoder(io.LimitReader(resp.Body, maxResponseSize)).Decode(&body); err != nil {
		return "", errors.Wrap(err, "decode response")
	}
	return strings.TrimSpace(body.DisplayName), nil
}
