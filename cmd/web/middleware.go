package main

import (
	"crypto/subtle"
	"fmt"
	"github.com/justinas/nosurf"
	"github.com/myrjola/crimewatch/internal/contexthelpers"
	"github.com/myrjola/crimewatch/internal/errors"
	"github.com/myrjola/crimewatch/internal/logging"
	"github.com/myrjola/crimewatch/internal/random"
	"github.com/myrjola/crimewatch/internal/wizard"
	"golang.org/x/crypto/bcrypt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"
)

const cspNonceLength = 24

func secureHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nonce, err := random.Letters(cspNonceLength)
		if err != nil {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		r = contexthelpers.SetCSPNonce(r, nonce)

		w.Header().Set("Content-Security-Policy",
			fmt.Sprintf(`script-src 'nonce-%s' 'strict-dynamic' https: http:;
				   object-src 'none';
				   base-uri 'none';`, nonce))

		w.Header().Set("Referrer-Policy", "origin-when-cross-origin")
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "deny")
		w.Header().Set("X-XSS-Protection", "0")
		w.Header().Set("Permissions-Policy", "geolocation=(self)")

		next.ServeHTTP(w, r)
	})
}

func cacheForeverHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cache-Control", "public, max-age=31536000, immutable")

		next.ServeHTTP(w, r)
	})
}

// maxDrainedBody is how much of a refused upload is read off the connection so that the client sees the response.
const maxDrainedBody = 64 << 20

// limitEvidence refuses evidence uploads whose body is larger than n before nosurf parses them. The refusal is the
// attachment size toast, delivered the way a full page wizard response is. Bodies of unknown length are capped.
//
// It has to run after the session and htmx middleware.
func (app *application) limitEvidence(n int64) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.ContentLength <= n {
				r.Body = http.MaxBytesReader(w, r.Body, n)
				next.ServeHTTP(w, r)
				return
			}

			ctx := r.Context()
			app.logger.LogAttrs(ctx, slog.LevelInfo, "evidence upload too large",
				slog.Int64("content_length", r.ContentLength))
			app.metrics.WizardOperations.WithLabelValues(operationEvidence, outcomeRejected).Inc()
			if r.ContentLength <= maxDrainedBody {
				_, _ = io.Copy(io.Discard, r.Body)
			} else {
				w.Header().Set("Connection", "close")
			}
			app.flash(r, wizard.OversizedToast())
			if app.isHxRequest(w, r) {
				app.htmx.NewHandler(w, r).Redirect("/report")
				w.WriteHeader(http.StatusOK)
				return
			}
			http.Redirect(w, r, "/report", http.StatusSeeOther)
		})
	}
}

func (app *application) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var (
			proto  = r.Proto
			method = r.Method
			uri    = r.URL.RequestURI()
		)

		ctx := logging.WithAttrs(r.Context(), slog.String("method", method), slog.String("uri", uri))
		app.logger.LogAttrs(ctx, slog.LevelDebug, "received request", slog.String("proto", proto))

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (app *application) recoverPanic(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				w.Header().Set("Connection", "close")
				app.serverError(w, r, errors.New("panic", slog.Any("recovered", err)))
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// statusRecorder remembers the status code written by the wrapped handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(status int) {
	s.status = status
	s.ResponseWriter.WriteHeader(status)
}

func (s *statusRecorder) Unwrap() http.ResponseWriter {
	return s.ResponseWriter
}

// instrument observes the request latency by route pattern. It must wrap the ServeMux directly since the mux
// stores the matched pattern in the request.
func (app *application) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		pattern := r.Pattern
		if pattern == "" {
			pattern = "unmatched"
		}
		app.metrics.RequestDuration.
			WithLabelValues(r.Method, pattern, strconv.Itoa(rec.status)).
			Observe(time.Since(start).Seconds())
	})
}

type adminCredentials struct {
	user         string
	passwordHash []byte
}

// requireAdmin guards the dashboard with HTTP basic auth against a bcrypt password hash.
func (app *application) requireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		user, password, ok := r.BasicAuth()
		if !ok || !app.admin.verify(user, password) {
			app.logger.LogAttrs(r.Context(), slog.LevelInfo, "admin authentication failed", slog.String("user", user))
			w.Header().Set("WWW-Authenticate", `Basic realm="CrimeWatch admin", charset="UTF-8"`)
			app.clientError(w, r, http.StatusUnauthorized)
			return
		}

		r = contexthelpers.AuthenticateAdmin(r, user)
		next.ServeHTTP(w, r)
	})
}

func (c adminCredentials) verify(user, password string) bool {
	if len(c.passwordHash) == 0 {
		return false
	}
	userMatch := subtle.ConstantTimeCompare([]byte(user), []byte(c.user)) == 1
	passwordMatch := bcrypt.CompareHashAndPassword(c.passwordHash, []byte(password)) == nil
	return userMatch && passwordMatch
}

func commonContext(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r = contexthelpers.SetCurrentPath(r, r.URL.Path)
		r = contexthelpers.SetCSRFToken(r, nosurf.Token(r))
		next.ServeHTTP(w, r)
	})
}

// noSurf implements CSRF protection using https://github.com/justinas/nosurf
func noSurf(next http.Handler) http.Handler {
	csrfHandler := nosurf.New(next)
	csrfHandler.SetBaseCookie(http.Cookie{ //nolint:exhaustruct // defaults are fine.
		HttpOnly: true,
		Path:     "/",
		Secure:   true,
	})

	return csrfHandler
}
