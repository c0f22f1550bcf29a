package main

import (
	"context"
	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
	"github.com/donseba/go-htmx"
	"github.com/gorilla/schema"
	"github.com/joho/godotenv"
	"github.com/myrjola/crimewatch/internal/ai"
	"github.com/myrjola/crimewatch/internal/backend"
	"github.com/myrjola/crimewatch/internal/dashboard"
	"github.com/myrjola/crimewatch/internal/envstruct"
	"github.com/myrjola/crimewatch/internal/errors"
	"github.com/myrjola/crimewatch/internal/location"
	"github.com/myrjola/crimewatch/internal/logging"
	"github.com/myrjola/crimewatch/internal/metrics"
	"github.com/myrjola/crimewatch/internal/pprofserver"
	"github.com/myrjola/crimewatch/internal/repositories"
	"github.com/myrjola/crimewatch/internal/sqlite"
	"github.com/myrjola/crimewatch/internal/submission"
	"github.com/myrjola/crimewatch/internal/tracker"
	"github.com/myrjola/crimewatch/internal/wizard"
	"io/fs"
	"log/slog"
	"os"
	"strings"
	"time"
)

type application struct {
	logger          *slog.Logger
	sessionManager  *scs.SessionManager
	wizards         *repositories.WizardRepository
	engine          *wizard.Engine
	tracker         *tracker.Tracker
	board           *dashboard.Board
	metrics         *metrics.Metrics
	htmx            *htmx.HTMX
	formDecoder     *schema.Decoder
	admin           adminCredentials
	// evidenceBaseURL is where the backend serves uploaded evidence by stored filename.
	evidenceBaseURL string
}

type config struct {
	// Addr is the address to listen on. It's possible to choose the address dynamically with localhost:0.
	Addr string `env:"CRIMEWATCH_ADDR" envDefault:"localhost:4000"`
	// SqliteURL is the URL to the SQLite database. You can use ":memory:" for an ethereal in-memory database.
	SqliteURL string `env:"CRIMEWATCH_SQLITE_URL" envDefault:"./crimewatch.sqlite3"`
	// BackendURL is the base URL of the report REST backend.
	BackendURL    string `env:"CRIMEWATCH_BACKEND_URL" envDefault:"http://localhost:5000"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY" envDefault:""`
	OpenAIBaseURL string `env:"CRIMEWATCH_OPENAI_BASE_URL" envDefault:""`
	OpenAIModel   string `env:"CRIMEWATCH_OPENAI_MODEL" envDefault:""`
	NominatimURL  string `env:"CRIMEWATCH_NOMINATIM_URL" envDefault:""`
	AdminUser     string `env:"CRIMEWATCH_ADMIN_USER" envDefault:"admin"`
	// AdminPasswordHash is a bcrypt hash. The dashboard stays locked when it is empty.
	AdminPasswordHash string `env:"CRIMEWATCH_ADMIN_PASSWORD_HASH" envDefault:""`
	// PprofAddr launches the pprof server when set, e.g. localhost:6060.
	PprofAddr string `env:"CRIMEWATCH_PPROF_ADDR" envDefault:""`
	// WizardMaxAge is how long an untouched wizard is kept.
	WizardMaxAge time.Duration `env:"CRIMEWATCH_WIZARD_MAX_AGE" envDefault:"24h"`
}

const sessionLifetime = 12 * time.Hour

func run(ctx context.Context, logger *slog.Logger, lookupEnv func(string) (string, bool)) error {
	var (
		err error
		cfg config
		db  *sqlite.Database
	)

	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}

	if cfg.PprofAddr != "" {
		pprofserver.Launch(ctx, cfg.PprofAddr, logger)
	}

	if db, err = sqlite.NewDatabase(ctx, cfg.SqliteURL, logger); err != nil {
		return errors.Wrap(err, "open db", slog.String("url", cfg.SqliteURL))
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.LogAttrs(ctx, slog.LevelError, "close db", errors.SlogError(closeErr))
		}
	}()

	sessionStore := sqlite3store.NewWithCleanupInterval(db.ReadWrite.DB, 24*time.Hour) //nolint:mnd // daily
	defer sessionStore.StopCleanup()
	sessionManager := scs.New()
	sessionManager.Store = sessionStore
	sessionManager.Lifetime = sessionLifetime
	sessionManager.Cookie.Secure = true

	backendClient := backend.NewClient(cfg.BackendURL, logger)
	resolver := location.NewResolver(location.NewNominatim(cfg.NominatimURL), logger)
	classifier := ai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel, logger)
	gateway := submission.NewGateway(backendClient, logger)

	formDecoder := schema.NewDecoder()
	formDecoder.IgnoreUnknownKeys(true)

	app := application{
		logger:          logger,
		sessionManager:  sessionManager,
		wizards:         repositories.NewWizardRepository(db, logger),
		engine:          wizard.NewEngine(classifier, resolver, gateway, logger),
		tracker:         tracker.New(backendClient, logger),
		board:           dashboard.NewBoard(backendClient, logger),
		metrics:         metrics.New(),
		htmx:            htmx.New(),
		formDecoder:     formDecoder,
		admin:           adminCredentials{user: cfg.AdminUser, passwordHash: []byte(cfg.AdminPasswordHash)},
		evidenceBaseURL: strings.TrimSuffix(cfg.BackendURL, "/") + "/uploads/",
	}

	stopJobs, err := app.scheduleJobs(ctx, db, cfg.WizardMaxAge)
	if err != nil {
		return errors.Wrap(err, "schedule jobs")
	}
	defer stopJobs()

	if err = app.configureAndStartServer(ctx, cfg.Addr); err != nil {
		return errors.Wrap(err, "start server")
	}
	return nil
}

func main() {
	ctx := context.Background()
	logger := logging.NewLogger(os.Stdout, slog.LevelDebug, nil)
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		logger.LogAttrs(ctx, slog.LevelError, "failure loading .env", errors.SlogError(err))
		os.Exit(1)
	}
	if err := run(ctx, logger, os.LookupEnv); err != nil {
		logger.LogAttrs(ctx, slog.LevelError, "failure starting application", errors.SlogError(err))
		os.Exit(1)
	}
}

