package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/scx/internal/repositories"
	"github.com/desertthunder/scx/internal/services"
	"github.com/desertthunder/scx/internal/shared"
	"github.com/desertthunder/scx/internal/soundcloud"
	"github.com/urfave/cli/v3"
)

// Runner holds all dependencies for CLI commands and provides methods for each command action.
//
// The database, client and service are opened lazily by [Runner.connect] unless injected.
type Runner struct {
	config     *shared.Config
	configPath string
	db         *sql.DB
	client     *soundcloud.Client
	service    services.Service
	store      *repositories.TokenStore
	requests   *repositories.RequestLogRepository
	httpClient *http.Client
	logger     *log.Logger
	logFile    io.Closer
	output     io.Writer
}

// RunnerOpts contains configuration options for creating a Runner.
type RunnerOpts struct {
	Config     *shared.Config
	ConfigPath string
	DB         *sql.DB
	Client     *soundcloud.Client
	Service    services.Service
	HTTPClient *http.Client
	Logger     *log.Logger
	Output     io.Writer
}

// NewRunner creates a new Runner with the provided configuration
func NewRunner(opts RunnerOpts) *Runner {
	if opts.Config == nil {
		opts.Config = shared.DefaultConfig()
	}
	if opts.Logger == nil {
		opts.Logger = shared.NewLogger(nil)
	}
	if opts.Output == nil {
		opts.Output = os.Stdout
	}
	if opts.HTTPClient == nil {
		opts.HTTPClient = http.DefaultClient
	}

	r := &Runner{
		config:     opts.Config,
		configPath: opts.ConfigPath,
		client:     opts.Client,
		service:    opts.Service,
		httpClient: opts.HTTPClient,
		logger:     opts.Logger,
		output:     opts.Output,
	}
	if opts.DB != nil {
		r.useDatabase(opts.DB)
	}
	if r.service == nil && r.client != nil {
		r.service = services.NewSoundCloudService(r.client, services.DefaultPageSize)
	}
	return r
}

func (r *Runner) register() []*cli.Command {
	commands := []*cli.Command{}
	for _, fn := range [](func(*Runner) *cli.Command){
		setupCommand, authCommand, apiCommand, meCommand, playlistsCommand, exportCommand,
		importCommand, copyCommand, diffCommand, searchCommand, historyCommand, tuiCommand,
	} {
		commands = append(commands, fn(r))
	}

	return commands
}

// Before loads the config file named by --config and applies its log settings.
// A missing file is not an error; defaults are used until `scx setup` creates one.
func (r *Runner) Before(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	r.configPath = cmd.String("config")

	if _, err := os.Stat(r.configPath); err == nil {
		config, err := shared.LoadConfig(r.configPath)
		if err != nil {
			return ctx, err
		}
		r.config = config
	} else {
		r.logger.Debug("config file not found, using defaults", "path", r.configPath)
	}

	level, err := shared.ParseLogLevel(r.config.Log.Level)
	if err != nil {
		return ctx, err
	}
	if cmd.Bool("verbose") {
		level = log.DebugLevel
	}

	if r.config.Log.File != "" {
		logger, f, err := shared.NewFileLogger(r.config.Log.File)
		if err != nil {
			return ctx, err
		}
		r.SetLogger(logger)
		r.logFile = f
	}
	shared.SetLogLevel(r.logger, level)
	return ctx, nil
}

// After releases the database and log file.
func (r *Runner) After(ctx context.Context, cmd *cli.Command) error {
	var errs []error
	if r.db != nil {
		errs = append(errs, r.db.Close())
		r.db = nil
	}
	if r.logFile != nil {
		errs = append(errs, r.logFile.Close())
		r.logFile = nil
	}
	return errors.Join(errs...)
}

// SetLogger replaces the logger used by the runner.
func (r *Runner) SetLogger(l *log.Logger) {
	if l != nil {
		r.logger = l
	}
}

func (r *Runner) useDatabase(db *sql.DB) {
	r.db = db
	r.requests = repositories.NewRequestLogRepository(db)
	r.store = repositories.NewTokenStore(repositories.NewCredentialRepository(db), r.logger)
}

// openDatabase opens and migrates the configured database once.
func (r *Runner) openDatabase() error {
	if r.db != nil {
		return nil
	}
	db, err := shared.OpenDatabase(r.config.Database)
	if err != nil {
		return err
	}
	r.useDatabase(db)
	return nil
}

// connect builds the SoundCloud client from the config file and any stored token.
// New tokens are persisted through the exchange hook.
func (r *Runner) connect(ctx context.Context) error {
	if r.client != nil {
		return nil
	}
	if err := r.openDatabase(); err != nil {
		return err
	}

	sc := r.config.SoundCloud
	opts, err := r.store.Restore(sc.Site, sc.ClientID, soundcloud.FileOptions(sc))
	if err != nil {
		return fmt.Errorf("failed to load stored credentials: %w", err)
	}
	opts.OnExchangeToken = r.store.Hook()

	client, err := soundcloud.New(ctx, opts,
		soundcloud.WithHTTPClient(r.httpClient),
		soundcloud.WithLogger(shared.WithLogger(r.logger, "component", "soundcloud")),
	)
	if err != nil {
		return err
	}

	r.client = client
	if r.service == nil {
		r.service = services.NewSoundCloudService(client, services.DefaultPageSize)
	}
	return nil
}

// connectService returns the playlist service, connecting when needed.
func (r *Runner) connectService(ctx context.Context) (services.Service, error) {
	if r.service != nil {
		return r.service, nil
	}
	if err := r.connect(ctx); err != nil {
		return nil, err
	}
	return r.service, nil
}

func (r *Runner) writeJSON(data any, pretty bool) error {
	var output []byte
	var err error

	if pretty {
		output, err = json.MarshalIndent(data, "", "  ")
	} else {
		output, err = json.Marshal(data)
	}

	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}

	if _, err := r.output.Write(append(output, '\n')); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}

	return nil
}

func (r *Runner) writePlain(format string, args ...any) error {
	text := fmt.Sprintf(format, args...)
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainln(format string, args ...any) error {
	text := "\n" + fmt.Sprintf(format, args...) + "\n"
	if _, err := r.output.Write([]byte(text)); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func (r *Runner) writePlainHeader(title string) {
	r.writePlain("═══════════════════════════════════════\n")
	r.writePlain("%v\n", title)
	r.writePlain("═══════════════════════════════════════\n")
}
