// Package app wires the client together: configuration, session, the API
// client, domain services, the read cache and the offline snapshot store.
// Commands and the TUI talk to an App instead of assembling the pieces
// themselves.
package app

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"straycare/internal/api"
	"straycare/internal/config"
	"straycare/internal/geocode"
	"straycare/internal/notify"
	"straycare/internal/offline"
	"straycare/internal/querycache"
	"straycare/internal/services"
	"straycare/internal/session"
)

// App is the assembled client.
type App struct {
	Config  *config.Config
	Log     *zap.Logger
	Notify  notify.Notifier
	Session *session.Store

	API       *api.Client
	Auth      *services.Auth
	Animals   *services.Animals
	Care      *services.Care
	Community *services.Community

	Cache    *querycache.Cache
	Offline  *offline.Store
	Geocoder *geocode.Client
}

// Options carries the optional pieces of New.
type Options struct {
	// DataDir overrides the default ~/.straycare state directory.
	DataDir string
	// NoOffline skips opening the snapshot database.
	NoOffline bool
	// APIOptions is appended to the API client's options, for tests.
	APIOptions []api.Option
}

// New assembles a client from configuration. The offline store is best
// effort: failure to open it is logged and leaves Offline nil.
func New(cfg *config.Config, log *zap.Logger, notifier notify.Notifier, opts Options) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration: %w", err)
	}
	dir := opts.DataDir
	if dir == "" {
		var err error
		dir, err = config.DefaultDir()
		if err != nil {
			return nil, fmt.Errorf("resolve state directory: %w", err)
		}
	}

	sess := session.NewStore(filepath.Join(dir, "session.json"), log)
	if err := sess.Load(); err != nil {
		// A corrupt session file is not fatal, the user just logs in again.
		log.Warn("could not load saved session", zap.Error(err))
	}

	apiOpts := []api.Option{
		api.WithTokenSource(sess),
		api.WithNotifier(notifier),
		api.WithLogger(log),
		api.WithTimeout(cfg.APITimeout()),
	}
	apiOpts = append(apiOpts, opts.APIOptions...)
	client := api.New(cfg.API.BaseURL, apiOpts...)

	auth := services.NewAuth(client)
	sess.SetAuthClient(auth)

	a := &App{
		Config:    cfg,
		Log:       log,
		Notify:    notifier,
		Session:   sess,
		API:       client,
		Auth:      auth,
		Animals:   services.NewAnimals(client, log),
		Care:      services.NewCare(client),
		Community: services.NewCommunity(client),
		Cache:     querycache.New(querycache.WithLogger(log)),
		Geocoder: geocode.New(cfg.Maps.APIKey,
			geocode.WithLogger(log),
			geocode.WithHTTPClient(&http.Client{Timeout: cfg.GeocodeTimeout()})),
	}

	if !opts.NoOffline {
		store, err := openOffline(dir)
		if err != nil {
			log.Warn("offline snapshots unavailable", zap.Error(err))
		} else {
			a.Offline = store
		}
	}
	return a, nil
}

// snapshotRetention bounds how long offline snapshots are kept.
const snapshotRetention = 30 * 24 * time.Hour

func openOffline(dir string) (*offline.Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	store, err := offline.Open(filepath.Join(dir, "offline.db"))
	if err != nil {
		return nil, err
	}
	// Old snapshots are only misleading; drop them on startup.
	if _, err := store.Prune(snapshotRetention); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// Close releases the app's resources.
func (a *App) Close() error {
	if a.Offline != nil {
		return a.Offline.Close()
	}
	return nil
}
