package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/tripmate/tripmate-go/internal/itinerary"
	"github.com/tripmate/tripmate-go/internal/localcache"
	"github.com/tripmate/tripmate-go/internal/model"
	"github.com/tripmate/tripmate-go/internal/roomclient"
)

// Config represents the planctl configuration loaded from a TOML file.
type Config struct {
	Server ServerConfig `toml:"server"`
	Cache  CacheConfig  `toml:"cache"`
}

// ServerConfig points at the tripmate API and room endpoints.
type ServerConfig struct {
	APIURL string `toml:"api_url"`
	WSURL  string `toml:"ws_url"`
	Token  string `toml:"token"`
}

// CacheConfig contains the local snapshot database settings.
type CacheConfig struct {
	Path string `toml:"path"`
}

// DefaultConfig returns a Config with local-development defaults.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			APIURL: "http://localhost:8080",
			WSURL:  "ws://localhost:8080",
		},
		Cache: CacheConfig{Path: "planctl.db"},
	}
}

// LoadConfig reads and parses a TOML configuration file. A missing file is
// not an error; defaults apply.
func LoadConfig(path string) (*Config, error) {
	config := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return config, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := toml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return config, nil
}

// Runner holds the shared state for planctl commands.
type Runner struct {
	cfg    *Config
	logger *log.Logger
}

// NewRunner creates a Runner with the config at path.
func NewRunner(path string) (*Runner, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		return nil, err
	}
	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	return &Runner{cfg: cfg, logger: logger}, nil
}

// slogger adapts the CLI logger for the room client library.
func (r *Runner) slogger() *slog.Logger {
	return slog.New(r.logger)
}

func (r *Runner) writePlainln(format string, args ...any) {
	fmt.Fprintf(os.Stdout, format+"\n", args...)
}

// fetchTrip reads trip metadata from the REST collaborator.
func (r *Runner) fetchTrip(ctx context.Context, tripID int64) (model.TripResponse, error) {
	url := fmt.Sprintf("%s/api/v1/trips/%d", r.cfg.Server.APIURL, tripID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return model.TripResponse{}, err
	}
	if r.cfg.Server.Token != "" {
		req.Header.Set("Authorization", "Bearer "+r.cfg.Server.Token)
	}

	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return model.TripResponse{}, fmt.Errorf("fetch trip %d: %w", tripID, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		return model.TripResponse{}, fmt.Errorf("fetch trip %d: %s (%s)", tripID, resp.Status, body["error"])
	}

	var trip model.TripResponse
	if err := json.NewDecoder(resp.Body).Decode(&trip); err != nil {
		return model.TripResponse{}, fmt.Errorf("decode trip %d: %w", tripID, err)
	}
	return trip, nil
}

// openCache opens the local snapshot database.
func (r *Runner) openCache() (*localcache.Cache, error) {
	return localcache.Open(r.cfg.Cache.Path)
}

// joinItinerary connects the room synchronizer for one trip.
func (r *Runner) joinItinerary(ctx context.Context, tripID int64, store *itinerary.Store) (*roomclient.Synchronizer, error) {
	sync := roomclient.NewSynchronizer(
		r.cfg.Server.WSURL+"/ws/detail-trip",
		r.cfg.Server.Token,
		tripID,
		store,
		nil,
		r.slogger(),
	)
	if err := sync.Join(ctx); err != nil {
		return nil, err
	}
	return sync, nil
}

// joinExpenses connects the expense room client for one trip.
func (r *Runner) joinExpenses(ctx context.Context, tripID int64) (*roomclient.ExpenseClient, error) {
	client := roomclient.NewExpenseClient(
		r.cfg.Server.WSURL+"/ws/expenses",
		r.cfg.Server.Token,
		tripID,
		nil,
		r.slogger(),
	)
	if err := client.Join(ctx); err != nil {
		return nil, err
	}
	return client, nil
}

func (r *Runner) printWaypoints(seq []model.Waypoint) {
	if len(seq) == 0 {
		r.writePlainln("no waypoints")
		return
	}
	for i, wp := range seq {
		r.writePlainln("%d. %s (%s) — %s [%s]", i+1, wp.PlaceName, wp.PlaceLocation, wp.TripTime, wp.ID)
	}
}
