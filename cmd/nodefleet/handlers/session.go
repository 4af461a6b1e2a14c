// Package handlers implements the business logic for CLI commands.
//
// Each handler loads a cluster configuration, builds the provider client
// for it and drives one orchestration.Reconciler operation. The factory
// variables below can be replaced in tests.
package handlers

import (
	"errors"
	"fmt"
	"os"

	"github.com/go-logr/logr"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/imamik/nodefleet/internal/config"
	"github.com/imamik/nodefleet/internal/logging"
	"github.com/imamik/nodefleet/internal/metrics"
	"github.com/imamik/nodefleet/internal/orchestration"
	"github.com/imamik/nodefleet/internal/platform/hcloud"
	"github.com/imamik/nodefleet/internal/platform/openstack"
	"github.com/imamik/nodefleet/internal/provider"
	"github.com/imamik/nodefleet/internal/provider/fake"
	"github.com/imamik/nodefleet/internal/util/poll"
)

// Globals carries the root command's flags.
type Globals struct {
	LogLevel    string
	LogFormat   string
	LogSource   bool
	MetricsFile string
}

// ClientFactory builds the provider client for a cluster configuration.
type ClientFactory func(cfg *config.Config, reg prometheus.Registerer) (provider.Client, error)

// Factory function variables - can be replaced in tests.
var (
	loadConfig       = config.LoadFile
	loadPollSettings = config.LoadPollSettings
	newLogger        = logging.New

	// sleep is passed to the reconciler; nil selects the real timer.
	sleep poll.SleepFunc

	clientFactories = map[string]ClientFactory{
		config.ProviderHCloud:    newHCloudClient,
		config.ProviderOpenStack: newOpenStackClient,
		config.ProviderFake:      newFakeClient,
	}
)

func newHCloudClient(_ *config.Config, reg prometheus.Registerer) (provider.Client, error) {
	token := os.Getenv("HCLOUD_TOKEN")
	if token == "" {
		return nil, errors.New("HCLOUD_TOKEN environment variable is not set")
	}
	return hcloud.NewRealClient(token, hcloud.WithRegistry(reg)), nil
}

func newOpenStackClient(cfg *config.Config, _ prometheus.Registerer) (provider.Client, error) {
	return openstack.NewFromEnv(cfg.Region)
}

func newFakeClient(_ *config.Config, _ prometheus.Registerer) (provider.Client, error) {
	return fake.New(), nil
}

// session is the state shared by one command invocation.
type session struct {
	globals  Globals
	log      logr.Logger
	recorder *metrics.Recorder
	settings *config.PollSettings
}

func newSession(g Globals) (*session, error) {
	log, err := newLogger(logging.Options{
		Level:  g.LogLevel,
		Format: g.LogFormat,
		Source: g.LogSource,
	})
	if err != nil {
		return nil, err
	}
	return &session{
		globals:  g,
		log:      log,
		recorder: metrics.NewRecorder(),
		settings: loadPollSettings(),
	}, nil
}

// load reads a cluster configuration and builds its reconciler.
func (s *session) load(configPath string) (*config.Config, *orchestration.Reconciler, error) {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return nil, nil, err
	}

	factory, ok := clientFactories[cfg.Provider]
	if !ok {
		return nil, nil, fmt.Errorf("provider %q is not supported", cfg.Provider)
	}
	client, err := factory(cfg, s.recorder.Registry())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create %s client: %w", cfg.Provider, err)
	}

	r := orchestration.NewReconciler(client,
		orchestration.WithLogger(s.log.WithValues("cluster", cfg.Name)),
		orchestration.WithPollSettings(s.settings),
		orchestration.WithSleep(sleep),
		orchestration.WithRecorder(s.recorder),
	)
	return cfg, r, nil
}

// finish writes the metrics textfile if one was requested. A write failure
// is logged and never masks the command's own error.
func (s *session) finish() {
	if s.globals.MetricsFile == "" {
		return
	}
	if err := s.recorder.WriteTextfile(s.globals.MetricsFile); err != nil {
		s.log.Error(err, "Failed to write metrics", "path", s.globals.MetricsFile)
	}
}
