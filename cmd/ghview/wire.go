package main

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/custodia-labs/ghview/internal/adapters/driven/config/file"
	oauthx "github.com/custodia-labs/ghview/internal/adapters/driven/oauth"
	"github.com/custodia-labs/ghview/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/ghview/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/ghview/internal/adapters/driving/cli"
	"github.com/custodia-labs/ghview/internal/adapters/driving/oauth"
	"github.com/custodia-labs/ghview/internal/connectors/github"
	"github.com/custodia-labs/ghview/internal/core/domain"
	"github.com/custodia-labs/ghview/internal/core/ports/driven"
	"github.com/custodia-labs/ghview/internal/core/ports/driving"
	"github.com/custodia-labs/ghview/internal/core/services"
	"github.com/custodia-labs/ghview/internal/logger"
)

// bootstrap builds the services for one command run. Closers run in
// reverse order of construction.
func bootstrap(opts cli.Options) (svc *cli.Services, cleanup func(), err error) {
	var closers []func()
	cleanup = func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}
	defer func() {
		if err != nil {
			cleanup()
		}
	}()

	var configStore driven.ConfigStore
	var fileStore *file.ConfigStore
	if opts.Ephemeral {
		configStore = memory.NewConfigStore()
	} else {
		fileStore, err = file.NewConfigStore(opts.ConfigDir)
		if err != nil {
			return nil, nil, fmt.Errorf("opening config: %w", err)
		}
		configStore = fileStore
	}
	settingsService := services.NewSettingsService(configStore)
	settings := settingsService.Get()

	credentials, closeCredentials, err := openCredentialStore(opts, settings)
	if err != nil {
		return nil, nil, err
	}
	closers = append(closers, closeCredentials)

	ctx := context.Background()
	tokens, err := services.NewTokenStore(ctx, credentials)
	if err != nil {
		return nil, nil, fmt.Errorf("loading token: %w", err)
	}

	client, err := github.NewClient(github.ConfigFromSettings(settings, tokens))
	if err != nil {
		return nil, nil, fmt.Errorf("creating github client: %w", err)
	}
	syncState := services.NewSyncState(github.NewRepository(client), tokens)
	closers = append(closers, syncState.Close)

	exchanger, err := newExchanger(settings)
	if err != nil {
		return nil, nil, err
	}
	authFlow := services.NewAuthFlow(tokens, exchanger)
	closers = append(closers, authFlow.Close)

	svc = &cli.Services{
		Sync:     syncState,
		Auth:     authFlow,
		Tokens:   tokens,
		Settings: settingsService,
		NewSearch: func(window time.Duration, action func(context.Context, string)) driving.SearchCoordinator {
			return services.NewFetchCoordinator(window, action)
		},
	}
	if fileStore != nil {
		svc.WatchConfig = fileStore.Watch
	}

	logger.Debug("bootstrap: ephemeral=%t oauth=%s", opts.Ephemeral, settings.OAuthMode)
	return svc, cleanup, nil
}

// openCredentialStore returns the store that persists the access token.
func openCredentialStore(opts cli.Options, settings domain.Settings) (driven.CredentialStore, func(), error) {
	if opts.Ephemeral {
		return memory.NewCredentialStore(), func() {}, nil
	}

	dataDir := settings.DataDir
	if dataDir == "" && opts.ConfigDir != "" {
		dataDir = filepath.Join(opts.ConfigDir, "data")
	}
	store, err := sqlite.NewStore(dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening credential store: %w", err)
	}
	return store.CredentialStore(), func() {
		if err := store.Close(); err != nil {
			logger.Warn("closing credential store: %v", err)
		}
	}, nil
}

// newExchanger selects the code exchanger for the configured OAuth mode.
func newExchanger(settings domain.Settings) (driven.TokenExchanger, error) {
	redirectURI := fmt.Sprintf("http://127.0.0.1:%d%s", settings.CallbackPort, oauth.CallbackPath)

	switch settings.OAuthMode {
	case domain.OAuthModeDirect:
		exchanger, err := oauthx.NewDirectExchanger(oauthx.DirectConfig{
			ClientID:     settings.ClientID,
			ClientSecret: settings.ClientSecret,
			RedirectURI:  redirectURI,
			Timeout:      settings.Timeout,
		})
		if err != nil {
			return nil, fmt.Errorf("creating direct exchanger: %w", err)
		}
		return exchanger, nil
	default:
		exchanger, err := oauthx.NewProxyExchanger(settings.ProxyURL, redirectURI, settings.Timeout)
		if err != nil {
			return nil, fmt.Errorf("creating proxy exchanger: %w", err)
		}
		return exchanger, nil
	}
}
