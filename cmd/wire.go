package cmd

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/bnema/msgdash/internal/adapters/config"
	"github.com/bnema/msgdash/internal/adapters/render/dashboard"
	"github.com/bnema/msgdash/internal/adapters/session/memory"
	"github.com/bnema/msgdash/internal/adapters/twilio"
	"github.com/bnema/msgdash/internal/application"
	"github.com/bnema/msgdash/internal/ports"
	"github.com/spf13/viper"
	"golang.org/x/term"
)

type app struct {
	cfg      config.Config
	service  *application.Service
	logger   *slog.Logger
	renderer func(application.Dashboard, dashboard.RenderOptions) (string, error)
	clock    ports.Clock

	stdinIsTerminal func() bool
	readPassword    func() (string, error)
}

func newApp() *app {
	return &app{
		renderer: dashboard.Render,
		clock:    ports.SystemClock{},
		logger:   slog.Default(),
		stdinIsTerminal: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
		readPassword: func() (string, error) {
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			return string(raw), err
		},
	}
}

func (a *app) wire(opts *rootOptions) error {
	cfg, err := config.Load(viper.New(), opts.configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	if sid := strings.TrimSpace(opts.accountSID); sid != "" {
		cfg.Credentials.AccountSID = sid
	}
	if token := strings.TrimSpace(opts.authToken); token != "" {
		cfg.Credentials.AuthToken = token
	}

	source := twilio.NewClient(twilio.Config{
		BaseURL:           cfg.API.BaseURL,
		PageSize:          cfg.API.PageSize,
		HTTPClient:        &http.Client{Timeout: cfg.API.Timeout},
		RequestsPerSecond: cfg.API.RequestsPerSecond,
	})

	a.cfg = cfg
	a.service = application.NewService(source, memory.NewStore(), a.clock, application.Options{
		MaxQueryAge:         cfg.MaxQueryAge(),
		MaxManualRecipients: cfg.Filter.MaxRecipients,
	}, a.logger)

	if cfg.File != "" {
		a.logger.Debug("config loaded", "file", cfg.File)
	}

	return nil
}
