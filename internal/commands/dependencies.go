package commands

import (
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"

	"github.com/diogo/aichat/internal/api"
	"github.com/diogo/aichat/internal/chat"
	"github.com/diogo/aichat/internal/config"
	"github.com/diogo/aichat/internal/logging"
	"github.com/diogo/aichat/internal/models"
	"github.com/diogo/aichat/internal/render"
	"github.com/diogo/aichat/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(ctx context.Context, d tui.Dispatcher, modelName string, opts render.Options) error
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (DefaultTUI) RunChat(ctx context.Context, d tui.Dispatcher, modelName string, opts render.Options) error {
	return tui.RunChat(ctx, d, modelName, opts)
}

// Overrides carries the command-line values that take precedence over config.
type Overrides struct {
	Model      string
	Timeout    int
	TimeoutSet bool
	Verbose    bool
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	Config config.Config
	Logger zerolog.Logger

	// Client is the generateContent client.
	Client api.ClientInterface

	// Dispatcher maps client outcomes onto assistant messages.
	Dispatcher *chat.Dispatcher

	// TUI is the terminal user interface.
	TUI TUIInterface

	logCloser io.Closer
}

// ModelName returns the model the client is bound to
func (d *Dependencies) ModelName() string {
	return d.Client.GetModel().Name
}

// Close releases the client and the log file
func (d *Dependencies) Close() {
	if d.Client != nil {
		d.Client.Close()
	}
	if d.logCloser != nil {
		_ = d.logCloser.Close()
	}
}

// buildDependencies is replaced in tests to inject fakes
var buildDependencies = NewDependencies

// NewDependencies loads the configuration, applies overrides and wires the
// logger, client and dispatcher.
func NewDependencies(o Overrides) (*Dependencies, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, err
	}
	applyOverrides(&cfg, o)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, closer, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	if !render.SetTUITheme(cfg.TUITheme) {
		logger.Warn().Str("theme", cfg.TUITheme).Msg("unknown theme, using default")
	}
	tui.UpdateTheme()

	model := models.ModelFromName(cfg.Model)
	client, err := api.NewClient(cfg.APIKey,
		api.WithModel(model),
		api.WithBaseURL(cfg.BaseURL),
		api.WithLogger(logger),
	)
	if err != nil {
		_ = closer.Close()
		return nil, fmt.Errorf("failed to create client: %w", err)
	}

	return newDependenciesWith(cfg, logger, client, closer), nil
}

// newDependenciesWith wires a dispatcher around an existing client
func newDependenciesWith(cfg config.Config, logger zerolog.Logger, client api.ClientInterface, closer io.Closer) *Dependencies {
	dispatcher := chat.NewDispatcher(client,
		chat.WithLogger(logger),
		chat.WithTimeout(cfg.Timeout()),
		chat.WithModelName(client.GetModel().Name),
	)

	return &Dependencies{
		Config:     cfg,
		Logger:     logger,
		Client:     client,
		Dispatcher: dispatcher,
		TUI:        DefaultTUI{},
		logCloser:  closer,
	}
}

func applyOverrides(cfg *config.Config, o Overrides) {
	if o.Model != "" {
		cfg.Model = o.Model
	}
	if o.TimeoutSet {
		cfg.RequestTimeout = o.Timeout
	}
	if o.Verbose {
		cfg.LogLevel = "debug"
	}
}

func newLogger(cfg config.Config) (zerolog.Logger, io.Closer, error) {
	path, err := config.GetLogPath(cfg)
	if err != nil {
		return zerolog.Nop(), nil, err
	}
	return logging.New(logging.Options{Path: path, Level: cfg.LogLevel})
}
