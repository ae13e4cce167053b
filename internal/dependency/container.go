// Package dependency wires the concierge services using go.uber.org/dig.
package dependency

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"go.uber.org/dig"

	"github.com/verdevalley/concierge/internal/agent"
	"github.com/verdevalley/concierge/internal/bus"
	"github.com/verdevalley/concierge/internal/calendar"
	"github.com/verdevalley/concierge/internal/channels"
	"github.com/verdevalley/concierge/internal/config"
	"github.com/verdevalley/concierge/internal/ingest"
	"github.com/verdevalley/concierge/internal/providers"
	"github.com/verdevalley/concierge/internal/rag"
	"github.com/verdevalley/concierge/internal/retention"
	"github.com/verdevalley/concierge/internal/schema"
	"github.com/verdevalley/concierge/internal/session"
	"github.com/verdevalley/concierge/internal/store"
	"github.com/verdevalley/concierge/internal/store/sqlite"
	"github.com/verdevalley/concierge/internal/store/supabase"
	"github.com/verdevalley/concierge/internal/tools"
)

// Container holds the resolved service singletons. Callers use the typed
// getter methods; they never need to import dig directly.
type Container struct {
	store     store.Store
	msgBus    *bus.MessageBus
	loop      *agent.Loop
	manager   *channels.Manager
	retention *retention.Service
	ingestor  *ingest.Ingestor
}

func (c *Container) Store() store.Store                   { return c.store }
func (c *Container) MessageBus() *bus.MessageBus          { return c.msgBus }
func (c *Container) AgentLoop() *agent.Loop               { return c.loop }
func (c *Container) ChannelManager() *channels.Manager    { return c.manager }
func (c *Container) RetentionService() *retention.Service { return c.retention }
func (c *Container) Ingestor() *ingest.Ingestor           { return c.ingestor }

// Close releases held resources, currently the datastore connection.
func (c *Container) Close() error {
	return c.store.Close()
}

// New builds and wires all services from cfg.
func New(cfg *config.Config, logger *slog.Logger) (*Container, error) {
	d := dig.New()

	for _, provide := range []any{
		func() *config.Config { return cfg },
		func() *slog.Logger { return logger },
		newStore,
		newMessageBus,
		newEmbedder,
		newSearcher,
		newPropertyMap,
		newCalendarClient,
		newRegistry,
		newProvider,
		newRunner,
		newWindow,
		newLoop,
		newChannelManager,
		newRetentionService,
		newIngestor,
	} {
		if err := d.Provide(provide); err != nil {
			return nil, err
		}
	}

	var result *Container
	err := d.Invoke(func(
		st store.Store,
		msgBus *bus.MessageBus,
		loop *agent.Loop,
		manager *channels.Manager,
		retentionSvc *retention.Service,
		ingestor *ingest.Ingestor,
	) {
		result = &Container{
			store:     st,
			msgBus:    msgBus,
			loop:      loop,
			manager:   manager,
			retention: retentionSvc,
			ingestor:  ingestor,
		}
	})
	return result, err
}

func newStore(cfg *config.Config) (store.Store, error) {
	switch cfg.Store.Backend {
	case "", "supabase":
		return supabase.New(cfg.Supabase.URL, cfg.Supabase.ServiceKey), nil
	case "sqlite":
		return sqlite.New(cfg.Store.SQLitePath)
	default:
		return nil, fmt.Errorf("unknown store backend %q (want supabase or sqlite)", cfg.Store.Backend)
	}
}

func newMessageBus() *bus.MessageBus {
	return bus.NewMessageBus(100)
}

func newEmbedder(cfg *config.Config) rag.Embedder {
	return rag.NewOpenAIEmbedder(cfg.OpenAI.APIKey, cfg.OpenAI.APIBase, cfg.OpenAI.EmbeddingModel)
}

func newSearcher(cfg *config.Config, embedder rag.Embedder, st store.Store, logger *slog.Logger) *rag.Searcher {
	return rag.NewSearcher(embedder, st, cfg.Agent.MatchCount, logger)
}

func newPropertyMap(cfg *config.Config, logger *slog.Logger) (*calendar.PropertyMap, error) {
	props, err := calendar.LoadProperties(cfg.Calendar.PropertiesFile)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn("properties file missing, booking tools disabled",
				"path", cfg.Calendar.PropertiesFile)
			return calendar.NewPropertyMap(nil), nil
		}
		return nil, err
	}
	return props, nil
}

func newCalendarClient(cfg *config.Config, props *calendar.PropertyMap, logger *slog.Logger) *calendar.Client {
	events, err := calendar.NewGoogleEvents(context.Background(),
		cfg.Calendar.CredentialsFile, cfg.Calendar.TokenFile)
	if err != nil {
		// The agent still serves knowledge-base questions; booking flows
		// answer with their try-again message until onboard is run.
		logger.Warn("calendar integration unavailable", "error", err)
		return calendar.NewClient(nil, props, logger)
	}
	return calendar.NewClient(events, props, logger)
}

func newRegistry(searcher *rag.Searcher, cal *calendar.Client, logger *slog.Logger) *tools.Registry {
	return tools.NewRegistryBuilder(logger).
		WithTool(tools.NewSearchKnowledgeBaseTool(searcher)).
		WithTool(tools.NewCheckAvailabilityTool(cal)).
		WithTool(tools.NewCreateBookingTool(cal)).
		WithTool(tools.NewCancelBookingTool(cal)).
		Build()
}

func newProvider(cfg *config.Config) schema.Provider {
	return providers.NewAnthropicProvider(
		cfg.Anthropic.APIKey,
		cfg.Anthropic.APIBase,
		cfg.Anthropic.Model,
		cfg.Anthropic.MaxTokens,
	)
}

func newRunner(cfg *config.Config, provider schema.Provider, registry *tools.Registry, logger *slog.Logger) (*agent.Runner, error) {
	basePrompt := ""
	if cfg.Agent.SystemPromptFile != "" {
		data, err := os.ReadFile(cfg.Agent.SystemPromptFile)
		if err != nil {
			return nil, fmt.Errorf("read system prompt file: %w", err)
		}
		basePrompt = string(data)
	}
	return agent.NewRunner(provider, registry, basePrompt, cfg.Agent.MaxToolIterations, logger), nil
}

func newWindow(cfg *config.Config, st store.Store) *session.Window {
	return session.NewWindow(st, cfg.Agent.ContextWindow)
}

func newLoop(b *bus.MessageBus, st store.Store, window *session.Window, runner *agent.Runner, logger *slog.Logger) *agent.Loop {
	return agent.NewLoop(b, st, window, runner, logger)
}

func newChannelManager(cfg *config.Config, b *bus.MessageBus, logger *slog.Logger) *channels.Manager {
	m := channels.NewManager(b, logger)
	if cfg.Telegram.Enabled {
		m.Register(channels.NewTelegramChannel(cfg.Telegram.Token, cfg.Telegram.AllowFrom, b, logger))
	}
	return m
}

func newRetentionService(cfg *config.Config, st store.Store, window *session.Window, logger *slog.Logger) *retention.Service {
	return retention.NewService(st, window, cfg.Retention.Schedule, cfg.Retention.Days, logger)
}

func newIngestor(embedder rag.Embedder, st store.Store, logger *slog.Logger) *ingest.Ingestor {
	return ingest.NewIngestor(embedder, st, logger)
}
