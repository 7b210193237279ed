package main

import (
	"context"
	"fmt"

	"github.com/aretw0/hostflow"
	"github.com/aretw0/hostflow/flows"
	"github.com/aretw0/hostflow/internal/config"
	"github.com/aretw0/hostflow/pkg/adapters/eino"
	"github.com/aretw0/hostflow/pkg/adapters/file"
	"github.com/aretw0/hostflow/pkg/adapters/gemini"
	"github.com/aretw0/hostflow/pkg/adapters/memory"
	"github.com/aretw0/hostflow/pkg/adapters/redis"
	"github.com/aretw0/hostflow/pkg/ports"
	"github.com/aretw0/hostflow/pkg/session"
)

// loadEngine loads the flow named by args or HOSTFLOW_FLOW, falling back to
// the shipped podcast host flow.
func loadEngine(args []string, opts ...hostflow.Option) (*hostflow.Engine, error) {
	base := []hostflow.Option{hostflow.WithLogger(logger)}
	path, err := cfg.FlowPath(args)
	if err != nil {
		logger.Info("No flow given, using the shipped podcast host flow")
		base = append(base, hostflow.WithFlow(flows.PodcastHost))
		path = "podcast_host"
	}
	engine, err := hostflow.New(path, append(base, opts...)...)
	if err != nil {
		return nil, fmt.Errorf("failed to load flow: %w", err)
	}
	return engine, nil
}

// newModel builds the language model selected by the provider setting.
func newModel(ctx context.Context) (ports.LanguageModel, error) {
	if err := cfg.ValidateModel(); err != nil {
		return nil, err
	}
	if cfg.LLMProvider == config.ProviderGemini {
		m, err := gemini.New(ctx, gemini.Config{APIKey: cfg.GoogleAPIKey, Model: cfg.GeminiModel})
		if err != nil {
			return nil, err
		}
		return m, nil
	}
	m, err := eino.NewOpenAI(ctx, eino.OpenAIConfig{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
	})
	if err != nil {
		return nil, err
	}
	return m, nil
}

// newSessions returns a session manager on Redis when an address is
// configured, on a directory of JSON files when one is, and in memory
// otherwise. The returned func releases the backend.
func newSessions(ctx context.Context) (*session.Manager, func(), error) {
	if cfg.RedisAddr == "" {
		if cfg.SessionDir != "" {
			logger.Info("Session snapshots stored on disk", "dir", cfg.SessionDir)
			return session.NewManager(file.New(cfg.SessionDir), session.WithLogger(logger)), func() {}, nil
		}
		return session.NewManager(memory.NewStore(), session.WithLogger(logger)), func() {}, nil
	}
	store := redis.New(cfg.RedisAddr, "", 0, redis.WithTTL(cfg.SessionTTL))
	if err := store.Ping(ctx); err != nil {
		_ = store.Close()
		return nil, nil, fmt.Errorf("redis %s: %w", cfg.RedisAddr, err)
	}
	logger.Info("Session snapshots stored in Redis", "addr", cfg.RedisAddr, "ttl", cfg.SessionTTL)
	mgr := session.NewManager(store,
		session.WithLocker(redis.NewLocker(store.Client(), redis.DefaultPrefix)),
		session.WithLogger(logger),
	)
	return mgr, func() { _ = store.Close() }, nil
}
