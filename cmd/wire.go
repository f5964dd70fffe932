package cmd

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"loan-advisor/config"
	"loan-advisor/domain"
	"loan-advisor/llm"
	"loan-advisor/repository"
	"loan-advisor/service"
)

// closers releases resources in reverse acquisition order.
type closers []func() error

func (c *closers) add(fn func() error) {
	*c = append(*c, fn)
}

func (c closers) Close() error {
	var errs []error
	for i := len(c) - 1; i >= 0; i-- {
		if err := c[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// buildEngine loads model metadata, resolves thresholds and wires the cached
// scorer in front of the HTTP oracle.
func buildEngine(ctx context.Context, cfg *config.Configuration, logger *zap.Logger, res *closers) (*service.Engine, error) {
	if cfg.Model.OracleURL == "" {
		return nil, fmt.Errorf("model.oracle_url is required")
	}

	meta, err := service.LoadMetadata(cfg.Model.MetadataPath)
	if err != nil {
		return nil, err
	}
	normalizer := service.NewNormalizer(domain.NewFeatureSchema(meta))
	oracle := service.NewHTTPOracle(cfg.Model.OracleURL, cfg.Model.OracleTimeout)

	local, err := service.NewLRUCache(cfg.Cache.Size)
	if err != nil {
		return nil, fmt.Errorf("create probability cache: %w", err)
	}

	var shared repository.CacheRepository
	if cfg.Cache.RedisURL != "" {
		rc, err := repository.NewRedisCache(cfg.Cache.RedisURL, cfg.Cache.KeyPrefix, cfg.Cache.TTL)
		if err != nil {
			return nil, err
		}
		res.add(rc.Close)

		pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
		defer cancel()
		if err := rc.Ping(pingCtx); err != nil {
			logger.Warn("redis unreachable, continuing with the in-process cache only",
				zap.String("op", "buildEngine"),
				zap.Error(err),
			)
		} else {
			shared = rc
		}
	}

	scorer := service.NewCachedScorer(oracle, normalizer, local, shared, logger)
	thresholds := service.ResolveThresholds(logger, service.DefaultChain(cfg.Model.PolicyPath, meta)...)

	logger.Info("engine ready",
		zap.String("policy_source", thresholds.Source),
		zap.Int("feature_columns", len(normalizer.Schema().Columns)),
		zap.Bool("shared_cache", shared != nil),
	)
	return service.NewEngine(scorer, thresholds, logger), nil
}

func buildRepository(cfg *config.Configuration, res *closers) (repository.ApplicationRepository, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		repo, err := repository.OpenApplicationRepositorySQLite(cfg.Store.DSN)
		if err != nil {
			return nil, err
		}
		res.add(repo.Close)
		return repo, nil
	default:
		return repository.NewApplicationRepositoryMemory(), nil
	}
}

func buildApplicationService(ctx context.Context, cfg *config.Configuration, logger *zap.Logger, res *closers) (*service.ApplicationService, error) {
	engine, err := buildEngine(ctx, cfg, logger, res)
	if err != nil {
		return nil, err
	}

	repo, err := buildRepository(cfg, res)
	if err != nil {
		return nil, err
	}

	provider, err := llm.NewProvider(llm.Config{
		Provider:    cfg.LLM.Provider,
		APIKey:      cfg.LLM.APIKey,
		Model:       cfg.LLM.Model,
		BaseURL:     cfg.LLM.BaseURL,
		Timeout:     cfg.LLM.Timeout,
		Temperature: cfg.LLM.Temperature,
	})
	if err != nil {
		return nil, fmt.Errorf("create LLM provider: %w", err)
	}
	if provider == nil {
		logger.Warn("no LLM provider configured, client messages and officer advice are unavailable")
	}

	renderer := service.NewAIService(provider, cfg.LLM.Timeout, cfg.LLM.Temperature, logger)
	return service.NewApplicationService(engine, repo, renderer, logger), nil
}
