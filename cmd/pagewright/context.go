package main

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"pagewright/internal/config"
	"pagewright/internal/keycache"
	"pagewright/internal/keyselect"
	"pagewright/internal/logging"
	"pagewright/internal/preflight"
	"pagewright/internal/services"
)

type commandContext struct {
	configFlag *string
	jsonFlag   *bool

	configOnce sync.Once
	config     *config.Config
	configErr  error

	loggerOnce sync.Once
	logger     *slog.Logger
	sessionID  string
}

func newCommandContext(configFlag *string, jsonFlag *bool) *commandContext {
	return &commandContext{
		configFlag: configFlag,
		jsonFlag:   jsonFlag,
	}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		cfg, _, _, err := config.Load(c.configPath())
		if err != nil {
			c.configErr = err
			return
		}
		if err := cfg.EnsureDirectories(); err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
	})
	return c.config, c.configErr
}

func (c *commandContext) configPath() string {
	if c.configFlag == nil {
		return ""
	}
	return strings.TrimSpace(*c.configFlag)
}

func (c *commandContext) jsonOutput() bool {
	return c.jsonFlag != nil && *c.jsonFlag
}

// log returns the command logger. Every invocation gets its own session id so
// the lines of one run can be pulled out of the shared log file.
func (c *commandContext) log() *slog.Logger {
	c.loggerOnce.Do(func() {
		c.sessionID = uuid.NewString()
		logger, err := logging.NewFromConfig(c.config, c.sessionID)
		if err != nil {
			logger, _ = logging.NewFromConfig(nil, c.sessionID)
		}
		c.logger = logger
	})
	return c.logger
}

// initialKey prefers the flag value over the configured key.
func (c *commandContext) initialKey(flagValue string) (string, error) {
	if key := strings.TrimSpace(flagValue); key != "" {
		return key, nil
	}
	if c.config != nil && c.config.Keys.InitialKey != "" {
		return c.config.Keys.InitialKey, nil
	}
	return "", services.Wrap(services.ErrConfiguration, "keys", "initial key", "set --key, keys.initial_key or PAGEWRIGHT_INITIAL_KEY", nil)
}

func (c *commandContext) classifier() keyselect.Classifier {
	if c.config != nil && c.config.Keys.LenientType1 {
		return keyselect.ClassifyLenient
	}
	return keyselect.Classify
}

// openCache opens the key-table cache, or returns nil when it is disabled.
func (c *commandContext) openCache() (*keycache.Cache, error) {
	if c.config == nil || !c.config.Keys.CacheEnabled {
		return nil, nil
	}
	if err := preflight.CheckDirectory("cache", c.config.Paths.CacheDir); err != nil {
		return nil, err
	}
	cache, err := keycache.Open(c.config.KeyCachePath())
	if err != nil {
		return nil, fmt.Errorf("open key cache: %w", err)
	}
	return cache, nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}

func yesNo(value bool) string {
	if value {
		return "yes"
	}
	return "no"
}
