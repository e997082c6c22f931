package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"pagewright/internal/contentinfo"
	"pagewright/internal/logging"
	"pagewright/internal/services"
)

// tableSource is where a command takes its key tables from.
type tableSource struct {
	infoPath  string
	key       string
	contentID string
}

type loadedTables struct {
	contentID string
	title     string
	tables    contentinfo.Tables
	cached    bool
}

// decryptInfo reads a content-info document and decrypts its key tables. The
// decrypted tables are written to the key cache when it is enabled.
func (c *commandContext) decryptInfo(ctx context.Context, path, keyFlag string) (loadedTables, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return loadedTables{}, fmt.Errorf("read content info: %w", err)
	}
	resp, err := contentinfo.Parse(data)
	if err != nil {
		return loadedTables{}, services.Wrap(services.ErrValidation, "keys", "content info", "", err)
	}
	key, err := c.initialKey(keyFlag)
	if err != nil {
		return loadedTables{}, err
	}
	item := resp.First()
	logger := logging.NewComponentLogger(c.log(), "keytable")
	tables := item.DecryptTables(key, logger)
	if len(tables) == 0 {
		return loadedTables{}, services.Wrap(services.ErrValidation, "keys", "decrypt", "no key table decrypted; check the initial key", nil)
	}
	out := loadedTables{contentID: item.ContentID, title: item.DisplayTitle(), tables: tables}

	cache, err := c.openCache()
	if err != nil {
		return loadedTables{}, err
	}
	if cache != nil {
		defer cache.Close()
		if err := cache.PutAll(ctx, item.ContentID, tables); err != nil {
			return loadedTables{}, fmt.Errorf("cache key tables: %w", err)
		}
		out.cached = true
		logger.Info("key tables cached",
			logging.ContentID(item.ContentID),
			logging.Int("tables", len(tables)),
		)
	}
	return out, nil
}

// loadTables decrypts a content-info file when one is given and otherwise
// reads the tables cached for the content id.
func (c *commandContext) loadTables(ctx context.Context, src tableSource) (loadedTables, error) {
	if strings.TrimSpace(src.infoPath) != "" {
		return c.decryptInfo(ctx, src.infoPath, src.key)
	}
	contentID := strings.TrimSpace(src.contentID)
	if contentID == "" {
		return loadedTables{}, services.Wrap(services.ErrConfiguration, "keys", "tables", "pass --info or a content id with cached tables", nil)
	}
	cache, err := c.openCache()
	if err != nil {
		return loadedTables{}, err
	}
	if cache == nil {
		return loadedTables{}, services.Wrap(services.ErrConfiguration, "keys", "tables", "key cache disabled; pass --info", nil)
	}
	defer cache.Close()
	tables, err := cache.GetAll(ctx, contentID)
	if err != nil {
		return loadedTables{}, fmt.Errorf("read key cache: %w", err)
	}
	if len(tables) == 0 {
		return loadedTables{}, services.Wrap(services.ErrNotFound, "keys", contentID, "no cached key tables; run keytable decrypt first", nil)
	}
	return loadedTables{contentID: contentID, tables: tables, cached: true}, nil
}
