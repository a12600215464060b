// Package carefinder answers natural-language questions about Seoul daycare
// centres. A Client wraps the full query pipeline: intent extraction,
// hybrid retrieval, answer composition and finalization.
package carefinder

import (
	"context"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/carefinder/carefinder/internal/app"
	"github.com/carefinder/carefinder/internal/config"
	"github.com/carefinder/carefinder/internal/domain/search/request"
	logpkg "github.com/carefinder/carefinder/internal/logger"
)

// Client is the carefinder SDK entry point.
type Client struct {
	app *app.App
}

// New builds the configuration, opens the stores and loads the vector index.
// A missing index is not an error: search then runs relational only.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cc := &clientConfig{}
	for _, o := range opts {
		o(cc)
	}

	cfg, err := buildConfig(cc)
	if err != nil {
		return nil, err
	}

	logger := cc.logger
	if logger == nil {
		logger = zap.NewNop()
	}

	a, err := app.Build(logpkg.ContextWithLogger(ctx, logger), cfg, logger)
	if err != nil {
		return nil, fmt.Errorf("carefinder: %w", err)
	}
	return &Client{app: a}, nil
}

func buildConfig(cc *clientConfig) (config.Config, error) {
	var (
		cfg config.Config
		err error
	)
	if cc.env != "" {
		cfg, err = config.Load(cc.env)
	} else {
		cfg, err = config.Parse(nil)
	}
	if err != nil {
		return config.Config{}, fmt.Errorf("carefinder: %w", err)
	}

	if cc.dbPath != "" {
		cfg.Database.Path = cc.dbPath
	}
	if cc.indexDir != "" {
		cfg.Index.Dir = cc.indexDir
	}
	if cc.apiKey != "" {
		cfg.Embedding.APIKey = cc.apiKey
		cfg.LLM.APIKey = cc.apiKey
	}
	if cc.baseURL != "" {
		cfg.Embedding.BaseURL = cc.baseURL
		cfg.LLM.BaseURL = cc.baseURL
	}
	if cc.embModel != "" {
		cfg.Embedding.Model = cc.embModel
	}
	if cc.dims > 0 {
		cfg.Embedding.Dimensions = cc.dims
	}
	if cc.llmModel != "" {
		cfg.LLM.Model = cc.llmModel
	}
	if cc.topK > 0 {
		cfg.Retrieval.TopK = cc.topK
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, fmt.Errorf("carefinder: invalid config: %w", err)
	}
	return cfg, nil
}

// Close releases the database and cache connections.
func (c *Client) Close() error {
	return c.app.Close()
}

func (c *Client) ctx(ctx context.Context) context.Context {
	return logpkg.ContextWithLogger(ctx, c.app.Logger)
}

// Search runs the pipeline for query. Caller filters (district, type, age,
// has_playground, min_cctv, has_vehicle, special_service) override the ones
// extracted from the text. A blank or oversized query returns ErrInvalidRequest;
// every other failure is recorded in the result metadata.
func (c *Client) Search(ctx context.Context, query string, filters map[string]any) (Result, error) {
	if err := request.ValidateQuery(query); err != nil {
		return Result{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}
	return c.app.Pipeline.Run(c.ctx(ctx), query, request.ParseFilters(filters)), nil
}

// Facility returns one facility by its centre code.
func (c *Client) Facility(ctx context.Context, id string) (Facility, error) {
	f, err := c.app.Catalog.Get(c.ctx(ctx), id)
	if err != nil {
		return Facility{}, fmt.Errorf("get facility: %w", err)
	}
	return f, nil
}

// Compare returns the requested facilities in request order, skipping unknown ids.
func (c *Client) Compare(ctx context.Context, ids ...string) ([]Facility, error) {
	out, err := c.app.Catalog.Compare(c.ctx(ctx), ids)
	if err != nil {
		return nil, fmt.Errorf("compare facilities: %w", err)
	}
	return out, nil
}

// Stats returns counts of active facilities by district and type.
func (c *Client) Stats(ctx context.Context) (Stats, error) {
	st, err := c.app.Catalog.Stats(c.ctx(ctx))
	if err != nil {
		return Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

// Ingest loads a registry JSON export (a top-level DATA array) into the database.
func (c *Client) Ingest(ctx context.Context, r io.Reader) (IngestReport, error) {
	rep, err := c.app.Ingest.Ingest(c.ctx(ctx), r)
	if err != nil {
		return rep, fmt.Errorf("ingest: %w", err)
	}
	return rep, nil
}

// BuildIndex embeds every active facility, saves the index and makes it live
// for subsequent searches.
func (c *Client) BuildIndex(ctx context.Context) (IndexReport, error) {
	idx, rep, err := c.app.Indexing.BuildAndSave(c.ctx(ctx), c.app.Config.Index.Dir, c.app.IndexFiles())
	if err != nil {
		return rep, fmt.Errorf("build index: %w", err)
	}
	c.app.Index.Swap(idx)
	return rep, nil
}

// IndexReady reports whether semantic retrieval is available.
func (c *Client) IndexReady() bool {
	return c.app.Index.Ready()
}
