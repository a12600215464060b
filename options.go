package carefinder

import "go.uber.org/zap"

// Option configures a Client.
type Option func(*clientConfig)

type clientConfig struct {
	env      string
	dbPath   string
	indexDir string
	apiKey   string
	baseURL  string
	embModel string
	dims     int
	llmModel string
	topK     int
	logger   *zap.Logger
}

// WithEnv loads config/<env>.yaml (and .env) as the base configuration.
// Without it, built-in defaults are used.
func WithEnv(env string) Option {
	return func(c *clientConfig) { c.env = env }
}

// WithDatabase sets the SQLite database path.
func WithDatabase(path string) Option {
	return func(c *clientConfig) { c.dbPath = path }
}

// WithIndexDir sets the directory holding the persisted vector index.
func WithIndexDir(dir string) Option {
	return func(c *clientConfig) { c.indexDir = dir }
}

// WithOpenAI sets the API key and an optional base URL for an
// OpenAI-compatible endpoint. Both embeddings and chat use it.
func WithOpenAI(apiKey, baseURL string) Option {
	return func(c *clientConfig) {
		c.apiKey = apiKey
		c.baseURL = baseURL
	}
}

// WithEmbeddingModel overrides the embedding model and its vector dimension.
func WithEmbeddingModel(model string, dimensions int) Option {
	return func(c *clientConfig) {
		c.embModel = model
		c.dims = dimensions
	}
}

// WithLLMModel overrides the chat model.
func WithLLMModel(model string) Option {
	return func(c *clientConfig) { c.llmModel = model }
}

// WithTopK sets how many facilities a search returns at most.
func WithTopK(k int) Option {
	return func(c *clientConfig) { c.topK = k }
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(c *clientConfig) { c.logger = l }
}
