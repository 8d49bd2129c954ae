package vectorstore

import (
	"fmt"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"
	"go.uber.org/zap"
)

// ChunkerConfig controls chunk sizing in tokens.
type ChunkerConfig struct {
	ChunkSize    int
	ChunkOverlap int
	MinChunkSize int
	Encoding     string
}

// DefaultChunkerConfig returns sizes tuned for embedding models with
// an 8k token limit.
func DefaultChunkerConfig() ChunkerConfig {
	return ChunkerConfig{
		ChunkSize:    512,
		ChunkOverlap: 102,
		MinChunkSize: 50,
		Encoding:     "cl100k_base",
	}
}

// Chunk is one slice of source text with its token count.
type Chunk struct {
	Content    string `json:"content"`
	TokenCount int    `json:"token_count"`
	Index      int    `json:"index"`
}

// Chunker splits text into overlapping token windows. Token boundaries
// come from tiktoken when its encoding data is available; otherwise it
// falls back to whitespace words, which keeps chunking deterministic in
// offline environments.
type Chunker struct {
	config ChunkerConfig
	logger *zap.Logger

	once    sync.Once
	enc     *tiktoken.Tiktoken
	initErr error
}

// NewChunker creates a chunker. Invalid sizes are rejected up front.
func NewChunker(config ChunkerConfig, logger *zap.Logger) (*Chunker, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.ChunkSize <= 0 {
		return nil, fmt.Errorf("chunk size must be positive, got %d", config.ChunkSize)
	}
	if config.ChunkOverlap < 0 || config.ChunkOverlap >= config.ChunkSize {
		return nil, fmt.Errorf("chunk overlap %d must be in [0, %d)", config.ChunkOverlap, config.ChunkSize)
	}
	if config.Encoding == "" {
		config.Encoding = "cl100k_base"
	}
	return &Chunker{
		config: config,
		logger: logger.With(zap.String("component", "chunker")),
	}, nil
}

// init lazily loads the tiktoken encoding (may download data on first use).
func (c *Chunker) init() error {
	c.once.Do(func() {
		enc, err := tiktoken.GetEncoding(c.config.Encoding)
		if err != nil {
			c.initErr = err
			return
		}
		c.enc = enc
	})
	return c.initErr
}

// Split divides text into overlapping chunks. Chunks below MinChunkSize
// tokens are dropped unless they are the only chunk.
func (c *Chunker) Split(text string) []Chunk {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}

	var chunks []Chunk
	if err := c.init(); err == nil {
		chunks = c.splitTokens(text)
	} else {
		c.logger.Warn("tiktoken unavailable, chunking by words", zap.Error(err))
		chunks = c.splitWords(text)
	}

	if len(chunks) <= 1 {
		return chunks
	}
	kept := chunks[:0]
	for _, ch := range chunks {
		if ch.TokenCount >= c.config.MinChunkSize {
			kept = append(kept, ch)
		}
	}
	for i := range kept {
		kept[i].Index = i
	}
	return kept
}

func (c *Chunker) splitTokens(text string) []Chunk {
	tokens := c.enc.Encode(text, nil, nil)
	step := c.config.ChunkSize - c.config.ChunkOverlap

	var chunks []Chunk
	for start := 0; start < len(tokens); start += step {
		end := start + c.config.ChunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, Chunk{
			Content:    c.enc.Decode(tokens[start:end]),
			TokenCount: end - start,
			Index:      len(chunks),
		})
		if end == len(tokens) {
			break
		}
	}
	return chunks
}

func (c *Chunker) splitWords(text string) []Chunk {
	words := strings.Fields(text)
	step := c.config.ChunkSize - c.config.ChunkOverlap

	var chunks []Chunk
	for start := 0; start < len(words); start += step {
		end := start + c.config.ChunkSize
		if end > len(words) {
			end = len(words)
		}
		chunks = append(chunks, Chunk{
			Content:    strings.Join(words[start:end], " "),
			TokenCount: end - start,
			Index:      len(chunks),
		})
		if end == len(words) {
			break
		}
	}
	return chunks
}
