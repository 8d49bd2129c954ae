package vectorstore

import (
	"context"
	"fmt"
	"sync"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/floworc/floworc/types"
)

// Backend names a vector store implementation.
type Backend string

const (
	BackendMemory Backend = "memory"
	BackendMongo  Backend = "mongo"
)

// ProvisionSpec describes a store to provision.
type ProvisionSpec struct {
	Name       string  `json:"name"`
	Backend    Backend `json:"backend,omitempty"`
	Persistent bool    `json:"persistent,omitempty"`
}

// Handle identifies a provisioned store.
type Handle struct {
	StoreID       string  `json:"store_id"`
	Name          string  `json:"name"`
	Backend       Backend `json:"backend"`
	DocumentCount int     `json:"document_count"`
	Persistent    bool    `json:"persistent"`
}

// ProvisionerConfig configures store provisioning.
type ProvisionerConfig struct {
	DefaultBackend Backend
	TopK           int
	EmbedBatchSize int
	MaxParallel    int
}

// DefaultProvisionerConfig returns conservative defaults.
func DefaultProvisionerConfig() ProvisionerConfig {
	return ProvisionerConfig{
		DefaultBackend: BackendMemory,
		TopK:           5,
		EmbedBatchSize: 32,
		MaxParallel:    4,
	}
}

type managedStore struct {
	handle Handle
	store  Store
}

// Provisioner creates and tracks vector stores. Persistent stores are
// reused by name across executions; ephemeral stores live until released.
type Provisioner struct {
	config   ProvisionerConfig
	chunker  *Chunker
	embedder Embedder
	mongoDB  *mongo.Database
	logger   *zap.Logger

	mu         sync.Mutex
	stores     map[string]*managedStore
	persistent map[string]string // name -> store ID
}

// NewProvisioner creates a provisioner. mongoDB may be nil, in which
// case requests for the mongo backend fail.
func NewProvisioner(config ProvisionerConfig, chunker *Chunker, embedder Embedder, mongoDB *mongo.Database, logger *zap.Logger) *Provisioner {
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.TopK <= 0 {
		config.TopK = 5
	}
	if config.EmbedBatchSize <= 0 {
		config.EmbedBatchSize = 32
	}
	if config.MaxParallel <= 0 {
		config.MaxParallel = 4
	}
	if config.DefaultBackend == "" {
		config.DefaultBackend = BackendMemory
	}
	return &Provisioner{
		config:     config,
		chunker:    chunker,
		embedder:   embedder,
		mongoDB:    mongoDB,
		logger:     logger.With(zap.String("component", "provisioner")),
		stores:     make(map[string]*managedStore),
		persistent: make(map[string]string),
	}
}

// Provision creates a store, or returns the existing one when a
// persistent store with the same name was provisioned before.
func (p *Provisioner) Provision(ctx context.Context, spec ProvisionSpec) (Handle, error) {
	if spec.Name == "" {
		return Handle{}, types.NewError(types.ErrInvalidRequest, "store name is required")
	}
	backend := spec.Backend
	if backend == "" {
		backend = p.config.DefaultBackend
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if spec.Persistent {
		if id, ok := p.persistent[spec.Name]; ok {
			ms := p.stores[id]
			count, err := ms.store.Count(ctx)
			if err == nil {
				ms.handle.DocumentCount = count
			}
			p.logger.Info("reusing persistent store",
				zap.String("name", spec.Name),
				zap.String("store_id", id))
			return ms.handle, nil
		}
	}

	store, err := p.newStore(backend, spec.Name)
	if err != nil {
		return Handle{}, err
	}

	handle := Handle{
		StoreID:    types.NewID("vs"),
		Name:       spec.Name,
		Backend:    backend,
		Persistent: spec.Persistent,
	}
	p.stores[handle.StoreID] = &managedStore{handle: handle, store: store}
	if spec.Persistent {
		p.persistent[spec.Name] = handle.StoreID
	}

	p.logger.Info("store provisioned",
		zap.String("store_id", handle.StoreID),
		zap.String("name", spec.Name),
		zap.String("backend", string(backend)),
		zap.Bool("persistent", spec.Persistent))
	return handle, nil
}

func (p *Provisioner) newStore(backend Backend, name string) (Store, error) {
	switch backend {
	case BackendMemory:
		return NewMemoryStore(p.logger), nil
	case BackendMongo:
		if p.mongoDB == nil {
			return nil, types.NewError(types.ErrInvalidRequest, "mongo vector backend is not configured")
		}
		return NewMongoStore(p.mongoDB.Collection("vectors_"+name), p.logger), nil
	default:
		return nil, types.NewError(types.ErrInvalidRequest, fmt.Sprintf("unknown vector backend: %s", backend))
	}
}

// Index chunks, embeds, and stores the given texts. Embedding batches
// run in parallel. Returns the number of chunks indexed.
func (p *Provisioner) Index(ctx context.Context, storeID string, texts []string, metadata map[string]any) (int, error) {
	ms, err := p.lookup(storeID)
	if err != nil {
		return 0, err
	}

	var chunks []Chunk
	for _, text := range texts {
		chunks = append(chunks, p.chunker.Split(text)...)
	}
	if len(chunks) == 0 {
		return 0, nil
	}

	docs := make([]Document, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.MaxParallel)

	for start := 0; start < len(chunks); start += p.config.EmbedBatchSize {
		end := start + p.config.EmbedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]
		offset := start
		g.Go(func() error {
			inputs := make([]string, len(batch))
			for i, ch := range batch {
				inputs[i] = ch.Content
			}
			embeddings, err := p.embedder.Embed(gctx, inputs)
			if err != nil {
				return err
			}
			for i, ch := range batch {
				docs[offset+i] = Document{
					ID:        types.NewID("doc"),
					Content:   ch.Content,
					Metadata:  metadata,
					Embedding: embeddings[i],
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return 0, fmt.Errorf("embed chunks: %w", err)
	}

	if err := ms.store.Add(ctx, docs); err != nil {
		return 0, err
	}

	p.mu.Lock()
	ms.handle.DocumentCount += len(docs)
	p.mu.Unlock()

	p.logger.Info("documents indexed",
		zap.String("store_id", storeID),
		zap.Int("chunks", len(docs)))
	return len(docs), nil
}

// Query embeds the query text and searches the store.
func (p *Provisioner) Query(ctx context.Context, storeID, query string, topK int) ([]SearchResult, error) {
	ms, err := p.lookup(storeID)
	if err != nil {
		return nil, err
	}
	if topK <= 0 {
		topK = p.config.TopK
	}

	embeddings, err := p.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	return ms.store.Search(ctx, embeddings[0], topK)
}

// Get returns the handle for a provisioned store.
func (p *Provisioner) Get(storeID string) (Handle, error) {
	ms, err := p.lookup(storeID)
	if err != nil {
		return Handle{}, err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return ms.handle, nil
}

// Release drops an ephemeral store. Persistent stores are kept.
func (p *Provisioner) Release(ctx context.Context, storeID string) error {
	p.mu.Lock()
	ms, ok := p.stores[storeID]
	if ok && !ms.handle.Persistent {
		delete(p.stores, storeID)
	}
	p.mu.Unlock()

	if !ok {
		return types.NewNotFound("vector store", storeID)
	}
	if ms.handle.Persistent {
		return nil
	}
	if err := ms.store.Clear(ctx); err != nil {
		p.logger.Warn("failed to clear released store",
			zap.String("store_id", storeID), zap.Error(err))
	}
	p.logger.Info("store released", zap.String("store_id", storeID))
	return nil
}

func (p *Provisioner) lookup(storeID string) (*managedStore, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	ms, ok := p.stores[storeID]
	if !ok {
		return nil, types.NewNotFound("vector store", storeID)
	}
	return ms, nil
}
