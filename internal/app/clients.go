package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ordalabs/orda-backend/internal/clients/feed"
	"github.com/ordalabs/orda-backend/internal/clients/openai"
	"github.com/ordalabs/orda-backend/internal/clients/pinecone"
	"github.com/ordalabs/orda-backend/internal/clients/redis"
	"github.com/ordalabs/orda-backend/internal/logger"
)

type Clients struct {
	OpenAI      openai.Client
	Verifier    openai.Client
	Pinecone    pinecone.Client
	VectorStore pinecone.VectorStore
	Cache       redis.IssueCache
	Feed        *feed.Source
}

func wireClients(log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")

	openaiClient, err := openai.NewClient(log)
	if err != nil {
		return Clients{}, fmt.Errorf("init openai client: %w", err)
	}
	verifierClient := openai.WithModel(openaiClient, cfg.VerifierModel)

	var (
		pineconeClient pinecone.Client
		vectorStore    pinecone.VectorStore
	)
	if strings.TrimSpace(os.Getenv("PINECONE_API_KEY")) == "" {
		log.Warn("PINECONE_API_KEY not set; vector search disabled")
	} else {
		pineconeClient, err = pinecone.New(log, pinecone.Config{
			APIKey:     strings.TrimSpace(os.Getenv("PINECONE_API_KEY")),
			APIVersion: strings.TrimSpace(os.Getenv("PINECONE_API_VERSION")),
			BaseURL:    strings.TrimSpace(os.Getenv("PINECONE_BASE_URL")),
			Timeout:    30 * time.Second,
		})
		if err != nil {
			return Clients{}, fmt.Errorf("init pinecone client: %w", err)
		}
		vectorStore, err = pinecone.NewVectorStore(log, pineconeClient)
		if err != nil {
			return Clients{}, fmt.Errorf("init pinecone vector store: %w", err)
		}
	}

	cache, err := redis.NewIssueCache(log)
	if err != nil {
		log.Warn("Redis issue cache unavailable; reads fall back to the database", "error", err.Error())
		cache = nil
	}

	feedSource, err := feed.NewSource(log)
	if err != nil {
		log.Warn("Issue feed unavailable; scheduled runs disabled until configured", "error", err.Error())
		feedSource = nil
	}

	return Clients{
		OpenAI:      openaiClient,
		Verifier:    verifierClient,
		Pinecone:    pineconeClient,
		VectorStore: vectorStore,
		Cache:       cache,
		Feed:        feedSource,
	}, nil
}
