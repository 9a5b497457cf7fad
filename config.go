package main

import (
	"context"
	"log"
	"os"

	"GoACE/app/configs"
	"GoACE/app/models"
	"GoACE/app/playbook"
	"GoACE/app/rag"
	"GoACE/app/storage"
)

const (
	defaultModel          = "openai/gpt-oss-20b"
	defaultEmbeddingModel = "text-embedding-nomic-embed-text-v1.5@q8_0"
)

func getConfigPath() string {
	if len(os.Args) > 1 {
		return os.Args[1]
	}
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		return path
	}
	return "config.yaml"
}

func getDB() storage.Interface {
	return storage.NewSQLiteStorage()
}

func getModel(cfg *configs.Config) models.Interface {
	model := cfg.Model.Name
	if model == "" {
		model = defaultModel
	}
	embModel := cfg.Model.EmbeddingsModel
	if embModel == "" {
		embModel = defaultEmbeddingModel
	}
	return models.NewLLMClient(cfg.Model.BaseURL, model, embModel)
}

func getStore(ctx context.Context, db storage.Interface) *playbook.Store {
	entries, err := db.LoadPlaybook(ctx)
	if err != nil {
		log.Printf("⚠️ Error loading playbook, starting empty: %v", err)
		return playbook.NewStore()
	}
	log.Printf("📚 Playbook loaded with %d entries", len(entries))
	return playbook.Load(entries)
}

func getRetriever(ctx context.Context, cfg *configs.Config, model models.Interface, store *playbook.Store) rag.Interface {
	if !cfg.Retriever.Enabled {
		return nil
	}
	retriever, err := rag.NewClient(model)
	if err != nil {
		log.Printf("⚠️ Retriever unavailable, continuing without it: %v", err)
		return nil
	}
	if err = retriever.InitContext(ctx); err != nil {
		log.Printf("⚠️ Retriever init failed, continuing without it: %v", err)
		return nil
	}
	if err = retriever.IndexEntries(ctx, store.Entries()); err != nil {
		log.Printf("⚠️ Error indexing existing playbook: %v", err)
	}
	return retriever
}
