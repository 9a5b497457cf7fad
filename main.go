package main

import (
	"context"
	"log"

	"GoACE/app/clients"
	"GoACE/app/configs"
	"GoACE/app/cycle"
	"GoACE/app/utils"
)

func main() {
	ctx := context.Background()

	cfg, err := configs.LoadConfig(getConfigPath())
	if err != nil {
		log.Fatalf("❌ Error loading configs: %v", err)
	}

	db := getDB()
	model := getModel(cfg)
	store := getStore(ctx, db)
	retriever := getRetriever(ctx, cfg, model, store)

	controller := cycle.NewController(model, store, db, retriever, cfg.CurationWeights(), cfg.CurationTieBreak())

	audit, err := utils.NewAuditLogger("cycles", "\033[36m", 200)
	if err != nil {
		log.Fatalf("❌ Error creating audit logger: %v", err)
	}
	defer audit.Close()
	controller.OnCycleComplete(func(rec *cycle.Record, err error) {
		if err != nil {
			audit.Printf("❌ Cycle %s failed at %s: %v", rec.ID, rec.State, err)
			return
		}
		audit.Printf("🎉 Cycle %s complete:\n%s", rec.ID, rec.RenderTree())
	})

	registry := clients.NewRegistry()
	if err = cfg.InitializeClients(registry, controller); err != nil {
		log.Fatalf("❌ Error initializing clients: %v", err)
	}
	for _, cl := range registry.GetAll() {
		if attacher, ok := cl.(interface{ AttachAudit(*utils.AuditLogger) }); ok {
			attacher.AttachAudit(audit)
		}
	}

	if cfg.Task != "" {
		controller.QueueEvent(cycle.Event{
			Task:        cfg.Task,
			HandlerFunc: cycle.EventsHandlerFuncDefault[cycle.NewCycle],
		})
	}

	controller.Start()
}
