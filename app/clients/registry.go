package clients

import (
	"fmt"
	"log"
	"sync"

	"GoACE/app/cycle"
)

// Config defines the configuration for a client connector
type Config struct {
	Type    string            `yaml:"type" json:"type" validate:"required,oneof=discord"`
	Enabled bool              `yaml:"enabled" json:"enabled"`
	Config  map[string]string `yaml:"config,omitempty" json:"config,omitempty"`
}

type Registry struct {
	mu      sync.RWMutex
	clients []Interface
}

func NewRegistry() *Registry {
	return &Registry{
		clients: make([]Interface, 0),
	}
}

func (r *Registry) Register(client Interface, ct *cycle.Controller) error {
	if client == nil {
		return fmt.Errorf("nil client")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.clients = append(r.clients, client)
	client.Subscribe(ct)

	return nil
}

func (r *Registry) GetAll() []Interface {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Interface, len(r.clients))
	copy(out, r.clients)
	return out
}

func CreateClient(cfg Config) (Interface, error) {
	switch cfg.Type {
	case "discord":
		dc := NewDiscordClient(cfg.Config)
		if dc == nil {
			return nil, fmt.Errorf("discord client not configured, set DISCORD_TOKEN")
		}
		return dc, nil
	default:
		log.Printf("⚠️ Unknown client type: %s", cfg.Type)
		return nil, fmt.Errorf("unknown client type %q", cfg.Type)
	}
}
