package memory

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/JonMunkholm/leads/internal/identity"
)

// Agents is an in-memory identity.AgentStore keyed by lowercased email.
type Agents struct {
	mu     sync.RWMutex
	agents map[string]identity.Agent
}

var _ identity.AgentStore = (*Agents)(nil)

// NewAgents creates an empty agent store.
func NewAgents() *Agents {
	return &Agents{agents: make(map[string]identity.Agent)}
}

func (a *Agents) AgentByEmail(_ context.Context, email string) (identity.Agent, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	agent, ok := a.agents[strings.ToLower(email)]
	if !ok {
		return identity.Agent{}, identity.ErrAgentNotFound
	}
	return agent, nil
}

func (a *Agents) InsertAgent(_ context.Context, agent identity.Agent) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := strings.ToLower(agent.Email)
	if _, exists := a.agents[key]; exists {
		return fmt.Errorf("duplicate key: agent %s", key)
	}
	a.agents[key] = agent
	return nil
}
