// Package discovery registers the service with a Consul agent.
package discovery

import (
	"fmt"

	consulapi "github.com/hashicorp/consul/api"
	"github.com/rs/zerolog"
)

// Registration describes a service instance and its HTTP health endpoint.
type Registration struct {
	ID        string
	Name      string
	Address   string
	Port      int
	Tags      []string
	HealthURL string
}

// ConsulRegistry registers and deregisters service instances with the local agent.
type ConsulRegistry struct {
	client *consulapi.Client
	logger *zerolog.Logger
}

// NewConsulRegistry creates a registry talking to the agent at addr (host:port).
func NewConsulRegistry(addr string, logger *zerolog.Logger) (*ConsulRegistry, error) {
	cfg := consulapi.DefaultConfig()
	cfg.Address = addr

	client, err := consulapi.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("create consul client: %w", err)
	}

	return &ConsulRegistry{client: client, logger: logger}, nil
}

// Register announces the instance. Consul drops it if the health check stays critical.
func (r *ConsulRegistry) Register(reg Registration) error {
	svc := &consulapi.AgentServiceRegistration{
		ID:      reg.ID,
		Name:    reg.Name,
		Address: reg.Address,
		Port:    reg.Port,
		Tags:    reg.Tags,
	}
	if reg.HealthURL != "" {
		svc.Check = &consulapi.AgentServiceCheck{
			HTTP:                           reg.HealthURL,
			Interval:                       "10s",
			Timeout:                        "2s",
			DeregisterCriticalServiceAfter: "1m",
		}
	}

	if err := r.client.Agent().ServiceRegister(svc); err != nil {
		return fmt.Errorf("register service %s: %w", reg.ID, err)
	}

	r.logger.Info().Str("service_id", reg.ID).Str("name", reg.Name).Msg("registered with consul")
	return nil
}

// Deregister removes the instance from the agent.
func (r *ConsulRegistry) Deregister(id string) error {
	if err := r.client.Agent().ServiceDeregister(id); err != nil {
		return fmt.Errorf("deregister service %s: %w", id, err)
	}

	r.logger.Info().Str("service_id", id).Msg("deregistered from consul")
	return nil
}
