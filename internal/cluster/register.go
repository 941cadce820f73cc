// Package cluster registers the server with Consul so infrastructure
// that already discovers services through an agent can find game
// servers the same way.
package cluster

import (
	"fmt"
	"log/slog"
	"os"

	consul "github.com/hashicorp/consul/api"
)

// Register announces the service to the local Consul agent, with an
// HTTP health check against the health endpoint. The returned function
// deregisters the service; call it on shutdown.
func Register(consulAddr, serviceName string, servicePort, healthPort int) (func(), error) {
	config := consul.DefaultConfig()
	if consulAddr != "" {
		config.Address = consulAddr
	}

	client, err := consul.NewClient(config)
	if err != nil {
		return nil, fmt.Errorf("consul client: %w", err)
	}

	hostname := os.Getenv("HOSTNAME")
	if hostname == "" {
		hostname, _ = os.Hostname()
	}
	serviceID := fmt.Sprintf("%s-%s", serviceName, hostname)

	registration := &consul.AgentServiceRegistration{
		ID:   serviceID,
		Name: serviceName,
		Port: servicePort,
		Check: &consul.AgentServiceCheck{
			HTTP:                           fmt.Sprintf("http://%s:%d/health", hostname, healthPort),
			Timeout:                        "5s",
			Interval:                       "10s",
			DeregisterCriticalServiceAfter: "1m",
		},
	}

	if err := client.Agent().ServiceRegister(registration); err != nil {
		return nil, fmt.Errorf("consul register: %w", err)
	}

	slog.Info("registered with consul", "service", serviceName, "id", serviceID)

	return func() {
		if err := client.Agent().ServiceDeregister(serviceID); err != nil {
			slog.Warn("consul deregister failed", "id", serviceID, "error", err)
		}
	}, nil
}
