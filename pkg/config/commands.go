package config

import (
	"fmt"
	"strings"
)

// Admin operations understood by the topic admin tool.
const (
	OpCreate   = "create"
	OpDestroy  = "destroy"
	OpShutdown = "shutdown"
)

// BrokerCommand starts the container with the pub/sub service activated.
func (cfg *Config) BrokerCommand() string {
	s := cfg.Service
	return join(
		cfg.Bin.Broker,
		cfg.ClientServerOptions,
		cfg.managerEndpoints(),
		fmt.Sprintf("--%s.Service.%s=%s", s.Container, s.Name, s.Factory),
		fmt.Sprintf("--%s.TopicManager.Endpoints=%s", s.Name, quote(s.TopicManagerEndpoints)),
		fmt.Sprintf("--%s.PrintServicesReady=%s", s.Container, s.Name),
		fmt.Sprintf("--%s.DBEnvName.%s=%s", s.Container, s.Name, quote(cfg.DBDirPath())),
	)
}

// TopicAdminCommand runs one topic operation (create or destroy) against the topic manager.
func (cfg *Config) TopicAdminCommand(op string) string {
	return join(
		cfg.Bin.TopicAdmin,
		cfg.ClientOptions,
		cfg.TopicManagerReference(),
		"-e", quote(op+" "+cfg.Topic),
	)
}

// ShutdownCommand asks the container's service manager to shut down.
func (cfg *Config) ShutdownCommand() string {
	return join(cfg.Bin.BrokerAdmin, cfg.ClientOptions, cfg.managerEndpoints(), OpShutdown)
}

func (cfg *Config) SubscriberCommand() string {
	return join(cfg.Bin.Subscriber, cfg.ClientServerOptions, cfg.TopicManagerReference(), quote(cfg.LockFilePath()))
}

func (cfg *Config) PublisherCommand() string {
	return join(cfg.Bin.Publisher, cfg.ClientOptions, cfg.TopicManagerReference())
}

// TopicManagerReference is the proxy option clients use to reach the topic manager.
func (cfg *Config) TopicManagerReference() string {
	s := cfg.Service
	return fmt.Sprintf("--%s.TopicManager.Proxy=%s", s.Name, quote(s.TopicManagerIdentity+":"+s.TopicManagerEndpoints))
}

// BrokerReadyMarker is the line the container prints once the service is up.
func (cfg *Config) BrokerReadyMarker() string {
	if strings.Contains(cfg.Service.ReadyMarker, "%s") {
		return fmt.Sprintf(cfg.Service.ReadyMarker, cfg.Service.Name)
	}
	return cfg.Service.ReadyMarker
}

func (cfg *Config) managerEndpoints() string {
	return fmt.Sprintf("--%s.ServiceManager.Endpoints=%s", cfg.Service.Container, quote(cfg.Service.ManagerEndpoints))
}

func join(parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, " ")
}

// quote wraps v in double quotes when it would not survive shell-style splitting.
func quote(v string) string {
	if v != "" && !strings.ContainsAny(v, " \t\"'\\") {
		return v
	}
	r := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	return `"` + r.Replace(v) + `"`
}
