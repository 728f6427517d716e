package health

import "context"

// Response represents the health check response
type Response struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version,omitempty"`
}

type PingResponse struct {
	Message string `json:"message"`
}

// ReadyResponse reports whether dependencies are reachable
type ReadyResponse struct {
	Status string `json:"status"`
	Store  string `json:"store"`
	Error  string `json:"error,omitempty"`
}

// anything whose reachability gates readiness
type Pinger interface {
	Ping(ctx context.Context) error
}
