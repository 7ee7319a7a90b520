// Package loadbalancer rotates the gateway's proxy target across the recon
// service replicas named in RECON_BACKENDS.
package loadbalancer

import "sync"

type LoadBalancer struct {
	backends []string
	mu       sync.Mutex
	next     int
}

func New(backends []string) *LoadBalancer {
	return &LoadBalancer{backends: backends}
}

// NextBackend returns the next replica in round-robin order, or "" when the
// pool is empty.
func (lb *LoadBalancer) NextBackend() string {
	lb.mu.Lock()
	defer lb.mu.Unlock()

	if len(lb.backends) == 0 {
		return ""
	}
	backend := lb.backends[lb.next]
	lb.next = (lb.next + 1) % len(lb.backends)
	return backend
}

// Len reports the pool size, for startup logging.
func (lb *LoadBalancer) Len() int {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	return len(lb.backends)
}
