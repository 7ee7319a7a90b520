package loadbalancer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextBackend_RoundRobinWraps(t *testing.T) {
	lb := New([]string{"http://localhost:7143", "http://localhost:7144"})

	assert.Equal(t, "http://localhost:7143", lb.NextBackend())
	assert.Equal(t, "http://localhost:7144", lb.NextBackend())
	assert.Equal(t, "http://localhost:7143", lb.NextBackend())
	assert.Equal(t, 2, lb.Len())
}

func TestNextBackend_EmptyPool(t *testing.T) {
	lb := New(nil)

	assert.Equal(t, "", lb.NextBackend())
	assert.Equal(t, 0, lb.Len())
}

func TestNextBackend_SingleBackend(t *testing.T) {
	lb := New([]string{"http://localhost:7143"})

	for i := 0; i < 3; i++ {
		assert.Equal(t, "http://localhost:7143", lb.NextBackend())
	}
}
