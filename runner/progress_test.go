package runner

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spectral-sh/specrun/types"
)

func TestNoOpProgressIndicator(t *testing.T) {
	p := NewNoOpProgressIndicator()
	p.StartRun(3)
	p.StartFile("a.lua")
	p.CompleteFile("a.lua", types.TestStatusPass)
	p.CompleteRun(types.TestStatusPass)
}

func TestLogProgressIndicator_TracksFiles(t *testing.T) {
	p := NewLogProgressIndicator(log.New(), time.Hour).(*logProgressIndicator)

	p.StartRun(2)
	p.StartFile("a.lua")
	p.StartFile("b.lua")

	p.mu.Lock()
	assert.Len(t, p.running, 2)
	assert.Equal(t, 0, p.completed)
	p.mu.Unlock()

	p.CompleteFile("a.lua", types.TestStatusPass)

	p.mu.Lock()
	assert.Len(t, p.running, 1)
	assert.Equal(t, 1, p.completed)
	p.mu.Unlock()

	p.CompleteRun(types.TestStatusPass)

	p.mu.Lock()
	assert.Nil(t, p.stopCh, "reporter goroutine is signalled to stop")
	p.mu.Unlock()
}

func TestLogProgressIndicator_CompleteRunIdempotent(t *testing.T) {
	p := NewLogProgressIndicator(log.New(), time.Hour)
	p.StartRun(1)
	p.CompleteRun(types.TestStatusPass)
	require.NotPanics(t, func() {
		p.CompleteRun(types.TestStatusPass)
	})
}
