package common

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ternarybob/arbor"
)

func TestSafeGoGroupRecoversPanics(t *testing.T) {
	var wg sync.WaitGroup
	ran := false

	SafeGoGroup(&wg, arbor.NewNoOpLogger(), "panics", func() {
		panic("boom")
	})
	SafeGoGroup(&wg, arbor.NewNoOpLogger(), "runs", func() {
		ran = true
	})

	wg.Wait()
	assert.True(t, ran)
}

func TestNewRequestID(t *testing.T) {
	a := NewRequestID()
	b := NewRequestID()

	assert.NotEqual(t, a, b)
	assert.Regexp(t, `^req_[0-9a-f-]{36}$`, a)
}
