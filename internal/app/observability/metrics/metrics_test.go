package metrics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet_InitializesLazily(t *testing.T) {
	m := Get()
	require.NotNil(t, m)
	assert.Same(t, m, Get())

	assert.NotPanics(t, func() {
		m.RecordAuth(context.Background(), "login", "success")
		m.RecordGuard(context.Background(), "allow", "/dashboard")
	})
}
