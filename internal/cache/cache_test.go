package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestNewRedisWithoutClientIsNoop(t *testing.T) {
	c := NewRedis(nil, "enquiry:")
	require.IsType(t, Noop{}, c)

	ctx := context.Background()
	require.NoError(t, c.Set(ctx, "k", []string{"v"}, time.Minute))

	var out []string
	found, err := c.Get(ctx, "k", &out)
	require.NoError(t, err)
	require.False(t, found)
	require.Nil(t, out)
	require.NoError(t, c.Delete(ctx, "k"))
}
