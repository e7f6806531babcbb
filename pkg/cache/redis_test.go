package cache

import (
	"context"
	"strconv"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/typemnm/Mornoningo/pkg/config"
)

func TestNewRedisPings(t *testing.T) {
	mr := miniredis.RunT(t)
	host, portRaw, _ := strings.Cut(mr.Addr(), ":")
	port, err := strconv.Atoi(portRaw)
	require.NoError(t, err)

	client, err := NewRedis(context.Background(), config.RedisConfig{Host: host, Port: port})
	require.NoError(t, err)
	defer client.Close() //nolint:errcheck

	assert.Equal(t, mr.Addr(), client.Options().Addr)
}

func TestNewRedisFailsWhenUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	host, portRaw, _ := strings.Cut(mr.Addr(), ":")
	port, _ := strconv.Atoi(portRaw)
	mr.Close()

	_, err := NewRedis(context.Background(), config.RedisConfig{Host: host, Port: port})
	require.Error(t, err)
}
