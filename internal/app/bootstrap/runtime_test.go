package bootstrap

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/require"

	appconfig "github.com/medicarehq/pharmacy-web/internal/config"
	"github.com/medicarehq/pharmacy-web/pkg/logging"
)

func TestBuildRedisClient_VerifySucceeds(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	cfg := &appconfig.Config{RedisAddr: mr.Addr()}
	client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true)
	require.NotNil(t, client)
	require.NoError(t, client.Close())
}

func TestBuildRedisClient_VerifyFailsWhenUnreachable(t *testing.T) {
	cfg := &appconfig.Config{RedisAddr: "127.0.0.1:1"}
	client := BuildRedisClient(context.Background(), cfg, logging.New("error"), true)
	require.Nil(t, client)
}

func TestBuildRedisClient_NoVerifySkipsPing(t *testing.T) {
	cfg := &appconfig.Config{RedisAddr: "127.0.0.1:1"}
	client := BuildRedisClient(context.Background(), cfg, logging.New("error"), false)
	require.NotNil(t, client)
	require.NoError(t, client.Close())
}
