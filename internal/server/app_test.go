package server

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/dmitrijs2005/drawersync/internal/logging"
	"github.com/dmitrijs2005/drawersync/internal/server/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func freeAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func TestNewApp_UnknownStorage(t *testing.T) {
	_, err := NewApp(context.Background(), &config.Config{Storage: "tape"}, logging.Discard())
	assert.Error(t, err)
}

func TestApp_RunStopsOnCancel(t *testing.T) {
	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.HTTPAddr = freeAddr(t)

	app, err := NewApp(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		app.Run(ctx)
		close(done)
	}()

	require.Eventually(t, func() bool {
		c, err := net.Dial("tcp", cfg.HTTPAddr)
		if err != nil {
			return false
		}
		_ = c.Close()
		return true
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("app did not stop")
	}
}

func TestApp_RunReturnsOnListenError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := &config.Config{}
	cfg.LoadDefaults()
	cfg.HTTPAddr = ln.Addr().String()

	app, err := NewApp(context.Background(), cfg, logging.Discard())
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		app.Run(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("app did not return")
	}
}
