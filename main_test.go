package main

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
)

func newQuietEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	return e
}

func TestListenAndServeFailsOnOccupiedPort(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()

	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(newQuietEcho(), ln.Addr().String()) }()

	select {
	case err := <-errCh:
		if err == nil {
			t.Fatal("expected an error binding an occupied port")
		}
	case <-time.After(5 * time.Second):
		t.Fatal("bind failure did not surface; the server would hang without a listener")
	}
}

func TestListenAndServeTreatsShutdownAsClean(t *testing.T) {
	e := newQuietEcho()

	errCh := make(chan error, 1)
	go func() { errCh <- listenAndServe(e, "127.0.0.1:0") }()

	// Wait for the listener before shutting down
	for i := 0; i < 100 && e.ListenerAddr() == nil; i++ {
		time.Sleep(10 * time.Millisecond)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown: %v", err)
	}

	if err := <-errCh; err != nil {
		t.Fatalf("graceful shutdown must not report an error, got %v", err)
	}
}
