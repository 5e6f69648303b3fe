package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ytget/yt-grabber/internal/download"
)

const metricsShutdownTimeout = 5 * time.Second

// serveMetrics exposes the task metrics of svc under /metrics and returns the
// bound address
func serveMetrics(addr string, svc *download.Service) (string, func(), error) {
	reg := prometheus.NewRegistry()
	svc.SetMetrics(download.NewMetrics(reg))

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return "", nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("metrics server: %v", err)
		}
	}()
	log.Printf("serving metrics on %s/metrics", ln.Addr())

	return ln.Addr().String(), func() {
		ctx, cancel := context.WithTimeout(context.Background(), metricsShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Printf("metrics server shutdown: %v", err)
		}
	}, nil
}
