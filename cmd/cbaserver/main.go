package main

import (
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/iafilius/CBACharts/src/config"
	"github.com/iafilius/CBACharts/src/decision"
	"github.com/iafilius/CBACharts/src/logging"
	"github.com/iafilius/CBACharts/src/server"
)

func main() {
	cfg, err := config.Parse(os.Args[1:])
	if err != nil {
		logging.Errorf("error parsing flags: %v", err)
		os.Exit(2)
	}
	logging.SetLevel(cfg.LogLevel)

	var payload decision.Payload
	if cfg.Payload != "" {
		payload, err = decision.LoadDocument(cfg.Payload)
		if err != nil {
			logging.Errorf("load payload: %v", err)
			os.Exit(1)
		}
		logging.Infof("loaded %d rows from %s", len(payload.Records), cfg.Payload)
	} else {
		logging.Warnf("no payload configured (use -payload or CBA_PAYLOAD); serving an empty dashboard")
	}

	srv, err := server.New(server.Options{Config: cfg, Payload: payload})
	if err != nil {
		logging.Errorf("server setup: %v", err)
		os.Exit(1)
	}
	defer srv.Close()

	httpServer := http.Server{Addr: cfg.Addr, Handler: srv.Handler()}

	// signal.Notify requires the channel to be buffered
	ctrlc := make(chan os.Signal, 1)
	signal.Notify(ctrlc, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-ctrlc
		httpServer.Close()
	}()

	logging.Infof("listening on %s (chart library: %s)", cfg.Addr, cfg.ChartLibrary)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logging.Errorf("server closed: %v", err)
		os.Exit(1)
	}
	logging.Infof("server closed")
}
