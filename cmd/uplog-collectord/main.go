// Copyright (C) 2022 NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package main

import (
	"context"
	"crypto/tls"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/google/gops/agent"
	"github.com/gorilla/handlers"

	"github.com/uplog-go/uplog/internal/collector"
	"github.com/uplog-go/uplog/internal/config"
	"github.com/uplog-go/uplog/internal/housekeeping"
	"github.com/uplog-go/uplog/internal/readerapi"
	"github.com/uplog-go/uplog/internal/storage"
	"github.com/uplog-go/uplog/pkg/log"
)

func main() {
	var flagConfigFile string
	var flagLogLevel string
	flag.StringVar(&flagConfigFile, "config", "", "Overwrite the global config options by those specified in `config.json`")
	flag.StringVar(&flagLogLevel, "loglevel", "", "Set the minimum severity to log (overrides config file)")
	flag.Parse()

	if err := config.Init(flagConfigFile); err != nil {
		log.Fatal(err.Error())
	}

	if flagLogLevel != "" {
		config.Keys.LogLevel = flagLogLevel
	}
	if config.Keys.LogLevel != "" {
		log.SetLogLevel(config.Keys.LogLevel)
	}

	if config.Keys.GopsAddr != "" {
		if err := agent.Listen(agent.Options{Addr: config.Keys.GopsAddr}); err != nil {
			log.Fatalf("gops/agent.Listen failed: %s", err.Error())
		}
	}

	ctx := context.Background()
	backend, err := storage.NewBackend(ctx, config.Keys.Backend, config.Keys.StorageRoot)
	if err != nil {
		log.Fatal(err.Error())
	}

	if config.Keys.HousekeepingIntervalSeconds > 0 {
		interval := time.Duration(config.Keys.HousekeepingIntervalSeconds) * time.Second
		if err := housekeeping.Start(backend, interval); err != nil {
			log.Fatal(err.Error())
		}
	}

	var wg sync.WaitGroup

	collectorSrv := startCollector(backend, &wg)
	readerSrv := startReaderAPI(backend, &wg)

	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM)
	<-sigs
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if collectorSrv != nil {
		collectorSrv.Shutdown(shutdownCtx)
	}
	if readerSrv != nil {
		readerSrv.Shutdown(shutdownCtx)
	}
	housekeeping.Shutdown()

	wg.Wait()
	log.Info("graceful shutdown completed")
}

// startCollector wires internal/collector's websocket handler into an
// http.Server on config.Keys.ListenAddr, mirroring server.go's
// listener-then-serve-in-goroutine shape.
func startCollector(backend storage.Backend, wg *sync.WaitGroup) *http.Server {
	srv := collector.New(backend)

	httpSrv := &http.Server{
		Addr:    config.Keys.ListenAddr,
		Handler: srv,
	}

	listener, err := net.Listen("tcp", config.Keys.ListenAddr)
	if err != nil {
		log.Fatalf("collector: listen on %s failed: %v", config.Keys.ListenAddr, err)
	}

	if config.Keys.TLSCertFile != "" && config.Keys.TLSKeyFile != "" {
		cert, err := tls.LoadX509KeyPair(config.Keys.TLSCertFile, config.Keys.TLSKeyFile)
		if err != nil {
			log.Fatalf("collector: loading X509 keypair failed: %v", err)
		}
		listener = tls.NewListener(listener, &tls.Config{
			Certificates: []tls.Certificate{cert},
			MinVersion:   tls.VersionTLS12,
		})
		log.Infof("collector: wss listening at %s", config.Keys.ListenAddr)
	} else {
		log.Infof("collector: ws listening at %s", config.Keys.ListenAddr)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := httpSrv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Fatalf("collector: serve failed: %v", err)
		}
	}()

	return httpSrv
}

// startReaderAPI optionally wires internal/readerapi on its own listen
// address. Empty ReaderAddr disables it entirely.
func startReaderAPI(backend storage.Backend, wg *sync.WaitGroup) *http.Server {
	if config.Keys.ReaderAddr == "" {
		return nil
	}

	handler := handlers.RecoveryHandler(handlers.PrintRecoveryStack(true))(readerapi.New(backend).Handler())
	httpSrv := &http.Server{
		Addr:    config.Keys.ReaderAddr,
		Handler: handler,
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		log.Infof("readerapi: listening at %s", config.Keys.ReaderAddr)
		if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("readerapi: serve failed: %v", err)
		}
	}()

	return httpSrv
}
