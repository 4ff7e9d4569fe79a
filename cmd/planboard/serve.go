package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/example/planboard/internal/api"
	"github.com/example/planboard/internal/discovery"
	"github.com/example/planboard/internal/store"
	"github.com/example/planboard/internal/telemetry"
	"github.com/example/planboard/internal/transport"
)

const defaultDatabase = "planboard.db"

type serveCmd struct {
	*root
	fs       *flag.FlagSet
	addr     string
	database string
	name     string
	noMDNS   bool
	floors   floorSpec
}

func (s *serveCmd) FlagSet() *flag.FlagSet { return s.fs }

func (s *serveCmd) Program() string { return s.root.program + " serve" }

func parseServeCmd(args []string, r *root) (*serveCmd, error) {
	s := &serveCmd{root: r}
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	fs.StringVar(&s.addr, "addr", ":8080", "address to listen on")
	fs.StringVar(&s.database, "database", "", "sqlite file or postgres:// DSN (default "+defaultDatabase+")")
	fs.StringVar(&s.name, "name", "", "name announced on the local network (default host name)")
	fs.BoolVar(&s.noMDNS, "no-mdns", false, "do not announce the server on the local network")
	fs.Var(&s.floors, "floor", "register a floor as name=image; repeatable")
	fs.Usage = usageFunc(s)
	s.fs = fs
	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	if fs.NArg() > 0 {
		return nil, &UsageError{of: s, msg: fmt.Sprintf("unexpected argument %q", fs.Arg(0))}
	}
	if s.database == "" {
		s.database = r.config.Database
	}
	if s.database == "" {
		s.database = defaultDatabase
	}
	return s, nil
}

func (s *serveCmd) Run() error {
	shutdownTracing, err := telemetry.Init("planboard", version, s.config.Jaeger)
	if err != nil {
		log.Printf("tracing disabled: %v", err)
		shutdownTracing = func(context.Context) error { return nil }
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(ctx); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	db, err := store.OpenGorm(s.database)
	if err != nil {
		return err
	}
	defer db.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	for _, f := range s.floors {
		if err := db.PutFloor(ctx, f); err != nil {
			return fmt.Errorf("register floor %s: %w", f.Name, err)
		}
		log.Printf("floor %s (%s) from %s", f.ID, f.Name, f.Image)
	}

	hub := transport.NewHub()
	go hub.Run(ctx)
	defer hub.Close()

	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.addr, err)
	}
	server := &http.Server{
		Handler:           api.NewRouter(api.NewHandler(db), hub),
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Printf("listening on http://%s", ln.Addr())
		if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	if !s.noMDNS {
		port := ln.Addr().(*net.TCPAddr).Port
		ad, err := discovery.Advertise(s.name, port, "planboard "+version)
		if err != nil {
			log.Printf("mdns: %v", err)
		} else {
			defer ad.Shutdown()
		}
	}

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	log.Printf("shutting down")
	sctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := server.Shutdown(sctx); err != nil {
		fmt.Fprintf(os.Stderr, "server forced to shut down: %v\n", err)
	}
	return nil
}
