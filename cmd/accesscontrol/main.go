// Package main starts the access-control gRPC service.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	accesscontrolcmd "github.com/louisbranch/bookstore/internal/cmd/accesscontrol"
	"github.com/louisbranch/bookstore/internal/platform/config"
)

func main() {
	cfg, err := accesscontrolcmd.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := accesscontrolcmd.Run(ctx, cfg); err != nil {
		config.Exitf("failed to serve: %v", err)
	}
}
