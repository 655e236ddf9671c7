// Package main prints a fresh session cookie signing key for the web service.
package main

import (
	"flag"
	"os"

	"github.com/louisbranch/bookstore/internal/platform/config"
	"github.com/louisbranch/bookstore/internal/tools/hmackey"
)

func main() {
	cfg, err := hmackey.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	if err := hmackey.Run(cfg, os.Stdout, nil); err != nil {
		config.Exitf("generate key: %v", err)
	}
}
