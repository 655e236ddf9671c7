// Package main prints the translation status of the embedded catalogs.
package main

import (
	"flag"
	"os"

	"github.com/louisbranch/bookstore/internal/platform/config"
	"github.com/louisbranch/bookstore/internal/platform/i18n/catalog"
	"github.com/louisbranch/bookstore/internal/tools/i18nstatus"
)

func main() {
	cfg, err := i18nstatus.ParseConfig(flag.CommandLine, os.Args[1:])
	if err != nil {
		config.Exitf("parse flags: %v", err)
	}
	bundle, err := catalog.LoadEmbedded()
	if err != nil {
		config.Exitf("load catalogs: %v", err)
	}
	if err := i18nstatus.Run(cfg, bundle, os.Stdout); err != nil {
		config.Exitf("i18n status: %v", err)
	}
}
