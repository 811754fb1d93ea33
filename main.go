package main

import (
	"errors"
	"os"

	"github.com/fatih/color"

	"github.com/crawlkit/sqlgen/cmd"
	"github.com/crawlkit/sqlgen/internal/generator"
	"github.com/crawlkit/sqlgen/internal/schema"
)

// Exit codes, one per failure class, so callers can script against them.
const (
	exitOK           = 0
	exitConfig       = 1
	exitConnectivity = 2
	exitSchema       = 3
	exitIO           = 4
)

func main() {
	err := cmd.Execute()
	if err == nil {
		os.Exit(exitOK)
	}

	color.Red("❌ %v", err)

	var connErr *schema.ConnectivityError
	var notFound *schema.TableNotFoundError
	var collision *schema.NameCollisionError
	var writeErr *generator.WriteError
	switch {
	case errors.As(err, &connErr):
		os.Exit(exitConnectivity)
	case errors.As(err, &notFound), errors.As(err, &collision):
		os.Exit(exitSchema)
	case errors.As(err, &writeErr):
		os.Exit(exitIO)
	default:
		os.Exit(exitConfig)
	}
}
