// Moodwall is the message board daemon.
//
// It serves the board API, classifies each posted message's intention
// against a reference embedding table, masks toxic messages and publishes
// board events over NATS.
//
// Usage:
//
//	# Start the daemon
//	moodwall [-config moodwall.yaml]
//
//	# Show version information
//	moodwall version
//
//	# Embed the default seed phrases and write a reference table
//	moodwall [-config moodwall.yaml] references -o references.yaml
//
// Configuration comes from defaults, the optional YAML file and MOODWALL_*
// environment variables. See internal/config for details.
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to YAML config file")
	flag.Parse()
	args := flag.Args()

	if len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion(os.Stdout)
			return
		case "references":
			if err := runReferences(context.Background(), *configPath, args[1:], os.Stdout); err != nil {
				fmt.Fprintf(os.Stderr, "references: %v\n", err)
				os.Exit(1)
			}
			return
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  moodwall                          Start the moodwall daemon\n")
			fmt.Fprintf(os.Stderr, "  moodwall version                  Show version information\n")
			fmt.Fprintf(os.Stderr, "  moodwall references [-o file]     Write a reference table\n")
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		log.Fatalf("Server error: %v", err)
	}
	log.Println("Server shutdown complete")
}

// printVersion prints version information
func printVersion(w io.Writer) {
	fmt.Fprintf(w, "moodwall by Fyrsmith Labs\n")
	fmt.Fprintf(w, "Version:    %s\n", version)
	fmt.Fprintf(w, "Commit:     %s\n", gitCommit)
	fmt.Fprintf(w, "Build Date: %s\n", buildDate)
}
