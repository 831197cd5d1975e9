package main

import (
	"flag"
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/invoicebox/backend/cmd"
)

// Set at build time with -ldflags "-X main.apiVersion=..."
var (
	apiVersion      = "dev"
	segmentWriteKey = ""
)

func main() {
	shouldRunMigrations := flag.Bool("migrations", false, "Run migrations")
	shouldRunServer := flag.Bool("server", false, "Run server")
	shouldRunWorker := flag.Bool("worker", false, "Run the task queue worker and the scheduler")
	envFile := flag.String("env-file", ".env", "Environment file, loaded if present")
	flag.Parse()

	if _, err := os.Stat(*envFile); err == nil {
		if err := godotenv.Load(*envFile); err != nil {
			log.Fatalf("could not load %s: %v", *envFile, err)
		}
	}

	compiledConfig := cmd.CompiledConfig{
		Version:         apiVersion,
		SegmentWriteKey: segmentWriteKey,
	}

	if *shouldRunMigrations {
		if err := cmd.RunMigrations(); err != nil {
			log.Fatal(err)
		}
	}

	if *shouldRunServer {
		if err := cmd.RunServer(compiledConfig); err != nil {
			log.Fatal(err)
		}
	}

	if *shouldRunWorker {
		if err := cmd.RunTaskQueue(compiledConfig); err != nil {
			log.Fatal(err)
		}
	}
}
