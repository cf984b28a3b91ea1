// Command dustd runs the dust daemon: library database, scanner, DLSite
// client, HTTP API, and IPC socket. The dust CLI launches it detached via
// `dust daemon start` and talks to it over the socket.
package main

import (
	"context"
	"flag"
	"log"

	"dust/internal/daemonrun"
)

func main() {
	configPath := flag.String("config", "", "Configuration file path")
	logLevel := flag.String("log-level", "", "Log level override (debug, info, warn, error)")
	dev := flag.Bool("dev", false, "Enable development logging")
	flag.Parse()

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	opts := daemonrun.Options{
		LogLevel:    resolveLogLevel(*logLevel, cfg),
		Development: *dev,
	}
	if err := daemonrun.Run(context.Background(), cfg, opts); err != nil {
		log.Fatalf("dustd: %v", err)
	}
}
