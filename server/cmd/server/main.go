package main

import (
	"flag"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	cfg "github.com/automoto/haulers-mp/config"
	"github.com/automoto/haulers-mp/levels"
	"github.com/automoto/haulers-mp/server/audit"
	"github.com/automoto/haulers-mp/server/core"
	"github.com/automoto/haulers-mp/server/spectate"
	"github.com/automoto/haulers-mp/shared/protocol"
)

func main() {
	port := flag.Uint("port", 7373, "Server port")
	tickRate := flag.Int("tickrate", 0, "Server tick rate (updates per second, 0 = config)")
	name := flag.String("name", "Haulers Server", "Server display name")
	version := flag.String("version", "", "Required client version (empty = accept any)")
	levelsDir := flag.String("levels", "", "Directory of .tmx levels (empty = built-in levels)")
	levelName := flag.String("level", "", "Level to host (empty = first level)")
	configPath := flag.String("config", "", "YAML file overriding tuning values")
	catalogPath := flag.String("catalog", "", "Item type catalog (empty = built-in catalog)")
	auditDir := flag.String("audit", "", "Directory for the item event audit trail (empty = off)")
	spectateAddr := flag.String("spectate", "", "Address for the spectator stream, e.g. 127.0.0.1:7374 (empty = off)")
	spectateRemote := flag.Bool("spectate-remote", false, "Accept spectators from non-loopback addresses")
	records := flag.String("records", "", "App name for best-session records (empty = off)")
	flag.Parse()

	if *configPath != "" {
		if err := cfg.LoadOverrides(*configPath); err != nil {
			log.Fatalf("Failed to load config: %v", err)
		}
	}

	catalog := cfg.DefaultCatalog()
	if *catalogPath != "" {
		c, err := cfg.LoadCatalog(*catalogPath)
		if err != nil {
			log.Fatalf("Failed to load catalog: %v", err)
		}
		catalog = c
	}

	var levelFS fs.FS = levels.FS
	dir := "."
	if *levelsDir != "" {
		levelFS = os.DirFS(*levelsDir)
	}
	all, names, err := core.LoadLevelData(levelFS, dir)
	if err != nil {
		log.Fatalf("Failed to load levels: %v", err)
	}
	selected := names[0]
	if *levelName != "" {
		selected = *levelName
	}
	level, ok := all[selected]
	if !ok {
		log.Fatalf("Unknown level %q (have %v)", selected, names)
	}

	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalf("Failed to register components: %v", err)
	}

	opts := core.Options{
		Name:     *name,
		Version:  *version,
		TickRate: *tickRate,
		Level:    level,
		Catalog:  catalog,
	}

	var auditLog *audit.Log
	if *auditDir != "" {
		session := time.Now().UTC().Format("20060102-150405")
		auditLog, err = audit.Open(*auditDir, session)
		if err != nil {
			log.Fatalf("Failed to open audit log: %v", err)
		}
		opts.Sinks = append(opts.Sinks, auditLog)
	}

	if *spectateAddr != "" {
		hub := spectate.NewHub(*spectateRemote)
		opts.Sinks = append(opts.Sinks, hub)
		go func() {
			if err := hub.Serve(*spectateAddr); err != nil {
				log.Printf("[spectate] stopped: %v", err)
			}
		}()
	}

	if *records != "" {
		r, err := core.OpenRecords(*records)
		if err != nil {
			log.Printf("Records disabled: %v", err)
		} else {
			opts.Records = r
			if best, err := r.Best(level.Name); err == nil && best != nil {
				log.Printf("Best on %s: %.1f delivered", level.Name, best.DeliverableValue)
			}
		}
	}

	server, err := core.NewServer(opts)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Println("Shutting down server...")
		server.Stop()
		if auditLog != nil {
			if err := auditLog.Close(); err != nil {
				log.Printf("[audit] close: %v", err)
			}
		}
		os.Exit(0)
	}()

	log.Printf("Starting Haulers server %q on port %d (level: %s, version: %s)",
		*name, *port, level.Name, *version)
	if err := server.Start(*port); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
