package main

import (
	"io"
	"log"
	"os"

	"basket/internal/cache"
	"basket/internal/config"
	"basket/internal/http/handlers"
	applog "basket/internal/log"
	"basket/internal/repos"
)

func main() {
	cfg := config.Load()

	// Optional file logging
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
		if err != nil {
			log.Printf("[warn] could not open log file %s: %v", cfg.LogFile, err)
		} else {
			defer f.Close()
			log.SetOutput(io.MultiWriter(os.Stdout, f))
		}
	}

	db, err := repos.OpenDB(cfg.DBDSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	var c cache.Cache = cache.Noop{}
	if cfg.RedisAddr != "" {
		r, err := cache.NewRedis(cfg.RedisAddr, cfg.CacheTTL)
		if err != nil {
			// the API still works straight off the database
			applog.Event("cache.disabled", err, map[string]any{"addr": cfg.RedisAddr})
		} else {
			defer r.Close()
			c = r
		}
	}

	app := handlers.NewApp(handlers.NewDeps(db, cfg, c))
	applog.Event("server.start", nil, map[string]any{"port": cfg.Port})
	if err := app.Listen(":" + cfg.Port); err != nil {
		log.Fatal(err)
	}
}
