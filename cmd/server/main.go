package main

import (
	"log"
	"net/http"
	"strings"

	"github.com/floorwarden/warden/internal/bot"
	"github.com/floorwarden/warden/internal/cache"
	"github.com/floorwarden/warden/internal/config"
	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/services"
	"github.com/floorwarden/warden/internal/web"
)

func main() {
	conf := config.Conf
	if keys := config.InsecureDefaults(); len(keys) > 0 {
		log.Printf("WARNING: %s still use built-in defaults; set them before going to production", strings.Join(keys, ", "))
	}

	// Init DB (creates warden.db in working dir unless DATABASE_DSN says otherwise)
	if err := db.Init(conf.GetString("DATABASE_DSN")); err != nil {
		log.Fatalf("db init: %v", err)
	}
	if err := services.EnsureAdmin(conf.GetString("ADMIN_USERNAME"), conf.GetString("ADMIN_PASSWORD")); err != nil {
		log.Fatalf("bootstrap leader: %v", err)
	}
	services.SetCache(cache.New(conf.GetString("REDIS_ADDR")))
	bot.StartReminderLoop()

	r := web.Router()

	addr := conf.GetString("ADDR")
	log.Printf("Floor Warden listening on %s", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		log.Fatal(err)
	}
}
