package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/cartier55/coachbox-backend/internal/config"
	"github.com/cartier55/coachbox-backend/internal/database"
	"github.com/cartier55/coachbox-backend/internal/handler"
	"github.com/cartier55/coachbox-backend/internal/queue"
	"github.com/cartier55/coachbox-backend/internal/repository"
	"github.com/cartier55/coachbox-backend/internal/router"
	"github.com/cartier55/coachbox-backend/internal/scrape"
	"github.com/cartier55/coachbox-backend/internal/service"
	"github.com/cartier55/coachbox-backend/internal/ws"
)

// defaultSlotTemplate seeds the weekly template on first boot. Admins
// reshape it in the database afterwards.
var defaultSlotTemplate = []string{
	"06:00 AM",
	"09:00 AM",
	"12:00 PM",
	"04:00 PM",
	"05:00 PM",
	"06:00 PM",
}

func main() {
	// .env is a development convenience; in deployment the variables come
	// from the environment itself.
	_ = godotenv.Load()

	cfg := config.Load()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	defer db.Close()

	bootCtx, bootCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer bootCancel()

	if err := database.EnsureSchema(bootCtx, db); err != nil {
		log.Fatalf("database: schema: %v", err)
	}

	// Repositories.
	users := repository.NewUserRepo(db)
	tokens := repository.NewTokenRepo(db)
	events := repository.NewEventRepo(db)
	slots := repository.NewSlotRepo(db)
	materials := repository.NewMaterialsRepo(db)
	keys := repository.NewAPIKeyRepo(db)
	comments := repository.NewCommentRepo(db)

	if err := slots.Seed(bootCtx, defaultSlotTemplate); err != nil {
		log.Printf("slots: seeding template failed: %v", err)
	}

	// Optional infrastructure: Redis for caching/throttling, RabbitMQ for
	// notifications. Both degrade to no-ops when absent.
	rdb := config.NewRedisClient()
	notify := queue.NewPublisher(cfg.AMQPURL)
	if cfg.AMQPURL != "" {
		go queue.StartNotificationConsumer(cfg.AMQPURL)
	}

	// Services.
	tokenSvc := service.NewTokenService(tokens, users, cfg.AccessSecret, cfg.RefreshSecret, cfg.AccessTTLMin, cfg.RefreshTTLDays)
	hub := ws.NewHub()
	presence := service.NewPresenceTracker(users, hub, cfg.SweepInterval, cfg.StaleAfter)
	schedule := service.NewScheduleService(events, slots)
	importer := service.NewImportService(events, users)
	materialsSvc := service.NewMaterialsService(scrape.NewNewsletterScraper(), scrape.NewLinkResolver(), materials, notify)

	// Expired refresh tokens pile up between restarts; clear them now.
	if n, err := tokenSvc.SweepExpired(bootCtx); err != nil {
		log.Printf("tokens: boot sweep failed: %v", err)
	} else if n > 0 {
		log.Printf("tokens: boot sweep removed %d expired refresh tokens", n)
	}

	// Background presence sweeper; cancelled on shutdown.
	sweepCtx, stopSweep := context.WithCancel(context.Background())
	defer stopSweep()
	go presence.Run(sweepCtx)

	// HTTP surface.
	e := echo.New()
	e.HideBanner = true
	e.Use(echomw.Recover())
	e.Use(echomw.CORS())

	router.Register(e, router.Deps{
		Auth:     handler.NewAuthHandler(cfg, users, tokenSvc, presence, notify),
		Events:   handler.NewEventHandler(events, schedule, importer),
		Admin:    handler.NewAdminHandler(users, keys, materialsSvc),
		Comments: handler.NewCommentHandler(comments),
		WS:       handler.NewWSHandler(hub, tokenSvc),
		Redis:    rdb,
	})

	addr := ":" + cfg.Port
	go func() {
		log.Printf("listening on %s (env=%s)", addr, cfg.Env)
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server: %v", err)
		}
	}()

	// Block until interrupted, then drain in-flight requests.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutting down")

	stopSweep()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server: shutdown: %v", err)
	}
}
