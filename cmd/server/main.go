package main // Entry point package

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/iliyamo/doulacare/internal/chat"
	"github.com/iliyamo/doulacare/internal/config"
	"github.com/iliyamo/doulacare/internal/database"
	"github.com/iliyamo/doulacare/internal/handler"
	"github.com/iliyamo/doulacare/internal/middleware"
	"github.com/iliyamo/doulacare/internal/obs"
	"github.com/iliyamo/doulacare/internal/payment"
	"github.com/iliyamo/doulacare/internal/queue"
	"github.com/iliyamo/doulacare/internal/repository"
	"github.com/iliyamo/doulacare/internal/router"
	"github.com/iliyamo/doulacare/internal/service"
	"github.com/iliyamo/doulacare/internal/transcribe"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Printf("warning: .env not loaded: %v", err)
	}
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracer := obs.InitTracer("doulacare-api", cfg.Env)
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracer(sctx)
	}()

	db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
	if err != nil {
		log.Fatalf("database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("migrate: %v", err)
	}

	// Redis backs rate limiting, the response cache and the webhook
	// ledger.  Each degrades to a pass-through when it is unreachable.
	rdb := config.NewRedisClient(config.LoadRedisConfig())
	limiter := middleware.NewTokenBucket(config.LoadRateLimitConfig(), rdb)
	cache := middleware.NewResponseCache(config.LoadCacheConfig(), rdb)
	var ledger service.EventLedger
	if rdb != nil {
		ledger = payment.NewRedisLedger(rdb, "", 0)
	}

	var events service.EventPublisher
	if cfg.RabbitURL != "" {
		pub, err := queue.NewPublisher(cfg.RabbitURL, cfg.EventsExchange)
		if err != nil {
			log.Printf("rabbitmq publisher disabled: %v", err)
		} else {
			defer pub.Close()
			events = pub
			go func() {
				err := queue.StartBookingConsumer(ctx, queue.ConsumerConfig{
					URL:      cfg.RabbitURL,
					Exchange: cfg.EventsExchange,
					Queue:    cfg.EventsQueue,
				})
				log.Printf("booking consumer stopped: %v", err)
			}()
		}
	}

	var gateway service.PaymentGateway
	if cfg.StripeSecretKey != "" {
		gateway = payment.NewStripe(cfg.StripeSecretKey, cfg.StripeWebhookSecret)
	} else {
		log.Printf("STRIPE_SECRET_KEY not set; payments disabled")
	}

	users := repository.NewUserRepo(db)
	bookings := repository.NewBookingRepo(db)
	bookingSvc := service.NewBookingService(bookings, users, events)
	paymentSvc := service.NewPaymentService(bookings, users, gateway, ledger, events, service.PaymentConfig{
		Currency:   cfg.StripeCurrency,
		SuccessURL: cfg.StripeSuccessURL,
		CancelURL:  cfg.StripeCancelURL,
	})
	uploads, err := handler.NewUploadHandler(cfg.StaticDir)
	if err != nil {
		log.Fatalf("static dir: %v", err)
	}
	registry := chat.NewRegistry(cfg.ChatHistorySize)
	whisper := transcribe.NewWhisper(cfg.OpenAIAPIKey)
	if !whisper.Configured() {
		log.Printf("OPENAI_API_KEY not set; voice search will answer 500")
	}

	e := echo.New()
	e.HideBanner = true
	e.Pre(echomw.RemoveTrailingSlash())
	e.Use(echomw.Recover())
	e.Use(echomw.Logger())
	e.Use(echomw.CORSWithConfig(echomw.CORSConfig{
		AllowOrigins:     cfg.Origins(),
		AllowCredentials: true,
	}))
	e.Static("/static", cfg.StaticDir)

	router.RegisterRoutes(e)
	router.RegisterUsers(e, handler.NewUserHandler(users), cfg.JWTSecret, cache)
	router.RegisterBookings(e, handler.NewBookingHandler(bookingSvc, bookings, users), cfg.JWTSecret, limiter)
	router.RegisterPayments(e, handler.NewPaymentHandler(paymentSvc), cfg.JWTSecret, limiter)
	router.RegisterReviews(e, handler.NewReviewHandler(repository.NewReviewRepo(db), bookings), cfg.JWTSecret, cache)
	router.RegisterFavourites(e, handler.NewFavouriteHandler(repository.NewFavouriteRepo(db), users))
	router.RegisterMessages(e, handler.NewMessageHandler(repository.NewMessageRepo(db), users), limiter)
	router.RegisterChat(e, handler.NewChatHandler(registry, time.Duration(cfg.ChatWriteTimeoutSec)*time.Second, cfg.Origins()))
	router.RegisterMedia(e, handler.NewVoiceHandler(whisper), uploads, limiter)

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, auth=%t)", addr, cfg.Env, cfg.AuthEnabled())
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal(err)
		}
	}()

	<-ctx.Done()
	sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(sctx); err != nil {
		log.Printf("shutdown: %v", err)
	}
}
