package server

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"

	"github.com/rentnest/rentnest-server/internal/auth"
	"github.com/rentnest/rentnest-server/internal/cache"
	"github.com/rentnest/rentnest-server/internal/config"
	"github.com/rentnest/rentnest-server/internal/events"
	"github.com/rentnest/rentnest-server/internal/handlers"
	"github.com/rentnest/rentnest-server/internal/middleware"
	"github.com/rentnest/rentnest-server/internal/payments"
	"github.com/rentnest/rentnest-server/internal/plans"
	"github.com/rentnest/rentnest-server/internal/repository"
	"github.com/rentnest/rentnest-server/internal/routes"
	"github.com/rentnest/rentnest-server/internal/services"
	"github.com/rentnest/rentnest-server/internal/ws"
)

// AppServer owns the Fiber app and every long-lived dependency.
type AppServer struct {
	app      *fiber.App
	hub      *ws.Hub
	cache    *cache.Client
	producer *events.Producer
	consumer *events.Consumer
	mongo    *mongo.Client
	cancel   context.CancelFunc
	log      *zap.SugaredLogger
}

func New(cfg *config.Config, mc *mongo.Client, log *zap.SugaredLogger) (*AppServer, error) {
	db := mc.Database(cfg.Mongo.Database)

	profileRepo := repository.NewProfileRepository(db.Collection("profiles"))
	propertyRepo := repository.NewPropertyRepository(db.Collection("properties"))
	convRepo := repository.NewConversationRepository(db.Collection("conversations"))
	msgRepo := repository.NewMessageRepository(db.Collection("messages"))
	analyticsRepo := repository.NewAnalyticsRepository(db.Collection("property_views"), db.Collection("property_interest"))
	subRepo := repository.NewSubscriptionRepository(db.Collection("subscriptions"))

	catalog, err := plans.Load(cfg.PlansPath)
	if err != nil {
		return nil, err
	}

	redisCache := cache.NewClient(cfg)
	producer := events.NewProducer(cfg)
	consumer := events.NewConsumer(cfg, log)
	hub := ws.NewHub()

	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.AccessTTL)
	payClient := payments.NewClient(
		cfg.Payments.ProviderURL,
		time.Duration(cfg.Payments.TimeoutSeconds)*time.Second,
		time.Duration(cfg.Payments.RetryMaxElapsedSeconds)*time.Second,
	)

	authSvc := services.NewAuthService(profileRepo, tokens)
	chatSvc := services.NewChatService(convRepo, msgRepo, propertyRepo, profileRepo, hub, producer, log)
	propSvc := services.NewPropertyService(propertyRepo, profileRepo, analyticsRepo, producer, log)
	billSvc := services.NewBillingService(catalog, payClient, subRepo, profileRepo, log)

	app := fiber.New(fiber.Config{
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	})
	app.Use(recover.New())

	limiter := middleware.NewRateLimiter(redisCache.Redis(), "ratelimit", cfg.RateLimit.Requests, cfg.RateWindow)
	jwtMw := middleware.JWTAuth(tokens)

	routes.Register(app, routes.Deps{
		Auth:    handlers.NewAuthHandler(authSvc),
		Props:   handlers.NewPropertyHandler(propSvc),
		Chat:    handlers.NewChatHandler(chatSvc),
		Billing: handlers.NewBillingHandler(billSvc),
		WS:      ws.NewHandler(chatSvc, hub, redisCache, log),
		JWT:     jwtMw,
		RateLimit: limiter.MiddlewareByKey(func(c *fiber.Ctx) string {
			return c.IP()
		}),
	})

	ctx, cancel := context.WithCancel(context.Background())
	go consumer.Run(ctx, hub)

	return &AppServer{
		app:      app,
		hub:      hub,
		cache:    redisCache,
		producer: producer,
		consumer: consumer,
		mongo:    mc,
		cancel:   cancel,
		log:      log,
	}, nil
}

func (s *AppServer) Listen(addr string) error {
	return s.app.Listen(addr)
}

// Shutdown stops accepting traffic, tears every subscription down and closes
// the backends.
func (s *AppServer) Shutdown(ctx context.Context) error {
	s.cancel()
	s.hub.Close()

	err := s.app.ShutdownWithContext(ctx)
	if cerr := s.consumer.Close(); err == nil {
		err = cerr
	}
	if cerr := s.producer.Close(); err == nil {
		err = cerr
	}
	if cerr := s.cache.Close(); err == nil {
		err = cerr
	}
	if cerr := s.mongo.Disconnect(ctx); err == nil {
		err = cerr
	}
	return err
}
