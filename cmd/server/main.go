package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"thumblytic-backend-go/internal/api"
	"thumblytic-backend-go/internal/config"
	"thumblytic-backend-go/internal/core"
	"thumblytic-backend-go/internal/db"
	"thumblytic-backend-go/internal/events"
	"thumblytic-backend-go/internal/gemini"
	"thumblytic-backend-go/internal/metrics"
	"thumblytic-backend-go/internal/middleware"
	"thumblytic-backend-go/pkg/cache"
	"thumblytic-backend-go/pkg/messagequeue"
)

func newLogger(release bool) (*zap.Logger, error) {
	if release {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

func main() {
	// --- 1. Load Application Configuration ---
	appConfig, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to load application configuration: %v", err)
	}

	// --- 2. Initialize Logger (Zap) ---
	zapLogger, err := newLogger(appConfig.IsRelease())
	if err != nil {
		log.Fatalf("CRITICAL_ERROR: Failed to initialize Zap logger: %v", err)
	}
	defer zapLogger.Sync()

	encryptionKey, err := appConfig.EncryptionKeyBytes()
	if err != nil {
		zapLogger.Fatal("Invalid ENCRYPTION_KEY", zap.Error(err))
	}
	if encryptionKey == nil {
		zapLogger.Warn("ENCRYPTION_KEY not set; appeal messages are stored in plaintext")
	}
	catalog, err := config.LoadPlanCatalog(appConfig.PlansFile)
	if err != nil {
		zapLogger.Fatal("Failed to load plan catalog", zap.Error(err))
	}

	initCtx, cancelInitCtx := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancelInitCtx()

	// --- 3. Connect to Postgres ---
	pg, err := db.OpenPostgres(initCtx, appConfig.DatabaseURL, db.DefaultPoolConfig())
	if err != nil {
		zapLogger.Fatal("Failed to connect to Postgres", zap.Error(err))
	}
	defer pg.Close()
	zapLogger.Info("Postgres connection established.")

	migrate := func(ctx context.Context) (uint, bool, error) {
		return db.Migrate(ctx, pg.DB)
	}
	if appConfig.AutoMigrate {
		version, applied, err := migrate(initCtx)
		if err != nil {
			zapLogger.Fatal("Schema migration failed", zap.Error(err))
		}
		zapLogger.Info("Schema migration finished", zap.Uint("version", version), zap.Bool("applied", applied))
	}

	// --- 4. Initialize Firebase Admin SDK (Auth, Firestore, optional Storage) ---
	if err := db.InitFirebase(initCtx, appConfig, zapLogger); err != nil {
		zapLogger.Fatal("Failed to initialize Firebase Admin SDK", zap.Error(err))
	}
	defer db.CloseFirebase()
	firestoreClient := db.GetFirestoreClient()
	firebaseAuthClient := db.GetFirebaseAuthClient()
	if firestoreClient == nil || firebaseAuthClient == nil {
		zapLogger.Fatal("Firebase clients are nil after initialization. Application cannot start.")
	}

	var imageStore core.ImageStore
	if storageClient := db.GetFirebaseStorageClient(); storageClient != nil {
		bucket, err := storageClient.Bucket(appConfig.FirebaseStorageBucket)
		if err != nil {
			zapLogger.Fatal("Failed to open storage bucket", zap.Error(err))
		}
		imageStore = db.NewBucketImageStore(bucket, appConfig.FirebaseStorageBucket)
	} else {
		zapLogger.Info("FIREBASE_STORAGE_BUCKET not set; images are stored inline")
	}

	// --- 5. Optional Redis cache and RabbitMQ publisher ---
	var suggestionCache cache.Cache = cache.NewMemoryCache()
	if appConfig.RedisAddr != "" {
		redisCache, err := cache.NewRedisCache(initCtx, cache.NewRedisCacheConfig{
			Address:  appConfig.RedisAddr,
			Password: appConfig.RedisPassword,
			DB:       appConfig.RedisDB,
		})
		if err != nil {
			zapLogger.Warn("Redis unavailable; using in-process cache", zap.Error(err))
		} else {
			defer redisCache.Close()
			suggestionCache = redisCache
			zapLogger.Info("Redis cache connected", zap.String("addr", appConfig.RedisAddr))
		}
	}

	var publisher core.EventPublisher = events.NewLogPublisher(zapLogger)
	if appConfig.AMQPURL != "" {
		mq, err := messagequeue.NewRabbitMQService(messagequeue.NewRabbitMQServiceConfig{
			URL:    appConfig.AMQPURL,
			Logger: zapLogger,
		})
		if err != nil {
			zapLogger.Warn("RabbitMQ unavailable; events are only logged", zap.Error(err))
		} else {
			defer mq.Close()
			publisher = events.NewQueuePublisher(mq, appConfig.EventsQueue)
		}
	}

	// --- 6. Initialize Gemini Client ---
	provider, err := gemini.NewClient(initCtx, gemini.Options{
		APIKey:     appConfig.GeminiAPIKey,
		TextModel:  appConfig.GeminiTextModel,
		ImageModel: appConfig.GeminiImageModel,
		Timeout:    appConfig.ProviderTimeout,
	})
	if err != nil {
		zapLogger.Fatal("Failed to initialize Gemini client", zap.Error(err))
	}

	// --- 7. Initialize Repositories ---
	profileRepo := db.NewPostgresProfileRepository(pg)
	generationRepo := db.NewPostgresGenerationRepository(pg)
	appealRepo := db.NewPostgresAppealRepository(pg)
	auditRepo := db.NewFirestoreAuditRepository(firestoreClient)

	// --- 8. Initialize Services ---
	auditService := core.NewAuditService(auditRepo, zapLogger)
	encryptionService := core.NewEncryptionService()
	profileService := core.NewProfileService(profileRepo, time.Now, zapLogger)
	services := api.Services{
		Profiles: profileService,
		Generations: core.NewGenerationService(profileService, generationRepo, provider, imageStore,
			core.GenerationOptions{EditModeSpendsCredit: appConfig.EditModeSpendsCredit}, zapLogger),
		Suggestions: core.NewSuggestionService(provider, suggestionCache, zapLogger),
		Appeals:     core.NewAppealService(appealRepo, auditService, publisher, encryptionService, encryptionKey, zapLogger),
		Admin: core.NewAdminService(core.AdminDeps{
			Profiles:      profileRepo,
			Generations:   generationRepo,
			Appeals:       appealRepo,
			Audit:         auditService,
			Encryption:    encryptionService,
			EncryptionKey: encryptionKey,
			Migrate:       migrate,
		}, zapLogger),
		Accounts: core.NewAccountService(firebaseAuthClient, profileService, zapLogger),
	}
	zapLogger.Info("Core services initialized.")

	// --- 9. Setup Gin HTTP Engine and Global Middleware ---
	if appConfig.IsRelease() {
		gin.SetMode(gin.ReleaseMode)
	} else {
		gin.SetMode(gin.DebugMode)
	}
	router := gin.New()
	router.Use(middleware.RequestLogger(zapLogger))
	router.Use(middleware.RecoveryMiddleware(zapLogger))
	router.Use(metrics.Middleware())
	router.Use(middleware.CORSMiddleware(appConfig))

	// --- 10. Setup API Routes ---
	api.SetupRoutes(
		router,
		zapLogger,
		middleware.NewAuthMiddleware(firebaseAuthClient, appConfig.AdminClaim, zapLogger),
		middleware.NewRateLimiter(appConfig.RateLimitRPS, appConfig.RateLimitBurst, zapLogger),
		services,
		catalog,
	)

	// --- 11. Start HTTP Server ---
	serverAddr := fmt.Sprintf(":%s", appConfig.Port)
	httpServer := &http.Server{
		Addr:              serverAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		// Renders can take up to PROVIDER_TIMEOUT.
		WriteTimeout: appConfig.ProviderTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		zapLogger.Info("Starting HTTP server", zap.String("address", serverAddr), zap.String("ginMode", gin.Mode()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			zapLogger.Fatal("Failed to start HTTP server", zap.Error(err))
		}
	}()

	// --- 12. Graceful Shutdown Handling ---
	quitChannel := make(chan os.Signal, 1)
	signal.Notify(quitChannel, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quitChannel
	zapLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancelShutdown()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		zapLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	zapLogger.Info("Server exiting gracefully.")
}
