package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/carecrest/hospital-cms/contracts"
	blogshandler "github.com/carecrest/hospital-cms/domains/blogs/be/handler"
	blogsrepo "github.com/carecrest/hospital-cms/domains/blogs/be/repo"
	blogsservice "github.com/carecrest/hospital-cms/domains/blogs/be/service"
	categorieshandler "github.com/carecrest/hospital-cms/domains/categories/be/handler"
	categoriesrepo "github.com/carecrest/hospital-cms/domains/categories/be/repo"
	categoriesservice "github.com/carecrest/hospital-cms/domains/categories/be/service"
	contactshandler "github.com/carecrest/hospital-cms/domains/contacts/be/handler"
	contactsrepo "github.com/carecrest/hospital-cms/domains/contacts/be/repo"
	contactsservice "github.com/carecrest/hospital-cms/domains/contacts/be/service"
	doctorshandler "github.com/carecrest/hospital-cms/domains/doctors/be/handler"
	doctorsrepo "github.com/carecrest/hospital-cms/domains/doctors/be/repo"
	doctorsservice "github.com/carecrest/hospital-cms/domains/doctors/be/service"
	herohandler "github.com/carecrest/hospital-cms/domains/hero/be/handler"
	herorepo "github.com/carecrest/hospital-cms/domains/hero/be/repo"
	heroservice "github.com/carecrest/hospital-cms/domains/hero/be/service"
	slugmigrationshandler "github.com/carecrest/hospital-cms/domains/slugmigrations/be/handler"
	slugmigrationsservice "github.com/carecrest/hospital-cms/domains/slugmigrations/be/service"
	subcategorieshandler "github.com/carecrest/hospital-cms/domains/subcategories/be/handler"
	subcategoriesrepo "github.com/carecrest/hospital-cms/domains/subcategories/be/repo"
	subcategoriesservice "github.com/carecrest/hospital-cms/domains/subcategories/be/service"
	uploadshandler "github.com/carecrest/hospital-cms/domains/uploads/be/handler"
	uploadsservice "github.com/carecrest/hospital-cms/domains/uploads/be/service"
	platformauth "github.com/carecrest/hospital-cms/platform/go/auth"
	"github.com/carecrest/hospital-cms/platform/go/cache"
	platformlogging "github.com/carecrest/hospital-cms/platform/go/logging"
	"github.com/carecrest/hospital-cms/platform/go/mailer"
	platformmiddleware "github.com/carecrest/hospital-cms/platform/go/middleware"
	"github.com/carecrest/hospital-cms/platform/go/persistence"
	"github.com/carecrest/hospital-cms/platform/go/slug"
	"github.com/carecrest/hospital-cms/platform/go/slugmigration"
	"github.com/carecrest/hospital-cms/platform/go/storage"
)

func main() {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	logger, err := platformlogging.NewLogger(platformlogging.Config{
		Component: "cms-api",
		Level:     cfg.LogLevel,
	})
	if err != nil {
		log.Fatalf("init zap logger: %v", err)
	}
	defer func() {
		_ = logger.Sync()
	}()

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{
		ConnString:      cfg.DatabaseURL,
		MaxConns:        cfg.DatabaseMaxConns,
		ConnectAttempts: 5,
		ConnectBackoff:  2 * time.Second,
	})
	if err != nil {
		logger.Fatal("init postgres pool", zap.Error(err))
	}
	defer persistence.ClosePool(pool)

	if err := persistence.Migrate(ctx, pool, logger); err != nil {
		logger.Fatal("apply database migrations", zap.Error(err))
	}

	stores := mustOpenStores(pool, logger)

	// ---- Slug backfill: runs once before the server accepts traffic ----
	startupKinds, err := cfg.startupKinds()
	if err != nil {
		logger.Fatal("parse slug migration startup kinds", zap.Error(err))
	}
	runner := slugmigration.NewRunner(stores.slugs,
		slugmigration.WithLogger(logger),
		slugmigration.WithUniqueBackfill(cfg.SlugBackfillUnique),
		slugmigration.WithStartupKinds(startupKinds),
		slugmigration.WithMaxAttempts(cfg.SlugMaxAttempts),
	)
	if len(runner.StartupKinds()) == 0 {
		logger.Info("startup slug migration disabled")
	} else {
		report := runner.RunMigration(ctx)
		logger.Info("startup slug migration finished",
			zap.Int("updated", report.Updated),
			zap.Int("failedKinds", report.Failed),
		)
	}

	var scheduler *slugmigration.Scheduler
	if cfg.SlugMigrationSchedule != "" {
		scheduler, err = slugmigration.NewScheduler(runner, cfg.SlugMigrationSchedule, cfg.SlugMigrationTimeout, logger)
		if err != nil {
			logger.Fatal("init slug migration scheduler", zap.Error(err))
		}
		scheduler.Start()
	}

	// ---- Optional Redis cache for public slug lookups ----
	var redisClient *redis.Client
	var blogCache cache.Cache[blogsservice.Blog] = cache.Noop[blogsservice.Blog]{}
	var doctorCache cache.Cache[doctorsservice.Doctor] = cache.Noop[doctorsservice.Doctor]{}
	if cfg.RedisURL != "" {
		redisClient, err = cache.Open(ctx, cfg.RedisURL)
		if err != nil {
			logger.Fatal("init redis", zap.Error(err))
		}
		defer func() {
			_ = redisClient.Close()
		}()
		blogCache = cache.NewRedis[blogsservice.Blog](redisClient, "cms:blogs", cfg.CacheTTL)
		doctorCache = cache.NewRedis[doctorsservice.Doctor](redisClient, "cms:doctors", cfg.CacheTTL)
	} else {
		logger.Info("REDIS_URL not set; slug lookups are served uncached")
	}

	objectStore, err := storage.New(ctx, cfg.storageConfig())
	if err != nil {
		logger.Fatal("init object storage", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}
	if closer, ok := objectStore.(interface{ Close() error }); ok {
		defer func() {
			_ = closer.Close()
		}()
	}

	var sender mailer.Sender = mailer.Noop{}
	if cfg.ResendAPIKey != "" {
		sender, err = mailer.NewResend(mailer.ResendConfig{
			APIKey:    cfg.ResendAPIKey,
			FromEmail: cfg.ResendFromEmail,
			FromName:  cfg.ResendFromName,
		})
		if err != nil {
			logger.Fatal("init resend mailer", zap.Error(err))
		}
	}

	resolver := func(kind persistence.SlugKind) *slug.Resolver {
		return slug.NewResolver(stores.slugs.ExistsFunc(kind), slug.WithMaxAttempts(cfg.SlugMaxAttempts))
	}

	categoryService := categoriesservice.New(
		categoriesrepo.NewPostgresRepository(stores.categories),
		resolver(persistence.SlugKindCategories),
	)
	subcategoryService := subcategoriesservice.New(
		subcategoriesrepo.NewPostgresRepository(stores.subcategories, stores.categories),
		resolver(persistence.SlugKindSubcategories),
	)
	blogService := blogsservice.New(
		blogsrepo.NewPostgresRepository(stores.blogs),
		resolver(persistence.SlugKindBlogs),
		blogsservice.WithCache(blogCache),
		blogsservice.WithLogger(logger),
	)
	doctorService := doctorsservice.New(
		doctorsrepo.NewPostgresRepository(stores.doctors),
		resolver(persistence.SlugKindDoctors),
		doctorsservice.WithCache(doctorCache),
		doctorsservice.WithLogger(logger),
	)
	heroService := heroservice.New(herorepo.NewPostgresRepository(stores.hero))
	contactService := contactsservice.New(
		contactsrepo.NewPostgresRepository(stores.contacts),
		contactsservice.WithNotifications(sender, cfg.ContactNotifyEmail),
		contactsservice.WithLogger(logger),
	)
	uploadService := uploadsservice.New(objectStore,
		uploadsservice.WithMaxBytes(cfg.UploadMaxBytes),
		uploadsservice.WithLogger(logger),
	)
	slugMigrationService := slugmigrationsservice.New(slugmigrationsservice.FromRunner(runner), logger)

	categoryHTTPHandler := categorieshandler.New(categoryService, logger)
	subcategoryHTTPHandler := subcategorieshandler.New(subcategoryService, logger)
	blogHTTPHandler := blogshandler.New(blogService, logger)
	doctorHTTPHandler := doctorshandler.New(doctorService, logger)
	heroHTTPHandler := herohandler.New(heroService, logger)
	contactHTTPHandler := contactshandler.New(contactService, logger)
	uploadHTTPHandler := uploadshandler.New(uploadService, logger)
	slugMigrationHTTPHandler := slugmigrationshandler.New(slugMigrationService, logger)

	spec, err := contracts.Load()
	if err != nil {
		logger.Fatal("load openapi contract", zap.Error(err))
	}
	specValidator := platformmiddleware.OpenAPIValidator(spec)

	authMiddleware := buildAuthMiddleware(ctx, cfg, logger)

	rootRouter := chi.NewRouter()

	rootRouter.Use(
		chimw.RequestID,
		chimw.RealIP,
		chimw.Recoverer,
		chimw.Timeout(cfg.RequestTimeout),
		platformmiddleware.CORS(cfg.CORSOrigins),
	)

	rootRouter.Use(platformlogging.RequestLogger(logger, "/healthz", "/readyz"))

	rootRouter.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	rootRouter.Get("/readyz", readinessHandler(pool, redisClient, logger))

	// ---- Swagger UI + OpenAPI JSON (public) ----
	registerDocsRoutes(rootRouter, spec, logger)

	if local, ok := objectStore.(*storage.Local); ok {
		rootRouter.Handle("/media/*", http.StripPrefix("/media", local.Handler()))
	}

	apiRouter := chi.NewRouter()
	apiRouter.Use(authMiddleware)
	apiRouter.Use(platformmiddleware.RequestTrace)

	apiRouter.Group(func(public chi.Router) {
		public.Use(specValidator)

		public.Group(func(admin chi.Router) {
			admin.Use(platformauth.RequireRole(platformauth.RoleEditor))

			categoryHTTPHandler.Routes(public, admin)
			subcategoryHTTPHandler.Routes(public, admin)
			blogHTTPHandler.Routes(public, admin)
			doctorHTTPHandler.Routes(public, admin)
			heroHTTPHandler.Routes(public, admin)
			contactHTTPHandler.Routes(public, admin)
			slugMigrationHTTPHandler.Routes(admin)
		})
	})

	// Multipart bodies are checked by the upload service, not the contract validator.
	apiRouter.Group(func(admin chi.Router) {
		admin.Use(platformauth.RequireRole(platformauth.RoleEditor))
		uploadHTTPHandler.Routes(admin)
	})

	rootRouter.Mount("/api/v1", apiRouter)

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      rootRouter,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}

	go func() {
		logger.Info("starting api server", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("server listen failed", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", zap.Error(err))
	}
	if scheduler != nil {
		if err := scheduler.Stop(shutdownCtx); err != nil {
			logger.Warn("slug migration scheduler did not stop cleanly", zap.Error(err))
		}
	}
}

type storeSet struct {
	categories    *persistence.CategoryStore
	subcategories *persistence.SubcategoryStore
	blogs         *persistence.BlogStore
	doctors       *persistence.DoctorStore
	hero          *persistence.HeroStore
	contacts      *persistence.ContactStore
	slugs         *persistence.SlugStore
}

func mustOpenStores(pool *pgxpool.Pool, logger *zap.Logger) storeSet {
	var (
		set storeSet
		err error
	)
	must := func(name string, err error) {
		if err != nil {
			logger.Fatal("init store", zap.String("store", name), zap.Error(err))
		}
	}

	set.categories, err = persistence.NewCategoryStore(pool)
	must("categories", err)
	set.subcategories, err = persistence.NewSubcategoryStore(pool)
	must("subcategories", err)
	set.blogs, err = persistence.NewBlogStore(pool)
	must("blogs", err)
	set.doctors, err = persistence.NewDoctorStore(pool)
	must("doctors", err)
	set.hero, err = persistence.NewHeroStore(pool)
	must("hero", err)
	set.contacts, err = persistence.NewContactStore(pool)
	must("contacts", err)
	set.slugs, err = persistence.NewSlugStore(pool)
	must("slugs", err)
	return set
}

func readinessHandler(pool *pgxpool.Pool, redisClient *redis.Client, logger *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := pool.Ping(ctx); err != nil {
			logger.Warn("readiness: postgres unreachable", zap.Error(err))
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		if redisClient != nil {
			if err := redisClient.Ping(ctx).Err(); err != nil {
				logger.Warn("readiness: redis unreachable", zap.Error(err))
				w.WriteHeader(http.StatusServiceUnavailable)
				return
			}
		}
		w.WriteHeader(http.StatusOK)
	}
}
