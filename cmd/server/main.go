package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awscfg "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"socialboard/internal/config"
	"socialboard/internal/domain"
	"socialboard/internal/events"
	apphttp "socialboard/internal/http"
	"socialboard/internal/repository"
	"socialboard/internal/repository/postgres"
	redisrepo "socialboard/internal/repository/redis"
	"socialboard/internal/repository/sqlite"
	"socialboard/internal/service"
	"socialboard/internal/session"
	"socialboard/internal/storage"
)

const janitorInterval = 10 * time.Minute

type stores struct {
	db       *sql.DB
	users    repository.UserRepository
	posts    repository.PostRepository
	sessions repository.SessionRepository
}

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}
	if level, err := logrus.ParseLevel(cfg.Log.Level); err == nil {
		logger.SetLevel(level)
	} else {
		logger.Warnf("unknown log level %q, using info", cfg.Log.Level)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer st.db.Close()

	if cfg.Session.Backend == "redis" {
		client, err := redisrepo.NewClient(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
		if err != nil {
			logger.Fatalf("connect redis: %v", err)
		}
		defer client.Close()
		st.sessions = redisrepo.NewSessionRepository(client)
		logger.Infof("sessions stored in redis at %s", cfg.Redis.Addr)
	}

	if err := st.users.Init(ctx); err != nil {
		logger.Fatalf("init user repository: %v", err)
	}
	if err := st.posts.Init(ctx); err != nil {
		logger.Fatalf("init post repository: %v", err)
	}
	if err := st.sessions.Init(ctx); err != nil {
		logger.Fatalf("init session repository: %v", err)
	}
	if purger, ok := st.sessions.(session.Purger); ok {
		go session.RunJanitor(ctx, purger, janitorInterval, logger)
	}

	pictures, uploadsDir, err := buildStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatalf("setup storage: %v", err)
	}

	publisher, err := buildPublisher(cfg, logger)
	if err != nil {
		logger.Fatalf("setup events: %v", err)
	}
	defer publisher.Close()

	tx := repository.NewSQLTransactor(st.db)
	manager := session.NewManager(st.sessions, session.NewCodec(cfg.Session.Secret, "socialboard"), cfg.Session.TTL)

	userService := service.NewUserService(st.users, st.posts, pictures, cfg.Upload.MaxBytes, publisher, logger)
	sessionService := service.NewSessionService(st.users, manager, logger)
	socialService := service.NewSocialService(st.users, tx, domain.NewBadgePolicy(cfg.Badge.Special), publisher, logger)
	postService := service.NewPostService(st.posts, tx, publisher, logger)

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery())
	handler := apphttp.NewHandler(
		userService,
		sessionService,
		socialService,
		postService,
		logger,
		apphttp.Options{
			CookieName:   cfg.Session.CookieName,
			CookieSecure: cfg.Session.Secure,
			SessionTTL:   cfg.Session.TTL,
			UploadsDir:   uploadsDir,
		},
	)
	if err := handler.RegisterRoutes(router); err != nil {
		logger.Fatalf("register routes: %v", err)
	}

	srv := &http.Server{
		Addr:    cfg.Server.Addr,
		Handler: router,
	}

	go func() {
		logger.Infof("listening on %s", cfg.Server.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("http server: %v", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warnf("http shutdown: %v", err)
	}

	logger.Info("bye")
}

func openStores(ctx context.Context, cfg config.Config) (*stores, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgres.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, err
		}
		return &stores{
			db:       db,
			users:    postgres.NewUserRepository(db),
			posts:    postgres.NewPostRepository(db),
			sessions: postgres.NewSessionRepository(db),
		}, nil
	default:
		db, err := sqlite.Open(cfg.Database.Path)
		if err != nil {
			return nil, err
		}
		return &stores{
			db:       db,
			users:    sqlite.NewUserRepository(db),
			posts:    sqlite.NewPostRepository(db),
			sessions: sqlite.NewSessionRepository(db),
		}, nil
	}
}

// buildStorage returns S3 storage when a bucket is configured, otherwise a local
// directory that the HTTP server exposes at /uploads.
func buildStorage(ctx context.Context, cfg config.Config, logger *logrus.Logger) (storage.Service, string, error) {
	if cfg.Storage.Bucket == "" {
		local, err := storage.NewLocalService(cfg.Storage.LocalDir, "/uploads")
		if err != nil {
			return nil, "", err
		}
		logger.Infof("storing pictures in %s", local.Root())
		return local, local.Root(), nil
	}

	loadOpts := []func(*awscfg.LoadOptions) error{
		awscfg.WithRegion(cfg.Storage.Region),
	}
	if cfg.AWS.Profile != "" {
		loadOpts = append(loadOpts, awscfg.WithSharedConfigProfile(cfg.AWS.Profile))
	}

	awsCfg, err := awscfg.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, "", fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Storage.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Storage.Endpoint)
			o.UsePathStyle = true
		}
	})
	logger.Infof("using s3 bucket %s (region %s)", cfg.Storage.Bucket, cfg.Storage.Region)
	return storage.NewS3Service(client, storage.S3Options{
		Bucket:        cfg.Storage.Bucket,
		KeyPrefix:     cfg.Storage.KeyPrefix,
		Region:        cfg.Storage.Region,
		PublicBaseURL: cfg.Storage.PublicBaseURL,
	}), "", nil
}

func buildPublisher(cfg config.Config, logger *logrus.Logger) (events.Publisher, error) {
	if cfg.Kafka.Brokers == "" {
		return events.NewLogPublisher(logger), nil
	}
	logger.Infof("publishing events to kafka topic %s", cfg.Kafka.Topic)
	return events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
}
