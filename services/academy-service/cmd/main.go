package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"golang.org/x/sync/errgroup"
	"google.golang.org/grpc"

	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/config"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/handler"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/payload"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/repository"
	"github.com/vasapolrittideah/zacademy-api/services/academy-service/internal/usecase"
	"github.com/vasapolrittideah/zacademy-api/shared/auth"
	"github.com/vasapolrittideah/zacademy-api/shared/discovery"
	"github.com/vasapolrittideah/zacademy-api/shared/events"
	"github.com/vasapolrittideah/zacademy-api/shared/logger"
	"github.com/vasapolrittideah/zacademy-api/shared/mailer"
	"github.com/vasapolrittideah/zacademy-api/shared/provider"
	"github.com/vasapolrittideah/zacademy-api/shared/ratelimit"
	"github.com/vasapolrittideah/zacademy-api/shared/utilities"
)

const (
	startupTimeout  = 15 * time.Second
	shutdownTimeout = 10 * time.Second
)

func main() {
	cfg, err := config.Load("config.env", ".env")
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Environment, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("academy service stopped with error")
	}
}

func run(ctx context.Context, cfg *config.AcademyServiceConfig, log *zerolog.Logger) error {
	startupCtx, cancel := context.WithTimeout(ctx, startupTimeout)
	defer cancel()

	mongoClient, err := mongo.Connect(options.Client().ApplyURI(cfg.Database.URI()))
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer func() {
		if err := mongoClient.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("failed to disconnect mongodb")
		}
	}()

	if err := mongoClient.Ping(startupCtx, nil); err != nil {
		return fmt.Errorf("ping mongodb: %w", err)
	}
	log.Info().Str("database", cfg.Database.Name).Msg("connected to mongodb")

	redisOpts, err := redis.ParseURL(cfg.Redis.URL)
	if err != nil {
		return fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(redisOpts)
	defer rdb.Close()

	if err := rdb.Ping(startupCtx).Err(); err != nil {
		return fmt.Errorf("ping redis: %w", err)
	}

	db := mongoClient.Database(cfg.Database.Name)
	userRepo := repository.NewUserMongoRepository(startupCtx, log, db)
	pendingRepo := repository.NewPendingRegistrationMongoRepository(startupCtx, log, db)
	courseRepo := repository.NewCourseMongoRepository(startupCtx, log, db)
	enrollmentRepo := repository.NewEnrollmentMongoRepository(startupCtx, log, db)
	resetTokenRepo := repository.NewResetTokenMongoRepository(startupCtx, log, db)
	oauthStateRepo := repository.NewOAuthStateRedisRepository(rdb)

	mail, err := mailer.NewMailer(cfg.SMTP, log)
	if err != nil {
		return fmt.Errorf("create mailer: %w", err)
	}

	publisher := newPublisher(cfg, log)
	defer func() {
		if err := publisher.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close event publisher")
		}
	}()

	jwtAuth := auth.NewJWTAuthenticator(cfg.Token.Issuer)
	google := provider.NewGoogleOAuthProvider(cfg.Google)

	sessionUsecase := usecase.NewSessionUsecase(userRepo, jwtAuth, cfg.Token, log)
	registrationUsecase := usecase.NewRegistrationUsecase(
		userRepo, pendingRepo, sessionUsecase, mail, publisher, cfg.OTP, log,
	)
	oauthUsecase := usecase.NewOAuthUsecase(userRepo, oauthStateRepo, sessionUsecase, google, publisher, log)
	passwordResetUsecase := usecase.NewPasswordResetUsecase(
		userRepo, resetTokenRepo, jwtAuth, mail, cfg.Token, cfg.PasswordResetURL, log,
	)

	validator, err := payload.NewValidator()
	if err != nil {
		return fmt.Errorf("create validator: %w", err)
	}

	router := handler.NewRouter(handler.RouterParams{
		ServiceName:          cfg.ServiceName,
		ClientURL:            cfg.ClientURL,
		AllowedOrigins:       cfg.AllowedOrigins,
		SecureCookies:        cfg.IsProduction(),
		TrustProxyHeaders:    cfg.TrustProxyHeaders,
		RegistrationUsecase:  registrationUsecase,
		SessionUsecase:       sessionUsecase,
		OAuthUsecase:         oauthUsecase,
		ProfileUsecase:       usecase.NewProfileUsecase(userRepo),
		PasswordResetUsecase: passwordResetUsecase,
		CourseUsecase:        usecase.NewCourseUsecase(courseRepo, userRepo),
		EnrollmentUsecase:    usecase.NewEnrollmentUsecase(enrollmentRepo, courseRepo, userRepo, publisher, log),
		Validator:            validator,
		Limiter:              ratelimit.NewFixedWindowLimiter(rdb, cfg.RateLimit.Max, cfg.RateLimit.Window),
		HealthChecks: map[string]handler.HealthCheck{
			"mongodb": func(ctx context.Context) error { return mongoClient.Ping(ctx, nil) },
			"redis":   func(ctx context.Context) error { return rdb.Ping(ctx).Err() },
		},
		Logger: log,
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	grpcServer := grpc.NewServer()
	healthServer := utilities.RegisterHealthServer(grpcServer, cfg.ServiceName)

	grpcListener, err := net.Listen("tcp", cfg.GRPCHealthAddr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", cfg.GRPCHealthAddr, err)
	}

	deregister := registerWithConsul(cfg, log)
	defer deregister()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", cfg.HTTPAddr).Str("environment", cfg.Environment).Msg("starting HTTP server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve http: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		log.Info().Str("addr", cfg.GRPCHealthAddr).Msg("starting gRPC health server")
		if err := grpcServer.Serve(grpcListener); err != nil && !errors.Is(err, grpc.ErrServerStopped) {
			return fmt.Errorf("serve grpc: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down academy service")

		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		err := httpServer.Shutdown(shutdownCtx)
		grpcServer.GracefulStop()
		return err
	})

	return g.Wait()
}

func newPublisher(cfg *config.AcademyServiceConfig, log *zerolog.Logger) events.Publisher {
	if len(cfg.Kafka.Brokers) == 0 {
		log.Info().Msg("kafka brokers not configured, domain events are disabled")
		return events.NoopPublisher{}
	}

	log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("publishing domain events to kafka")
	return events.NewKafkaPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic, log)
}

// registerWithConsul announces the HTTP endpoint when a Consul agent is configured and
// returns the matching deregistration.
func registerWithConsul(cfg *config.AcademyServiceConfig, log *zerolog.Logger) func() {
	if cfg.Consul.Addr == "" {
		return func() {}
	}

	registry, err := discovery.NewConsulRegistry(cfg.Consul.Addr, log)
	if err != nil {
		log.Error().Err(err).Msg("consul registration disabled")
		return func() {}
	}

	_, portStr, err := net.SplitHostPort(cfg.HTTPAddr)
	if err != nil {
		log.Error().Err(err).Str("addr", cfg.HTTPAddr).Msg("cannot derive port for consul registration")
		return func() {}
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		log.Error().Err(err).Str("addr", cfg.HTTPAddr).Msg("cannot derive port for consul registration")
		return func() {}
	}

	id := fmt.Sprintf("%s-%s", cfg.ServiceName, uuid.NewString())
	reg := discovery.Registration{
		ID:        id,
		Name:      cfg.ServiceName,
		Address:   cfg.Consul.AdvertiseHost,
		Port:      port,
		Tags:      []string{"http", cfg.Environment},
		HealthURL: fmt.Sprintf("http://%s:%d/health", cfg.Consul.AdvertiseHost, port),
	}

	if err := registry.Register(reg); err != nil {
		log.Error().Err(err).Msg("failed to register with consul")
		return func() {}
	}

	return func() {
		if err := registry.Deregister(id); err != nil {
			log.Error().Err(err).Str("id", id).Msg("failed to deregister from consul")
		}
	}
}
