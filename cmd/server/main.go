package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gorilla/mux"
	"github.com/kimoju01/omg-project/internal/config"
	"github.com/kimoju01/omg-project/internal/handlers"
	"github.com/kimoju01/omg-project/internal/middleware"
	"github.com/kimoju01/omg-project/internal/oauth"
	"github.com/kimoju01/omg-project/internal/repository"
	"github.com/kimoju01/omg-project/internal/service"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

func main() {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	cfg, err := config.Load()
	if err != nil {
		logger.WithError(err).Fatal("Failed to load configuration")
	}

	dynamoClient, err := initDynamoDB(cfg, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize DynamoDB")
	}

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Endpoint,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})

	// Repositories
	userRepo := repository.NewUserRepository(dynamoClient, cfg.DynamoDB.TableName, logger)
	tripRepo := repository.NewTripRepository(dynamoClient, cfg.DynamoDB.TableName, logger)
	teamRepo := repository.NewTeamRepository(dynamoClient, cfg.DynamoDB.TableName, logger)
	joinPostRepo := repository.NewJoinPostRepository(dynamoClient, cfg.DynamoDB.TableName, logger)
	chatRepo := repository.NewChatRepository(dynamoClient, cfg.DynamoDB.TableName, logger)

	// Services
	jwtService, err := service.NewJWTService(&cfg.JWT, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to initialize JWT service")
	}

	refreshStore := service.NewRefreshTokenService(redisClient, logger)
	userService := service.NewUserService(userRepo, logger)
	mailService := service.NewMailService(redisClient, service.NewSMTPSender(&cfg.Mail), &cfg.Mail, logger)
	teamService := service.NewTeamService(teamRepo, logger)
	joinPostService := service.NewJoinPostService(joinPostRepo, logger)
	loginService := service.NewOAuthLoginService(jwtService, refreshStore, userRepo, &cfg.Auth, logger)

	providerRegistry := oauth.NewRegistry(&cfg.OAuth)

	// Handlers and middleware
	entryPoint := middleware.NewAuthEntryPoint(&cfg.Auth, logger)
	authMiddleware := middleware.NewAuthMiddleware(jwtService, entryPoint, logger)

	authHandlers := handlers.NewAuthHandlers(userService, jwtService, refreshStore, &cfg.Auth, logger)
	oauthHandlers := handlers.NewOAuthHandlers(providerRegistry, loginService, jwtService, &cfg.OAuth, &cfg.Auth, logger)
	mailHandlers := handlers.NewMailHandlers(mailService, userService, logger)
	joinPostHandlers := handlers.NewJoinPostHandlers(joinPostService, logger)
	teamHandlers := handlers.NewTeamHandlers(teamService, logger)
	tripHandlers := handlers.NewTripHandlers(tripRepo, logger)
	chatHandlers := handlers.NewChatHandlers(chatRepo, logger)
	userHandlers := handlers.NewUserHandlers(userService, refreshStore, &cfg.Auth, logger)

	router := setupRouter(authHandlers, oauthHandlers, mailHandlers, userHandlers, joinPostHandlers, teamHandlers, tripHandlers, chatHandlers, authMiddleware, logger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	go func() {
		logger.WithField("port", cfg.Server.Port).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Fatal("Server failed to start")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.WithError(err).Fatal("Server forced to shutdown")
	}

	logger.Info("Server exited")
}

func initDynamoDB(cfg *config.Config, logger *logrus.Logger) (*dynamodb.Client, error) {
	var awsCfg aws.Config
	var err error

	if cfg.DynamoDB.Endpoint != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO(),
			awsconfig.WithRegion(cfg.DynamoDB.Region),
			awsconfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
				func(service, region string, options ...interface{}) (aws.Endpoint, error) {
					return aws.Endpoint{
						URL:           cfg.DynamoDB.Endpoint,
						SigningRegion: cfg.DynamoDB.Region,
					}, nil
				})),
		)
	} else {
		awsCfg, err = awsconfig.LoadDefaultConfig(context.TODO())
	}

	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	client := dynamodb.NewFromConfig(awsCfg)
	logger.Info("DynamoDB client initialized")
	return client, nil
}

func setupRouter(
	authHandlers *handlers.AuthHandlers,
	oauthHandlers *handlers.OAuthHandlers,
	mailHandlers *handlers.MailHandlers,
	userHandlers *handlers.UserHandlers,
	joinPostHandlers *handlers.JoinPostHandlers,
	teamHandlers *handlers.TeamHandlers,
	tripHandlers *handlers.TripHandlers,
	chatHandlers *handlers.ChatHandlers,
	authMiddleware *middleware.AuthMiddleware,
	logger *logrus.Logger,
) *mux.Router {
	router := mux.NewRouter()

	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.LoggingMiddleware(logger))

	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}).Methods("GET", "OPTIONS")

	// Public pages and credential flows
	router.HandleFunc("/", authHandlers.Home).Methods("GET")
	router.HandleFunc("/signup", authHandlers.SignUp).Methods("POST")
	router.HandleFunc("/signin", authHandlers.SignIn).Methods("POST")
	router.HandleFunc("/logout", authHandlers.Logout).Methods("POST")

	// Federated login
	router.HandleFunc("/oauth2/authorization/{provider}", oauthHandlers.Authorize).Methods("GET")
	router.HandleFunc("/login/oauth2/code/{provider}", oauthHandlers.Callback).Methods("GET")

	// Mail verification and availability checks
	router.HandleFunc("/api/users/mail", mailHandlers.SendCode).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/users/verify-code", mailHandlers.VerifyCode).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/users/check-email", mailHandlers.CheckEmail).Methods("POST", "OPTIONS")
	router.HandleFunc("/api/users/check-usernick", mailHandlers.CheckUsernick).Methods("POST", "OPTIONS")

	// Token refresh exchanges its own credential; it is not behind RequireAuth.
	router.HandleFunc("/api/auth/refresh", authHandlers.Refresh).Methods("POST", "OPTIONS")

	// Protected resources
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(authMiddleware.RequireAuth)

	protected.HandleFunc("/users/me", userHandlers.Me).Methods("GET")
	protected.HandleFunc("/users/me", userHandlers.UpdateMe).Methods("PUT")
	protected.HandleFunc("/users/me", userHandlers.DeleteMe).Methods("DELETE")

	protected.HandleFunc("/posts", joinPostHandlers.Create).Methods("POST")
	protected.HandleFunc("/posts", joinPostHandlers.List).Methods("GET")
	protected.HandleFunc("/posts/mine", joinPostHandlers.ListMine).Methods("GET")
	protected.HandleFunc("/posts/{id}", joinPostHandlers.Get).Methods("GET")
	protected.HandleFunc("/posts/{id}", joinPostHandlers.Update).Methods("PUT")
	protected.HandleFunc("/posts/{id}", joinPostHandlers.Delete).Methods("DELETE")

	protected.HandleFunc("/trips", tripHandlers.Create).Methods("POST")
	protected.HandleFunc("/trips/{id}", tripHandlers.Get).Methods("GET")

	protected.HandleFunc("/teams", teamHandlers.Create).Methods("POST")
	protected.HandleFunc("/teams/join", teamHandlers.Join).Methods("POST")
	protected.HandleFunc("/teams/mine", teamHandlers.ListMine).Methods("GET")
	protected.HandleFunc("/teams/{id}/leave", teamHandlers.Leave).Methods("POST")

	protected.HandleFunc("/chat/{roomId}/messages", chatHandlers.History).Methods("GET")
	protected.HandleFunc("/chat/{roomId}/messages", chatHandlers.Post).Methods("POST")

	return router
}
