package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/ssm"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/rpupo63/blog-backend/api"
	"github.com/rpupo63/blog-backend/auth"
	"github.com/rpupo63/blog-backend/config"
	"github.com/rpupo63/blog-backend/database"
	"github.com/rpupo63/blog-backend/models"
	"github.com/rpupo63/blog-backend/services"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	ctx := context.Background()
	env := config.New()

	if prefix := config.GetString(env, "SSM_PARAMETER_PREFIX", ""); prefix != "" {
		awsCfg, err := config.LoadAWS(ctx, config.GetString(env, "AWS_REGION", "us-east-1"))
		if err != nil {
			fmt.Printf("Error loading AWS config: %v\n", err)
			os.Exit(1)
		}
		n, err := config.OverlaySSM(ctx, env, ssm.NewFromConfig(awsCfg), prefix)
		if err != nil {
			fmt.Printf("Error reading SSM parameters: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Loaded %d parameters from %s\n", n, prefix)
	}

	settings := config.Load(env)
	setupLogging(settings)

	log.Info().Str("dbType", settings.DBType).Msg("Initializing app...")

	db, err := database.Open(database.Options{
		Type:       settings.DBType,
		DSN:        settings.DatabaseURL,
		SQLitePath: settings.SQLitePath,
		ReplicaDSN: settings.ReplicaDSN,
		Logger:     log.Logger,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	// If generating models, run generation and exit
	if config.GetBool(env, "GENERATE_MODELS", false) {
		log.Info().Msg("Generating models and query helpers...")
		if err := models.GenerateModels(db, config.GetString(env, "GENERATE_OUT_PATH", "./generated")); err != nil {
			log.Fatal().Err(err).Msg("Error generating models")
		}
		return
	}

	// If generating column mismatch report, run report and exit
	if config.GetBool(env, "GENERATE_COLUMN_REPORT", false) {
		log.Info().Msg("Generating column mismatch report...")
		if _, err := models.ColumnReport(db); err != nil {
			log.Fatal().Err(err).Msg("Error generating column report")
		}
		return
	}

	currentDB := database.New(db)
	defer currentDB.Close()

	if err := currentDB.Migrate(); err != nil {
		log.Fatal().Err(err).Msg("Error migrating database")
	}

	deps, err := buildDependencies(ctx, settings, currentDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing services")
	}

	if config.GetBool(env, "SEED_ADMIN", false) {
		seedAdmin(ctx, env, deps.Accounts)
		return
	}

	errChannel := make(chan error)
	defer close(errChannel)

	server, err := api.NewServer(settings, deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

func setupLogging(settings config.Settings) {
	level, err := zerolog.ParseLevel(settings.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if settings.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
}

// buildDependencies wires the services behind the HTTP surface. Redis and S3
// are only contacted when configured.
func buildDependencies(ctx context.Context, settings config.Settings, db database.Database) (api.Dependencies, error) {
	tokens, err := auth.NewTokenService(settings.JWTSecretKey, settings.SecretKey,
		auth.WithAccessTTL(settings.AccessTokenTTL),
		auth.WithResetTTL(settings.ResetTokenTTL),
	)
	if err != nil {
		return api.Dependencies{}, err
	}

	mailer, err := services.NewMailer(settings.Mail)
	if err != nil {
		return api.Dependencies{}, err
	}

	var ledger auth.ResetLedger = auth.NoopLedger{}
	if settings.RedisAddr != "" {
		rdb, err := auth.NewRedisClient(ctx, settings.RedisAddr, settings.RedisPassword)
		if err != nil {
			return api.Dependencies{}, err
		}
		ledger = auth.NewRedisLedger(rdb)
		log.Info().Str("addr", settings.RedisAddr).Msg("Reset tokens are single use")
	}

	var images *services.ImageService
	if settings.S3Bucket != "" {
		awsCfg, err := config.LoadAWS(ctx, settings.AWSRegion)
		if err != nil {
			return api.Dependencies{}, err
		}
		images = services.NewImageService(s3.NewFromConfig(awsCfg), settings.S3Bucket, settings.AWSRegion, settings.S3PublicBaseURL)
		log.Info().Str("bucket", settings.S3Bucket).Msg("Image uploads enabled")
	}

	return api.Dependencies{
		Database:   db,
		Tokens:     tokens,
		Accounts:   services.NewAccountService(db.UserRepo(), auth.NewBcryptHasher(settings.BcryptCost), tokens, mailer, ledger),
		Posts:      services.NewPostService(db.BlogPostRepo(), db.CategoryRepo()),
		Categories: services.NewCategoryService(db.CategoryRepo()),
		Images:     images,
	}, nil
}

func seedAdmin(ctx context.Context, env map[string]string, accounts *services.AccountService) {
	user, created, err := accounts.SeedAdmin(ctx, services.RegisterInput{
		Username: config.GetString(env, "ADMIN_USERNAME", "admin"),
		Email:    config.GetString(env, "ADMIN_EMAIL", "admin@example.com"),
		Password: config.GetString(env, "ADMIN_PASSWORD", "admin123"),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Error seeding admin user")
	}
	if !created {
		log.Info().Str("email", user.Email).Msg("Admin user already exists")
		return
	}
	log.Info().Str("email", user.Email).Uint("userID", user.ID).Msg("Admin user created successfully")
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
