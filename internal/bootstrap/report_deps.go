package bootstrap

import (
	"context"

	"report_server/adapter/out/mail"
	"report_server/adapter/out/mongodb"
	"report_server/adapter/out/persistence"
	"report_server/config"
	"report_server/core/llm"
	"report_server/core/port/out"
	"report_server/core/service/analysis"
	"report_server/core/service/report"
	"report_server/infra/database"
	"report_server/internal/stream"
	"report_server/pkg/logger"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
)

// Dependencies holds every wired collaborator. The API and the worker share
// a single dependency graph so both modes run the same pipeline.
type Dependencies struct {
	Config  *config.Config
	DB      *pgxpool.Pool
	SQLDB   *sqlx.DB
	Redis   *redis.Client
	MongoDB *mongo.Client

	// Repositories
	UserRepo   out.UserRepository
	EntryRepo  out.EntryRepository
	ReportRepo out.ReportRepository

	// Collaborators
	DocumentStore out.DocumentStore
	Notifier      out.ReportNotifier
	Producer      out.JobProducer

	// Services
	LLMClient        *llm.Client
	SentimentService *analysis.Service
	ReportService    *report.Service

	// Stream
	Stream *stream.RedisStream
}

func NewDependencies(cfg *config.Config, zlog zerolog.Logger) (*Dependencies, func(), error) {
	deps := &Dependencies{Config: cfg}
	var cleanups []func()

	// Database (pgxpool, used by the readiness probe)
	db, err := database.NewPostgres(cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	deps.DB = db
	cleanups = append(cleanups, func() { db.Close() })

	// Database (sqlx for the persistence adapters)
	sqlDB, err := database.NewSQLX(cfg.DatabaseURL)
	if err != nil {
		runCleanups(cleanups)
		return nil, nil, err
	}
	deps.SQLDB = sqlDB
	cleanups = append(cleanups, func() { sqlDB.Close() })

	// Redis (job stream)
	redisClient, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		runCleanups(cleanups)
		return nil, nil, err
	}
	deps.Redis = redisClient
	cleanups = append(cleanups, func() { redisClient.Close() })

	deps.Stream = stream.NewRedisStream(redisClient, stream.GroupReportWorkers, zlog)
	deps.Producer = stream.NewProducer(deps.Stream)

	// MongoDB (document store, optional)
	if cfg.MongoDBURL != "" {
		mongoClient, err := mongodb.NewClient(cfg.MongoDBURL, cfg.MongoDBName)
		if err != nil {
			logger.Warn("MongoDB connection failed, document storage disabled: %v", err)
		} else {
			deps.MongoDB = mongoClient
			cleanups = append(cleanups, func() {
				mongoClient.Disconnect(context.Background())
			})

			docAdapter := mongodb.NewDocumentAdapter(mongoClient.Database(cfg.MongoDBName), cfg.DocumentTTL)
			if err := docAdapter.EnsureIndexes(context.Background()); err != nil {
				logger.Warn("Failed to ensure MongoDB indexes: %v", err)
			}
			deps.DocumentStore = docAdapter
		}
	}

	// Gmail notifier (optional)
	if cfg.GoogleClientID != "" && cfg.GoogleRefreshToken != "" && cfg.MailSenderAddress != "" {
		deps.Notifier = mail.NewGmailAdapter(&mail.GmailConfig{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RefreshToken: cfg.GoogleRefreshToken,
			SenderEmail:  cfg.MailSenderAddress,
			APIBaseURL:   cfg.APIBaseURL,
			MaxRetries:   cfg.MailMaxRetries,
		})
	} else {
		logger.Warn("Gmail credentials missing, report notifications disabled")
	}

	// Repositories
	deps.UserRepo = persistence.NewUserAdapter(sqlDB)
	deps.EntryRepo = persistence.NewEntryAdapter(sqlDB)
	deps.ReportRepo = persistence.NewReportAdapter(sqlDB)

	// LLM + sentiment analysis
	deps.LLMClient = llm.NewClientWithConfig(llm.ClientConfig{
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.LLMModel,
		MaxTokens:   cfg.LLMMaxTokens,
		Temperature: cfg.LLMTemperature,
	})
	deps.SentimentService = analysis.NewService(deps.LLMClient)

	// Report service
	analyzer := report.NewAnalyzer(report.NewTagClassifier(cfg.WeatherKeywords, cfg.ActivityKeywords))
	deps.ReportService = report.NewService(
		deps.UserRepo,
		deps.EntryRepo,
		deps.ReportRepo,
		analyzer,
		deps.SentimentService,
		deps.DocumentStore,
		deps.Notifier,
		deps.Producer,
	)

	cleanup := func() { runCleanups(cleanups) }
	return deps, cleanup, nil
}

func runCleanups(cleanups []func()) {
	for i := len(cleanups) - 1; i >= 0; i-- {
		cleanups[i]()
	}
}
