package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/gin-gonic/gin"

	"talexus-backend/internal/account"
	"talexus-backend/internal/coverletters"
	"talexus-backend/internal/documents"
	"talexus-backend/internal/llm"
	openai "talexus-backend/internal/llm/openai"
	"talexus-backend/internal/queue"
	"talexus-backend/internal/resumes"
	"talexus-backend/internal/shared/config"
	"talexus-backend/internal/shared/server"
	"talexus-backend/internal/shared/storage/db"
	"talexus-backend/internal/shared/storage/object"
	localstore "talexus-backend/internal/shared/storage/object/local"
	s3store "talexus-backend/internal/shared/storage/object/s3"
	"talexus-backend/internal/shared/telemetry"
	"talexus-backend/internal/uploads"
	"talexus-backend/internal/users"
)

const (
	uploadsDefaultRegion = "us-east-1"
	uploadsDefaultPrefix = "documents/"
)

// App holds shared dependencies for the API server and the worker.
type App struct {
	Config             config.Config
	Router             *gin.Engine
	DB                 *sql.DB
	Store              object.ObjectStore
	Queue              queue.Client
	DocumentsRepo      documents.DocumentsRepo
	ResumesRepo        resumes.Repo
	UsersRepo          users.Repo
	DocumentsService   *documents.Service
	ResumesService     *resumes.Service
	ResumeProcessor    ResumeProcessor
	CoverLetterService *coverletters.Service
	AccountService     *account.Service
	UsersService       *users.Service
	DocumentsHandler   *documents.Handler
	ResumesHandler     *resumes.Handler
	CoverLetterHandler *coverletters.Handler
	AccountHandler     *account.Handler
	UsersHandler       *users.Handler
	UploadsHandler     *uploads.Handler
}

// ResumeProcessor allows callers to override parse processing for tests.
type ResumeProcessor interface {
	ProcessParse(ctx context.Context, userId, resumeID string) error
}

// Build prepares shared dependencies and the HTTP router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx, cfg)
	if err != nil {
		return nil, err
	}

	uploadsHandler, err := buildUploads(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:         cfg,
		DB:             sqlDB,
		Store:          store,
		Queue:          queueClient,
		UploadsHandler: uploadsHandler,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:             app.Config,
		DocumentHandler:    app.DocumentsHandler,
		ResumeHandler:      app.ResumesHandler,
		CoverLetterHandler: app.CoverLetterHandler,
		AccountHandler:     app.AccountHandler,
		UserHandler:        app.UsersHandler,
		UploadsHandler:     app.UploadsHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	defaults := db.DefaultServerOptions()
	if db.IsLambdaRuntime() {
		defaults = db.DefaultLambdaOptions()
	}
	opts := db.OptionsFromEnv(defaults)

	var sqlDB *sql.DB
	var err error
	if db.IsLambdaRuntime() {
		// Lambda execution environments share one pool across invocations.
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context, cfg config.Config) (queue.Client, error) {
	if strings.TrimSpace(cfg.SQSQueueURL) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func buildUploads(ctx context.Context) (*uploads.Handler, error) {
	bucket := strings.TrimSpace(os.Getenv("UPLOADS_S3_BUCKET"))
	if bucket == "" {
		return nil, nil
	}

	region := strings.TrimSpace(os.Getenv("AWS_REGION"))
	if region == "" {
		region = uploadsDefaultRegion
	}
	prefix := strings.TrimSpace(os.Getenv("UPLOADS_S3_PREFIX"))
	if prefix == "" {
		prefix = uploadsDefaultPrefix
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg)
	return uploads.NewHandler(s3.NewPresignClient(client), bucket, prefix), nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	var docRepo documents.DocumentsRepo
	var resumeRepo resumes.Repo
	var userRepo users.Repo

	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		resumeRepo = &resumes.PGRepo{DB: app.DB}
		userRepo = &users.PGRepo{DB: app.DB}
	} else {
		docRepo = documents.NewMemoryRepo()
		resumeRepo = resumes.NewMemoryRepo()
		userRepo = users.NewMemoryRepo()
	}

	llmClient := llm.Client(llm.PlaceholderClient{})
	if app.Config.LLMProvider == "openai" {
		openaiClient, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), app.Config.LLMModel)
		switch {
		case err == nil:
			llmClient = openaiClient
		case app.Config.Env == "production":
			return err
		default:
			// Local runs without credentials keep the placeholder client.
			telemetry.Warn("llm.placeholder", map[string]any{"reason": err.Error()})
		}
	}

	userSvc := users.NewService(userRepo)

	resumeSvc := &resumes.Service{
		Repo:          resumeRepo,
		Store:         app.Store,
		Queue:         app.Queue,
		LLM:           llmClient,
		Names:         userSvc,
		PromptVersion: app.Config.PromptVersion,
	}

	docSvc := &documents.Service{
		Store:  app.Store,
		Repo:   docRepo,
		Parser: parseStarter{svc: resumeSvc},
	}

	coverLetterSvc := &coverletters.Service{
		Resumes: resumeSvc,
		LLM:     llmClient,
	}

	app.DocumentsRepo = docRepo
	app.ResumesRepo = resumeRepo
	app.UsersRepo = userRepo
	app.DocumentsService = docSvc
	app.ResumesService = resumeSvc
	app.ResumeProcessor = resumeSvc
	app.CoverLetterService = coverLetterSvc
	app.AccountService = account.NewService(docRepo, resumeRepo)
	app.UsersService = userSvc
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.ResumesHandler = resumes.NewHandler(resumeSvc)
	app.CoverLetterHandler = coverletters.NewHandler(coverLetterSvc)
	app.AccountHandler = account.NewHandler(app.AccountService)
	app.UsersHandler = users.NewHandler(userSvc)

	return nil
}

// parseStarter bridges document uploads to the resumes service without a
// package cycle.
type parseStarter struct {
	svc *resumes.Service
}

func (p parseStarter) StartParse(ctx context.Context, userId, documentID, fileName, storageKey, mimeType string) (string, error) {
	job, err := p.svc.StartParse(ctx, userId, documentID, fileName, storageKey, mimeType)
	if err != nil {
		return "", err
	}
	return job.ID, nil
}
