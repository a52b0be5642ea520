package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"

	"github.com/gin-gonic/gin"

	"findoc-backend/internal/analyzer"
	"findoc-backend/internal/documents"
	"findoc-backend/internal/health"
	"findoc-backend/internal/jobs"
	"findoc-backend/internal/query"
	"findoc-backend/internal/queue"
	"findoc-backend/internal/shared/auth"
	"findoc-backend/internal/shared/config"
	"findoc-backend/internal/shared/server"
	"findoc-backend/internal/shared/storage/db"
	localstore "findoc-backend/internal/shared/storage/object/local"
	"findoc-backend/internal/users"
)

// App holds shared dependencies with an explicit startup/shutdown lifecycle.
// Everything is constructed here and injected; nothing is a package-level
// singleton.
type App struct {
	Config     config.Config
	Router     *gin.Engine
	DB         *sql.DB
	Tokens     *auth.Tokens
	Store      *localstore.Store
	Dispatcher *queue.Dispatcher
	Analyzer   analyzer.Client

	UsersRepo users.Repo
	DocsRepo  documents.Repo

	UsersService *users.Service
	DocsService  *documents.Service
	Runner       *jobs.Runner
	Health       *health.Service
}

// Build prepares all dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	ctx := context.Background()

	tokens, err := auth.NewTokens(cfg.JWTSecret, cfg.JWTAlgorithm, cfg.TokenTTL, cfg.Env)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store := localstore.New(cfg.LocalStoreDir)

	var usersRepo users.Repo
	var docsRepo documents.Repo
	if sqlDB != nil {
		usersRepo = &users.PGRepo{DB: sqlDB}
		docsRepo = &documents.PGRepo{DB: sqlDB}
	} else {
		usersRepo = users.NewMemoryRepo()
		docsRepo = documents.NewMemoryRepo()
	}

	analyzerClient, err := buildAnalyzer(cfg)
	if err != nil {
		return nil, err
	}

	usersSvc := users.NewService(usersRepo, tokens, cfg.AllowedUsers, cfg.EnforcePassword)
	docsSvc := &documents.Service{Store: store, Repo: docsRepo}

	runner := &jobs.Runner{
		Docs:     docsRepo,
		Store:    store,
		Analyzer: analyzerClient,
	}
	dispatcher := queue.NewDispatcher(runner.Process)
	runner.Queue = dispatcher

	healthSvc := health.NewService(sqlDB)

	usersHandler := users.NewHandler(usersSvc)
	docsHandler := documents.NewHandler(docsSvc, cfg.MaxUploadMB)
	jobsHandler := jobs.NewHandler(runner)
	queryHandler := query.NewHandler(docsSvc, store, analyzerClient)

	router := server.NewRouter(server.RouterDeps{
		Config:        cfg,
		Tokens:        tokens,
		UserLookup:    usersSvc,
		HealthHandler: healthSvc.Handler(),
		Public:        []server.PublicRegistrar{usersHandler},
		Authenticated: []server.RouteRegistrar{usersHandler, docsHandler, jobsHandler, queryHandler},
	})

	return &App{
		Config:       cfg,
		Router:       router,
		DB:           sqlDB,
		Tokens:       tokens,
		Store:        store,
		Dispatcher:   dispatcher,
		Analyzer:     analyzerClient,
		UsersRepo:    usersRepo,
		DocsRepo:     docsRepo,
		UsersService: usersSvc,
		DocsService:  docsSvc,
		Runner:       runner,
		Health:       healthSvc,
	}, nil
}

// Close waits for in-flight analyses and releases shared resources.
func (a *App) Close() error {
	if a.Dispatcher != nil {
		a.Dispatcher.Wait()
	}
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err != nil {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return sqlDB, nil
}

func buildAnalyzer(cfg config.Config) (analyzer.Client, error) {
	switch cfg.AnalyzerProvider {
	case "crew":
		return analyzer.NewCrewClient(cfg.CrewServiceURL, cfg.CrewTimeout)
	case "local":
		return analyzer.LocalClient{}, nil
	default:
		return analyzer.Placeholder{}, nil
	}
}

func isDevLike(env string) bool {
	switch env {
	case "dev", "local":
		return true
	default:
		return false
	}
}
