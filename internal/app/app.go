package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/storebox/storebox/internal/config"
	"github.com/storebox/storebox/internal/db"
	"github.com/storebox/storebox/internal/repository"
	"github.com/storebox/storebox/internal/service"
	"github.com/storebox/storebox/internal/storage"
)

type App struct {
	Cfg          *config.Config
	DB           *sqlx.DB
	AuthService  *service.AuthService
	FileService  *service.FileService
	EmailService *service.EmailService
	Reconciler   *service.Reconciler
}

func New(cfg *config.Config) (*App, error) {
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	accountRepository := repository.NewAccountRepository(database)
	userRepository := repository.NewUserRepository(database)
	otpRepository := repository.NewOTPRepository(database)
	sessionRepository := repository.NewSessionRepository(database)
	fileRepository := repository.NewFileRepository(database)

	// Blob storage
	blobStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	// Services
	emailService := service.NewEmailService(
		cfg.ResendAPIKey,
		cfg.EmailFrom,
		cfg.AppName,
		cfg.IsDevelopment(),
	)
	authService := service.NewAuthService(
		accountRepository,
		userRepository,
		otpRepository,
		sessionRepository,
		emailService,
		cfg.OTPExpiry,
		cfg.SessionExpiry,
	)
	fileService := service.NewFileService(
		fileRepository,
		blobStorage,
		cfg.StorageCapacity,
		cfg.MaxUploadSize,
	)
	reconciler := service.NewReconciler(
		fileRepository,
		blobStorage,
		cfg.ReconcileInterval,
		cfg.ReconcileGrace,
	)

	return &App{
		Cfg:          cfg,
		DB:           database,
		AuthService:  authService,
		FileService:  fileService,
		EmailService: emailService,
		Reconciler:   reconciler,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
