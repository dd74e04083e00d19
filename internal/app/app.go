package app

import (
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/orbitdrive/orbitdrive/internal/config"
	"github.com/orbitdrive/orbitdrive/internal/db"
	"github.com/orbitdrive/orbitdrive/internal/realtime"
	"github.com/orbitdrive/orbitdrive/internal/repository"
	"github.com/orbitdrive/orbitdrive/internal/service"
	"github.com/orbitdrive/orbitdrive/internal/storage"
)

type App struct {
	Cfg *config.Config
	DB  *sqlx.DB
	Hub *realtime.Hub

	NavigatorService  *service.NavigatorService
	FolderService     *service.FolderService
	FileService       *service.FileService
	UploadService     *service.UploadService
	TrashService      *service.TrashService
	VersionService    *service.VersionService
	BulkService       *service.BulkService
	ShareService      *service.ShareService
	PermissionService *service.PermissionService
	QuotaService      *service.QuotaService
	ActivityService   *service.ActivityService
	SweepService      *service.SweepService
}

func New(cfg *config.Config) (*App, error) {
	// Initialize database
	database, err := db.Init(cfg.DBDriver, cfg.DBConnection)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %v", err)
	}

	// Run database migrations
	err = db.RunMigrations(database.DB, cfg.DBDriver)
	if err != nil {
		return nil, fmt.Errorf("failed to run migrations: %v", err)
	}

	// Repositories
	folderRepository := repository.NewFolderRepository(database)
	fileRepository := repository.NewFileRepository(database)
	versionRepository := repository.NewVersionRepository(database)
	quotaRepository := repository.NewQuotaRepository(database)
	shareRepository := repository.NewShareRepository(database)
	permissionRepository := repository.NewPermissionRepository(database)
	activityRepository := repository.NewActivityRepository(database)

	// Storage
	objectStorage, err := storage.New(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %v", err)
	}

	hub := realtime.NewHub()
	folderLocks := service.NewKeyedMutex()

	// Services
	activityService := service.NewActivityService(activityRepository)
	quotaService := service.NewQuotaService(quotaRepository, fileRepository, cfg.QuotaDefaultBytes, cfg.QuotaEnforce)
	permissionService := service.NewPermissionService(permissionRepository, folderRepository, activityService)
	navigatorService := service.NewNavigatorService(folderRepository, fileRepository, permissionService)
	folderService := service.NewFolderService(
		folderRepository,
		fileRepository,
		versionRepository,
		objectStorage,
		quotaService,
		permissionService,
		activityService,
		hub,
		folderLocks,
	)
	fileService := service.NewFileService(
		fileRepository,
		folderRepository,
		objectStorage,
		permissionService,
		activityService,
		hub,
		cfg.S3PresignExpiry,
	)
	uploadService := service.NewUploadService(
		fileRepository,
		versionRepository,
		objectStorage,
		cfg.S3Bucket,
		quotaService,
		permissionService,
		activityService,
		hub,
		folderLocks,
	)
	trashService := service.NewTrashService(
		fileRepository,
		versionRepository,
		objectStorage,
		quotaService,
		permissionService,
		activityService,
		hub,
	)
	versionService := service.NewVersionService(
		fileRepository,
		versionRepository,
		objectStorage,
		permissionService,
		activityService,
		hub,
	)
	bulkService := service.NewBulkService(fileService, folderService, trashService, cfg.BulkDownloadStagger)
	shareService := service.NewShareService(
		shareRepository,
		fileRepository,
		folderRepository,
		permissionService,
		activityService,
		objectStorage,
		cfg.S3PresignExpiry,
	)
	sweepService := service.NewSweepService(versionRepository, objectStorage, cfg.OrphanSweepGrace)

	return &App{
		Cfg: cfg,
		DB:  database,
		Hub: hub,

		NavigatorService:  navigatorService,
		FolderService:     folderService,
		FileService:       fileService,
		UploadService:     uploadService,
		TrashService:      trashService,
		VersionService:    versionService,
		BulkService:       bulkService,
		ShareService:      shareService,
		PermissionService: permissionService,
		QuotaService:      quotaService,
		ActivityService:   activityService,
		SweepService:      sweepService,
	}, nil
}

func (a *App) Close() error {
	if a.DB != nil {
		return a.DB.Close()
	}
	return nil
}
