package routes

import (
	"net/http"

	"github.com/orbitdrive/orbitdrive/internal/app"
	"github.com/orbitdrive/orbitdrive/internal/handler"
	"github.com/orbitdrive/orbitdrive/internal/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(app *app.App) http.Handler {
	// Handlers
	folder := handler.NewFolderHandler(app.NavigatorService, app.FolderService, app.PermissionService)
	file := handler.NewFileHandler(app.FileService, app.VersionService, app.ActivityService)
	upload := handler.NewUploadHandler(app.UploadService)
	trash := handler.NewTrashHandler(app.TrashService)
	share := handler.NewShareHandler(app.ShareService)
	bulk := handler.NewBulkHandler(app.BulkService)
	quota := handler.NewQuotaHandler(app.QuotaService)
	realtime := handler.NewRealtimeHandler(app.Hub)

	mux := http.NewServeMux()

	// ============================================================================
	// PUBLIC ROUTES
	// ============================================================================

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
	mux.Handle("GET /metrics", promhttp.Handler())

	// Share links: the token is the credential
	mux.HandleFunc("GET /shares/{token}", share.Resolve)
	mux.HandleFunc("GET /shares/{token}/download", share.Download)

	// ============================================================================
	// PROTECTED ROUTES (/api/v1/*)
	// ============================================================================

	uploadLimiter := middleware.RateLimitUploads()

	// Navigation (folder_id query param, absent = root level)
	mux.HandleFunc("GET /api/v1/browse", middleware.RequireAuth(folder.Browse))

	// Folders
	mux.HandleFunc("POST /api/v1/folders", middleware.RequireAuth(folder.Create))
	mux.HandleFunc("PATCH /api/v1/folders/{id}/name", middleware.RequireAuth(folder.Rename))
	mux.HandleFunc("PATCH /api/v1/folders/{id}/parent", middleware.RequireAuth(folder.Move))
	mux.HandleFunc("DELETE /api/v1/folders/{id}", middleware.RequireAuth(folder.Delete))

	// Folder permissions
	mux.HandleFunc("GET /api/v1/folders/{id}/permissions", middleware.RequireAuth(folder.Permissions))
	mux.HandleFunc("POST /api/v1/folders/{id}/permissions", middleware.RequireAuth(folder.Grant))
	mux.HandleFunc("DELETE /api/v1/folders/{id}/permissions/{userId}", middleware.RequireAuth(folder.RevokeGrant))

	// Files
	mux.HandleFunc("POST /api/v1/files", uploadLimiter(middleware.RequireAuth(upload.Upload)))
	mux.HandleFunc("GET /api/v1/files/search", middleware.RequireAuth(file.Search))
	mux.HandleFunc("GET /api/v1/files/{id}", middleware.RequireAuth(file.Get))
	mux.HandleFunc("PATCH /api/v1/files/{id}/name", middleware.RequireAuth(file.Rename))
	mux.HandleFunc("PATCH /api/v1/files/{id}/folder", middleware.RequireAuth(file.Move))
	mux.HandleFunc("PATCH /api/v1/files/{id}/star", middleware.RequireAuth(file.Star))
	mux.HandleFunc("GET /api/v1/files/{id}/download", middleware.RequireAuth(file.Download))
	mux.HandleFunc("GET /api/v1/files/{id}/activity", middleware.RequireAuth(file.Activity))

	// Versions
	mux.HandleFunc("GET /api/v1/files/{id}/versions", middleware.RequireAuth(file.Versions))
	mux.HandleFunc("POST /api/v1/files/{id}/versions/{versionId}/restore", middleware.RequireAuth(file.RestoreVersion))

	// Trash
	mux.HandleFunc("GET /api/v1/trash", middleware.RequireAuth(trash.List))
	mux.HandleFunc("POST /api/v1/files/{id}/trash", middleware.RequireAuth(trash.Trash))
	mux.HandleFunc("POST /api/v1/files/{id}/restore", middleware.RequireAuth(trash.Restore))
	mux.HandleFunc("DELETE /api/v1/trash/{id}", middleware.RequireAuth(trash.Purge))
	mux.HandleFunc("DELETE /api/v1/trash", middleware.RequireAuth(trash.Empty))

	// Shares
	mux.HandleFunc("POST /api/v1/shares", middleware.RequireAuth(share.Create))
	mux.HandleFunc("GET /api/v1/shares", middleware.RequireAuth(share.List))
	mux.HandleFunc("DELETE /api/v1/shares/{token}", middleware.RequireAuth(share.Revoke))

	// Bulk operations
	mux.HandleFunc("POST /api/v1/bulk/move", middleware.RequireAuth(bulk.Move))
	mux.HandleFunc("POST /api/v1/bulk/delete", middleware.RequireAuth(bulk.Delete))
	mux.HandleFunc("POST /api/v1/bulk/download-urls", middleware.RequireAuth(bulk.DownloadURLs))

	// Quota
	mux.HandleFunc("GET /api/v1/quota", middleware.RequireAuth(quota.Usage))
	mux.HandleFunc("POST /api/v1/quota/recalculate", middleware.RequireAuth(quota.Recalculate))

	// Realtime change events
	mux.HandleFunc("GET /api/v1/events", middleware.RequireAuth(realtime.Events))

	// Global middleware - executed in order (top to bottom)
	handler := middleware.Chain(
		mux,
		middleware.Metrics,
		middleware.RequestLogging,
		middleware.AuthMiddleware(app.Cfg.JWTSecret),
	)

	return handler
}
