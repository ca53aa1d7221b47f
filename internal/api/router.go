package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/your-org/attendance/internal/api/handlers"
	"github.com/your-org/attendance/internal/api/ws"
	"github.com/your-org/attendance/internal/auth"
	"github.com/your-org/attendance/internal/identity"
	"github.com/your-org/attendance/internal/ledger"
	"github.com/your-org/attendance/internal/queue"
	"github.com/your-org/attendance/internal/storage"
)

type RouterConfig struct {
	Tokens   *auth.TokenManager
	Identity *identity.Service
	Ledger   *ledger.Ledger
	DB       *storage.PostgresStore
	MinIO    *storage.MinIOStore
	Producer *queue.Producer
	Hub      *ws.Hub
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(LoggingMiddleware())
	r.Use(cors.Default())

	// System endpoints (no auth)
	systemH := handlers.NewSystemHandler(cfg.DB, cfg.MinIO, cfg.Producer)
	r.GET("/healthz", systemH.Healthz)
	r.GET("/readyz", systemH.Readyz)
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	authH := handlers.NewAuthHandler(cfg.Identity)
	profileH := handlers.NewProfileHandler(cfg.Identity, cfg.MinIO)
	attendanceH := handlers.NewAttendanceHandler(cfg.Ledger, cfg.DB, cfg.MinIO, cfg.Producer)

	v1 := r.Group("/v1")

	// Public auth endpoints
	v1.POST("/auth/login", authH.Login)
	v1.POST("/auth/register", authH.Register)

	// Everything else requires an active session
	authed := v1.Group("")
	authed.Use(auth.Middleware(cfg.Tokens, cfg.Identity))

	authed.POST("/auth/logout", authH.Logout)

	// WebSocket
	authed.GET("/ws", cfg.Hub.HandleWS)

	// Profile
	authed.GET("/me", profileH.Me)
	authed.PATCH("/me", profileH.Update)
	authed.POST("/me/avatar", profileH.UploadAvatar)
	authed.GET("/me/avatar", profileH.Avatar)

	// Attendance
	authed.POST("/attendance/check-in", attendanceH.CheckIn)
	authed.POST("/attendance/check-out", attendanceH.CheckOut)
	authed.GET("/attendance/today", attendanceH.Today)
	authed.GET("/attendance/records", attendanceH.Records)
	authed.GET("/attendance/summary", attendanceH.Summary)
	authed.GET("/attendance/records/:id/photo/:kind", attendanceH.Photo)

	return r
}
