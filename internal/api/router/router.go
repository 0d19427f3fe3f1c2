package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/forhay123/haybee-edu-sub009/config"
	"github.com/forhay123/haybee-edu-sub009/internal/api/handler"
	"github.com/forhay123/haybee-edu-sub009/internal/api/middleware"
	"github.com/forhay123/haybee-edu-sub009/pkg/jwt"
	"github.com/forhay123/haybee-edu-sub009/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(2 << 20)) // 2MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1（认证由平台签发的 JWT 承载，本服务只验签）──
	v1 := r.Group("/api/v1")
	v1.Use(middleware.JWTAuth(jwtMgr))
	{
		// 课表模块
		timetables := v1.Group("/timetables")
		{
			timetables.POST("", middleware.RoleAuth("admin", "teacher"), h.Timetable.Upload)
			timetables.POST("/import-ics", middleware.RoleAuth("admin", "teacher"), h.Timetable.ImportICS)
			timetables.GET("/:id", h.Timetable.Get)
			timetables.POST("/:id/extraction-result", middleware.RoleAuth("admin"), h.Timetable.ExtractionCallback)
			timetables.GET("/:id/conflicts", middleware.RoleAuth("admin", "teacher"), h.Timetable.ListConflicts)
			timetables.POST("/:id/conflicts/resolve", middleware.RoleAuth("admin", "teacher"), h.Timetable.ResolveConflict)
		}

		// 排课模块
		schedules := v1.Group("/schedules")
		{
			schedules.POST("/generate", middleware.RoleAuth("admin", "teacher"), h.Schedule.Generate)
			schedules.GET("", h.Schedule.List)
			schedules.GET("/:id/access", h.Schedule.Accessibility)
		}

		// 测评提交模块（限流防刷）
		submissions := v1.Group("/submissions")
		submissions.Use(middleware.RateLimit(rdb, 30, time.Minute))
		{
			submissions.POST("", middleware.RoleAuth("student"), h.Submission.Submit)
		}

		// 公共假期模块
		holidays := v1.Group("/holidays")
		{
			holidays.GET("", h.Holiday.List)
			holidays.POST("", middleware.RoleAuth("admin"), h.Holiday.Create)
			holidays.DELETE("/:id", middleware.RoleAuth("admin"), h.Holiday.Delete)
		}

		// 归档模块
		archives := v1.Group("/archives")
		{
			archives.POST("", middleware.RoleAuth("admin"), h.Archive.ArchiveTermWeek)
		}

		// 导出模块
		export := v1.Group("/export")
		{
			export.GET("/weekly-plan", h.Export.ExportWeeklyPlan)
		}
	}

	return r
}
