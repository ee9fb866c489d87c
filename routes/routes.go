package routes

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/onmax/lingai/controllers"
	"github.com/onmax/lingai/middleware"
	"github.com/onmax/lingai/ws"
)

func SetupRouter(r *gin.Engine, db *gorm.DB) *gin.Engine {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{"message": "pong"})
	})
	r.GET("/health", middleware.DBMiddleware(db), controllers.HealthCheck)

	api := r.Group("/api")
	api.Use(middleware.DBMiddleware(db))

	auth := api.Group("/auth")
	{
		auth.POST("/register", controllers.Register)
		auth.POST("/login", controllers.Login)
		auth.POST("/logingoogle", controllers.GoogleLogin)
	}

	// Danh mục tĩnh, không cần đăng nhập
	api.GET("/topics", controllers.ListTopics)
	api.GET("/languages", controllers.ListLanguages)

	onboarding := api.Group("/onboarding")
	{
		onboarding.Use(middleware.AuthMiddleware())
		onboarding.POST("", controllers.CompleteOnboarding)
		onboarding.GET("", controllers.GetOnboardingStatus)
	}

	user := api.Group("/user")
	{
		user.Use(middleware.AuthMiddleware())

		user.GET("/profile", controllers.GetProfile)
		user.PUT("/profile", controllers.UpdateProfile)
		user.DELETE("/account", controllers.DeleteAccount)

		// Bài học xem gần nhất
		user.GET("/progress", controllers.GetProgress)
		user.PUT("/progress", controllers.UpdateProgress)

		// Tiến độ luyện tập theo câu
		user.GET("/progress/sentences", controllers.GetSentenceProgress)
		user.PUT("/progress/sentences", controllers.UpdateSentenceProgress)
		user.POST("/progress/sentences/:id/practice", controllers.PracticeSentence)
	}

	lessons := api.Group("/lessons")
	{
		lessons.Use(middleware.AuthMiddleware())

		lessons.POST("/generate", controllers.GenerateLesson)
		lessons.POST("/:id/generate-next", controllers.GenerateNextLesson)
		lessons.GET("", controllers.ListLessons)
		lessons.GET("/:id", controllers.GetLesson)
		lessons.GET("/:id/navigation", controllers.GetLessonNavigation)
		lessons.GET("/:id/sentences", controllers.ListLessonSentences)
		lessons.GET("/:id/content", controllers.GetLessonContent)
		lessons.GET("/:id/jobs", controllers.ListLessonJobs)

		lessons.POST("/:id/generate-audio", controllers.GenerateAudio)
		lessons.POST("/retry-audio", controllers.RetryAudio)
		lessons.POST("/retry-comic-image", controllers.RetryComicImage)

		lessons.GET("/sentences/:id", controllers.GetSentence)
	}

	jobs := api.Group("/jobs")
	{
		jobs.Use(middleware.AuthMiddleware())
		jobs.GET("/:id", controllers.GetJob)
	}

	// Blob media: URL đã lưu trong DB trỏ thẳng vào đây.
	// Không bắt buộc đăng nhập, nhưng client có token vẫn được nhận diện.
	media := api.Group("")
	{
		media.Use(middleware.OptionalAuthMiddleware())
		media.GET("/audio/*path", controllers.StreamAudio)
		media.GET("/images/*path", controllers.StreamImage)
		media.GET("/recap/*path", controllers.StreamRecap)
		media.GET("/content/*path", controllers.StreamLessonContent)
	}

	// WebSocket theo dõi job nền của lesson (token qua query param)
	r.GET("/ws/lessons/:id", ws.HandleLessonWebSocket)

	return r
}
