package routes

import (
	"net/http"
	"strings"
	"time"

	"newsdesk/handlers"
	"newsdesk/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Handlers groups everything the router mounts.
type Handlers struct {
	Admins    *handlers.AdminHandler
	Users     *handlers.UserHandler
	Posts     *handlers.PostHandler
	Comments  *handlers.CommentHandler
	Reviews   *handlers.ReviewHandler
	WebSocket http.HandlerFunc
}

type Options struct {
	CORSOrigins []string
	// AuthLimiter throttles the unauthenticated account endpoints.
	AuthLimiter *middleware.IPRateLimiter
}

func SetupRouter(h Handlers, authn *middleware.Authenticator, opts Options) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	corsConfig := cors.Config{
		AllowOrigins:     opts.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", "Accept", "X-Requested-With"},
		ExposeHeaders:    []string{"Content-Length", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(opts.CORSOrigins) == 0 {
		corsConfig.AllowOrigins = nil
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok", "time": time.Now().Unix()})
	})

	limit := func(c *gin.Context) { c.Next() }
	if opts.AuthLimiter != nil {
		limit = middleware.RateLimit(opts.AuthLimiter)
	}
	adminAuth := authn.AdminAuth()
	userAuth := authn.UserAuth()

	user := router.Group("/api/user")
	{
		user.POST("/register", limit, h.Users.Register)
		user.POST("/verify-otp", limit, h.Users.VerifyOTP)
		user.POST("/login", limit, h.Users.Login)
		user.POST("/forgot-password", limit, h.Users.ForgotPassword)
		user.POST("/reset-password", limit, h.Users.ResetPassword)
		user.GET("/profile/:id", h.Users.Profile)
		user.PUT("/profile/edit", userAuth, h.Users.EditProfile)
	}

	admin := router.Group("/api/admin")
	{
		admin.POST("/register", limit, h.Admins.Register)
		admin.POST("/verify-otp", limit, h.Admins.VerifyOTP)
		admin.POST("/login", limit, h.Admins.Login)
		admin.POST("/forgot-password", limit, h.Admins.ForgotPassword)
		admin.POST("/reset-password", limit, h.Admins.ResetPassword)
		admin.GET("/profile/:adminId", h.Admins.Profile)
		admin.GET("/search/:query", h.Admins.Search)
		admin.GET("/all", h.Admins.All)
		admin.POST("/follow-unfollow/:adminId", userAuth, h.Admins.FollowUnfollow)
		admin.PUT("/edit-profile/:adminId", adminAuth, h.Admins.EditProfile)
	}

	post := router.Group("/api/post")
	{
		post.POST("/create", adminAuth, h.Posts.Create)
		post.GET("", h.Posts.Feed)
		post.GET("/", h.Posts.Feed)
		post.GET("/tag/:tag", h.Posts.ByTag)
		post.GET("/admin/:id", authn.OptionalAuth(), h.Posts.ByAdmin)
		post.PUT("/like/:id", userAuth, h.Posts.Like)
		post.GET("/reported", adminAuth, h.Posts.Reported)
		post.GET("/drafts", adminAuth, h.Posts.Drafts)
		post.GET("/scheduled", adminAuth, h.Posts.Scheduled)
		post.GET("/published", adminAuth, h.Posts.Published)
		post.GET("/:id", h.Posts.Get)
		post.PUT("/update/:id", adminAuth, h.Posts.Update)
		post.PUT("/update/status/:id", adminAuth, h.Posts.UpdateStatus)
		post.DELETE("/delete/:id", adminAuth, h.Posts.Delete)
		post.POST("/report/:id", userAuth, h.Posts.Report)
	}

	comment := router.Group("/api/comment")
	{
		comment.GET("/reported", adminAuth, h.Comments.Reported)
		comment.PUT("/addcomment/:id", userAuth, h.Comments.Add)
		comment.GET("/comments/:id", h.Comments.List)
		comment.POST("/report/:id", userAuth, h.Comments.Report)
	}

	review := router.Group("/api/review")
	{
		review.POST("/add-or-update", userAuth, h.Reviews.AddOrUpdate)
		review.GET("/fetch/:postId", h.Reviews.List)
	}

	if h.WebSocket != nil {
		router.GET("/ws", gin.WrapF(h.WebSocket))
	}

	router.NoRoute(func(c *gin.Context) {
		if strings.HasPrefix(c.Request.URL.Path, "/api") {
			c.JSON(http.StatusNotFound, gin.H{"message": "Endpoint not found", "path": c.Request.URL.Path})
			return
		}
		c.Status(http.StatusNotFound)
	})

	return router
}
