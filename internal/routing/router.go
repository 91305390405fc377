package routing

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"mysocial-server/internal/handlers"
	"mysocial-server/internal/managers"
	"mysocial-server/internal/middleware"
	"mysocial-server/internal/schemas"
	"mysocial-server/internal/tokens"
	"mysocial-server/internal/utils"
)

const (
	apiVersion = "1.0"
	apiName    = "MySocial API"
)

// InitRouter wires the middleware chain and all routes onto a gin engine.
func InitRouter(databaseMgr managers.DatabaseMgr, mailMgr managers.MailMgr, jwtMgr managers.JWTMgr, mediaMgr managers.MediaMgr, tokenIssuer *tokens.Issuer) *gin.Engine {
	router := gin.New()
	setupCommonMiddleware(router)

	userHdl := handlers.NewUserHandler(&databaseMgr, &jwtMgr, &mailMgr, tokenIssuer)
	postHdl := handlers.NewPostHandler(&databaseMgr, &mediaMgr)

	router.GET("/", func(c *gin.Context) {
		metadata := &schemas.MetadataDTO{
			ApiVersion: apiVersion,
			ApiName:    apiName,
		}
		c.JSON(http.StatusOK, metadata)
	})

	router.GET("/health", func(c *gin.Context) {
		var one int
		if err := databaseMgr.GetPool().QueryRow(c, "SELECT 1").Scan(&one); err != nil {
			utils.WriteAndLogError(c, schemas.DatabaseError, http.StatusServiceUnavailable, err)
			return
		}
		c.Status(http.StatusOK)
	})

	api := router.Group("/api")

	// Routes that work without a session
	api.POST("/users", middleware.ValidateAndSanitizeStruct(&schemas.RegistrationRequest{}), userHdl.RegisterUser)
	api.GET("/users/verify-email/:token", userHdl.VerifyEmail)
	api.POST("/users/resend-verification", middleware.ValidateAndSanitizeStruct(&schemas.ResendVerificationRequest{}), userHdl.ResendVerification)
	api.POST("/users/login", middleware.ValidateAndSanitizeStruct(&schemas.LoginRequest{}), userHdl.LoginUser)
	api.POST("/users/logout", userHdl.LogoutUser)
	api.POST("/users/forgot-password", middleware.ValidateAndSanitizeStruct(&schemas.ForgotPasswordRequest{}), userHdl.ForgotPassword)
	api.POST("/users/reset-password/:token", middleware.ValidateAndSanitizeStruct(&schemas.ResetPasswordRequest{}), userHdl.ResetPassword)

	// Routes that require a session
	authenticated := api.Group("", jwtMgr.SessionMiddleware())
	authenticated.GET("/users", userHdl.SearchUsers)
	authenticated.GET("/users/:username", userHdl.GetUserProfile)
	authenticated.DELETE("/users/:username", userHdl.DeleteAccount)
	authenticated.GET("/feed", postHdl.GetFeed)
	authenticated.POST("/posts", postHdl.CreatePost)
	authenticated.POST("/posts/:postId/likes", postHdl.LikePost)
	authenticated.PUT("/posts/:postId", middleware.ValidateAndSanitizeStruct(&schemas.UpdatePostRequest{}), postHdl.UpdatePost)
	authenticated.DELETE("/posts/:postId", postHdl.DeletePost)

	return router
}

func setupCommonMiddleware(router *gin.Engine) {
	router.Use(middleware.InjectTrace())
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"*"},
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}))
	router.Use(middleware.SanitizePath())
	router.Use(middleware.LogRequest())
}
