// Package server assembles the gin engine: global middleware, route table and the
// access rules applied when authentication is enforced.
package server

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	"github.com/noah-isme/admissions-crm-api/internal/handler"
	"github.com/noah-isme/admissions-crm-api/internal/middleware"
	"github.com/noah-isme/admissions-crm-api/internal/models"
	appErrors "github.com/noah-isme/admissions-crm-api/pkg/errors"
	"github.com/noah-isme/admissions-crm-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/admissions-crm-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/admissions-crm-api/pkg/middleware/requestid"
	"github.com/noah-isme/admissions-crm-api/pkg/response"
)

// Options toggles router behaviour.
type Options struct {
	APIPrefix      string
	AllowedOrigins []string
	AuthRequired   bool
	DocsEnabled    bool
	MetricsEnabled bool
}

// Handlers groups every HTTP handler the router mounts.
type Handlers struct {
	Auth       *handler.AuthHandler
	Admin      *handler.AdminHandler
	Enrollment *handler.EnrollmentHandler
	Lead       *handler.LeadHandler
	Customer   *handler.CustomerHandler
	Chat       *handler.ChatHandler
	Metrics    *handler.MetricsHandler
}

// NewRouter builds the engine. tokens validates bearer tokens; observer may be nil.
func NewRouter(opts Options, h Handlers, tokens middleware.TokenValidator, observer middleware.RequestObserver, log *zap.Logger) *gin.Engine {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.APIPrefix == "" {
		opts.APIPrefix = "/api"
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(log))
	r.Use(corsmiddleware.New(opts.AllowedOrigins))
	r.Use(middleware.Metrics(observer))

	r.NoMethod(func(c *gin.Context) {
		response.Error(c, appErrors.ErrMethodNotAllowed)
	})
	r.NoRoute(func(c *gin.Context) {
		response.Error(c, appErrors.Clone(appErrors.ErrNotFound, "route not found"))
	})

	r.GET("/health", h.Metrics.Health)
	r.GET("/ready", h.Metrics.Ready)
	if opts.MetricsEnabled {
		r.GET("/metrics", h.Metrics.Prometheus)
	}
	if opts.DocsEnabled {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	guard := newGuard(opts.AuthRequired, tokens)

	api := r.Group(opts.APIPrefix)
	if !opts.AuthRequired {
		api.Use(middleware.OptionalJWT(tokens))
	}

	api.POST("/register", h.Auth.Register)
	api.POST("/login", h.Auth.Login)
	api.POST("/admin-login", h.Auth.AdminLogin)
	api.POST("/chat", h.Chat.Chat)
	api.GET("/time", h.Chat.Time)

	anyone := guard(string(models.RoleStudent), string(models.RoleStaff), string(models.RoleAdmin))
	counsellors := guard(string(models.RoleStaff), string(models.RoleAdmin))
	admins := guard(string(models.RoleAdmin))

	enroll := api.Group("/enroll")
	{
		enroll.POST("", append(anyone, h.Enrollment.Create)...)
		enroll.GET("", append(anyone, h.Enrollment.List)...)
		enroll.PUT("", append(counsellors, h.Enrollment.UpdateStatus)...)
		enroll.GET("/followups", append(counsellors, h.Enrollment.FollowUps)...)
		enroll.GET("/export", append(counsellors, h.Enrollment.Export)...)
	}

	api.GET("/status/:"+middleware.SelfParam,
		append(guard(string(models.RoleStaff), string(models.RoleAdmin), "SELF"), h.Enrollment.ApplicationStatus)...)

	admin := api.Group("/admin", admins...)
	{
		admin.GET("/courses", h.Admin.ListCourses)
		admin.POST("/courses", h.Admin.CreateCourse)
		admin.PUT("/courses", h.Admin.UpdateCourse)
		admin.DELETE("/courses", h.Admin.DeleteCourse)

		admin.GET("/staff", h.Admin.ListStaff)
		admin.POST("/staff", h.Admin.CreateStaff)
		admin.PUT("/staff", h.Admin.UpdateStaff)
		admin.DELETE("/staff", h.Admin.DeleteStaff)

		admin.GET("/students", h.Admin.ListStudents)
		admin.POST("/students", h.Admin.CreateStudent)
		admin.PUT("/students", h.Admin.UpdateStudent)
		admin.DELETE("/students", h.Admin.DeleteStudent)
	}

	leads := api.Group("/leads", counsellors...)
	{
		leads.GET("", h.Lead.List)
		leads.POST("", h.Lead.Create)
		leads.POST("/import", h.Lead.Import)
	}

	customers := api.Group("/customers", counsellors...)
	{
		customers.GET("", h.Customer.List)
		customers.POST("", h.Customer.Create)
	}

	return r
}

// newGuard returns a builder of per-route access middleware. With auth disabled it
// yields no middleware at all.
func newGuard(required bool, tokens middleware.TokenValidator) func(allowed ...string) []gin.HandlerFunc {
	return func(allowed ...string) []gin.HandlerFunc {
		if !required {
			return nil
		}
		return []gin.HandlerFunc{middleware.JWT(tokens), middleware.RBAC(allowed...)}
	}
}
