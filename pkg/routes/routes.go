package routes

import (
	"context"
	"net/http"

	"github.com/casbin/casbin/v2"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"go.uber.org/zap"

	"TaskFlow/internal/auth"
	"TaskFlow/internal/calendar"
	"TaskFlow/internal/comment"
	"TaskFlow/internal/config"
	"TaskFlow/internal/directory"
	"TaskFlow/internal/mail"
	"TaskFlow/internal/metrics"
	"TaskFlow/internal/notification"
	"TaskFlow/internal/project"
	"TaskFlow/internal/reminder"
	"TaskFlow/internal/report"
	"TaskFlow/internal/validation"
	"TaskFlow/pkg/middleware"
)

var Module = fx.Module("echo",
	fx.Provide(
		config.Load,
		config.NewLogger,
		config.NewMongoDBClient,
		metrics.New,
		NewValidator,
		middleware.NewEnforcer,
		NewEchoServer,
	),
	fx.Provide(
		mail.NewSender,
		mail.NewRenderer,
		mail.NewMailer,
	),
	fx.Provide(
		auth.NewTokenManager,
		auth.NewUserRepository,
		auth.NewUserService,
		auth.NewAuthHandler,
	),
	fx.Provide(
		notification.NewNotificationRepository,
		notification.NewNotificationService,
		notification.NewNotificationHandler,
	),
	fx.Provide(
		project.NewProjectRepository,
		project.NewTaskRepository,
		project.NewProjectService,
		project.NewProjectHandler,
		project.NewTaskHandler,
	),
	fx.Provide(
		comment.NewCommentRepository,
		comment.NewCommentService,
		comment.NewCommentHandler,
		commentCleaner,
	),
	fx.Provide(
		directory.NewDirectoryRepository,
		directory.NewDirectoryService,
		directory.NewDirectoryHandler,
	),
	fx.Provide(
		calendar.NewCalendarRepository,
		calendar.NewCalendarService,
		calendar.NewCalendarHandler,
	),
	fx.Provide(
		report.NewReportRepository,
		report.NewReportService,
		report.NewReportHandler,
	),
	fx.Provide(
		reminder.NewReminderService,
		reminder.NewScheduler,
		reminder.NewReminderHandler,
	),
	fx.Invoke((*reminder.Scheduler).Start),
	fx.Invoke(RegisterRoutes),
)

// commentCleaner lets project cascade deletes into comments without an
// import cycle.
func commentCleaner(r *comment.CommentRepository) project.CommentCleaner { return r }

// NewValidator registers the enum tags used by the request types.
func NewValidator() *validation.Validator {
	return validation.New(
		validation.Enum{Tag: "role", Values: auth.Roles},
		validation.Enum{Tag: "taskstatus", Values: project.TaskStatuses},
		validation.Enum{Tag: "projectstatus", Values: project.ProjectStatuses},
		validation.Enum{Tag: "priority", Values: project.Priorities},
		validation.Enum{Tag: "eventtype", Values: calendar.EventTypes},
		validation.Enum{Tag: "reporttype", Values: report.Types},
	)
}

func NewEchoServer(lc fx.Lifecycle, shutdowner fx.Shutdowner, cfg *config.AppConfig, logger *zap.Logger, m *metrics.Metrics, v *validation.Validator) *echo.Echo {
	e := echo.New()
	middleware.SetupMiddleware(e, cfg, logger, m, v)
	addr := ":" + cfg.Port

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("server listening", zap.String("addr", addr))
			go func() {
				if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
					logger.Error("failed to start the server", zap.Error(err))
					_ = shutdowner.Shutdown(fx.ExitCode(1))
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("shutting down the server")
			return e.Shutdown(ctx)
		},
	})
	return e
}

type Handlers struct {
	fx.In

	Auth          *auth.AuthHandler
	Notifications *notification.NotificationHandler
	Projects      *project.ProjectHandler
	Tasks         *project.TaskHandler
	Comments      *comment.CommentHandler
	Directory     *directory.DirectoryHandler
	Calendar      *calendar.CalendarHandler
	Reports       *report.ReportHandler
	Reminders     *reminder.ReminderHandler
}

func RegisterRoutes(
	e *echo.Echo,
	h Handlers,
	tokens *auth.TokenManager,
	enf *casbin.Enforcer,
	db *config.MongoDBClient,
	m *metrics.Metrics,
	logger *zap.Logger,
) {
	e.GET("/health", func(c echo.Context) error {
		if err := db.Client.Ping(c.Request().Context(), nil); err != nil {
			return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable"})
		}
		return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
	})
	e.GET("/metrics", echo.WrapHandler(m.Handler()))

	e.POST("/auth/register", h.Auth.Register)
	e.POST("/auth/login", h.Auth.Login)
	e.POST("/auth/forgot-password", h.Auth.ForgotPassword)
	e.POST("/auth/reset-password", h.Auth.ResetPassword)

	api := e.Group("/api")
	api.Use(middleware.JWTMiddleware(tokens))
	api.Use(middleware.CasbinMiddleware(enf, logger))

	api.GET("/auth/me", h.Auth.Profile)
	api.PUT("/auth/me", h.Auth.UpdateProfile)

	users := api.Group("/users")
	users.GET("", h.Auth.ListUsers)
	users.POST("", h.Auth.CreateUser)
	users.GET("/:id", h.Auth.GetUser)
	users.PUT("/:id", h.Auth.UpdateUser)
	users.DELETE("/:id", h.Auth.DeleteUser)

	departments := api.Group("/departments")
	departments.GET("", h.Directory.ListDepartments)
	departments.POST("", h.Directory.CreateDepartment)
	departments.GET("/:id", h.Directory.GetDepartment)
	departments.PUT("/:id", h.Directory.UpdateDepartment)
	departments.DELETE("/:id", h.Directory.DeleteDepartment)

	clients := api.Group("/clients")
	clients.GET("", h.Directory.ListClients)
	clients.POST("", h.Directory.CreateClient)
	clients.GET("/:id", h.Directory.GetClient)
	clients.PUT("/:id", h.Directory.UpdateClient)
	clients.DELETE("/:id", h.Directory.DeleteClient)

	contacts := api.Group("/contacts")
	contacts.GET("", h.Directory.ListContacts)
	contacts.POST("", h.Directory.CreateContact)
	contacts.GET("/:id", h.Directory.GetContact)
	contacts.PUT("/:id", h.Directory.UpdateContact)
	contacts.DELETE("/:id", h.Directory.DeleteContact)

	projects := api.Group("/projects")
	projects.GET("", h.Projects.List)
	projects.POST("", h.Projects.Create)
	projects.GET("/:id", h.Projects.Get)
	projects.GET("/:id/tasks", h.Projects.Tasks)
	projects.PUT("/:id", h.Projects.Update)
	projects.DELETE("/:id", h.Projects.Delete)

	tasks := api.Group("/tasks")
	tasks.GET("", h.Tasks.List)
	tasks.POST("", h.Tasks.Create)
	tasks.GET("/mine", h.Tasks.Mine)
	tasks.GET("/:id", h.Tasks.Get)
	tasks.PUT("/:id", h.Tasks.Update)
	tasks.PATCH("/:id/status", h.Tasks.UpdateStatus)
	tasks.DELETE("/:id", h.Tasks.Delete)

	meetings := api.Group("/meetings")
	meetings.GET("", h.Calendar.ListMeetings)
	meetings.POST("", h.Calendar.CreateMeeting)
	meetings.GET("/upcoming", h.Calendar.UpcomingMeetings)
	meetings.GET("/:id", h.Calendar.GetMeeting)
	meetings.PUT("/:id", h.Calendar.UpdateMeeting)
	meetings.DELETE("/:id", h.Calendar.DeleteMeeting)

	events := api.Group("/events")
	events.GET("", h.Calendar.ListEvents)
	events.POST("", h.Calendar.CreateEvent)
	events.GET("/:id", h.Calendar.GetEvent)
	events.PUT("/:id", h.Calendar.UpdateEvent)
	events.DELETE("/:id", h.Calendar.DeleteEvent)

	comments := api.Group("/comments")
	comments.GET("", h.Comments.List)
	comments.POST("", h.Comments.Create)
	comments.GET("/:id", h.Comments.Get)
	comments.PUT("/:id", h.Comments.Update)
	comments.DELETE("/:id", h.Comments.Delete)

	notifications := api.Group("/notifications")
	notifications.GET("", h.Notifications.List)
	notifications.GET("/unread-count", h.Notifications.UnreadCount)
	notifications.PATCH("/read-all", h.Notifications.MarkAllRead)
	notifications.PATCH("/:id/read", h.Notifications.MarkRead)
	notifications.DELETE("/:id", h.Notifications.Delete)

	reports := api.Group("/reports")
	reports.GET("", h.Reports.List)
	reports.POST("", h.Reports.Create)
	reports.POST("/generate", h.Reports.Generate)
	reports.GET("/:id", h.Reports.Get)
	reports.PUT("/:id", h.Reports.Update)
	reports.DELETE("/:id", h.Reports.Delete)

	api.GET("/dashboard", h.Reports.Dashboard)
	api.POST("/admin/reminders/run", h.Reminders.Run)
}
