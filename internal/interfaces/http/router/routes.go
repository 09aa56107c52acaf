package router

import (
	"github.com/crm/backend/internal/interfaces/http/handler"
)

// Handlers bundles every HTTP handler the API exposes
type Handlers struct {
	Auth      *handler.AuthHandler
	User      *handler.UserHandler
	Contact   *handler.ContactHandler
	Deal      *handler.DealHandler
	Project   *handler.ProjectHandler
	Task      *handler.TaskHandler
	Activity  *handler.ActivityHandler
	Dashboard *handler.DashboardHandler
	System    *handler.SystemHandler
}

// RegisterAll wires every domain route group into the router
func RegisterAll(r *Router, h Handlers) {
	auth := NewGroup("/auth")
	auth.POST("/sign-in", h.Auth.SignIn)
	auth.POST("/sign-up", h.Auth.SignUp)
	auth.POST("/sign-out", h.Auth.SignOut)
	auth.POST("/refresh", h.Auth.Refresh)
	auth.GET("/me", h.Auth.Me)

	users := NewGroup("/users")
	users.POST("", h.User.Create)
	users.GET("", h.User.List)
	users.GET("/:id", h.User.Get)
	users.PUT("/:id", h.User.Update)
	users.DELETE("/:id", h.User.Delete)
	users.POST("/:id/avatar/upload-url", h.User.RequestAvatarUpload)
	users.POST("/:id/avatar/confirm", h.User.ConfirmAvatarUpload)
	users.GET("/:id/avatar/download-url", h.User.AvatarDownloadURL)
	users.DELETE("/:id/avatar", h.User.RemoveAvatar)

	contacts := NewGroup("/contacts")
	contacts.POST("", h.Contact.Create)
	contacts.GET("", h.Contact.List)
	contacts.GET("/:id", h.Contact.GetByID)
	contacts.PUT("/:id", h.Contact.Update)
	contacts.DELETE("/:id", h.Contact.Delete)

	deals := NewGroup("/deals")
	deals.POST("", h.Deal.Create)
	deals.GET("", h.Deal.List)
	deals.GET("/pipeline/stats", h.Deal.PipelineStats)
	deals.GET("/:id", h.Deal.GetByID)
	deals.PUT("/:id", h.Deal.Update)
	deals.PUT("/:id/stage", h.Deal.MoveStage)
	deals.DELETE("/:id", h.Deal.Delete)

	projects := NewGroup("/projects")
	projects.POST("", h.Project.Create)
	projects.GET("", h.Project.List)
	projects.GET("/:id", h.Project.GetByID)
	projects.GET("/:id/tasks", h.Project.ListTasks)
	projects.PUT("/:id", h.Project.Update)
	projects.DELETE("/:id", h.Project.Delete)

	tasks := NewGroup("/tasks")
	tasks.POST("", h.Task.Create)
	tasks.GET("", h.Task.List)
	tasks.GET("/board", h.Task.Board)
	tasks.GET("/:id", h.Task.GetByID)
	tasks.PUT("/:id", h.Task.Update)
	tasks.PUT("/:id/move", h.Task.Move)
	tasks.DELETE("/:id", h.Task.Delete)

	activities := NewGroup("/activities")
	activities.POST("", h.Activity.Record)
	activities.GET("", h.Activity.List)
	activities.GET("/entity/:type/:id", h.Activity.ListByEntity)

	dashboard := NewGroup("/dashboard")
	dashboard.GET("/stats", h.Dashboard.Stats)

	system := NewGroup("")
	system.GET("/health", h.System.Health)

	r.Register(auth, users, contacts, deals, projects, tasks, activities, dashboard, system)
}
