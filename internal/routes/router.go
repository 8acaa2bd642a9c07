package routes

import (
	"todo-bills/internal/auth"
	"todo-bills/internal/controller"
	"todo-bills/internal/middleware"

	"github.com/gin-gonic/gin"
)

func Router(h *controller.Handlers, tokens *auth.Tokens) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestID(), middleware.AccessLog())

	// Every path goes through the session gate; it lets the public ones pass.
	router.Use(middleware.Session(tokens))

	// Health for load balancers and K8s probes
	router.GET("/health", h.Health)
	router.GET("/ready", h.Ready)

	api := router.Group("/api")
	{
		api.POST("/auth/register", h.Register)
		api.POST("/auth/login", h.Login)
		api.POST("/auth/logout", h.Logout)

		api.GET("/todos", h.ListTodos)
		api.POST("/todos", h.CreateTodo)
		api.PATCH("/todos/:id", h.UpdateTodo)
		api.DELETE("/todos/:id", h.DeleteTodo)

		api.GET("/bills", h.ListBills)
		api.POST("/bills", h.CreateBill)
		api.PATCH("/bills/:id", h.UpdateBill)
		api.DELETE("/bills/:id", h.DeleteBill)

		api.GET("/overview", h.Overview)
	}

	return router
}
