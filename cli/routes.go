package main

import (
	"net/http"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/khobor/portal/gateway"
)

// GetMainEngine function responsible for getting all of our routes to be
// delivered for fiber.
func GetMainEngine() *fiber.App {
	route := fiber.New()
	route.Use(gateway.RequestID())
	route.Use(gateway.RequestLogger(logrusLogger, logSampling))
	route.Use(gateway.Instrumentation())
	route.Use(gateway.PortalCors(portalConfig.Cors))

	route.Get("/test", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{"message": true})
	})
	route.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	route.Get("/categories", contentService.GetCategories)
	route.Get("/articles", contentService.GetArticles)

	authGroup := route.Group("/auth")
	{
		authGroup.Post("/login", authService.Login)
		authGroup.Post("/logout", authService.Logout)
		authGroup.Get("/me", authService.Me)
	}

	adminGuard := gateway.RequireAdmin(gateway.AdminAuthConfig{
		Key:      portalConfig.AdminKey,
		User:     portalConfig.AdminUser,
		Password: portalConfig.AdminPassword,
		Debug:    portalConfig.Debug,
	})

	admin := route.Group("/admin")
	{
		admin.Post("/login", authService.StaffLogin)
		admin.Post("/staff", adminGuard, authService.CreateStaff)
		admin.Post("/cache/invalidate", adminGuard, contentService.InvalidateCache)

		admin.Use(jwtAuth.AuthMiddleware())
		admin.Get("/me", authService.StaffMe)
	}

	return route
}
