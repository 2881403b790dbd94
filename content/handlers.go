package content

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

// Service exposes the public listing endpoints.
type Service struct {
	Cache  *Cache
	Logger *logrus.Logger
}

// GetCategories lists the news sections.
func (s *Service) GetCategories(c *fiber.Ctx) error {
	categories, err := s.Cache.Categories(c.UserContext())
	if err != nil {
		s.Logger.Printf("listing categories: %v", err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"message": err.Error(), "code": "cms_error"})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"categories": categories})
}

// GetArticles lists published articles, optionally filtered by ?category=.
func (s *Service) GetArticles(c *fiber.Ctx) error {
	articles, err := s.Cache.Articles(c.UserContext(), c.Query("category"))
	if err != nil {
		s.Logger.Printf("listing articles: %v", err)
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"message": err.Error(), "code": "cms_error"})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"articles": articles})
}

// InvalidateCache drops the cached listings so editorial changes show up
// immediately. Admin-guarded at the route level.
func (s *Service) InvalidateCache(c *fiber.Ctx) error {
	if err := s.Cache.Refetch(c.UserContext()); err != nil {
		return c.Status(http.StatusBadGateway).JSON(fiber.Map{"message": err.Error(), "code": "cms_error"})
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"result": "ok"})
}
