package capture

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// RegisterAPIRoutes registers REST routes for session control
func (s *Server) RegisterAPIRoutes(api fiber.Router) {
	sessions := api.Group("/sessions")

	// List connected sessions
	sessions.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"sessions": s.GetSessionInfos(),
			"count":    s.SessionCount(),
		})
	})

	sessions.Get("/:id", func(c *fiber.Ctx) error {
		conn, err := s.connection(c.Params("id"))
		if err != nil {
			return apiError(c, err)
		}
		return c.JSON(conn.info())
	})

	// Start tracking
	sessions.Post("/:id/start", func(c *fiber.Ctx) error {
		conn, err := s.connection(c.Params("id"))
		if err != nil {
			return apiError(c, err)
		}
		if err := conn.Session.Start(c.UserContext()); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(conn.info())
	})

	// Stop tracking
	sessions.Post("/:id/stop", func(c *fiber.Ctx) error {
		conn, err := s.connection(c.Params("id"))
		if err != nil {
			return apiError(c, err)
		}
		if err := conn.Session.Stop(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(conn.info())
	})

	// Change smoothing depth
	sessions.Put("/:id/smoothing", func(c *fiber.Ctx) error {
		conn, err := s.connection(c.Params("id"))
		if err != nil {
			return apiError(c, err)
		}

		var req struct {
			Depth int `json:"depth"`
		}
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		if err := conn.Session.SetSmoothing(req.Depth); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		return c.JSON(conn.info())
	})

	// Server stats
	api.Get("/stats", func(c *fiber.Ctx) error {
		return c.JSON(s.GetStats())
	})
}

func (s *Server) connection(id string) (*Connection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	conn, ok := s.conns[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	return conn, nil
}

func apiError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	if errors.Is(err, ErrSessionNotFound) {
		status = fiber.StatusNotFound
	}
	return c.Status(status).JSON(fiber.Map{"error": err.Error()})
}
