package api

import (
	"github.com/gofiber/fiber/v2"

	"github.com/Aquabet/webapp/internal/metrics"
	"github.com/Aquabet/webapp/internal/service"
)

// NewRouter assembles the fiber app: cache headers on everything, health
// endpoint outside the gate, every /v1 route behind the reachability gate.
func NewRouter(users service.UserService, pictures service.PictureService, pinger Pinger, m metrics.Emitter) *fiber.App {
	app := fiber.New()
	app.Use(CacheControl())

	healthHandler := NewHealthHandler(pinger, m)
	app.All("/healthz", Measure(m, "api.healthz"), healthHandler.Check)

	userHandler := NewUserHandler(users)
	pictureHandler := NewPictureHandler(pictures)

	v1 := app.Group("/v1", DatabaseGate(pinger, m))
	v1.Post("/user", Measure(m, "api.create_user"), userHandler.CreateUser)
	v1.Get("/user/verify", Measure(m, "api.verify_email"), userHandler.VerifyEmail)

	self := v1.Group("/user/self", BasicAuth(users))
	self.Get("/", Measure(m, "api.get_self"), userHandler.GetSelf)
	self.Put("/", Measure(m, "api.update_self"), userHandler.UpdateSelf)
	self.Post("/pic", Measure(m, "api.upload_pic"), pictureHandler.Upload)
	self.Get("/pic", Measure(m, "api.get_pic"), pictureHandler.Get)
	self.Delete("/pic", Measure(m, "api.delete_pic"), pictureHandler.Delete)

	return app
}
