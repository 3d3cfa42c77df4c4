package websocket

import (
	"context"

	"cardiac-assistant-be/internal/pkg/logger"
	"cardiac-assistant-be/internal/pkg/serverutils"
	"cardiac-assistant-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

// Handler serves the streaming variant of POST /assistant/v1/ask.
type Handler struct {
	service service.IAssistantService
	auth    fiber.Handler
	logger  logger.ILogger
}

func NewHandler(service service.IAssistantService, auth fiber.Handler, logger logger.ILogger) *Handler {
	return &Handler{service: service, auth: auth, logger: logger}
}

func (h *Handler) RegisterRoutes(r fiber.Router) {
	r.Get("/ws/assistant", h.auth, requireUpgrade, websocket.New(h.ServeWs))
}

func requireUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// ServeWs runs until the peer disconnects.
func (h *Handler) ServeWs(c *websocket.Conn) {
	clinicianID, _ := c.Locals(serverutils.LocalClinicianID).(string)
	if clinicianID == "" {
		clinicianID = serverutils.AnonymousClinician
	}

	client := &Client{
		Conn:        c,
		ClinicianID: clinicianID,
		Send:        make(chan []byte, 16),
		service:     h.service,
		logger:      h.logger,
	}

	h.logger.Info("AssistantWS", "Client connected", map[string]interface{}{"clinician_id": clinicianID})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go client.writePump()
	client.readPump(ctx)

	h.logger.Info("AssistantWS", "Client disconnected", map[string]interface{}{"clinician_id": clinicianID})
}
