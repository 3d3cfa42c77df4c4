package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"cardiac-assistant-be/internal/constant"
	"cardiac-assistant-be/internal/dto"
	"cardiac-assistant-be/internal/pkg/logger"
	"cardiac-assistant-be/internal/pkg/serverutils"
	"cardiac-assistant-be/internal/service"
	"cardiac-assistant-be/pkg/rag"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 16 * 1024
)

// Frame types exchanged over /ws/assistant.
const (
	FrameAsk    = "ask"
	FrameAnswer = "answer"
	FrameError  = "error"
)

// ClientFrame is what the browser sends. An empty type means ask.
type ClientFrame struct {
	Type string `json:"type"`
	dto.AskRequest
}

// ServerFrame wraps every reply; exactly one of Data or Error is set.
type ServerFrame struct {
	Type  string           `json:"type"`
	Data  *dto.AskResponse `json:"data,omitempty"`
	Error string           `json:"error,omitempty"`
}

// Client is one clinician's assistant connection. Questions on a connection
// are answered in the order they arrive.
type Client struct {
	Conn        *websocket.Conn
	ClinicianID string
	Send        chan []byte

	service service.IAssistantService
	logger  logger.ILogger
}

func (c *Client) readPump(ctx context.Context) {
	defer func() {
		close(c.Send)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	extendReadDeadline(c.Conn)
	c.Conn.SetPongHandler(func(string) error {
		return extendReadDeadline(c.Conn)
	})

	for {
		_, raw, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				c.logger.Warn("AssistantWS", "Unexpected close", map[string]interface{}{
					"clinician_id": c.ClinicianID,
					"error":        err.Error(),
				})
			}
			return
		}

		frame := c.handle(ctx, raw)
		// Pongs are only consumed by ReadMessage, so a slow answer must not
		// eat the window of the next read.
		extendReadDeadline(c.Conn)

		out, err := json.Marshal(frame)
		if err != nil {
			continue
		}
		c.Send <- out
	}
}

type readDeadliner interface {
	SetReadDeadline(t time.Time) error
}

func extendReadDeadline(conn readDeadliner) error {
	return conn.SetReadDeadline(time.Now().Add(pongWait))
}

func (c *Client) handle(ctx context.Context, raw []byte) ServerFrame {
	var frame ClientFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return ServerFrame{Type: FrameError, Error: "Invalid frame"}
	}
	if frame.Type != "" && frame.Type != FrameAsk {
		return ServerFrame{Type: FrameError, Error: "Unsupported frame type"}
	}
	if err := serverutils.ValidateRequest(frame.AskRequest); err != nil {
		return ServerFrame{Type: FrameError, Error: err.Error()}
	}

	res, err := c.service.Ask(ctx, c.ClinicianID, &frame.AskRequest)
	if err != nil {
		return ServerFrame{Type: FrameError, Error: errorMessage(err)}
	}
	return ServerFrame{Type: FrameAnswer, Data: res}
}

func errorMessage(err error) string {
	var fe *fiber.Error
	switch {
	case errors.As(err, &fe):
		return fe.Message
	case errors.Is(err, rag.ErrGeneration):
		return constant.GenerationFailedMessage
	}
	return "Internal server error"
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
