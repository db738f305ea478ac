package api

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"weatherchat/internal/domain/entity"
	"weatherchat/internal/domain/repository"
	"weatherchat/internal/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

const sessionCookie = "session_token"

// ChatHandler exposes the pipeline over HTTP in blocking and streaming
// form, plus the transcription and account endpoints.
type ChatHandler struct {
	orchestrator *usecase.Orchestrator
	streamer     *usecase.Streamer
	transcriber  repository.Transcriber
	auth         *usecase.AuthService
	sessionTTL   time.Duration
}

func NewChatHandler(orch *usecase.Orchestrator, streamer *usecase.Streamer, transcriber repository.Transcriber, auth *usecase.AuthService, sessionTTL time.Duration) *ChatHandler {
	return &ChatHandler{
		orchestrator: orch,
		streamer:     streamer,
		transcriber:  transcriber,
		auth:         auth,
		sessionTTL:   sessionTTL,
	}
}

// HandleProcess runs the pipeline and returns the full result at once.
// city_not_found_in_geocoding is a 200: the city may simply not exist,
// and the client decides how to present that.
func (h *ChatHandler) HandleProcess(c *fiber.Ctx) error {
	var req entity.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": entity.CodeUserTextRequired})
	}
	req.UserText = strings.TrimSpace(req.UserText)
	if req.UserText == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": entity.CodeUserTextRequired})
	}

	result := h.orchestrator.Run(c.Context(), req.UserText)
	if result.Failed() && result.ErrorCode != entity.CodeCityNotFound {
		return c.Status(fiber.StatusInternalServerError).JSON(result)
	}
	return c.Status(fiber.StatusOK).JSON(result)
}

// HandleStreamProcess computes the full answer, then delivers it as an
// SSE event sequence: meta, ordered chunks, done. A failed pipeline run
// produces exactly one error frame.
func (h *ChatHandler) HandleStreamProcess(c *fiber.Ctx) error {
	var req entity.ChatRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": entity.CodeUserTextRequired})
	}
	req.UserText = strings.TrimSpace(req.UserText)
	if req.UserText == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": entity.CodeUserTextRequired})
	}

	// The answer is computed before the first byte is written; the
	// stream only simulates incremental generation.
	result := h.orchestrator.Run(context.Background(), req.UserText)

	c.Set(fiber.HeaderContentType, "text/event-stream")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Context().SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		h.streamer.Stream(result, func(ev entity.StreamEvent) error {
			payload, err := json.Marshal(ev)
			if err != nil {
				return err
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", payload); err != nil {
				return err
			}
			// flush errors mean the consumer went away; stop quietly
			return w.Flush()
		})
	}))
	return nil
}

// HandleTranscribe proxies audio to the transcription collaborator.
func (h *ChatHandler) HandleTranscribe(c *fiber.Ctx) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "file field is required"})
	}

	f, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "transcription_failed", "details": err.Error()})
	}
	defer f.Close()
	audio, err := io.ReadAll(f)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "transcription_failed", "details": err.Error()})
	}

	transcript, err := h.transcriber.Transcribe(c.Context(), audio, c.FormValue("language"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "transcription_failed", "details": err.Error()})
	}
	return c.Status(fiber.StatusOK).JSON(transcript)
}

// HandleRegister creates an account and sets the session cookie.
func (h *ChatHandler) HandleRegister(c *fiber.Ctx) error {
	var body struct {
		Username string `json:"username"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	user, token, err := h.auth.Register(c.Context(), body.Username, body.Email, body.Password)
	if err != nil {
		switch {
		case errors.Is(err, entity.ErrUserExists):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": entity.ErrUserExists.Error()})
		case errors.Is(err, entity.ErrStoreNotConfigured):
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "db_error", "details": err.Error()})
		default:
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "create_user_failed", "details": err.Error()})
		}
	}

	h.setSessionCookie(c, token)
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"ok": true, "user": user})
}

// HandleLogin verifies credentials and sets the session cookie.
func (h *ChatHandler) HandleLogin(c *fiber.Ctx) error {
	var body struct {
		UsernameOrEmail string `json:"username_or_email"`
		Password        string `json:"password"`
	}
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}
	if body.UsernameOrEmail == "" || body.Password == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "username_or_email and password required"})
	}

	user, token, err := h.auth.Login(c.Context(), body.UsernameOrEmail, body.Password)
	if err != nil {
		if errors.Is(err, entity.ErrInvalidCredentials) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": entity.ErrInvalidCredentials.Error()})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "db_error", "details": err.Error()})
	}

	h.setSessionCookie(c, token)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true, "user": user})
}

func (h *ChatHandler) HandleLogout(c *fiber.Ctx) error {
	if err := h.auth.Logout(c.Context(), c.Cookies(sessionCookie)); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "logout_failed", "details": err.Error()})
	}
	c.ClearCookie(sessionCookie)
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"ok": true})
}

func (h *ChatHandler) HandleMe(c *fiber.Ctx) error {
	user, err := h.auth.Me(c.Context(), c.Cookies(sessionCookie))
	if err != nil {
		if errors.Is(err, entity.ErrStoreNotConfigured) {
			return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": nil})
		}
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "db_error", "details": err.Error()})
	}
	if user == nil {
		c.ClearCookie(sessionCookie)
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": nil})
	}
	return c.Status(fiber.StatusOK).JSON(fiber.Map{"user": user})
}

func (h *ChatHandler) setSessionCookie(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     sessionCookie,
		Value:    token,
		Expires:  time.Now().Add(h.sessionTTL),
		HTTPOnly: true,
		SameSite: fiber.CookieSameSiteLaxMode,
	})
}

// ErrorHandler is the outermost boundary: anything unanticipated (panics
// included, via the recover middleware) becomes a generic internal error
// instead of crashing the request.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return c.Status(fiberErr.Code).JSON(fiber.Map{"error": fiberErr.Message})
	}
	log.Error().Err(err).Str("path", c.Path()).Msg("unhandled error")
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error":   entity.CodeInternalException,
		"details": err.Error(),
	})
}
