package internal

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type Handlers struct {
	Service    IService
	logger     *zap.SugaredLogger
	signingKey string
	jwtSecret  string
}

func NewHandlers(service IService, signingKey, jwtSecret string, logger *zap.SugaredLogger) *Handlers {
	return &Handlers{Service: service, logger: logger, signingKey: signingKey, jwtSecret: jwtSecret}
}

// InboundEmail is the webhook boundary. Past the signature check it always
// acknowledges with 200 so the forwarding provider never retries: a
// malformed or mismatched notification will not become valid on replay.
// The internal outcome is reported only in the message field and the logs.
func (h *Handlers) InboundEmail(c *fiber.Ctx) error {
	n := Notification{
		Sender:    c.FormValue("from"),
		Subject:   c.FormValue("subject"),
		HTML:      c.FormValue("html"),
		Text:      c.FormValue("text"),
		Timestamp: c.FormValue("timestamp"),
		Token:     c.FormValue("token"),
		Signature: c.FormValue("signature"),
	}

	if h.signingKey != "" && !ValidSignature(h.signingKey, n.Timestamp, n.Token, n.Signature) {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"message": "invalid signature"})
	}

	deliveryID := uuid.NewString()
	err := h.Service.ProcessNotification(c.Context(), n)
	if err != nil {
		h.logger.Errorf("inbound email %s: subject %q: %s", deliveryID, n.Subject, err)
	}

	return c.Status(fiber.StatusOK).JSON(fiber.Map{"message": ackMessage(err)})
}

func ackMessage(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrSenderRejected):
		return "ignored sender"
	case errors.Is(err, ErrNoContent):
		return "no content"
	case errors.Is(err, ErrParsedIncomplete):
		return "parsed incomplete"
	case errors.Is(err, ErrParseFailure):
		return "parse error"
	default:
		// mismatches, unknown orders and store failures all land here;
		// none of them are fixable by a sender-side retry
		return "update error"
	}
}

func (h *Handlers) GetAnalytics(c *fiber.Ctx) error {
	if err := h.authorize(c); err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	res, err := h.Service.GetAnalytics(c.Context(), c.Params("id"))
	if err != nil {
		h.logger.Errorf("Error on analytics request: %s", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Error on analytics request"})
	}

	return c.Status(fiber.StatusOK).JSON(res)
}

func (h *Handlers) GetOrders(c *fiber.Ctx) error {
	if err := h.authorize(c); err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	orders, err := h.Service.GetOrders(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrNoRecords) {
			return c.SendStatus(fiber.StatusNoContent)
		}
		h.logger.Errorf("Error on orders request: %s", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Error on orders request"})
	}

	return c.Status(fiber.StatusOK).JSON(orders)
}

func (h *Handlers) CompletePickup(c *fiber.Ctx) error {
	if err := h.authorize(c); err != nil {
		return c.SendStatus(fiber.StatusUnauthorized)
	}

	err := h.Service.CompletePickup(c.Context(), c.Params("id"))
	if err != nil {
		if errors.Is(err, ErrOrderNotFound) {
			return c.SendStatus(fiber.StatusNotFound)
		}
		h.logger.Errorf("Error on pickup request: %s", err.Error())
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Error on pickup request"})
	}

	return c.SendStatus(fiber.StatusOK)
}

// authorize validates the session cookie issued by the auth service.
// Token issuance lives outside this service.
func (h *Handlers) authorize(c *fiber.Ctx) error {
	tokenString := c.Cookies("token")
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(h.jwtSecret), nil
	})
	return err
}
