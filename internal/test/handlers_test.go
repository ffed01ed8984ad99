package test

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/golang/mock/gomock"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/cornell-dti/curaise-sub000/internal"
	mock_internal "github.com/cornell-dti/curaise-sub000/internal/mock"
	"github.com/cornell-dti/curaise-sub000/internal/model"
)

var _ = Describe("Handlers", func() {
	var (
		app *fiber.App
		svc *mock_internal.MockIService
	)

	newApp := func(signingKey string) {
		ctrl := gomock.NewController(GinkgoT())

		logger, err := zap.NewDevelopment()
		Expect(err).ShouldNot(HaveOccurred())

		svc = mock_internal.NewMockIService(ctrl)
		h := internal.NewHandlers(svc, signingKey, "secret", logger.Sugar())

		app = fiber.New()
		app.Post("/api/email/parse", h.InboundEmail)
		app.Get("/api/fundraisers/:id/analytics", h.GetAnalytics)
		app.Get("/api/fundraisers/:id/orders", h.GetOrders)
		app.Post("/api/orders/:id/pickup", h.CompletePickup)
	}

	BeforeEach(func() {
		newApp("")
	})

	postInbound := func(form url.Values) (*http.Response, string) {
		req := httptest.NewRequest(http.MethodPost, "/api/email/parse", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

		resp, err := app.Test(req)
		Expect(err).ShouldNot(HaveOccurred())

		body, err := io.ReadAll(resp.Body)
		Expect(err).ShouldNot(HaveOccurred())

		var out struct {
			Message string `json:"message"`
		}
		Expect(json.Unmarshal(body, &out)).Should(Succeed())
		return resp, out.Message
	}

	Context("InboundEmail", func() {
		It("acknowledges a processed notification with ok", func() {
			svc.EXPECT().ProcessNotification(gomock.Any(), gomock.Any()).Return(nil)

			resp, msg := postInbound(url.Values{"from": {"venmo@venmo.com"}, "html": {"<p>$9.00</p>"}})
			Expect(resp.StatusCode).Should(Equal(http.StatusOK))
			Expect(msg).Should(Equal("ok"))
		})
		It("acknowledges a rejected sender", func() {
			svc.EXPECT().ProcessNotification(gomock.Any(), gomock.Any()).Return(internal.ErrSenderRejected)

			resp, msg := postInbound(url.Values{"from": {"Spoofer <spoof@example.com>"}})
			Expect(resp.StatusCode).Should(Equal(http.StatusOK))
			Expect(msg).Should(Equal("ignored sender"))
		})
		It("acknowledges an empty delivery", func() {
			svc.EXPECT().ProcessNotification(gomock.Any(), gomock.Any()).Return(internal.ErrNoContent)

			resp, msg := postInbound(url.Values{"from": {"venmo@venmo.com"}})
			Expect(resp.StatusCode).Should(Equal(http.StatusOK))
			Expect(msg).Should(Equal("no content"))
		})
		It("acknowledges an incomplete parse", func() {
			svc.EXPECT().ProcessNotification(gomock.Any(), gomock.Any()).Return(internal.ErrParsedIncomplete)

			resp, msg := postInbound(url.Values{"from": {"venmo@venmo.com"}, "text": {"$9.00"}})
			Expect(resp.StatusCode).Should(Equal(http.StatusOK))
			Expect(msg).Should(Equal("parsed incomplete"))
		})
		It("acknowledges a malformed document", func() {
			svc.EXPECT().ProcessNotification(gomock.Any(), gomock.Any()).Return(internal.ErrParseFailure)

			resp, msg := postInbound(url.Values{"from": {"venmo@venmo.com"}, "text": {"garbage"}})
			Expect(resp.StatusCode).Should(Equal(http.StatusOK))
			Expect(msg).Should(Equal("parse error"))
		})
		It("acknowledges a mismatched amount", func() {
			mismatch := &internal.AmountMismatchError{
				Expected: decimal.RequireFromString("9.00"),
				Received: decimal.RequireFromString("8.50"),
			}
			svc.EXPECT().ProcessNotification(gomock.Any(), gomock.Any()).Return(mismatch)

			resp, msg := postInbound(url.Values{"from": {"venmo@venmo.com"}, "text": {"$8.50 order ord-1a2b3c"}})
			Expect(resp.StatusCode).Should(Equal(http.StatusOK))
			Expect(msg).Should(Equal("update error"))
		})
		It("acknowledges a store failure", func() {
			svc.EXPECT().ProcessNotification(gomock.Any(), gomock.Any()).Return(errors.New("connection refused"))

			resp, msg := postInbound(url.Values{"from": {"venmo@venmo.com"}, "text": {"$9.00"}})
			Expect(resp.StatusCode).Should(Equal(http.StatusOK))
			Expect(msg).Should(Equal("update error"))
		})
		It("passes the delivery fields through to the service", func() {
			svc.EXPECT().ProcessNotification(gomock.Any(), internal.Notification{
				Sender:  "venmo@venmo.com",
				Subject: "You received $9.00",
				HTML:    "<p>$9.00</p>",
			}).Return(nil)

			_, msg := postInbound(url.Values{
				"from":    {"venmo@venmo.com"},
				"subject": {"You received $9.00"},
				"html":    {"<p>$9.00</p>"},
			})
			Expect(msg).Should(Equal("ok"))
		})
		It("rejects an invalid delivery signature before processing", func() {
			newApp("signing-key")

			req := httptest.NewRequest(http.MethodPost, "/api/email/parse",
				strings.NewReader(url.Values{"timestamp": {"123"}, "token": {"tok"}, "signature": {"bogus"}}.Encode()))
			req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

			resp, err := app.Test(req)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(resp.StatusCode).Should(Equal(http.StatusUnauthorized))
		})
		It("accepts a valid delivery signature", func() {
			newApp("signing-key")

			mac := hmac.New(sha256.New, []byte("signing-key"))
			mac.Write([]byte("123tok"))
			sig := hex.EncodeToString(mac.Sum(nil))

			svc.EXPECT().ProcessNotification(gomock.Any(), gomock.Any()).Return(nil)

			_, msg := postInbound(url.Values{
				"from": {"venmo@venmo.com"}, "html": {"<p>$9.00</p>"},
				"timestamp": {"123"}, "token": {"tok"}, "signature": {sig},
			})
			Expect(msg).Should(Equal("ok"))
		})
	})

	Context("read endpoints", func() {
		sessionCookie := func() *http.Cookie {
			claims := jwt.MapClaims{"id": "user-1"}
			token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
			t, err := token.SignedString([]byte("secret"))
			Expect(err).ShouldNot(HaveOccurred())
			return &http.Cookie{Name: "token", Value: t}
		}

		It("requires a session token for analytics", func() {
			req := httptest.NewRequest(http.MethodGet, "/api/fundraisers/fund-1/analytics", nil)

			resp, err := app.Test(req)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(resp.StatusCode).Should(Equal(http.StatusUnauthorized))
		})
		It("serves analytics for an authorized session", func() {
			svc.EXPECT().GetAnalytics(gomock.Any(), "fund-1").Return(model.AnalyticsResult{OrderCount: 2}, nil)

			req := httptest.NewRequest(http.MethodGet, "/api/fundraisers/fund-1/analytics", nil)
			req.AddCookie(sessionCookie())

			resp, err := app.Test(req)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(resp.StatusCode).Should(Equal(http.StatusOK))
		})
		It("returns no content for a fundraiser without orders", func() {
			svc.EXPECT().GetOrders(gomock.Any(), "fund-1").Return(nil, internal.ErrNoRecords)

			req := httptest.NewRequest(http.MethodGet, "/api/fundraisers/fund-1/orders", nil)
			req.AddCookie(sessionCookie())

			resp, err := app.Test(req)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(resp.StatusCode).Should(Equal(http.StatusNoContent))
		})
		It("requires a session token for pickup completion", func() {
			req := httptest.NewRequest(http.MethodPost, "/api/orders/ord-1/pickup", nil)

			resp, err := app.Test(req)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(resp.StatusCode).Should(Equal(http.StatusUnauthorized))
		})
		It("completes a pickup for an authorized session", func() {
			svc.EXPECT().CompletePickup(gomock.Any(), "ord-1").Return(nil)

			req := httptest.NewRequest(http.MethodPost, "/api/orders/ord-1/pickup", nil)
			req.AddCookie(sessionCookie())

			resp, err := app.Test(req)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(resp.StatusCode).Should(Equal(http.StatusOK))
		})
		It("reports an unknown order on pickup", func() {
			svc.EXPECT().CompletePickup(gomock.Any(), "ord-missing").Return(internal.ErrOrderNotFound)

			req := httptest.NewRequest(http.MethodPost, "/api/orders/ord-missing/pickup", nil)
			req.AddCookie(sessionCookie())

			resp, err := app.Test(req)
			Expect(err).ShouldNot(HaveOccurred())
			Expect(resp.StatusCode).Should(Equal(http.StatusNotFound))
		})
	})
})
