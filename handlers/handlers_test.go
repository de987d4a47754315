package handlers_test

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/KowsickReddy/TravelGo/database/repository"
	memoryRepo "github.com/KowsickReddy/TravelGo/database/repository/memory"
	"github.com/KowsickReddy/TravelGo/handlers"
	"github.com/KowsickReddy/TravelGo/middleware"
	"github.com/KowsickReddy/TravelGo/models"
	"github.com/KowsickReddy/TravelGo/routes"
	"github.com/KowsickReddy/TravelGo/services/booking"
	"github.com/KowsickReddy/TravelGo/services/catalog"
	"github.com/KowsickReddy/TravelGo/services/inventory"
	"github.com/KowsickReddy/TravelGo/services/payment"
	"github.com/KowsickReddy/TravelGo/utils"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	jwtSecret     = "handler-test-secret"
	webhookSecret = "whsec_test"
)

type testServer struct {
	router *gin.Engine
	store  *repository.Store
	user   string
	other  string
	admin  string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithWebhookSecret(t, webhookSecret)
}

func newTestServerWithWebhookSecret(t *testing.T, secret string) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logger := zap.NewNop()

	store := memoryRepo.NewStore()
	ledger := inventory.NewLedger(store.Services, logger)
	// The offline gateway with fallback enabled issues synthetic orders
	// that verify without a real gateway.
	bookingSvc := booking.NewBookingService(store, ledger, payment.OfflineGateway{}, nil, logger, booking.Options{FallbackEnabled: true})
	catalogSvc := catalog.NewCatalogService(store.Services, ledger, nil, logger)
	monitor := utils.NewHealthMonitor(map[string]utils.Pinger{"database": store.Ping})

	bh := handlers.NewBookingHandler(bookingSvc, logger)
	ch := handlers.NewCatalogHandler(catalogSvc, logger)
	wh := handlers.NewPaymentWebhookHandler(bookingSvc, secret, logger)

	router := gin.New()
	router.Use(middleware.RequestLogger(logger))
	routes.RegisterRoutes(router, &handlers.HandlerBundle{
		JWTSecret:               []byte(jwtSecret),
		HealthHandler:           handlers.NewHealthHandler(monitor),
		SearchServicesHandler:   ch.SearchServices,
		GetServiceHandler:       ch.GetService,
		CreateServiceHandler:    ch.CreateService,
		UpdatePriceHandler:      ch.UpdatePrice,
		RelistServiceHandler:    ch.RelistService,
		SetServiceActiveHandler: ch.SetServiceActive,
		CreateBookingHandler:    bh.CreateBooking,
		ListBookingsHandler:     bh.ListBookings,
		GetBookingHandler:       bh.GetBooking,
		InitiatePaymentHandler:  bh.InitiatePayment,
		VerifyPaymentHandler:    bh.VerifyPayment,
		CancelBookingHandler:    bh.CancelBooking,
		PaymentWebhookHandler:   wh.HandleStripeEvent,
	})

	return &testServer{
		router: router,
		store:  store,
		user:   issueToken(t, models.Identity{ID: "user-1", Email: "asha@example.com"}),
		other:  issueToken(t, models.Identity{ID: "user-2", Email: "ravi@example.com"}),
		admin:  issueToken(t, models.Identity{ID: "admin-1", Role: models.RoleAdmin}),
	}
}

func issueToken(t *testing.T, identity models.Identity) string {
	t.Helper()
	tok, err := utils.GenerateToken([]byte(jwtSecret), identity, time.Hour)
	require.NoError(t, err)
	return tok
}

func (s *testServer) do(method, path, token string, body interface{}) *httptest.ResponseRecorder {
	var reader *bytes.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

// createService lists a hotel through the admin endpoint.
func (s *testServer) createService(t *testing.T, price string, availability int) models.Service {
	t.Helper()
	w := s.do(http.MethodPost, "/api/services", s.admin, map[string]interface{}{
		"title":            "Sea Breeze Resort",
		"type":             "hotel",
		"location":         "Calangute Beach",
		"city":             "Goa",
		"state":            "Goa",
		"price_per_person": price,
		"availability":     availability,
		"rating":           4.5,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var svc models.Service
	decode(t, w, &svc)
	return svc
}

func (s *testServer) createBooking(t *testing.T, serviceID string, people int) models.Booking {
	t.Helper()
	w := s.do(http.MethodPost, "/api/bookings", s.user, map[string]interface{}{
		"service_id":       serviceID,
		"booking_date":     "2026-12-24",
		"number_of_people": people,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var b models.Booking
	decode(t, w, &b)
	return b
}

func (s *testServer) availability(t *testing.T, serviceID string) int {
	t.Helper()
	svc, err := s.store.Services.GetByID(context.Background(), serviceID)
	require.NoError(t, err)
	return svc.Availability
}

func TestBookingLifecycleOverHTTP(t *testing.T) {
	s := newTestServer(t)
	svc := s.createService(t, "1000", 5)

	b := s.createBooking(t, svc.ID, 2)
	assert.Equal(t, models.Amount(200000), b.TotalAmount)
	assert.Equal(t, models.BookingStatusPending, b.Status)

	w := s.do(http.MethodPost, "/api/bookings/"+b.ID+"/payment", s.user, gin.H{"payment_method": "UPI"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var order models.PaymentOrder
	decode(t, w, &order)
	require.NotEmpty(t, order.PaymentID)
	assert.Equal(t, "upi", order.Method)

	w = s.do(http.MethodPost, "/api/bookings/"+b.ID+"/payment/verify", s.user, gin.H{
		"payment_id":     order.PaymentID,
		"transaction_id": "txn_1",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &b)
	assert.Equal(t, models.BookingStatusConfirmed, b.Status)
	assert.Equal(t, models.PaymentStatusCompleted, b.PaymentStatus)
	assert.Equal(t, 3, s.availability(t, svc.ID))

	w = s.do(http.MethodPost, "/api/bookings/"+b.ID+"/payment", s.user, gin.H{"payment_method": "card"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = s.do(http.MethodDelete, "/api/bookings/"+b.ID, s.user, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &b)
	assert.Equal(t, models.BookingStatusCancelled, b.Status)
	assert.Equal(t, 5, s.availability(t, svc.ID))

	w = s.do(http.MethodDelete, "/api/bookings/"+b.ID, s.user, nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestVerifyAcceptsFormPost(t *testing.T) {
	s := newTestServer(t)
	svc := s.createService(t, "750.50", 4)
	b := s.createBooking(t, svc.ID, 1)

	w := s.do(http.MethodPost, "/api/bookings/"+b.ID+"/payment", s.user, gin.H{"payment_method": "card"})
	require.Equal(t, http.StatusOK, w.Code)
	var order models.PaymentOrder
	decode(t, w, &order)

	form := url.Values{"payment_id": {order.PaymentID}, "transaction_id": {"txn_form"}}
	req := httptest.NewRequest(http.MethodPost, "/api/bookings/"+b.ID+"/payment/verify", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+s.user)
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 3, s.availability(t, svc.ID))
}

func TestBookingErrorMapping(t *testing.T) {
	s := newTestServer(t)
	svc := s.createService(t, "1000", 2)
	b := s.createBooking(t, svc.ID, 1)

	tests := []struct {
		name   string
		method string
		path   string
		token  string
		body   interface{}
		want   int
	}{
		{"no token", http.MethodGet, "/api/bookings", "", nil, http.StatusUnauthorized},
		{"unknown booking", http.MethodGet, "/api/bookings/missing", s.user, nil, http.StatusNotFound},
		{"someone else's booking", http.MethodGet, "/api/bookings/" + b.ID, s.other, nil, http.StatusNotFound},
		{"too many people", http.MethodPost, "/api/bookings", s.user,
			gin.H{"service_id": svc.ID, "booking_date": "2026-12-24", "number_of_people": 3}, http.StatusBadRequest},
		{"bad date", http.MethodPost, "/api/bookings", s.user,
			gin.H{"service_id": svc.ID, "booking_date": "24/12/2026", "number_of_people": 1}, http.StatusBadRequest},
		{"unknown service", http.MethodPost, "/api/bookings", s.user,
			gin.H{"service_id": "nope", "booking_date": "2026-12-24", "number_of_people": 1}, http.StatusNotFound},
		{"missing body field", http.MethodPost, "/api/bookings", s.user,
			gin.H{"service_id": svc.ID}, http.StatusBadRequest},
		{"unsupported method", http.MethodPost, "/api/bookings/" + b.ID + "/payment", s.user,
			gin.H{"payment_method": "cheque"}, http.StatusBadRequest},
		{"verify without order", http.MethodPost, "/api/bookings/" + b.ID + "/payment/verify", s.user,
			gin.H{"payment_id": "pi_x", "transaction_id": "t"}, http.StatusConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := s.do(tt.method, tt.path, tt.token, tt.body)
			assert.Equal(t, tt.want, w.Code, w.Body.String())
		})
	}
}

func TestListBookingsOnlyReturnsOwn(t *testing.T) {
	s := newTestServer(t)
	svc := s.createService(t, "1000", 5)
	s.createBooking(t, svc.ID, 1)
	s.createBooking(t, svc.ID, 1)

	var mine, theirs []models.Booking
	decode(t, s.do(http.MethodGet, "/api/bookings", s.user, nil), &mine)
	decode(t, s.do(http.MethodGet, "/api/bookings", s.other, nil), &theirs)
	assert.Len(t, mine, 2)
	assert.Empty(t, theirs)
}

func TestCatalogEndpoints(t *testing.T) {
	s := newTestServer(t)
	svc := s.createService(t, "2500", 10)

	w := s.do(http.MethodPost, "/api/services", s.user, gin.H{"title": "x"})
	assert.Equal(t, http.StatusForbidden, w.Code)

	var found []models.Service
	decode(t, s.do(http.MethodGet, "/api/services?destination=goa&min_price=2000&max_price=3000", "", nil), &found)
	require.Len(t, found, 1)
	assert.Equal(t, svc.ID, found[0].ID)

	decode(t, s.do(http.MethodGet, "/api/services?max_price=1000", "", nil), &found)
	assert.Empty(t, found)

	w = s.do(http.MethodGet, "/api/services?min_price=abc", "", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(http.MethodPatch, "/api/services/"+svc.ID+"/price", s.admin, gin.H{"price_per_person": "3000"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var updated models.Service
	decode(t, w, &updated)
	assert.Equal(t, models.Amount(300000), updated.PricePerPerson)

	w = s.do(http.MethodPost, "/api/services/"+svc.ID+"/relist", s.admin, gin.H{"units": 5})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	decode(t, w, &updated)
	assert.Equal(t, 15, updated.Availability)

	w = s.do(http.MethodPatch, "/api/services/"+svc.ID+"/active", s.admin, gin.H{"is_active": false})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, http.StatusNotFound, s.do(http.MethodGet, "/api/services/"+svc.ID, "", nil).Code)

	w = s.do(http.MethodPatch, "/api/services/missing/price", s.admin, gin.H{"price_per_person": "10"})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	w := s.do(http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)
}

func signedWebhook(t *testing.T, payload []byte, secret string) *http.Request {
	t.Helper()
	ts := time.Now().Unix()
	mac := hmac.New(sha256.New, []byte(secret))
	fmt.Fprintf(mac, "%d.%s", ts, payload)
	req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Stripe-Signature", fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil))))
	return req
}

func paymentIntentEvent(eventType, paymentID string) []byte {
	event := map[string]interface{}{
		"id":          "evt_1",
		"object":      "event",
		"type":        eventType,
		"api_version": "2020-08-27",
		"data": map[string]interface{}{
			"object": map[string]interface{}{
				"id":            paymentID,
				"object":        "payment_intent",
				"status":        "succeeded",
				"latest_charge": "ch_123",
			},
		},
	}
	raw, _ := json.Marshal(event)
	return raw
}

func TestPaymentWebhook(t *testing.T) {
	s := newTestServer(t)
	svc := s.createService(t, "1000", 5)

	initiate := func(b models.Booking) string {
		w := s.do(http.MethodPost, "/api/bookings/"+b.ID+"/payment", s.user, gin.H{"payment_method": "card"})
		require.Equal(t, http.StatusOK, w.Code)
		var order models.PaymentOrder
		decode(t, w, &order)
		return order.PaymentID
	}

	t.Run("succeeded confirms the booking", func(t *testing.T) {
		b := s.createBooking(t, svc.ID, 2)
		paymentID := initiate(b)

		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, signedWebhook(t, paymentIntentEvent("payment_intent.succeeded", paymentID), webhookSecret))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		got, err := s.store.Bookings.GetByID(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusConfirmed, got.Status)
		require.NotNil(t, got.TransactionID)
		assert.Equal(t, "ch_123", *got.TransactionID)
		assert.Equal(t, 3, s.availability(t, svc.ID))

		// Stripe redelivers; the duplicate is acknowledged without effect.
		w = httptest.NewRecorder()
		s.router.ServeHTTP(w, signedWebhook(t, paymentIntentEvent("payment_intent.succeeded", paymentID), webhookSecret))
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, 3, s.availability(t, svc.ID))
	})

	t.Run("payment failed marks the order failed", func(t *testing.T) {
		b := s.createBooking(t, svc.ID, 1)
		paymentID := initiate(b)

		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, signedWebhook(t, paymentIntentEvent("payment_intent.payment_failed", paymentID), webhookSecret))
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())

		got, err := s.store.Bookings.GetByID(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.BookingStatusPending, got.Status)
		assert.Equal(t, models.PaymentStatusFailed, got.PaymentStatus)
	})

	t.Run("unknown order is acknowledged", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, signedWebhook(t, paymentIntentEvent("payment_intent.succeeded", "pi_unknown"), webhookSecret))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("other event types are acknowledged", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, signedWebhook(t, paymentIntentEvent("charge.refunded", "pi_x"), webhookSecret))
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("bad signature is rejected", func(t *testing.T) {
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, signedWebhook(t, paymentIntentEvent("payment_intent.succeeded", "pi_x"), "whsec_wrong"))
		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestPaymentWebhookRequiresSignature(t *testing.T) {
	unsignedSucceeded := func(t *testing.T, s *testServer, svc models.Service) (models.Booking, *httptest.ResponseRecorder) {
		t.Helper()
		b := s.createBooking(t, svc.ID, 2)
		w := s.do(http.MethodPost, "/api/bookings/"+b.ID+"/payment", s.user, gin.H{"payment_method": "card"})
		require.Equal(t, http.StatusOK, w.Code)
		var order models.PaymentOrder
		decode(t, w, &order)

		req := httptest.NewRequest(http.MethodPost, "/api/payments/webhook",
			bytes.NewReader(paymentIntentEvent("payment_intent.succeeded", order.PaymentID)))
		req.Header.Set("Content-Type", "application/json")
		w = httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return b, w
	}

	t.Run("no secret configured", func(t *testing.T) {
		s := newTestServerWithWebhookSecret(t, "")
		svc := s.createService(t, "1000", 5)

		b, w := unsignedSucceeded(t, s, svc)
		assert.Equal(t, http.StatusServiceUnavailable, w.Code)

		got, err := s.store.Bookings.GetByID(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatePaymentInitiated, got.State())
		assert.Equal(t, 5, s.availability(t, svc.ID))
	})

	t.Run("missing signature header", func(t *testing.T) {
		s := newTestServer(t)
		svc := s.createService(t, "1000", 5)

		b, w := unsignedSucceeded(t, s, svc)
		assert.Equal(t, http.StatusBadRequest, w.Code)

		got, err := s.store.Bookings.GetByID(context.Background(), b.ID)
		require.NoError(t, err)
		assert.Equal(t, models.StatePaymentInitiated, got.State())
		assert.Equal(t, 5, s.availability(t, svc.ID))
	})
}
