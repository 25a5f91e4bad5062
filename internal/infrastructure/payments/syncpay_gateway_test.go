package payments

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"pix_checkout/internal/domain/entities"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeResponse struct {
	status int
	body   string
}

// fakeSyncPay serves the auth, gateway, status and V1 endpoints. Create
// responses are consumed in order; the last one repeats.
type fakeSyncPay struct {
	mu sync.Mutex

	authResponse     fakeResponse
	createResponses  []fakeResponse
	statusResponse   fakeResponse
	fallbackResponse fakeResponse

	authBodies    []map[string]string
	createAuth    []string
	createBodies  [][]byte
	statusPaths   []string
	statusAuthOK  bool
	fallbackAuth  bool
	fallbackBody  []byte
	fallbackCalls int
}

func newFakeSyncPay() *fakeSyncPay {
	return &fakeSyncPay{
		authResponse:     fakeResponse{http.StatusOK, `{"access_token":"tok-123"}`},
		createResponses:  []fakeResponse{{http.StatusOK, `{"idTransaction":"tx-1","paymentCode":"000201pix","paymentCodeBase64":"iVBORw0KGgo=","status_transaction":"WAITING_FOR_APPROVAL"}`}},
		statusResponse:   fakeResponse{http.StatusNotFound, `{"message":"not found"}`},
		fallbackResponse: fakeResponse{http.StatusOK, `{"idTransaction":"v1-tx","paymentCode":"v1code","paymentCodeBase64":"v1img"}`},
	}
}

func (f *fakeSyncPay) handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth", func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		_ = json.NewDecoder(r.Body).Decode(&body)
		f.mu.Lock()
		f.authBodies = append(f.authBodies, body)
		resp := f.authResponse
		f.mu.Unlock()
		write(w, resp)
	})
	mux.HandleFunc("POST /gateway", func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.createAuth = append(f.createAuth, r.Header.Get("Authorization"))
		f.createBodies = append(f.createBodies, body)
		resp := f.createResponses[0]
		if len(f.createResponses) > 1 {
			f.createResponses = f.createResponses[1:]
		}
		f.mu.Unlock()
		write(w, resp)
	})
	mux.HandleFunc("GET /status/{id}", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		f.mu.Lock()
		f.statusPaths = append(f.statusPaths, r.PathValue("id"))
		f.statusAuthOK = ok && user == "status-id" && pass == "status-secret"
		resp := f.statusResponse
		f.mu.Unlock()
		write(w, resp)
	})
	mux.HandleFunc("POST /v1/pix", func(w http.ResponseWriter, r *http.Request) {
		user, pass, ok := r.BasicAuth()
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.fallbackCalls++
		f.fallbackAuth = ok && user == "client-id" && pass == "client-secret"
		f.fallbackBody = body
		resp := f.fallbackResponse
		f.mu.Unlock()
		write(w, resp)
	})
	return mux
}

func write(w http.ResponseWriter, resp fakeResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write([]byte(resp.body))
}

func (f *fakeSyncPay) createCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.createBodies)
}

func (f *fakeSyncPay) fallbackCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fallbackCalls
}

// view runs fn while holding the lock the handlers write under.
func (f *fakeSyncPay) view(fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	fn()
}

type sleepRecorder struct {
	mu     sync.Mutex
	delays []time.Duration
	err    error
}

func (s *sleepRecorder) sleep(_ context.Context, d time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.delays = append(s.delays, d)
	return s.err
}

func testConfig(baseURL string) SyncPayConfig {
	return SyncPayConfig{
		AuthURL:            baseURL + "/auth",
		GatewayURL:         baseURL + "/gateway",
		StatusURL:          baseURL + "/status/",
		FallbackURL:        baseURL + "/v1/pix",
		ClientID:           "client-id",
		ClientSecret:       "client-secret",
		ExtraKey:           "01K1259MAXE0TNRXV2C2WQN2MV",
		ExtraValue:         "extra",
		StatusClientID:     "status-id",
		StatusClientSecret: "status-secret",
		MaxAttempts:        3,
		BackoffBase:        time.Second,
	}
}

func newTestGateway(t *testing.T, withFallback bool, setup ...func(f *fakeSyncPay)) (*SyncPayGateway, *fakeSyncPay, *sleepRecorder) {
	t.Helper()
	fake := newFakeSyncPay()
	for _, fn := range setup {
		fn(fake)
	}
	srv := httptest.NewServer(fake.handler())
	t.Cleanup(srv.Close)

	cfg := testConfig(srv.URL)
	var gw *SyncPayGateway
	var err error
	if withFallback {
		gw, err = NewSyncPayGateway(cfg, NewSyncPayV1Fallback(cfg))
	} else {
		gw, err = NewSyncPayGateway(cfg, nil)
	}
	require.NoError(t, err)

	rec := &sleepRecorder{}
	gw.sleep = rec.sleep
	return gw, fake, rec
}

func testPaymentRequest() entities.PaymentRequest {
	qty := 1
	tangible := false
	price := decimal.RequireFromString("25.90")
	amount := decimal.RequireFromString("25.90")
	return entities.PaymentRequest{
		IP:     "127.0.0.1",
		Pix:    &entities.PixOption{ExpiresInDays: "2024-12-31"},
		Items:  []entities.Item{{Title: "Emissão de RG", Quantity: &qty, Tangible: &tangible, UnitPrice: &price}},
		Amount: &amount,
		Customer: &entities.Customer{
			CPF:         "11144477735",
			Name:        "Maria Silva",
			Email:       "maria@example.com",
			Phone:       "11999999999",
			ExternalRef: "ORDER_1",
			Address: &entities.Address{
				City: "São Paulo", State: "SP", Street: "Rua Exemplo", Country: "BR",
				ZipCode: "01000000", Neighborhood: "Centro", StreetNumber: "123",
			},
		},
		PostbackURL: "https://example.com/payment-webhook",
	}
}

func TestNewSyncPayGateway_RequiresCredentials(t *testing.T) {
	_, err := NewSyncPayGateway(SyncPayConfig{ClientID: "id"}, nil)
	assert.ErrorIs(t, err, ErrMissingCredentials)
}

func TestAuthenticate_SendsCredentials(t *testing.T) {
	gw, fake, _ := newTestGateway(t, false)

	token, err := gw.Authenticate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "tok-123", token)

	fake.view(func() {
		require.Len(t, fake.authBodies, 1)
		assert.Equal(t, "client-id", fake.authBodies[0]["client_id"])
		assert.Equal(t, "client-secret", fake.authBodies[0]["client_secret"])
		assert.Equal(t, "extra", fake.authBodies[0]["01K1259MAXE0TNRXV2C2WQN2MV"])
	})
}

func TestAuthenticate_Rejected(t *testing.T) {
	gw, _, _ := newTestGateway(t, false, func(f *fakeSyncPay) {
		f.authResponse = fakeResponse{http.StatusForbidden, `{"message":"invalid credentials"}`}
	})

	_, err := gw.Authenticate(context.Background())
	var authErr *entities.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusForbidden, authErr.StatusCode)
}

func TestAuthenticate_MissingToken(t *testing.T) {
	gw, _, _ := newTestGateway(t, false, func(f *fakeSyncPay) {
		f.authResponse = fakeResponse{http.StatusOK, `{"token_type":"Bearer"}`}
	})

	_, err := gw.Authenticate(context.Background())
	assert.ErrorIs(t, err, errMissingAccessToken)
}

func TestCreateTransaction_Success(t *testing.T) {
	gw, fake, rec := newTestGateway(t, true)

	res, err := gw.CreateTransaction(context.Background(), testPaymentRequest())
	require.NoError(t, err)
	assert.Equal(t, "tx-1", res.ID)
	assert.Equal(t, entities.TransactionStatusWaitingApproval, res.Status)
	assert.True(t, res.HasPaymentData())
	assert.Equal(t, providerSyncPayV2, res.Provider)
	assert.Empty(t, rec.delays)
	assert.Zero(t, fake.fallbackCount())

	var sent map[string]any
	fake.view(func() {
		assert.Equal(t, []string{"Bearer tok-123"}, fake.createAuth)
		require.NoError(t, json.Unmarshal(fake.createBodies[0], &sent))
	})
	assert.Equal(t, 25.9, sent["amount"])
	customer := sent["customer"].(map[string]any)
	assert.Equal(t, "ORDER_1", customer["externaRef"])
	assert.Nil(t, customer["document"])
}

func TestCreateTransaction_RetriesServerErrorsWithBackoff(t *testing.T) {
	gw, fake, rec := newTestGateway(t, true, func(f *fakeSyncPay) {
		f.createResponses = []fakeResponse{
			{http.StatusInternalServerError, `{"message":"boom"}`},
			{http.StatusInternalServerError, `{"message":"boom"}`},
			{http.StatusOK, `{"idTransaction":"tx-3","paymentCode":"code","paymentCodeBase64":"img"}`},
		}
	})

	res, err := gw.CreateTransaction(context.Background(), testPaymentRequest())
	require.NoError(t, err)
	assert.Equal(t, "tx-3", res.ID)
	assert.Equal(t, 3, fake.createCalls())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, rec.delays)
	assert.Zero(t, fake.fallbackCount())
	fake.view(func() {
		assert.Len(t, fake.authBodies, 1, "token is reused across attempts")
	})
}

func TestCreateTransaction_BadRequestIsTerminal(t *testing.T) {
	gw, fake, rec := newTestGateway(t, true, func(f *fakeSyncPay) {
		f.createResponses = []fakeResponse{{http.StatusBadRequest, `{"message":"invalid cpf"}`}}
	})

	_, err := gw.CreateTransaction(context.Background(), testPaymentRequest())
	var gwErr *entities.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusBadRequest, gwErr.StatusCode)
	assert.Contains(t, gwErr.ProviderDetails, "invalid cpf")

	assert.Equal(t, 1, fake.createCalls())
	assert.Empty(t, rec.delays)
	assert.Zero(t, fake.fallbackCount())
}

func TestCreateTransaction_UnauthorizedIsTerminal(t *testing.T) {
	gw, fake, _ := newTestGateway(t, true, func(f *fakeSyncPay) {
		f.createResponses = []fakeResponse{{http.StatusUnauthorized, `{}`}}
	})

	_, err := gw.CreateTransaction(context.Background(), testPaymentRequest())
	var authErr *entities.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Equal(t, http.StatusUnauthorized, authErr.StatusCode)
	assert.Equal(t, 1, fake.createCalls())
	assert.Zero(t, fake.fallbackCount())
}

func TestCreateTransaction_AuthRejectedAborts(t *testing.T) {
	gw, fake, _ := newTestGateway(t, true, func(f *fakeSyncPay) {
		f.authResponse = fakeResponse{http.StatusUnauthorized, `{}`}
	})

	_, err := gw.CreateTransaction(context.Background(), testPaymentRequest())
	var authErr *entities.AuthError
	require.True(t, errors.As(err, &authErr))
	assert.Zero(t, fake.createCalls())
	assert.Zero(t, fake.fallbackCount())
}

func TestCreateTransaction_FallbackAfterExhaustedRetries(t *testing.T) {
	gw, fake, rec := newTestGateway(t, true, func(f *fakeSyncPay) {
		f.createResponses = []fakeResponse{{http.StatusServiceUnavailable, `{}`}}
	})

	res, err := gw.CreateTransaction(context.Background(), testPaymentRequest())
	require.NoError(t, err)
	assert.Equal(t, "v1-tx", res.ID)
	assert.Equal(t, providerSyncPayV1, res.Provider)

	assert.Equal(t, 3, fake.createCalls())
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, rec.delays)
	assert.Equal(t, 1, fake.fallbackCount())

	var sent map[string]any
	fake.view(func() {
		assert.True(t, fake.fallbackAuth, "fallback uses basic credentials")
		require.NoError(t, json.Unmarshal(fake.fallbackBody, &sent))
	})
	doc := sent["customer"].(map[string]any)["document"].(map[string]any)
	assert.Equal(t, "11144477735", doc["number"])
	assert.Equal(t, "cpf", doc["type"])
}

func TestCreateTransaction_FallbackFailureReturnsLastPrimaryError(t *testing.T) {
	gw, fake, _ := newTestGateway(t, true, func(f *fakeSyncPay) {
		f.createResponses = []fakeResponse{{http.StatusBadGateway, `{"message":"upstream"}`}}
		f.fallbackResponse = fakeResponse{http.StatusInternalServerError, `{}`}
	})

	_, err := gw.CreateTransaction(context.Background(), testPaymentRequest())
	var gwErr *entities.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusBadGateway, gwErr.StatusCode)
	assert.Equal(t, 1, fake.fallbackCount())
}

func TestCreateTransaction_OtherClientErrorSkipsRetries(t *testing.T) {
	gw, fake, rec := newTestGateway(t, true, func(f *fakeSyncPay) {
		f.createResponses = []fakeResponse{{http.StatusUnprocessableEntity, `{}`}}
	})

	res, err := gw.CreateTransaction(context.Background(), testPaymentRequest())
	require.NoError(t, err)
	assert.Equal(t, "v1-tx", res.ID)
	assert.Equal(t, 1, fake.createCalls())
	assert.Empty(t, rec.delays)
	assert.Equal(t, 1, fake.fallbackCount())
}

func TestCreateTransaction_NoFallbackConfigured(t *testing.T) {
	gw, fake, _ := newTestGateway(t, false, func(f *fakeSyncPay) {
		f.createResponses = []fakeResponse{{http.StatusInternalServerError, `{}`}}
	})

	_, err := gw.CreateTransaction(context.Background(), testPaymentRequest())
	var gwErr *entities.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, http.StatusInternalServerError, gwErr.StatusCode)
	assert.Zero(t, fake.fallbackCount())
}

func TestCreateTransaction_IncompleteResponseKeepsID(t *testing.T) {
	gw, fake, _ := newTestGateway(t, true, func(f *fakeSyncPay) {
		f.createResponses = []fakeResponse{{http.StatusOK, `{"idTransaction":"tx-9","status_transaction":"WAITING_FOR_APPROVAL"}`}}
	})

	res, err := gw.CreateTransaction(context.Background(), testPaymentRequest())
	assert.ErrorIs(t, err, entities.ErrIncompleteResponse)
	assert.Equal(t, "tx-9", res.ID)
	assert.Zero(t, fake.fallbackCount())
}

func TestCreateTransaction_MalformedSuccessIsTerminal(t *testing.T) {
	gw, fake, _ := newTestGateway(t, true, func(f *fakeSyncPay) {
		f.createResponses = []fakeResponse{{http.StatusOK, `<html>`}}
	})

	_, err := gw.CreateTransaction(context.Background(), testPaymentRequest())
	var gwErr *entities.GatewayError
	require.True(t, errors.As(err, &gwErr))
	assert.Equal(t, 1, fake.createCalls())
	assert.Zero(t, fake.fallbackCount())
}

func TestCreateTransaction_CanceledDuringBackoff(t *testing.T) {
	gw, fake, rec := newTestGateway(t, true, func(f *fakeSyncPay) {
		f.createResponses = []fakeResponse{{http.StatusInternalServerError, `{}`}}
	})
	rec.err = context.Canceled

	_, err := gw.CreateTransaction(context.Background(), testPaymentRequest())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, fake.createCalls())
	assert.Zero(t, fake.fallbackCount())
}

func TestCreateTransaction_TransportErrorsAreRetried(t *testing.T) {
	gw, err := NewSyncPayGateway(testConfig("http://127.0.0.1:1"), nil)
	require.NoError(t, err)
	rec := &sleepRecorder{}
	gw.sleep = rec.sleep

	_, err = gw.CreateTransaction(context.Background(), testPaymentRequest())
	var gwErr *entities.GatewayError
	require.True(t, errors.As(err, &gwErr))
	var netErr *entities.TransientNetworkError
	assert.True(t, errors.As(err, &netErr))
	assert.Equal(t, []time.Duration{2 * time.Second, 4 * time.Second}, rec.delays)
}

func TestGetStatus_NotAvailableIsPending(t *testing.T) {
	gw, fake, _ := newTestGateway(t, false)

	res, err := gw.GetStatus(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusPending, res.Status)
	assert.Equal(t, "tx-1", res.ID)
	fake.view(func() {
		assert.Equal(t, []string{"tx-1"}, fake.statusPaths)
		assert.True(t, fake.statusAuthOK)
	})
}

func TestGetStatus_CompletedWhenBothCodesPresent(t *testing.T) {
	gw, _, _ := newTestGateway(t, false, func(f *fakeSyncPay) {
		f.statusResponse = fakeResponse{http.StatusOK, `{"pix_code":"code","qr_code_base64":"img","status":"WAITING_FOR_APPROVAL"}`}
	})

	res, err := gw.GetStatus(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusCompleted, res.Status)
	assert.Equal(t, "tx-1", res.ID)
	assert.Equal(t, "code", res.PaymentCode)
	assert.Equal(t, "img", res.PaymentCodeImage)
}

func TestGetStatus_PartialDataIsPending(t *testing.T) {
	gw, _, _ := newTestGateway(t, false, func(f *fakeSyncPay) {
		f.statusResponse = fakeResponse{http.StatusOK, `{"pix_code":"code"}`}
	})

	res, err := gw.GetStatus(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusPending, res.Status)
}

func TestGetStatus_ProviderFailure(t *testing.T) {
	gw, _, _ := newTestGateway(t, false, func(f *fakeSyncPay) {
		f.statusResponse = fakeResponse{http.StatusOK, `{"status":"canceled"}`}
	})

	res, err := gw.GetStatus(context.Background(), "tx-1")
	require.NoError(t, err)
	assert.Equal(t, entities.TransactionStatusFailed, res.Status)
}

func TestGetStatus_TransportError(t *testing.T) {
	gw, err := NewSyncPayGateway(testConfig("http://127.0.0.1:1"), nil)
	require.NoError(t, err)

	_, err = gw.GetStatus(context.Background(), "tx-1")
	var netErr *entities.TransientNetworkError
	assert.True(t, errors.As(err, &netErr))
}

func TestProbeHealth_FailureDoesNotBlockCreate(t *testing.T) {
	gw, _, _ := newTestGateway(t, false)
	gw.cfg.HealthURL = "http://127.0.0.1:1/health"

	res, err := gw.CreateTransaction(context.Background(), testPaymentRequest())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.ID, "tx-"))
}
