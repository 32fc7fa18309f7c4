package handler_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/damon-houk/travel-budget-tracker/internal/application/service"
	"github.com/damon-houk/travel-budget-tracker/internal/domain/apperrors"
	"github.com/damon-houk/travel-budget-tracker/internal/domain/entity"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/db"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/handler"
	"github.com/damon-houk/travel-budget-tracker/internal/infrastructure/logger"
	"github.com/damon-houk/travel-budget-tracker/internal/mocks"
	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	fetcher    *mocks.MockRateFetcher
	reconciler *service.StalenessReconciler
}

// setupTestServer wires the full stack over an in-memory badger database
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	opts := badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	badgerDB, err := badger.Open(opts)
	require.NoError(t, err)

	log := logger.NewJSONLogger(nil, logger.ErrorLevel)
	fetcher := new(mocks.MockRateFetcher)

	store := db.NewBadgerObjectStore(badgerDB, log)
	countries := service.NewCountryRepository(store, log)
	reconciler := service.NewStalenessReconciler(store, fetcher, nil, countries, log)
	store.SetTravelCreationHook(reconciler)

	router := handler.NewRouter(log,
		handler.NewCountryHandler(countries, log),
		handler.NewTravelHandler(service.NewTravelRepository(store, log), log),
	)

	server := httptest.NewServer(router)
	t.Cleanup(func() {
		server.Close()
		reconciler.Wait()
		_ = badgerDB.Close()
	})

	return &testServer{Server: server, fetcher: fetcher, reconciler: reconciler}
}

func (s *testServer) do(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req, err := http.NewRequestWithContext(context.Background(), method, s.URL+path, &buf)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decode[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&v))
	return v
}

func TestTravelLifecycle(t *testing.T) {
	s := setupTestServer(t)
	today := time.Now().Format("2006-01-02")

	resp := s.do(t, http.MethodPost, "/countries", handler.CreateCountryRequest{
		Name:         "USA",
		LastUpdated:  today,
		ExchangeRate: 1300,
		CurrencyCode: "USD",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))

	resp = s.do(t, http.MethodPost, "/travels", handler.CreateTravelRequest{CountryName: "USA"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[handler.TravelResponse](t, resp)
	assert.Equal(t, "USA", created.Title)
	assert.Equal(t, 1300.0, created.ExchangeRate)
	assert.Equal(t, today, created.StartDate)

	title := "Road trip"
	budget := 2600.0
	resp = s.do(t, http.MethodPatch, "/travels/"+created.ID, map[string]interface{}{
		"title":    title,
		"budget":   budget,
		"end_date": time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
	})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	updated := decode[handler.TravelResponse](t, resp)
	assert.Equal(t, "Road trip", updated.Title)
	assert.Equal(t, 2600.0, updated.Budget)
	assert.Equal(t, "2", updated.BudgetInBase.String())

	resp = s.do(t, http.MethodGet, "/travels", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	listed := decode[[]handler.TravelResponse](t, resp)
	require.Len(t, listed, 1)
	assert.Equal(t, created.ID, listed[0].ID)

	resp = s.do(t, http.MethodDelete, "/travels/"+created.ID, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = s.do(t, http.MethodDelete, "/travels/"+created.ID, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.do(t, http.MethodGet, "/travels", nil)
	assert.Empty(t, decode[[]handler.TravelResponse](t, resp))

	s.fetcher.AssertNotCalled(t, "FetchRates", mock.Anything, mock.Anything)
}

func TestStaleCountryRefreshesInBackground(t *testing.T) {
	s := setupTestServer(t)
	yesterday := time.Now().AddDate(0, 0, -1).Format("2006-01-02")

	s.fetcher.On("FetchRates", mock.Anything, "JPY").Return(&entity.RateSnapshot{
		Base:  "KRW",
		AsOf:  time.Now(),
		Rates: map[string]float64{"JPY": 9.25},
	}, nil).Once()

	resp := s.do(t, http.MethodPost, "/countries", handler.CreateCountryRequest{
		Name:         "Japan",
		LastUpdated:  yesterday,
		ExchangeRate: 9.1,
		CurrencyCode: "JPY",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/travels", handler.CreateTravelRequest{CountryName: "Japan"})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	created := decode[handler.TravelResponse](t, resp)
	assert.Equal(t, 9.1, created.ExchangeRate)

	s.reconciler.Wait()
	s.fetcher.AssertNumberOfCalls(t, "FetchRates", 1)

	resp = s.do(t, http.MethodGet, "/countries", nil)
	countries := decode[[]handler.CountryResponse](t, resp)
	require.Len(t, countries, 1)
	assert.Equal(t, 9.25, countries[0].ExchangeRate)
	assert.Equal(t, time.Now().Format("2006-01-02"), countries[0].LastUpdated)

	resp = s.do(t, http.MethodGet, "/travels/"+created.ID, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 9.1, decode[handler.TravelResponse](t, resp).ExchangeRate)
}

func TestFailedRefreshDoesNotFailCreation(t *testing.T) {
	s := setupTestServer(t)
	s.fetcher.On("FetchRates", mock.Anything, "EUR").Return(nil, apperrors.ErrNetwork).Once()

	resp := s.do(t, http.MethodPost, "/countries", handler.CreateCountryRequest{
		Name:         "France",
		LastUpdated:  "2020-01-01",
		ExchangeRate: 1450,
		CurrencyCode: "EUR",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	resp = s.do(t, http.MethodPost, "/travels", handler.CreateTravelRequest{CountryName: "France"})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	s.reconciler.Wait()

	resp = s.do(t, http.MethodGet, "/countries", nil)
	countries := decode[[]handler.CountryResponse](t, resp)
	require.Len(t, countries, 1)
	assert.Equal(t, 1450.0, countries[0].ExchangeRate)
	assert.Equal(t, "2020-01-01", countries[0].LastUpdated)
}

func TestErrorResponses(t *testing.T) {
	s := setupTestServer(t)

	cases := []struct {
		name   string
		method string
		path   string
		body   interface{}
		status int
	}{
		{"Malformed body", http.MethodPost, "/countries", "not an object", http.StatusBadRequest},
		{"Bad currency code", http.MethodPost, "/countries", handler.CreateCountryRequest{
			Name: "Peru", ExchangeRate: 380, CurrencyCode: "pen",
		}, http.StatusBadRequest},
		{"Bad date", http.MethodPost, "/countries", handler.CreateCountryRequest{
			Name: "Peru", LastUpdated: "01/02/2026", ExchangeRate: 380, CurrencyCode: "PEN",
		}, http.StatusBadRequest},
		{"Unknown country", http.MethodPost, "/travels", handler.CreateTravelRequest{CountryName: "Atlantis"}, http.StatusNotFound},
		{"Invalid id", http.MethodGet, "/travels/not-a-uuid", nil, http.StatusBadRequest},
		{"Missing travel", http.MethodGet, "/travels/" + uuid.NewString(), nil, http.StatusNotFound},
		{"Patch missing travel", http.MethodPatch, "/travels/" + uuid.NewString(), map[string]string{"memo": "x"}, http.StatusNotFound},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp := s.do(t, tc.method, tc.path, tc.body)
			assert.Equal(t, tc.status, resp.StatusCode)

			errResp := decode[handler.ErrorResponse](t, resp)
			assert.Equal(t, tc.status, errResp.Status)
			assert.NotEmpty(t, errResp.RequestID)
		})
	}

	t.Run("Duplicate country", func(t *testing.T) {
		body := handler.CreateCountryRequest{Name: "Chile", ExchangeRate: 1.4, CurrencyCode: "CLP"}
		assert.Equal(t, http.StatusCreated, s.do(t, http.MethodPost, "/countries", body).StatusCode)
		assert.Equal(t, http.StatusConflict, s.do(t, http.MethodPost, "/countries", body).StatusCode)
	})
}
