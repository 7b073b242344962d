package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"reskflow-route-optimizer/pkg/datastructure"
	helper "reskflow-route-optimizer/pkg/http/router/routerhelper"
	"reskflow-route-optimizer/pkg/util"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubOptimizerService struct {
	route       *datastructure.Route
	suggestions *datastructure.RouteSuggestions
	err         error

	gotDriverID    string
	gotObligations []datastructure.Obligation
	gotLimit       int
}

func (s *stubOptimizerService) OptimizeRoute(_ context.Context, driverID string, lat, lon float64,
	obligations []datastructure.Obligation) (*datastructure.Route, []datastructure.AlternativeRoute, error) {
	s.gotDriverID = driverID
	s.gotObligations = obligations
	return s.route, nil, s.err
}

func (s *stubOptimizerService) UpdateRouteRealtime(_ context.Context, driverID string,
	lat, lon float64) (*datastructure.Route, error) {
	s.gotDriverID = driverID
	return s.route, s.err
}

func (s *stubOptimizerService) GetRouteSuggestions(_ context.Context, driverID string,
	lat, lon float64, limit int) (*datastructure.RouteSuggestions, error) {
	s.gotDriverID = driverID
	s.gotLimit = limit
	return s.suggestions, s.err
}

func setupRouter(stub *stubOptimizerService) *httprouter.Router {
	router := httprouter.New()
	group := helper.NewRouteGroup(router, "/api")
	New(stub, zap.NewNop()).Routes(group)
	return router
}

func TestOptimizeRouteHandler(t *testing.T) {
	stub := &stubOptimizerService{route: &datastructure.Route{DriverID: "d1"}}
	router := setupRouter(stub)

	body := map[string]interface{}{
		"driver_id": "d1",
		"lat":       40.0,
		"lon":       -74.0,
		"obligations": []map[string]interface{}{
			{
				"id":          "ob-1",
				"pickup_lat":  40.01,
				"pickup_lon":  -74.0,
				"dropoff_lat": 40.02,
				"dropoff_lon": -74.0,
				"payout":      8.5,
			},
		},
	}
	raw, _ := json.Marshal(body)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/routes/optimize", bytes.NewReader(raw))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "d1", stub.gotDriverID)
	require.Len(t, stub.gotObligations, 1)
	require.Equal(t, "ob-1", stub.gotObligations[0].ID)
	require.Equal(t, 8.5, stub.gotObligations[0].Payout)

	var resp struct {
		Data struct {
			Route datastructure.Route `json:"route"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "d1", resp.Data.Route.DriverID)
}

func TestOptimizeRouteHandlerValidation(t *testing.T) {
	stub := &stubOptimizerService{}
	router := setupRouter(stub)

	// missing obligations entirely
	raw, _ := json.Marshal(map[string]interface{}{
		"driver_id": "d1",
		"lat":       40.0,
		"lon":       -74.0,
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/routes/optimize", bytes.NewReader(raw))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestOptimizeRouteHandlerDomainError(t *testing.T) {
	stub := &stubOptimizerService{
		err: util.WrapErrorf(nil, util.ErrInfeasibleConstraints, "no feasible ordering"),
	}
	router := setupRouter(stub)

	raw, _ := json.Marshal(map[string]interface{}{
		"driver_id": "d1",
		"lat":       40.0,
		"lon":       -74.0,
		"obligations": []map[string]interface{}{
			{"id": "ob-1", "pickup_lat": 40.01, "pickup_lon": -74.0,
				"dropoff_lat": 40.02, "dropoff_lon": -74.0},
		},
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/routes/optimize", bytes.NewReader(raw))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUpdateRouteRealtimeHandler(t *testing.T) {
	stub := &stubOptimizerService{route: &datastructure.Route{DriverID: "d7"}}
	router := setupRouter(stub)

	raw, _ := json.Marshal(map[string]interface{}{
		"driver_id": "d7",
		"lat":       40.0,
		"lon":       -74.0,
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/routes/realtime", bytes.NewReader(raw))
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "d7", stub.gotDriverID)
}

func TestRouteSuggestionsHandler(t *testing.T) {
	stub := &stubOptimizerService{suggestions: &datastructure.RouteSuggestions{}}
	router := setupRouter(stub)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet,
		"/api/routes/suggestions?driver_id=d1&lat=40.0&lon=-74.0&limit=3", nil)
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.Equal(t, "d1", stub.gotDriverID)
	require.Equal(t, 3, stub.gotLimit)
}

func TestRouteSuggestionsHandlerMissingParams(t *testing.T) {
	stub := &stubOptimizerService{}
	router := setupRouter(stub)

	testCases := []string{
		"/api/routes/suggestions?lat=40.0&lon=-74.0",
		"/api/routes/suggestions?driver_id=d1&lon=-74.0",
		"/api/routes/suggestions?driver_id=d1&lat=40.0",
		"/api/routes/suggestions?driver_id=d1&lat=40.0&lon=-74.0&limit=zero",
	}
	for _, url := range testCases {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, url, nil)
		router.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code, url)
	}
}
