package controllers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/julienschmidt/httprouter"
	"go.uber.org/zap"

	"reskflow-route-optimizer/pkg/datastructure"
	helper "reskflow-route-optimizer/pkg/http/router/routerhelper"
)

type optimizerAPI struct {
	optimizerService OptimizerService
	log              *zap.Logger
}

func New(optimizerService OptimizerService, log *zap.Logger) *optimizerAPI {
	return &optimizerAPI{
		optimizerService: optimizerService,
		log:              log,
	}
}

func (api *optimizerAPI) Routes(group *helper.RouteGroup) {
	group.POST("/routes/optimize", api.optimizeRoute)
	group.POST("/routes/realtime", api.updateRouteRealtime)
	group.GET("/routes/suggestions", api.routeSuggestions)
}

func (api *optimizerAPI) validateRequest(w http.ResponseWriter, r *http.Request,
	request interface{}) bool {
	validate := validator.New()
	if err := validate.Struct(request); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		api.BadRequestResponse(w, r, fmt.Errorf("validation error: %v", vvString))
		return false
	}
	return true
}

func (api *optimizerAPI) optimizeRoute(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request optimizeRouteRequest

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	if !api.validateRequest(w, r, request) {
		return
	}

	obligations := make([]datastructure.Obligation, 0, len(request.Obligations))
	for _, in := range request.Obligations {
		obligations = append(obligations, in.toObligation())
	}

	route, alternatives, err := api.optimizerService.OptimizeRoute(r.Context(),
		request.DriverID, request.Lat, request.Lon, obligations)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK,
		envelope{"data": NewOptimizeRouteResponse(route, alternatives)}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *optimizerAPI) updateRouteRealtime(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var request updateRouteRequest

	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		api.BadRequestResponse(w, r, err)
		return
	}
	if err := r.Body.Close(); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}

	if !api.validateRequest(w, r, request) {
		return
	}

	route, err := api.optimizerService.UpdateRouteRealtime(r.Context(),
		request.DriverID, request.Lat, request.Lon)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": route}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}

func (api *optimizerAPI) routeSuggestions(w http.ResponseWriter, r *http.Request, p httprouter.Params) {
	var (
		driverID string
		lat      float64
		lon      float64
		limit    int
		err      error
	)

	query := r.URL.Query()

	driverID = query.Get("driver_id")
	if driverID == "" {
		api.BadRequestResponse(w, r, errors.New("driver_id is required"))
		return
	}
	lat, err = strconv.ParseFloat(query.Get("lat"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lat is required and must be a valid float"))
		return
	}
	lon, err = strconv.ParseFloat(query.Get("lon"), 64)
	if err != nil {
		api.BadRequestResponse(w, r, errors.New("lon is required and must be a valid float"))
		return
	}
	if rawLimit := query.Get("limit"); rawLimit != "" {
		limit, err = strconv.Atoi(rawLimit)
		if err != nil || limit < 1 {
			api.BadRequestResponse(w, r, errors.New("limit must be a positive int"))
			return
		}
	}

	suggestions, err := api.optimizerService.GetRouteSuggestions(r.Context(), driverID, lat, lon, limit)
	if err != nil {
		api.getStatusCode(w, r, err)
		return
	}

	headers := make(http.Header)

	if err := api.writeJSON(w, http.StatusOK, envelope{"data": suggestions}, headers); err != nil {
		api.ServerErrorResponse(w, r, err)
		return
	}
}
