package controllers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
	"github.com/gobwas/ws"
	"github.com/gobwas/ws/wsutil"
	"go.uber.org/zap"

	"reskflow-route-optimizer/pkg/util"
)

type locationUpdateRequest struct {
	DriverID string  `json:"driver_id" validate:"required"`
	Lat      float64 `json:"lat" validate:"required,min=-90,max=90"`
	Lon      float64 `json:"lon" validate:"required,min=-180,max=180"`
}

// Driver is a single websocket connection streaming location updates for one
// driver. Writes are serialized on the io mutex because route-change
// notifications and update responses share the same connection.
type Driver struct {
	io   sync.Mutex
	conn io.ReadWriteCloser

	id  string
	hub *Hub
}

func (d *Driver) readRequest() (*locationUpdateRequest, error) {
	d.io.Lock()
	defer d.io.Unlock()

	h, r, err := wsutil.NextReader(d.conn, ws.StateServerSide)
	if err != nil {
		return nil, err
	}
	if h.OpCode.IsControl() {
		return nil, wsutil.ControlFrameHandler(d.conn, ws.StateServerSide)(h, r)
	}

	req := &locationUpdateRequest{}
	decoder := json.NewDecoder(r)
	if err := decoder.Decode(req); err != nil {
		return nil, err
	}
	return req, nil
}

// HandleLocationUpdate reads one location update off the connection,
// re-optimizes the driver's route, and writes back either the unchanged
// current route or the re-optimized one.
func (d *Driver) HandleLocationUpdate(ctx context.Context) error {
	req, err := d.readRequest()
	if err != nil {
		d.conn.Close()
		return err
	}

	if req == nil {
		return nil
	}

	validate := validator.New()

	if err := validate.Struct(req); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		vvString := []string{}
		for _, v := range vv {
			vvString = append(vvString, v.Error())
		}
		errResp := envelope{"error": map[string]string{
			"code":    http.StatusText(http.StatusBadRequest),
			"message": fmt.Sprintf("validation error: %v", vvString),
		}}
		return d.write(errResp)
	}

	d.hub.bind(d, req.DriverID)

	route, err := d.hub.optimizerService.UpdateRouteRealtime(ctx, req.DriverID, req.Lat, req.Lon)
	if err != nil {
		errResp := envelope{"error": map[string]string{
			"code":    http.StatusText(statusFromErr(err)),
			"message": err.Error(),
		}}
		return d.write(errResp)
	}

	return d.write(envelope{"data": route})
}

func statusFromErr(err error) int {
	switch util.ErrCode(err) {
	case util.ErrBadParamInput, util.ErrInvalidLocation, util.ErrIncompleteObligation:
		return http.StatusBadRequest
	case util.ErrNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func (d *Driver) write(x interface{}) error {
	w := wsutil.NewWriter(d.conn, ws.StateServerSide, ws.OpText)
	encoder := json.NewEncoder(w)

	d.io.Lock()
	defer d.io.Unlock()

	if err := encoder.Encode(x); err != nil {
		return err
	}

	return w.Flush()
}

// Hub tracks connected drivers by driver id and doubles as the notification
// sink for route-change events. A driver without an open connection simply
// misses the push, the latest route is still served over HTTP.
type Hub struct {
	mu               sync.RWMutex
	drivers          map[string]*Driver
	optimizerService OptimizerService
	log              *zap.Logger
}

func NewHub(optimizerService OptimizerService, log *zap.Logger) *Hub {
	return &Hub{
		drivers:          make(map[string]*Driver),
		optimizerService: optimizerService,
		log:              log,
	}
}

func (h *Hub) Register(conn io.ReadWriteCloser) *Driver {
	return &Driver{
		hub:  h,
		conn: conn,
	}
}

// bind associates the connection with a driver id once the first update
// names one. Re-binding replaces any stale connection for that driver.
func (h *Hub) bind(d *Driver, driverID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if d.id == driverID {
		return
	}
	if d.id != "" {
		delete(h.drivers, d.id)
	}
	d.id = driverID
	h.drivers[driverID] = d
}

func (h *Hub) Remove(d *Driver) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if d.id == "" {
		return
	}
	if cur, ok := h.drivers[d.id]; ok && cur == d {
		delete(h.drivers, d.id)
	}
}

func (h *Hub) RemoveAll() {
	h.mu.Lock()
	defer h.mu.Unlock()
	for id, d := range h.drivers {
		d.conn.Close()
		delete(h.drivers, id)
	}
}

// NotifyDriver pushes a route-change notification to the driver's websocket
// connection, if one is open.
func (h *Hub) NotifyDriver(ctx context.Context, driverID, message string,
	payload map[string]interface{}) error {
	h.mu.RLock()
	d, ok := h.drivers[driverID]
	h.mu.RUnlock()
	if !ok {
		h.log.Debug("no websocket connection for driver, dropping notification",
			zap.String("driverID", driverID))
		return nil
	}

	notif := envelope{"notification": map[string]interface{}{
		"message": message,
		"payload": payload,
	}}
	if err := d.write(notif); err != nil {
		h.Remove(d)
		return util.WrapErrorf(err, util.ErrInternalServerError,
			"controllers.Hub.NotifyDriver driverID=%s", driverID)
	}
	return nil
}
