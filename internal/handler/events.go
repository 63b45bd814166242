package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"

	"github.com/iliyamo/cinebook/internal/model"
	"github.com/iliyamo/cinebook/internal/notify"
	"github.com/iliyamo/cinebook/internal/repository"
	"github.com/iliyamo/cinebook/internal/service"
)

const (
	heartbeatEvery = 15 * time.Second
	wsWriteWait    = 10 * time.Second
	wsPongWait     = 60 * time.Second
	wsPingEvery    = (wsPongWait * 9) / 10
)

// EventsHandler streams seat changes of one room to a viewer, either as
// Server-Sent Events or over a WebSocket.  Each connection owns one bus
// subscription, closed when the client goes away.
type EventsHandler struct {
	Bus      *notify.Bus
	Catalog  service.Catalog
	Log      logrus.FieldLogger
	upgrader websocket.Upgrader
}

// NewEventsHandler returns a handler streaming bus events for showings
// known to catalog.
func NewEventsHandler(bus *notify.Bus, catalog service.Catalog, log logrus.FieldLogger) *EventsHandler {
	return &EventsHandler{
		Bus:     bus,
		Catalog: catalog,
		Log:     log,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			// The API is token authenticated, not cookie authenticated.
			CheckOrigin: func(*http.Request) bool { return true },
		},
	}
}

// roomFromQuery reads ?movieId=&time= and checks the showing exists.
func (h *EventsHandler) roomFromQuery(c echo.Context) (model.RoomKey, error) {
	key := model.RoomKey{MovieID: c.QueryParam("movieId"), Showtime: c.QueryParam("time")}
	if _, ok := h.Catalog.ResolveShowing(key.MovieID, key.Showtime); !ok {
		return model.RoomKey{}, repository.ErrShowingNotFound
	}
	return key, nil
}

// Stream handles GET /api/events.  Every event is written as one
// "data: {json}" frame; a comment line keeps idle proxies from closing
// the connection.
func (h *EventsHandler) Stream(c echo.Context) error {
	key, err := h.roomFromQuery(c)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	sub := h.Bus.Subscribe(key)
	defer sub.Close()

	w := c.Response()
	w.Header().Set(echo.HeaderContentType, "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	w.Flush()

	ctx := c.Request().Context()
	hb := time.NewTicker(heartbeatEvery)
	defer hb.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-hb.C:
			if _, err := fmt.Fprint(w, ": ping\n\n"); err != nil {
				return nil
			}
			w.Flush()
		case ev, ok := <-sub.C():
			if !ok {
				return nil
			}
			data, err := json.Marshal(ev)
			if err != nil {
				h.Log.WithError(err).Warn("events: encode failed")
				continue
			}
			if _, err := fmt.Fprintf(w, "data: %s\n\n", data); err != nil {
				return nil
			}
			w.Flush()
		}
	}
}

// WebSocket handles GET /api/ws.  The server only writes; incoming
// frames are read and discarded so that control frames are processed and
// a closed connection is noticed.
func (h *EventsHandler) WebSocket(c echo.Context) error {
	key, err := h.roomFromQuery(c)
	if err != nil {
		return writeError(c, h.Log, err)
	}
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// Upgrade already replied to the client.
		h.Log.WithError(err).Debug("events: websocket upgrade failed")
		return nil
	}
	defer conn.Close()

	sub := h.Bus.Subscribe(key)
	defer sub.Close()

	done := make(chan struct{})
	go func() {
		defer close(done)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingEvery)
	defer ping.Stop()
	ctx := c.Request().Context()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-done:
			return nil
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case ev, ok := <-sub.C():
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				return nil
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWait))
			if err := conn.WriteJSON(ev); err != nil {
				h.Log.WithError(err).WithField("room", key.String()).Debug("events: websocket write failed")
				return nil
			}
		}
	}
}
