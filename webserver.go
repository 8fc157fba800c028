package main

import (
	"context"
	"net/http"
	"strconv"

	"github.com/acd/extaclimate/extalife"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"golang.org/x/net/websocket"
)

type climateArgs struct {
	HVACMode    *string  `json:"hvacMode"`
	Temperature *float64 `json:"temperature"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func climateByID(core *extalife.Core, c *gin.Context) (*extalife.Climate, bool) {
	e, ok := core.Entity(c.Param("id"))
	if ok {
		if climate, ok := e.(*extalife.Climate); ok {
			return climate, true
		}
	}
	c.JSON(http.StatusNotFound, errorResponse{Error: "unknown channel"})
	return nil, false
}

func newRouter(core *extalife.Core) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestLogger())

	api := r.Group("/api")

	api.GET("/climate", func(c *gin.Context) {
		views := []any{}
		for _, e := range core.Entities() {
			views = append(views, e.View())
		}
		c.JSON(http.StatusOK, views)
	})

	api.GET("/climate/:id", func(c *gin.Context) {
		if climate, ok := climateByID(core, c); ok {
			c.JSON(http.StatusOK, climate.View())
		}
	})

	api.PUT("/climate/:id", func(c *gin.Context) {
		climate, ok := climateByID(core, c)
		if !ok {
			return
		}

		var args climateArgs
		if err := c.ShouldBindJSON(&args); err != nil {
			c.JSON(http.StatusBadRequest, errorResponse{Error: err.Error()})
			return
		}

		ctx := c.Request.Context()
		if args.HVACMode != nil {
			mode, ok := extalife.ParseHVACMode(*args.HVACMode)
			if !ok {
				c.JSON(http.StatusBadRequest, errorResponse{Error: "unsupported hvacMode " + strconv.Quote(*args.HVACMode)})
				return
			}
			if !climate.SetHVACMode(ctx, mode) {
				c.JSON(http.StatusBadGateway, errorResponse{Error: "gateway rejected hvac mode change"})
				return
			}
		}
		if args.Temperature != nil && !climate.SetTemperature(ctx, args.Temperature) {
			c.JSON(http.StatusBadGateway, errorResponse{Error: "gateway rejected temperature change"})
			return
		}

		c.JSON(http.StatusOK, climate.View())
	})

	api.GET("/virtual-sensors", func(c *gin.Context) {
		channels := core.Channels(extalife.DomainVirtualClimateSensor)
		if channels == nil {
			channels = []extalife.Channel{}
		}
		c.JSON(http.StatusOK, channels)
	})

	api.GET("/ws", func(c *gin.Context) {
		h := websocket.Handler(func(ws *websocket.Conn) {
			attachListener(c.Request.Context(), core, ws)
		})
		h.ServeHTTP(c.Writer, c.Request)
	})

	return r
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		log.WithFields(log.Fields{
			"method": c.Request.Method,
			"path":   c.Request.URL.Path,
			"status": c.Writer.Status(),
		}).Debug("http request")
	}
}

func webserver(ctx context.Context, port int, core *extalife.Core) error {
	srv := &http.Server{
		Addr:    ":" + strconv.Itoa(port),
		Handler: newRouter(core),
	}

	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	log.Infof("listening on %s", srv.Addr)
	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

func attachListener(ctx context.Context, core *extalife.Core, ws *websocket.Conn) {
	listener := core.NewListener()

	defer func() {
		listener.Close()
		log.Debug("closing websocket")
		if err := ws.Close(); err != nil {
			log.Debugf("error on ws close: %s", err)
		}
	}()

	log.Debug("dumping cached entities")
	for _, e := range core.Entities() {
		if err := websocket.JSON.Send(ws, map[string]any{"channel": e.ChannelID(), "data": e.View()}); err != nil {
			log.Debugf("error on websocket write: %s", err)
			return
		}
	}

	// wait for events
	for {
		select {
		case event, ok := <-listener.Receive():
			if !ok {
				log.Debug("listener closed")
				return
			}
			if err := websocket.JSON.Send(ws, event); err != nil {
				log.Debugf("error on websocket write: %s", err)
				return
			}
		case <-ctx.Done():
			return
		}
	}
}
