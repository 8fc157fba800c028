package main

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/acd/extaclimate/extalife"
	"github.com/acd/extaclimate/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubActions struct {
	accept bool
}

func (s stubActions) SendAction(context.Context, string, extalife.Action, int) bool {
	return s.accept
}

func newTestRouter(t *testing.T, accept bool) *gin.Engine {
	gin.SetMode(gin.TestMode)

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	value := 200
	core := extalife.NewCore(ctx, "test", stubActions{accept: accept})
	core.PushChannels(extalife.DomainClimate, channelFromConfig(config.ChannelConfig{ID: "12-1", Alias: "Living room", Value: &value}))
	extalife.SetupClimate(core)
	return newRouter(core)
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestListClimate(t *testing.T) {
	r := newTestRouter(t, true)

	w := do(r, http.MethodGet, "/api/climate", "")
	require.Equal(t, http.StatusOK, w.Code)

	var views []extalife.ClimateView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &views))
	require.Len(t, views, 1)
	assert.Equal(t, "12-1", views[0].ID)
	assert.Equal(t, extalife.HVACModeHeat, views[0].HVACMode)
}

func TestGetClimateUnknown(t *testing.T) {
	r := newTestRouter(t, true)

	w := do(r, http.MethodGet, "/api/climate/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestPutClimate(t *testing.T) {
	r := newTestRouter(t, true)

	w := do(r, http.MethodPut, "/api/climate/12-1", `{"hvacMode":"auto"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var view extalife.ClimateView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, extalife.HVACModeAuto, view.HVACMode)

	w = do(r, http.MethodPut, "/api/climate/12-1", `{"temperature":22.5}`)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.Equal(t, extalife.HVACModeHeat, view.HVACMode)
	assert.InDelta(t, 22.5, *view.TargetTemperature, 1e-9)
}

func TestPutClimateBadRequest(t *testing.T) {
	r := newTestRouter(t, true)

	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPut, "/api/climate/12-1", `{"hvacMode":"cool"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(r, http.MethodPut, "/api/climate/12-1", `not json`).Code)
}

func TestPutClimateRejectedByGateway(t *testing.T) {
	r := newTestRouter(t, false)

	w := do(r, http.MethodPut, "/api/climate/12-1", `{"temperature":19}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)

	w = do(r, http.MethodGet, "/api/climate/12-1", "")
	var view extalife.ClimateView
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &view))
	assert.InDelta(t, 20.0, *view.TargetTemperature, 1e-9)
}

func TestVirtualSensors(t *testing.T) {
	r := newTestRouter(t, true)

	w := do(r, http.MethodGet, "/api/virtual-sensors", "")
	require.Equal(t, http.StatusOK, w.Code)

	var channels []extalife.Channel
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &channels))
	require.Len(t, channels, 1)
	assert.Equal(t, "12-1", channels[0].ID)
}

func TestChannelFromConfig(t *testing.T) {
	value, temp, old := 215, 208, 207
	waiting := true

	ch := channelFromConfig(config.ChannelConfig{
		ID:                   "1",
		WorkMode:             true,
		Value:                &value,
		Temperature:          &temp,
		WaitingToSynchronize: &waiting,
		TemperatureOld:       &old,
	})

	assert.Equal(t, extalife.DeviceState{
		WorkMode:             true,
		Value:                extalife.Some(215),
		Temperature:          extalife.Some(208),
		WaitingToSynchronize: extalife.Some(true),
		TemperatureOld:       extalife.Some(207),
	}, ch.Data)
}
