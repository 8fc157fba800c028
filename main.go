package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/acd/extaclimate/extalife"
	"github.com/acd/extaclimate/internal/config"
	"github.com/acd/extaclimate/internal/mqtt"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func configureLogging(cfg config.LoggingConfig) {
	level, err := log.ParseLevel(cfg.Level)
	if err != nil {
		log.Warnf("unknown log level %q, using info", cfg.Level)
		level = log.InfoLevel
	}
	log.SetLevel(level)

	if cfg.Format == "json" {
		log.SetFormatter(&log.JSONFormatter{TimestampFormat: time.RFC3339})
	} else {
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	}

	if level < log.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
}

func channelFromConfig(cc config.ChannelConfig) extalife.Channel {
	data := extalife.DeviceState{WorkMode: cc.WorkMode}
	if cc.Value != nil {
		data.Value = extalife.Some(*cc.Value)
	}
	if cc.Temperature != nil {
		data.Temperature = extalife.Some(*cc.Temperature)
	}
	if cc.WaitingToSynchronize != nil {
		data.WaitingToSynchronize = extalife.Some(*cc.WaitingToSynchronize)
	}
	if cc.TemperatureOld != nil {
		data.TemperatureOld = extalife.Some(*cc.TemperatureOld)
	}
	return extalife.Channel{ID: cc.ID, Alias: cc.Alias, Data: data}
}

func main() {
	configPath := flag.String("config", "extaclimate.yaml", "path to configuration file")
	httpPort := flag.Int("httpport", 0, "HTTP port to listen on (overrides config)")

	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("error loading config: %s\n", err)
		flag.PrintDefaults()
		os.Exit(1)
	}
	if *httpPort > 0 {
		cfg.HTTP.Port = *httpPort
	}

	configureLogging(cfg.Logging)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	client, err := mqtt.Connect(cfg.MQTT)
	if err != nil {
		log.Panicf("error connecting to MQTT broker: %s", err)
	}
	defer client.Close()

	protocol, err := extalife.NewProtocol(ctx, client, extalife.ProtocolConfig{
		TopicPrefix:     cfg.MQTT.TopicPrefix,
		QoS:             byte(cfg.MQTT.QoS),
		ResponseTimeout: cfg.MQTT.ResponseTimeout,
		Retries:         cfg.MQTT.Retries,
	})
	if err != nil {
		log.Panicf("error starting gateway relay: %s", err)
	}

	core := extalife.NewCore(ctx, cfg.EntryID, protocol)
	for _, cc := range cfg.Channels {
		core.PushChannels(extalife.DomainClimate, channelFromConfig(cc))
	}
	extalife.SetupClimate(core)
	protocol.SetOnNotification(core.HandleNotification)

	if err := webserver(ctx, cfg.HTTP.Port, core); err != nil {
		log.Errorf("webserver: %s", err)
	}
}
