package config

import (
	"context"
	"errors"

	"launchlink-go/bus"
	"launchlink-go/errcode"
	"launchlink-go/types"
)

const (
	serviceName  = "config"
	CtxDeviceKey = "device" // context key carrying the device ID
)

var TopicLink = bus.T("config", "link")

// EmbeddedConfigLookup resolves a device's raw JSON. Tests override it.
var EmbeddedConfigLookup = func(device string) ([]byte, bool) {
	b, ok := embeddedConfigs[device]
	return b, ok
}

var (
	errNoDevice = errors.New("config: missing device ID")
	errNoConfig = errors.New("config: no embedded config")
)

// Load decodes the device's embedded configuration and fills defaults.
func Load(device string) (types.LinkConfig, error) {
	if device == "" {
		return types.LinkConfig{}, errNoDevice
	}
	raw, ok := EmbeddedConfigLookup(device)
	if !ok || len(raw) == 0 {
		return types.LinkConfig{}, &errcode.E{C: errcode.InvalidParams, Op: "config.Load", Msg: device, Err: errNoConfig}
	}
	m, err := parse(raw)
	if err != nil {
		return types.LinkConfig{}, &errcode.E{C: errcode.InvalidParams, Op: "config.Load", Msg: device, Err: err}
	}
	c, key, err := decode(m)
	if err != nil {
		return types.LinkConfig{}, &errcode.E{C: errcode.InvalidParams, Op: "config.Load", Msg: device + "." + key, Err: err}
	}
	return c.WithDefaults(), nil
}

type ConfigService struct {
	Name string
}

func NewConfigService() *ConfigService {
	return &ConfigService{Name: serviceName}
}

// Publish loads the configuration for the device named in ctx and publishes
// it retained on config/link.
func (s *ConfigService) Publish(ctx context.Context, conn *bus.Connection) (types.LinkConfig, error) {
	device, _ := ctx.Value(CtxDeviceKey).(string)
	c, err := Load(device)
	if err != nil {
		return c, err
	}
	conn.Publish(conn.NewMessage(TopicLink, c, true))
	return c, nil
}
