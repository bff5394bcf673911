package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ajitpratap0/thermalnetwork/internal/config"
	"github.com/ajitpratap0/thermalnetwork/internal/engine"
	"github.com/ajitpratap0/thermalnetwork/internal/topology"
)

func TestNewEngineModes(t *testing.T) {
	cfg = &config.Config{Engine: config.EngineConfig{Mode: config.EngineModeCommand, Command: "ghedesigner"}}
	t.Cleanup(func() { cfg = nil })

	eng, err := newEngine(newLogger())
	require.NoError(t, err)
	assert.IsType(t, &engine.CommandEngine{}, eng)

	cfg.Engine = config.EngineConfig{Mode: config.EngineModeHTTP, BaseURL: "http://localhost:8080"}
	eng, err = newEngine(newLogger())
	require.NoError(t, err)
	assert.IsType(t, &engine.HTTPEngine{}, eng)

	cfg.Engine.Mode = "carrier-pigeon"
	_, err = newEngine(newLogger())
	assert.Error(t, err)
}

func TestLoopCommandWritesOrder(t *testing.T) {
	dir := t.TempDir()
	geo := filepath.Join(dir, "network.geojson")
	require.NoError(t, os.WriteFile(geo, []byte(`{"type":"FeatureCollection","features":[
	  {"type":"Feature","properties":{"type":"Building","id":"A"}},
	  {"type":"Feature","properties":{"type":"District System","id":"G","district_system_type":"Ground Heat Exchanger"}},
	  {"type":"Feature","properties":{"type":"ThermalConnector","id":"c1","startFeatureId":"A","endFeatureId":"G","total_length":10}},
	  {"type":"Feature","properties":{"type":"ThermalConnector","id":"c2","startFeatureId":"G","endFeatureId":"A","total_length":10}}
	]}`), 0o600))

	cmd := loopCmd()
	cmd.SetArgs([]string{"-f", geo, "-o", dir})
	require.NoError(t, cmd.Execute())
	assert.FileExists(t, filepath.Join(dir, topology.LoopOrderFile))
}

func TestLoopCommandRejectsOpenChain(t *testing.T) {
	dir := t.TempDir()
	geo := filepath.Join(dir, "network.geojson")
	require.NoError(t, os.WriteFile(geo, []byte(`{"type":"FeatureCollection","features":[
	  {"type":"Feature","properties":{"type":"Building","id":"A"}},
	  {"type":"Feature","properties":{"type":"District System","id":"G","district_system_type":"Ground Heat Exchanger"}},
	  {"type":"Feature","properties":{"type":"ThermalConnector","id":"c1","startFeatureId":"A","endFeatureId":"G","total_length":10}}
	]}`), 0o600))

	cmd := loopCmd()
	cmd.SetArgs([]string{"-f", geo})
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	assert.Error(t, cmd.Execute())
}
