package main

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"WatchlistScanner/internal/config"
	"WatchlistScanner/internal/strategy"
)

func TestSplitTickers(t *testing.T) {
	assert.Equal(t, []string{"AAPL", "MSFT"}, splitTickers(" aapl, ,MSFT,"))
	assert.Nil(t, splitTickers(""))
}

func TestNewFetcherBySource(t *testing.T) {
	cfg := config.Default()
	assert.Equal(t, "yahoo", newFetcher(cfg).Name())

	cfg.Data.Source = config.SourceVsTrader
	cfg.Data.VsTrader.BaseURL = "http://localhost:9000"
	assert.Equal(t, "vstrader", newFetcher(cfg).Name())

	cfg.Data.Source = config.SourceMock
	assert.Equal(t, "mock", newFetcher(cfg).Name())
}

func TestRenderRules(t *testing.T) {
	out := renderRules(strategy.Presets())
	assert.Contains(t, out, "ultimate")
	assert.Contains(t, out, "channel_printing")
	assert.Contains(t, out, "volume_ratio<=25")
}
