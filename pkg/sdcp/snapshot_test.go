package sdcp

import (
	"fmt"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusText(t *testing.T) {
	tests := []struct {
		code int
		want string
	}{
		{0, StatusIdle},
		{1, StatusPrinting},
		{2, StatusPaused},
		{3, StatusError},
		{-1, StatusUnknown},
		{4, StatusUnknown},
		{13, StatusUnknown},
	}

	for _, tt := range tests {
		t.Run(fmt.Sprintf("code %d", tt.code), func(t *testing.T) {
			assert.Equal(t, tt.want, StatusText(tt.code))
		})
	}
}

func TestProgressPercent(t *testing.T) {
	assert.Zero(t, ProgressPercent(0, 0))
	assert.Zero(t, ProgressPercent(25, 0))

	for total := 1; total <= 50; total++ {
		for current := 0; current <= total; current++ {
			want := float64(current) / float64(total) * 100
			assert.InDelta(t, want, ProgressPercent(current, total), 1e-9)
		}
	}

	assert.Equal(t, "33.33%", FormatPercent(ProgressPercent(1, 3)))
	assert.Equal(t, "100.00%", FormatPercent(ProgressPercent(600, 600)))
	assert.Equal(t, "0.00%", FormatPercent(0))

	tests := []struct {
		current, total int
		want           float64
	}{
		{700, 600, 100},
		{600, 600, 100},
		{-5, 10, 0},
		{maxLayer, maxLayer, 100},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ProgressPercent(tt.current, tt.total), "%d/%d", tt.current, tt.total)
	}
}

func TestTicksToText(t *testing.T) {
	tests := []struct {
		ticks int64
		want  string
	}{
		{0, "0h 0m 0s"},
		{999, "0h 0m 0s"},
		{300000, "0h 5m 0s"},
		{3723000, "1h 2m 3s"},
		{-5000, "0h 0m 0s"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, TicksToText(tt.ticks), "ticks=%d", tt.ticks)
	}
}

func TestEstimateFinish(t *testing.T) {
	now := time.Date(2024, 3, 9, 22, 58, 30, 0, time.UTC)

	assert.Equal(t, "23:03:30 - 09/03/24", EstimateFinish(300000, now))
	assert.Equal(t, "00:00:30 - 10/03/24", EstimateFinish(62*60*1000, now))
	assert.Equal(t, FinishCompleted, EstimateFinish(0, now))
	assert.Equal(t, FinishCompleted, EstimateFinish(-1, now))

	capped := now.Add(time.Duration(maxTicks) * time.Millisecond).Format(finishTimeLayout)
	assert.Equal(t, capped, EstimateFinish(maxTicks, now))
	assert.Equal(t, capped, EstimateFinish(1e16, now))
	assert.Equal(t, capped, EstimateFinish(math.MaxInt64, now))
}

func TestNewSnapshot_HalfwayPrint(t *testing.T) {
	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

	reply, ok := decodeStatus([]byte(`{"Data":{"Attributes":{"MachineName":"Saturn 3 Ultra","FirmwareVersion":"V1.4.2","Resolution":"11520x5120"},
		"Status":{"CurrentStatus":1,"PrintInfo":{"CurrentLayer":150,"TotalLayer":600,"CurrentTicks":300000,"TotalTicks":600000,"Filename":"benchy.goo"}}}}`))
	require.True(t, ok)

	snap := newSnapshot(reply, now)

	assert.Equal(t, "Saturn 3 Ultra", snap.MachineName)
	assert.Equal(t, "V1.4.2", snap.FirmwareVersion)
	assert.Equal(t, "11520x5120", snap.Resolution)
	assert.Equal(t, 1, snap.StatusCode)
	assert.Equal(t, StatusPrinting, snap.Status)
	assert.Equal(t, "benchy.goo", snap.Filename)
	assert.InDelta(t, 25.0, snap.ProgressPercent, 1e-9)
	assert.Equal(t, "25.00%", snap.Percentage)
	assert.Equal(t, "0h 5m 0s", snap.ElapsedTime)
	assert.Equal(t, "0h 5m 0s", snap.RemainingTime)
	assert.Equal(t, "12:05:00 - 09/03/24", snap.EstimatedFinishTime)
	assert.Equal(t, now, snap.CollectedAt)
}

func TestNewSnapshot_FinishedPrintNeverGoesNegative(t *testing.T) {
	reply := defaultStatusReply()
	reply.Data.Status.PrintInfo.CurrentTicks = 700000
	reply.Data.Status.PrintInfo.TotalTicks = 600000

	snap := newSnapshot(reply, time.Now())

	assert.Equal(t, "0h 0m 0s", snap.RemainingTime)
	assert.Equal(t, FinishCompleted, snap.EstimatedFinishTime)
}

func TestNewSnapshot_ClampsNegativeCounters(t *testing.T) {
	reply := defaultStatusReply()
	reply.Data.Status.PrintInfo.CurrentLayer = -3
	reply.Data.Status.PrintInfo.TotalLayer = -10
	reply.Data.Status.PrintInfo.CurrentTicks = -1

	snap := newSnapshot(reply, time.Now())

	assert.Zero(t, snap.CurrentLayer)
	assert.Zero(t, snap.TotalLayers)
	assert.Zero(t, snap.ElapsedTicks)
	assert.Zero(t, snap.ProgressPercent)
}

func TestSnapshotSummaries(t *testing.T) {
	snap := &Snapshot{
		MachineName:         "Saturn 3 Ultra",
		FirmwareVersion:     "V1.4.2",
		Resolution:          "11520x5120",
		Status:              StatusPaused,
		Filename:            "rook.goo",
		CurrentLayer:        10,
		TotalLayers:         40,
		ElapsedTime:         "0h 1m 0s",
		RemainingTime:       "0h 3m 0s",
		Percentage:          "25.00%",
		EstimatedFinishTime: "10:03:00 - 01/02/24",
	}

	assert.Equal(t, PrinterInfo{
		MachineName:     "Saturn 3 Ultra",
		FirmwareVersion: "V1.4.2",
		Resolution:      "11520x5120",
		Status:          StatusPaused,
	}, snap.Info())

	summary := snap.Summary()
	assert.Equal(t, StatusPaused, summary.Status)
	assert.Equal(t, "rook.goo", summary.Progress.Filename)
	assert.Equal(t, 40, summary.Progress.TotalLayers)
	assert.Equal(t, "10:03:00 - 01/02/24", summary.Progress.EstimatedFinishTime)
}

func TestNewSnapshot_OutOfRangeValues(t *testing.T) {
	now := time.Date(2024, 3, 9, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name         string
		current      float64
		total        float64
		currentTicks float64
		totalTicks   float64
		wantCurrent  int
		wantTotal    int
		wantProgress float64
		wantTicks    int64
	}{
		{"layers past total", 700, 600, 0, 600000, 700, 600, 100, 600000},
		{"huge layers", 1e20, 1e20, 0, 0, maxLayer, maxLayer, 100, 0},
		{"huge ticks", 25, 100, 0, 1e16, 25, 100, 25, maxTicks},
		{"ticks past int64", 0, 0, 1e30, 1e30, 0, 0, 0, maxTicks},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := defaultStatusReply()
			reply.Data.Status.PrintInfo.CurrentLayer = tt.current
			reply.Data.Status.PrintInfo.TotalLayer = tt.total
			reply.Data.Status.PrintInfo.CurrentTicks = tt.currentTicks
			reply.Data.Status.PrintInfo.TotalTicks = tt.totalTicks

			snap := newSnapshot(reply, now)

			assert.Equal(t, tt.wantCurrent, snap.CurrentLayer)
			assert.Equal(t, tt.wantTotal, snap.TotalLayers)
			assert.GreaterOrEqual(t, snap.CurrentLayer, 0)
			assert.Equal(t, tt.wantProgress, snap.ProgressPercent)
			assert.LessOrEqual(t, snap.ProgressPercent, 100.0)
			assert.Equal(t, tt.wantTicks, snap.TotalTicks)
			assert.GreaterOrEqual(t, snap.ElapsedTicks, int64(0))

			if snap.TotalTicks > snap.ElapsedTicks {
				want := now.Add(time.Duration(snap.TotalTicks-snap.ElapsedTicks) * time.Millisecond)
				assert.Equal(t, want.Format(finishTimeLayout), snap.EstimatedFinishTime)
				assert.True(t, want.After(now))
			} else {
				assert.Equal(t, FinishCompleted, snap.EstimatedFinishTime)
			}
		})
	}
}
