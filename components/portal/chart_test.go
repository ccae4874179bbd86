package portal

import (
	"context"
	"errors"
	"testing"

	"github.com/go-echarts/go-echarts/v2/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateData(values ...float64) ChartData {
	return ChartData{
		Labels:   []string{"Brouillon", "Soumise", "Approuvée", "Rejetée", "Annulée"}[:len(values)],
		Datasets: []Dataset{{Data: values}},
	}
}

func TestOptionsForPieLike(t *testing.T) {
	for _, chartType := range []string{"pie", "doughnut", "Doughnut"} {
		opts := OptionsFor(chartType)
		assert.True(t, opts.Responsive)
		assert.False(t, opts.MaintainAspectRatio)
		assert.True(t, opts.Legend.Display, chartType)
		assert.Equal(t, "bottom", opts.Legend.Position)
		assert.Empty(t, opts.Scales, chartType)
	}
}

func TestOptionsForAxisCharts(t *testing.T) {
	for _, chartType := range []string{"bar", "line"} {
		opts := OptionsFor(chartType)
		assert.True(t, opts.Responsive)
		assert.False(t, opts.MaintainAspectRatio)
		assert.False(t, opts.Legend.Display, chartType)
		require.Contains(t, opts.Scales, "y")
		assert.True(t, opts.Scales["y"].BeginAtZero)
		assert.Equal(t, 0, opts.Scales["y"].Precision)
	}
}

func TestDashboardChartKeepsSingleInstance(t *testing.T) {
	engine := NewEChartsEngine(WithChartCache(nil))
	chart := NewDashboardChart(engine, ChartProps{Title: "Demandes par état", Type: ChartDoughnut, Data: stateData(1, 2, 3, 0, 0)})
	ctx := context.Background()

	require.NoError(t, chart.Mount(ctx))
	first := chart.Instance()
	require.NotNil(t, first)
	assert.Equal(t, 1, engine.Live())

	require.NoError(t, chart.SetData(ctx, stateData(2, 2, 3, 0, 0)))
	second := chart.Instance()
	require.NotNil(t, second)
	assert.NotEqual(t, first.ID(), second.ID())
	assert.True(t, first.(*EChartsInstance).Destroyed())
	assert.Equal(t, 1, engine.Live())

	require.NoError(t, chart.SetData(ctx, stateData(3, 2, 3, 0, 0)))
	assert.Equal(t, 1, engine.Live())

	require.NoError(t, chart.Unmount())
	assert.Nil(t, chart.Instance())
	assert.Equal(t, 0, engine.Live())
	require.NoError(t, chart.Unmount())
	assert.Equal(t, 0, engine.Live())
}

func TestDashboardChartEqualDataIsNoop(t *testing.T) {
	engine := NewEChartsEngine(WithChartCache(nil))
	chart := NewDashboardChart(engine, ChartProps{Type: ChartBar, Data: stateData(1, 2)})
	require.NoError(t, chart.Mount(context.Background()))
	id := chart.Instance().ID()

	require.NoError(t, chart.SetData(context.Background(), stateData(1, 2)))
	assert.Equal(t, id, chart.Instance().ID())
}

func TestDashboardChartSetDataBeforeMount(t *testing.T) {
	engine := NewEChartsEngine(WithChartCache(nil))
	chart := NewDashboardChart(engine, ChartProps{Type: ChartLine})
	require.NoError(t, chart.SetData(context.Background(), stateData(4, 5)))
	assert.Nil(t, chart.Instance())
	assert.Equal(t, 0, engine.Live())

	require.NoError(t, chart.Mount(context.Background()))
	assert.Equal(t, stateData(4, 5), chart.Props().Data)
	assert.Equal(t, 1, engine.Live())
}

func TestDashboardChartRejectsUnknownType(t *testing.T) {
	engine := NewEChartsEngine(WithChartCache(nil))
	chart := NewDashboardChart(engine, ChartProps{Type: "radar", Data: stateData(1)})
	err := chart.Mount(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrUnsupportedChart)
	assert.Nil(t, chart.Instance())
	assert.Equal(t, 0, engine.Live())
}

func TestDashboardChartRequiresEngine(t *testing.T) {
	err := NewDashboardChart(nil, ChartProps{Type: ChartPie}).Mount(context.Background())
	assert.ErrorIs(t, err, errMissingEngine)
}

func TestDashboardChartWaitsForBundle(t *testing.T) {
	loader := NewBundleLoader(BundleFetcherFunc(func(context.Context, string) error {
		return errors.New("offline")
	}))
	engine := NewEChartsEngine(WithChartCache(nil))
	chart := NewDashboardChart(engine, ChartProps{Type: ChartPie, Data: stateData(1)}, WithChartBundles(loader))
	require.Error(t, chart.Mount(context.Background()))
	assert.Nil(t, chart.Instance())
}

func TestEChartsEngineRendersMarkup(t *testing.T) {
	engine := NewEChartsEngine(WithChartCache(nil))
	inst, err := engine.NewChart(context.Background(), ChartConfig{
		ElementID: "isic_test_chart",
		Title:     "Demandes par état",
		Type:      ChartDoughnut,
		Data:      stateData(1, 2, 3),
		Options:   OptionsFor(ChartDoughnut),
	})
	require.NoError(t, err)
	chart := inst.(*EChartsInstance)
	assert.Equal(t, "isic_test_chart", chart.ElementID())
	assert.Equal(t, ChartDoughnut, chart.Type())

	markup := chart.HTML()
	assert.Contains(t, markup, "echarts")
	assert.Contains(t, markup, `id="isic_test_chart"`)
	assert.Contains(t, markup, "40%")

	require.NoError(t, chart.Destroy())
	assert.Empty(t, chart.HTML())
}

func TestEChartsEngineAxisPolicy(t *testing.T) {
	engine := NewEChartsEngine(WithChartCache(nil))
	markup, _, err := engine.Render(ChartConfig{Type: ChartBar, Data: stateData(1, 2)})
	require.NoError(t, err)
	assert.Contains(t, markup, `"minInterval":1`)
	assert.Contains(t, markup, types.ThemeWesteros)
}

func TestEChartsEngineUsesCache(t *testing.T) {
	cache := NewChartCache(0)
	counting := &countingCache{inner: cache}
	engine := NewEChartsEngine(WithChartCache(counting))
	cfg := ChartConfig{Title: "Cached", Type: ChartLine, Data: stateData(1, 2)}
	_, id1, err := engine.Render(cfg)
	require.NoError(t, err)
	_, id2, err := engine.Render(cfg)
	require.NoError(t, err)
	assert.Equal(t, id1, id2, "element ids derive from the config")
	assert.Equal(t, 2, counting.calls)
}

type countingCache struct {
	inner RenderCache
	calls int
}

func (c *countingCache) GetOrRender(key string, render func() (string, error)) (string, error) {
	c.calls++
	return c.inner.GetOrRender(key, render)
}
