package loader

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"

	"github.com/yunsj111/wedding-rainfall-analysis/internal/config"
	"github.com/yunsj111/wedding-rainfall-analysis/internal/domain"
	"github.com/yunsj111/wedding-rainfall-analysis/internal/observability"
)

const kmaHeader = "지점,지점명,일시,강수량(mm)\n"

func testConfig(dataDir string) *config.Config {
	return &config.Config{
		DataDir:       dataDir,
		FilePattern:   "rain_%d.csv",
		DataEncoding:  "euc-kr",
		StationColumn: "지점명",
		TimeColumn:    "일시",
		RainColumn:    "강수량(mm)",
	}
}

func newTestLoader(t *testing.T, dataDir string) *Loader {
	t.Helper()
	return New(testConfig(dataDir), slog.Default(), observability.NewMetricsForTesting())
}

// writeEUCKR writes a KMA-style fixture file for one year, encoded the way
// the real archive exports are.
func writeEUCKR(t *testing.T, dir string, year int, rows string) {
	t.Helper()

	path := filepath.Join(dir, fmt.Sprintf("rain_%d.csv", year))
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := transform.NewWriter(f, korean.EUCKR.NewEncoder())
	_, err = w.Write([]byte(kmaHeader + rows))
	require.NoError(t, err)
	require.NoError(t, w.Close())
}

func TestLoadYears(t *testing.T) {
	t.Run("loads and concatenates per-year files", func(t *testing.T) {
		dir := t.TempDir()
		writeEUCKR(t, dir, 2023, "108,서울,2023-05-26 12:00,2.0\n159,부산,2023-05-26 12:00,\n")
		writeEUCKR(t, dir, 2024, "108,서울,2024-05-26 13:00,5.5\n")

		rs, err := newTestLoader(t, dir).LoadYears(context.Background(), []int{2023, 2024})
		require.NoError(t, err)

		assert.Equal(t, []int{2023, 2024}, rs.Years)
		require.Len(t, rs.Records, 3)
		assert.Equal(t, domain.Record{
			Location: "서울",
			Time:     time.Date(2023, 5, 26, 12, 0, 0, 0, time.UTC),
			Rainfall: 2.0,
		}, rs.Records[0])
		// Empty precipitation field reads as 0, not as missing data.
		assert.Equal(t, 0.0, rs.Records[1].Rainfall)
		assert.Equal(t, "부산", rs.Records[1].Location)
	})

	t.Run("missing year is skipped, not fatal", func(t *testing.T) {
		dir := t.TempDir()
		writeEUCKR(t, dir, 2023, "108,서울,2023-05-26 12:00,1.0\n")

		rs, err := newTestLoader(t, dir).LoadYears(context.Background(), []int{2022, 2023, 2024})
		require.NoError(t, err)

		assert.Equal(t, []int{2023}, rs.Years)
		assert.Len(t, rs.Records, 1)
	})

	t.Run("all years missing is fatal", func(t *testing.T) {
		rs, err := newTestLoader(t, t.TempDir()).LoadYears(context.Background(), []int{2022, 2023})

		require.ErrorIs(t, err, domain.ErrNoData)
		assert.Empty(t, rs.Records)
		assert.Empty(t, rs.Years)
	})

	t.Run("malformed rows are skipped", func(t *testing.T) {
		dir := t.TempDir()
		writeEUCKR(t, dir, 2023,
			"108,서울,2023-05-26 12:00,2.0\n"+
				"108,서울,not-a-time,1.0\n"+
				"108,서울,2023-05-26 14:00,abc\n"+
				"108,서울,2023-05-26 15:00,-3.0\n"+
				"108,,2023-05-26 16:00,1.0\n"+
				"108,서울,2023-05-26 17:00,4.0\n")

		rs, err := newTestLoader(t, dir).LoadYears(context.Background(), []int{2023})
		require.NoError(t, err)

		require.Len(t, rs.Records, 2)
		assert.Equal(t, 2.0, rs.Records[0].Rainfall)
		assert.Equal(t, 4.0, rs.Records[1].Rainfall)
	})

	t.Run("timestamps with seconds are accepted", func(t *testing.T) {
		dir := t.TempDir()
		writeEUCKR(t, dir, 2023, "108,서울,2023-05-26 12:00:00,2.0\n")

		rs, err := newTestLoader(t, dir).LoadYears(context.Background(), []int{2023})
		require.NoError(t, err)

		require.Len(t, rs.Records, 1)
		assert.Equal(t, time.Date(2023, 5, 26, 12, 0, 0, 0, time.UTC), rs.Records[0].Time)
	})

	t.Run("file with wrong header fails that year", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "rain_2023.csv")
		require.NoError(t, os.WriteFile(path, []byte("station,when,how_much\nX,2023-05-26 12:00,1.0\n"), 0o644))

		_, err := newTestLoader(t, dir).LoadYears(context.Background(), []int{2023})
		require.ErrorIs(t, err, domain.ErrNoData)
	})

	t.Run("utf-8 sources read without transcoding", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "rain_2023.csv")
		require.NoError(t, os.WriteFile(path, []byte(kmaHeader+"108,서울,2023-05-26 12:00,1.5\n"), 0o644))

		cfg := testConfig(dir)
		cfg.DataEncoding = "utf-8"
		l := New(cfg, slog.Default(), observability.NewMetricsForTesting())

		rs, err := l.LoadYears(context.Background(), []int{2023})
		require.NoError(t, err)
		require.Len(t, rs.Records, 1)
		assert.Equal(t, "서울", rs.Records[0].Location)
	})

	t.Run("cancelled context aborts", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		_, err := newTestLoader(t, t.TempDir()).LoadYears(ctx, []int{2023})
		require.ErrorIs(t, err, context.Canceled)
	})
}
