package cli

import (
	"bytes"
	"database/sql"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite"

	"github.com/danieljhkim/simlist/internal/config"
	"github.com/danieljhkim/simlist/internal/overlap"
)

// runCLI executes a fresh command tree with args and returns what it wrote
// to stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

// writeOverlapDB creates an overlaps table with the given rows.
func writeOverlapDB(t *testing.T, rows []overlap.Record) string {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "tract2visit.db")
	db, err := sql.Open("sqlite", dbPath)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`CREATE TABLE overlaps (id INTEGER PRIMARY KEY, tract INTEGER, patch TEXT, visit INTEGER, detector INTEGER, filter TEXT, layer INTEGER)`)
	require.NoError(t, err)
	for _, r := range rows {
		_, err := db.Exec(`INSERT INTO overlaps (tract, patch, visit, detector, filter, layer) VALUES (?, ?, ?, ?, ?, 0)`,
			r.Tract, r.Patch, r.Visit, r.Detector, r.Filter)
		require.NoError(t, err)
	}
	return dbPath
}

func fixtureRows() []overlap.Record {
	return []overlap.Record{
		{Tract: 3636, Patch: "0,0", Visit: 100, Detector: 0, Filter: "y"},
		{Tract: 3636, Patch: "0,1", Visit: 100, Detector: 0, Filter: "y"},
		{Tract: 3636, Patch: "0,1", Visit: 100, Detector: 1, Filter: "y"},
		{Tract: 3637, Patch: "2,2", Visit: 500000, Detector: 94, Filter: "r"},
		{Tract: 9000, Patch: "5,5", Visit: 7, Detector: 3, Filter: "g"},
	}
}

func TestGenerateCommand_WritesFileList(t *testing.T) {
	dbPath := writeOverlapDB(t, fixtureRows())
	listPath := filepath.Join(t.TempDir(), "simfiles.txt")

	out, err := runCLI(t, "generate", "-o", dbPath, "-P", "/base", "-t", "3636,3637", "-s", listPath)
	require.NoError(t, err)

	assert.Contains(t, out, "Sensor-visits: 3")
	assert.Contains(t, out, "Visits: 2")
	assert.Contains(t, out, "has been written to "+listPath)

	data, err := os.ReadFile(listPath)
	require.NoError(t, err)
	assert.Equal(t,
		"/base/00385844to00445379/00000100/lsst_a_100_R01_S00_y.fits\n"+
			"/base/00385844to00445379/00000100/lsst_a_100_R01_S01_y.fits\n"+
			"/base/00445379to00497969/00500000/lsst_a_500000_R22_S11_r.fits\n",
		string(data))
}

func TestGenerateCommand_JSON(t *testing.T) {
	dbPath := writeOverlapDB(t, fixtureRows())

	out, err := runCLI(t, "generate", "--json", "-o", dbPath, "-P", "/base", "-t", "3636")
	require.NoError(t, err)

	var res generateResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []int{3636}, res.Tracts)
	assert.Equal(t, 2, res.SensorVisits)
	assert.Equal(t, 1, res.Visits)
	assert.Equal(t, []int{2}, res.SensorsPerVisit)
	assert.Nil(t, res.Stats)
}

func TestGenerateCommand_NoMatches(t *testing.T) {
	dbPath := writeOverlapDB(t, fixtureRows())

	out, err := runCLI(t, "generate", "-o", dbPath, "-P", "/base", "-t", "1")
	require.NoError(t, err)
	assert.Contains(t, out, "Visits: 0")
	assert.Contains(t, out, "No sensor-visits overlap")
}

func TestGenerateCommand_Plots(t *testing.T) {
	dbPath := writeOverlapDB(t, fixtureRows())

	out, err := runCLI(t, "generate", "-p", "-o", dbPath, "-P", "/base", "-t", "3636,3637")
	require.NoError(t, err)
	assert.Contains(t, out, "Rows: 5")
	assert.Contains(t, out, "Sensors per Visit (full list)")
	assert.Contains(t, out, "Sensors per Visit (tract selection)")
}

func TestGenerateCommand_MissingDatabase(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "absent.db")

	_, err := runCLI(t, "generate", "-o", missing)
	require.Error(t, err)
	assert.ErrorIs(t, err, overlap.ErrDataSource)
}

func TestGenerateCommand_ConfigFile(t *testing.T) {
	dbPath := writeOverlapDB(t, fixtureRows())
	cfgPath := filepath.Join(t.TempDir(), "simlist.yaml")
	content := "database: " + dbPath + "\nprefix: /from/config\ntracts: [3637]\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	out, err := runCLI(t, "generate", "--json", "--config", cfgPath)
	require.NoError(t, err)

	var res generateResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, []string{"/from/config/00445379to00497969/00500000/lsst_a_500000_R22_S11_r.fits"}, res.Files)
}

func TestGenerateCommand_TractsReplaceDefaults(t *testing.T) {
	dbPath := writeOverlapDB(t, fixtureRows())

	for _, tc := range []struct {
		tracts string
		want   []int
	}{
		{tracts: "3636,3637", want: []int{3636, 3637}},
		{tracts: "1", want: []int{1}},
		{tracts: "3637", want: []int{3637}},
	} {
		out, err := runCLI(t, "generate", "--json", "-o", dbPath, "-P", "/base", "-t", tc.tracts)
		require.NoError(t, err)

		var res generateResult
		require.NoError(t, json.Unmarshal([]byte(out), &res))
		assert.Equal(t, tc.want, res.Tracts, "-t %s", tc.tracts)
	}
}

func TestGenerateCommand_ConfigFileDoesNotCarryOver(t *testing.T) {
	dbPath := writeOverlapDB(t, fixtureRows())
	cfgPath := filepath.Join(t.TempDir(), "simlist.yaml")
	content := "prefix: /from/config\ntracts: [3637]\n"
	require.NoError(t, os.WriteFile(cfgPath, []byte(content), 0644))

	_, err := runCLI(t, "generate", "--json", "--config", cfgPath, "-o", dbPath)
	require.NoError(t, err)

	out, err := runCLI(t, "generate", "--json", "-o", dbPath)
	require.NoError(t, err)

	var res generateResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, config.DefaultTracts, res.Tracts)
	require.Len(t, res.Files, 3)
	assert.True(t, strings.HasPrefix(res.Files[0], config.DefaultPrefix+"/"), res.Files[0])
}

func TestStatsCommand(t *testing.T) {
	dbPath := writeOverlapDB(t, fixtureRows())

	out, err := runCLI(t, "stats", "--json", "-o", dbPath)
	require.NoError(t, err)

	var res statsResult
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.Equal(t, 5, res.Stats.Rows)
	assert.Equal(t, []int{1, 2, 1}, res.Stats.DetectorsPerVisit)
	assert.Equal(t, []int{1, 2, 1, 1}, res.Stats.EntriesPerDetector)
	assert.Equal(t, []int{1, 3, 1}, res.Stats.EntriesPerVisit)
	assert.Equal(t, 2, res.EntriesPerDetector.Max)
}

func TestStatsCommand_Text(t *testing.T) {
	dbPath := writeOverlapDB(t, fixtureRows())

	out, err := runCLI(t, "stats", "-p", "-o", dbPath)
	require.NoError(t, err)
	assert.Contains(t, out, "Sensors per visit: n=3 min=1 max=2")
	assert.Contains(t, out, "Sensors per Visit (full list)")
}

func TestDetectorCommand(t *testing.T) {
	tests := []struct {
		arg  string
		want string
	}{
		{arg: "0", want: "0\tR01_S00\n"},
		{arg: "94", want: "94\tR22_S11\n"},
		{arg: "R14_S00", want: "63\tR14_S00\n"},
		{arg: "R43_S22", want: "188\tR43_S22\n"},
	}

	for _, tt := range tests {
		t.Run(tt.arg, func(t *testing.T) {
			out, err := runCLI(t, "detector", tt.arg)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestDetectorCommand_Errors(t *testing.T) {
	for _, arg := range []string{"190", "R00_S00", "R22_S33", "nonsense"} {
		_, err := runCLI(t, "detector", arg)
		assert.Error(t, err, arg)
	}

	_, err := runCLI(t, "detector")
	assert.Error(t, err, "missing argument")
}

func TestCommandHelp(t *testing.T) {
	for _, name := range []string{"generate", "stats", "detector"} {
		t.Run(name, func(t *testing.T) {
			out, err := runCLI(t, name, "--help")
			require.NoError(t, err)
			assert.NotEmpty(t, out)
		})
	}
}
