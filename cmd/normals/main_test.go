package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/couchcryptid/climate-normals-etl/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const fixturePath = "../../internal/normals/testdata/USC00018809.normals.txt"

func execute(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestParseCommand_FullReport(t *testing.T) {
	out, err := execute(t, "", "parse", fixturePath)
	require.NoError(t, err)

	var report domain.StationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "USC00018809", report.ID)
	assert.Equal(t, "TUSKEGEE", report.Name)
	assert.Equal(t, "USC00018809.normals.txt", report.Source)
	assert.Contains(t, report.Normals, "Temperature-Related")
	assert.Contains(t, report.Normals, "Precipitation-Related")
}

func TestParseCommand_SelectSeries(t *testing.T) {
	out, err := execute(t, "", "parse", fixturePath,
		"--category", "Temperature-Related", "--frequency", "Monthly", "--variable", "mly-tmax-normal", "--compact")
	require.NoError(t, err)
	assert.Equal(t, "[652,691,758,843,936,1023,1038,1013,971,862,730,632]\n", out)
}

func TestParseCommand_SelectFrequency(t *testing.T) {
	out, err := execute(t, "", "parse", fixturePath,
		"--category", "Temperature-Related", "--frequency", "Daily")
	require.NoError(t, err)

	var vars map[string][][]int
	require.NoError(t, json.Unmarshal([]byte(out), &vars))
	require.Contains(t, vars, "dly-tmax-normal")
	assert.Len(t, vars["dly-tmax-normal"], 12)
	assert.Equal(t, 698, vars["dly-tmax-normal"][1][27])
}

func TestParseCommand_Stdin(t *testing.T) {
	data, err := os.ReadFile(fixturePath)
	require.NoError(t, err)

	out, err := execute(t, string(data), "parse", "-", "--compact")
	require.NoError(t, err)

	var report domain.StationReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "USC00018809", report.ID, "id falls back to metadata")
	assert.Empty(t, report.Source)
}

func TestParseCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no files", []string{"parse"}, "requires at least 1 arg"},
		{"missing file", []string{"parse", "nope.normals.txt"}, "read report"},
		{"unknown category", []string{"parse", fixturePath, "--category", "Wind-Related"}, "no category"},
		{"variable without frequency", []string{"parse", fixturePath, "--category", "Temperature-Related", "--variable", "x"}, "--variable requires --frequency"},
		{"frequency without category", []string{"parse", fixturePath, "--frequency", "Monthly"}, "require --category"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, "", tt.args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestParseCommand_MalformedReport(t *testing.T) {
	path := filepath.Join(t.TempDir(), "USC00000001.normals.txt")
	require.NoError(t, os.WriteFile(path, []byte("Monthly\n"), 0o600))

	_, err := execute(t, "", "parse", path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 1")
}

func TestFetchCommand(t *testing.T) {
	data, err := os.ReadFile(fixturePath)
	require.NoError(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/USC00018809.normals.txt" {
			http.NotFound(w, r)
			return
		}
		w.Write(data) //nolint:errcheck // test server
	}))
	defer srv.Close()

	out, err := execute(t, "", "fetch", "--base-url", srv.URL, "usc00018809",
		"--category", "Precipitation-Related", "--frequency", "Monthly", "--compact")
	require.NoError(t, err)
	assert.Contains(t, out, "mly-prcp-normal")

	_, err = execute(t, "", "fetch", "--base-url", srv.URL, "USW00094728")
	require.ErrorIs(t, err, domain.ErrStationNotFound)

	_, err = execute(t, "", "fetch", "--base-url", srv.URL, "not-an-id")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid station id")
}

func TestArchiveAndShow(t *testing.T) {
	db := filepath.Join(t.TempDir(), "normals.db")

	_, err := execute(t, "", "parse", "--archive", db, fixturePath)
	require.NoError(t, err)

	out, err := execute(t, "", "show", "--archive", db, "USC00018809",
		"--category", "Temperature-Related", "--frequency", "Monthly", "--variable", "mly-tmin-normal", "--compact")
	require.NoError(t, err)
	assert.Equal(t, "[401,426,468,527,620,703,771,763,707,584,468,392]\n", out)

	_, err = execute(t, "", "show", "--archive", db, "USW00094728")
	require.ErrorIs(t, err, domain.ErrStationNotFound)

	_, err = execute(t, "", "show", "USC00018809")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires --archive")
}
