package main

import (
	"bytes"
	"net/http/httptest"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorwarden/warden/internal/cache"
	"github.com/floorwarden/warden/internal/client"
	"github.com/floorwarden/warden/internal/db"
	"github.com/floorwarden/warden/internal/services"
	"github.com/floorwarden/warden/internal/web"
)

func setup(t *testing.T) (*commandLine, *bytes.Buffer) {
	require.NoError(t, db.Init(filepath.Join(t.TempDir(), "cli.db")))
	t.Cleanup(func() {
		if sqlDB, err := db.Conn().DB(); err == nil {
			_ = sqlDB.Close()
		}
	})
	services.SetCache(cache.NewMemory())
	require.NoError(t, services.EnsureAdmin("admin", "admin123"))
	srv := httptest.NewServer(web.Router())
	t.Cleanup(srv.Close)

	api, err := client.New(srv.URL, client.FileSession{Path: filepath.Join(t.TempDir(), "session.json")})
	require.NoError(t, err)
	var out bytes.Buffer
	return &commandLine{api: api, out: &out}, &out
}

func withPassword(t *testing.T, pwd string) {
	orig := readPasswordFunc
	readPasswordFunc = func(int) ([]byte, error) { return []byte(pwd), nil }
	t.Cleanup(func() { readPasswordFunc = orig })
}

type cliTest struct {
	name    string
	args    []string // without program name
	wantErr error
	wantOut string
}

func Test_commandLine_run(t *testing.T) {
	cli, out := setup(t)
	withPassword(t, "admin123")

	tests := []cliTest{
		{name: "no command", args: nil, wantErr: errHelp},
		{name: "unknown", args: []string{"frobnicate"}, wantErr: errHelp},
		{name: "login needs username", args: []string{"login"}, wantErr: errHelp},
		{name: "login", args: []string{"login", "-username", "admin"}, wantOut: "Signed in as admin (leader)"},
		{name: "add needs room", args: []string{"add-student", "-name", "Aziz"}, wantErr: errHelp},
		{name: "add", args: []string{"add-student", "-name", "Aziz", "-room", "101"}, wantOut: "Added #1 Aziz (room 101)"},
		{name: "add second", args: []string{"add-student", "-name", "Bekzod", "-room", "102"}, wantOut: "Added #2"},
		{name: "students", args: []string{"students", "-q", "bek"}, wantOut: "Bekzod"},
		{name: "collect", args: []string{"collect", "-title", "Internet", "-amount", "20000"}, wantOut: "Collection #1 created, 2 payments"},
		{name: "pay bad ids", args: []string{"pay", "-collection", "1", "-student", "x"}, wantErr: errHelp},
		{name: "pay", args: []string{"pay", "-collection", "1", "-student", "1,2"}, wantOut: "2 payments updated"},
		{name: "dues", args: []string{"dues"}, wantOut: "2/2"},
		{name: "rollcall", args: []string{"rollcall"}, wantOut: "Session #1"},
		{name: "mark late", args: []string{"mark", "-session", "1", "-student", "1", "-status", "Kech"}, wantOut: "1 records updated"},
		{name: "stats", args: []string{"stats"}, wantOut: "Today present: 50%"},
		{name: "announce", args: []string{"announce", "-title", "Water off"}, wantOut: "Announcement #1 posted"},
		{name: "logout", args: []string{"logout"}, wantOut: "Signed out"},
		{name: "after logout", args: []string{"students"}, wantErr: client.ErrSessionExpired},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out.Reset()
			err := cli.run(append([]string{"wardenctl"}, tt.args...))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out.String(), tt.wantOut)
		})
	}
}

func TestParseIDs(t *testing.T) {
	ids, err := parseIDs(" 3, 4 ,,5")
	require.NoError(t, err)
	assert.Equal(t, []uint{3, 4, 5}, ids)

	_, err = parseIDs("3,0")
	assert.Error(t, err)
}
