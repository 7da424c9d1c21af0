package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/floorwarden/warden/internal/models"
	"github.com/floorwarden/warden/internal/state"
)

func Test_commandLine_local(t *testing.T) {
	dir := t.TempDir()
	var out bytes.Buffer
	cli := &commandLine{out: &out}
	run := func(args ...string) error {
		out.Reset()
		return cli.run(append([]string{"wardenctl", "local", "-dir", dir}, args...))
	}

	assert.ErrorIs(t, run(), errHelp)
	assert.ErrorIs(t, run("add-student", "-name", "Aziz"), errHelp)

	require.NoError(t, run("add-student", "-name", "Aziz", "-room", "101"))
	assert.Contains(t, out.String(), "Aziz (room 101)")
	require.NoError(t, run("add-student", "-name", "Bekzod", "-room", "102"))

	// everything so far is on disk
	book := state.NewStore(state.FileStorage{Dir: dir}, true).State()
	require.Len(t, book.Students, 2)
	aziz := book.Students[0].ID

	require.NoError(t, run("collect", "-title", "Internet", "-amount", "20000"))
	assert.Contains(t, out.String(), "2 payments")
	book = state.NewStore(state.FileStorage{Dir: dir}, true).State()
	require.Len(t, book.Collections, 1)

	require.NoError(t, run("pay", "-collection", short(book.Collections[0].ID), "-student", short(aziz)))
	assert.Contains(t, out.String(), "1 payments updated")
	require.NoError(t, run("pay", "-collection", short(book.Collections[0].ID), "-student", short(aziz)))
	assert.Contains(t, out.String(), "0 payments updated")

	require.NoError(t, run("mark", "-student", short(aziz), "-status", "in"))
	require.NoError(t, run("mark", "-student", short(aziz), "-status", "hozir"))

	require.NoError(t, run("stats"))
	assert.Contains(t, out.String(), "Active students: 2")
	assert.Contains(t, out.String(), "Today present: 50%")
	assert.Contains(t, out.String(), "Collected: 50% (20000 / 40000)")

	book = state.NewStore(state.FileStorage{Dir: dir}, true).State()
	require.Len(t, book.Attendance, 1, "a second mark on the same day updates the record")
	assert.Equal(t, models.Present, book.Attendance[0].Status)

	require.NoError(t, run("students", "-q", "bek"))
	assert.Contains(t, out.String(), "Bekzod")
	assert.NotContains(t, out.String(), "Aziz")

	require.NoError(t, run("remove", "-student", short(aziz)))
	require.NoError(t, run("students"))
	assert.NotContains(t, out.String(), "Aziz")
	assert.Error(t, run("remove", "-student", "zzzz"))
}

func TestResolveID(t *testing.T) {
	ids := []string{"ab12", "ab34", "cd56"}

	id, err := resolveID("cd", ids)
	require.NoError(t, err)
	assert.Equal(t, "cd56", id)

	_, err = resolveID("ab", ids)
	assert.ErrorContains(t, err, "ambiguous")
	_, err = resolveID("ef", ids)
	assert.ErrorContains(t, err, "no record")

	got, err := resolveIDs("ab1, cd", ids)
	require.NoError(t, err)
	assert.Equal(t, []string{"ab12", "cd56"}, got)
}
