package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"path/filepath"
	"testing"

	"github.com/gorgonia/menace/server"
	"github.com/gorgonia/menace/table"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	tbl := filepath.Join(t.TempDir(), "t.gmf")
	ctx, cancel := context.WithCancel(context.Background())
	ready := make(chan string, 1)
	done := make(chan error, 1)
	go func() {
		done <- run(ctx, []string{"-table", tbl, "-addr", "127.0.0.1:0", "-loglevel", "warn"}, io.Discard, ready)
	}()
	addr := <-ready

	resp, err := http.Post("http://"+addr+"/tictactoe/moveAndLearn?userFigure=x&userMoveRow=1&userMoveCol=1&gameId=a", "application/json", nil)
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusBadRequest, resp.StatusCode, "an empty body is not a game state")

	resp, err = http.Get("http://" + addr + "/tictactoe/newGameState")
	require.NoError(t, err)
	defer resp.Body.Close()
	var info server.GameInfo
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	assert.NotEmpty(t, info.GameID)

	cancel()
	require.NoError(t, <-done)
	_, err = table.ReadFile(tbl)
	assert.NoError(t, err, "the table is saved on shutdown")
}

func TestRunRejectsFlags(t *testing.T) {
	ctx := context.Background()
	assert.Error(t, run(ctx, []string{"-tiebreak", "last"}, io.Discard, nil))
	assert.Error(t, run(ctx, []string{"-addr", "not an address"}, io.Discard, nil))
}
