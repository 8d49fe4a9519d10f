package internal

import (
	"bank-lab/repositories"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dgraph-io/badger/v4"
	"github.com/mama165/sdk-go/logs"
	"github.com/stretchr/testify/require"
)

func TestInspector_Lists_Keys_Under_Prefix(t *testing.T) {
	req := require.New(t)
	db, err := badger.Open(badger.DefaultOptions(t.TempDir()).WithLoggingLevel(badger.ERROR))
	req.NoError(err)
	defer db.Close()

	_, err = repositories.NewUserRepository(db).CreateUser("alice@example.com", "alice", "hash")
	req.NoError(err)

	app := NewInspector(logs.GetLoggerFromLevel(slog.LevelDebug), db, "/inspect",
		func() map[string]any { return map[string]any{"mode": "test"} })
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/inspect?prefix=user_name:", nil), -1)
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)

	data, err := io.ReadAll(resp.Body)
	req.NoError(err)
	var body struct {
		Count int                       `json:"count"`
		Items []repositories.InspectRow `json:"items"`
		Stats map[string]any            `json:"stats"`
	}
	req.NoError(json.Unmarshal(data, &body))
	req.Equal(1, body.Count)
	req.Equal("user_name:alice", body.Items[0].Key)
	req.Equal("test", body.Stats["mode"])
}
