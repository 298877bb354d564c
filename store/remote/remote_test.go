package remote

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/calvinmclean/spin360/param"
	"github.com/calvinmclean/spin360/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// cellServer is a minimal in-memory cell service
type cellServer struct {
	mu    sync.Mutex
	cells map[string][]byte
	puts  int
}

func (cs *cellServer) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, ok := strings.CutPrefix(r.URL.Path, "/cells/")
	if !ok {
		http.NotFound(w, r)
		return
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	switch r.Method {
	case http.MethodPut:
		var c struct {
			Address int    `json:"address"`
			Data    []byte `json:"data"`
		}
		if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		cs.cells[id] = c.Data
		cs.puts++
		w.WriteHeader(http.StatusNoContent)
	case http.MethodGet:
		data, ok := cs.cells[id]
		if !ok {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte(`{"status":"Resource not found."}`))
			return
		}
		addr, _ := strconv.Atoi(id)
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{"address": addr, "data": data})
	default:
		w.WriteHeader(http.StatusMethodNotAllowed)
	}
}

func newServer(t *testing.T) (*cellServer, *Store) {
	t.Helper()
	cs := &cellServer{cells: map[string][]byte{}}
	srv := httptest.NewServer(cs)
	t.Cleanup(srv.Close)
	return cs, New(srv.URL, 0)
}

func TestRoundTrip(t *testing.T) {
	cs, s := newServer(t)

	require.NoError(t, s.Put(4, []byte{0x2A, 0x00}))
	assert.Equal(t, []byte{0x2A, 0x00}, cs.cells["4"])
	assert.Equal(t, 1, cs.puts)

	buf := make([]byte, 2)
	require.NoError(t, s.Get(4, buf))
	assert.Equal(t, []byte{0x2A, 0x00}, buf)
}

func TestGetMissingReadsErased(t *testing.T) {
	_, s := newServer(t)

	buf := []byte{0x01, 0x02}
	require.NoError(t, s.Get(8, buf))
	assert.Equal(t, []byte{store.Erased, store.Erased}, buf)
}

func TestGetServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	err := New(srv.URL, 0).Get(0, make([]byte, 2))
	assert.ErrorContains(t, err, "500")
}

func TestLoadNeverWrittenClampsToMin(t *testing.T) {
	_, s := newServer(t)

	p := param.MustNew(24, 1, 360, param.WithDescriptor("Pictures"), param.WithAddress(0))
	v, err := p.Load(s)
	require.NoError(t, err)
	assert.Equal(t, int16(1), v)
}

func TestGetShortCell(t *testing.T) {
	cs, s := newServer(t)
	cs.cells["2"] = []byte{0x01}

	err := s.Get(2, make([]byte, 2))
	assert.ErrorIs(t, err, store.ErrOutOfBounds)
}

func TestParamPersistence(t *testing.T) {
	_, s := newServer(t)

	p := param.MustNew(24, 1, 360, param.WithDescriptor("Pictures"), param.WithAddress(0))
	p.Add(12)
	require.NoError(t, p.Persist(s))

	fresh := param.MustNew(1, 1, 360, param.WithDescriptor("Pictures"), param.WithAddress(0))
	v, err := fresh.Load(s)
	require.NoError(t, err)
	assert.Equal(t, int16(36), v)
}
