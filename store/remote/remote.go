// Package remote implements a store.Store backed by an HTTP service where each
// address is a "cell" resource holding raw bytes.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/calvinmclean/babyapi"

	"github.com/calvinmclean/spin360/store"
)

const defaultTimeout = 5 * time.Second

type cell struct {
	// include NilResource so we don't implement Render/Bind which are not needed
	*babyapi.NilResource
	Address store.Address `json:"address"`
	Data    []byte        `json:"data"`
}

func (c cell) GetID() string {
	return strconv.Itoa(int(c.Address))
}

// Store reads and writes cells on a remote service
type Store struct {
	client  *babyapi.Client[*cell]
	timeout time.Duration
}

var _ store.Store = (*Store)(nil)

// New creates a Store for the service at addr. A zero timeout uses a default.
func New(addr string, timeout time.Duration) *Store {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Store{
		client:  babyapi.NewClient[*cell](addr, "/cells"),
		timeout: timeout,
	}
}

// Put implements store.Store
func (s *Store) Put(addr store.Address, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	body, err := json.Marshal(cell{Address: addr, Data: data})
	if err != nil {
		return fmt.Errorf("error encoding body: %w", err)
	}

	url, err := s.client.URL(cell{Address: addr}.GetID())
	if err != nil {
		return fmt.Errorf("error creating url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}
	req.Header.Add("Content-Type", "application/json")

	resp, err := s.client.MakeGenericRequest(req, nil)
	if err != nil {
		return fmt.Errorf("error making request: %w", err)
	}

	switch resp.Response.StatusCode {
	case http.StatusOK, http.StatusCreated, http.StatusNoContent:
		return nil
	default:
		return fmt.Errorf("unexpected status code: %d, response: %v", resp.Response.StatusCode, resp.Body)
	}
}

// Get implements store.Store. A cell that was never written reads as erased.
func (s *Store) Get(addr store.Address, data []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	req, err := s.client.GetRequest(ctx, cell{Address: addr}.GetID())
	if err != nil {
		return fmt.Errorf("error creating request: %w", err)
	}

	resp, err := s.client.MakeGenericRequest(req, nil)
	if err != nil {
		return fmt.Errorf("error getting cell %s: %w", addr, err)
	}

	switch resp.Response.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		for i := range data {
			data[i] = store.Erased
		}
		return nil
	default:
		return fmt.Errorf("unexpected status code getting cell %s: %d, response: %v", addr, resp.Response.StatusCode, resp.Body)
	}

	var c cell
	err = json.Unmarshal([]byte(resp.Body), &c)
	if err != nil {
		return fmt.Errorf("error decoding cell %s: %w", addr, err)
	}

	if len(c.Data) < len(data) {
		return fmt.Errorf("%w: cell %s holds fewer than %d bytes", store.ErrOutOfBounds, addr, len(data))
	}

	copy(data, c.Data)
	return nil
}
