package controller

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/calvinmclean/spin360"
	"github.com/calvinmclean/spin360/catalog"
	"github.com/calvinmclean/spin360/config"
	"github.com/calvinmclean/spin360/firmware/commands"
	"github.com/calvinmclean/spin360/param"
	"github.com/calvinmclean/spin360/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pipeDevice runs the firmware command loop on one end of a net.Pipe
type pipeDevice struct {
	conn   net.Conn
	params *param.Set
	store  *store.Memory
	state  spin360.ProgramState
}

var _ commands.Controller = (*pipeDevice)(nil)

func (d *pipeDevice) Param(i int) *param.Param { return d.params.At(i) }
func (d *pipeDevice) PersistAll() error        { return d.params.PersistAll(d.store) }
func (d *pipeDevice) LoadAll() error           { return d.params.LoadAll(d.store) }
func (d *pipeDevice) SetState(ps spin360.ProgramState) {
	d.state = ps
}
func (d *pipeDevice) Debug()   { d.Print("state=" + d.state.String()) }
func (d *pipeDevice) Verbose() {}

func (d *pipeDevice) Print(s string) {
	d.conn.Write([]byte(s + "\r\n"))
}

func (d *pipeDevice) ReadByte() (byte, error) {
	b := make([]byte, 1)
	_, err := d.conn.Read(b)
	return b[0], err
}

func (d *pipeDevice) WriteByte(b byte) error {
	_, err := d.conn.Write([]byte{b})
	return err
}

func newPipe(t *testing.T) (*Controller, *pipeDevice) {
	t.Helper()

	params, err := catalog.Default().Build()
	require.NoError(t, err)

	host, dev := net.Pipe()
	d := &pipeDevice{conn: dev, params: params, store: store.NewMemory(32)}
	go func() {
		commands.Run(d)
		dev.Close()
	}()

	c := New(host, nil)
	t.Cleanup(func() { c.Close() })
	return c, d
}

func TestExec(t *testing.T) {
	c, d := newPipe(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		command  string
		expected string
		err      string
	}{
		{"Get", "G0", "Pictures=24 [1, 360]", ""},
		{"Increment", "+1", "Speed=51 [1, 100]", ""},
		{"AddSaturates", "A1+9", "Speed=60 [1, 100]", ""},
		{"Decrement", "-2", "Delay=499 [0, 10000]", ""},
		{"SetState", "MP", "", ""},
		{"Debug", "D", "state=GettingPics", ""},
		{"Persist", "W", "", ""},
		{"UnknownParam", "G9", "", "unknown param: 9"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := c.Exec(ctx, tt.command)
			if tt.err != "" {
				assert.EqualError(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.expected, resp)
		})
	}

	buf := make([]byte, 2)
	require.NoError(t, d.store.Get(2, buf))
	assert.Equal(t, []byte{60, 0}, buf)
}

func TestExecTimeout(t *testing.T) {
	c, _ := newPipe(t)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	// unknown flags get no response
	_, err := c.Exec(ctx, "q")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	for i, expected := range []string{"Pictures=24 [1, 360]", "Speed=50 [1, 100]", "Delay=500 [0, 10000]"} {
		ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
		resp, err := c.Exec(ctx, fmt.Sprintf("G%d", i))
		cancel()
		require.NoError(t, err)
		assert.Equal(t, expected, resp)
	}
}

func TestExecDropsLateResponse(t *testing.T) {
	host, dev := net.Pipe()
	c := New(host, nil)
	t.Cleanup(func() { c.Close() })

	release := make(chan struct{})
	go func() {
		defer dev.Close()
		b := make([]byte, 1)

		dev.Read(b)
		<-release
		dev.Write([]byte("late\x04"))

		dev.Read(b)
		dev.Write([]byte("fresh\x04"))
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err := c.Exec(ctx, "a")
	require.ErrorIs(t, err, context.DeadlineExceeded)

	close(release)
	require.Eventually(t, func() bool {
		return len(c.frames) == 1
	}, time.Second, 5*time.Millisecond)

	resp, err := c.Exec(context.Background(), "b")
	require.NoError(t, err)
	assert.Equal(t, "fresh", resp)
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestRun(t *testing.T) {
	c, _ := newPipe(t)

	var out syncBuffer
	err := c.Run(context.Background(), strings.NewReader("G0\n+0\n"), &out)
	require.NoError(t, err)

	expected := "Pictures=24 [1, 360]\r\nPictures=25 [1, 360]\r\n"
	assert.Eventually(t, func() bool {
		return out.String() == expected
	}, time.Second, 10*time.Millisecond)
	assert.NotContains(t, out.String(), string(rune(spin360.TerminationChar)))
}

func TestRunCancelled(t *testing.T) {
	c, _ := newPipe(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	// in never ends, so only cancellation can stop Run
	r, w := net.Pipe()
	defer w.Close()
	defer r.Close()

	err := c.Run(ctx, r, &syncBuffer{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewFromConfigNone(t *testing.T) {
	var logs syncBuffer
	logger := slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug}))

	cfg := &config.Config{SerialPort: SerialPortNone}
	c, err := NewFromConfig(cfg, logger)
	require.NoError(t, err)
	defer c.Close()
	assert.Equal(t, SerialPortNone, cfg.SerialPort)

	_, err = c.Exec(context.Background(), "G0")
	assert.Error(t, err)
	assert.Contains(t, logs.String(), `msg="discarded command" command=G0`)

	// the port stays unusable without hanging
	_, err = c.Exec(context.Background(), "G1")
	assert.Error(t, err)
}
