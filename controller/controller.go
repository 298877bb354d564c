// Package controller talks to the rig's firmware over a serial connection
package controller

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/calvinmclean/spin360"
	"github.com/calvinmclean/spin360/config"
)

// Controller sends commands to the firmware and reads its responses. A single
// goroutine owns the port's read side and splits it into EOT-terminated frames.
type Controller struct {
	port   io.ReadWriteCloser
	reader *bufio.Reader
	logger *slog.Logger

	mu sync.Mutex

	startReader sync.Once
	frames      chan string
	readErr     error
	closed      chan struct{}
	closeOnce   sync.Once
}

// New creates a Controller on an already opened port
func New(port io.ReadWriteCloser, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.Default()
	}
	return &Controller{
		port:   port,
		reader: bufio.NewReader(port),
		logger: logger,
		frames: make(chan string, 16),
		closed: make(chan struct{}),
	}
}

// NewFromConfig opens the serial port named in cfg. SerialPortNone gives a
// Controller that discards commands.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Controller, error) {
	if logger == nil {
		logger = slog.Default()
	}

	name := cfg.SerialPort
	switch name {
	case "":
		ports, err := GetSerialPorts()
		if err != nil {
			return nil, err
		}
		name = ports[0]
	case SerialPortNone:
		logger.Info("serial port disabled")
		return New(discardPort{logger}, logger), nil
	}

	port, err := openSerial(name, cfg.BaudRate)
	if err != nil {
		return nil, err
	}

	logger.Info("connected", "port", name, "baud_rate", cfg.BaudRate)

	return New(port, logger), nil
}

// Close closes the port
func (c *Controller) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return c.port.Close()
}

// readFrames reads EOT-terminated responses into c.frames until the port fails.
// readErr is set before frames is closed.
func (c *Controller) readFrames() {
	defer close(c.frames)
	for {
		resp, err := c.reader.ReadString(spin360.TerminationChar)
		resp = strings.TrimSuffix(resp, string(rune(spin360.TerminationChar)))
		if resp != "" || err == nil {
			select {
			case c.frames <- resp:
			case <-c.closed:
				c.readErr = io.ErrClosedPipe
				return
			}
		}
		if err != nil {
			c.readErr = err
			return
		}
	}
}

func (c *Controller) start() {
	c.startReader.Do(func() { go c.readFrames() })
}

// dropStale discards responses nobody waited for, such as a reply that arrived
// after its command timed out
func (c *Controller) dropStale() {
	for {
		select {
		case resp, ok := <-c.frames:
			if !ok {
				return
			}
			c.logger.Debug("dropped stale response", "response", resp)
		default:
			return
		}
	}
}

// Exec sends a single command and waits for the firmware to finish responding
func (c *Controller) Exec(ctx context.Context, command string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.start()
	c.dropStale()

	c.logger.Debug("sending command", "command", command)

	_, err := io.WriteString(c.port, command)
	if err != nil {
		return "", fmt.Errorf("error writing command: %w", err)
	}

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-c.frames:
		if !ok {
			return "", fmt.Errorf("error reading response: %w", c.readErr)
		}
		resp := strings.TrimSpace(strings.ReplaceAll(r, "\r\n", "\n"))
		if msg, ok := strings.CutPrefix(resp, "error: "); ok {
			return "", errors.New(msg)
		}
		return resp, nil
	}
}

// Run forwards each line from in to the firmware and copies every response to
// out. It returns when in is exhausted or ctx is cancelled. Responses keep
// flowing to out until ctx is done or the port is closed, so Exec should not be
// used on the same Controller after Run.
func (c *Controller) Run(ctx context.Context, in io.Reader, out io.Writer) error {
	c.start()

	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case resp, ok := <-c.frames:
				if !ok {
					if !errors.Is(c.readErr, io.ErrClosedPipe) && !errors.Is(c.readErr, io.EOF) {
						c.logger.Error("error reading from device", "error", c.readErr)
					}
					return
				}
				_, err := io.WriteString(out, resp)
				if err != nil {
					c.logger.Error("error writing output", "error", err)
				}
			}
		}
	}()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- scanner.Err()
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					return err
				default:
					return ctx.Err()
				}
			}

			c.mu.Lock()
			_, err := io.WriteString(c.port, line)
			c.mu.Unlock()
			if err != nil {
				return fmt.Errorf("error writing to device: %w", err)
			}
			c.logger.Debug("sent", "line", line)
		}
	}
}

// discardPort stands in for the serial port when SerialPortNone is configured
type discardPort struct {
	logger *slog.Logger
}

func (discardPort) Read([]byte) (int, error) { return 0, io.EOF }

func (d discardPort) Write(p []byte) (int, error) {
	d.logger.Debug("discarded command", "command", string(p))
	return len(p), nil
}

func (discardPort) Close() error { return nil }
