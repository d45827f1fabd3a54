// Package sdcp habla el protocolo UDP/JSON de las impresoras de resina Elegoo:
// un comando ASCII por datagrama y una respuesta JSON por datagrama.
package sdcp

import (
	"context"
	"errors"
	"net"
	"strconv"
	"syscall"
	"time"

	"github.com/asaavedra/agent-resin/pkg/logger"
)

const (
	DefaultPort    = 3000
	DefaultTimeout = 5 * time.Second

	maxDatagramSize = 4096
)

// Printer es lo que la API y el coordinador necesitan de una impresora.
type Printer interface {
	Address() string
	Query(ctx context.Context) Result
	Pause(ctx context.Context) Reply
	Resume(ctx context.Context) Reply
	Stop(ctx context.Context) Reply
}

//go:generate mockgen -destination=mock_printer.go -package=sdcp github.com/asaavedra/agent-resin/pkg/sdcp Printer

var _ Printer = (*Client)(nil)

// Endpoint identifica una impresora en la red.
type Endpoint struct {
	Address string
	Port    int
	Timeout time.Duration
}

func (e Endpoint) withDefaults() Endpoint {
	if e.Port <= 0 {
		e.Port = DefaultPort
	}

	if e.Timeout <= 0 {
		e.Timeout = DefaultTimeout
	}

	return e
}

func (e Endpoint) hostPort() string {
	return net.JoinHostPort(e.Address, strconv.Itoa(e.Port))
}

// Client realiza un intercambio request/response por llamada.
// Cada llamada abre su propio socket, así que un Client puede compartirse
// entre goroutines sin serializar: nunca hay dos requests en un mismo socket.
type Client struct {
	endpoint Endpoint
	log      logger.Logger
	now      func() time.Time
}

// Option ajusta un Client.
type Option func(*Client)

// WithClock reemplaza el reloj usado para estimar la hora de finalización.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// NewClient crea un cliente para el endpoint dado.
func NewClient(endpoint Endpoint, log logger.Logger, opts ...Option) *Client {
	if log == nil {
		log = logger.NewTestLogger()
	}

	c := &Client{
		endpoint: endpoint.withDefaults(),
		log:      log.WithComponent("sdcp"),
		now:      time.Now,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Address retorna la dirección configurada de la impresora.
func (c *Client) Address() string {
	return c.endpoint.Address
}

// Query envía M99999 y decodifica el estado. Nunca retorna error: timeouts,
// respuestas inválidas y hosts inalcanzables son un Result vacío.
func (c *Client) Query(ctx context.Context) Result {
	payload, outcome := c.exchange(ctx, CmdStatus)
	if outcome != OutcomeOK {
		return emptyResult(outcome)
	}

	reply, ok := decodeStatus(payload)
	if !ok {
		c.log.Warn().
			Str("ip", c.endpoint.Address).
			Int("bytes", len(payload)).
			Msg("discarding malformed status reply")

		return emptyResult(OutcomeMalformed)
	}

	return Result{Outcome: OutcomeOK, Snapshot: newSnapshot(reply, c.now())}
}

// Pause envía M25.
func (c *Client) Pause(ctx context.Context) Reply {
	return c.control(ctx, CmdPause)
}

// Resume envía M24.
func (c *Client) Resume(ctx context.Context) Reply {
	return c.control(ctx, CmdResume)
}

// Stop envía M33.
func (c *Client) Stop(ctx context.Context) Reply {
	return c.control(ctx, CmdStop)
}

func (c *Client) control(ctx context.Context, cmd Command) Reply {
	payload, outcome := c.exchange(ctx, cmd)
	if outcome != OutcomeOK {
		return Reply{Outcome: outcome}
	}

	obj, ok := decodeObject(payload)
	if !ok {
		c.log.Warn().
			Str("ip", c.endpoint.Address).
			Str("command", string(cmd)).
			Msg("discarding malformed control reply")

		return Reply{Outcome: OutcomeMalformed}
	}

	return Reply{Outcome: OutcomeOK, Payload: obj}
}

// exchange hace exactamente un envío y un intento de recepción.
func (c *Client) exchange(ctx context.Context, cmd Command) ([]byte, Outcome) {
	ctx, cancel := context.WithTimeout(ctx, c.endpoint.Timeout)
	defer cancel()

	var dialer net.Dialer

	conn, err := dialer.DialContext(ctx, "udp", c.endpoint.hostPort())
	if err != nil {
		return nil, c.classify(cmd, err)
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	}

	// Una cancelación del llamador desbloquea la lectura de inmediato.
	stop := context.AfterFunc(ctx, func() {
		_ = conn.SetDeadline(time.Now())
	})
	defer stop()

	if _, err := conn.Write([]byte(cmd)); err != nil {
		return nil, c.classify(cmd, err)
	}

	buf := make([]byte, maxDatagramSize)

	n, err := conn.Read(buf)
	if err != nil {
		return nil, c.classify(cmd, err)
	}

	if n == 0 {
		return nil, OutcomeMalformed
	}

	return buf[:n], OutcomeOK
}

func (c *Client) classify(cmd Command, err error) Outcome {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() ||
		errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		c.log.Debug().
			Str("ip", c.endpoint.Address).
			Str("command", string(cmd)).
			Msg("no reply from printer")

		return OutcomeTimeout
	}

	event := c.log.Warn().
		Str("ip", c.endpoint.Address).
		Str("command", string(cmd)).
		Err(err)

	if errors.Is(err, syscall.ECONNREFUSED) {
		event.Msg("printer port unreachable")
	} else {
		event.Msg("printer exchange failed")
	}

	return OutcomeUnreachable
}
