// Package sdcptest ofrece una impresora UDP falsa en loopback para tests.
package sdcptest

import (
	"errors"
	"net"
	"sync"
	"testing"
)

// Handler retorna el datagrama de respuesta a un comando, o nil para no responder.
type Handler func(command string) []byte

// Responder es una impresora falsa escuchando en 127.0.0.1.
type Responder struct {
	conn     *net.UDPConn
	handler  Handler
	mu       sync.Mutex
	commands []string
	done     chan struct{}
}

// NewResponder levanta la impresora falsa y la detiene al terminar el test.
func NewResponder(t testing.TB, handler Handler) *Responder {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}

	r := &Responder{conn: conn, handler: handler, done: make(chan struct{})}

	go r.serve()

	t.Cleanup(func() {
		_ = conn.Close()
		<-r.done
	})

	return r
}

// Static responde cada comando con el mismo payload.
func Static(payload string) Handler {
	return func(string) []byte {
		return []byte(payload)
	}
}

// Silent nunca responde.
func Silent() Handler {
	return func(string) []byte {
		return nil
	}
}

// Host retorna la IP de escucha.
func (r *Responder) Host() string {
	return r.conn.LocalAddr().(*net.UDPAddr).IP.String()
}

// Port retorna el puerto de escucha.
func (r *Responder) Port() int {
	return r.conn.LocalAddr().(*net.UDPAddr).Port
}

// Commands retorna los comandos recibidos hasta ahora.
func (r *Responder) Commands() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.commands...)
}

func (r *Responder) serve() {
	defer close(r.done)

	buf := make([]byte, 4096)

	for {
		n, addr, err := r.conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, net.ErrClosed) {
				return
			}

			continue
		}

		cmd := string(buf[:n])

		r.mu.Lock()
		r.commands = append(r.commands, cmd)
		r.mu.Unlock()

		if reply := r.handler(cmd); reply != nil {
			_, _ = r.conn.WriteToUDP(reply, addr)
		}
	}
}

// ClosedPort retorna un puerto UDP de loopback sin nadie escuchando.
func ClosedPort(t testing.TB) int {
	t.Helper()

	conn, err := net.ListenUDP("udp", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("listen udp: %v", err)
	}

	port := conn.LocalAddr().(*net.UDPAddr).Port
	_ = conn.Close()

	return port
}

// StatusJSON es una respuesta típica a M99999 de una Saturn 3 Ultra imprimiendo.
const StatusJSON = `{
  "Id": "f25273b12b094c5a8b9513a30ca60049",
  "Data": {
    "Attributes": {
      "MachineName": "Saturn 3 Ultra",
      "FirmwareVersion": "V1.4.2",
      "Resolution": "11520x5120"
    },
    "Status": {
      "CurrentStatus": 1,
      "PrintInfo": {
        "CurrentLayer": 150,
        "TotalLayer": 600,
        "CurrentTicks": 300000,
        "TotalTicks": 600000,
        "Filename": "benchy.goo"
      }
    }
  }
}`
