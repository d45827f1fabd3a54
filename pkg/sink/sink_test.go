package sink

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileSink_WritesOneFilePerEvent(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "queue")
	fs, err := NewFileSink(dir)
	require.NoError(t, err)

	tick := time.Unix(1710000000, 0)
	fs.now = func() time.Time {
		tick = tick.Add(time.Nanosecond)
		return tick
	}

	require.NoError(t, fs.Write(context.Background(), []byte(`{"a":1}`), "saturn"))
	require.NoError(t, fs.Write(context.Background(), []byte(`{"a":2}`), "saturn"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 2)

	data, err := os.ReadFile(filepath.Join(dir, entries[0].Name()))
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(data))
	assert.Regexp(t, `^\d+_saturn\.json$`, entries[0].Name())
}

func TestFileSink_SanitizesEntryID(t *testing.T) {
	dir := t.TempDir()
	fs, err := NewFileSink(dir)
	require.NoError(t, err)

	require.NoError(t, fs.Write(context.Background(), []byte(`{}`), "../etc/x"))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Contains(t, entries[0].Name(), ".._etc_x")
}

func TestFileSink_RejectsEmptyData(t *testing.T) {
	fs, err := NewFileSink(t.TempDir())
	require.NoError(t, err)
	require.Error(t, fs.Write(context.Background(), nil, "saturn"))
}

func TestHTTPSink_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "saturn", r.Header.Get("X-Printer-ID"))
		assert.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	hs := NewHTTPSink(HTTPSinkConfig{
		Endpoint:    srv.URL,
		AuthToken:   "secret",
		InitialWait: time.Millisecond,
	})

	require.NoError(t, hs.Write(context.Background(), []byte(`{}`), "saturn"))
	assert.Equal(t, int32(3), calls.Load())
}

func TestHTTPSink_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "bad payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	hs := NewHTTPSink(HTTPSinkConfig{Endpoint: srv.URL, InitialWait: time.Millisecond})

	err := hs.Write(context.Background(), []byte(`{}`), "saturn")
	require.Error(t, err)

	var se *SinkError
	require.ErrorAs(t, err, &se)
	assert.False(t, se.IsRetryable())
	assert.Equal(t, "http", se.Sink)
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPSink_GivesUpAfterMaxRetries(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	hs := NewHTTPSink(HTTPSinkConfig{Endpoint: srv.URL, MaxRetries: 2, InitialWait: time.Millisecond})

	err := hs.Write(context.Background(), []byte(`{}`), "saturn")

	var se *SinkError
	require.ErrorAs(t, err, &se)
	assert.True(t, se.IsRetryable())
	assert.Equal(t, int32(3), calls.Load())
}

type fakePublisher struct {
	subjects []string
	payloads [][]byte
	err      error
	closed   bool
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	if f.err != nil {
		return f.err
	}
	f.subjects = append(f.subjects, subject)
	f.payloads = append(f.payloads, data)
	return nil
}

func (f *fakePublisher) FlushWithContext(ctx context.Context) error {
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("context requires a deadline")
	}
	return nil
}

func (f *fakePublisher) Close() { f.closed = true }

func TestNatsSink_PublishesPerEntrySubject(t *testing.T) {
	pub := &fakePublisher{}
	ns := NewNatsSinkWithPublisher(pub, "printers.status.")

	require.NoError(t, ns.Write(context.Background(), []byte(`{"x":1}`), "saturn.3"))
	require.NoError(t, ns.Close())

	assert.Equal(t, []string{"printers.status.saturn_3"}, pub.subjects)
	assert.True(t, pub.closed)
}

func TestNatsSink_DefaultPrefix(t *testing.T) {
	ns := NewNatsSinkWithPublisher(&fakePublisher{}, "")
	assert.Equal(t, "printers.status.saturn", ns.Subject("saturn"))
}

func TestNatsSink_PublishError(t *testing.T) {
	ns := NewNatsSinkWithPublisher(&fakePublisher{err: errors.New("no responders")}, "p")

	err := ns.Write(context.Background(), []byte(`{}`), "saturn")

	var se *SinkError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "nats", se.Sink)
	assert.Equal(t, "publish", se.Operation)
}

type recordingSink struct {
	writes int
	err    error
}

func (r *recordingSink) Write(context.Context, []byte, string) error {
	r.writes++
	return r.err
}

func (r *recordingSink) Close() error { return nil }

func TestMulti_WritesToAllAndJoinsErrors(t *testing.T) {
	failing := &recordingSink{err: errors.New("down")}
	ok := &recordingSink{}

	err := Multi{failing, ok}.Write(context.Background(), []byte(`{}`), "saturn")

	require.Error(t, err)
	assert.Equal(t, 1, failing.writes)
	assert.Equal(t, 1, ok.writes)
}
