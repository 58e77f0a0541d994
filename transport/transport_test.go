package transport

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sendStep scripts one Send call. ok accepts the whole transfer; otherwise n
// bytes are accepted and err is returned.
type sendStep struct {
	ok  bool
	n   int
	err error
}

// recvStep scripts one Recv call, handing data back with err.
type recvStep struct {
	data []byte
	err  error
}

// fakeLink is a scripted Link. Sends are recorded as the byte slices the
// device accepted; receives replay the scripted steps in order.
type fakeLink struct {
	t      *testing.T
	sends  []sendStep
	recvs  []recvStep
	sent   [][]byte
	closed bool
}

func (l *fakeLink) Send(p []byte, timeout time.Duration) (int, error) {
	step := sendStep{ok: true}
	if len(l.sends) > 0 {
		step = l.sends[0]
		l.sends = l.sends[1:]
	}

	n := step.n
	if step.ok {
		n = len(p)
	}
	l.sent = append(l.sent, append([]byte(nil), p[:n]...))
	return n, step.err
}

func (l *fakeLink) Recv(p []byte, timeout time.Duration) (int, error) {
	require.NotEmpty(l.t, l.recvs, "unexpected Recv call")
	step := l.recvs[0]
	l.recvs = l.recvs[1:]
	return copy(p, step.data), step.err
}

func (l *fakeLink) Close() error {
	l.closed = true
	return nil
}

func newTestTransport(t *testing.T, link *fakeLink, cfg Config) *Transport {
	t.Helper()
	if cfg.ChunkSize == 0 {
		cfg.ChunkSize = 8
	}
	return New(link, cfg)
}

func sentSizes(link *fakeLink) []int {
	sizes := make([]int, 0, len(link.sent))
	for _, s := range link.sent {
		sizes = append(sizes, len(s))
	}
	return sizes
}

func sentBytes(link *fakeLink) []byte {
	var all []byte
	for _, s := range link.sent {
		all = append(all, s...)
	}
	return all
}

func sequence(n int) []byte {
	p := make([]byte, n)
	for i := range p {
		p[i] = byte(i)
	}
	return p
}

func TestStartValidation(t *testing.T) {
	tests := []struct {
		name  string
		start func(tr *Transport) error
	}{
		{"write zero", func(tr *Transport) error { return tr.StartWrite(0) }},
		{"write negative", func(tr *Transport) error { return tr.StartWrite(-1) }},
		{"read zero", func(tr *Transport) error { return tr.StartRead(0) }},
		{"write read zero write", func(tr *Transport) error { return tr.StartWriteRead(0, 4) }},
		{"write read zero read", func(tr *Transport) error { return tr.StartWriteRead(4, 0) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := &fakeLink{t: t}
			tr := newTestTransport(t, link, Config{})

			err := tt.start(tr)
			require.ErrorIs(t, err, ErrInvalidArgument)
			assert.Empty(t, link.sent)
		})
	}
}

// The transfers hitting the link must not depend on how the caller splits the
// declared write length across Write calls.
func TestWriteSplitInvariance(t *testing.T) {
	const length = 20
	payload := sequence(length)

	tests := []struct {
		name   string
		splits []int
	}{
		{"single call", []int{20}},
		{"one byte then rest", []int{1, 19}},
		{"three pieces", []int{3, 4, 13}},
		{"almost a chunk then rest", []int{7, 13}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := &fakeLink{t: t}
			tr := newTestTransport(t, link, Config{})

			require.NoError(t, tr.StartWrite(length))

			pos := 0
			for _, n := range tt.splits {
				require.NoError(t, tr.Write(payload[pos:pos+n]))
				pos += n
			}

			assert.Equal(t, []int{8, 8, 4}, sentSizes(link))
			assert.Equal(t, payload, sentBytes(link))
		})
	}
}

func TestWriteOverDeclared(t *testing.T) {
	link := &fakeLink{t: t}
	tr := newTestTransport(t, link, Config{})

	require.NoError(t, tr.StartWrite(4))
	err := tr.Write(sequence(5))
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, link.sent)

	// The declaration is still intact.
	require.NoError(t, tr.Write(sequence(4)))
	assert.Equal(t, [][]byte{sequence(4)}, link.sent)
}

func TestWriteStagingOverflow(t *testing.T) {
	link := &fakeLink{t: t}
	tr := newTestTransport(t, link, Config{ChunkSize: 4})

	require.NoError(t, tr.StartWrite(10))
	require.NoError(t, tr.Write(sequence(3)))

	err := tr.Write(sequence(3))
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Empty(t, link.sent)
}

// Reads must not depend on how the caller splits the declared length, and a
// device transfer larger than the requested piece is buffered for later
// calls.
func TestReadSplitInvariance(t *testing.T) {
	payload := sequence(8)

	tests := []struct {
		name   string
		splits []int
	}{
		{"single call", []int{8}},
		{"short then rest", []int{2, 6}},
		{"byte wise tail", []int{5, 1, 1, 1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			link := &fakeLink{
				t: t,
				// The device always answers with the full response.
				recvs: []recvStep{{data: payload}},
			}
			tr := newTestTransport(t, link, Config{})

			require.NoError(t, tr.StartRead(len(payload)))

			var got []byte
			for _, n := range tt.splits {
				p := make([]byte, n)
				require.NoError(t, tr.Read(p))
				got = append(got, p...)
			}

			assert.Equal(t, payload, got)
			assert.Empty(t, link.recvs, "all scripted transfers consumed")
		})
	}
}

func TestReadLargeDirect(t *testing.T) {
	payload := sequence(20)
	link := &fakeLink{
		t: t,
		recvs: []recvStep{
			{data: payload[:8]},
			{data: payload[8:16]},
			{data: payload[16:]},
		},
	}
	tr := newTestTransport(t, link, Config{})

	require.NoError(t, tr.StartRead(len(payload)))

	p := make([]byte, len(payload))
	require.NoError(t, tr.Read(p))
	assert.Equal(t, payload, p)
}

func TestReadOverRequest(t *testing.T) {
	link := &fakeLink{t: t, recvs: []recvStep{{data: sequence(4)}}}
	tr := newTestTransport(t, link, Config{})

	require.NoError(t, tr.StartRead(4))

	err := tr.Read(make([]byte, 5))
	require.ErrorIs(t, err, ErrInvalidArgument)
	assert.Len(t, link.recvs, 1, "no link traffic on a rejected request")

	p := make([]byte, 4)
	require.NoError(t, tr.Read(p))
	assert.Equal(t, sequence(4), p)
}

func TestReadDeviceReturnsTooMuch(t *testing.T) {
	link := &fakeLink{t: t, recvs: []recvStep{{data: sequence(6)}}}
	tr := newTestTransport(t, link, Config{})

	require.NoError(t, tr.StartRead(4))

	err := tr.Read(make([]byte, 4))
	require.ErrorIs(t, err, ErrIO)
}

func TestRecvRetriesAfterTimeout(t *testing.T) {
	link := &fakeLink{
		t: t,
		recvs: []recvStep{
			{err: ErrTimeout},
			{data: sequence(4)},
		},
	}
	tr := newTestTransport(t, link, Config{})

	require.NoError(t, tr.StartRead(4))

	p := make([]byte, 4)
	require.NoError(t, tr.Read(p))
	assert.Equal(t, sequence(4), p)
}

func TestRecvTimeoutBudgetExhausted(t *testing.T) {
	link := &fakeLink{
		t: t,
		recvs: []recvStep{
			{err: ErrTimeout},
			{err: ErrTimeout},
		},
	}
	tr := newTestTransport(t, link, Config{})

	require.NoError(t, tr.StartRead(4))

	err := tr.Read(make([]byte, 4))
	require.ErrorIs(t, err, ErrTimeout)
	assert.Empty(t, link.recvs, "both attempts used")
}

// A timed-out transfer that still moved bytes counts as received data.
func TestRecvPartialOnTimeout(t *testing.T) {
	link := &fakeLink{
		t:     t,
		recvs: []recvStep{{data: sequence(3), err: ErrTimeout}},
	}
	tr := newTestTransport(t, link, Config{})

	require.NoError(t, tr.StartRead(3))

	p := make([]byte, 3)
	require.NoError(t, tr.Read(p))
	assert.Equal(t, sequence(3), p)
}

func TestRecvFatalError(t *testing.T) {
	link := &fakeLink{t: t, recvs: []recvStep{{err: errors.New("pipe broke")}}}
	tr := newTestTransport(t, link, Config{})

	require.NoError(t, tr.StartRead(4))

	err := tr.Read(make([]byte, 4))
	require.ErrorIs(t, err, ErrIO)
}

// Every successfully sent chunk refreshes the timeout budget; only
// consecutive timeouts exhaust it.
func TestSendTimeoutBudgetPerChunk(t *testing.T) {
	payload := sequence(16)

	t.Run("refreshed budget survives", func(t *testing.T) {
		link := &fakeLink{
			t: t,
			sends: []sendStep{
				{err: ErrTimeout},
				{ok: true},
				{err: ErrTimeout},
				{ok: true},
			},
		}
		tr := newTestTransport(t, link, Config{})

		require.NoError(t, tr.StartWrite(len(payload)))
		require.NoError(t, tr.Write(payload))
		assert.Equal(t, payload, sentBytes(link))
	})

	t.Run("consecutive timeouts fail", func(t *testing.T) {
		link := &fakeLink{
			t: t,
			sends: []sendStep{
				{err: ErrTimeout},
				{ok: true},
				{err: ErrTimeout},
				{err: ErrTimeout},
			},
		}
		tr := newTestTransport(t, link, Config{})

		require.NoError(t, tr.StartWrite(len(payload)))
		err := tr.Write(payload)
		require.ErrorIs(t, err, ErrTimeout)
	})
}

// The link may accept part of a transfer before timing out; those bytes must
// not be sent again.
func TestSendPartialOnTimeout(t *testing.T) {
	payload := sequence(8)
	link := &fakeLink{
		t: t,
		sends: []sendStep{
			{n: 5, err: ErrTimeout},
			{ok: true},
		},
	}
	tr := newTestTransport(t, link, Config{})

	require.NoError(t, tr.StartWrite(len(payload)))
	require.NoError(t, tr.Write(payload))
	assert.Equal(t, payload, sentBytes(link))
	assert.Equal(t, []int{5, 3}, sentSizes(link))
}

func TestSendFatalError(t *testing.T) {
	link := &fakeLink{t: t, sends: []sendStep{{err: errors.New("device gone")}}}
	tr := newTestTransport(t, link, Config{})

	require.NoError(t, tr.StartWrite(4))
	err := tr.Write(sequence(4))
	require.ErrorIs(t, err, ErrIO)
}

func TestStrictFraming(t *testing.T) {
	t.Run("strict rejects leftovers", func(t *testing.T) {
		link := &fakeLink{t: t}
		tr := newTestTransport(t, link, Config{StrictFraming: true})

		require.NoError(t, tr.StartWrite(4))
		require.NoError(t, tr.Write(sequence(2)))

		err := tr.StartWrite(4)
		require.ErrorIs(t, err, ErrProtocolMisuse)
	})

	t.Run("lenient overwrites state", func(t *testing.T) {
		link := &fakeLink{t: t}
		tr := newTestTransport(t, link, Config{})

		require.NoError(t, tr.StartWrite(4))
		require.NoError(t, tr.Write(sequence(2)))

		require.NoError(t, tr.StartWrite(4))
		require.NoError(t, tr.Write(sequence(4)))
		assert.Equal(t, [][]byte{sequence(4)}, link.sent)
	})

	t.Run("strict rejects undrained read", func(t *testing.T) {
		link := &fakeLink{t: t, recvs: []recvStep{{data: sequence(8)}}}
		tr := newTestTransport(t, link, Config{StrictFraming: true})

		require.NoError(t, tr.StartRead(8))
		require.NoError(t, tr.Read(make([]byte, 2)))

		err := tr.StartRead(4)
		require.ErrorIs(t, err, ErrProtocolMisuse)
	})
}

// traceRecorder captures the direction and bytes of every traced chunk.
type traceRecorder struct {
	in  [][]byte
	out [][]byte
}

func (r *traceRecorder) Log(in bool, data []byte) {
	c := append([]byte(nil), data...)
	if in {
		r.in = append(r.in, c)
	} else {
		r.out = append(r.out, c)
	}
}

func TestTraceLogsBothDirections(t *testing.T) {
	trace := &traceRecorder{}
	link := &fakeLink{t: t, recvs: []recvStep{{data: sequence(4)}}}
	tr := newTestTransport(t, link, Config{Trace: trace})

	require.NoError(t, tr.StartWriteRead(4, 4))
	require.NoError(t, tr.Write(sequence(4)))
	require.NoError(t, tr.Read(make([]byte, 4)))

	require.Len(t, trace.out, 1)
	assert.Equal(t, sequence(4), trace.out[0])
	require.Len(t, trace.in, 1)
	assert.Equal(t, sequence(4), trace.in[0])
}

func TestCloseClosesLink(t *testing.T) {
	link := &fakeLink{t: t}
	tr := newTestTransport(t, link, Config{})

	require.NoError(t, tr.Close())
	assert.True(t, link.closed)
}
