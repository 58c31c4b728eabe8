package raid

import (
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPlayer_ReadPumpRoutesOnlyWellFormedActions(t *testing.T) {
	t.Parallel()
	socket := &MockWebsocketConnection{}
	socket.On("Read").Return([]byte(`{"type":"start_raid"}`), nil).Once()
	socket.On("Read").Return([]byte(`{not json`), nil).Once()
	socket.On("Read").Return([]byte(`{"type":"submit_part","content":"   "}`), nil).Once()
	socket.On("Read").Return([]byte(`{"type":"mystery"}`), nil).Once()
	socket.On("Read").Return([]byte(nil), io.EOF).Once()

	r := NewRoom(1, RoomConfigs{BossHP: 1000}, &MockScorer{}, &MockRaidResultSaver{}, zerolog.Nop())
	p := NewPlayer("MemberA", socket, zerolog.Nop())
	p.SetRoom(r)

	done := make(chan struct{})
	go func() {
		p.ReadPump()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("read pump never exited")
	}

	// Exactly one well-formed action reached the room.
	select {
	case env := <-r.inbox:
		assert.Equal(t, ActionStartRaid, env.action.Type)
	default:
		t.Fatal("expected the start_raid action in the room inbox")
	}
	select {
	case env := <-r.inbox:
		t.Fatalf("unexpected extra action: %+v", env.action)
	default:
	}

	// The three protocol violations were answered directly to the sender.
	var rejections [][]byte
	for len(p.inbox) > 0 {
		rejections = append(rejections, <-p.inbox)
	}
	require.Len(t, rejections, 3)
	for _, texts := range [][]byte{rejections[0], rejections[1], rejections[2]} {
		assert.Contains(t, string(texts), `"notification"`)
	}

	// Pump exit requests removal from the room.
	select {
	case removed := <-r.removals:
		assert.Same(t, p, removed.(*wsPlayer))
	default:
		t.Fatal("expected a removal request")
	}
	socket.AssertExpectations(t)
}

func TestPlayer_WritePumpStopsOnWriteError(t *testing.T) {
	t.Parallel()
	socket := &MockWebsocketConnection{}
	socket.On("Write", []byte("ok")).Return(nil).Once()
	socket.On("Write", []byte("boom")).Return(io.ErrClosedPipe).Once()

	p := NewPlayer("MemberA", socket, zerolog.Nop())
	require.NoError(t, p.Send([]byte("ok")))
	require.NoError(t, p.Send([]byte("boom")))

	done := make(chan struct{})
	go func() {
		p.WritePump()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("write pump never exited")
	}
	socket.AssertExpectations(t)
}

func TestPlayer_SendFailsWhenBufferFull(t *testing.T) {
	t.Parallel()
	socket := &MockWebsocketConnection{}
	p := NewPlayer("MemberA", socket, zerolog.Nop())

	for i := 0; i < cap(p.inbox); i++ {
		require.NoError(t, p.Send([]byte("x")))
	}
	assert.ErrorIs(t, p.Send([]byte("overflow")), ErrSlowConsumer)
}

func TestPlayer_SendAfterReleaseFails(t *testing.T) {
	t.Parallel()
	socket := &MockWebsocketConnection{}
	socket.On("Close", "").Return().Once()

	p := NewPlayer("MemberA", socket, zerolog.Nop())
	p.CancelAndRelease()

	assert.ErrorIs(t, p.Send([]byte("late")), ErrConnectionReleased)
	socket.AssertExpectations(t)
}

func TestPlayer_CancelAndReleaseStopsWritePump(t *testing.T) {
	t.Parallel()
	socket := &MockWebsocketConnection{}
	socket.On("Close", "").Return().Once()

	p := NewPlayer("MemberA", socket, zerolog.Nop())

	done := make(chan struct{})
	go func() {
		p.WritePump()
		close(done)
	}()

	p.CancelAndRelease()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("write pump never exited after release")
	}
	socket.AssertExpectations(t)
}
