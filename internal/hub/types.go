package hub

import (
	"errors"
	"fmt"
	"net"
	"syscall"

	"github.com/gorilla/websocket"
)

// FaultKind classifies why a connection left the Open state.
type FaultKind int

const (
	// CleanDisconnect means the peer closed the transport with a close frame.
	CleanDisconnect FaultKind = iota
	// AbnormalFault covers every other way a connection ends: dropped TCP
	// connections, I/O errors, deadlines, protocol errors.
	AbnormalFault
)

func (k FaultKind) String() string {
	switch k {
	case CleanDisconnect:
		return "clean"
	case AbnormalFault:
		return "fault"
	default:
		return fmt.Sprintf("FaultKind(%d)", int(k))
	}
}

var (
	// ErrSendBufferFull is returned by Client.Send when the outbound queue is full.
	ErrSendBufferFull = errors.New("hub: send buffer full")
	// ErrClientClosed is returned by Client.Send after the client was closed.
	ErrClientClosed = errors.New("hub: client closed")

	errUnsupportedFrame = errors.New("hub: unsupported data frame")
	errInvalidUTF8      = errors.New("hub: text frame is not valid UTF-8")
)

// ClassifyReadError maps an error returned from reading the next inbound
// message to a FaultKind. Only a close frame sent by the peer counts as a
// clean disconnect; gorilla reports a vanished peer as close code 1006,
// which is a fault.
func ClassifyReadError(err error) FaultKind {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) && closeErr.Code != websocket.CloseAbnormalClosure {
		return CleanDisconnect
	}
	return AbnormalFault
}

// isExpectedCloseError checks if an error is expected during connection closure.
func isExpectedCloseError(err error) bool {
	return err == nil ||
		errors.Is(err, websocket.ErrCloseSent) ||
		errors.Is(err, net.ErrClosed) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.EPIPE)
}

func joinedMessage(id string, total int) []byte {
	return []byte(fmt.Sprintf("connection %s opened; now %d connections", id, total))
}

func leftMessage(id string, remaining int) []byte {
	return []byte(fmt.Sprintf("connection %s closed; now %d connections", id, remaining))
}

func relayMessage(id, text string) []byte {
	return []byte(fmt.Sprintf("message from %s: %s", id, text))
}
