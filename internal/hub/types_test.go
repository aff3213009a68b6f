package hub

import (
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"syscall"
	"testing"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
)

// TestClassifyReadError verifies which read errors count as a clean
// disconnect.
func TestClassifyReadError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want FaultKind
	}{
		{"normal closure", &websocket.CloseError{Code: websocket.CloseNormalClosure}, CleanDisconnect},
		{"going away", &websocket.CloseError{Code: websocket.CloseGoingAway}, CleanDisconnect},
		{"no status", &websocket.CloseError{Code: websocket.CloseNoStatusReceived}, CleanDisconnect},
		{"application code", &websocket.CloseError{Code: 4000, Text: "bye"}, CleanDisconnect},
		{"abnormal closure", &websocket.CloseError{Code: websocket.CloseAbnormalClosure}, AbnormalFault},
		{"eof", io.EOF, AbnormalFault},
		{"unexpected eof", io.ErrUnexpectedEOF, AbnormalFault},
		{"unsupported frame", errUnsupportedFrame, AbnormalFault},
		{"generic", errors.New("connection reset by peer"), AbnormalFault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyReadError(tt.err))
		})
	}
}

// TestFaultKindString checks the labels used in logs and metrics.
func TestFaultKindString(t *testing.T) {
	assert.Equal(t, "clean", CleanDisconnect.String())
	assert.Equal(t, "fault", AbnormalFault.String())
	assert.Equal(t, "FaultKind(7)", FaultKind(7).String())
}

// TestIsExpectedCloseError verifies the errors that are silenced when a
// connection is torn down.
func TestIsExpectedCloseError(t *testing.T) {
	assert.True(t, isExpectedCloseError(nil))
	assert.True(t, isExpectedCloseError(websocket.ErrCloseSent))
	assert.True(t, isExpectedCloseError(&net.OpError{Op: "write", Net: "tcp", Err: net.ErrClosed}))
	assert.True(t, isExpectedCloseError(&net.OpError{Op: "write", Net: "tcp", Err: os.NewSyscallError("write", syscall.EPIPE)}))
	assert.True(t, isExpectedCloseError(&net.OpError{Op: "read", Net: "tcp", Err: os.NewSyscallError("read", syscall.ECONNRESET)}))
	assert.True(t, isExpectedCloseError(fmt.Errorf("write close message: %w", syscall.ECONNRESET)))
	assert.False(t, isExpectedCloseError(errors.New("i/o timeout")))
	assert.False(t, isExpectedCloseError(errors.New("connection reset by peer")))
}

// TestAnnouncementFormats pins the exact text of the hub's announcements.
func TestAnnouncementFormats(t *testing.T) {
	assert.Equal(t, "connection abc opened; now 3 connections", string(joinedMessage("abc", 3)))
	assert.Equal(t, "connection abc closed; now 0 connections", string(leftMessage("abc", 0)))
	assert.Equal(t, "message from abc: hi there", string(relayMessage("abc", "hi there")))
	assert.Equal(t, "message from abc: ", string(relayMessage("abc", "")))
}
