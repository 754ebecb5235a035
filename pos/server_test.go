package pos

import (
	"context"
	"encoding/binary"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func startTestServer(t *testing.T) (addr string, cancel context.CancelFunc) {
	t.Helper()

	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr = listener.Addr().String()
	listener.Close()

	srv := NewServer(addr, newTestHandler(newStubRepo()))
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- srv.ListenAndServe(ctx) }()
	t.Cleanup(func() {
		cancel()
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Error("server did not stop")
		}
	})

	// Wait for the listener to come up.
	require.Eventually(t, func() bool {
		conn, err := net.Dial("tcp", addr)
		if err != nil {
			return false
		}
		conn.Close()
		return true
	}, 2*time.Second, 20*time.Millisecond)

	return addr, cancel
}

func readFramedReply(t *testing.T, conn net.Conn) []byte {
	t.Helper()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))

	header := make([]byte, frameHeaderSize)
	_, err := io.ReadFull(conn, header)
	require.NoError(t, err)

	payload := make([]byte, binary.LittleEndian.Uint32(header[16:20]))
	_, err = io.ReadFull(conn, payload)
	require.NoError(t, err)

	payloads, _ := ExtractPayloads(append(header, payload...))
	require.Len(t, payloads, 1)
	return payloads[0]
}

func TestServerAnswersFramedRequest(t *testing.T) {
	addr, _ := startTestServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	req := []byte(`<GetLoyaltyOnlineStatusRequest><POSSequenceID>1</POSSequenceID></GetLoyaltyOnlineStatusRequest>`)
	_, err = conn.Write(EncodeFrame(req))
	require.NoError(t, err)

	reply := readFramedReply(t, conn)
	assert.Contains(t, string(reply), "<GetLoyaltyOnlineStatusResponse>")
}

func TestServerAnswersBareRequest(t *testing.T) {
	addr, _ := startTestServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write([]byte(`<CancelTransactionRequest><POSSequenceID>2</POSSequenceID></CancelTransactionRequest>`))
	require.NoError(t, err)

	reply := readFramedReply(t, conn)
	assert.Contains(t, string(reply), "<CancelTransactionResponse>")
}

func TestServerKeepsConnectionAcrossRequests(t *testing.T) {
	addr, _ := startTestServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	for i := 0; i < 3; i++ {
		_, err = conn.Write(EncodeFrame([]byte(`<GetLoyaltyOnlineStatusRequest><POSSequenceID>1</POSSequenceID></GetLoyaltyOnlineStatusRequest>`)))
		require.NoError(t, err)
		reply := readFramedReply(t, conn)
		assert.Contains(t, string(reply), "GetLoyaltyOnlineStatusResponse")
	}
}

func TestServerSilentForBeginCustomer(t *testing.T) {
	addr, _ := startTestServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Write(EncodeFrame([]byte("<BeginCustomerRequest></BeginCustomerRequest>")))
	require.NoError(t, err)

	// No reply comes back; a follow-up request still gets one.
	_, err = conn.Write(EncodeFrame([]byte(`<CancelTransactionRequest><POSSequenceID>5</POSSequenceID></CancelTransactionRequest>`)))
	require.NoError(t, err)

	reply := readFramedReply(t, conn)
	assert.Contains(t, string(reply), "<CancelTransactionResponse>")
}

func TestServerShutdownClosesConnections(t *testing.T) {
	addr, cancel := startTestServer(t)

	conn, err := net.Dial("tcp", addr)
	require.NoError(t, err)
	defer conn.Close()

	cancel()

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 1)
	_, err = conn.Read(buf)
	assert.Error(t, err)
}
