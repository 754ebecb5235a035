package pos

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"sync"
	"time"
)

// idleTimeout closes a connection with no traffic; the Passport keeps
// connections open across transactions but goes quiet for long stretches.
const idleTimeout = 60 * time.Second

// Server accepts POS connections and feeds extracted documents to the
// handler, one goroutine per connection.
type Server struct {
	addr    string
	handler *Handler

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	wg       sync.WaitGroup
}

// NewServer creates a new Server.
func NewServer(addr string, handler *Handler) *Server {
	return &Server{
		addr:    addr,
		handler: handler,
		conns:   make(map[net.Conn]struct{}),
	}
}

// ListenAndServe accepts connections until the context is cancelled, then
// stops accepting, closes open connections and waits for handlers to drain.
func (s *Server) ListenAndServe(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.listener = listener
	s.mu.Unlock()

	log.Printf("✓ POS listener started on %s", s.addr)

	go func() {
		<-ctx.Done()
		listener.Close()
		s.mu.Lock()
		for conn := range s.conns {
			conn.Close()
		}
		s.mu.Unlock()
	}()

	for {
		conn, err := listener.Accept()
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			if errors.Is(err, net.ErrClosed) {
				break
			}
			log.Printf("⚠️ ListenAndServe: accept error: %v", err)
			continue
		}

		s.track(conn, true)
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			defer s.track(conn, false)
			s.serveConn(ctx, conn)
		}()
	}

	s.wg.Wait()
	log.Printf("✓ POS listener stopped")
	return nil
}

func (s *Server) track(conn net.Conn, add bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if add {
		s.conns[conn] = struct{}{}
	} else {
		delete(s.conns, conn)
	}
}

// serveConn reads, extracts and answers documents until the connection goes
// idle or closes. Each reply goes out framed.
func (s *Server) serveConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	log.Printf("🔌 Connection opened from %s", remote)

	if tcp, ok := conn.(*net.TCPConn); ok {
		tcp.SetKeepAlive(true)
	}

	buf := make([]byte, 0, 4096)
	read := make([]byte, 4096)

	for {
		conn.SetReadDeadline(time.Now().Add(idleTimeout))
		n, err := conn.Read(read)
		if err != nil {
			if ne, ok := err.(net.Error); ok && ne.Timeout() {
				log.Printf("🔌 Connection from %s idle for %s, closing", remote, idleTimeout)
			} else if ctx.Err() == nil && !errors.Is(err, net.ErrClosed) {
				log.Printf("🔌 Connection from %s closed: %v", remote, err)
			}
			return
		}

		buf = append(buf, read[:n]...)

		var payloads [][]byte
		payloads, buf = ExtractPayloads(buf)

		for _, payload := range payloads {
			reply := s.handler.Handle(ctx, payload)
			if reply == nil {
				continue
			}
			if _, err := conn.Write(EncodeFrame(reply)); err != nil {
				log.Printf("⚠️ serveConn: write to %s failed: %v", remote, err)
				return
			}
		}

		if ctx.Err() != nil {
			return
		}
	}
}
