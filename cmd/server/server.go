package main

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/nickyhof/SchemaSpec"
	"github.com/nickyhof/SchemaSpec/core"
	"github.com/nickyhof/SchemaSpec/db"
)

var (
	ErrAuthRequired = errors.New("authentication required: send AUTH JWT <token>")
	ErrTokenExpired = errors.New("token expired: authenticate again")
)

// Server is a TCP server that exposes the SchemaSpec engine, one statement
// per line.
type Server struct {
	listener   net.Listener
	instance   *SchemaSpec.Instance
	identity   core.Identity
	authConfig *AuthConfig
	tlsEnabled bool
	logger     *zap.Logger

	mu     sync.Mutex // serializes engine access
	done   chan struct{}
	wg     sync.WaitGroup
	connMu sync.Mutex
	conns  map[string]net.Conn
}

// NewServer creates a server that attributes every snapshot to identity.
func NewServer(instance *SchemaSpec.Instance, identity core.Identity, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Server{
		instance: instance,
		identity: identity,
		logger:   logger,
		done:     make(chan struct{}),
		conns:    make(map[string]net.Conn),
	}
}

// NewServerWithAuth creates a server that requires each connection to
// authenticate; snapshots are attributed to the token's identity.
func NewServerWithAuth(instance *SchemaSpec.Instance, authConfig *AuthConfig, logger *zap.Logger) *Server {
	server := NewServer(instance, core.Identity{}, logger)
	server.authConfig = authConfig
	return server
}

// Start begins listening for connections on the specified address.
func (s *Server) Start(addr string) error {
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	s.serve(listener)
	return nil
}

// StartTLS begins listening for TLS connections on the specified address.
func (s *Server) StartTLS(addr, certFile, keyFile string) error {
	cert, err := tls.LoadX509KeyPair(certFile, keyFile)
	if err != nil {
		return fmt.Errorf("failed to load TLS certificate: %w", err)
	}

	listener, err := tls.Listen("tcp", addr, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
	if err != nil {
		return fmt.Errorf("failed to start TLS server: %w", err)
	}
	s.tlsEnabled = true
	s.serve(listener)
	return nil
}

func (s *Server) serve(listener net.Listener) {
	s.listener = listener
	s.logger.Info("Server listening",
		zap.String("addr", listener.Addr().String()),
		zap.Bool("tls", s.tlsEnabled),
		zap.Bool("auth", s.authRequired()))

	s.wg.Add(1)
	go s.acceptLoop()
}

// TLSEnabled reports whether the server was started with StartTLS.
func (s *Server) TLSEnabled() bool {
	return s.tlsEnabled
}

// Stop closes the listener and every open connection, then waits for the
// handlers to return.
func (s *Server) Stop() error {
	close(s.done)
	if s.listener != nil {
		s.listener.Close()
	}

	s.connMu.Lock()
	for _, conn := range s.conns {
		conn.Close()
	}
	s.connMu.Unlock()

	s.wg.Wait()
	return nil
}

// Addr returns the server's listening address.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

func (s *Server) authRequired() bool {
	return s.authConfig != nil && s.authConfig.Enabled
}

func (s *Server) acceptLoop() {
	defer s.wg.Done()

	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.done:
				return
			default:
				s.logger.Warn("Accept error", zap.Error(err))
				continue
			}
		}

		id := uuid.NewString()
		s.connMu.Lock()
		s.conns[id] = conn
		s.connMu.Unlock()

		s.wg.Add(1)
		go s.handleConnection(id, conn)
	}
}

func (s *Server) handleConnection(id string, conn net.Conn) {
	defer s.wg.Done()
	defer func() {
		s.connMu.Lock()
		delete(s.conns, id)
		s.connMu.Unlock()
		conn.Close()
	}()

	logger := s.logger.With(zap.String("conn", id), zap.String("remote", conn.RemoteAddr().String()))
	logger.Info("Client connected")

	state := &ConnectionState{id: id}
	reader := bufio.NewReader(conn)

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err != io.EOF {
				select {
				case <-s.done:
				default:
					logger.Debug("Read error", zap.Error(err))
				}
			}
			return
		}

		query := strings.TrimSpace(parseLine(strings.TrimSpace(line)))
		if query == "" {
			continue
		}

		lower := strings.ToLower(query)
		if lower == "quit" || lower == "exit" {
			logger.Info("Client disconnected")
			return
		}

		var response Response
		if strings.HasPrefix(strings.ToUpper(query), "AUTH ") {
			response = s.handleAuth(query, state)
		} else {
			response = s.handleStatement(query, state, logger)
		}

		data, err := EncodeResponse(response)
		if err != nil {
			logger.Error("Failed to encode response", zap.Error(err))
			continue
		}

		if _, err := conn.Write(data); err != nil {
			logger.Debug("Write error", zap.Error(err))
			return
		}
	}
}

func (s *Server) handleStatement(query string, state *ConnectionState, logger *zap.Logger) Response {
	identity := s.identity
	if s.authRequired() {
		if !state.IsAuthenticated() {
			return errorResponse("", ErrAuthRequired)
		}
		if !state.tokenExpiry.IsZero() && time.Now().After(state.tokenExpiry) {
			state.authenticated = false
			return errorResponse("", ErrTokenExpired)
		}
		identity = *state.Identity()
	}

	logger.Debug("Executing statement", zap.String("query", query), zap.String("identity", identity.String()))
	return s.executeQuery(query, identity)
}

func (s *Server) executeQuery(query string, identity core.Identity) Response {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.instance.Engine(identity).ExecuteContext(context.Background(), query)
	if err != nil {
		return errorResponse("", err)
	}

	switch r := result.(type) {
	case db.QueryResult:
		data, _ := json.Marshal(QueryResponse{
			Columns:     r.Columns,
			Data:        r.Data,
			RecordsRead: r.RecordsRead,
			TimeMs:      r.ExecutionTimeSec * 1000,
		})
		return Response{Success: true, Type: "query", Result: data}

	case db.CommitResult:
		data, _ := json.Marshal(CommitResponse{
			Transaction:      r.Transaction.Id,
			Unchanged:        r.Unchanged,
			DatabasesWritten: r.DatabasesWritten,
			TablesWritten:    r.TablesWritten,
			ColumnsWritten:   r.ColumnsWritten,
			TimeMs:           r.ExecutionTimeSec * 1000,
		})
		return Response{Success: true, Type: "commit", Result: data}

	default:
		return Response{Success: true, Type: "unknown"}
	}
}
