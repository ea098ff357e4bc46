// Package lsp bridges the scheduler to an editor over Content-Length framed
// JSON-RPC on stdio. Decorations travel as humanpp/* notifications.
package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/phyten/humanpp/internal/config"
	"github.com/phyten/humanpp/internal/schedule"
)

var (
	// ErrExit signals a graceful shutdown after receiving "exit".
	ErrExit = errors.New("lsp exit")
	// ErrExitWithoutShutdown signals an "exit" without a preceding "shutdown".
	ErrExitWithoutShutdown = errors.New("lsp exit without shutdown")
)

// Store is the configuration the server reads, persists to, and overrides
// with client settings. *config.Store satisfies it.
type Store interface {
	schedule.Store
	Override(layer config.Config) (config.Settings, error)
}

// ServerOptions configures the server. Zero values use real timers and discard logs.
type ServerOptions struct {
	Clock   schedule.Clock
	Logger  *log.Logger
	Version string
}

// Server handles one client connection.
type Server struct {
	in     *bufio.Reader
	out    *bufio.Writer
	sendMu sync.Mutex

	mu                sync.Mutex
	docs              map[string]*document
	shutdownRequested bool

	store   Store
	diags   *diagnosticStore
	hub     *schedule.Hub
	logger  *log.Logger
	version string
}

// NewServer constructs a server reading from in and writing to out.
func NewServer(in io.Reader, out io.Writer, store Store, opts ServerOptions) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	s := &Server{
		in:      bufio.NewReader(in),
		out:     bufio.NewWriter(out),
		docs:    make(map[string]*document),
		store:   store,
		diags:   &diagnosticStore{},
		logger:  logger,
		version: opts.Version,
	}
	s.hub = schedule.NewHub(store, schedule.Options{
		Clock:       opts.Clock,
		Logger:      logger,
		Diagnostics: s.diags,
	})
	return s
}

// Run serves requests until exit, EOF, or ctx is done.
func (s *Server) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		payload, err := readMessage(s.in)
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		var msg rpcMessage
		if err := json.Unmarshal(payload, &msg); err != nil {
			s.logger.Printf("failed to parse message: %v", err)
			continue
		}
		if msg.Method == "" {
			continue
		}
		if err := s.handleMessage(&msg); err != nil {
			return err
		}
	}
}

func (s *Server) handleMessage(msg *rpcMessage) error {
	switch msg.Method {
	case "initialize":
		return s.handleInitialize(msg)
	case "initialized":
		return nil
	case "shutdown":
		return s.handleShutdown(msg)
	case "exit":
		s.mu.Lock()
		requested := s.shutdownRequested
		s.mu.Unlock()
		if requested {
			return ErrExit
		}
		return ErrExitWithoutShutdown
	case "textDocument/didOpen":
		return s.handleDidOpen(msg)
	case "textDocument/didChange":
		return s.handleDidChange(msg)
	case "textDocument/didClose":
		return s.handleDidClose(msg)
	case "humanpp/didFocus":
		return s.handleDidFocus(msg)
	case "humanpp/diagnostics":
		return s.handleDiagnostics(msg)
	case "workspace/didChangeConfiguration":
		return s.handleDidChangeConfiguration(msg)
	case "workspace/executeCommand":
		return s.handleExecuteCommand(msg)
	default:
		if len(msg.ID) > 0 {
			return s.sendError(msg.ID, codeMethodNotFound, "method not found")
		}
		return nil
	}
}

func (s *Server) handleInitialize(msg *rpcMessage) error {
	var params initializeParams
	if len(msg.Params) > 0 {
		if err := json.Unmarshal(msg.Params, &params); err != nil {
			return s.sendError(msg.ID, codeInvalidParams, "invalid params")
		}
	}
	if len(params.InitializationOptions) > 0 {
		if err := s.applySettings(params.InitializationOptions); err != nil {
			s.logger.Printf("initializationOptions: %v", err)
		}
	}
	result := initializeResult{
		Capabilities: serverCapabilities{
			TextDocumentSync: textDocumentSyncOptions{OpenClose: true, Change: 2},
			ExecuteCommandProvider: executeCommandOptions{
				Commands: []string{CommandToggle, CommandRefresh},
			},
		},
		ServerInfo: serverInfo{Name: "humanpp", Version: s.version},
	}
	return s.sendResponse(msg.ID, result)
}

func (s *Server) handleShutdown(msg *rpcMessage) error {
	s.mu.Lock()
	s.shutdownRequested = true
	s.mu.Unlock()
	for _, id := range s.hub.IDs() {
		s.hub.Close(id)
	}
	return s.sendResponse(msg.ID, nil)
}

func (s *Server) handleDidOpen(msg *rpcMessage) error {
	var params didOpenTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	if canonicalURI(params.TextDocument.URI) == "" {
		return nil
	}
	doc := newDocument(s, params.TextDocument)
	s.mu.Lock()
	s.docs[doc.uri] = doc
	s.mu.Unlock()
	s.hub.Open(doc)
	return nil
}

func (s *Server) handleDidChange(msg *rpcMessage) error {
	var params didChangeTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	doc := s.docs[uri]
	s.mu.Unlock()
	if doc == nil {
		return nil
	}
	doc.apply(params.ContentChanges)
	s.hub.TextChanged(uri)
	return nil
}

func (s *Server) handleDidClose(msg *rpcMessage) error {
	var params didCloseTextDocumentParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.TextDocument.URI)
	s.mu.Lock()
	delete(s.docs, uri)
	s.mu.Unlock()
	s.diags.drop(uri)
	s.hub.Close(uri)
	return nil
}

func (s *Server) handleDidFocus(msg *rpcMessage) error {
	var params didFocusParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	s.hub.Focus(canonicalURI(params.URI))
	return nil
}

func (s *Server) handleDiagnostics(msg *rpcMessage) error {
	var params diagnosticsParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return err
	}
	uri := canonicalURI(params.URI)
	s.diags.put(uri, convertDiagnostics(params.Diagnostics))
	s.hub.DiagnosticsChanged(uri)
	return nil
}

func (s *Server) handleDidChangeConfiguration(msg *rpcMessage) error {
	if len(msg.Params) == 0 {
		return nil
	}
	var params didChangeConfigurationParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		s.logger.Printf("didChangeConfiguration: %v", err)
		return nil
	}
	if err := s.applySettings(params.Settings); err != nil {
		s.logger.Printf("didChangeConfiguration: %v", err)
		return nil
	}
	s.hub.ConfigChanged()
	return nil
}

// applySettings installs the client's settings as the host layer. The
// payload may be {"humanpp": {...}} or the bare section.
func (s *Server) applySettings(raw json.RawMessage) error {
	var payload map[string]any
	if err := json.Unmarshal(raw, &payload); err != nil {
		return err
	}
	if payload == nil {
		return nil
	}
	if section, ok := payload["humanpp"]; ok {
		m, ok := section.(map[string]any)
		if !ok {
			return fmt.Errorf("settings.humanpp: expected object, got %T", section)
		}
		payload = m
	}
	layer, err := config.DecodeMap(payload)
	if err != nil {
		return err
	}
	_, err = s.store.Override(layer)
	return err
}

func (s *Server) handleExecuteCommand(msg *rpcMessage) error {
	var params executeCommandParams
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		return s.sendError(msg.ID, codeInvalidParams, "invalid params")
	}
	switch params.Command {
	case CommandToggle:
		enabled, err := s.hub.Toggle()
		if err != nil {
			return s.sendError(msg.ID, codeInvalidRequest, err.Error())
		}
		return s.sendResponse(msg.ID, toggleResult{Enabled: enabled})
	case CommandRefresh:
		return s.sendResponse(msg.ID, refreshResult{Refreshed: s.hub.Refresh()})
	}
	return s.sendError(msg.ID, codeInvalidParams, fmt.Sprintf("unknown command: %s", params.Command))
}

func (s *Server) notify(method string, params any) {
	msg := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"params":  params,
	}
	if err := s.send(msg); err != nil {
		s.logger.Printf("%s: %v", method, err)
	}
}

func (s *Server) sendResponse(id json.RawMessage, result any) error {
	if len(id) == 0 {
		return nil
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"result":  result,
	}
	return s.send(msg)
}

func (s *Server) sendError(id json.RawMessage, code int, message string) error {
	if len(id) == 0 {
		return nil
	}
	msg := map[string]any{
		"jsonrpc": "2.0",
		"id":      id,
		"error":   rpcError{Code: code, Message: message},
	}
	return s.send(msg)
}

func (s *Server) send(msg any) error {
	payload, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	s.sendMu.Lock()
	defer s.sendMu.Unlock()
	if err := writeMessage(s.out, payload); err != nil {
		return err
	}
	return s.out.Flush()
}
