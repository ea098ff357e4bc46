package lsp

import (
	"encoding/json"

	"github.com/phyten/humanpp/internal/decorate"
)

const (
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
	codeInvalidRequest = -32600
)

// Command identifiers accepted by workspace/executeCommand.
const (
	CommandToggle  = "humanpp.toggle"
	CommandRefresh = "humanpp.refresh"
)

// Notification methods sent to the client.
const (
	MethodDefineStyles   = "humanpp/defineStyles"
	MethodSetDecorations = "humanpp/setDecorations"
	MethodSetAnnotations = "humanpp/setAnnotations"
)

type rpcMessage struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type initializeParams struct {
	RootURI               string          `json:"rootUri,omitempty"`
	RootPath              string          `json:"rootPath,omitempty"`
	InitializationOptions json.RawMessage `json:"initializationOptions,omitempty"`
}

type initializeResult struct {
	Capabilities serverCapabilities `json:"capabilities"`
	ServerInfo   serverInfo         `json:"serverInfo"`
}

type serverInfo struct {
	Name    string `json:"name"`
	Version string `json:"version,omitempty"`
}

type serverCapabilities struct {
	TextDocumentSync       textDocumentSyncOptions `json:"textDocumentSync"`
	ExecuteCommandProvider executeCommandOptions   `json:"executeCommandProvider"`
}

type textDocumentSyncOptions struct {
	OpenClose bool `json:"openClose"`
	Change    int  `json:"change"`
}

type executeCommandOptions struct {
	Commands []string `json:"commands"`
}

type textDocumentItem struct {
	URI        string `json:"uri"`
	LanguageID string `json:"languageId"`
	Version    int    `json:"version"`
	Text       string `json:"text"`
}

type textDocumentIdentifier struct {
	URI string `json:"uri"`
}

type versionedTextDocumentIdentifier struct {
	URI     string `json:"uri"`
	Version int    `json:"version"`
}

type position struct {
	Line      int `json:"line"`
	Character int `json:"character"`
}

type lspRange struct {
	Start position `json:"start"`
	End   position `json:"end"`
}

type textDocumentContentChangeEvent struct {
	Range *lspRange `json:"range,omitempty"`
	Text  string    `json:"text"`
}

type didOpenTextDocumentParams struct {
	TextDocument textDocumentItem `json:"textDocument"`
}

type didChangeTextDocumentParams struct {
	TextDocument   versionedTextDocumentIdentifier  `json:"textDocument"`
	ContentChanges []textDocumentContentChangeEvent `json:"contentChanges"`
}

type didCloseTextDocumentParams struct {
	TextDocument textDocumentIdentifier `json:"textDocument"`
}

type didFocusParams struct {
	URI string `json:"uri"`
}

type lspDiagnostic struct {
	Range    lspRange `json:"range"`
	Severity int      `json:"severity,omitempty"`
	Message  string   `json:"message"`
}

type diagnosticsParams struct {
	URI         string          `json:"uri"`
	Diagnostics []lspDiagnostic `json:"diagnostics"`
}

type didChangeConfigurationParams struct {
	Settings json.RawMessage `json:"settings"`
}

type executeCommandParams struct {
	Command   string            `json:"command"`
	Arguments []json.RawMessage `json:"arguments,omitempty"`
}

type toggleResult struct {
	Enabled bool `json:"enabled"`
}

type refreshResult struct {
	Refreshed bool `json:"refreshed"`
}

type defineStylesParams struct {
	URI    string              `json:"uri"`
	Styles []decorate.StyleDef `json:"styles"`
}

type setDecorationsParams struct {
	URI    string            `json:"uri"`
	Key    decorate.StyleKey `json:"key"`
	Ranges []lspRange        `json:"ranges"`
}

type annotation struct {
	Position position `json:"position"`
	Text     string   `json:"text"`
	Severity int      `json:"severity"`
}

type setAnnotationsParams struct {
	URI         string            `json:"uri"`
	Key         decorate.StyleKey `json:"key"`
	Annotations []annotation      `json:"annotations"`
}
