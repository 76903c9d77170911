package main

import (
	"log"
	"os"

	"github.com/tliron/commonlog"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"waveling/internal/langserver"
)

const lsName = "waveling"

var version = "0.0.1"

func main() {
	commonlog.Configure(1, nil)

	h := langserver.NewHandler()

	handler := protocol.Handler{
		Initialize:                     h.Initialize,
		Initialized:                    h.Initialized,
		Shutdown:                       h.Shutdown,
		TextDocumentDidOpen:            h.TextDocumentDidOpen,
		TextDocumentDidClose:           h.TextDocumentDidClose,
		TextDocumentDidChange:          h.TextDocumentDidChange,
		TextDocumentSemanticTokensFull: h.TextDocumentSemanticTokensFull,
	}

	s := server.NewServer(&handler, lsName, false)

	log.Printf("starting waveling-lsp %s\n", version)
	if err := s.RunStdio(); err != nil {
		log.Println("waveling-lsp:", err)
		os.Exit(1)
	}
}
