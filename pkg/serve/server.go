// Package serve runs a scanner core as a long-lived NDJSON service: one
// JSON request per input line, one JSON response per output line.
package serve

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"io"

	"github.com/praetorian-inc/glossa/pkg/logger"
	"github.com/praetorian-inc/glossa/pkg/scanner"
)

// Version is the protocol version announced in the ready greeting.
const Version = "1.0.0"

// Server answers requests read from in on out.
type Server struct {
	core    *scanner.Core
	encoder *json.Encoder
	decoder *json.Decoder
}

// NewServer creates a server around core.
func NewServer(core *scanner.Core, in io.Reader, out io.Writer) *Server {
	encoder := json.NewEncoder(out)
	encoder.SetEscapeHTML(false)
	return &Server{
		core:    core,
		encoder: encoder,
		decoder: json.NewDecoder(bufio.NewReader(in)),
	}
}

// Run greets the client and serves requests until the input ends, a
// "close" request arrives or ctx is cancelled.
func (s *Server) Run(ctx context.Context) error {
	s.respond("ready", ReadyData{Version: Version, Rules: s.core.RuleCount()})

	reqChan := make(chan Request, 1)
	errChan := make(chan error, 1)

	go func() {
		for {
			var req Request
			if err := s.decoder.Decode(&req); err != nil {
				errChan <- err
				return
			}
			select {
			case reqChan <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case err := <-errChan:
			// The reader may have queued a request before failing.
			select {
			case req := <-reqChan:
				if s.handle(req) {
					return nil
				}
			default:
			}
			if !errors.Is(err, io.EOF) {
				s.sendError("decode", err.Error())
			}
			return nil
		case req := <-reqChan:
			if s.handle(req) {
				return nil
			}
		}
	}
}

// handle answers one request and reports whether the server should stop.
func (s *Server) handle(req Request) bool {
	logger.Log.Debug("request", "type", req.Type)

	var (
		data any
		err  error
	)
	switch req.Type {
	case TypeTokenize:
		var p TokenizePayload
		if err = decodePayload(req.Payload, &p); err == nil {
			data, err = s.core.Tokenize(p.Content, p.Source)
		}
	case TypeTokenizeBatch:
		var p TokenizeBatchPayload
		if err = decodePayload(req.Payload, &p); err == nil {
			data, err = s.core.TokenizeBatch(p.Items)
		}
	case TypeMatch:
		var p MatchPayload
		if err = decodePayload(req.Payload, &p); err == nil {
			data, err = s.core.Match(p.Patterns, p.Text, p.Offset)
		}
	case TypeFindings:
		data, err = s.core.Findings()
	case TypeClose:
		return true
	default:
		s.sendError("unknown", "unknown request type: "+req.Type)
		return false
	}

	if err != nil {
		s.sendError(req.Type, err.Error())
		return false
	}
	s.respond(req.Type, data)
	return false
}

func decodePayload(payload json.RawMessage, v any) error {
	if len(payload) == 0 {
		return errors.New("missing payload")
	}
	return json.Unmarshal(payload, v)
}

func (s *Server) respond(reqType string, data any) {
	raw, err := json.Marshal(data)
	if err != nil {
		s.sendError(reqType, err.Error())
		return
	}
	s.write(Response{Success: true, Type: reqType, Data: raw})
}

func (s *Server) sendError(reqType, msg string) {
	s.write(Response{Success: false, Type: reqType, Error: msg})
}

func (s *Server) write(resp Response) {
	if err := s.encoder.Encode(resp); err != nil {
		logger.Log.Error("writing response", "type", resp.Type, "error", err)
	}
}
