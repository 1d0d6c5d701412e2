package intake

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"net"
	"strings"

	"github.com/warescan/warescan/internal/scan"
)

// ActorResolver turns a session token into the actor attributed to reads
// from that connection.
type ActorResolver interface {
	ResolveActor(ctx context.Context, token string) (scan.Actor, error)
}

// LineSource accepts newline-terminated reads over TCP from hardware
// scanners (keyboard-wedge devices emit the code's keystrokes followed by
// Enter). The first line of a connection must be "AUTH <token>"; every
// following non-blank line is submitted as one read and acknowledged with
// a one-line outcome so the device side can log it.
type LineSource struct {
	addr     string
	pipeline *Pipeline
	resolver ActorResolver
}

// NewLineSource creates a LineSource listening on addr once started.
func NewLineSource(addr string, pipeline *Pipeline, resolver ActorResolver) *LineSource {
	return &LineSource{addr: addr, pipeline: pipeline, resolver: resolver}
}

// Listen serves scanner connections until ctx is cancelled.
func (s *LineSource) Listen(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("listening on %s: %w", s.addr, err)
	}

	go func() {
		<-ctx.Done()
		ln.Close()
	}()

	slog.Info("scanner listener started", "addr", s.addr)
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				slog.Info("scanner listener stopped")
				return nil
			}
			slog.Warn("scanner accept failed", "error", err)
			continue
		}
		go s.serve(ctx, conn)
	}
}

func (s *LineSource) serve(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	remote := conn.RemoteAddr().String()
	scanner := bufio.NewScanner(conn)

	actor, ok := s.handshake(ctx, conn, scanner)
	if !ok {
		slog.Warn("scanner connection rejected", "remote", remote)
		return
	}

	slog.Info("scanner connected", "remote", remote, "actor", actor.ID)

	for scanner.Scan() {
		code := strings.TrimSpace(scanner.Text())
		if code == "" {
			continue
		}

		res := s.pipeline.Submit(ctx, Read{Code: code, Actor: actor, Source: "scanner"})
		fmt.Fprintf(conn, "%s\n", ackLine(code, res))
	}

	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		slog.Warn("scanner connection error", "remote", remote, "error", err)
	}
}

func (s *LineSource) handshake(ctx context.Context, conn net.Conn, scanner *bufio.Scanner) (scan.Actor, bool) {
	if !scanner.Scan() {
		return scan.Actor{}, false
	}

	line := strings.TrimSpace(scanner.Text())
	token, found := strings.CutPrefix(line, "AUTH ")
	if !found {
		fmt.Fprintln(conn, "ERR expected AUTH <token>")
		return scan.Actor{}, false
	}

	actor, err := s.resolver.ResolveActor(ctx, strings.TrimSpace(token))
	if err != nil {
		fmt.Fprintln(conn, "ERR invalid token")
		return scan.Actor{}, false
	}

	fmt.Fprintln(conn, "OK")
	return actor, true
}

func ackLine(code string, res Result) string {
	switch {
	case res.Err != nil:
		return "ERR " + code
	case res.Suppressed:
		return "DUP " + code
	case res.Outcome.Action == scan.ActionCreated:
		return "CREATED " + code
	default:
		return "UPDATED " + code
	}
}
