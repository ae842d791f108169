// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bufio"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"unsafe"

	"github.com/cockroachdb/errors"

	arena "github.com/wundergraph/go-pool-arena"
)

// config holds the settings shared by every arena a session creates.
type config struct {
	JSON    bool
	Check   bool
	Zeroing bool
	Mmap    bool
	Logger  *slog.Logger
}

func (c config) options() []arena.FixedArenaOption {
	opts := []arena.FixedArenaOption{arena.WithLogger(c.Logger)}
	if c.Zeroing {
		opts = append(opts, arena.WithZeroing())
	}
	if c.Mmap {
		opts = append(opts, arena.WithMmap())
	}
	return opts
}

// session replays script commands against one arena. Malformed commands stop
// the script; allocator failures are reported on out and the script goes on.
type session struct {
	out   io.Writer
	cfg   config
	arena *arena.FixedArena
	names map[string]unsafe.Pointer
}

func newSession(out io.Writer, cfg config) *session {
	if cfg.Logger == nil {
		cfg.Logger = slog.New(slog.DiscardHandler)
	}
	return &session{
		out:   out,
		cfg:   cfg,
		names: make(map[string]unsafe.Pointer),
	}
}

// Run executes every line of r. It releases the arena when done unless the
// script destroyed it.
func (s *session) Run(r io.Reader) error {
	defer func() {
		if s.arena != nil {
			s.arena.Release()
		}
	}()

	sc := bufio.NewScanner(r)
	lineNo := 0
	for sc.Scan() {
		lineNo++
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if err := s.exec(line); err != nil {
			return errors.Wrapf(err, "line %d", lineNo)
		}
		if s.cfg.Check && s.arena != nil {
			if err := s.arena.Validate(); err != nil {
				return errors.Wrapf(err, "line %d: invariant violated", lineNo)
			}
		}
	}
	return errors.Wrap(sc.Err(), "read script")
}

func (s *session) exec(line string) error {
	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)
	args := strings.Fields(rest)

	if cmd != "create" && s.arena == nil {
		return errors.Newf("%s: no arena, create one first", cmd)
	}

	switch cmd {
	case "create":
		if s.arena != nil {
			return errors.New("create: arena already exists")
		}
		if len(args) != 1 {
			return errors.New("usage: create <capacity>")
		}
		capacity, err := positive(args[0])
		if err != nil {
			return errors.Wrap(err, "create")
		}
		s.arena = arena.NewFixedArena(capacity, s.cfg.options()...)
		return nil

	case "alloc":
		if len(args) != 2 {
			return errors.New("usage: alloc <name> <size>")
		}
		size, err := positive(args[1])
		if err != nil {
			return errors.Wrap(err, "alloc")
		}
		ptr, err := s.arena.Allocate(size)
		if err != nil {
			return s.report(line, err)
		}
		s.names[args[0]] = ptr
		return s.printf("%s = %d\n", args[0], s.offset(ptr))

	case "free":
		if len(args) != 1 {
			return errors.New("usage: free <name>")
		}
		if err := s.arena.Free(s.names[args[0]]); err != nil {
			return s.report(line, err)
		}
		delete(s.names, args[0])
		return nil

	case "resize":
		if len(args) != 2 {
			return errors.New("usage: resize <name> <size>")
		}
		size, err := positive(args[1])
		if err != nil {
			return errors.Wrap(err, "resize")
		}
		ptr, err := s.arena.Resize(s.names[args[0]], size)
		if err != nil {
			return s.report(line, err)
		}
		s.names[args[0]] = ptr
		return s.printf("%s = %d\n", args[0], s.offset(ptr))

	case "write":
		name, text, _ := strings.Cut(rest, " ")
		if name == "" {
			return errors.New("usage: write <name> <text>")
		}
		b, err := s.arena.Bytes(s.names[name])
		if err != nil {
			return s.report(line, err)
		}
		if n := copy(b, text); n < len(text) {
			return s.printf("%s: wrote %d of %d bytes\n", name, n, len(text))
		}
		return nil

	case "read":
		if len(args) != 1 {
			return errors.New("usage: read <name>")
		}
		b, err := s.arena.Bytes(s.names[args[0]])
		if err != nil {
			return s.report(line, err)
		}
		return s.printf("%s: %q\n", args[0], b)

	case "print":
		if s.cfg.JSON {
			return s.arena.WriteJSON(s.out)
		}
		if err := s.arena.WriteActive(s.out); err != nil {
			return err
		}
		return s.arena.WriteAvailable(s.out)

	case "stats":
		return writeStats(s.out, s.arena.Stats())

	case "destroy":
		if err := s.arena.Destroy(); err != nil {
			return s.report(line, err)
		}
		s.arena = nil
		clear(s.names)
		return nil
	}
	return errors.Newf("unknown command %q", cmd)
}

// report prints an allocator failure without stopping the script.
func (s *session) report(line string, err error) error {
	return s.printf("%s: %v\n", line, err)
}

func (s *session) printf(format string, args ...any) error {
	_, err := fmt.Fprintf(s.out, format, args...)
	return err
}

func (s *session) offset(ptr unsafe.Pointer) int {
	off, _ := s.arena.Offset(ptr)
	return off
}

func positive(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid number %q", arg)
	}
	if n <= 0 {
		return 0, errors.Newf("%d is not positive", n)
	}
	return n, nil
}
