package rag

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/rs/zerolog"
)

// State of the interactive session.
type State int

const (
	Running State = iota
	Exited
)

const (
	exitSentinel = "exit"
	separator    = "##################################################"
)

// Session drives the interactive read-query-answer loop as an explicit
// two-state machine over an injected reader and writer, so the loop logic is
// testable with a scripted input sequence.
type Session struct {
	engine *RAG
	in     *bufio.Scanner
	out    io.Writer
	state  State
	logger zerolog.Logger
}

func NewSession(engine *RAG, in io.Reader, out io.Writer, logger zerolog.Logger) *Session {
	return &Session{
		engine: engine,
		in:     bufio.NewScanner(in),
		out:    out,
		state:  Running,
		logger: logger,
	}
}

func (s *Session) State() State { return s.state }

// Run loops until the exit sentinel or end of input. A failed turn is
// reported and the session keeps running; losing a healthy index over one
// transient service error is worse than showing the error.
func (s *Session) Run(ctx context.Context) {
	fmt.Fprintln(s.out, "Welcome to information retrieval LLM! To exit, type `exit`")
	for s.state == Running {
		fmt.Fprintln(s.out, "Ask something")
		if !s.in.Scan() {
			s.state = Exited
			return
		}
		s.step(ctx, s.in.Text())
	}
}

// step processes a single line of input and returns with the session either
// still Running or Exited.
func (s *Session) step(ctx context.Context, input string) {
	if input == exitSentinel {
		fmt.Fprintln(s.out, "Goodbye!")
		s.state = Exited
		s.logger.Info().Msg("session ended")
		return
	}

	sections, err := s.engine.Retrieve(ctx, input)
	if err != nil {
		s.logger.Error().Err(err).Str("question", input).Msg("retrieval failed")
		fmt.Fprintf(s.out, "Could not answer that question: %v\n", err)
		return
	}
	contextBlock := FormatSections(sections)
	fmt.Fprintf(s.out, "Question: %s\nContext:\n%s\n", input, contextBlock)

	if !s.engine.GeneratesAnswers() {
		return
	}

	fmt.Fprintf(s.out, "%s\nElaborating your prompt...\n", separator)
	answer, err := s.engine.Answer(ctx, input, sections)
	if err != nil {
		s.logger.Error().Err(err).Str("question", input).Msg("generation failed")
		fmt.Fprintf(s.out, "Could not answer that question: %v\n", err)
		return
	}
	fmt.Fprintln(s.out, separator)
	fmt.Fprintf(s.out, "AI BOT reply:\n %s\n", answer)
}
