package main

import (
	"context"
	"encoding/hex"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/chzyer/readline"
	"github.com/google/subcommands"

	"github.com/JesseCoretta/go-asn1kit"
	"github.com/JesseCoretta/go-asn1kit/codec/ber"
	"github.com/JesseCoretta/go-asn1kit/internal/trace"
)

/*
shellCmd implements `asn1kit shell`: an interactive line-editing REPL
over chzyer/readline (history persisted to ~/.asn1kit-history.txt),
the way informatter-nilan's own repl command loops over stdin, but with
line editing/history instead of a bare bufio.Scanner.

The shell accumulates module text across `:load <file>` commands,
recompiling into a *Specification on `:compile <codec>`, encodes a
JER-literal value against `:encode <Type> <jer-literal>`, and dumps a
raw TLV's identifier octet against `:inspect <hex-octets>` — deliberately
minimal, matching spec.md §6.2's framing that the shell is "not where
the interesting engineering is".
*/
type shellCmd struct {
	verbose int
}

func (*shellCmd) Name() string     { return "shell" }
func (*shellCmd) Synopsis() string { return "interactive ASN.1 compile/encode session" }
func (*shellCmd) Usage() string {
	return `shell:
  Start an interactive session. Commands:
    :load <file>                   read and accumulate ASN.1 module text
    :compile <codec>               compile accumulated modules under a codec
    :types                         list compiled type names
    :encode <Type> <jer-literal>   encode a JER literal value as <Type>
    :inspect <hex-octets>          decode one TLV's identifier octet
    :quit                          exit
`
}

func (s *shellCmd) SetFlags(f *flag.FlagSet) {
	f.IntVar(&s.verbose, "verbose", 0, "log verbosity: 0, 1, or 2")
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".asn1kit-history.txt"
	}
	return filepath.Join(home, ".asn1kit-history.txt")
}

func (s *shellCmd) Execute(_ context.Context, _ *flag.FlagSet, _ ...interface{}) subcommands.ExitStatus {
	trace.SetLevel(s.verbose)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "asn1kit> ",
		HistoryFile:     historyPath(),
		InterruptPrompt: "^C",
		EOFPrompt:       ":quit",
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return subcommands.ExitFailure
	}
	defer rl.Close()

	var srcs []asn1kit.Source
	var spec *asn1kit.Specification

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		}
		if err == io.EOF {
			return subcommands.ExitSuccess
		}
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return subcommands.ExitFailure
		}

		switch {
		case line == ":quit":
			return subcommands.ExitSuccess
		case line == ":types":
			if spec == nil {
				fmt.Fprintln(os.Stdout, "nothing compiled yet")
				continue
			}
			for _, n := range spec.Types() {
				fmt.Fprintln(os.Stdout, n)
			}
		case hasCommand(line, ":load "):
			path := line[len(":load "):]
			b, err := os.ReadFile(path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			srcs = append(srcs, asn1kit.SourceFile(path, string(b)))
			fmt.Fprintf(os.Stdout, "loaded %s\n", path)
		case hasCommand(line, ":compile "):
			codecName := line[len(":compile "):]
			codec, err := asn1kit.ParseCodec(codecName)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			mods, err := asn1kit.Parse(srcs...)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			spec, err = asn1kit.Compile(mods, codec)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			fmt.Fprintf(os.Stdout, "compiled %d type(s) under %s\n", len(spec.Types()), codec)
		case hasCommand(line, ":encode "):
			if spec == nil {
				fmt.Fprintln(os.Stdout, "nothing compiled yet")
				continue
			}
			typeName, literal, ok := splitTwo(line[len(":encode "):])
			if !ok {
				fmt.Fprintln(os.Stdout, "usage: :encode <Type> <jer-literal>")
				continue
			}
			out, err := encodeLiteral(spec, typeName, literal)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			fmt.Fprintf(os.Stdout, "% X\n", out)
		case hasCommand(line, ":inspect "):
			octets, err := hex.DecodeString(stripSpaces(line[len(":inspect "):]))
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			tlv, err := ber.NewCursor(ber.BER, octets).ReadTLV()
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				continue
			}
			name := asn1kit.TagName(tlv.Class, tlv.Tag)
			if name == "" {
				name = "(non-universal)"
			}
			fmt.Fprintf(os.Stdout, "class=%d tag=%d %s %s, %d content octet(s)\n",
				tlv.Class, tlv.Tag, name, asn1kit.CompoundNames[tlv.Compound], len(tlv.Value))
		default:
			fmt.Fprintf(os.Stdout, "unrecognized command: %s\n", line)
		}
	}
}

func hasCommand(line, prefix string) bool {
	return len(line) >= len(prefix) && line[:len(prefix)] == prefix
}

// splitTwo divides "Type rest-of-line" on the first space, the literal
// itself being free to contain further spaces (a JER object literal
// routinely does).
func splitTwo(s string) (first, rest string, ok bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			return s[:i], s[i+1:], true
		}
	}
	return "", "", false
}

func stripSpaces(s string) string {
	b := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		if s[i] != ' ' {
			b = append(b, s[i])
		}
	}
	return string(b)
}

// encodeLiteral parses literal as a JER value shaped for typeName, then
// re-encodes it under spec's own compiled codec.
func encodeLiteral(spec *asn1kit.Specification, typeName, literal string) ([]byte, error) {
	v, err := spec.ParseLiteral(typeName, []byte(literal))
	if err != nil {
		return nil, err
	}
	return spec.Encode(typeName, v)
}
