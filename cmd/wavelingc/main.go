// Command wavelingc parses a fixture-language source, runs it through the
// structural and type-inference passes, lowers it to the instruction-level
// IR, and executes one block against supplied (or zeroed) input data,
// printing every output buffer.
package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/fatih/color"

	"waveling/internal/fixturelang"
	"waveling/internal/interp"
	"waveling/internal/lower"
	"waveling/internal/passes"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Println("Usage: wavelingc <file.fx> <block-size> <sample-rate> [-in name=v1,v2,...]...")
		os.Exit(1)
	}

	path := os.Args[1]
	blockSize, err := strconv.Atoi(os.Args[2])
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid block size %q: %s\n", os.Args[2], err)
		os.Exit(1)
	}
	sampleRate, err := strconv.ParseInt(os.Args[3], 10, 64)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid sample rate %q: %s\n", os.Args[3], err)
		os.Exit(1)
	}
	inputs, err := parseInputFlags(os.Args[4:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}

	source, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to read file: %s\n", err)
		os.Exit(1)
	}

	file, err := fixturelang.Parse(path, string(source))
	if err != nil {
		reportParseError(string(source), err)
		os.Exit(1)
	}

	prog, diags := fixturelang.Lower(file)
	if diags != nil {
		for _, d := range diags {
			color.Red("error: %s", d.Message)
		}
		os.Exit(1)
	}

	if err := passes.InsertStartFinalEdges(prog); err != nil {
		color.Red("error: %s", err)
		os.Exit(1)
	}
	tm, err := passes.InferTypes(prog)
	if err != nil {
		color.Red("error: %s", err)
		os.Exit(1)
	}

	ctx, err := lower.FromProgram(prog, tm, blockSize, sampleRate)
	if err != nil {
		color.Red("error: %s", err)
		os.Exit(1)
	}

	m, err := interp.NewInterpreter(ctx)
	if err != nil {
		color.Red("error: %s", err)
		os.Exit(1)
	}

	for i, in := range prog.Inputs {
		block, ok := inputs[in.Name]
		if !ok {
			block = make([]float32, blockSize*in.Type.Width)
		}
		if err := m.WriteInput(i, block); err != nil {
			color.Red("error: writing input %s: %s", in.Name, err)
			os.Exit(1)
		}
	}

	if err := m.RunBlock(); err != nil {
		color.Red("error: %s", err)
		os.Exit(1)
	}

	for i, out := range prog.Outputs {
		block, err := m.ReadOutput(i)
		if err != nil {
			color.Red("error: reading output %s: %s", out.Name, err)
			os.Exit(1)
		}
		fmt.Printf("%s: %v\n", out.Name, block)
	}

	color.Green("✓ ran %s for one %d-sample block", path, blockSize)
}

// parseInputFlags turns "-in name=v1,v2,..." arguments into named float32
// buffers.
func parseInputFlags(args []string) (map[string][]float32, error) {
	result := map[string][]float32{}
	for i := 0; i < len(args); i++ {
		if args[i] != "-in" {
			return nil, fmt.Errorf("unrecognized argument %q", args[i])
		}
		i++
		if i >= len(args) {
			return nil, fmt.Errorf("-in requires a name=v1,v2,... argument")
		}
		name, values, ok := strings.Cut(args[i], "=")
		if !ok {
			return nil, fmt.Errorf("malformed -in argument %q", args[i])
		}
		var block []float32
		for _, raw := range strings.Split(values, ",") {
			v, err := strconv.ParseFloat(raw, 32)
			if err != nil {
				return nil, fmt.Errorf("invalid sample %q for input %s: %w", raw, name, err)
			}
			block = append(block, float32(v))
		}
		result[name] = block
	}
	return result, nil
}

// reportParseError prints a caret-style parse error message.
func reportParseError(src string, err error) {
	var pe participle.Error
	if !errors.As(err, &pe) {
		color.Red("unexpected error: %s", err)
		return
	}

	pos := pe.Position()
	lines := strings.Split(src, "\n")
	if pos.Line <= 0 || pos.Line > len(lines) {
		color.Red("syntax error at unknown location: %s", err)
		return
	}

	line := lines[pos.Line-1]
	caret := strings.Repeat(" ", pos.Column-1) + "^"

	color.Red("syntax error in %s at line %d, column %d:", pos.Filename, pos.Line, pos.Column)
	fmt.Println(line)
	color.HiRed(caret)
	fmt.Printf("-> %s\n", pe.Message())
}
