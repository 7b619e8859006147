// Package modelio parses the textual model-configuration format (§6.1):
// optional leading OPTION_NAME VALUE pairs, then a sequence of function
// sets, each starting with an X0/Y0 pair and containing one or more
// FUNCTION blocks with their parameter lines. The tokenizer is hand-rolled
// line scanning in the style of the teacher's FITS header reader, grounded
// on imfit's own config_file_parser.cpp for exact token semantics.
package modelio

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseErrorKind enumerates the small set of structural parse failures
// named in spec §7.
type ParseErrorKind int

const (
	ErrNoFunctionSection ParseErrorKind = iota // a parameter line appears before any FUNCTION block
	ErrNoFunctions                             // an X0/Y0 pair starts a set with zero FUNCTION blocks
	ErrIncompleteXYPair                        // X0 line not immediately followed by a Y0 line
	ErrBadParameterLine                        // malformed value, or LOW >= HIGH, or VALUE outside [LOW,HIGH]
)

func (k ParseErrorKind) String() string {
	switch k {
	case ErrNoFunctionSection:
		return "parameter line before any FUNCTION block"
	case ErrNoFunctions:
		return "function set has no FUNCTION blocks"
	case ErrIncompleteXYPair:
		return "X0 line not immediately followed by Y0"
	case ErrBadParameterLine:
		return "malformed parameter line"
	default:
		return "unknown parse error"
	}
}

// ParseError carries the original (uncompacted) source line number, per
// spec §7's parse-error contract.
type ParseError struct {
	Line int
	Kind ParseErrorKind
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("modelio: line %d: %s: %s", e.Line, e.Kind, e.Msg)
}

// Param is one fittable parameter: a name, initial value, and optional
// fixed/limit annotation.
type Param struct {
	Name      string
	Value     float64
	Fixed     bool
	HasLimits bool
	Low, High float64
}

// FuncBlock is one FUNCTION block: its registered name, optional label, and
// its ordered fittable parameters. None of the functions in this engine's
// registry (see the funcs package) declare non-fittable mode-selecting
// optional parameters, so unlike imfit's parser this type has no slot for
// them.
type FuncBlock struct {
	Name   string
	Label  string
	Params []Param
}

// FuncSet is one X0/Y0-anchored function set.
type FuncSet struct {
	X0, Y0 Param
	Funcs  []FuncBlock
}

// Config is a fully parsed model-configuration file.
type Config struct {
	Options map[string]string
	Sets    []FuncSet
}

// Parse reads a model-configuration file per spec §6.1.
func Parse(r io.Reader) (*Config, error) {
	cfg := &Config{Options: map[string]string{}}

	type rawLine struct {
		text string
		line int
	}
	var lines []rawLine
	scanner := bufio.NewScanner(r)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		text := scanner.Text()
		if idx := strings.IndexByte(text, '#'); idx >= 0 {
			text = text[:idx]
		}
		text = strings.TrimSpace(text)
		if text == "" {
			continue
		}
		lines = append(lines, rawLine{text, lineNo})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("modelio: %w", err)
	}

	i := 0
	// Leading OPTION_NAME VALUE pairs precede the first X0/FUNCTION line.
	for i < len(lines) {
		fields := strings.Fields(lines[i].text)
		if len(fields) == 0 {
			i++
			continue
		}
		if fields[0] == "X0" || fields[0] == "FUNCTION" {
			break
		}
		if len(fields) < 2 {
			return nil, &ParseError{lines[i].line, ErrBadParameterLine, "expected OPTION_NAME VALUE"}
		}
		cfg.Options[fields[0]] = fields[1]
		i++
	}

	var curSet *FuncSet
	var curFunc *FuncBlock
	for i < len(lines) {
		fields := strings.Fields(lines[i].text)
		switch {
		case fields[0] == "X0":
			if curSet != nil {
				if len(curSet.Funcs) == 0 {
					return nil, &ParseError{lines[i].line, ErrNoFunctions, "function set declared no FUNCTION blocks"}
				}
				cfg.Sets = append(cfg.Sets, *curSet)
			}
			x0, err := parseParam("X0", lines[i].text)
			if err != nil {
				return nil, &ParseError{lines[i].line, ErrBadParameterLine, err.Error()}
			}
			if i+1 >= len(lines) || !strings.HasPrefix(strings.Fields(lines[i+1].text)[0], "Y0") {
				return nil, &ParseError{lines[i].line, ErrIncompleteXYPair, "X0 must be immediately followed by Y0"}
			}
			y0, err := parseParam("Y0", lines[i+1].text)
			if err != nil {
				return nil, &ParseError{lines[i+1].line, ErrBadParameterLine, err.Error()}
			}
			curSet = &FuncSet{X0: x0, Y0: y0}
			curFunc = nil
			i += 2

		case fields[0] == "FUNCTION":
			if curSet == nil {
				return nil, &ParseError{lines[i].line, ErrNoFunctionSection, "FUNCTION block outside any X0/Y0-anchored set"}
			}
			name, label := parseFunctionLine(fields)
			curSet.Funcs = append(curSet.Funcs, FuncBlock{Name: name, Label: label})
			curFunc = &curSet.Funcs[len(curSet.Funcs)-1]
			i++

		default:
			if curFunc == nil {
				return nil, &ParseError{lines[i].line, ErrNoFunctionSection, "parameter line before any FUNCTION block"}
			}
			p, err := parseParam(fields[0], lines[i].text)
			if err != nil {
				return nil, &ParseError{lines[i].line, ErrBadParameterLine, err.Error()}
			}
			curFunc.Params = append(curFunc.Params, p)
			i++
		}
	}
	if curSet != nil {
		if len(curSet.Funcs) == 0 {
			return nil, &ParseError{lines[len(lines)-1].line, ErrNoFunctions, "function set declared no FUNCTION blocks"}
		}
		cfg.Sets = append(cfg.Sets, *curSet)
	}
	return cfg, nil
}

// parseFunctionLine splits "FUNCTION <name> [LABEL <text>]".
func parseFunctionLine(fields []string) (name, label string) {
	if len(fields) < 2 {
		return "", ""
	}
	name = fields[1]
	for i := 2; i+1 < len(fields); i++ {
		if fields[i] == "LABEL" {
			label = strings.Join(fields[i+1:], " ")
			break
		}
	}
	return name, label
}

// parseParam parses "NAME VALUE [fixed|LOW,HIGH] [# comment, already stripped]".
func parseParam(name, line string) (Param, error) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return Param{}, fmt.Errorf("expected %q VALUE, got %q", name, line)
	}
	val, err := strconv.ParseFloat(fields[1], 64)
	if err != nil {
		return Param{}, fmt.Errorf("invalid value %q for %s: %w", fields[1], name, err)
	}
	p := Param{Name: fields[0], Value: val}
	if len(fields) < 3 {
		return p, nil
	}
	if fields[2] == "fixed" {
		p.Fixed = true
		return p, nil
	}
	if strings.Contains(fields[2], ",") {
		parts := strings.SplitN(fields[2], ",", 2)
		low, err := strconv.ParseFloat(parts[0], 64)
		if err != nil {
			return Param{}, fmt.Errorf("invalid low limit %q: %w", parts[0], err)
		}
		high, err := strconv.ParseFloat(parts[1], 64)
		if err != nil {
			return Param{}, fmt.Errorf("invalid high limit %q: %w", parts[1], err)
		}
		if !(low < high) {
			return Param{}, fmt.Errorf("limit LOW=%v must be less than HIGH=%v", low, high)
		}
		if !(val >= low && val <= high) {
			return Param{}, fmt.Errorf("value %v outside limits [%v,%v]", val, low, high)
		}
		p.HasLimits = true
		p.Low, p.High = low, high
	}
	return p, nil
}
