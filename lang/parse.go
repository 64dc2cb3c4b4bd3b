package lang

import (
	"fmt"
	"strconv"
)

type Node interface {
	isNode()
}

func (Identifier) isNode() {}
func (Int) isNode()        {}
func (Float) isNode()      {}
func (String) isNode()     {}
func (Array) isNode()      {}

// Command is a single parsed input line: a name and its arguments.
type Command struct {
	Name Identifier
	Args []Node
}

type Identifier string
type Int int
type Float float64
type String string

// Array is a bracketed list of nodes, e.g. [0 0.5, 10 1].
type Array []Node

func Parse(input string) (Command, error) {
	tokens, err := lex(input)
	if err != nil {
		return Command{}, err
	}
	p := parser{tokens: tokens}
	return p.parse()
}

type parser struct {
	pos    int
	tokens []token
}

func (p *parser) next() token {
	t := p.tokens[p.pos]
	p.pos++
	return t
}

func (p *parser) parse() (Command, error) {
	var cmd Command
	token := p.next()
	if token.typ != typeIdentifier {
		return cmd, unexpected(token)
	}
	cmd.Name = Identifier(token.text)
	for token := p.next(); token.typ != typeEOF; token = p.next() {
		arg, err := p.node(token)
		if err != nil {
			return cmd, err
		}
		cmd.Args = append(cmd.Args, arg)
	}
	return cmd, nil
}

func (p *parser) node(t token) (Node, error) {
	switch t.typ {
	case typeIdentifier:
		return Identifier(t.text), nil
	case typeString:
		return String(t.text[1 : len(t.text)-1]), nil
	case typeFloat:
		f, err := strconv.ParseFloat(t.text, 64)
		if err != nil {
			return nil, err
		}
		return Float(f), nil
	case typeInt:
		n, err := strconv.Atoi(t.text)
		if err != nil {
			return nil, err
		}
		return Int(n), nil
	case typeLeftBracket:
		return p.array()
	default:
		return nil, unexpected(t)
	}
}

func (p *parser) array() (Array, error) {
	var arr Array
	for {
		switch t := p.next(); t.typ {
		case typeRightBracket:
			return arr, nil
		case typeComma:
			// Commas between elements are optional.
		case typeEOF:
			return arr, fmt.Errorf("unclosed '[' at end of input")
		default:
			node, err := p.node(t)
			if err != nil {
				return arr, err
			}
			arr = append(arr, node)
		}
	}
}

func unexpected(t token) error {
	return fmt.Errorf("unexpected token %q at position %d", t.text, t.pos)
}
