package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
)

func repl(s *session) error {
	rl, err := readline.New("> ")
	if err != nil {
		return err
	}
	defer rl.Close()

	for {
		line, err := rl.Readline()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			fmt.Println(err)
			continue
		}
		if len(strings.TrimSpace(line)) == 0 {
			continue
		}
		result, err := eval(s, line)
		if err != nil {
			fmt.Println(err)
			continue
		}
		if result != nil {
			fmt.Println(result)
		}
	}
}
