package main

import (
	"bufio"
	"os"
	"strings"

	"github.com/gookit/color"
)

var stdin = bufio.NewReader(os.Stdin)

func prompt(label string) string {
	color.Cyan.Printf("%s: ", label)
	line, _ := stdin.ReadString('\n')
	return strings.TrimSpace(line)
}

func confirm(label string) bool {
	answer := prompt(label + " [y/n]")
	return strings.EqualFold(answer, "y") || strings.EqualFold(answer, "yes")
}
