// Command aichat is a terminal chat client for Gemini models.
package main

import "github.com/diogo/aichat/internal/commands"

func main() {
	commands.Execute()
}
