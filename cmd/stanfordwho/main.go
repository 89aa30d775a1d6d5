package main

import (
	"context"

	"stanfordwho-parser/cmd/stanfordwho/commands"
)

func main() {
	commands.ExecuteContext(context.Background())
}
