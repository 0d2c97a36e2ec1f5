// Command vecthare is the entry point for the VectHare vector storage CLI.
// It drives one configured vector backend (native hybrid, Chroma, Qdrant, or
// Milvus) through the common backend contract.
package main

import (
	"fmt"
	"os"

	"github.com/vecthare/vecthare-go/cmd/vecthare/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
