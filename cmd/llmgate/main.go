// Command llmgate is a cost-aware LLM gateway that routes chat completion
// requests across OpenAI, DeepSeek, and HuggingFace, with automatic fallback,
// per-key rate limiting, and synchronous cost attribution.
package main

import (
	"flag"
	"fmt"
	"os"
)

var version = "dev"

func main() {
	showVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Println("llmgate", version)
		os.Exit(0)
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
