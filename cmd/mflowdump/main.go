// Command mflowdump prints every stage of compiling one MFlow file: the
// tokens, the syntax tree, the global symbols and the generated JavaScript.
package main

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/sanity-io/litter"

	"mflow/pkg/compiler"
)

const testSource = `let size = 40
circle at (100, 100) size size color #F5A623
animate {
  rotate 2
}
`

func main() {
	src := testSource
	if len(os.Args) > 1 {
		data, err := os.ReadFile(os.Args[1])
		if err != nil {
			fmt.Fprintln(os.Stderr, "read error:", err)
			os.Exit(1)
		}
		src = string(data)
	}

	fmt.Printf("Source:\n%s\n", src)

	// Lex
	tokens := compiler.Lex(src)
	fmt.Printf("Tokens (%d)\n", len(tokens))
	for _, tok := range tokens {
		fmt.Println(" ", tok)
	}
	fmt.Println()

	// Parse
	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).Level(zerolog.WarnLevel)
	p := compiler.NewParser(tokens, src, log)
	prog := p.ParseProgram()

	fmt.Println("AST")
	litter.Config.HidePrivateFields = true
	litter.Dump(prog)
	fmt.Println()

	if diags := p.Diagnostics(); len(diags) > 0 {
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, d)
		}
		os.Exit(1)
	}

	// Analyze
	analyzer := compiler.NewAnalyzer(log)
	diags := analyzer.Analyze(prog)
	fmt.Println("Symbols")
	fmt.Print(analyzer.Symbols())
	fmt.Println()
	if len(diags) > 0 {
		for _, d := range diags {
			fmt.Fprintln(os.Stderr, d)
		}
		os.Exit(1)
	}

	// Generate
	fmt.Println("Generated JavaScript")
	fmt.Print(compiler.Generate(prog, compiler.Options{}))
}
