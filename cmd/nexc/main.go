// nexc compiles an array expression and prints the resulting bytecode
// program. With name=v1,v2,... arguments it also runs the program over the
// given arrays:
//
//	nexc "2*a+3*b" a=1,2 b=10,20
//
// Set NEXC_TOKENS or NEXC_AST to also dump the token stream or the folded
// expression tree.
package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/xyproto/env/v2"

	"github.com/PradeepThapa/scipy/pkg/bytecode"
	"github.com/PradeepThapa/scipy/pkg/numexpr"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: nexc EXPRESSION [name=v1,v2,... ...]")
		os.Exit(2)
	}
	src := os.Args[1]

	if env.Bool("NEXC_TOKENS") {
		tokens, err := numexpr.Lex(src)
		if err != nil {
			fmt.Fprintln(os.Stderr, "lex error:", err)
			os.Exit(1)
		}
		fmt.Printf("Tokens (%d)\n", len(tokens))
		for _, tok := range tokens {
			fmt.Println(" ", tok)
		}
		fmt.Println()
	}

	if env.Bool("NEXC_AST") {
		ex, err := numexpr.Parse(src)
		if err != nil {
			fmt.Fprintln(os.Stderr, "parse error:", err)
			os.Exit(1)
		}
		fmt.Println("AST")
		fmt.Println(" ", ex)
		fmt.Println()
	}

	prog, err := numexpr.Compile(src, nil)
	if err != nil {
		fmt.Fprintln(os.Stderr, "compile error:", err)
		os.Exit(1)
	}

	fmt.Println("Program")
	fmt.Print(bytecode.Disassemble(prog))

	if len(os.Args) > 2 {
		bindings, err := parseBindings(os.Args[2:])
		if err != nil {
			fmt.Fprintln(os.Stderr, "argument error:", err)
			os.Exit(1)
		}
		out, err := numexpr.Evaluate(src, bindings)
		if err != nil {
			fmt.Fprintln(os.Stderr, "evaluate error:", err)
			os.Exit(1)
		}
		fmt.Println()
		fmt.Println("Result")
		fmt.Println(" ", out)
	}
}

// parseBindings turns name=v1,v2,... arguments into input arrays.
func parseBindings(args []string) (map[string][]float64, error) {
	bindings := make(map[string][]float64, len(args))
	for _, arg := range args {
		name, list, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected name=v1,v2,..., got %q", arg)
		}
		var values []float64
		for _, field := range strings.Split(list, ",") {
			v, err := strconv.ParseFloat(strings.TrimSpace(field), 64)
			if err != nil {
				return nil, fmt.Errorf("bad value %q for %s", field, name)
			}
			values = append(values, v)
		}
		bindings[name] = values
	}
	return bindings, nil
}
