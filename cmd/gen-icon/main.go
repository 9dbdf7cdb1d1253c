package main

import (
	"flag"
	"fmt"
	"os"

	"walletbot/internal/icon"
)

func main() {
	outDir := flag.String("out", "assets/icons", "output directory for the icon set")
	flag.Parse()

	if err := icon.WriteSet(*outDir); err != nil {
		fmt.Fprintf(os.Stderr, "generate icons: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("icon set written to %s\n", *outDir)
}
