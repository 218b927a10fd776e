package main

import "r2dash/internal/cli"

func main() {
    cli.Execute()
}
