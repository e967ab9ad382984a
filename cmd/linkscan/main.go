package main

import "linkguard/internal/cli"

func main() {
    cli.Execute()
}
