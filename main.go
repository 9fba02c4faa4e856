package main

import "github.com/arengifoc/logsort/internal/cmd"

func main() {
	cmd.Execute()
}
