package main

import "github.com/yanqian/yt-summarizer/internal/cli"

func main() {
	cli.Execute()
}
