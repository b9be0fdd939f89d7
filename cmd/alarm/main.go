package main

import "github.com/hongfeij/weather-spotify-alarm/internal/cli"

func main() {
	cli.Execute()
}
