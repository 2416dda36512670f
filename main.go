package main

import "geosummary/internal/app"

func main() {
	app.Main()
}
