package main

import "eversoul.dev/stageguide/cmd/app"

func main() {
	app.Run()
}
