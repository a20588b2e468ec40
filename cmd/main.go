package main

import (
	"event-submission-system/cmd/server"
)

func main() {
	server.Init()
	server.Run()
}
