package main

import "dealvalue_backend/internal/app"

func main() {
	app.Run()
}
