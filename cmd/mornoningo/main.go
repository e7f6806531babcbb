package main

// @title Mornoningo API
// @version 1.0.0
// @description Study engine: lecture material ingestion, spaced review scheduling and quiz sessions.
// @BasePath /api/v1
// @schemes http

func main() {
	Execute()
}
