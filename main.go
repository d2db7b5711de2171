package main

import "go-poll-scheduler/cmd"

// @title Poll Scheduler API
// @version 1.0
// @description Finds the next session every polled member can attend, from their availability calendars

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	cmd.Execute()
}
