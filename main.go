package main

import "exusiai.dev/booking-backend/cmd/app"

func main() {
	app.Run()
}
