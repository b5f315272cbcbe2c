package main

import "github.com/lexatlas/bill-tracker-backend/cmd"

func main() {
	cmd.Execute()
}
