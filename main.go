package main

import "github.com/klytics/xlnotes/cmd"

func main() {
	cmd.Execute()
}
