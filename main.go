package main

import "github.com/meinhoongagan/nhs-staffing/commands"

func main() {
	commands.Execute()
}
