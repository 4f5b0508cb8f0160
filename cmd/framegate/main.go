// Command framegate runs frame change detection from the command line,
// either in-process or against a running framegate server.
package main

func main() {
	Execute()
}
