// Command pviewctl inspects and serves product view attribute groups.
package main

func main() {
	Execute()
}
