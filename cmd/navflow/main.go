// Command navflow inspects navigation flow files: it validates them, renders
// outlines and Mermaid diagrams, finds paths, and simulates traversals.
package main

func main() {
	Execute()
}
