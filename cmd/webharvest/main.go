// Package main provides the entry point for the webharvest CLI.
//
// webharvest crawls websites, saves their textual content and media per
// domain, and can hunt for a target phrase with depth-bounded expansion.
//
// Usage:
//
//	webharvest crawl <url> [<url>...]
//	webharvest hunt --phrase "text to find" <url>
//
// See --help for all available options.
package main

// main is the entry point for webharvest.
func main() {
	Execute()
}
