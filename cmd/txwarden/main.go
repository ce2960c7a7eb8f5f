// txwarden — admission control for outbound blockchain transactions.
// Every submission is broadcast to connected raters, held for an
// aggregation window, arbitrated, and only then released downstream.
package main

import "github.com/txwarden/txwarden/internal/cli"

func main() {
	cli.Execute()
}
