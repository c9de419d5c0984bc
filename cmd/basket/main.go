// Command basket is a local-first storefront: browse a catalog, keep a cart
// between runs and place mock orders.
package main

import "github.com/mesh-intelligence/basket/internal/cli"

func main() {
	cli.Execute()
}
