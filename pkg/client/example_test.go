package client_test

import (
	"fmt"
	"log"

	"treasurehunt/pkg/client"
)

// Requires a running server (treasurehunt serve).
func ExampleClient_Hunt() {
	cli, err := client.Dial("localhost:9090")
	if err != nil {
		log.Fatalf("Failed to connect: %v", err)
	}
	defer cli.Close()

	res, err := cli.Hunt(10, 3, 3, 42)
	if err != nil {
		log.Fatalf("Hunt failed: %v", err)
	}
	fmt.Printf("run %s found treasures in regions %v\n", res.ID, res.Regions())

	again, err := cli.GetRun(res.ID)
	if err != nil {
		log.Fatalf("GetRun failed: %v", err)
	}
	fmt.Println(again.Regions())
}
