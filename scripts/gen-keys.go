// Prints fresh secp256k1 keys for local submitter accounts as env blocks,
// one per role given on the command line (default: producer follower).
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
)

func gen(role string) error {
	key, err := crypto.GenerateKey()
	if err != nil {
		return err
	}
	prefix := strings.ToUpper(role)
	fmt.Printf("# %s submitter\n", role)
	fmt.Printf("%s_L1_PRIVATE_KEY_HEX=%x\n", prefix, crypto.FromECDSA(key))
	fmt.Printf("%s_L1_ADDRESS=%s\n\n", prefix, crypto.PubkeyToAddress(key.PublicKey).Hex())
	return nil
}

func main() {
	roles := os.Args[1:]
	if len(roles) == 0 {
		roles = []string{"producer", "follower"}
	}
	for _, role := range roles {
		if err := gen(role); err != nil {
			fmt.Fprintf(os.Stderr, "generate %s key: %v\n", role, err)
			os.Exit(1)
		}
	}
}
