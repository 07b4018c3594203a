package main

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/urfave/cli/v2"

	"github.com/ruteri/deterministic-creation-registry/clients"
	"github.com/ruteri/deterministic-creation-registry/cmd/flags"
	"github.com/ruteri/deterministic-creation-registry/interfaces"
)

var identityArgUsage = "40-char hex identity with optional 0x prefix"

func main() {
	app := &cli.App{
		Name:  "registry-admin",
		Usage: "Operate a deterministic creation registry over its HTTP API",
		Flags: []cli.Flag{
			flags.ServerAddrFlag,
			flags.PrivkeyFlag,
		},
		Commands: []*cli.Command{
			{
				Name:      "set-allowed-actor",
				Usage:     "Install the identity permitted to create (owner key required)",
				ArgsUsage: identityArgUsage,
				Action: func(cCtx *cli.Context) error {
					client, err := newClient(cCtx)
					if err != nil {
						return err
					}
					actor, err := identityArg(cCtx)
					if err != nil {
						return err
					}
					return client.SetAllowedActor(actor)
				},
			},
			{
				Name:      "transfer-ownership",
				Usage:     "Nominate a successor owner (owner key required)",
				ArgsUsage: identityArgUsage,
				Action: func(cCtx *cli.Context) error {
					client, err := newClient(cCtx)
					if err != nil {
						return err
					}
					nominee, err := identityArg(cCtx)
					if err != nil {
						return err
					}
					return client.TransferOwnership(nominee)
				},
			},
			{
				Name:  "accept-ownership",
				Usage: "Accept a pending nomination (nominee key required)",
				Action: func(cCtx *cli.Context) error {
					client, err := newClient(cCtx)
					if err != nil {
						return err
					}
					return client.AcceptOwnership()
				},
			},
			{
				Name:      "create",
				Usage:     "Create an artifact from a content file (allowed-actor key required)",
				ArgsUsage: "path to the content blob",
				Flags:     []cli.Flag{flags.SaltFlag},
				Action:    runCreate,
			},
			{
				Name:      "compute-location",
				Usage:     "Derive the target location for a salt and content hash",
				ArgsUsage: "64-char hex content hash",
				Flags:     []cli.Flag{flags.SaltFlag},
				Action:    runComputeLocation,
			},
			{
				Name:      "content-hash",
				Usage:     "Hash a content file the way the registry does",
				ArgsUsage: "path to the content blob",
				Action:    runContentHash,
			},
			{
				Name:  "access",
				Usage: "Show the registry's owner, pending owner, and allowed actor",
				Action: func(cCtx *cli.Context) error {
					client, err := newClient(cCtx)
					if err != nil {
						return err
					}
					state, err := client.AccessState()
					if err != nil {
						return err
					}
					return printJSON(state)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newClient(cCtx *cli.Context) (*clients.RegistryClient, error) {
	serverAddr := cCtx.String(flags.ServerAddrFlag.Name)

	privkeyHex := cCtx.String(flags.PrivkeyFlag.Name)
	if privkeyHex == "" {
		return clients.NewRegistryClient(serverAddr, nil), nil
	}

	privkey, err := crypto.HexToECDSA(strings.TrimPrefix(privkeyHex, "0x"))
	if err != nil {
		return nil, fmt.Errorf("could not parse private key: %w", err)
	}
	return clients.NewRegistryClient(serverAddr, privkey), nil
}

func identityArg(cCtx *cli.Context) (interfaces.Identity, error) {
	if cCtx.NArg() != 1 {
		return interfaces.Identity{}, fmt.Errorf("expected exactly one identity argument")
	}
	return interfaces.NewIdentityFromHex(cCtx.Args().First())
}

func saltFlag(cCtx *cli.Context) (interfaces.Salt, error) {
	return interfaces.NewSaltFromHex(cCtx.String(flags.SaltFlag.Name))
}

func runCreate(cCtx *cli.Context) error {
	client, err := newClient(cCtx)
	if err != nil {
		return err
	}

	salt, err := saltFlag(cCtx)
	if err != nil {
		return err
	}

	if cCtx.NArg() != 1 {
		return fmt.Errorf("expected exactly one content file argument")
	}
	content, err := os.ReadFile(cCtx.Args().First())
	if err != nil {
		return fmt.Errorf("could not read content file: %w", err)
	}

	created, err := client.Create(salt, content)
	if err != nil {
		return err
	}
	return printJSON(created)
}

func runComputeLocation(cCtx *cli.Context) error {
	client, err := newClient(cCtx)
	if err != nil {
		return err
	}

	salt, err := saltFlag(cCtx)
	if err != nil {
		return err
	}

	if cCtx.NArg() != 1 {
		return fmt.Errorf("expected exactly one content hash argument")
	}
	contentHash, err := interfaces.NewContentHashFromHex(cCtx.Args().First())
	if err != nil {
		return err
	}

	location, err := client.ComputeLocation(salt, contentHash)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"location": location.String()})
}

func runContentHash(cCtx *cli.Context) error {
	client, err := newClient(cCtx)
	if err != nil {
		return err
	}

	if cCtx.NArg() != 1 {
		return fmt.Errorf("expected exactly one content file argument")
	}
	content, err := os.ReadFile(cCtx.Args().First())
	if err != nil {
		return fmt.Errorf("could not read content file: %w", err)
	}

	hash, err := client.ContentHashOf(content)
	if err != nil {
		return err
	}
	return printJSON(map[string]string{"content_hash": hash.String()})
}

func printJSON(v interface{}) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return err
	}
	fmt.Println(string(encoded))
	return nil
}
