package main

import (
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/ruteri/deterministic-creation-registry/backend"
	"github.com/ruteri/deterministic-creation-registry/cmd/flags"
	"github.com/ruteri/deterministic-creation-registry/gateway"
	"github.com/ruteri/deterministic-creation-registry/httpserver"
	"github.com/ruteri/deterministic-creation-registry/interfaces"
	"github.com/ruteri/deterministic-creation-registry/metrics"
	"github.com/ruteri/deterministic-creation-registry/storage"
)

func main() {
	app := &cli.App{
		Name:  "registryd",
		Usage: "Serve the deterministic creation registry API",
		Flags: []cli.Flag{
			flags.ListenAddrFlag,
			flags.MetricsAddrFlag,
			flags.OwnerFlag,
			flags.RegistryIdentityFlag,
			flags.SlotFileFlag,
			flags.ArtifactBackendFlag,
			flags.LogJSONFlag,
			flags.LogDebugFlag,
			flags.LogUIDFlag,
			flags.LogServiceFlag,
			flags.PprofFlag,
			flags.DrainSecondsFlag,
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func run(cCtx *cli.Context) error {
	logger := flags.SetupLogger(cCtx)

	owner, err := interfaces.NewIdentityFromHex(cCtx.String(flags.OwnerFlag.Name))
	if err != nil {
		return fmt.Errorf("could not parse owner identity: %w", err)
	}

	registryIdentity, err := interfaces.NewIdentityFromHex(cCtx.String(flags.RegistryIdentityFlag.Name))
	if err != nil {
		return fmt.Errorf("could not parse registry identity: %w", err)
	}

	var claimer interfaces.SlotClaimer
	if slotFile := cCtx.String(flags.SlotFileFlag.Name); slotFile != "" {
		claimer, err = backend.NewFileClaimer(slotFile, logger)
		if err != nil {
			return fmt.Errorf("could not open slot table: %w", err)
		}
	} else {
		logger.Warn("no slot-file configured, slot table will not survive restarts")
		claimer = backend.NewMemoryClaimer()
	}

	var store interfaces.ArtifactStore
	if uris := cCtx.StringSlice(flags.ArtifactBackendFlag.Name); len(uris) > 0 {
		store, err = storage.NewFactory(logger).MultiBackendFor(uris)
		if err != nil {
			return fmt.Errorf("could not create artifact store: %w", err)
		}
	}

	sink := gateway.MultiSink{
		gateway.SlogSink{Log: logger},
		metrics.Sink{},
	}

	gw := gateway.New(registryIdentity, owner, claimer, sink, logger)

	handler := httpserver.NewHandler(gw, store, logger)
	srv, err := httpserver.New(flags.ConfigureServer(cCtx, logger), handler)
	if err != nil {
		return fmt.Errorf("could not create server: %w", err)
	}

	logger.Info("starting registry",
		"registryIdentity", registryIdentity.String(),
		"owner", owner.String())

	srv.RunInBackground()

	exit := make(chan os.Signal, 1)
	signal.Notify(exit, os.Interrupt, syscall.SIGTERM)
	<-exit
	logger.Info("shutting down")
	srv.Shutdown()
	return nil
}
