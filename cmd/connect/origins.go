package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/urfave/cli/v2"
)

var origins = cli.Command{
	Name:  "origins",
	Usage: "inspect and revoke dApp permissions",
	Subcommands: []*cli.Command{
		{
			Name:   "list",
			Usage:  "list all origins with a stored decision",
			Action: listOriginsAction,
		},
		{
			Name:      "revoke",
			Usage:     "forget the stored decision of an origin",
			ArgsUsage: "<origin>",
			Action:    revokeOriginAction,
		},
	},
}

type originInfo struct {
	Origin    string `json:"origin"`
	Approved  bool   `json:"approved"`
	DecidedAt string `json:"decidedAt"`
}

func listOriginsAction(ctx *cli.Context) error {
	repo, cleanup, err := getPermissionRepository(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	permissions, err := repo.ListPermissions(context.Background())
	if err != nil {
		return err
	}

	infos := make([]originInfo, 0, len(permissions))
	for _, p := range permissions {
		infos = append(infos, originInfo{
			Origin:    p.Origin,
			Approved:  p.Approved,
			DecidedAt: p.DecidedAt.Format(time.RFC3339),
		})
	}

	buf, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return err
	}

	fmt.Println(string(buf))
	return nil
}

func revokeOriginAction(ctx *cli.Context) error {
	if ctx.NArg() != 1 {
		return fmt.Errorf("exactly one origin is expected")
	}

	repo, cleanup, err := getPermissionRepository(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := repo.DeletePermission(context.Background(), ctx.Args().First()); err != nil {
		return err
	}

	fmt.Println("origin revoked")
	return nil
}
