package main

import (
	stderrors "errors"
	"fmt"
	"log"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/go-ext2/ext2fs/commands"
	"github.com/go-ext2/ext2fs/errors"
	"github.com/go-ext2/ext2fs/image"
	"github.com/go-ext2/ext2fs/layout"
)

func main() {
	app := cli.App{
		Usage: "Inspect and mutate ext2-style filesystem images",
		Commands: []*cli.Command{
			{
				Name:      "format",
				Usage:     "Create and format a new image",
				ArgsUsage: "IMAGE",
				Flags: []cli.Flag{
					&cli.UintFlag{Name: "inodes", Value: 32, Usage: "number of inodes"},
					&cli.UintFlag{Name: "blocks", Value: 128, Usage: "number of blocks"},
				},
				Action: formatImage,
			},
			{
				Name:      "mkdir",
				Usage:     "Create a directory",
				ArgsUsage: "IMAGE PATH",
				Action: withSession(2, func(s *commands.Session, c *cli.Context) error {
					return commands.Mkdir(s, c.Args().Get(1))
				}),
			},
			{
				Name:      "cp-in",
				Usage:     "Copy a host file into the image",
				ArgsUsage: "IMAGE HOST_PATH IMAGE_PATH",
				Action: withSession(3, func(s *commands.Session, c *cli.Context) error {
					return commands.CpIn(s, c.Args().Get(1), c.Args().Get(2))
				}),
			},
			{
				Name:      "ln",
				Usage:     "Create a hard or symbolic link",
				ArgsUsage: "IMAGE SRC DST",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "symbolic", Aliases: []string{"s"}, Usage: "create a symbolic link"},
				},
				Action: withSession(3, func(s *commands.Session, c *cli.Context) error {
					if c.Bool("symbolic") {
						return commands.SymLink(s, c.Args().Get(1), c.Args().Get(2))
					}
					return commands.Link(s, c.Args().Get(1), c.Args().Get(2))
				}),
			},
			{
				Name:      "rm",
				Usage:     "Remove a regular file or symlink",
				ArgsUsage: "IMAGE PATH",
				Action: withSession(2, func(s *commands.Session, c *cli.Context) error {
					return commands.Rm(s, c.Args().Get(1))
				}),
			},
			{
				Name:      "restore",
				Usage:     "Undelete a recently removed file",
				ArgsUsage: "IMAGE PATH",
				Action: withSession(2, func(s *commands.Session, c *cli.Context) error {
					_, err := commands.Restore(s, c.Args().Get(1))
					return err
				}),
			},
			{
				Name:      "fsck",
				Usage:     "Check and repair the image",
				ArgsUsage: "IMAGE",
				Action: withSession(1, func(s *commands.Session, c *cli.Context) error {
					_, err := commands.Fsck(s, os.Stdout)
					return err
				}),
			},
			{
				Name:      "describe",
				Usage:     "Print a summary of the image's metadata",
				ArgsUsage: "IMAGE",
				Action: withSession(1, func(s *commands.Session, c *cli.Context) error {
					return commands.Describe(s, os.Stdout)
				}),
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Printf("error: %s", err)
		os.Exit(exitCode(err))
	}
}

// withSession opens the image named by the subcommand's first argument,
// runs fn, and closes the image on every return path. minArgs is the total
// number of positional arguments the subcommand requires, image path
// included.
func withSession(minArgs int, fn func(*commands.Session, *cli.Context) error) cli.ActionFunc {
	return func(c *cli.Context) error {
		if c.NArg() < minArgs {
			return errors.ErrInvalid.WithMessage(fmt.Sprintf("expected %d arguments, got %d", minArgs, c.NArg()))
		}
		s, err := commands.Open(c.Args().Get(0))
		if err != nil {
			return err
		}
		defer s.Close()
		return fn(s, c)
	}
}

func formatImage(c *cli.Context) error {
	if c.NArg() < 1 {
		return errors.ErrInvalid.WithMessage("expected IMAGE argument")
	}
	path := c.Args().Get(0)

	if err := image.Create(path); err != nil {
		return err
	}
	img, err := image.Open(path)
	if err != nil {
		return err
	}
	defer img.Close()

	return layout.Format(img.Bytes(), uint32(c.Uint("inodes")), uint32(c.Uint("blocks")))
}

// exitCode maps a command's returned error to a POSIX-style exit code.
// Most command errors are a customDriverError built by WithMessage or
// WrapError rather than a bare DiskoError, so the tagged sentinel has to be
// found by unwrapping rather than by a direct type assertion.
func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var de errors.DiskoError
	if stderrors.As(err, &de) {
		return int(de.Errno())
	}
	return 1
}
