// Command fscictl drives a remote GATT engine over its serial link.
package main

import (
	"fmt"
	"os"

	jsoniter "github.com/json-iterator/go"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/rigado/fsci"
	"github.com/rigado/fsci/host"
)

var (
	json = jsoniter.ConfigCompatibleWithStandardLibrary
	dev  *host.Host
)

func main() {
	app := cli.NewApp()

	app.Name = "fscictl"
	app.Usage = "A CLI tool for FSCI GATT engines"
	app.Version = "0.1.0"
	app.Action = cli.ShowAppHelp
	app.Flags = []cli.Flag{flgPort, flgBaud, flgSocket, flgSktTmo, flgIface, flgDebug}

	app.Commands = []cli.Command{
		{
			Name:    "discover",
			Aliases: []string{"d"},
			Usage:   "Discover the services, characteristics and descriptors of a peer",
			Action:  discover,
			Before:  setup(false),
			Flags:   []cli.Flag{flgTimeout, flgPeer, flgBearer, flgMax, flgAddr, flgCache, flgInit},
		},
		{
			Name:    "read",
			Aliases: []string{"r"},
			Usage:   "Read a characteristic by handle or type",
			Action:  read,
			Before:  setup(false),
			Flags:   []cli.Flag{flgTimeout, flgPeer, flgBearer, flgHandle, flgUUID, flgLen, flgAddr, flgCache, flgInit},
		},
		{
			Name:    "write",
			Aliases: []string{"w"},
			Usage:   "Write a characteristic value",
			Action:  write,
			Before:  setup(false),
			Flags:   []cli.Flag{flgTimeout, flgPeer, flgBearer, flgHandle, flgValue, flgNoResp, flgAddr, flgCache, flgInit},
		},
		{
			Name:    "sniff",
			Aliases: []string{"s"},
			Usage:   "Print every decoded packet as JSON until interrupted",
			Action:  sniff,
			Before:  setup(true),
		},
	}

	app.After = func(c *cli.Context) error {
		if dev != nil {
			return dev.Close()
		}
		return nil
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(mirror bool) cli.BeforeFunc {
	return func(c *cli.Context) error {
		if dev != nil {
			return nil
		}
		if c.GlobalBool("debug") {
			fsci.SetLogLevel(logrus.DebugLevel)
		}

		var opt fsci.Option
		switch {
		case c.GlobalString("socket") != "":
			opt = fsci.OptTransportSocket(c.GlobalString("socket"), c.GlobalDuration("socket-tmo"))
		case c.GlobalString("port") != "":
			opt = fsci.OptTransportUart(c.GlobalString("port"), uint(c.GlobalInt("baud")))
		default:
			return errNoTransport
		}

		h, err := host.New(nil, opt,
			fsci.OptInterface(uint32(c.GlobalInt("iface"))),
			fsci.OptMirrorCommands(mirror),
		)
		if err != nil {
			return errors.Wrap(err, "can't new host")
		}
		if err := h.Init(); err != nil {
			return errors.Wrap(err, "can't init host")
		}
		dev = h
		return nil
	}
}
