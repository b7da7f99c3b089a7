package main

import (
	"time"

	"github.com/urfave/cli"

	"github.com/rigado/fsci/transport"
)

var (
	flgPort   = cli.StringFlag{Name: "port, p", Usage: "Serial port of the engine"}
	flgBaud   = cli.IntFlag{Name: "baud, b", Value: transport.DefaultBaudRate, Usage: "Baud rate of the serial port"}
	flgSocket = cli.StringFlag{Name: "socket", Usage: "Address of a serial-to-tcp bridge"}
	flgSktTmo = cli.DurationFlag{Name: "socket-tmo", Value: transport.DefaultSocketTimeout, Usage: "Dial timeout of the socket"}
	flgIface  = cli.IntFlag{Name: "iface", Usage: "Serial interface id"}
	flgDebug  = cli.BoolFlag{Name: "debug", Usage: "Log every packet"}

	flgTimeout = cli.DurationFlag{Name: "tmo, t", Value: time.Second * 10, Usage: "Timeout for the command"}
	flgPeer    = cli.IntFlag{Name: "peer", Usage: "Device id of the peer"}
	flgBearer  = cli.IntFlag{Name: "bearer", Usage: "Bearer id of the peer"}
	flgMax     = cli.IntFlag{Name: "max", Value: 16, Usage: "Maximum number of entries per discovery"}
	flgAddr    = cli.StringFlag{Name: "addr, a", Usage: "Address the peer is cached under"}
	flgCache   = cli.StringFlag{Name: "cache", Value: "profiles.json", Usage: "Profile cache file"}
	flgInit    = cli.BoolFlag{Name: "init", Usage: "Initialize the GATT client first"}
	flgHandle  = cli.StringFlag{Name: "handle", Usage: "Value handle"}
	flgUUID    = cli.StringFlag{Name: "uuid, u", Usage: "Characteristic type"}
	flgLen     = cli.IntFlag{Name: "len, l", Value: 64, Usage: "Maximum value length to read"}
	flgValue   = cli.StringFlag{Name: "value, v", Usage: "Hex encoded value"}
	flgNoResp  = cli.BoolFlag{Name: "noresp", Usage: "Write without response"}
)
