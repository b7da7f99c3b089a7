package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/urfave/cli"
	"golang.org/x/sys/unix"

	"github.com/rigado/fsci"
	"github.com/rigado/fsci/cache"
	"github.com/rigado/fsci/gatt"
	"github.com/rigado/fsci/procedure"
)

var (
	errNoTransport   = errors.New("no transport: set --port or --socket")
	errNoHandle      = errors.New("no handle or uuid specified")
	errInvalidHandle = errors.New("invalid handle")
	errInvalidUUID   = errors.New("invalid UUID")
	errInvalidValue  = errors.New("invalid hex value")
)

// withSigHandler cancels ctx on SIGINT or SIGTERM.
func withSigHandler(ctx context.Context, cancel func()) context.Context {
	go func() {
		sigs := make(chan os.Signal, 1)
		signal.Notify(sigs, unix.SIGINT, unix.SIGTERM)
		defer signal.Stop(sigs)

		select {
		case <-sigs:
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx
}

func commandContext(c *cli.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), c.Duration("tmo"))
	return withSigHandler(ctx, cancel), cancel
}

func key(c *cli.Context) procedure.Key {
	return procedure.Key{Peer: uint8(c.Int("peer")), Bearer: uint8(c.Int("bearer"))}
}

func addr(c *cli.Context) fsci.Addr {
	if a := c.String("addr"); a != "" {
		return fsci.NewAddr(a)
	}
	return fsci.DeviceAddr(uint8(c.Int("peer")))
}

func profiles(c *cli.Context) cache.GattCache {
	return cache.New(c.String("cache"))
}

func parseHandle(s string) (uint16, error) {
	s = strings.TrimPrefix(strings.ToLower(s), "0x")
	h, err := strconv.ParseUint(s, 16, 16)
	if err != nil {
		return 0, errInvalidHandle
	}
	return uint16(h), nil
}

func parseUUID(s string) (gatt.UUID, error) {
	u, err := gatt.Parse(s)
	if err != nil {
		return gatt.UUID{}, errInvalidUUID
	}
	return u, nil
}

func parseValue(s string) ([]byte, error) {
	b, err := hex.DecodeString(strings.Replace(s, ":", "", -1))
	if err != nil {
		return nil, errInvalidValue
	}
	return b, nil
}

// lookup returns the cached characteristic with value handle h. Without a
// cached profile the characteristic carries only its handle.
func lookup(c *cli.Context, h uint16) gatt.Characteristic {
	if p, err := profiles(c).Load(addr(c)); err == nil {
		for _, s := range p.Services {
			for _, ch := range s.Characteristics {
				if ch.ValueHandle() == h {
					return ch
				}
			}
		}
	}
	return gatt.Characteristic{
		Handle: h - 1,
		Value:  gatt.Attribute{Handle: h, UUID: gatt.UUID16(0)},
	}
}

func chkErr(err error) error {
	switch errors.Cause(err) {
	case context.DeadlineExceeded:
		return errors.Wrap(err, "timed out")
	case context.Canceled:
		fmt.Printf("\n(Canceled)\n")
		return nil
	}
	return err
}

func printJSON(v interface{}) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(b))
	return nil
}
