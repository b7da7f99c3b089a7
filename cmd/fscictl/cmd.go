package main

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/urfave/cli"

	"github.com/rigado/fsci"
	"github.com/rigado/fsci/cache"
	"github.com/rigado/fsci/host"
	"github.com/rigado/fsci/procedure"
)

func initClient(ctx context.Context, c *cli.Context) error {
	if !c.Bool("init") {
		return nil
	}
	for _, fn := range []func(context.Context) error{
		dev.GattInit,
		dev.ClientInit,
		dev.ClientRegisterProcedureCallback,
		dev.ClientRegisterNotificationCallback,
		dev.ClientRegisterIndicationCallback,
	} {
		if err := fn(ctx); err != nil {
			return errors.Wrap(err, "can't init client")
		}
	}
	return nil
}

func discover(c *cli.Context) error {
	ctx, cancel := commandContext(c)
	defer cancel()
	if err := initClient(ctx, c); err != nil {
		return err
	}

	k := key(c)
	max := uint8(c.Int("max"))

	p, err := discoverProfile(ctx, k, max)
	if err != nil {
		return chkErr(err)
	}
	if err := profiles(c).Store(addr(c), p, true); err != nil {
		return errors.Wrap(err, "can't cache profile")
	}
	return printJSON(p)
}

func discoverProfile(ctx context.Context, k procedure.Key, max uint8) (cache.Profile, error) {
	svcs, err := dev.ClientDiscoverAllPrimaryServices(ctx, k, max)
	if err != nil {
		return cache.Profile{}, errors.Wrap(err, "can't discover services")
	}

	for i, s := range svcs {
		full, err := dev.ClientDiscoverAllCharacteristicsOfService(ctx, k, s, max)
		if err != nil {
			return cache.Profile{}, errors.Wrapf(err, "can't discover characteristics of %s", s.UUID)
		}

		chars := full.Characteristics
		for j, ch := range chars {
			// descriptors run up to the next declaration or the service end
			end := s.EndHandle
			if j+1 < len(chars) {
				end = chars[j+1].Handle - 1
			}
			if end <= ch.ValueHandle() {
				continue
			}
			withDesc, err := dev.ClientDiscoverAllCharacteristicDescriptors(ctx, k, ch, end, max)
			if err != nil {
				return cache.Profile{}, errors.Wrapf(err, "can't discover descriptors of %s", ch.UUID())
			}
			chars[j].Descriptors = withDesc.Descriptors
		}
		svcs[i].Characteristics = chars
	}
	return cache.Profile{Services: svcs}, nil
}

func read(c *cli.Context) error {
	ctx, cancel := commandContext(c)
	defer cancel()
	if err := initClient(ctx, c); err != nil {
		return err
	}

	k := key(c)
	n := uint16(c.Int("len"))

	if s := c.String("uuid"); s != "" {
		u, err := parseUUID(s)
		if err != nil {
			return err
		}
		v, err := dev.ClientReadUsingCharacteristicUuid(ctx, k, u, nil, n)
		if err != nil {
			return chkErr(err)
		}
		fmt.Printf("%s: % X\n", u, v)
		return nil
	}

	if c.String("handle") == "" {
		return errNoHandle
	}
	h, err := parseHandle(c.String("handle"))
	if err != nil {
		return err
	}
	ch, err := dev.ClientReadCharacteristicValue(ctx, k, lookup(c, h), n)
	if err != nil {
		return chkErr(err)
	}
	fmt.Printf("0x%04X: % X\n", h, ch.Value.Value)
	return nil
}

func write(c *cli.Context) error {
	ctx, cancel := commandContext(c)
	defer cancel()
	if err := initClient(ctx, c); err != nil {
		return err
	}

	if c.String("handle") == "" {
		return errNoHandle
	}
	h, err := parseHandle(c.String("handle"))
	if err != nil {
		return err
	}
	v, err := parseValue(c.String("value"))
	if err != nil {
		return err
	}

	o := host.WriteOptions{WithoutResponse: c.Bool("noresp")}
	return chkErr(dev.ClientWriteCharacteristicValue(ctx, key(c), lookup(c, h), v, o))
}

// packet is the JSON form of everything sniff prints.
type packet struct {
	Kind  string      `json:"kind"`
	Name  string      `json:"name"`
	Event interface{} `json:"event,omitempty"`
}

func sniff(c *cli.Context) error {
	out := make(chan packet, 64)
	emit := func(kind, name string, ev interface{}) {
		select {
		case out <- packet{kind, name, ev}:
		default:
			fsci.GetLogger().Warnf("sniff output full, dropped %s", name)
		}
	}

	dev.SetHandler(host.Handler{
		OnProcedure: func(e host.ProcedureEvent) { emit("procedure", e.Name, e) },
		OnNotification: func(n host.Notification) {
			n.Value = append([]byte(nil), n.Value...)
			emit("notification", "GattClientNotificationIndication", n)
		},
		OnIndication: func(n host.Notification) {
			n.Value = append([]byte(nil), n.Value...)
			emit("indication", "GattClientIndicationIndication", n)
		},
		OnServerEvent: func(e host.ServerEvent) {
			e.Value = append([]byte(nil), e.Value...)
			emit("server", e.Name, e)
		},
		OnMtu: func(k procedure.Key, mtu uint16) {
			emit("mtu", "GattGetMtuIndication", struct {
				Key procedure.Key
				Mtu uint16
			}{k, mtu})
		},
		OnCommand: func(cmd host.Command) {
			cmd.Payload = append([]byte(nil), cmd.Payload...)
			emit("command", cmd.Name, cmd)
		},
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ctx = withSigHandler(ctx, cancel)

	for {
		select {
		case p := <-out:
			if err := printJSON(p); err != nil {
				return err
			}
		case <-dev.Done():
			return fsci.ErrClosed
		case <-ctx.Done():
			return chkErr(ctx.Err())
		}
	}
}
