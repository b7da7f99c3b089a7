package cache

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/pkg/errors"
	"github.com/rigado/fsci"
	"github.com/rigado/fsci/gatt"
)

func testProfile() Profile {
	hr := gatt.Characteristic{
		Handle:   0x0010,
		Property: gatt.CharNotify,
		Value:    gatt.Attribute{Handle: 0x0011, UUID: gatt.MustParse("2a37")},
		Descriptors: []gatt.Attribute{
			{Handle: 0x0012, UUID: gatt.UUID16(0x2902), MaxValueLength: 2, Value: []byte{0x01, 0x00}},
		},
	}
	return Profile{Services: []gatt.Service{
		{StartHandle: 0x000E, EndHandle: 0x0012, UUID: gatt.MustParse("180d"), Characteristics: []gatt.Characteristic{hr}},
		{StartHandle: 0x0020, EndHandle: 0x002F, UUID: gatt.MustParse("34DA3AD1-7110-41A1-B1EF-4430F509CDE7")},
	}}
}

func TestGattCache_Store(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "test.cache"))
	a := fsci.NewAddr("12:34:56:78:90:AB")
	p := testProfile()

	if err := c.Store(a, p, false); err != nil {
		t.Fatalf("expected nil error but got %s instead", err)
	}

	loaded, err := c.Load(fsci.NewAddr("12:34:56:78:90:ab"))
	if err != nil {
		t.Fatalf("expected to find address in cache but did not: %s", err)
	}
	if !reflect.DeepEqual(p, loaded) {
		t.Fatalf("stored and loaded profiles are not equal:\n%+v\n%+v", p, loaded)
	}

	ch, ok := loaded.Find(gatt.UUID16(0x2A37))
	if !ok || ch.ValueHandle() != 0x0011 {
		t.Fatalf("heart rate measurement not found")
	}
}

func TestGattCache_Replace(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "test.cache"))
	a := fsci.DeviceAddr(3)

	if err := c.Store(a, testProfile(), false); err != nil {
		t.Fatal(err)
	}
	if err := c.Store(a, Profile{}, false); err == nil {
		t.Fatalf("expected an error storing over an existing profile")
	}
	if err := c.Store(a, Profile{}, true); err != nil {
		t.Fatal(err)
	}
	p, err := c.Load(a)
	if err != nil || len(p.Services) != 0 {
		t.Fatalf("got %+v, %v", p, err)
	}
}

func TestGattCache_Clear(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "test.cache"))
	a := fsci.DeviceAddr(1)

	if err := c.Clear(); err != nil {
		t.Fatalf("clearing an empty cache: %v", err)
	}
	if err := c.Store(a, testProfile(), false); err != nil {
		t.Fatal(err)
	}
	if err := c.Clear(); err != nil {
		t.Fatal(err)
	}
	if _, err := c.Load(a); errors.Cause(err) != ErrNotFound {
		t.Fatalf("got %v, want %v", err, ErrNotFound)
	}
}

func TestGattCache_Invalid(t *testing.T) {
	c := New(filepath.Join(t.TempDir(), "test.cache"))
	p := Profile{Services: []gatt.Service{{StartHandle: 1, EndHandle: 2}}}

	if err := c.Store(fsci.DeviceAddr(1), p, false); errors.Cause(err) != fsci.ErrMalformed {
		t.Fatalf("got %v", err)
	}
}
