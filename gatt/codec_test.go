package gatt

import (
	"bytes"
	"reflect"
	"testing"

	"github.com/pkg/errors"
	"github.com/rigado/fsci"
	"github.com/rigado/fsci/codec"
)

func testService() Service {
	return Service{
		StartHandle: 0x0010,
		EndHandle:   0x001F,
		UUID:        UUID16(0x180D),
		Characteristics: []Characteristic{
			{
				Handle:   0x0011,
				Property: CharRead | CharNotify,
				Value: Attribute{
					Handle:         0x0012,
					UUID:           UUID16(0x2A37),
					MaxValueLength: 20,
					Value:          []byte{0x00, 0x48},
				},
				Descriptors: []Attribute{
					{Handle: 0x0013, UUID: UUID16(0x2902), MaxValueLength: 2, Value: []byte{0x01, 0x00}},
				},
			},
			{
				Handle:   0x0014,
				Property: CharRead,
				Value: Attribute{
					Handle: 0x0015,
					UUID:   MustParse("34DA3AD1-7110-41A1-B1EF-4430F509CDE7"),
				},
			},
		},
	}
}

func roundTrip[T any](t *testing.T, v T, f codec.Field, dec func(*codec.Reader) T) {
	t.Helper()
	b := Encode(f)
	if len(b) != f.Size() {
		t.Fatalf("encoded %d bytes, size reported %d", len(b), f.Size())
	}
	got, err := Decode(b, dec)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !reflect.DeepEqual(got, v) {
		t.Fatalf("round trip mismatch:\n got %+v\nwant %+v", got, v)
	}
}

func TestServiceTwoCharacteristics(t *testing.T) {
	s := testService()
	roundTrip(t, s, s, ReadService)

	got, err := Decode(Encode(s), ReadService)
	if err != nil {
		t.Fatal(err)
	}
	if got.StartHandle != 0x0010 || got.EndHandle != 0x001F {
		t.Fatalf("handle range 0x%04X-0x%04X", got.StartHandle, got.EndHandle)
	}
	if len(got.IncludedServices) != 0 {
		t.Fatalf("%d included services", len(got.IncludedServices))
	}
	if len(got.Characteristics) != 2 {
		t.Fatalf("%d characteristics", len(got.Characteristics))
	}
	if n := len(got.Characteristics[0].Descriptors); n != 1 {
		t.Fatalf("first characteristic has %d descriptors", n)
	}
	if n := len(got.Characteristics[1].Descriptors); n != 0 {
		t.Fatalf("second characteristic has %d descriptors", n)
	}
	if got.Characteristics[0].UUID().Type != UUIDType16 || got.Characteristics[1].UUID().Type != UUIDType128 {
		t.Fatalf("uuid types %v %v", got.Characteristics[0].UUID().Type, got.Characteristics[1].UUID().Type)
	}
}

func TestServiceZeroCounts(t *testing.T) {
	s := Service{StartHandle: 1, EndHandle: 5, UUID: UUID16(0x1800)}
	b := Encode(s)
	// start, end, uuid type, uuid, 0 characteristics, 0 included
	exp := []byte{0x01, 0x00, 0x05, 0x00, 0x01, 0x00, 0x18, 0x00, 0x00}
	if !bytes.Equal(b, exp) {
		t.Fatalf("got % X, want % X", b, exp)
	}
	roundTrip(t, s, s, ReadService)
}

func TestServiceIncluded(t *testing.T) {
	s := testService()
	s.IncludedServices = []IncludedService{
		{StartHandle: 0x0030, EndHandle: 0x0035, UUID: UUID32(0x0000FEED)},
		{StartHandle: 0x0040, EndHandle: 0x0045, UUID: UUID16(0x180F)},
	}
	roundTrip(t, s, s, ReadService)
}

func TestAttributeMaxLength(t *testing.T) {
	v := make([]byte, MaxAttributeValueSize)
	for i := range v {
		v[i] = byte(i)
	}
	a := Attribute{Handle: 0x0100, UUID: UUID16(0x2A00), MaxValueLength: MaxAttributeValueSize, Value: v}
	if err := a.Validate(); err != nil {
		t.Fatal(err)
	}
	roundTrip(t, a, a, ReadAttribute)
}

func TestCharacteristicRoundTrip(t *testing.T) {
	for _, c := range testService().Characteristics {
		roundTrip(t, c, c, ReadCharacteristic)
	}
	cc := testService().Characteristics
	roundTrip(t, cc, Characteristics(cc), ReadCharacteristics)
	roundTrip(t, cc[0].Descriptors, Descriptors(cc[0].Descriptors), ReadDescriptors)
}

func TestServicesRoundTrip(t *testing.T) {
	ss := []Service{testService(), {StartHandle: 0x20, EndHandle: 0x22, UUID: UUID16(0x180F)}}
	roundTrip(t, ss, Services(ss), ReadServices)
	roundTrip(t, []Service(nil), Services(nil), ReadServices)
}

func TestValidateTooLong(t *testing.T) {
	c := Characteristic{
		Handle: 1,
		Value:  Attribute{Handle: 2, UUID: UUID16(0x2A00), MaxValueLength: 700},
	}
	if err := c.Validate(); errors.Cause(err) != fsci.ErrValueTooLong {
		t.Fatalf("expected ErrValueTooLong, got %v", err)
	}

	c.Value.MaxValueLength = 0
	c.Value.Value = make([]byte, 513)
	if err := c.Validate(); errors.Cause(err) != fsci.ErrValueTooLong {
		t.Fatalf("expected ErrValueTooLong, got %v", err)
	}
}

func TestDecodeTooLong(t *testing.T) {
	// handle, uuid16, length 700
	b := []byte{0x01, 0x00, 0x01, 0x00, 0x2A, 0xBC, 0x02, 0x00, 0x00}
	if _, err := Decode(b, ReadAttribute); errors.Cause(err) != fsci.ErrValueTooLong {
		t.Fatalf("expected ErrValueTooLong, got %v", err)
	}
}

func TestDecodeUnknownUUIDType(t *testing.T) {
	b := Encode(testService())
	b[4] = 0x07
	if _, err := Decode(b, ReadService); errors.Cause(err) != codec.ErrUnknownUUIDType {
		t.Fatalf("expected ErrUnknownUUIDType, got %v", err)
	}
}

func TestDecodeTruncated(t *testing.T) {
	b := Encode(testService())
	for i := 0; i < len(b); i++ {
		if _, err := Decode(b[:i], ReadService); err == nil {
			t.Fatalf("truncated at %d decoded without error", i)
		}
	}
}

func TestUUIDParse(t *testing.T) {
	u := MustParse("180d")
	if u.Type != UUIDType16 || !bytes.Equal(u.Bytes, []byte{0x0D, 0x18}) {
		t.Fatalf("parsed %v % X", u.Type, u.Bytes)
	}
	if u.String() != "180d" {
		t.Fatalf("string %q", u.String())
	}
	if !u.Equal(UUID16(0x180D)) {
		t.Fatal("not equal to UUID16(0x180D)")
	}

	l := MustParse("34DA3AD1-7110-41A1-B1EF-4430F509CDE7")
	if l.Type != UUIDType128 || l.String() != "34da3ad1711041a1b1ef4430f509cde7" {
		t.Fatalf("parsed %v %s", l.Type, l)
	}
	if _, err := Parse("123"); err == nil {
		t.Fatal("odd length parsed")
	}
	if _, err := Parse("123456"); err == nil {
		t.Fatal("3 byte uuid parsed")
	}
}

func TestPropertyString(t *testing.T) {
	if s := (CharRead | CharWrite | CharNotify).String(); s != "RWN" {
		t.Fatalf("got %q", s)
	}
}
