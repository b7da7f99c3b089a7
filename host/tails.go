package host

import (
	"github.com/rigado/fsci/codec"
	"github.com/rigado/fsci/gatt"
	"github.com/rigado/fsci/procedure"
)

// Event tails: each decodes the opcode specific part of a completion event
// into the pending context. Counts are clamped to the caller's maximum.

func services(r *codec.Reader, c *procedure.Context) {
	ss := gatt.ReadServices(r)
	c.Services = ss[:c.Limit(len(ss))]
	c.Count = len(c.Services)
}

func includedServices(r *codec.Reader, c *procedure.Context) {
	s := gatt.ReadService(r)
	s.IncludedServices = s.IncludedServices[:c.Limit(len(s.IncludedServices))]
	c.Services = []gatt.Service{s}
	c.Count = len(s.IncludedServices)
}

func serviceCharacteristics(r *codec.Reader, c *procedure.Context) {
	s := gatt.ReadService(r)
	s.Characteristics = s.Characteristics[:c.Limit(len(s.Characteristics))]
	c.Services = []gatt.Service{s}
	c.Count = len(s.Characteristics)
}

func characteristics(r *codec.Reader, c *procedure.Context) {
	cc := gatt.ReadCharacteristics(r)
	c.Characteristics = cc[:c.Limit(len(cc))]
	c.Count = len(c.Characteristics)
}

func descriptors(r *codec.Reader, c *procedure.Context) {
	ch := gatt.ReadCharacteristic(r)
	ch.Descriptors = ch.Descriptors[:c.Limit(len(ch.Descriptors))]
	c.Characteristics = []gatt.Characteristic{ch}
	c.Count = len(ch.Descriptors)
}

func characteristic(r *codec.Reader, c *procedure.Context) {
	ch := gatt.ReadCharacteristic(r)
	c.Characteristics = []gatt.Characteristic{ch}
	c.Count = len(ch.Value.Value)
}

func descriptor(r *codec.Reader, c *procedure.Context) {
	d := gatt.ReadAttribute(r)
	c.Descriptors = []gatt.Descriptor{d}
	c.Count = len(d.Value)
}

// valueInto copies a u16 length and value into the context's value
// buffer, truncating to its size.
func valueInto(r *codec.Reader, c *procedure.Context) {
	c.Count = copy(c.Value, refValue(r))
}
